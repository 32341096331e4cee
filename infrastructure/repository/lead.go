package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/pkg/phone"
)

const (
	leadsTable = "leads l"
)

var leadColumns = []string{
	"l.id",
	"l.name",
	"l.email",
	"l.phone",
	"l.source",
	"l.status",
	"l.message_sent",
	"l.created_at",
	"l.updated_at",
}

const returningLead = "RETURNING id, name, email, phone, source, status, message_sent, created_at, updated_at"

//go:generate mockgen -source=lead.go -destination=mocks/lead.go -package=mocks

type LeadRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
	GetByEmail(ctx context.Context, email string) (*domain.Lead, error)
	GetByPhone(ctx context.Context, phoneNumber string) (*domain.Lead, error)
	List(ctx context.Context, filters domain.LeadFilters) ([]*domain.Lead, int64, error)
	FindOrCreateByPhone(ctx context.Context, lead *domain.Lead) (*domain.Lead, bool, error)
	UpsertByEmail(ctx context.Context, lead *domain.Lead, overwrite bool) (*domain.Lead, bool, error)
	Update(ctx context.Context, lead *domain.Lead) error
	MarkMessageSent(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	ReadStats(ctx context.Context, windows domain.AnalyticsWindows) (*domain.LeadStats, error)
}

type leadRepository struct {
	conn *postgres.Connection
}

func NewLeadRepository(conn *postgres.Connection) LeadRepository {
	return &leadRepository{
		conn: conn,
	}
}

func (r *leadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	return r.getLead(ctx, r.conn, squirrel.Eq{"l.id": id})
}

func (r *leadRepository) GetByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	return r.getLead(ctx, r.conn, squirrel.Eq{"l.email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *leadRepository) GetByPhone(ctx context.Context, phoneNumber string) (*domain.Lead, error) {
	return r.getLead(ctx, r.conn, squirrel.Eq{"l.phone_normalized": phone.Normalize(phoneNumber)})
}

func (r *leadRepository) getLead(ctx context.Context, q postgres.Queryer, where squirrel.Sqlizer) (*domain.Lead, error) {
	query, args, err := psql.
		Select(leadColumns...).
		From(leadsTable).
		Where(where).
		OrderBy("l.id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	lead, err := scanLead(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storeError("erro ao buscar lead", err)
	}

	return lead, nil
}

func (r *leadRepository) List(ctx context.Context, filters domain.LeadFilters) ([]*domain.Lead, int64, error) {
	conditions := squirrel.And{}
	if filters.Status != "" {
		conditions = append(conditions, squirrel.Eq{"l.status": filters.Status})
	}
	if filters.Source != "" {
		conditions = append(conditions, squirrel.Eq{"l.source": filters.Source})
	}
	if filters.CreatedFrom != nil {
		conditions = append(conditions, squirrel.GtOrEq{"l.created_at": *filters.CreatedFrom})
	}
	if filters.CreatedTo != nil {
		conditions = append(conditions, squirrel.Lt{"l.created_at": *filters.CreatedTo})
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		conditions = append(conditions, squirrel.Or{
			squirrel.ILike{"l.name": like},
			squirrel.ILike{"l.email": like},
			squirrel.ILike{"l.phone": like},
		})
	}

	countQuery, countArgs, err := psql.
		Select("COUNT(*)").
		From(leadsTable).
		Where(conditions).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao construir a query de contagem: %w", err)
	}

	var total int64
	if err := r.conn.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, storeError("erro ao contar leads", err)
	}

	builder := psql.
		Select(leadColumns...).
		From(leadsTable).
		Where(conditions).
		OrderBy("l.created_at DESC", "l.id DESC")
	if filters.Limit > 0 {
		builder = builder.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		builder = builder.Offset(filters.Offset)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, storeError("erro ao listar leads", err)
	}
	defer rows.Close()

	leads := make([]*domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, storeError("erro ao escanear lead", err)
		}
		leads = append(leads, lead)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, storeError("erro durante a iteração de linhas", err)
	}

	return leads, total, nil
}

// FindOrCreateByPhone busca o lead pelo telefone normalizado e o cria se não existir.
// A busca e a criação acontecem sob um advisory lock da transação com a chave do
// telefone, então duas resoluções concorrentes do mesmo número criam um único lead.
// Se o email do lead já estiver em uso (ex: placeholder cujo telefone foi editado),
// o dono desse email é devolvido no lugar da inserção.
func (r *leadRepository) FindOrCreateByPhone(ctx context.Context, lead *domain.Lead) (*domain.Lead, bool, error) {
	normalized := phone.Normalize(lead.Phone)
	if normalized == "" {
		return nil, false, fmt.Errorf("%w: telefone vazio", domain.ErrValidation)
	}

	var (
		result  *domain.Lead
		created bool
	)

	err := r.conn.RunInTransaction(ctx, nil, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", "lead:phone:"+normalized); err != nil {
			return storeError("erro ao obter lock do telefone", err)
		}

		existing, err := r.getLead(ctx, tx, squirrel.Eq{"l.phone_normalized": normalized})
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		query, args, err := psql.
			Insert("leads").
			Columns("name", "email", "phone", "phone_normalized", "source", "status", "message_sent", "created_at", "updated_at").
			Values(lead.Name, lead.Email, lead.Phone, normalized, lead.Source, lead.Status, lead.MessageSent, lead.CreatedAt, lead.CreatedAt).
			Suffix("ON CONFLICT (email) DO NOTHING " + returningLead).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir query de inserção: %w", err)
		}

		inserted, err := scanLead(tx.QueryRowContext(ctx, query, args...))
		if err == sql.ErrNoRows {
			owner, err := r.getLead(ctx, tx, squirrel.Eq{"l.email": lead.Email})
			if err != nil {
				return err
			}
			if owner == nil {
				return storeError("erro ao inserir lead", fmt.Errorf("email %s em conflito sem registro visível", lead.Email))
			}
			result = owner
			return nil
		}
		if err != nil {
			return storeError("erro ao inserir lead", err)
		}

		result = inserted
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return result, created, nil
}

// UpsertByEmail insere o lead ou, havendo conflito de email, atualiza nome,
// telefone, origem e created_at (overwrite) ou devolve o registro existente sem
// alterações. O bool indica se houve inserção.
func (r *leadRepository) UpsertByEmail(ctx context.Context, lead *domain.Lead, overwrite bool) (*domain.Lead, bool, error) {
	conflict := `ON CONFLICT (email) DO UPDATE SET email = leads.email`
	if overwrite {
		conflict = `ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			phone_normalized = EXCLUDED.phone_normalized,
			source = EXCLUDED.source,
			created_at = EXCLUDED.created_at,
			updated_at = NOW()`
	}

	query, args, err := psql.
		Insert("leads").
		Columns("name", "email", "phone", "phone_normalized", "source", "status", "message_sent", "created_at", "updated_at").
		Values(
			lead.Name,
			strings.ToLower(strings.TrimSpace(lead.Email)),
			lead.Phone,
			phone.Normalize(lead.Phone),
			lead.Source,
			lead.Status,
			lead.MessageSent,
			lead.CreatedAt,
			lead.CreatedAt,
		).
		Suffix(conflict + " " + returningLead + ", (xmax = 0) AS inserted").
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("erro ao construir query de upsert: %w", err)
	}

	result := &domain.Lead{}
	var inserted bool
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&result.ID,
		&result.Name,
		&result.Email,
		&result.Phone,
		&result.Source,
		&result.Status,
		&result.MessageSent,
		&result.CreatedAt,
		&result.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return nil, false, storeError("erro ao executar upsert de lead", err)
	}

	return result, inserted, nil
}

func (r *leadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	query, args, err := psql.
		Update("leads").
		Set("name", lead.Name).
		Set("phone", lead.Phone).
		Set("phone_normalized", phone.Normalize(lead.Phone)).
		Set("source", lead.Source).
		Set("status", lead.Status).
		Set("message_sent", lead.MessageSent).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": lead.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir query de atualização: %w", err)
	}

	return r.execAffectingOne(ctx, query, args, "erro ao atualizar lead")
}

func (r *leadRepository) MarkMessageSent(ctx context.Context, id int64) error {
	query, args, err := psql.
		Update("leads").
		Set("message_sent", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir query de atualização: %w", err)
	}

	return r.execAffectingOne(ctx, query, args, "erro ao marcar mensagem enviada")
}

func (r *leadRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.
		Delete("leads").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir query de remoção: %w", err)
	}

	return r.execAffectingOne(ctx, query, args, "erro ao remover lead")
}

func (r *leadRepository) execAffectingOne(ctx context.Context, query string, args []interface{}, operation string) error {
	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return storeError(operation, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("erro ao obter número de linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError("lead não encontrado")
	}

	return nil
}

// ReadStats lê todas as contagens numa única transação somente leitura em
// REPEATABLE READ, para que as janelas enxerguem o mesmo estado da tabela.
// Com a tabela vazia as consultas agrupadas não são executadas.
func (r *leadRepository) ReadStats(ctx context.Context, windows domain.AnalyticsWindows) (*domain.LeadStats, error) {
	stats := &domain.LeadStats{}

	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := r.conn.RunInTransaction(ctx, opts, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM leads").Scan(&stats.Total); err != nil {
			return storeError("erro ao contar leads", err)
		}
		if stats.Total == 0 {
			return nil
		}

		windowQuery, windowArgs, err := psql.
			Select().
			Column(countBetween(windows.TodayStart, windows.TodayEnd)).
			Column(countBetween(windows.YesterdayStart, windows.YesterdayEnd)).
			Column(squirrel.Expr("COUNT(*) FILTER (WHERE l.created_at >= ?)", windows.WeekStart)).
			Column(squirrel.Expr("COUNT(*) FILTER (WHERE l.created_at >= ?)", windows.MonthStart)).
			From(leadsTable).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir query de janelas: %w", err)
		}

		err = tx.QueryRowContext(ctx, windowQuery, windowArgs...).Scan(
			&stats.Today,
			&stats.Yesterday,
			&stats.Week,
			&stats.Month,
		)
		if err != nil {
			return storeError("erro ao contar janelas de leads", err)
		}

		sourceQuery, sourceArgs, err := psql.
			Select().
			Column(squirrel.Expr("COALESCE(NULLIF(TRIM(l.source), ''), ?)", domain.UnknownSource)).
			Column("COUNT(*)").
			From(leadsTable).
			GroupBy("1").
			OrderBy("2 DESC").
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir query de origens: %w", err)
		}

		rows, err := tx.QueryContext(ctx, sourceQuery, sourceArgs...)
		if err != nil {
			return storeError("erro ao agrupar leads por origem", err)
		}
		defer rows.Close()

		for rows.Next() {
			var sc domain.SourceCount
			if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
				return storeError("erro ao escanear origem", err)
			}
			stats.Sources = append(stats.Sources, sc)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func countBetween(start, end time.Time) squirrel.Sqlizer {
	return squirrel.Expr("COUNT(*) FILTER (WHERE l.created_at >= ? AND l.created_at <= ?)", start, end)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*domain.Lead, error) {
	lead := &domain.Lead{}

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Source,
		&lead.Status,
		&lead.MessageSent,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return lead, nil
}
