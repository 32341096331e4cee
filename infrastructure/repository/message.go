package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
)

const messagesTable = "messages m"

var messageColumns = []string{
	"m.id",
	"m.message_id",
	"m.sender",
	"m.text",
	"m.timestamp",
	"m.is_from_me",
	"m.lead_id",
	"m.created_at",
}

//go:generate mockgen -source=message.go -destination=mocks/message.go -package=mocks

type MessageRepository interface {
	ExistsByMessageID(ctx context.Context, messageID string) (bool, error)
	InsertIfAbsent(ctx context.Context, message *domain.Message) (bool, error)
	Insert(ctx context.Context, message *domain.Message) error
	ListByLead(ctx context.Context, leadID int64, limit uint64) ([]*domain.Message, error)
}

type messageRepository struct {
	conn *postgres.Connection
}

func NewMessageRepository(conn *postgres.Connection) MessageRepository {
	return &messageRepository{
		conn: conn,
	}
}

func (r *messageRepository) ExistsByMessageID(ctx context.Context, messageID string) (bool, error) {
	query, args, err := psql.
		Select("1").
		Prefix("SELECT EXISTS (").
		From(messagesTable).
		Where(squirrel.Eq{"m.message_id": messageID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var exists bool
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, storeError("erro ao verificar mensagem", err)
	}

	return exists, nil
}

// InsertIfAbsent grava a mensagem e retorna false quando o message_id já existe.
// A constraint única decide entre entregas concorrentes do mesmo evento.
func (r *messageRepository) InsertIfAbsent(ctx context.Context, message *domain.Message) (bool, error) {
	query, args, err := insertMessage(message).
		Suffix("ON CONFLICT (message_id) DO NOTHING RETURNING id, created_at").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("erro ao construir query de inserção: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return false, storeError("erro ao inserir mensagem", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return false, storeError("erro ao inserir mensagem", err)
		}
		return false, nil
	}

	if err := rows.Scan(&message.ID, &message.CreatedAt); err != nil {
		return false, storeError("erro ao ler mensagem inserida", err)
	}

	return true, nil
}

// Insert grava a mensagem e trata uma colisão de message_id como falha
func (r *messageRepository) Insert(ctx context.Context, message *domain.Message) error {
	query, args, err := insertMessage(message).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir query de inserção: %w", err)
	}

	err = r.conn.QueryRowContext(ctx, query, args...).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w: %s", domain.ErrStore, domain.ErrDuplicateMessage, message.MessageID)
		}
		return storeError("erro ao inserir mensagem", err)
	}

	return nil
}

func (r *messageRepository) ListByLead(ctx context.Context, leadID int64, limit uint64) ([]*domain.Message, error) {
	builder := psql.
		Select(messageColumns...).
		From(messagesTable).
		Where(squirrel.Eq{"m.lead_id": leadID}).
		OrderBy("m.timestamp ASC", "m.id ASC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError("erro ao listar mensagens", err)
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.ID,
			&m.MessageID,
			&m.Sender,
			&m.Text,
			&m.Timestamp,
			&m.IsFromMe,
			&m.LeadID,
			&m.CreatedAt,
		); err != nil {
			return nil, storeError("erro ao escanear mensagem", err)
		}
		messages = append(messages, m)
	}

	if err = rows.Err(); err != nil {
		return nil, storeError("erro durante a iteração de linhas", err)
	}

	return messages, nil
}

func insertMessage(message *domain.Message) squirrel.InsertBuilder {
	return psql.
		Insert("messages").
		Columns("message_id", "sender", "text", "timestamp", "is_from_me", "lead_id").
		Values(
			message.MessageID,
			message.Sender,
			message.Text,
			message.Timestamp,
			message.IsFromMe,
			message.LeadID,
		)
}
