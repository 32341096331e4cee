// Script de migração do schema de leads e mensagens.
//
// Uso: go run ./infrastructure/migration/script [-seed]
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/leads-dashboard-api/internal/config"
	"github.com/vfg2006/leads-dashboard-api/pkg/phone"
	"github.com/vfg2006/leads-dashboard-api/pkg/utils"
)

type migration struct {
	name       string
	statements []string
}

var migrations = []migration{
	{
		name: "001_create_leads",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS leads (
				id               BIGSERIAL PRIMARY KEY,
				name             TEXT        NOT NULL,
				email            TEXT        NOT NULL,
				phone            TEXT        NOT NULL DEFAULT '',
				phone_normalized TEXT        NOT NULL DEFAULT '',
				source           TEXT        NOT NULL DEFAULT '',
				status           TEXT        NOT NULL DEFAULT 'Novo',
				message_sent     BOOLEAN     NOT NULL DEFAULT FALSE,
				created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT leads_email_key UNIQUE (email)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_leads_phone_normalized ON leads (phone_normalized)`,
			`CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads (created_at DESC, id DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads (status)`,
		},
	},
	{
		name: "002_create_messages",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS messages (
				id         BIGSERIAL PRIMARY KEY,
				message_id TEXT        NOT NULL,
				sender     TEXT        NOT NULL,
				text       TEXT        NOT NULL DEFAULT '',
				timestamp  TIMESTAMPTZ NOT NULL,
				is_from_me BOOLEAN     NOT NULL DEFAULT FALSE,
				lead_id    BIGINT      NOT NULL REFERENCES leads (id) ON DELETE CASCADE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CONSTRAINT messages_message_id_key UNIQUE (message_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_lead_timestamp ON messages (lead_id, timestamp, id)`,
		},
	},
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	name       TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type seedLead struct {
	Name   string
	Email  string
	Phone  string
	Source string
	Age    time.Duration
}

var seedLeads = []seedLead{
	{Name: "Ana Souza", Email: "ana.souza@example.com", Phone: "(11) 99876-1234", Source: "formulario", Age: 2 * time.Hour},
	{Name: "Bruno Lima", Email: "bruno.lima@example.com", Phone: "+55 21 98765-4321", Source: "webhook", Age: 26 * time.Hour},
	{Name: "Carla Dias", Email: "carla.dias@example.com", Phone: "31 99123-4567", Source: "importacao", Age: 5 * 24 * time.Hour},
	{Name: "Diego Alves", Email: "diego.alves@example.com", Phone: "11 97777-0000", Source: "", Age: 20 * 24 * time.Hour},
}

func main() {
	seed := flag.Bool("seed", false, "insere leads de exemplo após a migração")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao carregar configuração")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao abrir conexão com PostgreSQL")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	if err := migrate(ctx, db); err != nil {
		logrus.WithError(err).Fatal("Migração falhou")
	}

	if *seed {
		if err := seedDatabase(ctx, db); err != nil {
			logrus.WithError(err).Fatal("Erro ao inserir dados de exemplo")
		}
	}

	logrus.Info("Migração concluída")
}

// migrate aplica cada migração pendente em sua própria transação
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("erro ao criar schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var applied bool
		err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, m.name).Scan(&applied)
		if err != nil {
			return fmt.Errorf("erro ao consultar migração %s: %w", m.name, err)
		}
		if applied {
			logrus.WithField("migration", m.name).Debug("Migração já aplicada")
			continue
		}

		startTime := time.Now()
		if err := apply(ctx, db, m); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"migration": m.name,
			"duration":  time.Since(startTime).String(),
		}).Info("Migração aplicada")
	}

	return nil
}

func apply(ctx context.Context, db *sql.DB, m migration) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range m.statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("erro na migração %s: %w", m.name, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, m.name); err != nil {
		return fmt.Errorf("erro ao registrar migração %s: %w", m.name, err)
	}

	return tx.Commit()
}

// seedDatabase insere leads de exemplo com histórico para o dashboard.
// Emails já existentes são ignorados.
func seedDatabase(ctx context.Context, db *sql.DB) error {
	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO leads (name, email, phone, phone_normalized, source, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'Novo', $6, $6)
		ON CONFLICT (email) DO NOTHING
		RETURNING id`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	messageStmt, err := db.PrepareContext(ctx, `
		INSERT INTO messages (message_id, sender, text, timestamp, is_from_me, lead_id)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		ON CONFLICT (message_id) DO NOTHING`)
	if err != nil {
		return err
	}
	defer messageStmt.Close()

	inserted := 0
	for _, l := range seedLeads {
		createdAt := time.Now().Add(-l.Age)
		normalized := phone.Normalize(l.Phone)

		var id int64
		err := stmt.QueryRowContext(ctx, l.Name, l.Email, l.Phone, normalized, l.Source, createdAt).Scan(&id)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("erro ao inserir lead %s: %w", l.Email, err)
		}
		inserted++

		messageID, err := utils.GenerateID()
		if err != nil {
			return err
		}
		if _, err := messageStmt.ExecContext(ctx, "seed."+messageID, normalized, "Olá, gostaria de mais informações", createdAt, id); err != nil {
			return fmt.Errorf("erro ao inserir mensagem do lead %s: %w", l.Email, err)
		}
	}

	logrus.WithField("leads", inserted).Info("Leads de exemplo inseridos")
	return nil
}
