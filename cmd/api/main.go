package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp/whatsappclient"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/leads-dashboard-api/internal/api"
	"github.com/vfg2006/leads-dashboard-api/internal/api/handler"
	"github.com/vfg2006/leads-dashboard-api/internal/config"
	"github.com/vfg2006/leads-dashboard-api/internal/scheduler"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/importing"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/leads"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/messaging"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/reporting"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/resolving"
	"github.com/vfg2006/leads-dashboard-api/pkg/cache"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	leadRepo := repository.NewLeadRepository(pgConn)
	messageRepo := repository.NewMessageRepository(pgConn)

	guard := deliveryGuard(ctx, cfg.Redis)

	whatsappClient := whatsappclient.NewClient(cfg.WhatsApp)
	session := whatsapp.NewSession(cfg.WhatsApp, whatsappClient)
	if cfg.WhatsApp.AutoInit {
		// o gateway fora do ar não impede a API de subir; POST /api/whatsapp/session tenta de novo
		if err := session.Init(ctx); err != nil {
			logrus.WithError(err).Warn("Sessão do WhatsApp não iniciada")
		}
	}

	resolver := resolving.NewService(leadRepo)
	leadService := leads.NewService(leadRepo, resolver)
	importService := importing.NewService(resolver, cfg.Import)
	analyticsService := reporting.NewService(leadRepo, cfg.App.Location)
	conversationService := messaging.NewService(resolver, leadRepo, messageRepo, session, guard)

	whatsappSyncService := scheduler.NewWhatsAppSyncService(conversationService, cfg)
	if err := whatsappSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização do WhatsApp")
	} else {
		logrus.Info("Agendador de sincronização do WhatsApp iniciado com sucesso")
	}

	server, err := api.New(cfg, api.Services{
		Database:     pgConn,
		Leads:        leadService,
		Import:       importService,
		Analytics:    analyticsService,
		Conversation: conversationService,
		Session:      session,
		CronJobs: handler.CronJobServices{
			WhatsAppSyncService: whatsappSyncService,
		},
	})
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}

// deliveryGuard usa o Redis quando configurado. Sem Redis a unicidade fica só com o banco.
func deliveryGuard(ctx context.Context, cfg config.Redis) cache.DeliveryGuard {
	if cfg.URL == "" {
		logrus.Info("REDIS_URL não configurada, guard de entrega desabilitado")
		return cache.NewNoopDeliveryGuard()
	}

	client, err := cache.NewRedisClient(cfg.URL)
	if err != nil {
		logrus.WithError(err).Warn("REDIS_URL inválida, guard de entrega desabilitado")
		return cache.NewNoopDeliveryGuard()
	}

	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis indisponível, guard de entrega desabilitado")
		return cache.NewNoopDeliveryGuard()
	}

	logrus.Info("Guard de entrega do WhatsApp usando Redis")
	return cache.NewRedisDeliveryGuard(client, cfg.DeliveryGuardTTL)
}
