package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justinas/alice"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp"
	"github.com/vfg2006/leads-dashboard-api/internal/api/handler"
	"github.com/vfg2006/leads-dashboard-api/internal/api/handler/router"
	"github.com/vfg2006/leads-dashboard-api/internal/config"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/importing"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/leads"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/messaging"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/reporting"
	"github.com/vfg2006/leads-dashboard-api/pkg/middleware"
)

type Server struct {
	httpServer *http.Server
	session    whatsapp.WhatsAppIntegrator
}

// Services agrupa as dependências expostas pelas rotas
type Services struct {
	Database     handler.Pinger
	Leads        leads.LeadService
	Import       importing.ImportService
	Analytics    reporting.AnalyticsService
	Conversation messaging.ConversationService
	Session      whatsapp.WhatsAppIntegrator
	CronJobs     handler.CronJobServices
}

func New(config *config.Config, services Services) (*Server, error) {
	limiter := middleware.NewIPRateLimiter(config.RateLimit.RequestsPerSecond, config.RateLimit.Burst)

	rt := NewRouter(config, services, limiter)

	middlewares := []alice.Constructor{
		middleware.LogPanicMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.Cors(config.Server.AllowedOrigins),
	}

	handler := alice.New(middlewares...).Then(rt)

	srv := &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 2 * time.Second,
		},
		session: services.Session,
	}

	return srv, nil
}

// NewRouter monta todas as rotas da API
func NewRouter(config *config.Config, services Services, limiter *middleware.IPRateLimiter) router.Router {
	return router.New(
		router.WithRoutes(handler.Healthcheck(services.Database, services.Session)...),
		router.WithRoutes(handler.Leads(services.Leads, services.Conversation, config.App.Location)...),
		router.WithRoutes(handler.Import(services.Import, config.Import.MaxUploadMB)...),
		router.WithRoutes(handler.Webhooks(services.Leads, limiter)...),
		router.WithRoutes(handler.Analytics(services.Analytics)...),
		router.WithRoutes(handler.WhatsApp(services.Conversation, services.Session, limiter)...),
		router.WithRoutes(handler.CronJobs(services.CronJobs)...),
	)
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		logrus.WithFields(logrus.Fields{
			"address": s.httpServer.Addr,
		}).Info("Servidor iniciando")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("Erro durante a execução do servidor")
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		logrus.Info("Sinal de interrupção recebido")
	case <-ctx.Done():
		logrus.Info("Contexto de aplicação cancelado")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logrus.WithFields(logrus.Fields{
		"timeout": "15s",
	}).Info("Iniciando desligamento gracioso do servidor")

	if err := s.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Erro durante o desligamento do servidor")
		return err
	}

	logrus.Info("Servidor desligado com sucesso")
	return nil
}

// Shutdown para de aceitar requisições e só então encerra a sessão do WhatsApp
func (s Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	logrus.Info("Servidor HTTP desligado com sucesso")

	if s.session != nil {
		if err := s.session.Destroy(); err != nil {
			logrus.WithError(err).Warn("Erro ao encerrar sessão do WhatsApp")
		}
	}

	return nil
}
