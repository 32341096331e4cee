// Package whatsapp gerencia a sessão com o gateway do WhatsApp usada pelos
// caminhos de envio e sincronização de conversas.
package whatsapp

import (
	"context"
	"fmt"
	"sync"
	"time"

	whatsappdomain "github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp/domain"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp/whatsappclient"
	"github.com/vfg2006/leads-dashboard-api/internal/config"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
)

type SessionState string

const (
	StateDisconnected SessionState = "disconnected"
	StateInitializing SessionState = "initializing"
	StateReady        SessionState = "ready"
	StateDestroyed    SessionState = "destroyed"
)

type SessionStatus struct {
	State     SessionState `json:"state"`
	Ready     bool         `json:"ready"`
	Phone     string       `json:"phone,omitempty"`
	Since     time.Time    `json:"since"`
	LastError string       `json:"lastError,omitempty"`
}

//go:generate mockgen -source=session.go -destination=mocks/session.go -package=mocks

type WhatsAppIntegrator interface {
	Init(ctx context.Context) error
	Destroy() error
	Ready() bool
	Status() SessionStatus
	FetchRecentMessages(ctx context.Context) ([]domain.ProviderMessage, error)
	SendText(ctx context.Context, to, text string) (string, error)
}

// Session é a única dona do cliente do gateway. Buscas e envios só são
// aceitos no estado ready.
type Session struct {
	cfg    config.WhatsApp
	Client whatsappclient.Client

	mu        sync.RWMutex
	state     SessionState
	phone     string
	since     time.Time
	lastError string
	now       func() time.Time
}

func NewSession(cfg config.WhatsApp, client whatsappclient.Client) *Session {
	return &Session{
		cfg:    cfg,
		Client: client,
		state:  StateDisconnected,
		since:  time.Now(),
		now:    time.Now,
	}
}

// Init consulta o gateway e marca a sessão como pronta se o número estiver conectado.
// Chamadas com a sessão já pronta ou inicializando não fazem nada.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateReady || s.state == StateInitializing {
		s.mu.Unlock()
		return nil
	}
	s.setState(StateInitializing, "")
	s.mu.Unlock()

	status, err := s.Client.GetSessionStatus(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Destroy chamado durante a inicialização vence
	if s.state == StateDestroyed {
		return fmt.Errorf("%w: sessão destruída durante a inicialização", domain.ErrSessionNotReady)
	}

	if err != nil {
		s.setState(StateDisconnected, err.Error())
		log.L.WithError(err).Error("whatsapp: falha ao inicializar a sessão")
		return err
	}

	if !status.Connected {
		s.setState(StateDisconnected, "número não conectado ao gateway")
		log.L.Warn("whatsapp: gateway respondeu mas o número não está conectado")
		return fmt.Errorf("%w: número não conectado ao gateway", domain.ErrSessionNotReady)
	}

	s.phone = status.Phone
	s.setState(StateReady, "")
	log.L.WithField("session_phone", status.Phone).Info("whatsapp: sessão pronta")

	return nil
}

// Destroy encerra a sessão e libera as conexões do cliente
func (s *Session) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDestroyed {
		return nil
	}

	s.Client.Close()
	s.phone = ""
	s.setState(StateDestroyed, "")
	log.L.Info("whatsapp: sessão encerrada")

	return nil
}

func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateReady
}

func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SessionStatus{
		State:     s.state,
		Ready:     s.state == StateReady,
		Phone:     s.phone,
		Since:     s.since,
		LastError: s.lastError,
	}
}

// setState deve ser chamado com o lock adquirido
func (s *Session) setState(state SessionState, lastError string) {
	s.state = state
	s.since = s.now()
	s.lastError = lastError
}

func (s *Session) ensureReady() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateReady {
		return fmt.Errorf("%w: estado atual %s", domain.ErrSessionNotReady, s.state)
	}
	return nil
}

// FetchRecentMessages busca uma página limitada pelo WHATSAPP_PAGE_LIMIT
func (s *Session) FetchRecentMessages(ctx context.Context) ([]domain.ProviderMessage, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}

	limit := s.cfg.PageLimit
	if limit <= 0 {
		limit = 100
	}

	messages, err := s.Client.GetMessages(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ProviderMessage, 0, len(messages))
	for _, m := range messages {
		result = append(result, toProviderMessage(m))
	}

	return result, nil
}

func (s *Session) SendText(ctx context.Context, to, text string) (string, error) {
	if err := s.ensureReady(); err != nil {
		return "", err
	}

	return s.Client.SendText(ctx, to, text)
}

func toProviderMessage(m whatsappdomain.Message) domain.ProviderMessage {
	var timestamp time.Time
	if m.Timestamp > 0 {
		timestamp = time.Unix(m.Timestamp, 0).UTC()
	}

	return domain.ProviderMessage{
		ID:        m.ID,
		From:      m.From,
		To:        m.To,
		Text:      m.Body,
		Timestamp: timestamp,
		FromMe:    m.FromMe,
	}
}
