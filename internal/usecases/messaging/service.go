package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp"
	"github.com/vfg2006/leads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/resolving"
	"github.com/vfg2006/leads-dashboard-api/pkg/cache"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"github.com/vfg2006/leads-dashboard-api/pkg/metrics"
	"github.com/vfg2006/leads-dashboard-api/pkg/phone"
)

const (
	pathPush     = "push"
	pathPull     = "pull"
	pathOutbound = "outbound"

	// remetente das mensagens enviadas quando a sessão não informa o número
	outboundSender = "me"
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

// ConversationService grava as mensagens do WhatsApp no máximo uma vez por
// message_id, independente de chegarem pelo webhook ou pela sincronização.
type ConversationService interface {
	HandleInbound(ctx context.Context, message domain.InboundMessage) (*domain.InboundResult, error)
	SyncHistory(ctx context.Context) (*domain.SyncResult, error)
	SendMessage(ctx context.Context, request domain.SendMessageRequest) (*domain.Message, error)
	ListMessages(ctx context.Context, leadID int64) ([]*domain.Message, error)
}

type Service struct {
	resolver          resolving.IdentityResolver
	leadRepository    repository.LeadRepository
	messageRepository repository.MessageRepository
	session           whatsapp.WhatsAppIntegrator
	guard             cache.DeliveryGuard
	now               func() time.Time
}

func NewService(
	resolver resolving.IdentityResolver,
	leadRepository repository.LeadRepository,
	messageRepository repository.MessageRepository,
	session whatsapp.WhatsAppIntegrator,
	guard cache.DeliveryGuard,
) *Service {
	if guard == nil {
		guard = cache.NewNoopDeliveryGuard()
	}

	return &Service{
		resolver:          resolver,
		leadRepository:    leadRepository,
		messageRepository: messageRepository,
		session:           session,
		guard:             guard,
		now:               time.Now,
	}
}

// HandleInbound grava um evento entregue pelo webhook. Reentregas do mesmo
// evento são descartadas pelo guard e, em último caso, pela constraint única.
func (s *Service) HandleInbound(ctx context.Context, message domain.InboundMessage) (*domain.InboundResult, error) {
	messageID := strings.TrimSpace(message.MessageID)
	if messageID == "" {
		return nil, domain.NewValidationError("messageId", "campo obrigatório")
	}
	if strings.TrimSpace(message.Sender) == "" {
		return nil, domain.NewValidationError("sender", "campo obrigatório")
	}

	logger := log.ForContext(ctx).WithField("message_id", messageID)

	claimed, err := s.guard.Claim(ctx, messageID)
	if err != nil {
		// o banco continua decidindo a unicidade
		logger.WithError(err).Warn("whatsapp: guard de entrega indisponível")
		claimed = true
	}
	if !claimed {
		metrics.WhatsAppMessages.WithLabelValues(pathPush, "duplicate").Inc()
		logger.Info("whatsapp: reentrega descartada")
		return &domain.InboundResult{Duplicate: true}, nil
	}

	lead, _, err := s.resolver.ResolveByPhone(ctx, message.Sender)
	if err != nil {
		s.release(ctx, messageID)
		metrics.WhatsAppMessages.WithLabelValues(pathPush, "error").Inc()
		return nil, err
	}

	stored := &domain.Message{
		MessageID: messageID,
		Sender:    message.Sender,
		Text:      message.Text,
		Timestamp: s.timestampOrNow(message.Timestamp),
		IsFromMe:  false,
		LeadID:    lead.ID,
	}

	inserted, err := s.messageRepository.InsertIfAbsent(ctx, stored)
	if err != nil {
		s.release(ctx, messageID)
		metrics.WhatsAppMessages.WithLabelValues(pathPush, "error").Inc()
		logger.WithError(err).Error("whatsapp: falha ao gravar mensagem recebida")
		return nil, err
	}

	if !inserted {
		metrics.WhatsAppMessages.WithLabelValues(pathPush, "duplicate").Inc()
		logger.Info("whatsapp: mensagem já registrada pela sincronização")
		return &domain.InboundResult{Lead: lead, Duplicate: true}, nil
	}

	metrics.WhatsAppMessages.WithLabelValues(pathPush, "saved").Inc()
	logger.WithField("lead_id", lead.ID).Info("whatsapp: mensagem recebida registrada")

	return &domain.InboundResult{Message: stored, Lead: lead}, nil
}

func (s *Service) release(ctx context.Context, messageID string) {
	if err := s.guard.Release(ctx, messageID); err != nil {
		log.ForContext(ctx).WithError(err).WithField("message_id", messageID).Warn("whatsapp: falha ao liberar entrega")
	}
}

// SyncHistory busca uma página do histórico e grava as mensagens ainda não
// registradas. Falhas por mensagem são contadas sem interromper a página.
func (s *Service) SyncHistory(ctx context.Context) (*domain.SyncResult, error) {
	messages, err := s.session.FetchRecentMessages(ctx)
	if err != nil {
		log.ForContext(ctx).WithError(err).Error("whatsapp: falha ao buscar histórico")
		return nil, err
	}

	result := &domain.SyncResult{Total: len(messages)}

	for _, m := range messages {
		outcome, err := s.syncOne(ctx, m)
		if err != nil {
			result.Errors++
			metrics.WhatsAppMessages.WithLabelValues(pathPull, "error").Inc()
			log.ForContext(ctx).WithError(err).WithField("message_id", m.ID).Warn("whatsapp: falha ao sincronizar mensagem")
			continue
		}

		metrics.WhatsAppMessages.WithLabelValues(pathPull, outcome).Inc()
		if outcome == "saved" {
			result.Saved++
		} else {
			result.Skipped++
		}
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"sync_total":   result.Total,
		"sync_saved":   result.Saved,
		"sync_skipped": result.Skipped,
		"sync_errors":  result.Errors,
	}).Info("whatsapp: sincronização finalizada")

	return result, nil
}

func (s *Service) syncOne(ctx context.Context, m domain.ProviderMessage) (outcome string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic ao sincronizar mensagem: %v", r)
		}
	}()

	if strings.TrimSpace(m.ID) == "" {
		return "", domain.NewValidationError("id", "mensagem sem id")
	}

	exists, err := s.messageRepository.ExistsByMessageID(ctx, m.ID)
	if err != nil {
		return "", err
	}
	if exists {
		return "skipped", nil
	}

	lead, _, err := s.resolver.ResolveByPhone(ctx, m.Counterpart())
	if err != nil {
		return "", err
	}

	inserted, err := s.messageRepository.InsertIfAbsent(ctx, &domain.Message{
		MessageID: m.ID,
		Sender:    m.From,
		Text:      m.Text,
		Timestamp: s.timestampOrNow(m.Timestamp),
		IsFromMe:  m.FromMe,
		LeadID:    lead.ID,
	})
	if err != nil {
		return "", err
	}
	// outro caminho gravou entre a verificação e a inserção
	if !inserted {
		return "skipped", nil
	}

	return "saved", nil
}

// SendMessage envia o texto ao telefone do lead e registra a mensagem com o
// id devolvido pelo provedor.
func (s *Service) SendMessage(ctx context.Context, request domain.SendMessageRequest) (*domain.Message, error) {
	text := strings.TrimSpace(request.Message)
	if text == "" {
		return nil, domain.NewValidationError("message", "campo obrigatório")
	}

	lead, err := s.leadRepository.GetByID(ctx, request.LeadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.NewNotFoundError("lead não encontrado")
	}

	to := phone.Normalize(lead.Phone)
	if to == "" {
		return nil, domain.NewValidationError("phone", "lead sem telefone")
	}

	logger := log.ForContext(ctx).WithField("lead_id", lead.ID)

	messageID, err := s.session.SendText(ctx, to, text)
	if err != nil {
		metrics.WhatsAppMessages.WithLabelValues(pathOutbound, "error").Inc()
		logger.WithError(err).Error("whatsapp: falha ao enviar mensagem")
		return nil, err
	}

	sender := s.session.Status().Phone
	if sender == "" {
		sender = outboundSender
	}

	message := &domain.Message{
		MessageID: messageID,
		Sender:    sender,
		Text:      text,
		Timestamp: s.now(),
		IsFromMe:  true,
		LeadID:    lead.ID,
	}

	if err := s.messageRepository.Insert(ctx, message); err != nil {
		metrics.WhatsAppMessages.WithLabelValues(pathOutbound, "error").Inc()
		logger.WithError(err).WithField("message_id", messageID).Error("whatsapp: mensagem enviada mas não registrada")
		return nil, err
	}

	if err := s.leadRepository.MarkMessageSent(ctx, lead.ID); err != nil {
		logger.WithError(err).Warn("whatsapp: falha ao marcar lead como contatado")
	}

	metrics.WhatsAppMessages.WithLabelValues(pathOutbound, "saved").Inc()
	logger.WithField("message_id", messageID).Info("whatsapp: mensagem enviada")

	return message, nil
}

func (s *Service) ListMessages(ctx context.Context, leadID int64) ([]*domain.Message, error) {
	lead, err := s.leadRepository.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.NewNotFoundError("lead não encontrado")
	}

	return s.messageRepository.ListByLead(ctx, leadID, 0)
}

func (s *Service) timestampOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t
}
