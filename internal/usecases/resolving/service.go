package resolving

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vfg2006/leads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"github.com/vfg2006/leads-dashboard-api/pkg/metrics"
	"github.com/vfg2006/leads-dashboard-api/pkg/phone"
)

// EmailMode define o que acontece quando o email já pertence a um lead
type EmailMode int

const (
	// UpdateOnMatch sobrescreve nome, telefone, origem e created_at (importação)
	UpdateOnMatch EmailMode = iota
	// KeepOnMatch devolve o lead existente sem alterações (webhooks)
	KeepOnMatch
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

// IdentityResolver encontra ou cria o lead dono de uma chave de identidade.
// Telefone e email são chaves independentes: não há cruzamento entre elas.
type IdentityResolver interface {
	ResolveByPhone(ctx context.Context, rawPhone string) (*domain.Lead, domain.Resolution, error)
	ResolveByEmail(ctx context.Context, fields domain.LeadFields, mode EmailMode) (*domain.Lead, domain.Resolution, error)
}

type Service struct {
	leadRepository repository.LeadRepository
	now            func() time.Time
}

func NewService(leadRepository repository.LeadRepository) *Service {
	return &Service{
		leadRepository: leadRepository,
		now:            time.Now,
	}
}

// PlaceholderLead monta o lead criado quando só o telefone é conhecido
func PlaceholderLead(normalizedPhone string, createdAt time.Time) *domain.Lead {
	return &domain.Lead{
		Name:      "WhatsApp User " + phone.LastDigits(normalizedPhone, 4),
		Email:     fmt.Sprintf("whatsapp_%s@example.com", normalizedPhone),
		Phone:     normalizedPhone,
		Source:    domain.WhatsAppSource,
		Status:    domain.DefaultLeadStatus,
		CreatedAt: createdAt,
	}
}

func (s *Service) ResolveByPhone(ctx context.Context, rawPhone string) (*domain.Lead, domain.Resolution, error) {
	normalized := phone.Normalize(rawPhone)
	if normalized == "" {
		return nil, "", domain.NewValidationError("phone", "telefone vazio ou inválido")
	}

	lead, created, err := s.leadRepository.FindOrCreateByPhone(ctx, PlaceholderLead(normalized, s.now()))
	if err != nil {
		metrics.LeadsResolved.WithLabelValues("phone", "error").Inc()
		return nil, "", err
	}

	resolution := domain.ResolutionMatched
	if created {
		resolution = domain.ResolutionCreated
		log.ForContext(ctx).WithFields(log.Fields{
			"lead_id":    lead.ID,
			"lead_phone": normalized,
		}).Info("resolver: lead criado a partir do telefone")
	}

	metrics.LeadsResolved.WithLabelValues("phone", string(resolution)).Inc()
	return lead, resolution, nil
}

func (s *Service) ResolveByEmail(ctx context.Context, fields domain.LeadFields, mode EmailMode) (*domain.Lead, domain.Resolution, error) {
	email := strings.ToLower(strings.TrimSpace(fields.Email))
	if email == "" {
		return nil, "", domain.NewValidationError("email", "email vazio")
	}

	candidate := &domain.Lead{
		Name:      strings.TrimSpace(fields.Name),
		Email:     email,
		Phone:     strings.TrimSpace(fields.Phone),
		Source:    strings.TrimSpace(fields.Source),
		Status:    domain.DefaultLeadStatus,
		CreatedAt: s.now(),
	}

	lead, inserted, err := s.leadRepository.UpsertByEmail(ctx, candidate, mode == UpdateOnMatch)
	if err != nil {
		metrics.LeadsResolved.WithLabelValues("email", "error").Inc()
		return nil, "", err
	}

	var resolution domain.Resolution
	switch {
	case inserted:
		resolution = domain.ResolutionCreated
	case mode == UpdateOnMatch:
		resolution = domain.ResolutionUpdated
	default:
		resolution = domain.ResolutionMatched
	}

	metrics.LeadsResolved.WithLabelValues("email", string(resolution)).Inc()
	return lead, resolution, nil
}
