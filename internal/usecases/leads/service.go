package leads

import (
	"context"
	"strings"

	"github.com/vfg2006/leads-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/resolving"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"github.com/vfg2006/leads-dashboard-api/pkg/validation"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks
type LeadService interface {
	CreateLead(ctx context.Context, fields domain.LeadFields) (*domain.Lead, domain.Resolution, error)
	CreateFromForm(ctx context.Context, payload map[string]string) (*domain.Lead, domain.Resolution, error)
	GetLead(ctx context.Context, id int64) (*domain.Lead, error)
	ListLeads(ctx context.Context, filters domain.LeadFilters) (*domain.LeadListResponse, error)
	UpdateLead(ctx context.Context, request *domain.UpdateLeadRequest) (*domain.Lead, error)
	DeleteLead(ctx context.Context, id int64) error
}

type Service struct {
	leadRepository repository.LeadRepository
	resolver       resolving.IdentityResolver
}

func NewService(leadRepository repository.LeadRepository, resolver resolving.IdentityResolver) LeadService {
	return &Service{
		leadRepository: leadRepository,
		resolver:       resolver,
	}
}

// CreateLead cria o lead vindo de um webhook. Um email já cadastrado devolve
// o lead existente sem alterações.
func (s *Service) CreateLead(ctx context.Context, fields domain.LeadFields) (*domain.Lead, domain.Resolution, error) {
	fields = domain.LeadFields{
		Name:   strings.TrimSpace(fields.Name),
		Email:  strings.ToLower(strings.TrimSpace(fields.Email)),
		Phone:  strings.TrimSpace(fields.Phone),
		Source: strings.TrimSpace(fields.Source),
	}

	if err := validation.Struct(fields); err != nil {
		return nil, "", err
	}

	lead, resolution, err := s.resolver.ResolveByEmail(ctx, fields, resolving.KeepOnMatch)
	if err != nil {
		log.ForContext(ctx).WithError(err).Error("leads: falha ao criar lead")
		return nil, "", err
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"lead_id":         lead.ID,
		"lead_source":     lead.Source,
		"lead_resolution": resolution,
	}).Info("leads: lead recebido")

	return lead, resolution, nil
}

func (s *Service) CreateFromForm(ctx context.Context, payload map[string]string) (*domain.Lead, domain.Resolution, error) {
	return s.CreateLead(ctx, NormalizeForm(payload))
}

func (s *Service) GetLead(ctx context.Context, id int64) (*domain.Lead, error) {
	lead, err := s.leadRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, domain.NewNotFoundError("lead não encontrado")
	}
	return lead, nil
}

func (s *Service) ListLeads(ctx context.Context, filters domain.LeadFilters) (*domain.LeadListResponse, error) {
	if filters.Limit == 0 {
		filters.Limit = defaultListLimit
	}
	if filters.Limit > maxListLimit {
		filters.Limit = maxListLimit
	}

	leads, total, err := s.leadRepository.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	return &domain.LeadListResponse{
		Leads: leads,
		Total: total,
	}, nil
}

// UpdateLead aplica apenas os campos informados. Email e created_at não mudam por aqui.
func (s *Service) UpdateLead(ctx context.Context, request *domain.UpdateLeadRequest) (*domain.Lead, error) {
	lead, err := s.GetLead(ctx, request.ID)
	if err != nil {
		return nil, err
	}

	if request.Name != nil {
		name := strings.TrimSpace(*request.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "nome não pode ser vazio")
		}
		lead.Name = name
	}
	if request.Phone != nil {
		lead.Phone = strings.TrimSpace(*request.Phone)
	}
	if request.Source != nil {
		lead.Source = strings.TrimSpace(*request.Source)
	}
	if request.Status != nil {
		status := strings.TrimSpace(*request.Status)
		if status == "" {
			return nil, domain.NewValidationError("status", "status não pode ser vazio")
		}
		lead.Status = status
	}
	if request.MessageSent != nil {
		lead.MessageSent = *request.MessageSent
	}

	if err := s.leadRepository.Update(ctx, lead); err != nil {
		return nil, err
	}

	return s.GetLead(ctx, lead.ID)
}

func (s *Service) DeleteLead(ctx context.Context, id int64) error {
	if err := s.leadRepository.Delete(ctx, id); err != nil {
		return err
	}

	log.ForContext(ctx).WithField("lead_id", id).Info("leads: lead removido")
	return nil
}
