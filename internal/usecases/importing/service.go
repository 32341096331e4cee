package importing

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/vfg2006/leads-dashboard-api/internal/config"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/resolving"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"github.com/vfg2006/leads-dashboard-api/pkg/metrics"
	"github.com/vfg2006/leads-dashboard-api/pkg/utils"
)

const previewSampleSize = 5

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks
type ImportService interface {
	ImportBatch(ctx context.Context, rows []domain.ImportRow) (*domain.ImportResult, error)
	ImportFile(ctx context.Context, filename string, file io.Reader, options FileOptions) (*domain.ImportResult, error)
	Preview(ctx context.Context, filename string, file io.Reader) (*domain.ImportPreview, error)
}

// FileOptions controla como as colunas do arquivo viram campos do lead
type FileOptions struct {
	Mapping       *domain.ColumnMapping
	DefaultSource string
}

type Service struct {
	resolver resolving.IdentityResolver
	cfg      config.Import
}

func NewService(resolver resolving.IdentityResolver, cfg config.Import) ImportService {
	return &Service{
		resolver: resolver,
		cfg:      cfg,
	}
}

// ImportBatch processa as linhas na ordem recebida. A falha de uma linha é
// contabilizada e não interrompe as demais; se todas falharem o lote inteiro
// falha com os motivos de cada linha.
func (s *Service) ImportBatch(ctx context.Context, rows []domain.ImportRow) (*domain.ImportResult, error) {
	if len(rows) == 0 {
		return nil, domain.NewValidationError("leads", "nenhum lead informado para importação")
	}
	if s.cfg.MaxRows > 0 && len(rows) > s.cfg.MaxRows {
		return nil, domain.NewValidationError("leads", fmt.Sprintf("limite de %d linhas por importação excedido", s.cfg.MaxRows))
	}

	batchID, err := utils.GenerateID()
	if err != nil {
		log.ForContext(ctx).WithError(err).Warn("import: não foi possível gerar o id do lote")
	}
	logger := log.ForContext(ctx).WithFields(log.Fields{
		"import_batch_id": batchID,
		"import_rows":     len(rows),
	})
	logger.Info("import: iniciando lote")

	result := &domain.ImportResult{Errors: []string{}}

	for i, row := range rows {
		line := i + 1

		fields, reason := normalizeRow(row)
		if reason != "" {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Linha %d: %s", line, reason))
			metrics.LeadsImported.WithLabelValues("failed").Inc()
			continue
		}

		_, resolution, err := s.resolver.ResolveByEmail(ctx, fields, resolving.UpdateOnMatch)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Linha %d (%s): %v", line, fields.Email, err))
			metrics.LeadsImported.WithLabelValues("failed").Inc()
			logger.WithError(err).WithField("import_line", line).Warn("import: falha ao gravar linha")
			continue
		}

		if resolution == domain.ResolutionUpdated {
			result.Updated++
			metrics.LeadsImported.WithLabelValues("updated").Inc()
		} else {
			result.Success++
			metrics.LeadsImported.WithLabelValues("created").Inc()
		}
	}

	logger.WithFields(log.Fields{
		"import_success": result.Success,
		"import_updated": result.Updated,
		"import_failed":  result.Failed,
	}).Info("import: lote finalizado")

	if result.Failed == len(rows) {
		return result, &domain.LeadError{
			Err:     domain.ErrAllRowsFailed,
			Details: fmt.Sprintf("%d linhas rejeitadas", result.Failed),
			Reasons: result.Errors,
		}
	}

	return result, nil
}

// normalizeRow aplica trim em todos os campos e lower-case no email.
// Retorna o motivo da rejeição quando a linha é inválida.
func normalizeRow(row domain.ImportRow) (domain.LeadFields, string) {
	fields := domain.LeadFields{
		Name:   strings.TrimSpace(row.Name),
		Email:  strings.ToLower(strings.TrimSpace(row.Email)),
		Phone:  strings.TrimSpace(row.Phone),
		Source: strings.TrimSpace(row.Source),
	}

	missing := make([]string, 0, 4)
	if fields.Name == "" {
		missing = append(missing, "nome")
	}
	if fields.Email == "" {
		missing = append(missing, "email")
	}
	if fields.Phone == "" {
		missing = append(missing, "telefone")
	}
	if fields.Source == "" {
		missing = append(missing, "origem")
	}
	if len(missing) > 0 {
		return fields, fmt.Sprintf("campos obrigatórios ausentes (%s)", strings.Join(missing, ", "))
	}

	if !strings.Contains(fields.Email, "@") {
		return fields, fmt.Sprintf("email inválido (%s)", fields.Email)
	}

	return fields, ""
}

func (s *Service) ImportFile(ctx context.Context, filename string, file io.Reader, options FileOptions) (*domain.ImportResult, error) {
	document, err := ParseSpreadsheet(filename, file)
	if err != nil {
		return nil, err
	}

	rows := MapRecords(document, options.Mapping, options.DefaultSource, s.cfg.DefaultSource)
	return s.ImportBatch(ctx, rows)
}

func (s *Service) Preview(ctx context.Context, filename string, file io.Reader) (*domain.ImportPreview, error) {
	document, err := ParseSpreadsheet(filename, file)
	if err != nil {
		return nil, err
	}

	sample := document.Records
	if len(sample) > previewSampleSize {
		sample = sample[:previewSampleSize]
	}

	return &domain.ImportPreview{
		Headers:   document.Headers,
		Sample:    sample,
		TotalRows: len(document.Records),
		Suggested: SuggestMapping(document.Headers),
	}, nil
}
