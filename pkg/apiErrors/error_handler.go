package apiErrors

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Erros de validação
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrImportFailed        = "VAL_004" // Todas as linhas da importação falharam

	// Erros de recurso
	ErrLeadNotFound     = "RES_001" // Lead não encontrado
	ErrConflict         = "RES_002" // Registro duplicado
	ErrRouteNotFound    = "RES_003" // Rota inexistente
	ErrMethodNotAllowed = "RES_004" // Método não suportado na rota

	// Erros de limite
	ErrTooManyRequests = "LIM_001" // Limite de requisições excedido

	// Erros do servidor
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
	ErrExternalService   = "SRV_003" // Erro em serviço externo
	ErrCommunication     = "SRV_004" // Serviço externo indisponível
)

var httpStatusMap = map[string]int{
	ErrInvalidRequest:      http.StatusBadRequest,
	ErrMissingRequiredData: http.StatusBadRequest,
	ErrInvalidFormat:       http.StatusBadRequest,
	ErrImportFailed:        http.StatusBadRequest,
	ErrLeadNotFound:        http.StatusNotFound,
	ErrConflict:            http.StatusConflict,
	ErrRouteNotFound:       http.StatusNotFound,
	ErrMethodNotAllowed:    http.StatusMethodNotAllowed,
	ErrTooManyRequests:     http.StatusTooManyRequests,
	ErrInternalServer:      http.StatusInternalServerError,
	ErrDatabaseOperation:   http.StatusInternalServerError,
	ErrExternalService:     http.StatusBadGateway,
	ErrCommunication:       http.StatusServiceUnavailable,
}

// APIError representa um erro de API padronizado
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// StatusFor retorna o status HTTP associado ao código
func StatusFor(code string) int {
	status, exists := httpStatusMap[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Code:    code,
		Message: message,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	json.NewEncoder(w).Encode(apiErr)
}

// CodeFor traduz um erro de domínio para o código de API correspondente
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ErrInternalServer
	case errors.Is(err, domain.ErrAllRowsFailed):
		return ErrImportFailed
	case errors.Is(err, domain.ErrValidation):
		return ErrInvalidFormat
	case errors.Is(err, domain.ErrNotFound):
		return ErrLeadNotFound
	case errors.Is(err, domain.ErrDuplicateMessage):
		return ErrConflict
	case errors.Is(err, domain.ErrSessionNotReady):
		return ErrCommunication
	case errors.Is(err, domain.ErrExternalProvider):
		return ErrExternalService
	case errors.Is(err, domain.ErrStore):
		return ErrDatabaseOperation
	default:
		return ErrInternalServer
	}
}

// WriteDomainError escreve a resposta a partir de um erro de domínio,
// incluindo os motivos por item quando o erro for de lote
func WriteDomainError(w http.ResponseWriter, err error) {
	code := CodeFor(err)

	var details any
	var leadErr *domain.LeadError
	if errors.As(err, &leadErr) {
		if len(leadErr.Reasons) > 0 {
			details = leadErr.Reasons
		} else if leadErr.Field != "" {
			details = map[string]string{"field": leadErr.Field}
		}
	}

	var providerErr *domain.ProviderError
	if errors.As(err, &providerErr) && providerErr.Detail != "" {
		details = map[string]any{
			"provider_status": providerErr.StatusCode,
			"provider_detail": providerErr.Detail,
		}
	}

	WriteError(w, code, err.Error(), details)
}
