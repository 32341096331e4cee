package domain

import (
	"errors"
	"fmt"
)

// Taxonomia de erros do pipeline de ingestão
var (
	ErrValidation       = errors.New("dados inválidos")
	ErrNotFound         = errors.New("registro não encontrado")
	ErrExternalProvider = errors.New("erro no provedor externo")
	ErrStore            = errors.New("erro de armazenamento")
	ErrDuplicateMessage = errors.New("mensagem já registrada")
	ErrAllRowsFailed    = errors.New("nenhuma linha pôde ser importada")
	ErrSessionNotReady  = errors.New("sessão do WhatsApp não está pronta")
)

// LeadError é um erro com contexto adicional para as operações de leads
type LeadError struct {
	Err     error    // Erro base
	Field   string   // Campo envolvido (quando aplicável)
	Details string   // Detalhes adicionais
	Reasons []string // Motivos por item em falhas de lote
}

func (e *LeadError) Error() string {
	if e.Field != "" && e.Details != "" {
		return fmt.Sprintf("%s: %s: %s", e.Err.Error(), e.Field, e.Details)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *LeadError) Unwrap() error {
	return e.Err
}

func NewValidationError(field, details string) *LeadError {
	return &LeadError{Err: ErrValidation, Field: field, Details: details}
}

func NewNotFoundError(details string) *LeadError {
	return &LeadError{Err: ErrNotFound, Details: details}
}

// ProviderError carrega o detalhe devolvido pelo provedor de mensagens
type ProviderError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (status %d): %s: %v", ErrExternalProvider.Error(), e.StatusCode, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s (status %d): %s", ErrExternalProvider.Error(), e.StatusCode, e.Detail)
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrExternalProvider
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
