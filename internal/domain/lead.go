// Package domain contém as estruturas de dados do domínio da aplicação
package domain

import "time"

const (
	// DefaultLeadStatus é o estágio inicial de todo lead criado pelo pipeline
	DefaultLeadStatus = "Novo"
	// WhatsAppSource é a origem atribuída aos leads criados pela conversa do WhatsApp
	WhatsAppSource = "whatsapp"
	// UnknownSource rotula leads sem origem nas estatísticas
	UnknownSource = "Desconhecido"
)

type Lead struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Source      string    `json:"source"`
	Status      string    `json:"status"`
	MessageSent bool      `json:"messageSent"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LeadFields são os campos de identidade usados para criar ou atualizar um lead
type LeadFields struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone" validate:"required"`
	Source string `json:"source" validate:"required"`
}

type UpdateLeadRequest struct {
	ID          int64   `json:"-"`
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Source      *string `json:"source"`
	Status      *string `json:"status"`
	MessageSent *bool   `json:"messageSent"`
}

type LeadFilters struct {
	Status      string
	Source      string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       uint64
	Offset      uint64
}

type LeadListResponse struct {
	Leads []*Lead `json:"leads"`
	Total int64   `json:"total"`
}

// Resolution indica o que o resolvedor de identidade fez com o lead
type Resolution string

const (
	ResolutionCreated Resolution = "created"
	ResolutionUpdated Resolution = "updated"
	ResolutionMatched Resolution = "matched"
)
