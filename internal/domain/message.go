package domain

import "time"

type Message struct {
	ID        int64     `json:"id"`
	MessageID string    `json:"messageId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsFromMe  bool      `json:"isFromMe"`
	LeadID    int64     `json:"leadId"`
	CreatedAt time.Time `json:"createdAt"`
}

// InboundMessage é o evento entregue pelo provedor via webhook (caminho push)
type InboundMessage struct {
	MessageID string    `json:"messageId" validate:"required"`
	Sender    string    `json:"sender" validate:"required"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ProviderMessage é um item da página de histórico consultada no provedor (caminho pull)
type ProviderMessage struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	FromMe    bool      `json:"fromMe"`
}

// Counterpart retorna o endereço do contato externo da conversa
func (m ProviderMessage) Counterpart() string {
	if m.FromMe {
		return m.To
	}
	return m.From
}

type SyncResult struct {
	Total   int `json:"total"`
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

type SendMessageRequest struct {
	LeadID  int64  `json:"leadId" validate:"required,gt=0"`
	Message string `json:"message" validate:"required"`
}

type InboundResult struct {
	Message   *Message `json:"message,omitempty"`
	Lead      *Lead    `json:"lead,omitempty"`
	Duplicate bool     `json:"duplicate"`
}
