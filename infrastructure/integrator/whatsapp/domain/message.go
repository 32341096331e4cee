package domain

// Message é o formato de mensagem devolvido pelo gateway do WhatsApp
type Message struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"` // segundos desde epoch
	FromMe    bool   `json:"fromMe"`
}

type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

type SendMessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type SendMessageResponse struct {
	ID string `json:"id"`
}

type SessionStatusResponse struct {
	Connected bool   `json:"connected"`
	Phone     string `json:"phone"`
}

// ErrorResponse é o corpo de erro do gateway; nem todo gateway preenche os dois campos
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
