package whatsappclient

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	whatsappdomain "github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
)

// GetMessages busca uma página das mensagens mais recentes do histórico
func (c *WhatsAppClient) GetMessages(ctx context.Context, limit int) ([]whatsappdomain.Message, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	endpoint, err := c.endpoint("/messages", query)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var response whatsappdomain.MessagesResponse
	if err := c.do(req, &response); err != nil {
		return nil, err
	}

	return response.Messages, nil
}

// SendText envia uma mensagem de texto e retorna o id atribuído pelo gateway
func (c *WhatsAppClient) SendText(ctx context.Context, to, text string) (string, error) {
	body, err := json.Marshal(whatsappdomain.SendMessageRequest{To: to, Text: text})
	if err != nil {
		return "", errors.Wrap(err, "erro ao serializar a mensagem")
	}

	endpoint, err := c.endpoint("/messages", nil)
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var response whatsappdomain.SendMessageResponse
	if err := c.do(req, &response); err != nil {
		return "", err
	}

	if response.ID == "" {
		return "", &domain.ProviderError{StatusCode: http.StatusOK, Detail: "gateway não retornou o id da mensagem"}
	}

	return response.ID, nil
}
