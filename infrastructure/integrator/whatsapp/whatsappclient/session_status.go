package whatsappclient

import (
	"context"
	"net/http"

	whatsappdomain "github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp/domain"
)

func (c *WhatsAppClient) GetSessionStatus(ctx context.Context) (*whatsappdomain.SessionStatusResponse, error) {
	endpoint, err := c.endpoint("/session/status", nil)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var response whatsappdomain.SessionStatusResponse
	if err := c.do(req, &response); err != nil {
		return nil, err
	}

	return &response, nil
}
