package whatsappclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	whatsappdomain "github.com/vfg2006/leads-dashboard-api/infrastructure/integrator/whatsapp/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/config"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:generate mockgen -source=client.go -destination=../mocks/client.go -package=mocks

type Client interface {
	GetSessionStatus(ctx context.Context) (*whatsappdomain.SessionStatusResponse, error)
	GetMessages(ctx context.Context, limit int) ([]whatsappdomain.Message, error)
	SendText(ctx context.Context, to, text string) (string, error)
	Close()
}

type WhatsAppClient struct {
	httpClient *http.Client
	config     config.WhatsApp
}

func NewClient(cfg config.WhatsApp) Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &WhatsAppClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config: cfg,
	}
}

// Close libera as conexões ociosas com o gateway
func (c *WhatsAppClient) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *WhatsAppClient) endpoint(p string, query url.Values) (string, error) {
	endpoint, err := url.Parse(c.config.GatewayURL)
	if err != nil {
		return "", errors.Wrap(err, "erro ao analisar a URL base")
	}
	endpoint.Path = path.Join(endpoint.Path, p)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}
	return endpoint.String(), nil
}

func (c *WhatsAppClient) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao criar a requisição")
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	}
	if c.config.PhoneNumberID != "" {
		req.Header.Set("X-Phone-Number-Id", c.config.PhoneNumberID)
	}

	return req, nil
}

// do executa a requisição e decodifica a resposta em out. Falhas de transporte
// e status >= 400 viram ProviderError com o detalhe devolvido pelo gateway.
func (c *WhatsAppClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ProviderError{Detail: "falha ao comunicar com o gateway", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ProviderError{StatusCode: resp.StatusCode, Detail: "erro ao ler a resposta", Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &domain.ProviderError{StatusCode: resp.StatusCode, Detail: errorDetail(data, resp.Status)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &domain.ProviderError{StatusCode: resp.StatusCode, Detail: "resposta inválida do gateway", Err: err}
	}

	return nil
}

func errorDetail(body []byte, status string) string {
	var errResp whatsappdomain.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}

	return status
}
