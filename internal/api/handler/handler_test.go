package handler

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vfg2006/leads-dashboard-api/internal/api/handler/router"
	"github.com/vfg2006/leads-dashboard-api/pkg/apiErrors"
)

func serve(routes []router.Route, req *http.Request) *httptest.ResponseRecorder {
	rt := router.New(router.WithRoutes(routes...))
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), target))
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) apiErrors.APIError {
	t.Helper()
	var apiErr apiErrors.APIError
	decodeBody(t, rec, &apiErr)
	return apiErr
}
