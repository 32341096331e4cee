package handler

import (
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxJSONBody limita o corpo das requisições JSON
const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.ForContext(r.Context()).WithError(err).Error("Erro ao codificar resposta")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		log.ForContext(r.Context()).WithError(err).Warn("Corpo da requisição inválido")
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Corpo da requisição inválido", nil)
		return false
	}
	return true
}

// leadIDParam lê o parâmetro :id da rota
func leadIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := httprouter.ParamsFromContext(r.Context()).ByName("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "ID do lead inválido", map[string]string{"field": "id"})
		return 0, false
	}
	return id, true
}

func statusForResolution(resolution domain.Resolution) int {
	if resolution == domain.ResolutionCreated {
		return http.StatusCreated
	}
	return http.StatusOK
}
