package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/leads"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/messaging"
	"github.com/vfg2006/leads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
	"github.com/vfg2006/leads-dashboard-api/pkg/utils"
)

// CreateLead cadastra um lead pelo dashboard. Email já existente devolve o lead atual com 200.
func CreateLead(service leads.LeadService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var fields domain.LeadFields
		if !decodeJSON(w, r, &fields) {
			return
		}

		lead, resolution, err := service.CreateLead(r.Context(), fields)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Warn("leads: erro ao criar lead")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, statusForResolution(resolution), lead)
	})
}

func ListLeads(service leads.LeadService, location *time.Location) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filters := domain.LeadFilters{
			Status: query.Get("status"),
			Source: query.Get("source"),
			Search: query.Get("search"),
		}

		var err error
		if filters.Limit, err = parseUintParam(query.Get("limit")); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro limit inválido", map[string]string{"field": "limit"})
			return
		}
		if filters.Offset, err = parseUintParam(query.Get("offset")); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Parâmetro offset inválido", map[string]string{"field": "offset"})
			return
		}

		if filters.CreatedFrom, err = utils.ParseDate(query.Get("created_from"), location); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Data inicial inválida, use yyyy-mm-dd", map[string]string{"field": "created_from"})
			return
		}
		createdTo, err := utils.ParseDate(query.Get("created_to"), location)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Data final inválida, use yyyy-mm-dd", map[string]string{"field": "created_to"})
			return
		}
		if createdTo != nil {
			// created_to é inclusivo: o filtro usa o início do dia seguinte
			end := createdTo.AddDate(0, 0, 1)
			filters.CreatedTo = &end
		}

		response, err := service.ListLeads(r.Context(), filters)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("leads: erro ao listar leads")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, response)
	})
}

func parseUintParam(raw string) (uint64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func GetLead(service leads.LeadService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := leadIDParam(w, r)
		if !ok {
			return
		}

		lead, err := service.GetLead(r.Context(), id)
		if err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, lead)
	})
}

func UpdateLead(service leads.LeadService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := leadIDParam(w, r)
		if !ok {
			return
		}

		var request domain.UpdateLeadRequest
		if !decodeJSON(w, r, &request) {
			return
		}
		request.ID = id

		lead, err := service.UpdateLead(r.Context(), &request)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).WithField("lead_id", id).Warn("leads: erro ao atualizar lead")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, lead)
	})
}

func DeleteLead(service leads.LeadService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := leadIDParam(w, r)
		if !ok {
			return
		}

		if err := service.DeleteLead(r.Context(), id); err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func ListLeadMessages(service messaging.ConversationService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := leadIDParam(w, r)
		if !ok {
			return
		}

		messages, err := service.ListMessages(r.Context(), id)
		if err != nil {
			apiErrors.WriteDomainError(w, err)
			return
		}
		if messages == nil {
			messages = []*domain.Message{}
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"messages": messages})
	})
}
