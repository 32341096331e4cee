package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/vfg2006/leads-dashboard-api/internal/domain"
	"github.com/vfg2006/leads-dashboard-api/internal/usecases/importing"
	"github.com/vfg2006/leads-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/leads-dashboard-api/pkg/log"
)

const defaultMaxUploadMB = 10

type importResponse struct {
	Message string               `json:"message"`
	Results *domain.ImportResult `json:"results"`
}

func importMessage(result *domain.ImportResult) string {
	return fmt.Sprintf("Importação concluída: %d novos, %d atualizados, %d com erro",
		result.Success, result.Updated, result.Failed)
}

// ImportLeads recebe o lote já mapeado pelo dashboard
func ImportLeads(service importing.ImportService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request domain.ImportRequest
		if !decodeJSON(w, r, &request) {
			return
		}

		result, err := service.ImportBatch(r.Context(), request.Leads)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Warn("import: lote rejeitado")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, importResponse{
			Message: importMessage(result),
			Results: result,
		})
	})
}

// ImportFile recebe um CSV/XLSX via multipart. O campo "mapping" (JSON) define
// as colunas e "source" sobrescreve a origem de todas as linhas.
func ImportFile(service importing.ImportService, maxUploadMB int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upload, ok := readUpload(w, r, maxUploadMB)
		if !ok {
			return
		}
		defer upload.close()

		options := importing.FileOptions{
			DefaultSource: strings.TrimSpace(r.FormValue("source")),
		}

		if raw := strings.TrimSpace(r.FormValue("mapping")); raw != "" {
			var mapping domain.ColumnMapping
			if err := json.UnmarshalFromString(raw, &mapping); err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Mapeamento de colunas inválido", map[string]string{"field": "mapping"})
				return
			}
			options.Mapping = &mapping
		}

		logger := log.ForContext(r.Context()).WithFields(log.Fields{
			"import_file": upload.filename,
			"import_size": upload.size,
		})
		logger.Info("import: arquivo recebido")

		result, err := service.ImportFile(r.Context(), upload.filename, upload.file, options)
		if err != nil {
			logger.WithError(err).Warn("import: arquivo rejeitado")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, importResponse{
			Message: importMessage(result),
			Results: result,
		})
	})
}

// PreviewImport devolve cabeçalhos, amostra e o mapeamento sugerido sem gravar nada
func PreviewImport(service importing.ImportService, maxUploadMB int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upload, ok := readUpload(w, r, maxUploadMB)
		if !ok {
			return
		}
		defer upload.close()

		preview, err := service.Preview(r.Context(), upload.filename, upload.file)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Warn("import: falha na pré-visualização")
			apiErrors.WriteDomainError(w, err)
			return
		}

		writeJSON(w, r, http.StatusOK, preview)
	})
}
