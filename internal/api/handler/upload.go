package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/vfg2006/leads-dashboard-api/pkg/apiErrors"
)

type upload struct {
	file     multipart.File
	filename string
	size     int64
}

func (u upload) close() {
	_ = u.file.Close()
}

// readUpload lê o campo "file" de um formulário multipart respeitando o limite em MB
func readUpload(w http.ResponseWriter, r *http.Request, maxUploadMB int64) (upload, bool) {
	if maxUploadMB <= 0 {
		maxUploadMB = defaultMaxUploadMB
	}
	limit := maxUploadMB << 20

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Arquivo inválido ou maior que o permitido", nil)
		return upload{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Arquivo não enviado", map[string]string{"field": "file"})
		return upload{}, false
	}

	return upload{file: file, filename: header.Filename, size: header.Size}, true
}
