package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	service "github.com/okian/ringlens/internal/app"
	"github.com/okian/ringlens/internal/domain/catalog"
	"github.com/okian/ringlens/internal/domain/table"
)

type uploadResponse struct {
	Success   bool                   `json:"success"`
	SessionID string                 `json:"session_id"`
	Files     []string               `json:"files"`
	Skipped   []string               `json:"skipped,omitempty"`
	Summary   string                 `json:"summary"`
	Overview  catalog.Overview       `json:"overview"`
	Data      map[string][]table.Row `json:"data"`
}

// HandleUpload handles POST /upload requests. Files are read from the
// multipart field "files"; any unreadable CSV rejects the whole upload.
func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", fmt.Errorf("%w: limit is %d bytes", ErrUploadTooLarge, s.maxUploadBytes).Error())
			return
		}
		writeError(w, http.StatusBadRequest, "no_files", "No files provided")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	uploads := make([]service.Upload, 0, len(headers))
	for _, h := range headers {
		uploads = append(uploads, fromHeader(h))
	}

	res, err := s.deps.Ingest(r.Context(), uploads, service.Strict)
	if err != nil {
		var fe *table.FileError
		switch {
		case errors.Is(err, service.ErrNoFiles):
			writeError(w, http.StatusBadRequest, "no_files", "No files provided")
		case errors.As(err, &fe):
			writeError(w, http.StatusBadRequest, "unreadable_file", fe.Error())
		case errors.Is(err, service.ErrNoValidFiles):
			writeError(w, http.StatusBadRequest, "no_valid_files", "No valid CSV files found")
		case errors.Is(err, service.ErrNoRecognizedExport):
			writeError(w, http.StatusBadRequest, "no_recognized_export", "No recognised Oura export found")
		default:
			s.writeLookupError(w, r, err)
		}
		return
	}

	sess := res.Session
	data := make(map[string][]table.Row, sess.Len())
	for _, f := range sess.Files() {
		data[f], _ = sess.Rows(f)
	}
	ds := sess.Dataset()
	writeJSON(w, http.StatusOK, uploadResponse{
		Success:   true,
		SessionID: sess.ID(),
		Files:     sess.Files(),
		Skipped:   res.Skipped,
		Summary:   s.deps.Summarize(r.Context(), ds),
		Overview:  sess.Overview(),
		Data:      data,
	})
}

func fromHeader(h *multipart.FileHeader) service.Upload {
	return service.Upload{Name: h.Filename, Open: func() (io.ReadCloser, error) {
		return h.Open()
	}}
}
