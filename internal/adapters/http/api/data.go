package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/ringlens/internal/adapters/repository"
)

type filesResponse struct {
	Files     []string `json:"files"`
	Count     int      `json:"count"`
	SessionID string   `json:"session_id"`
}

// HandleFiles handles GET /files requests. With nothing uploaded it returns
// an empty list rather than an error.
func (s *Server) HandleFiles(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Session(r.Context(), sessionID(r))
	if errors.Is(err, repository.ErrNoSession) {
		writeJSON(w, http.StatusOK, filesResponse{Files: []string{}})
		return
	}
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}
	files := sess.Files()
	writeJSON(w, http.StatusOK, filesResponse{Files: files, Count: len(files), SessionID: sess.ID()})
}

// HandleData handles GET /data/{filename} requests. ?derived=true returns
// the rows with flattened and derived columns.
func (s *Server) HandleData(w http.ResponseWriter, r *http.Request) {
	derived, _ := strconv.ParseBool(r.URL.Query().Get("derived"))
	rows, err := s.deps.Rows(r.Context(), sessionID(r), r.PathValue("filename"), derived)
	if errors.Is(err, repository.ErrNoSession) {
		writeError(w, http.StatusNotFound, "file_not_found", "File not found")
		return
	}
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleSessions handles GET /sessions requests.
func (s *Server) HandleSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Sessions(r.Context())
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": list, "count": len(list)})
}
