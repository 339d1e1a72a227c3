package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/ringlens/internal/adapters/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleExport handles GET /export.xlsx requests.
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Session(r.Context(), sessionID(r))
	if err != nil {
		s.writeLookupError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Workbook(&buf, sess); err != nil {
		s.writeLookupError(w, r, err)
		return
	}

	id := sess.ID()
	if len(id) > 8 {
		id = id[:8]
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ringlens-"+id+".xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
