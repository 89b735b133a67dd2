package api

import (
	"context"
	"net/http"

	service "github.com/okian/penalty/internal/app"
	"github.com/okian/penalty/internal/domain/types"
)

// RecordsDependencies defines the interface for records and recent penalties.
type RecordsDependencies interface {
	Records(ctx context.Context, team string, w service.Window) (types.Records, error)
	Recent(ctx context.Context, team string, n int) (types.Recent, error)
}

// RecordsHandler handles records requests.
type RecordsHandler struct {
	deps RecordsDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordsDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// HandleGetRecords handles GET /records?team=&start=&end=
func (h *RecordsHandler) HandleGetRecords(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_records"
	if r.Method != http.MethodGet {
		writeFailure(w, NewKind(op, ErrMethodNotAllowed))
		return
	}
	q := newQuery(op, r)
	win := q.window()
	if q.err != nil {
		writeFailure(w, q.err)
		return
	}
	out, err := h.deps.Records(r.Context(), q.team(), win)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetRecent handles GET /recent?team=&limit=N
func (h *RecordsHandler) HandleGetRecent(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_recent"
	if r.Method != http.MethodGet {
		writeFailure(w, NewKind(op, ErrMethodNotAllowed))
		return
	}
	q := newQuery(op, r)
	n := q.int("limit")
	if q.err != nil {
		writeFailure(w, q.err)
		return
	}
	out, err := h.deps.Recent(r.Context(), q.team(), n)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
