package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/penalty/internal/adapters/source"
	service "github.com/okian/penalty/internal/app"
	"github.com/okian/penalty/internal/domain/model"
)

// query reads typed parameters from a URL query. The first failure is kept
// in err and later reads become no-ops.
type query struct {
	op     string
	values url.Values
	err    error
}

func newQuery(op string, r *http.Request) *query {
	return &query{op: op, values: r.URL.Query()}
}

func (q *query) str(key string) string {
	return strings.TrimSpace(q.values.Get(key))
}

func (q *query) fail(key string, err error) {
	if q.err == nil {
		q.err = WrapKind(q.op, ErrBadRequest, &paramError{key: key, err: err})
	}
}

func (q *query) int(key string) int {
	raw := q.str(key)
	if raw == "" || q.err != nil {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		q.fail(key, strconv.ErrSyntax)
		return 0
	}
	return n
}

func (q *query) bool(key string) bool {
	raw := q.str(key)
	if raw == "" || q.err != nil {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		q.fail(key, strconv.ErrSyntax)
	}
	return b
}

func (q *query) role() model.Role {
	raw := q.str("role")
	if raw == "" || q.err != nil {
		return model.Shooter
	}
	r, err := model.ParseRole(raw)
	if err != nil {
		q.fail("role", err)
	}
	return r
}

func (q *query) outcome() model.Outcome {
	raw := q.str("outcome")
	if raw == "" || q.err != nil {
		return ""
	}
	o, err := model.ParseOutcome(raw)
	if err != nil {
		q.fail("outcome", err)
	}
	return o
}

// outcomes reads a comma-separated outcome list.
func (q *query) outcomes() []model.Outcome {
	return q.outcomeList("outcomes")
}

// outcomeList reads the comma-separated outcome list named key; absent
// means nil.
func (q *query) outcomeList(key string) []model.Outcome {
	raw := q.str(key)
	if raw == "" || q.err != nil {
		return nil
	}
	var out []model.Outcome
	for _, part := range strings.Split(raw, ",") {
		o, err := model.ParseOutcome(part)
		if err != nil {
			q.fail(key, err)
			return nil
		}
		out = append(out, o)
	}
	return out
}

// team reads the team name; empty selects the default team.
func (q *query) team() string {
	return q.str("team")
}

// window reads the optional start and end dates.
func (q *query) window() service.Window {
	return service.Window{From: q.date("start"), To: q.date("end")}
}

func (q *query) date(key string) time.Time {
	raw := q.str(key)
	if raw == "" || q.err != nil {
		return time.Time{}
	}
	t, err := source.ParseDate(raw)
	if err != nil {
		q.fail(key, err)
	}
	return t
}

type paramError struct {
	key string
	err error
}

func (e *paramError) Error() string { return "parameter " + e.key + ": " + e.err.Error() }

func (e *paramError) Unwrap() error { return e.err }
