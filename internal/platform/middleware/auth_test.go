package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"vms/pkg/requestcontext"
)

type tokenTable map[string]int64

func (t tokenTable) ValidateToken(token string) (*SessionClaims, error) {
	id, ok := t[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return &SessionClaims{VolunteerID: id, SessionID: "sess-" + token}, nil
}

func newAuthRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequireAuth(tokenTable{"alvaro": 1, "andrea": 2}, logger))
	r.Route("/api/volunteers/{vid}", func(r chi.Router) {
		r.Use(RequireSelf("vid", logger))
		r.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Volunteer", strconv.FormatInt(requestcontext.VolunteerID(r.Context()), 10))
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return r
}

func TestRequireAuthAndSelf(t *testing.T) {
	router := newAuthRouter()
	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/api/volunteers/1/profile", "", http.StatusUnauthorized},
		{"wrong scheme", "/api/volunteers/1/profile", "Basic alvaro", http.StatusUnauthorized},
		{"unknown token", "/api/volunteers/1/profile", "Bearer mallory", http.StatusUnauthorized},
		{"own profile", "/api/volunteers/1/profile", "Bearer alvaro", http.StatusNoContent},
		{"someone else", "/api/volunteers/1/profile", "Bearer andrea", http.StatusForbidden},
		{"malformed id", "/api/volunteers/abc/profile", "Bearer alvaro", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusNoContent {
				assert.Equal(t, "1", rec.Header().Get("X-Volunteer"))
			}
		})
	}
}
