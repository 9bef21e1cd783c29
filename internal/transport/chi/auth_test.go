package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	for _, keys := range [][]string{nil, {"", ""}} {
		handler := BearerAuthMiddleware(keys)(okHandler())

		req := httptest.NewRequest(http.MethodGet, PathSearch, http.NoBody)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("keys %q: got %d, want %d", keys, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{"missing header", http.MethodGet, PathSearch, "", http.StatusUnauthorized},
		{"basic scheme", http.MethodGet, PathSearch, "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"invalid token", http.MethodPost, PathDocuments, "Bearer wrong-key", http.StatusUnauthorized},
		{"empty token", http.MethodGet, PathSearch, "Bearer ", http.StatusUnauthorized},
		{"first key", http.MethodGet, PathSearch, "Bearer key1", http.StatusOK},
		{"second key", http.MethodPost, PathDocuments, "Bearer key2", http.StatusOK},
		{"health exempt", http.MethodGet, PathHealth, "", http.StatusOK},
		{"metrics exempt", http.MethodGet, PathMetrics, "", http.StatusOK},
		{"preflight exempt", http.MethodOptions, PathSearch, "", http.StatusOK},
	}

	handler := BearerAuthMiddleware([]string{"key1", "key2"})(okHandler())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("got %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusUnauthorized {
				return
			}

			if rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != ErrorResponseCodeUnauthorized {
				t.Errorf("error code: got %s, want %s", errResp.Code, ErrorResponseCodeUnauthorized)
			}
		})
	}
}
