package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware(Config{Enabled: true, Token: "s3cret"})(ok)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"exempt svg", "/orbit.svg", "", http.StatusOK},
		{"exempt health", "/healthz", "", http.StatusOK},
		{"missing token", "/api/v1/scene", "", http.StatusUnauthorized},
		{"wrong token", "/api/v1/scene", "Bearer nope", http.StatusUnauthorized},
		{"not bearer", "/api/v1/scene", "Basic s3cret", http.StatusUnauthorized},
		{"good token", "/api/v1/scene", "Bearer s3cret", http.StatusOK},
		{"query token", "/api/v1/stream/frames?token=s3cret", "", http.StatusOK},
		{"bad query token", "/api/v1/stream/frames?token=x", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestMiddlewareDisabled(t *testing.T) {
	h := Middleware(Config{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/scene", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}
