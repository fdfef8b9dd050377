package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecureHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecureHeaders(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/businesses", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Permissions-Policy":     "camera=(), microphone=(), geolocation=()",
	}
	for header, value := range want {
		if got := rec.Header().Get(header); got != value {
			t.Fatalf("%s = %q, want %q", header, got, value)
		}
	}
}

func TestNoStore(t *testing.T) {
	rec := httptest.NewRecorder()
	NoStore(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/x/results", nil))

	if got := rec.Header().Get("Cache-Control"); got != "no-store, no-cache, must-revalidate, max-age=0" {
		t.Fatalf("Cache-Control = %q", got)
	}
	if rec.Header().Get("Pragma") != "no-cache" || rec.Header().Get("Expires") != "0" {
		t.Fatalf("legacy no-cache headers missing: %v", rec.Header())
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	CORS(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/sessions", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Allow-Origin = %q", got)
	}
}
