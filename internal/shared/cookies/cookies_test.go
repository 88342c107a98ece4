package cookies

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wizardgo/internal/shared/config"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"http://localhost:3000", ""},
		{"http://127.0.0.1:3000", ""},
		{"https://play.wizardgo.app", "play.wizardgo.app"},
		{"https://play.wizardgo.app:8443", "play.wizardgo.app"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		if got := extractDomain(tt.url); got != tt.want {
			t.Errorf("extractDomain(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSetAndClearAuthCookie(t *testing.T) {
	policy := NewPolicy(&config.Config{
		Frontend: config.FrontendConfig{URL: "http://localhost:3000"},
		Auth: config.AuthConfig{
			TokenExpiration: 2 * time.Hour,
			CookieSameSite:  "strict",
		},
	})

	rec := httptest.NewRecorder()
	policy.SetAuthCookie(rec, "tok")
	set := rec.Result().Cookies()
	if len(set) != 1 {
		t.Fatalf("got %d cookies, want 1", len(set))
	}
	c := set[0]
	if c.Name != AuthCookieName || c.Value != "tok" || !c.HttpOnly || c.MaxAge != 7200 || c.SameSite != http.SameSiteStrictMode {
		t.Errorf("unexpected cookie %+v", c)
	}

	rec = httptest.NewRecorder()
	policy.ClearAuthCookie(rec)
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 || cleared[0].Value != "" {
		t.Errorf("unexpected cleared cookie %+v", cleared)
	}
}
