package cookies

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"wizardgo/internal/shared/config"
)

const AuthCookieName = "auth_token"

// Policy carries the attributes shared by every auth cookie the server sets.
type Policy struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration
}

func NewPolicy(cfg *config.Config) Policy {
	return Policy{
		Domain:   extractDomain(cfg.Frontend.URL),
		Secure:   cfg.Auth.CookieSecure,
		SameSite: parseSameSite(cfg.Auth.CookieSameSite),
		MaxAge:   cfg.Auth.TokenExpiration,
	}
}

func (p Policy) SetAuthCookie(w http.ResponseWriter, token string) {
	cookie := p.authCookie()
	cookie.Value = token
	cookie.MaxAge = int(p.MaxAge.Seconds())

	http.SetCookie(w, cookie)
}

func (p Policy) ClearAuthCookie(w http.ResponseWriter) {
	cookie := p.authCookie()
	cookie.Value = ""
	cookie.MaxAge = -1

	http.SetCookie(w, cookie)
}

func (p Policy) authCookie() *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Path:     "/",
		Domain:   p.Domain,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}

func extractDomain(frontendURL string) string {
	parsedURL, err := url.Parse(frontendURL)
	if err != nil || parsedURL.Host == "" {
		return ""
	}

	host := strings.Split(parsedURL.Host, ":")[0]
	if host == "localhost" || host == "127.0.0.1" {
		return ""
	}

	return host
}

func parseSameSite(sameSiteStr string) http.SameSite {
	switch strings.ToLower(sameSiteStr) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
