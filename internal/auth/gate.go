package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/servify/servify-dashboard/internal/platform/httpx"
	"github.com/servify/servify-dashboard/internal/shared"
)

// TokenCookie carries the session token on page navigations.
const TokenCookie = "servify_token"

// LoginPath is where page requests without a usable token are redirected.
const LoginPath = "/"

// Gate rejects requests that don't carry a valid session token.
type Gate struct {
	tokens *TokenIssuer
	logger *slog.Logger
}

// NewGate constructs the session gate.
func NewGate(tokens *TokenIssuer, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{tokens: tokens, logger: logger}
}

// Require authorizes API requests from the Authorization bearer header.
func (g *Gate) Require(next http.Handler) http.Handler {
	return g.middleware(next, false)
}

// RequirePage authorizes page requests, falling back to the token cookie.
// Requests without a usable token are sent back to the login page with the
// cookie cleared.
func (g *Gate) RequirePage(next http.Handler) http.Handler {
	return g.middleware(next, true)
}

func (g *Gate) middleware(next http.Handler, page bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" && page {
			if c, err := r.Cookie(TokenCookie); err == nil {
				raw = strings.TrimSpace(c.Value)
			}
		}
		if raw == "" {
			g.reject(w, r, page, shared.ErrUnauthorized)
			return
		}
		id, err := g.tokens.Parse(raw)
		if err != nil {
			g.logger.Debug("token rejected", slog.Any("error", err), slog.String("path", r.URL.Path))
			g.reject(w, r, page, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), id)))
	})
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, page bool, err error) {
	if !page {
		httpx.RespondError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
