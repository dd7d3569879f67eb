package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/clusterdesk/internal/auth"
	"github.com/dropDatabas3/clusterdesk/internal/httpapi/apierr"
)

// TokenVerifier valida un bearer token. Lo implementa auth.Service.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireAuth valida Authorization: Bearer <token> y guarda las claims
// en el contexto. Si el token falta o es inválido, responde 401.
func RequireAuth(verifier TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				apierr.WriteError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				apierr.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// BearerToken extrae el token del header Authorization.
func BearerToken(r *http.Request) (string, bool) {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return "", false
	}
	return strings.TrimSpace(ah[len("Bearer "):]), true
}
