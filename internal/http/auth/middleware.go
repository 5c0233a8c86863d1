package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/playtimeuy/payments/internal/apperr"
)

const RoleAdmin = "admin"

// Claims are the token claims accepted by the admin API.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RequireRole rejects requests without a valid HS256 bearer token carrying role.
func RequireRole(secret []byte, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parseBearer(r, secret)
			if err == nil && claims.Role != role {
				err = apperr.ForbiddenErr("insufficient role")
			}

			if err != nil {
				slog.WarnContext(r.Context(), "admin request rejected", "path", r.URL.Path, "error", err)
				http.Error(w, apperr.PublicMessage(err), apperr.HTTPStatus(err))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func parseBearer(r *http.Request, secret []byte) (*Claims, error) {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, apperr.UnauthorizedErr("missing bearer token")
	}

	claims := &Claims{}

	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.UnauthorizedErr("token expired")
		}

		return nil, apperr.UnauthorizedErr("invalid token")
	}

	return claims, nil
}

// IssueToken signs an HS256 token for role. Used by operators to mint admin tokens.
func IssueToken(secret []byte, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	return token.SignedString(secret)
}
