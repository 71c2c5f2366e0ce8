package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dkeye/Kairos/internal/adapters/signal"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

var errNoToken = errors.New("token required")

// RequireToken rejects requests without a valid HS256 token, read from the
// "token" query parameter (browsers cannot set headers on a WS upgrade) or
// a Bearer Authorization header. The subject is stored under
// signal.SubjectKey and pins the identity the socket may log in as.
func RequireToken(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		sub, err := verifyToken(c.Request, key)
		if err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(signal.SubjectKey, sub)
		c.Next()
	}
}

func verifyToken(r *http.Request, key []byte) (string, error) {
	raw := tokenFrom(r)
	if raw == "" {
		return "", errNoToken
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}
	sub, _ := token.Claims.GetSubject()
	return sub, nil
}

func tokenFrom(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
