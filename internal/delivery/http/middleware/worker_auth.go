package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// WorkerAuthMiddleware guards the report-in endpoint with the shared
// worker secret. Workers send it as a bearer token.
type WorkerAuthMiddleware struct {
	secret []byte
}

func NewWorkerAuthMiddleware(secret string) *WorkerAuthMiddleware {
	return &WorkerAuthMiddleware{secret: []byte(secret)}
}

func (m *WorkerAuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if len(m.secret) == 0 {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
		if subtle.ConstantTimeCompare([]byte(token), m.secret) != 1 {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
		return c.Next()
	}
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
