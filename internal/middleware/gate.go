package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/suneung/mocktrack-backend/internal/response"
	"github.com/suneung/mocktrack-backend/internal/service"
)

// ContextKeyGateClaims is the Gin context key holding parsed gate claims.
const ContextKeyGateClaims = "gate_claims"

// RequireGateToken guards mutating routes behind the shared-password
// gate: the client must present the token issued by a successful
// password verification. Read routes stay open.
func RequireGateToken(gateService *service.GateService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrGateTokenRequired)
			return
		}

		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrGateTokenInvalid)
			return
		}

		claims, err := gateService.ParseToken(tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.AbortFail(c, http.StatusUnauthorized, response.ErrGateTokenExpired)
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, response.ErrGateTokenInvalid)
			return
		}

		c.Set(ContextKeyGateClaims, claims)
		c.Next()
	}
}
