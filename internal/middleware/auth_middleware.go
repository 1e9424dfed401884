package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"hunarscan/internal/apperr"
	"hunarscan/internal/auth"
	"hunarscan/internal/models"
	"hunarscan/internal/utils"
	"hunarscan/pkg/logger"
)

const identityKey = "identity"

// AuthRequired verifies the bearer token and stores the caller identity.
// Requests without a valid token never reach the handler.
func AuthRequired(verifier auth.Verifier, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			utils.AppErrorResponse(c, err)
			c.Abort()
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if !apperr.Is(err, apperr.CodeUnauthenticated) {
				// verifier misbehaved; never let a non-auth failure through as success
				log.WithContext(c.Request.Context()).WithError(err).Error("Token verification failed")
				err = apperr.Unauthenticated("middleware.AuthRequired", auth.MsgInvalidToken, err)
			}
			log.WithContext(c.Request.Context()).LogSecurityEvent("auth_failed", "low", map[string]interface{}{
				"path":   c.Request.URL.Path,
				"reason": apperr.ReasonOf(err),
				"ip":     c.ClientIP(),
			})
			utils.AppErrorResponse(c, err)
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.UserIDKey, identity.UID))
		c.Next()
	}
}

// GetIdentity returns the verified caller, or nil on public routes.
func GetIdentity(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*models.Identity)
	return identity
}
