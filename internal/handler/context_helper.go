package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/akotolabs/waflow/internal/middleware"
	"github.com/akotolabs/waflow/internal/models"
)

// claimsFromContext returns the JWT claims the auth middleware stored,
// or nil when the route ran unauthenticated.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
