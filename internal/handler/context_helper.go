package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/timetable-ace/scheduler-api/internal/middleware"
	"github.com/timetable-ace/scheduler-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func identityFromContext(c *gin.Context) (user, role string) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "system", "admin"
	}
	return claims.Name, claims.Role
}
