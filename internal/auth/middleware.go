// Package auth verifies Casdoor-issued bearer tokens. Session management and
// the login flow itself stay on the identity provider; this layer only
// consumes tokens and mirrors the user into the local table.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/learnsphere/lms-service/internal/config"
	"github.com/learnsphere/lms-service/internal/models"
	"github.com/learnsphere/lms-service/internal/repositories"
	"github.com/learnsphere/lms-service/internal/utils"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// Init configures the Casdoor SDK from service config. Call once at startup.
func Init(cfg *config.Config) {
	casdoorsdk.InitConfig(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)
}

// Middleware parses the bearer token, mirrors the user locally, and stores
// user id and role in the gin context.
func Middleware(repo repositories.Repository, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.Warn("Token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		now := time.Now()
		user := &models.User{
			ID:          claims.User.Id,
			FullName:    claims.User.DisplayName,
			Email:       claims.User.Email,
			Role:        roleFromClaims(claims),
			LastLoginAt: &now,
		}
		if err := repo.User().Upsert(c.Request.Context(), user); err != nil {
			logger.Error("Failed to mirror user", "user_id", user.ID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "user sync failed"})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, user.Role)
		c.Next()
	}
}

// RequireRole allows only the listed roles past.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := RoleFromContext(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "insufficient permissions"})
	}
}

// UserIDFromContext returns the authenticated user id, empty when absent.
func UserIDFromContext(c *gin.Context) string {
	if id, ok := c.Get(ContextUserID); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// RoleFromContext returns the authenticated role, defaulting to plain user.
func RoleFromContext(c *gin.Context) models.UserRole {
	if role, ok := c.Get(ContextRole); ok {
		if r, ok := role.(models.UserRole); ok {
			return r
		}
	}
	return models.RoleUser
}

// roleFromClaims maps identity-provider roles onto the service's role enum.
func roleFromClaims(claims *casdoorsdk.Claims) models.UserRole {
	if claims.User.IsAdmin {
		return models.RoleSuperAdmin
	}
	for _, role := range claims.User.Roles {
		switch role.Name {
		case "course_admin":
			return models.RoleCourseAdmin
		case "superadmin":
			return models.RoleSuperAdmin
		}
	}
	return models.RoleUser
}
