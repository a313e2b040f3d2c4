package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/crestbridge/ir-portal/internal/application/port"
	"github.com/crestbridge/ir-portal/internal/domain/entity"
)

// actorContextKey is the gin context key the authenticated user is stored
// under.
const actorContextKey = "actor"

// StaffAuth validates the bearer token, resolves the account it names, and
// rejects anything that is not an active staff user. Decisions always carry
// an authenticated staff actor by the time they reach the engine.
func StaffAuth(secret string, users port.UserRepository, logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseBearerToken(c.GetHeader("Authorization"), secret)
		if err != nil {
			logger.Error("Rejected request with invalid token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid or missing token",
			})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			logger.Error("Failed to resolve token subject", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
				Success: false,
				Error:   "failed to resolve user",
			})
			return
		}
		if user == nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "account inactive or unknown",
			})
			return
		}
		if !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "staff capability required",
			})
			return
		}

		c.Set(actorContextKey, user)
		c.Next()
	}
}

// parseBearerToken extracts and verifies the JWT, returning the user id from
// its subject claim.
func parseBearerToken(header, secret string) (int64, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return 0, fmt.Errorf("missing bearer token")
	}
	raw := strings.TrimPrefix(header, prefix)

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, fmt.Errorf("token has no subject")
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token subject is not a user id: %w", err)
	}
	return userID, nil
}

// actorFrom returns the authenticated user the auth middleware stored.
func actorFrom(c *gin.Context) *entity.User {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*entity.User)
	return user
}
