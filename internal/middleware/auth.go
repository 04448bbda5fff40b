package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/ksuzuki/task-tracker-api/internal/constants"
	apierrors "github.com/ksuzuki/task-tracker-api/internal/errors"
	"github.com/ksuzuki/task-tracker-api/internal/policy"
	"github.com/ksuzuki/task-tracker-api/internal/repository"
)

// RequireAuth validates the Bearer token and resolves the actor's identity
// once per request. Handlers and the access policy consume the typed
// {userID, role} pair instead of re-fetching the user record themselves.
func RequireAuth(jwtSecret string, userRepo repository.UserRepository) gin.HandlerFunc {
	secret := []byte(jwtSecret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			apierrors.Unauthorized(c, "Invalid authorization header")
			c.Abort()
			return
		}

		userID, err := parseToken(parts[1], secret)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(userID)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyIdentity, policy.Identity{
			UserID: user.ID,
			Role:   user.Role,
		})
		c.Next()
	}
}

// GetIdentity retrieves the resolved identity from the request context.
func GetIdentity(c *gin.Context) (policy.Identity, bool) {
	value, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return policy.Identity{}, false
	}

	identity, ok := value.(policy.Identity)
	return identity, ok
}

func parseToken(tokenString string, secret []byte) (uint64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token claims")
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID < 0 {
		return 0, fmt.Errorf("missing user_id in token")
	}

	return uint64(rawID), nil
}
