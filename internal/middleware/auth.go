package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sohailKhanIITD/recipe-app-api/internal/auth"
	"github.com/sohailKhanIITD/recipe-app-api/internal/httperr"
	"github.com/sohailKhanIITD/recipe-app-api/internal/models"
)

const (
	ContextUserID = "userID"
	ContextUser   = "user"
	ContextClaims = "tokenClaims"
)

type UserLoader interface {
	Get(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware accepts "Bearer <jwt>" and DRF-style "Token <jwt>" headers.
func AuthMiddleware(tokens *auth.TokenManager, revoker auth.Revoker, users UserLoader, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Abort(c, http.StatusUnauthorized, "missing_authorization_header", "Authentication credentials were not provided.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !(strings.EqualFold(parts[0], "Bearer") || strings.EqualFold(parts[0], "Token")) {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_authorization_header", "Invalid authorization header.")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_token", "Invalid token.")
			return
		}

		revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Error("revocation check failed", zap.Error(err))
			httperr.Abort(c, http.StatusInternalServerError, "internal_error", "Could not verify token.")
			return
		}
		if revoked {
			httperr.Abort(c, http.StatusUnauthorized, "token_revoked", "Token has been revoked.")
			return
		}

		user, err := users.Get(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			httperr.Abort(c, http.StatusUnauthorized, "user_inactive_or_deleted", "User inactive or deleted.")
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(ContextUser).(*models.User)
}
