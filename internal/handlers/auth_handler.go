package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sohailKhanIITD/recipe-app-api/internal/audit"
	"github.com/sohailKhanIITD/recipe-app-api/internal/auth"
	"github.com/sohailKhanIITD/recipe-app-api/internal/domain/user"
	"github.com/sohailKhanIITD/recipe-app-api/internal/httperr"
	"github.com/sohailKhanIITD/recipe-app-api/internal/httpresp"
	"github.com/sohailKhanIITD/recipe-app-api/internal/middleware"
	"github.com/sohailKhanIITD/recipe-app-api/internal/models"
	"github.com/sohailKhanIITD/recipe-app-api/internal/validators"
)

type AuthHandler struct {
	users            *user.Manager
	tokens           *auth.TokenManager
	revoker          auth.Revoker
	audit            *audit.Dispatcher
	log              *zap.Logger
	checkEmailDomain bool
}

func NewAuthHandler(
	users *user.Manager,
	tokens *auth.TokenManager,
	revoker auth.Revoker,
	audit *audit.Dispatcher,
	log *zap.Logger,
	checkEmailDomain bool,
) *AuthHandler {
	return &AuthHandler{
		users:            users,
		tokens:           tokens,
		revoker:          revoker,
		audit:            audit,
		log:              log,
		checkEmailDomain: checkEmailDomain,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=5,max=128"`
	Name     string `json:"name" binding:"max=255"`
}

type TokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --------- Responses ---------

type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name}
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	if h.checkEmailDomain && !validators.IsEmailDomainValid(c.Request.Context(), req.Email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not appear to be valid.")
		return
	}

	u, err := h.users.CreateUser(c.Request.Context(), req.Email, req.Password, user.WithName(req.Name))
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			httperr.BadRequest(c, "email_taken", "A user with this email already exists.")
		case errors.Is(err, user.ErrEmailRequired):
			httperr.BadRequest(c, "email_required", "Users must have an email address.")
		default:
			h.log.Error("create user failed", zap.Error(err))
			httperr.Internal(c, "failed_to_create_user", "Could not create user.")
		}
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   u.ID,
		Action:   audit.ActionUserCreated,
		Entity:   audit.EntityUser,
		EntityID: &u.ID,
	})

	httpresp.Created(c, toUserResponse(u))
}

func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			httperr.BadRequest(c, "invalid_credentials", "Unable to authenticate with provided credentials.")
			return
		}
		h.log.Error("authenticate failed", zap.Error(err))
		httperr.Internal(c, "internal_error", "Could not authenticate.")
		return
	}

	token, expiresAt, err := h.tokens.Generate(u.ID)
	if err != nil {
		h.log.Error("sign token failed", zap.Error(err))
		httperr.Internal(c, "failed_to_generate_token", "Could not generate token.")
		return
	}

	httpresp.OK(c, TokenResponse{Token: token, ExpiresAt: expiresAt})
}

// Logout revokes the token that authenticated this request.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := c.MustGet(middleware.ContextClaims).(*auth.Claims)

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := h.revoker.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
		h.log.Error("revoke token failed", zap.Error(err))
		httperr.Internal(c, "failed_to_revoke_token", "Could not revoke token.")
		return
	}

	c.Status(http.StatusNoContent)
}
