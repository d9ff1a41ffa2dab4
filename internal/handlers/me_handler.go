package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sohailKhanIITD/recipe-app-api/internal/audit"
	"github.com/sohailKhanIITD/recipe-app-api/internal/domain/user"
	"github.com/sohailKhanIITD/recipe-app-api/internal/httperr"
	"github.com/sohailKhanIITD/recipe-app-api/internal/httpresp"
	"github.com/sohailKhanIITD/recipe-app-api/internal/middleware"
)

type MeHandler struct {
	users *user.Manager
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewMeHandler(users *user.Manager, audit *audit.Dispatcher, log *zap.Logger) *MeHandler {
	return &MeHandler{users: users, audit: audit, log: log}
}

type UpdateMeRequest struct {
	Name     *string `json:"name,omitempty" binding:"omitempty,max=255"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=5,max=128"`
}

func (h *MeHandler) GetMe(c *gin.Context) {
	httpresp.OK(c, toUserResponse(middleware.CurrentUser(c)))
}

func (h *MeHandler) UpdateMe(c *gin.Context) {
	u := middleware.CurrentUser(c)

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	if err := h.users.UpdateProfile(c.Request.Context(), u, req.Name, req.Password); err != nil {
		h.log.Error("update profile failed", zap.Error(err))
		httperr.Internal(c, "failed_to_update_user", "Could not update user.")
		return
	}

	changed := make([]string, 0, 2)
	if req.Name != nil {
		changed = append(changed, "name")
	}
	if req.Password != nil {
		changed = append(changed, "password")
	}
	h.audit.Dispatch(audit.Event{
		UserID:   u.ID,
		Action:   audit.ActionUserUpdated,
		Entity:   audit.EntityUser,
		EntityID: &u.ID,
		Metadata: map[string]string{"fields": strings.Join(changed, ",")},
	})

	httpresp.OK(c, toUserResponse(u))
}
