package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sohailKhanIITD/recipe-app-api/internal/audit"
	"github.com/sohailKhanIITD/recipe-app-api/internal/httperr"
	"github.com/sohailKhanIITD/recipe-app-api/internal/httpresp"
	"github.com/sohailKhanIITD/recipe-app-api/internal/middleware"
)

type AuditLogsHandler struct {
	logs *audit.Logger
	log  *zap.Logger
}

func NewAuditLogsHandler(logs *audit.Logger, log *zap.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{logs: logs, log: log}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	offset := (page - 1) * limit

	logs, total, err := h.logs.List(c.Request.Context(), userID, c.Query("action"), limit, offset)
	if err != nil {
		h.log.Error("list audit logs failed", zap.Error(err))
		httperr.Internal(c, "audit_list_failed", "Could not list audit logs.")
		return
	}

	httpresp.Page(c, page, limit, total, logs)
}
