package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sohailKhanIITD/recipe-app-api/internal/audit"
	"github.com/sohailKhanIITD/recipe-app-api/internal/domain/recipe"
	"github.com/sohailKhanIITD/recipe-app-api/internal/httperr"
	"github.com/sohailKhanIITD/recipe-app-api/internal/httpresp"
	"github.com/sohailKhanIITD/recipe-app-api/internal/imaging"
	"github.com/sohailKhanIITD/recipe-app-api/internal/middleware"
	"github.com/sohailKhanIITD/recipe-app-api/internal/models"
	"github.com/sohailKhanIITD/recipe-app-api/internal/observability"
	"github.com/sohailKhanIITD/recipe-app-api/internal/storage"
)

type RecipeHandler struct {
	repo    recipe.Repository
	store   storage.Store
	audit   *audit.Dispatcher
	metrics *observability.Metrics
	log     *zap.Logger

	maxUploadBytes int64
	maxImageSide   int
}

type RecipeHandlerConfig struct {
	MaxUploadBytes int64
	MaxImageSide   int
}

func NewRecipeHandler(
	repo recipe.Repository,
	store storage.Store,
	audit *audit.Dispatcher,
	metrics *observability.Metrics,
	log *zap.Logger,
	cfg RecipeHandlerConfig,
) *RecipeHandler {
	return &RecipeHandler{
		repo:           repo,
		store:          store,
		audit:          audit,
		metrics:        metrics,
		log:            log,
		maxUploadBytes: cfg.MaxUploadBytes,
		maxImageSide:   cfg.MaxImageSide,
	}
}

// --------- Requests ---------

// RecipeRequest is the body of POST and PUT. Optional fields left out keep
// their current value on PUT.
type RecipeRequest struct {
	Title       *string          `json:"title" binding:"required,max=255"`
	TimeMinutes *int             `json:"time_minutes" binding:"required,min=0"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Description *string          `json:"description"`
	Link        *string          `json:"link" binding:"omitempty,url,max=255"`
}

type PatchRecipeRequest struct {
	Title       *string          `json:"title" binding:"omitempty,max=255"`
	TimeMinutes *int             `json:"time_minutes" binding:"omitempty,min=0"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Link        *string          `json:"link" binding:"omitempty,url,max=255"`
}

func (r RecipeRequest) changes() recipe.Changes {
	return recipe.Changes{
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Description: r.Description,
		Link:        r.Link,
	}
}

func (r PatchRecipeRequest) changes() recipe.Changes {
	return recipe.Changes{
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Description: r.Description,
		Link:        r.Link,
	}
}

// --------- Responses ---------

type RecipeResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	TimeMinutes int    `json:"time_minutes"`
	Price       string `json:"price"`
	Link        string `json:"link"`
}

type RecipeDetailResponse struct {
	RecipeResponse
	Description string `json:"description"`
	Image       string `json:"image"`
}

type RecipeImageResponse struct {
	ID    uint   `json:"id"`
	Image string `json:"image"`
}

func toRecipeResponse(r *models.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(recipe.PriceDecimalPlaces),
		Link:        r.Link,
	}
}

func toRecipeDetailResponse(r *models.Recipe) RecipeDetailResponse {
	return RecipeDetailResponse{
		RecipeResponse: toRecipeResponse(r),
		Description:    r.Description,
		Image:          r.Image,
	}
}

// --------- Handlers ---------

func (h *RecipeHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	recipes, err := h.repo.ListRecipes(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("list recipes failed", zap.Error(err))
		httperr.Internal(c, "failed_to_list_recipes", "Could not list recipes.")
		return
	}

	resp := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp = append(resp, toRecipeResponse(&recipes[i]))
	}
	httpresp.List(c, resp)
}

func (h *RecipeHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	rec, err := recipe.New(userID, req.changes())
	if err != nil {
		h.writeDomainError(c, err)
		return
	}

	if err := h.repo.CreateRecipe(c.Request.Context(), rec); err != nil {
		h.log.Error("create recipe failed", zap.Error(err))
		httperr.Internal(c, "failed_to_create_recipe", "Could not create recipe.")
		return
	}

	h.recordMutation(userID, audit.ActionRecipeCreated, rec, map[string]any{"title": rec.Title})

	httpresp.Created(c, toRecipeDetailResponse(rec))
}

func (h *RecipeHandler) Retrieve(c *gin.Context) {
	rec, ok := h.loadOwned(c)
	if !ok {
		return
	}
	httpresp.OK(c, toRecipeDetailResponse(rec))
}

// Update handles PUT.
func (h *RecipeHandler) Update(c *gin.Context) {
	rec, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	h.applyAndSave(c, rec, req.changes())
}

// PartialUpdate handles PATCH.
func (h *RecipeHandler) PartialUpdate(c *gin.Context) {
	rec, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var req PatchRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	h.applyAndSave(c, rec, req.changes())
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	rec, ok := h.loadOwned(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteRecipeForUser(c.Request.Context(), rec.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "recipe_not_found", "Not found.")
			return
		}
		h.log.Error("delete recipe failed", zap.Uint("recipe_id", rec.ID), zap.Error(err))
		httperr.Internal(c, "failed_to_delete_recipe", "Could not delete recipe.")
		return
	}

	h.removeImage(c, rec.Image)
	h.recordMutation(userID, audit.ActionRecipeDeleted, rec, map[string]any{"title": rec.Title})

	httpresp.NoContent(c)
}

func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	rec, ok := h.loadOwned(c)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperr.Write(c, http.StatusRequestEntityTooLarge, "image_too_large", "Image is too large.")
			return
		}
		httperr.BadRequest(c, "image_required", "An image file is required.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "Could not read the uploaded file.")
		return
	}
	defer f.Close()

	data, err := imaging.ToWebP(f, h.maxImageSide)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedImage) {
			httperr.BadRequest(c, "invalid_image", "Upload a valid image.")
			return
		}
		h.log.Error("encode image failed", zap.Uint("recipe_id", rec.ID), zap.Error(err))
		httperr.Internal(c, "failed_to_process_image", "Could not process image.")
		return
	}

	key := storage.RecipeImageKey(rec.ID, rec.Title, imaging.Extension)
	url, err := h.store.Put(c.Request.Context(), key, bytes.NewReader(data), int64(len(data)), imaging.ContentType)
	if err != nil {
		h.log.Error("store image failed", zap.String("key", key), zap.Error(err))
		httperr.Internal(c, "failed_to_store_image", "Could not store image.")
		return
	}

	previous := rec.Image
	rec.Image = url
	if err := h.repo.UpdateRecipe(c.Request.Context(), rec); err != nil {
		h.log.Error("save recipe image failed", zap.Uint("recipe_id", rec.ID), zap.Error(err))
		h.removeImage(c, url)
		httperr.Internal(c, "failed_to_update_recipe", "Could not update recipe.")
		return
	}
	h.removeImage(c, previous)

	h.recordMutation(userID, audit.ActionRecipeImageUploaded, rec, map[string]any{"image": url})

	httpresp.OK(c, RecipeImageResponse{ID: rec.ID, Image: rec.Image})
}

// ----------------------------------------------------
// helpers
// ----------------------------------------------------

// loadOwned resolves :id for the current user and writes a 404 otherwise.
func (h *RecipeHandler) loadOwned(c *gin.Context) (*models.Recipe, bool) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.NotFound(c, "recipe_not_found", "Not found.")
		return nil, false
	}

	rec, err := h.repo.GetRecipeForUser(c.Request.Context(), uint(id), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "recipe_not_found", "Not found.")
			return nil, false
		}
		h.log.Error("load recipe failed", zap.Uint64("recipe_id", id), zap.Error(err))
		httperr.Internal(c, "failed_to_load_recipe", "Could not load recipe.")
		return nil, false
	}
	return rec, true
}

func (h *RecipeHandler) applyAndSave(c *gin.Context, rec *models.Recipe, ch recipe.Changes) {
	if err := recipe.Apply(rec, ch); err != nil {
		h.writeDomainError(c, err)
		return
	}

	if err := h.repo.UpdateRecipe(c.Request.Context(), rec); err != nil {
		h.log.Error("update recipe failed", zap.Uint("recipe_id", rec.ID), zap.Error(err))
		httperr.Internal(c, "failed_to_update_recipe", "Could not update recipe.")
		return
	}

	h.recordMutation(rec.UserID, audit.ActionRecipeUpdated, rec, map[string]any{"fields": changedFields(ch)})

	httpresp.OK(c, toRecipeDetailResponse(rec))
}

func (h *RecipeHandler) writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, recipe.ErrInvalidPrice):
		httperr.BadRequest(c, "invalid_price", "Ensure there are no more than 5 digits in total.")
	case errors.Is(err, recipe.ErrInvalidTitle):
		httperr.BadRequest(c, "invalid_title", "This field may not be blank.")
	case errors.Is(err, recipe.ErrMissingField):
		httperr.BadRequest(c, "missing_required_field", "This field is required.")
	default:
		h.log.Error("unexpected recipe error", zap.Error(err))
		httperr.Internal(c, "internal_error", "Unexpected error.")
	}
}

func (h *RecipeHandler) removeImage(c *gin.Context, url string) {
	if url == "" {
		return
	}
	key, ok := h.store.KeyFromURL(url)
	if !ok {
		return
	}
	if err := h.store.Delete(c.Request.Context(), key); err != nil {
		h.log.Warn("delete image failed", zap.String("key", key), zap.Error(err))
	}
}

func (h *RecipeHandler) recordMutation(userID uint, action string, rec *models.Recipe, metadata any) {
	id := rec.ID
	h.audit.Dispatch(audit.Event{
		UserID:   userID,
		Action:   action,
		Entity:   audit.EntityRecipe,
		EntityID: &id,
		Metadata: metadata,
	})
	h.metrics.RecordRecipeMutation(action)
}

func changedFields(ch recipe.Changes) []string {
	fields := make([]string, 0, 5)
	if ch.Title != nil {
		fields = append(fields, "title")
	}
	if ch.TimeMinutes != nil {
		fields = append(fields, "time_minutes")
	}
	if ch.Price != nil {
		fields = append(fields, "price")
	}
	if ch.Description != nil {
		fields = append(fields, "description")
	}
	if ch.Link != nil {
		fields = append(fields, "link")
	}
	return fields
}
