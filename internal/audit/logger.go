package audit

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/sohailKhanIITD/recipe-app-api/internal/models"
)

const (
	ActionRecipeCreated       = "recipe_created"
	ActionRecipeUpdated       = "recipe_updated"
	ActionRecipeDeleted       = "recipe_deleted"
	ActionRecipeImageUploaded = "recipe_image_uploaded"
	ActionUserCreated         = "user_created"
	ActionUserUpdated         = "user_updated"

	EntityRecipe = "recipe"
	EntityUser   = "user"
)

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(
	ctx context.Context,
	userID uint,
	action string,
	entity string,
	entityID *uint,
	metadata any,
) error {

	var metaJSON string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			metaJSON = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Metadata: metaJSON,
	}

	return l.db.WithContext(ctx).Create(&entry).Error
}

// List returns a page of the user's entries, newest first.
func (l *Logger) List(
	ctx context.Context,
	userID uint,
	action string,
	limit, offset int,
) ([]models.AuditLog, int64, error) {

	q := l.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Where("user_id = ?", userID)

	if action != "" {
		q = q.Where("action = ?", action)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	if err := q.
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
