package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/sohailKhanIITD/recipe-app-api/internal/domain/recipe"
	"github.com/sohailKhanIITD/recipe-app-api/internal/models"
)

type RecipeGormRepository struct {
	db *gorm.DB
}

func NewRecipeGormRepository(db *gorm.DB) *RecipeGormRepository {
	return &RecipeGormRepository{db: db}
}

func (r *RecipeGormRepository) ListRecipes(
	ctx context.Context,
	userID uint,
) ([]models.Recipe, error) {

	var recipes []models.Recipe
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&recipes).Error; err != nil {
		return nil, err
	}

	return recipes, nil
}

func (r *RecipeGormRepository) GetRecipeForUser(
	ctx context.Context,
	recipeID uint,
	userID uint,
) (*models.Recipe, error) {

	var rec models.Recipe
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", recipeID, userID).
		First(&rec).Error; err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *RecipeGormRepository) CreateRecipe(
	ctx context.Context,
	rec *models.Recipe,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error
}

func (r *RecipeGormRepository) UpdateRecipe(
	ctx context.Context,
	rec *models.Recipe,
) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rec).Error
}

func (r *RecipeGormRepository) DeleteRecipeForUser(
	ctx context.Context,
	recipeID uint,
	userID uint,
) error {

	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", recipeID, userID).
		Delete(&models.Recipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

var _ domain.Repository = (*RecipeGormRepository)(nil)
