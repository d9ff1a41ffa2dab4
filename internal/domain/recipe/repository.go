package recipe

import (
	"context"

	"github.com/sohailKhanIITD/recipe-app-api/internal/models"
)

// Repository is always scoped by owner: a recipe of another user behaves
// exactly like a missing one.
type Repository interface {
	ListRecipes(ctx context.Context, userID uint) ([]models.Recipe, error)

	GetRecipeForUser(ctx context.Context, recipeID uint, userID uint) (*models.Recipe, error)

	CreateRecipe(ctx context.Context, r *models.Recipe) error

	UpdateRecipe(ctx context.Context, r *models.Recipe) error

	DeleteRecipeForUser(ctx context.Context, recipeID uint, userID uint) error
}
