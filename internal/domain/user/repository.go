package user

import (
	"context"

	"github.com/sohailKhanIITD/recipe-app-api/internal/models"
)

type Repository interface {
	CreateUser(ctx context.Context, u *models.User) error

	GetUserByID(ctx context.Context, id uint) (*models.User, error)

	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	UpdateUser(ctx context.Context, u *models.User) error
}
