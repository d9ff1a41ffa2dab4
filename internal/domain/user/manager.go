package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sohailKhanIITD/recipe-app-api/internal/httperr"
	"github.com/sohailKhanIITD/recipe-app-api/internal/models"
)

var (
	ErrEmailRequired      = httperr.ErrBusiness("email_required")
	ErrEmailTaken         = httperr.ErrBusiness("email_taken")
	ErrInvalidCredentials = httperr.ErrBusiness("invalid_credentials")
	ErrUserNotFound       = httperr.ErrBusiness("user_not_found")
)

// Option adjusts a user before it is stored.
type Option func(*models.User)

func WithName(name string) Option {
	return func(u *models.User) { u.Name = name }
}

func WithStaff() Option {
	return func(u *models.User) { u.IsStaff = true }
}

func WithSuperuser() Option {
	return func(u *models.User) {
		u.IsStaff = true
		u.IsSuperuser = true
	}
}

func Inactive() Option {
	return func(u *models.User) { u.IsActive = false }
}

// Manager creates and authenticates accounts.
type Manager struct {
	repo       Repository
	bcryptCost int
}

func NewManager(repo Repository, bcryptCost int) *Manager {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Manager{repo: repo, bcryptCost: bcryptCost}
}

// NormalizeEmail lowercases the domain part of an address. The local part is
// kept as given; values without "@" are returned untouched.
func NormalizeEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	at := strings.LastIndex(trimmed, "@")
	if at < 0 {
		return email
	}
	return trimmed[:at] + "@" + strings.ToLower(trimmed[at+1:])
}

func (m *Manager) CreateUser(ctx context.Context, email, password string, opts ...Option) (*models.User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	hash, err := m.hash(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(u)
	}

	if err := m.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (m *Manager) CreateSuperuser(ctx context.Context, email, password string, opts ...Option) (*models.User, error) {
	return m.CreateUser(ctx, email, password, append(opts, WithSuperuser())...)
}

// Authenticate returns the active user owning email and password.
func (m *Manager) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := m.repo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !u.IsActive || !u.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (m *Manager) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := m.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile changes the name and/or password; nil leaves a field as is.
func (m *Manager) UpdateProfile(ctx context.Context, u *models.User, name, password *string) error {
	if name != nil {
		u.Name = *name
	}
	if password != nil {
		hash, err := m.hash(*password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	return m.repo.UpdateUser(ctx, u)
}

// hash returns "" for an empty password, which CheckPassword never accepts.
func (m *Manager) hash(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), m.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
