package recipe

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sohailKhanIITD/recipe-app-api/internal/httperr"
	"github.com/sohailKhanIITD/recipe-app-api/internal/models"
)

const (
	PriceDecimalPlaces = 2
	PriceMaxDigits     = 5
)

var (
	ErrNotFound     = httperr.ErrBusiness("recipe_not_found")
	ErrInvalidPrice = httperr.ErrBusiness("invalid_price")
	ErrInvalidTitle = httperr.ErrBusiness("invalid_title")
	ErrMissingField = httperr.ErrBusiness("missing_required_field")
)

var priceLimit = decimal.New(1, PriceMaxDigits-PriceDecimalPlaces)

// NormalizePrice rounds to two places and rejects values that do not fit
// numeric(5,2).
func NormalizePrice(p decimal.Decimal) (decimal.Decimal, error) {
	rounded := p.Round(PriceDecimalPlaces)
	if rounded.Abs().GreaterThanOrEqual(priceLimit) {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	return rounded, nil
}

// Changes carries writable recipe fields; nil means "not supplied".
type Changes struct {
	Title       *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Description *string
	Link        *string
}

// Apply copies every supplied field onto r. Nothing is written when a value
// is invalid.
func Apply(r *models.Recipe, ch Changes) error {
	var price decimal.Decimal
	if ch.Price != nil {
		p, err := NormalizePrice(*ch.Price)
		if err != nil {
			return err
		}
		price = p
	}
	if ch.Title != nil && strings.TrimSpace(*ch.Title) == "" {
		return ErrInvalidTitle
	}

	if ch.Title != nil {
		r.Title = *ch.Title
	}
	if ch.TimeMinutes != nil {
		r.TimeMinutes = *ch.TimeMinutes
	}
	if ch.Price != nil {
		r.Price = price
	}
	if ch.Description != nil {
		r.Description = *ch.Description
	}
	if ch.Link != nil {
		r.Link = *ch.Link
	}
	return nil
}

// New builds an unsaved recipe owned by userID.
func New(userID uint, ch Changes) (*models.Recipe, error) {
	if ch.Title == nil || ch.TimeMinutes == nil || ch.Price == nil {
		return nil, ErrMissingField
	}
	r := &models.Recipe{UserID: userID}
	if err := Apply(r, ch); err != nil {
		return nil, err
	}
	return r, nil
}
