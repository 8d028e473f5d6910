package domain

import (
	"context"
	"strings"
)

// CategoryAll matches every product. "todos" is accepted as an alias.
const CategoryAll = "all"

// Filter narrows the catalog. Zero prices mean no bound.
type Filter struct {
	Query        string
	Category     string
	MinPrice     int64
	MaxPrice     int64
	DiscountOnly bool
}

func IsAllCategory(category string) bool {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "", CategoryAll, "todos":
		return true
	default:
		return false
	}
}

type SortKey string

const (
	SortRecent    SortKey = "recent"
	SortPriceAsc  SortKey = "priceAsc"
	SortPriceDesc SortKey = "priceDesc"
	SortNameAsc   SortKey = "nameAsc"
)

// Category is a home page tile: a category name and the first image found for it.
type Category struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ProductCache mirrors the last known-good product list.
type ProductCache interface {
	Load(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, products []Product) error
	// LoadOrSeed never fails: a missing or unreadable cache yields the seed list.
	LoadOrSeed(ctx context.Context) []Product
}

type TokenRepository interface {
	GetToken(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}
