package usecase

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"storefront/internal/clients"
	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	FeaturedLimit = 8
	CategoryLimit = 8
)

// BackendObserver is told whether the last catalog fetch reached the backend.
type BackendObserver interface {
	SetBackendReachable(reachable bool)
}

type CatalogUseCase interface {
	FetchProducts(ctx context.Context) []domain.Product
	Browse(ctx context.Context, filter domain.Filter, sortKey domain.SortKey) []domain.Product
	Featured(ctx context.Context, n int) []domain.Product
	Categories(ctx context.Context, n int) []domain.Category
	ProductByID(ctx context.Context, id int64) (*domain.Product, error)
	ResolveImage(image string) string
}

type catalogUseCase struct {
	api      clients.StoreAPI
	cache    domain.ProductCache
	images   clients.ImageResolver
	observer BackendObserver
	log      *logrus.Logger
}

func NewCatalogUseCase(api clients.StoreAPI, cache domain.ProductCache, images clients.ImageResolver, observer BackendObserver, logger *logrus.Logger) CatalogUseCase {
	return &catalogUseCase{
		api:      api,
		cache:    cache,
		images:   images,
		observer: observer,
		log:      logger,
	}
}

// FetchProducts returns the backend list and refreshes the cache with it.
// Any backend failure falls back to the cache, and an empty or unreadable
// cache is seeded with the built-in catalog.
func (uc *catalogUseCase) FetchProducts(ctx context.Context) []domain.Product {
	products, err := uc.api.ListProducts(ctx)
	if err == nil {
		uc.notify(true)
		if saveErr := uc.cache.Save(ctx, products); saveErr != nil {
			uc.log.Warnf("Use Case: Failed to refresh catalog cache: %v", saveErr)
		}
		return products
	}

	uc.notify(false)
	uc.log.Warnf("Use Case: Backend catalog unavailable, using local cache: %v", err)

	cached, cacheErr := uc.cache.Load(ctx)
	if cacheErr == nil {
		return cached
	}

	uc.log.Warnf("Use Case: No usable catalog cache (%v), seeding built-in catalog", cacheErr)
	seed := domain.SeedProducts()
	if saveErr := uc.cache.Save(ctx, seed); saveErr != nil {
		uc.log.Errorf("Use Case: Failed to seed catalog cache: %v", saveErr)
	}
	return seed
}

func (uc *catalogUseCase) notify(reachable bool) {
	if uc.observer != nil {
		uc.observer.SetBackendReachable(reachable)
	}
}

func (uc *catalogUseCase) Browse(ctx context.Context, filter domain.Filter, sortKey domain.SortKey) []domain.Product {
	all := uc.FetchProducts(ctx)
	result := SortProducts(FilterProducts(all, filter), sortKey)
	uc.log.Debugf("Use Case: Browse matched %d of %d products (sort=%s)", len(result), len(all), sortKey)
	return result
}

func (uc *catalogUseCase) Featured(ctx context.Context, n int) []domain.Product {
	all := uc.FetchProducts(ctx)
	if n > 0 && len(all) > n {
		return all[:n]
	}
	return all
}

// Categories lists distinct categories in first-seen order, each with the
// image of the first product found in it.
func (uc *catalogUseCase) Categories(ctx context.Context, n int) []domain.Category {
	seen := make(map[string]bool)
	var categories []domain.Category
	for _, p := range uc.FetchProducts(ctx) {
		name := strings.TrimSpace(p.Category)
		if name == "" {
			name = domain.DefaultCategory
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		categories = append(categories, domain.Category{Name: name, Image: uc.images.Resolve(p.ImageURL)})
		if n > 0 && len(categories) == n {
			break
		}
	}
	return categories
}

func (uc *catalogUseCase) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.ErrProductNotFound
	}
	for _, p := range uc.FetchProducts(ctx) {
		if p.ProductID == id {
			found := p
			return &found, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (uc *catalogUseCase) ResolveImage(image string) string {
	return uc.images.Resolve(image)
}

// FilterProducts keeps the products matching every criterion of f.
func FilterProducts(products []domain.Product, f domain.Filter) []domain.Product {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	category := strings.ToLower(strings.TrimSpace(f.Category))
	allCategories := domain.IsAllCategory(category)

	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if query != "" {
			haystack := strings.ToLower(p.Name + " " + p.Category)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		if !allCategories && strings.ToLower(strings.TrimSpace(p.Category)) != category {
			continue
		}
		final := p.EffectivePrice()
		if f.MinPrice > 0 && final < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && final > f.MaxPrice {
			continue
		}
		if f.DiscountOnly && !p.HasDiscount() {
			continue
		}
		result = append(result, p)
	}
	return result
}

// SortProducts returns a sorted copy. Unknown keys sort most recent first.
func SortProducts(products []domain.Product, key domain.SortKey) []domain.Product {
	sorted := slices.Clone(products)
	switch key {
	case domain.SortPriceAsc:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return cmp.Compare(a.EffectivePrice(), b.EffectivePrice())
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return cmp.Compare(b.EffectivePrice(), a.EffectivePrice())
		})
	case domain.SortNameAsc:
		// Collators keep internal buffers and are not safe to share.
		col := collate.New(language.Spanish, collate.IgnoreCase)
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return col.CompareString(a.Name, b.Name)
		})
	default:
		slices.SortStableFunc(sorted, func(a, b domain.Product) int {
			return cmp.Compare(b.ProductID, a.ProductID)
		})
	}
	return sorted
}

// CategoryOptions is "all" followed by the distinct lower-cased categories.
func CategoryOptions(products []domain.Product) []string {
	options := []string{domain.CategoryAll}
	seen := map[string]bool{domain.CategoryAll: true}
	for _, p := range products {
		c := strings.ToLower(strings.TrimSpace(p.Category))
		if c == "" {
			c = strings.ToLower(domain.DefaultCategory)
		}
		if !seen[c] {
			seen[c] = true
			options = append(options, c)
		}
	}
	return options
}
