package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"storefront/internal/clients"
	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type CartUseCase interface {
	Load(ctx context.Context) error
	Add(ctx context.Context, item domain.CartItem) error
	AddProduct(ctx context.Context, productID int64) (*domain.CartItem, error)
	Apply(ctx context.Context, id int64, op domain.CartOp) error
	Items() []domain.CartItem
	Total() int64
	Count() int
	Checkout(ctx context.Context) (string, error)
}

// cartStore owns the cart lines. Every mutation is persisted before it returns.
type cartStore struct {
	mu       sync.Mutex
	items    []domain.CartItem
	repo     domain.CartRepository
	catalog  CatalogUseCase
	api      clients.StoreAPI
	currency string
	log      *logrus.Logger
}

func NewCartUseCase(repo domain.CartRepository, catalog CatalogUseCase, api clients.StoreAPI, currency string, logger *logrus.Logger) CartUseCase {
	if currency == "" {
		currency = "COP"
	}
	return &cartStore{
		items:    []domain.CartItem{},
		repo:     repo,
		catalog:  catalog,
		api:      api,
		currency: currency,
		log:      logger,
	}
}

func (s *cartStore) Load(ctx context.Context) error {
	items, err := s.repo.LoadCart(ctx)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = normalizeCart(items)
	s.log.Infof("Use Case: Cart loaded with %d lines", len(s.items))
	return nil
}

// normalizeCart merges lines sharing a product ID, drops lines without one
// and raises quantities below 1 to 1.
func normalizeCart(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.ID <= 0 {
			continue
		}
		it.Quantity = max(1, it.Quantity)
		if i := slices.IndexFunc(out, func(o domain.CartItem) bool { return o.ID == it.ID }); i >= 0 {
			out[i].Quantity += it.Quantity
			continue
		}
		out = append(out, it)
	}
	return out
}

// Add bumps the quantity of an existing line or appends a new one with
// quantity 1.
func (s *cartStore) Add(ctx context.Context, item domain.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.items)
	if i := s.indexOf(item.ID); i >= 0 {
		next[i].Quantity++
	} else {
		item.Quantity = 1
		next = append(next, item)
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.log.Infof("Use Case: Added product %d to cart", item.ID)
	return nil
}

func (s *cartStore) AddProduct(ctx context.Context, productID int64) (*domain.CartItem, error) {
	product, err := s.catalog.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	item := product.ToCartItem(s.catalog.ResolveImage(product.ImageURL))
	if err := s.Add(ctx, item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *cartStore) Apply(ctx context.Context, id int64, op domain.CartOp) error {
	if !domain.IsValidCartOp(op) {
		return fmt.Errorf("invalid cart operation %q", op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.ErrCartItemNotFound
	}
	next := slices.Clone(s.items)
	switch op {
	case domain.CartOpPlus:
		next[i].Quantity++
	case domain.CartOpMinus:
		next[i].Quantity = max(1, next[i].Quantity-1)
	case domain.CartOpRemove:
		next = slices.Delete(next, i, i+1)
	}
	return s.commit(ctx, next)
}

func (s *cartStore) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *cartStore) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, it := range s.items {
		total += it.Subtotal()
	}
	return total
}

// Count is the number of units in the cart, shown on the header badge.
func (s *cartStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, it := range s.items {
		count += it.Quantity
	}
	return count
}

// Checkout asks the backend for a hosted payment link for the current cart.
func (s *cartStore) Checkout(ctx context.Context) (string, error) {
	items := s.Items()
	if len(items) == 0 {
		return "", domain.ErrEmptyCart
	}

	req := domain.CheckoutRequest{Items: make([]domain.CheckoutItem, 0, len(items))}
	for _, it := range items {
		req.Items = append(req.Items, domain.CheckoutItem{
			ProductID:  it.ID,
			Title:      it.Name,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
			CurrencyID: s.currency,
		})
	}

	link, err := s.api.CreatePayment(ctx, req)
	if err != nil {
		s.log.Errorf("Use Case: Checkout failed for %d lines: %v", len(items), err)
		return "", fmt.Errorf("could not start checkout: %w", err)
	}
	if link == "" {
		return "", domain.ErrCheckoutUnavailable
	}
	s.log.Infof("Use Case: Checkout link created for %d lines", len(items))
	return link, nil
}

func (s *cartStore) indexOf(id int64) int {
	return slices.IndexFunc(s.items, func(it domain.CartItem) bool { return it.ID == id })
}

// commit saves next and only then makes it the current cart, so a failed
// save leaves memory matching storage. Must be called with mu held.
func (s *cartStore) commit(ctx context.Context, next []domain.CartItem) error {
	if err := s.repo.SaveCart(ctx, next); err != nil {
		s.log.Errorf("Use Case: Failed to persist cart: %v", err)
		return fmt.Errorf("failed to save cart: %w", err)
	}
	s.items = next
	return nil
}
