package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"storefront/internal/clients"
	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

const MinPasswordLength = 8

// MutationResult is the product list after an admin change. Offline is set
// when the backend call failed and the change was applied to the local cache.
type MutationResult struct {
	Products []domain.Product
	Offline  bool
}

type AdminUseCase interface {
	List(ctx context.Context) []domain.Product
	Create(ctx context.Context, patch domain.ProductPatch) (*MutationResult, error)
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*MutationResult, error)
	Delete(ctx context.Context, id int64) (*MutationResult, error)

	UploadImage(ctx context.Context, filename string, image io.Reader) string
	Orders(ctx context.Context, q domain.OrderQuery) []domain.Order
	SalesStats(ctx context.Context, rangeKey string) (*domain.SalesStats, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error
}

type adminUseCase struct {
	api     clients.StoreAPI
	cache   domain.ProductCache
	catalog CatalogUseCase
	log     *logrus.Logger
}

func NewAdminUseCase(api clients.StoreAPI, cache domain.ProductCache, catalog CatalogUseCase, logger *logrus.Logger) AdminUseCase {
	return &adminUseCase{
		api:     api,
		cache:   cache,
		catalog: catalog,
		log:     logger,
	}
}

func (uc *adminUseCase) List(ctx context.Context) []domain.Product {
	return uc.catalog.FetchProducts(ctx)
}

func (uc *adminUseCase) Create(ctx context.Context, patch domain.ProductPatch) (*MutationResult, error) {
	if err := validatePatch(patch, true); err != nil {
		return nil, err
	}

	offline := false
	if _, err := uc.api.CreateProduct(ctx, patch); err != nil {
		uc.log.Warnf("Use Case: Remote create failed, applying to local cache: %v", err)
		offline = true

		products := uc.cache.LoadOrSeed(ctx)
		var nextID int64 = 1
		for _, p := range products {
			nextID = max(nextID, p.ProductID+1)
		}
		created := domain.NewProduct(nextID, patch)
		products = append([]domain.Product{created}, products...)
		if err := uc.cache.Save(ctx, products); err != nil {
			return nil, fmt.Errorf("offline create failed: %w", err)
		}
		uc.log.Infof("Use Case: Product %d created offline", nextID)
	}
	return uc.result(ctx, offline), nil
}

func (uc *adminUseCase) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*MutationResult, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid product ID %d", id)
	}
	if err := validatePatch(patch, false); err != nil {
		return nil, err
	}

	offline := false
	if err := uc.api.UpdateProduct(ctx, id, patch); err != nil {
		uc.log.Warnf("Use Case: Remote update of product %d failed, applying to local cache: %v", id, err)
		offline = true

		products := uc.cache.LoadOrSeed(ctx)
		if i := slices.IndexFunc(products, func(p domain.Product) bool { return p.ProductID == id }); i >= 0 {
			products[i] = patch.ApplyTo(products[i])
		} else {
			uc.log.Warnf("Use Case: Product %d not in local cache, nothing to update", id)
		}
		if err := uc.cache.Save(ctx, products); err != nil {
			return nil, fmt.Errorf("offline update failed: %w", err)
		}
	}
	return uc.result(ctx, offline), nil
}

func (uc *adminUseCase) Delete(ctx context.Context, id int64) (*MutationResult, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid product ID %d", id)
	}

	offline := false
	if err := uc.api.DeleteProduct(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Remote delete of product %d failed, applying to local cache: %v", id, err)
		offline = true

		products := slices.DeleteFunc(uc.cache.LoadOrSeed(ctx), func(p domain.Product) bool {
			return p.ProductID == id
		})
		if err := uc.cache.Save(ctx, products); err != nil {
			return nil, fmt.Errorf("offline delete failed: %w", err)
		}
	}
	return uc.result(ctx, offline), nil
}

func (uc *adminUseCase) result(ctx context.Context, offline bool) *MutationResult {
	return &MutationResult{Products: uc.catalog.FetchProducts(ctx), Offline: offline}
}

func validatePatch(patch domain.ProductPatch, creating bool) error {
	if creating && (patch.Name == nil || strings.TrimSpace(*patch.Name) == "") {
		return errors.New("product name cannot be empty")
	}
	if patch.Price != nil && *patch.Price < 0 {
		return errors.New("price cannot be negative")
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return errors.New("stock cannot be negative")
	}
	if patch.DiscountPercent != nil && (*patch.DiscountPercent < 0 || *patch.DiscountPercent > 100) {
		return errors.New("invalid discount: must be between 0 and 100")
	}
	return nil
}

// UploadImage returns the stored image URL, or "" when the upload failed.
func (uc *adminUseCase) UploadImage(ctx context.Context, filename string, image io.Reader) string {
	url, err := uc.api.UploadImage(ctx, filename, image)
	if err != nil {
		uc.log.Errorf("Use Case: Image upload %s failed: %v", filename, err)
		return ""
	}
	return url
}

// Orders returns an empty list when the backend cannot be queried.
func (uc *adminUseCase) Orders(ctx context.Context, q domain.OrderQuery) []domain.Order {
	orders, err := uc.api.ListOrders(ctx, q)
	if err != nil {
		uc.log.Errorf("Use Case: Listing orders failed, returning none: %v", err)
		return []domain.Order{}
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders
}

func (uc *adminUseCase) SalesStats(ctx context.Context, rangeKey string) (*domain.SalesStats, error) {
	stats, err := uc.api.SalesStats(ctx, rangeKey)
	if err != nil {
		uc.log.Errorf("Use Case: Loading sales stats (%s) failed: %v", rangeKey, err)
		return nil, fmt.Errorf("could not load sales stats: %w", err)
	}
	return stats, nil
}

func (uc *adminUseCase) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	if err := validatePasswordChange(oldPassword, newPassword, confirm); err != nil {
		return err
	}

	err := uc.api.ChangePassword(ctx, strings.TrimSpace(oldPassword), strings.TrimSpace(newPassword))
	if err == nil {
		uc.log.Info("Use Case: Admin password changed")
		return nil
	}

	var httpErr *clients.HTTPError
	if !errors.As(err, &httpErr) {
		uc.log.Errorf("Use Case: Password change request failed: %v", err)
		return fmt.Errorf("could not reach backend: %w", err)
	}
	uc.log.Warnf("Use Case: Password change rejected (status %d, code %q)", httpErr.StatusCode, httpErr.Code())
	switch httpErr.Code() {
	case "invalid_password":
		return domain.ErrWrongPassword
	case "weak_password":
		return domain.ErrWeakPassword
	default:
		return domain.ErrPasswordChangeFailed
	}
}

func validatePasswordChange(oldPassword, newPassword, confirm string) error {
	oldPassword = strings.TrimSpace(oldPassword)
	newPassword = strings.TrimSpace(newPassword)
	confirm = strings.TrimSpace(confirm)

	if oldPassword == "" || newPassword == "" || confirm == "" {
		return domain.ErrPasswordFieldsRequired
	}
	if newPassword != confirm {
		return domain.ErrPasswordMismatch
	}
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return domain.ErrPasswordTooShort
	}
	return nil
}
