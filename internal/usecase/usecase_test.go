package usecase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"storefront/internal/clients"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOffline = &clients.NetworkError{Method: http.MethodGet, URL: "http://backend", Err: errors.New("connection refused")}

// fakeAPI is an in-memory backend. When down is set every call fails with
// a network error.
type fakeAPI struct {
	down     bool
	products []domain.Product
	token    string
	payment  string
	orders   []domain.Order
	stats    *domain.SalesStats
	pwErr    error

	lastCheckout domain.CheckoutRequest
	lastQuery    domain.OrderQuery
	deleted      []int64
}

func (f *fakeAPI) ListProducts(context.Context) ([]domain.Product, error) {
	if f.down {
		return nil, errOffline
	}
	return append([]domain.Product(nil), f.products...), nil
}

func (f *fakeAPI) CreateProduct(_ context.Context, patch domain.ProductPatch) (*domain.Product, error) {
	if f.down {
		return nil, errOffline
	}
	p := domain.NewProduct(int64(len(f.products)+100), patch)
	f.products = append(f.products, p)
	return &p, nil
}

func (f *fakeAPI) UpdateProduct(_ context.Context, id int64, patch domain.ProductPatch) error {
	if f.down {
		return errOffline
	}
	for i := range f.products {
		if f.products[i].ProductID == id {
			f.products[i] = patch.ApplyTo(f.products[i])
		}
	}
	return nil
}

func (f *fakeAPI) DeleteProduct(_ context.Context, id int64) error {
	if f.down {
		return errOffline
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) Login(context.Context, string, string) (string, error) {
	if f.down {
		return "", errOffline
	}
	if f.token == "" {
		return "", &clients.HTTPError{StatusCode: http.StatusUnauthorized, Message: "API 401: Unauthorized"}
	}
	return f.token, nil
}

func (f *fakeAPI) ChangePassword(context.Context, string, string) error {
	if f.down {
		return errOffline
	}
	return f.pwErr
}

func (f *fakeAPI) CreatePayment(_ context.Context, req domain.CheckoutRequest) (string, error) {
	if f.down {
		return "", errOffline
	}
	f.lastCheckout = req
	return f.payment, nil
}

func (f *fakeAPI) ListOrders(_ context.Context, q domain.OrderQuery) ([]domain.Order, error) {
	if f.down {
		return nil, errOffline
	}
	f.lastQuery = q
	return f.orders, nil
}

func (f *fakeAPI) SalesStats(context.Context, string) (*domain.SalesStats, error) {
	if f.down {
		return nil, errOffline
	}
	return f.stats, nil
}

func (f *fakeAPI) UploadImage(context.Context, string, io.Reader) (string, error) {
	if f.down {
		return "", errOffline
	}
	return "/uploads/img.png", nil
}

type recordingObserver struct{ states []bool }

func (o *recordingObserver) SetBackendReachable(r bool) { o.states = append(o.states, r) }

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fixture struct {
	api     *fakeAPI
	store   repository.KVStore
	cache   domain.ProductCache
	catalog CatalogUseCase
	cart    CartUseCase
	admin   AdminUseCase
	auth    AuthUseCase
	tokens  domain.TokenRepository
	obs     *recordingObserver
}

func newFixture(api *fakeAPI) *fixture {
	logger := testLogger()
	store := repository.NewMemoryKVStore()
	cache := repository.NewCatalogCache(store, logger)
	tokens := repository.NewTokenRepository(store)
	obs := &recordingObserver{}
	catalog := NewCatalogUseCase(api, cache, clients.NewImageResolver("http://backend"), obs, logger)
	return &fixture{
		api:     api,
		store:   store,
		cache:   cache,
		catalog: catalog,
		cart:    NewCartUseCase(repository.NewCartRepository(store, logger), catalog, api, "COP", logger),
		admin:   NewAdminUseCase(api, cache, catalog, logger),
		auth:    NewAuthUseCase(api, tokens, logger),
		tokens:  tokens,
		obs:     obs,
	}
}

func ids(products []domain.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ProductID)
	}
	return out
}

func TestFetchProductsOnlineRefreshesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeAPI{products: []domain.Product{{ProductID: 42, Name: "Mouse", Price: 50000}}})

	products := f.catalog.FetchProducts(ctx)
	assert.Equal(t, []int64{42}, ids(products))

	cached, err := f.cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, cached)
	assert.Equal(t, []bool{true}, f.obs.states)
}

func TestFetchProductsOfflineWithoutCacheReturnsSeed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeAPI{down: true})

	products := f.catalog.FetchProducts(ctx)
	assert.Equal(t, domain.SeedProducts(), products)

	cached, err := f.cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SeedProducts(), cached, "seed is written to the cache")
	assert.Equal(t, []bool{false}, f.obs.states)
}

func TestFetchProductsOfflineUsesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeAPI{down: true})
	require.NoError(t, f.cache.Save(ctx, []domain.Product{{ProductID: 9, Name: "Cached"}}))

	assert.Equal(t, []int64{9}, ids(f.catalog.FetchProducts(ctx)))
}

func TestFilterAllReturnsEverything(t *testing.T) {
	seed := domain.SeedProducts()
	for _, category := range []string{"all", "todos", "", "ALL"} {
		assert.Len(t, FilterProducts(seed, domain.Filter{Category: category}), len(seed), category)
	}
}

func TestFilterCriteria(t *testing.T) {
	seed := domain.SeedProducts()

	tests := []struct {
		name   string
		filter domain.Filter
		want   []int64
	}{
		{"query on name", domain.Filter{Query: "  torre "}, []int64{1}},
		{"query on category", domain.Filter{Query: "CAMARAS"}, []int64{3}},
		{"category match is case insensitive", domain.Filter{Category: "Computadoras"}, []int64{1, 2}},
		{"min uses effective price", domain.Filter{MinPrice: 570000}, []int64{1, 3}},
		{"max uses effective price", domain.Filter{MaxPrice: 450000}, []int64{2, 4}},
		{"discount only", domain.Filter{DiscountOnly: true}, []int64{1, 3}},
		{"combined", domain.Filter{Category: "computadoras", DiscountOnly: true}, []int64{1}},
		{"no match", domain.Filter{Query: "impresora"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterProducts(seed, tt.filter)))
		})
	}
}

func TestSortProducts(t *testing.T) {
	products := []domain.Product{
		{ProductID: 1, Name: "Torre Gamer", Price: 850000, DiscountPercent: 10},
		{ProductID: 2, Name: "monitor", Price: 450000},
		{ProductID: 3, Name: "Ábaco", Price: 765000},
	}

	assert.Equal(t, []int64{2, 1, 3}, ids(SortProducts(products, domain.SortPriceAsc)))
	assert.Equal(t, []int64{1, 3, 2}, ids(SortProducts(products, domain.SortPriceDesc)))
	assert.Equal(t, []int64{3, 2, 1}, ids(SortProducts(products, domain.SortNameAsc)))
	assert.Equal(t, []int64{3, 2, 1}, ids(SortProducts(products, domain.SortRecent)))
	assert.Equal(t, []int64{3, 2, 1}, ids(SortProducts(products, "")))
	assert.Equal(t, []int64{1, 2, 3}, ids(products), "input is not reordered")
}

func TestSortByPriceExample(t *testing.T) {
	products := []domain.Product{
		{ProductID: 1, Price: 850000, DiscountPercent: 10},
		{ProductID: 2, Price: 450000},
	}
	sorted := SortProducts(products, domain.SortPriceAsc)
	assert.Equal(t, int64(450000), sorted[0].Price)
}

func TestCategoriesAndFeatured(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{products: []domain.Product{
		{ProductID: 1, Category: " Redes ", ImageURL: "/uploads/r.png"},
		{ProductID: 2, Category: "Redes", ImageURL: "other.png"},
		{ProductID: 3, Category: ""},
	}}
	f := newFixture(api)

	assert.Equal(t, []domain.Category{
		{Name: "Redes", Image: "http://backend/uploads/r.png"},
		{Name: domain.DefaultCategory, Image: domain.DefaultImage},
	}, f.catalog.Categories(ctx, CategoryLimit))
	assert.Len(t, f.catalog.Featured(ctx, 2), 2)
	assert.Equal(t, []string{"all", "redes", "general"}, CategoryOptions(api.products))
}

func TestProductByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeAPI{down: true})

	p, err := f.catalog.ProductByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Cámara IP", p.Name)

	_, err = f.catalog.ProductByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCartAddSameProductTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeAPI{down: true})

	_, err := f.cart.AddProduct(ctx, 1)
	require.NoError(t, err)
	_, err = f.cart.AddProduct(ctx, 1)
	require.NoError(t, err)

	items := f.cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(765000), items[0].UnitPrice)
	assert.Equal(t, 2, f.cart.Count())
	assert.Equal(t, int64(1530000), f.cart.Total())
}

func TestCartOperationsPersist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeAPI{down: true})

	require.NoError(t, f.cart.Add(ctx, domain.CartItem{ID: 1, Name: "A", UnitPrice: 100}))
	require.NoError(t, f.cart.Add(ctx, domain.CartItem{ID: 2, Name: "B", UnitPrice: 50, Quantity: 7}))
	assert.Equal(t, 1, f.cart.Items()[1].Quantity, "new lines start at quantity 1")

	require.NoError(t, f.cart.Apply(ctx, 1, domain.CartOpPlus))
	require.NoError(t, f.cart.Apply(ctx, 2, domain.CartOpMinus))
	assert.Equal(t, 1, f.cart.Items()[1].Quantity, "minus clamps at 1")
	require.NoError(t, f.cart.Apply(ctx, 2, domain.CartOpRemove))
	assert.ErrorIs(t, f.cart.Apply(ctx, 2, domain.CartOpPlus), domain.ErrCartItemNotFound)
	assert.Error(t, f.cart.Apply(ctx, 1, "double"))

	reloaded := NewCartUseCase(repository.NewCartRepository(f.store, testLogger()), f.catalog, f.api, "COP", testLogger())
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, []domain.CartItem{{ID: 1, Name: "A", UnitPrice: 100, Quantity: 2}}, reloaded.Items())
}

func TestCartLoadNormalizesStoredLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeAPI{down: true})
	require.NoError(t, f.store.Set(ctx, repository.KeyCart, []byte(`[
		{"id":1,"name":"A","unit_price":100,"quantity":0},
		{"id":1,"name":"A","unit_price":100,"quantity":2},
		{"id":0,"name":"ghost","unit_price":999,"quantity":3},
		{"id":2,"name":"B","unit_price":50,"quantity":-4}
	]`)))

	require.NoError(t, f.cart.Load(ctx))
	assert.Equal(t, []domain.CartItem{
		{ID: 1, Name: "A", UnitPrice: 100, Quantity: 3},
		{ID: 2, Name: "B", UnitPrice: 50, Quantity: 1},
	}, f.cart.Items())

	require.NoError(t, f.cart.Add(ctx, domain.CartItem{ID: 1, Name: "A", UnitPrice: 100}))
	items := f.cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, 5, f.cart.Count())
	assert.Equal(t, int64(450), f.cart.Total())
}

// flakyCartRepo fails every save once failSaves is set.
type flakyCartRepo struct {
	saved     []domain.CartItem
	failSaves bool
}

func (r *flakyCartRepo) LoadCart(context.Context) ([]domain.CartItem, error) {
	return r.saved, nil
}

func (r *flakyCartRepo) SaveCart(_ context.Context, items []domain.CartItem) error {
	if r.failSaves {
		return errors.New("disk full")
	}
	r.saved = append([]domain.CartItem(nil), items...)
	return nil
}

func TestCartFailedSaveKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeAPI{down: true})
	repo := &flakyCartRepo{}
	cart := NewCartUseCase(repo, f.catalog, f.api, "COP", testLogger())

	require.NoError(t, cart.Add(ctx, domain.CartItem{ID: 1, Name: "A", UnitPrice: 100}))
	require.NoError(t, cart.Add(ctx, domain.CartItem{ID: 2, Name: "B", UnitPrice: 50}))
	before := cart.Items()

	repo.failSaves = true
	assert.Error(t, cart.Add(ctx, domain.CartItem{ID: 1, Name: "A", UnitPrice: 100}))
	assert.Error(t, cart.Add(ctx, domain.CartItem{ID: 3, Name: "C", UnitPrice: 10}))
	assert.Error(t, cart.Apply(ctx, 1, domain.CartOpPlus))
	assert.Error(t, cart.Apply(ctx, 2, domain.CartOpRemove))

	assert.Equal(t, before, cart.Items())
	assert.Equal(t, repo.saved, cart.Items())
	assert.Equal(t, 2, cart.Count())
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{payment: "https://pay.example/init"}
	f := newFixture(api)

	_, err := f.cart.Checkout(ctx)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)

	require.NoError(t, f.cart.Add(ctx, domain.CartItem{ID: 4, Name: "Disco Duro 2TB", UnitPrice: 320000}))
	link, err := f.cart.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/init", link)
	assert.Equal(t, []domain.CheckoutItem{{ProductID: 4, Title: "Disco Duro 2TB", UnitPrice: 320000, Quantity: 1, CurrencyID: "COP"}}, api.lastCheckout.Items)

	api.payment = ""
	_, err = f.cart.Checkout(ctx)
	assert.ErrorIs(t, err, domain.ErrCheckoutUnavailable)

	api.down = true
	_, err = f.cart.Checkout(ctx)
	var netErr *clients.NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestAdminOfflineDeletePersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeAPI{down: true})
	f.catalog.FetchProducts(ctx)

	res, err := f.admin.Delete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, res.Offline)
	assert.Equal(t, []int64{1, 3, 4}, ids(res.Products))

	cached, err := f.cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 4}, ids(cached))
	assert.Equal(t, []int64{1, 3, 4}, ids(f.catalog.FetchProducts(ctx)))
}

func TestAdminOfflineCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeAPI{down: true})

	name := "Router"
	price := int64(99000)
	res, err := f.admin.Create(ctx, domain.ProductPatch{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.True(t, res.Offline)
	require.Len(t, res.Products, 5)
	created := res.Products[0]
	assert.Equal(t, int64(5), created.ProductID, "max id + 1")
	assert.Equal(t, domain.DefaultCategory, created.Category)
	assert.True(t, created.Active)

	stock := int64(0)
	res, err = f.admin.Update(ctx, 5, domain.ProductPatch{Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, "Router", res.Products[0].Name)
	assert.Equal(t, int64(0), res.Products[0].Stock)
}

func TestAdminOfflineCreateOnEmptyCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeAPI{down: true})
	require.NoError(t, f.cache.Save(ctx, []domain.Product{}))

	name := "Primero"
	res, err := f.admin.Create(ctx, domain.ProductPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(res.Products))
}

func TestAdminOnlineMutations(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{products: domain.SeedProducts()}
	f := newFixture(api)

	res, err := f.admin.Delete(ctx, 2)
	require.NoError(t, err)
	assert.False(t, res.Offline)
	assert.Equal(t, []int64{2}, api.deleted)

	name := ""
	_, err = f.admin.Create(ctx, domain.ProductPatch{Name: &name})
	assert.Error(t, err)

	discount := 150.0
	_, err = f.admin.Update(ctx, 1, domain.ProductPatch{DiscountPercent: &discount})
	assert.Error(t, err)
}

func TestAdminOrdersAndStats(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		orders: []domain.Order{{ID: 1, Status: "paid"}},
		stats:  &domain.SalesStats{Revenue: 1000, Orders: 2},
	}
	f := newFixture(api)

	assert.Len(t, f.admin.Orders(ctx, domain.OrderQuery{Status: "todos"}), 1)
	stats, err := f.admin.SalesStats(ctx, "month")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, stats.Revenue)
	assert.Equal(t, "/uploads/img.png", f.admin.UploadImage(ctx, "a.png", nil))

	api.down = true
	assert.Empty(t, f.admin.Orders(ctx, domain.OrderQuery{}))
	assert.NotNil(t, f.admin.Orders(ctx, domain.OrderQuery{}))
	_, err = f.admin.SalesStats(ctx, "month")
	assert.Error(t, err)
	assert.Empty(t, f.admin.UploadImage(ctx, "a.png", nil))
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	f := newFixture(api)

	assert.ErrorIs(t, f.admin.ChangePassword(ctx, " ", "abcdefgh", "abcdefgh"), domain.ErrPasswordFieldsRequired)
	assert.ErrorIs(t, f.admin.ChangePassword(ctx, "old", "abcdefgh", "abcdefgX"), domain.ErrPasswordMismatch)
	assert.ErrorIs(t, f.admin.ChangePassword(ctx, "old", "short", "short"), domain.ErrPasswordTooShort)
	assert.NoError(t, f.admin.ChangePassword(ctx, "old", "abcdefgh", "abcdefgh"))

	api.pwErr = &clients.HTTPError{StatusCode: http.StatusBadRequest, Payload: map[string]interface{}{"error": "invalid_password"}}
	assert.ErrorIs(t, f.admin.ChangePassword(ctx, "old", "abcdefgh", "abcdefgh"), domain.ErrWrongPassword)
	api.pwErr = &clients.HTTPError{StatusCode: http.StatusBadRequest, Payload: map[string]interface{}{"error": "weak_password"}}
	assert.ErrorIs(t, f.admin.ChangePassword(ctx, "old", "abcdefgh", "abcdefgh"), domain.ErrWeakPassword)
	api.pwErr = &clients.HTTPError{StatusCode: http.StatusInternalServerError}
	assert.ErrorIs(t, f.admin.ChangePassword(ctx, "old", "abcdefgh", "abcdefgh"), domain.ErrPasswordChangeFailed)
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{}
	f := newFixture(api)

	assert.ErrorIs(t, f.auth.Login(ctx, "admin@x.co", "bad"), domain.ErrInvalidCredentials)
	assert.False(t, f.auth.Authenticated(ctx))

	api.token = "opaque-token"
	require.NoError(t, f.auth.Login(ctx, "admin@x.co", "good"))
	assert.True(t, f.auth.Authenticated(ctx))

	require.NoError(t, f.auth.Logout(ctx))
	assert.False(t, f.auth.Authenticated(ctx))
}

func TestExpiredJWTIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(&fakeAPI{})

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, f.tokens.SetToken(ctx, expired))
	assert.False(t, f.auth.Authenticated(ctx))

	valid, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, f.tokens.SetToken(ctx, valid))
	assert.True(t, f.auth.Authenticated(ctx))
}
