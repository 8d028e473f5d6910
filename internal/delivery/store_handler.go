package delivery

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type StoreHandler struct {
	pages
	catalog usecase.CatalogUseCase
	log     *logrus.Logger
}

func NewStoreHandler(p pages, catalog usecase.CatalogUseCase, logger *logrus.Logger) *StoreHandler {
	return &StoreHandler{
		pages:   p,
		catalog: catalog,
		log:     logger,
	}
}

// RegisterRoutes mounts the storefront pages. search guards the catalog
// listing, which is where text queries arrive.
func (h *StoreHandler) RegisterRoutes(router gin.IRouter, search gin.HandlerFunc) {
	router.GET("/", h.Home)

	products := router.Group("/products")
	{
		products.GET("", search, h.Catalog)
		products.GET("/:id", h.ProductDetail)
		products.POST("/:id/buy", h.BuyNow)
	}

	cart := router.Group("/cart")
	{
		cart.GET("", h.CartPage)
		cart.POST("/items", h.AddToCart)
		cart.POST("/items/:id/:op", h.UpdateCartItem)
		cart.POST("/checkout", h.Checkout)
	}

	router.GET("/login", h.LoginPage)
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
}

func (h *StoreHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	h.render(c, http.StatusOK, "home.html", "Inicio", gin.H{
		"Products":   h.catalog.Featured(ctx, usecase.FeaturedLimit),
		"Categories": h.catalog.Categories(ctx, usecase.CategoryLimit),
	})
}

func (h *StoreHandler) Catalog(c *gin.Context) {
	filter, sortKey := bindCatalogQuery(c, h.log)

	all := h.catalog.FetchProducts(c.Request.Context())
	products := usecase.SortProducts(usecase.FilterProducts(all, filter), sortKey)

	selected := strings.ToLower(strings.TrimSpace(filter.Category))
	if domain.IsAllCategory(selected) {
		selected = domain.CategoryAll
	}

	h.render(c, http.StatusOK, "catalog.html", "Catálogo", gin.H{
		"Products":         products,
		"Filter":           filter,
		"Query":            filter.Query,
		"Sort":             string(sortKey),
		"SelectedCategory": selected,
		"CategoryOptions":  usecase.CategoryOptions(all),
	})
}

// bindCatalogQuery reads q, cat, min, max, discount and sort. Prices may be
// fractional and are rounded to whole pesos. Unparsable numbers are treated
// as unset.
func bindCatalogQuery(c *gin.Context, log *logrus.Logger) (domain.Filter, domain.SortKey) {
	filter := domain.Filter{
		Query:        c.Query("q"),
		Category:     c.Query("cat"),
		DiscountOnly: c.Query("discount") == "true" || c.Query("discount") == "on",
	}
	if v := c.Query("min"); v != "" {
		if n, ok := parsePrice(v); ok {
			filter.MinPrice = n
		} else {
			log.Debugf("Ignoring invalid min price %q", v)
		}
	}
	if v := c.Query("max"); v != "" {
		if n, ok := parsePrice(v); ok {
			filter.MaxPrice = n
		} else {
			log.Debugf("Ignoring invalid max price %q", v)
		}
	}
	return filter, domain.SortKey(c.DefaultQuery("sort", string(domain.SortRecent)))
}

func parsePrice(v string) (int64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Round(f)), true
}

func (h *StoreHandler) ProductDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.render(c, http.StatusNotFound, "product.html", "Producto", gin.H{"Product": nil, "Error": "Producto no encontrado."})
		return
	}

	product, err := h.catalog.ProductByID(c.Request.Context(), id)
	if err != nil {
		h.log.Warnf("Product %d requested but not available: %v", id, err)
		h.render(c, mapErrorToStatus(err), "product.html", "Producto", gin.H{"Product": nil})
		return
	}
	h.render(c, http.StatusOK, "product.html", product.Name, gin.H{"Product": product})
}

func (h *StoreHandler) BuyNow(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Redirect(http.StatusSeeOther, "/products")
		return
	}
	if _, err := h.cart.AddProduct(c.Request.Context(), id); err != nil {
		h.log.Errorf("Buy now failed for product %d: %v", id, err)
		h.renderCart(c, mapErrorToStatus(err), userMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/cart")
}

func (h *StoreHandler) AddToCart(c *gin.Context) {
	id, err := strconv.ParseInt(c.PostForm("product_id"), 10, 64)
	if err != nil || id <= 0 {
		h.renderCart(c, http.StatusBadRequest, "Producto inválido")
		return
	}
	if _, err := h.cart.AddProduct(c.Request.Context(), id); err != nil {
		h.log.Errorf("Adding product %d to cart failed: %v", id, err)
		h.renderCart(c, mapErrorToStatus(err), userMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, localPath(c.PostForm("return_to"), "/cart")+"?notice=added")
}

func (h *StoreHandler) CartPage(c *gin.Context) {
	h.renderCart(c, http.StatusOK, "")
}

func (h *StoreHandler) renderCart(c *gin.Context, status int, errMsg string) {
	h.render(c, status, "cart.html", "Carrito", gin.H{
		"Items": h.cart.Items(),
		"Total": h.cart.Total(),
		"Error": errMsg,
	})
}

func (h *StoreHandler) UpdateCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.renderCart(c, http.StatusBadRequest, "Producto inválido")
		return
	}
	if err := h.cart.Apply(c.Request.Context(), id, domain.CartOp(c.Param("op"))); err != nil {
		h.log.Warnf("Cart operation %s on %d failed: %v", c.Param("op"), id, err)
		h.renderCart(c, mapErrorToStatus(err), userMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/cart")
}

func (h *StoreHandler) Checkout(c *gin.Context) {
	link, err := h.cart.Checkout(c.Request.Context())
	if err != nil {
		h.renderCart(c, mapErrorToStatus(err), userMessage(err))
		return
	}
	h.log.Infof("Redirecting to hosted checkout")
	c.Redirect(http.StatusSeeOther, link)
}

func (h *StoreHandler) LoginPage(c *gin.Context) {
	if h.auth.Authenticated(c.Request.Context()) {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	h.render(c, http.StatusOK, "login.html", "Ingresar", gin.H{"Email": ""})
}

func (h *StoreHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	if err := h.auth.Login(c.Request.Context(), email, c.PostForm("password")); err != nil {
		h.render(c, mapErrorToStatus(err), "login.html", "Ingresar", gin.H{
			"Email": email,
			"Error": userMessage(err),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *StoreHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		h.log.Errorf("Logout failed: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/?notice=logout")
}

// localPath returns p when it is a same-site absolute path, else fallback.
func localPath(p, fallback string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsAny(p, "?\\") {
		return fallback
	}
	return p
}
