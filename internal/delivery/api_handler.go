package delivery

import (
	"net/http"
	"strconv"

	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BackendStatus reports whether the last catalog fetch reached the backend.
type BackendStatus interface {
	BackendReachable() bool
}

type APIHandler struct {
	catalog usecase.CatalogUseCase
	cart    usecase.CartUseCase
	status  BackendStatus
	log     *logrus.Logger
}

func NewAPIHandler(catalog usecase.CatalogUseCase, cart usecase.CartUseCase, status BackendStatus, logger *logrus.Logger) *APIHandler {
	return &APIHandler{
		catalog: catalog,
		cart:    cart,
		status:  status,
		log:     logger,
	}
}

// RegisterRoutes mounts the JSON API. search is applied to the product
// listing only.
func (h *APIHandler) RegisterRoutes(router gin.IRouter, search gin.HandlerFunc) {
	router.GET("/products", search, h.ListProducts)
	router.GET("/products/:id", h.GetProduct)
	router.GET("/categories", h.ListCategories)

	cart := router.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddCartItem)
		cart.PATCH("/items/:id", h.UpdateCartItem)
		cart.DELETE("/items/:id", h.RemoveCartItem)
		cart.POST("/checkout", h.Checkout)
	}
}

func (h *APIHandler) ListProducts(c *gin.Context) {
	filter, sortKey := bindCatalogQuery(c, h.log)
	products := h.catalog.Browse(c.Request.Context(), filter, sortKey)
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *APIHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}
	product, err := h.catalog.ProductByID(c.Request.Context(), id)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve product: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *APIHandler) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", gin.H{
		"featured": h.catalog.Categories(ctx, usecase.CategoryLimit),
		"options":  usecase.CategoryOptions(h.catalog.FetchProducts(ctx)),
	})
}

type cartView struct {
	Items []domain.CartItem `json:"items"`
	Total int64             `json:"total"`
	Count int               `json:"count"`
}

func (h *APIHandler) cartView() cartView {
	return cartView{Items: h.cart.Items(), Total: h.cart.Total(), Count: h.cart.Count()}
}

func (h *APIHandler) GetCart(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", h.cartView())
}

func (h *APIHandler) AddCartItem(c *gin.Context) {
	var body struct {
		ProductID int64 `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if _, err := h.cart.AddProduct(c.Request.Context(), body.ProductID); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to add to cart: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "Product added to cart", h.cartView())
}

func (h *APIHandler) UpdateCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}
	var body struct {
		Op domain.CartOp `json:"op" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	h.applyCartOp(c, id, body.Op)
}

func (h *APIHandler) RemoveCartItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}
	h.applyCartOp(c, id, domain.CartOpRemove)
}

func (h *APIHandler) applyCartOp(c *gin.Context, id int64, op domain.CartOp) {
	if err := h.cart.Apply(c.Request.Context(), id, op); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update cart: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart updated", h.cartView())
}

func (h *APIHandler) Checkout(c *gin.Context) {
	link, err := h.cart.Checkout(c.Request.Context())
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Checkout failed: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Checkout started", gin.H{"init_point": link})
}

func (h *APIHandler) Health(c *gin.Context) {
	reachable := h.status == nil || h.status.BackendReachable()
	status := "ok"
	if !reachable {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "backend_reachable": reachable})
}
