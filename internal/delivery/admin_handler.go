package delivery

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/export"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	orderStatuses = []string{"todos", "pending", "approved", "paid", "rejected", "cancelled"}
	statsRanges   = []string{"week", "month", "year"}
)

type AdminHandler struct {
	pages
	admin usecase.AdminUseCase
	log   *logrus.Logger
}

func NewAdminHandler(p pages, admin usecase.AdminUseCase, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		pages: p,
		admin: admin,
		log:   logger,
	}
}

// RegisterRoutes expects router to already carry the admin guard.
func (h *AdminHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("", h.Dashboard)
	router.POST("/upload", h.UploadImage)
	router.POST("/password", h.ChangePassword)
	router.GET("/orders", h.Orders)
	router.GET("/orders/export.csv", h.ExportOrders)
	router.GET("/stats", h.Stats)

	products := router.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.POST("/:id", h.UpdateProduct)
		products.POST("/:id/delete", h.DeleteProduct)
		products.GET("/export.csv", h.ExportProducts)
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	h.renderDashboard(c, http.StatusOK, h.admin.List(c.Request.Context()), false, "", "")
}

func (h *AdminHandler) renderDashboard(c *gin.Context, status int, products []domain.Product, offline bool, uploaded, errMsg string) {
	h.render(c, status, "admin.html", "Administración", gin.H{
		"Products":    products,
		"Offline":     offline,
		"UploadedURL": uploaded,
		"Error":       errMsg,
	})
}

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	patch, err := bindProductPatch(c)
	if err != nil {
		h.renderDashboard(c, http.StatusBadRequest, h.admin.List(c.Request.Context()), false, "", err.Error())
		return
	}
	res, err := h.admin.Create(c.Request.Context(), patch)
	h.afterMutation(c, res, err, "created")
}

func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.renderDashboard(c, http.StatusBadRequest, h.admin.List(c.Request.Context()), false, "", "ID de producto inválido")
		return
	}
	patch, err := bindProductPatch(c)
	if err != nil {
		h.renderDashboard(c, http.StatusBadRequest, h.admin.List(c.Request.Context()), false, "", err.Error())
		return
	}
	res, err := h.admin.Update(c.Request.Context(), id, patch)
	h.afterMutation(c, res, err, "updated")
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.renderDashboard(c, http.StatusBadRequest, h.admin.List(c.Request.Context()), false, "", "ID de producto inválido")
		return
	}
	res, err := h.admin.Delete(c.Request.Context(), id)
	h.afterMutation(c, res, err, "deleted")
}

// afterMutation redirects after an online change. Offline changes are
// rendered directly so the warning banner shows with the re-listed products.
func (h *AdminHandler) afterMutation(c *gin.Context, res *usecase.MutationResult, err error, notice string) {
	if err != nil {
		h.log.Warnf("Admin mutation rejected: %v", err)
		h.renderDashboard(c, mapErrorToStatus(err), h.admin.List(c.Request.Context()), false, "", userMessage(err))
		return
	}
	if res.Offline {
		h.renderDashboard(c, http.StatusOK, res.Products, true, "", "")
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin?notice="+notice)
}

// bindProductPatch reads the admin product form. Blank fields are left unset.
func bindProductPatch(c *gin.Context) (domain.ProductPatch, error) {
	var patch domain.ProductPatch

	if v, ok := c.GetPostForm("name"); ok {
		v = strings.TrimSpace(v)
		patch.Name = &v
	}
	if v, ok := c.GetPostForm("category"); ok && strings.TrimSpace(v) != "" {
		v = strings.TrimSpace(v)
		patch.Category = &v
	}
	if v, ok := c.GetPostForm("image_url"); ok {
		v = strings.TrimSpace(v)
		patch.ImageURL = &v
	}
	if v := strings.TrimSpace(c.PostForm("price")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return patch, fmt.Errorf("invalid price %q", v)
		}
		patch.Price = &n
	}
	if v := strings.TrimSpace(c.PostForm("stock")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return patch, fmt.Errorf("invalid stock %q", v)
		}
		patch.Stock = &n
	}
	if v := strings.TrimSpace(c.PostForm("discount_percent")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return patch, fmt.Errorf("invalid discount %q", v)
		}
		patch.DiscountPercent = &f
	}
	if v, ok := c.GetPostForm("active"); ok {
		active := v == "on" || v == "true" || v == "1"
		patch.Active = &active
	}
	return patch, nil
}

func (h *AdminHandler) UploadImage(c *gin.Context) {
	ctx := c.Request.Context()
	header, err := c.FormFile("image")
	if err != nil {
		h.renderDashboard(c, http.StatusBadRequest, h.admin.List(ctx), false, "", "Selecciona una imagen para subir")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.log.Errorf("Could not open uploaded file %s: %v", header.Filename, err)
		h.renderDashboard(c, http.StatusBadRequest, h.admin.List(ctx), false, "", "No se pudo leer la imagen")
		return
	}
	defer file.Close()

	uploaded := h.admin.UploadImage(ctx, header.Filename, file)
	if uploaded == "" {
		h.renderDashboard(c, http.StatusBadGateway, h.admin.List(ctx), false, "", "No se pudo subir la imagen")
		return
	}
	h.renderDashboard(c, http.StatusOK, h.admin.List(ctx), false, uploaded, "")
}

func (h *AdminHandler) ChangePassword(c *gin.Context) {
	ctx := c.Request.Context()
	err := h.admin.ChangePassword(ctx, c.PostForm("old_password"), c.PostForm("new_password"), c.PostForm("new_password_confirm"))
	if err != nil {
		h.renderDashboard(c, mapErrorToStatus(err), h.admin.List(ctx), false, "", userMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin?notice=password")
}

func bindOrderQuery(c *gin.Context) domain.OrderQuery {
	var q domain.OrderQuery
	_ = c.ShouldBindQuery(&q)
	if q.Status == "" {
		q.Status = "todos"
	}
	return q
}

func (h *AdminHandler) Orders(c *gin.Context) {
	q := bindOrderQuery(c)
	orders := h.admin.Orders(c.Request.Context(), q)

	h.render(c, http.StatusOK, "orders.html", "Ventas", gin.H{
		"Orders":     orders,
		"OrderQuery": q,
		"Statuses":   orderStatuses,
		"ExportURL":  exportOrdersURL(q),
	})
}

func exportOrdersURL(q domain.OrderQuery) template.URL {
	params := url.Values{}
	params.Set("status", q.Status)
	if q.Query != "" {
		params.Set("q", q.Query)
	}
	if q.From != "" {
		params.Set("from", q.From)
	}
	if q.To != "" {
		params.Set("to", q.To)
	}
	return template.URL("/admin/orders/export.csv?" + params.Encode())
}

func (h *AdminHandler) ExportOrders(c *gin.Context) {
	orders := h.admin.Orders(c.Request.Context(), bindOrderQuery(c))
	c.Header("Content-Disposition", `attachment; filename="ventas.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	if err := export.WriteOrders(c.Writer, orders); err != nil {
		h.log.Errorf("Orders CSV export failed: %v", err)
		_ = c.Error(err)
	}
}

func (h *AdminHandler) ExportProducts(c *gin.Context) {
	products := h.admin.List(c.Request.Context())
	c.Header("Content-Disposition", `attachment; filename="productos.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	if err := export.WriteProducts(c.Writer, products); err != nil {
		h.log.Errorf("Products CSV export failed: %v", err)
		_ = c.Error(err)
	}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	rangeKey := c.DefaultQuery("range", "month")
	stats, err := h.admin.SalesStats(c.Request.Context(), rangeKey)
	errMsg := ""
	if err != nil {
		errMsg = "No se pudieron cargar las estadísticas."
		stats = &domain.SalesStats{Range: rangeKey, Series: []domain.SalesPoint{}}
	}
	h.render(c, http.StatusOK, "stats.html", "Estadísticas", gin.H{
		"Stats":  stats,
		"Range":  rangeKey,
		"Ranges": statsRanges,
		"Error":  errMsg,
	})
}
