package delivery

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"storefront/config"
	"storefront/internal/usecase"
	"storefront/pkg/money"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

func loadTemplates(resolveImage func(string) string) (*template.Template, error) {
	funcs := template.FuncMap{
		"money":   money.Format,
		"moneyf":  money.FormatFloat,
		"percent": money.Percent,
		"img":     resolveImage,
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

func staticFiles() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// notices are the flash messages a redirect may ask the next page to show.
var notices = map[string]string{
	"added":    "Producto agregado al carrito",
	"created":  "Producto creado",
	"updated":  "Producto actualizado",
	"deleted":  "Producto eliminado",
	"password": "Contraseña actualizada correctamente",
	"logout":   "Sesión cerrada",
}

// pages renders HTML with the header and footer data every page needs.
type pages struct {
	cart  usecase.CartUseCase
	auth  usecase.AuthUseCase
	store config.StoreInfo
}

func (p pages) render(c *gin.Context, status int, name, title string, data gin.H) {
	view := gin.H{
		"Title":     title,
		"Store":     p.store,
		"CartCount": p.cart.Count(),
		"LoggedIn":  p.auth.Authenticated(c.Request.Context()),
		"Notice":    notices[c.Query("notice")],
		"Error":     "",
		"Query":     "",
		"Year":      time.Now().Year(),
	}
	for k, v := range data {
		view[k] = v
	}
	c.HTML(status, name, view)
}
