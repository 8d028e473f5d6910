package delivery

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/clients"
	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

func mapErrorToStatus(err error) int {
	var (
		httpErr  *clients.HTTPError
		netErr   *clients.NetworkError
		shapeErr *clients.ShapeError
	)

	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrCartItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrPasswordFieldsRequired),
		errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrWrongPassword),
		errors.Is(err, domain.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.As(err, &netErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &httpErr), errors.As(err, &shapeErr), errors.Is(err, domain.ErrCheckoutUnavailable):
		return http.StatusBadGateway
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "cannot be empty") || strings.Contains(errMsg, "cannot be negative") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// userMessage turns an error into the text shown on HTML pages.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "Tu carrito está vacío"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Usuario o contraseña incorrectos"
	case errors.Is(err, domain.ErrPasswordFieldsRequired):
		return "Completa todos los campos."
	case errors.Is(err, domain.ErrPasswordMismatch):
		return "Las contraseñas nuevas no coinciden."
	case errors.Is(err, domain.ErrPasswordTooShort):
		return "La nueva contraseña debe tener al menos 8 caracteres."
	case errors.Is(err, domain.ErrWrongPassword):
		return "La contraseña actual no es correcta."
	case errors.Is(err, domain.ErrWeakPassword):
		return "La nueva contraseña es muy débil."
	case errors.Is(err, domain.ErrPasswordChangeFailed):
		return "No se pudo actualizar la contraseña, intenta más tarde."
	case errors.Is(err, domain.ErrProductNotFound):
		return "Producto no disponible."
	}

	var netErr *clients.NetworkError
	if errors.As(err, &netErr) {
		return "Error de conexión con el servidor."
	}
	if mapErrorToStatus(err) == http.StatusBadRequest {
		return err.Error()
	}
	return "No se pudo completar la operación, intenta más tarde."
}
