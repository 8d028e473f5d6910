package domain

import "errors"

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrCheckoutUnavailable = errors.New("payment link not available")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthenticated     = errors.New("not authenticated")

	ErrPasswordFieldsRequired = errors.New("all password fields are required")
	ErrPasswordMismatch       = errors.New("new passwords do not match")
	ErrPasswordTooShort       = errors.New("new password must be at least 8 characters")
	ErrWrongPassword          = errors.New("invalid current password")
	ErrWeakPassword           = errors.New("new password is too weak")
	ErrPasswordChangeFailed   = errors.New("password could not be changed")
)
