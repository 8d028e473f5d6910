package domain

import "context"

// CartItem is one cart line. UnitPrice is the effective price captured
// when the product was added.
type CartItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
}

func (i CartItem) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

type CartOp string

const (
	CartOpPlus   CartOp = "plus"
	CartOpMinus  CartOp = "minus"
	CartOpRemove CartOp = "del"
)

func IsValidCartOp(op CartOp) bool {
	switch op {
	case CartOpPlus, CartOpMinus, CartOpRemove:
		return true
	default:
		return false
	}
}

// CheckoutItem is the payment line sent to the backend.
type CheckoutItem struct {
	ProductID  int64  `json:"product_id"`
	Title      string `json:"title"`
	UnitPrice  int64  `json:"unit_price"`
	Quantity   int    `json:"quantity"`
	CurrencyID string `json:"currency_id"`
}

type CheckoutRequest struct {
	Items []CheckoutItem `json:"items"`
}

type CartRepository interface {
	LoadCart(ctx context.Context) ([]CartItem, error)
	SaveCart(ctx context.Context, items []CartItem) error
}
