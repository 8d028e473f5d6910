package domain

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const (
	DefaultCategory = "General"
	DefaultImage    = "images/banner1.jpg"
)

type Product struct {
	ProductID       int64   `json:"product_id"`
	Name            string  `json:"name"`
	Price           int64   `json:"price"`
	Stock           int64   `json:"stock"`
	DiscountPercent float64 `json:"discount_percent"`
	ImageURL        string  `json:"image_url"`
	Category        string  `json:"category"`
	Active          bool    `json:"active"`
}

var hundred = decimal.NewFromInt(100)

// EffectivePrice is max(0, round(price * (1 - discount/100))).
func (p Product) EffectivePrice() int64 {
	factor := hundred.Sub(decimal.NewFromFloat(p.DiscountPercent)).Div(hundred)
	final := decimal.NewFromInt(p.Price).Mul(factor).Round(0)
	if final.IsNegative() {
		return 0
	}
	return final.IntPart()
}

func (p Product) HasDiscount() bool {
	return p.DiscountPercent > 0
}

// UnmarshalJSON accepts numbers or numeric strings for the numeric fields.
// Values that cannot be read as a number decode as zero. A missing
// "active" key means the product is active.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Product{
		ProductID:       lenientInt(raw["product_id"]),
		Name:            cast.ToString(raw["name"]),
		Price:           lenientInt(raw["price"]),
		Stock:           lenientInt(raw["stock"]),
		DiscountPercent: lenientFloat(raw["discount_percent"]),
		ImageURL:        cast.ToString(raw["image_url"]),
		Category:        cast.ToString(raw["category"]),
		Active:          true,
	}
	if v, ok := raw["active"]; ok && v != nil {
		p.Active = cast.ToBool(v)
	}
	return nil
}

func lenientFloat(v interface{}) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func lenientInt(v interface{}) int64 {
	return int64(math.Round(lenientFloat(v)))
}

// ProductPatch carries the admin form fields. Nil fields are left untouched
// on update and take their defaults on create.
type ProductPatch struct {
	Name            *string  `json:"name,omitempty" form:"name"`
	Price           *int64   `json:"price,omitempty" form:"price"`
	Stock           *int64   `json:"stock,omitempty" form:"stock"`
	DiscountPercent *float64 `json:"discount_percent,omitempty" form:"discount_percent"`
	ImageURL        *string  `json:"image_url,omitempty" form:"image_url"`
	Category        *string  `json:"category,omitempty" form:"category"`
	Active          *bool    `json:"active,omitempty" form:"active"`
}

func (patch ProductPatch) ApplyTo(p Product) Product {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.DiscountPercent != nil {
		p.DiscountPercent = *patch.DiscountPercent
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	return p
}

// NewProduct builds a product with the admin defaults and the patch applied.
func NewProduct(id int64, patch ProductPatch) Product {
	return patch.ApplyTo(Product{
		ProductID: id,
		Category:  DefaultCategory,
		Active:    true,
	})
}

func (p Product) ToCartItem(image string) CartItem {
	return CartItem{
		ID:        p.ProductID,
		Name:      p.Name,
		UnitPrice: p.EffectivePrice(),
		Image:     image,
	}
}

