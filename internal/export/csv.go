package export

import (
	"fmt"
	"io"

	"storefront/internal/domain"

	"github.com/gocarina/gocsv"
)

type productRow struct {
	ProductID       int64   `csv:"product_id"`
	Name            string  `csv:"name"`
	Category        string  `csv:"category"`
	Price           int64   `csv:"price"`
	DiscountPercent float64 `csv:"discount_percent"`
	FinalPrice      int64   `csv:"final_price"`
	Stock           int64   `csv:"stock"`
	Active          bool    `csv:"active"`
	ImageURL        string  `csv:"image_url"`
}

// WriteProducts writes the catalog as CSV, including the effective price.
func WriteProducts(w io.Writer, products []domain.Product) error {
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, productRow{
			ProductID:       p.ProductID,
			Name:            p.Name,
			Category:        p.Category,
			Price:           p.Price,
			DiscountPercent: p.DiscountPercent,
			FinalPrice:      p.EffectivePrice(),
			Stock:           p.Stock,
			Active:          p.Active,
			ImageURL:        p.ImageURL,
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write products csv: %w", err)
	}
	return nil
}

func WriteOrders(w io.Writer, orders []domain.Order) error {
	if orders == nil {
		orders = []domain.Order{}
	}
	if err := gocsv.Marshal(orders, w); err != nil {
		return fmt.Errorf("failed to write orders csv: %w", err)
	}
	return nil
}
