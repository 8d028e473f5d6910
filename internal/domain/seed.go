package domain

// SeedProducts returns a fresh copy of the built-in catalog used when the
// backend is unreachable and nothing has been cached yet.
func SeedProducts() []Product {
	return []Product{
		{ProductID: 1, Name: "Torre Gamer", Price: 850000, Stock: 10, DiscountPercent: 10, ImageURL: "images/banner1.jpg", Category: "computadoras", Active: true},
		{ProductID: 2, Name: "Monitor 27\"", Price: 450000, Stock: 5, DiscountPercent: 0, ImageURL: "images/banner1.jpg", Category: "computadoras", Active: true},
		{ProductID: 3, Name: "Cámara IP", Price: 600000, Stock: 8, DiscountPercent: 5, ImageURL: "images/banner1.jpg", Category: "camaras", Active: true},
		{ProductID: 4, Name: "Disco Duro 2TB", Price: 320000, Stock: 12, DiscountPercent: 0, ImageURL: "images/banner1.jpg", Category: "componentes", Active: true},
	}
}
