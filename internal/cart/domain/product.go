package domain

import "fmt"

// ProductID identifies a catalog product or the promotional item.
type ProductID int

// Product is an immutable catalog entry. Prices are whole rupees.
type Product struct {
	ID    ProductID
	Name  string
	Price int64
}

// Threshold is the subtotal at which the free gift is granted.
const Threshold int64 = 1000

// MaxQuantity caps pending and line quantities. Adjustments saturate at it,
// which keeps Price*Quantity and the subtotal far from int64 overflow.
const MaxQuantity = 9999

// GiftID is reserved for the promotional item and never used by the catalog.
const GiftID ProductID = 99

// FreeGift is managed by the promotion rule only. It cannot be bought.
var FreeGift = Product{ID: GiftID, Name: "Wireless Mouse", Price: 0}

var catalog = []Product{
	{ID: 1, Name: "Laptop", Price: 500},
	{ID: 2, Name: "Smartphone", Price: 300},
	{ID: 3, Name: "Headphones", Price: 100},
	{ID: 4, Name: "Smartwatch", Price: 150},
}

// Catalog returns the purchasable products in display order.
func Catalog() []Product {
	out := make([]Product, len(catalog))
	copy(out, catalog)
	return out
}

// LookupProduct finds a catalog product. The free gift is not in the catalog.
func LookupProduct(id ProductID) (Product, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// IsGift reports whether id is the promotional item's reserved id.
func IsGift(id ProductID) bool {
	return id == GiftID
}

// FormatRupees renders an amount the way the storefront displays prices.
func FormatRupees(amount int64) string {
	return fmt.Sprintf("₹%d", amount)
}
