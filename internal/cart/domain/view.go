package domain

import "fmt"

// CatalogEntry is a catalog product with its pending "add" quantity.
type CatalogEntry struct {
	Product
	Pending int
}

// LineView is a cart line as shown to the shopper.
type LineView struct {
	Product
	Quantity  int
	LineTotal int64
	// Controls is false for the free gift, which the shopper cannot edit.
	Controls bool
}

// Label renders the line as "Laptop - ₹500 x 2".
func (l LineView) Label() string {
	return fmt.Sprintf("%s - %s x %d", l.Name, FormatRupees(l.Price), l.Quantity)
}

// View is the read-only state a presentation layer renders. It is derived
// from the cart on every call and never stored.
type View struct {
	Catalog      []CatalogEntry
	Items        []LineView
	Subtotal     int64
	Threshold    int64
	ThresholdMet bool
	GiftAdded    bool
	Progress     float64
	Remaining    int64
}

// View snapshots the cart for rendering.
func (c *Cart) View() View {
	products := Catalog()
	entries := make([]CatalogEntry, len(products))
	for i, p := range products {
		entries[i] = CatalogEntry{Product: p, Pending: c.PendingQuantity(p.ID)}
	}

	lines := make([]LineView, len(c.items))
	for i, it := range c.items {
		lines[i] = LineView{
			Product:   it.Product,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
			Controls:  !IsGift(it.ID),
		}
	}

	subtotal := c.Subtotal()
	return View{
		Catalog:      entries,
		Items:        lines,
		Subtotal:     subtotal,
		Threshold:    Threshold,
		ThresholdMet: subtotal >= Threshold,
		GiftAdded:    c.giftAdded,
		Progress:     progress(subtotal),
		Remaining:    max(Threshold-subtotal, 0),
	}
}

// Message is the line shown under the progress bar.
func (v View) Message() string {
	if v.ThresholdMet {
		return "🎁 You've earned the free gift!"
	}
	return fmt.Sprintf("Add %s more to unlock your free gift!", FormatRupees(v.Remaining))
}

// Banner is shown while the gift sits in the cart, empty otherwise.
func (v View) Banner() string {
	if !v.GiftAdded {
		return ""
	}
	return "🎉 Free gift added to your cart!"
}

// Empty reports whether the cart has no lines at all.
func (v View) Empty() bool {
	return len(v.Items) == 0
}

// TotalLabel renders the cart footer.
func (v View) TotalLabel() string {
	return "Total: " + FormatRupees(v.Subtotal)
}

// EmptyCartText is shown in place of the cart lines when there are none.
const EmptyCartText = "Your cart is empty."
