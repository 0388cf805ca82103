package domain

// LineItem is one product in the cart together with its quantity.
type LineItem struct {
	Product
	Quantity int
}

// LineTotal is unit price times quantity.
func (i LineItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// GiftTransition describes what the promotion rule did after an operation.
type GiftTransition int

const (
	GiftUnchanged GiftTransition = iota
	GiftGranted
	GiftRevoked
)

func (g GiftTransition) String() string {
	switch g {
	case GiftGranted:
		return "GRANTED"
	case GiftRevoked:
		return "REVOKED"
	default:
		return "UNCHANGED"
	}
}

// Outcome reports the effect of a mutating operation. It is informational;
// no operation on Cart can fail.
type Outcome struct {
	// Changed is true when the operation itself modified the cart or the
	// pending quantities.
	Changed bool
	Gift    GiftTransition
}

// Cart is the cart state manager: the ordered line items, the pending "add"
// quantity per product, and whether the free gift is currently in the cart.
//
// Every mutating method ends with applyPromotion, so the gift is present
// exactly when Subtotal() >= Threshold after any call returns.
//
// A Cart is owned by a single goroutine; callers that share one must
// serialize access themselves.
type Cart struct {
	items     []LineItem
	pending   map[ProductID]int
	giftAdded bool
}

// NewCart returns an empty cart with no pending selections.
func NewCart() *Cart {
	return &Cart{pending: make(map[ProductID]int)}
}

// PendingQuantity is the quantity the next AddToCart for id contributes.
func (c *Cart) PendingQuantity(id ProductID) int {
	if q, ok := c.pending[id]; ok {
		return q
	}
	return 1
}

// AdjustPendingQuantity moves the pending quantity for id by delta, within
// [1, MaxQuantity]. Ids that were never touched start from 1.
func (c *Cart) AdjustPendingQuantity(id ProductID, delta int) Outcome {
	prev, had := c.pending[id]
	next := addQuantity(c.PendingQuantity(id), delta, 1)
	c.pending[id] = next

	return Outcome{
		Changed: !had || prev != next,
		Gift:    c.applyPromotion(),
	}
}

// AddToCart adds the pending quantity of a catalog product to the cart,
// merging into an existing line when there is one. The pending quantity is
// left as is so repeated adds reuse it. A line never grows past
// MaxQuantity. The free gift and unknown ids are ignored.
func (c *Cart) AddToCart(id ProductID) Outcome {
	product, ok := LookupProduct(id)
	if !ok {
		return Outcome{Gift: c.applyPromotion()}
	}

	qty := c.PendingQuantity(id)
	i := c.indexOf(id)
	if i < 0 {
		c.items = append(c.items, LineItem{Product: product, Quantity: qty})
		return Outcome{Changed: true, Gift: c.applyPromotion()}
	}

	prev := c.items[i].Quantity
	c.items[i].Quantity = addQuantity(prev, qty, 1)

	return Outcome{Changed: c.items[i].Quantity != prev, Gift: c.applyPromotion()}
}

// UpdateCartQuantity moves the quantity of an existing line by delta, up to
// MaxQuantity. A line whose quantity drops to zero or below is removed. Ids
// not in the cart are ignored.
func (c *Cart) UpdateCartQuantity(id ProductID, delta int) Outcome {
	i := c.indexOf(id)
	if i < 0 {
		return Outcome{Gift: c.applyPromotion()}
	}

	prev := c.items[i].Quantity
	next := addQuantity(prev, delta, 0)
	if next == 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	} else {
		c.items[i].Quantity = next
	}

	return Outcome{Changed: next != prev, Gift: c.applyPromotion()}
}

// RemoveFromCart drops the line for id. Removing the free gift is rejected.
func (c *Cart) RemoveFromCart(id ProductID) Outcome {
	if IsGift(id) {
		return Outcome{Gift: c.applyPromotion()}
	}

	i := c.indexOf(id)
	if i < 0 {
		return Outcome{Gift: c.applyPromotion()}
	}
	c.items = append(c.items[:i], c.items[i+1:]...)

	return Outcome{Changed: true, Gift: c.applyPromotion()}
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Subtotal sums every line except the free gift.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, it := range c.items {
		if IsGift(it.ID) {
			continue
		}
		total += it.LineTotal()
	}
	return total
}

// GiftAdded reports whether the promotion rule last granted the gift.
func (c *Cart) GiftAdded() bool {
	return c.giftAdded
}

// Progress is the percentage of the threshold reached, capped at 100.
func (c *Cart) Progress() float64 {
	return progress(c.Subtotal())
}

func progress(subtotal int64) float64 {
	pct := float64(subtotal) * 100 / float64(Threshold)
	return min(pct, 100)
}

// applyPromotion grants or revokes the free gift so that it is present
// exactly when the subtotal reaches Threshold. Calling it on a consistent
// cart does nothing.
func (c *Cart) applyPromotion() GiftTransition {
	subtotal := c.Subtotal()
	i := c.indexOf(GiftID)

	switch {
	case subtotal >= Threshold && i < 0:
		c.items = append(c.items, LineItem{Product: FreeGift, Quantity: 1})
		c.giftAdded = true
		return GiftGranted
	case subtotal < Threshold && i >= 0:
		c.items = append(c.items[:i], c.items[i+1:]...)
		c.giftAdded = false
		return GiftRevoked
	default:
		return GiftUnchanged
	}
}

// addQuantity returns q+delta clamped to [lo, MaxQuantity]. q is already in
// that range, so neither bound check can overflow whatever delta is.
func addQuantity(q, delta, lo int) int {
	switch {
	case delta > MaxQuantity-q:
		return MaxQuantity
	case delta < lo-q:
		return lo
	default:
		return q + delta
	}
}

func (c *Cart) indexOf(id ProductID) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
