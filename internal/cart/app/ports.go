package app

import (
	"context"

	"github.com/jcmexdev/gift-cart/internal/cart/domain"
	"github.com/jcmexdev/gift-cart/internal/cart/journal"
)

// CartService is the port the transport layers drive.
type CartService interface {
	StartSession(ctx context.Context) (string, domain.View)
	EndSession(ctx context.Context, id string) error
	View(ctx context.Context, id string) (domain.View, error)
	AdjustPendingQuantity(ctx context.Context, id string, productID domain.ProductID, delta int) (domain.View, error)
	AddToCart(ctx context.Context, id string, productID domain.ProductID) (domain.View, error)
	UpdateCartQuantity(ctx context.Context, id string, productID domain.ProductID, delta int) (domain.View, error)
	RemoveFromCart(ctx context.Context, id string, productID domain.ProductID) (domain.View, error)
	Journal(ctx context.Context, id string) ([]journal.Entry, error)
}

var _ CartService = (*Service)(nil)
