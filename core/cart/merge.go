package cart

import (
	"context"
	"fmt"
)

// GuestSource is the durable guest cart read by the merge protocol.
type GuestSource interface {
	Snapshot(ctx context.Context) (Snapshot, error)
	Erase(ctx context.Context) error
}

// RemoteCart is the authoritative server cart guest items replay into.
type RemoteCart interface {
	Get(ctx context.Context) (Snapshot, error)
	AddItem(ctx context.Context, productID string, quantity int, mergeKey string) (Snapshot, error)
}

// Merge reconciles the guest cart into the server cart when a visitor
// authenticates. Each guest line is replayed as one add call, in insertion
// order, each awaited before the next. The line's merge key travels with the
// call so a retried replay presents the same idempotency key and the server
// can deduplicate it. The guest record is erased only after the
// authoritative cart has been fetched; any earlier failure leaves the record
// in place so a later attempt can run the protocol again.
//
// An empty or absent guest cart issues no add calls: the server cart is
// fetched and adopted as-is.
func Merge(ctx context.Context, guest GuestSource, remote RemoteCart) (Snapshot, error) {
	snap, err := guest.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading guest cart: %w", err)
	}

	for _, it := range snap.Items {
		if _, err := remote.AddItem(ctx, it.Product.ID, it.Quantity, it.MergeKey); err != nil {
			return Snapshot{}, fmt.Errorf("replaying item for product[%s]: %w", it.Product.ID, err)
		}
	}

	merged, err := remote.Get(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetching merged cart: %w", err)
	}

	if err := guest.Erase(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("erasing guest cart: %w", err)
	}

	return merged, nil
}
