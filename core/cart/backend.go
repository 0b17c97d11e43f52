package cart

import "context"

// Backend is the cart capability behind every storefront session. The guest
// and server variants implement the same operations, so the backend is
// picked once per request from session state instead of branching on an
// authentication flag at every call site.
type Backend interface {
	Get(ctx context.Context) (Snapshot, error)
	Add(ctx context.Context, product ProductRef, quantity int) (Snapshot, error)
	SetQuantity(ctx context.Context, itemID string, quantity int) (Snapshot, error)
	Remove(ctx context.Context, itemID string) (Snapshot, error)
	Clear(ctx context.Context) error
}

// Selector yields the backend serving the current request.
type Selector interface {
	Backend(ctx context.Context) (Backend, error)
}
