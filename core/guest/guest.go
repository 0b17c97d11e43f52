// Package guest keeps cart state for unauthenticated visitors. Each cart is
// one durable JSON record under the visitor's cart id; every mutation
// recomputes totals and writes the whole record back. Nothing here talks to
// the upstream store API.
package guest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prakash4830/dry-fruits-ecommerce/core/cart"
	"github.com/prakash4830/dry-fruits-ecommerce/random"
	"github.com/prakash4830/dry-fruits-ecommerce/validate"
	"github.com/sirupsen/logrus"
)

// schemaVersion tags the persisted record. Records without a version are
// upgraded on load (merge keys backfilled); records written by a newer
// schema are treated as absent rather than misread.
const schemaVersion = 1

var ErrNotFound = errors.New("guest cart not found")

// Storage persists the full guest cart record under its cart id. Save
// replaces the whole record; there is no partial update path.
type Storage interface {
	Load(ctx context.Context, cartID string) ([]byte, error)
	Save(ctx context.Context, cartID string, payload []byte) error
	Erase(ctx context.Context, cartID string) error
}

type Store struct {
	storage Storage
	policy  cart.Policy
	log     logrus.FieldLogger
}

func NewStore(storage Storage, policy cart.Policy, log logrus.FieldLogger) *Store {
	return &Store{storage: storage, policy: policy, log: log}
}

// Bind returns the cart stored under the given id. An empty id yields a cart
// that reads empty and silently drops writes; callers mint an id before the
// first mutation.
func (s *Store) Bind(cartID string) *Cart {
	return &Cart{store: s, id: cartID}
}

// Cart is one visitor's guest cart, bound to its storage key.
type Cart struct {
	store *Store
	id    string
}

type record struct {
	Version  int          `json:"version"`
	Items    []storedItem `json:"items"`
	Subtotal int64        `json:"subtotal"`
	Tax      int64        `json:"tax"`
	Shipping int64        `json:"shipping"`
	Total    int64        `json:"total"`
}

type storedItem struct {
	ID        string          `json:"id"`
	Product   cart.ProductRef `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice int64           `json:"unitPrice"`
	MergeKey  string          `json:"mergeKey,omitempty"`
}

// load reads the durable record. An absent, corrupt or future-versioned
// record yields an empty cart: storage trouble must never reach the shopper.
func (c *Cart) load(ctx context.Context) cart.Snapshot {
	if c.id == "" {
		return cart.Recalculate(nil, c.store.policy)
	}

	b, err := c.store.storage.Load(ctx, c.id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.store.log.WithField("cart_id", c.id).Warnf("loading guest cart: %v", err)
		}
		return cart.Recalculate(nil, c.store.policy)
	}

	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		c.store.log.WithField("cart_id", c.id).Warnf("discarding corrupt guest cart: %v", err)
		return cart.Recalculate(nil, c.store.policy)
	}

	if rec.Version > schemaVersion {
		c.store.log.WithField("cart_id", c.id).Warnf("discarding guest cart with unknown schema version %d", rec.Version)
		return cart.Recalculate(nil, c.store.policy)
	}

	items := make([]cart.LineItem, 0, len(rec.Items))
	for _, it := range rec.Items {
		if it.Quantity < 1 {
			continue
		}
		if it.MergeKey == "" {
			// Record predates merge keys.
			it.MergeKey = validate.GenerateID()
		}
		items = append(items, cart.LineItem{
			ID:        it.ID,
			Product:   it.Product,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			MergeKey:  it.MergeKey,
		})
	}

	return cart.Recalculate(items, c.store.policy)
}

func (c *Cart) persist(ctx context.Context, snap cart.Snapshot) error {
	if c.id == "" {
		return errors.New("guest cart has no id")
	}

	rec := record{
		Version:  schemaVersion,
		Items:    make([]storedItem, 0, len(snap.Items)),
		Subtotal: snap.Subtotal,
		Tax:      snap.Tax,
		Shipping: snap.Shipping,
		Total:    snap.Total,
	}
	for _, it := range snap.Items {
		rec.Items = append(rec.Items, storedItem{
			ID:        it.ID,
			Product:   it.Product,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			MergeKey:  it.MergeKey,
		})
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding guest cart: %w", err)
	}

	if err := c.store.storage.Save(ctx, c.id, b); err != nil {
		return fmt.Errorf("saving guest cart[%s]: %w", c.id, err)
	}
	return nil
}

func (c *Cart) Get(ctx context.Context) (cart.Snapshot, error) {
	return c.load(ctx), nil
}

// Add puts quantity more of the product in the cart. A line already holding
// the product is incremented in place and keeps its captured unit price; a
// new product appends a fresh line. Quantities below one are rejected.
func (c *Cart) Add(ctx context.Context, p cart.ProductRef, quantity int) (cart.Snapshot, error) {
	if quantity < 1 {
		return cart.Snapshot{}, errors.New("quantity must be at least 1")
	}

	snap := c.load(ctx)

	found := false
	for i := range snap.Items {
		if snap.Items[i].Product.ID == p.ID {
			snap.Items[i].Quantity += quantity
			found = true
			break
		}
	}

	if !found {
		snap.Items = append(snap.Items, cart.LineItem{
			ID:        "g_" + random.String(20),
			Product:   p,
			Quantity:  quantity,
			UnitPrice: p.UnitPrice,
			MergeKey:  validate.GenerateID(),
		})
	}

	snap = cart.Recalculate(snap.Items, c.store.policy)
	if err := c.persist(ctx, snap); err != nil {
		return cart.Snapshot{}, err
	}
	return snap, nil
}

// SetQuantity overwrites a line's quantity. Zero or less removes the line.
// An unknown item id leaves the cart untouched and reports no error.
func (c *Cart) SetQuantity(ctx context.Context, itemID string, quantity int) (cart.Snapshot, error) {
	if quantity <= 0 {
		return c.Remove(ctx, itemID)
	}

	snap := c.load(ctx)

	found := false
	for i := range snap.Items {
		if snap.Items[i].ID == itemID {
			snap.Items[i].Quantity = quantity
			found = true
			break
		}
	}

	if !found {
		return snap, nil
	}

	snap = cart.Recalculate(snap.Items, c.store.policy)
	if err := c.persist(ctx, snap); err != nil {
		return cart.Snapshot{}, err
	}
	return snap, nil
}

func (c *Cart) Remove(ctx context.Context, itemID string) (cart.Snapshot, error) {
	snap := c.load(ctx)

	items := snap.Items[:0]
	for _, it := range snap.Items {
		if it.ID != itemID {
			items = append(items, it)
		}
	}

	snap = cart.Recalculate(items, c.store.policy)
	if err := c.persist(ctx, snap); err != nil {
		return cart.Snapshot{}, err
	}
	return snap, nil
}

// Clear erases the durable record entirely.
func (c *Cart) Clear(ctx context.Context) error {
	if c.id == "" {
		return nil
	}
	if err := c.store.storage.Erase(ctx, c.id); err != nil {
		return fmt.Errorf("erasing guest cart[%s]: %w", c.id, err)
	}
	return nil
}

// Snapshot and Erase let the cart act as the guest side of the merge
// protocol.
func (c *Cart) Snapshot(ctx context.Context) (cart.Snapshot, error) {
	return c.Get(ctx)
}

func (c *Cart) Erase(ctx context.Context) error {
	return c.Clear(ctx)
}
