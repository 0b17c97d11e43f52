package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeGuest struct {
	snap   Snapshot
	erased bool
}

func (g *fakeGuest) Snapshot(ctx context.Context) (Snapshot, error) { return g.snap, nil }
func (g *fakeGuest) Erase(ctx context.Context) error {
	g.erased = true
	return nil
}

type addCall struct {
	ProductID string
	Quantity  int
	MergeKey  string
}

type fakeRemote struct {
	adds     []addCall
	failFrom int // 1-based add call that starts failing; 0 never fails
	cart     Snapshot
	getErr   error
}

func (r *fakeRemote) Get(ctx context.Context) (Snapshot, error) {
	if r.getErr != nil {
		return Snapshot{}, r.getErr
	}
	return r.cart, nil
}

func (r *fakeRemote) AddItem(ctx context.Context, productID string, quantity int, mergeKey string) (Snapshot, error) {
	if r.failFrom > 0 && len(r.adds)+1 >= r.failFrom {
		return Snapshot{}, errors.New("upstream add failed")
	}
	r.adds = append(r.adds, addCall{ProductID: productID, Quantity: quantity, MergeKey: mergeKey})
	return r.cart, nil
}

func TestMergeEmptyGuestCart(t *testing.T) {
	guest := &fakeGuest{}
	remote := &fakeRemote{cart: Snapshot{Subtotal: 42}}

	got, err := Merge(context.Background(), guest, remote)
	if err != nil {
		t.Fatalf("merging empty guest cart: %v", err)
	}

	if len(remote.adds) != 0 {
		t.Fatalf("expected zero add calls, got %d", len(remote.adds))
	}
	if !guest.erased {
		t.Fatal("guest cart was not erased")
	}
	if diff := cmp.Diff(remote.cart, got); diff != "" {
		t.Fatalf("server cart was not adopted (-want +got):\n%s", diff)
	}
}

func TestMergeReplaysEveryGuestLine(t *testing.T) {
	guest := &fakeGuest{snap: Snapshot{Items: []LineItem{
		{ID: "g_1", Product: ProductRef{ID: "almonds"}, Quantity: 2, MergeKey: "key-1"},
		{ID: "g_2", Product: ProductRef{ID: "cashews"}, Quantity: 5, MergeKey: "key-2"},
	}}}
	remote := &fakeRemote{cart: Snapshot{Subtotal: 99}}

	got, err := Merge(context.Background(), guest, remote)
	if err != nil {
		t.Fatalf("merging guest cart: %v", err)
	}

	want := []addCall{
		{ProductID: "almonds", Quantity: 2, MergeKey: "key-1"},
		{ProductID: "cashews", Quantity: 5, MergeKey: "key-2"},
	}
	if diff := cmp.Diff(want, remote.adds); diff != "" {
		t.Fatalf("unexpected replay calls (-want +got):\n%s", diff)
	}

	if !guest.erased {
		t.Fatal("guest cart was not erased after successful merge")
	}
	if diff := cmp.Diff(remote.cart, got); diff != "" {
		t.Fatalf("server cart was not adopted (-want +got):\n%s", diff)
	}
}

func TestMergePartialFailureKeepsGuestCart(t *testing.T) {
	guest := &fakeGuest{snap: Snapshot{Items: []LineItem{
		{ID: "g_1", Product: ProductRef{ID: "almonds"}, Quantity: 1, MergeKey: "key-1"},
		{ID: "g_2", Product: ProductRef{ID: "raisins"}, Quantity: 3, MergeKey: "key-2"},
	}}}
	remote := &fakeRemote{failFrom: 2}

	if _, err := Merge(context.Background(), guest, remote); err == nil {
		t.Fatal("expected merge to fail on second replay call")
	}

	if len(remote.adds) != 1 {
		t.Fatalf("expected one successful replay call, got %d", len(remote.adds))
	}
	if guest.erased {
		t.Fatal("guest cart must survive a partial merge")
	}
}

func TestMergeFetchFailureKeepsGuestCart(t *testing.T) {
	guest := &fakeGuest{snap: Snapshot{Items: []LineItem{
		{ID: "g_1", Product: ProductRef{ID: "almonds"}, Quantity: 1, MergeKey: "key-1"},
	}}}
	remote := &fakeRemote{getErr: errors.New("upstream down")}

	if _, err := Merge(context.Background(), guest, remote); err == nil {
		t.Fatal("expected merge to fail when the fetch fails")
	}

	if guest.erased {
		t.Fatal("guest cart must survive when the authoritative fetch fails")
	}
}
