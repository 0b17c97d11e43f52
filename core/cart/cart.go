package cart

// All currency amounts are int64 paise. Tax rates are basis points.

// ProductRef is the copy of catalog fields a line item owns for display and
// pricing. It is captured when the item is added and never refreshed from
// the catalog.
type ProductRef struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Slug      string `json:"slug"`
	UnitPrice int64  `json:"unitPrice" validate:"gte=0"`
	ImageURL  string `json:"imageUrl"`
}

// LineItem is one product entry in a cart. Guest line ids carry the "g_"
// prefix so they can never collide with server-assigned ids.
type LineItem struct {
	ID        string     `json:"id"`
	Product   ProductRef `json:"product"`
	Quantity  int        `json:"quantity"`
	UnitPrice int64      `json:"unitPrice"`
	LineTotal int64      `json:"lineTotal"`

	// MergeKey is sent as the idempotency key when this line is replayed
	// into the server cart at login. It is minted once, when the line is
	// created, and survives in the durable guest record.
	MergeKey string `json:"-"`
}

// Snapshot is the full cart state handed to clients. Items keep insertion
// order and hold at most one line per product.
type Snapshot struct {
	Items    []LineItem `json:"items"`
	Subtotal int64      `json:"subtotal"`
	Tax      int64      `json:"tax"`
	Shipping int64      `json:"shipping"`
	Total    int64      `json:"total"`
}

type ItemNew struct {
	Product  ProductRef `json:"product" validate:"required"`
	Quantity int        `json:"quantity" validate:"required,gte=1,lte=99"`
}

type ItemUp struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}
