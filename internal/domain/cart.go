package domain

import "github.com/shopspring/decimal"

type SelectedItem struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
}

type SelectedCategory struct {
	Category      string         `json:"category"`
	SelectedItems []SelectedItem `json:"selectedItems"`
}

// CartEntry is one line of the cart. Everything except Quantity is frozen when
// the entry is created; only the cart engine changes Quantity.
type CartEntry struct {
	Key                string             `json:"key"`
	ProductID          string             `json:"_id"`
	Name               LocalizedText      `json:"name"`
	DisplayName        string             `json:"displayName,omitempty"`
	Price              decimal.Decimal    `json:"price"`
	Quantity           int                `json:"quantity"`
	Kind               ProductKind        `json:"producttype,omitempty"`
	Image              string             `json:"image,omitempty"`
	SelectedCategories []SelectedCategory `json:"selectedCategories,omitempty"`
}

func (e CartEntry) IsMeal() bool {
	return e.Kind == KindMeal
}

func (e CartEntry) Subtotal() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Label is what the cart shows for the entry.
func (e CartEntry) Label() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.Name.String()
}

// Clone returns a copy that shares no slices with e.
func (e CartEntry) Clone() CartEntry {
	e.SelectedCategories = CloneCategories(e.SelectedCategories)
	return e
}

func CloneCategories(in []SelectedCategory) []SelectedCategory {
	if in == nil {
		return nil
	}
	out := make([]SelectedCategory, len(in))
	for i, c := range in {
		out[i] = SelectedCategory{
			Category:      c.Category,
			SelectedItems: append([]SelectedItem(nil), c.SelectedItems...),
		}
	}
	return out
}

// NewSimpleEntry freezes a catalog product into a cart entry.
func NewSimpleEntry(p Product) CartEntry {
	return CartEntry{
		Key:         p.ID,
		ProductID:   p.ID,
		Name:        p.Name,
		DisplayName: p.Name.String(),
		Price:       p.Price,
		Kind:        KindSimple,
		Image:       p.Image,
	}
}

// Cart is a read-only copy of the cart engine state.
type Cart struct {
	Entries         []CartEntry     `json:"items"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	TotalQuantities int             `json:"totalQuantities"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}
