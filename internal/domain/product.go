package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is the only currency the storefront sells in.
const Currency = "EGP"

func init() {
	// the storefront backend reads prices as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type ProductKind string

const (
	KindSimple ProductKind = "simple"
	KindMeal   ProductKind = "meal"
)

func (k ProductKind) String() string {
	if k == "" {
		return string(KindSimple)
	}
	return string(k)
}

// LocalizedText holds the catalog's translated strings. The backend sends either
// {"en": "...", "ar": "..."} or a bare string.
type LocalizedText struct {
	En string `json:"en,omitempty"`
	Ar string `json:"ar,omitempty"`
}

func Text(en string) LocalizedText {
	return LocalizedText{En: en}
}

func (t LocalizedText) String() string {
	if t.En != "" {
		return t.En
	}
	return t.Ar
}

func (t LocalizedText) IsZero() bool {
	return t.En == "" && t.Ar == ""
}

func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = LocalizedText{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = LocalizedText{En: s}
		return nil
	}
	type plain LocalizedText
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("localized text: %w", err)
	}
	*t = LocalizedText(p)
	return nil
}

// Product is immutable reference data owned by the catalog service.
type Product struct {
	ID          string          `json:"_id"`
	Name        LocalizedText   `json:"name"`
	Description LocalizedText   `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Kind        ProductKind     `json:"producttype,omitempty"`
}

func (p Product) IsMeal() bool {
	return p.Kind == KindMeal
}

func (p Product) Validate() error {
	if p.ID == "" {
		return Validation("product.validate", "product id is required")
	}
	if p.Price.IsNegative() {
		return Validation("product.validate", fmt.Sprintf("product %s has a negative price", p.ID))
	}
	return nil
}

// Snapshot copies the fields a cart entry or an order keeps of a product.
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Image: p.Image,
	}
}

type ProductSnapshot struct {
	ID    string          `json:"_id"`
	Name  LocalizedText   `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image,omitempty"`
}

// MealComponent is one category of a configurable meal: the user must pick
// exactly Quantity items among Products.
type MealComponent struct {
	Category string   `json:"category"`
	Quantity int      `json:"quantity"`
	Products []string `json:"products"`
}

// MealDefinition is a product of kind meal plus its selection rules.
// Product.Price is the fixed price; it only applies when strictly positive.
type MealDefinition struct {
	Product
	Components []MealComponent  `json:"mealComponents,omitempty"`
	Overprice  *decimal.Decimal `json:"overprice,omitempty"`
}

func (m MealDefinition) FixedPrice() (decimal.Decimal, bool) {
	if m.Price.IsPositive() {
		return m.Price, true
	}
	return decimal.Zero, false
}

func (m MealDefinition) OverpriceOrZero() decimal.Decimal {
	if m.Overprice == nil {
		return decimal.Zero
	}
	return *m.Overprice
}
