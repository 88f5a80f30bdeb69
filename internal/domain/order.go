package domain

import "github.com/shopspring/decimal"

type OrderSubLine struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

type OrderCategory struct {
	Category      string         `json:"category"`
	SelectedItems []OrderSubLine `json:"selectedItems"`
}

type OrderLine struct {
	ProductID          string          `json:"productId"`
	Name               LocalizedText   `json:"name"`
	DisplayName        string          `json:"displayName"`
	Price              decimal.Decimal `json:"price"`
	Quantity           int             `json:"quantity"`
	Image              string          `json:"image"`
	SelectedCategories []OrderCategory `json:"selectedCategories,omitempty"`
}

// Order is what the order backend persists once payment went through.
type Order struct {
	Items           []OrderLine `json:"items"`
	Email           string      `json:"email"`
	Mobile          string      `json:"mobile"`
	PaymentIntentID string      `json:"paymentIntentId"`
}

// NewOrderLine normalizes a backed-up cart entry. Meal entries keep their
// selection as nested sub-lines; simple entries stay flat.
func NewOrderLine(e CartEntry) OrderLine {
	line := OrderLine{
		ProductID:   e.ProductID,
		Name:        e.Name,
		DisplayName: e.Label(),
		Price:       e.Price,
		Quantity:    e.Quantity,
		Image:       e.Image,
	}
	if !e.IsMeal() || e.SelectedCategories == nil {
		return line
	}

	line.SelectedCategories = make([]OrderCategory, 0, len(e.SelectedCategories))
	for _, cat := range e.SelectedCategories {
		sub := make([]OrderSubLine, 0, len(cat.SelectedItems))
		for _, si := range cat.SelectedItems {
			sub = append(sub, OrderSubLine{
				Name:     si.Product.Name.String(),
				Price:    si.Product.Price,
				Quantity: si.Quantity,
				Image:    si.Product.Image,
			})
		}
		line.SelectedCategories = append(line.SelectedCategories, OrderCategory{
			Category:      cat.Category,
			SelectedItems: sub,
		})
	}
	return line
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Items {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
