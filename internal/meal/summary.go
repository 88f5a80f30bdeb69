package meal

import (
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// summarize renders "Main: 2x Burger + 1x Fries | Drinks: 1x Cola". With a
// non-zero overprice each item shows its unit price and an overprice segment
// closes the summary.
func summarize(cats []domain.SelectedCategory, overprice decimal.Decimal) string {
	withPrices := !overprice.IsZero()
	segments := make([]string, 0, len(cats)+1)
	for _, c := range cats {
		items := make([]string, 0, len(c.SelectedItems))
		for _, si := range c.SelectedItems {
			item := fmt.Sprintf("%dx %s", si.Quantity, si.Product.Name.String())
			if withPrices {
				item += fmt.Sprintf(" @ %s %s", si.Product.Price.String(), domain.Currency)
			}
			items = append(items, item)
		}
		segments = append(segments, c.Category+": "+strings.Join(items, " + "))
	}
	if withPrices {
		segments = append(segments, fmt.Sprintf("Overprice: %s %s", overprice.String(), domain.Currency))
	}
	return strings.Join(segments, " | ")
}
