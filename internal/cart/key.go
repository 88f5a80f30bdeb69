package cart

import (
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// KeyFor returns the identity an entry has in the cart. Simple entries are
// keyed by product id; meal entries by product id plus a hash of their frozen
// selection, so two differently configured meals never merge.
func KeyFor(e domain.CartEntry) string {
	if !e.IsMeal() {
		return e.ProductID
	}
	return e.ProductID + "#" + selectionHash(e.Price, e.SelectedCategories)
}

type selectionFingerprint struct {
	Price      string                    `json:"p"`
	Categories []domain.SelectedCategory `json:"c"`
}

func selectionHash(price decimal.Decimal, cats []domain.SelectedCategory) string {
	b, err := json.Marshal(selectionFingerprint{Price: price.String(), Categories: cats})
	if err != nil {
		// only plain data above; cannot happen
		panic(err)
	}
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}
