package meal

import (
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// SelectionError reports a meal component whose selected count differs from
// the exact count it requires. It matches domain.ErrValidation.
type SelectionError struct {
	Category string
	Required int
	Current  int
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("Please select %d item(s) for %s. Currently selected: %d", e.Required, e.Category, e.Current)
}

func (e *SelectionError) Unwrap() error {
	return domain.ErrValidation
}
