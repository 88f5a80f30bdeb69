package meal

import (
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type selection struct {
	productID string
	quantity  int
}

type categorySelection struct {
	name  string
	items []*selection
}

func (c *categorySelection) find(productID string) (int, *selection) {
	for i, s := range c.items {
		if s.productID == productID {
			return i, s
		}
	}
	return -1, nil
}

func (c *categorySelection) total() int {
	n := 0
	for _, s := range c.items {
		n += s.quantity
	}
	return n
}

// Builder holds the in-progress selection for one meal. It is discarded when
// the meal screen closes or after the meal was added to the cart.
type Builder struct {
	mu         sync.Mutex
	def        domain.MealDefinition
	catalog    Catalog
	categories []*categorySelection
	log        *zap.Logger
}

func NewBuilder(def domain.MealDefinition, catalog Catalog, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	if catalog == nil {
		catalog = MapCatalog{}
	}
	return &Builder{
		def:     def,
		catalog: catalog,
		log:     log.With(zap.String("meal_id", def.ID)),
	}
}

func (b *Builder) Definition() domain.MealDefinition {
	return b.def
}

// AddProduct selects one more unit of product in category. There is no upper
// bound here; Validate checks the exact count.
func (b *Builder) AddProduct(category string, product domain.Product) error {
	if category == "" {
		return domain.Validation("meal.add", "category is required")
	}
	if product.ID == "" {
		return domain.Validation("meal.add", "product id is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	cat := b.category(category, true)
	if _, s := cat.find(product.ID); s != nil {
		s.quantity++
		return nil
	}
	cat.items = append(cat.items, &selection{productID: product.ID, quantity: 1})
	return nil
}

// RemoveProduct drops productID from category. Unknown ids are ignored.
func (b *Builder) RemoveProduct(category, productID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cat := b.category(category, false)
	if cat == nil {
		return
	}
	if i, _ := cat.find(productID); i >= 0 {
		cat.items = append(cat.items[:i], cat.items[i+1:]...)
	}
}

// ChangeQuantity moves the selected quantity by delta, clamped at zero; a
// product that reaches zero is no longer selected. Products that are not
// selected are left alone.
func (b *Builder) ChangeQuantity(category, productID string, delta int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cat := b.category(category, false)
	if cat == nil {
		return
	}
	i, s := cat.find(productID)
	if s == nil {
		return
	}
	s.quantity = max(0, s.quantity+delta)
	if s.quantity == 0 {
		cat.items = append(cat.items[:i], cat.items[i+1:]...)
	}
}

func (b *Builder) Quantity(category, productID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	cat := b.category(category, false)
	if cat == nil {
		return 0
	}
	if _, s := cat.find(productID); s != nil {
		return s.quantity
	}
	return 0
}

func (b *Builder) CategoryTotal(category string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.categoryTotal(category)
}

// Reset discards the whole selection.
func (b *Builder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.categories = nil
}

// SelectedCategories lists the categories with at least one selected unit,
// meal components first in definition order, then any other category in the
// order it was first used.
func (b *Builder) SelectedCategories() []domain.SelectedCategory {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selectedCategories()
}

func (b *Builder) SelectedTotal() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return selectedTotal(b.selectedCategories())
}

// TotalPrice is the fixed meal price plus overprice when the meal has one,
// otherwise the sum of the selection plus overprice.
func (b *Builder) TotalPrice() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalPrice(b.selectedCategories())
}

func (b *Builder) Summary() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return summarize(b.selectedCategories(), b.def.OverpriceOrZero())
}

// Validate checks every meal component has exactly its required count.
func (b *Builder) Validate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.validate()
}

// BuildCartEntry turns a valid selection into a meal cart entry. Prices and
// names are copied, so later catalog changes do not alter the entry.
func (b *Builder) BuildCartEntry(quantity int) (domain.CartEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.validate(); err != nil {
		return domain.CartEntry{}, err
	}
	if quantity < 1 {
		return domain.CartEntry{}, domain.Validation("meal.build", fmt.Sprintf("quantity must be a positive integer, got %d", quantity))
	}

	cats := b.selectedCategories()
	summary := summarize(cats, b.def.OverpriceOrZero())
	return domain.CartEntry{
		ProductID:          b.def.ID,
		Name:               b.def.Name,
		DisplayName:        fmt.Sprintf("%s (%s)", b.def.Name.String(), summary),
		Price:              b.totalPrice(cats),
		Quantity:           quantity,
		Kind:               domain.KindMeal,
		Image:              b.def.Image,
		SelectedCategories: domain.CloneCategories(cats),
	}, nil
}

// CandidateProducts resolves the products a component offers.
func (b *Builder) CandidateProducts(comp domain.MealComponent) []domain.ProductSnapshot {
	out := make([]domain.ProductSnapshot, 0, len(comp.Products))
	for _, id := range comp.Products {
		out = append(out, b.resolve(id))
	}
	return out
}

func (b *Builder) category(name string, create bool) *categorySelection {
	for _, c := range b.categories {
		if c.name == name {
			return c
		}
	}
	if !create {
		return nil
	}
	c := &categorySelection{name: name}
	b.categories = append(b.categories, c)
	return c
}

func (b *Builder) categoryTotal(name string) int {
	if c := b.category(name, false); c != nil {
		return c.total()
	}
	return 0
}

func (b *Builder) validate() error {
	for _, comp := range b.def.Components {
		current := b.categoryTotal(comp.Category)
		if current != comp.Quantity {
			return &SelectionError{
				Category: comp.Category,
				Required: comp.Quantity,
				Current:  current,
			}
		}
	}
	return nil
}

func (b *Builder) totalPrice(cats []domain.SelectedCategory) decimal.Decimal {
	over := b.def.OverpriceOrZero()
	if fixed, ok := b.def.FixedPrice(); ok {
		return fixed.Add(over)
	}
	return selectedTotal(cats).Add(over)
}

func (b *Builder) ordered() []*categorySelection {
	out := make([]*categorySelection, 0, len(b.categories))
	seen := make(map[string]bool, len(b.categories))
	for _, comp := range b.def.Components {
		if c := b.category(comp.Category, false); c != nil && !seen[c.name] {
			out = append(out, c)
			seen[c.name] = true
		}
	}
	for _, c := range b.categories {
		if !seen[c.name] {
			out = append(out, c)
			seen[c.name] = true
		}
	}
	return out
}

func (b *Builder) selectedCategories() []domain.SelectedCategory {
	var out []domain.SelectedCategory
	for _, c := range b.ordered() {
		if c.total() == 0 {
			continue
		}
		items := make([]domain.SelectedItem, 0, len(c.items))
		for _, s := range c.items {
			items = append(items, domain.SelectedItem{
				Product:  b.resolve(s.productID),
				Quantity: s.quantity,
			})
		}
		out = append(out, domain.SelectedCategory{Category: c.name, SelectedItems: items})
	}
	return out
}

// resolve looks id up in the catalog. Unknown ids become a zero-priced stub
// named after the id so that selections never silently disappear.
func (b *Builder) resolve(id string) domain.ProductSnapshot {
	if p, ok := b.catalog.Product(id); ok {
		return p.Snapshot()
	}
	b.log.Warn("product missing from catalog, using stub", zap.String("product_id", id))
	return domain.ProductSnapshot{ID: id, Name: domain.Text(id), Price: decimal.Zero}
}

func selectedTotal(cats []domain.SelectedCategory) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cats {
		for _, si := range c.SelectedItems {
			total = total.Add(si.Product.Price.Mul(decimal.NewFromInt(int64(si.Quantity))))
		}
	}
	return total
}
