// Package listview implements the product list screen's state: the cached
// collection, a free-text search term, and a sort key/direction, plus the
// derived filtered+sorted view. The collection is replaced wholesale on
// every refresh; mutations merge through Upsert and Remove so the screen
// stays consistent without a re-fetch.
package listview

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"shopfront/internal/catalog"
	"shopfront/internal/notify"
)

// Store is the slice of the catalog client the list screen needs.
type Store interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Delete(ctx context.Context, id string) error
}

// Controller holds the list screen state. Safe for concurrent use: commands
// run refreshes and deletes in goroutines while the render loop reads.
type Controller struct {
	mu       sync.RWMutex
	store    Store
	sink     notify.Sink
	log      *zap.Logger
	products []catalog.Product
	search   string
	sortKey  string
	desc     bool
	loading  bool
}

// New creates a controller sorting by name ascending, with the loading flag
// set until the first refresh completes.
func New(store Store, sink notify.Sink, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		store:   store,
		sink:    sink,
		log:     log,
		sortKey: catalog.FieldName,
		loading: true,
	}
}

// Refresh fetches the collection and replaces the cache wholesale. The
// loading flag clears whether the fetch succeeds or fails; a failure leaves
// the previous cache in place and reports through the sink.
func (c *Controller) Refresh(ctx context.Context) error {
	products, err := c.store.List(ctx)

	c.mu.Lock()
	c.loading = false
	if err == nil {
		c.products = products
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("product list fetch failed", zap.Error(err))
		c.sink.Error("Error", "Failed to fetch products")
		return err
	}
	c.log.Debug("product list refreshed", zap.Int("count", len(products)))
	return nil
}

// SetSearch updates the free-text search term.
func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = term
}

// Search returns the current search term.
func (c *Controller) Search() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.search
}

// SetSort selects the sort field. Selecting the active field flips the
// direction; selecting a new field resets to ascending.
func (c *Controller) SetSort(field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sortKey == field {
		c.desc = !c.desc
		return
	}
	c.sortKey = field
	c.desc = false
}

// Sort returns the active sort field and whether the order is descending.
func (c *Controller) Sort() (field string, descending bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortKey, c.desc
}

// Loading reports whether the initial fetch is still outstanding.
func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Len returns the size of the cached collection, ignoring the filter.
func (c *Controller) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// View derives the displayed collection: case-insensitive substring filter
// over name, title, and description (a row matches if any of the three
// contains the term), then a stable sort by the active field. Ties break on
// the product ID so the ordering is a total order and deterministic across
// runs. The returned slice is a copy; mutating it does not touch the cache.
func (c *Controller) View() []catalog.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	term := strings.ToLower(c.search)
	out := make([]catalog.Product, 0, len(c.products))
	for _, p := range c.products {
		if term == "" ||
			strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Title), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}

	key, desc := c.sortKey, c.desc
	sort.SliceStable(out, func(i, j int) bool {
		cmp := compareBy(key, out[i], out[j])
		if cmp == 0 {
			cmp = strings.Compare(out[i].ID, out[j].ID)
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

// Remove deletes one product after the user confirms through the sink. A
// declined confirmation issues no request and changes nothing. On success
// the matching row is dropped from the cache; on failure the cache is left
// untouched. Returns whether the user confirmed.
func (c *Controller) Remove(ctx context.Context, id string) (confirmed bool, err error) {
	name := id
	c.mu.RLock()
	for _, p := range c.products {
		if p.ID == id {
			name = p.Name
			break
		}
	}
	c.mu.RUnlock()

	ok := c.sink.Confirm("Are you sure?",
		fmt.Sprintf("Do you want to delete %q? This action cannot be undone!", name))
	if !ok {
		c.log.Debug("delete declined", zap.String("product_id", id))
		return false, nil
	}

	if err := c.store.Delete(ctx, id); err != nil {
		c.log.Warn("delete failed", zap.String("product_id", id), zap.Error(err))
		title, text := "Error", "Failed to delete product"
		if catalog.KindOf(err) == catalog.KindUnreachable {
			text = "Unable to connect to the server. Please check your internet connection."
		}
		c.sink.Error(title, text)
		return true, err
	}

	c.mu.Lock()
	kept := c.products[:0]
	for _, p := range c.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	c.products = kept
	c.mu.Unlock()

	c.log.Info("product deleted", zap.String("product_id", id))
	c.sink.Success("Deleted!", "Product has been deleted successfully.")
	return true, nil
}

// Upsert merges a created or updated product into the cache, so the list
// reflects mutations made on the form screens without waiting for the next
// refresh.
func (c *Controller) Upsert(p catalog.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.products {
		if c.products[i].ID == p.ID {
			c.products[i] = p
			return
		}
	}
	c.products = append(c.products, p)
}

// compareBy orders two products by one field: negative when a sorts before
// b, zero on equal values.
func compareBy(field string, a, b catalog.Product) int {
	switch field {
	case catalog.FieldPrice:
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		}
		return 0
	case catalog.FieldAvailableQuantity:
		return a.AvailableQuantity - b.AvailableQuantity
	case catalog.FieldTitle:
		return strings.Compare(a.Title, b.Title)
	case catalog.FieldDescription:
		return strings.Compare(a.Description, b.Description)
	default:
		return strings.Compare(a.Name, b.Name)
	}
}
