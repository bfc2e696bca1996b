package listview

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/catalog"
	"shopfront/internal/notify"
)

// fakeStore scripts List and Delete responses and records delete calls.
type fakeStore struct {
	products []catalog.Product
	listErr  error
	delErr   error
	deleted  []string
}

func (s *fakeStore) List(ctx context.Context) ([]catalog.Product, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]catalog.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.delErr
}

func sampleProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "p1", Name: "Widget", Title: "Premium Widget", Description: "A widget of uncommon quality.", Price: 19.99, AvailableQuantity: 12},
		{ID: "p2", Name: "gadget", Title: "Budget Gadget", Description: "Does one thing well.", Price: 4.50, AvailableQuantity: 3},
		{ID: "p3", Name: "Doohickey", Title: "Deluxe Doohickey", Description: "Contains a widget inside.", Price: 19.99, AvailableQuantity: 0},
	}
}

func newTestController(store Store) (*Controller, *notify.Recorder) {
	rec := &notify.Recorder{}
	return New(store, rec, nil), rec
}

func TestRefresh_ReplacesCollection(t *testing.T) {
	store := &fakeStore{products: sampleProducts()}
	lv, rec := newTestController(store)

	assert.True(t, lv.Loading())
	require.NoError(t, lv.Refresh(context.Background()))
	assert.False(t, lv.Loading())
	assert.Equal(t, 3, lv.Len())
	assert.Empty(t, rec.Events())

	// A later refresh replaces the cache wholesale.
	store.products = sampleProducts()[:1]
	require.NoError(t, lv.Refresh(context.Background()))
	assert.Equal(t, 1, lv.Len())
}

func TestRefresh_FailureKeepsCacheAndReports(t *testing.T) {
	store := &fakeStore{products: sampleProducts()}
	lv, rec := newTestController(store)
	require.NoError(t, lv.Refresh(context.Background()))

	store.listErr = &catalog.RequestError{Kind: catalog.KindUnreachable, Err: errors.New("refused")}
	require.Error(t, lv.Refresh(context.Background()))

	assert.False(t, lv.Loading(), "loading clears even on failure")
	assert.Equal(t, 3, lv.Len(), "previous collection survives a failed refresh")
	assert.Equal(t, notify.Event{
		Level: notify.LevelError,
		Title: "Error",
		Text:  "Failed to fetch products",
	}, rec.Last())
}

func TestView_CaseInsensitiveSearch(t *testing.T) {
	lv, _ := newTestController(&fakeStore{products: sampleProducts()})
	require.NoError(t, lv.Refresh(context.Background()))

	// Matches name on p1 and description on p3, regardless of case.
	lv.SetSearch("WID")
	view := lv.View()
	require.Len(t, view, 2)
	assert.Equal(t, "p3", view[0].ID) // Doohickey sorts before Widget by name
	assert.Equal(t, "p1", view[1].ID)

	lv.SetSearch("budget")
	view = lv.View()
	require.Len(t, view, 1)
	assert.Equal(t, "p2", view[0].ID)

	lv.SetSearch("no such thing")
	assert.Empty(t, lv.View())

	lv.SetSearch("")
	assert.Len(t, lv.View(), 3)
}

func TestSetSort_FlipAndReset(t *testing.T) {
	lv, _ := newTestController(&fakeStore{})

	field, desc := lv.Sort()
	assert.Equal(t, catalog.FieldName, field)
	assert.False(t, desc)

	// Selecting the active field flips direction.
	lv.SetSort(catalog.FieldName)
	_, desc = lv.Sort()
	assert.True(t, desc)

	// Selecting a new field resets to ascending.
	lv.SetSort(catalog.FieldPrice)
	field, desc = lv.Sort()
	assert.Equal(t, catalog.FieldPrice, field)
	assert.False(t, desc)
}

func TestView_SortWithIDTieBreak(t *testing.T) {
	lv, _ := newTestController(&fakeStore{products: sampleProducts()})
	require.NoError(t, lv.Refresh(context.Background()))

	// p1 and p3 share a price; the tie breaks on ID so the order is the
	// same no matter the input order.
	lv.SetSort(catalog.FieldPrice)
	ids := viewIDs(lv)
	if diff := cmp.Diff([]string{"p2", "p1", "p3"}, ids); diff != "" {
		t.Errorf("ascending price order mismatch (-want +got):\n%s", diff)
	}

	// Flipping reverses the whole order, tie-break included.
	lv.SetSort(catalog.FieldPrice)
	ids = viewIDs(lv)
	if diff := cmp.Diff([]string{"p3", "p1", "p2"}, ids); diff != "" {
		t.Errorf("descending price order mismatch (-want +got):\n%s", diff)
	}
}

func TestView_SortByQuantityAndTitle(t *testing.T) {
	lv, _ := newTestController(&fakeStore{products: sampleProducts()})
	require.NoError(t, lv.Refresh(context.Background()))

	lv.SetSort(catalog.FieldAvailableQuantity)
	assert.Equal(t, []string{"p3", "p2", "p1"}, viewIDs(lv))

	lv.SetSort(catalog.FieldTitle)
	assert.Equal(t, []string{"p2", "p3", "p1"}, viewIDs(lv))
}

func TestView_ReturnsCopy(t *testing.T) {
	lv, _ := newTestController(&fakeStore{products: sampleProducts()})
	require.NoError(t, lv.Refresh(context.Background()))

	view := lv.View()
	view[0].Name = "mutated"

	fresh := lv.View()
	assert.NotEqual(t, "mutated", fresh[0].Name)
}

func TestRemove_DeclinedIssuesNoRequest(t *testing.T) {
	store := &fakeStore{products: sampleProducts()}
	lv, rec := newTestController(store)
	require.NoError(t, lv.Refresh(context.Background()))

	rec.Answer = false
	confirmed, err := lv.Remove(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, confirmed)

	assert.Empty(t, store.deleted, "declined confirmation must not hit the backend")
	assert.Equal(t, 3, lv.Len())

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.LevelConfirm, events[0].Level)
	assert.Equal(t, "Are you sure?", events[0].Title)
	assert.Contains(t, events[0].Text, `"Widget"`)
}

func TestRemove_ConfirmedDropsRow(t *testing.T) {
	store := &fakeStore{products: sampleProducts()}
	lv, rec := newTestController(store)
	require.NoError(t, lv.Refresh(context.Background()))

	rec.Answer = true
	confirmed, err := lv.Remove(context.Background(), "p2")
	require.NoError(t, err)
	assert.True(t, confirmed)

	assert.Equal(t, []string{"p2"}, store.deleted)
	assert.Equal(t, 2, lv.Len())
	assert.Equal(t, notify.Event{
		Level: notify.LevelSuccess,
		Title: "Deleted!",
		Text:  "Product has been deleted successfully.",
	}, rec.Last())
}

func TestRemove_FailureKeepsRow(t *testing.T) {
	store := &fakeStore{
		products: sampleProducts(),
		delErr:   &catalog.RequestError{Kind: catalog.KindServer, Status: 500},
	}
	lv, rec := newTestController(store)
	require.NoError(t, lv.Refresh(context.Background()))

	rec.Answer = true
	confirmed, err := lv.Remove(context.Background(), "p2")
	require.Error(t, err)
	assert.True(t, confirmed)

	assert.Equal(t, 3, lv.Len(), "failed delete leaves the cache untouched")
	last := rec.Last()
	assert.Equal(t, notify.LevelError, last.Level)
	assert.Equal(t, "Failed to delete product", last.Text)
}

func TestUpsert_MergesCreateAndUpdate(t *testing.T) {
	lv, _ := newTestController(&fakeStore{products: sampleProducts()})
	require.NoError(t, lv.Refresh(context.Background()))

	// New ID appends.
	lv.Upsert(catalog.Product{ID: "p4", Name: "Gizmo", Price: 7})
	assert.Equal(t, 4, lv.Len())

	// Existing ID replaces in place.
	lv.Upsert(catalog.Product{ID: "p1", Name: "Widget v2", Price: 24.99, AvailableQuantity: 12})
	assert.Equal(t, 4, lv.Len())

	lv.SetSearch("widget v2")
	view := lv.View()
	require.Len(t, view, 1)
	assert.Equal(t, 24.99, view[0].Price)
}

func viewIDs(lv *Controller) []string {
	view := lv.View()
	ids := make([]string, len(view))
	for i, p := range view {
		ids[i] = p.ID
	}
	return ids
}
