package services

import (
	"context"
	"strings"
	"sync"

	"github.com/dmitrijs2005/failvault/internal/client/client"
	"github.com/dmitrijs2005/failvault/internal/client/entitlements"
	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/dmitrijs2005/failvault/internal/models"
)

// Item is a record as shown to the local user.
type Item struct {
	Record   *models.Record
	Unlocked bool
}

// Build pairs every record with its membership in set. Order is kept.
func Build(records []*models.Record, set entitlements.Set) []Item {
	items := make([]Item, 0, len(records))
	for _, r := range records {
		items = append(items, Item{Record: r, Unlocked: set.Has(r.ID)})
	}
	return items
}

// Filter keeps items whose title or abstract contains term (ignoring case)
// and whose category equals cat. CategoryAll and the empty category match
// everything.
func Filter(items []Item, term string, cat models.Category) []Item {
	term = strings.ToLower(term)
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if cat != "" && cat != models.CategoryAll && it.Record.Category != cat {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(it.Record.Title), term) &&
			!strings.Contains(strings.ToLower(it.Record.Abstract), term) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// EntitlementReader is the part of entitlements.Store the view needs.
type EntitlementReader interface {
	Read(ctx context.Context) (entitlements.Set, error)
}

// CatalogView keeps the last fetched catalog together with the local
// entitlement set and the active search filters.
type CatalogView struct {
	client client.Client
	store  EntitlementReader

	mu       sync.RWMutex
	records  []*models.Record
	set      entitlements.Set
	term     string
	category models.Category
}

func NewCatalogView(c client.Client, store EntitlementReader) *CatalogView {
	return &CatalogView{client: c, store: store, set: entitlements.NewSet(), category: models.CategoryAll}
}

// Refresh fetches the whole catalog and rereads the entitlement set.
func (v *CatalogView) Refresh(ctx context.Context) error {
	records, err := v.client.ListRecords(ctx)
	if err != nil {
		return err
	}
	set, err := v.store.Read(ctx)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.records = records
	v.set = set
	return nil
}

// Entitlements returns the set the view currently renders with.
func (v *CatalogView) Entitlements() entitlements.Set {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.set
}

// SetEntitlements replaces the set, e.g. after a successful unlock.
func (v *CatalogView) SetEntitlements(set entitlements.Set) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.set = set
}

func (v *CatalogView) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.term = term
}

func (v *CatalogView) SetCategory(cat models.Category) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.category = cat
}

func (v *CatalogView) Filters() (string, models.Category) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.term, v.category
}

// Items returns the filtered catalog.
func (v *CatalogView) Items() []Item {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Filter(Build(v.records, v.set), v.term, v.category)
}

// Get looks a record up by exact id in the last fetched catalog.
func (v *CatalogView) Get(id string) (Item, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, r := range v.records {
		if r.ID == id {
			return Item{Record: r, Unlocked: v.set.Has(id)}, nil
		}
	}
	return Item{}, common.ErrorNotFound
}
