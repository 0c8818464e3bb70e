// Package records keeps the client-side mirror of the remote collections.
// All mutation goes through the narrow Load/Upsert/Remove surface; UI code
// never edits a record in place. The console runs on a single event loop, so
// the collections carry no locks.
package records

import (
	"context"

	"github.com/kresfloral/kres-console/pkg/logger"
)

// Record is anything the store can key by id.
type Record interface {
	RecordID() string
}

// Collection is an insertion-ordered, id-keyed mirror of one remote entity
// set. Insertion order is preserved so list rendering stays stable across
// reloads.
type Collection[T Record] struct {
	name     string
	order    []string
	byID     map[string]T
	validate func(T) error
	logg     *logger.Logger
}

func newCollection[T Record](name string, validate func(T) error, logg *logger.Logger) *Collection[T] {
	return &Collection[T]{
		name:     name,
		byID:     make(map[string]T),
		validate: validate,
		logg:     logg,
	}
}

// Load replaces the full collection after a list fetch. Malformed input
// empties the collection instead of corrupting it; the condition is logged
// for the caller to surface.
func (c *Collection[T]) Load(ctx context.Context, items []T) {
	c.order = c.order[:0]
	c.byID = make(map[string]T, len(items))
	for _, item := range items {
		if err := c.validate(item); err != nil {
			c.order = c.order[:0]
			c.byID = make(map[string]T)
			if c.logg != nil {
				c.logg.Warn(c.logg.WithField(ctx, "collection", c.name), "discarding malformed snapshot: "+err.Error())
			}
			return
		}
	}
	for _, item := range items {
		c.upsert(item)
	}
}

// Upsert inserts or replaces by id. A rejected record leaves the collection
// untouched.
func (c *Collection[T]) Upsert(ctx context.Context, item T) error {
	if err := c.validate(item); err != nil {
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "collection", c.name), "rejecting malformed record: "+err.Error())
		}
		return err
	}
	c.upsert(item)
	return nil
}

func (c *Collection[T]) upsert(item T) {
	id := item.RecordID()
	if _, exists := c.byID[id]; !exists {
		c.order = append(c.order, id)
	}
	c.byID[id] = item
}

// Remove deletes by id. Deletion is idempotent: removing an absent id is a
// no-op, not an error.
func (c *Collection[T]) Remove(id string) {
	if _, exists := c.byID[id]; !exists {
		return
	}
	delete(c.byID, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Get returns the record and whether it is present.
func (c *Collection[T]) Get(id string) (T, bool) {
	item, ok := c.byID[id]
	return item, ok
}

// All returns the records in insertion order.
func (c *Collection[T]) All() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len reports the number of records held.
func (c *Collection[T]) Len() int {
	return len(c.order)
}

// Store bundles the three mirrored collections. One Store instance is owned
// by the application root and handed to consumers; there are no package-level
// singletons.
type Store struct {
	Products  *Collection[Product]
	Orders    *Collection[Order]
	Customers *Collection[Customer]
}

func NewStore(logg *logger.Logger) *Store {
	return &Store{
		Products:  newCollection("products", Product.validate, logg),
		Orders:    newCollection("orders", Order.validate, logg),
		Customers: newCollection("customers", Customer.validate, logg),
	}
}
