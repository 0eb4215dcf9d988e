package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/killingspree001/lautechmarket/core"
)

// Key is the storage key of a cart. Session carts are stored under "<Key>:<session id>".
const Key = "shopping_cart"

var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// StorageError reports a cart mutation that had no durable effect.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("cart %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store owns the persisted carts of all sessions.
// reads never fail: absent or corrupt carts are returned empty.
type Store struct {
	kv     core.KVStore
	logger core.Logger
	events *broadcaster

	// serializes read-modify-write cycles of this process
	mu sync.Mutex
}

func NewStore(kv core.KVStore, logger core.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger,
		events: newBroadcaster(),
	}
}

func storageKey(sid string) string {
	if sid == "" {
		return Key
	}
	return Key + ":" + sid
}

// Subscribe registers l for cart events of every session and returns its unsubscribe func.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	return s.events.subscribe(l)
}

// read returns the stored cart; absent and corrupt carts read as empty without error.
func (s *Store) read(ctx context.Context, sid string) ([]Entry, error) {
	raw, err := s.kv.Get(ctx, storageKey(sid))
	if err != nil {
		if errors.Cause(err) == core.ErrKeyNotFound {
			return []Entry{}, nil
		}
		return nil, errors.Wrap(err, "reading cart")
	}

	var entries []Entry
	if err = json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("loading cart: corrupt data, using an empty cart", err, map[string]interface{}{"session": sid})
		return []Entry{}, nil
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// load is read for callers that never fail: read errors are logged and yield an empty cart.
func (s *Store) load(ctx context.Context, sid string) []Entry {
	entries, err := s.read(ctx, sid)
	if err != nil {
		s.logger.Error("loading cart", err, map[string]interface{}{"session": sid})
		return []Entry{}
	}
	return entries
}

func (s *Store) save(ctx context.Context, sid string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return s.fail("save", sid, errors.Wrap(err, "encoding cart"))
	}
	if err = s.kv.Set(ctx, storageKey(sid), string(data)); err != nil {
		return s.fail("save", sid, errors.Wrap(err, "writing cart"))
	}
	s.events.publish(Event{Name: EventCartUpdated, SessionID: sid, ItemCount: itemCount(entries)})
	return nil
}

func (s *Store) fail(op, sid string, err error) error {
	serr := &StorageError{Op: op, Err: err}
	s.logger.Error("cart not persisted", serr, map[string]interface{}{"session": sid})
	return serr
}

// Get returns the current cart of session `sid`.
func (s *Store) Get(ctx context.Context, sid string) []Entry {
	return s.load(ctx, sid)
}

// Save overwrites the whole cart of session `sid`.
func (s *Store) Save(ctx context.Context, sid string, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, sid, entries)
}

// Add adds `quantity` of `product` to the cart, merging with the entry of the same identity key.
func (s *Store) Add(ctx context.Context, sid string, product Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := product.Key()
	entries, err := s.read(ctx, sid)
	if err != nil {
		return s.fail("load", sid, err)
	}
	for i := range entries {
		if entries[i].Product.Key() == key {
			entries[i].Quantity += quantity
			return s.save(ctx, sid, entries)
		}
	}

	product.ID = key // later lookups match on the stored ID
	entries = append(entries, Entry{Product: product, Quantity: quantity})
	return s.save(ctx, sid, entries)
}

// Remove drops the entry identified by `productID`. Removing an absent entry is a no-op.
func (s *Store) Remove(ctx context.Context, sid, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(ctx, sid, productID)
}

func (s *Store) remove(ctx context.Context, sid, productID string) error {
	entries, err := s.read(ctx, sid)
	if err != nil {
		return s.fail("load", sid, err)
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.Product.Key() != productID {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return s.save(ctx, sid, kept)
}

// UpdateQuantity sets the quantity of an entry; a quantity <= 0 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, sid, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.remove(ctx, sid, productID)
	}

	entries, err := s.read(ctx, sid)
	if err != nil {
		return s.fail("load", sid, err)
	}
	for i := range entries {
		if entries[i].Product.Key() == productID {
			if entries[i].Quantity == quantity {
				return nil
			}
			entries[i].Quantity = quantity
			return s.save(ctx, sid, entries)
		}
	}
	return nil
}

// Clear deletes the persisted cart.
func (s *Store) Clear(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, storageKey(sid)); err != nil && errors.Cause(err) != core.ErrKeyNotFound {
		return s.fail("clear", sid, errors.Wrap(err, "removing cart"))
	}
	s.events.publish(Event{Name: EventCartUpdated, SessionID: sid})
	return nil
}

// ByVendor groups the current cart by vendor name.
func (s *Store) ByVendor(ctx context.Context, sid string) []VendorGroup {
	return GroupByVendor(s.load(ctx, sid))
}

// ItemCount is the sum of all quantities in the cart.
func (s *Store) ItemCount(ctx context.Context, sid string) int {
	return itemCount(s.load(ctx, sid))
}

// Total is the sum of price * quantity over the cart.
func (s *Store) Total(ctx context.Context, sid string) float64 {
	return total(s.load(ctx, sid))
}

func (s *Store) Contains(ctx context.Context, sid, productID string) bool {
	for _, e := range s.load(ctx, sid) {
		if e.Product.Key() == productID {
			return true
		}
	}
	return false
}
