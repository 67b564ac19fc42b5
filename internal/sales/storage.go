package sales

import (
	"context"
	"sort"
	"sync"
)

//go:generate mockgen -source=storage.go -destination=salesmock/storage.go -package=salesmock

// Storage is the main interface for our sales storage layer.
type Storage interface {
	// ListAll returns every persisted sale ordered by ID.
	ListAll(ctx context.Context) ([]*Sale, error)
	// Persist stores a candidate sale and returns it with its assigned ID.
	Persist(ctx context.Context, sale *Sale) (*Sale, error)
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu     sync.RWMutex
	m      map[uint]*Sale
	nextID uint
}

// NewLocalStorage instantiates a new LocalStorage for sales with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m:      map[uint]*Sale{},
		nextID: 1,
	}
}

// ListAll retrieves all sales from the local storage.
func (l *LocalStorage) ListAll(_ context.Context) ([]*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	sales := make([]*Sale, 0, len(l.m))
	for _, s := range l.m {
		sales = append(sales, s.clone())
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].ID < sales[j].ID })
	return sales, nil
}

// Persist assigns the next ID and stores a copy of the sale.
// Returns ErrConstraintViolation if a required field is missing and
// ErrInvalidPrice if the price does not fit numeric(12,2).
func (l *LocalStorage) Persist(_ context.Context, sale *Sale) (*Sale, error) {
	if !sale.hasRequiredFields() {
		return nil, ErrConstraintViolation
	}
	if !priceFits(*sale.Price) {
		return nil, invalidPrice(nil)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	stored := sale.clone()
	stored.ID = l.nextID
	l.nextID++
	l.m[stored.ID] = stored

	return stored.clone(), nil
}
