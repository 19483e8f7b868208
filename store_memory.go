package account

import (
	"context"
	"sync"
)

// MemoryStore is a Store backed by an in-process slice. It is intended for
// tests and embedded deployments.
type MemoryStore struct {
	mu            sync.RWMutex
	identityField string
	records       []*Account
}

// MemoryStoreOption customizes a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithMemoryIdentityField overrides the field treated as the unique
// identifying key. Defaults to username.
func WithMemoryIdentityField(name string) MemoryStoreOption {
	return func(s *MemoryStore) {
		if name != "" {
			s.identityField = name
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		identityField: FieldUsername,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) FindByField(_ context.Context, field string, value any) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if v, ok := record.FieldValue(field); ok && v == value {
			return record.Clone(), nil
		}
	}

	return nil, ErrAccountNotFound
}

func (s *MemoryStore) Insert(_ context.Context, record *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, _ := record.FieldValue(s.identityField)
	for _, existing := range s.records {
		if v, ok := existing.FieldValue(s.identityField); ok && v == identity {
			return ErrDuplicateIdentity
		}
	}

	stored := record.Clone()
	prepareAccountDefaults(stored)
	record.ID = stored.ID
	s.records = append(s.records, stored)

	return nil
}

func (s *MemoryStore) SetFieldByIdentity(_ context.Context, identity any, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if v, ok := record.FieldValue(s.identityField); ok && v == identity {
			record.SetField(field, value)
		}
	}

	return nil
}

// Clear drops every record. Test helper.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

// Len reports how many records the store holds.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
