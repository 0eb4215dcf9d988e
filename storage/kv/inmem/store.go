package inmemkv

import (
	"context"
	"sync"

	"github.com/killingspree001/lautechmarket/core"
)

type Store struct {
	mutex sync.RWMutex
	table map[string]string
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

func New() *Store {
	return &Store{table: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if val, ok := s.table[key]; ok {
		return val, nil
	}
	return "", core.ErrKeyNotFound
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.table[key] = value
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.table, key)
	return nil
}

// Len is the number of stored keys.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.table)
}
