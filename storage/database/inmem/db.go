package inmemdb

import (
	"sync"

	"github.com/killingspree001/lautechmarket/core/catalog"
)

type (
	DB struct {
		product *productTable
	}

	productTable struct {
		sync.RWMutex
		table map[string]*catalog.Product
		order []string // insertion order
	}
)

func Open() *DB {
	return &DB{
		product: &productTable{table: make(map[string]*catalog.Product)},
	}
}
