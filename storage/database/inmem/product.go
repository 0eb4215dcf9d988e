package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/killingspree001/lautechmarket/core/catalog"
)

type productRepository struct {
	db *productTable
}

var _ catalog.Repository = (*productRepository)(nil) // interface compliance check

func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db.product}
}

func (repo *productRepository) ListProducts(_ context.Context) ([]catalog.Product, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	prods := make([]catalog.Product, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		prods = append(prods, *repo.db.table[id])
	}
	return prods, nil
}

func (repo *productRepository) GetProduct(_ context.Context, id string) (catalog.Product, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prod, ok := repo.db.table[id]; ok {
		return *prod, nil
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (repo *productRepository) CreateProducts(_ context.Context, prods ...catalog.Product) ([]catalog.Product, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	created := make([]catalog.Product, 0, len(prods))
	for _, prod := range prods {
		prod.ID = uuid.New().String()
		p := prod
		repo.db.table[p.ID] = &p
		repo.db.order = append(repo.db.order, p.ID)
		created = append(created, prod)
	}
	return created, nil
}
