// Package catalog serves the products buyers browse and add to their carts.
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/killingspree001/lautechmarket/core"
)

var ErrNotFound = errors.New("product not found")

type (
	Repository interface {
		ListProducts(ctx context.Context) ([]Product, error)
		GetProduct(ctx context.Context, id string) (Product, error)
		// CreateProducts assigns ids to prods and stores them in one batch.
		CreateProducts(ctx context.Context, prods ...Product) ([]Product, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Query returns the products matching filter, ordered by ordering (DefaultOrdering when empty).
func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Product, error) {
	products, err := svc.repo.ListProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}
	filter.Clean()
	if !filter.IsEmpty() {
		products = Filter(products, filter)
	}
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	Sort(products, ordering)
	return products, nil
}

// Options returns the filter options over the whole catalog.
func (svc *Service) Options(ctx context.Context) (FilterOptions, error) {
	products, err := svc.repo.ListProducts(ctx)
	if err != nil {
		return FilterOptions{}, errors.Wrap(err, "listing products")
	}
	return Options(products), nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Product, error) {
	id = core.CleanString(id)
	if id == "" {
		return Product{}, ErrNotFound
	}
	return svc.repo.GetProduct(ctx, id)
}

// Create validates and stores new products; none is stored when one is invalid.
func (svc *Service) Create(ctx context.Context, nps ...NewProduct) ([]Product, error) {
	now := time.Now().UTC()
	prods := make([]Product, 0, len(nps))
	for i := range nps {
		np := nps[i]
		if err := np.Validate(svc.validate); err != nil {
			return nil, errors.Wrapf(err, "validating product #%d", i+1)
		}
		inStock := true
		if np.InStock != nil {
			inStock = *np.InStock
		}
		prods = append(prods, Product{
			Name:           np.Name,
			Description:    np.Description,
			Price:          np.Price,
			Category:       np.Category,
			Image:          np.Image,
			InStock:        inStock,
			WhatsappNumber: np.WhatsappNumber,
			VendorName:     np.VendorName,
			VendorID:       np.VendorID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	if len(prods) == 0 {
		return []Product{}, nil
	}
	return svc.repo.CreateProducts(ctx, prods...)
}

// Seed creates the products of a JSON array read from r.
func (svc *Service) Seed(ctx context.Context, r io.Reader) ([]Product, error) {
	var nps []NewProduct
	if err := json.NewDecoder(r).Decode(&nps); err != nil {
		return nil, errors.Wrap(err, "decoding products")
	}
	return svc.Create(ctx, nps...)
}
