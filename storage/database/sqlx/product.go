package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/killingspree001/lautechmarket/core/catalog"
)

const (
	productColumns = "id, name, description, price, category, image, in_stock, whatsapp_number, vendor_name, vendor_id, created_at, updated_at"

	selectProducts = "SELECT " + productColumns + " FROM product ORDER BY created_at DESC, name ASC"
	selectProduct  = "SELECT " + productColumns + " FROM product WHERE id = $1"
	insertProduct  = "INSERT INTO product (" + productColumns + ") VALUES " +
		"(:id, :name, :description, :price, :category, :image, :in_stock, :whatsapp_number, :vendor_name, :vendor_id, :created_at, :updated_at)"
)

// productRow is a product table row; optional columns may be NULL.
type productRow struct {
	ID             string      `db:"id"`
	Name           string      `db:"name"`
	Description    null.String `db:"description"`
	Price          float64     `db:"price"`
	Category       string      `db:"category"`
	Image          null.String `db:"image"`
	InStock        bool        `db:"in_stock"`
	WhatsappNumber string      `db:"whatsapp_number"`
	VendorName     string      `db:"vendor_name"`
	VendorID       null.String `db:"vendor_id"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

type productRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*productRepository)(nil) // interface compliance check

func NewProductRepository(db *sql.DB) *productRepository {
	return &productRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo productRepository) toRow(prod catalog.Product) productRow {
	return productRow{
		ID:             prod.ID,
		Name:           prod.Name,
		Description:    null.NewString(prod.Description, prod.Description != ""),
		Price:          prod.Price,
		Category:       prod.Category,
		Image:          null.NewString(prod.Image, prod.Image != ""),
		InStock:        prod.InStock,
		WhatsappNumber: prod.WhatsappNumber,
		VendorName:     prod.VendorName,
		VendorID:       null.NewString(prod.VendorID, prod.VendorID != ""),
		CreatedAt:      prod.CreatedAt.UTC(),
		UpdatedAt:      prod.UpdatedAt.UTC(),
	}
}

func (repo productRepository) fromRow(row productRow) catalog.Product {
	return catalog.Product{
		ID:             row.ID,
		Name:           row.Name,
		Description:    row.Description.String,
		Price:          row.Price,
		Category:       row.Category,
		Image:          row.Image.String,
		InStock:        row.InStock,
		WhatsappNumber: row.WhatsappNumber,
		VendorName:     row.VendorName,
		VendorID:       row.VendorID.String,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

func (repo productRepository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var rows []productRow
	if err := repo.db.SelectContext(ctx, &rows, selectProducts); err != nil {
		return nil, errors.Wrap(err, "selecting products")
	}
	prods := make([]catalog.Product, 0, len(rows))
	for _, row := range rows {
		prods = append(prods, repo.fromRow(row))
	}
	return prods, nil
}

func (repo productRepository) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Product{}, catalog.ErrNotFound
	}
	var row productRow
	if err := repo.db.GetContext(ctx, &row, selectProduct, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, errors.Wrap(err, "selecting product")
	}
	return repo.fromRow(row), nil
}

// CreateProducts inserts prods in a single transaction.
func (repo productRepository) CreateProducts(ctx context.Context, prods ...catalog.Product) (_ []catalog.Product, err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	created := make([]catalog.Product, 0, len(prods))
	for _, prod := range prods {
		prod.ID = uuid.New().String()
		if _, err = tx.NamedExecContext(ctx, insertProduct, repo.toRow(prod)); err != nil {
			return nil, errors.Wrap(err, "inserting product")
		}
		created = append(created, prod)
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing products")
	}
	return created, nil
}
