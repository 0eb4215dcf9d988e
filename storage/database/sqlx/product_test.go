package sqlxrepos

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killingspree001/lautechmarket/core/catalog"
)

var (
	now     = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	columns = []string{
		"id", "name", "description", "price", "category", "image", "in_stock",
		"whatsapp_number", "vendor_name", "vendor_id", "created_at", "updated_at",
	}
)

func setup(t *testing.T) (*productRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewProductRepository(db), mock
}

func TestProductRepository_ListProducts(t *testing.T) {
	repo, mock := setup(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectProducts)).WillReturnRows(
		sqlmock.NewRows(columns).
			AddRow("7e0b3f4e-8c43-4a3e-9d0f-1b7c0f6a2a11", "Notebook", "A5 ruled", 500.0, "Stationery", nil, true,
				"2348000000000", "Ada", "v1", now, now).
			AddRow("c5d1b7c6-1f7e-4b0b-8f7c-3f2a1d9e8b22", "Kettle", nil, 4000.0, "Appliances", "https://img/kettle.png", false,
				"2348011111111", "Bola", nil, now, now),
	)

	prods, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, prods, 2)

	assert.Equal(t, catalog.Product{
		ID:             "7e0b3f4e-8c43-4a3e-9d0f-1b7c0f6a2a11",
		Name:           "Notebook",
		Description:    "A5 ruled",
		Price:          500,
		Category:       "Stationery",
		InStock:        true,
		WhatsappNumber: "2348000000000",
		VendorName:     "Ada",
		VendorID:       "v1",
		CreatedAt:      now,
		UpdatedAt:      now,
	}, prods[0])
	assert.Equal(t, "", prods[1].Description)
	assert.Equal(t, "", prods[1].VendorID)
	assert.Equal(t, "https://img/kettle.png", prods[1].Image)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListProductsError(t *testing.T) {
	repo, mock := setup(t)
	dbErr := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(selectProducts)).WillReturnError(dbErr)

	_, err := repo.ListProducts(context.Background())
	assert.Equal(t, dbErr, errors.Cause(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetProduct(t *testing.T) {
	repo, mock := setup(t)
	id := uuid.New().String()

	mock.ExpectQuery(regexp.QuoteMeta(selectProduct)).WithArgs(id).WillReturnRows(
		sqlmock.NewRows(columns).AddRow(id, "Notebook", nil, 500.0, "Stationery", nil, true, "1", "Ada", nil, now, now),
	)
	prod, err := repo.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, prod.ID)
	assert.Equal(t, "Notebook", prod.Name)

	missing := uuid.New().String()
	mock.ExpectQuery(regexp.QuoteMeta(selectProduct)).WithArgs(missing).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetProduct(context.Background(), missing)
	assert.Equal(t, catalog.ErrNotFound, err)

	// not a uuid: no query
	_, err = repo.GetProduct(context.Background(), "not-a-uuid")
	assert.Equal(t, catalog.ErrNotFound, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_CreateProducts(t *testing.T) {
	repo, mock := setup(t)
	insert := regexp.QuoteMeta("INSERT INTO product (" + productColumns + ") VALUES")

	mock.ExpectBegin()
	mock.ExpectExec(insert).
		WithArgs(sqlmock.AnyArg(), "Notebook", "A5 ruled", 500.0, "Stationery", nil, true, "1", "Ada", "v1", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).
		WithArgs(sqlmock.AnyArg(), "Kettle", nil, 4000.0, "Appliances", nil, false, "2", "Bola", nil, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.CreateProducts(context.Background(),
		catalog.Product{Name: "Notebook", Description: "A5 ruled", Price: 500, Category: "Stationery", InStock: true,
			WhatsappNumber: "1", VendorName: "Ada", VendorID: "v1", CreatedAt: now, UpdatedAt: now},
		catalog.Product{Name: "Kettle", Price: 4000, Category: "Appliances",
			WhatsappNumber: "2", VendorName: "Bola", CreatedAt: now, UpdatedAt: now},
	)
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, p := range created {
		_, err := uuid.Parse(p.ID)
		assert.NoError(t, err)
	}
	assert.NotEqual(t, created[0].ID, created[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_CreateProductsRollback(t *testing.T) {
	repo, mock := setup(t)
	dbErr := errors.New("check constraint violated")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product")).WillReturnError(dbErr)
	mock.ExpectRollback()

	_, err := repo.CreateProducts(context.Background(), catalog.Product{Name: "Bad", Price: -1, CreatedAt: now, UpdatedAt: now})
	assert.Equal(t, dbErr, errors.Cause(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
