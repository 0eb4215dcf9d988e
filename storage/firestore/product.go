// Package firestoredb stores the catalog in the Firestore "products" collection.
package firestoredb

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/killingspree001/lautechmarket/core"
	"github.com/killingspree001/lautechmarket/core/catalog"
)

const productsCollection = "products"

// NewClient connects to the configured project; Application Default Credentials are used
// when no credentials file is set.
func NewClient(ctx context.Context, conf *core.Config) (*firestore.Client, error) {
	var opts []option.ClientOption
	if conf.Catalog.FirestoreCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Catalog.FirestoreCredentials))
	}
	client, err := firestore.NewClient(ctx, conf.Catalog.FirestoreProject, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating firestore client")
	}
	return client, nil
}

type productRepository struct {
	client *firestore.Client
}

var _ catalog.Repository = (*productRepository)(nil) // interface compliance check

func NewProductRepository(client *firestore.Client) *productRepository {
	return &productRepository{client: client}
}

func (repo productRepository) col() *firestore.CollectionRef {
	return repo.client.Collection(productsCollection)
}

func docToProduct(doc *firestore.DocumentSnapshot) (catalog.Product, error) {
	var prod catalog.Product
	if err := doc.DataTo(&prod); err != nil {
		return catalog.Product{}, errors.Wrapf(err, "decoding product %s", doc.Ref.ID)
	}
	prod.ID = doc.Ref.ID
	prod.CreatedAt = prod.CreatedAt.UTC()
	prod.UpdatedAt = prod.UpdatedAt.UTC()
	return prod, nil
}

func (repo productRepository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	it := repo.col().Documents(ctx)
	defer it.Stop()

	prods := make([]catalog.Product, 0)
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "iterating products")
		}
		prod, err := docToProduct(doc)
		if err != nil {
			return nil, err
		}
		prods = append(prods, prod)
	}
	return prods, nil
}

func (repo productRepository) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "/") {
		return catalog.Product{}, catalog.ErrNotFound
	}

	doc, err := repo.col().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, errors.Wrap(err, "getting product")
	}
	return docToProduct(doc)
}

// CreateProducts creates every product in a single transaction.
func (repo productRepository) CreateProducts(ctx context.Context, prods ...catalog.Product) ([]catalog.Product, error) {
	var created []catalog.Product
	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = make([]catalog.Product, 0, len(prods)) // reset on retry
		for _, prod := range prods {
			ref := repo.col().NewDoc()
			prod.ID = ref.ID
			if err := tx.Create(ref, prod); err != nil {
				return err
			}
			created = append(created, prod)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating products")
	}
	return created, nil
}
