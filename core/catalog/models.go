package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/killingspree001/lautechmarket/core"
	"github.com/killingspree001/lautechmarket/core/cart"
)

// Ordering fields accepted by Service.Query.
const (
	FieldName      = "name"
	FieldPrice     = "price"
	FieldCreatedAt = "created_at"
	FieldCategory  = "category"
)

// DefaultOrdering lists the newest products first.
var DefaultOrdering = []core.DBOrdering{
	{Field: FieldCreatedAt, Ascending: false},
	{Field: FieldName, Ascending: true},
}

type Product struct {
	ID             string    `json:"id" db:"id" firestore:"-"`
	Name           string    `json:"name" db:"name" firestore:"name"`
	Description    string    `json:"description" db:"description" firestore:"description"`
	Price          float64   `json:"price" db:"price" firestore:"price"`
	Category       string    `json:"category" db:"category" firestore:"category"`
	Image          string    `json:"image" db:"image" firestore:"image"`
	InStock        bool      `json:"in_stock" db:"in_stock" firestore:"inStock"`
	WhatsappNumber string    `json:"whatsapp_number" db:"whatsapp_number" firestore:"whatsappNumber"`
	VendorName     string    `json:"vendor_name" db:"vendor_name" firestore:"vendorName"`
	VendorID       string    `json:"vendor_id,omitempty" db:"vendor_id" firestore:"vendorId"`
	CreatedAt      time.Time `json:"created_at" db:"created_at" firestore:"createdAt"` // UTC
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at" firestore:"updatedAt"` // UTC
}

// CartProduct is the snapshot of p stored in a cart.
func (p Product) CartProduct() cart.Product {
	return cart.Product{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Category:       p.Category,
		Image:          p.Image,
		InStock:        p.InStock,
		WhatsappNumber: p.WhatsappNumber,
		VendorName:     p.VendorName,
		VendorID:       p.VendorID,
	}
}

// NewProduct contains information needed to create a new Product.
type NewProduct struct {
	Name           string  `json:"name" validate:"notblank"`
	Description    string  `json:"description"`
	Price          float64 `json:"price" validate:"gte=0"`
	Category       string  `json:"category" validate:"notblank"`
	Image          string  `json:"image" validate:"omitempty,url"`
	InStock        *bool   `json:"in_stock"`
	WhatsappNumber string  `json:"whatsapp_number" validate:"notblank"`
	VendorName     string  `json:"vendor_name" validate:"notblank"`
	VendorID       string  `json:"vendor_id"`
}

func (np *NewProduct) Clean() {
	np.Name = core.CleanString(np.Name)
	np.Description = core.CleanString(np.Description)
	np.Category = core.CleanString(np.Category)
	np.Image = core.CleanString(np.Image)
	np.WhatsappNumber = core.CleanString(np.WhatsappNumber)
	np.VendorName = core.CleanString(np.VendorName)
	np.VendorID = core.CleanString(np.VendorID)
}

func (np *NewProduct) Validate(validate *validator.Validate) error {
	np.Clean()
	return validate.Struct(np)
}

type QueryFilter struct {
	Search     string
	Categories []string
	MinPrice   float64
	MaxPrice   float64 // 0 means unbounded
	InStock    *bool
	VendorID   string
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && len(qf.Categories) == 0 && qf.MinPrice == 0 && qf.MaxPrice == 0 &&
		qf.InStock == nil && qf.VendorID == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.VendorID = core.CleanString(qf.VendorID)

	categories := make([]string, 0, len(qf.Categories))
	for _, c := range qf.Categories {
		if c = core.CleanString(c); c != "" {
			categories = append(categories, c)
		}
	}
	qf.Categories = categories

	if qf.MinPrice < 0 {
		qf.MinPrice = 0
	}
	if qf.MaxPrice < 0 {
		qf.MaxPrice = 0
	}
}

type (
	PriceRange struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	}

	// FilterOptions are the filter values available over the whole catalog.
	FilterOptions struct {
		Categories []string   `json:"categories"`
		PriceRange PriceRange `json:"price_range"`
	}
)
