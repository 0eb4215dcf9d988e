package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/killingspree001/lautechmarket/core"
	"github.com/killingspree001/lautechmarket/core/cart"
	"github.com/killingspree001/lautechmarket/core/catalog"
)

// LogEntry is a message captured by Logger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger is a core.Logger recording every message; Fatal does not exit.
type Logger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

// Count returns the number of entries logged at level.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// NewValidator returns a validator set up the way the application sets it up.
func NewValidator() *validator.Validate {
	validate, _ := NewValidatorWithTranslator()
	return validate
}

// NewValidatorWithTranslator also returns the translator holding the registered messages.
func NewValidatorWithTranslator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	return validate, translator
}

// NewCartProduct returns a cart product snapshot.
func NewCartProduct(id, name, vendor, handle string, price float64) cart.Product {
	return cart.Product{
		ID:             id,
		Name:           name,
		Price:          price,
		InStock:        true,
		WhatsappNumber: handle,
		VendorName:     vendor,
	}
}

// CreateProduct stores a catalog product through repo.
func CreateProduct(
	t *testing.T,
	repo catalog.Repository,
	name, category, vendor string,
	price float64,
	inStock bool,
	createdAt ...time.Time,
) catalog.Product {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	prod := catalog.Product{
		Name:           name,
		Description:    fmt.Sprintf("%s sold by %s", name, vendor),
		Price:          price,
		Category:       category,
		Image:          "https://res.cloudinary.com/demo/image/upload/products/" + name + ".jpg",
		InStock:        inStock,
		WhatsappNumber: "+234 800 000 0000",
		VendorName:     vendor,
		VendorID:       "vendor-" + vendor,
		CreatedAt:      tstamp,
		UpdatedAt:      tstamp,
	}
	created, err := repo.CreateProducts(context.Background(), prod)
	if err != nil {
		t.Fatalf("CreateProduct() failed: %v", err)
	}
	return created[0]
}
