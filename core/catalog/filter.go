package catalog

import (
	"math"
	"sort"
	"strings"

	"github.com/killingspree001/lautechmarket/core"
)

// Filter returns the products matching every set field of filter, keeping their order.
// Search does a case-insensitive match on one of Product.Name, Product.Description or Product.Category.
func Filter(products []Product, filter QueryFilter) []Product {
	search := strings.ToLower(filter.Search)
	categories := make(map[string]bool, len(filter.Categories))
	for _, c := range filter.Categories {
		categories[strings.ToLower(c)] = true
	}

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) &&
			!strings.Contains(strings.ToLower(p.Category), search) {
			continue
		}
		if len(categories) > 0 && !categories[strings.ToLower(p.Category)] {
			continue
		}
		if p.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && p.Price > filter.MaxPrice {
			continue
		}
		if filter.InStock != nil && p.InStock != *filter.InStock {
			continue
		}
		if filter.VendorID != "" && p.VendorID != filter.VendorID {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// Sort orders products in place by each ordering in turn; unknown fields are ignored.
// the sort is stable, so products equal on every field keep their relative order.
func Sort(products []Product, ordering []core.DBOrdering) {
	ords := make([]core.DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		if _, ok := comparators[ord.Field]; ok {
			ords = append(ords, ord)
		}
	}
	if len(ords) == 0 {
		return
	}

	sort.SliceStable(products, func(i, j int) bool {
		for _, ord := range ords {
			c := comparators[ord.Field](products[i], products[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

var comparators = map[string]func(a, b Product) int{
	FieldName: func(a, b Product) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	},
	FieldCategory: func(a, b Product) int {
		return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
	},
	FieldPrice: func(a, b Product) int {
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		}
		return 0
	},
	FieldCreatedAt: func(a, b Product) int {
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
		return 0
	},
}

// Options returns the sorted distinct categories of products and their price range,
// rounded outwards to whole units.
func Options(products []Product) FilterOptions {
	opts := FilterOptions{Categories: []string{}}
	if len(products) == 0 {
		return opts
	}

	seen := make(map[string]bool)
	min, max := products[0].Price, products[0].Price
	for _, p := range products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			opts.Categories = append(opts.Categories, p.Category)
		}
		if p.Price < min {
			min = p.Price
		}
		if p.Price > max {
			max = p.Price
		}
	}
	sort.Strings(opts.Categories)
	opts.PriceRange = PriceRange{Min: math.Floor(min), Max: math.Ceil(max)}
	return opts
}
