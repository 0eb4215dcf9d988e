package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/killingspree001/lautechmarket/core"
	"github.com/killingspree001/lautechmarket/core/catalog"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	ord.Orderings = core.ParseOrderings(ctx.QueryParam(orderingParam))
}

// ProductFilter binds catalog.QueryFilter from the query string:
// search, category (repeated or comma separated), min_price, max_price, in_stock and vendor_id.
type ProductFilter struct {
	catalog.QueryFilter
}

func (pf *ProductFilter) Bind(ctx echo.Context) error {
	params := ctx.QueryParams()
	var fldErrs []core.FieldError

	pf.Search = params.Get("search")
	pf.VendorID = params.Get("vendor_id")
	for _, val := range params["category"] {
		pf.Categories = append(pf.Categories, strings.Split(val, ",")...)
	}

	parsePrice := func(name string, dst *float64) {
		val := strings.TrimSpace(params.Get(name))
		if val == "" {
			return
		}
		price, err := strconv.ParseFloat(val, 64)
		if err != nil {
			fldErrs = append(fldErrs, core.FieldError{Field: name, Error: name + " " + msgFieldInvalidNumber})
			return
		}
		*dst = price
	}
	parsePrice("min_price", &pf.MinPrice)
	parsePrice("max_price", &pf.MaxPrice)

	if val := strings.TrimSpace(params.Get("in_stock")); val != "" {
		inStock, err := strconv.ParseBool(val)
		if err != nil {
			fldErrs = append(fldErrs, core.FieldError{Field: "in_stock", Error: "in_stock " + msgFieldInvalidBoolean})
		} else {
			pf.InStock = &inStock
		}
	}

	if len(fldErrs) > 0 {
		return core.NewValidationError(nil, fldErrs...)
	}
	pf.Clean()
	return nil
}
