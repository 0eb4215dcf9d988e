package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/killingspree001/lautechmarket/core/catalog"
)

type productApi struct {
	svc *catalog.Service
}

func registerProductAPI(g *echo.Group, svc *catalog.Service) {
	api := productApi{svc: svc}

	pg := g.Group("/products")
	pg.GET("", api.query)
	pg.GET("/filters", api.filters)
	pg.GET("/:id", api.retrieve)
}

// Handlers

func (api *productApi) query(ctx echo.Context) error {
	filter := new(ProductFilter)
	if err := filter.Bind(ctx); err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	prods, err := api.svc.Query(ctx.Request().Context(), filter.QueryFilter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying products")
	}
	if prods == nil {
		prods = []catalog.Product{}
	}
	return ctx.JSON(http.StatusOK, prods)
}

func (api *productApi) filters(ctx echo.Context) error {
	opts, err := api.svc.Options(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting filter options")
	}
	return ctx.JSON(http.StatusOK, opts)
}

func (api *productApi) retrieve(ctx echo.Context) error {
	prod, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting product")
	}
	return ctx.JSON(http.StatusOK, prod)
}
