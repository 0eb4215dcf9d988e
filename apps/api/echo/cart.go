package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/killingspree001/lautechmarket/core/cart"
	"github.com/killingspree001/lautechmarket/core/catalog"
	"github.com/killingspree001/lautechmarket/core/checkout"
)

// keepAliveInterval is the delay between comment lines sent on idle event streams.
var keepAliveInterval = 25 * time.Second

type (
	cartApi struct {
		store    *cart.Store
		catalog  *catalog.Service
		validate *validator.Validate
		done     <-chan struct{}
	}

	AddToCart struct {
		ProductID string        `json:"product_id" validate:"required_without=Product"`
		Product   *cart.Product `json:"product" validate:"required_without=ProductID"`
		Quantity  *int          `json:"quantity"`
	}

	UpdateCartItem struct {
		Quantity *int `json:"quantity" validate:"required"`
	}

	CartView struct {
		Items     []cart.Entry `json:"items"`
		ItemCount int          `json:"item_count"`
		Total     float64      `json:"total"`
		Warning   string       `json:"warning,omitempty"`
	}

	VendorCartView struct {
		Vendor    string       `json:"vendor"`
		Items     []cart.Entry `json:"items"`
		Subtotal  float64      `json:"subtotal"`
		OrderLink string       `json:"order_link"`
	}
)

func (data *AddToCart) Validate(validate *validator.Validate) error {
	return validate.Struct(data)
}

func (data *UpdateCartItem) Validate(validate *validator.Validate) error {
	return validate.Struct(data)
}

func registerCartAPI(
	g *echo.Group,
	session echo.MiddlewareFunc,
	store *cart.Store,
	catalogSvc *catalog.Service,
	validate *validator.Validate,
	done <-chan struct{},
) {
	api := cartApi{
		store:    store,
		catalog:  catalogSvc,
		validate: validate,
		done:     done,
	}

	cg := g.Group("/cart", session)
	cg.GET("", api.retrieve)
	cg.POST("", api.add)
	cg.DELETE("", api.clear)
	cg.GET("/vendors", api.vendors)
	cg.GET("/events", api.events)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.remove)
}

func (api *cartApi) view(ctx echo.Context, sid string) CartView {
	entries := api.store.Get(ctx.Request().Context(), sid)
	view := CartView{Items: entries}
	for _, e := range entries {
		view.ItemCount += e.Quantity
		view.Total += e.Subtotal()
	}
	return view
}

// respond answers with the current cart; a failed write is reported as a warning, not an error.
func (api *cartApi) respond(ctx echo.Context, sid string, err error) error {
	var storageErr *cart.StorageError
	if err != nil && !errors.As(err, &storageErr) {
		return err
	}
	view := api.view(ctx, sid)
	if storageErr != nil {
		view.Warning = msgCartNotSaved
	}
	return ctx.JSON(http.StatusOK, view)
}

// Handlers

func (api *cartApi) retrieve(ctx echo.Context) error {
	sid, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.view(ctx, sid))
}

func (api *cartApi) add(ctx echo.Context) error {
	sid, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	var data AddToCart
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddToCart")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	var prod cart.Product
	if data.ProductID != "" {
		p, err := api.catalog.GetByID(ctx.Request().Context(), data.ProductID)
		if err != nil {
			return errors.Wrap(err, "getting product")
		}
		prod = p.CartProduct()
	} else {
		prod = *data.Product
	}

	qty := 1
	if data.Quantity != nil {
		qty = *data.Quantity
	}
	return api.respond(ctx, sid, api.store.Add(ctx.Request().Context(), sid, prod, qty))
}

func (api *cartApi) update(ctx echo.Context) error {
	sid, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	var data UpdateCartItem
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCartItem")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	return api.respond(ctx, sid, api.store.UpdateQuantity(ctx.Request().Context(), sid, ctx.Param("id"), *data.Quantity))
}

func (api *cartApi) remove(ctx echo.Context) error {
	sid, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return api.respond(ctx, sid, api.store.Remove(ctx.Request().Context(), sid, ctx.Param("id")))
}

func (api *cartApi) clear(ctx echo.Context) error {
	sid, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return api.respond(ctx, sid, api.store.Clear(ctx.Request().Context(), sid))
}

func (api *cartApi) vendors(ctx echo.Context) error {
	sid, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	groups := api.store.ByVendor(ctx.Request().Context(), sid)
	views := make([]VendorCartView, 0, len(groups))
	for _, g := range groups {
		views = append(views, VendorCartView{
			Vendor:    g.Vendor,
			Items:     g.Items,
			Subtotal:  g.Subtotal(),
			OrderLink: checkout.OrderLink(g.Items, g.ContactHandle()),
		})
	}
	return ctx.JSON(http.StatusOK, views)
}

// events streams the cart events of the caller's session as Server-Sent Events.
// the current item count is sent first.
func (api *cartApi) events(ctx echo.Context) error {
	sid, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	res := ctx.Response()
	if _, ok := res.Writer.(http.Flusher); !ok {
		return errStreamNotSupported
	}

	events := make(chan cart.Event, 16)
	unsubscribe := api.store.Subscribe(func(ev cart.Event) {
		if ev.SessionID != sid {
			return
		}
		select {
		case events <- ev:
		default: // slow reader, drop
		}
	})
	defer unsubscribe()

	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	reqCtx := ctx.Request().Context()
	first := cart.Event{Name: cart.EventCartUpdated, SessionID: sid, ItemCount: api.store.ItemCount(reqCtx, sid)}
	if err = writeEvent(res, first); err != nil {
		return nil // client gone
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()
	for {
		select {
		case <-reqCtx.Done():
			return nil
		case <-api.done:
			return nil
		case ev := <-events:
			if err = writeEvent(res, ev); err != nil {
				return nil
			}
		case <-keepAlive.C:
			if _, err = fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

func writeEvent(res *echo.Response, ev cart.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}
	if _, err = fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
