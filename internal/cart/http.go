// Copyright (c) 2026 Aventra. All rights reserved.

package cart

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aventra/storefront/internal/catalog"
	"github.com/aventra/storefront/internal/platform/apperr"
	requestutil "github.com/aventra/storefront/internal/platform/request"
	"github.com/aventra/storefront/internal/platform/respond"
	"github.com/aventra/storefront/internal/platform/validate"
)

// Handler exposes the cart surface.
//
// Local CRUD needs no authentication: the cart is the caller's own session
// record, usable while browsing anonymously. Only refresh touches the
// catalog API and therefore inherits its authentication precondition.
type Handler struct {
	carts         *Store
	reconciler    *Reconciler
	loginRedirect string
}

// NewHandler wires the cart handler.
func NewHandler(carts *Store, reconciler *Reconciler, loginRedirect string) *Handler {
	return &Handler{carts: carts, reconciler: reconciler, loginRedirect: loginRedirect}
}

// RegisterRoutes mounts the cart routes on the router group.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.load)
	router.Delete("/", handler.clear)
	router.Post("/items", handler.add)
	router.Get("/items/{productID}", handler.quantity)
	router.Put("/items/{productID}", handler.edit)
	router.Delete("/items/{productID}", handler.remove)
	router.Post("/refresh", handler.refresh)
}

// # DTOs

type addRequest struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	ListPrice float64 `json:"listPrice"`
	Quantity  int     `json:"quantity"`
}

type editRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items    []Line  `json:"items"`
	Subtotal float64 `json:"subtotal"`
}

type quantityResponse struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// # Handlers

// load returns the current cart and its locally computed subtotal.
func (handler *Handler) load(writer http.ResponseWriter, request *http.Request) {
	lines := handler.carts.Load(request.Context())
	respond.OK(writer, cartResponse{Items: lines, Subtotal: Subtotal(lines)})
}

// add merges an item into the cart. A failure here is the one storage
// problem the UI surfaces to the user (the add-to-cart toast).
func (handler *Handler) add(writer http.ResponseWriter, request *http.Request) {
	body := addRequest{}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Custom("productId", body.ProductID <= 0, "Must be a positive product ID")
	v.Required("name", body.Name)
	v.NonNegative("listPrice", body.ListPrice)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	quantity := body.Quantity
	if quantity < 1 {
		quantity = 1
	}

	ctx := request.Context()
	item := Item{ProductID: body.ProductID, Name: body.Name, ListPrice: body.ListPrice}

	if !handler.carts.Add(ctx, item, quantity) {
		respond.Error(writer, request, apperr.ServiceUnavailable("Could not add the item to your cart"))
		return
	}

	lines := handler.carts.Load(ctx)
	respond.OK(writer, cartResponse{Items: lines, Subtotal: Subtotal(lines)})
}

// edit sets the absolute quantity of a line; zero or less removes it.
func (handler *Handler) edit(writer http.ResponseWriter, request *http.Request) {
	productID, err := requestutil.IntParam(request, "productID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	body := editRequest{}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	ctx := request.Context()

	if !handler.carts.Edit(ctx, productID, body.Quantity) {
		respond.Error(writer, request, apperr.NotFound("Cart item"))
		return
	}

	lines := handler.carts.Load(ctx)
	respond.OK(writer, cartResponse{Items: lines, Subtotal: Subtotal(lines)})
}

// remove deletes a line. Removing an absent line still answers 204.
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	productID, err := requestutil.IntParam(request, "productID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.carts.Remove(request.Context(), productID)
	respond.NoContent(writer)
}

// quantity reports the stored quantity for one product, zero when absent.
func (handler *Handler) quantity(writer http.ResponseWriter, request *http.Request) {
	productID, err := requestutil.IntParam(request, "productID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, quantityResponse{
		ProductID: productID,
		Quantity:  handler.carts.QuantityOf(request.Context(), productID),
	})
}

// clear discards the whole cart, explicit user action only.
func (handler *Handler) clear(writer http.ResponseWriter, request *http.Request) {
	handler.carts.Clear(request.Context())
	respond.NoContent(writer)
}

// refresh reconciles the cart against the catalog and returns the result.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	if err := handler.reconciler.Refresh(ctx); err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotAuthenticated):
			respond.Error(writer, request, apperr.Unauthenticated(handler.loginRedirect))
		case errors.Is(err, catalog.ErrSessionInvalidated):
			respond.Error(writer, request, apperr.SessionInvalidated(handler.loginRedirect))
		default:
			respond.Error(writer, request, apperr.Upstream(err))
		}
		return
	}

	lines := handler.carts.Load(ctx)
	respond.OK(writer, cartResponse{Items: lines, Subtotal: Subtotal(lines)})
}
