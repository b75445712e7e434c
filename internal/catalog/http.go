// Copyright (c) 2026 Aventra. All rights reserved.

package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aventra/storefront/internal/platform/apperr"
	requestutil "github.com/aventra/storefront/internal/platform/request"
	"github.com/aventra/storefront/internal/platform/respond"
	"github.com/aventra/storefront/internal/platform/validate"
	"github.com/aventra/storefront/pkg/pagination"
	"github.com/aventra/storefront/pkg/pointer"
)

// Payload bounds the catalog API enforces on product writes.
const (
	maxNameLen        = 50
	maxDescriptionLen = 400
)

// defaultSimilarAmount is how many related products the detail page shows.
const defaultSimilarAmount = 3

// RouteGuard is the page-access decision bound to one request's navigation
// side effect. Implemented by the session engine's guard.
type RouteGuard interface {
	Protect(ctx context.Context, requireAuthenticated, employeeOnly bool, redirectTarget string, onRedirect func()) bool
}

// GuardFactory binds a RouteGuard to a per-request navigate callback.
type GuardFactory func(navigate func(target string)) RouteGuard

// Handler exposes the product browse surface and the employee CRUD
// passthrough. Every route is guarded: browsing needs a signed-in session
// (the catalog API itself refuses anonymous reads), mutations additionally
// need effective employee status.
type Handler struct {
	gateway       *Gateway
	sessions      Session
	guardFor      GuardFactory
	loginRedirect string
}

// NewHandler wires the product handler.
func NewHandler(gateway *Gateway, sessions Session, guardFor GuardFactory, loginRedirect string) *Handler {
	return &Handler{gateway: gateway, sessions: sessions, guardFor: guardFor, loginRedirect: loginRedirect}
}

// RegisterRoutes mounts the product routes on the router group.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.list)
	router.Get("/{productID}", handler.get)
	router.Get("/{productID}/similar", handler.similar)
	router.Post("/", handler.create)
	router.Put("/{productID}", handler.update)
	router.Delete("/{productID}", handler.remove)
}

// # Route Guarding

// protect runs the route guard, writing the denial response itself.
// Returns true when the request may proceed.
func (handler *Handler) protect(writer http.ResponseWriter, request *http.Request, employeeOnly bool) bool {
	ctx := request.Context()

	guard := handler.guardFor(func(target string) {
		if _, authenticated := handler.sessions.Credential(ctx); !authenticated {
			respond.Error(writer, request, apperr.Unauthenticated(target))
			return
		}
		// Authenticated but not (effectively) an employee.
		denial := apperr.Forbidden("Employee access required")
		denial.RedirectTo = target
		respond.Error(writer, request, denial)
	})

	return guard.Protect(ctx, true, employeeOnly, handler.loginRedirect, nil)
}

// # Browse

// list proxies the paginated product listing, decorating each row with its
// detail-URL slug. Search, price range, and browse flags travel upstream.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	if !handler.protect(writer, request, false) {
		return
	}

	params := pagination.FromRequest(request)
	raw := request.URL.Query()

	query := ListQuery{
		Search:         raw.Get("search"),
		SortNewest:     raw.Get("sortNewest") == "true",
		OnlyWithPhotos: raw.Get("onlyWithPhotos") == "true",
		Page:           params.Page,
		PageSize:       params.Limit,
	}

	v := &validate.Validator{}
	query.PriceMin = parsePriceParam(v, raw.Get("listPriceMin"), "listPriceMin")
	query.PriceMax = parsePriceParam(v, raw.Get("listPriceMax"), "listPriceMax")
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	page, err := handler.gateway.Products(request.Context(), handler.sessions, query)
	if err != nil {
		respond.Error(writer, request, handler.mapGatewayError(err))
		return
	}

	items := make([]ProductShort, 0, len(page.Data))
	for _, item := range page.Data {
		items = append(items, item.WithSlug())
	}

	respond.Paginated(writer, items, pagination.NewMeta(params.Page, params.Limit, page.TotalRows))
}

// get proxies a single product fetch.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	if !handler.protect(writer, request, false) {
		return
	}

	productID, err := requestutil.IntParam(request, "productID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	snapshot, err := handler.gateway.Product(request.Context(), handler.sessions, productID)
	if err != nil {
		respond.Error(writer, request, handler.mapGatewayError(err))
		return
	}

	respond.OK(writer, snapshot)
}

// similar proxies the related-products strip on the product detail page.
func (handler *Handler) similar(writer http.ResponseWriter, request *http.Request) {
	if !handler.protect(writer, request, false) {
		return
	}

	productID, err := requestutil.IntParam(request, "productID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	amount := defaultSimilarAmount
	if raw := request.URL.Query().Get("amount"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respond.Error(writer, request, apperr.ValidationError("Parameter 'amount' must be a positive integer"))
			return
		}
		amount = parsed
	}

	similar, err := handler.gateway.SimilarProducts(request.Context(), handler.sessions, productID, amount)
	if err != nil {
		respond.Error(writer, request, handler.mapGatewayError(err))
		return
	}

	items := make([]ProductShort, 0, len(similar))
	for _, item := range similar {
		items = append(items, item.WithSlug())
	}

	respond.OK(writer, items)
}

// # Employee CRUD

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	if !handler.protect(writer, request, true) {
		return
	}

	input := ProductInput{}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Creation requires the identifying fields; updates may omit them.
	v := &validate.Validator{}
	v.Required("name", pointer.Val(input.Name)).MaxLen("name", pointer.Val(input.Name), maxNameLen)
	v.Required("productNumber", pointer.Val(input.ProductNumber))
	v.Custom("listPrice", input.ListPrice == nil, "This field is required")
	v.NonNegative("listPrice", pointer.Val(input.ListPrice))
	v.MaxLen("description", pointer.Val(input.Description), maxDescriptionLen)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	snapshot, err := handler.gateway.CreateProduct(request.Context(), handler.sessions, input)
	if err != nil {
		respond.Error(writer, request, handler.mapGatewayError(err))
		return
	}

	respond.Created(writer, snapshot)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	if !handler.protect(writer, request, true) {
		return
	}

	productID, err := requestutil.IntParam(request, "productID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := ProductInput{}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.Name != nil {
		v.Required("name", *input.Name).MaxLen("name", *input.Name, maxNameLen)
	}
	if input.ListPrice != nil {
		v.NonNegative("listPrice", *input.ListPrice)
	}
	if input.Description != nil {
		v.MaxLen("description", *input.Description, maxDescriptionLen)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	snapshot, err := handler.gateway.UpdateProduct(request.Context(), handler.sessions, productID, input)
	if err != nil {
		respond.Error(writer, request, handler.mapGatewayError(err))
		return
	}

	respond.OK(writer, snapshot)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if !handler.protect(writer, request, true) {
		return
	}

	productID, err := requestutil.IntParam(request, "productID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.gateway.DeleteProduct(request.Context(), handler.sessions, productID); err != nil {
		respond.Error(writer, request, handler.mapGatewayError(err))
		return
	}

	respond.NoContent(writer)
}

// # Helpers

// parsePriceParam parses an optional price filter, recording a validation
// error for non-numeric or negative input. Empty input means no filter.
func parsePriceParam(v *validate.Validator, raw, field string) *float64 {
	if raw == "" {
		return nil
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || price < 0 {
		v.Custom(field, true, "Must be a non-negative number")
		return nil
	}

	return &price
}

// mapGatewayError translates gateway sentinels into the redirect-carrying
// API taxonomy.
func (handler *Handler) mapGatewayError(err error) error {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return apperr.Unauthenticated(handler.loginRedirect)
	case errors.Is(err, ErrSessionInvalidated):
		return apperr.SessionInvalidated(handler.loginRedirect)
	case errors.Is(err, ErrProductUnavailable):
		return apperr.NotFound("Product")
	default:
		return apperr.Upstream(err)
	}
}
