// Copyright (c) 2026 Aventra. All rights reserved.

package session

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aventra/storefront/internal/catalog"
	"github.com/aventra/storefront/internal/platform/apperr"
	"github.com/aventra/storefront/internal/platform/keystore"
	requestutil "github.com/aventra/storefront/internal/platform/request"
	"github.com/aventra/storefront/internal/platform/respond"
	"github.com/aventra/storefront/internal/platform/validate"
)

// Handler exposes the auth surface: login exchange, logout, session summary,
// the view-as-customer toggle, and the proxied profile fetch.
type Handler struct {
	sessions      *Manager
	gateway       *catalog.Gateway
	loginRedirect string
}

// NewHandler wires the auth handler.
func NewHandler(sessions *Manager, gateway *catalog.Gateway, loginRedirect string) *Handler {
	return &Handler{sessions: sessions, gateway: gateway, loginRedirect: loginRedirect}
}

// RegisterRoutes mounts the auth routes on the router group.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Get("/session", handler.session)
	router.Put("/view-as-customer", handler.setViewAsCustomer)
	router.Get("/me", handler.me)
}

// # DTOs

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated  bool `json:"authenticated"`
	Employee       bool `json:"employee"`
	EmployeeRaw    bool `json:"employeeRaw"`
	ViewAsCustomer bool `json:"viewAsCustomer"`
}

type viewAsCustomerRequest struct {
	Enabled bool `json:"enabled"`
}

// # Handlers

// login proxies the token exchange and persists the credential on success.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	body := loginRequest{}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("email", body.Email).Email("email", body.Email)
	v.Required("password", body.Password)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	ctx := request.Context()

	token, err := handler.gateway.Login(ctx, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, catalog.ErrLoginFailed) {
			respond.Error(writer, request, apperr.Forbidden("Invalid email or password"))
			return
		}
		respond.Error(writer, request, apperr.Upstream(err))
		return
	}

	if err := handler.sessions.SetCredential(ctx, token); err != nil {
		if errors.Is(err, keystore.ErrUnavailable) {
			respond.Error(writer, request, apperr.ServiceUnavailable("Session storage unavailable"))
			return
		}
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	respond.OK(writer, handler.summary(request))
}

// logout clears the credential. The view preference deliberately survives:
// its lifecycle is independent of the credential.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.sessions.ClearCredential(request.Context())
	respond.NoContent(writer)
}

// session reports the derived authentication and role state.
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.summary(request))
}

// setViewAsCustomer persists the employee preview toggle.
func (handler *Handler) setViewAsCustomer(writer http.ResponseWriter, request *http.Request) {
	body := viewAsCustomerRequest{}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.sessions.SetViewAsCustomer(request.Context(), body.Enabled); err != nil {
		respond.Error(writer, request, apperr.ServiceUnavailable("Session storage unavailable"))
		return
	}

	respond.OK(writer, handler.summary(request))
}

// me proxies the profile fetch through the authenticated gateway.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	info, err := handler.gateway.UserInfo(ctx, handler.sessions)
	if err != nil {
		respond.Error(writer, request, handler.mapGatewayError(err))
		return
	}

	respond.OK(writer, info)
}

// # Helpers

func (handler *Handler) summary(request *http.Request) sessionResponse {
	ctx := request.Context()
	return sessionResponse{
		Authenticated:  handler.sessions.IsAuthenticated(ctx),
		Employee:       handler.sessions.EffectiveIsEmployee(ctx, false),
		EmployeeRaw:    handler.sessions.EffectiveIsEmployee(ctx, true),
		ViewAsCustomer: handler.sessions.IsViewAsCustomer(ctx),
	}
}

// mapGatewayError translates gateway sentinels into the redirect-carrying
// API taxonomy.
func (handler *Handler) mapGatewayError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotAuthenticated):
		return apperr.Unauthenticated(handler.loginRedirect)
	case errors.Is(err, catalog.ErrSessionInvalidated):
		return apperr.SessionInvalidated(handler.loginRedirect)
	default:
		return apperr.Upstream(err)
	}
}
