// Copyright (c) 2026 Aventra. All rights reserved.

/*
Package session owns authentication state and role derivation for the storefront.

It holds exactly two persisted records per browser session: the raw bearer
credential and the view-as-customer preference. Everything else (claims,
effective role) is derived on demand so a logout or credential swap is
reflected immediately, with no cached state to invalidate.

Architecture:

  - Manager: the credential slot, claims decoding, and role resolution.
  - Guard: the page access decision (see guard.go).
  - Storage degradation: a missing or unreadable record always reads as
    anonymous/disabled, never as an error.

The credential is opaque to this package except for its payload segment,
which is decoded WITHOUT signature verification: the catalog API is the
verifying party; expiry is discovered reactively through a rejected call.
*/
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aventra/storefront/internal/platform/constants"
	"github.com/aventra/storefront/internal/platform/ctxutil"
	"github.com/aventra/storefront/internal/platform/keystore"
)

// Manager owns the credential and view-preference slots.
//
// One long-lived instance serves every browser session; the storage
// namespace is resolved per call from the session ID in the context.
type Manager struct {
	backend keystore.Store
	log     *slog.Logger
}

// NewManager creates a session manager over the given storage backend.
func NewManager(backend keystore.Store, logger *slog.Logger) *Manager {
	return &Manager{backend: backend, log: logger}
}

// slots resolves the caller's storage namespace from the context.
func (manager *Manager) slots(ctx context.Context) keystore.Store {
	return keystore.ForSession(manager.backend, ctxutil.GetSessionID(ctx))
}

// # Token Store

// SetCredential persists the bearer token, replacing any prior value.
// No validation of the token's shape is performed here.
func (manager *Manager) SetCredential(ctx context.Context, token string) error {
	return manager.slots(ctx).Set(ctx, constants.SlotToken, token)
}

// ClearCredential removes the persisted token. Idempotent; a storage failure
// is logged and swallowed because the caller is already on a logout path.
func (manager *Manager) ClearCredential(ctx context.Context) {
	if err := manager.slots(ctx).Delete(ctx, constants.SlotToken); err != nil {
		manager.log.WarnContext(ctx, "credential_clear_failed", slog.Any("error", err))
	}
}

// Credential returns the persisted token. Absent storage, a missing record,
// or a read failure all report (_, false): the caller is anonymous, not in
// an error state.
func (manager *Manager) Credential(ctx context.Context) (string, bool) {
	token, err := manager.slots(ctx).Get(ctx, constants.SlotToken)
	if err != nil {
		if !errors.Is(err, keystore.ErrNotFound) {
			manager.log.WarnContext(ctx, "credential_read_failed", slog.Any("error", err))
		}
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

// IsAuthenticated reports whether a non-empty credential is present.
//
// A credential the catalog API has already rejected still counts until
// [Manager.Invalidate] or [Manager.ClearCredential] removes it.
func (manager *Manager) IsAuthenticated(ctx context.Context) bool {
	_, ok := manager.Credential(ctx)
	return ok
}

// Invalidate is the subscription point for the gateway's session-invalidation
// signal (an upstream 401). The credential is cleared immediately so
// IsAuthenticated turns false right away instead of lingering until an
// explicit logout.
func (manager *Manager) Invalidate(ctx context.Context) {
	manager.log.WarnContext(ctx, "session_invalidated_by_upstream")
	manager.ClearCredential(ctx)
}

// # Role Resolver

// Claims decodes the credential's payload segment into a flat claim mapping.
//
// Any failure (no credential, malformed token structure, bad base64,
// non-JSON payload) yields (nil, false) with a warning log. Callers never
// see a decoding fault.
func (manager *Manager) Claims(ctx context.Context) (jwt.MapClaims, bool) {
	token, ok := manager.Credential(ctx)
	if !ok {
		return nil, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		manager.log.WarnContext(ctx, "credential_claims_decode_failed", slog.Any("error", err))
		return nil, false
	}

	return claims, true
}

// IsEmployeeRaw reports whether the credential's employee claim is truthy
// (boolean true or the literal string "true"), ignoring the view preference.
func (manager *Manager) IsEmployeeRaw(ctx context.Context) bool {
	claims, ok := manager.Claims(ctx)
	if !ok {
		return false
	}

	switch employee := claims["employee"].(type) {
	case bool:
		return employee
	case string:
		return employee == "true"
	default:
		return false
	}
}

// EffectiveIsEmployee is the single authority for employee-only affordances.
//
// When the view-as-customer preference is enabled the employee status is
// masked so an employee account can preview the customer experience; pass
// forceRawOverride to bypass the mask (e.g. for the toggle UI itself).
// The mask never touches the underlying claims.
func (manager *Manager) EffectiveIsEmployee(ctx context.Context, forceRawOverride bool) bool {
	if !forceRawOverride && manager.IsViewAsCustomer(ctx) {
		return false
	}
	return manager.IsEmployeeRaw(ctx)
}

// # View Preference

// SetViewAsCustomer persists the employee preview toggle. Its lifecycle is
// independent of the credential: it survives logout/login cycles.
func (manager *Manager) SetViewAsCustomer(ctx context.Context, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	return manager.slots(ctx).Set(ctx, constants.SlotViewAsCustomer, value)
}

// IsViewAsCustomer reads the persisted toggle. "true" and "1" both count as
// enabled; anything else, including an unreadable record, reads as disabled.
func (manager *Manager) IsViewAsCustomer(ctx context.Context) bool {
	value, err := manager.slots(ctx).Get(ctx, constants.SlotViewAsCustomer)
	if err != nil {
		if !errors.Is(err, keystore.ErrNotFound) {
			manager.log.WarnContext(ctx, "view_preference_read_failed", slog.Any("error", err))
		}
		return false
	}
	return value == "true" || value == "1"
}
