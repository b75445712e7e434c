// Copyright (c) 2026 Aventra. All rights reserved.

/*
Package catalog is the authenticated gateway to the remote product catalog API.

The catalog API is the source of truth for product data and the verifying
party for credentials; this package never originates product truth, it only
transports it.

Architecture:

  - Gateway: attaches the bearer credential to outbound calls and turns an
    upstream 401 into a session-invalidation signal.
  - Session: the minimal contract the gateway needs from the session engine.
  - Typed operations: login exchange, product fetch/list, profile fetch,
    employee CRUD passthrough.

Error taxonomy (sentinels, mapped to HTTP by the handlers):

  - ErrNotAuthenticated: no credential; the call was never issued.
  - ErrSessionInvalidated: upstream rejected the credential (401).
  - ErrProductUnavailable: product fetch answered non-2xx.
  - ErrLoginFailed: token exchange rejected or returned an empty body.
*/
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aventra/storefront/internal/platform/constants"
)

var (
	// ErrNotAuthenticated means no credential was present when one was
	// required. The outbound request is never issued.
	ErrNotAuthenticated = errors.New("catalog: not authenticated")

	// ErrSessionInvalidated means the catalog API answered 401: the
	// still-present credential is no longer honored.
	ErrSessionInvalidated = errors.New("catalog: session invalidated")

	// ErrProductUnavailable means a product fetch answered non-2xx: the
	// product no longer exists upstream or cannot be served.
	ErrProductUnavailable = errors.New("catalog: product unavailable")

	// ErrLoginFailed means the token exchange was rejected or returned an
	// empty token body.
	ErrLoginFailed = errors.New("catalog: login failed")
)

// Session is what the gateway needs from the session engine: the current
// credential, and a place to report that upstream stopped honoring it.
type Session interface {
	Credential(ctx context.Context) (string, bool)
	Invalidate(ctx context.Context)
}

// Gateway wraps outbound calls to the catalog API.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewGateway creates a gateway for the catalog API at baseURL (no trailing
// slash; the authenticated surface lives under <base>/api/).
func NewGateway(baseURL string, logger *slog.Logger) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: constants.UpstreamRequestTimeout,
		},
		log: logger,
	}
}

// # Authenticated Transport

// Call issues an authenticated request against <base>/api/<endpoint>.
//
// The bearer credential is attached on top of any caller-supplied headers.
// A 401 response is consumed here: the session is invalidated and
// [ErrSessionInvalidated] returned. Every other status, success or failure,
// passes through unmodified for the caller to interpret; this layer never
// retries and never reads bodies. The caller owns closing the response body.
func (gateway *Gateway) Call(ctx context.Context, sess Session, method, endpoint string, body io.Reader, header http.Header) (*http.Response, error) {
	token, ok := sess.Credential(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	request, err := http.NewRequestWithContext(ctx, method, gateway.baseURL+"/api/"+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}

	for name, values := range header {
		request.Header[name] = values
	}
	request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)

	response, err := gateway.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s %s: %w", method, endpoint, err)
	}

	if response.StatusCode == http.StatusUnauthorized {
		drain(response)
		sess.Invalidate(ctx)
		return nil, ErrSessionInvalidated
	}

	return response, nil
}

// # Login Exchange

// Login performs the token exchange. On success the raw bearer token is
// returned as the catalog API sent it: plain text, not JSON-wrapped. The
// caller decides where to persist it.
func (gateway *Gateway) Login(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", fmt.Errorf("catalog: encode login payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, gateway.baseURL+"/token", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("catalog: build login request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := gateway.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("catalog: login exchange: %w", err)
	}
	defer drain(response)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		gateway.log.WarnContext(ctx, "login_rejected", slog.Int("status", response.StatusCode))
		return "", ErrLoginFailed
	}

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("catalog: read login response: %w", err)
	}

	token := string(raw)
	if token == "" {
		// A 2xx with no body is still a failed login per the exchange contract.
		return "", ErrLoginFailed
	}

	return token, nil
}

// # Product Operations

// Product fetches one ProductSnapshot. A non-2xx answer (other than 401,
// which [Call] consumes) reports [ErrProductUnavailable].
func (gateway *Gateway) Product(ctx context.Context, sess Session, productID int) (*ProductSnapshot, error) {
	response, err := gateway.Call(ctx, sess, http.MethodGet, "products/"+strconv.Itoa(productID), nil, nil)
	if err != nil {
		return nil, err
	}
	defer drain(response)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("%w: product %d answered %d", ErrProductUnavailable, productID, response.StatusCode)
	}

	snapshot := &ProductSnapshot{}
	if err := json.NewDecoder(response.Body).Decode(snapshot); err != nil {
		return nil, fmt.Errorf("catalog: decode product %d: %w", productID, err)
	}

	return snapshot, nil
}

// Products fetches a listing page. Filters travel under the catalog API's
// own parameter names (queryNameId, listPriceMin/Max, sortNewest,
// onlyWithPhotos, pageNumber, pageSize); absent filters are omitted.
func (gateway *Gateway) Products(ctx context.Context, sess Session, query ListQuery) (*ProductPage, error) {
	params := url.Values{}
	if query.Search != "" {
		params.Set("queryNameId", query.Search)
	}
	if query.PriceMin != nil {
		params.Set("listPriceMin", strconv.FormatFloat(*query.PriceMin, 'f', -1, 64))
	}
	if query.PriceMax != nil {
		params.Set("listPriceMax", strconv.FormatFloat(*query.PriceMax, 'f', -1, 64))
	}
	if query.SortNewest {
		params.Set("sortNewest", "true")
	}
	if query.OnlyWithPhotos {
		params.Set("onlyWithPhotos", "true")
	}
	params.Set("pageNumber", strconv.Itoa(query.Page))
	params.Set("pageSize", strconv.Itoa(query.PageSize))

	response, err := gateway.Call(ctx, sess, http.MethodGet, "products?"+params.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}
	defer drain(response)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("catalog: product listing answered %d", response.StatusCode)
	}

	page := &ProductPage{}
	if err := json.NewDecoder(response.Body).Decode(page); err != nil {
		return nil, fmt.Errorf("catalog: decode product listing: %w", err)
	}

	return page, nil
}

// SimilarProducts fetches up to amount products related to productID, as
// shown on the product detail page.
func (gateway *Gateway) SimilarProducts(ctx context.Context, sess Session, productID, amount int) ([]ProductShort, error) {
	endpoint := fmt.Sprintf("products/%d/similar?amount=%d", productID, amount)

	response, err := gateway.Call(ctx, sess, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}
	defer drain(response)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("%w: similar for product %d answered %d", ErrProductUnavailable, productID, response.StatusCode)
	}

	similar := []ProductShort{}
	if err := json.NewDecoder(response.Body).Decode(&similar); err != nil {
		return nil, fmt.Errorf("catalog: decode similar products: %w", err)
	}

	return similar, nil
}

// CreateProduct submits a new product on behalf of an employee.
func (gateway *Gateway) CreateProduct(ctx context.Context, sess Session, input ProductInput) (*ProductSnapshot, error) {
	return gateway.writeProduct(ctx, sess, http.MethodPost, "products", input)
}

// UpdateProduct submits field changes for an existing product. The catalog
// API takes updates as a POST on the product resource, not a PUT.
func (gateway *Gateway) UpdateProduct(ctx context.Context, sess Session, productID int, input ProductInput) (*ProductSnapshot, error) {
	return gateway.writeProduct(ctx, sess, http.MethodPost, "products/"+strconv.Itoa(productID), input)
}

// DeleteProduct removes a product upstream.
func (gateway *Gateway) DeleteProduct(ctx context.Context, sess Session, productID int) error {
	response, err := gateway.Call(ctx, sess, http.MethodDelete, "products/"+strconv.Itoa(productID), nil, nil)
	if err != nil {
		return err
	}
	defer drain(response)

	if response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: product %d", ErrProductUnavailable, productID)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("catalog: delete product %d answered %d", productID, response.StatusCode)
	}

	return nil
}

func (gateway *Gateway) writeProduct(ctx context.Context, sess Session, method, endpoint string, input ProductInput) (*ProductSnapshot, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("catalog: encode product payload: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	response, err := gateway.Call(ctx, sess, method, endpoint, bytes.NewReader(payload), header)
	if err != nil {
		return nil, err
	}
	defer drain(response)

	if response.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, endpoint)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("catalog: %s %s answered %d", method, endpoint, response.StatusCode)
	}

	snapshot := &ProductSnapshot{}
	if err := json.NewDecoder(response.Body).Decode(snapshot); err != nil {
		return nil, fmt.Errorf("catalog: decode product response: %w", err)
	}

	return snapshot, nil
}

// # Profile

// UserInfo fetches the signed-in account's profile.
func (gateway *Gateway) UserInfo(ctx context.Context, sess Session) (*UserInfo, error) {
	response, err := gateway.Call(ctx, sess, http.MethodGet, "user/myinfo", nil, nil)
	if err != nil {
		return nil, err
	}
	defer drain(response)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("catalog: myinfo answered %d", response.StatusCode)
	}

	info := &UserInfo{}
	if err := json.NewDecoder(response.Body).Decode(info); err != nil {
		return nil, fmt.Errorf("catalog: decode myinfo: %w", err)
	}

	return info, nil
}

// # Helpers

// drain discards any remaining body and closes it so the transport can
// reuse the connection.
func drain(response *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, 1<<16))
	_ = response.Body.Close()
}
