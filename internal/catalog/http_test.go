// Copyright (c) 2026 Aventra. All rights reserved.

package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aventra/storefront/internal/catalog"
	"github.com/aventra/storefront/internal/platform/ctxutil"
	"github.com/aventra/storefront/internal/platform/keystore"
	"github.com/aventra/storefront/internal/session"
)

// productFixture wires the product handler against a fake catalog API with
// the real session engine behind the guard, pinning every request to one
// browser session.
type productFixture struct {
	router   *chi.Mux
	sessions *session.Manager
	ctx      context.Context
}

func newProductFixture(t *testing.T, upstream http.HandlerFunc) *productFixture {
	t.Helper()

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManager(keystore.NewMemory(), log)
	gateway := catalog.NewGateway(server.URL, log)

	guardFor := func(navigate func(target string)) catalog.RouteGuard {
		return session.NewGuard(sessions, navigate)
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ctxutil.WithSessionID(r.Context(), "product-session")))
		})
	})
	router.Route("/products", catalog.NewHandler(gateway, sessions, guardFor, "/login").RegisterRoutes)

	return &productFixture{
		router:   router,
		sessions: sessions,
		ctx:      ctxutil.WithSessionID(context.Background(), "product-session"),
	}
}

// signIn stores a credential with the given employee claim.
func (f *productFixture) signIn(t *testing.T, employee bool) {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"employee": employee,
	}).SignedString([]byte("upstream-key"))
	require.NoError(t, err)
	require.NoError(t, f.sessions.SetCredential(f.ctx, token))
}

func (f *productFixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	request := httptest.NewRequest(method, target, reader)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestProductHandler_AnonymousDenied verifies every product route answers 401
with the login redirect when no credential is present, without contacting
the catalog.
*/
func TestProductHandler_AnonymousDenied(t *testing.T) {
	f := newProductFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("the catalog must not be contacted")
	})

	routes := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/products"},
		{http.MethodGet, "/products/771"},
		{http.MethodGet, "/products/771/similar"},
		{http.MethodPost, "/products"},
		{http.MethodDelete, "/products/771"},
	}

	for _, route := range routes {
		t.Run(route.method+"_"+route.target, func(t *testing.T) {
			recorder := f.do(t, route.method, route.target, "")

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Contains(t, recorder.Body.String(), `"code":"UNAUTHENTICATED"`)
			assert.Contains(t, recorder.Body.String(), `"redirect_to":"/login"`)
		})
	}
}

/*
TestProductHandler_CustomerDeniedEmployeeRoutes verifies a signed-in
customer gets a 403 with a redirect on the employee CRUD routes.
*/
func TestProductHandler_CustomerDeniedEmployeeRoutes(t *testing.T) {
	f := newProductFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("the catalog must not be contacted")
	})
	f.signIn(t, false)

	for _, route := range []struct {
		method string
		target string
	}{
		{http.MethodPost, "/products"},
		{http.MethodPut, "/products/771"},
		{http.MethodDelete, "/products/771"},
	} {
		t.Run(route.method, func(t *testing.T) {
			recorder := f.do(t, route.method, route.target, "")

			assert.Equal(t, http.StatusForbidden, recorder.Code)
			assert.Contains(t, recorder.Body.String(), `"code":"FORBIDDEN"`)
			assert.Contains(t, recorder.Body.String(), `"redirect_to":"/login"`)
		})
	}
}

/*
TestProductHandler_EmployeePreviewDenied verifies an employee previewing as
a customer loses the CRUD routes but keeps browsing.
*/
func TestProductHandler_EmployeePreviewDenied(t *testing.T) {
	f := newProductFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"productId":771,"name":"Mountain-100 Silver, 38","listPrice":3399.99}`))
	})
	f.signIn(t, true)
	require.NoError(t, f.sessions.SetViewAsCustomer(f.ctx, true))

	recorder := f.do(t, http.MethodDelete, "/products/771", "")
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = f.do(t, http.MethodGet, "/products/771", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestProductHandler_ListForwardsFilters verifies the browse surface passes
search, price range, and browse flags to the catalog under its parameter
names, and re-envelopes the answer with local slugs.
*/
func TestProductHandler_ListForwardsFilters(t *testing.T) {
	f := newProductFixture(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "bike", query.Get("queryNameId"))
		assert.Equal(t, "100", query.Get("listPriceMin"))
		assert.Equal(t, "true", query.Get("sortNewest"))
		assert.Equal(t, "1", query.Get("pageNumber"))
		assert.Equal(t, "20", query.Get("pageSize"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"pageNumber": 1,
			"pageSize": 20,
			"totalRows": 1,
			"totalPages": 1,
			"data": [{"productId":771,"name":"Mountain-100 Silver, 38","listPrice":3399.99}]
		}`))
	})
	f.signIn(t, false)

	recorder := f.do(t, http.MethodGet, "/products?search=bike&listPriceMin=100&sortNewest=true", "")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"slug":"mountain-100-silver-38-771"`)
	assert.Contains(t, recorder.Body.String(), `"total":1`)
}

/*
TestProductHandler_ListRejectsBadPriceFilter verifies a non-numeric price
filter is rejected before any upstream traffic.
*/
func TestProductHandler_ListRejectsBadPriceFilter(t *testing.T) {
	f := newProductFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("the catalog must not be contacted")
	})
	f.signIn(t, false)

	recorder := f.do(t, http.MethodGet, "/products?listPriceMax=cheap", "")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"code":"VALIDATION_ERROR"`)
}

/*
TestProductHandler_SimilarPassthrough tests the related-products route and
its amount parameter handling.
*/
func TestProductHandler_SimilarPassthrough(t *testing.T) {
	f := newProductFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/771/similar", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("amount"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"productId":772,"name":"Mountain-100 Silver, 42","listPrice":3399.99}]`))
	})
	f.signIn(t, false)

	recorder := f.do(t, http.MethodGet, "/products/771/similar", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"productId":772`)

	recorder = f.do(t, http.MethodGet, "/products/771/similar?amount=zero", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

/*
TestProductHandler_CreateValidation verifies the payload bounds on the
create route, including the 50-character name cap.
*/
func TestProductHandler_CreateValidation(t *testing.T) {
	f := newProductFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("the catalog must not be contacted")
	})
	f.signIn(t, true)

	longName := strings.Repeat("x", 51)

	tests := []struct {
		name string
		body string
	}{
		{"missing_name", `{"productNumber":"BK-M18S-42","listPrice":3399.99}`},
		{"name_too_long", `{"name":"` + longName + `","productNumber":"BK-M18S-42","listPrice":3399.99}`},
		{"missing_list_price", `{"name":"Mountain-100","productNumber":"BK-M18S-42"}`},
		{"negative_list_price", `{"name":"Mountain-100","productNumber":"BK-M18S-42","listPrice":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := f.do(t, http.MethodPost, "/products", tt.body)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}

/*
TestProductHandler_UpdateProxiesAsPost verifies the employee edit surface
reaches the catalog as a POST on the product resource with the bearer
header attached.
*/
func TestProductHandler_UpdateProxiesAsPost(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	f := newProductFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"productId":771,"name":"Renamed","listPrice":3399.99}`))
	})
	f.signIn(t, true)

	recorder := f.do(t, http.MethodPut, "/products/771", `{"name":"Renamed"}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/products/771", gotPath)
	assert.True(t, strings.HasPrefix(gotAuth, "Bearer "))
}
