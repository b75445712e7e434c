// Copyright (c) 2026 Aventra. All rights reserved.

package catalog

import (
	"fmt"

	"github.com/aventra/storefront/pkg/slug"
)

// ProductSnapshot is the catalog API's full product record.
//
// The storefront never mutates it through this package's read paths; the
// cart reconciler only borrows name and listPrice from it.
type ProductSnapshot struct {
	ProductID             int     `json:"productId"`
	Name                  string  `json:"name"`
	ProductNumber         string  `json:"productNumber"`
	ListPrice             float64 `json:"listPrice"`
	StandardCost          float64 `json:"standardCost"`
	Size                  string  `json:"size,omitempty"`
	SizeUnitMeasureCode   string  `json:"sizeUnitMeasureCode,omitempty"`
	Weight                float64 `json:"weight,omitempty"`
	WeightUnitMeasureCode string  `json:"weightUnitMeasureCode,omitempty"`
	SellStartDate         string  `json:"sellStartDate,omitempty"`
	Category              string  `json:"category,omitempty"`
	Subcategory           string  `json:"subcategory,omitempty"`
	Description           string  `json:"description,omitempty"`
}

// ProductShort is the listing projection used by browse and search pages.
type ProductShort struct {
	ProductID     int     `json:"productId"`
	Name          string  `json:"name"`
	ProductNumber string  `json:"productNumber"`
	ListPrice     float64 `json:"listPrice"`
	// Slug is derived locally for detail-page URLs; the catalog API does not
	// send it.
	Slug string `json:"slug,omitempty"`
}

// WithSlug returns a copy carrying the derived detail-URL slug.
func (p ProductShort) WithSlug() ProductShort {
	p.Slug = slug.From(fmt.Sprintf("%s-%d", p.Name, p.ProductID))
	return p
}

// ProductInput is the employee create/update payload. Optional fields stay
// nil when the caller does not touch them; the upstream catalog API owns
// merge semantics.
type ProductInput struct {
	Name          *string  `json:"name,omitempty"`
	ProductNumber *string  `json:"productNumber,omitempty"`
	ListPrice     *float64 `json:"listPrice,omitempty"`
	StandardCost  *float64 `json:"standardCost,omitempty"`
	Size          *string  `json:"size,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Subcategory   *string  `json:"subcategory,omitempty"`
	Description   *string  `json:"description,omitempty"`
}

// UserInfo is the catalog API's profile record for the signed-in account.
// PersonType "EM" marks an employee account, the server-side corroboration
// of the claims-derived employee flag.
type UserInfo struct {
	BusinessEntityID int     `json:"businessEntityID"`
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	PersonType       string  `json:"personType"`
	EmailAddress     *string `json:"emailAddress"`
}

// IsEmployee reports whether the account is an employee per the catalog API.
func (u UserInfo) IsEmployee() bool {
	return u.PersonType == "EM"
}

// ListQuery carries the listing filters the catalog API understands.
// Zero values mean "not filtered"; Page and PageSize are always sent.
type ListQuery struct {
	// Search matches against product name and ID (the API's queryNameId).
	Search string

	// PriceMin and PriceMax bound the listPrice range when non-nil.
	PriceMin *float64
	PriceMax *float64

	// SortNewest orders by sell start date, newest first.
	SortNewest bool

	// OnlyWithPhotos restricts the listing to products carrying a photo.
	OnlyWithPhotos bool

	Page     int
	PageSize int
}

// ProductPage is the catalog API's paginated listing envelope.
type ProductPage struct {
	PageNumber int            `json:"pageNumber"`
	PageSize   int            `json:"pageSize"`
	TotalRows  int            `json:"totalRows"`
	TotalPages int            `json:"totalPages"`
	Data       []ProductShort `json:"data"`
}
