package api

import (
	"context"
	"fmt"

	"torgmailru/client/internal/client"
	"torgmailru/client/internal/listing"
	"torgmailru/client/internal/normalize"
)

// Most catalog resources are region dependent and expect a geo_id parameter.

// Categories lists top-level product categories
func (a *API) Categories(params client.Params) *listing.Listing {
	return a.Listing("category", params)
}

// CategoryChildren lists subcategories; params may filter by type
// (all | model | parameterized | general).
func (a *API) CategoryChildren(categoryID int64, params client.Params) *listing.Listing {
	return a.Listing(fmt.Sprintf("category/%d/children", categoryID), params)
}

func (a *API) Category(ctx context.Context, categoryID int64, params client.Params) (normalize.Node, error) {
	return a.Get(ctx, fmt.Sprintf("category/%d", categoryID), params)
}

// CategoryParameters returns the filter parameters of a category
// (parameter_set: popular | all).
func (a *API) CategoryParameters(ctx context.Context, categoryID int64, params client.Params) (normalize.Node, error) {
	return a.Get(ctx, fmt.Sprintf("category/%d/parameters", categoryID), params)
}

// CategoryModels lists models of a model category
func (a *API) CategoryModels(categoryID int64, params client.Params) *listing.Listing {
	return a.Listing(fmt.Sprintf("category/%d/models", categoryID), params)
}

// CategoryOffers lists offers of a regular (non-model) category
func (a *API) CategoryOffers(categoryID int64, params client.Params) *listing.Listing {
	return a.Listing(fmt.Sprintf("category/%d/offers", categoryID), params)
}

// CategoryHits lists the best-selling models of a model category
func (a *API) CategoryHits(categoryID int64, params client.Params) *listing.Listing {
	return a.Listing(fmt.Sprintf("category/%d/hits", categoryID), params)
}

func (a *API) CategoryNewModels(categoryID int64, params client.Params) *listing.Listing {
	return a.Listing(fmt.Sprintf("category/%d/newmodels", categoryID), params)
}

// CategoryFilter runs a parametric search. Category parameter ids are passed
// as params keys with a value, a "min,max" range or a comma separated id list.
func (a *API) CategoryFilter(categoryID int64, params client.Params) *listing.Listing {
	return a.Listing(fmt.Sprintf("category/%d/filter", categoryID), params)
}

func (a *API) Model(ctx context.Context, modelID int64, params client.Params) (normalize.Node, error) {
	return a.Get(ctx, fmt.Sprintf("model/%d", modelID), params)
}

func (a *API) ModelParameters(ctx context.Context, modelID int64, params client.Params) (normalize.Node, error) {
	return a.Get(ctx, fmt.Sprintf("model/%d/parameters", modelID), params)
}

// ModelOffers lists the offers of a model; latitude and longitude enable
// sorting by distance.
func (a *API) ModelOffers(modelID int64, params client.Params) *listing.Listing {
	return a.Listing(fmt.Sprintf("model/%d/offers", modelID), params)
}

func (a *API) ModelOutlets(modelID int64, params client.Params) *listing.Listing {
	return a.Listing(fmt.Sprintf("model/%d/outlets", modelID), params)
}

func (a *API) Offer(ctx context.Context, offerID string, params client.Params) (normalize.Node, error) {
	return a.Get(ctx, "offer/"+offerID, params)
}

// Search is the full-text search over models and offers (query is required)
func (a *API) Search(params client.Params) *listing.Listing {
	return a.Listing("search", params)
}

func (a *API) SellerReviews(sellerID int64, params client.Params) *listing.Listing {
	return a.Listing(fmt.Sprintf("seller/%d/reviews", sellerID), params)
}

func (a *API) Seller(ctx context.Context, sellerID int64) (normalize.Node, error) {
	return a.Get(ctx, fmt.Sprintf("seller/%d", sellerID), nil)
}

func (a *API) SellerOutlets(sellerID int64, params client.Params) *listing.Listing {
	return a.Listing(fmt.Sprintf("seller/%d/outlets", sellerID), params)
}

func (a *API) Vendors(params client.Params) *listing.Listing {
	return a.Listing("vendor", params)
}

func (a *API) Vendor(ctx context.Context, vendorID int64) (normalize.Node, error) {
	return a.Get(ctx, fmt.Sprintf("vendor/%d", vendorID), nil)
}

func (a *API) Regions(params client.Params) *listing.Listing {
	return a.Listing("regions", params)
}

func (a *API) RegionChildren(regionID int64, params client.Params) *listing.Listing {
	return a.Listing(fmt.Sprintf("region/%d/children", regionID), params)
}

func (a *API) Region(ctx context.Context, regionID int64) (normalize.Node, error) {
	return a.Get(ctx, fmt.Sprintf("region/%d", regionID), nil)
}

// RegionSuggest searches regions by name. Despite being a search it answers
// with a single envelope, not a listing.
func (a *API) RegionSuggest(ctx context.Context, params client.Params) (normalize.Node, error) {
	return a.Get(ctx, "region/suggest", params)
}
