// Package api exposes the catalog endpoints on top of a Transport.
//
// Single-object endpoints return the normalized payload of the response
// envelope; listing endpoints return a lazy *listing.Listing.
package api

import (
	"context"
	"fmt"

	"torgmailru/client/internal/client"
	"torgmailru/client/internal/listing"
	"torgmailru/client/internal/normalize"
)

type API struct {
	transport client.Transport
}

func New(transport client.Transport) *API {
	return &API{transport: transport}
}

// Get fetches a single-object resource and returns its unwrapped payload
func (a *API) Get(ctx context.Context, resource string, params client.Params) (normalize.Node, error) {
	raw, err := a.transport.FetchJSON(ctx, resource, params)
	if err != nil {
		return normalize.Node{}, fmt.Errorf("get %s: %w", resource, err)
	}

	envelope, err := normalize.NormalizeJSON(raw)
	if err != nil {
		return normalize.Node{}, fmt.Errorf("get %s: %w", resource, err)
	}

	payload, err := normalize.UnwrapEnvelope(envelope)
	if err != nil {
		return normalize.Node{}, fmt.Errorf("get %s: %w", resource, err)
	}
	return payload, nil
}

// Listing starts a lazy listing of resource; nothing is fetched until the
// first item is requested.
func (a *API) Listing(resource string, params client.Params) *listing.Listing {
	return listing.New(a.transport, resource, params)
}
