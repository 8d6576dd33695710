// Package listing walks paginated catalog resources as one lazy sequence.
package listing

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"

	"torgmailru/client/internal/apierrors"
	"torgmailru/client/internal/client"
	"torgmailru/client/internal/normalize"

	log "github.com/sirupsen/logrus"
)

// ErrDone is returned by Next once the listing is exhausted
var ErrDone = errors.New("listing exhausted")

const (
	PageParam = "page"

	fieldResultsTotal   = "results_total"
	fieldResultsPerPage = "results_per_page"
	fieldPage           = "page"
	fieldListing        = "listing"
)

// Fetcher is the transport capability a listing needs
type Fetcher interface {
	FetchJSON(ctx context.Context, resource string, params client.Params) ([]byte, error)
}

// PageInfo is the pagination metadata of the most recently fetched page
type PageInfo struct {
	ResultsTotal   int64
	ResultsPerPage int64
	Page           int64
	Items          int
}

// Listing presents the pages of one resource as a single ordered sequence of
// normalized items. Pages are fetched on demand, one at a time, when the
// buffered items of the previous page run out.
//
// A Listing is not safe for concurrent use.
type Listing struct {
	fetcher  Fetcher
	resource string
	params   client.Params
	page     int

	buffer   []normalize.Node
	more     bool
	err      error
	fetches  int
	lastPage PageInfo
}

// New creates a listing for resource. params is copied; its "page" entry,
// when present, selects the first page to fetch (default 1).
func New(fetcher Fetcher, resource string, params client.Params) *Listing {
	l := &Listing{
		fetcher:  fetcher,
		resource: resource,
		params:   params.Clone(),
		page:     1,
		more:     true,
	}

	if raw, ok := l.params[PageParam]; ok && raw != nil {
		page, err := parsePage(raw)
		if err != nil {
			l.err = apierrors.NewConfigError(fmt.Sprintf("invalid %q parameter for %s", PageParam, resource), err)
		} else {
			l.page = page
		}
	}
	l.params[PageParam] = l.page

	return l
}

func parsePage(v any) (int, error) {
	switch p := v.(type) {
	case int:
		return p, nil
	case int64:
		return int(p), nil
	case string:
		return strconv.Atoi(p)
	default:
		return strconv.Atoi(fmt.Sprint(p))
	}
}

func (l *Listing) Resource() string { return l.resource }

// NextPage is the page number the next fetch will request
func (l *Listing) NextPage() int { return l.page }

// Fetches counts the page requests issued so far
func (l *Listing) Fetches() int { return l.fetches }

func (l *Listing) LastPage() PageInfo { return l.lastPage }

// HasMore reports whether Next may still produce an item
func (l *Listing) HasMore() bool {
	return l.err == nil && (len(l.buffer) > 0 || l.more)
}

// Next returns the next item, fetching the following page when the buffer is
// empty. It returns ErrDone at the end of the sequence. A fetch or envelope
// error ends the sequence and is returned again by every later call.
func (l *Listing) Next(ctx context.Context) (normalize.Node, error) {
	if l.err != nil {
		return normalize.Node{}, l.err
	}

	if len(l.buffer) == 0 {
		if !l.more {
			return normalize.Node{}, ErrDone
		}
		if err := l.fetchNextPage(ctx); err != nil {
			l.err = err
			return normalize.Node{}, err
		}
		if len(l.buffer) == 0 {
			// the server claimed more results but sent none
			l.more = false
			return normalize.Node{}, ErrDone
		}
	}

	item := l.buffer[0]
	l.buffer[0] = normalize.Node{}
	l.buffer = l.buffer[1:]
	return item, nil
}

// All ranges over the remaining items. Iteration stops after the first error,
// which is yielded with a zero Node.
func (l *Listing) All(ctx context.Context) iter.Seq2[normalize.Node, error] {
	return func(yield func(normalize.Node, error) bool) {
		for {
			item, err := l.Next(ctx)
			if errors.Is(err, ErrDone) {
				return
			}
			if err != nil {
				yield(normalize.Node{}, err)
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Take returns up to n of the remaining items. Use it to bound listings whose
// server totals never run out.
func (l *Listing) Take(ctx context.Context, n int) ([]normalize.Node, error) {
	items := make([]normalize.Node, 0, n)
	for len(items) < n {
		item, err := l.Next(ctx)
		if errors.Is(err, ErrDone) {
			break
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (l *Listing) fetchNextPage(ctx context.Context) error {
	raw, err := l.fetcher.FetchJSON(ctx, l.resource, l.params.Clone())
	if err != nil {
		return fmt.Errorf("fetch %s page %d: %w", l.resource, l.page, err)
	}

	envelope, err := normalize.NormalizeJSON(raw)
	if err != nil {
		return fmt.Errorf("normalize %s page %d: %w", l.resource, l.page, err)
	}

	payload, err := normalize.UnwrapEnvelope(envelope)
	if err != nil {
		return fmt.Errorf("unwrap %s page %d: %w", l.resource, l.page, err)
	}

	info, items, err := readPage(payload)
	if err != nil {
		return fmt.Errorf("read %s page %d: %w", l.resource, l.page, err)
	}

	// Trusts the server totals; an under-reported total ends the listing early.
	l.more = info.ResultsTotal-info.ResultsPerPage*info.Page > 0
	l.buffer = items
	l.lastPage = info
	l.fetches++
	l.page++
	l.params[PageParam] = l.page

	log.Debugf("Fetched %s page %d: %d items of %d total, more=%t",
		l.resource, info.Page, len(items), info.ResultsTotal, l.more)
	return nil
}

func readPage(payload normalize.Node) (PageInfo, []normalize.Node, error) {
	if payload.Kind() != normalize.KindObject {
		return PageInfo{}, nil, apierrors.NewMalformedEnvelopeError(
			fmt.Sprintf("page payload is a JSON %s, not an object", payload.Kind()), nil)
	}

	var info PageInfo
	var err error
	if info.ResultsTotal, err = intField(payload, fieldResultsTotal); err != nil {
		return PageInfo{}, nil, err
	}
	if info.ResultsPerPage, err = intField(payload, fieldResultsPerPage); err != nil {
		return PageInfo{}, nil, err
	}
	if info.Page, err = intField(payload, fieldPage); err != nil {
		return PageInfo{}, nil, err
	}

	listing, ok := payload.Get(fieldListing)
	if !ok {
		return PageInfo{}, nil, apierrors.NewMalformedEnvelopeError(
			fmt.Sprintf("missing field %q", fieldListing), nil)
	}
	if listing.Kind() != normalize.KindArray {
		return PageInfo{}, nil, apierrors.NewMalformedEnvelopeError(
			fmt.Sprintf("field %q is a JSON %s, not an array", fieldListing, listing.Kind()), nil)
	}

	items := listing.Items()
	info.Items = len(items)
	return info, items, nil
}

func intField(payload normalize.Node, key string) (int64, error) {
	field, ok := payload.Get(key)
	if !ok {
		return 0, apierrors.NewMalformedEnvelopeError(fmt.Sprintf("missing field %q", key), nil)
	}
	v, ok := field.AsInt()
	if !ok {
		return 0, apierrors.NewMalformedEnvelopeError(
			fmt.Sprintf("field %q is a JSON %s, not an integer", key, field.Kind()), nil)
	}
	return v, nil
}
