package keysetpager

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const _tracerName = "github.com/Alp4ka/keysetpager"

// Strategy names the pager that served a page.
type Strategy string

const (
	StrategyKeyset Strategy = "keyset"
	StrategyLegacy Strategy = "legacy"
)

// PageArgs is a Relay style page request. At most one of First and Last may
// be set; After and Before are tokens previously returned in a Page. With
// neither set, DefaultLimit rows are read forward; an explicit 0 yields an
// empty page.
//
// For proper code generation in API payloads, inline it:
//
//	type MyFilter struct {
//	    Paging PageArgs `json:",inline"`
//	}
type PageArgs struct {
	// First - page size when paging forward.
	First *int `json:"first,omitempty"`
	// Last - page size when paging backward.
	Last *int `json:"last,omitempty"`
	// After - return rows following this cursor.
	After string `json:"after,omitempty"`
	// Before - return rows preceding this cursor.
	Before string `json:"before,omitempty"`
}

// PageInfo carries the Relay page metadata.
type PageInfo struct {
	StartCursor     string `json:"startCursor"`
	EndCursor       string `json:"endCursor"`
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
}

// Page is one slice of a relation, in natural order.
type Page[T any] struct {
	// Items result elements.
	Items []T
	// Cursors holds the token of every item, index-aligned with Items.
	Cursors []string
	// HasMore reports that more rows exist in the paging direction.
	HasMore bool
	// AppliedLimit effective page size used for the query.
	AppliedLimit int
	PageInfo     PageInfo
	Strategy     Strategy
}

// Pager picks the keyset pager for orderings it can serve and falls back to
// the legacy single-column pager otherwise. It holds no per-request state and
// is safe for concurrent use.
type Pager[T any] struct {
	getters  Getters[T]
	maxLimit int
	legacy   bool
	logger   logrus.FieldLogger
}

func NewPager[T any](getters Getters[T]) *Pager[T] {
	return &Pager[T]{
		getters:  getters,
		maxLimit: MaxLimit,
		logger:   logrus.StandardLogger(),
	}
}

// WithMaxLimit caps the page size. Page sizes above it are clamped.
func (p *Pager[T]) WithMaxLimit(maxLimit int) *Pager[T] {
	if p == nil {
		p = NewPager[T](nil)
	}

	p.maxLimit = maxLimit

	return p
}

// WithLegacy forces the legacy single-column pager even for orderings the
// keyset pager supports.
func (p *Pager[T]) WithLegacy() *Pager[T] {
	if p == nil {
		p = NewPager[T](nil)
	}

	p.legacy = true

	return p
}

// WithLogger sets the logger receiving strategy selection entries.
func (p *Pager[T]) WithLogger(logger logrus.FieldLogger) *Pager[T] {
	if p == nil {
		p = NewPager[T](nil)
	}

	p.logger = logger

	return p
}

// Paginate returns the page of rel described by args.
func (p *Pager[T]) Paginate(ctx context.Context, rel Relation[T], args PageArgs) (page *Page[T], err error) {
	if p == nil {
		return nil, fmt.Errorf("pager is nil")
	}

	ctx, span := otel.Tracer(_tracerName).Start(ctx, "keysetpager.Paginate")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if page != nil {
			span.SetAttributes(
				attribute.String("keysetpager.strategy", string(page.Strategy)),
				attribute.Int("keysetpager.limit", page.AppliedLimit),
				attribute.Int("keysetpager.rows", len(page.Items)),
				attribute.Bool("keysetpager.has_more", page.HasMore),
			)
		}
		span.End()
	}()

	orderings := rel.Orderings()
	if err = orderings.validate(); err != nil {
		return nil, fmt.Errorf("cannot paginate: %w", err)
	}

	switch check := CheckOrdering(orderings, rel.Schema()).(type) {
	case SupportedOrdering:
		if p.legacy {
			p.logger.WithField("ordering", orderings.ToSQL()).Debug("legacy pagination forced")
			return p.paginateLegacy(ctx, rel, args)
		}

		return NewKeysetPager(p.getters).WithMaxLimit(p.maxLimit).Paginate(ctx, rel, check.List, args)
	case UnsupportedOrdering:
		p.logger.
			WithField("ordering", orderings.ToSQL()).
			WithError(check.Reason).
			Debug("ordering not supported by keyset pagination, using legacy pager")

		return p.paginateLegacy(ctx, rel, args)
	default:
		panic(fmt.Errorf("unexpected ordering check %T", check))
	}
}

func (p *Pager[T]) paginateLegacy(ctx context.Context, rel Relation[T], args PageArgs) (*Page[T], error) {
	return NewLegacyPager(p.getters).WithMaxLimit(p.maxLimit).Paginate(ctx, rel, args)
}

type (
	sliceFunc          func(cursor Cursor, edge Edge) (Predicate, error)
	encodeFunc[T any]  func(row T) (string, error)
	pageRequest[T any] struct {
		rel      Relation[T]
		args     PageArgs
		maxLimit int
		slice    sliceFunc
		encode   encodeFunc[T]
		strategy Strategy
	}
)

// fetchPage runs the shared page protocol: decode both bounds, conjoin their
// slice conditions, read one lookahead row past the page and encode cursors.
func fetchPage[T any](ctx context.Context, req pageRequest[T]) (*Page[T], error) {
	limit, edge, err := resolvePageSize(req.args, req.maxLimit)
	if err != nil {
		return nil, err
	}

	rel := req.rel
	bounds := []struct {
		token string
		edge  Edge
	}{
		{req.args.After, EdgeAfter},
		{req.args.Before, EdgeBefore},
	}
	for _, bound := range bounds {
		if bound.token == "" {
			continue
		}

		cursor, err := DecodeCursor(bound.token)
		if err != nil {
			return nil, err
		}

		cond, err := req.slice(cursor, bound.edge)
		if err != nil {
			return nil, err
		}

		rel = rel.Where(cond)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("keysetpager.edge", edge.String()))

	// Fetch one extra row to learn whether the page is the last one.
	var rows []T
	if edge == EdgeBefore {
		rows, err = rel.Tail(limit + 1).Find(ctx)
	} else {
		rows, err = rel.Head(limit + 1).Find(ctx)
	}
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = lo.Ternary(edge == EdgeBefore, rows[len(rows)-limit:], rows[:limit])
	}

	cursors := make([]string, 0, len(rows))
	for _, row := range rows {
		token, err := req.encode(row)
		if err != nil {
			return nil, fmt.Errorf("cannot build page cursor: %w", err)
		}
		cursors = append(cursors, token)
	}

	page := &Page[T]{
		Items:        rows,
		Cursors:      cursors,
		HasMore:      hasMore,
		AppliedLimit: limit,
		Strategy:     req.strategy,
		PageInfo: PageInfo{
			StartCursor: lo.FirstOrEmpty(cursors),
			EndCursor:   lo.LastOrEmpty(cursors),
		},
	}

	if edge == EdgeBefore {
		page.PageInfo.HasPreviousPage = hasMore || req.args.After != ""
		page.PageInfo.HasNextPage = req.args.Before != ""
	} else {
		page.PageInfo.HasNextPage = hasMore || req.args.Before != ""
		page.PageInfo.HasPreviousPage = req.args.After != ""
	}

	return page, nil
}
