package query

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"propcatalog/internal/store"
)

// SearchPlan is the compiled form of a SearchRequest.
type SearchPlan struct {
	Filter   store.Match
	Pipeline store.Pipeline
	Paging   Paging
}

// BuildSearchPlan validates req and compiles it into
// match, sort, skip, limit, enrichment and projection stages.
func BuildSearchPlan(req SearchRequest) (SearchPlan, error) {
	if err := req.Validate(); err != nil {
		return SearchPlan{}, err
	}
	paging, err := Paginate(req.Page, req.PageSize)
	if err != nil {
		return SearchPlan{}, err
	}

	filter := CompileFilter(req)

	p := store.Pipeline{
		filter,
		ResolveSort(req.SortBy, req.SortDirection),
		store.Skip{N: paging.Skip},
		store.Limit{N: int64(paging.PageSize)},
	}
	p = append(p, EnrichmentStages(ListMode)...)
	p = append(p, Projection(ListMode))

	return SearchPlan{Filter: filter, Pipeline: p, Paging: paging}, nil
}

// BuildDetailPipeline compiles a lookup of one property by id.
func BuildDetailPipeline(id string) store.Pipeline {
	p := store.Pipeline{
		store.Match{Predicates: []store.Predicate{store.Eq{Field: fieldID, Value: id}}},
		store.Limit{N: 1},
	}
	p = append(p, EnrichmentStages(DetailMode)...)
	return append(p, Projection(DetailMode))
}

// Executor runs compiled plans against a Store. It holds no per-query
// state and is safe for concurrent use.
type Executor struct {
	store  store.Store
	tracer trace.Tracer
}

// NewExecutor constructs an Executor over s.
func NewExecutor(s store.Store) *Executor {
	return &Executor{store: s, tracer: otel.Tracer("propcatalog/internal/query")}
}

// Search runs a paged property search. The total is counted over the
// filtered set before skip and limit apply.
func (e *Executor) Search(ctx context.Context, req SearchRequest) (*PagedResult[PropertyListItem], error) {
	ctx, span := e.tracer.Start(ctx, "query.Search")
	defer span.End()

	plan, err := BuildSearchPlan(req)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(
		attribute.Int("query.page", plan.Paging.Page),
		attribute.Int("query.page_size", plan.Paging.PageSize),
		attribute.Int("query.predicates", len(plan.Filter.Predicates)),
	)

	if err := store.ContextError(ctx); err != nil {
		return nil, fail(span, err)
	}

	total, err := e.store.Count(ctx, store.Properties, plan.Filter)
	if err != nil {
		return nil, fail(span, err)
	}

	rows, err := e.store.Aggregate(ctx, store.Properties, plan.Pipeline)
	if err != nil {
		return nil, fail(span, err)
	}
	if err := store.ContextError(ctx); err != nil {
		return nil, fail(span, err)
	}

	items := make([]PropertyListItem, 0, len(rows))
	for _, row := range rows {
		item, err := ProjectListItem(row)
		if err != nil {
			return nil, fail(span, err)
		}
		items = append(items, item)
	}

	span.SetAttributes(attribute.Int64("query.total", total), attribute.Int("query.returned", len(items)))
	return &PagedResult[PropertyListItem]{
		Items:    items,
		Page:     plan.Paging.Page,
		PageSize: plan.Paging.PageSize,
		Total:    total,
	}, nil
}

// GetDetail returns the property with id, or nil when none exists.
func (e *Executor) GetDetail(ctx context.Context, id string) (*PropertyDetail, error) {
	ctx, span := e.tracer.Start(ctx, "query.GetDetail")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fail(span, invalid("id", "is required"))
	}
	span.SetAttributes(attribute.String("property.id", id))

	if err := store.ContextError(ctx); err != nil {
		return nil, fail(span, err)
	}

	rows, err := e.store.Aggregate(ctx, store.Properties, BuildDetailPipeline(id))
	if err != nil {
		return nil, fail(span, err)
	}
	if err := store.ContextError(ctx); err != nil {
		return nil, fail(span, err)
	}
	if len(rows) == 0 {
		span.SetAttributes(attribute.Bool("property.found", false))
		return nil, nil
	}

	d, err := ProjectDetail(rows[0])
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Bool("property.found", true))
	return &d, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
