package service

import (
	"context"
	"errors"
	"time"

	"propcatalog/internal/logger"
	"propcatalog/internal/query"
	"propcatalog/internal/storage"
)

var ErrNotFound = errors.New("property not found")

// Querier runs compiled catalog queries. *query.Executor implements it.
type Querier interface {
	Search(ctx context.Context, req query.SearchRequest) (*query.PagedResult[query.PropertyListItem], error)
	GetDetail(ctx context.Context, id string) (*query.PropertyDetail, error)
}

// PropertyService defines the read use cases of the catalog.
type PropertyService interface {
	// Search returns one page of properties matching req.
	Search(ctx context.Context, req query.SearchRequest) (*query.PagedResult[query.PropertyListItem], error)

	// Get returns a single property by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*query.PropertyDetail, error)
}

type propertyService struct {
	q       Querier
	images  *storage.URLResolver
	metrics *Metrics
	log     logger.Logger
}

// NewPropertyService constructs a PropertyService. images and metrics may be nil.
func NewPropertyService(q Querier, images *storage.URLResolver, metrics *Metrics, log logger.Logger) PropertyService {
	return &propertyService{q: q, images: images, metrics: metrics, log: log}
}

func (s *propertyService) Search(ctx context.Context, req query.SearchRequest) (res *query.PagedResult[query.PropertyListItem], err error) {
	start := time.Now()
	defer func() { s.metrics.observe("search", start, err) }()

	log := s.log.WithContext(ctx)
	log.Info("search properties", searchFields(req)...)

	res, err = s.q.Search(ctx, req)
	if err != nil {
		s.logFailure(log, "search properties failed", err)
		return nil, err
	}
	for i := range res.Items {
		res.Items[i].MainImageURL = s.images.ResolvePtr(ctx, res.Items[i].MainImageURL)
	}
	return res, nil
}

func (s *propertyService) Get(ctx context.Context, id string) (d *query.PropertyDetail, err error) {
	start := time.Now()
	defer func() { s.metrics.observe("detail", start, err) }()

	log := s.log.WithContext(ctx)
	d, err = s.q.GetDetail(ctx, id)
	if err != nil {
		s.logFailure(log, "get property failed", err)
		return nil, err
	}
	if d == nil {
		log.Warn("property not found", "id", id)
		return nil, ErrNotFound
	}

	d.MainImageURL = s.images.ResolvePtr(ctx, d.MainImageURL)
	for i, ref := range d.OtherImageURLs {
		d.OtherImageURLs[i] = s.images.Resolve(ctx, ref)
	}
	return d, nil
}

func (s *propertyService) logFailure(log logger.Logger, msg string, err error) {
	switch outcome(err) {
	case "invalid":
		log.Info(msg, "error", err)
	case "cancelled":
		log.Warn(msg, "error", err)
	default:
		log.Error(msg, "error", err)
	}
}

func searchFields(req query.SearchRequest) []any {
	kv := []any{"sortBy", req.SortBy, "sortDirection", req.SortDirection}
	if req.Name != nil {
		kv = append(kv, "name", *req.Name)
	}
	if req.Address != nil {
		kv = append(kv, "address", *req.Address)
	}
	if req.PriceMin != nil {
		kv = append(kv, "priceMin", req.PriceMin.String())
	}
	if req.PriceMax != nil {
		kv = append(kv, "priceMax", req.PriceMax.String())
	}
	if req.YearMin != nil {
		kv = append(kv, "yearMin", *req.YearMin)
	}
	if req.YearMax != nil {
		kv = append(kv, "yearMax", *req.YearMax)
	}
	if req.OwnerID != nil {
		kv = append(kv, "ownerId", *req.OwnerID)
	}
	if req.Page != nil {
		kv = append(kv, "page", *req.Page)
	}
	if req.PageSize != nil {
		kv = append(kv, "pageSize", *req.PageSize)
	}
	return kv
}
