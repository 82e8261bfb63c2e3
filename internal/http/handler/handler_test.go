package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"propcatalog/internal/http/middleware"
	"propcatalog/internal/logger"
	"propcatalog/internal/model"
	"propcatalog/internal/query"
	repomemory "propcatalog/internal/repository/memory"
	"propcatalog/internal/service"
	serviceMocks "propcatalog/internal/service/mocks"
	"propcatalog/internal/store"
	memstore "propcatalog/internal/store/memory"
	storeMocks "propcatalog/internal/store/mocks"
)

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db := new(storeMocks.MockStore)
	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		db.On("Ping", mock.Anything).Return(nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		db.On("Ping", mock.Anything).Return(store.ErrUnavailable).Once()

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	db.AssertExpectations(t)
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSearchProperties(t *testing.T) {
	page := &query.PagedResult[query.PropertyListItem]{
		Items:    []query.PropertyListItem{{IDProperty: "p1", Name: "Lake Cabin", Price: decimal.RequireFromString("250000.5")}},
		Page:     2,
		PageSize: 5,
		Total:    6,
	}

	tests := []struct {
		name       string
		target     string
		setupMock  func(m *serviceMocks.MockPropertyService)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "parses every parameter",
			target: "/properties?name=cabin&address=shore&priceMin=100.50&priceMax=300000&yearMin=1990&yearMax=2020&ownerId=o1&sortBy=price&sortDirection=desc&page=2&pageSize=5",
			setupMock: func(m *serviceMocks.MockPropertyService) {
				m.On("Search", mock.Anything, mock.MatchedBy(func(r query.SearchRequest) bool {
					return *r.Name == "cabin" && *r.Address == "shore" &&
						r.PriceMin.Equal(decimal.RequireFromString("100.5")) &&
						r.PriceMax.Equal(decimal.NewFromInt(300000)) &&
						*r.YearMin == 1990 && *r.YearMax == 2020 && *r.OwnerID == "o1" &&
						r.SortBy == "price" && r.SortDirection == "desc" &&
						*r.Page == 2 && *r.PageSize == 5
				})).Return(page, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "blank parameters are absent",
			target: "/properties?name=%20%20&priceMin=",
			setupMock: func(m *serviceMocks.MockPropertyService) {
				m.On("Search", mock.Anything, query.SearchRequest{}).Return(page, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unparsable price",
			target:     "/properties?priceMin=cheap",
			setupMock:  func(m *serviceMocks.MockPropertyService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PRICE_MIN",
		},
		{
			name:       "unparsable page size",
			target:     "/properties?pageSize=ten",
			setupMock:  func(m *serviceMocks.MockPropertyService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PAGE_SIZE",
		},
		{
			name:   "validation error",
			target: "/properties?yearMin=2020&yearMax=1990",
			setupMock: func(m *serviceMocks.MockPropertyService) {
				m.On("Search", mock.Anything, mock.Anything).
					Return(nil, &query.ValidationError{Field: "yearMin", Reason: "cannot be greater than yearMax"}).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_YEAR_MIN",
		},
		{
			name:   "pattern rejected by store",
			target: "/properties?name=x",
			setupMock: func(m *serviceMocks.MockPropertyService) {
				m.On("Search", mock.Anything, mock.Anything).Return(nil, query.ErrPattern).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PATTERN",
		},
		{
			name:   "cancelled",
			target: "/properties",
			setupMock: func(m *serviceMocks.MockPropertyService) {
				m.On("Search", mock.Anything, mock.Anything).Return(nil, store.Cancelled(context.Canceled)).Once()
			},
			wantStatus: StatusClientClosedRequest,
			wantCode:   "CANCELLED",
		},
		{
			name:   "deadline exceeded",
			target: "/properties",
			setupMock: func(m *serviceMocks.MockPropertyService) {
				m.On("Search", mock.Anything, mock.Anything).Return(nil, store.Cancelled(context.DeadlineExceeded)).Once()
			},
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "TIMEOUT",
		},
		{
			name:   "store unavailable",
			target: "/properties",
			setupMock: func(m *serviceMocks.MockPropertyService) {
				m.On("Search", mock.Anything, mock.Anything).
					Return(nil, store.Unavailable("aggregate", errors.New("server selection timeout at 10.0.0.7"))).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockPropertyService)
			tt.setupMock(mockSvc)
			app := fiber.New()
			app.Use(middleware.RequestID())
			app.Get("/properties", SearchProperties(mockSvc))

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantCode != "" {
				body := decodeError(t, resp)
				assert.Equal(t, tt.wantCode, body.Error.Code)
				assert.Equal(t, resp.Header.Get(middleware.RequestIDHeader), body.RequestID)
				assert.NotContains(t, body.Error.Message, "10.0.0.7")
			} else {
				var res query.PagedResult[query.PropertyListItem]
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
				assert.Equal(t, int64(6), res.Total)
				require.Len(t, res.Items, 1)
				assert.True(t, decimal.RequireFromString("250000.5").Equal(res.Items[0].Price))
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestGetProperty(t *testing.T) {
	mockSvc := new(serviceMocks.MockPropertyService)
	app := fiber.New()
	app.Get("/properties/:id", GetProperty(mockSvc))

	t.Run("found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "p1").Return(&query.PropertyDetail{IDProperty: "p1", SalesCount: 3}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/properties/p1", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var d query.PropertyDetail
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
		assert.Equal(t, "p1", d.IDProperty)
		assert.Equal(t, 3, d.SalesCount)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "nope").Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/properties/nope", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestCreateOwner(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(m *serviceMocks.MockOwnerService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			body: `{"name":"Ana","birthday":"1980-02-03T00:00:00Z"}`,
			setupMock: func(m *serviceMocks.MockOwnerService) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateOwnerInput) bool {
					return in.Name == "Ana" && in.Birthday != nil && in.Birthday.Year() == 1980
				})).Return(&model.Owner{IDOwner: "own-abc", Name: "Ana"}, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed body",
			body:       `{"name":`,
			setupMock:  func(m *serviceMocks.MockOwnerService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_BODY",
		},
		{
			name: "invalid owner",
			body: `{"name":" "}`,
			setupMock: func(m *serviceMocks.MockOwnerService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidOwner).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_OWNER",
		},
		{
			name: "conflict",
			body: `{"name":"Ana"}`,
			setupMock: func(m *serviceMocks.MockOwnerService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, service.ErrOwnerConflict).Once()
			},
			wantStatus: http.StatusConflict,
			wantCode:   "CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockOwnerService)
			tt.setupMock(mockSvc)
			app := fiber.New()
			app.Post("/owners", CreateOwner(mockSvc))

			req := httptest.NewRequest(http.MethodPost, "/owners", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, resp).Error.Code)
			} else {
				assert.Equal(t, "/owners/own-abc", resp.Header.Get("Location"))
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestInvalidCode(t *testing.T) {
	tests := map[string]string{
		"":         "INVALID_QUERY",
		"page":     "INVALID_PAGE",
		"pageSize": "INVALID_PAGE_SIZE",
		"priceMin": "INVALID_PRICE_MIN",
		"id":       "INVALID_ID",
	}
	for field, want := range tests {
		assert.Equal(t, want, invalidCode(field), field)
	}
}

func newCatalogApp(t *testing.T) (*fiber.App, *prometheus.Registry) {
	t.Helper()
	mem := memstore.New()
	mem.Insert(store.Owners, memstore.Document{"_id": "o1", "name": "Ana Ruiz"})
	mem.Insert(store.Properties,
		memstore.Document{"_id": "p1", "name": "Lake Cabin", "address": "1 Shore Rd", "price": decimal.RequireFromString("250000.50"), "codeInternal": "C-1", "year": 1999, "idOwner": "o1"},
		memstore.Document{"_id": "p2", "name": "City Loft (A+B)", "address": "9 Main St", "price": decimal.RequireFromString("410000"), "codeInternal": "C-2", "year": 2015, "idOwner": "o1"},
	)
	mem.Insert(store.PropertyTraces,
		memstore.Document{"_id": "t1", "idProperty": "p1", "dateSale": time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC), "name": "sale", "value": decimal.RequireFromString("200000"), "tax": decimal.RequireFromString("1000")},
	)

	reg := prometheus.NewRegistry()
	svc := Services{
		Properties: service.NewPropertyService(query.NewExecutor(mem), nil, service.NewMetrics(reg), logger.Nop()),
		Owners:     service.NewOwnerService(repomemory.NewOwnerMemory(mem), logger.Nop()),
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	RegisterRoutes(app, mem, svc, reg)
	return app, reg
}

func TestRoutes_EndToEnd(t *testing.T) {
	app, _ := newCatalogApp(t)

	t.Run("search with pattern characters is literal", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/properties?name=(a%2Bb)", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var res query.PagedResult[query.PropertyListItem]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, int64(1), res.Total)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "p2", res.Items[0].IDProperty)
		assert.Equal(t, "Ana Ruiz", *res.Items[0].OwnerName)
	})

	t.Run("page size out of range", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/properties?pageSize=101", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_PAGE_SIZE", decodeError(t, resp).Error.Code)
	})

	t.Run("price bound the store cannot hold exactly", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/properties?priceMin=0.12345678901234567890123456789012345678", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_PRICE_MIN", decodeError(t, resp).Error.Code)
	})

	t.Run("page whose offset overflows", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/properties?page=4611686018427387905&pageSize=4", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_PAGE", decodeError(t, resp).Error.Code)
	})

	t.Run("detail", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/properties/p1", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var d query.PropertyDetail
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&d))
		assert.Equal(t, "C-1", d.CodeInternal)
		assert.Equal(t, 1, d.SalesCount)
		require.NotNil(t, d.Owner)
		assert.Equal(t, "o1", d.Owner.IDOwner)
		assert.Empty(t, d.OtherImageURLs)
		assert.Nil(t, d.MainImageURL)
	})

	t.Run("create owner then conflict", func(t *testing.T) {
		body := `{"name":"  Luis Gomez ","birthday":"1975-07-09T00:00:00Z","address":" "}`

		req := httptest.NewRequest(http.MethodPost, "/owners", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var o model.Owner
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&o))
		assert.Equal(t, "Luis Gomez", o.Name)
		assert.Nil(t, o.Address)

		req = httptest.NewRequest(http.MethodPost, "/owners", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ = app.Test(req)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(b), "propcatalog_query_duration_seconds")
	})

	t.Run("health", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("unexpected")
	})
	app.Get("/bad", func(c *fiber.Ctx) error {
		return fiber.ErrBadRequest
	})
	app.Get("/late", func(c *fiber.Ctx) error {
		return store.Cancelled(context.DeadlineExceeded)
	})

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/boom", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/bad", http.StatusBadRequest, "BAD_REQUEST"},
		{"/late", http.StatusGatewayTimeout, "TIMEOUT"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, resp).Error.Code)
		})
	}
}
