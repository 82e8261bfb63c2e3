package mongodb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"

	"propcatalog/internal/config"
	"propcatalog/internal/logger"
	"propcatalog/internal/store"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().
		ClientType(mtest.Mock).
		ClientOptions(options.Client().SetRegistry(NewRegistry())))
}

func listProjection() store.Project {
	return store.Project{Fields: []store.Field{
		{Name: "idProperty", Expr: store.Path("_id"), Kind: store.KindString},
		{Name: "price", Expr: store.Path("price"), Kind: store.KindDecimal},
		{Name: "ownerName", Expr: store.Path("owner.name"), Kind: store.KindString},
		{Name: "lastSaleDate", Expr: store.Path("lastTrace.dateSale"), Kind: store.KindTime},
		{Name: "otherImageUrls", Expr: store.Pluck{Path: "otherImages", Field: "file"}, Kind: store.KindStringList},
		{Name: "salesCount", Expr: store.Count("traces"), Kind: store.KindInt},
	}}
}

func TestConnect_Validation(t *testing.T) {
	log := logger.Nop()
	reg := NewRegistry()

	_, err := Connect(config.MongoConfig{}, reg, log)
	assert.Error(t, err)

	_, err = Connect(config.MongoConfig{URI: "mongodb://localhost:27017"}, reg, log)
	assert.Error(t, err)

	_, err = Connect(config.MongoConfig{URI: "mongodb://localhost:27017", Database: "db"}, nil, log)
	assert.Error(t, err)
}

func TestAdapter_Aggregate_DecodesTypedRows(t *testing.T) {
	mt := newMock(t)
	mt.Run("rows", func(mt *mtest.T) {
		sold := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		price, err := toDecimal128(decimal.RequireFromString("310000.75"))
		require.NoError(mt, err)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.properties", mtest.FirstBatch,
			bson.D{
				{Key: "idProperty", Value: "p1"},
				{Key: "price", Value: price},
				{Key: "ownerName", Value: nil},
				{Key: "lastSaleDate", Value: sold},
				{Key: "otherImageUrls", Value: bson.A{"a.jpg", nil, "b.jpg"}},
				{Key: "salesCount", Value: int32(2)},
			},
		))

		a := New(mt.Client, "db", time.Second, logger.Nop())
		rows, err := a.Aggregate(context.Background(), store.Properties, store.Pipeline{listProjection()})
		require.NoError(mt, err)
		require.Len(mt, rows, 1)

		row := rows[0]
		assert.Equal(mt, "p1", row.Get("idProperty").Str)
		assert.Equal(mt, "310000.75", row.Get("price").Dec.String())
		assert.Equal(mt, store.Null, row.Get("ownerName").Presence)
		assert.True(mt, sold.Equal(row.Get("lastSaleDate").Time))
		assert.Equal(mt, []string{"a.jpg", "b.jpg"}, row.Get("otherImageUrls").List)
		assert.Equal(mt, int64(2), row.Get("salesCount").Int)
	})

	mt.Run("missing fields are absent", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.properties", mtest.FirstBatch,
			bson.D{{Key: "idProperty", Value: "p2"}},
		))

		a := New(mt.Client, "db", 0, logger.Nop())
		rows, err := a.Aggregate(context.Background(), store.Properties, store.Pipeline{listProjection()})
		require.NoError(mt, err)
		require.Len(mt, rows, 1)
		assert.Equal(mt, store.Absent, rows[0].Get("ownerName").Presence)
		assert.Equal(mt, store.Absent, rows[0].Get("price").Presence)
	})

	mt.Run("legacy string price", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.properties", mtest.FirstBatch,
			bson.D{{Key: "idProperty", Value: "p3"}, {Key: "price", Value: "199999.99"}},
		))

		a := New(mt.Client, "db", 0, logger.Nop())
		rows, err := a.Aggregate(context.Background(), store.Properties, store.Pipeline{listProjection()})
		require.NoError(mt, err)
		require.Len(mt, rows, 1)
		assert.Equal(mt, "199999.99", rows[0].Get("price").Dec.String())
	})

	mt.Run("non-numeric string price is a store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.properties", mtest.FirstBatch,
			bson.D{{Key: "idProperty", Value: "p4"}, {Key: "price", Value: "call us"}},
		))

		a := New(mt.Client, "db", 0, logger.Nop())
		_, err := a.Aggregate(context.Background(), store.Properties, store.Pipeline{listProjection()})
		assert.ErrorIs(mt, err, store.ErrUnavailable)
	})

	mt.Run("kind mismatch is a store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.properties", mtest.FirstBatch,
			bson.D{{Key: "idProperty", Value: int32(7)}},
		))

		a := New(mt.Client, "db", 0, logger.Nop())
		_, err := a.Aggregate(context.Background(), store.Properties, store.Pipeline{listProjection()})
		assert.ErrorIs(mt, err, store.ErrUnavailable)
	})
}

func TestAdapter_Aggregate_ClassifiesErrors(t *testing.T) {
	mt := newMock(t)

	mt.Run("invalid regex", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    invalidRegexCode,
			Name:    "Location51091",
			Message: "Regular expression is invalid: missing )",
		}))

		a := New(mt.Client, "db", 0, logger.Nop())
		_, err := a.Aggregate(context.Background(), store.Properties, store.Pipeline{listProjection()})
		assert.ErrorIs(mt, err, store.ErrPattern)
	})

	mt.Run("other server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "boom",
		}))

		a := New(mt.Client, "db", 0, logger.Nop())
		_, err := a.Aggregate(context.Background(), store.Properties, store.Pipeline{listProjection()})
		assert.ErrorIs(mt, err, store.ErrUnavailable)
		assert.NotErrorIs(mt, err, store.ErrPattern)
	})

	mt.Run("cancelled before dispatch", func(mt *mtest.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		a := New(mt.Client, "db", 0, logger.Nop())
		_, err := a.Aggregate(ctx, store.Properties, store.Pipeline{listProjection()})
		assert.ErrorIs(mt, err, store.ErrCancelled)
		assert.ErrorIs(mt, err, context.Canceled)
	})

	mt.Run("invalid pipeline", func(mt *mtest.T) {
		a := New(mt.Client, "db", 0, logger.Nop())
		_, err := a.Aggregate(context.Background(), store.Properties, store.Pipeline{store.Limit{N: 1}})
		assert.ErrorIs(mt, err, store.ErrInvalidPipeline)
	})
}

func TestAdapter_Count(t *testing.T) {
	mt := newMock(t)
	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.properties", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(42)}},
		))

		a := New(mt.Client, "db", 0, logger.Nop())
		n, err := a.Count(context.Background(), store.Properties, store.Match{Predicates: []store.Predicate{
			store.Gte{Field: "price", Value: decimal.RequireFromString("100")},
		}})
		require.NoError(mt, err)
		assert.Equal(mt, int64(42), n)
	})
}

func TestAdapter_InsertOne(t *testing.T) {
	mt := newMock(t)

	mt.Run("ok", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		a := New(mt.Client, "db", 0, logger.Nop())
		require.NoError(mt, a.InsertOne(context.Background(), store.Owners, bson.D{{Key: "_id", Value: "own-1"}}))
	})

	mt.Run("duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		a := New(mt.Client, "db", 0, logger.Nop())
		err := a.InsertOne(context.Background(), store.Owners, bson.D{{Key: "_id", Value: "own-1"}})
		assert.ErrorIs(mt, err, store.ErrDuplicate)
	})
}

func TestPing_WhenClosed(t *testing.T) {
	a := &Adapter{closed: true}
	assert.ErrorIs(t, a.Ping(context.Background()), store.ErrUnavailable)
}

func TestClose_IdempotentWhenAlreadyClosed(t *testing.T) {
	a := &Adapter{closed: true}
	assert.NoError(t, a.Close())
}

func TestWithOperationTimeout(t *testing.T) {
	a := &Adapter{timeout: 2 * time.Second}

	ctx, cancel := a.withOperationTimeout(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.LessOrEqual(t, time.Until(deadline), 2*time.Second)

	parent, parentCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer parentCancel()
	ctx2, cancel2 := a.withOperationTimeout(parent)
	defer cancel2()
	want, _ := parent.Deadline()
	got, _ := ctx2.Deadline()
	assert.True(t, got.Equal(want))
}

func TestProperty_ClassifyHonoursCallerContextOnly(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	properties := gopter.NewProperties(params)

	properties.Property("cancelled caller context classifies as cancelled", prop.ForAll(
		func(msg string) bool {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return errors.Is(classify(ctx, "op", errors.New(msg)), store.ErrCancelled)
		},
		gen.AlphaString(),
	))

	properties.Property("expired operation timeout with live caller is a store failure", prop.ForAll(
		func(msg string) bool {
			err := classify(context.Background(), "op", fmt.Errorf("%s: %w", msg, context.DeadlineExceeded))
			return errors.Is(err, store.ErrUnavailable) && !errors.Is(err, store.ErrCancelled)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
