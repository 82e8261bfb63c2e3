// Package mongodb runs typed pipelines against MongoDB. It renders the closed
// stage set into aggregation stages, decodes results into typed rows and
// classifies driver failures into the store sentinels.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"

	"propcatalog/internal/config"
	"propcatalog/internal/logger"
	"propcatalog/internal/store"
)

// invalidRegexCode is the server error code for a $regex it cannot compile.
const invalidRegexCode = 51091

// Adapter is a store.Store backed by one MongoDB database.
// It is safe for concurrent use.
type Adapter struct {
	client   *mongo.Client
	database string
	logger   logger.Logger
	timeout  time.Duration
	mu       sync.RWMutex
	closed   bool
}

var _ store.Store = (*Adapter)(nil)

// Connect dials MongoDB with the given codec registry and verifies the
// connection with a ping. Commands are traced through otelmongo.
func Connect(cfg config.MongoConfig, reg *bsoncodec.Registry, log logger.Logger) (*Adapter, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb database is required")
	}
	if reg == nil {
		return nil, fmt.Errorf("mongodb codec registry is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetRegistry(reg).
		SetMonitor(otelmongo.NewMonitor())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	log.Info("mongodb connection established", "database", cfg.Database)
	return New(client, cfg.Database, cfg.OperationTimeout, log), nil
}

// New wraps an already connected client. The client must have been built
// with NewRegistry for decimal fields to round-trip.
func New(client *mongo.Client, database string, timeout time.Duration, log logger.Logger) *Adapter {
	return &Adapter{client: client, database: database, timeout: timeout, logger: log}
}

func (a *Adapter) Database() *mongo.Database {
	return a.client.Database(a.database)
}

func (a *Adapter) Collection(name string) *mongo.Collection {
	return a.Database().Collection(name)
}

func (a *Adapter) Ping(ctx context.Context) error {
	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return store.Unavailable("ping", errors.New("adapter is closed"))
	}

	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	if err := a.client.Ping(opCtx, readpref.Primary()); err != nil {
		return classify(ctx, "ping", err)
	}
	return nil
}

// Close disconnects the client. Calling it twice is a no-op.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("close mongodb connection: %w", err)
	}
	return nil
}

func (a *Adapter) Count(ctx context.Context, collection string, m store.Match) (int64, error) {
	if err := store.ContextError(ctx); err != nil {
		return 0, err
	}
	filter, err := renderMatch(m.Predicates)
	if err != nil {
		return 0, err
	}

	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	n, err := a.Collection(collection).CountDocuments(opCtx, filter)
	if err != nil {
		return 0, classify(ctx, "count", err)
	}
	return n, nil
}

func (a *Adapter) Aggregate(ctx context.Context, collection string, p store.Pipeline) ([]store.Row, error) {
	if err := store.ContextError(ctx); err != nil {
		return nil, err
	}
	pipeline, err := renderPipeline(p)
	if err != nil {
		return nil, err
	}
	proj, _ := p.Last()

	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	cur, err := a.Collection(collection).Aggregate(opCtx, pipeline)
	if err != nil {
		return nil, classify(ctx, "aggregate", err)
	}
	defer cur.Close(context.Background())

	var rows []store.Row
	for cur.Next(opCtx) {
		row, err := decodeRow(cur.Current, proj)
		if err != nil {
			return nil, store.Unavailable("decode", err)
		}
		rows = append(rows, row)
	}
	if err := cur.Err(); err != nil {
		return nil, classify(ctx, "aggregate", err)
	}
	return rows, nil
}

// InsertOne stores doc in collection. A duplicate key surfaces as
// store.ErrDuplicate.
func (a *Adapter) InsertOne(ctx context.Context, collection string, doc any) error {
	if err := store.ContextError(ctx); err != nil {
		return err
	}
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	if _, err := a.Collection(collection).InsertOne(opCtx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
		}
		return classify(ctx, "insert", err)
	}
	return nil
}

// EnsureCollection creates name when it does not exist yet.
func (a *Adapter) EnsureCollection(ctx context.Context, name string) error {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	names, err := a.Database().ListCollectionNames(opCtx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return classify(ctx, "list collections", err)
	}
	if len(names) > 0 {
		return nil
	}
	if err := a.Database().CreateCollection(opCtx, name); err != nil {
		return classify(ctx, "create collection", err)
	}
	return nil
}

// withOperationTimeout bounds a single command unless the caller already set a deadline.
func (a *Adapter) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

// classify maps a driver error to a store sentinel. Only the caller's own
// context decides cancellation; an expired operation timeout is a store failure.
func classify(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return store.Cancelled(ctxErr)
	}
	var se mongo.ServerError
	if errors.As(err, &se) && (se.HasErrorCode(invalidRegexCode) || se.HasErrorMessage("Regular expression is invalid")) {
		return fmt.Errorf("%w: %w", store.ErrPattern, err)
	}
	return store.Unavailable(op, err)
}
