package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"propcatalog/internal/store"
)

type indexStep struct {
	Collection string
	Model      mongo.IndexModel
}

func named(name string) *options.IndexOptions {
	return options.Index().SetName(name)
}

var collections = []string{store.Owners, store.Properties, store.PropertyImages, store.PropertyTraces}

var indexSteps = []indexStep{
	{
		Collection: store.Properties,
		Model: mongo.IndexModel{
			Keys:    bson.D{{Key: "codeInternal", Value: 1}},
			Options: named("ux_properties_code_internal").SetUnique(true),
		},
	},
	{
		Collection: store.Properties,
		Model:      mongo.IndexModel{Keys: bson.D{{Key: "idOwner", Value: 1}}, Options: named("ix_properties_id_owner")},
	},
	{
		Collection: store.Properties,
		Model:      mongo.IndexModel{Keys: bson.D{{Key: "price", Value: 1}}, Options: named("ix_properties_price")},
	},
	{
		Collection: store.Properties,
		Model:      mongo.IndexModel{Keys: bson.D{{Key: "year", Value: 1}}, Options: named("ix_properties_year")},
	},
	{
		Collection: store.Properties,
		Model: mongo.IndexModel{
			Keys:    bson.D{{Key: "price", Value: 1}, {Key: "year", Value: 1}},
			Options: named("ix_properties_price_year"),
		},
	},
	{
		Collection: store.Properties,
		Model: mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "address", Value: "text"}},
			Options: named("tx_properties_name_address"),
		},
	},
	{
		Collection: store.PropertyImages,
		Model: mongo.IndexModel{
			Keys:    bson.D{{Key: "idProperty", Value: 1}, {Key: "enabled", Value: 1}},
			Options: named("ix_property_images_property_enabled"),
		},
	},
	{
		// At most one enabled image per property.
		Collection: store.PropertyImages,
		Model: mongo.IndexModel{
			Keys: bson.D{{Key: "idProperty", Value: 1}},
			Options: named("ux_property_images_enabled").
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "enabled", Value: true}}),
		},
	},
	{
		Collection: store.PropertyTraces,
		Model: mongo.IndexModel{
			Keys:    bson.D{{Key: "idProperty", Value: 1}, {Key: "dateSale", Value: -1}},
			Options: named("ix_property_traces_property_date"),
		},
	},
	{
		// Not unique: owner creation checks for duplicates before inserting.
		Collection: store.Owners,
		Model:      mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: named("ix_owners_name")},
	},
}

// EnsureIndexes creates any missing collection and index. Index creation is
// idempotent, so the steps run on every start.
func (a *Adapter) EnsureIndexes(ctx context.Context) error {
	start := time.Now()
	log := a.logger.With("component", "database", "database", a.database)
	log.Info("index provisioning starting")

	for _, name := range collections {
		if err := a.EnsureCollection(ctx, name); err != nil {
			log.Error("index provisioning failed", "collection", name, "error", err, "duration_ms", time.Since(start).Milliseconds())
			return fmt.Errorf("ensure collection %s: %w", name, err)
		}
	}

	for _, step := range indexSteps {
		stepStart := time.Now()
		name := *step.Model.Options.Name

		opCtx, cancel := a.withOperationTimeout(ctx)
		_, err := a.Collection(step.Collection).Indexes().CreateOne(opCtx, step.Model)
		cancel()
		if err != nil {
			log.Error("index provisioning failed",
				"collection", step.Collection,
				"index", name,
				"error", err,
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("create index %s on %s: %w", name, step.Collection, classify(ctx, "create index", err))
		}
		log.Debug("index ensured",
			"collection", step.Collection,
			"index", name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("index provisioning complete", "indexes", len(indexSteps), "duration_ms", time.Since(start).Milliseconds())
	return nil
}
