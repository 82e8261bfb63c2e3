package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"

	"propcatalog/internal/logger"
	"propcatalog/internal/model"
	"propcatalog/internal/store"
	mongostore "propcatalog/internal/store/mongodb"
)

func TestOwnerMongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().
		ClientType(mtest.Mock).
		ClientOptions(options.Client().SetRegistry(mongostore.NewRegistry())))

	bday := time.Date(1980, 2, 3, 0, 0, 0, 0, time.UTC)

	mt.Run("exists", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.owners", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(1)}},
		))
		repo := NewOwnerMongo(mongostore.New(mt.Client, "db", 0, logger.Nop()))

		ok, err := repo.Exists(context.Background(), "Ana", &bday)
		require.NoError(mt, err)
		assert.True(mt, ok)
	})

	mt.Run("does not exist", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.owners", mtest.FirstBatch))
		repo := NewOwnerMongo(mongostore.New(mt.Client, "db", 0, logger.Nop()))

		ok, err := repo.Exists(context.Background(), "Ana", nil)
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewOwnerMongo(mongostore.New(mt.Client, "db", 0, logger.Nop()))

		err := repo.Create(context.Background(), &model.Owner{IDOwner: "own-1", Name: "Ana", Birthday: &bday})
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "insert", started.CommandName)
		doc := started.Command.Lookup("documents", "0")
		assert.Equal(mt, "own-1", doc.Document().Lookup("_id").StringValue())
		assert.Equal(mt, "Ana", doc.Document().Lookup("name").StringValue())
		_, errAddress := doc.Document().LookupErr("address")
		assert.Error(mt, errAddress, "nil address is omitted")
	})

	mt.Run("store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad value"}))
		repo := NewOwnerMongo(mongostore.New(mt.Client, "db", 0, logger.Nop()))

		_, err := repo.Exists(context.Background(), "Ana", nil)
		assert.ErrorIs(mt, err, store.ErrUnavailable)
	})
}
