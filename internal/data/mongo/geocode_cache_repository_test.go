package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/garage-sale-marketplace/internal/domain/geo"
)

func TestGeocodeCacheRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "garage_sale." + GeocodeCacheCollectionName

	mt.Run("Hit", func(mt *mtest.T) {
		repo := NewGeocodeCacheRepository(testLogger(), mt.DB, 24*time.Hour)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "kew 3101"},
			{Key: "latitude", Value: -37.8},
			{Key: "longitude", Value: 145.03},
			{Key: "name", Value: "Kew, Victoria"},
			{Key: "createdAt", Value: time.Now().UTC()},
		}))

		entry, err := repo.Get(context.Background(), "kew 3101")
		require.NoError(mt, err)
		require.NotNil(mt, entry)
		assert.Equal(mt, -37.8, entry.Location.Latitude)
		assert.Equal(mt, "Kew, Victoria", entry.Location.Name)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		_, err = evt.Command.LookupErr("filter", "createdAt", "$gte")
		assert.NoError(mt, err, "expired entries must be filtered out")
	})

	mt.Run("Miss", func(mt *mtest.T) {
		repo := NewGeocodeCacheRepository(testLogger(), mt.DB, 0)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		entry, err := repo.Get(context.Background(), "nowhere")
		require.NoError(mt, err)
		assert.Nil(mt, entry)
	})

	mt.Run("Put", func(mt *mtest.T) {
		repo := NewGeocodeCacheRepository(testLogger(), mt.DB, time.Hour)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		entry := &geo.CacheEntry{Query: "kew 3101", Location: geo.Location{Latitude: 1, Longitude: 2, Name: "Kew"}}
		require.NoError(mt, repo.Put(context.Background(), entry))
		assert.False(mt, entry.CreatedAt.IsZero())
	})

	mt.Run("PutError", func(mt *mtest.T) {
		repo := NewGeocodeCacheRepository(testLogger(), mt.DB, time.Hour)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized"}))

		err := repo.Put(context.Background(), &geo.CacheEntry{Query: "x"})
		assert.Error(mt, err)
	})
}
