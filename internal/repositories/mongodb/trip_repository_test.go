package mongodb

import (
	"context"
	"testing"
	"time"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func updateReply(n, modified int) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: modified})
}

// sentUpdate returns the single update statement of the last update command.
func sentUpdate(mt *mtest.T) bson.Raw {
	mt.Helper()
	evt := mt.GetStartedEvent()
	require.NotNil(mt, evt)
	require.Equal(mt, "update", evt.CommandName)
	stmt, err := evt.Command.LookupErr("updates", "0")
	require.NoError(mt, err)
	return stmt.Document()
}

func intAt(mt *mtest.T, doc bson.Raw, keys ...string) int64 {
	mt.Helper()
	value, err := doc.LookupErr(keys...)
	require.NoError(mt, err, "missing %v", keys)
	return value.AsInt64()
}

func TestTripRepository_ReserveSpots(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	departure := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)

	mt.Run("conditional increment", func(mt *mtest.T) {
		repo := &tripRepository{collection: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(updateReply(1, 1))

		reserved, err := repo.ReserveSpots(context.Background(), id, departure, 3)
		require.NoError(mt, err)
		assert.True(mt, reserved)

		stmt := sentUpdate(mt)
		assert.Equal(mt, id, stmt.Lookup("q", "_id").ObjectID())
		assert.Equal(mt, string(models.TripStatusActive), stmt.Lookup("q", "status").StringValue())
		assert.True(mt, stmt.Lookup("q", "available_dates", "$elemMatch", "departure_date").Time().Equal(departure))
		assert.Equal(mt, int64(3), intAt(mt, stmt, "q", "available_dates", "$elemMatch", "spots_available", "$gte"))
		assert.Equal(mt, "$max_capacity", stmt.Lookup("q", "$expr", "$lte", "1").StringValue())
		assert.Equal(mt, int64(3), intAt(mt, stmt, "q", "$expr", "$lte", "0", "$add", "1"))

		assert.Equal(mt, int64(3), intAt(mt, stmt, "u", "$inc", "current_bookings"))
		assert.Equal(mt, int64(-3), intAt(mt, stmt, "u", "$inc", "available_dates.$[d].spots_available"))
		assert.True(mt, stmt.Lookup("arrayFilters", "0", "d.departure_date").Time().Equal(departure))
	})

	mt.Run("no room", func(mt *mtest.T) {
		repo := &tripRepository{collection: mt.Coll}
		mt.AddMockResponses(updateReply(0, 0))

		reserved, err := repo.ReserveSpots(context.Background(), primitive.NewObjectID(), departure, 3)
		require.NoError(mt, err)
		assert.False(mt, reserved)
	})
}

func TestTripRepository_ReleaseSpots(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	departure := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)

	mt.Run("capped pipeline", func(mt *mtest.T) {
		repo := &tripRepository{collection: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(updateReply(1, 1))

		require.NoError(mt, repo.ReleaseSpots(context.Background(), id, departure, 2))

		stmt := sentUpdate(mt)
		assert.Equal(mt, id, stmt.Lookup("q", "_id").ObjectID())

		set, err := stmt.LookupErr("u", "0", "$set")
		require.NoError(mt, err)
		doc := set.Document()
		assert.Equal(mt, int64(0), intAt(mt, doc, "current_bookings", "$max", "0"))
		assert.Equal(mt, int64(2), intAt(mt, doc, "current_bookings", "$max", "1", "$subtract", "1"))

		in := doc.Lookup("available_dates", "$map", "in", "$cond")
		arr := in.Array()
		assert.True(mt, arr.Lookup("0", "$eq", "1").Time().Equal(departure))
		spots := arr.Lookup("1", "$mergeObjects", "1", "spots_available", "$min")
		assert.Equal(mt, "$$d.capacity", spots.Array().Lookup("1", "$ifNull", "0").StringValue())
		assert.Equal(mt, int64(2), intAt(mt, spots.Array(), "0", "$add", "1"))
	})

	mt.Run("unknown trip", func(mt *mtest.T) {
		repo := &tripRepository{collection: mt.Coll}
		mt.AddMockResponses(updateReply(0, 0))

		err := repo.ReleaseSpots(context.Background(), primitive.NewObjectID(), departure, 2)
		require.Error(mt, err)
		assert.True(mt, utils.IsKind(err, utils.KindNotFound))
	})
}

func TestTripRepository_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sets only given fields", func(mt *mtest.T) {
		repo := &tripRepository{collection: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Skardu Escape"},
			{Key: "current_bookings", Value: 4},
		}}))

		trip, err := repo.Update(context.Background(), id, bson.M{
			"name":             "Skardu Escape",
			"current_bookings": 0,
			"rating":           bson.M{"average": 0},
		}, nil)
		require.NoError(mt, err)
		assert.Equal(mt, 4, trip.CurrentBookings)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.Equal(mt, id, evt.Command.Lookup("query", "_id").ObjectID())
		_, err = evt.Command.LookupErr("query", "current_bookings")
		assert.Error(mt, err)

		set := evt.Command.Lookup("update", "$set").Document()
		assert.Equal(mt, "Skardu Escape", set.Lookup("name").StringValue())
		for _, key := range []string{"current_bookings", "rating", "_id"} {
			_, err := set.LookupErr(key)
			assert.Error(mt, err, key)
		}
	})

	mt.Run("guards on booking count", func(mt *mtest.T) {
		repo := &tripRepository{collection: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, "db.trips", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		expect := 4
		_, err := repo.Update(context.Background(), id, bson.M{"max_capacity": 6}, &expect)
		require.Error(mt, err)
		assert.True(mt, utils.IsKind(err, utils.KindConflict))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, int64(4), evt.Command.Lookup("query", "current_bookings").AsInt64())
	})
}

func TestTripRepository_AddImage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("primary demotes others", func(mt *mtest.T) {
		repo := &tripRepository{collection: mt.Coll}
		mt.AddMockResponses(updateReply(1, 1))

		image := models.Image{URL: "https://cdn.example/hunza.jpg", IsPrimary: true}
		require.NoError(mt, repo.AddImage(context.Background(), primitive.NewObjectID(), image))

		stmt := sentUpdate(mt)
		set := stmt.Lookup("u", "0", "$set").Document()
		_, err := set.LookupErr("current_bookings")
		assert.Error(mt, err)

		parts := set.Lookup("images", "$concatArrays").Array()
		assert.False(mt, parts.Lookup("0", "$map", "in", "$mergeObjects", "1", "is_primary").Boolean())
		assert.Equal(mt, image.URL, parts.Lookup("1", "0", "$literal", "url").StringValue())
		assert.Equal(mt, image.URL, set.Lookup("primary_image", "$literal").StringValue())
	})

	mt.Run("unknown trip", func(mt *mtest.T) {
		repo := &tripRepository{collection: mt.Coll}
		mt.AddMockResponses(updateReply(0, 0))

		err := repo.AddImage(context.Background(), primitive.NewObjectID(), models.Image{URL: "https://cdn.example/a.jpg"})
		require.Error(mt, err)
		assert.True(mt, utils.IsKind(err, utils.KindNotFound))
	})
}
