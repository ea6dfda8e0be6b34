package mongodb

import (
	"context"
	"testing"

	"gbtravel/internal/models"
	"gbtravel/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func countReply(n int) bson.D {
	return mtest.CreateCursorResponse(0, "db.bookings", mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("skips cancelled bookings", func(mt *mtest.T) {
		repo := &bookingRepository{collection: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			countReply(1),
		)

		booking, ok, err := repo.UpdateStatus(context.Background(), id, models.BookingStatusConfirmed, "")
		require.NoError(mt, err)
		assert.False(mt, ok)
		assert.Nil(mt, booking)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.Equal(mt, id, evt.Command.Lookup("query", "_id").ObjectID())
		assert.Equal(mt, string(models.BookingStatusCancelled), evt.Command.Lookup("query", "booking_status", "$ne").StringValue())
	})

	mt.Run("unknown booking", func(mt *mtest.T) {
		repo := &bookingRepository{collection: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			countReply(0),
		)

		_, _, err := repo.UpdateStatus(context.Background(), primitive.NewObjectID(), models.BookingStatusConfirmed, "")
		require.Error(mt, err)
		assert.True(mt, utils.IsKind(err, utils.KindNotFound))
	})

	mt.Run("updates live bookings", func(mt *mtest.T) {
		repo := &bookingRepository{collection: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "booking_status", Value: "completed"},
		}}))

		booking, ok, err := repo.UpdateStatus(context.Background(), id, models.BookingStatusCompleted, "Trip finished")
		require.NoError(mt, err)
		assert.True(mt, ok)
		assert.Equal(mt, models.BookingStatusCompleted, booking.BookingStatus)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		set := evt.Command.Lookup("update", "$set").Document()
		assert.Equal(mt, "completed", set.Lookup("booking_status").StringValue())
		assert.Equal(mt, "Trip finished", set.Lookup("internal_notes").StringValue())
	})
}
