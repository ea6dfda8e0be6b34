package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestJSONFormatterStampsAppAndFields(t *testing.T) {
	log, err := NewLogger(&Config{Level: InfoLevel, Format: "json", AppName: "GB Travel Agency", Version: "1.0.0"})
	require.NoError(t, err)

	var buf bytes.Buffer
	log.SetOutput(&buf)

	bookingID := primitive.NewObjectID()
	log.WithBookingID(bookingID).WithField("travelers", 2).Info("booking created")

	line := buf.String()
	assert.Equal(t, "booking created", gjson.Get(line, "message").String())
	assert.Equal(t, "info", gjson.Get(line, "level").String())
	assert.Equal(t, "GB Travel Agency", gjson.Get(line, "app").String())
	assert.Equal(t, bookingID.Hex(), gjson.Get(line, "booking_id").String())
	assert.Equal(t, int64(2), gjson.Get(line, "travelers").Int())
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	log, err := NewLogger(&Config{Level: DebugLevel, Format: "json"})
	require.NoError(t, err)

	var buf bytes.Buffer
	log.SetOutput(&buf)

	child := log.WithField("scope", "child")
	log.Info("parent")
	assert.False(t, gjson.Get(buf.String(), "scope").Exists())

	buf.Reset()
	child.Info("child")
	assert.Equal(t, "child", gjson.Get(buf.String(), "scope").String())
}

func TestWithContextPicksUpRequestID(t *testing.T) {
	log, err := NewLogger(&Config{Level: InfoLevel, Format: "json"})
	require.NoError(t, err)

	var buf bytes.Buffer
	log.SetOutput(&buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")
	log.WithContext(ctx).Info("handled")

	assert.Equal(t, "req-123", gjson.Get(buf.String(), "request_id").String())
}

func TestLevelFiltering(t *testing.T) {
	log, err := NewLogger(&Config{Level: WarnLevel, Format: "json"})
	require.NoError(t, err)

	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.Info("dropped")
	assert.Empty(t, buf.String())

	log.Warn("kept")
	assert.Equal(t, "kept", gjson.Get(buf.String(), "message").String())
}
