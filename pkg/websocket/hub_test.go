package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gbtravel/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func testClient(hub *Hub, room string, buffer int) *Client {
	return &Client{hub: hub, send: make(chan []byte, buffer), room: room}
}

func TestHubPublishesToRoomOnly(t *testing.T) {
	hub, _ := startHub(t)
	a := testClient(hub, "trip:a", 4)
	b := testClient(hub, "trip:b", 4)
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))
	require.Eventually(t, func() bool { return hub.Subscribers("trip:a") == 1 }, time.Second, 5*time.Millisecond)

	delivered := hub.Publish("trip:a", "availability", map[string]int{"spotsRemaining": 3})
	assert.Equal(t, 1, delivered)

	var msg Message
	require.NoError(t, json.Unmarshal(<-a.send, &msg))
	assert.Equal(t, "availability", msg.Type)
	assert.Equal(t, "trip:a", msg.Room)
	assert.Empty(t, b.send)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub, _ := startHub(t)
	c := testClient(hub, "trip:a", 1)
	require.True(t, hub.Register(c))

	hub.Unregister(c)
	require.Eventually(t, func() bool { return hub.Subscribers("trip:a") == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.send
	assert.False(t, open)
}

func TestHubDropsSlowClients(t *testing.T) {
	hub, _ := startHub(t)
	c := testClient(hub, "trip:a", 1)
	require.True(t, hub.Register(c))
	require.Eventually(t, func() bool { return hub.Subscribers("trip:a") == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, hub.Publish("trip:a", "availability", nil))
	assert.Equal(t, 0, hub.Publish("trip:a", "availability", nil))

	assert.Eventually(t, func() bool { return hub.Subscribers("trip:a") == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubStopsOnCancel(t *testing.T) {
	hub, cancel := startHub(t)
	c := testClient(hub, "trip:a", 1)
	require.True(t, hub.Register(c))
	require.Eventually(t, func() bool { return hub.Subscribers("trip:a") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return hub.Subscribers("trip:a") == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, hub.Register(testClient(hub, "trip:a", 1)))
}

func TestHandlerServeGreetsAndStreams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub, _ := startHub(t)
	handler := NewHandler(hub, []string{"http://localhost:5173"})

	r := gin.New()
	r.GET("/live", func(c *gin.Context) {
		handler.Serve(c, "trip:a", "availability", map[string]int{"spotsRemaining": 5})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var greeting Message
	require.NoError(t, conn.ReadJSON(&greeting))
	assert.Equal(t, "availability", greeting.Type)

	require.Eventually(t, func() bool { return hub.Subscribers("trip:a") == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish("trip:a", "availability", map[string]int{"spotsRemaining": 4})

	var update struct {
		Data struct {
			SpotsRemaining int `json:"spotsRemaining"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, 4, update.Data.SpotsRemaining)
}

func TestHandlerRejectsUnknownOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub, _ := startHub(t)
	handler := NewHandler(hub, []string{"http://localhost:5173"})

	r := gin.New()
	r.GET("/live", func(c *gin.Context) { handler.Serve(c, "trip:a", "", nil) })
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}
