package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"        //nolint:staticcheck
	"nhooyr.io/websocket/wsjson" //nolint:staticcheck

	"github.com/scrypster/memorykeeper/pkg/types"
	"github.com/scrypster/memorykeeper/web/handlers"
)

func TestCoachHub_ValidatesOrigin(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/ws/coach/u1", nil)
	req.Header.Set("Origin", "http://evil.com")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Forbidden")
}

func TestCoachHub_PublishTargetsUser(t *testing.T) {
	hub := handlers.NewCoachHub(nil, nil, nil)
	go hub.Run()
	defer hub.Stop()

	alice := &handlers.MockClient{UserID: "alice", SendChan: make(chan []byte, 1)}
	bob := &handlers.MockClient{UserID: "bob", SendChan: make(chan []byte, 1)}
	hub.Register(alice)
	hub.Register(bob)

	require.Eventually(t, func() bool {
		return hub.Connections("alice") == 1 && hub.Connections("bob") == 1
	}, time.Second, 5*time.Millisecond)

	hub.Publish("alice", handlers.ServerFrame{
		Type:    handlers.FrameProfile,
		Profile: &types.AgentProfile{UserID: "alice", MemoryStrength: 61},
	})

	select {
	case msg := <-alice.SendChan:
		assert.Contains(t, string(msg), `"type":"profile"`)
		assert.Contains(t, string(msg), `"memory_strength":61`)
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for published frame")
	}

	select {
	case msg := <-bob.SendChan:
		t.Fatalf("bob received a frame for alice: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCoachHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := handlers.NewCoachHub(nil, nil, nil)
	go hub.Run()
	defer hub.Stop()

	c := &handlers.MockClient{UserID: "u1", SendChan: make(chan []byte, 1)}
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	select {
	case _, ok := <-c.SendChan:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}
	assert.Equal(t, 0, hub.Connections("u1"))
}

func TestCoachSocket_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/coach/u1"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// telemetry -> decision
	require.NoError(t, wsjson.Write(ctx, conn, handlers.ClientFrame{
		Type: handlers.FrameTelemetry,
		Telemetry: &types.GameTelemetry{
			GameID:     "g1",
			Difficulty: types.DifficultyMedium,
			Mistakes:   4,
		},
	}))
	var frame handlers.ServerFrame
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, handlers.FrameDecision, frame.Type)
	require.NotNil(t, frame.Decision)
	assert.True(t, frame.AutoShow)

	// hint_request -> decision with a manual hint
	require.NoError(t, wsjson.Write(ctx, conn, handlers.ClientFrame{
		Type:      handlers.FrameHintRequest,
		Telemetry: &types.GameTelemetry{GameID: "g1"},
	}))
	frame = handlers.ServerFrame{}
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	require.NotNil(t, frame.Decision)
	require.NotNil(t, frame.Decision.Hint)
	assert.Equal(t, types.TriggerManualRequest, frame.Decision.Hint.TriggeredBy)

	// complete -> profile
	require.NoError(t, wsjson.Write(ctx, conn, handlers.ClientFrame{
		Type: handlers.FrameComplete,
		Record: &types.PerformanceRecord{
			GameID:                "g1",
			Difficulty:            types.DifficultyMedium,
			CompletionTimeSeconds: 45,
			Success:               true,
		},
	}))
	frame = handlers.ServerFrame{}
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, handlers.FrameProfile, frame.Type)
	require.NotNil(t, frame.Profile)
	assert.Equal(t, 53, frame.Profile.MemoryStrength)

	// unknown -> error
	require.NoError(t, wsjson.Write(ctx, conn, handlers.ClientFrame{Type: "dance"}))
	frame = handlers.ServerFrame{}
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, handlers.FrameError, frame.Type)
	assert.NotEmpty(t, frame.Error)
}

func TestCoachSocket_ReceivesRESTCompletions(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/coach/u1"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return env.hub.Connections("u1") == 1 }, time.Second, 5*time.Millisecond)

	w := env.do(t, http.MethodPost, "/api/profiles/u1/completions", types.PerformanceRecord{
		GameID:                "g1",
		Difficulty:            types.DifficultyHard,
		CompletionTimeSeconds: 120,
		Success:               false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var frame handlers.ServerFrame
	require.NoError(t, wsjson.Read(ctx, conn, &frame))
	assert.Equal(t, handlers.FrameProfile, frame.Type)
	require.NotNil(t, frame.Profile)
	assert.Len(t, frame.Profile.PerformanceHistory, 1)
}
