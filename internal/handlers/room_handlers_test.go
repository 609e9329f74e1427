package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"room-chat/internal/auth"
	"room-chat/internal/config"
	"room-chat/internal/database"
	"room-chat/internal/models"
	"room-chat/internal/services"
	ws "room-chat/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryPresence struct{}

func (memoryPresence) RecordPresence(ctx context.Context, ev *models.PresenceEvent) error {
	return nil
}

func (memoryPresence) RecentPresence(ctx context.Context, room string, limit int) ([]*models.PresenceEvent, error) {
	return []*models.PresenceEvent{{ID: 1, ConnID: "c1", Username: "alice", Room: room, Kind: models.PresenceJoined}}, nil
}

func newOperatorServer(t *testing.T, presence database.PresenceRepository) (*httptest.Server, *ws.Hub) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{
		Admin: config.AdminConfig{Username: "admin", PasswordHash: string(hash)},
		JWT:   config.JWTConfig{Secret: []byte("test-secret"), ExpiresIn: time.Hour},
	}

	hub := ws.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	policy := NewOriginPolicy([]string{"http://localhost:3000"})
	router := Router{
		WebSocket: NewWebSocketHandlers(hub, testWSConfig, policy),
		Auth:      NewAuthHandlers(auth.NewService(cfg)),
		Rooms:     NewRoomHandlers(services.NewRoomService(hub, presence)),
		Health:    Health(hub),
		Origins:   policy,
	}
	server := httptest.NewServer(router.Handler())
	t.Cleanup(func() {
		server.Close()
		cancel()
		<-hub.Done()
	})
	return server, hub
}

func issueToken(t *testing.T, server *httptest.Server, password string) (*http.Response, models.TokenResponse) {
	t.Helper()

	body, err := json.Marshal(models.TokenRequest{Username: "admin", Password: password})
	require.NoError(t, err)
	resp, err := http.Post(server.URL+"/admin/token", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var token models.TokenResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&token))
	}
	return resp, token
}

func getJSON(t *testing.T, url, token string, v interface{}) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestIssueToken(t *testing.T) {
	server, _ := newOperatorServer(t, nil)

	resp, _ := issueToken(t, server, "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, token := issueToken(t, server, "hunter22")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, token.Token)
	assert.True(t, token.ExpiresAt.After(time.Now()))
}

func TestOperatorRoutesRequireToken(t *testing.T) {
	server, _ := newOperatorServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, getJSON(t, server.URL+"/admin/rooms", "", nil))
	assert.Equal(t, http.StatusUnauthorized, getJSON(t, server.URL+"/admin/rooms", "garbage", nil))
	assert.Equal(t, http.StatusUnauthorized, getJSON(t, server.URL+"/admin/rooms/lobby", "", nil))
}

func TestOperatorRoomInspection(t *testing.T) {
	server, hub := newOperatorServer(t, nil)
	_, token := issueToken(t, server, "hunter22")

	sink := &nullSink{}
	require.NoError(t, hub.Connect("conn-a", sink))
	raw, _ := json.Marshal(models.JoinRoomRequest{Username: "alice", Room: "lobby"})
	ack, err := hub.Handle("conn-a", models.Request{Event: models.EventJoinRoom, Data: raw})
	require.NoError(t, err)
	require.True(t, ack.Success)

	var rooms []models.RoomSummary
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/admin/rooms", token.Token, &rooms))
	assert.Equal(t, []models.RoomSummary{{Room: "lobby", ParticipantCount: 1}}, rooms)

	var detail models.RoomDetail
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/admin/rooms/lobby", token.Token, &detail))
	assert.Equal(t, 1, detail.Count)
	assert.Equal(t, []models.Participant{{ID: "conn-a", Username: "alice"}}, detail.Participants)

	// the token may also travel as a query parameter
	assert.Equal(t, http.StatusOK, getJSON(t, server.URL+"/admin/rooms?token="+token.Token, "", nil))

	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, server.URL+"/admin/rooms/lobby/presence", token.Token, nil))
}

func TestOperatorPresence(t *testing.T) {
	server, _ := newOperatorServer(t, memoryPresence{})
	_, token := issueToken(t, server, "hunter22")

	var body struct {
		Room   string                  `json:"room"`
		Events []*models.PresenceEvent `json:"events"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, server.URL+"/admin/rooms/lobby/presence?limit=5", token.Token, &body))
	assert.Equal(t, "lobby", body.Room)
	require.Len(t, body.Events, 1)
	assert.Equal(t, models.PresenceJoined, body.Events[0].Kind)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, server.URL+"/admin/rooms/lobby/presence?limit=abc", token.Token, nil))
}

func TestCORSPreflight(t *testing.T) {
	server, _ := newOperatorServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/admin/rooms", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

type nullSink struct{}

func (nullSink) Deliver([]byte) bool { return true }
func (nullSink) Close()              {}
