package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"euchre/internal/euchre"
	"euchre/internal/room"
	"euchre/internal/storage"
)

// --- Test environment ---

type testEnv struct {
	ts    *httptest.Server
	mgr   *room.Manager
	store *storage.Store
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	engine := euchre.NewEngine(euchre.WithRand(rand.New(rand.NewSource(3))))
	mgr := room.NewManager(engine, store)
	srv := New(mgr, store, zap.NewNop(), []string{"*"})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, mgr: mgr, store: store}
}

// --- REST API helpers ---

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// expect asserts the status code and decodes the body into out (if non-nil).
func expect(t *testing.T, resp *http.Response, status int, out any) {
	t.Helper()
	if resp.StatusCode != status {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d: %s",
			resp.Request.Method, resp.Request.URL.Path, status, resp.StatusCode, data)
	}
	if out == nil {
		return
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func createRoomViaAPI(t *testing.T, e *testEnv) string {
	t.Helper()
	var result createRoomResponse
	expect(t, e.do(t, http.MethodPost, "/api/rooms", nil), http.StatusCreated, &result)
	if result.RoomID == "" {
		t.Fatal("expected non-empty room id")
	}
	return result.RoomID
}

func joinViaAPI(t *testing.T, e *testEnv, roomID, nickname string) (string, *euchre.GameState) {
	t.Helper()
	var result joinResponse
	expect(t, e.do(t, http.MethodPost, "/api/rooms/"+roomID+"/join", joinRequest{Nickname: nickname}), http.StatusOK, &result)
	return result.PlayerID, result.RoomState
}

func addBotViaAPI(t *testing.T, e *testEnv, roomID, playerID string) *euchre.GameState {
	t.Helper()
	var view euchre.GameState
	expect(t, e.do(t, http.MethodPost, "/api/rooms/"+roomID+"/bots", playerRequest{PlayerID: playerID}), http.StatusOK, &view)
	return &view
}

// actionBody builds the wire form of a perform request.
func actionBody(playerID string, typ euchre.ActionType, payload string) string {
	if payload == "" {
		return fmt.Sprintf(`{"playerId":%q,"action":{"type":%q}}`, playerID, typ)
	}
	return fmt.Sprintf(`{"playerId":%q,"action":{"type":%q,"payload":%s}}`, playerID, typ, payload)
}

// sendAction posts a as playerID and returns the resulting view.
func sendAction(t *testing.T, e *testEnv, roomID, playerID string, a euchre.Action) *euchre.GameState {
	t.Helper()
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal action: %v", err)
	}
	body := fmt.Sprintf(`{"playerId":%q,"action":%s}`, playerID, data)
	var view euchre.GameState
	expect(t, e.do(t, http.MethodPost, "/api/rooms/"+roomID+"/actions", body), http.StatusOK, &view)
	return &view
}

func legalViaAPI(t *testing.T, e *testEnv, roomID, playerID string) []euchre.Action {
	t.Helper()
	var acts []euchre.Action
	expect(t, e.do(t, http.MethodGet, "/api/rooms/"+roomID+"/actions?playerId="+playerID, nil), http.StatusOK, &acts)
	return acts
}

// soloTable creates a room with one ready human and three bots.
func soloTable(t *testing.T, e *testEnv) (roomID, playerID string) {
	t.Helper()
	roomID = createRoomViaAPI(t, e)
	playerID, _ = joinViaAPI(t, e, roomID, "alice")
	for i := 0; i < 3; i++ {
		addBotViaAPI(t, e, roomID, playerID)
	}
	sendAction(t, e, roomID, playerID, euchre.Ready(playerID))
	return roomID, playerID
}
