package main_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	weblamp "gregoryjjb/weblamp"
)

func newTestConfig(t *testing.T, flags weblamp.Flags, env map[string]string, toml string) *weblamp.Config {
	t.Helper()

	fs := weblamp.NewWebLampMemFS()

	if toml != "" {
		require.NoError(t, afero.WriteFile(fs, "/weblamp.toml", []byte(toml), 0777))
		flags.ConfigPath = "/weblamp.toml"
	}

	c, err := weblamp.NewConfig(fs, flags, func(s string) string { return env[s] })
	require.NoError(t, err)

	return c
}

func newTestServer(t *testing.T) (*httptest.Server, *weblamp.Board, *fakeDriver) {
	t.Helper()

	config := newTestConfig(t, weblamp.Flags{}, nil, "")
	board, driver := newTestBoard(t)

	router := weblamp.NewRouter(config, weblamp.BuildInfo{Version: "0.0.0"}, board)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, board, driver
}

func get(t *testing.T, server *httptest.Server, path string) (int, string) {
	t.Helper()

	resp, err := http.Get(server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestStatusPage_ListsEveryPinInOrder(t *testing.T) {
	server, _, _ := newTestServer(t)

	status, body := get(t, server, "/")
	require.Equal(t, http.StatusOK, status)

	coffee := strings.Index(body, "coffee maker")
	lamp := strings.Index(body, "lamp")
	require.NotEqual(t, -1, coffee)
	require.NotEqual(t, -1, lamp)
	assert.Less(t, coffee, lamp, "pins should render in configuration order")

	assert.Equal(t, 2, strings.Count(body, `class="pin"`))
}

func TestStatusPage_ReflectsHardwareTruth(t *testing.T) {
	server, _, driver := newTestServer(t)

	// Flip the pin behind the server's back; the root route re-reads hardware
	driver.setLevel(24, true)

	status, body := get(t, server, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `class="high"`)
}

func TestActionRoute_On(t *testing.T) {
	server, _, driver := newTestServer(t)

	status, body := get(t, server, "/24/on")
	require.Equal(t, http.StatusOK, status)

	assert.Contains(t, body, "Turned coffee maker on.")
	assert.True(t, driver.level(24))
	assert.False(t, driver.level(25), "other pins must be untouched")
}

func TestActionRoute_Off(t *testing.T) {
	server, _, driver := newTestServer(t)
	driver.setLevel(25, true)

	status, body := get(t, server, "/25/off")
	require.Equal(t, http.StatusOK, status)

	assert.Contains(t, body, "Turned lamp off.")
	assert.False(t, driver.level(25))
}

func TestActionRoute_ToggleNegatesState(t *testing.T) {
	server, _, driver := newTestServer(t)

	_, body := get(t, server, "/25/toggle")
	assert.Contains(t, body, "Toggled lamp.")
	assert.True(t, driver.level(25))

	get(t, server, "/25/toggle")
	assert.False(t, driver.level(25))
}

func TestActionRoute_UnconfiguredPin(t *testing.T) {
	server, _, _ := newTestServer(t)

	status, _ := get(t, server, "/7/on")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestActionRoute_BadInput(t *testing.T) {
	server, _, _ := newTestServer(t)

	status, _ := get(t, server, "/banana/on")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = get(t, server, "/24/explode")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReadPin_Success(t *testing.T) {
	server, _, driver := newTestServer(t)
	driver.setLevel(18, true)

	status, body := get(t, server, "/readPin/18")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Pin 18 is high.")
}

func TestReadPin_AnyFailureGetsGenericMessage(t *testing.T) {
	server, _, driver := newTestServer(t)
	driver.failRead[18] = true

	// Hardware fault and junk input produce the same single message
	status, body := get(t, server, "/readPin/18")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "There was an error reading pin 18.")

	status, body = get(t, server, "/readPin/banana")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "There was an error reading pin banana.")
}

func TestAPI_Pins(t *testing.T) {
	server, _, driver := newTestServer(t)
	driver.setLevel(25, true)

	status, body := get(t, server, "/api/pins")
	require.Equal(t, http.StatusOK, status)

	var pins []weblamp.PinStatus
	require.NoError(t, json.Unmarshal([]byte(body), &pins))
	require.Len(t, pins, 2)
	assert.Equal(t, weblamp.PinStatus{Pin: 24, Name: "coffee maker"}, pins[0])
	assert.Equal(t, weblamp.PinStatus{Pin: 25, Name: "lamp", High: true}, pins[1])
}

func TestAPI_Action(t *testing.T) {
	server, _, driver := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/pins/24/on", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		weblamp.PinStatus
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.True(t, result.High)
	assert.Equal(t, "Turned coffee maker on.", result.Message)
	assert.True(t, driver.level(24))
}

func TestAPI_ActivityRecordsActions(t *testing.T) {
	server, _, _ := newTestServer(t)

	get(t, server, "/24/on")
	get(t, server, "/25/toggle")

	status, body := get(t, server, "/api/activity")
	require.Equal(t, http.StatusOK, status)

	var entries []weblamp.ActivityEntry
	require.NoError(t, json.Unmarshal([]byte(body), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Turned coffee maker on.", entries[0].Message)
	assert.Equal(t, "Toggled lamp.", entries[1].Message)
}

func TestWebsocket_StreamsStateChanges(t *testing.T) {
	server, _, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, server.URL+"/ws", nil)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "")

	// Give the handler a moment to subscribe before triggering a change
	time.Sleep(50 * time.Millisecond)

	get(t, server, "/24/on")

	_, data, err := c.Read(ctx)
	require.NoError(t, err)

	var pins []weblamp.PinStatus
	require.NoError(t, json.Unmarshal(data, &pins))
	require.Len(t, pins, 2)
	assert.True(t, pins[0].High)
}

func TestAPI_Version(t *testing.T) {
	server, _, _ := newTestServer(t)

	status, body := get(t, server, "/api/version")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "0.0.0")
}
