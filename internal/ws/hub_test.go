package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"dogs_webapp/internal/domain"
	"dogs_webapp/internal/game"
	"dogs_webapp/internal/repository"
	"dogs_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	Action     string        `json:"action"`
	Dogs       []*domain.Dog `json:"dogs"`
	VirtualDog *domain.Dog   `json:"virtual_dog"`
	Error      string        `json:"error"`
	FailedPair *int          `json:"failed_pair"`
	Committed  []*domain.Dog `json:"committed"`
}

type wsFixture struct {
	store  *repository.MemoryStore
	svc    *service.GameService
	hub    *Hub
	server *httptest.Server
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	svc := service.NewGameService(store, nil, service.WithClock(game.NewFakeClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))))
	hub := NewHub(svc)
	svc.Subscribe(hub)

	r := gin.New()
	r.GET("/ws/dogs/:tg_id", HandleWS(hub, ""))
	server := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Shutdown()
		server.Close()
	})
	return &wsFixture{store: store, svc: svc, hub: hub, server: server}
}

func (f *wsFixture) register(t *testing.T, tgID, coins int64) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.GetOrCreatePlayer(ctx, tgID, "player", 0)
	require.NoError(t, err)
	require.NoError(t, f.store.UpdatePlayer(ctx, tgID, func(snap *domain.Snapshot) (*domain.Changes, error) {
		snap.Player.Coins = coins
		return &domain.Changes{Player: true}, nil
	}))
}

func (f *wsFixture) url(tgID int64) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/dogs/" + strconv.FormatInt(tgID, 10)
}

func (f *wsFixture) dial(t *testing.T, tgID int64) *websocket.Conn {
	t.Helper()
	before := f.hub.ConnectionCount(tgID)
	conn, _, err := websocket.DefaultDialer.Dial(f.url(tgID), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	first := readFrame(t, conn)
	require.Equal(t, ActionGetDogs, first.Action)

	require.Eventually(t, func() bool { return f.hub.ConnectionCount(tgID) == before+1 }, time.Second, 5*time.Millisecond)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var fr frame
	require.NoError(t, conn.ReadJSON(&fr))
	return fr
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func TestHandleWS_UnknownPlayer(t *testing.T) {
	f := newWSFixture(t)

	_, resp, err := websocket.DefaultDialer.Dial(f.url(404), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleWS_InvalidTgID(t *testing.T) {
	f := newWSFixture(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(f.server.URL, "http")+"/ws/dogs/abc", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClient_GetDogs(t *testing.T) {
	f := newWSFixture(t)
	f.register(t, 1, 0)
	conn := f.dial(t, 1)

	send(t, conn, ClientMessage{Action: ActionGetDogs})
	fr := readFrame(t, conn)

	assert.Equal(t, ActionGetDogs, fr.Action)
	assert.Empty(t, fr.Dogs)
	require.NotNil(t, fr.VirtualDog)
	assert.Equal(t, domain.DefaultDogPrice, fr.VirtualDog.Price)
}

func TestClient_CreateDogPushesField(t *testing.T) {
	f := newWSFixture(t)
	f.register(t, 1, 1000)
	conn := f.dial(t, 1)

	send(t, conn, ClientMessage{Action: ActionCreateDog})
	fr := readFrame(t, conn)

	assert.Equal(t, ActionGetDogs, fr.Action)
	require.Len(t, fr.Dogs, 1)
	assert.Equal(t, 1, fr.Dogs[0].Slot())
	assert.Equal(t, int64(107), fr.VirtualDog.Price)
}

func TestClient_CreateDogWithoutCoins(t *testing.T) {
	f := newWSFixture(t)
	f.register(t, 1, 10)
	conn := f.dial(t, 1)

	send(t, conn, ClientMessage{Action: ActionCreateDog})
	fr := readFrame(t, conn)

	assert.Equal(t, domain.ErrInsufficientFunds.Error(), fr.Error)
	assert.Empty(t, fr.Action)
}

func TestClient_UnknownAction(t *testing.T) {
	f := newWSFixture(t)
	f.register(t, 1, 0)
	conn := f.dial(t, 1)

	send(t, conn, ClientMessage{Action: "delete_dog"})
	fr := readFrame(t, conn)
	assert.Equal(t, "unknown action", fr.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	fr = readFrame(t, conn)
	assert.Equal(t, "invalid message", fr.Error)
}

func TestClient_PartialBreedReportsCommitted(t *testing.T) {
	f := newWSFixture(t)
	f.register(t, 1, 1000)
	conn := f.dial(t, 1)

	send(t, conn, ClientMessage{Action: ActionCreateDog})
	readFrame(t, conn)
	send(t, conn, ClientMessage{Action: ActionCreateDog})
	fr := readFrame(t, conn)
	require.Len(t, fr.Dogs, 2)
	a, b := fr.Dogs[0].ID, fr.Dogs[1].ID

	send(t, conn, ClientMessage{Action: ActionUpdateDogs, DogPairs: [][]int64{{a, b}, {a, 999}}})

	push := readFrame(t, conn)
	assert.Equal(t, ActionGetDogs, push.Action)
	require.Len(t, push.Dogs, 1)
	assert.Equal(t, 2, push.Dogs[0].Lvl)

	failure := readFrame(t, conn)
	assert.Equal(t, domain.ErrInvalidPair.Error(), failure.Error)
	require.NotNil(t, failure.FailedPair)
	assert.Equal(t, 1, *failure.FailedPair)
	require.Len(t, failure.Committed, 1)
	assert.Equal(t, a, failure.Committed[0].ID)
}

func TestHub_PushesChangesFromOtherCallers(t *testing.T) {
	f := newWSFixture(t)
	f.register(t, 1, 1000)
	first := f.dial(t, 1)
	second := f.dial(t, 1)
	require.Equal(t, 2, f.hub.ConnectionCount(1))

	// a purchase made outside the sockets, e.g. over HTTP
	_, err := f.svc.PurchaseDog(context.Background(), 1)
	require.NoError(t, err)

	for _, conn := range []*websocket.Conn{first, second} {
		fr := readFrame(t, conn)
		assert.Equal(t, ActionGetDogs, fr.Action)
		assert.Len(t, fr.Dogs, 1)
	}
}

func TestHub_UnregistersOnClose(t *testing.T) {
	f := newWSFixture(t)
	f.register(t, 1, 0)
	conn := f.dial(t, 1)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return f.hub.ConnectionCount(1) == 0 }, 2*time.Second, 10*time.Millisecond)
}
