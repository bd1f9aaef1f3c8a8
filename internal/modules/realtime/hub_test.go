package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shecare/internal/domain"
	"shecare/internal/events"
	"shecare/internal/middleware"
	"shecare/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Hub, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	j := jwt.New("ws-secret", time.Hour)
	hub := NewHub(nil, nil)
	t.Cleanup(hub.Close)

	r := gin.New()
	admin := r.Group("/api/v1/admin", middleware.JWTAuth(j), middleware.AdminOnly())
	NewHandler(hub, []string{"http://localhost:3000"}, nil).RegisterRoutes(admin)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub, j
}

func dial(t *testing.T, srv *httptest.Server, token string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/admin/bookings/ws?access_token=" + token
	return websocket.DefaultDialer.Dial(url, header)
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_DeliversOnlyOwnProviderEvents(t *testing.T) {
	srv, hub, j := newTestServer(t)

	tokA, _ := j.GenerateToken("admin@a.test", domain.RoleAdmin, "Clinic A")
	tokB, _ := j.GenerateToken("admin@b.test", domain.RoleAdmin, "Clinic B")

	connA, _, err := dial(t, srv, tokA, nil)
	require.NoError(t, err)
	defer connA.Close()
	connB, _, err := dial(t, srv, tokB, nil)
	require.NoError(t, err)
	defer connB.Close()

	assert.Equal(t, TypeConnected, readMessage(t, connA).Type)
	assert.Equal(t, TypeConnected, readMessage(t, connB).Type)

	hub.Broadcast(events.BookingCreated(&domain.Booking{ID: 1, ProviderName: "Clinic B", Status: domain.BookingPending}))
	hub.Broadcast(events.BookingCreated(&domain.Booking{ID: 2, ProviderName: "Clinic A", Status: domain.BookingPending}))

	msg := readMessage(t, connA)
	assert.Equal(t, events.TypeBookingCreated, msg.Type)
	require.NotNil(t, msg.Event)
	assert.Equal(t, int64(2), msg.Event.BookingID)

	msg = readMessage(t, connB)
	require.NotNil(t, msg.Event)
	assert.Equal(t, int64(1), msg.Event.BookingID)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	srv, hub, j := newTestServer(t)
	tok, _ := j.GenerateToken("admin@a.test", domain.RoleAdmin, "Clinic A")

	conn, _, err := dial(t, srv, tok, nil)
	require.NoError(t, err)
	readMessage(t, conn)
	assert.Equal(t, 1, hub.ConnectionCount("Clinic A"))

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ConnectionCount("Clinic A") == 0 }, 3*time.Second, 20*time.Millisecond)
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	srv, _, j := newTestServer(t)
	tok, _ := j.GenerateToken("admin@a.test", domain.RoleAdmin, "Clinic A")

	_, resp, err := dial(t, srv, tok, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandler_RequiresAdmin(t *testing.T) {
	srv, _, j := newTestServer(t)
	tok, _ := j.GenerateToken("a@x.com", domain.RolePatient, "")

	_, resp, err := dial(t, srv, tok, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHub_ClosedHubRefusesConnections(t *testing.T) {
	srv, hub, j := newTestServer(t)
	tok, _ := j.GenerateToken("admin@a.test", domain.RoleAdmin, "Clinic A")

	hub.Close()

	conn, _, err := dial(t, srv, tok, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ConnectionCount("Clinic A"))
}

func TestHub_CloseWhileClientsConnect(t *testing.T) {
	srv, hub, j := newTestServer(t)
	tok, _ := j.GenerateToken("admin@a.test", domain.RoleAdmin, "Clinic A")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			conn, _, err := dial(t, srv, tok, nil)
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	hub.Close()
	<-done

	assert.Equal(t, 0, hub.ConnectionCount("Clinic A"))
}
