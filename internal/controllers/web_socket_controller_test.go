package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Shanmukha18/ViOLA/internal/broker"
	"github.com/Shanmukha18/ViOLA/internal/chat"
	"github.com/Shanmukha18/ViOLA/internal/middleware"
)

func handshakeContext(t *testing.T, target string, headers map[string]string) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.Request = req
	return c
}

func TestResolveHandshakeToken(t *testing.T) {
	// The query parameter wins over the Authorization header.
	c := handshakeContext(t, "/ws?token=from-query", map[string]string{
		"Authorization": "Bearer from-header",
	})
	if got := resolveHandshakeToken(c); got != "from-query" {
		t.Errorf("token = %q, want from-query", got)
	}

	c = handshakeContext(t, "/ws", map[string]string{
		"Authorization": "Bearer from-header",
	})
	if got := resolveHandshakeToken(c); got != "from-header" {
		t.Errorf("token = %q, want from-header", got)
	}

	// A header without the Bearer scheme is not a token.
	c = handshakeContext(t, "/ws", map[string]string{
		"Authorization": "Basic dXNlcjpwYXNz",
	})
	if got := resolveHandshakeToken(c); got != "" {
		t.Errorf("token = %q, want empty", got)
	}
}

func TestResolveSessionToken(t *testing.T) {
	attrs := map[string]string{sessionTokenAttr: "from-attr"}

	got := resolveSessionToken(map[string]string{
		"Authorization":   "Bearer from-auth",
		"X-Authorization": "Bearer from-x-auth",
	}, attrs)
	if got != "from-auth" {
		t.Errorf("token = %q, want from-auth", got)
	}

	got = resolveSessionToken(map[string]string{
		"X-Authorization": "Bearer from-x-auth",
	}, attrs)
	if got != "from-x-auth" {
		t.Errorf("token = %q, want from-x-auth", got)
	}

	if got = resolveSessionToken(map[string]string{}, attrs); got != "from-attr" {
		t.Errorf("token = %q, want from-attr", got)
	}

	if got = resolveSessionToken(map[string]string{}, map[string]string{}); got != "" {
		t.Errorf("token = %q, want empty", got)
	}
}

func TestAuthenticateSession(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@vit.ac.in", "Aditi")

	token, err := middleware.GenerateToken(user.Email, user.ID)
	if err != nil {
		t.Fatal(err)
	}

	principal, err := authenticateSession(db, token)
	if err != nil {
		t.Fatalf("authenticateSession: %v", err)
	}
	if principal.UserID != user.ID || principal.Email != user.Email {
		t.Errorf("principal = %+v", principal)
	}

	// A well-formed token for an email nobody registered is rejected.
	token, err = middleware.GenerateToken("ghost@vit.ac.in", 999)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := authenticateSession(db, token); err == nil {
		t.Error("expected error for unknown user")
	}

	if _, err := authenticateSession(db, "not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
}

// TestChatWebSocket runs a real client against the /ws endpoint: handshake
// with the token in the query string, CONNECT, subscribe to a ride topic,
// send a chat message, and read the fanned-out frame back.
func TestChatWebSocket(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter()
	owner := seedUser(t, db, "owner@vit.ac.in", "Owner")
	rider := seedUser(t, db, "rider@vitstudent.ac.in", "Rider")
	ride := seedRide(t, db, owner, "Main Gate", "Airport")

	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := middleware.GenerateToken(rider.Email, rider.ID)
	if err != nil {
		t.Fatal(err)
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// CONNECT carries no headers; the handshake attribute supplies the token.
	must := func(frame chat.Frame) {
		t.Helper()
		if err := conn.WriteJSON(frame); err != nil {
			t.Fatalf("write %s: %v", frame.Command, err)
		}
	}
	must(chat.Frame{Command: chat.CommandConnect})
	must(chat.Frame{Command: chat.CommandSubscribe, Destination: broker.RideTopic(ride.ID)})

	rideID := ride.ID
	must(chat.Frame{
		Command:     chat.CommandSend,
		Destination: "/app/" + chat.DestSendMessage,
		Payload: &chat.ChatMessage{
			Type:       "CHAT",
			Content:    "leaving in ten",
			SenderID:   fmt.Sprint(rider.ID),
			ReceiverID: fmt.Sprint(owner.ID),
			RideID:     &rideID,
		},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got chat.Frame
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Command != chat.CommandMessage {
		t.Errorf("command = %q, want %q", got.Command, chat.CommandMessage)
	}
	if got.Destination != broker.RideTopic(ride.ID) {
		t.Errorf("destination = %q, want %q", got.Destination, broker.RideTopic(ride.ID))
	}
	if got.Payload == nil || got.Payload.Content != "leaving in ten" {
		t.Errorf("payload = %+v", got.Payload)
	}
}
