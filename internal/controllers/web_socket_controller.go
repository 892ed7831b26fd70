package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Shanmukha18/ViOLA/internal/broker"
	"github.com/Shanmukha18/ViOLA/internal/chat"
	"github.com/Shanmukha18/ViOLA/internal/config"
	"github.com/Shanmukha18/ViOLA/internal/middleware"
	"github.com/Shanmukha18/ViOLA/internal/models"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

const sessionTokenAttr = "JWT_TOKEN"

var (
	chatHub    *broker.Broker
	chatRouter *chat.Router
)

// InitChat wires the broker and message router. Must run after InitDB and
// before the chat WebSocket route is served.
func InitChat(db *gorm.DB) {
	chatHub = broker.New()
	chatRouter = chat.NewRouter(db, chatHub)
}

// chatSession is one persistent connection. The principal stays nil until a
// CONNECT frame authenticates; handlers receive it explicitly and decide for
// themselves whether anonymity is acceptable.
type chatSession struct {
	conn       *websocket.Conn
	attributes map[string]string
	principal  *middleware.Principal
}

// HandleChatWebSocket upgrades the connection and runs the frame loop. A
// missing or bad token never blocks the handshake; enforcement is deferred
// to the CONNECT command and to per-user addressing.
func HandleChatWebSocket(c *gin.Context) {
	token := resolveHandshakeToken(c)
	if token == "" {
		logrus.Warn("No JWT token found in handshake request.")
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection.")
		return
	}
	defer conn.Close()
	defer chatHub.Drop(conn)

	session := &chatSession{
		conn:       conn,
		attributes: make(map[string]string),
	}
	if token != "" {
		session.attributes[sessionTokenAttr] = token
		logrus.Info("JWT token stored in session attributes at handshake.")
	}

	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Chat WebSocket connection established.")

	for {
		var frame chat.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Info("Chat WebSocket closed normally or abnormally.")
			} else {
				logrus.WithError(err).Error("Error reading WebSocket frame.")
			}
			break
		}
		session.handleFrame(frame)
	}

	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("Chat WebSocket connection closed.")
}

func (s *chatSession) handleFrame(frame chat.Frame) {
	switch frame.Command {
	case chat.CommandConnect:
		s.handleConnect(frame)
	case chat.CommandSubscribe:
		s.handleSubscribe(frame.Destination)
	case chat.CommandUnsubscribe:
		s.handleUnsubscribe(frame.Destination)
	case chat.CommandSend:
		s.handleSend(frame)
	default:
		logrus.WithField("command", frame.Command).Warn("Unknown frame command, ignoring.")
	}
}

// handleConnect authenticates the session from the first token it can find.
// Failures are logged and the session continues unauthenticated; privileged
// operations simply stay unavailable to it.
func (s *chatSession) handleConnect(frame chat.Frame) {
	token := resolveSessionToken(frame.Headers, s.attributes)
	if token == "" {
		logrus.Warn("No JWT token found in any location.")
		return
	}

	principal, err := authenticateSession(config.DB, token)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket authentication failed.")
		return
	}

	s.principal = principal
	logrus.WithFields(logrus.Fields{
		"email":   principal.Email,
		"user_id": principal.UserID,
	}).Info("WebSocket user authenticated.")
}

func (s *chatSession) handleSubscribe(destination string) {
	switch {
	case destination == broker.QueuePrivate:
		// The private queue is addressed by user id, so an anonymous
		// session has nothing to subscribe to.
		if s.principal == nil {
			logrus.Warn("Anonymous session tried to subscribe to private queue, ignoring.")
			return
		}
		chatHub.SubscribeQueue(s.principal.UserID, s.conn)
	case strings.HasPrefix(destination, "/topic/"):
		chatHub.Subscribe(destination, s.conn)
	default:
		logrus.WithField("destination", destination).Warn("Subscribe to unknown destination, ignoring.")
	}
}

func (s *chatSession) handleUnsubscribe(destination string) {
	switch {
	case destination == broker.QueuePrivate:
		if s.principal == nil {
			return
		}
		chatHub.UnsubscribeQueue(s.principal.UserID, s.conn)
	case strings.HasPrefix(destination, "/topic/"):
		chatHub.Unsubscribe(destination, s.conn)
	}
}

func (s *chatSession) handleSend(frame chat.Frame) {
	if frame.Payload == nil {
		logrus.Warn("SEND frame without payload, ignoring.")
		return
	}

	switch strings.TrimPrefix(frame.Destination, "/app/") {
	case chat.DestSendMessage:
		if _, err := chatRouter.SendMessage(frame.Payload); err != nil {
			logrus.WithError(err).Error("sendMessage failed.")
		}
	case chat.DestAddUser:
		s.attributes["username"] = frame.Payload.SenderID
		if frame.Payload.RideID != nil {
			s.attributes["rideId"] = fmt.Sprint(*frame.Payload.RideID)
		}
		chatRouter.AddUser(frame.Payload)
	case chat.DestJoinRide:
		chatRouter.JoinRide(s.principal, frame.Payload)
	case chat.DestPrivate:
		chatRouter.Private(frame.Payload)
	default:
		logrus.WithField("destination", frame.Destination).Warn("SEND to unknown destination, ignoring.")
	}
}

// resolveHandshakeToken inspects, in order, the token query parameter and
// the Authorization header. First non-empty match wins.
func resolveHandshakeToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// resolveSessionToken locates a token for the CONNECT command: the native
// Authorization header, then X-Authorization for transports that cannot set
// standard headers, then the attribute stored at handshake time.
func resolveSessionToken(headers, attributes map[string]string) string {
	if auth := headers["Authorization"]; strings.HasPrefix(auth, "Bearer ") {
		logrus.Info("Found JWT token in Authorization header.")
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if auth := headers["X-Authorization"]; strings.HasPrefix(auth, "Bearer ") {
		logrus.Info("Found JWT token in X-Authorization header.")
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if token := attributes[sessionTokenAttr]; token != "" {
		logrus.Info("Found JWT token in session attributes.")
		return token
	}
	return ""
}

// authenticateSession re-derives identity from a raw token: decode the
// claims, look the user up by the token's subject, and validate the token
// against the looked-up email. The principal is keyed by numeric user id so
// private-queue addressing stays id-based.
func authenticateSession(db *gorm.DB, raw string) (*middleware.Principal, error) {
	claims, err := middleware.ParseClaims(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}

	var user models.User
	if err := db.Where("email = ?", claims.Subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s not found", claims.Subject)
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !middleware.ValidateToken(raw, user.Email) {
		return nil, fmt.Errorf("invalid token for user %s", user.Email)
	}

	return &middleware.Principal{UserID: user.ID, Email: user.Email}, nil
}
