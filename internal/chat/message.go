package chat

// Frame is the JSON envelope exchanged over a chat WebSocket. Clients send
// CONNECT (optionally carrying auth headers), SUBSCRIBE/UNSUBSCRIBE with a
// destination, and SEND with a destination plus payload. The server delivers
// MESSAGE frames.
type Frame struct {
	Command     string            `json:"command"`
	Destination string            `json:"destination,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Payload     *ChatMessage      `json:"payload,omitempty"`
}

// Frame commands.
const (
	CommandConnect     = "CONNECT"
	CommandSubscribe   = "SUBSCRIBE"
	CommandUnsubscribe = "UNSUBSCRIBE"
	CommandSend        = "SEND"
	CommandMessage     = "MESSAGE"
)

// SEND destinations.
const (
	DestSendMessage = "chat.sendMessage"
	DestAddUser     = "chat.addUser"
	DestJoinRide    = "chat.joinRide"
	DestPrivate     = "chat.private"
)

// ChatMessage is the chat event payload. Ids are strings on the wire
// (numeric user ids rendered as text), matching what the web client sends.
type ChatMessage struct {
	Type           string `json:"type"` // "CHAT", "JOIN", "LEAVE"
	Content        string `json:"content"`
	SenderID       string `json:"senderId"`
	SenderName     string `json:"senderName"`
	SenderPhotoURL string `json:"senderPhotoUrl"`
	ReceiverID     string `json:"receiverId"`
	RideID         *uint  `json:"rideId"`
	Timestamp      string `json:"timestamp"`
	SessionID      string `json:"sessionId"`
}
