package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Shanmukha18/ViOLA/internal/config"
	"github.com/Shanmukha18/ViOLA/internal/middleware"
	"github.com/Shanmukha18/ViOLA/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB swaps the global DB handle for an in-memory sqlite database
// and wires a fresh broker/router pair against it.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.Ride{}, &models.Message{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	config.DB = db
	InitChat(db)
	return db
}

// newTestRouter registers the application's routes on a bare engine. Kept in
// sync with internal/routes by hand; importing that package here would be an
// import cycle.
func newTestRouter() *gin.Engine {
	r := gin.New()

	r.POST("/api/auth/google", AuthenticateWithGoogle)
	r.GET("/api/auth/me", middleware.RequireAuth(), GetCurrentUser)
	r.PUT("/api/auth/profile", middleware.RequireAuth(), UpdateProfile)

	r.GET("/api/rides", GetAllRides)
	r.GET("/api/rides/search", SearchRides)
	r.GET("/api/rides/my-rides", middleware.RequireAuth(), GetMyRides)
	r.GET("/api/rides/:rideId", GetRideByID)
	r.POST("/api/rides", middleware.RequireAuth(), CreateRide)
	r.PUT("/api/rides/:rideId", middleware.RequireAuth(), UpdateRide)
	r.DELETE("/api/rides/:rideId", middleware.RequireAuth(), DeactivateRide)
	r.DELETE("/api/rides/:rideId/permanent", middleware.RequireAuth(), DeleteRidePermanently)

	chat := r.Group("/api/chat", middleware.RequireAuth())
	chat.GET("/ride/:rideId", GetRideChatHistory)
	chat.GET("/conversations", GetConversations)
	chat.GET("/unread", GetUnreadMessages)
	chat.GET("/unread-count", GetUnreadCount)
	chat.POST("/mark-read/:rideId", MarkRideAsRead)

	r.GET("/ws", HandleChatWebSocket)

	return r
}

func seedUser(t *testing.T, db *gorm.DB, email, name string) models.User {
	t.Helper()
	user := models.User{Email: email, Name: name, GoogleID: "google-" + email, IsVerified: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return user
}

func seedRide(t *testing.T, db *gorm.DB, owner models.User, pickup, destination string) models.Ride {
	t.Helper()
	ride := models.Ride{
		Pickup:           pickup,
		Destination:      destination,
		RideDate:         "2026-09-01",
		RideTime:         "18:30",
		Price:            "120",
		GenderPreference: models.GenderAnyone,
		OwnerID:          owner.ID,
		IsActive:         true,
	}
	if err := db.Create(&ride).Error; err != nil {
		t.Fatalf("seeding ride: %v", err)
	}
	return ride
}

func seedMessage(t *testing.T, db *gorm.DB, content string, sender models.User, receiver *models.User, ride *models.Ride) models.Message {
	t.Helper()
	msg := models.Message{Content: content, SenderID: sender.ID}
	if receiver != nil {
		msg.ReceiverID = &receiver.ID
	}
	if ride != nil {
		msg.RideID = &ride.ID
	}
	if err := db.Create(&msg).Error; err != nil {
		t.Fatalf("seeding message: %v", err)
	}
	return msg
}

func bearerFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := middleware.GenerateToken(user.Email, user.ID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return "Bearer " + token
}

// doJSON performs a request against the engine, optionally authenticated,
// optionally carrying a JSON body.
func doJSON(t *testing.T, r *gin.Engine, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
}
