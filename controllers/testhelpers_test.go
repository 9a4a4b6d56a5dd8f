package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kariqs/sweetshop-api/initializers"
	"github.com/Kariqs/sweetshop-api/models"
	"github.com/Kariqs/sweetshop-api/routes"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

type errorResponse struct {
	Error string `json:"error"`
}

type cartItemResponse struct {
	SweetID  uint          `json:"sweetId"`
	Quantity int           `json:"quantity"`
	Sweet    *models.Sweet `json:"sweet"`
}

type cartResponse struct {
	UserID uint               `json:"userId"`
	Items  []cartItemResponse `json:"items"`
}

// setupServer wires the real router against a throwaway sqlite database, the
// same way the app wires itself against MySQL.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", testJWTSecret)

	dsn := filepath.Join(t.TempDir(), "sweetshop.db") + "?_busy_timeout=10000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	// sqlite allows a single writer; serialize at the pool so concurrent
	// handlers queue instead of erroring.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.User{}, &models.Sweet{}, &models.Cart{}, &models.CartItem{}, &models.Order{})
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	initializers.DB = db

	server := gin.New()
	routes.DefaultRoutes(server)
	routes.AuthRoutes(server)
	routes.SweetRoutes(server)
	routes.CartRoutes(server)
	routes.OrderRoutes(server)
	return server
}

var userSeq int

// createTestUser inserts a user and mints a token for it, bypassing the auth
// endpoints so every test does not have to go through register.
func createTestUser(t *testing.T, role string) (models.User, string) {
	t.Helper()

	userSeq++
	user := models.User{
		Name:     fmt.Sprintf("%s %d", role, userSeq),
		Email:    fmt.Sprintf("%s%d@example.com", role, userSeq),
		Password: "not-a-real-hash",
		Role:     role,
	}
	if err := initializers.DB.Create(&user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": user.ID,
		"email":  user.Email,
		"role":   user.Role,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return user, signed
}

func seedSweet(t *testing.T, name, category string, price float64, quantity int) models.Sweet {
	t.Helper()

	sweet := models.Sweet{Name: name, Category: category, Price: price, Quantity: quantity}
	if err := initializers.DB.Create(&sweet).Error; err != nil {
		t.Fatalf("seed sweet %q: %v", name, err)
	}
	return sweet
}

func sweetQuantity(t *testing.T, sweetID uint) int {
	t.Helper()

	var sweet models.Sweet
	if err := initializers.DB.Unscoped().First(&sweet, sweetID).Error; err != nil {
		t.Fatalf("fetch sweet %d: %v", sweetID, err)
	}
	return sweet.Quantity
}

func performRequest(t *testing.T, server *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()

	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
}

func errorMessage(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	var body errorResponse
	decodeBody(t, recorder, &body)
	return body.Error
}
