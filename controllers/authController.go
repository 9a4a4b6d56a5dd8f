package controllers

import (
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Kariqs/sweetshop-api/initializers"
	"github.com/Kariqs/sweetshop-api/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// Default cost for bcrypt password hashing
	bcryptCost = 10

	// Standard response messages
	msgInvalidInput          = "Invalid input"
	msgUserAlreadyExists     = "User already exists with this email"
	msgFailedToHashPassword  = "Failed to hash password"
	msgInvalidCredentials    = "Invalid email or password"
	msgFailedToGenerateToken = "Failed to generate token"
	msgInternalServerError   = "Internal server error"
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"error": message})
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func generateJWT(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": user.ID,
		"email":  user.Email,
		"role":   user.Role,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(time.Hour * 24 * 7).Unix(),
	})

	jwtSecret := os.Getenv("JWT_SECRET")
	return token.SignedString([]byte(jwtSecret))
}

// currentUserID pulls the authenticated user's id out of the claims stashed
// by the RequireAuth middleware.
func currentUserID(ctx *gin.Context) (uint, bool) {
	userClaims, exists := ctx.Get("user")
	if !exists {
		return 0, false
	}

	claims, ok := userClaims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	userID, ok := claims["userId"].(float64)
	if !ok {
		return 0, false
	}

	return uint(userID), true
}

func findUserByEmail(email string) (models.User, error) {
	var user models.User
	result := initializers.DB.Where("email = ?", email).First(&user)
	return user, result.Error
}

func publicUser(user models.User) gin.H {
	return gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	}
}

// Register handles user registration
func Register(ctx *gin.Context) {
	var registerData models.RegisterData
	if err := ctx.ShouldBindJSON(&registerData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if _, err := findUserByEmail(registerData.Email); err == nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUserAlreadyExists)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Println("Database error during user check:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	hashedPassword, err := hashPassword(registerData.Password)
	if err != nil {
		log.Println("Password hashing error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}

	user := models.User{
		Name:     registerData.Name,
		Email:    registerData.Email,
		Password: hashedPassword,
		Role:     "user",
	}

	if result := initializers.DB.Create(&user); result.Error != nil {
		log.Println("User creation error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	tokenString, err := generateJWT(user)
	if err != nil {
		log.Println("JWT generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"token": tokenString,
		"user":  publicUser(user),
	})
}

// Login handles user authentication
func Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	user, err := findUserByEmail(loginData.Email)
	if err != nil {
		sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	if err := comparePasswords(user.Password, loginData.Password); err != nil {
		sendErrorResponse(ctx, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	tokenString, err := generateJWT(user)
	if err != nil {
		log.Println("JWT generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"token": tokenString,
		"user":  publicUser(user),
	})
}
