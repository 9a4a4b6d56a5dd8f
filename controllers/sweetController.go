package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/Kariqs/sweetshop-api/initializers"
	"github.com/Kariqs/sweetshop-api/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSweetNotFound     = errors.New("sweet not found")
	ErrInsufficientStock = errors.New("insufficient quantity in stock")
)

type quantityInput struct {
	Quantity int `json:"quantity"`
}

// adjustSweetQuantity is the single choke point for stock mutation. The delta
// is applied as one conditional UPDATE so that two concurrent purchases can
// never both succeed and drive the quantity negative. A zero RowsAffected is
// disambiguated with a follow-up read: either the sweet is gone, or there was
// not enough stock (the returned sweet then carries the current quantity).
func adjustSweetQuantity(db *gorm.DB, sweetID uint, delta int) (models.Sweet, error) {
	var sweet models.Sweet

	query := db.Model(&models.Sweet{}).Where("id = ?", sweetID)
	if delta < 0 {
		query = query.Where("quantity >= ?", -delta)
	}

	result := query.Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return sweet, result.Error
	}

	if result.RowsAffected == 0 {
		if err := db.First(&sweet, sweetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return sweet, ErrSweetNotFound
			}
			return sweet, err
		}
		return sweet, ErrInsufficientStock
	}

	if err := db.First(&sweet, sweetID).Error; err != nil {
		return sweet, err
	}
	return sweet, nil
}

// CreateSweet adds a new sweet to the catalog.
func CreateSweet(ctx *gin.Context) {
	var sweet models.Sweet
	if err := ctx.ShouldBindJSON(&sweet); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if err := models.ValidateSweet(sweet); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if err := initializers.DB.Create(&sweet).Error; err != nil {
		log.Println("Sweet creation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Server error while creating sweet")
		return
	}

	ctx.JSON(http.StatusCreated, sweet)
}

// GetSweets returns the full catalog, most recently created first.
func GetSweets(ctx *gin.Context) {
	var sweets []models.Sweet
	if err := initializers.DB.Order("created_at DESC").Find(&sweets).Error; err != nil {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Server error while fetching sweets")
		return
	}

	ctx.JSON(http.StatusOK, sweets)
}

// SearchSweets filters the catalog by name, category and price range. All
// provided filters must match; absent ones impose no constraint.
func SearchSweets(ctx *gin.Context) {
	query := initializers.DB.Model(&models.Sweet{})

	if name := ctx.Query("name"); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	if category := ctx.Query("category"); category != "" {
		query = query.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(category)+"%")
	}

	if minPrice := ctx.Query("minPrice"); minPrice != "" {
		value, err := strconv.ParseFloat(minPrice, 64)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "minPrice must be a number")
			return
		}
		query = query.Where("price >= ?", value)
	}

	if maxPrice := ctx.Query("maxPrice"); maxPrice != "" {
		value, err := strconv.ParseFloat(maxPrice, 64)
		if err != nil {
			sendErrorResponse(ctx, http.StatusBadRequest, "maxPrice must be a number")
			return
		}
		query = query.Where("price <= ?", value)
	}

	var sweets []models.Sweet
	if err := query.Order("created_at DESC").Find(&sweets).Error; err != nil {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Server error while searching sweets")
		return
	}

	ctx.JSON(http.StatusOK, sweets)
}

func GetSweet(ctx *gin.Context) {
	sweetID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid sweet ID")
		return
	}

	var sweet models.Sweet
	result := initializers.DB.First(&sweet, sweetID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Sweet not found")
		} else {
			log.Println("Database error:", result.Error)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Server error while fetching sweet")
		}
		return
	}

	ctx.JSON(http.StatusOK, sweet)
}

// UpdateSweet merges the provided fields into the sweet and re-validates the
// merged result with the same rules as create.
func UpdateSweet(ctx *gin.Context) {
	sweetID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid sweet ID")
		return
	}

	var input models.UpdateSweetInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var sweet models.Sweet
	if err := initializers.DB.First(&sweet, sweetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Sweet not found")
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Server error while updating sweet")
		}
		return
	}

	if input.Name != nil {
		sweet.Name = *input.Name
	}
	if input.Category != nil {
		sweet.Category = *input.Category
	}
	if input.Price != nil {
		sweet.Price = *input.Price
	}
	if input.Quantity != nil {
		sweet.Quantity = *input.Quantity
	}
	if input.Description != nil {
		sweet.Description = *input.Description
	}
	if input.ImageUrl != nil {
		sweet.ImageUrl = *input.ImageUrl
	}

	if err := models.ValidateSweet(sweet); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}

	if err := initializers.DB.Save(&sweet).Error; err != nil {
		log.Println("Sweet update error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Server error while updating sweet")
		return
	}

	ctx.JSON(http.StatusOK, sweet)
}

// DeleteSweet removes a sweet from the catalog. Cart lines referencing it are
// left in place; they resolve to nothing and fail checkout with a not-found.
func DeleteSweet(ctx *gin.Context) {
	sweetID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid sweet ID")
		return
	}

	result := initializers.DB.Delete(&models.Sweet{}, sweetID)
	if result.Error != nil {
		log.Println("Sweet deletion error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Server error while deleting sweet")
		return
	}

	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "Sweet not found")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Sweet deleted successfully"})
}

// PurchaseSweet decrements stock by the requested quantity.
func PurchaseSweet(ctx *gin.Context) {
	sweetID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid sweet ID")
		return
	}

	var input quantityInput
	if err := ctx.ShouldBindJSON(&input); err != nil || input.Quantity <= 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Quantity must be a positive number")
		return
	}

	sweet, err := adjustSweetQuantity(initializers.DB, uint(sweetID), -input.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, ErrSweetNotFound):
			sendErrorResponse(ctx, http.StatusNotFound, "Sweet not found")
		case errors.Is(err, ErrInsufficientStock):
			sendErrorResponse(ctx, http.StatusBadRequest, "Insufficient quantity in stock")
		default:
			log.Println("Purchase error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Server error while purchasing sweet")
		}
		return
	}

	ctx.JSON(http.StatusOK, sweet)
}

// RestockSweet increments stock by the requested quantity. Admin only.
func RestockSweet(ctx *gin.Context) {
	sweetID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid sweet ID")
		return
	}

	var input quantityInput
	if err := ctx.ShouldBindJSON(&input); err != nil || input.Quantity <= 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, "Quantity must be a positive number")
		return
	}

	sweet, err := adjustSweetQuantity(initializers.DB, uint(sweetID), input.Quantity)
	if err != nil {
		if errors.Is(err, ErrSweetNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Sweet not found")
		} else {
			log.Println("Restock error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Server error while restocking sweet")
		}
		return
	}

	ctx.JSON(http.StatusOK, sweet)
}

func getBucketName() string {
	return os.Getenv("S3_BUCKET")
}

// getAWSUploader returns a configured AWS S3 uploader
func getAWSUploader() (*manager.Uploader, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return manager.NewUploader(client), nil
}

// UploadSweetImage uploads a sweet's image to S3 and stores the resulting URL.
func UploadSweetImage(ctx *gin.Context) {
	sweetID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid sweet ID")
		return
	}

	var sweet models.Sweet
	if err := initializers.DB.First(&sweet, sweetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Sweet not found")
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Server error while fetching sweet")
		}
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "No image uploaded")
		return
	}

	uploader, err := getAWSUploader()
	if err != nil {
		log.Println("AWS config error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to configure AWS")
		return
	}

	f, err := file.Open()
	if err != nil {
		log.Printf("Error opening file %s: %v", file.Filename, err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	defer f.Close()

	key := fmt.Sprintf("sweets/%d-%s-%s", sweetID, uuid.NewString(), file.Filename)

	result, err := uploader.Upload(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(getBucketName()),
		Key:         aws.String(key),
		Body:        f,
		ACL:         "public-read",
		ContentType: aws.String(file.Header.Get("Content-Type")),
	})
	if err != nil {
		log.Printf("Error uploading file %s: %v", file.Filename, err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	sweet.ImageUrl = result.Location
	if err := initializers.DB.Save(&sweet).Error; err != nil {
		log.Println("Error saving image URL:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to save image URL")
		return
	}

	ctx.JSON(http.StatusOK, sweet)
}
