package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

type productFilterParams struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Rating   *float64
	Featured bool
	Search   string
}

// buildProductFilter composes the optional catalog filters with logical AND.
func buildProductFilter(p productFilterParams) bson.M {
	filter := bson.M{}

	if p.Category != "" {
		filter["category"] = p.Category
	}

	if p.MinPrice != nil || p.MaxPrice != nil {
		price := bson.M{}
		if p.MinPrice != nil {
			price["$gte"] = *p.MinPrice
		}
		if p.MaxPrice != nil {
			price["$lte"] = *p.MaxPrice
		}
		filter["price"] = price
	}

	if p.Rating != nil {
		filter["rating"] = bson.M{"$gte": *p.Rating}
	}

	if p.Featured {
		filter["isFeatured"] = true
	}

	if p.Search != "" {
		filter["$text"] = bson.M{"$search": p.Search}
	}

	return filter
}

// buildProductSort maps the closed sort enumeration to a sort document.
// Unrecognized values fall back to newest-first.
func buildProductSort(sort string) bson.D {
	switch sort {
	case "price-asc":
		return bson.D{{Key: "price", Value: 1}}
	case "price-desc":
		return bson.D{{Key: "price", Value: -1}}
	case "rating-desc":
		return bson.D{{Key: "rating", Value: -1}}
	case "most-reviewed":
		return bson.D{{Key: "numReviews", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

func parseProductFilterParams(c *gin.Context) (productFilterParams, error) {
	p := productFilterParams{
		Category: strings.TrimSpace(c.Query("category")),
		Featured: c.Query("featured") == "true",
		Search:   strings.TrimSpace(c.Query("search")),
	}

	var err error
	if p.MinPrice, err = optionalFloatQuery(c, "minPrice"); err != nil {
		return p, err
	}
	if p.MaxPrice, err = optionalFloatQuery(c, "maxPrice"); err != nil {
		return p, err
	}
	if p.Rating, err = optionalFloatQuery(c, "rating"); err != nil {
		return p, err
	}

	return p, nil
}

func optionalFloatQuery(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &value, nil
}

func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		filterParams, err := parseProductFilterParams(c)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		filter := buildProductFilter(filterParams)
		findOptions := options.Find().
			SetSort(buildProductSort(c.Query("sort"))).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cursor, err := db.Collection("products").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products": products,
			"page":     page,
			"pages":    totalPages(total, limit),
			"total":    total,
		})
	}
}

func GetProductByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

type productRequest struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Price          float64           `json:"price"`
	Category       string            `json:"category"`
	Subcategory    string            `json:"subcategory"`
	Brand          string            `json:"brand"`
	Stock          int               `json:"stock"`
	Images         []string          `json:"images"`
	Rating         float64           `json:"rating"`
	NumReviews     int               `json:"numReviews"`
	IsFeatured     bool              `json:"isFeatured"`
	Specifications map[string]string `json:"specifications"`
	Tags           []string          `json:"tags"`
}

// validateProductRequest enforces the write-time field constraints and
// returns one message per violated field.
func validateProductRequest(req productRequest) []string {
	var errs []string

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, "name is required")
	} else if len(name) > 200 {
		errs = append(errs, "name cannot exceed 200 characters")
	}

	if strings.TrimSpace(req.Description) == "" {
		errs = append(errs, "description is required")
	} else if len(req.Description) > 2000 {
		errs = append(errs, "description cannot exceed 2000 characters")
	}

	if req.Price < 0 {
		errs = append(errs, "price cannot be negative")
	}

	if !models.IsValidCategory(req.Category) {
		errs = append(errs, "category is not a known category")
	}

	if req.Stock < 0 {
		errs = append(errs, "stock cannot be negative")
	}

	if len(req.Images) < 1 || len(req.Images) > 10 {
		errs = append(errs, "must have between 1 and 10 images")
	}

	if req.Rating < 0 || req.Rating > 5 {
		errs = append(errs, "rating must be between 0 and 5")
	}

	if req.NumReviews < 0 {
		errs = append(errs, "numReviews cannot be negative")
	}

	return errs
}

func productFromRequest(req productRequest, now time.Time) models.Product {
	return models.Product{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Price:          req.Price,
		Category:       req.Category,
		Subcategory:    strings.TrimSpace(req.Subcategory),
		Brand:          strings.TrimSpace(req.Brand),
		Stock:          req.Stock,
		Images:         req.Images,
		Rating:         req.Rating,
		NumReviews:     req.NumReviews,
		IsFeatured:     req.IsFeatured,
		Specifications: req.Specifications,
		Tags:           req.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
			return
		}

		if errs := validateProductRequest(req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "validation failed", "errors": errs})
			return
		}

		product := productFromRequest(req, time.Now())

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			log.Println("[PRODUCT] [ERROR] create insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		product.ID, _ = res.InsertedID.(primitive.ObjectID)
		log.Println("[PRODUCT] [INFO] product created:", product.ID.Hex())
		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}

		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
			return
		}

		if errs := validateProductRequest(req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "validation failed", "errors": errs})
			return
		}

		update := productFromRequest(req, time.Now())

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Product
		err = db.Collection("products").FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{
				"name":           update.Name,
				"description":    update.Description,
				"price":          update.Price,
				"category":       update.Category,
				"subcategory":    update.Subcategory,
				"brand":          update.Brand,
				"stock":          update.Stock,
				"images":         update.Images,
				"rating":         update.Rating,
				"numReviews":     update.NumReviews,
				"isFeatured":     update.IsFeatured,
				"specifications": update.Specifications,
				"tags":           update.Tags,
				"updatedAt":      update.UpdatedAt,
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}
		if err != nil {
			log.Println("[PRODUCT] [ERROR] update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			log.Println("[PRODUCT] [ERROR] delete failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}

		log.Println("[PRODUCT] [INFO] product deleted:", id.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "product removed"})
	}
}
