package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func floatPtr(v float64) *float64 { return &v }

func TestBuildProductFilterEmptyParams(t *testing.T) {
	filter := buildProductFilter(productFilterParams{})
	if len(filter) != 0 {
		t.Fatalf("expected empty filter, got %v", filter)
	}
}

func TestBuildProductFilterCategoryEquality(t *testing.T) {
	filter := buildProductFilter(productFilterParams{Category: "Books"})
	if filter["category"] != "Books" {
		t.Fatalf("expected category filter, got %v", filter)
	}
}

func TestBuildProductFilterPriceRange(t *testing.T) {
	filter := buildProductFilter(productFilterParams{MinPrice: floatPtr(10), MaxPrice: floatPtr(20)})
	price, ok := filter["price"].(bson.M)
	if !ok {
		t.Fatalf("expected price range filter, got %v", filter)
	}
	if price["$gte"] != 10.0 || price["$lte"] != 20.0 {
		t.Fatalf("expected 10 <= price <= 20, got %v", price)
	}
}

func TestBuildProductFilterComposesConjunctively(t *testing.T) {
	filter := buildProductFilter(productFilterParams{
		Category: "Electronics",
		MinPrice: floatPtr(100),
		Rating:   floatPtr(4),
		Featured: true,
		Search:   "headphones",
	})

	if len(filter) != 5 {
		t.Fatalf("expected all five filters in one document, got %v", filter)
	}
	if filter["isFeatured"] != true {
		t.Fatal("expected featured flag filter")
	}
	rating, ok := filter["rating"].(bson.M)
	if !ok || rating["$gte"] != 4.0 {
		t.Fatalf("expected minimum rating filter, got %v", filter["rating"])
	}
	text, ok := filter["$text"].(bson.M)
	if !ok || text["$search"] != "headphones" {
		t.Fatalf("expected text search filter, got %v", filter["$text"])
	}
}

func TestBuildProductSortClosedEnum(t *testing.T) {
	tests := []struct {
		sort  string
		key   string
		order int
	}{
		{"price-asc", "price", 1},
		{"price-desc", "price", -1},
		{"rating-desc", "rating", -1},
		{"most-reviewed", "numReviews", -1},
		{"newest", "createdAt", -1},
		{"", "createdAt", -1},
		{"garbage", "createdAt", -1},
	}
	for _, tt := range tests {
		sort := buildProductSort(tt.sort)
		if len(sort) != 1 || sort[0].Key != tt.key || sort[0].Value != tt.order {
			t.Fatalf("buildProductSort(%q) = %v, want {%s: %d}", tt.sort, sort, tt.key, tt.order)
		}
	}
}

func validProductRequest() productRequest {
	return productRequest{
		Name:        "Wireless Headphones",
		Description: "Over-ear, 30h battery",
		Price:       79.99,
		Category:    "Electronics",
		Stock:       25,
		Images:      []string{"/images/headphones.jpg"},
		Rating:      4.5,
		NumReviews:  12,
	}
}

func TestValidateProductRequestAcceptsValid(t *testing.T) {
	if errs := validateProductRequest(validProductRequest()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateProductRequestFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*productRequest)
	}{
		{"missing name", func(r *productRequest) { r.Name = " " }},
		{"negative price", func(r *productRequest) { r.Price = -1 }},
		{"unknown category", func(r *productRequest) { r.Category = "Groceries" }},
		{"negative stock", func(r *productRequest) { r.Stock = -3 }},
		{"no images", func(r *productRequest) { r.Images = nil }},
		{"too many images", func(r *productRequest) { r.Images = make([]string, 11) }},
		{"rating above five", func(r *productRequest) { r.Rating = 5.1 }},
	}
	for _, tt := range tests {
		req := validProductRequest()
		tt.mutate(&req)
		if errs := validateProductRequest(req); len(errs) == 0 {
			t.Fatalf("%s: expected a field error", tt.name)
		}
	}
}

func TestValidateProductRequestReportsEveryViolation(t *testing.T) {
	req := validProductRequest()
	req.Name = ""
	req.Price = -5
	req.Images = nil

	errs := validateProductRequest(req)
	if len(errs) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(errs), errs)
	}
}
