package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductKind is what a producer sells.
type ProductKind string

const (
	ProductCourse   ProductKind = "course"
	ProductEbook    ProductKind = "ebook"
	ProductDigital  ProductKind = "digital"
	ProductPhysical ProductKind = "physical"
)

// Product is a catalog item owned by a producer.
type Product struct {
	ID              string           `json:"id"`
	ProducerID      string           `json:"producer_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	LongDescription string           `json:"long_description,omitempty"`
	Kind            ProductKind      `json:"kind"`
	Price           decimal.Decimal  `json:"price"`
	OriginalPrice   *decimal.Decimal `json:"original_price,omitempty"`
	Currency        string           `json:"currency"`
	Active          bool             `json:"active"`
	Featured        bool             `json:"featured"`
	ImageURL        string           `json:"image_url,omitempty"`
	Category        string           `json:"category,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	RatingAverage   float64          `json:"rating_average"`
	RatingCount     int              `json:"rating_count"`
	SalesCount      int              `json:"sales_count"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// CourseLevel is the audience level of a course.
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

// Course is the learning content attached to a course product.
type Course struct {
	ID           string      `json:"id"`
	ProductID    string      `json:"product_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	TotalMinutes int         `json:"total_minutes"`
	Level        CourseLevel `json:"level"`
	Certificate  bool        `json:"certificate"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Module groups videos inside a course.
type Module struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Position    int       `json:"position"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Video is a single lesson.
type Video struct {
	ID              string    `json:"id"`
	ModuleID        string    `json:"module_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	URL             string    `json:"url,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	Position        int       `json:"position"`
	Preview         bool      `json:"preview"`
	Active          bool      `json:"active"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// ModuleOutline is a module with its ordered videos.
type ModuleOutline struct {
	Module
	Videos []Video `json:"videos"`
}

// CourseOutline is a course with its ordered modules.
type CourseOutline struct {
	Course
	Modules []ModuleOutline `json:"modules"`
}
