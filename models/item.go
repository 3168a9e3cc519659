package models

import "time"

type SaleType string

const (
	SaleFixed      SaleType = "fixed"
	SalePercentage SaleType = "percentage"
)

// SaleFields is shared by items and restaurants. A restaurant sale replaces
// every item sale of that restaurant while it is active.
type SaleFields struct {
	OnSale        bool       `json:"onSale" bson:"onSale"`
	SaleType      SaleType   `json:"saleType,omitempty" bson:"saleType,omitempty"`
	SaleAmount    float64    `json:"saleAmount,omitempty" bson:"saleAmount,omitempty"`
	SaleStartDate *time.Time `json:"saleStartDate,omitempty" bson:"saleStartDate,omitempty"`
	SaleEndDate   *time.Time `json:"saleEndDate,omitempty" bson:"saleEndDate,omitempty"`
}

// Item is a menu item of a restaurant.
type Item struct {
	ID           string     `json:"id" bson:"_id"`
	RestaurantID string     `json:"restaurantId" bson:"restaurantId"`
	Title        string     `json:"title" bson:"title"`
	Description  string     `json:"description,omitempty" bson:"description,omitempty"`
	Price        float64    `json:"price" bson:"price"`
	CategoryID   string     `json:"categoryId,omitempty" bson:"categoryId,omitempty"`
	Tags         []string   `json:"tags" bson:"tags"`
	Ingredients  []string   `json:"ingredients" bson:"ingredients"`
	Variants     []Variant  `json:"variants" bson:"variants"`
	Addons       []Addon    `json:"addons" bson:"addons"`
	SaleFields   `bson:",inline"`
	IsAvailable  bool      `json:"isAvailable" bson:"isAvailable"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Variant groups mutually exclusive priced options, e.g. Size: Small/Large.
type Variant struct {
	ID          string          `json:"id" bson:"id"`
	Name        string          `json:"name" bson:"name"`
	Options     []VariantOption `json:"options" bson:"options"`
	IsRequired  bool            `json:"isRequired" bson:"isRequired"`
	IsAvailable bool            `json:"isAvailable" bson:"isAvailable"`
}

type VariantOption struct {
	ID    string  `json:"id" bson:"id"`
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
}

// Addon is an independently toggleable priced extra.
type Addon struct {
	ID    string  `json:"id" bson:"id"`
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
}

type Category struct {
	ID           string    `json:"id" bson:"_id"`
	RestaurantID string    `json:"restaurantId" bson:"restaurantId"`
	Name         string    `json:"name" bson:"name"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
