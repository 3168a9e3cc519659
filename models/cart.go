package models

import "time"

// Cart holds one user's lines for one restaurant. Revision increments on
// every write and guards concurrent mutations.
type Cart struct {
	ID           string     `json:"id" bson:"_id"`
	RestaurantID string     `json:"restaurantId" bson:"restaurantId"`
	UserID       string     `json:"userId" bson:"userId"`
	Items        []CartItem `json:"items" bson:"items"`
	TotalPrice   float64    `json:"totalPrice" bson:"totalPrice"`
	Revision     int64      `json:"revision" bson:"revision"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// CartItem is one (item, variant selection, addon selection) line. Variant and
// addon entries are price snapshots taken when the line was added.
type CartItem struct {
	ItemID       string            `json:"itemId" bson:"itemId"`
	Quantity     int               `json:"quantity" bson:"quantity"`
	Variants     []SelectedVariant `json:"variants" bson:"variants"`
	Addons       []SelectedAddon   `json:"addons" bson:"addons"`
	UnitPrice    float64           `json:"unitPrice" bson:"unitPrice"`
	LineTotal    float64           `json:"lineTotal" bson:"lineTotal"`
	SelectionKey string            `json:"selectionKey" bson:"selectionKey"`
}

type SelectedVariant struct {
	Name       string  `json:"name" bson:"name"`
	OptionID   string  `json:"optionId" bson:"optionId"`
	OptionName string  `json:"optionName" bson:"optionName"`
	Price      float64 `json:"price" bson:"price"`
}

type SelectedAddon struct {
	AddonID string  `json:"addonId" bson:"addonId"`
	Name    string  `json:"name" bson:"name"`
	Price   float64 `json:"price" bson:"price"`
}
