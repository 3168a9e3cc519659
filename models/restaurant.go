package models

import "time"

// DayHours holds "HH:MM" opening and closing times.
type DayHours struct {
	Open  string `json:"open" bson:"open"`
	Close string `json:"close" bson:"close"`
}

// OpeningHours is keyed by lowercase weekday name ("monday" ... "sunday").
type OpeningHours map[string]DayHours

type Restaurant struct {
	ID           string       `json:"id" bson:"_id"`
	Name         string       `json:"name" bson:"name"`
	Email        string       `json:"email" bson:"email"`
	Password     string       `json:"-" bson:"password"`
	Description  string       `json:"description,omitempty" bson:"description,omitempty"`
	Address      string       `json:"address,omitempty" bson:"address,omitempty"`
	Cuisine      []string     `json:"cuisine" bson:"cuisine"`
	IsPublished  bool         `json:"isPublished" bson:"isPublished"`
	OpeningHours OpeningHours `json:"openingHours" bson:"openingHours"`
	SaleFields   `bson:",inline"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}
