package mq

import (
	"context"
	"encoding/json"
	"time"

	"fresh/models"
	"fresh/rdx"

	"github.com/rs/zerolog/log"
)

// SaleChannel carries sale changes to every API instance.
const SaleChannel = "sale-events"

const (
	ItemSaleApplied = "item-sale-applied"
	ItemSaleRemoved = "item-sale-removed"
	MenuSaleApplied = "menu-sale-applied"
	MenuSaleRemoved = "menu-sale-removed"
)

// SaleEvent describes a sale change on a restaurant or one of its items.
type SaleEvent struct {
	Type         string            `json:"type"`
	RestaurantID string            `json:"restaurantId"`
	ItemID       string            `json:"itemId,omitempty"`
	Sale         models.SaleFields `json:"sale"`
	At           time.Time         `json:"at"`
}

// Emit publishes the event to Redis. Failures are logged and dropped.
func Emit(ctx context.Context, event SaleEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("marshal sale event")
		return
	}

	if err := rdx.Publish(ctx, SaleChannel, data); err != nil {
		log.Warn().Err(err).Str("type", event.Type).Str("restaurant", event.RestaurantID).Msg("publish sale event")
		return
	}
	log.Debug().Str("type", event.Type).Str("restaurant", event.RestaurantID).Msg("sale event published")
}

// Decode parses a payload received on SaleChannel.
func Decode(payload string) (SaleEvent, error) {
	var ev SaleEvent
	err := json.Unmarshal([]byte(payload), &ev)
	return ev, err
}
