package salehub

import (
	"context"

	"fresh/mq"
	"fresh/rdx"

	"github.com/rs/zerolog/log"
)

// Listen relays sale events from Redis to the hub until ctx is done. It
// returns at once when Redis is not configured.
func Listen(ctx context.Context, hub *Hub) {
	if rdx.Conn == nil {
		log.Warn().Msg("redis disabled, live sale updates off")
		return
	}

	sub := rdx.Conn.Subscribe(ctx, mq.SaleChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			relay(hub, msg.Payload)
		}
	}
}

func relay(hub *Hub, payload string) {
	ev, err := mq.Decode(payload)
	if err != nil || ev.RestaurantID == "" {
		log.Warn().Err(err).Msg("dropping malformed sale event")
		return
	}
	hub.Publish(ev.RestaurantID, []byte(payload))
}
