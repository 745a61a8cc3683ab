package wss

import (
	"encoding/json"

	"github.com/howardpen9/polysqueeze/pkg/types"
)

// Event is the tagged union delivered by NextEvent. Exactly one field is
// non-nil. The variant set is closed; frames with an unrecognized
// event_type never produce an Event.
type Event struct {
	Book           *types.MarketBook
	PriceChange    *types.PriceChangeMessage
	TickSizeChange *types.TickSizeChangeMessage
	LastTrade      *types.LastTradeMessage
}

// decodeEvent parses one inbound text frame. Returns (nil, nil) for
// unknown event types, which are skipped to stay forward-compatible with
// server-side additions.
func decodeEvent(data []byte) (*Event, error) {
	var envelope struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, types.NewParseError("decode frame envelope", err)
	}

	switch envelope.EventType {
	case "book":
		var msg types.MarketBook
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, types.NewParseError("decode book event", err)
		}
		return &Event{Book: &msg}, nil

	case "price_change":
		var msg types.PriceChangeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, types.NewParseError("decode price_change event", err)
		}
		return &Event{PriceChange: &msg}, nil

	case "tick_size_change":
		var msg types.TickSizeChangeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, types.NewParseError("decode tick_size_change event", err)
		}
		return &Event{TickSizeChange: &msg}, nil

	case "last_trade_price":
		var msg types.LastTradeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, types.NewParseError("decode last_trade_price event", err)
		}
		return &Event{LastTrade: &msg}, nil
	}

	return nil, nil
}
