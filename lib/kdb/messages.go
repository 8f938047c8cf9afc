package kdb

import (
	"strconv"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/eventdetails"
	"github.com/segmentio/kafka-go"
)

// EventDetailsHeaders are used in kafka for info, routing, and debugging
func EventDetailsHeaders(cached *df.CachedEventDetails) []kafka.Header {
	return []kafka.Header{
		{Key: df.KHeaderKeyEventID, Value: []byte(strconv.Itoa(cached.EventID))},
		{Key: df.KHeaderKeyReceiverName, Value: []byte(cached.EventDetails.ReceiverName)},
		{Key: df.KHeaderKeyFetchedAt, Value: []byte(cached.GetFetchedAt())},
	}
}

// MakeEventDetailsMessages creates the message(s) for the compacted event details topic - keyed by event id
func MakeEventDetailsMessages(cached *df.CachedEventDetails) []kafka.Message {
	return []kafka.Message{
		{
			Key:     []byte(strconv.Itoa(cached.EventID)),
			Value:   cached.RawData,
			Headers: EventDetailsHeaders(cached),
		},
	}
}

// MakeActionMessage records a dispatched action for the given event
func MakeActionMessage(eventID int, action eventdetails.Action) (kafka.Message, error) {
	data, err := eventdetails.EncodeAction(action)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(strconv.Itoa(eventID)),
		Value: data,
		Headers: []kafka.Header{
			{Key: df.KHeaderKeyEventID, Value: []byte(strconv.Itoa(eventID))},
			{Key: df.KHeaderKeyActionType, Value: []byte(action.Type())},
		},
	}, nil
}
