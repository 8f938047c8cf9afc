package kdb

import (
	"context"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/eventdetails"
	"github.com/spf13/viper"
)

// ActionPublisher sends dispatched actions to the actions topic via W
type ActionPublisher struct{}

func (ActionPublisher) PublishAction(ctx context.Context, eventID int, action eventdetails.Action) error {
	msg, err := MakeActionMessage(eventID, action)
	if err != nil {
		return err
	}

	kCtx, canc := context.WithTimeout(ctx, viper.GetDuration("kafka.write.timeout"))
	defer canc()
	return W.Publish(kCtx, df.KTopicActions, msg)
}

// Enabled is true when kafka.urls has at least one broker
func Enabled() bool {
	return len(viper.GetStringSlice("kafka.urls")) > 0
}
