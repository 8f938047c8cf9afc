package kdb

import (
	"testing"
	"time"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/eventdetails"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(hs []kafka.Header, key string) string {
	for _, h := range hs {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMakeEventDetailsMessages(t *testing.T) {
	cached := &df.CachedEventDetails{
		EventID:      552,
		EventDetails: eventdetails.EventDetails{ReceiverName: "CMNH"},
		FetchedAt:    time.Date(2022, 11, 5, 12, 0, 0, 0, time.UTC),
		RawData:      []byte(`{"event-id":552}`),
	}

	msgs := MakeEventDetailsMessages(cached)

	require.Len(t, msgs, 1)
	assert.Equal(t, "552", string(msgs[0].Key))
	assert.Equal(t, cached.RawData, msgs[0].Value)
	assert.Equal(t, "552", header(msgs[0].Headers, df.KHeaderKeyEventID))
	assert.Equal(t, "CMNH", header(msgs[0].Headers, df.KHeaderKeyReceiverName))
	assert.Equal(t, "2022-11-05T12:00:00Z", header(msgs[0].Headers, df.KHeaderKeyFetchedAt))
}

func TestMakeActionMessage(t *testing.T) {
	msg, err := MakeActionMessage(3, eventdetails.Unrecognized{Kind: "SET_AMOUNT"})
	require.NoError(t, err)

	assert.Equal(t, "3", string(msg.Key))
	assert.JSONEq(t, `{"type": "SET_AMOUNT"}`, string(msg.Value))
	assert.Equal(t, "SET_AMOUNT", header(msg.Headers, df.KHeaderKeyActionType))
}

func TestMakeTopicName(t *testing.T) {
	assert.Equal(t, "event-details", MakeTopicName(df.KTopicEventDetails))
	assert.Equal(t, "event-details-actions", MakeTopicName(df.KTopicActions))

	viper.Set("kafka.prefix", "cobalt-12345.")
	t.Cleanup(func() { viper.Set("kafka.prefix", "") })
	assert.Equal(t, "cobalt-12345.event-details", MakeTopicName(df.KTopicEventDetails))
	assert.Equal(t, "cobalt-12345.unconfigured", MakeTopicName("unconfigured"))
}

func TestParseBrokers(t *testing.T) {
	addrs, err := parseBrokers([]string{"kafka+ssl://b1.example:9096", "kafka+ssl://b2.example:9096"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b1.example:9096", "b2.example:9096"}, addrs)

	_, err = parseBrokers([]string{"not a url"})
	assert.Error(t, err)
}

func TestEnabled(t *testing.T) {
	orig := viper.GetStringSlice("kafka.urls")
	t.Cleanup(func() { viper.Set("kafka.urls", orig) })

	viper.Set("kafka.urls", []string{})
	assert.False(t, Enabled())

	viper.Set("kafka.urls", []string{"kafka+ssl://broker-1.example.org:9096"})
	assert.True(t, Enabled())
}
