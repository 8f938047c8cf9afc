package kdb

import (
	"fmt"

	"github.com/spf13/viper"
)

func init() {
	viper.SetDefault("kafka.prefix", "")
	viper.SetDefault(topicCfgKey("eventdetails"), "event-details")
	viper.SetDefault(topicCfgKey("actions"), "event-details-actions")
}

func topicCfgKey(name string) string {
	return fmt.Sprintf("kafka.topics.%s", name)
}

// MakeTopicName turns a df.KTopic* name into the real, prefixed, topic name
func MakeTopicName(name string) string {
	topic := viper.GetString(topicCfgKey(name))
	if topic == "" {
		topic = name
	}
	return viper.GetString("kafka.prefix") + topic
}
