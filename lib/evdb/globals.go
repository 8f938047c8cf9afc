package evdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

const (
	EventMonitorIDSet = "id-set"
)

func init() {
	viper.SetDefault("event.active", time.Hour*24)
	viper.SetDefault("snapshot.ttl", time.Hour*24*7)
}

// GetRedisClient get our redis client
func (m *BaseMonitor) GetRedisClient() (*redis.Client, error) {
	return GetRedisClient()
}

// GetRedisClient get our redis client
func GetRedisClient() (*redis.Client, error) {
	return df.QuickClient(df.RPoolMonitoring, true)
}

func (m *BaseMonitor) MakeKey(key ...string) string {
	return MakeKey(m.MonitorName, key...)
}

func MakeKey(monName string, key ...string) string {
	return fmt.Sprintf("monitor-%s-%s", monName, strings.Join(key, "-"))
}

// SnapshotKey is where the latest event details for an event live
func SnapshotKey(eventID int) string {
	return fmt.Sprintf("snapshot-eventdetails-%d", eventID)
}
