package evdb

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

func (e *EventMonitor) GetKey() string {
	return strconv.Itoa(e.EventID)
}

func (e *EventMonitor) MonitorKey() string {
	return e.MakeKey(e.GetKey())
}

// SetUpdateMonitoring turns on monitoring for active - zero means event.active
func (e *EventMonitor) SetUpdateMonitoring(ctx context.Context, active time.Duration) error {
	rClient, err := e.GetRedisClient()
	if err != nil {
		return err
	}
	if active <= 0 {
		active = viper.GetDuration("event.active")
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	key := e.MonitorKey()
	if err := rClient.Set(ctx, key, data, active).Err(); err != nil {
		return err
	}

	// Make lookups for what we have quick - will have to verify where they point exists
	return rClient.SAdd(ctx, e.MakeKey(EventMonitorIDSet), key).Err()
}

// AmMonitoring are we monitoring this id
func (e *EventMonitor) AmMonitoring(ctx context.Context) (bool, error) {
	rClient, err := e.GetRedisClient()
	if err != nil {
		return false, err
	}

	cnt, err := rClient.Exists(ctx, e.MonitorKey()).Result()
	if err != nil {
		return false, err
	}
	return cnt == 1, nil
}

// GetAllEvents returns every event still being monitored, pruning expired ones from the id set
func GetAllEvents(ctx context.Context) ([]*EventMonitor, error) {
	log := df.Log.WithContext(ctx)

	rClient, err := GetRedisClient()
	if err != nil {
		log.WithError(err).Error("Problem getting redis client")
		return nil, err
	}

	sKey := MakeKey(df.MonitorNameEvent, EventMonitorIDSet)
	log = log.WithField("events.key", sKey)

	keys, err := rClient.SMembers(ctx, sKey).Result()
	if err != nil {
		log.WithError(err).Error("Problem getting monitor id set")
		return nil, err
	}
	log = log.WithField("set.len", len(keys))

	ret := make([]*EventMonitor, 0, len(keys))
	for _, key := range keys {
		log := log.WithField("key", key)
		data, err := rClient.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			log.Trace("Expired - removing from id set")
			if err := rClient.SRem(ctx, sKey, key).Err(); err != nil {
				log.WithError(err).Warn("Problem removing expired monitor from id set")
			}
			continue
		}
		if err != nil {
			log.WithError(err).Error("Problem with member key lookup")
			return nil, err
		}

		em, err := NewEventMonitorFromJSON(data)
		if err != nil {
			log.WithError(err).Error("Problem with turning json data into event monitor")
			return nil, err
		}

		ret = append(ret, em)
	}

	return ret, nil
}
