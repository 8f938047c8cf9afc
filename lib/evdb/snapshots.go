package evdb

import (
	"context"
	"errors"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

var ErrNoSnapshot = errors.New("no event details snapshot")

func getSnapshotClient() (*redis.Client, error) {
	return df.QuickClient(df.RPoolSnapshots, true)
}

// SaveSnapshot stores the raw CachedEventDetails json as the latest for its event
func SaveSnapshot(ctx context.Context, cached *df.CachedEventDetails) error {
	log := df.Log.WithField("event.id", cached.EventID).WithContext(ctx)

	rClient, err := getSnapshotClient()
	if err != nil {
		log.WithError(err).Error("Problem getting redis client")
		return err
	}

	if err := rClient.Set(ctx, SnapshotKey(cached.EventID), cached.RawData, viper.GetDuration("snapshot.ttl")).Err(); err != nil {
		log.WithError(err).Error("Problem saving snapshot")
		return err
	}
	log.Trace("Saved snapshot")
	return nil
}

// GetSnapshot fetches the raw json saved by SaveSnapshot
func GetSnapshot(ctx context.Context, eventID int) ([]byte, error) {
	rClient, err := getSnapshotClient()
	if err != nil {
		return nil, err
	}

	data, err := rClient.Get(ctx, SnapshotKey(eventID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}
