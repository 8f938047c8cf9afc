package loader

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/evdb"
	"github.com/fragforce/fragdonate/lib/eventdetails"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const DefaultInterval = time.Second * 15

func init() {
	viper.SetDefault("loader.interval", DefaultInterval)
}

// SnapshotFunc returns the latest raw CachedEventDetails json for an event
type SnapshotFunc func(ctx context.Context, eventID int) ([]byte, error)

// Loader feeds new snapshots of one event into a store as LOAD_EVENT_DETAILS
type Loader struct {
	EventID  int
	Store    *eventdetails.Store
	Snapshot SnapshotFunc
	Interval time.Duration
	log      *logrus.Entry
	last     []byte
	loaded   *eventdetails.EventDetails // what our last Dispatch left in Store
}

// NewLoader makes a loader reading from snapshot, or from the redis snapshots when snapshot is nil
func NewLoader(log *logrus.Entry, store *eventdetails.Store, eventID int, snapshot SnapshotFunc) *Loader {
	if snapshot == nil {
		snapshot = evdb.GetSnapshot
	}
	log = log.WithField("event.id", eventID)

	interval := viper.GetDuration("loader.interval")
	if interval <= 0 {
		log.WithField("loader.interval", interval).Warn("Bad loader.interval - using the default")
		interval = DefaultInterval
	}
	return &Loader{
		EventID:  eventID,
		Store:    store,
		Snapshot: snapshot,
		Interval: interval,
		log:      log,
	}
}

// Poll checks for a snapshot once and dispatches it if it differs from the last one loaded
// or if something else has replaced the state we loaded
func (l *Loader) Poll(ctx context.Context) (bool, error) {
	data, err := l.Snapshot(ctx, l.EventID)
	if err != nil {
		return false, err
	}
	if l.last != nil && bytes.Equal(data, l.last) && l.Store.State() == l.loaded {
		return false, nil
	}

	cached, err := df.NewCachedEventDetailsFromJSON(data)
	if err != nil {
		l.log.WithError(err).Error("Problem unmarshalling snapshot")
		return false, err
	}

	l.loaded, _ = l.Store.Dispatch(cached.Action())
	l.last = data
	l.log.WithField("last-refresh", cached.GetFetchedAt()).Info("Loaded event details")
	return true, nil
}

// Run polls every Interval until ctx is done
func (l *Loader) Run(ctx context.Context) {
	log := l.log.WithField("loader.interval", l.Interval)
	log.Debug("Starting loader")

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := l.Poll(ctx); err != nil {
			if errors.Is(err, evdb.ErrNoSnapshot) {
				log.Debug("No snapshot yet")
			} else {
				log.WithError(err).Warn("Problem polling snapshot")
			}
		}

		select {
		case <-ctx.Done():
			log.Debug("Loader stopped")
			return
		case <-ticker.C:
		}
	}
}
