package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/evdb"
	"github.com/fragforce/fragdonate/lib/gcache"
	"github.com/fragforce/fragdonate/lib/kdb"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	TaskEventDetailsRefreshAll = "eventdetails:refresh_all"
	TaskEventDetailsRefresh    = "eventdetails:refresh"
	TaskEventDetailsLoad       = "eventdetails:load"
)

var ErrNoEventID = errors.New("task has no event id")

type EventID struct {
	EventID int
}

// NewEventDetailsRefreshAllTask triggers a refresh of every monitored event
func NewEventDetailsRefreshAllTask() *asynq.Task {
	return asynq.NewTask(TaskEventDetailsRefreshAll, nil, asynq.MaxRetry(0)) // Never retry it!
}

func HandleEventDetailsRefreshAllTask(ctx context.Context, t *asynq.Task) error {
	log := df.Log.WithField("task.type", t.Type()).WithContext(ctx)
	aClient := df.GetAsyncQClient()

	monitors, err := evdb.GetAllEvents(ctx)
	if err != nil {
		log.WithError(err).Error("Problem getting all events")
		return err
	}
	log = log.WithField("events.count", len(monitors))

	for _, m := range monitors {
		log := log.WithFields(logrus.Fields{
			"event.id":     m.EventID,
			"monitor.name": m.MonitorName,
		})
		task, err := NewEventDetailsRefreshTask(m.EventID)
		if err != nil {
			log.WithError(err).Error("Problem creating event refresh task")
			return err
		}

		tInfo, err := aClient.EnqueueContext(ctx, task)
		if err != nil {
			log.WithError(err).Error("Problem enqueuing task")
			return err
		}
		log.WithField("task.id", tInfo.ID).Trace("Task queued")
	}
	log.Trace("Done with triggering event detail refreshes")

	return nil
}

// NewEventDetailsRefreshTask rebuilds the event details for one monitored event
func NewEventDetailsRefreshTask(eventID int) (*asynq.Task, error) {
	payload, err := json.Marshal(EventID{EventID: eventID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEventDetailsRefresh, payload, asynq.Timeout(time.Minute*2), asynq.MaxRetry(0)), nil
}

func parseEventID(t *asynq.Task) (int, error) {
	var p EventID
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return 0, err
	}
	if p.EventID == 0 {
		return 0, ErrNoEventID
	}
	return p.EventID, nil
}

func HandleEventDetailsRefreshTask(ctx context.Context, t *asynq.Task) error {
	log := df.Log.WithField("task.type", t.Type()).WithContext(ctx)

	eventID, err := parseEventID(t)
	if err != nil {
		log.WithError(err).Error("Problem unmarshalling payload")
		return err
	}
	log = log.WithField("event.id", eventID)

	em := evdb.NewEventMonitor(eventID)
	amMon, err := em.AmMonitoring(ctx)
	if err != nil {
		log.WithError(err).Error("Problem checking if monitored")
		return err
	}
	if !amMon {
		log.Debug("Not monitored anymore - skipping refresh")
		return nil
	}

	gca, err := gcache.GlobalCache()
	if err != nil {
		log.WithError(err).Error("Problem getting groupcache")
		return err
	}
	cached, err := gca.GetEventDetails(ctx, eventID)
	if err != nil {
		log.WithError(err).Error("Problem getting event details from gca")
		return err
	}

	return store(ctx, log, cached)
}

// NewEventDetailsLoadTask carries a complete CachedEventDetails to be stored and published as is
func NewEventDetailsLoadTask(cached *df.CachedEventDetails) (*asynq.Task, error) {
	payload, err := json.Marshal(cached)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEventDetailsLoad, payload, asynq.Timeout(time.Minute*2), asynq.MaxRetry(3)), nil
}

func HandleEventDetailsLoadTask(ctx context.Context, t *asynq.Task) error {
	log := df.Log.WithField("task.type", t.Type()).WithContext(ctx)

	cached, err := df.NewCachedEventDetailsFromJSON(t.Payload())
	if err != nil {
		log.WithError(err).Error("Problem unmarshalling payload")
		return err
	}
	if cached.EventID == 0 {
		log.WithError(ErrNoEventID).Error("Bad payload")
		return ErrNoEventID
	}

	return store(ctx, log.WithField("event.id", cached.EventID), cached)
}

// store saves the snapshot the web nodes load from and, if kafka is configured, publishes it
func store(ctx context.Context, log *logrus.Entry, cached *df.CachedEventDetails) error {
	log = log.WithFields(logrus.Fields{
		"receiver.name": cached.EventDetails.ReceiverName,
		"last-refresh":  cached.GetFetchedAt(),
	})

	if err := evdb.SaveSnapshot(ctx, cached); err != nil {
		log.WithError(err).Error("Problem saving snapshot")
		return err
	}

	if !kdb.Enabled() {
		log.Trace("No kafka configured - not publishing")
		return nil
	}

	kCtx, canc := context.WithTimeout(ctx, viper.GetDuration("kafka.write.timeout"))
	defer canc()
	if err := kdb.W.Publish(kCtx, df.KTopicEventDetails, kdb.MakeEventDetailsMessages(cached)...); err != nil {
		log.WithError(err).Error("Problem publishing event details")
		return err
	}

	log.Trace("Done storing event details")
	return nil
}
