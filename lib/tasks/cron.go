package tasks

import (
	"github.com/fragforce/fragdonate/lib/df"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func init() {
	viper.SetDefault("sched.refresh.every", "@every 30s")
}

func RegisterSched(scheduler *asynq.Scheduler) error {
	log := df.Log
	//https://github.com/hibiken/asynq/wiki/Periodic-Tasks#entries

	return registerUpdateJob(log, scheduler, viper.GetString("sched.refresh.every"), NewEventDetailsRefreshAllTask())
}

// registerUpdateJob helper to register quick update tasks
func registerUpdateJob(log *logrus.Entry, scheduler *asynq.Scheduler, cronspec string, task *asynq.Task) error {
	log = log.WithFields(logrus.Fields{
		"task.type": task.Type(),
		"cronspec":  cronspec,
	})
	entryID, err := scheduler.Register(cronspec, task)
	if err != nil {
		log.WithError(err).Error("Couldn't register cron job")
		return err
	}
	log.WithField("entry.id", entryID).Trace("Registered job")
	return nil
}
