package cmd

/*
Copyright © 2022 Paulson McIntyre <paulson@fragforce.org>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/evdb"
	"github.com/fragforce/fragdonate/lib/eventdetails"
	"github.com/fragforce/fragdonate/lib/tasks"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var loadDirect bool

// loadCmd pushes event details from a file to every web frontend serving the event
var loadCmd = &cobra.Command{
	Use:    "load <file>",
	Short:  "Load event details from a json or yaml file",
	Args:   cobra.ExactArgs(1),
	PreRun: bindEventIDFlag,
	Run: func(cmd *cobra.Command, args []string) {
		eventID := viper.GetInt("event.id")
		log := log.WithFields(logrus.Fields{
			"event.id": eventID,
			"file":     args[0],
		})
		if eventID <= 0 {
			log.Fatal("--event-id is required")
		}

		ed, err := eventdetails.LoadFile(args[0])
		if err != nil {
			log.WithError(err).Fatal("Problem loading event details file")
		}
		cached := &df.CachedEventDetails{
			EventID:      eventID,
			EventDetails: ed,
			FetchedAt:    time.Now().UTC(),
		}

		ctx, canc := context.WithTimeout(context.Background(), time.Minute)
		defer canc()

		if loadDirect {
			df.GlobalInit(log)
			cached.RawData, err = json.Marshal(cached)
			if err != nil {
				log.WithError(err).Fatal("Problem marshaling event details")
			}
			if err := evdb.SaveSnapshot(ctx, cached); err != nil {
				log.WithError(err).Fatal("Problem saving snapshot")
			}
			log.Info("Saved snapshot")
			return
		}

		task, err := tasks.NewEventDetailsLoadTask(cached)
		if err != nil {
			log.WithError(err).Fatal("Problem creating load task")
		}
		aClient := df.GetAsyncQClient()
		defer aClient.Close()
		tInfo, err := aClient.EnqueueContext(ctx, task)
		if err != nil {
			log.WithError(err).Fatal("Problem enqueuing load task")
		}
		log.WithField("task.id", tInfo.ID).Info("Queued load task")
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().Int("event-id", 0, "DonorDrive event id the details belong to")
	loadCmd.Flags().BoolVar(&loadDirect, "direct", false, "Write the snapshot to redis instead of queueing a task")
}
