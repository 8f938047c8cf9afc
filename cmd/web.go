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
	"os"
	"os/signal"
	"syscall"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/eventdetails"
	"github.com/fragforce/fragdonate/lib/handler_reg"
	"github.com/fragforce/fragdonate/lib/handlers"
	"github.com/fragforce/fragdonate/lib/kdb"
	"github.com/fragforce/fragdonate/lib/loader"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// webCmd represents the web command
var webCmd = &cobra.Command{
	Use:    "web",
	Short:  "Web frontend worker",
	PreRun: bindEventIDFlag,
	Run: func(cmd *cobra.Command, args []string) {
		df.GlobalInit(log)

		eventID := viper.GetInt("event.id")
		if eventID <= 0 {
			log.Fatal("event.id must be set for the web frontend")
		}
		log := log.WithField("event.id", eventID)

		store := eventdetails.NewStore(log)
		store.Subscribe(func(state *eventdetails.EventDetails) {
			log.WithFields(logrus.Fields{
				"receiver.name":    state.ReceiverName,
				"incentives.count": len(state.AvailableIncentives),
				"prizes.count":     len(state.Prizes),
			}).Debug("Event details changed")
		})

		var pub handlers.ActionPublisher
		if kdb.Enabled() {
			pub = kdb.ActionPublisher{}
			defer func() {
				if err := kdb.W.Close(); err != nil {
					log.WithError(err).Warn("Problem closing kafka writers")
				}
			}()
		}

		ctx, canc := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer canc()
		go loader.NewLoader(log, store, eventID, nil).Run(ctx)

		r := newGinEngine()
		handler_reg.RegisterHandlers(r, handlers.NewEventDetails(eventID, store, pub))

		if err := r.Run(listenAddr()); err != nil {
			log.WithError(err).Fatal("Problem running GIN")
		}
	},
}

func init() {
	rootCmd.AddCommand(webCmd)
	webCmd.Flags().Int("event-id", 0, "DonorDrive event id to serve")
}
