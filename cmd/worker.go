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
	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/gcache"
	"github.com/fragforce/fragdonate/lib/handler_reg"
	"github.com/fragforce/fragdonate/lib/kdb"
	"github.com/fragforce/fragdonate/lib/tasks"
	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Backend workers",
	Run: func(cmd *cobra.Command, args []string) {
		df.GlobalInit(log)

		rClient, err := df.QuickClient(df.RPoolGroupCache, true)
		if err != nil {
			log.WithError(err).Fatal("Problem getting groupcache redis client")
		}
		gca, err := gcache.NewGlobalSharedGCache(log, rClient)
		if err != nil {
			log.WithError(err).Fatal("Problem setting up groupcache")
		}
		r := newGinEngine()
		handler_reg.RegisterWorkerHandlers(r)
		if err := gca.StartRun(r); err != nil {
			log.WithError(err).Fatal("Problem starting groupcache")
		}
		defer func() {
			if err := gca.Shutdown(); err != nil {
				log.WithError(err).Warn("Problem leaving groupcache peers")
			}
			if err := kdb.W.Close(); err != nil {
				log.WithError(err).Warn("Problem closing kafka writers")
			}
		}()

		srv := asynq.NewServer(
			df.BuildAsyncQRedis(),
			asynq.Config{
				Concurrency: viper.GetInt("asynq.workers"),
			},
		)

		if err := srv.Run(tasks.GetMux()); err != nil {
			log.WithError(err).Error("Problem running asynq server")
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	viper.SetDefault("asynq.workers", 32)
}
