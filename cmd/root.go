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
	"fmt"
	"os"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/gin-gonic/gin"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var rootLog *logrus.Logger
var log *logrus.Entry
var AmDebugging bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fragdonate",
	Short: "Donation page backend for fragforce events",
	Long:  `Serves and refreshes the event details a donate page is built from. See fragforce.org`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log := log.WithFields(logrus.Fields{
			"args": args,
		})
		if log != nil {
			log.Debug("Starting up")
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log := log.WithFields(logrus.Fields{
			"args": args,
		})
		if log != nil {
			log.Debug("All done")
		}
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	viper.SetDefault("log.level", logrus.InfoLevel.String())
	viper.SetDefault("listen", "0.0.0.0")
	viper.SetDefault("port", 8888)
	cobra.OnInitialize(initConfig, initLogging)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fragdonate.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&AmDebugging, "debug", "d", false, "Enable debug mode")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".fragdonate" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".fragdonate")
	}

	viper.SetEnvPrefix("CFG")
	viper.AutomaticEnv() // read in environment variables that match CFG_XXXXXXX

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Update debug mode from config
	if !AmDebugging && viper.GetBool("debug") {
		AmDebugging = true
	}
	viper.Set("debug", AmDebugging)

	// Save PORT env
	if p := os.Getenv("PORT"); p != "" {
		viper.Set("port", p)
	}
}

func initLogging() {
	rootLog = logrus.New()
	lvl, err := logrus.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		panic("Bad log level: " + err.Error())
	}
	rootLog.SetLevel(lvl)
	rootLog.SetFormatter(&logrus.JSONFormatter{
		DisableTimestamp:  false,
		DisableHTMLEscape: false,
	})
	rootLog.SetReportCaller(true)
	log = rootLog.WithFields(logrus.Fields{
		"app": rootCmd.Name(),
	})

	if AmDebugging {
		rootLog.SetLevel(logrus.DebugLevel)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	df.SetLog(log)
	log.Info("Init'ed logging")
}

// newGinEngine is what every command that serves http starts from
func newGinEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

func listenAddr() string {
	return viper.GetString("listen") + ":" + viper.GetString("port")
}

// bindEventIDFlag points event.id at the running command's --event-id
func bindEventIDFlag(cmd *cobra.Command, args []string) {
	cobra.CheckErr(viper.BindPFlag("event.id", cmd.Flags().Lookup("event-id")))
}
