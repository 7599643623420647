/*
Copyright © 2020 Stamus Networks oss@stamus-networks.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gopherwall/gopherwall/pkg/config"
	"github.com/gopherwall/gopherwall/pkg/extract"
	"github.com/gopherwall/gopherwall/pkg/geo"
	"github.com/gopherwall/gopherwall/pkg/models"
	"github.com/gopherwall/gopherwall/pkg/report"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	envFile string
)

const defaultEnvFile = ".env"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gopherWall",
	Short: "Attack log summarizer for iptables protected game servers.",
	Long: `Usage examples:

Generate every report from a firewall log into a folder:
gopherWall analyze \
	--env-file /etc/gopherwall/.env \
	--report all \
	--out-dir /srv/reports

Generate per IP report for a gzipped log rotated by logrotate:
gopherWall analyze \
	--log-file /var/log/l4d2-iptables.log.2.gz \
	--game-ports 27015,27020:27030 \
	--report by_ip

Quick overview of a log with country lookup:
gopherWall stats \
	--log-file /var/log/l4d2-iptables.log \
	--geoip-db /usr/share/GeoIP/GeoLite2-Country.mmdb

Each subcommand has separate --help. Please refer to that for more specific usage.
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gopherwall.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		`Dotenv file with LOGFILE, GAMESERVERPORTS, TVSERVERPORTS and LOG_PREFIX_* settings. `+
			`Defaults to .env in working directory when present.`)

	rootCmd.PersistentFlags().String("log-file", config.DefaultLogFile,
		`Firewall log to analyze. Plain text or gzip.`)
	viper.BindPFlag(config.KeyLogFile, rootCmd.PersistentFlags().Lookup("log-file"))

	rootCmd.PersistentFlags().String("game-ports", "",
		`Game server ports. Comma separated list of ports and <start>:<end> ranges.`)
	viper.BindPFlag(config.KeyGamePorts, rootCmd.PersistentFlags().Lookup("game-ports"))

	rootCmd.PersistentFlags().String("tv-ports", "",
		`SourceTV ports. Same format as --game-ports.`)
	viper.BindPFlag(config.KeyTVPorts, rootCmd.PersistentFlags().Lookup("tv-ports"))

	rootCmd.PersistentFlags().String("signatures", "",
		`YAML file with ordered list of {name, marker} signatures. Replaces built-in list.`)
	viper.BindPFlag(config.KeySignatures, rootCmd.PersistentFlags().Lookup("signatures"))

	rootCmd.PersistentFlags().Int("year", 0,
		`Year for syslog timestamps which carry none. Current year when unset.`)
	viper.BindPFlag(config.KeyYear, rootCmd.PersistentFlags().Lookup("year"))

	rootCmd.PersistentFlags().String("geoip-db", "",
		`MaxMind country database. Enables by_country report and country stats.`)
	viper.BindPFlag(config.KeyGeoIPDB, rootCmd.PersistentFlags().Lookup("geoip-db"))

	rootCmd.PersistentFlags().Bool("debug", false, `Enable debug logging.`)
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if viper.GetBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".gopherwall" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".gopherwall")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match
	config.SetDefaults(viper.GetViper())

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logrus.WithField("path", viper.ConfigFileUsed()).Debug("using config file")
	}

	path := envFile
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); err != nil {
			return
		}
		path = defaultEnvFile
	}
	if err := config.LoadEnvFile(viper.GetViper(), path); err != nil {
		logrus.Fatal(err)
	}
}

// loadConfig resolves runtime configuration, any failure is fatal
func loadConfig() *config.Config {
	c, err := config.FromViper(viper.GetViper())
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.
		WithField("log", c.LogFile).
		WithField("game_ports", c.GamePorts).
		WithField("tv_ports", c.TVPorts).
		WithField("signatures", len(c.Signatures)).
		Debug("configuration loaded")
	return c
}

// loadEvents parses configured log file
func loadEvents(c *config.Config) ([]models.Event, extract.Stats) {
	events, stats, err := extract.Extract(c.LogFile, c.Extract())
	if err != nil {
		var missing extract.ErrMissingFile
		if errors.As(err, &missing) {
			logrus.Fatalf("Log file %s not found. Is rsyslog writing firewall logs there?", missing.Path)
		}
		logrus.Fatal(err)
	}
	if stats.Oversized > 0 {
		logrus.Warnf("Dropped %d lines over %d bytes.", stats.Oversized, extract.MaxLineLength)
	}
	logrus.Infof("Found %d events in %d lines of %s.", stats.Events, stats.Lines, c.LogFile)
	return events, stats
}

// reportOptions opens optional collaborators, returned func releases them
func reportOptions(c *config.Config) (report.Options, func()) {
	if c.GeoIPDB == "" {
		return report.Options{}, func() {}
	}
	db, err := geo.Open(c.GeoIPDB)
	if err != nil {
		logrus.Fatal(config.ErrConfiguration{Key: config.KeyGeoIPDB, Err: err})
	}
	return report.Options{Countries: db}, func() {
		if err := db.Close(); err != nil {
			logrus.Error(err)
		}
	}
}
