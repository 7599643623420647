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
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gopherwall/gopherwall/pkg/models"
	"github.com/gopherwall/gopherwall/pkg/report"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const reportAll = "all"

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build JSON attack reports from firewall log.",
	Long: `Parses firewall log into events and writes one or all summary reports. Supported reports
are by_ip, by_port, by_day, by_week, by_month, by_attack_type and by_country. The latter needs
--geoip-db. When --report all is used, reports are built concurrently and a manifest.json listing
every generated file is written next to them. A failing report does not stop the others, but the
command exits with non-zero status.

Example usage:
gopherWall analyze \
	--env-file .env \
	--report all \
	--out-dir reports \
	--workers 4
`,
	Run: func(cmd *cobra.Command, args []string) {
		c := loadConfig()
		events, _ := loadEvents(c)
		opts, release := reportOptions(c)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		outDir := viper.GetString("analyze.out.dir")
		raw := strings.ToLower(strings.TrimSpace(viper.GetString("analyze.report")))
		if raw == reportAll {
			failed := analyzeAll(ctx, events, outDir, opts)
			release()
			if failed > 0 {
				logrus.Fatalf("%d reports failed", failed)
			}
			return
		}

		kind, err := report.ParseKind(raw)
		if err != nil {
			logrus.Fatal(err)
		}
		doc, err := report.Build(kind, events, opts)
		release()
		if err != nil {
			logrus.Fatal(err)
		}
		path := viper.GetString("analyze.out.file")
		if path == "" {
			if err := os.MkdirAll(outDir, 0750); err != nil {
				logrus.Fatal(err)
			}
			path = filepath.Join(outDir, kind.FileName())
		}
		size, err := report.Write(path, doc)
		if err != nil {
			logrus.Fatal(report.ErrReportWrite{Kind: kind, Path: path, Err: err})
		}
		logrus.Infof("Report %s with %d entries written to %s (%d bytes).", kind, report.Len(doc), path, size)
	},
}

func analyzeAll(ctx context.Context, events []models.Event, outDir string, opts report.Options) int {
	kinds := append([]report.Kind{}, report.Kinds...)
	if opts.Countries != nil {
		kinds = append(kinds, report.KindByCountry)
	}
	m, err := report.RunBatch(ctx, events, report.BatchConfig{
		OutDir:  outDir,
		Kinds:   kinds,
		Workers: viper.GetInt("analyze.workers"),
		Options: opts,
	})
	if err != nil {
		if m == nil {
			logrus.Fatal(err)
		}
		logrus.Error(err)
	}
	for _, r := range m.Reports {
		if r.Error != "" {
			logrus.Errorf("%s failed: %s", r.Kind, r.Error)
			continue
		}
		logrus.Infof("%-16s %8d bytes %6d entries %s", r.Kind, r.Size, r.Entries, r.Path)
	}
	logrus.Infof("%d reports, %d bytes total, manifest at %s",
		len(m.Reports), m.TotalSize(), filepath.Join(outDir, report.ManifestFile))
	failed := len(m.Errors())
	if err != nil {
		failed++
	}
	return failed
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.PersistentFlags().String("report", reportAll,
		`Report to generate. One of by_ip, by_port, by_day, by_week, by_month, by_attack_type, by_country or all.`)
	viper.BindPFlag("analyze.report", analyzeCmd.PersistentFlags().Lookup("report"))

	analyzeCmd.PersistentFlags().String("out-dir", ".",
		`Folder for generated reports.`)
	viper.BindPFlag("analyze.out.dir", analyzeCmd.PersistentFlags().Lookup("out-dir"))

	analyzeCmd.PersistentFlags().String("out-file", "",
		`Explicit output path for a single report. Overrides --out-dir.`)
	viper.BindPFlag("analyze.out.file", analyzeCmd.PersistentFlags().Lookup("out-file"))

	analyzeCmd.PersistentFlags().Int("workers", 0,
		`Number of reports built at once in "all" mode. `+
			`Value less than 1 will build all reports concurrently.`)
	viper.BindPFlag("analyze.workers", analyzeCmd.PersistentFlags().Lookup("workers"))
}
