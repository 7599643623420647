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
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gopherwall/gopherwall/pkg/extract"
	"github.com/gopherwall/gopherwall/pkg/report"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	headerColor  = color.New(color.FgBlue, color.Bold)
	sectionColor = color.New(color.FgCyan)
	warningColor = color.New(color.FgYellow)
)

const tableWidth = 60

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print quick overview of firewall log.",
	Long: `Parses firewall log and prints number of events, distinct attackers, covered period and
breakdowns per attack type, port role and protocol. Top countries are listed when --geoip-db is set.

Example usage:
gopherWall stats --log-file /var/log/l4d2-iptables.log
gopherWall stats --log-file /var/log/l4d2-iptables.log --json
`,
	Run: func(cmd *cobra.Command, args []string) {
		c := loadConfig()
		events, stats := loadEvents(c)
		opts, release := reportOptions(c)
		ov := report.NewOverview(events, opts)
		release()

		if viper.GetBool("stats.json") {
			if err := report.Encode(os.Stdout, struct {
				Parse    extract.Stats   `json:"parse"`
				Overview report.Overview `json:"overview"`
			}{Parse: stats, Overview: ov}); err != nil {
				logrus.Fatal(err)
			}
			return
		}
		renderOverview(c.LogFile, stats, ov)
	},
}

func renderOverview(path string, stats extract.Stats, ov report.Overview) {
	headerColor.Printf("GOPHERWALL STATS %s\n", path)
	headerColor.Println(strings.Repeat("=", tableWidth))
	fmt.Printf("%-24s %d\n", "Lines read", stats.Lines)
	if ov.Events == 0 {
		warningColor.Println("No events found")
		return
	}
	fmt.Printf("%-24s %d\n", "Lines skipped", stats.Skipped)
	fmt.Printf("%-24s %d\n", "Events", ov.Events)
	fmt.Printf("%-24s %d\n", "Unique IPs", ov.UniqueIPs)
	fmt.Printf("%-24s %d\n", "Unique ports", ov.UniquePorts)
	fmt.Printf("%-24s %d days\n", "Temporal coverage", ov.UniqueDays)
	fmt.Printf("%-24s %s -> %s\n", "Period", ov.Period.Beginning.Format(timeLayout), ov.Period.End.Format(timeLayout))

	renderCounts("Attack types", ov.AttackTypes)
	renderCounts("Port roles", ov.Roles)
	renderCounts("Protocols", ov.Protocols)

	if len(ov.Countries) > 0 {
		fmt.Println()
		sectionColor.Println("Top countries")
		fmt.Println(strings.Repeat("-", tableWidth))
		for _, c := range ov.Countries {
			fmt.Printf("%-24s %d\n", c.Country, c.Events)
		}
	}
	headerColor.Println(strings.Repeat("=", tableWidth))
}

const timeLayout = "2006-01-02 15:04:05"

// renderCounts prints breakdown sorted by count, ties by name
func renderCounts(title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] == counts[keys[j]] {
			return keys[i] < keys[j]
		}
		return counts[keys[i]] > counts[keys[j]]
	})
	fmt.Println()
	sectionColor.Println(title)
	fmt.Println(strings.Repeat("-", tableWidth))
	for _, k := range keys {
		fmt.Printf("%-24s %d\n", k, counts[k])
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.PersistentFlags().Bool("json", false, `Print overview as JSON instead of table.`)
	viper.BindPFlag("stats.json", statsCmd.PersistentFlags().Lookup("json"))
}
