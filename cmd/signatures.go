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
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// signaturesCmd represents the signatures command
var signaturesCmd = &cobra.Command{
	Use:   "signatures",
	Short: "List effective attack signatures in match order.",
	Long: `Prints signature table after applying --signatures file and LOG_PREFIX_* overrides.
First signature whose marker appears in a log line wins, so order matters. Output of --yaml can be
used as a starting point for a custom --signatures file.
`,
	Run: func(cmd *cobra.Command, args []string) {
		c := loadConfig()
		if viper.GetBool("list.yaml") {
			data, err := c.Signatures.Dump()
			if err != nil {
				logrus.Fatal(err)
			}
			fmt.Print(string(data))
			return
		}
		headerColor.Printf("%-4s %-22s %s\n", "#", "Name", "Marker")
		fmt.Println(strings.Repeat("-", tableWidth))
		for i, s := range c.Signatures {
			fmt.Printf("%-4d %-22s %q\n", i+1, s.Name, s.Marker)
		}
	},
}

func init() {
	rootCmd.AddCommand(signaturesCmd)

	signaturesCmd.PersistentFlags().Bool("yaml", false, `Print signatures as YAML.`)
	viper.BindPFlag("list.yaml", signaturesCmd.PersistentFlags().Lookup("yaml"))
}
