package cmd

import (
	"io"

	"github.com/gopherwall/gopherwall/pkg/config"
	"github.com/gopherwall/gopherwall/pkg/fs"
	"github.com/gopherwall/gopherwall/pkg/signature"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exampleConfigCmd represents the exampleConfig command
var exampleConfigCmd = &cobra.Command{
	Use:   "exampleConfig",
	Short: "Write current settings as config file.",
	Long: `Writes effective settings, including flags given on command line, to a config file that
can later be passed with --config. Format follows file extension. Optionally dumps built-in
signature table as YAML for use with --signatures.

Example usage:
gopherWall exampleConfig \
	--game-ports 27015,27020:27030 \
	--out gopherwall.yaml \
	--signatures-out signatures.yaml
`,
	Run: func(cmd *cobra.Command, args []string) {
		out := viper.GetString("example.out")
		logrus.Infof("Writing config to %s", out)
		v := viper.New()
		for _, key := range []string{
			config.KeyLogFile,
			config.KeyGamePorts,
			config.KeyTVPorts,
			config.KeySignatures,
			config.KeyYear,
			config.KeyGeoIPDB,
		} {
			v.Set(key, viper.Get(key))
		}
		if err := v.WriteConfigAs(out); err != nil {
			logrus.Fatal(err)
		}

		sigOut := viper.GetString("example.signatures.out")
		if sigOut == "" {
			return
		}
		data, err := signature.Defaults().Dump()
		if err != nil {
			logrus.Fatal(err)
		}
		logrus.Infof("Writing signatures to %s", sigOut)
		if _, err := fs.WriteFileAtomic(sigOut, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}); err != nil {
			logrus.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exampleConfigCmd)

	exampleConfigCmd.PersistentFlags().String("out", "gopherwall.yaml", `Config file to write.`)
	viper.BindPFlag("example.out", exampleConfigCmd.PersistentFlags().Lookup("out"))

	exampleConfigCmd.PersistentFlags().String("signatures-out", "", `Optional file for built-in signature list.`)
	viper.BindPFlag("example.signatures.out", exampleConfigCmd.PersistentFlags().Lookup("signatures-out"))
}
