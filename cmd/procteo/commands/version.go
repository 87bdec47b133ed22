package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/procteo-audio/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print pipeline name and version",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := cfg.Load()
		if err != nil {
			return err
		}
		v := conf.Pipeline.Version
		if v == "" {
			v = "dev"
		}
		fmt.Printf("%s %s\n", conf.Pipeline.Name, v)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
