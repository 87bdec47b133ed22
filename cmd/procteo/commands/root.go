package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "procteo",
	Short: "Voice activity detection and transcription pipeline",
	Long: `procteo - audio analysis pipeline.

Detects speech intervals in a recorded audio signal and optionally
transcribes each detected segment. Results are written as a JSON report.

Model credentials are taken from the --token flag or, failing that, the
HUGGINGFACE_HUB_TOKEN / HF_TOKEN environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logrus.Error(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("token", "", "model service access token")
	viper.BindPFlag("hf_token", rootCmd.PersistentFlags().Lookup("token"))
	viper.BindEnv("hf_token", "HUGGINGFACE_HUB_TOKEN", "HF_TOKEN")
}

func setupLogging(level string) {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
