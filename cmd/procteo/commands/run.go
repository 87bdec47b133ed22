package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maastricht-university/procteo-audio/clients"
	cfg "github.com/maastricht-university/procteo-audio/config"
	"github.com/maastricht-university/procteo-audio/orchestrator"
	"github.com/maastricht-university/procteo-audio/transcribe"
	"github.com/maastricht-university/procteo-audio/vad"
)

var runCmd = &cobra.Command{
	Use:   "run <audio.wav>",
	Short: "Run the VAD pipeline on an audio file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPipeline,
}

func init() {
	f := runCmd.Flags()
	f.Int("sample-rate", 0, "target sample rate in Hz")
	f.Float64("frame-length", 0, "analysis frame length in seconds")
	f.Float64("hop-length", 0, "frame hop in seconds")
	f.Float64("onset", -1, "enter-speech probability threshold")
	f.Float64("offset", -1, "exit-speech probability threshold")
	f.Float64("min-speech", -1, "minimum speech duration in seconds")
	f.Float64("min-silence-gap", -1, "silence runs shorter than this are bridged")
	f.Float64("padding", -1, "seconds added to each segment boundary")
	f.Float64("smoothing", -1, "EMA weight for the local energy scorer")
	f.Bool("transcribe", false, "transcribe detected segments")
	f.Int("concurrency", 0, "parallel transcription calls")
	f.String("vad-url", "", "VAD model service URL (empty: local energy scorer)")
	f.String("transcribe-url", "", "transcription service URL")
	f.String("reports", "", "report output directory")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	conf, err := cfg.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, conf)
	setupLogging(conf.Pipeline.LogLvl)

	token := viper.GetString("hf_token")
	scorer, model := buildScorer(conf, token)
	transcriber, err := buildTranscriber(conf, token)
	if err != nil {
		return err
	}

	log := logrus.WithField("pipeline", conf.Pipeline.Name)
	p, err := orchestrator.NewPipeline(conf, scorer, transcriber, model, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := p.Run(ctx, args[0])
	if err != nil {
		return err
	}

	path, err := orchestrator.WriteReport(conf.Paths.Reports, report)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.WithFields(logrus.Fields{
		"report":   path,
		"segments": report.Metadata.SegmentsCount,
	}).Info("report written")
	fmt.Println(path)
	return nil
}

// applyFlags overrides config values with explicitly set CLI flags.
func applyFlags(cmd *cobra.Command, c *cfg.Root) {
	f := cmd.Flags()
	if f.Changed("sample-rate") {
		c.Audio.SampleRate, _ = f.GetInt("sample-rate")
	}
	if f.Changed("frame-length") {
		c.Frames.LengthS, _ = f.GetFloat64("frame-length")
	}
	if f.Changed("hop-length") {
		c.Frames.HopS, _ = f.GetFloat64("hop-length")
	}
	if f.Changed("onset") {
		c.Detection.OnsetThreshold, _ = f.GetFloat64("onset")
	}
	if f.Changed("offset") {
		c.Detection.OffsetThreshold, _ = f.GetFloat64("offset")
	}
	if f.Changed("min-speech") {
		c.Detection.MinSpeechS, _ = f.GetFloat64("min-speech")
	}
	if f.Changed("min-silence-gap") {
		c.Detection.MinSilenceGapS, _ = f.GetFloat64("min-silence-gap")
	}
	if f.Changed("padding") {
		c.Detection.PaddingS, _ = f.GetFloat64("padding")
	}
	if f.Changed("smoothing") {
		c.Detection.Smoothing, _ = f.GetFloat64("smoothing")
	}
	if f.Changed("transcribe") {
		c.Transcription.Enabled, _ = f.GetBool("transcribe")
	}
	if f.Changed("concurrency") {
		c.Transcription.Concurrency, _ = f.GetInt("concurrency")
	}
	if f.Changed("vad-url") {
		c.Services.VAD.URL, _ = f.GetString("vad-url")
	}
	if f.Changed("transcribe-url") {
		c.Services.Transcription.URL, _ = f.GetString("transcribe-url")
	}
	if f.Changed("reports") {
		c.Paths.Reports, _ = f.GetString("reports")
	}
}

func buildScorer(c *cfg.Root, token string) (vad.Scorer, string) {
	if c.Services.VAD.URL != "" {
		if c.Services.VAD.Token != "" {
			token = c.Services.VAD.Token
		}
		h := clients.NewHTTP(token)
		return vad.NewRemoteScorer(h, c.Services.VAD.URL, c.Audio.SampleRate), "remote-vad"
	}
	return vad.NewEnergyScorer(c.Detection.Smoothing), "energy"
}

func buildTranscriber(c *cfg.Root, token string) (transcribe.Transcriber, error) {
	if !c.Transcription.Enabled {
		return nil, nil
	}
	if c.Services.Transcription.URL == "" {
		return nil, fmt.Errorf("%w: transcription enabled but services.transcription.url is empty", cfg.ErrInvalid)
	}
	if c.Services.Transcription.Token != "" {
		token = c.Services.Transcription.Token
	}
	h := clients.NewHTTP(token)
	return transcribe.NewRemoteTranscriber(h, c.Services.Transcription.URL, c.Transcription.MaxAttempts), nil
}
