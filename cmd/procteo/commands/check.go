package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maastricht-university/procteo-audio/clients"
	cfg "github.com/maastricht-university/procteo-audio/config"
)

const checkTimeout = 10 * time.Second

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration and remote service reachability",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// CheckItem is one prerequisite verdict.
type CheckItem struct {
	Name   string
	OK     bool
	Detail string
}

func runCheck(cmd *cobra.Command, args []string) error {
	conf, err := cfg.Load()
	if err != nil {
		return err
	}
	setupLogging(conf.Pipeline.LogLvl)
	token := viper.GetString("hf_token")

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	failed := 0
	for _, it := range runChecks(ctx, conf, token) {
		mark := "ok"
		if !it.OK {
			mark = "FAIL"
			failed++
		}
		fmt.Printf("%-22s %-4s %s\n", it.Name, mark, it.Detail)
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

// runChecks evaluates the prerequisites for a run: config sanity, token
// availability and remote service reachability. Services without a
// configured URL are reported, not failed.
func runChecks(ctx context.Context, conf *cfg.Root, token string) []CheckItem {
	var items []CheckItem

	if err := conf.Validate(); err != nil {
		items = append(items, CheckItem{Name: "config", Detail: err.Error()})
	} else {
		items = append(items, CheckItem{Name: "config", OK: true})
	}

	if token != "" {
		items = append(items, CheckItem{Name: "token", OK: true})
	} else {
		items = append(items, CheckItem{Name: "token", OK: true, Detail: "not set"})
	}

	items = append(items, checkService(ctx, "vad-service", conf.Services.VAD, token,
		"not configured, local energy scorer will be used"))

	switch {
	case conf.Transcription.Enabled && conf.Services.Transcription.URL == "":
		items = append(items, CheckItem{
			Name:   "transcription-service",
			Detail: "transcription enabled but services.transcription.url is empty",
		})
	case conf.Transcription.Enabled || conf.Services.Transcription.URL != "":
		items = append(items, checkService(ctx, "transcription-service",
			conf.Services.Transcription, token, "not configured"))
	}
	return items
}

func checkService(ctx context.Context, name string, svc cfg.Service, token, absent string) CheckItem {
	if svc.URL == "" {
		return CheckItem{Name: name, OK: true, Detail: absent}
	}
	if svc.Token != "" {
		token = svc.Token
	}
	if err := clients.NewHTTP(token).Health(ctx, svc.URL); err != nil {
		return CheckItem{Name: name, Detail: err.Error()}
	}
	return CheckItem{Name: name, OK: true, Detail: svc.URL}
}
