package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteReport serializes the report under reportsRoot as
// <source-stem>_vad_<run-id>.json and returns the written path. The caller
// owns the output location; the pipeline itself never writes.
func WriteReport(reportsRoot string, r *Report) (string, error) {
	if err := os.MkdirAll(reportsRoot, 0o755); err != nil {
		return "", err
	}
	stem := strings.TrimSuffix(filepath.Base(r.Metadata.Source), filepath.Ext(r.Metadata.Source))
	if stem == "" {
		stem = "source"
	}
	short := r.RunID
	if len(short) > 8 {
		short = short[:8]
	}
	path := filepath.Join(reportsRoot, fmt.Sprintf("%s_vad_%s.json", stem, short))
	if err := writeJSON(path, r); err != nil {
		return "", err
	}
	return path, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
