// Command dexscan extracts class and method metadata from an APK's DEX
// shards and emits the normalized class list consumed by bridge code
// generators.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dexbridge/dexscan/internal/apk"
	"github.com/dexbridge/dexscan/internal/bridge"
	"github.com/dexbridge/dexscan/internal/cli"
	"github.com/dexbridge/dexscan/internal/config"
	"github.com/dexbridge/dexscan/internal/ui"
)

var version = "dev"

func main() {
	sigHandler := cli.NewSignalHandler()
	defer sigHandler.Stop()

	os.Exit(run(sigHandler.Context()))
}

func run(ctx context.Context) int {
	opts, args := cli.ParseFlags()

	if opts.Help {
		cli.Usage()
		return 0
	}
	if opts.Version {
		fmt.Printf("dexscan version %s\n", version)
		return 0
	}
	if opts.NoColor {
		ui.SetNoColor(true)
	}
	if opts.Quiet {
		ui.SetQuietMode(true)
	}
	if opts.Verbose {
		ui.SetVerbosity(ui.VerbVerbose)
	}

	if len(args) != 1 {
		cli.Usage()
		return 1
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		ui.ErrorStatus("Error", err.Error())
		return 1
	}

	report, err := scan(ctx, args[0], cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		ui.ErrorStatus("Error", err.Error())
		return 1
	}

	if err := writeReport(report, cfg.Output); err != nil {
		ui.ErrorStatus("Error", err.Error())
		return 1
	}
	return 0
}

// loadConfig loads the YAML config (or defaults) and applies CLI flag
// overrides.
func loadConfig(opts *cli.Options) (*config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.Workers != 0 {
		cfg.Workers = opts.Workers
	}
	if opts.Verify {
		cfg.VerifySignature = true
	}
	if opts.Output != "" {
		cfg.Output = opts.Output
	}
	return cfg, cfg.Validate()
}

// Report is the JSON document handed to downstream tooling. Classes is
// the normalized bridge model; the rest is supplemental APK metadata.
type Report struct {
	Package         string         `json:"package,omitempty"`
	VersionName     string         `json:"versionName,omitempty"`
	VersionCode     int64          `json:"versionCode,omitempty"`
	Label           string         `json:"label,omitempty"`
	SHA256          string         `json:"sha256,omitempty"`
	CertFingerprint string         `json:"certFingerprint,omitempty"`
	Shards          int            `json:"shards"`
	ClassErrors     int            `json:"classErrors"`
	Classes         []bridge.Class `json:"classes"`
}

func scan(ctx context.Context, path string, cfg *config.Config) (*Report, error) {
	prog := ui.NewShardProgress()
	res, err := apk.ExtractClasses(ctx, path, apk.Options{
		Workers:  cfg.Workers,
		Progress: prog.Report,
	})
	if err != nil {
		return nil, err
	}
	for _, ce := range res.Errors {
		ui.Detail("Partial", ce.Error())
	}

	classes := bridge.Normalize(res.Classes, cfg.SystemPrefixes)
	ui.Status("Found", fmt.Sprintf("%d bridgeable classes across %d shards", len(classes), res.Shards))
	if n := len(res.Errors); n > 0 {
		ui.WarningStatus("Partial", fmt.Sprintf("%d classes decoded incompletely (rerun with --verbose for detail)", n))
	}

	report := &Report{
		Shards:      res.Shards,
		ClassErrors: len(res.Errors),
		Classes:     classes,
	}

	// Manifest metadata and signature info decorate the report; the
	// class list stands on its own if either is unavailable.
	if info, err := apk.ReadInfo(path); err == nil {
		report.Package = info.PackageID
		report.VersionName = info.VersionName
		report.VersionCode = info.VersionCode
		report.Label = info.Label
		report.SHA256 = info.SHA256
	} else {
		ui.WarningStatus("Warning", fmt.Sprintf("manifest metadata unavailable: %v", err))
	}

	if cfg.VerifySignature {
		fp, err := apk.CertFingerprint(path)
		if err != nil {
			ui.WarningStatus("Warning", fmt.Sprintf("signature verification failed: %v", err))
		} else {
			report.CertFingerprint = fp
			ui.Detail("Verified", fp)
		}
	}
	return report, nil
}

func writeReport(report *Report, output string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if output == "" {
		ui.Result(string(data))
		return nil
	}
	if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	ui.Status("Wrote", output)
	return nil
}
