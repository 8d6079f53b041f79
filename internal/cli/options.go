// Package cli handles command-line interface concerns: flag parsing
// and signal-driven cancellation.
package cli

import (
	"flag"
	"fmt"
	"os"
)

// Options holds parsed command-line flags.
type Options struct {
	ConfigPath string
	Output     string
	Workers    int
	Verify     bool

	Quiet   bool
	Verbose bool
	NoColor bool
	Version bool
	Help    bool
}

// ParseFlags parses os.Args and returns the options plus the positional
// arguments (the APK path).
func ParseFlags() (*Options, []string) {
	opts := &Options{}

	flag.StringVar(&opts.ConfigPath, "c", "", "Path to dexscan.yaml (defaults apply when omitted)")
	flag.StringVar(&opts.ConfigPath, "config", "", "Path to dexscan.yaml (defaults apply when omitted)")
	flag.StringVar(&opts.Output, "o", "", "Write the JSON report to a file instead of stdout")
	flag.StringVar(&opts.Output, "output", "", "Write the JSON report to a file instead of stdout")
	flag.IntVar(&opts.Workers, "workers", 0, "Concurrent DEX shard decodes (0 = serial)")
	flag.BoolVar(&opts.Verify, "verify", false, "Verify the APK signature and report the certificate fingerprint")
	flag.BoolVar(&opts.Quiet, "q", false, "Suppress status output (report only)")
	flag.BoolVar(&opts.Quiet, "quiet", false, "Suppress status output (report only)")
	flag.BoolVar(&opts.Verbose, "verbose", false, "Print per-class decode detail")
	flag.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&opts.Version, "version", false, "Print version and exit")
	flag.BoolVar(&opts.Help, "h", false, "Show help")
	flag.BoolVar(&opts.Help, "help", false, "Show help")
	flag.Usage = Usage

	flag.Parse()
	return opts, flag.Args()
}

// Usage prints command usage to stderr.
func Usage() {
	fmt.Fprintf(os.Stderr, `Usage: dexscan [flags] <app.apk>

Extracts class and method metadata from the APK's DEX shards and emits
a normalized, deduplicated class list as JSON for bridge generation.

Flags:
`)
	flag.PrintDefaults()
}
