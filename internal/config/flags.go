package config

import (
	"flag"
	"os"
)

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagWinding = flag.String("winding", "", "Index winding: forward or mirrored")
	flagJobs    = flag.Int("jobs", 0, "Number of concurrent build workers")
	flagLogFile = flag.String("log-file", "", "Write logs to this file as well")
)

// ParseFlags parses command-line flags and returns the positional arguments.
// Flags may appear before or after the first required positional arguments,
// so "<tool> <source> <target> -winding mirrored" is accepted.
func ParseFlags(required int) []string {
	return parseFlags(flag.CommandLine, os.Args[1:], required)
}

func parseFlags(fs *flag.FlagSet, args []string, required int) []string {
	fs.Parse(args)

	var positional []string
	for {
		rest := fs.Args()
		for len(rest) > 0 && len(positional) < required {
			positional = append(positional, rest[0])
			rest = rest[1:]
		}
		if len(rest) == 0 || len(positional) < required {
			return append(positional, rest...)
		}
		fs.Parse(rest)
		if len(fs.Args()) == len(rest) {
			// Nothing more was consumed as a flag.
			return append(positional, rest...)
		}
	}
}

// ConfigPath returns the explicit config path if provided via -config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWinding != "" {
		cfg.Build.Winding = *flagWinding
	}
	if *flagJobs > 0 {
		cfg.Build.Jobs = *flagJobs
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
