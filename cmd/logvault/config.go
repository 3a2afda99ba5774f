package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"logvault/internal/env"
)

const programName = "logvault"

type config struct {
	addr       string
	level      string
	maxRecords int
	quiet      bool
	envFile    string
}

// parseConfig reads flags from args. Any flag not given on the command line falls back
// to its LOGVAULT_* environment variable, which may come from the --env-file, and then
// to the built-in default.
func parseConfig(args []string, usageOut io.Writer) (config, error) {
	var cfg config

	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(usageOut)
	fs.StringVar(&cfg.addr, "addr", ":8080", "HTTP listen address (LOGVAULT_ADDR)")
	fs.StringVar(&cfg.level, "level", "debug", "Minimum level to accept (LOGVAULT_LEVEL)")
	fs.IntVar(&cfg.maxRecords, "max-records", 100000, "Records kept in memory (LOGVAULT_MAX_RECORDS)")
	fs.BoolVarP(&cfg.quiet, "quiet", "q", false, "Do not echo accepted records to stdout (LOGVAULT_QUIET)")
	fs.StringVar(&cfg.envFile, "env-file", ".env", "Optional KEY=value file to load")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if err := env.Load(cfg.envFile); err != nil {
		return cfg, fmt.Errorf("loading %s: %w", cfg.envFile, err)
	}

	if !fs.Changed("addr") {
		cfg.addr = env.GetString("LOGVAULT_ADDR", cfg.addr)
	}
	if !fs.Changed("level") {
		cfg.level = env.GetString("LOGVAULT_LEVEL", cfg.level)
	}
	if !fs.Changed("max-records") {
		cfg.maxRecords = env.GetInt("LOGVAULT_MAX_RECORDS", cfg.maxRecords)
	}
	if !fs.Changed("quiet") {
		cfg.quiet = env.GetBool("LOGVAULT_QUIET", cfg.quiet)
	}

	if cfg.maxRecords < 1 {
		return cfg, fmt.Errorf("--max-records must be positive, got %d", cfg.maxRecords)
	}
	return cfg, nil
}
