package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rgbdio/replay/internal/logger"
	"github.com/rgbdio/replay/internal/reader"
)

// runInfo opens a recording just long enough to read its metadata and
// prints the record as JSON.
func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("info: expected exactly one recording path")
	}
	path := fs.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	r := reader.New(cfg.Reader, logger.NewNullLogger())
	if err := r.Open(path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	out, err := r.Metadata().JSON()
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = fmt.Fprintf(os.Stdout, "%s\n", out)
	return err
}
