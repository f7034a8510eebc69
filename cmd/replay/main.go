package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/rgbdio/replay/internal/config"
	"github.com/rgbdio/replay/internal/logger"
	"github.com/rgbdio/replay/pkg/version"
)

const usage = `Usage: replay <command> [flags] <path>

Commands:
  info    print stream metadata for a recording and exit
  play    replay a recording to end of stream
  serve   replay a recording and expose the session over HTTP
  version print version information

Run 'replay <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "play":
		err = runPlay(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "version", "-version", "--version":
		fmt.Println(version.GetInfo().String())
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "replay: unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file when one is given, otherwise serves the
// built-in defaults so single recordings can be played without any setup.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	return log, nil
}
