package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/gascontrol/internal/config"
)

// Command gascontrol manages gasometers and their readings against the
// GasControl REST backend.
//
// Usage:
//
//	gascontrol [flags] <command> [command flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
//
// The commands are:
//
//	login       store a session token after checking credentials
//	logout      forget the session token
//	dashboard   trailing window statistics and the consumption chart
//	gasometers  list, show, create, update or delete gasometers
//	readings    list, show, create, update or delete readings
//	export      write the dashboard as an xlsx or pdf report
//	watch       refresh the dashboard on a schedule and serve health and metrics
func main() {
	cfg := parseFlags()

	appConfig, err := loadConfig(cfg.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	logger := appConfig.Logging.NewLogger()
	logger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(appConfig, logger, os.Stdout)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialise")
	}

	if err := app.run(ctx, cfg.Args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type Config struct {
	ConfigPath string
	Args       []string
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.ConfigPath, "config", defaultConfigPath, "Path to config file")
	flag.Usage = func() { usage(flag.CommandLine.Output()) }

	flag.Parse()
	cfg.Args = flag.Args()

	return cfg
}

const defaultConfigPath = "config.yaml"

// loadConfig tolerates a missing default config file; defaults and the
// environment then apply alone.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Load("")
		}
	}
	return config.Load(path)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `Usage: gascontrol [-config path] <command> [flags]

Commands:
  login       -u <username> -p <password>
  logout
  dashboard   [-window 7|15|30|90] [-from YYYY-MM-DD -to YYYY-MM-DD]
  gasometers  list [-search text] [-page n] | show <id>
              create -code <code> -apartment <id>
              update <id> [-code <code>] [-apartment <id>] | delete <id>
  readings    list [-search text] [-periodicity p] [-page n] | show <id>
              create -gasometer <id> -date YYYY-MM-DD -consumption m3 -periodicity p
              update <id> [flags as create] | delete <id>
  export      -format xlsx|pdf -out <file> [-window n] [-from d -to d]
  watch       refresh on a schedule, serve gRPC health and /metrics`)
}

// logFields is a shorthand used by the watch command.
func logFields(host string, port int) logrus.Fields {
	return logrus.Fields{"host": host, "port": port}
}
