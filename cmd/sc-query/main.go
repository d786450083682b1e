// Command sc-query sends side-channel requests from the filter side of a
// print pipeline and prints the replies.
//
// Usage:
//
//	sc-query [flags] <command> [args]
//	sc-query [flags] -interactive
//
// Commands:
//
//	reset              Soft-reset the device
//	drain              Wait for queued output to reach the device
//	bidi               Report whether the back channel is supported
//	device-id          Print the IEEE-1284 device ID
//	state              Print the device state flags
//	connected          Report whether the device is connected
//	community          Print the SNMP community name
//	get <oid|name>     Fetch one SNMP value
//	walk <oid|name>    Print every SNMP value under an OID
//	read [size]        Read pending back-channel data
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/printpipe/sidechannel-go/cmd/sc-query/interactive"
	"github.com/printpipe/sidechannel-go/internal/config"
	"github.com/printpipe/sidechannel-go/internal/query"
	"github.com/printpipe/sidechannel-go/pkg/backchannel"
	"github.com/printpipe/sidechannel-go/pkg/fdio"
	sclog "github.com/printpipe/sidechannel-go/pkg/log"
	"github.com/printpipe/sidechannel-go/pkg/sidechannel"
)

var (
	configFile  = flag.String("config", "", "Path to YAML configuration file")
	sideFD      = flag.Int("side-fd", fdio.SideChannelFD, "Side-channel file descriptor")
	backFD      = flag.Int("back-fd", fdio.BackChannelFD, "Back-channel file descriptor")
	protocolLog = flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	interact    = flag.Bool("interactive", false, "Start an interactive shell")
	timeout     = config.DefaultTimeout
)

func init() {
	flag.Var(&timeout, "timeout", "Per-request timeout (duration, or 'forever')")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <command> [args]\n\nCommands:\n", os.Args[0])
	for _, c := range query.Commands() {
		name := c.Name
		if c.Args != "" {
			name += " " + c.Args
		}
		fmt.Fprintf(os.Stderr, "  %-18s %s\n", name, c.Usage)
	}
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if !*interact && flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		fail(err)
	}

	capture, err := cfg.OpenCapture(logger)
	if err != nil {
		fail(fmt.Errorf("failed to create protocol logger: %w", err))
	}
	defer capture.Close()

	runner := &query.Runner{
		Side: sidechannel.New(fdio.FD(cfg.SideChannelFD), sidechannel.Config{
			Logger:         logger,
			ProtocolLogger: capture.Logger,
			Role:           sclog.RoleFilter,
		}),
		Back: backchannel.New(fdio.FD(cfg.BackChannelFD), backchannel.Config{
			Logger:         logger,
			ProtocolLogger: capture.Logger,
			Role:           sclog.RoleFilter,
		}),
		Timeout: cfg.Timeout.Duration(),
		Out:     os.Stdout,
	}

	if *interact {
		runInteractive(runner, cfg)
		return
	}

	if err := runner.Run(flag.Args()); err != nil {
		capture.Close()
		if errors.Is(err, query.ErrUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			flag.Usage()
			os.Exit(2)
		}
		fail(err)
	}
}

func runInteractive(runner *query.Runner, cfg *config.Config) {
	shell, err := interactive.New(runner)
	if err != nil {
		fail(err)
	}

	log.SetOutput(shell.Stderr())
	log.SetFlags(log.Ltime)
	log.Printf("Side channel fd %d, back channel fd %d, timeout %s",
		cfg.SideChannelFD, cfg.BackChannelFD, cfg.Timeout)
	if cfg.ProtocolLog != "" {
		log.Printf("Protocol logging to: %s", cfg.ProtocolLog)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()
	shell.Run(ctx)
}

// loadConfig reads -config when given and applies the flags that were set
// explicitly on top of it.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return nil, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "side-fd":
			cfg.SideChannelFD = *sideFD
		case "back-fd":
			cfg.BackChannelFD = *backFD
		case "timeout":
			cfg.Timeout = timeout
		case "protocol-log":
			cfg.ProtocolLog = *protocolLog
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
