// Command sc-backend-sim plays the backend side of a print pipeline. It
// answers side-channel requests for a device described in a YAML file and
// can announce a status string on the back channel.
//
// Usage:
//
//	sc-backend-sim -config device.yaml [flags]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/printpipe/sidechannel-go/internal/config"
	"github.com/printpipe/sidechannel-go/pkg/backchannel"
	"github.com/printpipe/sidechannel-go/pkg/backend"
	"github.com/printpipe/sidechannel-go/pkg/fdio"
	sclog "github.com/printpipe/sidechannel-go/pkg/log"
)

var (
	configFile  = flag.String("config", "", "Path to YAML device description")
	sideFD      = flag.Int("side-fd", fdio.SideChannelFD, "Side-channel file descriptor")
	backFD      = flag.Int("back-fd", fdio.BackChannelFD, "Back-channel file descriptor")
	protocolLog = flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	setupLogging(cfg.LogLevel)

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	capture, err := cfg.OpenCapture(logger)
	if err != nil {
		log.Fatalf("Failed to create protocol logger: %v", err)
	}
	defer capture.Close()

	log.Println("Side Channel Backend Simulator")
	log.Println("==============================")
	log.Printf("Side channel fd: %d", cfg.SideChannelFD)
	log.Printf("Back channel fd: %d", cfg.BackChannelFD)
	if cfg.DeviceID != "" {
		log.Printf("Device ID: %s", cfg.DeviceID)
	}
	log.Printf("State: %s", cfg.State)
	if cfg.ProtocolLog != "" {
		log.Printf("Protocol logging to: %s", cfg.ProtocolLog)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	served, err := run(ctx, cfg, logger, capture.Logger)
	log.Printf("Answered %d request(s)", served)
	if err != nil && ctx.Err() == nil {
		capture.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run writes the configured back-channel data and serves the side channel
// until the filter closes it or ctx is done.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, capture sclog.Logger) (int, error) {
	dev, err := cfg.Device()
	if err != nil {
		return 0, err
	}

	if cfg.BackChannelData != "" {
		back := backchannel.New(fdio.FD(cfg.BackChannelFD), backchannel.Config{
			Logger:         logger,
			ProtocolLogger: capture,
			Role:           sclog.RoleBackend,
		})
		if _, err := back.Write([]byte(cfg.BackChannelData), cfg.Timeout.Duration()); err != nil {
			return 0, fmt.Errorf("back channel: %w", err)
		}
	}

	reply := cfg.Timeout.Duration()
	srv := backend.NewServer(fdio.FD(cfg.SideChannelFD), dev.Mux(), backend.Config{
		Logger:         logger,
		ProtocolLogger: capture,
		ReplyTimeout:   &reply,
	})
	err = srv.Serve(ctx)
	return srv.Served(), err
}

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

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}
