// Package log provides protocol capture for the side and back channels.
//
// This package defines the Logger interface and Event types for recording
// every frame and message that crosses a channel descriptor. It is separate
// from operational logging (slog): a capture is a complete machine-readable
// trace of the conversation between a filter and its backend.
//
// # Basic Usage
//
// Channels accept a Logger in their configuration:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/cups/filter.sclog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at three layers:
//   - Transport: raw frame bytes (FrameEvent) and back-channel bytes
//   - Wire: decoded side-channel messages (MessageEvent)
//   - Client: request level results such as walk steps (MessageEvent with OID)
//
// Errors at any layer have a dedicated ErrorEventData payload.
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with the .sclog
// extension. The sc-log tool views, filters and exports them.
package log
