// Package fdio provides readiness waiting and raw I/O on file descriptors.
//
// It is the only blocking layer of the side and back channels. Everything
// above it is computation plus a single system call per step.
//
// # Timeouts
//
// All waits take a time.Duration with the following meaning:
//   - negative (Forever): block until the descriptor is ready
//   - zero: poll once and return immediately
//   - positive: block up to that long
//
// # Interruptions
//
// EINTR and EAGAIN are retried internally and never reach the caller.
// Every other failure is reported as wire.ErrIO wrapping the errno.
package fdio
