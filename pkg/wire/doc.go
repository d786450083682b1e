// Package wire defines the side-channel wire format.
//
// Every side-channel message is a 4-byte header followed by data:
//
//	Byte(s)  Description
//	-------  -------------------------------------------
//	0        Command code
//	1        Status code
//	2-3      Data length (network byte order), 0..65535
//	4-N      Data
//
// Command and status codes 1-8 are wire compatible with the CUPS side
// channel; CmdSNMPCommunity and StatusBusy are extensions.
//
// # Trust Boundary
//
// The peer on the other end of the descriptor is not trusted. DecodeFrame
// checks the declared data length against both the caller's capacity and
// the number of bytes actually received before anything is copied.
package wire
