// Package sidechannel implements the filter side of the printer side
// channel: a framed request/response conversation carried on an inherited
// descriptor between a print filter and the backend driving the device.
//
// A Channel sends one request frame and reads one reply frame per round
// trip. Every blocking step is bounded by a timeout: a negative timeout
// waits forever and zero polls once without blocking.
//
// Basic usage:
//
//	ch := sidechannel.New(fdio.FD(fdio.SideChannelFD), sidechannel.Config{})
//	id, err := ch.DeviceID(5 * time.Second)
//
// SNMP queries are relayed by the backend:
//
//	status, err := ch.SNMPWalk(".1.3.6.1.2.1.43", time.Second,
//		func(oid string, value []byte) {
//			fmt.Printf("%s = %q\n", oid, value)
//		})
//
// A Channel is not safe for concurrent round trips; callers serialize.
package sidechannel
