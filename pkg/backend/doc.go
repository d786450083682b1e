// Package backend implements the device side of the side channel: a Server
// that reads filter requests from the side-channel descriptor and answers
// each one through a Handler.
//
// A Mux routes requests by command and answers commands it has no handler
// for with StatusNotImplemented. Device builds a Mux from static device
// facts and an SNMP MIB table:
//
//	table := backend.NewMIB()
//	table.Set(mib.SysDescr, []byte("Acme Laser 9"))
//
//	dev := &backend.Device{
//		DeviceID: "MFG:Acme;MDL:Laser 9;",
//		State:    wire.StateOnline,
//		Bidi:     true,
//		MIB:      table,
//	}
//
//	srv := backend.NewServer(fdio.FD(fdio.SideChannelFD), dev.Mux(), backend.Config{})
//	err := srv.Serve(ctx)
package backend
