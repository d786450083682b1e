// Package mib names the MIB-II, Host Resources and Printer MIB objects
// that print filters query through the side channel, and orders numeric
// OIDs the way an SNMP agent walks them.
//
// OIDs are written in the leading-dot form the side channel carries,
// for example ".1.3.6.1.2.1.43".
package mib

const (
	// --- MIB-II System (RFC 1213) ---

	// System is the MIB-II system group.
	System = ".1.3.6.1.2.1.1"
	// SysDescr is a human-readable description of the device.
	SysDescr = ".1.3.6.1.2.1.1.1.0"
	// SysObjectID is the vendor's authoritative identification.
	SysObjectID = ".1.3.6.1.2.1.1.2.0"
	// SysUpTime is the time since re-initialization, in hundredths of a second.
	SysUpTime = ".1.3.6.1.2.1.1.3.0"
	// SysContact identifies the contact person for the device.
	SysContact = ".1.3.6.1.2.1.1.4.0"
	// SysName is the administratively assigned name.
	SysName = ".1.3.6.1.2.1.1.5.0"
	// SysLocation is the physical location of the device.
	SysLocation = ".1.3.6.1.2.1.1.6.0"
)

const (
	// --- Host Resources MIB (RFC 2790) ---

	// HrDeviceDescr is hrDeviceDescr.1.
	HrDeviceDescr = ".1.3.6.1.2.1.25.3.2.1.3.1"
	// HrDeviceStatus is hrDeviceStatus.1 (1=unknown, 2=running, 3=warning, 4=testing, 5=down).
	HrDeviceStatus = ".1.3.6.1.2.1.25.3.2.1.5.1"
	// HrPrinterStatus is hrPrinterStatus.1 (1=other, 2=unknown, 3=idle, 4=printing, 5=warmup).
	HrPrinterStatus = ".1.3.6.1.2.1.25.3.5.1.1.1"
	// HrPrinterDetectedErrorState is the hrPrinterDetectedErrorState.1 bit string.
	HrPrinterDetectedErrorState = ".1.3.6.1.2.1.25.3.5.1.2.1"
)

const (
	// --- Printer MIB (RFC 3805) ---

	// Printer is the root of the Printer MIB.
	Printer = ".1.3.6.1.2.1.43"
	// PrtGeneralCurrentLocalization is prtGeneralCurrentLocalization.1.
	PrtGeneralCurrentLocalization = ".1.3.6.1.2.1.43.5.1.1.1.1"
	// PrtGeneralPrinterName is prtGeneralPrinterName.1.
	PrtGeneralPrinterName = ".1.3.6.1.2.1.43.5.1.1.16.1"
	// PrtGeneralSerialNumber is prtGeneralSerialNumber.1.
	PrtGeneralSerialNumber = ".1.3.6.1.2.1.43.5.1.1.17.1"
	// PrtMarkerLifeCount is prtMarkerLifeCount.1.1, the page counter.
	PrtMarkerLifeCount = ".1.3.6.1.2.1.43.10.2.1.4.1.1"
	// PrtMarkerSuppliesTable is the root of the supplies table.
	PrtMarkerSuppliesTable = ".1.3.6.1.2.1.43.11.1.1"
	// PrtMarkerSuppliesDescription describes each supply.
	PrtMarkerSuppliesDescription = ".1.3.6.1.2.1.43.11.1.1.6"
	// PrtMarkerSuppliesMaxCapacity is each supply's maximum capacity.
	PrtMarkerSuppliesMaxCapacity = ".1.3.6.1.2.1.43.11.1.1.8"
	// PrtMarkerSuppliesLevel is each supply's current level.
	PrtMarkerSuppliesLevel = ".1.3.6.1.2.1.43.11.1.1.9"
	// PrtAlertTable is the root of the alert table.
	PrtAlertTable = ".1.3.6.1.2.1.43.18.1.1"
)

// names maps lower-cased object names to OIDs for Lookup.
var names = map[string]string{
	"system":                        System,
	"sysdescr":                      SysDescr,
	"sysobjectid":                   SysObjectID,
	"sysuptime":                     SysUpTime,
	"syscontact":                    SysContact,
	"sysname":                       SysName,
	"syslocation":                   SysLocation,
	"hrdevicedescr":                 HrDeviceDescr,
	"hrdevicestatus":                HrDeviceStatus,
	"hrprinterstatus":               HrPrinterStatus,
	"hrprinterdetectederrorstate":   HrPrinterDetectedErrorState,
	"printer":                       Printer,
	"prtgeneralcurrentlocalization": PrtGeneralCurrentLocalization,
	"prtgeneralprintername":         PrtGeneralPrinterName,
	"prtgeneralserialnumber":        PrtGeneralSerialNumber,
	"prtmarkerlifecount":            PrtMarkerLifeCount,
	"prtmarkersuppliestable":        PrtMarkerSuppliesTable,
	"prtmarkersuppliesdescription":  PrtMarkerSuppliesDescription,
	"prtmarkersuppliesmaxcapacity":  PrtMarkerSuppliesMaxCapacity,
	"prtmarkersupplieslevel":        PrtMarkerSuppliesLevel,
	"prtalerttable":                 PrtAlertTable,
}
