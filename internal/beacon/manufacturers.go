package beacon

// LookupManufacturer returns a human-readable name for a Bluetooth SIG company ID.
// See: https://www.bluetooth.com/specifications/assigned-numbers/
func LookupManufacturer(companyID uint16) string {
	if name, ok := companyNames[companyID]; ok {
		return name
	}
	return ""
}

// Vendors that commonly ship beacons or beacon-capable modules.
var companyNames = map[uint16]string{
	0x004C: "Apple",
	0x0006: "Microsoft",
	0x00E0: "Google",
	0x0075: "Samsung",
	0x0059: "Nordic",
	0x000D: "Texas Inst.",
	0x000F: "Broadcom",
	0x000A: "Qualcomm",
	0x0002: "Intel",
	0x0118: "Radius Networks",
	0x015D: "Estimote",
	0x0499: "Ruuvi",
	0x02E5: "Espressif",
}
