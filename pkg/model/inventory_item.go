package model

import "strings"

// InventoryItem is one hardware component from "show inventory" or a
// synthesized transceiver entry (name "Transceiver <interface>").
type InventoryItem struct {
	Name         string `json:"name" mapstructure:"name"`
	Description  string `json:"description" mapstructure:"description"`
	PID          string `json:"pid" mapstructure:"pid"`
	VID          string `json:"vid" mapstructure:"vid"`
	Serial       string `json:"serial" mapstructure:"serial"`
	Manufacturer string `json:"manufacturer" mapstructure:"-"`
	Hostname     string `json:"hostname" mapstructure:"-"`
}

var inventoryAliases = map[string][]string{
	"name":        {"component", "item_name"},
	"description": {"descr", "desc"},
	"pid":         {"product_id", "part_number", "part"},
	"vid":         {"version_id", "hardware_version"},
	"serial":      {"sn", "serial_number"},
}

// InventoryItemFromRaw builds an InventoryItem from a parser row and
// derives the manufacturer from its PID.
func InventoryItemFromRaw(raw map[string]string) (*InventoryItem, error) {
	r := resolveKeys(raw, inventoryAliases)
	var item InventoryItem
	if err := decodeRaw(r, &item); err != nil {
		return nil, err
	}
	item.Name = strings.TrimSpace(item.Name)
	item.PID = strings.TrimSpace(item.PID)
	item.Serial = strings.TrimSpace(item.Serial)
	item.Manufacturer = ManufacturerFromPID(item.PID)
	return &item, nil
}

// pidPrefixes maps product-id prefixes to manufacturers. An
// unrecognized PID yields an empty manufacturer, never a guess.
var pidPrefixes = []struct {
	prefix       string
	manufacturer string
}{
	{"WS-", "Cisco"},
	{"C9", "Cisco"},
	{"N9K", "Cisco"},
	{"N7K", "Cisco"},
	{"N5K", "Cisco"},
	{"ISR", "Cisco"},
	{"ASR", "Cisco"},
	{"SFP-", "Cisco"},
	{"GLC-", "Cisco"},
	{"XENPAK", "Cisco"},
	{"DCS-", "Arista"},
	{"ARISTA", "Arista"},
	{"EX", "Juniper"},
	{"QFX", "Juniper"},
	{"MX", "Juniper"},
	{"FINISAR", "Finisar"},
	{"FTLX", "Finisar"},
	{"INTEL", "Intel"},
}

// ManufacturerFromPID derives the manufacturer from a product id prefix.
func ManufacturerFromPID(pid string) string {
	p := strings.ToUpper(strings.TrimSpace(pid))
	if p == "" {
		return ""
	}
	for _, e := range pidPrefixes {
		if strings.HasPrefix(p, e.prefix) {
			return e.manufacturer
		}
	}
	return ""
}

// TransceiverManufacturer derives the manufacturer of a transceiver.
// The vendor-reported name field ("CISCO-FINISAR", "OEM") takes
// precedence over the PID; OEM means the real manufacturer is unknown.
func TransceiverManufacturer(vendorName, pid string) string {
	n := strings.ToUpper(strings.TrimSpace(vendorName))
	switch {
	case strings.HasPrefix(n, "CISCO"):
		return "Cisco"
	case n == "FINISAR" || strings.HasPrefix(n, "FINISAR"):
		return "Finisar"
	case n == "OEM":
		return ""
	}
	return ManufacturerFromPID(pid)
}
