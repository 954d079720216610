package collector

import (
	"time"

	"github.com/netsync-network/netsync/pkg/model"
)

// RunStatus summarizes a whole collection run.
type RunStatus string

const (
	// StatusSuccess: every device was collected without error.
	StatusSuccess RunStatus = "success"
	// StatusPartial: some devices succeeded, some failed or were never
	// attempted.
	StatusPartial RunStatus = "partial"
	// StatusError: no device succeeded.
	StatusError RunStatus = "error"
)

// DeviceResult holds everything collected from one device, or the
// reason nothing was. A device that was never dialed because the run
// was cancelled has Attempted false.
type DeviceResult struct {
	Host      string         `json:"host"`
	Hostname  string         `json:"hostname,omitempty"`
	Platform  model.Platform `json:"platform"`
	Attempted bool           `json:"attempted"`
	Err       error          `json:"-"`
	Error     string         `json:"error,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
	Duration  time.Duration  `json:"duration"`

	Info       *model.DeviceInfo      `json:"device_info,omitempty"`
	Interfaces []*model.Interface     `json:"interfaces,omitempty"`
	MACTable   []*model.MACEntry      `json:"mac_table,omitempty"`
	Neighbors  []*model.Neighbor      `json:"neighbors,omitempty"`
	Inventory  []*model.InventoryItem `json:"inventory,omitempty"`
	IPs        []*model.IPAddress     `json:"ip_addresses,omitempty"`
}

// OK reports whether the device was fully collected. Warnings (an
// entity that parsed partially) do not make a device failed.
func (r *DeviceResult) OK() bool {
	return r.Attempted && r.Err == nil
}

// Aggregate is the outcome of one run over a device list.
type Aggregate struct {
	Results  []*DeviceResult `json:"results"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
}

// Succeeded counts fully collected devices.
func (a *Aggregate) Succeeded() int {
	n := 0
	for _, r := range a.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

// Failed counts devices that were attempted and errored.
func (a *Aggregate) Failed() int {
	n := 0
	for _, r := range a.Results {
		if r.Attempted && r.Err != nil {
			n++
		}
	}
	return n
}

// Skipped counts devices never attempted (run cancelled first).
func (a *Aggregate) Skipped() int {
	n := 0
	for _, r := range a.Results {
		if !r.Attempted {
			n++
		}
	}
	return n
}

// Status folds the per-device outcomes onto one run status. An empty
// run is a success.
func (a *Aggregate) Status() RunStatus {
	if a.Failed() == 0 && a.Skipped() == 0 {
		return StatusSuccess
	}
	if a.Succeeded() > 0 {
		return StatusPartial
	}
	return StatusError
}
