// Package models defines data structures and domain types.
package models

import "time"

// Device represents a registered device in the local registry file.
type Device struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Kind    string    `json:"kind,omitempty"` // e.g. "sensor", "tracker", "camera"
	Tags    []string  `json:"tags,omitempty"`
	AddedAt time.Time `json:"addedAt,omitempty"`
}

// DisplayName returns the name, falling back to the ID.
func (d Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// DeviceStatus is the last-fetched remote status for a device.
type DeviceStatus struct {
	LastUpdated    time.Time `json:"lastUpdated"`
	LastSeen       time.Time `json:"lastSeen,omitempty"`
	DeviceID       string    `json:"deviceId"`
	Firmware       string    `json:"firmware,omitempty"`
	Error          string    `json:"error,omitempty"`
	PercentCharged float64   `json:"percentCharged"`
	BatteryVoltage float64   `json:"batteryVoltage,omitempty"`
	IsCharging     bool      `json:"isCharging,omitempty"`
	Online         bool      `json:"online"`
}

// DeviceWithStatus pairs a registry entry with its cached remote status
// for presentation.
type DeviceWithStatus struct {
	Device     Device
	Status     *DeviceStatus
	IsSelected bool
}
