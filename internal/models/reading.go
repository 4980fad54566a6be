// Package models defines data structures and domain types.
package models

import "time"

// BatteryReading is a single timestamped battery sample for a device,
// as delivered by the fleet API and cached locally. Timestamp is epoch
// milliseconds; readings are not guaranteed to arrive sorted or unique.
type BatteryReading struct {
	DeviceID       string   `json:"deviceId"`
	PercentCharged float64  `json:"percentCharged"`
	BatteryVoltage *float64 `json:"batteryVoltage,omitempty"`
	Timestamp      int64    `json:"timestamp"`
}

// Time returns the reading timestamp as a time.Time.
func (r BatteryReading) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// HasVoltage returns true if the reading carries a voltage sample.
func (r BatteryReading) HasVoltage() bool {
	return r.BatteryVoltage != nil
}

// Voltage returns the voltage sample, or 0 if none was reported.
func (r BatteryReading) Voltage() float64 {
	if r.BatteryVoltage == nil {
		return 0
	}
	return *r.BatteryVoltage
}
