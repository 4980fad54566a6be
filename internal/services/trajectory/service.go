// Package trajectory persists battery readings, produces depletion forecasts
// and runs the history retention sweep.
package trajectory

import (
	"fmt"
	"sync"
	"time"

	"github.com/roelvg/fleetpulse-tui/internal/battery"
	"github.com/roelvg/fleetpulse-tui/internal/db"
	"github.com/roelvg/fleetpulse-tui/internal/logger"
	"github.com/roelvg/fleetpulse-tui/internal/models"
)

// DeviceProvider is an interface for listing registered devices.
type DeviceProvider interface {
	GetDevices() []models.Device
}

// Report is a per-device forecast snapshot.
type Report struct {
	GeneratedAt   time.Time
	Prediction    *battery.Prediction
	DeviceID      string
	TimeRemaining string
	ReadingCount  int
}

// HasForecast reports whether a depletion forecast could be produced.
func (r *Report) HasForecast() bool {
	return r != nil && r.Prediction != nil
}

// Event represents a trajectory service event.
type Event struct {
	Error     error
	Report    *Report
	Retention *models.RetentionEvent
	DeviceID  string
	Type      EventType
}

// EventType defines the type of trajectory event.
type EventType int

const (
	// EventForecastUpdated indicates that a device forecast has been recomputed.
	EventForecastUpdated EventType = iota
	// EventHistoryCleared indicates that a device's cached history was deleted.
	EventHistoryCleared
	// EventError indicates a persistence or sweep failure.
	EventError
)

// Config holds configuration for the trajectory service.
type Config struct {
	SweepInterval time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		SweepInterval: 6 * time.Hour,
	}
}

// Service runs the battery trajectory analysis over the local reading cache.
// All history deletion decided by the analyzer happens here.
type Service struct {
	mu             sync.RWMutex
	db             *db.DB
	analyzer       *battery.Analyzer
	deviceProvider DeviceProvider
	reportCache    map[string]*Report
	eventChan      chan Event
	stopChan       chan struct{}
	config         Config
}

// New creates a trajectory service and starts the retention sweep goroutine.
func New(database *db.DB, analyzer *battery.Analyzer, provider DeviceProvider, config Config) *Service {
	if config.SweepInterval == 0 {
		config = DefaultConfig()
	}

	s := &Service{
		db:             database,
		analyzer:       analyzer,
		deviceProvider: provider,
		reportCache:    make(map[string]*Report),
		eventChan:      make(chan Event, 100),
		stopChan:       make(chan struct{}),
		config:         config,
	}

	go s.sweepLoop()

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// RecordReadings persists newly fetched readings and recomputes the device
// forecast. Duplicate readings are ignored by the cache.
func (s *Service) RecordReadings(deviceID string, readings []models.BatteryReading) (*Report, error) {
	if len(readings) > 0 {
		inserted, err := s.db.InsertBatteryReadings(readings)
		if err != nil {
			s.sendEvent(Event{Type: EventError, DeviceID: deviceID, Error: err})
			return nil, fmt.Errorf("failed to persist readings: %w", err)
		}
		if inserted > 0 {
			logger.Debug("cached battery readings", "device", deviceID, "inserted", inserted)
		}
	}

	return s.Refresh(deviceID)
}

// Refresh recomputes the forecast for a device from the cached history.
func (s *Service) Refresh(deviceID string) (*Report, error) {
	history, err := s.db.GetBatteryReadings(deviceID)
	if err != nil {
		s.sendEvent(Event{Type: EventError, DeviceID: deviceID, Error: err})
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	now := time.Now()
	prediction := s.analyzer.PredictDepletion(history, now)

	report := &Report{
		DeviceID:      deviceID,
		Prediction:    prediction,
		TimeRemaining: battery.FormatTimeRemaining(prediction, now),
		ReadingCount:  len(history),
		GeneratedAt:   now,
	}
	if prediction == nil {
		report.TimeRemaining = ""
	}

	s.mu.Lock()
	s.reportCache[deviceID] = report
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventForecastUpdated, DeviceID: deviceID, Report: report})

	return report, nil
}

// GetReport returns the cached forecast report for a device, or nil.
func (s *Service) GetReport(deviceID string) *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reportCache[deviceID]
}

// GetAllReports returns all cached reports keyed by device ID.
func (s *Service) GetAllReports() map[string]*Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]*Report, len(s.reportCache))
	for k, v := range s.reportCache {
		result[k] = v
	}
	return result
}

// SweepDevice evaluates the clear-history rules for one device and deletes
// its cached history when they fire. Returns the recorded retention event,
// or nil when the history was kept.
func (s *Service) SweepDevice(deviceID string) (*models.RetentionEvent, error) {
	history, err := s.db.GetBatteryReadings(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	now := time.Now()
	reason := s.analyzer.ClearHistoryReason(history, now)
	if reason == battery.ClearReasonNone {
		return nil, nil
	}

	deleted, err := s.db.DeleteBatteryHistory(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear history: %w", err)
	}

	retention := models.RetentionEvent{
		DeviceID:    deviceID,
		Reason:      reason.String(),
		RowsDeleted: deleted,
		Timestamp:   now,
	}
	if err := s.db.InsertRetentionEvent(retention); err != nil {
		logger.Error("failed to record retention event", "device", deviceID, "error", err)
	}

	// Invalidate the forecast, it was built from the cleared history.
	s.mu.Lock()
	delete(s.reportCache, deviceID)
	s.mu.Unlock()

	logger.Info("cleared battery history",
		"device", deviceID,
		"reason", reason.String(),
		"rows", deleted)

	s.sendEvent(Event{Type: EventHistoryCleared, DeviceID: deviceID, Retention: &retention})

	return &retention, nil
}

// RunSweep evaluates the clear-history rules for all registered devices.
func (s *Service) RunSweep() {
	if s.deviceProvider == nil {
		return
	}

	for _, dev := range s.deviceProvider.GetDevices() {
		if _, err := s.SweepDevice(dev.ID); err != nil {
			logger.Error("retention sweep failed", "device", dev.ID, "error", err)
			s.sendEvent(Event{Type: EventError, DeviceID: dev.ID, Error: err})
		}
	}
}

// sweepLoop runs the periodic retention sweep.
func (s *Service) sweepLoop() {
	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunSweep()
		case <-s.stopChan:
			return
		}
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the sweep goroutine.
func (s *Service) Close() error {
	close(s.stopChan)
	return nil
}
