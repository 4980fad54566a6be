package status

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/roelvg/fleetpulse-tui/internal/logger"
	"github.com/roelvg/fleetpulse-tui/internal/models"
)

// DeviceProvider is an interface for listing registered devices.
type DeviceProvider interface {
	GetDevices() []models.Device
}

// Event represents a status service event.
type Event struct {
	Error    error
	Status   *models.DeviceStatus
	Readings []models.BatteryReading
	DeviceID string
	Type     EventType
}

// EventType defines the type of status event.
type EventType int

const (
	// EventStatusUpdated indicates that a device status has been refreshed.
	EventStatusUpdated EventType = iota
	// EventStatusRefreshing indicates that a refresh cycle is in progress.
	EventStatusRefreshing
	// EventStatusError indicates that a device refresh failed.
	EventStatusError
)

// Config holds configuration for the status service.
type Config struct {
	PollInterval  time.Duration
	MaxConcurrent int
	MaxRetries    int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:  60 * time.Second,
		MaxConcurrent: 5,
		MaxRetries:    3,
	}
}

// Service polls the remote API and caches the latest status per device.
type Service struct {
	deviceProvider DeviceProvider
	client         *Client
	statusCache    map[string]*models.DeviceStatus
	lastFetched    map[string]time.Time
	eventChan      chan Event
	stopChan       chan struct{}
	pollTicker     *time.Ticker
	refreshSem     chan struct{}
	config         Config
	mu             sync.RWMutex
}

// New creates a new status service and starts the polling goroutine.
func New(provider DeviceProvider, client *Client, config Config) *Service {
	if config.PollInterval == 0 {
		config = DefaultConfig()
	}

	s := &Service{
		deviceProvider: provider,
		client:         client,
		statusCache:    make(map[string]*models.DeviceStatus),
		lastFetched:    make(map[string]time.Time),
		eventChan:      make(chan Event, 100),
		stopChan:       make(chan struct{}),
		config:         config,
		refreshSem:     make(chan struct{}, config.MaxConcurrent),
	}

	go s.poll()

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// GetStatus returns the cached status for a device, or nil if never fetched.
func (s *Service) GetStatus(deviceID string) *models.DeviceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusCache[deviceID]
}

// GetAllStatuses returns all cached statuses keyed by device ID.
func (s *Service) GetAllStatuses() map[string]*models.DeviceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*models.DeviceStatus, len(s.statusCache))
	maps.Copy(result, s.statusCache)
	return result
}

// RefreshDevice fetches fresh status and new history for a device.
func (s *Service) RefreshDevice(deviceID string) (*models.DeviceStatus, error) {
	s.sendEvent(Event{
		Type:     EventStatusRefreshing,
		DeviceID: deviceID,
	})

	ctx := context.Background()

	st, err := s.fetchStatusWithRetry(ctx, deviceID)
	if err != nil {
		return s.handleStatusError(deviceID, err)
	}

	s.mu.RLock()
	since := s.lastFetched[deviceID]
	s.mu.RUnlock()

	readings, histErr := s.client.FetchHistory(ctx, deviceID, since)
	if histErr != nil {
		// Status succeeded but history did not, keep the status and report.
		logger.Warn("failed to fetch battery history", "device", deviceID, "error", histErr)
		readings = nil
	}

	s.mu.Lock()
	s.statusCache[deviceID] = st
	// Only a successful history fetch moves the window forward. Advancing
	// it after a failure would skip the readings from the failed span on
	// the next cycle.
	if histErr == nil {
		s.lastFetched[deviceID] = time.Now()
	}
	s.mu.Unlock()

	s.sendEvent(Event{
		Type:     EventStatusUpdated,
		DeviceID: deviceID,
		Status:   st,
		Readings: readings,
	})

	return st, nil
}

// fetchStatusWithRetry fetches a device status with exponential backoff.
func (s *Service) fetchStatusWithRetry(ctx context.Context, deviceID string) (*models.DeviceStatus, error) {
	var st *models.DeviceStatus
	var err error

	backoff := 500 * time.Millisecond
	for i := 0; i < s.config.MaxRetries; i++ {
		st, err = s.client.FetchStatus(ctx, deviceID)
		if err == nil {
			return st, nil
		}

		if i < s.config.MaxRetries-1 {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return nil, err
}

func (s *Service) handleStatusError(deviceID string, err error) (*models.DeviceStatus, error) {
	st := &models.DeviceStatus{
		DeviceID:    deviceID,
		LastUpdated: time.Now(),
		Error:       err.Error(),
	}
	s.mu.Lock()
	s.statusCache[deviceID] = st
	s.mu.Unlock()
	s.sendEvent(Event{
		Type:     EventStatusError,
		DeviceID: deviceID,
		Status:   st,
		Error:    err,
	})
	return st, err
}

// RefreshAll refreshes status for all registered devices.
func (s *Service) RefreshAll() {
	if s.deviceProvider == nil {
		return
	}

	devices := s.deviceProvider.GetDevices()
	var wg sync.WaitGroup

	for i := range devices {
		dev := &devices[i]
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			// Acquire semaphore
			s.refreshSem <- struct{}{}
			defer func() { <-s.refreshSem }()

			if _, err := s.RefreshDevice(id); err != nil {
				logger.Error("failed to refresh device status", "device", id, "error", err)
			}
		}(dev.ID)
	}

	wg.Wait()
}

// poll runs the background polling goroutine.
func (s *Service) poll() {
	// Initial refresh
	s.RefreshAll()

	s.pollTicker = time.NewTicker(s.config.PollInterval)
	defer s.pollTicker.Stop()

	for {
		select {
		case <-s.pollTicker.C:
			s.RefreshAll()
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

// Close stops the service and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)
	return nil
}

// Stats summarizes the current cache state.
type Stats struct {
	CachedStatuses int
	OnlineDevices  int
	ErrorDevices   int
}

// GetStats returns current statistics.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		CachedStatuses: len(s.statusCache),
	}

	for _, st := range s.statusCache {
		if st.Error != "" {
			stats.ErrorDevices++
			continue
		}
		if st.Online {
			stats.OnlineDevices++
		}
	}

	return stats
}
