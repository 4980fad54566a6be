// Package registry manages the device registry with file watching and persistence.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roelvg/fleetpulse-tui/internal/logger"
	"github.com/roelvg/fleetpulse-tui/internal/models"
)

// DevicesFile represents the JSON file structure for device storage.
type DevicesFile struct {
	Devices        []models.Device `json:"devices"`
	SelectedDevice string          `json:"selectedDevice,omitempty"`
	Version        int             `json:"version,omitempty"`
}

// Event represents a registry service event.
type Event struct {
	Type   EventType
	Error  error
	Device *models.Device
}

// EventType defines the type of registry event.
type EventType int

const (
	EventDevicesLoaded EventType = iota
	EventDevicesChanged
	EventDeviceAdded
	EventDeviceUpdated
	EventDeviceRemoved
	EventSelectedDeviceChanged
	EventError
)

// Service manages registered devices with file watching and change notifications.
type Service struct {
	mu             sync.RWMutex
	devices        []models.Device
	selectedDevice string
	filePath       string
	watcher        *fsnotify.Watcher
	eventChan      chan Event
	stopChan       chan struct{}
	debounceTimer  *time.Timer
}

// defaultDevicesPath returns the default devices file path.
func defaultDevicesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "fleetpulse", "devices.json")
}

// New creates a new registry service and starts file watching.
func New(filePath string) (*Service, error) {
	if filePath == "" {
		filePath = defaultDevicesPath()
	}

	s := &Service{
		devices:   make([]models.Device, 0),
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.loadDevices(); err != nil {
		// Missing file is fine on first run, start with an empty registry.
		if os.IsNotExist(err) {
			if err := s.saveDevices(); err != nil {
				return nil, fmt.Errorf("failed to create devices file: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to load devices: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventDevicesLoaded})

	return s, nil
}

// Events returns the event channel for subscribing to registry changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// GetDevices returns a copy of all registered devices.
func (s *Service) GetDevices() []models.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	devices := make([]models.Device, len(s.devices))
	for i, d := range s.devices {
		devices[i] = d
		if d.Tags != nil {
			devices[i].Tags = make([]string, len(d.Tags))
			copy(devices[i].Tags, d.Tags)
		}
	}
	return devices
}

// GetDevice returns a device by ID, or nil if not registered.
func (s *Service) GetDevice(id string) *models.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.devices {
		if s.devices[i].ID == id {
			d := s.devices[i]
			return &d
		}
	}
	return nil
}

// GetSelectedDevice returns the currently selected device.
func (s *Service) GetSelectedDevice() *models.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.devices {
		if s.devices[i].ID == s.selectedDevice {
			d := s.devices[i]
			return &d
		}
	}

	// Fall back to the first device if no selection is recorded.
	if len(s.devices) > 0 {
		d := s.devices[0]
		return &d
	}

	return nil
}

// GetSelectedDeviceID returns the ID of the selected device.
func (s *Service) GetSelectedDeviceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedDevice
}

// SetSelectedDevice sets the selected device by ID.
func (s *Service) SetSelectedDevice(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, d := range s.devices {
		if d.ID == id {
			found = true
			s.selectedDevice = d.ID
			break
		}
	}

	if !found {
		return fmt.Errorf("device not found: %s", id)
	}

	if err := s.saveDevicesLocked(); err != nil {
		return fmt.Errorf("failed to save devices: %w", err)
	}

	s.sendEvent(Event{Type: EventSelectedDeviceChanged})
	return nil
}

// AddDevice registers a new device.
func (s *Service) AddDevice(device models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.devices {
		if d.ID == device.ID {
			return fmt.Errorf("device %s already registered", device.ID)
		}
	}

	if device.ID == "" {
		device.ID = fmt.Sprintf("dev_%d", time.Now().UnixNano())
	}
	if device.AddedAt.IsZero() {
		device.AddedAt = time.Now()
	}

	s.devices = append(s.devices, device)

	// Select the first device automatically.
	if len(s.devices) == 1 {
		s.selectedDevice = device.ID
	}

	if err := s.saveDevicesLocked(); err != nil {
		s.devices = s.devices[:len(s.devices)-1]
		return fmt.Errorf("failed to save devices: %w", err)
	}

	s.sendEvent(Event{Type: EventDeviceAdded, Device: &device})
	return nil
}

// UpdateDevice updates an existing device.
func (s *Service) UpdateDevice(device models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i, d := range s.devices {
		if d.ID == device.ID {
			if device.AddedAt.IsZero() {
				device.AddedAt = d.AddedAt
			}
			s.devices[i] = device
			found = true
			break
		}
	}

	if !found {
		return fmt.Errorf("device not found: %s", device.ID)
	}

	if err := s.saveDevicesLocked(); err != nil {
		return fmt.Errorf("failed to save devices: %w", err)
	}

	s.sendEvent(Event{Type: EventDeviceUpdated, Device: &device})
	return nil
}

// RemoveDevice removes a device from the registry by ID.
func (s *Service) RemoveDevice(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	var removed models.Device
	for i, d := range s.devices {
		if d.ID == id {
			idx = i
			removed = d
			break
		}
	}

	if idx == -1 {
		return fmt.Errorf("device not found: %s", id)
	}

	s.devices = append(s.devices[:idx], s.devices[idx+1:]...)

	if s.selectedDevice == removed.ID {
		if len(s.devices) > 0 {
			s.selectedDevice = s.devices[0].ID
		} else {
			s.selectedDevice = ""
		}
	}

	if err := s.saveDevicesLocked(); err != nil {
		return fmt.Errorf("failed to save devices: %w", err)
	}

	s.sendEvent(Event{Type: EventDeviceRemoved, Device: &removed})
	return nil
}

// Count returns the number of registered devices.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices)
}

// parseDevices parses device data handling both file formats.
func (s *Service) parseDevices(data []byte) ([]models.Device, string, error) {
	// 1. Standard DevicesFile format
	var devicesFile DevicesFile
	if err := json.Unmarshal(data, &devicesFile); err == nil && devicesFile.Devices != nil {
		selected := devicesFile.SelectedDevice

		if selected != "" {
			found := false
			for _, d := range devicesFile.Devices {
				if d.ID == selected {
					found = true
					break
				}
			}
			if !found && len(devicesFile.Devices) > 0 {
				selected = devicesFile.Devices[0].ID
			}
		} else if len(devicesFile.Devices) > 0 {
			selected = devicesFile.Devices[0].ID
		}
		return devicesFile.Devices, selected, nil
	}

	// 2. Legacy bare array format
	var devices []models.Device
	if err := json.Unmarshal(data, &devices); err == nil {
		var selected string
		if len(devices) > 0 {
			selected = devices[0].ID
		}
		return devices, selected, nil
	}

	return nil, "", fmt.Errorf("failed to parse devices file: invalid format")
}

// loadDevices loads devices from the JSON file.
func (s *Service) loadDevices() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	devices, selected, err := s.parseDevices(data)
	if err != nil {
		return err
	}

	s.devices = devices
	s.selectedDevice = selected
	return nil
}

// saveDevices saves devices to the JSON file (public version).
func (s *Service) saveDevices() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveDevicesLocked()
}

// saveDevicesLocked saves devices to the JSON file (must hold lock).
func (s *Service) saveDevicesLocked() error {
	devicesFile := DevicesFile{
		Devices:        s.devices,
		SelectedDevice: s.selectedDevice,
		Version:        1,
	}

	data, err := json.MarshalIndent(devicesFile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal devices: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory (to catch file creation/deletion)
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			// Only care about our devices file
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Debounce rapid changes
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.handleFileChange()
				})
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads devices from file after external change.
func (s *Service) handleFileChange() {
	if err := s.loadDevicesWithLock(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.sendEvent(Event{Type: EventDevicesChanged})
}

// loadDevicesWithLock loads devices while holding the lock.
func (s *Service) loadDevicesWithLock() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	devices, selected, err := s.parseDevices(data)
	if err != nil {
		return err
	}

	s.devices = devices
	s.selectedDevice = selected
	return nil
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
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

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
