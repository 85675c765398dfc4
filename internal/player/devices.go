package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"spotic/internal/core"
)

var (
	// ErrNoDevice indicates no playback device is reachable at all.
	ErrNoDevice = errors.New("no playback device available, ensure a Spotify client is running")
	// ErrTransferTimeout indicates a device transfer was acknowledged but
	// never showed up in playback state within the poll budget.
	ErrTransferTimeout = errors.New("device transfer was not confirmed in time, ensure the Spotify client is responsive")
)

// PickDeviceFunc chooses among several available devices and returns the
// index of the chosen one. Implementations are interactive.
type PickDeviceFunc func(devices []spotify.PlayerDevice) (int, error)

// CachedDevice is one confirmed active device. Entries are replaced
// wholesale on every re-check, never mutated.
type CachedDevice struct {
	ID        spotify.ID
	Name      string
	CheckedAt time.Time
}

// DeviceCache reconciles the active playback device. The transfer endpoint
// is fire-and-forget: it acknowledges before the transfer is visible in
// playback-state queries, so a playback command issued right after a
// transfer can silently target the wrong device. Set polls until the
// transfer is observed; Ensure short-circuits on a recently confirmed
// device so back-to-back commands skip the network round trip. The TTL is
// short because devices change out-of-band.
type DeviceCache struct {
	cfg    *core.DeviceConfig
	logger *zap.Logger
	now    func() time.Time
	cached *CachedDevice
}

func NewDeviceCache(cfg *core.DeviceConfig, logger *zap.Logger) *DeviceCache {
	return &DeviceCache{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Current returns the cached device, or nil when nothing is confirmed.
func (d *DeviceCache) Current() *CachedDevice {
	return d.cached
}

// Ensure guarantees a recently confirmed active device on return. Within
// the TTL it costs nothing. Otherwise the active device is rediscovered
// from playback state, or chosen from the available devices: one device
// selects itself, several delegate to pick.
func (d *DeviceCache) Ensure(ctx context.Context, api PlayerAPI, pick PickDeviceFunc) error {
	if d.cached != nil && d.now().Sub(d.cached.CheckedAt) < d.cfg.CacheTTL {
		return nil
	}

	state, err := api.PlayerState(ctx)
	if err != nil {
		return fmt.Errorf("failed getting current playback state: %w", err)
	}

	if state != nil && state.Device.ID != "" {
		d.cached = &CachedDevice{
			ID:        state.Device.ID,
			Name:      state.Device.Name,
			CheckedAt: d.now(),
		}

		d.logger.Debug("Confirmed active device from playback state",
			zap.String("deviceName", state.Device.Name))
		return nil
	}

	devices, err := api.PlayerDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed listing playback devices: %w", err)
	}

	switch len(devices) {
	case 0:
		return ErrNoDevice
	case 1:
		return d.Set(ctx, api, devices[0])
	}

	if pick == nil {
		return fmt.Errorf("%d devices available and no selection prompt wired", len(devices))
	}

	idx, err := pick(devices)
	if err != nil {
		return fmt.Errorf("failed selecting playback device: %w", err)
	}

	if idx < 0 || idx >= len(devices) {
		return fmt.Errorf("device selection %d out of range", idx)
	}

	return d.Set(ctx, api, devices[idx])
}

// Set transfers playback to the device and polls playback state until the
// transfer is visible, up to the poll budget. The transfer never forces
// playback to start; the follow-up playback command decides that. A
// timeout is terminal, retrying could toggle devices back and forth
// without the user noticing.
func (d *DeviceCache) Set(ctx context.Context, api PlayerAPI, device spotify.PlayerDevice) error {
	if err := api.TransferPlayback(ctx, device.ID, false); err != nil {
		return fmt.Errorf("failed transferring playback to %q: %w", device.Name, err)
	}

	deadline := d.now().Add(d.cfg.PollBudget)

	for {
		state, err := api.PlayerState(ctx)
		if err != nil {
			// Transient poll errors count against the budget.
			d.logger.Debug("Playback state poll failed during transfer", zap.Error(err))
		} else if state != nil && state.Device.Name == device.Name {
			d.cached = &CachedDevice{
				ID:        device.ID,
				Name:      device.Name,
				CheckedAt: d.now(),
			}

			d.logger.Debug("Device transfer confirmed",
				zap.String("deviceName", device.Name))
			return nil
		}

		if !d.now().Before(deadline) {
			return fmt.Errorf("device %q: %w", device.Name, ErrTransferTimeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.cfg.PollInterval):
		}
	}
}
