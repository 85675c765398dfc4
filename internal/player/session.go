package player

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

const (
	// RepeatStateTrack represents the "track" repeat state
	RepeatStateTrack = "track"
	// RepeatStateOff represents the "off" repeat state
	RepeatStateOff = "off"
	// RepeatStateContext represents the "context" repeat state
	RepeatStateContext = "context"

	// MaxVolume is the upper bound of the volume range in percent
	MaxVolume = 100
	// DefaultSearchLimit bounds interactive search results
	DefaultSearchLimit = 10
	// PlaylistPageLimit bounds the library playlist listing
	PlaylistPageLimit = 50
)

// Session is the live authenticated handle playback commands run against.
// It is owned by one process invocation; only its token outlives it.
// Every playback-affecting method confirms a target device first, because
// the remote API silently no-ops commands sent with no resolved device.
type Session struct {
	api     PlayerAPI
	devices *DeviceCache
	pick    PickDeviceFunc
	logger  *zap.Logger
}

func NewSession(api PlayerAPI, devices *DeviceCache, pick PickDeviceFunc, logger *zap.Logger) *Session {
	return &Session{
		api:     api,
		devices: devices,
		pick:    pick,
		logger:  logger,
	}
}

// Track is the currently playing item, reduced to what the CLI prints.
type Track struct {
	Title string
	By    []string
}

func (s *Session) ensureDevice(ctx context.Context) error {
	return s.devices.Ensure(ctx, s.api, s.pick)
}

func (s *Session) playbackState(ctx context.Context) (*spotify.PlayerState, error) {
	state, err := s.api.PlayerState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed getting current playback state: %w", err)
	}

	if state == nil {
		return nil, fmt.Errorf("no current playback")
	}

	return state, nil
}

// CurrentTrack returns the playing track, or nil when nothing plays.
func (s *Session) CurrentTrack(ctx context.Context) (*Track, error) {
	currently, err := s.api.PlayerCurrentlyPlaying(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed getting the current track: %w", err)
	}

	if currently == nil || !currently.Playing || currently.Item == nil {
		return nil, nil
	}

	track := &Track{Title: currently.Item.Name}
	for _, artist := range currently.Item.Artists {
		track.By = append(track.By, artist.Name)
	}

	return track, nil
}

// Pause pauses playback. Pausing while paused is a no-op.
func (s *Session) Pause(ctx context.Context) error {
	if err := s.ensureDevice(ctx); err != nil {
		return err
	}

	state, err := s.playbackState(ctx)
	if err != nil {
		return err
	}

	if !state.Playing {
		return nil
	}

	if err := s.api.Pause(ctx); err != nil {
		return fmt.Errorf("failed pausing playback: %w", err)
	}

	return nil
}

// Resume resumes playback. Resuming while playing is a no-op.
func (s *Session) Resume(ctx context.Context) error {
	if err := s.ensureDevice(ctx); err != nil {
		return err
	}

	state, err := s.playbackState(ctx)
	if err != nil {
		return err
	}

	if state.Playing {
		return nil
	}

	if err := s.api.Play(ctx); err != nil {
		return fmt.Errorf("failed resuming playback: %w", err)
	}

	return nil
}

// Toggle pauses when playing and resumes when paused.
func (s *Session) Toggle(ctx context.Context) error {
	if err := s.ensureDevice(ctx); err != nil {
		return err
	}

	state, err := s.playbackState(ctx)
	if err != nil {
		return err
	}

	if state.Playing {
		if err := s.api.Pause(ctx); err != nil {
			return fmt.Errorf("failed pausing playback: %w", err)
		}
		return nil
	}

	if err := s.api.Play(ctx); err != nil {
		return fmt.Errorf("failed resuming playback: %w", err)
	}

	return nil
}

// Volume returns the current volume of the active device in percent.
func (s *Session) Volume(ctx context.Context) (int, error) {
	state, err := s.playbackState(ctx)
	if err != nil {
		return 0, err
	}

	return state.Device.Volume, nil
}

// SetVolume sets the volume, clamped into [0, MaxVolume].
func (s *Session) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > MaxVolume {
		percent = MaxVolume
	}

	if err := s.ensureDevice(ctx); err != nil {
		return err
	}

	if err := s.api.Volume(ctx, percent); err != nil {
		return fmt.Errorf("failed setting volume to %d: %w", percent, err)
	}

	return nil
}

// VolumeUp raises the volume by delta percent, saturating at MaxVolume.
func (s *Session) VolumeUp(ctx context.Context, delta int) error {
	volume, err := s.Volume(ctx)
	if err != nil {
		return err
	}

	return s.SetVolume(ctx, volume+delta)
}

// VolumeDown lowers the volume by delta percent, saturating at zero.
func (s *Session) VolumeDown(ctx context.Context, delta int) error {
	volume, err := s.Volume(ctx)
	if err != nil {
		return err
	}

	return s.SetVolume(ctx, volume-delta)
}

// Search queries the provider for entities of one kind.
func (s *Session) Search(ctx context.Context, query string, kind spotify.SearchType, limit int) ([]Playable, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	result, err := s.api.Search(ctx, query, kind, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed searching content: %w", err)
	}

	return PlayablesFromSearch(result), nil
}

// Play starts playback of the given entity on the confirmed device.
func (s *Session) Play(ctx context.Context, playable Playable) error {
	if err := s.ensureDevice(ctx); err != nil {
		return err
	}

	if err := playable.Start(ctx, s.api); err != nil {
		return err
	}

	s.logger.Debug("Started playback",
		zap.String("kind", playable.Kind.String()),
		zap.String("name", playable.Name))

	return nil
}

// Next skips to the next track.
func (s *Session) Next(ctx context.Context) error {
	if err := s.ensureDevice(ctx); err != nil {
		return err
	}

	if err := s.api.Next(ctx); err != nil {
		return fmt.Errorf("failed skipping track: %w", err)
	}

	return nil
}

// Previous skips back to the previous track.
func (s *Session) Previous(ctx context.Context) error {
	if err := s.ensureDevice(ctx); err != nil {
		return err
	}

	if err := s.api.Previous(ctx); err != nil {
		return fmt.Errorf("failed skipping to previous track: %w", err)
	}

	return nil
}

// ShuffleOn enables shuffle mode.
func (s *Session) ShuffleOn(ctx context.Context) error {
	return s.setShuffle(ctx, true)
}

// ShuffleOff disables shuffle mode.
func (s *Session) ShuffleOff(ctx context.Context) error {
	return s.setShuffle(ctx, false)
}

// ShuffleToggle flips the current shuffle mode.
func (s *Session) ShuffleToggle(ctx context.Context) error {
	if err := s.ensureDevice(ctx); err != nil {
		return err
	}

	state, err := s.playbackState(ctx)
	if err != nil {
		return err
	}

	return s.setShuffle(ctx, !state.ShuffleState)
}

func (s *Session) setShuffle(ctx context.Context, shuffle bool) error {
	if err := s.ensureDevice(ctx); err != nil {
		return err
	}

	if err := s.api.Shuffle(ctx, shuffle); err != nil {
		return fmt.Errorf("failed to set shuffle to %t: %w", shuffle, err)
	}

	return nil
}

// RepeatOn repeats the current context.
func (s *Session) RepeatOn(ctx context.Context) error {
	return s.setRepeat(ctx, RepeatStateContext)
}

// RepeatOff turns repeat off.
func (s *Session) RepeatOff(ctx context.Context) error {
	return s.setRepeat(ctx, RepeatStateOff)
}

// RepeatTrack repeats the current track.
func (s *Session) RepeatTrack(ctx context.Context) error {
	return s.setRepeat(ctx, RepeatStateTrack)
}

// RepeatToggle cycles track -> off -> context -> track.
func (s *Session) RepeatToggle(ctx context.Context) error {
	if err := s.ensureDevice(ctx); err != nil {
		return err
	}

	state, err := s.playbackState(ctx)
	if err != nil {
		return err
	}

	switch state.RepeatState {
	case RepeatStateTrack:
		return s.setRepeat(ctx, RepeatStateOff)
	case RepeatStateOff:
		return s.setRepeat(ctx, RepeatStateContext)
	case RepeatStateContext:
		return s.setRepeat(ctx, RepeatStateTrack)
	}

	return fmt.Errorf("unknown repeat state %q", state.RepeatState)
}

func (s *Session) setRepeat(ctx context.Context, state string) error {
	if err := s.ensureDevice(ctx); err != nil {
		return err
	}

	if err := s.api.Repeat(ctx, state); err != nil {
		return fmt.Errorf("failed to set repeat to %s: %w", state, err)
	}

	return nil
}

// Playlists lists the user's library playlists as playables.
func (s *Session) Playlists(ctx context.Context) ([]Playable, error) {
	page, err := s.api.CurrentUsersPlaylists(ctx, spotify.Limit(PlaylistPageLimit))
	if err != nil {
		return nil, fmt.Errorf("failed listing playlists: %w", err)
	}

	playables := make([]Playable, 0, len(page.Playlists))
	for i := range page.Playlists {
		playlist := &page.Playlists[i]
		playables = append(playables, Playable{
			Kind: KindPlaylist,
			ID:   playlist.ID,
			Name: playlist.Name,
			By:   playlist.Owner.DisplayName,
		})
	}

	return playables, nil
}

// Devices lists the available playback devices.
func (s *Session) Devices(ctx context.Context) ([]spotify.PlayerDevice, error) {
	devices, err := s.api.PlayerDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed listing playback devices: %w", err)
	}

	return devices, nil
}

// SelectDevice transfers playback to the device and waits for the
// transfer to be confirmed.
func (s *Session) SelectDevice(ctx context.Context, device spotify.PlayerDevice) error {
	return s.devices.Set(ctx, s.api, device)
}

// ActiveDevice returns the cached confirmed device, if any.
func (s *Session) ActiveDevice() *CachedDevice {
	return s.devices.Current()
}
