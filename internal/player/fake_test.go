package player

import (
	"context"

	"github.com/zmb3/spotify/v2"
)

// fakeAPI scripts the remote API and records every call the player makes.
type fakeAPI struct {
	state    *spotify.PlayerState
	stateErr error
	// stateFn, when set, overrides state per call. The argument is the
	// 1-based call number.
	stateFn    func(call int) (*spotify.PlayerState, error)
	stateCalls int

	devices      []spotify.PlayerDevice
	devicesErr   error
	devicesCalls int

	transfers []spotify.ID

	currently    *spotify.CurrentlyPlaying
	currentlyErr error

	searchResult *spotify.SearchResult
	searchErr    error
	searchQuery  string

	playlistPage *spotify.SimplePlaylistPage

	playCalls  int
	playOpts   []*spotify.PlayOptions
	pauseCalls int
	nextCalls  int
	prevCalls  int
	volumes    []int
	shuffles   []bool
	repeats    []string
}

func (f *fakeAPI) PlayerState(_ context.Context, _ ...spotify.RequestOption) (*spotify.PlayerState, error) {
	f.stateCalls++
	if f.stateFn != nil {
		return f.stateFn(f.stateCalls)
	}
	return f.state, f.stateErr
}

func (f *fakeAPI) PlayerCurrentlyPlaying(_ context.Context, _ ...spotify.RequestOption) (*spotify.CurrentlyPlaying, error) {
	return f.currently, f.currentlyErr
}

func (f *fakeAPI) PlayerDevices(_ context.Context) ([]spotify.PlayerDevice, error) {
	f.devicesCalls++
	return f.devices, f.devicesErr
}

func (f *fakeAPI) TransferPlayback(_ context.Context, deviceID spotify.ID, _ bool) error {
	f.transfers = append(f.transfers, deviceID)
	return nil
}

func (f *fakeAPI) Play(_ context.Context) error {
	f.playCalls++
	return nil
}

func (f *fakeAPI) PlayOpt(_ context.Context, opt *spotify.PlayOptions) error {
	f.playOpts = append(f.playOpts, opt)
	return nil
}

func (f *fakeAPI) Pause(_ context.Context) error {
	f.pauseCalls++
	return nil
}

func (f *fakeAPI) Next(_ context.Context) error {
	f.nextCalls++
	return nil
}

func (f *fakeAPI) Previous(_ context.Context) error {
	f.prevCalls++
	return nil
}

func (f *fakeAPI) Volume(_ context.Context, percent int) error {
	f.volumes = append(f.volumes, percent)
	return nil
}

func (f *fakeAPI) Shuffle(_ context.Context, shuffle bool) error {
	f.shuffles = append(f.shuffles, shuffle)
	return nil
}

func (f *fakeAPI) Repeat(_ context.Context, state string) error {
	f.repeats = append(f.repeats, state)
	return nil
}

func (f *fakeAPI) Search(_ context.Context, query string, _ spotify.SearchType, _ ...spotify.RequestOption) (*spotify.SearchResult, error) {
	f.searchQuery = query
	return f.searchResult, f.searchErr
}

func (f *fakeAPI) CurrentUsersPlaylists(_ context.Context, _ ...spotify.RequestOption) (*spotify.SimplePlaylistPage, error) {
	return f.playlistPage, nil
}

var _ PlayerAPI = (*fakeAPI)(nil)

// stateWithDevice builds a playback state reporting the given device.
func stateWithDevice(name string, id spotify.ID) *spotify.PlayerState {
	return &spotify.PlayerState{
		Device: spotify.PlayerDevice{ID: id, Name: name, Active: true},
	}
}
