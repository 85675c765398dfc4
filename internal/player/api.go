// Package player exposes playback control over one authorized Spotify
// account: the session with its command surface, the playable entity
// variants, and the device reconciliation cache that keeps commands
// pointed at a confirmed device.
package player

import (
	"context"

	"github.com/zmb3/spotify/v2"
)

// PlayerAPI is the slice of the Spotify Web API the player depends on.
// *spotify.Client satisfies it; tests substitute fakes.
type PlayerAPI interface {
	PlayerState(ctx context.Context, opts ...spotify.RequestOption) (*spotify.PlayerState, error)
	PlayerCurrentlyPlaying(ctx context.Context, opts ...spotify.RequestOption) (*spotify.CurrentlyPlaying, error)
	PlayerDevices(ctx context.Context) ([]spotify.PlayerDevice, error)
	TransferPlayback(ctx context.Context, deviceID spotify.ID, play bool) error
	Play(ctx context.Context) error
	PlayOpt(ctx context.Context, opt *spotify.PlayOptions) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Volume(ctx context.Context, percent int) error
	Shuffle(ctx context.Context, shuffle bool) error
	Repeat(ctx context.Context, state string) error
	Search(ctx context.Context, query string, t spotify.SearchType, opts ...spotify.RequestOption) (*spotify.SearchResult, error)
	CurrentUsersPlaylists(ctx context.Context, opts ...spotify.RequestOption) (*spotify.SimplePlaylistPage, error)
}

var _ PlayerAPI = (*spotify.Client)(nil)
