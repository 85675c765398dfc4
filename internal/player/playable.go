package player

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// PlayableKind enumerates the remote entity types that can be started via
// a playback command. The provider's set is fixed and small, so playback
// dispatch matches exhaustively instead of going through an open
// interface.
type PlayableKind int

const (
	KindTrack PlayableKind = iota
	KindPlaylist
	KindAlbum
	KindArtist
	KindShow
	KindEpisode
)

func (k PlayableKind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindPlaylist:
		return "playlist"
	case KindAlbum:
		return "album"
	case KindArtist:
		return "artist"
	case KindShow:
		return "show"
	case KindEpisode:
		return "episode"
	}

	return "unknown"
}

// Label is the kind's display name, as shown in selection lists.
func (k PlayableKind) Label() string {
	name := k.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// Playable is one startable remote entity.
type Playable struct {
	Kind PlayableKind
	ID   spotify.ID
	Name string
	// By holds the attribution line: artists for tracks and albums, owner
	// for playlists, publisher for shows. Empty when not applicable.
	By string
}

// URI returns the provider URI for the entity.
func (p Playable) URI() spotify.URI {
	return spotify.URI(fmt.Sprintf("spotify:%s:%s", p.Kind, p.ID))
}

// Display renders the entity the way search results and prompts show it.
func (p Playable) Display() string {
	switch p.Kind {
	case KindTrack, KindAlbum:
		return fmt.Sprintf("%q by %s", p.Name, p.By)
	case KindPlaylist:
		if p.By != "" {
			return fmt.Sprintf("%s (%s)", p.Name, p.By)
		}
		return p.Name
	case KindArtist, KindShow, KindEpisode:
		return p.Name
	}

	return p.Name
}

// Start begins playback of the entity. Tracks and episodes start URI
// playback, everything else starts context playback.
func (p Playable) Start(ctx context.Context, api PlayerAPI) error {
	if p.ID == "" {
		return fmt.Errorf("this %s can't be played, since it lacks an ID, it may be a local item", p.Kind)
	}

	uri := p.URI()

	var err error
	switch p.Kind {
	case KindTrack, KindEpisode:
		err = api.PlayOpt(ctx, &spotify.PlayOptions{URIs: []spotify.URI{uri}})
	case KindPlaylist, KindAlbum, KindArtist, KindShow:
		err = api.PlayOpt(ctx, &spotify.PlayOptions{PlaybackContext: &uri})
	default:
		return fmt.Errorf("unknown playable kind %d", p.Kind)
	}

	if err != nil {
		return fmt.Errorf("failed to play %s: %w", p.Kind, err)
	}

	return nil
}

// PlayablesFromSearch flattens a search result into playables. Exactly one
// page is populated per search, matching the single type requested.
func PlayablesFromSearch(result *spotify.SearchResult) []Playable {
	if result == nil {
		return nil
	}

	var playables []Playable

	if result.Tracks != nil {
		for i := range result.Tracks.Tracks {
			track := &result.Tracks.Tracks[i]
			playables = append(playables, Playable{
				Kind: KindTrack,
				ID:   track.ID,
				Name: track.Name,
				By:   joinArtists(track.Artists),
			})
		}
	}

	if result.Playlists != nil {
		for i := range result.Playlists.Playlists {
			playlist := &result.Playlists.Playlists[i]
			playables = append(playables, Playable{
				Kind: KindPlaylist,
				ID:   playlist.ID,
				Name: playlist.Name,
				By:   playlist.Owner.DisplayName,
			})
		}
	}

	if result.Albums != nil {
		for i := range result.Albums.Albums {
			album := &result.Albums.Albums[i]
			playables = append(playables, Playable{
				Kind: KindAlbum,
				ID:   album.ID,
				Name: album.Name,
				By:   joinArtists(album.Artists),
			})
		}
	}

	if result.Artists != nil {
		for i := range result.Artists.Artists {
			artist := &result.Artists.Artists[i]
			playables = append(playables, Playable{
				Kind: KindArtist,
				ID:   artist.ID,
				Name: artist.Name,
			})
		}
	}

	if result.Shows != nil {
		for i := range result.Shows.Shows {
			show := &result.Shows.Shows[i]
			playables = append(playables, Playable{
				Kind: KindShow,
				ID:   show.ID,
				Name: show.Name,
				By:   show.Publisher,
			})
		}
	}

	if result.Episodes != nil {
		for i := range result.Episodes.Episodes {
			episode := &result.Episodes.Episodes[i]
			playables = append(playables, Playable{
				Kind: KindEpisode,
				ID:   episode.ID,
				Name: episode.Name,
			})
		}
	}

	return playables
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}

	return strings.Join(names, ", ")
}
