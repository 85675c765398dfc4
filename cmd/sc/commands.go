package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zmb3/spotify/v2"

	"spotic/internal/player"
	"spotic/internal/ui"
)

var currentCmd = &cobra.Command{
	Use:     "current",
	Aliases: []string{"cu"},
	Short:   "Output current track",
	Args:    cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, session *player.Session, _ *cobra.Command, _ []string) error {
		track, err := session.CurrentTrack(ctx)
		if err != nil {
			return err
		}

		if track == nil {
			fmt.Println("Nothing playing")
			return nil
		}

		fmt.Println(ui.FormatTrack(track))
		return nil
	}),
}

var pauseCmd = &cobra.Command{
	Use:     "pause",
	Aliases: []string{"pa"},
	Short:   "Pause playback",
	Args:    cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, session *player.Session, _ *cobra.Command, _ []string) error {
		return session.Pause(ctx)
	}),
}

var resumeCmd = &cobra.Command{
	Use:     "resume",
	Aliases: []string{"re"},
	Short:   "Resume playback",
	Args:    cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, session *player.Session, _ *cobra.Command, _ []string) error {
		return session.Resume(ctx)
	}),
}

var toggleCmd = &cobra.Command{
	Use:     "toggle",
	Aliases: []string{"to"},
	Short:   "Toggle resume/pause",
	Args:    cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, session *player.Session, _ *cobra.Command, _ []string) error {
		return session.Toggle(ctx)
	}),
}

var volumeCmd = &cobra.Command{
	Use:     "volume [50 | +5 | -5]",
	Aliases: []string{"vo"},
	Short:   "Control volume",
	// Flag parsing would eat the "-5" relative syntax before it reaches
	// the argument parser.
	DisableFlagParsing: true,
	Args:               cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "-h" || args[0] == "--help" {
			return cmd.Help()
		}

		// Parse before touching the session, so a bad argument fails
		// without running the authorization flow.
		op, err := parseVolumeArg(args[0])
		if err != nil {
			return err
		}

		return withSession(func(ctx context.Context, session *player.Session, _ *cobra.Command, _ []string) error {
			switch op.kind {
			case volumeUp:
				return session.VolumeUp(ctx, op.amount)
			case volumeDown:
				return session.VolumeDown(ctx, op.amount)
			default:
				return session.SetVolume(ctx, op.amount)
			}
		})(cmd, args)
	},
}

var playCmd = &cobra.Command{
	Use:     "play <content>",
	Aliases: []string{"pl"},
	Short:   "Play first matching content",
	Args:    cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, session *player.Session, cmd *cobra.Command, args []string) error {
		kind, err := searchTypeFromFlags(cmd)
		if err != nil {
			return err
		}

		results, err := session.Search(ctx, args[0], kind, 1)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No matches found")
			return nil
		}

		if err := session.Play(ctx, results[0]); err != nil {
			return err
		}

		fmt.Printf("Playing %s\n", ui.FormatPlayable(results[0]))
		return nil
	}),
}

var searchCmd = &cobra.Command{
	Use:     "search <content>",
	Aliases: []string{"se"},
	Short:   "Search content and play the selection",
	Args:    cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, session *player.Session, cmd *cobra.Command, args []string) error {
		kind, err := searchTypeFromFlags(cmd)
		if err != nil {
			return err
		}

		results, err := session.Search(ctx, args[0], kind, player.DefaultSearchLimit)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No matches found")
			return nil
		}

		choice, err := pickPlayable("Select an item to play", results)
		if err != nil {
			return err
		}

		if err := session.Play(ctx, choice); err != nil {
			return err
		}

		fmt.Printf("Playing %s\n", ui.FormatPlayable(choice))
		return nil
	}),
}

var nextCmd = &cobra.Command{
	Use:     "next",
	Aliases: []string{"ne"},
	Short:   "Skip current track",
	Args:    cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, session *player.Session, _ *cobra.Command, _ []string) error {
		return session.Next(ctx)
	}),
}

var prevCmd = &cobra.Command{
	Use:     "prev",
	Aliases: []string{"pr"},
	Short:   "Play previous track",
	Args:    cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, session *player.Session, _ *cobra.Command, _ []string) error {
		return session.Previous(ctx)
	}),
}

var shuffleCmd = &cobra.Command{
	Use:     "shuffle [on|off]",
	Aliases: []string{"sh"},
	Short:   "Control shuffle mode",
	Long:    "Control shuffle mode. Toggles between on/off if no mode is supplied.",
	Args:    cobra.MaximumNArgs(1),
	RunE: withSession(func(ctx context.Context, session *player.Session, _ *cobra.Command, args []string) error {
		if len(args) == 0 {
			return session.ShuffleToggle(ctx)
		}

		switch args[0] {
		case "on":
			return session.ShuffleOn(ctx)
		case "off":
			return session.ShuffleOff(ctx)
		}

		return fmt.Errorf("%q is not a valid shuffle mode", args[0])
	}),
}

var repeatCmd = &cobra.Command{
	Use:     "repeat [on|off|track]",
	Aliases: []string{"rp"},
	Short:   "Control repeat mode",
	Long:    "Control repeat mode. Cycles track/off/context if no mode is supplied.",
	Args:    cobra.MaximumNArgs(1),
	RunE: withSession(func(ctx context.Context, session *player.Session, _ *cobra.Command, args []string) error {
		if len(args) == 0 {
			return session.RepeatToggle(ctx)
		}

		switch args[0] {
		case "on":
			return session.RepeatOn(ctx)
		case "off":
			return session.RepeatOff(ctx)
		case "track":
			return session.RepeatTrack(ctx)
		}

		return fmt.Errorf("%q is not a valid repeat mode", args[0])
	}),
}

var playlistCmd = &cobra.Command{
	Use:     "playlist",
	Aliases: []string{"li"},
	Short:   "Play a playlist from your library",
	Args:    cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, session *player.Session, _ *cobra.Command, _ []string) error {
		playlists, err := session.Playlists(ctx)
		if err != nil {
			return err
		}

		if len(playlists) == 0 {
			fmt.Println("No playlists in your library")
			return nil
		}

		choice, err := pickPlayable("Select a playlist to play", playlists)
		if err != nil {
			return err
		}

		if err := session.Play(ctx, choice); err != nil {
			return err
		}

		fmt.Printf("Playing %s\n", ui.FormatPlayable(choice))
		return nil
	}),
}

var deviceCmd = &cobra.Command{
	Use:     "device",
	Aliases: []string{"de"},
	Short:   "Transfer playback to another device",
	Args:    cobra.NoArgs,
	RunE: withSession(func(ctx context.Context, session *player.Session, _ *cobra.Command, _ []string) error {
		devices, err := session.Devices(ctx)
		if err != nil {
			return err
		}

		if len(devices) == 0 {
			return player.ErrNoDevice
		}

		idx, err := pickDevice(devices)
		if err != nil {
			return err
		}

		if err := session.SelectDevice(ctx, devices[idx]); err != nil {
			return err
		}

		fmt.Printf("Playback on %s\n", devices[idx].Name)
		return nil
	}),
}

func init() {
	for _, cmd := range []*cobra.Command{playCmd, searchCmd} {
		cmd.Flags().BoolP("track", "t", false, "tracks")
		cmd.Flags().BoolP("playlist", "p", false, "playlists")
		cmd.Flags().BoolP("album", "a", false, "albums")
		cmd.Flags().BoolP("artist", "A", false, "artists")
		cmd.Flags().BoolP("show", "s", false, "shows")
		cmd.Flags().BoolP("episode", "e", false, "episodes")

		cmd.MarkFlagsOneRequired("track", "playlist", "album", "artist", "show", "episode")
		cmd.MarkFlagsMutuallyExclusive("track", "playlist", "album", "artist", "show", "episode")
	}
}

func searchTypeFromFlags(cmd *cobra.Command) (spotify.SearchType, error) {
	kinds := []struct {
		flag string
		t    spotify.SearchType
	}{
		{"track", spotify.SearchTypeTrack},
		{"playlist", spotify.SearchTypePlaylist},
		{"album", spotify.SearchTypeAlbum},
		{"artist", spotify.SearchTypeArtist},
		{"show", spotify.SearchTypeShow},
		{"episode", spotify.SearchTypeEpisode},
	}

	for _, kind := range kinds {
		set, err := cmd.Flags().GetBool(kind.flag)
		if err != nil {
			return 0, err
		}
		if set {
			return kind.t, nil
		}
	}

	return 0, fmt.Errorf("a content type flag is required")
}

func pickPlayable(title string, playables []player.Playable) (player.Playable, error) {
	items := make([]ui.Item, len(playables))
	for i, playable := range playables {
		items[i] = ui.Item{
			Title: playable.Name,
			Desc:  describePlayable(playable),
		}
	}

	idx, err := ui.Pick(title, items)
	if err != nil {
		return player.Playable{}, err
	}

	return playables[idx], nil
}

func describePlayable(playable player.Playable) string {
	if playable.By == "" {
		return playable.Kind.Label()
	}

	return fmt.Sprintf("%s • %s", playable.Kind.Label(), playable.By)
}

func pickDevice(devices []spotify.PlayerDevice) (int, error) {
	items := make([]ui.Item, len(devices))
	for i, device := range devices {
		desc := device.Type
		if device.Active {
			desc += " • active"
		}
		items[i] = ui.Item{Title: device.Name, Desc: desc}
	}

	return ui.Pick("Select a playback device", items)
}
