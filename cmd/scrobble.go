package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastfm/internal/config"
	"github.com/jfmyers9/lastfm/pkg/lastfm"
)

var scrobbleCmd = &cobra.Command{
	Use:   "scrobble <artist> <track>",
	Short: "Scrobble a track to Last.fm",
	Long: `Submit a scrobble for the authenticated account.

Requires a session key; run 'lastfm auth' first.`,
	Args: cobra.ExactArgs(2),
	RunE: runScrobble,
}

func init() {
	rootCmd.AddCommand(scrobbleCmd)

	scrobbleCmd.Flags().StringP("album", "a", "", "Album name")
	scrobbleCmd.Flags().Bool("now-playing", false, "Send a now playing update instead of a scrobble")
}

func runScrobble(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	album, _ := cmd.Flags().GetString("album")
	track := lastfm.TrackInfo{
		Artist: args[0],
		Track:  args[1],
		Album:  album,
	}

	if nowPlaying, _ := cmd.Flags().GetBool("now-playing"); nowPlaying {
		resp, err := client.Scrobble().UpdateNowPlaying(ctx, track)
		if err != nil {
			return fmt.Errorf("failed to update now playing: %w", err)
		}
		if resp.IgnoredMessage.Code != 0 {
			return fmt.Errorf("now playing ignored: %s", resp.IgnoredMessage.Text)
		}
		fmt.Printf("Now playing: %s - %s\n", track.Artist, track.Track)
		return nil
	}

	resp, err := client.Scrobble().SubmitScrobble(ctx, track, time.Now())
	if err != nil {
		return fmt.Errorf("failed to scrobble: %w", err)
	}
	if resp.Ignored > 0 {
		msg := ""
		if len(resp.Scrobbles) > 0 {
			msg = resp.Scrobbles[0].IgnoredMessage.Text
		}
		return fmt.Errorf("scrobble ignored: %s", msg)
	}
	fmt.Printf("Scrobbled: %s - %s\n", track.Artist, track.Track)
	return nil
}
