package cmd

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/lastfm/internal/config"
	"github.com/jfmyers9/lastfm/pkg/lastfm"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Inspect Last.fm user profiles",
	Long: `Inspect a Last.fm user: profile info, friends, top charts and
listening history.

The user name defaults to default_user from the config file, which
'lastfm auth' sets to the authenticated account.`,
}

var userInfoCmd = &cobra.Command{
	Use:   "info [name]",
	Short: "Show a user's profile",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUserInfo,
}

var userFriendsCmd = &cobra.Command{
	Use:   "friends [name]",
	Short: "List a user's friends",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUserFriends,
}

var userTopTracksCmd = &cobra.Command{
	Use:   "top-tracks [name]",
	Short: "Show a user's most played tracks",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUserTopTracks,
}

var userRecentCmd = &cobra.Command{
	Use:   "recent [name]",
	Short: "Show a user's recently played tracks",
	Long: `Show a user's recently played tracks.

The output format can be customized in ~/.config/lastfm/config.yaml
using a Go template. Available fields: .Artist, .Name, .Album`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUserRecent,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userInfoCmd)
	userCmd.AddCommand(userFriendsCmd)
	userCmd.AddCommand(userTopTracksCmd)
	userCmd.AddCommand(userRecentCmd)

	userTopTracksCmd.Flags().StringP("period", "p", "overall", "Chart period (overall, 7day, 1month, 3month, 6month, 12month)")
	userTopTracksCmd.Flags().IntP("limit", "l", 10, "Number of tracks to show")
	userFriendsCmd.Flags().IntP("limit", "l", 0, "Number of friends to show (0 = API default)")
	userRecentCmd.Flags().IntP("limit", "l", 10, "Number of tracks to show")
	userRecentCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
}

// resolveUser picks the user name from the argument list or the config.
func resolveUser(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.DefaultUser != "" {
		return cfg.DefaultUser, nil
	}
	return "", fmt.Errorf("no user name given and no default_user configured")
}

// userSetup loads config, builds a client and resolves the target user.
func userSetup(args []string) (*config.Config, *lastfm.User, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	client, err := newClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	name, err := resolveUser(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	user, err := client.User(name)
	if err != nil {
		return nil, nil, err
	}
	return cfg, user, nil
}

func runUserInfo(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, user, err := userSetup(args)
	if err != nil {
		return err
	}

	fmt.Printf("User: %s\n", user.Name())

	neighbour, err := user.NearestNeighbour(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch neighbours: %w", err)
	}
	if neighbour != nil {
		fmt.Printf("Nearest neighbour: %s (match %.2f)\n", neighbour.Name(), neighbour.Stats().Match)
	}

	artist, err := user.TopArtist(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch top artists: %w", err)
	}
	if artist != nil {
		fmt.Printf("Top artist: %s\n", artist.Name())
	}

	track, err := user.MostRecentTrack(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch recent tracks: %w", err)
	}
	if track != nil {
		fmt.Printf("Most recent track: %s - %s\n", track.Artist().Name(), track.Name())
	}

	return nil
}

func runUserFriends(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, user, err := userSetup(args)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	friends, err := user.GetFriends(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch friends: %w", err)
	}

	for _, friend := range friends {
		if friend.RealName() != "" {
			fmt.Printf("%s (%s)\n", friend.Name(), friend.RealName())
		} else {
			fmt.Println(friend.Name())
		}
	}
	return nil
}

func runUserTopTracks(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, user, err := userSetup(args)
	if err != nil {
		return err
	}

	period, _ := cmd.Flags().GetString("period")
	limit, _ := cmd.Flags().GetInt("limit")

	tracks, err := user.GetTopTracks(ctx, lastfm.Period(period))
	if err != nil {
		return fmt.Errorf("failed to fetch top tracks: %w", err)
	}
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}

	for _, track := range tracks {
		fmt.Printf("%3d. %s - %s (%d plays)\n",
			track.Stats().Rank, track.Artist().Name(), track.Name(), track.Stats().PlayCount)
	}
	return nil
}

// trackFields is the template context for recent-track output.
type trackFields struct {
	Artist string
	Name   string
	Album  string
}

func runUserRecent(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, user, err := userSetup(args)
	if err != nil {
		return err
	}

	format := cfg.OutputFormat
	if flag, _ := cmd.Flags().GetString("format"); flag != "" {
		format = flag
	}
	tmpl, err := template.New("track").Parse(format)
	if err != nil {
		return fmt.Errorf("invalid output format template: %w", err)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	tracks, err := user.GetRecentTracks(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch recent tracks: %w", err)
	}

	for _, track := range tracks {
		fields := trackFields{
			Artist: track.Artist().Name(),
			Name:   track.Name(),
		}
		if album := track.Album(); album != nil {
			fields.Album = album.Name()
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, fields); err != nil {
			return fmt.Errorf("failed to format track: %w", err)
		}
		fmt.Println(buf.String())
	}
	return nil
}
