package lastfm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jfmyers9/lastfm/pkg/memo"
)

// WeeklyChart is one week-long charting window in a user's history. The
// boundaries come from user.getWeeklyChartList and must be passed back
// verbatim when requesting that week's chart.
type WeeklyChart struct {
	Start time.Time
	End   time.Time
}

func (w WeeklyChart) String() string {
	return fmt.Sprintf("lastfm.WeeklyChart(%s - %s)",
		w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// WeeklyAlbumChart is a user's album chart for one week.
type WeeklyAlbumChart struct {
	WeeklyChart
	Albums []*Album
}

// WeeklyArtistChart is a user's artist chart for one week.
type WeeklyArtistChart struct {
	WeeklyChart
	Artists []*Artist
}

// WeeklyTrackChart is a user's track chart for one week.
type WeeklyTrackChart struct {
	WeeklyChart
	Tracks []*Track
}

// weeklyChartData is the from/to attribute pair shared by chart list
// entries and chart responses.
type weeklyChartData struct {
	From string `xml:"from,attr"`
	To   string `xml:"to,attr"`
}

func (d weeklyChartData) chart() WeeklyChart {
	return WeeklyChart{Start: unixTime(d.From), End: unixTime(d.To)}
}

// WeeklyChartList returns the charting windows available for the user,
// oldest first, memoized per instance.
func (u *User) WeeklyChartList(ctx context.Context) ([]WeeklyChart, error) {
	return memo.Get(&u.props, "weeklyChartList", func() ([]WeeklyChart, error) {
		body, err := u.client.fetch(ctx, "user.getWeeklyChartList", u.params(), callOpts{})
		if err != nil {
			return nil, err
		}
		var resp struct {
			List struct {
				Charts []weeklyChartData `xml:"chart"`
			} `xml:"weeklychartlist"`
		}
		if err := unwrap(body, &resp); err != nil {
			return nil, fmt.Errorf("lastfm: failed to parse user.getWeeklyChartList response: %w", err)
		}
		charts := make([]WeeklyChart, 0, len(resp.List.Charts))
		for _, d := range resp.List.Charts {
			charts = append(charts, d.chart())
		}
		return charts, nil
	})
}

// chartParams validates and encodes a chart window. Boundaries are
// all-or-nothing: either both are provided, or both are zero and the API
// returns the most recent week.
func chartParams(user string, start, end time.Time) (map[string]string, error) {
	params := map[string]string{"user": user}
	if start.IsZero() != end.IsZero() {
		return nil, ErrChartPeriod
	}
	if !start.IsZero() {
		params["from"] = strconv.FormatInt(start.Unix(), 10)
		params["to"] = strconv.FormatInt(end.Unix(), 10)
	}
	return params, nil
}

// GetWeeklyAlbumChart returns the user's album chart for the window
// bounded by start and end. Zero boundaries request the most recent week.
func (u *User) GetWeeklyAlbumChart(ctx context.Context, start, end time.Time) (*WeeklyAlbumChart, error) {
	params, err := chartParams(u.name, start, end)
	if err != nil {
		return nil, err
	}
	body, err := u.client.fetch(ctx, "user.getWeeklyAlbumChart", params, callOpts{})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Chart struct {
			weeklyChartData
			Albums []albumData `xml:"album"`
		} `xml:"weeklyalbumchart"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse user.getWeeklyAlbumChart response: %w", err)
	}
	albums := make([]*Album, 0, len(resp.Chart.Albums))
	for _, d := range resp.Chart.Albums {
		a, err := albumFromData(u.client, d)
		if err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	return &WeeklyAlbumChart{WeeklyChart: resp.Chart.chart(), Albums: albums}, nil
}

// RecentWeeklyAlbumChart returns the most recent weekly album chart,
// memoized per instance.
func (u *User) RecentWeeklyAlbumChart(ctx context.Context) (*WeeklyAlbumChart, error) {
	return memo.Get(&u.props, "recentWeeklyAlbumChart", func() (*WeeklyAlbumChart, error) {
		return u.GetWeeklyAlbumChart(ctx, time.Time{}, time.Time{})
	})
}

// WeeklyAlbumChartList returns all of the user's weekly album charts, most
// recent first, memoized per instance. Weeks whose chart the API fails to
// produce are skipped rather than failing the whole aggregation; transport
// failures still abort it.
func (u *User) WeeklyAlbumChartList(ctx context.Context) ([]*WeeklyAlbumChart, error) {
	return memo.Get(&u.props, "weeklyAlbumChartList", func() ([]*WeeklyAlbumChart, error) {
		return chartList(ctx, u, u.GetWeeklyAlbumChart)
	})
}

// GetWeeklyArtistChart returns the user's artist chart for the window
// bounded by start and end. Zero boundaries request the most recent week.
func (u *User) GetWeeklyArtistChart(ctx context.Context, start, end time.Time) (*WeeklyArtistChart, error) {
	params, err := chartParams(u.name, start, end)
	if err != nil {
		return nil, err
	}
	body, err := u.client.fetch(ctx, "user.getWeeklyArtistChart", params, callOpts{})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Chart struct {
			weeklyChartData
			Artists []artistData `xml:"artist"`
		} `xml:"weeklyartistchart"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse user.getWeeklyArtistChart response: %w", err)
	}
	artists, err := artistsFromData(u.client, resp.Chart.Artists)
	if err != nil {
		return nil, err
	}
	return &WeeklyArtistChart{WeeklyChart: resp.Chart.chart(), Artists: artists}, nil
}

// RecentWeeklyArtistChart returns the most recent weekly artist chart,
// memoized per instance.
func (u *User) RecentWeeklyArtistChart(ctx context.Context) (*WeeklyArtistChart, error) {
	return memo.Get(&u.props, "recentWeeklyArtistChart", func() (*WeeklyArtistChart, error) {
		return u.GetWeeklyArtistChart(ctx, time.Time{}, time.Time{})
	})
}

// WeeklyArtistChartList returns all of the user's weekly artist charts,
// most recent first, memoized per instance. Per-week API failures are
// skipped.
func (u *User) WeeklyArtistChartList(ctx context.Context) ([]*WeeklyArtistChart, error) {
	return memo.Get(&u.props, "weeklyArtistChartList", func() ([]*WeeklyArtistChart, error) {
		return chartList(ctx, u, u.GetWeeklyArtistChart)
	})
}

// GetWeeklyTrackChart returns the user's track chart for the window
// bounded by start and end. Zero boundaries request the most recent week.
func (u *User) GetWeeklyTrackChart(ctx context.Context, start, end time.Time) (*WeeklyTrackChart, error) {
	params, err := chartParams(u.name, start, end)
	if err != nil {
		return nil, err
	}
	body, err := u.client.fetch(ctx, "user.getWeeklyTrackChart", params, callOpts{})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Chart struct {
			weeklyChartData
			Tracks []trackData `xml:"track"`
		} `xml:"weeklytrackchart"`
	}
	if err := unwrap(body, &resp); err != nil {
		return nil, fmt.Errorf("lastfm: failed to parse user.getWeeklyTrackChart response: %w", err)
	}
	tracks, err := tracksFromData(u.client, resp.Chart.Tracks, false)
	if err != nil {
		return nil, err
	}
	return &WeeklyTrackChart{WeeklyChart: resp.Chart.chart(), Tracks: tracks}, nil
}

// RecentWeeklyTrackChart returns the most recent weekly track chart,
// memoized per instance.
func (u *User) RecentWeeklyTrackChart(ctx context.Context) (*WeeklyTrackChart, error) {
	return memo.Get(&u.props, "recentWeeklyTrackChart", func() (*WeeklyTrackChart, error) {
		return u.GetWeeklyTrackChart(ctx, time.Time{}, time.Time{})
	})
}

// WeeklyTrackChartList returns all of the user's weekly track charts, most
// recent first, memoized per instance. Per-week API failures are skipped.
func (u *User) WeeklyTrackChartList(ctx context.Context) ([]*WeeklyTrackChart, error) {
	return memo.Get(&u.props, "weeklyTrackChartList", func() ([]*WeeklyTrackChart, error) {
		return chartList(ctx, u, u.GetWeeklyTrackChart)
	})
}

// chartList fetches one chart per available window, most recent first. The
// API occasionally has no chart for a listed week and answers with an
// error; those weeks are dropped so one bad week cannot poison the whole
// history. Errors that are not API errors abort the aggregation.
func chartList[C any](ctx context.Context, u *User, get func(context.Context, time.Time, time.Time) (*C, error)) ([]*C, error) {
	windows, err := u.WeeklyChartList(ctx)
	if err != nil {
		return nil, err
	}
	charts := make([]*C, 0, len(windows))
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		chart, err := get(ctx, w.Start, w.End)
		if err != nil {
			var lfmErr *Error
			if errors.As(err, &lfmErr) {
				u.client.logger.Debug().
					Str("user", u.name).
					Time("from", w.Start).
					Time("to", w.End).
					Int("code", lfmErr.Code).
					Msg("skipping weekly chart")
				continue
			}
			return nil, err
		}
		charts = append(charts, chart)
	}
	return charts, nil
}
