// Package feeds consumes the external fixtures/odds feed. Everything here
// is best-effort: callers treat any failure as "no enrichment" and carry on
// with text-only retrieval.
package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sandevgo/pitchside/internal/config"
	"github.com/sandevgo/pitchside/internal/core"
	"github.com/sandevgo/pitchside/pkg/log"
	"github.com/sandevgo/pitchside/pkg/retry"
)

type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

type Fixture struct {
	ID          string    `json:"id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	Competition string    `json:"competition,omitempty"`
	KickOff     time.Time `json:"kick_off"`
	HomeOdds    float64   `json:"home_odds,omitempty"`
	DrawOdds    float64   `json:"draw_odds,omitempty"`
	AwayOdds    float64   `json:"away_odds,omitempty"`
}

const teamsCacheKey = "teams"

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	cache   *gocache.Cache
	retrier *retry.Retrier
}

func NewClient(cfg *config.FeedsConfig) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		cache:   gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		retrier: retry.NewDefaultRetrier(),
	}
}

// Teams returns the known team list, served from cache inside the TTL.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	if cached, ok := c.cache.Get(teamsCacheKey); ok {
		return cached.([]Team), nil
	}

	var teams []Team
	if err := c.getJSON(ctx, "/v1/teams", &teams); err != nil {
		return nil, err
	}

	c.cache.SetDefault(teamsCacheKey, teams)
	return teams, nil
}

// NextFixture returns the next scheduled fixture for a team, or nil when
// none is scheduled.
func (c *Client) NextFixture(ctx context.Context, teamID string) (*Fixture, error) {
	key := "fixture:" + teamID
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*Fixture), nil
	}

	var fixtures []Fixture
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/teams/%s/fixtures?limit=1", teamID), &fixtures); err != nil {
		return nil, err
	}
	if len(fixtures) == 0 {
		return nil, nil
	}

	fixture := &fixtures[0]
	c.cache.SetDefault(key, fixture)
	return fixture, nil
}

// ResolveTeam implements retrieval.TeamResolver: it scans the query text
// for a known team name or alias. A feed outage is logged at debug and
// reported as "no match" so retrieval degrades to text-only.
func (c *Client) ResolveTeam(ctx context.Context, text string) (string, bool) {
	teams, err := c.Teams(ctx)
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("team feed unavailable, skipping team filter")
		return "", false
	}

	lower := strings.ToLower(text)
	for _, team := range teams {
		if team.Name != "" && strings.Contains(lower, strings.ToLower(team.Name)) {
			return team.ID, true
		}
		for _, alias := range team.Aliases {
			if alias != "" && strings.Contains(lower, strings.ToLower(alias)) {
				return team.ID, true
			}
		}
	}
	return "", false
}

// FixtureLine renders one fixture as a prompt enrichment line.
func FixtureLine(f *Fixture) string {
	if f == nil {
		return ""
	}
	line := fmt.Sprintf("Upcoming: %s vs %s", f.HomeTeam, f.AwayTeam)
	if f.Competition != "" {
		line += " (" + f.Competition + ")"
	}
	if !f.KickOff.IsZero() {
		line += ", kick-off " + f.KickOff.Format("Mon 2 Jan 15:04")
	}
	if f.HomeOdds > 0 && f.DrawOdds > 0 && f.AwayOdds > 0 {
		line += fmt.Sprintf(", odds %.2f/%.2f/%.2f", f.HomeOdds, f.DrawOdds, f.AwayOdds)
	}
	return line
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		req.Header.Set("User-Agent", core.AppUserAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
		}
		return json.Unmarshal(data, out)
	})
}
