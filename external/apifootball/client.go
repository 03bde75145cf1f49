package apifootball

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchsync/external/providerhttp"
	"github.com/riskibarqy/matchsync/internal/domain/competition"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/rawdata"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/platform/resilience"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

const (
	DefaultBaseURL   = "https://v3.football.api-sports.io"
	defaultRateLimit = 100
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	// Host enables the RapidAPI headers when set.
	Host           string
	Timeout        time.Duration
	MaxRetries     int
	RateLimit      int
	RateWindow     time.Duration
	BlockOnBudget  bool
	LeagueIDs      map[string]int64
	Season         int
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client reads fixtures from API-Football v3. Competition codes are mapped to
// league ids through LeagueIDs.
type Client struct {
	http         *providerhttp.Client
	leagueByCode map[string]int64
	codeByLeague map[int64]string
	season       int
	now          func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}

	headers := map[string]string{"x-apisports-key": cfg.Token}
	if host := strings.TrimSpace(cfg.Host); host != "" {
		headers["X-RapidAPI-Key"] = cfg.Token
		headers["X-RapidAPI-Host"] = host
	}

	leagueByCode := make(map[string]int64, len(cfg.LeagueIDs))
	codeByLeague := make(map[int64]string, len(cfg.LeagueIDs))
	for code, id := range cfg.LeagueIDs {
		code = competition.NormalizeCode(code)
		if code == "" || id <= 0 {
			continue
		}
		leagueByCode[code] = id
		codeByLeague[id] = code
	}

	return &Client{
		http: providerhttp.New(providerhttp.Config{
			Provider:          match.SourceAPIFootball,
			HTTPClient:        cfg.HTTPClient,
			BaseURL:           baseURL,
			Headers:           headers,
			Secrets:           []string{cfg.Token},
			Timeout:           cfg.Timeout,
			MaxRetries:        cfg.MaxRetries,
			RateLimit:         rateLimit,
			RateWindow:        cfg.RateWindow,
			BlockOnBudget:     cfg.BlockOnBudget,
			RetryAfterHeaders: []string{"Retry-After", "X-RateLimit-Reset"},
			IsThrottled:       isThrottled,
			CircuitBreaker:    cfg.CircuitBreaker,
			Logger:            cfg.Logger,
		}),
		leagueByCode: leagueByCode,
		codeByLeague: codeByLeague,
		season:       cfg.Season,
		now:          time.Now,
	}
}

func (c *Client) Source() string {
	return match.SourceAPIFootball
}

func (c *Client) Budget() resilience.BudgetSnapshot {
	return c.http.Budget()
}

// SupportedCompetitions lists the mapped competition codes in sorted order.
func (c *Client) SupportedCompetitions() []string {
	out := make([]string, 0, len(c.leagueByCode))
	for code := range c.leagueByCode {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func (c *Client) FetchCompetitionMatches(ctx context.Context, competitionCode string, from, to time.Time) (usecase.ProviderBatch, error) {
	code := competition.NormalizeCode(competitionCode)
	leagueID, ok := c.leagueByCode[code]
	if !ok {
		return usecase.ProviderBatch{}, fmt.Errorf("%w: api-football has no league mapping for competition=%s", usecase.ErrUnsupportedCompetition, code)
	}

	query := url.Values{}
	query.Set("league", strconv.FormatInt(leagueID, 10))
	query.Set("season", strconv.Itoa(c.seasonFor(from)))
	query.Set("from", from.UTC().Format(time.DateOnly))
	query.Set("to", to.UTC().Format(time.DateOnly))

	items, raw, err := c.fetchFixtures(ctx, query)
	if err != nil {
		return usecase.ProviderBatch{}, fmt.Errorf("fetch competition=%s fixtures: %w", code, err)
	}

	entityKey := code + ":" + query.Get("from") + ":" + query.Get("to")
	return c.batch(items, rawdata.EntityCompetitionMatches, entityKey, raw, false), nil
}

func (c *Client) FetchMatchesByDate(ctx context.Context, day time.Time) (usecase.ProviderBatch, error) {
	day = match.MergeDay(day)
	query := url.Values{}
	query.Set("date", day.Format(time.DateOnly))

	items, raw, err := c.fetchFixtures(ctx, query)
	if err != nil {
		return usecase.ProviderBatch{}, fmt.Errorf("fetch fixtures day=%s: %w", day.Format(time.DateOnly), err)
	}
	return c.batch(items, rawdata.EntityDailyMatches, day.Format(time.DateOnly), raw, true), nil
}

func (c *Client) FetchMatch(ctx context.Context, nativeID string) (usecase.ProviderBatch, error) {
	nativeID = strings.TrimSpace(nativeID)
	if _, err := strconv.ParseInt(nativeID, 10, 64); err != nil {
		return usecase.ProviderBatch{}, fmt.Errorf("%w: api-football fixture id must be numeric, got=%q", usecase.ErrInvalidInput, nativeID)
	}

	query := url.Values{}
	query.Set("id", nativeID)
	items, raw, err := c.fetchFixtures(ctx, query)
	if err != nil {
		return usecase.ProviderBatch{}, fmt.Errorf("fetch fixture id=%s: %w", nativeID, err)
	}
	if len(items) == 0 {
		return usecase.ProviderBatch{}, fmt.Errorf("%w: fixture id=%s", usecase.ErrNotFound, nativeID)
	}
	return c.batch(items, rawdata.EntityMatch, nativeID, raw, false), nil
}

func (c *Client) fetchFixtures(ctx context.Context, query url.Values) ([]fixtureItem, []byte, error) {
	var envelope fixturesEnvelope
	raw, err := c.http.GetJSON(ctx, "/fixtures", query, &envelope)
	if err != nil {
		return nil, nil, err
	}
	if apiErrors := decodeAPIErrors(envelope.Errors); len(apiErrors) > 0 {
		return nil, nil, &usecase.UpstreamError{
			Provider: match.SourceAPIFootball,
			Status:   http.StatusOK,
			Body:     formatAPIErrors(apiErrors),
		}
	}
	return envelope.Response, raw, nil
}

// batch maps fixtures in provider order. Daily listings cover every league
// worldwide, so onlyMapped drops leagues without a competition mapping.
func (c *Client) batch(items []fixtureItem, entityType, entityKey string, raw []byte, onlyMapped bool) usecase.ProviderBatch {
	out := usecase.ProviderBatch{
		Matches:  make([]usecase.ExternalMatch, 0, len(items)),
		Payloads: []rawdata.Payload{rawdata.NewPayload(match.SourceAPIFootball, entityType, entityKey, raw, c.now())},
	}
	for _, item := range items {
		if item.Fixture.ID <= 0 {
			continue
		}
		code, mapped := c.codeByLeague[item.League.ID]
		if onlyMapped && !mapped {
			continue
		}
		out.Matches = append(out.Matches, mapFixture(item, code))
	}
	return out
}

// seasonFor follows the provider's convention: a season is named after the
// year it starts, and European seasons start in July.
func (c *Client) seasonFor(day time.Time) int {
	if c.season > 0 {
		return c.season
	}
	day = day.UTC()
	if day.Month() >= time.July {
		return day.Year()
	}
	return day.Year() - 1
}

func mapFixture(item fixtureItem, code string) usecase.ExternalMatch {
	league := strings.TrimSpace(item.League.Name)
	out := usecase.ExternalMatch{
		Source:          match.SourceAPIFootball,
		ExternalID:      strconv.FormatInt(item.Fixture.ID, 10),
		CompetitionCode: code,
		CompetitionName: league,
		Home:            mapTeam(item.Teams.Home, item.League),
		Away:            mapTeam(item.Teams.Away, item.League),
		RawKickoff:      item.Fixture.Date,
		ProviderStatus:  strings.TrimSpace(item.Fixture.Status.Short),
		HomeScore:       item.Goals.Home,
		AwayScore:       item.Goals.Away,
		Venue:           strings.TrimSpace(item.Fixture.Venue.Name),
		Referee:         cleanReferee(item.Fixture.Referee),
		Season:          match.SeasonLabelFromYear(item.League.Season),
	}
	if kickoff, ok := providerhttp.ParseTimestamp(item.Fixture.Date); ok {
		out.KickoffAt = kickoff
	}
	if md, ok := match.ParseMatchday(item.League.Round); ok {
		out.Matchday = &md
	}
	return out
}

func mapTeam(item teamItem, league leagueItem) usecase.ExternalTeam {
	out := usecase.ExternalTeam{
		Source:  match.SourceAPIFootball,
		Name:    strings.TrimSpace(item.Name),
		LogoURL: strings.TrimSpace(item.Logo),
	}
	if item.ID > 0 {
		out.ExternalID = strconv.FormatInt(item.ID, 10)
	}
	// International competitions report country "World".
	if country := strings.TrimSpace(league.Country); country != "" && !strings.EqualFold(country, "World") {
		out.Country = country
		out.League = strings.TrimSpace(league.Name)
	}
	return out
}

// cleanReferee drops the nationality suffix, "Michael Oliver, England" -> "Michael Oliver".
func cleanReferee(raw string) string {
	name, _, _ := strings.Cut(raw, ",")
	return strings.TrimSpace(name)
}

// isThrottled detects quota errors reported in a 200 body.
func isThrottled(status int, body []byte) bool {
	if status != http.StatusOK || len(body) == 0 {
		return false
	}
	var envelope struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return false
	}
	apiErrors := decodeAPIErrors(envelope.Errors)
	_, rateLimit := apiErrors["rateLimit"]
	_, requests := apiErrors["requests"]
	return rateLimit || requests
}

// decodeAPIErrors reads the errors field, which is [] when empty and an
// object keyed by error kind otherwise.
func decodeAPIErrors(raw json.RawMessage) map[string]string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || strings.HasPrefix(trimmed, "[") {
		return nil
	}
	var values map[string]any
	if err := sonic.Unmarshal(raw, &values); err != nil {
		return map[string]string{"decode": err.Error()}
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = strings.TrimSpace(fmt.Sprint(value))
	}
	return out
}

func formatAPIErrors(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+values[key])
	}
	return strings.Join(parts, "; ")
}

type fixturesEnvelope struct {
	Errors   json.RawMessage `json:"errors"`
	Results  int             `json:"results"`
	Response []fixtureItem   `json:"response"`
}

type fixtureItem struct {
	Fixture struct {
		ID      int64  `json:"id"`
		Referee string `json:"referee"`
		Date    string `json:"date"`
		Venue   struct {
			Name string `json:"name"`
			City string `json:"city"`
		} `json:"venue"`
		Status struct {
			Short string `json:"short"`
			Long  string `json:"long"`
		} `json:"status"`
	} `json:"fixture"`
	League leagueItem `json:"league"`
	Teams  struct {
		Home teamItem `json:"home"`
		Away teamItem `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type leagueItem struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Season  int    `json:"season"`
	Round   string `json:"round"`
}

type teamItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}
