package footballdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchsync/external/providerhttp"
	"github.com/riskibarqy/matchsync/internal/domain/competition"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/rawdata"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/platform/resilience"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

const (
	DefaultBaseURL   = "https://api.football-data.org/v4"
	defaultRateLimit = 10
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	RateLimit      int
	RateWindow     time.Duration
	BlockOnBudget  bool
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client reads fixtures from football-data.org v4.
type Client struct {
	http *providerhttp.Client
	now  func() time.Time
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

	return &Client{
		http: providerhttp.New(providerhttp.Config{
			Provider:          match.SourceFootballData,
			HTTPClient:        cfg.HTTPClient,
			BaseURL:           baseURL,
			Headers:           map[string]string{"X-Auth-Token": cfg.Token},
			Secrets:           []string{cfg.Token},
			Timeout:           cfg.Timeout,
			MaxRetries:        cfg.MaxRetries,
			RateLimit:         rateLimit,
			RateWindow:        cfg.RateWindow,
			BlockOnBudget:     cfg.BlockOnBudget,
			RetryAfterHeaders: []string{"Retry-After", "X-RequestCounter-Reset"},
			CircuitBreaker:    cfg.CircuitBreaker,
			Logger:            cfg.Logger,
		}),
		now: time.Now,
	}
}

func (c *Client) Source() string {
	return match.SourceFootballData
}

func (c *Client) Budget() resilience.BudgetSnapshot {
	return c.http.Budget()
}

func (c *Client) FetchCompetitionMatches(ctx context.Context, competitionCode string, from, to time.Time) (usecase.ProviderBatch, error) {
	code := competition.NormalizeCode(competitionCode)
	if code == "" {
		return usecase.ProviderBatch{}, fmt.Errorf("%w: competition code is required", usecase.ErrInvalidInput)
	}

	path := "/competitions/" + url.PathEscape(code) + "/matches"
	query := url.Values{}
	query.Set("dateFrom", from.UTC().Format(time.DateOnly))
	query.Set("dateTo", to.UTC().Format(time.DateOnly))

	var envelope matchesEnvelope
	raw, err := c.http.GetJSON(ctx, path, query, &envelope)
	if err != nil {
		return usecase.ProviderBatch{}, fmt.Errorf("fetch competition=%s matches: %w", code, err)
	}

	entityKey := code + ":" + query.Get("dateFrom") + ":" + query.Get("dateTo")
	return c.batch(envelope.Matches, envelope.Competition, rawdata.EntityCompetitionMatches, entityKey, raw), nil
}

func (c *Client) FetchMatchesByDate(ctx context.Context, day time.Time) (usecase.ProviderBatch, error) {
	day = match.MergeDay(day)
	query := url.Values{}
	query.Set("dateFrom", day.Format(time.DateOnly))
	query.Set("dateTo", day.AddDate(0, 0, 1).Format(time.DateOnly))

	var envelope matchesEnvelope
	raw, err := c.http.GetJSON(ctx, "/matches", query, &envelope)
	if err != nil {
		return usecase.ProviderBatch{}, fmt.Errorf("fetch matches day=%s: %w", day.Format(time.DateOnly), err)
	}

	batch := c.batch(envelope.Matches, competitionItem{}, rawdata.EntityDailyMatches, day.Format(time.DateOnly), raw)
	// dateTo is inclusive upstream, keep the requested day only.
	kept := batch.Matches[:0]
	for _, item := range batch.Matches {
		if item.KickoffAt.IsZero() || match.MergeDay(item.KickoffAt).Equal(day) {
			kept = append(kept, item)
		}
	}
	batch.Matches = kept
	return batch, nil
}

func (c *Client) FetchMatch(ctx context.Context, nativeID string) (usecase.ProviderBatch, error) {
	nativeID = strings.TrimSpace(nativeID)
	if _, err := strconv.ParseInt(nativeID, 10, 64); err != nil {
		return usecase.ProviderBatch{}, fmt.Errorf("%w: football-data match id must be numeric, got=%q", usecase.ErrInvalidInput, nativeID)
	}

	var item matchItem
	raw, err := c.http.GetJSON(ctx, "/matches/"+nativeID, nil, &item)
	if err != nil {
		return usecase.ProviderBatch{}, fmt.Errorf("fetch match id=%s: %w", nativeID, err)
	}
	if item.ID == 0 {
		return usecase.ProviderBatch{}, fmt.Errorf("%w: match id=%s", usecase.ErrNotFound, nativeID)
	}

	return c.batch([]matchItem{item}, competitionItem{}, rawdata.EntityMatch, nativeID, raw), nil
}

// FetchCompetitions lists the competitions the token can read.
func (c *Client) FetchCompetitions(ctx context.Context) (usecase.CompetitionBatch, error) {
	var envelope competitionsEnvelope
	raw, err := c.http.GetJSON(ctx, "/competitions", nil, &envelope)
	if err != nil {
		return usecase.CompetitionBatch{}, fmt.Errorf("fetch competitions: %w", err)
	}

	out := usecase.CompetitionBatch{
		Competitions: make([]competition.Competition, 0, len(envelope.Competitions)),
		Payloads:     []rawdata.Payload{rawdata.NewPayload(match.SourceFootballData, rawdata.EntityCompetitions, "all", raw, c.now())},
	}
	for _, item := range envelope.Competitions {
		if item.ID <= 0 {
			continue
		}
		out.Competitions = append(out.Competitions, mapCompetition(item))
	}
	return out, nil
}

func mapCompetition(item catalogueItem) competition.Competition {
	out := competition.Competition{
		Code:          competition.NormalizeCode(item.Code),
		ExternalID:    match.ExternalID(match.SourceFootballData, strconv.FormatInt(item.ID, 10)),
		Source:        match.SourceFootballData,
		Name:          strings.TrimSpace(item.Name),
		Type:          competition.NormalizeType(item.Type),
		AreaName:      strings.TrimSpace(item.Area.Name),
		AreaCode:      strings.TrimSpace(item.Area.Code),
		EmblemURL:     strings.TrimSpace(item.Emblem),
		CurrentSeason: match.ExtractSeason(item.CurrentSeason.StartDate),
		SeasonStart:   parseDate(item.CurrentSeason.StartDate),
		SeasonEnd:     parseDate(item.CurrentSeason.EndDate),
	}
	if md := item.CurrentSeason.CurrentMatchday; md != nil && *md > 0 {
		value := *md
		out.CurrentMatchday = &value
	}
	return out
}

func parseDate(raw string) *time.Time {
	day, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &day
}

func (c *Client) batch(items []matchItem, fallback competitionItem, entityType, entityKey string, raw []byte) usecase.ProviderBatch {
	out := usecase.ProviderBatch{
		Matches:  make([]usecase.ExternalMatch, 0, len(items)),
		Payloads: []rawdata.Payload{rawdata.NewPayload(match.SourceFootballData, entityType, entityKey, raw, c.now())},
	}
	for _, item := range items {
		if item.ID <= 0 {
			continue
		}
		out.Matches = append(out.Matches, mapMatch(item, fallback))
	}
	return out
}

func mapMatch(item matchItem, fallback competitionItem) usecase.ExternalMatch {
	comp := item.Competition
	if strings.TrimSpace(comp.Code) == "" {
		comp = fallback
	}
	compType := competition.NormalizeType(comp.Type)

	out := usecase.ExternalMatch{
		Source:          match.SourceFootballData,
		ExternalID:      strconv.FormatInt(item.ID, 10),
		CompetitionCode: competition.NormalizeCode(comp.Code),
		CompetitionName: strings.TrimSpace(comp.Name),
		Home:            mapTeam(item.HomeTeam, item.Area, comp.Name, compType),
		Away:            mapTeam(item.AwayTeam, item.Area, comp.Name, compType),
		RawKickoff:      item.UTCDate,
		ProviderStatus:  strings.TrimSpace(item.Status),
		HomeScore:       item.Score.FullTime.Home,
		AwayScore:       item.Score.FullTime.Away,
		Venue:           strings.TrimSpace(item.Venue),
		Referee:         pickReferee(item.Referees),
		Attendance:      item.Attendance,
		Season:          match.ExtractSeason(item.Season.StartDate),
	}
	if kickoff, ok := providerhttp.ParseTimestamp(item.UTCDate); ok {
		out.KickoffAt = kickoff
	}
	if item.Matchday != nil && *item.Matchday > 0 {
		md := *item.Matchday
		out.Matchday = &md
	}
	return out
}

func mapTeam(item teamItem, area areaItem, league string, compType competition.Type) usecase.ExternalTeam {
	out := usecase.ExternalTeam{
		Source:    match.SourceFootballData,
		Name:      strings.TrimSpace(item.Name),
		ShortName: strings.TrimSpace(item.ShortName),
		Code:      strings.TrimSpace(item.TLA),
		LogoURL:   strings.TrimSpace(item.Crest),
		Website:   strings.TrimSpace(item.Website),
	}
	if item.ID > 0 {
		out.ExternalID = strconv.FormatInt(item.ID, 10)
	}
	// Only domestic leagues tell us where a club is from.
	if compType == competition.TypeLeague {
		out.Country = strings.TrimSpace(area.Name)
		out.CountryCode = strings.TrimSpace(area.Code)
		out.League = strings.TrimSpace(league)
	}
	return out
}

func pickReferee(items []refereeItem) string {
	for _, item := range items {
		if strings.EqualFold(item.Type, "REFEREE") && strings.TrimSpace(item.Name) != "" {
			return strings.TrimSpace(item.Name)
		}
	}
	for _, item := range items {
		if strings.TrimSpace(item.Name) != "" {
			return strings.TrimSpace(item.Name)
		}
	}
	return ""
}

type matchesEnvelope struct {
	Competition competitionItem `json:"competition"`
	Matches     []matchItem     `json:"matches"`
}

type competitionItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
	Type string `json:"type"`
}

type competitionsEnvelope struct {
	Competitions []catalogueItem `json:"competitions"`
}

type catalogueItem struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Code          string   `json:"code"`
	Type          string   `json:"type"`
	Emblem        string   `json:"emblem"`
	Area          areaItem `json:"area"`
	CurrentSeason struct {
		StartDate       string `json:"startDate"`
		EndDate         string `json:"endDate"`
		CurrentMatchday *int   `json:"currentMatchday"`
	} `json:"currentSeason"`
}

type areaItem struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type seasonItem struct {
	StartDate string `json:"startDate"`
}

type teamItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
	Website   string `json:"website"`
}

type scoreItem struct {
	FullTime struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"fullTime"`
}

type refereeItem struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type matchItem struct {
	ID          int64           `json:"id"`
	UTCDate     string          `json:"utcDate"`
	Status      string          `json:"status"`
	Matchday    *int            `json:"matchday"`
	Venue       string          `json:"venue"`
	Attendance  *int            `json:"attendance"`
	Area        areaItem        `json:"area"`
	Competition competitionItem `json:"competition"`
	Season      seasonItem      `json:"season"`
	HomeTeam    teamItem        `json:"homeTeam"`
	AwayTeam    teamItem        `json:"awayTeam"`
	Score       scoreItem       `json:"score"`
	Referees    []refereeItem   `json:"referees"`
}
