package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/matchsync/internal/domain/competition"
	"github.com/riskibarqy/matchsync/internal/domain/match"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
)

const defaultProviderPriority = 100

type matchGateway interface {
	FindMatchByExternalID(ctx context.Context, externalID string) (match.Match, bool, error)
	FindMatchByTeamsAndDate(ctx context.Context, homeTeamID, awayTeamID int64, day time.Time) (match.Match, bool, error)
	UpsertMatches(ctx context.Context, items []match.Match) (UpsertReport, error)
}

type teamResolver interface {
	Resolve(ctx context.Context, ext ExternalTeam) (team.Team, error)
}

// RecordFailure is one provider record that was skipped or failed to store.
type RecordFailure struct {
	Provider   string `json:"provider"`
	ExternalID string `json:"external_id"`
	Reason     string `json:"reason"`
	Message    string `json:"message,omitempty"`
}

// ReconcileResult counts what happened to one batch. Skipped records failed
// validation; Errors failed in the store or upstream.
type ReconcileResult struct {
	Stored    int             `json:"stored"`
	Unchanged int             `json:"unchanged"`
	Skipped   int             `json:"skipped"`
	Errors    int             `json:"errors"`
	Failures  []RecordFailure `json:"failures,omitempty"`
}

func (r *ReconcileResult) add(other ReconcileResult) {
	r.Stored += other.Stored
	r.Unchanged += other.Unchanged
	r.Skipped += other.Skipped
	r.Errors += other.Errors
	r.Failures = append(r.Failures, other.Failures...)
}

func (r *ReconcileResult) fail(provider, externalID string, err error, skipped bool) {
	if skipped {
		r.Skipped++
	} else {
		r.Errors++
	}
	r.Failures = append(r.Failures, RecordFailure{
		Provider:   provider,
		ExternalID: externalID,
		Reason:     FailureReason(err),
		Message:    err.Error(),
	})
}

type MatchReconcilerConfig struct {
	// Priorities ranks providers; a lower number wins conflicting fields.
	Priorities map[string]int
}

// MatchReconciler turns provider records into canonical matches and writes the
// ones that changed.
type MatchReconciler struct {
	teams  teamResolver
	store  matchGateway
	cfg    MatchReconcilerConfig
	logger *logging.Logger
}

func NewMatchReconciler(teams teamResolver, store matchGateway, cfg MatchReconcilerConfig, logger *logging.Logger) *MatchReconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchReconciler{
		teams:  teams,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

type candidate struct {
	item     match.Match
	provider string
	priority int
	aliases  []string
}

// Reconcile processes records from one or more providers. A failing record is
// counted and never aborts the rest of the batch.
func (r *MatchReconciler) Reconcile(ctx context.Context, records []ExternalMatch) ReconcileResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchReconciler.Reconcile")
	defer span.End()

	var result ReconcileResult
	if len(records) == 0 {
		return result
	}

	resolved := make(map[string]team.Team)
	candidates := make([]candidate, 0, len(records))
	for _, ext := range records {
		if err := ctx.Err(); err != nil {
			result.fail(ext.Source, ext.ExternalID, err, false)
			continue
		}
		item, err := r.normalize(ctx, ext, resolved)
		if err != nil {
			result.fail(ext.Source, ext.ExternalID, err, isValidationError(err))
			r.logger.WarnContext(ctx, "match record skipped",
				"provider", ext.Source,
				"external_id", ext.ExternalID,
				"reason", FailureReason(err),
				"error", err,
			)
			continue
		}
		candidates = append(candidates, candidate{
			item:     item,
			provider: ext.Source,
			priority: r.priority(ext.Source),
		})
	}

	writes := make([]match.Match, 0, len(candidates))
	owners := make(map[string]string, len(candidates))
	for _, merged := range mergeByKey(candidates) {
		item, changed, err := r.prepare(ctx, merged)
		if err != nil {
			result.fail(merged.provider, merged.item.ExternalID, err, false)
			continue
		}
		if !changed {
			result.Unchanged++
			continue
		}
		writes = append(writes, item)
		owners[item.ExternalID] = merged.provider
	}

	if len(writes) == 0 {
		return result
	}
	report, err := r.store.UpsertMatches(ctx, writes)
	if err != nil {
		for _, item := range writes {
			result.fail(owners[item.ExternalID], item.ExternalID, err, false)
		}
		r.logger.ErrorContext(ctx, "match batch write failed", "count", len(writes), "error", err)
		return result
	}

	result.Stored += report.Stored
	for _, failure := range report.Failures {
		result.Errors++
		result.Failures = append(result.Failures, RecordFailure{
			Provider:   owners[failure.ExternalID],
			ExternalID: failure.ExternalID,
			Reason:     failure.Reason,
			Message:    failure.Err.Error(),
		})
		r.logger.WarnContext(ctx, "match write refused",
			"provider", owners[failure.ExternalID],
			"external_id", failure.ExternalID,
			"reason", failure.Reason,
			"error", failure.Err,
		)
	}
	return result
}

// normalize validates one record and resolves its teams. Kickoff is checked
// first so a broken record never creates teams.
func (r *MatchReconciler) normalize(ctx context.Context, ext ExternalMatch, resolved map[string]team.Team) (match.Match, error) {
	source := strings.TrimSpace(ext.Source)
	nativeID := strings.TrimSpace(ext.ExternalID)
	if source == "" || nativeID == "" {
		return match.Match{}, fmt.Errorf("%w: source and external id are required", ErrInvalidMatchPayload)
	}
	if ext.KickoffAt.IsZero() {
		return match.Match{}, fmt.Errorf("%w: unparseable kickoff %q", ErrInvalidMatchPayload, ext.RawKickoff)
	}

	status := match.NormalizeStatus(ext.ProviderStatus, source)
	if !match.KnownStatus(ext.ProviderStatus, source) {
		r.logger.DebugContext(ctx, "unknown provider status mapped to scheduled",
			"provider", source,
			"external_id", nativeID,
			"status", ext.ProviderStatus,
		)
	}
	if status == match.StatusFinished && (ext.HomeScore == nil || ext.AwayScore == nil) {
		return match.Match{}, fmt.Errorf("%w: finished without final score", ErrInvalidMatchPayload)
	}

	home, err := r.resolveTeam(ctx, ext.Home, source, resolved)
	if err != nil {
		return match.Match{}, err
	}
	away, err := r.resolveTeam(ctx, ext.Away, source, resolved)
	if err != nil {
		return match.Match{}, err
	}
	if home.ID == 0 || away.ID == 0 {
		return match.Match{}, fmt.Errorf("%w: team id missing", ErrUnresolvedTeamReference)
	}
	if home.ID == away.ID {
		return match.Match{}, fmt.Errorf("%w: home and away resolve to team_id=%d", ErrUnresolvedTeamReference, home.ID)
	}

	return match.Match{
		ExternalID:      match.ExternalID(source, nativeID),
		Source:          source,
		OwnerExternalID: match.ExternalID(source, nativeID),
		HomeTeamID:      home.ID,
		AwayTeamID:      away.ID,
		MatchDate:       ext.KickoffAt.UTC(),
		Status:          status,
		HomeScore:       ext.HomeScore,
		AwayScore:       ext.AwayScore,
		CompetitionID:   competition.NormalizeCode(ext.CompetitionCode),
		CompetitionName: strings.TrimSpace(ext.CompetitionName),
		Venue:           strings.TrimSpace(ext.Venue),
		Referee:         strings.TrimSpace(ext.Referee),
		Attendance:      ext.Attendance,
		Matchday:        ext.Matchday,
		Season:          strings.TrimSpace(ext.Season),
	}, nil
}

func (r *MatchReconciler) resolveTeam(ctx context.Context, ext ExternalTeam, source string, resolved map[string]team.Team) (team.Team, error) {
	if strings.TrimSpace(ext.Source) == "" {
		ext.Source = source
	}
	key := team.TaggedID(ext.Source, ext.ExternalID)
	if item, ok := resolved[key]; ok {
		return item, nil
	}
	item, err := r.teams.Resolve(ctx, ext)
	if err != nil {
		return team.Team{}, err
	}
	resolved[key] = item
	return item, nil
}

// prepare finds the stored row for a merged candidate and applies the update
// policy. changed is false when storing would be a no-op.
func (r *MatchReconciler) prepare(ctx context.Context, c candidate) (match.Match, bool, error) {
	existing, found, err := r.findExisting(ctx, c)
	if err != nil {
		return match.Match{}, false, err
	}
	if !found {
		return c.item, true, nil
	}

	owner := existing.Owner()
	ownerRank := r.priority(owner)
	incoming := c.item
	if owner != "" && owner != c.provider && ownerRank < c.priority {
		incoming = match.Yield(existing, c.item)
	}
	updated, res := match.Apply(existing, incoming)
	changed := res.Changed
	if owner != c.provider && (owner == "" || c.priority < ownerRank) {
		updated.OwnerExternalID = c.item.ExternalID
		changed = true
	}
	if res.StatusRefused {
		r.logger.WarnContext(ctx, "status transition refused",
			"provider", c.provider,
			"external_id", existing.ExternalID,
			"stored_status", existing.Status,
			"incoming_status", res.RefusedStatus,
		)
	}
	if res.PreservedScores {
		r.logger.InfoContext(ctx, "kept stored final score",
			"provider", c.provider,
			"external_id", existing.ExternalID,
		)
	}
	return updated, changed, nil
}

func (r *MatchReconciler) findExisting(ctx context.Context, c candidate) (match.Match, bool, error) {
	ids := append([]string{c.item.ExternalID}, c.aliases...)
	for _, externalID := range ids {
		existing, found, err := r.store.FindMatchByExternalID(ctx, externalID)
		if err != nil || found {
			return existing, found, err
		}
	}
	return r.store.FindMatchByTeamsAndDate(ctx, c.item.HomeTeamID, c.item.AwayTeamID, match.MergeDay(c.item.MatchDate))
}

func (r *MatchReconciler) priority(source string) int {
	if p, ok := r.cfg.Priorities[source]; ok {
		return p
	}
	return defaultProviderPriority
}

type mergeKey struct {
	home int64
	away int64
	day  time.Time
}

// mergeByKey collapses candidates describing the same fixture. Input order is
// kept for the first member of each group.
func mergeByKey(candidates []candidate) []candidate {
	order := make([]mergeKey, 0, len(candidates))
	groups := make(map[mergeKey][]candidate, len(candidates))
	for _, c := range candidates {
		key := mergeKey{home: c.item.HomeTeamID, away: c.item.AwayTeamID, day: match.MergeDay(c.item.MatchDate)}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}

	out := make([]candidate, 0, len(order))
	for _, key := range order {
		members := groups[key]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].priority < members[j].priority
		})
		winner := members[0]
		for _, loser := range members[1:] {
			winner.item = match.Combine(winner.item, loser.item)
			if loser.item.ExternalID != winner.item.ExternalID {
				winner.aliases = append(winner.aliases, loser.item.ExternalID)
			}
		}
		out = append(out, winner)
	}
	return out
}

func isValidationError(err error) bool {
	switch FailureReason(err) {
	case "invalid_team_payload", "unresolved_team_reference", "invalid_match_payload":
		return true
	default:
		return false
	}
}
