package usecase

import (
	"context"
	"sort"

	"github.com/riskibarqy/matchsync/internal/domain/team"
)

type DuplicateGroup struct {
	Key   string      `json:"key"`
	Teams []team.Team `json:"teams"`
}

type teamLister interface {
	ListTeams(ctx context.Context) ([]team.Team, error)
}

// TeamAuditService reports canonical teams whose alias-normalized names
// collide. It never modifies data.
type TeamAuditService struct {
	teams   teamLister
	aliases *team.AliasTable
}

func NewTeamAuditService(teams teamLister, aliases *team.AliasTable) *TeamAuditService {
	if aliases == nil {
		aliases = team.DefaultAliases()
	}
	return &TeamAuditService{teams: teams, aliases: aliases}
}

func (s *TeamAuditService) FindDuplicateCandidates(ctx context.Context) ([]DuplicateGroup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamAuditService.FindDuplicateCandidates")
	defer span.End()

	items, err := s.teams.ListTeams(ctx)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string][]team.Team)
	for _, item := range items {
		key := s.aliases.Key(item.Name)
		if key == "" {
			continue
		}
		byKey[key] = append(byKey[key], item)
	}

	out := make([]DuplicateGroup, 0)
	for key, group := range byKey {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		out = append(out, DuplicateGroup{Key: key, Teams: group})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
