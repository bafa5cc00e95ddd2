package render

import (
	"fmt"
	"strings"

	"github.com/sourceplane/campaignctl/internal/campaign"
	"github.com/sourceplane/campaignctl/internal/model"
	"github.com/sourceplane/campaignctl/internal/settings"
)

// CampaignViewer provides human-readable views of a loaded campaign
type CampaignViewer struct {
	m *campaign.Model
}

// NewCampaignViewer creates a new campaign viewer
func NewCampaignViewer(m *campaign.Model) *CampaignViewer {
	return &CampaignViewer{m: m}
}

// ViewSummary returns the campaign metadata and effective settings
func (cv *CampaignViewer) ViewSummary(registry *settings.Registry) string {
	meta := cv.m.Metadata()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Campaign: %s\n", meta.Name)
	fmt.Fprintf(&sb, "  Theater:      %s\n", meta.Theater)
	if meta.Authors != "" {
		fmt.Fprintf(&sb, "  Authors:      %s\n", meta.Authors)
	}
	fmt.Fprintf(&sb, "  Factions:     %s vs %s\n", meta.PlayerFaction, meta.EnemyFaction)
	fmt.Fprintf(&sb, "  Scenario:     %s\n", meta.Scenario)
	fmt.Fprintf(&sb, "  Performance:  %s\n", meta.Performance)
	if !meta.StartDate.IsZero() {
		fmt.Fprintf(&sb, "  Start date:   %s\n", meta.StartDate.Format(model.DateLayout))
	}
	fmt.Fprintf(&sb, "  Enemy money:  %g (income x%g)\n", meta.EnemyMoney, meta.EnemyIncomeMultiplier)
	fmt.Fprintf(&sb, "  Version:      %s\n", meta.Version)
	fmt.Fprintf(&sb, "  Squadrons:    %d at %d bases\n", cv.m.SquadronCount(), len(cv.m.Bases()))

	if registry != nil {
		sb.WriteString("  Settings:\n")
		for _, opt := range registry.Options() {
			fmt.Fprintf(&sb, "    %-22s %s\n", opt.Name, cv.m.SettingsOption(opt.Name))
		}
	}
	return sb.String()
}

// ViewBases returns a tree of every base and its squadrons
func (cv *CampaignViewer) ViewBases() string {
	bases := cv.m.Bases()
	if len(bases) == 0 {
		return "No squadrons in campaign"
	}

	var sb strings.Builder
	for i, id := range bases {
		isLastBase := i == len(bases)-1
		basePrefix, childIndent := "├─ ", "│  "
		if isLastBase {
			basePrefix, childIndent = "└─ ", "   "
		}
		fmt.Fprintf(&sb, "%sBase %d\n", basePrefix, id)
		cv.writeSquadrons(&sb, cv.m.SquadronsAt(id), childIndent)
	}
	return sb.String()
}

// ViewBase returns the squadrons of a single base
func (cv *CampaignViewer) ViewBase(id int) string {
	squadrons := cv.m.SquadronsAt(id)
	if len(squadrons) == 0 {
		return fmt.Sprintf("Base %d: no squadrons", id)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Base %d\n", id)
	cv.writeSquadrons(&sb, squadrons, "")
	return sb.String()
}

func (cv *CampaignViewer) writeSquadrons(sb *strings.Builder, squadrons []model.SquadronSpec, indent string) {
	for j, sq := range squadrons {
		prefix := "├─ "
		if j == len(squadrons)-1 {
			prefix = "└─ "
		}
		role := string(sq.Primary)
		if sq.Secondary.Kind != model.SecondaryNone {
			role += "/" + sq.Secondary.String()
		}
		fmt.Fprintf(sb, "%s%s%s [%s] x%d: %s\n", indent, prefix, sq.Name, role, sq.Size, strings.Join(sq.Aircraft, ", "))
	}
}
