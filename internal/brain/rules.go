package brain

import (
	"fmt"
	"strings"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// Rule is one forward-chaining safety rule: a condition over the context
// snapshot, a keyword the retrieved knowledge must confirm, and an alert
// template. Rules are configuration, not code paths; adding one means
// appending to the table.
type Rule struct {
	Name             string
	Condition        func(snap *model.ContextSnapshot) bool
	KnowledgeKeyword string
	Alert            func(snap *model.ContextSnapshot) string
}

// Fires reports whether the rule's condition holds and the retrieved
// knowledge confirms it.
func (r Rule) Fires(snap *model.ContextSnapshot, knowledgeText string) bool {
	return r.Condition(snap) &&
		strings.Contains(strings.ToLower(knowledgeText), strings.ToLower(r.KnowledgeKeyword))
}

// highIntensityZone is the zone at which a planned session counts as
// high-intensity work.
const highIntensityZone = 4

// defaultRules is the wired rule set. The golden rule is the only entry:
// a high-risk athlete must not have high-intensity work planned.
func defaultRules() []Rule {
	return []Rule{
		{
			Name:             "golden",
			KnowledgeKeyword: "load ratio",
			Condition: func(snap *model.ContextSnapshot) bool {
				if snap.Athlete.Status != model.StatusHighRisk || snap.Plan == nil {
					return false
				}
				for _, s := range snap.Plan.Sessions {
					if s.Status != model.SessionPlanned {
						continue
					}
					if s.Zone >= highIntensityZone || s.Type == "high-intensity" {
						return true
					}
				}
				return false
			},
			Alert: func(snap *model.ContextSnapshot) string {
				return fmt.Sprintf(
					"%s is HIGH_RISK (load ratio %.2f) with high-intensity work still planned. Reduce intensity before the next session.",
					snap.Athlete.Name, snap.Athlete.LoadRatio,
				)
			},
		},
	}
}
