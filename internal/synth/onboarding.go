package synth

import (
	"fmt"
	"strings"

	"github.com/dejo1307/autodocs/internal/docs"
	"github.com/dejo1307/autodocs/internal/fixtures"
	"github.com/dejo1307/autodocs/internal/seeded"
)

const (
	fixPrefix            = "fix: "
	maxTroubleshooting   = 3
	troubleshootSolution = "Refer to commit %s for implementation details."
)

var (
	onboardingPrerequisites = []string{
		"Node.js v18+",
		"React Native CLI",
		"Android Studio / Xcode",
		"SQLite Viewer",
	}
	onboardingSetupSteps = []string{
		"Clone the repository",
		"Run `npm install`",
		"Configure `.env` with API endpoints",
		"Run `npx react-native run-ios` or `run-android`",
	}
)

// Onboarding synthesizes onboarding guides. It never draws from the source.
type Onboarding struct{}

// NewOnboarding creates an onboarding synthesizer.
func NewOnboarding() *Onboarding {
	return &Onboarding{}
}

func (o *Onboarding) Type() docs.DocType { return docs.TypeOnboarding }

func (o *Onboarding) Title() string { return docs.Title(docs.TypeOnboarding) }

// Synthesize builds troubleshooting entries from the first three "fix: "
// commits in fixture order, independent of the selected commits.
func (o *Onboarding) Synthesize(_ docs.GenerationInput, _ seeded.Source, fx *fixtures.Set) docs.Content {
	troubleshooting := make([]docs.Troubleshooting, 0, maxTroubleshooting)
	for _, c := range fx.Commits {
		if len(troubleshooting) == maxTroubleshooting {
			break
		}
		if !strings.HasPrefix(c.Message, fixPrefix) {
			continue
		}
		troubleshooting = append(troubleshooting, docs.Troubleshooting{
			Issue:    strings.TrimPrefix(c.Message, fixPrefix),
			Solution: fmt.Sprintf(troubleshootSolution, c.ID),
		})
	}

	return &docs.OnboardingContent{
		Prerequisites:   append([]string{}, onboardingPrerequisites...),
		SetupSteps:      append([]string{}, onboardingSetupSteps...),
		Troubleshooting: troubleshooting,
	}
}
