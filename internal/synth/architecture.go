package synth

import (
	"fmt"

	"github.com/dejo1307/autodocs/internal/docs"
	"github.com/dejo1307/autodocs/internal/fixtures"
	"github.com/dejo1307/autodocs/internal/seeded"
)

// needsUpdateThreshold: a module is flagged when its draw exceeds this value.
const needsUpdateThreshold = 0.8

var (
	architectureDataFlows = []string{
		"User initiates audit -> Scan Engine captures data",
		"Scan Engine -> Local SQLite storage",
		"Sync Engine -> Backend API (when online)",
		"Auth Module -> Identity Provider",
	}
	architectureRisks = []string{
		"Offline data consistency during multi-device sync",
		"OCR accuracy in low-light environments",
		"Biometric fallback mechanisms",
	}
)

// Architecture synthesizes architecture overviews.
type Architecture struct{}

// NewArchitecture creates an architecture synthesizer.
func NewArchitecture() *Architecture {
	return &Architecture{}
}

func (a *Architecture) Type() docs.DocType { return docs.TypeArchitecture }

func (a *Architecture) Title() string { return docs.Title(docs.TypeArchitecture) }

// Synthesize copies the module fixtures, consuming one draw per module to
// decide its status. Data flows and risks are fixed; the diagram passes through.
func (a *Architecture) Synthesize(input docs.GenerationInput, src seeded.Source, fx *fixtures.Set) docs.Content {
	components := make([]docs.Component, 0, len(fx.Modules))
	for _, m := range fx.Modules {
		status := docs.StatusStable
		if src.Next() > needsUpdateThreshold {
			status = docs.StatusNeedsUpdate
		}
		components = append(components, docs.Component{
			Name:         m.Name,
			Status:       status,
			Description:  m.Description,
			Dependencies: append([]string{}, m.Dependencies...),
		})
	}

	return &docs.ArchitectureContent{
		Overview:   overview(input.Tone),
		Components: components,
		DataFlows:  append([]string{}, architectureDataFlows...),
		Risks:      append([]string{}, architectureRisks...),
		Diagram:    docs.CloneRaw(fx.Diagram),
	}
}

func overview(tone docs.Tone) string {
	focus := "reliability and scalability"
	if tone == docs.ToneConcise {
		focus = "efficiency"
	}
	return fmt.Sprintf("The Hotel Audits Mobile project is a robust, offline-first application designed for hotel inspectors. This architecture focuses on %s.", focus)
}
