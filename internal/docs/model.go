package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// DocType identifies one of the documentation variants the generator produces.
type DocType string

// Document type constants.
const (
	TypeArchitecture DocType = "architecture"
	TypeAPI          DocType = "api"
	TypeOnboarding   DocType = "onboarding"
)

// AllTypes lists the supported document types in their canonical order.
var AllTypes = []DocType{TypeArchitecture, TypeAPI, TypeOnboarding}

// Tone controls the phrasing of generated prose.
type Tone string

// Tone constants.
const (
	ToneConcise  Tone = "concise"
	ToneStandard Tone = "standard"
	ToneDetailed Tone = "detailed"
)

// Audience names who the documentation is written for.
type Audience string

// Audience constants.
const (
	AudienceDev     Audience = "dev"
	AudienceOps     Audience = "ops"
	AudienceProduct Audience = "product"
)

// Source kind constants for GenerationInput.SelectedSources.
const (
	SourceCode    = "code"
	SourceCommits = "commits"
	SourcePRs     = "prs"
)

// GenerationInput is the full set of choices behind one generation request.
// Field order is the canonical serialization order used for fingerprinting.
type GenerationInput struct {
	ProjectID         string   `json:"projectId"`
	SelectedSources   []string `json:"selectedSources"`
	SelectedCommitIDs []string `json:"selectedCommitIds"`
	DocTypes          []string `json:"docTypes"`
	Tone              Tone     `json:"tone"`
	Audience          Audience `json:"audience"`
}

// GeneratedDoc is a persisted documentation record.
type GeneratedDoc struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Type            DocType   `json:"type"`
	CreatedAt       time.Time `json:"createdAt"`
	VersionTag      string    `json:"versionTag"`
	SelectedSources []string  `json:"selectedSources"`
	InputsHash      string    `json:"inputsHash"`
	Content         Content   `json:"content"`
}

// Content is the type-tagged payload of a GeneratedDoc. Exactly three
// implementations exist: *ArchitectureContent, *APIContent and *OnboardingContent.
type Content interface {
	DocType() DocType
	isContent()
}

// ArchitectureContent is the payload of an architecture document.
type ArchitectureContent struct {
	Overview   string          `json:"overview"`
	Components []Component     `json:"components"`
	DataFlows  []string        `json:"dataFlows"`
	Risks      []string        `json:"risks"`
	Diagram    json.RawMessage `json:"diagram,omitempty"`
}

// Component is an architecture module annotated with a status.
type Component struct {
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies"`
}

// Component status values.
const (
	StatusStable      = "Stable"
	StatusNeedsUpdate = "Needs Update"
)

// APIContent is the payload of an API reference document.
type APIContent struct {
	Authentication string      `json:"authentication"`
	Endpoints      []Endpoint  `json:"endpoints"`
	ErrorCodes     []ErrorCode `json:"errorCodes"`
}

// Endpoint is an API endpoint annotated with a deprecation flag.
// Params and Response are opaque fixture values.
type Endpoint struct {
	Method     string          `json:"method"`
	Path       string          `json:"path"`
	Auth       bool            `json:"auth"`
	Params     json.RawMessage `json:"params,omitempty"`
	Response   json.RawMessage `json:"response,omitempty"`
	Deprecated bool            `json:"deprecated"`
}

// ErrorCode is one row of the API error table.
type ErrorCode struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OnboardingContent is the payload of an onboarding guide.
type OnboardingContent struct {
	Prerequisites   []string          `json:"prerequisites"`
	SetupSteps      []string          `json:"setupSteps"`
	Troubleshooting []Troubleshooting `json:"troubleshooting"`
}

// Troubleshooting pairs a known issue with where to find its fix.
type Troubleshooting struct {
	Issue    string `json:"issue"`
	Solution string `json:"solution"`
}

func (*ArchitectureContent) DocType() DocType { return TypeArchitecture }
func (*APIContent) DocType() DocType          { return TypeAPI }
func (*OnboardingContent) DocType() DocType   { return TypeOnboarding }

func (*ArchitectureContent) isContent() {}
func (*APIContent) isContent()          {}
func (*OnboardingContent) isContent()   {}

// Architecture returns the architecture payload, or nil for other types.
func (d *GeneratedDoc) Architecture() *ArchitectureContent {
	c, _ := d.Content.(*ArchitectureContent)
	return c
}

// API returns the API payload, or nil for other types.
func (d *GeneratedDoc) API() *APIContent {
	c, _ := d.Content.(*APIContent)
	return c
}

// Onboarding returns the onboarding payload, or nil for other types.
func (d *GeneratedDoc) Onboarding() *OnboardingContent {
	c, _ := d.Content.(*OnboardingContent)
	return c
}

// Clone returns a deep copy of d. Stores hand out clones so callers cannot
// mutate a persisted record through shared slices or content pointers.
func (d GeneratedDoc) Clone() GeneratedDoc {
	d.SelectedSources = slices.Clone(d.SelectedSources)
	switch c := d.Content.(type) {
	case *ArchitectureContent:
		d.Content = c.clone()
	case *APIContent:
		d.Content = c.clone()
	case *OnboardingContent:
		d.Content = c.clone()
	}
	return d
}

func (c *ArchitectureContent) clone() *ArchitectureContent {
	if c == nil {
		return nil
	}
	out := *c
	out.Components = slices.Clone(c.Components)
	for i := range out.Components {
		out.Components[i].Dependencies = slices.Clone(out.Components[i].Dependencies)
	}
	out.DataFlows = slices.Clone(c.DataFlows)
	out.Risks = slices.Clone(c.Risks)
	out.Diagram = CloneRaw(c.Diagram)
	return &out
}

func (c *APIContent) clone() *APIContent {
	if c == nil {
		return nil
	}
	out := *c
	out.Endpoints = slices.Clone(c.Endpoints)
	for i := range out.Endpoints {
		out.Endpoints[i].Params = CloneRaw(out.Endpoints[i].Params)
		out.Endpoints[i].Response = CloneRaw(out.Endpoints[i].Response)
	}
	out.ErrorCodes = slices.Clone(c.ErrorCodes)
	return &out
}

func (c *OnboardingContent) clone() *OnboardingContent {
	if c == nil {
		return nil
	}
	out := *c
	out.Prerequisites = slices.Clone(c.Prerequisites)
	out.SetupSteps = slices.Clone(c.SetupSteps)
	out.Troubleshooting = slices.Clone(c.Troubleshooting)
	return &out
}

// CloneRaw copies an opaque JSON value. Nil stays nil.
func CloneRaw(m json.RawMessage) json.RawMessage {
	if m == nil {
		return nil
	}
	return json.RawMessage(bytes.Clone(m))
}

// UnmarshalJSON decodes the content payload according to the type field.
func (d *GeneratedDoc) UnmarshalJSON(data []byte) error {
	type plain GeneratedDoc
	var raw struct {
		plain
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	content, err := DecodeContent(raw.Type, raw.Content)
	if err != nil {
		return fmt.Errorf("doc %q: %w", raw.ID, err)
	}

	*d = GeneratedDoc(raw.plain)
	d.Content = content
	return nil
}

// DecodeContent decodes a raw payload into the variant named by t.
func DecodeContent(t DocType, data []byte) (Content, error) {
	var c Content
	switch t {
	case TypeArchitecture:
		c = &ArchitectureContent{}
	case TypeAPI:
		c = &APIContent{}
	case TypeOnboarding:
		c = &OnboardingContent{}
	default:
		return nil, fmt.Errorf("unknown document type %q", t)
	}
	if len(data) == 0 || string(data) == "null" {
		return c, nil
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decoding %s content: %w", t, err)
	}
	return c, nil
}

// Title returns the human-readable title for a document type.
func Title(t DocType) string {
	switch t {
	case TypeArchitecture:
		return "Architecture Overview"
	case TypeAPI:
		return "API Documentation"
	case TypeOnboarding:
		return "Onboarding Guide"
	default:
		return string(t)
	}
}

// ParseDocType maps a user-supplied token onto a DocType.
func ParseDocType(s string) (DocType, bool) {
	switch DocType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeArchitecture:
		return TypeArchitecture, true
	case TypeAPI:
		return TypeAPI, true
	case TypeOnboarding:
		return TypeOnboarding, true
	}
	return "", false
}

// ParseTone validates a tone token.
func ParseTone(s string) (Tone, error) {
	switch t := Tone(strings.ToLower(strings.TrimSpace(s))); t {
	case ToneConcise, ToneStandard, ToneDetailed:
		return t, nil
	}
	return "", fmt.Errorf("invalid tone %q (want concise, standard or detailed)", s)
}

// ParseAudience validates an audience token.
func ParseAudience(s string) (Audience, error) {
	switch a := Audience(strings.ToLower(strings.TrimSpace(s))); a {
	case AudienceDev, AudienceOps, AudienceProduct:
		return a, nil
	}
	return "", fmt.Errorf("invalid audience %q (want dev, ops or product)", s)
}

// ParseSource validates a source-kind token.
func ParseSource(s string) (string, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case SourceCode, SourceCommits, SourcePRs:
		return v, nil
	}
	return "", fmt.Errorf("invalid source %q (want code, commits or prs)", s)
}
