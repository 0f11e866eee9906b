package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dejo1307/autodocs/internal/diff"
	"github.com/dejo1307/autodocs/internal/docs"
)

// NoChanges is written for a diff with nothing to report.
const NoChanges = "No significant changes detected since the last version."

// MarkdownRenderer renders a document as markdown, one section per part of
// its content.
type MarkdownRenderer struct{}

// NewMarkdown creates a MarkdownRenderer.
func NewMarkdown() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

func (r *MarkdownRenderer) Name() string      { return "markdown" }
func (r *MarkdownRenderer) Extension() string { return ".md" }

func (r *MarkdownRenderer) Render(doc docs.GeneratedDoc) ([]byte, error) {
	return []byte(Markdown(doc)), nil
}

// Markdown renders doc with a metadata header followed by its content.
func Markdown(doc docs.GeneratedDoc) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", doc.Title)
	fmt.Fprintf(&sb, "- **Type:** %s\n", doc.Type)
	fmt.Fprintf(&sb, "- **Version:** %s\n", doc.VersionTag)
	fmt.Fprintf(&sb, "- **Generated:** %s\n", doc.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&sb, "- **Sources:** %s\n", joinOrNone(doc.SelectedSources))
	fmt.Fprintf(&sb, "- **Inputs hash:** `%s`\n\n", doc.InputsHash)

	switch c := doc.Content.(type) {
	case *docs.ArchitectureContent:
		renderArchitecture(&sb, c)
	case *docs.APIContent:
		renderAPI(&sb, c)
	case *docs.OnboardingContent:
		renderOnboarding(&sb, c)
	default:
		sb.WriteString("_No content._\n")
	}
	return sb.String()
}

func renderArchitecture(sb *strings.Builder, c *docs.ArchitectureContent) {
	sb.WriteString("## System Overview\n\n")
	sb.WriteString(c.Overview + "\n\n")

	sb.WriteString("## Key Components\n\n")
	if len(c.Components) == 0 {
		sb.WriteString("_No components._\n\n")
	} else {
		sb.WriteString("| Component | Status | Description | Dependencies |\n")
		sb.WriteString("|-----------|--------|-------------|--------------|\n")
		for _, m := range c.Components {
			fmt.Fprintf(sb, "| %s | %s | %s | %s |\n",
				cell(m.Name), cell(m.Status), cell(m.Description), cell(joinOrNone(m.Dependencies)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Data Flows\n\n")
	writeBullets(sb, c.DataFlows)

	sb.WriteString("## Risks & Tradeoffs\n\n")
	writeBullets(sb, c.Risks)
}

func renderAPI(sb *strings.Builder, c *docs.APIContent) {
	sb.WriteString("## Authentication\n\n")
	sb.WriteString(c.Authentication + "\n\n")

	sb.WriteString("## Endpoints\n\n")
	if len(c.Endpoints) == 0 {
		sb.WriteString("_No endpoints._\n\n")
	}
	for _, ep := range c.Endpoints {
		fmt.Fprintf(sb, "### `%s %s`", ep.Method, ep.Path)
		if ep.Deprecated {
			sb.WriteString(" (deprecated)")
		}
		sb.WriteString("\n\n")
		if ep.Auth {
			sb.WriteString("Requires authentication.\n\n")
		} else {
			sb.WriteString("Public.\n\n")
		}
		writeJSONBlock(sb, "Request Parameters", ep.Params)
		writeJSONBlock(sb, "Success Response", ep.Response)
	}

	sb.WriteString("## Error Codes\n\n")
	sb.WriteString("| Code | Message |\n")
	sb.WriteString("|------|---------|\n")
	for _, e := range c.ErrorCodes {
		fmt.Fprintf(sb, "| %d | %s |\n", e.Code, cell(e.Message))
	}
	sb.WriteString("\n")
}

func renderOnboarding(sb *strings.Builder, c *docs.OnboardingContent) {
	sb.WriteString("## Prerequisites\n\n")
	writeBullets(sb, c.Prerequisites)

	sb.WriteString("## Setup Steps\n\n")
	if len(c.SetupSteps) == 0 {
		sb.WriteString("_None._\n\n")
	} else {
		for i, step := range c.SetupSteps {
			fmt.Fprintf(sb, "%d. %s\n", i+1, step)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Troubleshooting\n\n")
	if len(c.Troubleshooting) == 0 {
		sb.WriteString("_No known issues._\n\n")
	}
	for _, t := range c.Troubleshooting {
		fmt.Fprintf(sb, "### %s\n\n%s\n\n", t.Issue, t.Solution)
	}
}

// Diff renders a diff result. An empty result renders NoChanges.
func Diff(res diff.Result) string {
	var sb strings.Builder
	sb.WriteString("## Changes\n\n")
	if !res.HasChanges() {
		sb.WriteString(NoChanges + "\n")
		return sb.String()
	}

	writeDiffSection(&sb, "New Modules", "+ ", res.NewModules)
	writeDiffSection(&sb, "Added Endpoints", "+ ", res.AddedEndpoints)
	writeDiffSection(&sb, "Removed Endpoints", "- ", res.RemovedEndpoints)
	writeDiffSection(&sb, "Notable Changes", "", res.NotableChanges)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeDiffSection(sb *strings.Builder, title, marker string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s%s\n", marker, item)
	}
	sb.WriteString("\n")
}

func writeBullets(sb *strings.Builder, items []string) {
	if len(items) == 0 {
		sb.WriteString("_None._\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}

func writeJSONBlock(sb *strings.Builder, title string, raw json.RawMessage) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(raw)
	}
	fmt.Fprintf(sb, "**%s**\n\n```json\n%s\n```\n\n", title, pretty.String())
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

// cell escapes a value for use inside a markdown table.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// MarkdownWithDiff renders doc followed by its diff against the previous version.
func MarkdownWithDiff(doc docs.GeneratedDoc, res diff.Result) string {
	return Markdown(doc) + Diff(res)
}
