package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/dejo1307/autodocs/internal/config"
	"github.com/dejo1307/autodocs/internal/docs"
	"github.com/dejo1307/autodocs/internal/engine"
	"github.com/dejo1307/autodocs/internal/library"
	"github.com/dejo1307/autodocs/internal/render"
)

// Resource URIs.
const (
	LibraryURI     = "docs://library"
	DocURITemplate = "docs://doc/{id}"
	docURIPrefix   = "docs://doc/"
)

// Server wraps the MCP server and connects it to the generation engine and
// the document library.
type Server struct {
	mcp     *mcp.Server
	eng     *engine.Engine
	lib     *library.Library
	cfg     *config.Config
	formats *render.Registry
	log     zerolog.Logger
}

// New creates a new MCP server wired to the given engine and library.
func New(eng *engine.Engine, lib *library.Library, cfg *config.Config, log zerolog.Logger) *Server {
	s := &Server{
		eng:     eng,
		lib:     lib,
		cfg:     cfg,
		formats: render.NewDefaultRegistry(),
		log:     log.With().Str("component", "server").Logger(),
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "autodocs",
		Version: "0.1.0",
	}, nil)
	s.registerResources()
	s.registerTools()
	return s
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info().Msg("starting MCP server on stdio transport")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// registerResources adds the library index and per-document resources.
func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         LibraryURI,
		Name:        "Documentation Library",
		Description: "Index of generated documents, newest first",
		MIMEType:    "application/json",
	}, s.readLibrary)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: DocURITemplate,
		Name:        "Generated Document",
		Description: "A generated document as markdown, followed by its diff against the previous version of the same type",
		MIMEType:    "text/markdown",
	}, s.readDoc)
}

func (s *Server) readLibrary(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	all, err := s.lib.List(ctx, library.Filter{})
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(summarize(all), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding library: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: req.Params.URI, Text: string(data), MIMEType: "application/json"},
		},
	}, nil
}

func (s *Server) readDoc(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	id := strings.TrimPrefix(req.Params.URI, docURIPrefix)
	if id == "" || id == req.Params.URI {
		return nil, fmt.Errorf("invalid document URI %q", req.Params.URI)
	}
	v, err := s.lib.View(ctx, id)
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: req.Params.URI, Text: render.MarkdownWithDiff(v.Doc, v.Diff), MIMEType: "text/markdown"},
		},
	}, nil
}

// generateDocsArgs are the arguments for the generate_docs tool.
type generateDocsArgs struct {
	Project   string   `json:"project,omitempty" jsonschema:"Project id. Defaults to the configured project."`
	Sources   []string `json:"sources,omitempty" jsonschema:"Sources to analyze: code, commits, prs"`
	CommitIDs []string `json:"commit_ids,omitempty" jsonschema:"Commit ids to include"`
	DocTypes  []string `json:"doc_types,omitempty" jsonschema:"Document types in generation order: architecture, api, onboarding. Unknown types are ignored."`
	Tone      string   `json:"tone,omitempty" jsonschema:"concise, standard or detailed"`
	Audience  string   `json:"audience,omitempty" jsonschema:"dev, ops or product"`
	DryRun    bool     `json:"dry_run,omitempty" jsonschema:"Generate without saving to the library"`
}

// listDocsArgs are the arguments for the list_docs tool.
type listDocsArgs struct {
	Type   string `json:"type,omitempty" jsonschema:"Filter by document type: all, architecture, api or onboarding"`
	Search string `json:"search,omitempty" jsonschema:"Case-insensitive title substring"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of documents to return"`
}

// getDocArgs are the arguments for the get_doc tool.
type getDocArgs struct {
	ID     string `json:"id" jsonschema:"Document id"`
	Format string `json:"format,omitempty" jsonschema:"Output format: markdown (default) or json"`
}

// diffDocArgs are the arguments for the diff_doc tool.
type diffDocArgs struct {
	ID         string `json:"id" jsonschema:"Document id"`
	PreviousID string `json:"previous_id,omitempty" jsonschema:"Document to compare against. Defaults to the preceding version of the same type."`
}

// deleteDocArgs are the arguments for the delete_doc tool.
type deleteDocArgs struct {
	ID string `json:"id" jsonschema:"Document id"`
}

type clearLibraryArgs struct {
	Confirm bool `json:"confirm" jsonschema:"Must be true. Every document is removed and cannot be restored."`
}

// listSourcesArgs are the arguments for the list_sources tool.
type listSourcesArgs struct {
	Kind string `json:"kind,omitempty" jsonschema:"Which sources to list: all (default), code, commits or prs"`
}

// registerTools adds MCP tools for generating and browsing documents.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "generate_docs",
		Description: "Generate documentation for the selected sources. The same choices always produce the same documents; doc_types order matters. Saves to the library unless dry_run is set.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args generateDocsArgs) (*mcp.CallToolResult, any, error) {
		return s.generateDocs(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_docs",
		Description: "List generated documents, newest first, optionally filtered by type or title.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listDocsArgs) (*mcp.CallToolResult, any, error) {
		return s.listDocs(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_doc",
		Description: "Show a generated document with the changes since the previous version of the same type.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args getDocArgs) (*mcp.CallToolResult, any, error) {
		return s.getDoc(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "diff_doc",
		Description: "Report added and removed endpoints, new modules and notable changes between two documents.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args diffDocArgs) (*mcp.CallToolResult, any, error) {
		return s.diffDoc(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_doc",
		Description: "Delete a generated document from the library.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args deleteDocArgs) (*mcp.CallToolResult, any, error) {
		return s.deleteDoc(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "clear_library",
		Description: "Delete every generated document from the library. Requires confirm=true.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args clearLibraryArgs) (*mcp.CallToolResult, any, error) {
		return s.clearLibrary(ctx, args), nil, nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_sources",
		Description: "List the repository sources available for generation: the code tree, commits and pull requests.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listSourcesArgs) (*mcp.CallToolResult, any, error) {
		return s.listSources(args), nil, nil
	})
}

func (s *Server) generateDocs(ctx context.Context, args generateDocsArgs) *mcp.CallToolResult {
	input, err := s.cfg.BuildInput(config.Request{
		Project:   args.Project,
		Sources:   args.Sources,
		CommitIDs: args.CommitIDs,
		DocTypes:  args.DocTypes,
		Tone:      args.Tone,
		Audience:  args.Audience,
	})
	if err != nil {
		return errorResult(err.Error())
	}

	var generated []docs.GeneratedDoc
	if args.DryRun {
		generated, err = s.eng.Generate(ctx, input)
	} else {
		generated, err = s.eng.GenerateAndSave(ctx, input)
	}
	if err != nil {
		return errorResult(fmt.Sprintf("generation failed: %v", err))
	}
	if len(generated) == 0 {
		return textResult("No documents generated: none of the requested doc types are supported (architecture, api, onboarding).")
	}

	var sb strings.Builder
	if args.DryRun {
		sb.WriteString("Generated (not saved):\n\n")
	} else {
		sb.WriteString("Generated and saved:\n\n")
	}
	for _, d := range generated {
		fmt.Fprintf(&sb, "- %s: %s (%s)\n", d.ID, d.Title, d.VersionTag)
	}
	fmt.Fprintf(&sb, "\nInputs hash: %s\n", generated[0].InputsHash)
	if !args.DryRun {
		fmt.Fprintf(&sb, "Read a document with get_doc or the %s resource.\n", DocURITemplate)
	}
	return textResult(sb.String())
}

func (s *Server) listDocs(ctx context.Context, args listDocsArgs) *mcp.CallToolResult {
	all, err := s.lib.List(ctx, library.Filter{Type: args.Type, Search: args.Search})
	if err != nil {
		return errorResult(err.Error())
	}
	if args.Limit > 0 && len(all) > args.Limit {
		all = all[:args.Limit]
	}
	if len(all) == 0 {
		return textResult("No documents found.")
	}
	return jsonResult(summarize(all))
}

func (s *Server) getDoc(ctx context.Context, args getDocArgs) *mcp.CallToolResult {
	if args.ID == "" {
		return errorResult("id is required")
	}
	format := args.Format
	if format == "" {
		format = "markdown"
	}
	rnd := s.formats.Get(format)
	if rnd == nil {
		return errorResult(fmt.Sprintf("unknown format %q (want %s)", format, strings.Join(s.formats.Names(), ", ")))
	}

	v, err := s.lib.View(ctx, args.ID)
	if err != nil {
		return lookupError(args.ID, err)
	}
	if format == "markdown" {
		return textResult(render.MarkdownWithDiff(v.Doc, v.Diff))
	}
	out, err := rnd.Render(v.Doc)
	if err != nil {
		return errorResult(err.Error())
	}
	return textResult(string(out))
}

func (s *Server) diffDoc(ctx context.Context, args diffDocArgs) *mcp.CallToolResult {
	if args.ID == "" {
		return errorResult("id is required")
	}
	if args.PreviousID != "" {
		res, err := s.lib.Compare(ctx, args.PreviousID, args.ID)
		if err != nil {
			return lookupError(args.ID, err)
		}
		return textResult(render.Diff(res))
	}
	v, err := s.lib.View(ctx, args.ID)
	if err != nil {
		return lookupError(args.ID, err)
	}
	var sb strings.Builder
	if v.Previous != nil {
		fmt.Fprintf(&sb, "Compared %s against %s.\n\n", v.Doc.ID, v.Previous.ID)
	}
	sb.WriteString(render.Diff(v.Diff))
	return textResult(sb.String())
}

func (s *Server) deleteDoc(ctx context.Context, args deleteDocArgs) *mcp.CallToolResult {
	if args.ID == "" {
		return errorResult("id is required")
	}
	if err := s.lib.Delete(ctx, args.ID); err != nil {
		return errorResult(err.Error())
	}
	s.log.Info().Str("doc_id", args.ID).Msg("document deleted")
	return textResult(fmt.Sprintf("Deleted %s.", args.ID))
}

func (s *Server) clearLibrary(ctx context.Context, args clearLibraryArgs) *mcp.CallToolResult {
	if !args.Confirm {
		return errorResult("refusing to clear the library without confirm=true")
	}
	n, err := s.lib.Clear(ctx)
	if err != nil {
		return errorResult(err.Error())
	}
	s.log.Info().Int("count", n).Msg("library cleared")
	return textResult(fmt.Sprintf("Cleared %d documents.", n))
}

// sourcesView is the list_sources payload.
type sourcesView struct {
	Code         *codeSummary `json:"code,omitempty"`
	Commits      any          `json:"commits,omitempty"`
	PullRequests any          `json:"pullRequests,omitempty"`
}

type codeSummary struct {
	Root  string `json:"root"`
	Files int    `json:"files"`
	Tree  any    `json:"tree"`
}

func (s *Server) listSources(args listSourcesArgs) *mcp.CallToolResult {
	fx := s.eng.Fixtures()
	kind := strings.ToLower(strings.TrimSpace(args.Kind))
	if kind == "" {
		kind = "all"
	}

	var view sourcesView
	switch kind {
	case "all", docs.SourceCode, docs.SourceCommits, docs.SourcePRs:
	default:
		return errorResult(fmt.Sprintf("unknown source kind %q (want all, code, commits or prs)", args.Kind))
	}
	if kind == "all" || kind == docs.SourceCode {
		view.Code = &codeSummary{Root: fx.RepoTree.Name, Files: fx.RepoTree.CountFiles(), Tree: fx.RepoTree}
	}
	if kind == "all" || kind == docs.SourceCommits {
		view.Commits = fx.Commits
	}
	if kind == "all" || kind == docs.SourcePRs {
		view.PullRequests = fx.PullRequests
	}
	return jsonResult(view)
}

// docSummary is the listing shape of a document.
type docSummary struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Type       docs.DocType `json:"type"`
	CreatedAt  time.Time    `json:"createdAt"`
	VersionTag string       `json:"versionTag"`
	InputsHash string       `json:"inputsHash"`
	URI        string       `json:"uri"`
}

func summarize(all []docs.GeneratedDoc) []docSummary {
	out := make([]docSummary, 0, len(all))
	for _, d := range all {
		out = append(out, docSummary{
			ID:         d.ID,
			Title:      d.Title,
			Type:       d.Type,
			CreatedAt:  d.CreatedAt,
			VersionTag: d.VersionTag,
			InputsHash: d.InputsHash,
			URI:        docURIPrefix + d.ID,
		})
	}
	return out
}

func lookupError(id string, err error) *mcp.CallToolResult {
	if errors.Is(err, library.ErrNotFound) {
		return errorResult(fmt.Sprintf("Document %q not found. Use list_docs to see available documents.", id))
	}
	return errorResult(err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal results: %v", err))
	}
	return textResult(string(data))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
