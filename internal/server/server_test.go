package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/autodocs/internal/config"
	"github.com/dejo1307/autodocs/internal/docs"
	"github.com/dejo1307/autodocs/internal/engine"
	"github.com/dejo1307/autodocs/internal/fixtures"
	"github.com/dejo1307/autodocs/internal/library"
	"github.com/dejo1307/autodocs/internal/render"
	"github.com/dejo1307/autodocs/internal/store"
)

// --- helpers ---

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st := store.NewMemory()
	tick := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	eng := engine.New(fixtures.MustDefault(),
		engine.WithStore(st),
		engine.WithClock(func() time.Time { tick = tick.Add(time.Minute); return tick }),
		engine.WithVersionTag(func() string { return "v0.2.5" }),
	)
	return New(eng, library.New(st, nil), config.Default(), zerolog.Nop()), st
}

func text(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, r)
	require.NotEmpty(t, r.Content)
	tc, ok := r.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func generate(t *testing.T, s *Server, args generateDocsArgs) []docs.GeneratedDoc {
	t.Helper()
	r := s.generateDocs(context.Background(), args)
	require.False(t, r.IsError, text(t, r))
	all, err := s.lib.List(context.Background(), library.Filter{})
	require.NoError(t, err)
	return all
}

// --- tests ---

func TestGenerateDocs_SavesWithDefaults(t *testing.T) {
	s, st := newTestServer(t)

	r := s.generateDocs(context.Background(), generateDocsArgs{})
	require.False(t, r.IsError)
	out := text(t, r)
	assert.Contains(t, out, "Generated and saved")
	assert.Contains(t, out, "Architecture Overview (v0.2.5)")
	assert.Contains(t, out, "API Documentation")
	assert.Contains(t, out, "Onboarding Guide")

	all, err := st.GetDocs(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGenerateDocs_DryRunDoesNotSave(t *testing.T) {
	s, st := newTestServer(t)

	r := s.generateDocs(context.Background(), generateDocsArgs{DocTypes: []string{"api"}, DryRun: true})
	require.False(t, r.IsError)
	assert.Contains(t, text(t, r), "not saved")

	all, err := st.GetDocs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGenerateDocs_InvalidTone(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.generateDocs(context.Background(), generateDocsArgs{Tone: "shouty"})
	assert.True(t, r.IsError)
	assert.Contains(t, text(t, r), "invalid tone")
}

func TestGenerateDocs_OnlyUnknownTypes(t *testing.T) {
	s, _ := newTestServer(t)
	r := s.generateDocs(context.Background(), generateDocsArgs{DocTypes: []string{"changelog"}})
	assert.False(t, r.IsError)
	assert.Contains(t, text(t, r), "No documents generated")
}

func TestListDocs(t *testing.T) {
	s, _ := newTestServer(t)
	generate(t, s, generateDocsArgs{DocTypes: []string{"architecture", "api"}})

	r := s.listDocs(context.Background(), listDocsArgs{Type: "api"})
	require.False(t, r.IsError)
	var got []docSummary
	require.NoError(t, json.Unmarshal([]byte(text(t, r)), &got))
	require.Len(t, got, 1)
	assert.Equal(t, docs.TypeAPI, got[0].Type)
	assert.Equal(t, "docs://doc/"+got[0].ID, got[0].URI)

	r = s.listDocs(context.Background(), listDocsArgs{Limit: 1})
	require.NoError(t, json.Unmarshal([]byte(text(t, r)), &got))
	assert.Len(t, got, 1)

	r = s.listDocs(context.Background(), listDocsArgs{Search: "nothing matches"})
	assert.Equal(t, "No documents found.", text(t, r))
}

func TestGetDoc_MarkdownIncludesDiff(t *testing.T) {
	s, _ := newTestServer(t)
	all := generate(t, s, generateDocsArgs{DocTypes: []string{"onboarding"}})

	r := s.getDoc(context.Background(), getDocArgs{ID: all[0].ID})
	require.False(t, r.IsError)
	out := text(t, r)
	assert.True(t, strings.HasPrefix(out, "# Onboarding Guide"))
	assert.Contains(t, out, "## Troubleshooting")
	assert.Contains(t, out, "Initial generation")
}

func TestGetDoc_JSON(t *testing.T) {
	s, _ := newTestServer(t)
	all := generate(t, s, generateDocsArgs{DocTypes: []string{"api"}})

	r := s.getDoc(context.Background(), getDocArgs{ID: all[0].ID, Format: "json"})
	require.False(t, r.IsError)
	var back docs.GeneratedDoc
	require.NoError(t, json.Unmarshal([]byte(text(t, r)), &back))
	assert.Equal(t, all[0].ID, back.ID)
	require.NotNil(t, back.API())
	assert.Len(t, back.API().Endpoints, 8)
}

func TestGetDoc_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	r := s.getDoc(ctx, getDocArgs{})
	assert.True(t, r.IsError)

	r = s.getDoc(ctx, getDocArgs{ID: "doc-missing-0"})
	assert.True(t, r.IsError)
	assert.Contains(t, text(t, r), "not found")

	r = s.getDoc(ctx, getDocArgs{ID: "x", Format: "pdf"})
	assert.True(t, r.IsError)
	assert.Contains(t, text(t, r), "unknown format")
}

func TestDiffDoc_AgainstPreceding(t *testing.T) {
	s, _ := newTestServer(t)
	generate(t, s, generateDocsArgs{Sources: []string{"code"}, DocTypes: []string{"architecture"}})
	all := generate(t, s, generateDocsArgs{Sources: []string{"code", "prs"}, DocTypes: []string{"architecture"}})
	require.Len(t, all, 2)
	newest, older := all[0], all[1]

	r := s.diffDoc(context.Background(), diffDocArgs{ID: newest.ID})
	require.False(t, r.IsError)
	out := text(t, r)
	assert.Contains(t, out, "Compared "+newest.ID+" against "+older.ID)
	assert.Contains(t, out, "Updated based on new source data")
	assert.Contains(t, out, "Added more data sources for analysis")
}

func TestDiffDoc_ExplicitPrevious(t *testing.T) {
	s, _ := newTestServer(t)
	all := generate(t, s, generateDocsArgs{DocTypes: []string{"api"}})

	r := s.diffDoc(context.Background(), diffDocArgs{ID: all[0].ID, PreviousID: all[0].ID})
	require.False(t, r.IsError)
	assert.Contains(t, text(t, r), render.NoChanges)

	r = s.diffDoc(context.Background(), diffDocArgs{ID: all[0].ID, PreviousID: "missing"})
	assert.True(t, r.IsError)
}

func TestDeleteDoc(t *testing.T) {
	s, st := newTestServer(t)
	all := generate(t, s, generateDocsArgs{DocTypes: []string{"api"}})

	r := s.deleteDoc(context.Background(), deleteDocArgs{ID: all[0].ID})
	require.False(t, r.IsError)
	got, err := st.GetDocByID(context.Background(), all[0].ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	r = s.deleteDoc(context.Background(), deleteDocArgs{ID: all[0].ID})
	assert.False(t, r.IsError, "deleting twice is a no-op")

	r = s.deleteDoc(context.Background(), deleteDocArgs{})
	assert.True(t, r.IsError)
}

func TestClearLibrary(t *testing.T) {
	s, st := newTestServer(t)
	ctx := context.Background()
	generate(t, s, generateDocsArgs{DocTypes: []string{"api", "onboarding"}})

	r := s.clearLibrary(ctx, clearLibraryArgs{})
	assert.True(t, r.IsError)
	all, err := st.GetDocs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "nothing removed without confirm")

	r = s.clearLibrary(ctx, clearLibraryArgs{Confirm: true})
	require.False(t, r.IsError)
	assert.Equal(t, "Cleared 2 documents.", text(t, r))
	all, err = st.GetDocs(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListSources(t *testing.T) {
	s, _ := newTestServer(t)

	r := s.listSources(listSourcesArgs{})
	require.False(t, r.IsError)
	var all map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(text(t, r)), &all))
	assert.Contains(t, all, "code")
	assert.Contains(t, all, "commits")
	assert.Contains(t, all, "pullRequests")

	r = s.listSources(listSourcesArgs{Kind: "commits"})
	var commitsOnly map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(text(t, r)), &commitsOnly))
	assert.Contains(t, commitsOnly, "commits")
	assert.NotContains(t, commitsOnly, "code")

	r = s.listSources(listSourcesArgs{Kind: "code"})
	var code struct {
		Code codeSummary `json:"code"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, r)), &code))
	assert.Equal(t, "hotel-audits-mobile", code.Code.Root)
	assert.Equal(t, 8, code.Code.Files)

	r = s.listSources(listSourcesArgs{Kind: "jira"})
	assert.True(t, r.IsError)
}

func TestReadLibraryResource(t *testing.T) {
	s, _ := newTestServer(t)
	generate(t, s, generateDocsArgs{DocTypes: []string{"api", "onboarding"}})

	res, err := s.readLibrary(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: LibraryURI},
	})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)

	var got []docSummary
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &got))
	assert.Len(t, got, 2)
}

func TestReadDocResource(t *testing.T) {
	s, _ := newTestServer(t)
	all := generate(t, s, generateDocsArgs{DocTypes: []string{"architecture"}})
	uri := "docs://doc/" + all[0].ID

	res, err := s.readDoc(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, uri, res.Contents[0].URI)
	assert.Contains(t, res.Contents[0].Text, "## Key Components")

	_, err = s.readDoc(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "docs://doc/missing"},
	})
	assert.ErrorIs(t, err, library.ErrNotFound)

	_, err = s.readDoc(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "docs://other/x"},
	})
	assert.Error(t, err)
}
