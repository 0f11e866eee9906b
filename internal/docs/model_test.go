package docs

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratedDoc_JSONKeepsVariant(t *testing.T) {
	tests := []struct {
		name    string
		content Content
	}{
		{"architecture", &ArchitectureContent{
			Overview:   "Offline-first.",
			Components: []Component{{Name: "Auth", Status: StatusStable, Dependencies: []string{}}},
			DataFlows:  []string{"a"},
			Risks:      []string{},
			Diagram:    json.RawMessage(`{"nodes":[]}`),
		}},
		{"api", &APIContent{
			Authentication: "Bearer",
			Endpoints:      []Endpoint{{Method: "GET", Path: "/a", Params: json.RawMessage(`{"q":"string"}`)}},
			ErrorCodes:     []ErrorCode{{Code: 404, Message: "Not Found"}},
		}},
		{"onboarding", &OnboardingContent{
			Prerequisites:   []string{"Go"},
			SetupSteps:      []string{"Clone"},
			Troubleshooting: []Troubleshooting{{Issue: "x", Solution: "y"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := GeneratedDoc{
				ID:              "doc-1-0",
				Title:           Title(tt.content.DocType()),
				Type:            tt.content.DocType(),
				CreatedAt:       time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
				VersionTag:      "v0.1.2",
				SelectedSources: []string{"code"},
				InputsHash:      "1a",
				Content:         tt.content,
			}
			data, err := json.Marshal(d)
			require.NoError(t, err)

			var back GeneratedDoc
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, d, back)
			assert.Equal(t, d.Type, back.Content.DocType())
		})
	}
}

func TestGeneratedDoc_Accessors(t *testing.T) {
	d := GeneratedDoc{Type: TypeAPI, Content: &APIContent{Authentication: "x"}}
	require.NotNil(t, d.API())
	assert.Nil(t, d.Architecture())
	assert.Nil(t, d.Onboarding())
}

func TestGeneratedDoc_UnmarshalUnknownType(t *testing.T) {
	var d GeneratedDoc
	err := json.Unmarshal([]byte(`{"id":"doc-x","type":"changelog","content":{}}`), &d)
	assert.ErrorContains(t, err, `doc "doc-x"`)
	assert.ErrorContains(t, err, "unknown document type")
}

func TestDecodeContent_NullPayload(t *testing.T) {
	c, err := DecodeContent(TypeOnboarding, []byte("null"))
	require.NoError(t, err)
	assert.Equal(t, &OnboardingContent{}, c)

	_, err = DecodeContent(TypeAPI, []byte(`{"endpoints":"nope"}`))
	assert.ErrorContains(t, err, "decoding api content")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Architecture Overview", Title(TypeArchitecture))
	assert.Equal(t, "API Documentation", Title(TypeAPI))
	assert.Equal(t, "Onboarding Guide", Title(TypeOnboarding))
	assert.Equal(t, "custom", Title("custom"))
}

func TestParseDocType(t *testing.T) {
	got, ok := ParseDocType(" API ")
	assert.True(t, ok)
	assert.Equal(t, TypeAPI, got)

	_, ok = ParseDocType("changelog")
	assert.False(t, ok)
}

func TestParseTokens(t *testing.T) {
	tone, err := ParseTone("Detailed")
	require.NoError(t, err)
	assert.Equal(t, ToneDetailed, tone)
	_, err = ParseTone("")
	assert.ErrorContains(t, err, "invalid tone")

	aud, err := ParseAudience("OPS")
	require.NoError(t, err)
	assert.Equal(t, AudienceOps, aud)
	_, err = ParseAudience("sales")
	assert.ErrorContains(t, err, "invalid audience")

	src, err := ParseSource(" prs")
	require.NoError(t, err)
	assert.Equal(t, SourcePRs, src)
	_, err = ParseSource("slack")
	assert.ErrorContains(t, err, "invalid source")
}

func TestGeneratedDoc_CloneIsDeep(t *testing.T) {
	orig := GeneratedDoc{
		ID:              "doc-1-0",
		Type:            TypeAPI,
		SelectedSources: []string{"code"},
		Content: &APIContent{
			Endpoints:  []Endpoint{{Path: "/a", Params: json.RawMessage(`{"q":1}`)}},
			ErrorCodes: []ErrorCode{{Code: 400}},
		},
	}
	c := orig.Clone()
	require.Equal(t, orig, c)

	c.SelectedSources[0] = "prs"
	c.API().Endpoints[0].Path = "/b"
	c.API().Endpoints[0].Params[0] = '['
	c.API().ErrorCodes[0].Code = 500

	assert.Equal(t, "code", orig.SelectedSources[0])
	assert.Equal(t, "/a", orig.API().Endpoints[0].Path)
	assert.Equal(t, `{"q":1}`, string(orig.API().Endpoints[0].Params))
	assert.Equal(t, 400, orig.API().ErrorCodes[0].Code)
}

func TestGeneratedDoc_ClonePreservesNilAndEmpty(t *testing.T) {
	orig := GeneratedDoc{
		Type: TypeArchitecture,
		Content: &ArchitectureContent{
			Components: []Component{{Name: "a", Dependencies: []string{}}},
			Risks:      []string{},
		},
	}
	c := orig.Clone()
	assert.Equal(t, orig, c)
	assert.Nil(t, c.SelectedSources)
	assert.NotNil(t, c.Architecture().Risks)
	assert.Nil(t, c.Architecture().DataFlows)
	assert.Nil(t, c.Architecture().Diagram)
}
