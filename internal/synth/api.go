package synth

import (
	"github.com/dejo1307/autodocs/internal/docs"
	"github.com/dejo1307/autodocs/internal/fixtures"
	"github.com/dejo1307/autodocs/internal/seeded"
)

const deprecatedThreshold = 0.9

const apiAuthentication = "All API requests require a Bearer token in the Authorization header, except for the login endpoint."

var apiErrorCodes = []docs.ErrorCode{
	{Code: 400, Message: "Bad Request"},
	{Code: 401, Message: "Unauthorized"},
	{Code: 403, Message: "Forbidden"},
	{Code: 404, Message: "Not Found"},
	{Code: 500, Message: "Internal Server Error"},
}

// API synthesizes API reference documents.
type API struct{}

// NewAPI creates an API synthesizer.
func NewAPI() *API {
	return &API{}
}

func (a *API) Type() docs.DocType { return docs.TypeAPI }

func (a *API) Title() string { return docs.Title(docs.TypeAPI) }

// Synthesize copies the endpoint fixtures, consuming one draw per endpoint
// to decide whether it is flagged deprecated.
func (a *API) Synthesize(_ docs.GenerationInput, src seeded.Source, fx *fixtures.Set) docs.Content {
	endpoints := make([]docs.Endpoint, 0, len(fx.Endpoints))
	for _, e := range fx.Endpoints {
		endpoints = append(endpoints, docs.Endpoint{
			Method:     e.Method,
			Path:       e.Path,
			Auth:       e.Auth,
			Params:     docs.CloneRaw(e.Params),
			Response:   docs.CloneRaw(e.Response),
			Deprecated: src.Next() > deprecatedThreshold,
		})
	}

	return &docs.APIContent{
		Authentication: apiAuthentication,
		Endpoints:      endpoints,
		ErrorCodes:     append([]docs.ErrorCode{}, apiErrorCodes...),
	}
}
