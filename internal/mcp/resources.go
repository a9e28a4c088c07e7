package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"sigsim/internal/scenario"
)

const scenarioSchemaURI = "sigsim://schema/scenario"

func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         scenarioSchemaURI,
		Name:        "sigsim-scenario-schema",
		Description: "JSON Schema of the scenario accepted by run_simulation and by scenario files.",
		MIMEType:    "application/schema+json",
	}, s.handleScenarioSchemaResource)
}

func (s *Server) handleScenarioSchemaResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      scenarioSchemaURI,
				MIMEType: "application/schema+json",
				Text:     string(scenario.Schema()),
			},
		},
	}, nil
}
