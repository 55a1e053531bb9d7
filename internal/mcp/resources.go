package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dta-platform/adminctl/internal/model"
	"github.com/dta-platform/adminctl/internal/openapi"
)

// registerResources adds MCP resource definitions to the server. Resources
// provide read-only data that LLM clients can load into their context.
func (s *MCPServer) registerResources(srv *server.MCPServer) {

	// -------------------------------------------------------------------
	// admin://openapi: the full API description the tools are built on
	// -------------------------------------------------------------------
	srv.AddResource(
		mcp.NewResource(
			"admin://openapi",
			"Platform Admin API Description",
			mcp.WithResourceDescription(
				"OpenAPI 3.1 document for the platform admin REST API, covering "+
					"every endpoint the tools call.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleOpenAPIResource,
	)

	// -------------------------------------------------------------------
	// admin://fee-schedule: the level fee table
	// -------------------------------------------------------------------
	srv.AddResource(
		mcp.NewResource(
			"admin://fee-schedule",
			"Membership Fee Schedule",
			mcp.WithResourceDescription(
				"Signup and upgrade fees per membership level. Level 1 costs "+
					"15000; the fee doubles for each level above that.",
			),
			mcp.WithMIMEType("application/json"),
		),
		s.handleFeeScheduleResource,
	)
}

// handleOpenAPIResource returns the generated API document.
func (s *MCPServer) handleOpenAPIResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	doc := openapi.Generate(s.client.BaseURL())
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal api document: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "admin://openapi",
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

// handleFeeScheduleResource returns the fee table for the first ten levels.
func (s *MCPServer) handleFeeScheduleResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {

	type levelFee struct {
		Level  int   `json:"level"`
		Amount int64 `json:"amount"`
	}
	fees := make([]levelFee, 0, 10)
	for level := 1; level <= 10; level++ {
		fees = append(fees, levelFee{Level: level, Amount: model.UpgradeAmount(level)})
	}

	b, err := json.MarshalIndent(fees, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fee schedule: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "admin://fee-schedule",
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}
