// Package mcp exposes the simulator as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"sigsim/internal/config"
)

// Server holds the state for the MCP server.
type Server struct {
	server *sdk.Server
	cfg    *config.AppConfig
}

// NewServer creates a new MCP server with all simulator tools registered.
func NewServer(cfg *config.AppConfig, version string) *Server {
	s := &Server{
		server: sdk.NewServer(&sdk.Implementation{
			Name:    "sigsim",
			Version: version,
		}, nil),
		cfg: cfg,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// Serve runs the protocol loop over stdio until the client disconnects, the
// context is cancelled or the process receives SIGINT/SIGTERM.
func (s *Server) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("MCP server listening on stdio")
	err := s.server.Run(ctx, &sdk.StdioTransport{})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
