package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/framegraph"
	"github.com/aretw0/framegraph/internal/logging"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const treeURI = "framegraph://tree"

// Graph defines the frame graph queries the MCP server exposes.
type Graph interface {
	Resolve(source, target string) (geom.Transform, error)
	ResolveSource(source, target string) (geom.Transform, error)
	FindPath(source, target string) []string
	ListFrames() []string
	BuildTree(window time.Duration) []domain.TreeNode
}

var _ Graph = (*framegraph.Graph)(nil)

// TransformResponse is the structured result of resolve_transform.
type TransformResponse struct {
	Source      string    `json:"source" jsonschema_description:"Frame the coordinates are expressed in"`
	Target      string    `json:"target" jsonschema_description:"Frame the coordinates are mapped into"`
	Convention  string    `json:"convention" jsonschema_description:"Axis convention of the result: target (Y-up) or source (Z-up)"`
	Translation geom.Vec3 `json:"translation" jsonschema_description:"Translation component"`
	Rotation    geom.Quat `json:"rotation" jsonschema_description:"Unit quaternion rotation (x, y, z, w)"`
}

// PathResponse is the structured result of find_path.
type PathResponse struct {
	Path []string `json:"path" jsonschema_description:"Frames from source to target inclusive"`
}

type resolveArgs struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	Convention string `json:"convention,omitempty"`
}

type pathArgs struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Server exposes a frame graph as an MCP Server.
type Server struct {
	graph     Graph
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(graph Graph, opts ...Option) *Server {
	s := &Server{
		graph:     graph,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("framegraph-mcp", strings.TrimSpace(framegraph.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: resolve_transform
	resolveTool := mcp.NewTool("resolve_transform",
		mcp.WithDescription("Resolve the target frame's pose expressed in the source frame."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source frame name")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target frame name")),
		mcp.WithString("convention", mcp.Description("Axis convention of the result: target (default) or source")),
		mcp.WithOutputSchema[TransformResponse](),
	)
	s.mcpServer.AddTool(resolveTool, mcp.NewStructuredToolHandler(s.handleResolve))

	// TOOL: find_path
	pathTool := mcp.NewTool("find_path",
		mcp.WithDescription("List the frames traversed between source and target."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source frame name")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target frame name")),
		mcp.WithOutputSchema[PathResponse](),
	)
	s.mcpServer.AddTool(pathTool, mcp.NewStructuredToolHandler(s.handleFindPath))

	// TOOL: list_frames
	s.mcpServer.AddTool(mcp.NewTool("list_frames",
		mcp.WithDescription("List every known frame name."),
	), s.handleListFrames)

	// TOOL: frame_tree
	s.mcpServer.AddTool(mcp.NewTool("frame_tree",
		mcp.WithDescription("Get the frame hierarchy with per-frame validity."),
		mcp.WithString("expiry", mcp.Description("Expiry window as a Go duration, e.g. 15s (optional)")),
	), s.handleFrameTree)
}

func (s *Server) handleResolve(ctx context.Context, request mcp.CallToolRequest, args resolveArgs) (TransformResponse, error) {
	if args.Source == "" || args.Target == "" {
		return TransformResponse{}, errors.New("source and target are required")
	}

	var (
		t   geom.Transform
		err error
	)
	switch args.Convention {
	case "", "target":
		args.Convention = "target"
		t, err = s.graph.Resolve(args.Source, args.Target)
	case "source":
		t, err = s.graph.ResolveSource(args.Source, args.Target)
	default:
		return TransformResponse{}, fmt.Errorf("unknown convention %q", args.Convention)
	}
	if err != nil {
		s.logger.Debug("MCP resolve: unresolved", "source", args.Source, "target", args.Target, "error", err)
		return TransformResponse{}, fmt.Errorf("resolve failed: %w", err)
	}

	return TransformResponse{
		Source:      args.Source,
		Target:      args.Target,
		Convention:  args.Convention,
		Translation: t.Translation,
		Rotation:    t.Rotation,
	}, nil
}

func (s *Server) handleFindPath(ctx context.Context, request mcp.CallToolRequest, args pathArgs) (PathResponse, error) {
	path := s.graph.FindPath(args.Source, args.Target)
	if path == nil {
		return PathResponse{}, fmt.Errorf("%w: %q -> %q", domain.ErrNoPath, args.Source, args.Target)
	}
	return PathResponse{Path: path}, nil
}

func (s *Server) handleListFrames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(s.graph.ListFrames())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleFrameTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var window time.Duration
	if raw := request.GetString("expiry", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid expiry %q", raw)), nil
		}
		window = d
	}
	jsonBytes, err := json.Marshal(s.graph.BuildTree(window))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: framegraph://tree
	s.mcpServer.AddResource(mcp.NewResource(treeURI, "Current Frame Tree",
		mcp.WithMIMEType("application/json"),
	), s.readTree)
}

func (s *Server) readTree(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.graph.BuildTree(0))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      treeURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
