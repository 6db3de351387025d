package internal

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
	logger    *zap.Logger
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App, version string) *MCPServer {
	mcpServer := server.NewMCPServer(
		AppName+"-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
		logger:    app.logger.With(zap.String("component", "mcp")),
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("plan_chunks",
		mcp.WithDescription("List the chunk files an episode is expected to have. Paths are derived from the duration of the episode's full.mp3 and one path is returned per line."),
		mcp.WithString("episode_dir",
			mcp.Description("Episode directory, video ID or YouTube URL"),
			mcp.Required(),
		),
		mcp.WithString("chunk",
			mcp.Description("Chunk granularity"),
			mcp.Enum("5m", "1h"),
			mcp.DefaultString("5m"),
		),
		mcp.WithString("kind",
			mcp.Description("Artifact kind"),
			mcp.Enum("audio", "transcript"),
			mcp.DefaultString("audio"),
		),
	), s.handlePlanChunks)

	s.mcpServer.AddTool(mcp.NewTool("check_integrity",
		mcp.WithDescription("Run one integrity check over every episode under the audio root and report success, failure and total counts."),
		mcp.WithString("stage",
			mcp.Description("Check to run"),
			mcp.Required(),
			mcp.Enum(string(StageAudioCreation), string(StageTranscriptCreation), string(StageTranscriptQuality)),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Repetition threshold for transcript_quality, in [0, 1]"),
			mcp.Min(0),
			mcp.Max(1),
		),
	), s.handleCheckIntegrity)

	s.mcpServer.AddTool(mcp.NewTool("get_episode_transcript",
		mcp.WithDescription("Return the stitched five minute Whisper transcripts of an episode. Only transcripts already on disk are used, nothing is sent to OpenAI."),
		mcp.WithString("episode_dir",
			mcp.Description("Episode directory, video ID or YouTube URL"),
			mcp.Required(),
		),
	), s.handleGetTranscript)
}

func (s *MCPServer) handlePlanChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arg, err := request.RequireString("episode_dir")
	if err != nil {
		return mcp.NewToolResultError("episode_dir parameter is required and must be a string"), nil
	}
	keyword, err := ParseChunkKeyword(request.GetString("chunk", "5m"))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid chunk", err), nil
	}
	spec, err := SpecFor(keyword)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid chunk", err), nil
	}
	kind, err := ParseAssetKind(request.GetString("kind", "audio"))
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid kind", err), nil
	}

	dir, err := s.app.ResolveEpisodeDir(arg)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("episode not found", err), nil
	}
	paths, err := s.app.ChunkPlan(ctx, dir, spec, kind)
	if err != nil {
		s.logger.Error("plan_chunks failed", zap.String("episode", dir), zap.Error(err))
		return mcp.NewToolResultErrorFromErr("planning chunks", err), nil
	}
	s.logger.Info("plan_chunks", zap.String("episode", dir), zap.Int("chunks", len(paths)))

	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *MCPServer) handleCheckIntegrity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("stage")
	if err != nil {
		return mcp.NewToolResultError("stage parameter is required and must be a string"), nil
	}
	stage, err := ParseStage(name)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid stage", err), nil
	}
	threshold := request.GetFloat("threshold", s.app.config.RepetitionThreshold)

	reports, err := s.app.Check(ctx, []Stage{stage}, threshold)
	if err != nil {
		s.logger.Error("check_integrity failed", zap.String("stage", name), zap.Error(err))
		return mcp.NewToolResultErrorFromErr("integrity check failed", err), nil
	}
	r := reports[0]
	s.logger.Info("check_integrity", zap.String("stage", name), zap.Int("success", r.Success), zap.Int("total", r.Total))

	return mcp.NewToolResultText(fmt.Sprintf("Stage: %s\nSuccess: %d\nFailure: %d\nTotal: %d\nSuccess rate: %s\n",
		r.Stage, r.Success, r.Failure, r.Total, r.RateString())), nil
}

func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	arg, err := request.RequireString("episode_dir")
	if err != nil {
		return mcp.NewToolResultError("episode_dir parameter is required and must be a string"), nil
	}
	dir, err := s.app.ResolveEpisodeDir(arg)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("episode not found", err), nil
	}

	transcript, err := s.app.EpisodeTranscript(ctx, dir)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("no transcripts available - run `lngai transcribe` first", err), nil
	}
	return mcp.NewToolResultText(transcript), nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	s.logger.Info("starting MCP server", zap.String("transport", transport), zap.Int("port", port))
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	return server.ServeStdio(s.mcpServer)
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}
