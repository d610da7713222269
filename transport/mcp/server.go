package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/wricardo/footprints/game/engine"
	"github.com/wricardo/footprints/logging"
	"github.com/wricardo/footprints/terminal"
)

// MaxWalk bounds the steps of a single walk call.
const MaxWalk = 50

// Player is the part of a session controller the tools drive.
type Player interface {
	Self() engine.Character
	World() engine.World
	Move(dir engine.Direction) error
}

// Server binds MCP tools to one player.
type Server struct {
	player     Player
	adminURL   string
	httpClient *http.Client
	log        *zap.SugaredLogger
	mcpServer  *server.MCPServer
}

// NewServer creates the MCP server. adminURL is the relay's HTTP base URL;
// when empty the participants tool reports that it is unavailable.
func NewServer(player Player, adminURL string, log *zap.SugaredLogger) *Server {
	s := &Server{
		player:   player,
		adminURL: strings.TrimSuffix(adminURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: logging.OrNop(log),
	}

	s.mcpServer = server.NewMCPServer(
		"Footprints",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Footprints - shared 40x40 grid

You control one character on a grid shared with other players. Every step
leaves a footprint in your color on the cell you left. Moves off the edge
are ignored.

AVAILABLE TOOLS:
- whoami: your character and position
- world: the grid ('@' is you, letters are others, '.' are footprints)
- move: one step (up/down/left/right)
- walk: several steps in order (max 50)
- participants: who is connected to the relay

Moves are applied when the relay echoes them back; call world after moving
to see the result.`),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "whoami",
		Description: "Describe your character: id, color, facing and position",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleWhoami)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "world",
		Description: "Render the shared grid with a legend of all characters",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleWorld)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move your character one cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"direction": map[string]interface{}{
					"type":        "string",
					"description": "Direction to move",
					"enum":        []string{"up", "down", "left", "right"},
				},
			},
			Required: []string{"direction"},
		},
	}, s.handleMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "walk",
		Description: fmt.Sprintf("Move several cells in order (max %d)", MaxWalk),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"moves": map[string]interface{}{
					"type":        "array",
					"description": "Directions to move, in order",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right"},
					},
				},
			},
			Required: []string{"moves"},
		},
	}, s.handleWalk)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "participants",
		Description: "List relay connections and the current leader",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleParticipants)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

// Tool handlers

func (s *Server) handleWhoami(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	self := s.player.Self()
	current, ok := s.player.World().Character(self.ID)
	if !ok {
		current = self
	}

	result := fmt.Sprintf("ID: %s\nColor: %s\nSprite: %d\nFacing: %s\nPosition: %s\n",
		self.ID, self.Color, self.SpriteIndex, current.Direction, current.Position)
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleWorld(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatWorld(s.player.World(), s.player.Self().ID)), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	raw, _ := args["direction"].(string)

	dir, err := engine.ParseDirection(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.player.Move(dir); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Sent move %s", dir)), nil
}

func (s *Server) handleWalk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	movesRaw, _ := args["moves"].([]interface{})

	if len(movesRaw) == 0 {
		return mcp.NewToolResultError("moves must not be empty"), nil
	}
	if len(movesRaw) > MaxWalk {
		return mcp.NewToolResultError(fmt.Sprintf("at most %d moves per walk, got %d", MaxWalk, len(movesRaw))), nil
	}

	// validate everything before sending anything
	dirs := make([]engine.Direction, 0, len(movesRaw))
	for i, m := range movesRaw {
		raw, _ := m.(string)
		dir, err := engine.ParseDirection(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("move %d: %v", i+1, err)), nil
		}
		dirs = append(dirs, dir)
	}

	for i, dir := range dirs {
		if err := s.player.Move(dir); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("move %d: %v", i+1, err)), nil
		}
	}

	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = string(d)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Sent %d moves: %s", len(dirs), strings.Join(names, ", "))), nil
}

// participantsResponse mirrors GET /api/participants.
type participantsResponse struct {
	Participants []string `json:"participants"`
	Leader       string   `json:"leader"`
}

func (s *Server) handleParticipants(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.adminURL == "" {
		return mcp.NewToolResultError("relay admin API not configured"), nil
	}

	var response participantsResponse
	if err := s.apiCall(ctx, "/api/participants", &response); err != nil {
		s.log.Warnw("participants lookup failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Participants (%d):\n", len(response.Participants))
	for _, id := range response.Participants {
		marker := ""
		if id == response.Leader {
			marker = " (leader)"
		}
		result += fmt.Sprintf("- %s%s\n", id, marker)
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) apiCall(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.adminURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func formatWorld(world engine.World, self string) string {
	var b strings.Builder
	border := "+" + strings.Repeat("-", engine.GridWidth) + "+\n"

	b.WriteString(border)
	for _, row := range terminal.Render(world, self) {
		b.WriteString("|" + row + "|\n")
	}
	b.WriteString(border)

	b.WriteString(fmt.Sprintf("\nCharacters (%d), footprints: %d\n", len(world.Characters), len(world.Colors)))
	for _, line := range terminal.Legend(world, self) {
		b.WriteString(line + "\n")
	}
	return b.String()
}
