// Package mcp exposes a Bot as a Model Context Protocol server, giving
// MCP clients an operations surface: feed updates, start scenes, inspect
// and delete sessions. Replies produced during a dispatched update are
// collected by a Relay and returned in the tool result, so the Relay has
// to be the bot's sink:
//
//	relay := mcp.NewRelay()
//	bot, err := grammy.New(grammy.WithSink(relay), ...)
//	srv := mcp.NewServer(bot, relay)
//	srv.ServeStdio()
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	grammy "github.com/gabelluardo/grammY"
	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/domain"
)

const serverName = "grammy-mcp"

// UpdateInput is the send_update tool input.
type UpdateInput struct {
	Key  string `json:"key"`
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
	Data string `json:"data,omitempty"`
}

// SceneInput is the start_scene tool input.
type SceneInput struct {
	Key   string `json:"key"`
	Scene string `json:"scene"`
}

// KeyInput addresses one conversation.
type KeyInput struct {
	Key string `json:"key"`
}

// SessionSummary is the structured result for tools that touch a session.
type SessionSummary struct {
	Key     string         `json:"key"`
	Scene   string         `json:"scene,omitempty"`
	Depth   int            `json:"depth,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Replies []string       `json:"replies,omitempty"`
}

// Relay buffers sink output so tool results can carry the replies of the
// dispatch they triggered. Create it first, hand it to grammy.WithSink,
// then to NewServer.
type Relay struct {
	mu   sync.Mutex
	msgs []string
}

var _ composer.Sink = (*Relay)(nil)

// NewRelay creates an empty reply relay.
func NewRelay() *Relay { return &Relay{} }

// Send implements composer.Sink.
func (r *Relay) Send(_ context.Context, _, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, text)
	return nil
}

func (r *Relay) drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.msgs
	r.msgs = nil
	return out
}

// Server wraps a Bot and exposes it over MCP.
type Server struct {
	bot       *grammy.Bot
	replies   *Relay
	mcpServer *server.MCPServer

	// dispatchMu serializes dispatching tools so drained replies belong
	// to the call that produced them.
	dispatchMu sync.Mutex
}

// NewServer creates a configured MCP server around the bot. The relay
// must be the bot's sink or tool results will report no replies; a nil
// relay gets replaced with an unconnected one.
func NewServer(bot *grammy.Bot, relay *Relay) *Server {
	if relay == nil {
		relay = NewRelay()
	}
	s := &Server{
		bot:     bot,
		replies: relay,
		mcpServer: server.NewMCPServer(
			serverName,
			grammy.Version,
			server.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on stdin/stdout.
func (s *Server) ServeStdio() error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("mcp server is not configured")
	}
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("serve mcp: %w", err)
	}
	return nil
}

// ServeSSE starts the server over SSE on addr and blocks until ctx is
// cancelled or the listener fails.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer)

	httpServer := &http.Server{Addr: addr, Handler: sseServer}

	errs := make(chan error, 1)
	go func() {
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("stop mcp server: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(sendUpdateTool(), mcp.NewStructuredToolHandler(s.handleSendUpdate))
	s.mcpServer.AddTool(startSceneTool(), mcp.NewStructuredToolHandler(s.handleStartScene))
	s.mcpServer.AddTool(getSessionTool(), s.handleGetSession)
	s.mcpServer.AddTool(deleteSessionTool(), s.handleDeleteSession)
	s.mcpServer.AddTool(listSessionsTool(), s.handleListSessions)
	s.mcpServer.AddTool(listScenesTool(), s.handleListScenes)
}

func sendUpdateTool() mcp.Tool {
	return mcp.NewTool("send_update",
		mcp.WithDescription("Dispatch one update to the bot and return the replies it produced."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Conversation key")),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Update kind: message, command, callback or event")),
		mcp.WithString("text", mcp.Description("Message body or full command line")),
		mcp.WithString("data", mcp.Description("Callback data, for kind callback")),
		mcp.WithInputSchema[UpdateInput](),
		mcp.WithOutputSchema[SessionSummary](),
	)
}

func startSceneTool() mcp.Tool {
	return mcp.NewTool("start_scene",
		mcp.WithDescription("Enter a scene for a conversation without an inbound update."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Conversation key")),
		mcp.WithString("scene", mcp.Required(), mcp.Description("Scene identifier")),
		mcp.WithInputSchema[SceneInput](),
		mcp.WithOutputSchema[SessionSummary](),
	)
}

func getSessionTool() mcp.Tool {
	return mcp.NewTool("get_session",
		mcp.WithDescription("Read the persisted session for a conversation, trace included."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Conversation key")),
		mcp.WithInputSchema[KeyInput](),
	)
}

func deleteSessionTool() mcp.Tool {
	return mcp.NewTool("delete_session",
		mcp.WithDescription("Delete the persisted session for a conversation."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Conversation key")),
		mcp.WithInputSchema[KeyInput](),
	)
}

func listSessionsTool() mcp.Tool {
	return mcp.NewTool("list_sessions",
		mcp.WithDescription("List all persisted conversation keys."),
	)
}

func listScenesTool() mcp.Tool {
	return mcp.NewTool("list_scenes",
		mcp.WithDescription("List registered scene identifiers."),
	)
}

func (s *Server) handleSendUpdate(ctx context.Context, _ mcp.CallToolRequest, input UpdateInput) (SessionSummary, error) {
	u := &domain.Update{
		Key:  input.Key,
		Kind: domain.UpdateKind(input.Kind),
		Text: input.Text,
	}
	if input.Data != "" {
		u.Payload = map[string]any{"data": input.Data}
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.replies.drain()

	if err := s.bot.HandleUpdate(ctx, u); err != nil {
		return SessionSummary{}, fmt.Errorf("dispatch failed: %w", err)
	}
	return s.summarize(ctx, input.Key), nil
}

func (s *Server) handleStartScene(ctx context.Context, _ mcp.CallToolRequest, input SceneInput) (SessionSummary, error) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.replies.drain()

	if err := s.bot.Enter(ctx, input.Key, input.Scene); err != nil {
		return SessionSummary{}, fmt.Errorf("scene enter failed: %w", err)
	}
	return s.summarize(ctx, input.Key), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input KeyInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid get_session arguments", err), nil
	}

	sess, err := s.bot.Sessions().Load(ctx, input.Key)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("load failed", err), nil
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("encode failed", err), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input KeyInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid delete_session arguments", err), nil
	}

	if err := s.bot.Sessions().Delete(ctx, input.Key); err != nil {
		return mcp.NewToolResultErrorFromErr("delete failed", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("session %q deleted", input.Key)), nil
}

func (s *Server) handleListSessions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys, err := s.bot.Sessions().List(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("list failed", err), nil
	}
	raw, _ := json.Marshal(keys)
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) handleListScenes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, _ := json.Marshal(s.bot.Scenes().IDs())
	return mcp.NewToolResultText(string(raw)), nil
}

// summarize builds the structured result for dispatching tools, with the
// replies drained from the relay.
func (s *Server) summarize(ctx context.Context, key string) SessionSummary {
	summary := SessionSummary{Key: key, Replies: s.replies.drain()}

	if sess, err := s.bot.Sessions().Load(ctx, key); err == nil {
		summary.Data = sess.Data
		if sess.Scenes != nil {
			summary.Scene = sess.Scenes.Scene
			summary.Depth = len(sess.Scenes.Stack)
		}
	}

	return summary
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("grammy://scenes", "Scene Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		catalog := make(map[string]string)
		for _, id := range s.bot.Scenes().IDs() {
			outline, err := s.bot.Describe(id)
			if err != nil {
				return nil, fmt.Errorf("describe scene %q: %w", id, err)
			}
			catalog[id] = outline
		}

		raw, err := json.Marshal(catalog)
		if err != nil {
			return nil, fmt.Errorf("encode scene catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "grammy://scenes",
				MIMEType: "application/json",
				Text:     string(raw),
			},
		}, nil
	})
}
