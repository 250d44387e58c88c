package mcptool

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"replay-doctor/internal/rendezvous"
)

// Server exposes the diagnosis rendezvous as an MCP tool. A find-bugs call
// arms the broker and blocks until some recording later arrives over the
// HTTP upload path and finishes its pipeline.
type Server struct {
	broker *rendezvous.Broker
}

func NewServer(broker *rendezvous.Broker) *Server {
	return &Server{broker: broker}
}

// FindBugs implements the find-bugs tool. It takes no arguments.
func (s *Server) FindBugs(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[map[string]interface{}]) (*mcp.CallToolResultFor[any], error) {
	handle, err := s.broker.Arm()
	if err != nil {
		if errors.Is(err, rendezvous.ErrConflict) {
			return &mcp.CallToolResultFor[any]{
				IsError: true,
				Content: []mcp.Content{
					&mcp.TextContent{Text: "❌ Another find-bugs call is already waiting for a recording"},
				},
			}, nil
		}
		return nil, err
	}

	log.Printf("🛠 find-bugs armed, waiting for the next diagnosed recording...")

	res, err := handle.Await(ctx)
	if err != nil {
		return &mcp.CallToolResultFor[any]{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("❌ Gave up waiting for a recording: %v", err)},
			},
		}, nil
	}

	text := fmt.Sprintf("I found %d possible bugs:", len(res.Choices))
	for i, choice := range res.Choices {
		text += fmt.Sprintf("\n%d. %s", i+1, choice)
	}
	if len(res.Choices) == 0 {
		text = "I found 0 possible bugs: the recording looks clean."
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		Meta: map[string]interface{}{
			"choices": res.Choices,
			"success": true,
		},
	}, nil
}

// Run serves the tool over stdin/stdout until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "replay-doctor-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find-bugs",
		Description: "Blocks until the next uploaded session recording is diagnosed, then returns the suspected bugs",
	}, s.FindBugs)

	log.Printf("🔗 Starting find-bugs MCP server on stdin/stdout...")
	transport := mcp.NewStdioTransport()
	return server.Run(ctx, transport)
}
