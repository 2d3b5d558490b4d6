// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Notas tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lfroes/notas/internal/notestore"
	"github.com/lfroes/notas/internal/search"
)

// Server wraps the MCP server with Notas tools.
type Server struct {
	mcp    *server.MCPServer
	store  *notestore.Store
	engine *search.Engine
}

// New creates a new MCP server with all Notas tools registered.
func New(store *notestore.Store, engine *search.Engine) *Server {
	s := &Server{store: store, engine: engine}

	s.mcp = server.NewMCPServer(
		"Notas",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search notes by title and content. Matching is case-insensitive substring by default."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithBoolean("whole_word", mcp.Description("Match whole words only")),
		mcp.WithBoolean("favorites", mcp.Description("Restrict to favorite notes")),
		mcp.WithString("category", mcp.Description("Restrict to a category id")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note by id, including its metadata."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note with the given title and content."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note body text")),
		mcp.WithString("category", mcp.Description("Optional category id (defaults to the default category)")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes (id, title, category), newest first."),
		mcp.WithString("category", mcp.Description("Optional category id to filter by")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List all categories with their ids and colors."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("export_notes",
		mcp.WithDescription("Export the whole collection (notes and categories) as JSON."),
	), s.exportNotes)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := search.DefaultOptions()
	opts.MatchWholeWord = req.GetBool("whole_word", false)
	opts.OnlyFavorites = req.GetBool("favorites", false)
	opts.CategoryID = req.GetString("category", "")

	results := s.engine.Search(query, opts)
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, ok := s.store.GetNoteByID(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(note, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id := s.store.AddNote()
	s.store.UpdateNote(id, title, content)
	if category := req.GetString("category", ""); category != "" {
		s.store.UpdateNoteField(id, notestore.FieldCategory, category)
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", id)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := req.GetString("category", "")

	var lines []string
	for _, n := range s.store.Notes() {
		if category != "" && n.Category != category {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", n.ID, n.Title, n.Category))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.store.GetAllCategories(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) exportNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(string(s.store.ExportNotes())), nil
}
