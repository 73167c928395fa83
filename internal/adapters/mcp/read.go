package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"orgstage/internal/application/commands"
	"orgstage/internal/config"
	"orgstage/internal/domain"
	"orgstage/internal/ports"
)

// RegisterReadTools adds all read-only sync-inspection tools to the MCP
// server. Push and pull stay on the CLI: the server never mutates the
// document set or the staging area.
func RegisterReadTools(s *server.MCPServer, store ports.DocumentStore, staging ports.StagingArea, cfg *config.Config) {
	s.AddTool(statusTool(), statusHandler(store, staging, cfg))
	s.AddTool(readDocumentTool(), readDocumentHandler(store))
	s.AddTool(searchTool(), searchHandler(store))
	s.AddTool(listFlaggedTool(), listFlaggedHandler(store))
}

// --- status ---

func statusTool() mcp.Tool {
	return mcp.NewTool("status",
		mcp.WithDescription("Summarize the sync state: document count, staged manifest, pending inbox entries and flagged headings."),
	)
}

func statusHandler(store ports.DocumentStore, staging ports.StagingArea, cfg *config.Config) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := commands.NewStatusCommand(store, staging, cfg).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "documents: %d\n", st.Documents)
		fmt.Fprintf(&sb, "staged files: %d\n", len(st.Manifest))
		fmt.Fprintf(&sb, "pending requests: %d\n", st.PendingRequests)
		fmt.Fprintf(&sb, "pending captures: %d\n", st.PendingCaptures)
		fmt.Fprintf(&sb, "flagged entries: %d\n", len(st.Flagged))
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- read_document ---

func readDocumentTool() mcp.Tool {
	return mcp.NewTool("read_document",
		mcp.WithDescription("Read one canonical outline document by its file name."),
		mcp.WithString("file",
			mcp.Description("Document file name relative to the canonical directory (e.g. work.org)"),
			mcp.Required(),
		),
	)
}

func readDocumentHandler(store ports.DocumentStore) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file := req.GetString("file", "")
		if file == "" {
			return toolError(fmt.Errorf("file is required"))
		}

		path, err := resolveDocPath(store.Root(), file)
		if err != nil {
			return toolError(err)
		}
		doc, err := store.Load(path)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(string(store.Render(doc))), nil
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Search every canonical document by keyword. Returns matching headings with their locations."),
		mcp.WithString("query",
			mcp.Description("Search query"),
			mcp.Required(),
		),
	)
}

func searchHandler(store ports.DocumentStore) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := strings.ToLower(req.GetString("query", ""))
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}

		files, err := store.Files()
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		matches := 0
		for _, file := range files {
			doc, err := store.Load(file)
			if err != nil {
				return toolError(err)
			}
			link := store.LinkName(file)
			doc.Walk(func(n *domain.Node) {
				if strings.Contains(strings.ToLower(n.Heading), query) ||
					strings.Contains(strings.ToLower(n.Body), query) {
					fmt.Fprintf(&sb, "%s::%s\n", link, n.Heading)
					matches++
				}
			})
		}
		if matches == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- list_flagged ---

func listFlaggedTool() mcp.Tool {
	return mcp.NewTool("list_flagged",
		mcp.WithDescription("List every heading flagged for review, with its note when one was captured."),
	)
}

func listFlaggedHandler(store ports.DocumentStore) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		flagged, err := commands.ListFlagged(store)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(flagged, formatFlagged)
	}
}

// --- helpers ---

// resolveDocPath resolves a link name (possibly nested, slash-separated)
// against the canonical root, rejecting absolute names and anything escaping
// the root.
func resolveDocPath(root, name string) (string, error) {
	name = filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(name) || name == ".." ||
		strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid document name %q", name)
	}
	return filepath.Join(root, name), nil
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatFlagged(e domain.FlaggedEntry) string {
	if e.Note == "" {
		return fmt.Sprintf("%s::%s", e.File, e.Heading)
	}
	note := e.Note
	if i := strings.IndexByte(note, '\n'); i >= 0 {
		note = note[:i]
	}
	return fmt.Sprintf("%s::%s  %s", e.File, e.Heading, note)
}
