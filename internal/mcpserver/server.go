// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Cortex tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cortex-os/cortex/internal/applier"
	"github.com/cortex-os/cortex/internal/appstate"
	"github.com/cortex-os/cortex/internal/scoring"
)

// Server wraps the MCP server with Cortex tools.
type Server struct {
	mcp     *server.MCPServer
	state   *appstate.Container
	applier *applier.Applier
}

// New creates a new MCP server with all Cortex tools registered.
func New(state *appstate.Container, ap *applier.Applier) *Server {
	s := &Server{state: state, applier: ap}

	s.mcp = server.NewMCPServer(
		"Cortex",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_sync_status",
		mcp.WithDescription("Report connectivity, pending offline changes, and the last sync time."),
	), s.getSyncStatus)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List all tasks ordered by position, with status and priority."),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a task. Works offline; the change syncs when connectivity returns."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		mcp.WithString("parent_id", mcp.Description("Optional parent task id for subtasks")),
	), s.createTask)

	s.mcp.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task as completed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
	), s.completeTask)

	s.mcp.AddTool(mcp.NewTool("log_habit_entry",
		mcp.WithDescription("Record today's completion (or miss) for a habit."),
		mcp.WithString("habit_id", mcp.Required(), mcp.Description("Habit id")),
		mcp.WithBoolean("completed", mcp.Description("Whether the habit was done (default true)")),
	), s.logHabitEntry)

	s.mcp.AddTool(mcp.NewTool("habit_streak",
		mcp.WithDescription("Return the current and longest streak for a habit."),
		mcp.WithString("habit_id", mcp.Required(), mcp.Description("Habit id")),
	), s.habitStreak)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. Works offline; the change syncs when connectivity returns."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Description("Note body")),
	), s.createNote)

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

func (s *Server) getSyncStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.state.SyncState(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.state.Tasks(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := applier.TaskInput{Title: title}
	if p := req.GetString("parent_id", ""); p != "" {
		in.ParentID = &p
	}
	task, err := s.applier.CreateTask(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", task.ID)), nil
}

func (s *Server) completeTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	task, err := s.applier.CompleteTask(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("completed: %s", task.Title)), nil
}

func (s *Server) logHabitEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	habitID, err := req.RequireString("habit_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := applier.EntryInput{
		HabitID:   habitID,
		Date:      time.Now().UnixMilli(),
		Completed: req.GetBool("completed", true),
	}
	entry, err := s.applier.LogHabitEntry(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("logged: %s", entry.ID)), nil
}

func (s *Server) habitStreak(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	habitID, err := req.RequireString("habit_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, ok := s.state.Habit(habitID); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("habit not found: %s", habitID)), nil
	}
	streak := scoring.CalculateStreak(s.state.EntriesForHabit(habitID), time.Now())
	out, _ := json.MarshalIndent(streak, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := applier.NoteInput{
		Title:   title,
		Content: req.GetString("content", ""),
	}
	note, err := s.applier.CreateNote(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", note.ID)), nil
}
