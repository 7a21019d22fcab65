package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cortex-os/cortex/internal/applier"
	"github.com/cortex-os/cortex/internal/appstate"
	"github.com/cortex-os/cortex/internal/testutil"
)

func testServer(t *testing.T) (*Server, *appstate.Container) {
	t.Helper()

	st := testutil.TestStore(t)
	state := testutil.TestState(t, st)
	ap := applier.New(st, nil, state, testutil.TestLogger(t))
	return New(state, ap), state
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "get_sync_status":
		result, err = srv.getSyncStatus(ctx, req)
	case "list_tasks":
		result, err = srv.listTasks(ctx, req)
	case "create_task":
		result, err = srv.createTask(ctx, req)
	case "complete_task":
		result, err = srv.completeTask(ctx, req)
	case "log_habit_entry":
		result, err = srv.logHabitEntry(ctx, req)
	case "habit_streak":
		result, err = srv.habitStreak(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndCompleteTask(t *testing.T) {
	srv, state := testServer(t)

	r := callTool(t, srv, "create_task", map[string]interface{}{
		"title": "write report",
	})
	text := resultText(r)
	if !strings.HasPrefix(text, "created: temp_") {
		t.Errorf("create result = %q", text)
	}
	id := strings.TrimPrefix(text, "created: ")

	r = callTool(t, srv, "complete_task", map[string]interface{}{"id": id})
	if resultText(r) != "completed: write report" {
		t.Errorf("complete result = %q", resultText(r))
	}

	task, ok := state.Task(id)
	if !ok || task.Status != "COMPLETED" {
		t.Errorf("task state = %+v, ok=%v", task, ok)
	}
}

func TestCompleteTaskMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "complete_task", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing task")
	}
}

func TestSyncStatusReflectsPending(t *testing.T) {
	srv, _ := testServer(t)

	callTool(t, srv, "create_note", map[string]interface{}{"title": "offline note"})

	r := callTool(t, srv, "get_sync_status", map[string]interface{}{})
	var snap struct {
		PendingChanges int  `json:"pendingChanges"`
		IsOnline       bool `json:"isOnline"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &snap); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if snap.PendingChanges != 1 || snap.IsOnline {
		t.Errorf("status = %+v, want 1 pending and offline", snap)
	}
}

func TestHabitStreakTool(t *testing.T) {
	srv, state := testServer(t)

	habit, err := srv.applier.CreateHabit(context.Background(), applier.HabitInput{
		Name: "stretch", Frequency: "daily",
	})
	if err != nil {
		t.Fatal(err)
	}

	callTool(t, srv, "log_habit_entry", map[string]interface{}{
		"habit_id": habit.ID, "completed": true,
	})

	r := callTool(t, srv, "habit_streak", map[string]interface{}{"habit_id": habit.ID})
	var streak struct {
		CurrentStreak int `json:"currentStreak"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &streak); err != nil {
		t.Fatalf("unmarshal streak: %v", err)
	}
	if streak.CurrentStreak != 1 {
		t.Errorf("currentStreak = %d, want 1", streak.CurrentStreak)
	}

	if entries := state.EntriesForHabit(habit.ID); len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}

	r = callTool(t, srv, "habit_streak", map[string]interface{}{"habit_id": "nope"})
	if !r.IsError {
		t.Error("expected error for unknown habit")
	}
}
