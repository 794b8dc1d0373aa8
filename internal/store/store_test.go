package store

import (
	"errors"
	"testing"
	"time"

	"github.com/tmaziere/taskboard/internal/models"
)

// Both backends must satisfy the same contract, so every test runs against
// both.
func forEachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemory())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLite(":memory:")
		if err != nil {
			t.Fatalf("NewSQLite: %v", err)
		}
		defer s.Close()
		fn(t, s)
	})
}

func mustCreateUser(t *testing.T, s Store, username string) {
	t.Helper()
	if err := s.CreateUser(username, "hash-"+username); err != nil {
		t.Fatalf("CreateUser(%q): %v", username, err)
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		mustCreateUser(t, s, "alice")

		err := s.CreateUser("alice", "other-hash")
		if !errors.Is(err, ErrUsernameTaken) {
			t.Fatalf("expected ErrUsernameTaken, got %v", err)
		}

		// The first registration's hash is unchanged.
		hash, err := s.PasswordHash("alice")
		if err != nil {
			t.Fatalf("PasswordHash: %v", err)
		}
		if hash != "hash-alice" {
			t.Fatalf("hash changed by failed duplicate: %q", hash)
		}
	})
}

func TestCreateUser_CaseSensitive(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		mustCreateUser(t, s, "alice")
		if err := s.CreateUser("Alice", "hash-Alice"); err != nil {
			t.Fatalf("expected case-sensitive match to allow %q: %v", "Alice", err)
		}
	})
}

func TestPasswordHash_UnknownUser(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		if _, err := s.PasswordHash("ghost"); !errors.Is(err, ErrUnknownUser) {
			t.Fatalf("expected ErrUnknownUser, got %v", err)
		}
	})
}

func TestListTasks_EmptyAfterRegistration(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		mustCreateUser(t, s, "alice")

		tasks, err := s.ListTasks("alice")
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if len(tasks) != 0 {
			t.Fatalf("expected empty task list, got %d", len(tasks))
		}
	})
}

func TestTasks_InsertionOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		mustCreateUser(t, s, "alice")
		for _, desc := range []string{"a", "b", "c"} {
			if err := s.InsertTask("alice", models.Task{ID: "id-" + desc, Description: desc, CreatedAt: time.Now()}); err != nil {
				t.Fatalf("InsertTask(%q): %v", desc, err)
			}
		}

		tasks, err := s.ListTasks("alice")
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if len(tasks) != 3 {
			t.Fatalf("expected 3 tasks, got %d", len(tasks))
		}
		for i, want := range []string{"a", "b", "c"} {
			if tasks[i].Description != want {
				t.Fatalf("task %d: got %q, want %q", i, tasks[i].Description, want)
			}
		}
	})
}

func TestUpdateTask_PreservesIDAndPosition(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		mustCreateUser(t, s, "alice")
		s.InsertTask("alice", models.Task{ID: "t1", Description: "a"})
		s.InsertTask("alice", models.Task{ID: "t2", Description: "b"})
		s.InsertTask("alice", models.Task{ID: "t3", Description: "c"})

		if err := s.UpdateTask("alice", "t2", "new text"); err != nil {
			t.Fatalf("UpdateTask: %v", err)
		}

		tasks, _ := s.ListTasks("alice")
		if tasks[1].ID != "t2" || tasks[1].Description != "new text" {
			t.Fatalf("unexpected middle task: %+v", tasks[1])
		}
		if tasks[0].Description != "a" || tasks[2].Description != "c" {
			t.Fatalf("siblings changed: %+v", tasks)
		}
	})
}

func TestUpdateTask_NotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		mustCreateUser(t, s, "alice")
		s.InsertTask("alice", models.Task{ID: "t1", Description: "a"})

		if err := s.UpdateTask("alice", "unknown", "x"); !errors.Is(err, ErrTaskNotFound) {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}

		tasks, _ := s.ListTasks("alice")
		if len(tasks) != 1 || tasks[0].Description != "a" {
			t.Fatalf("store changed by failed update: %+v", tasks)
		}
	})
}

func TestDeleteTask_Idempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		mustCreateUser(t, s, "alice")
		s.InsertTask("alice", models.Task{ID: "t1", Description: "a"})

		if err := s.DeleteTask("alice", "t1"); err != nil {
			t.Fatalf("first delete: %v", err)
		}
		if err := s.DeleteTask("alice", "t1"); err != nil {
			t.Fatalf("second delete should be a silent no-op: %v", err)
		}

		tasks, _ := s.ListTasks("alice")
		if len(tasks) != 0 {
			t.Fatalf("expected empty list, got %+v", tasks)
		}
	})
}

func TestTasks_CrossUserIsolation(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		mustCreateUser(t, s, "alice")
		mustCreateUser(t, s, "bob")
		s.InsertTask("alice", models.Task{ID: "t1", Description: "buy milk"})
		s.InsertTask("bob", models.Task{ID: "t2", Description: "buy milk"})

		if _, err := s.GetTask("bob", "t1"); !errors.Is(err, ErrTaskNotFound) {
			t.Fatalf("bob can see alice's task: %v", err)
		}
		bobTasks, _ := s.ListTasks("bob")
		if len(bobTasks) != 1 || bobTasks[0].ID != "t2" {
			t.Fatalf("unexpected bob tasks: %+v", bobTasks)
		}
	})
}

func TestEvents_RecentAndCounts(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		mustCreateUser(t, s, "alice")
		s.InsertTask("alice", models.Task{ID: "t1", Description: "a"})

		for i, id := range []string{"e1", "e2", "e3"} {
			event := models.Event{
				ID:        id,
				Type:      "task.create",
				Level:     "info",
				Message:   "msg",
				CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
			}
			if err := s.InsertEvent(event); err != nil {
				t.Fatalf("InsertEvent(%q): %v", id, err)
			}
		}

		events, err := s.RecentEvents(2)
		if err != nil {
			t.Fatalf("RecentEvents: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].ID != "e3" {
			t.Fatalf("expected newest first, got %q", events[0].ID)
		}

		users, tasks, err := s.Counts()
		if err != nil {
			t.Fatalf("Counts: %v", err)
		}
		if users != 1 || tasks != 1 {
			t.Fatalf("Counts: got (%d, %d), want (1, 1)", users, tasks)
		}
	})
}

func TestPruneEvents_UsesEventTime(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		now := time.Now()
		old := models.Event{ID: "old", Type: "task.create", Level: "info", Message: "msg", CreatedAt: now.Add(-48 * time.Hour)}
		fresh := models.Event{ID: "fresh", Type: "task.create", Level: "info", Message: "msg", CreatedAt: now.Add(-time.Hour)}
		for _, event := range []models.Event{old, fresh} {
			if err := s.InsertEvent(event); err != nil {
				t.Fatalf("InsertEvent(%q): %v", event.ID, err)
			}
		}

		pruned, err := s.PruneEvents(now.Add(-24 * time.Hour))
		if err != nil {
			t.Fatalf("PruneEvents: %v", err)
		}
		if pruned != 1 {
			t.Fatalf("expected the 48h-old event to be pruned, pruned=%d", pruned)
		}

		events, err := s.RecentEvents(10)
		if err != nil {
			t.Fatalf("RecentEvents: %v", err)
		}
		if len(events) != 1 || events[0].ID != "fresh" {
			t.Fatalf("expected only the fresh event to survive, got %+v", events)
		}
		// The event's own timestamp round-trips (to the second).
		if events[0].CreatedAt.Unix() != fresh.CreatedAt.Unix() {
			t.Fatalf("CreatedAt not preserved: got %v, want %v", events[0].CreatedAt, fresh.CreatedAt)
		}
	})
}

func TestInsertTask_PreservesCreatedAt(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		mustCreateUser(t, s, "alice")
		created := time.Now().Add(-time.Hour)
		if err := s.InsertTask("alice", models.Task{ID: "t1", Description: "a", CreatedAt: created}); err != nil {
			t.Fatalf("InsertTask: %v", err)
		}

		task, err := s.GetTask("alice", "t1")
		if err != nil {
			t.Fatalf("GetTask: %v", err)
		}
		if task.CreatedAt.Unix() != created.Unix() {
			t.Fatalf("CreatedAt not preserved: got %v, want %v", task.CreatedAt, created)
		}
	})
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("postgres", ""); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
