package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskhub/internal/models"
	"taskhub/internal/session"
	"taskhub/internal/storage"
	"taskhub/internal/storage/memory"
)

func testFixtures(t *testing.T) (*memory.Store, *TaskService, models.User, models.User, models.User) {
	t.Helper()
	store := memory.New()
	store.Seed()
	svc := NewTaskService(store, nil)

	ctx := context.Background()
	admin, err := store.Authenticate(ctx, "admin@company.com", "admin123")
	if err != nil {
		t.Fatalf("admin fixture: %v", err)
	}
	manager, err := store.Authenticate(ctx, "manager@company.com", "manager123")
	if err != nil {
		t.Fatalf("manager fixture: %v", err)
	}
	member, err := store.Authenticate(ctx, "member@company.com", "member123")
	if err != nil {
		t.Fatalf("member fixture: %v", err)
	}
	return store, svc, admin, manager, member
}

func TestListVisibility(t *testing.T) {
	_, svc, admin, _, member := testFixtures(t)
	ctx := context.Background()

	t.Run("member sees only own assignments", func(t *testing.T) {
		tasks, err := svc.List(ctx, member, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tasks) != 1 {
			t.Fatalf("expected 1 task, got %d", len(tasks))
		}
		if tasks[0].AssigneeID != member.ID {
			t.Errorf("leaked task assigned to %s", tasks[0].AssigneeID)
		}
	})

	t.Run("admin sees whole tenant", func(t *testing.T) {
		tasks, err := svc.List(ctx, admin, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tasks) != 3 {
			t.Fatalf("expected 3 tasks, got %d", len(tasks))
		}
	})

	t.Run("status filter", func(t *testing.T) {
		tasks, err := svc.List(ctx, admin, models.StatusCompleted)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Status != models.StatusCompleted {
			t.Fatalf("filter broken: %v", tasks)
		}
	})
}

func TestCreateAuthorization(t *testing.T) {
	_, svc, _, manager, member := testFixtures(t)
	ctx := context.Background()

	input := CreateTaskInput{
		Title:      "Ship the release",
		AssigneeID: member.ID,
		Priority:   models.PriorityHigh,
		Category:   models.CategoryFeature,
		DueDate:    time.Now().Add(48 * time.Hour),
	}

	t.Run("manager creates", func(t *testing.T) {
		task, err := svc.Create(ctx, manager, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.OrganizationID != manager.OrganizationID {
			t.Errorf("task org = %s, want %s", task.OrganizationID, manager.OrganizationID)
		}
		if task.AssigneeName != member.Name {
			t.Errorf("assignee name = %q, want %q", task.AssigneeName, member.Name)
		}
		if task.Status != models.StatusTodo {
			t.Errorf("initial status = %q, want todo", task.Status)
		}
	})

	t.Run("member denied", func(t *testing.T) {
		if _, err := svc.Create(ctx, member, input); !errors.Is(err, ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("unknown assignee rejected", func(t *testing.T) {
		bad := input
		bad.AssigneeID = "nobody"
		if _, err := svc.Create(ctx, manager, bad); !errors.Is(err, storage.ErrValidation) {
			t.Fatalf("err = %v, want ErrValidation", err)
		}
	})
}

func TestCreateNeverCrossesTenants(t *testing.T) {
	store, svc, _, manager, _ := testFixtures(t)
	ctx := context.Background()

	outsider, err := store.CreateAccount(ctx, storage.RegisterInput{
		Email:      "ceo@elsewhere.com",
		Credential: "secret",
		Name:       "Erin Elsewhere",
		Type:       storage.OrganizationNew,
	})
	if err != nil {
		t.Fatalf("outsider fixture: %v", err)
	}

	_, err = svc.Create(ctx, manager, CreateTaskInput{
		Title:      "Cross-tenant task",
		AssigneeID: outsider.ID,
	})
	if !errors.Is(err, storage.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for assignee outside organization", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	_, svc, admin, _, member := testFixtures(t)
	ctx := context.Background()

	t.Run("member moves own task", func(t *testing.T) {
		// Seed task 1 is assigned to the member.
		task, err := svc.UpdateStatus(ctx, member, "1", models.StatusInProgress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.Status != models.StatusInProgress {
			t.Errorf("status = %q, want in-progress", task.Status)
		}
	})

	t.Run("member denied on another's task", func(t *testing.T) {
		// Seed task 2 is assigned to the manager.
		if _, err := svc.UpdateStatus(ctx, member, "2", models.StatusCompleted); !errors.Is(err, ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("backwards transition allowed", func(t *testing.T) {
		task, err := svc.UpdateStatus(ctx, admin, "3", models.StatusTodo)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.Status != models.StatusTodo {
			t.Errorf("status = %q, want todo", task.Status)
		}
	})

	t.Run("expired cannot be set by hand", func(t *testing.T) {
		if _, err := svc.UpdateStatus(ctx, admin, "1", models.StatusExpired); !errors.Is(err, storage.ErrValidation) {
			t.Fatalf("err = %v, want ErrValidation", err)
		}
	})

	t.Run("stale id", func(t *testing.T) {
		if _, err := svc.UpdateStatus(ctx, admin, "missing", models.StatusTodo); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestDeleteAuthorization(t *testing.T) {
	_, svc, admin, _, member := testFixtures(t)
	ctx := context.Background()

	t.Run("member denied even on own task", func(t *testing.T) {
		if err := svc.Delete(ctx, member, "1"); !errors.Is(err, ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("admin deletes the same task", func(t *testing.T) {
		if err := svc.Delete(ctx, admin, "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := svc.Delete(ctx, admin, "1"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("second delete err = %v, want ErrNotFound", err)
		}
	})
}

func TestCrossTenantLooksLikeNotFound(t *testing.T) {
	store, svc, _, _, _ := testFixtures(t)
	ctx := context.Background()

	outsider, err := store.CreateAccount(ctx, storage.RegisterInput{
		Email:      "spy@elsewhere.com",
		Credential: "secret",
		Name:       "Sam Spy",
		Type:       storage.OrganizationNew,
	})
	if err != nil {
		t.Fatalf("outsider fixture: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, outsider, "1", models.StatusCompleted); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("cross-tenant update err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, outsider, "1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("cross-tenant delete err = %v, want ErrNotFound", err)
	}
}

func TestPastDueTaskExpiresEventually(t *testing.T) {
	store, svc, _, manager, member := testFixtures(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, manager, CreateTaskInput{
		Title:      "Already late",
		AssigneeID: member.ID,
		DueDate:    time.Now().Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Creation never expires a task immediately, even when past due.
	if task.Status != models.StatusTodo {
		t.Fatalf("status at creation = %q, want todo", task.Status)
	}
	if !task.Overdue(time.Now()) {
		t.Fatal("task should display as overdue before the sweep")
	}

	if _, err := store.SweepExpired(ctx, time.Now()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	swept, err := store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swept.Status != models.StatusExpired {
		t.Fatalf("status after sweep = %q, want expired", swept.Status)
	}
}

func TestOrgService(t *testing.T) {
	store, _, admin, manager, member := testFixtures(t)
	sessions := session.NewManager()
	svc := NewOrgService(store, sessions, nil)
	ctx := context.Background()

	t.Run("manager cannot invite", func(t *testing.T) {
		if _, err := svc.Invite(ctx, manager, "new@company.com", models.RoleMember); !errors.Is(err, ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("admin invites", func(t *testing.T) {
		inv, err := svc.Invite(ctx, admin, "new@company.com", models.RoleManager)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if inv.OrganizationID != admin.OrganizationID || inv.Role != models.RoleManager {
			t.Errorf("invitation wrong: %+v", inv)
		}
	})

	t.Run("admin cannot demote themself", func(t *testing.T) {
		if _, err := svc.ChangeRole(ctx, admin, admin.ID, models.RoleMember); !errors.Is(err, ErrForbidden) {
			t.Fatalf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("role change refreshes sessions", func(t *testing.T) {
		token := sessions.Issue(member)
		if _, err := svc.ChangeRole(ctx, admin, member.ID, models.RoleManager); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		current, ok := sessions.Resolve(token)
		if !ok {
			t.Fatal("session lost after role change")
		}
		if current.Role != models.RoleManager {
			t.Errorf("session role = %q, want manager", current.Role)
		}
	})

	t.Run("remove revokes sessions", func(t *testing.T) {
		token := sessions.Issue(manager)
		if err := svc.Remove(ctx, admin, manager.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := sessions.Resolve(token); ok {
			t.Fatal("removed member still has a live session")
		}
	})
}
