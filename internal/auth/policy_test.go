package auth

import (
	"testing"

	"taskhub/internal/models"
)

func TestCanCreateTask(t *testing.T) {
	cases := []struct {
		role models.Role
		want bool
	}{
		{models.RoleAdmin, true},
		{models.RoleManager, true},
		{models.RoleMember, false},
		{models.Role("intruder"), false},
		{models.Role(""), false},
	}
	for _, tc := range cases {
		if got := CanCreateTask(tc.role); got != tc.want {
			t.Errorf("CanCreateTask(%q) = %v, want %v", tc.role, got, tc.want)
		}
		if got := CanDeleteTask(tc.role); got != tc.want {
			t.Errorf("CanDeleteTask(%q) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestCanChangeStatus(t *testing.T) {
	task := models.Task{ID: "t1", AssigneeID: "u1", OrganizationID: "org1"}

	t.Run("admin and manager touch any task", func(t *testing.T) {
		if !CanChangeStatus(models.RoleAdmin, task, "someone-else") {
			t.Error("admin should change any task")
		}
		if !CanChangeStatus(models.RoleManager, task, "someone-else") {
			t.Error("manager should change any task")
		}
	})

	t.Run("member only own assignment", func(t *testing.T) {
		if !CanChangeStatus(models.RoleMember, task, "u1") {
			t.Error("member should change own task")
		}
		if CanChangeStatus(models.RoleMember, task, "u2") {
			t.Error("member must not change another's task")
		}
	})

	t.Run("unknown role fails closed", func(t *testing.T) {
		if CanChangeStatus(models.Role("root"), task, "u1") {
			t.Error("unknown role must be denied")
		}
		if CanChangeStatus(models.Role(""), task, "") {
			t.Error("empty role with empty user must be denied")
		}
	})
}

func TestCanModifyMember(t *testing.T) {
	admin := models.User{ID: "a1", Role: models.RoleAdmin}

	if !CanModifyMember(admin, "someone-else") {
		t.Error("admin should manage other members")
	}
	if CanModifyMember(admin, "a1") {
		t.Error("admin must not demote or remove themself")
	}
	manager := models.User{ID: "m1", Role: models.RoleManager}
	if CanModifyMember(manager, "someone-else") {
		t.Error("manager must not manage members")
	}
}

func TestVisibleTasks(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", AssigneeID: "member", OrganizationID: "org1"},
		{ID: "2", AssigneeID: "other", OrganizationID: "org1"},
		{ID: "3", AssigneeID: "member", OrganizationID: "org2"},
	}

	t.Run("member sees only own assignments in own org", func(t *testing.T) {
		member := models.User{ID: "member", Role: models.RoleMember, OrganizationID: "org1"}
		visible := VisibleTasks(member, tasks)
		if len(visible) != 1 || visible[0].ID != "1" {
			t.Fatalf("expected only task 1, got %v", visible)
		}
	})

	t.Run("manager sees whole tenant but not other tenants", func(t *testing.T) {
		manager := models.User{ID: "mgr", Role: models.RoleManager, OrganizationID: "org1"}
		visible := VisibleTasks(manager, tasks)
		if len(visible) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(visible))
		}
		for _, task := range visible {
			if task.OrganizationID != "org1" {
				t.Errorf("task %s leaked across tenant boundary", task.ID)
			}
		}
	})

	t.Run("unknown role sees nothing", func(t *testing.T) {
		ghost := models.User{ID: "g", Role: models.Role("ghost"), OrganizationID: "org1"}
		if visible := VisibleTasks(ghost, tasks); len(visible) != 0 {
			t.Fatalf("unknown role should see no tasks, got %d", len(visible))
		}
	})
}
