// Package auth derives permissions from a user's role and a task.
// All checks are pure and fail closed: an unknown role is denied
// everything.
package auth

import "taskhub/internal/models"

// CanCreateTask reports whether the role may create tasks.
func CanCreateTask(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleManager
}

// CanDeleteTask reports whether the role may delete tasks. Members may
// never delete, not even tasks assigned to them.
func CanDeleteTask(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleManager
}

// CanChangeStatus reports whether the user may change the status of the
// given task. Admins and managers may touch any task; members only the
// ones assigned to them.
func CanChangeStatus(role models.Role, task models.Task, userID string) bool {
	switch role {
	case models.RoleAdmin, models.RoleManager:
		return true
	case models.RoleMember:
		return task.AssigneeID == userID && userID != ""
	default:
		return false
	}
}

// CanManageMembers reports whether the role may invite members, change
// roles or remove members.
func CanManageMembers(role models.Role) bool {
	return role == models.RoleAdmin
}

// CanModifyMember reports whether the actor may change or remove the
// target member. Admins may not demote or remove themselves.
func CanModifyMember(actor models.User, targetID string) bool {
	if !CanManageMembers(actor.Role) {
		return false
	}
	return actor.ID != targetID
}

// CanViewTask reports whether the task is visible to the user. Tasks
// from other organizations are never visible; within the organization
// members see only their own assignments.
func CanViewTask(role models.Role, task models.Task, user models.User) bool {
	if task.OrganizationID != user.OrganizationID {
		return false
	}
	switch role {
	case models.RoleAdmin, models.RoleManager:
		return true
	case models.RoleMember:
		return task.AssigneeID == user.ID
	default:
		return false
	}
}

// VisibleTasks filters tasks down to the ones the user may see,
// preserving order.
func VisibleTasks(user models.User, tasks []models.Task) []models.Task {
	visible := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if CanViewTask(user.Role, t, user) {
			visible = append(visible, t)
		}
	}
	return visible
}
