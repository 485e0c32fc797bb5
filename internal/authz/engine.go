package authz

import (
	"github.com/taskforge/taskforge/internal/models"
)

// Operation is a permission-checked action on a project or one of its tasks.
type Operation int

const (
	// OpProjectView covers reading a single project.
	OpProjectView Operation = iota
	// OpProjectMutate covers project create, update, delete and member
	// assignment. Admin-only by route policy; ownership alone is not enough.
	OpProjectMutate
	// OpTaskList covers listing a project's tasks.
	OpTaskList
	// OpTaskCreate covers creating a task within a project.
	OpTaskCreate
	// OpTaskView covers reading a single task.
	OpTaskView
	// OpTaskUpdate covers editing a task's fields, including reassignment.
	OpTaskUpdate
	// OpTaskDelete covers deleting a single task.
	OpTaskDelete
)

// Decision is the engine's verdict for (actor, operation, resource).
type Decision struct {
	Allowed bool
	// FilterToAssignee is set on an allowed OpTaskList when the actor is a
	// plain member: they may only see tasks assigned to themselves.
	FilterToAssignee bool
	// Reason is the denial message surfaced to the caller.
	Reason string
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Reason: reason} }
func filtered() Decision          { return Decision{Allowed: true, FilterToAssignee: true} }

// Authorize evaluates the decision table for an actor acting on a project
// (and, for task-scoped operations, a task within it). rel must have been
// resolved against the same project. task may be nil for project-scoped and
// create/list operations. First match wins: admin, then owner/manager, then
// the operation-specific classes.
func Authorize(actor *models.User, op Operation, rel Relationship, task *models.Task) Decision {
	if actor == nil {
		return deny("forbidden")
	}
	if actor.IsAdmin() {
		return allow()
	}

	switch op {
	case OpProjectView:
		if rel.IsMember {
			return allow()
		}
		return deny("forbidden: not a member of this project")

	case OpProjectMutate:
		return deny("forbidden: admin role required")

	case OpTaskList:
		if rel.IsOwner || rel.IsProjectManager {
			return allow()
		}
		if rel.IsMember {
			return filtered()
		}
		return deny("forbidden: not a member of this project")

	case OpTaskCreate, OpTaskDelete:
		if rel.IsOwner || rel.IsProjectManager {
			return allow()
		}
		return deny("forbidden: project manager or owner role required")

	case OpTaskView, OpTaskUpdate:
		if rel.IsOwner || rel.IsProjectManager {
			return allow()
		}
		if isAssignee(actor, task) {
			return allow()
		}
		return deny("forbidden: insufficient permissions for this task")
	}

	return deny("forbidden")
}

// CanReassign reports whether the actor may set a task's assignee to
// newAssigneeID. Admins, owners and project managers may reassign to any
// current member; a plain member may only reassign to themselves. The
// separate requirement that the new assignee is a project member is checked
// by the mutator, not here.
func CanReassign(actor *models.User, rel Relationship, newAssigneeID uint) bool {
	if actor.IsAdmin() || rel.IsOwner || rel.IsProjectManager {
		return true
	}
	return newAssigneeID == actor.ID
}

func isAssignee(actor *models.User, task *models.Task) bool {
	return task != nil && task.AssigneeID != nil && *task.AssigneeID == actor.ID
}
