// Package authz is the authorization decision layer. It classifies an actor's
// relationship to a project once, then answers every permission question from
// a single decision table instead of re-deriving roles per route.
package authz

import (
	"github.com/taskforge/taskforge/internal/models"
)

// Relationship is an actor's derived standing within a project.
type Relationship struct {
	IsOwner          bool
	IsProjectManager bool
	IsMember         bool
}

// Resolve computes the relationship between a user and an already-loaded
// project. Pure function; a project with no membership rows is treated as
// having an empty member set. The owner always counts as a member.
func Resolve(project *models.Project, userID uint) Relationship {
	if project == nil {
		return Relationship{}
	}

	rel := Relationship{IsOwner: project.OwnerID == userID}
	for _, m := range project.Members {
		if m.UserID != userID {
			continue
		}
		rel.IsMember = true
		if m.Role == models.ProjectRoleManager {
			rel.IsProjectManager = true
		}
	}
	if rel.IsOwner {
		rel.IsMember = true
	}
	return rel
}
