package services

import (
	"fmt"
	"strings"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/pkg/response"
	"gorm.io/gorm"
)

// MemberInput is an incoming (user, role) pair for project membership.
type MemberInput struct {
	UserID uint               `json:"user_id" binding:"required"`
	Role   models.ProjectRole `json:"role" binding:"required"`
}

// ValidateMembers enforces the membership invariants for the full resulting
// member set of a project:
//
//  1. every referenced user id (owner included) resolves to an existing user,
//  2. the owner holds the global admin role,
//  3. each entry's declared project role matches the user's global role,
//  4. at most one entry carries the project_manager role.
//
// It runs identically for project creation, full update and incremental
// member assignment; callers merge first and validate the merged set.
func ValidateMembers(db *gorm.DB, ownerID uint, members []MemberInput) error {
	for _, m := range members {
		if !m.Role.Valid() {
			return response.NewBadRequest(fmt.Sprintf("invalid membership role %q, must be %q or %q",
				m.Role, models.ProjectRoleManager, models.ProjectRoleMember))
		}
	}

	ids := make([]uint, 0, len(members)+1)
	seen := make(map[uint]bool, len(members)+1)
	ids = append(ids, ownerID)
	seen[ownerID] = true
	for _, m := range members {
		if !seen[m.UserID] {
			ids = append(ids, m.UserID)
			seen[m.UserID] = true
		}
	}

	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return err
	}
	byID := make(map[uint]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	if len(byID) != len(ids) {
		var missing []string
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				missing = append(missing, fmt.Sprintf("%d", id))
			}
		}
		return response.NewBadRequest("invalid user id(s): " + strings.Join(missing, ", "))
	}

	if owner := byID[ownerID]; !owner.IsAdmin() {
		return response.NewBadRequest("project owner must have an admin role")
	}

	managerCount := 0
	for _, m := range members {
		user := byID[m.UserID]
		if !m.Role.CompatibleWith(user.Role) {
			return response.NewBadRequest(fmt.Sprintf("user %d with role %q cannot hold project role %q",
				m.UserID, user.Role, m.Role))
		}
		if m.Role == models.ProjectRoleManager {
			managerCount++
		}
	}
	if managerCount > 1 {
		return response.NewBadRequest("only one project manager is allowed per project")
	}

	return nil
}

// MergeMembers merges incoming members into an existing membership set by
// user id: an entry for an already present user replaces that user's role,
// everyone else is appended. Calling it twice with the same input yields the
// same set, so member assignment is idempotent.
func MergeMembers(existing []models.ProjectMembership, incoming []MemberInput) []MemberInput {
	merged := make([]MemberInput, 0, len(existing)+len(incoming))
	index := make(map[uint]int, len(existing))

	for _, m := range existing {
		index[m.UserID] = len(merged)
		merged = append(merged, MemberInput{UserID: m.UserID, Role: m.Role})
	}
	for _, in := range incoming {
		if i, ok := index[in.UserID]; ok {
			merged[i].Role = in.Role
			continue
		}
		index[in.UserID] = len(merged)
		merged = append(merged, in)
	}
	return merged
}
