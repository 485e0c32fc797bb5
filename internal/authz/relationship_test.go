package authz

import (
	"testing"

	"github.com/taskforge/taskforge/internal/models"
)

func projectWith(ownerID uint, members ...models.ProjectMembership) *models.Project {
	return &models.Project{ID: 1, OwnerID: ownerID, Members: members}
}

func member(userID uint, role models.ProjectRole) models.ProjectMembership {
	return models.ProjectMembership{ProjectID: 1, UserID: userID, Role: role}
}

func TestResolve_Owner(t *testing.T) {
	rel := Resolve(projectWith(10), 10)

	if !rel.IsOwner {
		t.Error("owner should be classified as owner")
	}
	if !rel.IsMember {
		t.Error("owner should count as a member")
	}
	if rel.IsProjectManager {
		t.Error("owner without a manager membership is not a project manager")
	}
}

func TestResolve_ProjectManager(t *testing.T) {
	p := projectWith(10, member(20, models.ProjectRoleManager), member(30, models.ProjectRoleMember))

	rel := Resolve(p, 20)
	if !rel.IsProjectManager || !rel.IsMember {
		t.Errorf("manager membership should set IsProjectManager and IsMember, got %+v", rel)
	}
	if rel.IsOwner {
		t.Error("manager is not the owner")
	}
}

func TestResolve_PlainMember(t *testing.T) {
	p := projectWith(10, member(30, models.ProjectRoleMember))

	rel := Resolve(p, 30)
	if !rel.IsMember {
		t.Error("member should be classified as member")
	}
	if rel.IsOwner || rel.IsProjectManager {
		t.Errorf("plain member has no extra standing, got %+v", rel)
	}
}

func TestResolve_Outsider(t *testing.T) {
	p := projectWith(10, member(30, models.ProjectRoleMember))

	rel := Resolve(p, 99)
	if rel.IsOwner || rel.IsProjectManager || rel.IsMember {
		t.Errorf("outsider should have no relationship, got %+v", rel)
	}
}

func TestResolve_EmptyMembers(t *testing.T) {
	rel := Resolve(projectWith(10), 99)
	if rel.IsMember {
		t.Error("project with no members should yield no membership")
	}
}

func TestResolve_NilProject(t *testing.T) {
	rel := Resolve(nil, 10)
	if rel.IsOwner || rel.IsMember || rel.IsProjectManager {
		t.Errorf("nil project should yield the zero relationship, got %+v", rel)
	}
}
