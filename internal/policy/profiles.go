// Package policy wires the generic gate to the internship domain: one
// authorization profile per role, and relation policies checking that the
// actor is a party of the entente or candidature it acts on.
package policy

import (
	"github.com/diewo77/go-stages/gate"
	"github.com/diewo77/go-stages/internal/workflow"
)

// Resource types known to the gate.
const (
	ResourceEntente      = "entente"
	ResourceEvaluation   = "evaluation"
	ResourceCandidature  = "candidature"
	ResourceConvocation  = "convocation"
	ResourceNotification = "notification"
	ResourceProfile      = "profile"
)

// RoleProfile describes the seeded profile of a role.
type RoleProfile struct {
	Name        string
	Role        workflow.Role
	Description string
	Permissions []gate.Permission
}

func perm(resource string, action gate.Action) gate.Permission {
	return gate.NewPermission(resource, action)
}

var notificationPerms = []gate.Permission{
	perm(ResourceNotification, gate.ActionList),
	perm(ResourceNotification, gate.ActionUpdate),
}

// RoleProfiles is the permission table of every role. It is seeded into the
// profiles table and used as-is by StaticRoleProfile.
var RoleProfiles = []RoleProfile{
	{
		Name:        "etudiant",
		Role:        workflow.RoleStudent,
		Description: "Signs or refuses its own ententes",
		Permissions: append([]gate.Permission{
			perm(ResourceEntente, gate.ActionList),
			perm(ResourceEntente, gate.ActionView),
			perm(ResourceEntente, gate.ActionSign),
			perm(ResourceEntente, gate.ActionRefuse),
			perm(ResourceCandidature, gate.ActionList),
			perm(ResourceCandidature, gate.ActionView),
		}, notificationPerms...),
	},
	{
		Name:        "employeur",
		Role:        workflow.RoleEmployer,
		Description: "Signs ententes, convokes candidates, decides and evaluates",
		Permissions: append([]gate.Permission{
			perm(ResourceEntente, gate.ActionList),
			perm(ResourceEntente, gate.ActionView),
			perm(ResourceEntente, gate.ActionSign),
			perm(ResourceEntente, gate.ActionRefuse),
			perm(ResourceEvaluation, gate.ActionList),
			perm(ResourceEvaluation, gate.ActionCreate),
			perm(ResourceCandidature, gate.ActionList),
			perm(ResourceCandidature, gate.ActionView),
			perm(ResourceCandidature, gate.ActionDecide),
			perm(ResourceConvocation, gate.ActionCreate),
			perm(ResourceConvocation, gate.ActionUpdate),
			perm(ResourceConvocation, gate.ActionCancel),
		}, notificationPerms...),
	},
	{
		Name:        "professeur",
		Role:        workflow.RoleProfessor,
		Description: "Supervises ententes and evaluates workplaces",
		Permissions: append([]gate.Permission{
			perm(ResourceEntente, gate.ActionList),
			perm(ResourceEntente, gate.ActionView),
			perm(ResourceEvaluation, gate.ActionList),
			perm(ResourceEvaluation, gate.ActionCreate),
		}, notificationPerms...),
	},
	{
		Name:        "gestionnaire",
		Role:        workflow.RoleManager,
		Description: "Program manager: signs, cancels and oversees every entente",
		Permissions: append([]gate.Permission{
			perm(ResourceEntente, gate.Wildcard),
			perm(ResourceCandidature, gate.Wildcard),
			perm(ResourceConvocation, gate.Wildcard),
			perm(ResourceEvaluation, gate.ActionList),
			perm(ResourceProfile, gate.ActionList),
			perm(ResourceProfile, gate.ActionUpdate),
		}, notificationPerms...),
	},
}

// ProfileFor returns the table entry of role.
func ProfileFor(role workflow.Role) (RoleProfile, bool) {
	for _, p := range RoleProfiles {
		if p.Role == role {
			return p, true
		}
	}
	return RoleProfile{}, false
}

// StaticRoleProfile builds an in-memory profile for role, nil for unknown roles.
func StaticRoleProfile(role workflow.Role) gate.Profile {
	for i, p := range RoleProfiles {
		if p.Role == role {
			return gate.NewStaticProfile(uint(i+1), p.Name, p.Permissions...)
		}
	}
	return nil
}
