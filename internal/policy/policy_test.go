package policy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diewo77/go-stages/gate"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/policy"
	"github.com/diewo77/go-stages/internal/workflow"
)

func staticGate(roles map[uint]workflow.Role) *policy.AuthGate {
	r := gate.NewStaticResolver[uint]()
	for id, role := range roles {
		r.Set(id, policy.StaticRoleProfile(role))
	}
	return policy.NewAuthGateWithResolver(r, time.Minute)
}

func TestParticipantPolicy(t *testing.T) {
	p := policy.NewParticipantPolicy()
	ctx := context.Background()
	e := &models.Entente{EtudiantID: 1, EmployeurID: 2}
	if !p.Can(ctx, 1, gate.ActionSign, e) || !p.Can(ctx, 2, gate.ActionSign, e) {
		t.Error("parties should be allowed")
	}
	if p.Can(ctx, 3, gate.ActionSign, e) {
		t.Error("stranger should be denied")
	}
	if p.Can(ctx, 1, gate.ActionView, struct{ ID uint }{1}) {
		t.Error("resources without parties are denied")
	}
}

func TestAuthGate_Ententes(t *testing.T) {
	prof := uint(4)
	g := staticGate(map[uint]workflow.Role{
		1: workflow.RoleStudent, 2: workflow.RoleEmployer, 3: workflow.RoleStudent,
		4: workflow.RoleProfessor, 5: workflow.RoleManager,
	})
	e := &models.Entente{EtudiantID: 1, EmployeurID: 2, ProfesseurID: &prof}
	ctx := context.Background()

	cases := []struct {
		name   string
		user   uint
		action gate.Action
		res    string
		err    error
	}{
		{"student signs own", 1, gate.ActionSign, policy.ResourceEntente, nil},
		{"other student", 3, gate.ActionSign, policy.ResourceEntente, gate.ErrNotRelated},
		{"professor cannot sign", 4, gate.ActionSign, policy.ResourceEntente, gate.ErrPermissionDenied},
		{"manager signs any", 5, gate.ActionSign, policy.ResourceEntente, nil},
		{"manager cancels any", 5, gate.ActionCancel, policy.ResourceEntente, nil},
		{"student cannot cancel", 1, gate.ActionCancel, policy.ResourceEntente, gate.ErrPermissionDenied},
		{"professor evaluates supervised", 4, gate.ActionCreate, policy.ResourceEvaluation, nil},
		{"employer evaluates own", 2, gate.ActionCreate, policy.ResourceEvaluation, nil},
		{"manager does not evaluate", 5, gate.ActionCreate, policy.ResourceEvaluation, gate.ErrPermissionDenied},
		{"student does not evaluate", 1, gate.ActionCreate, policy.ResourceEvaluation, gate.ErrPermissionDenied},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := g.Authorize(ctx, tc.user, tc.action, tc.res, e)
			if tc.err == nil && err != nil {
				t.Fatalf("expected allowed, got %v", err)
			}
			if tc.err != nil && !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestAuthGate_IsManager(t *testing.T) {
	g := staticGate(map[uint]workflow.Role{1: workflow.RoleStudent, 5: workflow.RoleManager})
	if g.IsManager(context.Background(), 1) {
		t.Error("student is not a manager")
	}
	if !g.IsManager(context.Background(), 5) {
		t.Error("manager profile should be detected")
	}
}

func TestRoleProfiles(t *testing.T) {
	for _, role := range []workflow.Role{workflow.RoleStudent, workflow.RoleEmployer, workflow.RoleProfessor, workflow.RoleManager} {
		p, ok := policy.ProfileFor(role)
		if !ok || len(p.Permissions) == 0 {
			t.Fatalf("missing profile for %s", role)
		}
		if policy.StaticRoleProfile(role) == nil {
			t.Fatalf("missing static profile for %s", role)
		}
	}
	if policy.StaticRoleProfile("ADMIN") != nil {
		t.Fatalf("unknown role should have no profile")
	}
}
