package services

import (
	"context"

	"github.com/diewo77/go-stages/gate"
	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/policy"
	"github.com/diewo77/go-stages/internal/store"
	"github.com/diewo77/go-stages/internal/workflow"
	"github.com/diewo77/go-stages/validation"
)

// EvaluationPayload is the content of a workplace evaluation.
type EvaluationPayload struct {
	Commentaires    string            `json:"commentaires"`
	PointsForts     string            `json:"points_forts"`
	PointsAmeliorer string            `json:"points_ameliorer"`
	Recommande      bool              `json:"recommande"`
	Reponses        map[string]string `json:"reponses"`
}

func (p EvaluationPayload) validate(ententeID uint) error {
	v := validation.Violations{}
	validation.RequiredID("entente_id", ententeID, v)
	validation.Required("commentaires", p.Commentaires, v)
	validation.MaxLength("commentaires", p.Commentaires, 4000, v)
	validation.MaxLength("points_forts", p.PointsForts, 2000, v)
	validation.MaxLength("points_ameliorer", p.PointsAmeliorer, 2000, v)
	for k, ans := range p.Reponses {
		validation.MaxLength("reponses."+k, ans, 2000, v)
	}
	return v.Err()
}

// EvaluationGate decides which ententes an evaluator may still evaluate and
// records evaluations at most once per entente and evaluator role.
type EvaluationGate struct {
	Deps
}

func NewEvaluationGate(d Deps) *EvaluationGate {
	return &EvaluationGate{Deps: d}
}

// ListEvaluable returns the signed agreements the actor is the evaluator of
// and has not evaluated yet. Roles without evaluator duty get nothing.
func ListEvaluable(actor workflow.Actor, agreements []models.Entente, existing []models.Evaluation) []models.Entente {
	role, ok := workflow.EvaluatorRole(actor.Role)
	if !ok {
		return nil
	}
	done := make(map[uint]bool, len(existing))
	for _, ev := range existing {
		if ev.EvaluateurRole == role {
			done[ev.EntenteID] = true
		}
	}
	out := make([]models.Entente, 0, len(agreements))
	for _, e := range agreements {
		if e.Statut == workflow.EntenteSignee && e.PartyFor(role) == actor.ID && !done[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

// ListEvaluableFor loads the actor's ententes and evaluations and applies ListEvaluable.
func (g *EvaluationGate) ListEvaluableFor(ctx context.Context, actor workflow.Actor) ([]models.Entente, error) {
	role, ok := workflow.EvaluatorRole(actor.Role)
	if !ok {
		return []models.Entente{}, nil
	}
	agreements, err := g.Store.Ententes.ListFor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(agreements))
	for i, e := range agreements {
		ids[i] = e.ID
	}
	existing, err := g.Store.Evaluations.ForRole(ctx, role, ids)
	if err != nil {
		return nil, err
	}
	return ListEvaluable(actor, agreements, existing), nil
}

// Create re-checks eligibility and stores the evaluation. Checks run in
// order: payload, existence, authorization, signature, uniqueness.
func (g *EvaluationGate) Create(ctx context.Context, actor workflow.Actor, ententeID uint, p EvaluationPayload) (ev *models.Evaluation, err error) {
	defer func() { g.record(ctx, "evaluate", actor, err == nil, err) }()

	if err = p.validate(ententeID); err != nil {
		return nil, err
	}
	e, err := g.Store.Ententes.Get(ctx, ententeID)
	if err != nil {
		return nil, err
	}
	role, ok := workflow.EvaluatorRole(actor.Role)
	if !ok {
		return nil, apperr.NotAuthorized("%s does not evaluate workplaces", actor.Role)
	}
	if e.PartyFor(role) != actor.ID {
		return nil, apperr.NotAuthorized("user %d is not the %s of entente %d", actor.ID, role, e.ID)
	}
	if err = g.Authorize(ctx, actor, gate.ActionCreate, policy.ResourceEvaluation, e); err != nil {
		return nil, err
	}
	if e.Statut != workflow.EntenteSignee {
		return nil, apperr.NotFinalized(e.ID)
	}
	exists, err := g.Store.Evaluations.Exists(ctx, e.ID, role)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.AlreadyEvaluated(e.ID, string(role))
	}

	ev = &models.Evaluation{
		EntenteID:       e.ID,
		EvaluateurRole:  role,
		EvaluateurID:    actor.ID,
		Commentaires:    p.Commentaires,
		PointsForts:     p.PointsForts,
		PointsAmeliorer: p.PointsAmeliorer,
		Recommande:      p.Recommande,
		Reponses:        models.JSONMap(p.Reponses),
	}
	err = g.Store.Tx(ctx, func(tx *store.Store) error {
		if err := tx.Evaluations.Create(ctx, ev); err != nil {
			return err
		}
		// The counterpart evaluator learns the workplace has been assessed.
		other := e.EmployeurID
		if role == workflow.RoleEmployer {
			other = e.PartyFor(workflow.RoleProfessor)
		}
		return notify(ctx, tx, "notif.evaluation_creee", map[string]string{"entente": idParam(e.ID), "role": string(role)}, other)
	})
	if err != nil {
		return nil, err
	}
	g.log().Info("evaluation created", "entente", e.ID, "role", role, "actor", actor.ID, "evaluation", ev.ID)
	return ev, nil
}
