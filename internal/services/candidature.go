package services

import (
	"context"
	"errors"

	"github.com/diewo77/go-stages/gate"
	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/policy"
	"github.com/diewo77/go-stages/internal/store"
	"github.com/diewo77/go-stages/internal/workflow"
)

// CandidatureTracker moves candidatures along EN_ATTENTE -> ENTREVUE -> {ACCEPTEE, REFUSEE}.
type CandidatureTracker struct {
	Deps
}

func NewCandidatureTracker(d Deps) *CandidatureTracker {
	return &CandidatureTracker{Deps: d}
}

// MarkInterview sets c to ENTREVUE within the scheduler's transaction.
// Returns errConcurrentUpdate when the stored status moved meanwhile.
func (t *CandidatureTracker) MarkInterview(ctx context.Context, tx *store.Store, c *models.Candidature) error {
	moved, err := workflow.NextCandidature(c.Statut, workflow.CandidatureEntrevue)
	if err != nil || !moved {
		return err
	}
	ok, err := tx.Candidatures.SwapStatus(ctx, c, workflow.CandidatureEntrevue, c.Statut)
	if err != nil {
		return err
	}
	if !ok {
		return errConcurrentUpdate
	}
	return nil
}

// Decide records the employer's final decision, ACCEPTEE or REFUSEE.
// Repeating the same decision is a no-op.
func (t *CandidatureTracker) Decide(ctx context.Context, actor workflow.Actor, candidatureID uint, statut workflow.CandidatureStatus) (c *models.Candidature, err error) {
	changed := false
	defer func() { t.record(ctx, "decide", actor, changed, err) }()

	if !statut.Decided() {
		return nil, apperr.Validation(map[string]string{"statut": "invalid_choice"})
	}
	if actor.Role != workflow.RoleEmployer {
		return nil, apperr.NotAuthorized("%s does not decide candidatures", actor.Role)
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		c, err = t.Store.Candidatures.Get(ctx, candidatureID)
		if err != nil {
			return nil, err
		}
		if attempt == 1 {
			if err = t.Authorize(ctx, actor, gate.ActionDecide, policy.ResourceCandidature, c); err != nil {
				return nil, err
			}
		}
		moved, terr := workflow.NextCandidature(c.Statut, statut)
		if terr != nil {
			return nil, terr
		}
		if !moved {
			return c, nil
		}
		from := c.Statut
		err = t.Store.Tx(ctx, func(tx *store.Store) error {
			ok, err := tx.Candidatures.SwapStatus(ctx, c, statut, from)
			if err != nil {
				return err
			}
			if !ok {
				return errConcurrentUpdate
			}
			key := "notif.candidature_refusee"
			if statut == workflow.CandidatureAcceptee {
				key = "notif.candidature_acceptee"
			}
			return notify(ctx, tx, key, map[string]string{"candidature": idParam(c.ID)}, c.EtudiantID)
		})
		if errors.Is(err, errConcurrentUpdate) {
			t.Metrics.CASRetry("decide")
			continue
		}
		if err != nil {
			return nil, err
		}
		changed = true
		t.log().Info("candidature decided", "candidature", c.ID, "statut", statut, "actor", actor.ID)
		return c, nil
	}
	return nil, exhausted("candidature", candidatureID)
}
