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

// SignatureCoordinator records signatures and refusals on ententes. Every
// write is a conditional update on the row version; a lost race reloads the
// entente and re-runs the transition.
type SignatureCoordinator struct {
	Deps
}

func NewSignatureCoordinator(d Deps) *SignatureCoordinator {
	return &SignatureCoordinator{Deps: d}
}

// Sign records role's signature. Signing twice returns the current entente.
func (c *SignatureCoordinator) Sign(ctx context.Context, actor workflow.Actor, ententeID uint, role workflow.Role) (*models.Entente, error) {
	return c.apply(ctx, "sign", gate.ActionSign, actor, ententeID, role, workflow.SignatureSignee)
}

// Refuse records role's refusal, which closes the entente.
func (c *SignatureCoordinator) Refuse(ctx context.Context, actor workflow.Actor, ententeID uint, role workflow.Role) (*models.Entente, error) {
	return c.apply(ctx, "refuse", gate.ActionRefuse, actor, ententeID, role, workflow.SignatureRefusee)
}

func (c *SignatureCoordinator) apply(ctx context.Context, op string, action gate.Action, actor workflow.Actor, ententeID uint, role workflow.Role, want workflow.SignatureStatus) (e *models.Entente, err error) {
	changed := false
	defer func() { c.record(ctx, op, actor, changed, err) }()

	if !workflow.CanSignAs(actor.Role, role) {
		return nil, apperr.NotAuthorized("%s may not sign for %s", actor.Role, role)
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		e, err = c.Store.Ententes.Get(ctx, ententeID)
		if err != nil {
			return nil, err
		}
		if attempt == 1 {
			if err = c.Authorize(ctx, actor, action, policy.ResourceEntente, e); err != nil {
				return nil, err
			}
		}
		next, moved, terr := workflow.ApplySignature(e.Signatures(), role, want)
		if terr != nil {
			return nil, terr
		}
		if !moved {
			return e, nil
		}
		before := e.Statut
		err = c.Store.Tx(ctx, func(tx *store.Store) error {
			ok, err := tx.Ententes.SwapSignatures(ctx, e, role, next)
			if err != nil {
				return err
			}
			if !ok {
				return errConcurrentUpdate
			}
			return signatureNotifications(ctx, tx, e, actor, role, before)
		})
		if errors.Is(err, errConcurrentUpdate) {
			c.Metrics.CASRetry(op)
			continue
		}
		if err != nil {
			return nil, err
		}
		changed = true
		c.log().Info("entente "+op, "entente", e.ID, "role", role, "actor", actor.ID, "statut", e.Statut, "version", e.Version)
		return e, nil
	}
	return nil, exhausted("entente", ententeID)
}

// Cancel moves a pending entente to ANNULEE. Only managers hold entente:cancel.
func (c *SignatureCoordinator) Cancel(ctx context.Context, actor workflow.Actor, ententeID uint) (e *models.Entente, err error) {
	changed := false
	defer func() { c.record(ctx, "cancel", actor, changed, err) }()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		e, err = c.Store.Ententes.Get(ctx, ententeID)
		if err != nil {
			return nil, err
		}
		if attempt == 1 {
			if err = c.Authorize(ctx, actor, gate.ActionCancel, policy.ResourceEntente, e); err != nil {
				return nil, err
			}
		}
		moved, terr := workflow.CancelEntente(e.Statut)
		if terr != nil {
			return nil, terr
		}
		if !moved {
			return e, nil
		}
		err = c.Store.Tx(ctx, func(tx *store.Store) error {
			ok, err := tx.Ententes.SwapCancelled(ctx, e)
			if err != nil {
				return err
			}
			if !ok {
				return errConcurrentUpdate
			}
			return notify(ctx, tx, "notif.entente_annulee", map[string]string{"entente": idParam(e.ID)}, e.EtudiantID, e.EmployeurID)
		})
		if errors.Is(err, errConcurrentUpdate) {
			c.Metrics.CASRetry("cancel")
			continue
		}
		if err != nil {
			return nil, err
		}
		changed = true
		c.log().Info("entente cancelled", "entente", e.ID, "actor", actor.ID)
		return e, nil
	}
	return nil, exhausted("entente", ententeID)
}

// signatureNotifications tells the other parties about a recorded signature
// or refusal. e already holds the new state.
func signatureNotifications(ctx context.Context, tx *store.Store, e *models.Entente, actor workflow.Actor, role workflow.Role, before workflow.EntenteStatus) error {
	params := map[string]string{"entente": idParam(e.ID), "role": string(role)}
	switch {
	case e.Statut == workflow.EntenteRefusee:
		return notify(ctx, tx, "notif.entente_refusee", params, except(actor.ID, e.EtudiantID, e.EmployeurID)...)
	case e.Statut == workflow.EntenteSignee && before != workflow.EntenteSignee:
		parties := []uint{e.EtudiantID, e.EmployeurID}
		if e.ProfesseurID != nil {
			parties = append(parties, *e.ProfesseurID)
		}
		return notify(ctx, tx, "notif.entente_finalisee", params, parties...)
	default:
		return notify(ctx, tx, "notif.entente_signee", params, except(actor.ID, e.EtudiantID, e.EmployeurID)...)
	}
}
