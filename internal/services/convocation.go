package services

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/go-stages/gate"
	"github.com/diewo77/go-stages/internal/apperr"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/policy"
	"github.com/diewo77/go-stages/internal/store"
	"github.com/diewo77/go-stages/internal/workflow"
	"github.com/diewo77/go-stages/validation"
	"gorm.io/gorm"
)

// ConvocationPayload describes an interview slot.
type ConvocationPayload struct {
	DateHeure time.Time `json:"date_heure"`
	Lieu      string    `json:"lieu"`
	Message   string    `json:"message"`
}

func (p ConvocationPayload) validate(now time.Time) error {
	v := validation.Violations{}
	validation.RequiredTime("date_heure", p.DateHeure, v)
	validation.After("date_heure", p.DateHeure, now, v)
	validation.Required("lieu", p.Lieu, v)
	validation.MaxLength("lieu", p.Lieu, 500, v)
	validation.MaxLength("message", p.Message, 2000, v)
	return v.Err()
}

// ConvocationScheduler manages the interview convocation of each candidature:
// at most one is active, replacing it requires an explicit overwrite and
// cancelling it an explicit confirmation.
type ConvocationScheduler struct {
	Deps
	Tracker *CandidatureTracker
}

func NewConvocationScheduler(d Deps, tracker *CandidatureTracker) *ConvocationScheduler {
	return &ConvocationScheduler{Deps: d, Tracker: tracker}
}

// Create convokes the candidate. An active convocation is replaced only when
// overwrite is set; the replacement, the insert and the candidature move to
// ENTREVUE commit together.
func (s *ConvocationScheduler) Create(ctx context.Context, actor workflow.Actor, candidatureID uint, p ConvocationPayload, overwrite bool) (conv *models.Convocation, err error) {
	defer func() { s.record(ctx, "convoke", actor, err == nil, err) }()

	if err = p.validate(s.now()); err != nil {
		return nil, err
	}
	cand, err := s.Store.Candidatures.Get(ctx, candidatureID)
	if err != nil {
		return nil, err
	}
	if err = s.Authorize(ctx, actor, gate.ActionCreate, policy.ResourceConvocation, cand); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.Store.Tx(ctx, func(tx *store.Store) error {
			c, err := tx.Candidatures.Get(ctx, candidatureID)
			if err != nil {
				return err
			}
			if _, err := workflow.NextCandidature(c.Statut, workflow.CandidatureEntrevue); err != nil {
				return err
			}
			active, err := tx.Convocations.Active(ctx, c.ID)
			if err != nil {
				return err
			}
			if active != nil {
				if !overwrite {
					return apperr.ConfirmationRequired("candidature %d already has convocation %d", c.ID, active.ID)
				}
				cancelled := *active
				cancelled.Statut = workflow.ConvocationAnnulee
				ok, err := tx.Convocations.Swap(ctx, active, cancelled)
				if err != nil {
					return err
				}
				if !ok {
					return errConcurrentUpdate
				}
			}
			conv = &models.Convocation{
				Version:       1,
				CandidatureID: c.ID,
				DateHeure:     p.DateHeure,
				Lieu:          p.Lieu,
				Message:       p.Message,
				Statut:        workflow.ConvocationConvoquee,
			}
			if err := tx.Convocations.Insert(ctx, conv); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return errConcurrentUpdate
				}
				return err
			}
			if err := s.Tracker.MarkInterview(ctx, tx, c); err != nil {
				return err
			}
			return notify(ctx, tx, "notif.convocation_creee", slotParams(conv), c.EtudiantID)
		})
		if errors.Is(err, errConcurrentUpdate) {
			s.Metrics.CASRetry("convoke")
			continue
		}
		if err != nil {
			return nil, err
		}
		s.log().Info("convocation created", "candidature", candidatureID, "convocation", conv.ID, "overwrite", overwrite, "actor", actor.ID)
		return conv, nil
	}
	return nil, exhausted("candidature", candidatureID)
}

// Modify reschedules an active convocation and marks it MODIFIE.
func (s *ConvocationScheduler) Modify(ctx context.Context, actor workflow.Actor, convocationID uint, p ConvocationPayload) (conv *models.Convocation, err error) {
	defer func() { s.record(ctx, "modify_convocation", actor, err == nil, err) }()

	if err = p.validate(s.now()); err != nil {
		return nil, err
	}
	return s.swap(ctx, actor, gate.ActionUpdate, convocationID, false, func(cur models.Convocation) (models.Convocation, string) {
		cur.Statut = workflow.ConvocationModifie
		cur.DateHeure, cur.Lieu, cur.Message = p.DateHeure, p.Lieu, p.Message
		return cur, "notif.convocation_modifiee"
	})
}

// Cancel cancels a convocation. confirm must be set; cancelling twice is a
// no-op. The candidature keeps its status.
func (s *ConvocationScheduler) Cancel(ctx context.Context, actor workflow.Actor, convocationID uint, confirm bool) (conv *models.Convocation, err error) {
	defer func() { s.record(ctx, "cancel_convocation", actor, err == nil, err) }()

	if !confirm {
		return nil, apperr.ConfirmationRequired("cancelling convocation %d requires confirmation", convocationID)
	}
	return s.swap(ctx, actor, gate.ActionCancel, convocationID, true, func(cur models.Convocation) (models.Convocation, string) {
		cur.Statut = workflow.ConvocationAnnulee
		return cur, "notif.convocation_annulee"
	})
}

// swap applies change to the convocation with a conditional update on its
// version. Without retry, losing the race is reported instead of reapplying
// change over the other writer's values.
func (s *ConvocationScheduler) swap(ctx context.Context, actor workflow.Actor, action gate.Action, convocationID uint, retry bool, change func(models.Convocation) (models.Convocation, string)) (*models.Convocation, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		conv, err := s.Store.Convocations.Get(ctx, convocationID)
		if err != nil {
			return nil, err
		}
		cand, err := s.Store.Candidatures.Get(ctx, conv.CandidatureID)
		if err != nil {
			return nil, err
		}
		if attempt == 1 {
			if err := s.Authorize(ctx, actor, action, policy.ResourceConvocation, cand); err != nil {
				return nil, err
			}
		}
		next, key := change(*conv)
		moved, err := workflow.NextConvocation(conv.Statut, next.Statut)
		if err != nil {
			return nil, err
		}
		if !moved {
			return conv, nil
		}
		err = s.Store.Tx(ctx, func(tx *store.Store) error {
			ok, err := tx.Convocations.Swap(ctx, conv, next)
			if err != nil {
				return err
			}
			if !ok {
				return errConcurrentUpdate
			}
			return notify(ctx, tx, key, slotParams(conv), cand.EtudiantID)
		})
		if errors.Is(err, errConcurrentUpdate) {
			if !retry {
				return nil, apperr.InvalidTransition("convocation %d was changed concurrently", convocationID)
			}
			s.Metrics.CASRetry(string(action) + "_convocation")
			continue
		}
		if err != nil {
			return nil, err
		}
		s.log().Info("convocation updated", "convocation", conv.ID, "statut", conv.Statut, "actor", actor.ID)
		return conv, nil
	}
	return nil, exhausted("convocation", convocationID)
}

func slotParams(c *models.Convocation) map[string]string {
	return map[string]string{
		"date":        c.DateHeure.Format("2006-01-02 15:04"),
		"lieu":        c.Lieu,
		"candidature": idParam(c.CandidatureID),
	}
}
