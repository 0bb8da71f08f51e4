package policy

import (
	"context"

	"github.com/diewo77/go-stages/gate"
)

// Participant is implemented by resources that know their parties
// (entente, candidature, notification).
type Participant interface {
	HasParticipant(userID uint) bool
}

// ParticipantPolicy allows a user to act on a resource it is a party of.
// Resources not implementing Participant are denied.
type ParticipantPolicy struct{}

func NewParticipantPolicy() *ParticipantPolicy {
	return &ParticipantPolicy{}
}

func (p *ParticipantPolicy) Can(_ context.Context, userID uint, _ gate.Action, resource any) bool {
	part, ok := resource.(Participant)
	if !ok {
		return false
	}
	return part.HasParticipant(userID)
}

// ManagerBypassPolicy lets managers act on any resource and defers to inner otherwise.
type ManagerBypassPolicy struct {
	inner     gate.Policy[uint]
	isManager func(ctx context.Context, userID uint) bool
}

func NewManagerBypassPolicy(inner gate.Policy[uint], isManager func(ctx context.Context, userID uint) bool) *ManagerBypassPolicy {
	return &ManagerBypassPolicy{inner: inner, isManager: isManager}
}

func (p *ManagerBypassPolicy) Can(ctx context.Context, userID uint, action gate.Action, resource any) bool {
	if p.isManager(ctx, userID) {
		return true
	}
	return p.inner.Can(ctx, userID, action, resource)
}
