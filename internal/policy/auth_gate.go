package policy

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-stages/auth"
	"github.com/diewo77/go-stages/gate"
	"github.com/diewo77/go-stages/httpx"
	"gorm.io/gorm"
)

// AuthGate is the configured gate of the application: cached DB profiles and
// the relation policy of every resource type.
type AuthGate struct {
	Gate          *gate.Gate[uint]
	CacheResolver *gate.CachedResolver[uint]
}

// NewAuthGate builds the gate over the profiles table, cached for cacheTTL.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	return NewAuthGateWithResolver(NewDBProfileResolver(db), cacheTTL)
}

// NewAuthGateWithResolver builds the gate over any profile source.
func NewAuthGateWithResolver(resolver gate.ProfileResolver[uint], cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[uint](resolver, cacheTTL)
	ag := &AuthGate{Gate: gate.New[uint](cached), CacheResolver: cached}

	parties := NewParticipantPolicy()
	partiesOrManager := NewManagerBypassPolicy(parties, ag.IsManager)
	ag.Gate.Register(ResourceEntente, partiesOrManager)
	ag.Gate.Register(ResourceCandidature, partiesOrManager)
	// Convocations are authorized against their candidature.
	ag.Gate.Register(ResourceConvocation, partiesOrManager)
	// Evaluations are authorized against their entente; managers do not evaluate.
	ag.Gate.Register(ResourceEvaluation, parties)
	ag.Gate.Register(ResourceNotification, parties)
	return ag
}

// Authorize checks userID against resource. It satisfies services.Authorizer.
func (ag *AuthGate) Authorize(ctx context.Context, userID uint, action gate.Action, resourceType string, resource any) error {
	return ag.Gate.Authorize(ctx, userID, action, resourceType, resource)
}

// IsManager reports whether the user's profile grants every entente action.
func (ag *AuthGate) IsManager(ctx context.Context, userID uint) bool {
	return ag.Gate.CanProfile(ctx, userID, gate.Action(gate.Wildcard), ResourceEntente)
}

// CanProfile checks the current request user's profile only.
func (ag *AuthGate) CanProfile(ctx context.Context, action gate.Action, resourceType string) bool {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return false
	}
	return ag.Gate.CanProfile(ctx, userID, action, resourceType)
}

func (ag *AuthGate) InvalidateUser(userID uint) {
	ag.CacheResolver.Invalidate(userID)
}

func (ag *AuthGate) InvalidateAll() {
	ag.CacheResolver.InvalidateAll()
}

// RequirePermission answers 403 when the request user's profile lacks resourceType:action.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ag.CanProfile(r.Context(), action, resourceType) {
				httpx.JSONError(w, http.StatusForbidden, "not_authorized", map[string]string{
					"permission": string(gate.NewPermission(resourceType, action)),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
