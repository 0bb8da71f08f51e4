// Package gate authorizes a subject in two steps: the subject's profile must
// grant "resource:action", then the policy registered for the resource type
// must accept the subject's relation to the loaded resource.
//
// The package knows nothing about the domain. U is the subject type, a user id
// (Gate[uint]) in this application.
package gate

import (
	"context"
	"fmt"
	"sync"
)

// Gate is the central authorization checkpoint.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]

	mu       sync.RWMutex
	policies map[string]Policy[U]
}

// New creates a gate resolving profiles through resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{
		resolver: resolver,
		policies: make(map[string]Policy[U]),
	}
}

// Register sets the relation policy of a resource type, replacing any previous one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.mu.Lock()
	g.policies[resourceType] = p
	g.mu.Unlock()
}

// Authorize returns nil when user may perform action on resource.
// A nil resource (list, create) only checks the profile. Resource types
// without a registered policy are denied as soon as a resource is given.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	perm := NewPermission(resourceType, action)
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil {
		return fmt.Errorf("%w: resolve profile: %v", ErrUnauthorized, err)
	}
	if profile == nil || !profile.HasPermission(perm) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, perm)
	}
	if resource == nil {
		return nil
	}

	g.mu.RLock()
	policy, ok := g.policies[resourceType]
	g.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPolicyDefined, resourceType)
	}
	if !policy.Can(ctx, user, action, resource) {
		return fmt.Errorf("%w: %s", ErrNotRelated, perm)
	}
	return nil
}

// Can is Authorize as a bool.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// CanProfile checks the profile permission only.
func (g *Gate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	return g.Authorize(ctx, user, action, resourceType, nil) == nil
}
