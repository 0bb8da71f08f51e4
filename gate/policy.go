package gate

import "context"

// Policy decides whether user may perform action on a loaded resource of the
// type it is registered for. It is only consulted when a resource is given.
type Policy[U any] interface {
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}

// AnyOf accepts when at least one of the policies accepts.
func AnyOf[U any](policies ...Policy[U]) Policy[U] {
	return PolicyFunc[U](func(ctx context.Context, user U, action Action, resource any) bool {
		for _, p := range policies {
			if p.Can(ctx, user, action, resource) {
				return true
			}
		}
		return false
	})
}
