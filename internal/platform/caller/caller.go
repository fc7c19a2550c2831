// Package caller models the opaque caller-identity and role this engine
// consumes from an external authentication mechanism (out of scope here).
// It only verifies and extracts; it never issues credentials.
package caller

import "context"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleReader     Role = "READER"
)

// Identity is the verified caller attached to a request context.
type Identity struct {
	ID   string
	Role Role
}

// CanGenerate reports whether this identity may call generate/simulate.
func (i Identity) CanGenerate() bool {
	return i.Role == RoleAdmin || i.Role == RoleSupervisor
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityKey{})
	id, ok := v.(Identity)
	return id, ok
}
