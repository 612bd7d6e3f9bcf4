package auth

import "context"

type contextKey string

const (
	contextKeyTenant  contextKey = "auth.tenant_id"
	contextKeyRole    contextKey = "auth.role"
	contextKeySubject contextKey = "auth.subject"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	TenantID string
	Role     Role
	Subject  string
}

// WithIdentity stores the caller identity in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, contextKeyTenant, id.TenantID)
	ctx = context.WithValue(ctx, contextKeyRole, id.Role)
	ctx = context.WithValue(ctx, contextKeySubject, id.Subject)
	return ctx
}

// IdentityFromContext returns the caller identity, zero when unauthenticated.
func IdentityFromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Identity{}
	}
	var id Identity
	id.TenantID, _ = ctx.Value(contextKeyTenant).(string)
	id.Role, _ = ctx.Value(contextKeyRole).(Role)
	id.Subject, _ = ctx.Value(contextKeySubject).(string)
	return id
}

// TenantIDFromContext extracts tenant id from context.
func TenantIDFromContext(ctx context.Context) string {
	return IdentityFromContext(ctx).TenantID
}
