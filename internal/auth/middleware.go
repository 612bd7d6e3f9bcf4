package auth

import (
	"context"
	"net/http"
	"strings"

	mees "esg-reporting/internal/mees/domain"
)

// Middleware validates JWTs and enforces role policy.
type Middleware struct {
	Secret []byte
	Policy Policy
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, policy Policy) *Middleware {
	return &Middleware{Secret: secret, Policy: policy}
}

// Wrap applies auth to the handler.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		required, ok := m.Policy.RequiredRole(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		id, err := ParseJWT(extractBearer(r), m.Secret)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !RoleAtLeast(id.Role, required) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func extractBearer(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// BuildingTenantChecker validates building ownership.
type BuildingTenantChecker interface {
	EnsureBuildingTenant(ctx context.Context, tenantID, buildingID string) error
}

// BuildingChecker checks building ownership against the building store.
type BuildingChecker struct {
	buildings mees.BuildingReader
}

// NewBuildingChecker constructs a BuildingChecker.
func NewBuildingChecker(buildings mees.BuildingReader) *BuildingChecker {
	if buildings == nil {
		return nil
	}
	return &BuildingChecker{buildings: buildings}
}

// EnsureBuildingTenant verifies the building belongs to the tenant.
func (c *BuildingChecker) EnsureBuildingTenant(ctx context.Context, tenantID, buildingID string) error {
	if c == nil || c.buildings == nil {
		return nil
	}
	if tenantID == "" || buildingID == "" {
		return nil
	}
	building, err := c.buildings.GetBuilding(ctx, buildingID)
	if err != nil {
		return err
	}
	if building == nil {
		return ErrNotFound
	}
	if building.TenantID != tenantID {
		return ErrTenantMismatch
	}
	return nil
}
