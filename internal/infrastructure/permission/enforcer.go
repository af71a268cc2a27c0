// Package permission authorizes administrative routes with casbin.
package permission

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/scoutystream/scouty/internal/shared/authorization"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// Resources and actions guarded by the enforcer.
const (
	ResourceAccess = "access"
	ResourceAsset  = "asset"
	ResourceUpload = "upload"

	ActionRead   = "read"
	ActionGrant  = "grant"
	ActionRevoke = "revoke"
	ActionCreate = "create"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// defaultPolicies are loaded at startup. Admins inherit everything uploaders can do.
var defaultPolicies = [][]string{
	{string(authorization.RoleUploader), ResourceUpload, ActionCreate},
	{string(authorization.RoleUploader), ResourceUpload, ActionRead},
	{string(authorization.RoleUploader), ResourceAsset, ActionRead},

	{string(authorization.RoleAdmin), ResourceAccess, ActionRead},
	{string(authorization.RoleAdmin), ResourceAccess, ActionGrant},
	{string(authorization.RoleAdmin), ResourceAccess, ActionRevoke},
}

type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

// NewEnforcer builds an enforcer from the in-code RBAC model and default policies.
// Policies live in memory only.
func NewEnforcer(log logger.Interface) (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if _, err := enforcer.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("failed to add default policies: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicy(string(authorization.RoleAdmin), string(authorization.RoleUploader)); err != nil {
		return nil, fmt.Errorf("failed to add role inheritance: %w", err)
	}

	log.Infow("permission policies initialized", "policies", len(defaultPolicies))

	return &Enforcer{
		enforcer: enforcer,
		logger:   log,
	}, nil
}

// Enforce reports whether subject (a role or a token subject bound to a role)
// may perform action on resource.
func (e *Enforcer) Enforce(subject string, resource string, action string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(subject, resource, action)
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "subject", subject, "resource", resource, "action", action)
		return false, fmt.Errorf("permission check failed: %w", err)
	}

	return allowed, nil
}

func (e *Enforcer) AddPolicy(role string, resource string, action string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddPolicy(role, resource, action); err != nil {
		e.logger.Errorw("failed to add policy", "error", err)
		return fmt.Errorf("failed to add policy: %w", err)
	}
	return nil
}

func (e *Enforcer) RemovePolicy(role string, resource string, action string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemovePolicy(role, resource, action); err != nil {
		e.logger.Errorw("failed to remove policy", "error", err)
		return fmt.Errorf("failed to remove policy: %w", err)
	}
	return nil
}

func (e *Enforcer) GetPermissionsForRole(role string) ([][]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	permissions, err := e.enforcer.GetImplicitPermissionsForUser(role)
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions for role: %w", err)
	}
	return permissions, nil
}
