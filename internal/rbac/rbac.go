package rbac

import "sort"

// WildcardPermission grants every permission in the catalog.
const WildcardPermission = "*"

const (
	RoleSuperAdmin = "superAdmin"
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RoleViewer     = "viewer"
	RoleGuest      = "guest"
)

// Authority levels of the static roles, usable as route guards.
const (
	LevelSuperAdmin = 100
	LevelAdmin      = 80
	LevelEditor     = 60
	LevelViewer     = 40
	LevelGuest      = 20
)

type Role struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Level       int      `json:"level"`
	Permissions []string `json:"permissions"`
	Description string   `json:"description"`
}

type Permission struct {
	Key         string `json:"key"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// roles is the static role table. Roles are immutable at runtime; exactly one
// role per user, ordered by Level.
var roles = map[string]Role{
	RoleSuperAdmin: {
		Key:         RoleSuperAdmin,
		Name:        "Super Admin",
		Level:       LevelSuperAdmin,
		Permissions: []string{WildcardPermission},
		Description: "Full access to every feature, including destructive operations",
	},
	RoleAdmin: {
		Key:   RoleAdmin,
		Name:  "Admin",
		Level: LevelAdmin,
		Permissions: []string{
			"qr.create", "qr.view", "qr.edit", "qr.delete",
			"analytics.view", "analytics.export",
			"users.view", "users.manage",
			"team.view", "team.manage",
			"settings.view", "settings.manage",
			"billing.view",
		},
		Description: "Manages users, team settings and all QR codes",
	},
	RoleEditor: {
		Key:   RoleEditor,
		Name:  "Editor",
		Level: LevelEditor,
		Permissions: []string{
			"qr.create", "qr.view", "qr.edit", "qr.delete",
			"analytics.view", "analytics.export",
			"team.view",
		},
		Description: "Creates and edits QR codes and views analytics",
	},
	RoleViewer: {
		Key:   RoleViewer,
		Name:  "Viewer",
		Level: LevelViewer,
		Permissions: []string{
			"qr.view",
			"analytics.view",
			"team.view",
		},
		Description: "Read-only access to QR codes and analytics",
	},
	RoleGuest: {
		Key:         RoleGuest,
		Name:        "Guest",
		Level:       LevelGuest,
		Permissions: []string{"qr.view"},
		Description: "Limited read-only access",
	},
}

// catalog is the declarative permission metadata consumed by the UI; the
// enforcement model is set membership plus the wildcard, nothing more.
var catalog = []Permission{
	{Key: "qr.create", Category: "qr", Name: "Create QR codes", Description: "Create new QR codes"},
	{Key: "qr.view", Category: "qr", Name: "View QR codes", Description: "View QR codes and their details"},
	{Key: "qr.edit", Category: "qr", Name: "Edit QR codes", Description: "Edit QR code content and design"},
	{Key: "qr.delete", Category: "qr", Name: "Delete QR codes", Description: "Remove QR codes"},

	{Key: "analytics.view", Category: "analytics", Name: "View analytics", Description: "View scan analytics dashboards"},
	{Key: "analytics.export", Category: "analytics", Name: "Export analytics", Description: "Export analytics reports"},

	{Key: "users.view", Category: "users", Name: "View users", Description: "Browse the user directory"},
	{Key: "users.manage", Category: "users", Name: "Manage users", Description: "Change roles and activation status"},
	{Key: "users.delete", Category: "users", Name: "Delete users", Description: "Soft-delete user accounts"},

	{Key: "team.view", Category: "team", Name: "View team", Description: "View team members"},
	{Key: "team.manage", Category: "team", Name: "Manage team", Description: "Invite and remove team members"},

	{Key: "settings.view", Category: "settings", Name: "View settings", Description: "View workspace settings"},
	{Key: "settings.manage", Category: "settings", Name: "Manage settings", Description: "Change workspace settings"},

	{Key: "billing.view", Category: "billing", Name: "View billing", Description: "View plan and invoices"},
	{Key: "billing.manage", Category: "billing", Name: "Manage billing", Description: "Change plan and payment details"},
}

// GetRole returns the role definition for a key.
func GetRole(key string) (Role, bool) {
	r, ok := roles[key]
	return r, ok
}

// IsValidRole reports whether key names a known role.
func IsValidRole(key string) bool {
	_, ok := roles[key]
	return ok
}

// HasPermission reports whether the role holds the permission: the wildcard or
// an exact string match. Unknown roles hold nothing; there is no prefix or
// namespace matching.
func HasPermission(roleKey, permission string) bool {
	role, ok := roles[roleKey]
	if !ok {
		return false
	}
	for _, p := range role.Permissions {
		if p == WildcardPermission || p == permission {
			return true
		}
	}
	return false
}

// RolePermissions returns the raw permission set of a role (the wildcard is
// returned as-is, not expanded). Unknown role yields nil.
func RolePermissions(roleKey string) []string {
	role, ok := roles[roleKey]
	if !ok {
		return nil
	}
	out := make([]string, len(role.Permissions))
	copy(out, role.Permissions)
	return out
}

// RoleHierarchy returns all roles sorted descending by authority level.
func RoleHierarchy() []Role {
	out := make([]Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level > out[j].Level })
	return out
}

// PermissionCatalog returns the static permission catalog grouped by category.
// Category order follows first appearance in the catalog.
func PermissionCatalog() map[string][]Permission {
	grouped := make(map[string][]Permission)
	for _, p := range catalog {
		grouped[p.Category] = append(grouped[p.Category], p)
	}
	return grouped
}

// CanManageUser decides whether a manager may change another user's role or
// status. Self-management is always refused, and the manager's authority level
// must be strictly greater than the target's. Unknown roles are refused.
func CanManageUser(managerID, targetID int64, managerRole, targetRole string) bool {
	if managerID == targetID {
		return false
	}
	manager, ok := roles[managerRole]
	if !ok {
		return false
	}
	target, ok := roles[targetRole]
	if !ok {
		return false
	}
	return manager.Level > target.Level
}
