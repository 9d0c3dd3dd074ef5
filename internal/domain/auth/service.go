// Package auth implements the mocked identity layer. There is no password
// or token exchange; a login is a name plus a chosen role, and authorization
// is a static role-to-permission matrix with persisted per-role overrides.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/financecore/finance-core/pkg/kvstore"
)

// Persisted blobs for the current session and the permission overrides.
const (
	UserStorageKey        = "FINANCE_CORE_USER"
	PermissionsStorageKey = "FINANCE_CORE_PERMISSIONS"
)

// Role is one of the four mocked access profiles.
type Role string

const (
	RoleAdministrator Role = "Administrador"
	RoleManager       Role = "Gestor"
	RoleAuditor       Role = "Auditor"
	RoleViewer        Role = "Visualizador"
)

// Permission identifies one guarded capability.
type Permission string

const (
	PermViewDashboard     Permission = "view_dashboard"
	PermManageBudget      Permission = "manage_budget"
	PermImportData        Permission = "import_data"
	PermViewReview        Permission = "view_review"
	PermEditExpenses      Permission = "edit_expenses"
	PermManagePermissions Permission = "manage_permissions"
)

// AllPermissions lists every known permission in display order.
var AllPermissions = []Permission{
	PermViewDashboard,
	PermManageBudget,
	PermImportData,
	PermViewReview,
	PermEditExpenses,
	PermManagePermissions,
}

// AllRoles lists every known role in display order.
var AllRoles = []Role{RoleAdministrator, RoleManager, RoleAuditor, RoleViewer}

// defaultMatrix is the built-in role-to-permission grant set. Overrides
// saved through SavePermissions replace a role's row wholesale.
var defaultMatrix = map[Role][]Permission{
	RoleAdministrator: {
		PermViewDashboard,
		PermManageBudget,
		PermImportData,
		PermViewReview,
		PermEditExpenses,
		PermManagePermissions,
	},
	RoleManager: {
		PermViewDashboard,
		PermManageBudget,
		PermImportData,
		PermViewReview,
		PermEditExpenses,
	},
	RoleAuditor: {
		PermViewDashboard,
		PermViewReview,
	},
	RoleViewer: {
		PermViewDashboard,
	},
}

// ErrNotLoggedIn is returned when no session is persisted.
var ErrNotLoggedIn = errors.New("no active session")

// Profile is the persisted session identity.
type Profile struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
	AvatarInitials string `json:"avatarInitials"`
}

// Service manages the mocked session and the permission matrix.
type Service struct {
	kv     kvstore.Store
	logger *slog.Logger
	mu     sync.Mutex
}

// NewService creates an auth service over the given persistence layer.
func NewService(kv kvstore.Store, logger *slog.Logger) *Service {
	return &Service{kv: kv, logger: logger}
}

// Login derives a profile from the display name and role and persists it as
// the current session. The email is synthesized from the name; no credential
// check happens.
func (s *Service) Login(name string, role Role) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, errors.New("name is required")
	}
	if !validRole(role) {
		return Profile{}, fmt.Errorf("unknown role %q", role)
	}

	profile := Profile{
		Name:           name,
		Email:          syntheticEmail(name),
		Role:           role,
		AvatarInitials: avatarInitials(name),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(UserStorageKey, profile); err != nil {
		return Profile{}, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("user logged in", "name", profile.Name, "role", profile.Role)
	return profile, nil
}

// Logout discards the persisted session. Logging out with no session is a
// no-op.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(UserStorageKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.logger.Info("user logged out")
	return nil
}

// Current returns the persisted session profile.
func (s *Service) Current() (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profile Profile
	found, err := s.kv.Get(UserStorageKey, &profile)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to load session: %w", err)
	}
	if !found {
		return Profile{}, ErrNotLoggedIn
	}
	return profile, nil
}

// HasPermission reports whether the current session's role grants the
// permission. No session means no permissions.
func (s *Service) HasPermission(perm Permission) (bool, error) {
	profile, err := s.Current()
	if err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			return false, nil
		}
		return false, err
	}

	grants, err := s.Permissions(profile.Role)
	if err != nil {
		return false, err
	}
	for _, granted := range grants {
		if granted == perm {
			return true, nil
		}
	}
	return false, nil
}

// Permissions returns the effective grant set for a role: the persisted
// override if one exists, the built-in matrix otherwise.
func (s *Service) Permissions(role Role) ([]Permission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	overrides, err := s.loadOverrides()
	if err != nil {
		return nil, err
	}
	if grants, ok := overrides[role]; ok {
		return grants, nil
	}
	return defaultMatrix[role], nil
}

// SavePermissions persists a role's grant set, replacing any previous
// override for that role. Unknown permissions are rejected.
func (s *Service) SavePermissions(role Role, grants []Permission) error {
	if !validRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}
	for _, perm := range grants {
		if !validPermission(perm) {
			return fmt.Errorf("unknown permission %q", perm)
		}
	}

	normalized := dedupe(grants)

	s.mu.Lock()
	defer s.mu.Unlock()

	overrides, err := s.loadOverrides()
	if err != nil {
		return err
	}
	overrides[role] = normalized

	if err := s.kv.Set(PermissionsStorageKey, overrides); err != nil {
		return fmt.Errorf("failed to persist permissions: %w", err)
	}
	s.logger.Info("permissions updated", "role", role, "grants", len(normalized))
	return nil
}

func (s *Service) loadOverrides() (map[Role][]Permission, error) {
	overrides := make(map[Role][]Permission)
	if _, err := s.kv.Get(PermissionsStorageKey, &overrides); err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}
	return overrides, nil
}

// syntheticEmail lowercases the name, folds spaces into dots and appends the
// fixed enterprise domain.
func syntheticEmail(name string) string {
	local := strings.ToLower(name)
	local = strings.Join(strings.Fields(local), ".")
	return local + "@enterprise.com"
}

// avatarInitials takes the first two characters of the name, uppercased.
func avatarInitials(name string) string {
	runes := []rune(name)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

func validRole(role Role) bool {
	_, ok := defaultMatrix[role]
	return ok
}

func validPermission(perm Permission) bool {
	for _, known := range AllPermissions {
		if known == perm {
			return true
		}
	}
	return false
}

func dedupe(grants []Permission) []Permission {
	seen := make(map[Permission]bool, len(grants))
	out := make([]Permission, 0, len(grants))
	for _, perm := range grants {
		if !seen[perm] {
			seen[perm] = true
			out = append(out, perm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}

// rank keeps stored grant sets in the canonical display order.
func rank(perm Permission) int {
	for i, known := range AllPermissions {
		if known == perm {
			return i
		}
	}
	return len(AllPermissions)
}
