package units

// ScopeKind tags the ownership of a custom definition or a registry view.
type ScopeKind string

const (
	// ScopeGlobal marks definitions visible to every caller.
	ScopeGlobal ScopeKind = "global"
	// ScopeUser marks definitions owned by a user across all keys.
	ScopeUser ScopeKind = "user"
	// ScopeUserKeyed marks definitions owned by a user under a
	// categorization key (for example a customer id).
	ScopeUserKeyed ScopeKind = "user_keyed"
)

// Scope identifies who owns a definition and which definitions a registry
// view may see. Privileged widens visibility to all owners; it is never set on
// stored rows, only on the viewing scope.
type Scope struct {
	Kind       ScopeKind `json:"kind"`
	UserID     string    `json:"user_id,omitempty"`
	Key        string    `json:"key,omitempty"`
	Privileged bool      `json:"-"`
}

func GlobalScope() Scope {
	return Scope{Kind: ScopeGlobal}
}

func UserScope(userID string) Scope {
	return Scope{Kind: ScopeUser, UserID: userID}
}

func UserKeyedScope(userID, key string) Scope {
	return Scope{Kind: ScopeUserKeyed, UserID: userID, Key: key}
}

// IsGlobal reports whether the scope carries no user ownership.
func (s Scope) IsGlobal() bool { return s.Kind == ScopeGlobal || s.Kind == "" }

// CanSee decides whether a viewer with this scope may observe a definition
// owned by owner. Global rows are always visible. User rows are visible to
// their owner; keyed rows additionally require a matching key. A privileged
// viewer sees everything.
func (s Scope) CanSee(owner Scope) bool {
	if owner.IsGlobal() {
		return true
	}
	if s.Privileged {
		return true
	}
	if s.IsGlobal() || s.UserID != owner.UserID {
		return false
	}
	if owner.Kind == ScopeUserKeyed {
		return s.Kind == ScopeUserKeyed && s.Key == owner.Key
	}
	return true
}
