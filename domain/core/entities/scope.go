package entities

// Scope helpers. A scope is identified by a parent task id; nil is the root canvas.

// ScopeOf returns a scope pointer for id
func ScopeOf(id string) *string {
	return &id
}

// SameScope compares two scopes by value
func SameScope(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// CloneScope copies a scope pointer
func CloneScope(scope *string) *string {
	if scope == nil {
		return nil
	}
	id := *scope
	return &id
}

// ScopeString renders a scope for logs and keys
func ScopeString(scope *string) string {
	if scope == nil {
		return "root"
	}
	return *scope
}
