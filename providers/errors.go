package providers

import "errors"

// Sentinel errors for provider response classification. Concrete
// providers wrap their SDK errors with these so the core can classify
// without knowing SDK error shapes. Test fakes return them directly.
var (
	// ErrNotFound means the resource does not exist. The core treats
	// this as idempotent success on delete and as completion on status.
	ErrNotFound = errors.New("resource not found")
	// ErrDependency means the resource cannot be deleted because
	// another resource still depends on it. Retry-eligible.
	ErrDependency = errors.New("dependency violation")
)

// IsNotFound reports whether err classifies as resource-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDependency reports whether err classifies as a dependency violation.
func IsDependency(err error) bool {
	return errors.Is(err, ErrDependency)
}
