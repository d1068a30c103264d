// Package ptr helps with the optional columns of the inventory, where a nil
// pointer and a zero value both mean "not set".
package ptr

func PointTo[T any](v T) *T {
	return &v
}

// GetSafeDeref returns *p, or the zero value when p is nil.
func GetSafeDeref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}

	return *p
}

// NonZero points to v unless v is the zero value, in which case it is nil.
func NonZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}

	return &v
}

// IsSet reports whether p is non-nil and points to a non-zero value.
func IsSet[T comparable](p *T) bool {
	var zero T
	return p != nil && *p != zero
}
