package utils

// Value dereferences v, returning the zero value of T when v is nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// Override replaces *dst with *src when src is set.
func Override[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
