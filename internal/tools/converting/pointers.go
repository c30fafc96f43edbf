package converting

// Unwrap returns the zero value of T for a nil pointer.
func Unwrap[T any](x *T) (r T) {
	if x != nil {
		r = *x
	}

	return
}

func PointerToValue[T any](v T) *T {
	return &v
}
