package task

// Field is one optional member of a Patch. The zero value leaves the
// attribute unchanged; Set assigns a value and Clear resets it to null.
type Field[T any] struct {
	present bool
	null    bool
	value   T
}

// Set returns a field that assigns v.
func Set[T any](v T) Field[T] {
	return Field[T]{present: true, value: v}
}

// Clear returns a field that resets the attribute to null.
func Clear[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

// IsSet reports whether the field changes the attribute at all.
func (f Field[T]) IsSet() bool { return f.present }

// IsNull reports whether the field clears the attribute.
func (f Field[T]) IsNull() bool { return f.present && f.null }

// Value returns the assigned value and true, or the zero value and false
// when the field is unset or cleared.
func (f Field[T]) Value() (T, bool) {
	if !f.present || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// Ptr returns the assigned value as a pointer, or nil when cleared.
func (f Field[T]) Ptr() *T {
	v, ok := f.Value()
	if !ok {
		return nil
	}
	return &v
}

// applyPtr writes the field into an optional attribute.
func (f Field[T]) applyPtr(dst **T) {
	if !f.present {
		return
	}
	*dst = f.Ptr()
}

// applyVal writes the field into a required attribute. Clearing a required
// attribute is rejected by Patch.Validate and ignored here.
func (f Field[T]) applyVal(dst *T) {
	if v, ok := f.Value(); ok {
		*dst = v
	}
}
