package schema

// PreprocessorInputs builds the input table shared by aux preprocessor units:
// one required image plus the unit's own optional controls.
func PreprocessorInputs(optional ...Field) *Table {
	t := NewTable().Require(In("image", Image()))
	if len(optional) > 0 {
		t.Option(optional...)
	}
	return t
}

// EnableDisable is the toggle combo several detectors use in place of a bool.
func EnableDisable() Spec {
	return Combo("enable", "disable")
}

// SafeUnsafe is the variant toggle used by the soft-edge detectors.
func SafeUnsafe() Spec {
	return Combo("safe", "unsafe")
}
