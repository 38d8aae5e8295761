package models

// QualifierSeparator joins enclosing type names and the method name in a
// qualified method name, e.g. "Outer::Inner::Run".
const QualifierSeparator = "::"

// MethodSpan is a method or function record supplied by the function-boundary
// analyzer. The profiler fills FieldUsage and Calls once the span is attached
// to a declaration.
type MethodSpan struct {
	Name           string `json:"name"`
	QualifiedName  string `json:"qualified_name"`
	Owner          string `json:"class_name,omitempty"`
	Path           string `json:"file_path"`
	StartLine      int    `json:"start_line"`
	EndLine        int    `json:"end_line"`
	Size           int    `json:"loc"`
	Complexity     int    `json:"complexity"`
	ParameterCount int    `json:"parameter_count"`

	FieldUsage []string `json:"field_usage,omitempty"`
	Calls      []string `json:"fan_out_calls,omitempty"`
}
