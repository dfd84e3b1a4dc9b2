package descriptor

// ForwardedAttributes returns the attributes copied verbatim onto the
// generated field for arg, in declaration order. Generation-config
// attributes are stripped.
func ForwardedAttributes(arg ArgumentDescriptor) []Attribute {
	var out []Attribute
	for _, a := range arg.Attributes {
		if a.Kind == AttrTag || a.Kind == AttrDoc {
			out = append(out, a)
		}
	}
	return out
}

// GenerationAttribute returns the value of the callgen attribute key on arg.
func GenerationAttribute(arg ArgumentDescriptor, key string) (string, bool) {
	for _, a := range arg.Attributes {
		if a.Kind == AttrCallgen && a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
