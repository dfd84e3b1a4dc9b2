package util

import "testing"

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"method_a", "MethodA"},
		{"my_string", "MyString"},
		{"ledger_version", "LedgerVersion"},
		{"kebab-case", "KebabCase"},
		{"already", "Already"},
		{"Mixed_Case", "MixedCase"},
		{"__leading", "Leading"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToPascalCase(tt.in); got != tt.want {
			t.Errorf("ToPascalCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToCamelCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"my_string", "myString"},
		{"my_bool", "myBool"},
		{"x", "x"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToCamelCase(tt.in); got != tt.want {
			t.Errorf("ToCamelCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"MethodA", "method_a"},
		{"HTTPSConnection", "https_connection"},
		{"myString", "my_string"},
		{"already_snake", "already_snake"},
	}
	for _, tt := range tests {
		if got := ToSnakeCase(tt.in); got != tt.want {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToParamName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"my_string", "myString"},
		{"type", "type_"},
		{"range", "range_"},
		{"state", "state_"},
		{"args", "args_"},
		{"to", "to"},
	}
	for _, tt := range tests {
		if got := ToParamName(tt.in); got != tt.want {
			t.Errorf("ToParamName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsExported(t *testing.T) {
	if !IsExported("Body") || IsExported("body") || IsExported("") {
		t.Error("IsExported mismatch")
	}
}
