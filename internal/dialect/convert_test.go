// # internal/dialect/convert_test.go
package dialect

import "testing"

func TestConvertTemplates(t *testing.T) {
	cases := map[string]string{
		"std::vector<int>":                  "std::vector[int]",
		"std::map<std::string, Foo>":        "std::map[std::string, Foo]",
		"std::vector<std::vector<double>>":  "std::vector[std::vector[double]]",
		"int":                               "int",
		"const char*":                       "const char*",
		"void f() throw(std::exception)":    "void f() except +",
		"void g() noexcept":                 "void g()",
		"bool":                              "bint",
		"_Bool":                             "bint",
		"bool flag":                         "bint flag",
		"std::vector<bool>":                 "std::vector[bint]",
		"int* restrict p":                   "int* p",
		"volatile int x":                    "int x",
		"std::function<void(bool)>":         "std::function[void(bint)]",
	}
	for in, want := range cases {
		if got := Convert(in); got != want {
			t.Errorf("Convert(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConvertIdempotent(t *testing.T) {
	inputs := []string{
		"std::map<std::string, Foo>",
		"void f() throw(std::exception)",
		"bool",
		"unsigned long long",
	}
	for _, in := range inputs {
		once := Convert(in)
		if twice := Convert(once); twice != once {
			t.Errorf("Convert not idempotent on %q: %q -> %q", in, once, twice)
		}
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"const struct Foo*":            "Foo",
		"unsigned int":                 "int",
		"std::vector<int>":             "std::vector",
		"ns::Widget&":                  "ns::Widget",
		"char[16]":                     "char",
		"enum Color":                   "Color",
		"const volatile long long":     "long long",
		"signed char":                  "char",
		"Foo **":                       "Foo",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripLeadingTypeID(t *testing.T) {
	cases := map[string]string{
		"struct Foo":       "Foo",
		"const struct Foo": "const Foo",
		"union U*":         "U*",
		"enum Color":       "Color",
		"Foo":              "Foo",
	}
	for in, want := range cases {
		if got := StripLeadingTypeID(in); got != want {
			t.Errorf("StripLeadingTypeID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNestedTemplateArgs(t *testing.T) {
	got := NestedTemplateArgs("std::map<std::string, ns::T<int>>")
	want := []string{"std::string", "ns::T<int>", "int"}
	if len(got) != len(want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if args := NestedTemplateArgs("int"); args != nil {
		t.Errorf("expected nil for non-template, got %v", args)
	}
}

func TestReferencedNames(t *testing.T) {
	got := ReferencedNames("std::map<std::string, ns::T<int>>*")
	want := map[string]bool{"std::string": true, "ns::T": true, "int": true, "std::map": true}
	if len(got) != len(want) {
		t.Fatalf("names = %v", got)
	}
	for _, n := range got {
		if !want[n] {
			t.Errorf("unexpected name %q", n)
		}
	}
}

func TestTemplateParamList(t *testing.T) {
	if got := TemplateParamList(nil); got != "" {
		t.Errorf("empty params = %q", got)
	}
	if got := TemplateParamList([]string{"T", "U"}); got != "[T, U]" {
		t.Errorf("params = %q", got)
	}
}
