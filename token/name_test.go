package token

import "testing"

func TestEncodeLocalName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"valid", "abc", "abc"},
		{"valid with digits and dashes", "a-1.b_2", "a-1.b_2"},
		{"non ascii letters", "été", "été"},
		{"space", "a b", "a_x0020_b"},
		{"leading digit", "1a", "_x0031_a"},
		{"leading dash", "-a", "_x002D_a"},
		{"colon", "a:b", "a_x003A_b"},
		{"emoji", "a\U0001F600", "a\U0001F600"},
		{"outside the name ranges", "a\U000F0000", "a_x000F0000_"},
		{"invalid utf8", "a\xff", "a_xFFFD_"},
		{"leading invalid utf8", "\xffa b", "_xFFFD_a_x0020_b"},
		{"truncated sequence", "a\xc3", "a_xFFFD_"},
		{"replacement character", "a\uFFFDb", "a\uFFFDb"},
		{"leading replacement character", "\uFFFD", "\uFFFD"},
		{"existing escape is kept", "a_x0020_b", "a_x0020_b"},
		{"several", "@a b", "_x0040_a_x0020_b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeLocalName(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNameEncoded(t *testing.T) {
	n := Name{Local: "a b", Prefix: "p", Namespace: "urn:p", IsAttribute: true}
	got := n.Encoded()
	want := Name{Local: "a_x0020_b", Prefix: "p", Namespace: "urn:p", IsAttribute: true}
	if got != want {
		t.Errorf("expected %#v, got %#v", want, got)
	}
	if n.Local != "a b" {
		t.Errorf("Encoded modified its receiver: %#v", n)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b     Name
		expected int
	}{
		{LocalName("a"), LocalName("a"), 0},
		{LocalName("a"), LocalName("b"), -1},
		{LocalName("b"), LocalName("a"), 1},
		{Name{Local: "a", Prefix: "p"}, Name{Local: "a", Prefix: "q"}, 0},
		{Name{Local: "z"}, Name{Local: "a", Namespace: "urn:a"}, -1},
		{Name{Local: "a", Namespace: "urn:b"}, Name{Local: "z", Namespace: "urn:a"}, 1},
		{LocalName("a"), AttributeName("a"), 0},
	}

	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.expected {
			t.Errorf("Compare(%#v, %#v): expected %d, got %d", tt.a, tt.b, tt.expected, got)
		}
	}
}

func TestNameString(t *testing.T) {
	tests := []struct {
		name     Name
		expected string
	}{
		{EmptyName, ""},
		{LocalName("a"), "a"},
		{Name{Local: "a", Prefix: "p", Namespace: "urn:p"}, "p:a"},
		{Name{Local: "a", Namespace: "urn:p"}, "a"},
	}
	for _, tt := range tests {
		if got := tt.name.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}

	got := Name{Local: "a", Prefix: "p", Namespace: "urn:p", IsAttribute: true}.GoString()
	if want := `Name("a", prefix="p", ns="urn:p", attr)`; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNameIsEmpty(t *testing.T) {
	if !EmptyName.IsEmpty() {
		t.Error("EmptyName should be empty")
	}
	if !(Name{Prefix: "p", Namespace: "urn:p"}).IsEmpty() {
		t.Error("a name with no local part should be empty")
	}
	if LocalName("a").IsEmpty() {
		t.Error("a name with a local part should not be empty")
	}
}
