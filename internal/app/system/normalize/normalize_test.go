package normalize

import "testing"

func TestUsername(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ramesh", "ramesh"},
		{"RAMESH", "ramesh"},
		{"  Ramesh  ", "ramesh"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Username(tt.input)
			if got != tt.want {
				t.Errorf("Username(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Asha Bhat", "Asha Bhat"},
		{"  Asha Bhat  ", "Asha Bhat"},
		{"UPPER CASE", "UPPER CASE"}, // Name preserves case
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFamilyCode(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Q7X2K9", "Q7X2K9"},
		{"q7x2k9", "Q7X2K9"},
		{"  q7X2k9  ", "Q7X2K9"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := FamilyCode(tt.input)
			if got != tt.want {
				t.Errorf("FamilyCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAdhaar(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"123412341234", "123412341234"},
		{" 123412341234 ", "123412341234"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Adhaar(tt.input)
			if got != tt.want {
				t.Errorf("Adhaar(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRole(t *testing.T) {
	if got := Role("  Officer "); got != "officer" {
		t.Errorf("Role: got %q, want %q", got, "officer")
	}
}
