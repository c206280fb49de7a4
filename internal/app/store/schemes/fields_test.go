package schemestore

import (
	"reflect"
	"testing"
)

func TestDedupeFields(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"trims and keeps order", []string{" service_number ", "bank_account"}, []string{"service_number", "bank_account"}},
		{"drops empties", []string{"", "  ", "rank"}, []string{"rank"}},
		{"case-insensitive dedupe keeps first spelling", []string{"Rank", "rank", "RANK"}, []string{"Rank"}},
		{"all empty", []string{"", " "}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedupeFields(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("dedupeFields(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
