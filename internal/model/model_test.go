package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Category
		wantOK bool
	}{
		{name: "exact", input: "FOOD", want: CategoryFood, wantOK: true},
		{name: "lowercase", input: "transport", want: CategoryTransport, wantOK: true},
		{name: "padded", input: " UTILITIES ", want: CategoryUtilities, wantOK: true},
		{name: "unknown", input: "GROCERIES", want: CategoryOthers, wantOK: false},
		{name: "empty", input: "", want: CategoryOthers, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCategory(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestPattern_Validate(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
		wantErr string
	}{
		{
			name: "valid",
			pattern: Pattern{
				BankAddress: "HDFCBK",
				Regex:       `Rs\.(?P<amount>[\d,]+)`,
			},
		},
		{
			name:    "missing bank address",
			pattern: Pattern{Regex: `Rs\.(?P<amount>[\d,]+)`},
			wantErr: "bank address",
		},
		{
			name:    "missing regex",
			pattern: Pattern{BankAddress: "HDFCBK"},
			wantErr: "requires a regex",
		},
		{
			name: "regex does not compile",
			pattern: Pattern{
				BankAddress: "HDFCBK",
				Regex:       `Rs\.(?P<amount>[`,
			},
			wantErr: "does not compile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pattern.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
