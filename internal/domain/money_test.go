package domain_test

import (
	"errors"
	"testing"

	"github.com/corebank/ledger-service/internal/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "integer", value: "100", want: "100.00"},
		{name: "one decimal place", value: "0.5", want: "0.50"},
		{name: "two decimal places", value: "99.99", want: "99.99"},
		{name: "smallest unit", value: "0.01", want: "0.01"},
		{name: "empty", value: "", wantErr: true},
		{name: "not a number", value: "ten", wantErr: true},
		{name: "zero", value: "0", wantErr: true},
		{name: "zero with scale", value: "0.00", wantErr: true},
		{name: "negative", value: "-5.00", wantErr: true},
		{name: "three decimal places", value: "1.005", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := domain.ParseAmount(tt.value)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidAmount) {
					t.Fatalf("expected ErrInvalidAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) failed: %v", tt.value, err)
			}
			if got := domain.FormatAmount(amount); got != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatAmount_FixedScale(t *testing.T) {
	amount, err := domain.ParseAmount("7")
	if err != nil {
		t.Fatalf("ParseAmount failed: %v", err)
	}
	if got := domain.FormatAmount(amount.Neg()); got != "-7.00" {
		t.Errorf("expected -7.00, got %s", got)
	}
}
