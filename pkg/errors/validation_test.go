package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateFinite(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"negative", -12.5, false},
		{"large", 1e300, false},
		{"nan", math.NaN(), true},
		{"+inf", math.Inf(1), true},
		{"-inf", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFinite("p0x", tt.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFinite(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidState) {
				t.Errorf("ValidateFinite(%v) code = %v, want %v", tt.v, GetCode(err), ErrCodeInvalidState)
			}
		})
	}
}

func TestValidateCanvas(t *testing.T) {
	tests := []struct {
		name    string
		w, h    float64
		wantErr bool
	}{
		{"default", 500, 400, false},
		{"tiny", 1, 1, false},
		{"zero width", 0, 400, true},
		{"negative height", 500, -1, true},
		{"nan", math.NaN(), 400, true},
		{"inf", 500, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCanvas(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCanvas(%v, %v) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "0b7e0c4e-8f1a-4c1e-9a43-5c3b0c1f2d9e", false},
		{"simple", "local", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"path traversal", "../etc", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSessionID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
