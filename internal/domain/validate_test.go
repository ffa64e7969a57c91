package domain

import (
	"strings"
	"testing"
)

func TestCheckTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		valid bool
	}{
		{name: "too short", title: "abc", valid: false},
		{name: "minimum length", title: "abcd", valid: true},
		{name: "maximum length", title: strings.Repeat("a", 50), valid: true},
		{name: "too long", title: strings.Repeat("a", 51), valid: false},
		{name: "empty", title: "", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTitle(tt.title)
			if tt.valid && err != nil {
				t.Fatalf("expected valid title, got %v", err)
			}
			if !tt.valid {
				if err == nil {
					t.Fatal("expected field error, got nil")
				}
				if err.Code != CodeTitleInvalidLength {
					t.Fatalf("unexpected code %q", err.Code)
				}
			}
		})
	}
}

func TestCheckLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		valid    bool
	}{
		{name: "plain pair", location: "90.2,23.12312", valid: false}, // 90.2 exceeds latitude range
		{name: "valid pair", location: "45.5,-122.67", valid: true},
		{name: "poles", location: "90.0,180.0", valid: true},
		{name: "spaced pair", location: "12.5, 99.1", valid: true},
		{name: "not coordinates", location: "portland", valid: false},
		{name: "latitude out of range", location: "91.0,10.0", valid: false},
		{name: "longitude out of range", location: "10.0,181.0", valid: false},
		{name: "too long", location: "12.5," + strings.Repeat("9", 100), valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckLocation(tt.location)
			if tt.valid && err != nil {
				t.Fatalf("expected valid location, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Fatal("expected field error, got nil")
			}
		})
	}
}

func TestCheckTargetAmount(t *testing.T) {
	if err := CheckTargetAmount(0, 10000); err == nil {
		t.Fatal("zero target should be rejected")
	}
	if err := CheckTargetAmount(-5, 10000); err == nil {
		t.Fatal("negative target should be rejected")
	}
	if err := CheckTargetAmount(10001, 10000); err == nil {
		t.Fatal("target above limit should be rejected")
	}
	if err := CheckTargetAmount(10000, 10000); err != nil {
		t.Fatalf("target at limit should pass, got %v", err)
	}
}

func TestCheckDuration(t *testing.T) {
	for _, days := range []int{0, -1, 31} {
		if err := CheckDuration(days); err == nil {
			t.Fatalf("duration %d should be rejected", days)
		}
	}
	for _, days := range []int{1, 30} {
		if err := CheckDuration(days); err != nil {
			t.Fatalf("duration %d should pass, got %v", days, err)
		}
	}
}

func TestCollectFieldErrorsAggregatesAllViolations(t *testing.T) {
	err := CollectFieldErrors(
		CheckTitle("ab"),
		CheckDescription(strings.Repeat("x", 1001)),
		CheckLocation("nowhere"),
		CheckTargetAmount(0, 10000),
		CheckDuration(0),
	)
	if err == nil {
		t.Fatal("expected aggregated validation error")
	}
	ve, ok := AsValidation(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Fields) != 5 {
		t.Fatalf("expected 5 field errors, got %d: %v", len(ve.Fields), ve.Fields)
	}
}

func TestCollectFieldErrorsNilWhenClean(t *testing.T) {
	err := CollectFieldErrors(
		CheckTitle("clean water for tamale"),
		CheckDescription("a well"),
		CheckLocation("9.4,-0.85"),
		CheckTargetAmount(5000, 10000),
		CheckDuration(14),
	)
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
