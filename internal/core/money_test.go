package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	valid := []struct {
		in   string
		want int64
	}{
		{"1", 100},
		{"1.0", 100},
		{"1.23", 123},
		{"1,23", 123},
		{"0.01", 1},
		{".5", 50},
		{"1.005", 101},
		{"12.346", 1235},
		{"12.3449", 1234},
		{" 2.50 ", 250},
	}
	for _, tc := range valid {
		got, err := ParseDecimalToCents(tc.in)
		if err != nil {
			t.Errorf("ParseDecimalToCents(%q) error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}

	invalid := []string{"", "0", "0.004", "-1", "+1", "abc", "1.2.3", "1e3", "99999999999999999999"}
	for _, in := range invalid {
		if _, err := ParseDecimalToCents(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseDecimalToCents(%q) = %v, want ErrInvalidAmount", in, err)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{123456, "1234.56"},
		{-5, "-0.05"},
		{-100, "-1.00"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1000}
	b := Money{Cents: 250}
	if got := a.Add(b); got.Cents != 1250 {
		t.Errorf("Add = %d, want 1250", got.Cents)
	}
	if got := a.Sub(b); got.Cents != 750 {
		t.Errorf("Sub = %d, want 750", got.Cents)
	}
	if !(Money{}).IsZero() {
		t.Error("zero Money should report IsZero")
	}
}
