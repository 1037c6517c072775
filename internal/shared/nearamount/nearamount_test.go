package nearamount

import "testing"

func TestParseWholeUnits(t *testing.T) {
	v, err := Parse("1")
	if err != nil {
		t.Fatalf("parse 1 failed: %v", err)
	}
	if v.String() != "1000000000000000000000000" {
		t.Fatalf("expected 10^24 yocto, got %s", v.String())
	}
}

func TestParseFraction(t *testing.T) {
	v, err := Parse("0.1")
	if err != nil {
		t.Fatalf("parse 0.1 failed: %v", err)
	}
	if v.String() != "100000000000000000000000" {
		t.Fatalf("expected 10^23 yocto, got %s", v.String())
	}
	if Format(v) != "0.1" {
		t.Fatalf("expected round-trip to 0.1, got %s", Format(v))
	}
}

func TestParseRejectsSubYoctoAndNegative(t *testing.T) {
	if _, err := Parse("0.0000000000000000000000001"); err == nil {
		t.Fatalf("expected sub-yocto fraction to be rejected")
	}
	if _, err := Parse("-1"); err == nil {
		t.Fatalf("expected negative amount to be rejected")
	}
	if _, err := Parse("ten"); err == nil {
		t.Fatalf("expected non-numeric amount to be rejected")
	}
}

func TestParseYoctoWire(t *testing.T) {
	v, err := ParseYocto("1000000000000000000000001")
	if err != nil {
		t.Fatalf("parse yocto failed: %v", err)
	}
	if Format(v) != "1.000000000000000000000001" {
		t.Fatalf("unexpected format: %s", Format(v))
	}
}
