package accesscode

import "testing"

func TestGenerateShape(t *testing.T) {
	code, err := Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !IsWellFormed(code) {
		t.Fatalf("generated code %q is not well formed", code)
	}
}

func TestGenerateIsNotConstant(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 64; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		seen[code] = true
	}
	// 64 draws from a 2^32 space colliding down to one value would mean
	// the random source is broken.
	if len(seen) < 2 {
		t.Fatalf("expected distinct codes, got %d unique of 64", len(seen))
	}
}

func TestIsWellFormed(t *testing.T) {
	cases := map[string]bool{
		"0A1B2C3D": true,
		"DEADBEEF": true,
		"deadbeef": false,
		"0A1B2C3":  false,
		"0A1B2C3DE": false,
		"0A1B2C3G": false,
		"":         false,
	}
	for value, want := range cases {
		if got := IsWellFormed(value); got != want {
			t.Fatalf("IsWellFormed(%q) = %v, want %v", value, got, want)
		}
	}
}
