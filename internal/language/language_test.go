package language

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		value    string
		wantOK   bool
		wantMode string
	}{
		{"go", true, "go"},
		{" TypeScript ", true, "javascript"},
		{"ruby", true, ""},
		{"cobol", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			l, ok := Lookup(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if l.Mode != tt.wantMode {
				t.Errorf("Lookup(%q).Mode = %q, want %q", tt.value, l.Mode, tt.wantMode)
			}
		})
	}
}

func TestDefaultIsJavaScript(t *testing.T) {
	if d := Default(); d.Value != "javascript" {
		t.Errorf("Default() = %q, want javascript", d.Value)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	a := All()
	if len(a) != 15 {
		t.Fatalf("len(All()) = %d, want 15", len(a))
	}
	a[0].Value = "mutated"
	if All()[0].Value != "javascript" {
		t.Error("All() exposed the internal table")
	}
}
