package mapdata

import "testing"

func TestParseMarker(t *testing.T) {
	tests := []struct {
		field  string
		want   Section
		wantOK bool
	}{
		{"[META]", SectionMeta, true},
		{"[MAINTAINERS]", SectionMaintainers, true},
		{"[NAMESPACES]", SectionNamespaces, true},
		{"[DISTRIBUTIONS]", SectionDistributions, true},
		{"[RATINGS]", SectionNone, true},
		{"GRANTM", SectionNone, false},
		{"[", SectionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := ParseMarker(tt.field)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseMarker(%q) = %v, %v; want %v, %v", tt.field, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIsBrokenMarker(t *testing.T) {
	if !IsBrokenMarker("[DISTRIBUTIONS") {
		t.Error("unclosed marker should be broken")
	}
	if IsBrokenMarker("[META]") || IsBrokenMarker("Foo") {
		t.Error("valid marker or plain field reported as broken")
	}
}

func TestSectionStringRoundTrip(t *testing.T) {
	for _, s := range Sections() {
		got, ok := ParseMarker(s.String())
		if !ok || got != s {
			t.Errorf("ParseMarker(%q) = %v, %v", s.String(), got, ok)
		}
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		field   string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"1a", 26, false},
		{"ff", 255, false},
		{"", 0, true},
		{"0x1a", 0, true},
		{"-1", 0, true},
		{"zz", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := ParseHex(tt.field)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.field, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %d, want %d", tt.field, got, tt.want)
			}
		})
	}
}

func TestFormatHex(t *testing.T) {
	if FormatHex(255) != "ff" {
		t.Errorf("FormatHex(255) = %q", FormatHex(255))
	}
}
