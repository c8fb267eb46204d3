package errors

import (
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Moose", false},
		{"valid namespaced", "Foo::Bar", false},
		{"valid dashed", "Foo-Bar", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateModuleName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"Foo::Bar", false},
		{"Foo-Bar", false},
		{"XML::LibXML::Reader", false},
		{"perl", false},
		{"Acme::Don't", false},
		{"Foo::", true},
		{"::Foo", true},
		{"Foo Bar", true},
		{"1Foo", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateModuleName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateModuleName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("expected INVALID_NAME code, got %v", err)
			}
		})
	}
}

func TestValidateMaintainerID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"GRANTM", false},
		{"ABC123", false},
		{"grantm", true},
		{"GRANT-M", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if err := ValidateMaintainerID(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidateMaintainerID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"12", 12, false},
		{"0x1f", 31, false},
		{"0X1F", 31, false},
		{" 7 ", 7, false},
		{"", 0, true},
		{"0x", 0, true},
		{"1f", 0, true},
		{"-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCoordinate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCoordinate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseCoordinate(%q) = %d, want %d", tt.input, got, tt.want)
			}
			if err != nil && !Is(err, ErrCodeInvalidCoordinate) {
				t.Errorf("expected INVALID_COORDINATE, got %v", err)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "cpan-map-data.txt", false},
		{"absolute", "/srv/cpan-map/cpan-map-data.txt", false},
		{"empty", "", true},
		{"null byte", "map\x00.txt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidatePath(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://fastapi.metacpan.org/v1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateURL("ftp://example.com"); err == nil {
		t.Error("expected error for ftp scheme")
	}
	if err := ValidateURL(""); err == nil {
		t.Error("expected error for empty URL")
	}
}
