package errors

import (
	"testing"
)

func TestValidateSegment(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"group", "com.acme", false},
		{"artifact with dash", "commons-lang3", false},
		{"version", "1.0-SNAPSHOT", false},
		{"range", "[1.0,2.0)", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"space", "foo bar", true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"traversal", "..", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSegment("field", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSegment(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeMalformedNotation) {
				t.Errorf("ValidateSegment(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeMalformedNotation)
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
		{"artifact path", "com/acme/core/1.0/core-1.0.jar", false},
		{"metadata", "com/acme/core/maven-metadata.xml", false},
		{"dots in name", "a/b..c/file", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "com/../../etc", true},
		{"backslash", "com\\acme", true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRepositoryURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://repo.maven.apache.org/maven2", false},
		{"http://localhost:8081/repository", false},
		{"s3://bucket/releases", false},
		{"file:///tmp/repo", false},
		{"", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"repo.maven.apache.org", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateRepositoryURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRepositoryURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
