package errors

import (
	"strings"
	"testing"
)

func TestValidateManifestPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple path", "paper/manifest.json", false},
		{"absolute path", "/data/paper/manifest.json", false},
		{"http url", "http://example.com/manifest.json", false},
		{"empty", "", true},
		{"null byte", "manifest\x00.json", true},
		{"control character", "manifest\n.json", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateManifestPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateManifestPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidManifest) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidManifest)
			}
		})
	}
}

func TestValidateMemberPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple relative", "images/fig1.png", false},
		{"nested", "extract/page-3/img-002.png", false},
		{"empty", "", true},
		{"traversal", "../../../etc/passwd", true},
		{"embedded traversal", "images/../../secret.png", true},
		{"backslash", "images\\fig1.png", true},
		{"null byte", "fig\x00.png", true},
		{"too long", strings.Repeat("b", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMemberPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMemberPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com/manifest.json", false},
		{"http://localhost:8080/m.json", false},
		{"", true},
		{"ftp://example.com/m.json", true},
		{"file:///etc/passwd", true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestValidateOutDir(t *testing.T) {
	if err := ValidateOutDir("figsheet-out"); err != nil {
		t.Errorf("ValidateOutDir(figsheet-out) = %v", err)
	}
	if err := ValidateOutDir(""); err == nil {
		t.Error("ValidateOutDir(empty) = nil, want error")
	}
	if err := ValidateOutDir("out\x00dir"); err == nil {
		t.Error("ValidateOutDir(null byte) = nil, want error")
	}
}
