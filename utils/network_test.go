package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"HTTPS endpoint", "https://example.com/convertImages", false},
		{"Local HTTP endpoint", "http://localhost:3000/convertImages", false},
		{"Missing scheme", "example.com/convertImages", true},
		{"FTP scheme", "ftp://example.com/upload", true},
		{"No host", "https:///convertImages", true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateEndpoint(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEndpoint(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestIsLoopbackEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		expected bool
	}{
		{"http://localhost:3000/convertImages", true},
		{"http://127.0.0.1:3000/", true},
		{"http://[::1]:8080/", true},
		{"http://api.localhost/", true},
		{"https://example.com/", false},
		{"http://10.0.0.5/", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := ValidateEndpoint(tt.raw)
			if err != nil {
				t.Fatalf("ValidateEndpoint(%q) error = %v", tt.raw, err)
			}
			if got := IsLoopbackEndpoint(u); got != tt.expected {
				t.Errorf("IsLoopbackEndpoint(%q) = %v, expected %v", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestIsPlaintextRemote(t *testing.T) {
	tests := []struct {
		raw      string
		expected bool
	}{
		{"http://example.com/convert", true},
		{"https://example.com/convert", false},
		{"http://localhost:3000/convert", false},
	}

	for _, tt := range tests {
		u, err := ValidateEndpoint(tt.raw)
		if err != nil {
			t.Fatalf("ValidateEndpoint(%q) error = %v", tt.raw, err)
		}
		if got := IsPlaintextRemote(u); got != tt.expected {
			t.Errorf("IsPlaintextRemote(%q) = %v, expected %v", tt.raw, got, tt.expected)
		}
	}
}

func TestValidateOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	if err := ValidateOutputDir(dir); err != nil {
		t.Fatalf("ValidateOutputDir() error = %v", err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Errorf("Expected %s to be created", dir)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Probe file should be cleaned up, found %d entries", len(entries))
	}
}

func TestGetPermissionInstructions(t *testing.T) {
	instructions := getPermissionInstructions()
	if instructions == "" {
		t.Error("Permission instructions should not be empty")
	}
	if runtime.GOOS != "windows" && !strings.Contains(instructions, "chmod") {
		t.Errorf("Expected unix instructions to mention chmod, got: %s", instructions)
	}
}
