package picker

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSplitDropped(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		goos     string
		expected []string
	}{
		{"Single path", "/tmp/a.png", "linux", []string{"/tmp/a.png"}},
		{"Multiple paths", "/tmp/a.png /tmp/b.jpg", "linux", []string{"/tmp/a.png", "/tmp/b.jpg"}},
		{"Escaped spaces", `/tmp/my\ photo.png /tmp/b.png`, "darwin", []string{"/tmp/my photo.png", "/tmp/b.png"}},
		{"Single quoted", `'/tmp/my photo.png' '/tmp/b.png'`, "linux", []string{"/tmp/my photo.png", "/tmp/b.png"}},
		{"Double quoted", `"/tmp/my photo.png"`, "linux", []string{"/tmp/my photo.png"}},
		{"Backslash kept in double quotes", `"/tmp/a\b.png"`, "linux", []string{`/tmp/a\b.png`}},
		{"File URL", "file:///tmp/a.png", "linux", []string{"/tmp/a.png"}},
		{"File URL percent-encoded", "file:///home/u/My%20Pic.png", "linux", []string{"/home/u/My Pic.png"}},
		{"Newline separated", "/tmp/a.png\n/tmp/b.png\n", "linux", []string{"/tmp/a.png", "/tmp/b.png"}},
		{"Unbalanced quote", `'/tmp/a.png /tmp/b.png`, "linux", []string{"'/tmp/a.png", "/tmp/b.png"}},
		{"Empty input", "   ", "linux", nil},
		{"Windows quoted and bare", `"C:\Users\me\My Pics\a.png" C:\tmp\b.png`, "windows",
			[]string{`C:\Users\me\My Pics\a.png`, `C:\tmp\b.png`}},
		{"Windows file URL", "file:///C:/Users/me/My%20Pic.png", "windows", []string{`C:\Users\me\My Pic.png`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitDropped(tt.input, tt.goos)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("splitDropped(%q, %s) = %q, expected %q", tt.input, tt.goos, got, tt.expected)
			}
		})
	}
}

func TestExpandPaths(t *testing.T) {
	testDir := t.TempDir()
	subDir := filepath.Join(testDir, "nested")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	files := map[string]string{
		filepath.Join(testDir, "b.png"):     "png",
		filepath.Join(testDir, "a.JPG"):     "jpg",
		filepath.Join(subDir, "c.jpeg"):     "jpeg",
		filepath.Join(testDir, "notes.txt"): "text",
		filepath.Join(testDir, ".DS_Store"): "meta",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	loose := filepath.Join(t.TempDir(), "loose.gif")
	expanded, err := ExpandPaths([]string{testDir, loose})
	if err != nil {
		t.Fatalf("ExpandPaths() error = %v", err)
	}

	expected := []string{
		filepath.Join(testDir, "a.JPG"),
		filepath.Join(testDir, "b.png"),
		filepath.Join(subDir, "c.jpeg"),
		filepath.Join(testDir, "notes.txt"),
		loose,
	}
	if !reflect.DeepEqual(expanded, expected) {
		t.Errorf("ExpandPaths() = %v, expected %v", expanded, expected)
	}
}
