package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeUpload(t *testing.T, dir, name, content string) Upload {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return Upload{Name: name, Path: path, Type: "image/png"}
}

func TestClient_Convert_Success(t *testing.T) {
	dir := t.TempDir()
	req := Request{
		Options: Options{Quality: "80", Format: FormatWebP},
		Files: []Upload{
			writeUpload(t, dir, "a.png", "first"),
			writeUpload(t, dir, "b.png", "second"),
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Failed to parse multipart form: %v", err)
		}

		expectedFields := map[string]string{"height": "", "width": "", "quality": "80", "format": "webp"}
		for name, want := range expectedFields {
			if got := r.FormValue(name); got != want {
				t.Errorf("Field %s = %q, expected %q", name, got, want)
			}
		}

		files := r.MultipartForm.File["files"]
		if len(files) != 2 {
			t.Fatalf("Expected 2 file parts, got %d", len(files))
		}
		if files[0].Filename != "a.png" || files[1].Filename != "b.png" {
			t.Errorf("File parts out of order: %s, %s", files[0].Filename, files[1].Filename)
		}
		if ct := files[0].Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("Expected part Content-Type image/png, got %q", ct)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": 1,
			"files": []map[string]any{
				{"fileName": "a.webp", "fileData": "YQ==", "size": 1.5},
				{"fileName": "b.webp", "fileData": "Yg==", "size": 2},
			},
		})
	}))
	defer server.Close()

	results, err := NewClient(server.URL).Convert(context.Background(), req)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].FileName != "a.webp" || results[0].Size != 1.5 {
		t.Errorf("Unexpected first result: %+v", results[0])
	}
	if results[1].FileData != "Yg==" {
		t.Errorf("Unexpected second result data: %q", results[1].FileData)
	}
}

func TestClient_Convert_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":0,"message":"unsupported format"}`)
	}))
	defer server.Close()

	dir := t.TempDir()
	req := Request{Options: DefaultOptions(), Files: []Upload{writeUpload(t, dir, "a.png", "x")}}

	_, err := NewClient(server.URL).Convert(context.Background(), req)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("Expected ServiceError, got %T (%v)", err, err)
	}
	if svcErr.Error() != "unsupported format" {
		t.Errorf("Expected message %q, got %q", "unsupported format", svcErr.Error())
	}
}

func TestClient_Convert_TransportErrors(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantMessage string
	}{
		{
			name: "HTTP 500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantMessage: "status code 500",
		},
		{
			name: "Malformed JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "<html>oops</html>")
			},
			wantMessage: "decode",
		},
		{
			name: "Missing status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"error":"internal"}`)
			},
			wantMessage: "malformed response",
		},
		{
			name: "Empty object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{}`)
			},
			wantMessage: "malformed response",
		},
		{
			name: "Unknown status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"status":2}`)
			},
			wantMessage: "malformed response",
		},
		{
			name: "Failure without message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"status":0}`)
			},
			wantMessage: "malformed response",
		},
	}

	dir := t.TempDir()
	req := Request{Options: DefaultOptions(), Files: []Upload{writeUpload(t, dir, "a.png", "x")}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewClient(server.URL).Convert(context.Background(), req)
			var trErr *TransportError
			if !errors.As(err, &trErr) {
				t.Fatalf("Expected TransportError, got %T (%v)", err, err)
			}
			if IsServiceError(err) {
				t.Error("Transport failure must not be reported as a service error")
			}
			if !strings.Contains(err.Error(), tt.wantMessage) {
				t.Errorf("Expected error to mention %q, got %q", tt.wantMessage, err.Error())
			}
		})
	}
}

func TestClient_Convert_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	dir := t.TempDir()
	req := Request{Options: DefaultOptions(), Files: []Upload{writeUpload(t, dir, "a.png", "x")}}

	_, err := NewClient(url).Convert(context.Background(), req)
	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("Expected TransportError, got %T (%v)", err, err)
	}
	if err.Error() == "" {
		t.Error("Transport error should carry a message")
	}
}

func TestClient_Convert_MissingFile(t *testing.T) {
	req := Request{
		Options: DefaultOptions(),
		Files:   []Upload{{Name: "gone.png", Path: filepath.Join(t.TempDir(), "gone.png")}},
	}

	_, err := NewClient("http://127.0.0.1:1").Convert(context.Background(), req)
	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("Expected TransportError, got %T (%v)", err, err)
	}
}

func TestClient_Convert_ReportsProgress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = io.WriteString(w, `{"status":1,"files":[]}`)
	}))
	defer server.Close()

	dir := t.TempDir()
	req := Request{Options: DefaultOptions(), Files: []Upload{writeUpload(t, dir, "a.png", "payload")}}

	var observed bytes.Buffer
	var announced int64
	client := NewClient(server.URL, WithProgress(func(size int64) io.Writer {
		announced = size
		return &observed
	}))

	if _, err := client.Convert(context.Background(), req); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if announced == 0 {
		t.Error("Expected progress func to receive the body size")
	}
	if int64(observed.Len()) != announced {
		t.Errorf("Observed %d bytes, announced %d", observed.Len(), announced)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"WebP", FormatWebP, false},
		{"jpg", FormatJPG, false},
		{"jpeg", FormatJPG, false},
		{"gif", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, expected %q", tt.input, got, tt.want)
			}
		})
	}
}
