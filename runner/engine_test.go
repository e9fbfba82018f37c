package runner

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restlab/collection"
)

func TestExecuteSuccess(t *testing.T) {
	var gotBody string
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotHeader = r.Header.Get("X-Req")
		w.Header().Set("X-One", "a")
		w.Header().Add("X-Many", "1")
		w.Header().Add("X-Many", "2")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"u1"}`))
	}))
	defer server.Close()

	engine := NewEngine(5 * time.Second)
	response := engine.Execute(context.Background(), ExecutableRequest{
		Method:  "POST",
		URL:     server.URL + "/users",
		Headers: []collection.Header{{Key: "X-Req", Value: "r"}},
		Body:    `{"name":"a"}`,
	})

	if response.Status != 201 {
		t.Errorf("Status = %d", response.Status)
	}
	if response.StatusText != "Created" {
		t.Errorf("StatusText = %q", response.StatusText)
	}
	if response.Data != `{"id":"u1"}` {
		t.Errorf("Data = %q", response.Data)
	}
	if response.Size != int64(len(`{"id":"u1"}`)) {
		t.Errorf("Size = %d", response.Size)
	}
	if response.Headers["X-One"] != "a" {
		t.Errorf("Headers = %v", response.Headers)
	}
	if response.Headers["X-Many"] != "1, 2" {
		t.Errorf("Multi-valued header = %q, want joined with comma-space", response.Headers["X-Many"])
	}
	if gotBody != `{"name":"a"}` {
		t.Errorf("Server received body %q", gotBody)
	}
	if gotHeader != "r" {
		t.Errorf("Server received X-Req %q", gotHeader)
	}
}

func TestExecuteTransportFailure(t *testing.T) {
	engine := NewEngine(2 * time.Second)

	// Nothing listens here; the call must come back as a value
	response := engine.Execute(context.Background(), ExecutableRequest{
		Method: "GET",
		URL:    "http://127.0.0.1:1/unreachable",
	})

	if response.Status != 0 {
		t.Errorf("Status = %d, want 0", response.Status)
	}
	if response.StatusText != "Error" {
		t.Errorf("StatusText = %q", response.StatusText)
	}
	if response.Data == "" {
		t.Error("Data must carry the classified message")
	}
	if response.Headers == nil || len(response.Headers) != 0 {
		t.Errorf("Headers = %v, want empty map", response.Headers)
	}
}

func TestExecuteInvalidURL(t *testing.T) {
	engine := NewEngine(time.Second)
	response := engine.Execute(context.Background(), ExecutableRequest{
		Method: "GET",
		URL:    "://missing-scheme",
	})

	if response.Status != 0 {
		t.Errorf("Status = %d, want 0", response.Status)
	}
}

func TestExecuteMultipartUpload(t *testing.T) {
	var gotContentType string
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	engine := NewEngine(5 * time.Second)
	response := engine.Execute(context.Background(), ExecutableRequest{
		Method: "POST",
		URL:    server.URL + "/upload",
		FormData: []collection.FormDataItem{
			{Key: "a", Value: "x", Type: "text"},
			{Key: "f", Value: "y.png", Type: "file", FileName: "y.png", FileData: "aGVsbG8="},
		},
	})

	if response.Status != 200 {
		t.Fatalf("Status = %d, data = %q", response.Status, response.Data)
	}
	if !strings.HasPrefix(gotContentType, "multipart/form-data; boundary=") {
		t.Errorf("Content-Type = %q", gotContentType)
	}

	boundary := strings.TrimPrefix(gotContentType, "multipart/form-data; boundary=")
	if strings.Count(gotBody, "--"+boundary+"\r\n") != 2 {
		t.Errorf("Body has %d part headers, want 2:\n%s", strings.Count(gotBody, "--"+boundary+"\r\n"), gotBody)
	}
	if strings.Count(gotBody, "--"+boundary+"--\r\n") != 1 {
		t.Errorf("Body has no single terminator:\n%s", gotBody)
	}
	if !strings.Contains(gotBody, `filename="y.png"`) {
		t.Errorf("File part missing filename:\n%s", gotBody)
	}
	if !strings.Contains(gotBody, "hello") {
		t.Errorf("File data must be base64-decoded:\n%s", gotBody)
	}
	if !strings.Contains(gotBody, "Content-Type: application/octet-stream") {
		t.Errorf("File part missing content type:\n%s", gotBody)
	}
}

func TestEncodeMultipartSkipsBlankKeys(t *testing.T) {
	body := encodeMultipart([]collection.FormDataItem{
		{Key: "  ", Value: "skipped", Type: "text"},
		{Key: "a", Value: "x", Type: "text"},
	}, "B")

	if strings.Contains(body, "skipped") {
		t.Errorf("Blank-key field must be dropped:\n%s", body)
	}
	if strings.Count(body, "--B\r\n") != 1 {
		t.Errorf("Body = %q", body)
	}
}

func TestExecuteContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	engine := NewEngine(10 * time.Second)
	response := engine.Execute(ctx, ExecutableRequest{Method: "GET", URL: server.URL})

	if response.Status != 0 {
		t.Errorf("Status = %d, want 0 after cancellation", response.Status)
	}
}
