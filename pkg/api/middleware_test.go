package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/segmentio/kafka-go"
)

type chanWriter struct {
	msgs chan kafka.Message
}

func (cw *chanWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		cw.msgs <- m
	}
	return nil
}

func Test_requestIDMiddlewareHeaderExists(t *testing.T) {
	api := &API{}
	wantID := "test-req-id-123"
	handler := api.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotID := GetRequestID(r.Context()); gotID != wantID {
			t.Errorf("want request id in context %q, got %q", wantID, gotID)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", wantID)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-Id"); got != wantID {
		t.Errorf("want X-Request-Id header %q, got %q", wantID, got)
	}
}

func Test_requestIDMiddlewareHeaderNotExists(t *testing.T) {
	api := &API{}
	handler := api.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID := GetRequestID(r.Context())
		if _, err := uuid.FromString(gotID); err != nil {
			t.Errorf("want valid UUID for generated request id, got %q", gotID)
		}
		if respID := w.Header().Get("X-Request-Id"); respID != gotID {
			t.Errorf("want X-Request-Id header %q, got %q", gotID, respID)
		}
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("want status code %v, got %v", http.StatusOK, rr.Code)
	}
}

func Test_headerMiddleware(t *testing.T) {
	api := &API{}
	handler := api.headerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("want Content-Type application/json, got %q", got)
	}
}

func Test_loggingMiddleware(t *testing.T) {
	api := &API{ServiceName: "censorship"}
	kw := &chanWriter{msgs: make(chan kafka.Message, 1)}

	handler := api.requestIDMiddleware(api.loggingMiddleware(kw)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"allowed":false}`)
	})))

	req := httptest.NewRequest(http.MethodPost, "/check", nil)
	req.Header.Set("X-Request-Id", testRequestID)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var msg kafka.Message
	select {
	case msg = <-kw.msgs:
	case <-time.After(5 * time.Second):
		t.Fatal("log entry was not sent")
	}

	var entry LogEntry
	if err := json.Unmarshal(msg.Value, &entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}
	if entry.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("want status code %d, got %d", http.StatusUnprocessableEntity, entry.StatusCode)
	}
	if want := len(`{"allowed":false}`); entry.Size != want {
		t.Errorf("want size %d, got %d", want, entry.Size)
	}
	if entry.RequestID != testRequestID || entry.Path != "/check" || entry.Method != http.MethodPost {
		t.Errorf("unexpected log entry %+v", entry)
	}
	if entry.IP != "10.0.0.1" || entry.Service != "censorship" {
		t.Errorf("unexpected log entry %+v", entry)
	}
}

func Test_shorten(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abcdef", "abcdef"},
		{testRequestID, "9b4f6c..."},
	}

	for _, tt := range tests {
		if got := shorten(tt.in); got != tt.want {
			t.Errorf("shorten(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
