package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDoSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/compiler/compile" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("missing content type")
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Trace-ID", "t1")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	client := New(srv.URL+"/", time.Second)
	info, err := client.Do(context.Background(), http.MethodPost, "/api/compiler/compile", nil, []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("do failed: %v", err)
	}
	if info.StatusCode != http.StatusCreated || string(info.Body) != `{"a":1}` {
		t.Fatalf("unexpected response: %d %s", info.StatusCode, info.Body)
	}
	if info.Headers.Get("X-Trace-ID") != "t1" {
		t.Fatalf("headers not captured")
	}
}

func TestDoTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := New(srv.URL, 50*time.Millisecond)
	if _, err := client.Do(context.Background(), http.MethodGet, "/", nil, nil); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestSetters(t *testing.T) {
	client := New("http://a", time.Second)
	client.SetBaseURL("http://b/")
	client.SetTimeout(0)
	if client.BaseURL() != "http://b" || client.Timeout() != time.Second {
		t.Fatalf("unexpected client state: %s %s", client.BaseURL(), client.Timeout())
	}
}
