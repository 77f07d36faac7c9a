package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	errs "github.com/figsheet/figsheet/pkg/errors"
)

func testFetcher() *Fetcher {
	f := NewFetcher(nil)
	f.delay = time.Millisecond
	return f
}

func TestFetchBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pages": []}`))
	}))
	defer srv.Close()

	data, err := testFetcher().FetchBytes(context.Background(), srv.URL+"/manifest.json")
	if err != nil {
		t.Fatalf("FetchBytes() error = %v", err)
	}
	if string(data) != `{"pages": []}` {
		t.Errorf("body = %q", data)
	}
}

func TestFetchBytesRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := testFetcher().FetchBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchBytes() error = %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("body = %q", data)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestFetchBytesNotFoundDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher().FetchBytes(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("FetchBytes() = nil, want error")
	}
	if !errs.Is(err, errs.ErrCodeManifestNotFound) {
		t.Errorf("error code = %v, want MANIFEST_NOT_FOUND", errs.GetCode(err))
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (404 must not retry)", calls)
	}
}

func TestFetchBytesBadRequestDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testFetcher().FetchBytes(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("FetchBytes() = nil, want error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestFetchBytesRejectsBadScheme(t *testing.T) {
	_, err := testFetcher().FetchBytes(context.Background(), "ftp://example.com/m.json")
	if err == nil {
		t.Fatal("FetchBytes(ftp) = nil, want error")
	}
	if !strings.Contains(err.Error(), "http") {
		t.Errorf("error = %v, want scheme complaint", err)
	}
}

func TestRetryGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testFetcher().FetchBytes(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("FetchBytes() = nil, want error")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
