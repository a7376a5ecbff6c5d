package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Slok9931/WriteStream/pkg/hash"
)

func TestContentService_LocalPinAndFetch(t *testing.T) {
	svc := NewContentService("", "", "")
	ctx := context.Background()

	body := []byte("# My article\n\nsome text")
	id, err := svc.Pin(ctx, "article.md", body)
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	if !hash.IsLocalContentID(id) {
		t.Errorf("local pin returned non-local id %q", id)
	}

	got, err := svc.Fetch(ctx, id)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("fetched body = %q, want %q", got, body)
	}
}

func TestContentService_LocalPinIsContentAddressed(t *testing.T) {
	svc := NewContentService("", "", "")
	ctx := context.Background()

	a, _ := svc.Pin(ctx, "a.md", []byte("same"))
	b, _ := svc.Pin(ctx, "b.md", []byte("same"))
	c, _ := svc.Pin(ctx, "c.md", []byte("different"))

	if a != b {
		t.Errorf("identical content got different ids: %s vs %s", a, b)
	}
	if a == c {
		t.Error("different content got the same id")
	}
}

func TestContentService_FetchUnknownHash(t *testing.T) {
	svc := NewContentService("", "", "")

	_, err := svc.Fetch(context.Background(), "local-deadbeef")
	if !errors.Is(err, ErrContentNotFound) {
		t.Errorf("err = %v, want ErrContentNotFound", err)
	}
}

func TestContentService_RemotePin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("pinata_api_key") != "key" || r.Header.Get("pinata_secret_api_key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"IpfsHash": "QmTestHash123",
			"PinSize":  42,
		})
	}))
	defer srv.Close()

	svc := NewContentService("key", "secret", srv.URL)
	svc.pinURL = srv.URL

	id, err := svc.Pin(context.Background(), "article.md", []byte("body"))
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	if id != "QmTestHash123" {
		t.Errorf("id = %q, want QmTestHash123", id)
	}
}

func TestContentService_RemotePinErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	svc := NewContentService("key", "secret", srv.URL)
	svc.pinURL = srv.URL

	if _, err := svc.Pin(context.Background(), "a.md", []byte("body")); err == nil {
		t.Error("expected error on forbidden response")
	}
}

func TestContentService_GatewayFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ipfs/QmKnown":
			w.Write([]byte("remote body"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := NewContentService("key", "secret", srv.URL)

	got, err := svc.Fetch(context.Background(), "QmKnown")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(got) != "remote body" {
		t.Errorf("body = %q, want %q", got, "remote body")
	}

	if _, err := svc.Fetch(context.Background(), "QmMissing"); !errors.Is(err, ErrContentNotFound) {
		t.Errorf("err = %v, want ErrContentNotFound", err)
	}
}
