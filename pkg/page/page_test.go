package page

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const samplePage = `<!DOCTYPE html>
<html lang="pl-PL"><head><title>Słówka</title></head>
<body><article><h1>Słówka</h1>
<p>Kilka słówek do nauki na dziś, każde z tłumaczeniem na angielski.</p>
<div data-fcard-item><span lang="en">dog</span> <span lang="pl">pies</span></div>
</article></body></html>`

func TestLoadFromServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
			t.Errorf("expected browser-like user agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	p, err := NewLoader(5*time.Second).Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Lang != "pl-PL" {
		t.Errorf("expected lang pl-PL, got %q", p.Lang)
	}
	if !strings.Contains(p.Title, "Słówka") {
		t.Errorf("expected title to contain Słówka, got %q", p.Title)
	}
	doc, err := p.Parse()
	if err != nil || doc == nil {
		t.Fatalf("Parse failed: %v", err)
	}
}

func TestLoadRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := NewLoader(time.Second).Load(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for 403 response")
	}
}

func TestLoadRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	l := NewLoader(time.Second)
	l.MaxBodySize = 16
	if _, err := l.Load(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected size limit error")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(samplePage), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	p, err := NewLoader(0).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Location != path {
		t.Errorf("unexpected location %q", p.Location)
	}
	if string(p.Bytes()) != samplePage {
		t.Errorf("raw bytes not preserved")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := NewLoader(0).Load(context.Background(), filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
