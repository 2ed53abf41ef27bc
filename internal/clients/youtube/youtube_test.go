package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

func TestSearchMapsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/search") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "binary search" {
			t.Errorf("q = %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "k" {
			t.Errorf("key = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":{"kind":"youtube#video","videoId":"abc"},"snippet":{"title":"Binary Search &amp; You","channelTitle":"CS","thumbnails":{"medium":{"url":"http://img/m.jpg"}}}},
			{"id":{"kind":"youtube#channel"},"snippet":{"title":"skip me"}}
		]}`))
	}))
	defer srv.Close()

	s, err := New(context.Background(), logger.Nop(), Config{APIKey: "k", Endpoint: srv.URL + "/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := s.Search(context.Background(), "binary search", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 video, got %d", len(out))
	}
	if out[0].VideoID != "abc" || out[0].Title != "Binary Search & You" || out[0].Thumbnail != "http://img/m.jpg" {
		t.Fatalf("unexpected video: %+v", out[0])
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), logger.Nop(), Config{}); err == nil {
		t.Fatal("expected error without API key")
	}
}
