package scholar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/literature-aggregator/pkg/types"
)

func newScrapeServer(t *testing.T, handler http.HandlerFunc) *cloudScrapeBackend {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	orig := cloudScrapeBase
	cloudScrapeBase = ts.URL
	t.Cleanup(func() { cloudScrapeBase = orig })

	return newCloudScrapeBackend(types.ScholarConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "test/0.1",
		},
		CloudScrapeAPIKey: "test-key",
	})
}

func TestCloudScrapeFetch(t *testing.T) {
	var gotAuth, gotUA string
	var gotReq scrapeRequest
	backend := newScrapeServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"markdown": sampleResultsMarkdown},
		})
	})

	papers, err := backend.fetchPapers(context.Background(), scholarBase+"?q=circadian", 10)
	if err != nil {
		t.Fatalf("fetchPapers: %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotUA != "test/0.1" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotReq.URL != scholarBase+"?q=circadian" {
		t.Errorf("request URL = %q", gotReq.URL)
	}
	if len(gotReq.Formats) != 1 || gotReq.Formats[0] != "markdown" {
		t.Errorf("request formats = %v", gotReq.Formats)
	}

	if len(papers) != 2 {
		t.Fatalf("len(papers) = %d, want 2", len(papers))
	}
	for _, p := range papers {
		if p.SearchMethod != types.MethodCloudScrape {
			t.Errorf("SearchMethod = %q, want %q", p.SearchMethod, types.MethodCloudScrape)
		}
	}
}

func TestCloudScrapeServiceError(t *testing.T) {
	backend := newScrapeServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "rate limit exceeded",
		})
	})

	_, err := backend.fetchPapers(context.Background(), scholarBase, 10)
	if err == nil || !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("expected service error, got: %v", err)
	}
}

func TestCloudScrapeHTTPError(t *testing.T) {
	backend := newScrapeServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	_, err := backend.fetchPapers(context.Background(), scholarBase, 10)
	if err == nil || !strings.Contains(err.Error(), "HTTP 403") {
		t.Errorf("expected HTTP 403 error, got: %v", err)
	}
}

func TestCloudScrapeMalformedPayload(t *testing.T) {
	backend := newScrapeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := backend.fetchPapers(context.Background(), scholarBase, 10)
	if err == nil || !strings.Contains(err.Error(), "malformed payload") {
		t.Errorf("expected malformed payload error, got: %v", err)
	}
}
