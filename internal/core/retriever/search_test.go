package retriever

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"grounded-qa/config"
	"grounded-qa/pkg/apperror"
)

func fakeElastic(t *testing.T, status int, body string, inspect func(r *http.Request, body []byte)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if inspect != nil {
			inspect(r, b)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(addr string) config.SearchConfig {
	cfg := config.Default().Search
	cfg.Address = addr
	cfg.APIKey = "secret"
	return cfg
}

func newTestClient(t *testing.T, cfg config.SearchConfig) *Client {
	t.Helper()
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestSearch_SendsSemanticQuery(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody map[string]any
	)
	srv := fakeElastic(t, http.StatusOK, `{"hits":{"hits":[]}}`, func(r *http.Request, b []byte) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.Unmarshal(b, &gotBody)
	})

	c := newTestClient(t, testConfig(srv.URL))
	hits, err := c.Search(context.Background(), "What is the return policy?")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("expected no hits, got %d", len(hits))
	}
	if gotPath != "/general-rules/_search" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "APIKey secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}

	semantic := gotBody["query"].(map[string]any)["semantic"].(map[string]any)
	if semantic["field"] != "content.semantic" || semantic["query"] != "What is the return policy?" {
		t.Fatalf("unexpected semantic query %v", semantic)
	}
	hl := gotBody["highlight"].(map[string]any)["fields"].(map[string]any)["content.semantic"].(map[string]any)
	if hl["order"] != "score" || hl["number_of_fragments"] != float64(1) {
		t.Fatalf("unexpected highlight options %v", hl)
	}
}

func TestSearch_ParsesHitsInOrder(t *testing.T) {
	body := `{"hits":{"hits":[
		{"_index":"general-rules","_id":"a","_score":2.5,"_source":{"content":"full text"},
		 "highlight":{"title":["t1"],"content.semantic":["c1","c2"]}},
		{"_index":"general-rules","_id":"b","_score":1.0,"_source":{"content":"second","page":3}},
		{"_index":"general-rules","_id":"c","highlight":{}}
	]}}`
	srv := fakeElastic(t, http.StatusOK, body, nil)

	hits, err := newTestClient(t, testConfig(srv.URL)).Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}

	first := hits[0]
	if first.ID != "a" || first.Score != 2.5 || !first.HasHighlight {
		t.Fatalf("unexpected first hit %+v", first)
	}
	if len(first.Highlight) != 2 || first.Highlight[0].Field != "title" || first.Highlight[1].Field != "content.semantic" {
		t.Fatalf("highlight order not preserved: %+v", first.Highlight)
	}
	if got := first.Highlight[1].Fragments; len(got) != 2 || got[0] != "c1" || got[1] != "c2" {
		t.Fatalf("unexpected fragments %v", got)
	}

	second := hits[1]
	if second.HasHighlight {
		t.Fatalf("second hit has no highlight")
	}
	if second.Source["content"] != "second" {
		t.Fatalf("unexpected source %v", second.Source)
	}
	if n, ok := second.Source["page"].(json.Number); !ok || n.String() != "3" {
		t.Fatalf("expected json.Number 3, got %#v", second.Source["page"])
	}

	if !hits[2].HasHighlight || len(hits[2].Highlight) != 0 {
		t.Fatalf("empty highlight object must count as present: %+v", hits[2])
	}
}

func TestSearch_ServiceErrorOnRejectedRequest(t *testing.T) {
	srv := fakeElastic(t, http.StatusUnauthorized, `{"error":"missing authentication credentials"}`, nil)

	_, err := newTestClient(t, testConfig(srv.URL)).Search(context.Background(), "q")
	if !errors.Is(err, apperror.ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
}

func TestSearch_ServiceErrorWhenUnreachable(t *testing.T) {
	srv := fakeElastic(t, http.StatusOK, `{}`, nil)
	addr := srv.URL
	srv.Close()

	_, err := newTestClient(t, testConfig(addr)).Search(context.Background(), "q")
	if !errors.Is(err, apperror.ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
}

func TestSearch_MalformedWithoutHitList(t *testing.T) {
	srv := fakeElastic(t, http.StatusOK, `{"took":3}`, nil)

	_, err := newTestClient(t, testConfig(srv.URL)).Search(context.Background(), "q")
	if !errors.Is(err, apperror.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestNewClient_CertificateVerification(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		_, _ = io.WriteString(w, `{"hits":{"hits":[]}}`)
	}))
	defer srv.Close()

	verified := testConfig(srv.URL)
	verified.VerifyCertificates = true
	if _, err := newTestClient(t, verified).Search(context.Background(), "q"); !errors.Is(err, apperror.ErrService) {
		t.Fatalf("expected self-signed certificate to be rejected, got %v", err)
	}

	insecure := testConfig(srv.URL)
	insecure.VerifyCertificates = false
	if _, err := newTestClient(t, insecure).Search(context.Background(), "q"); err != nil {
		t.Fatalf("expected insecure mode to accept the certificate, got %v", err)
	}
}

func TestPing(t *testing.T) {
	srv := fakeElastic(t, http.StatusOK, `{"version":{"number":"8.15.0"}}`, nil)
	if err := newTestClient(t, testConfig(srv.URL)).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	down := fakeElastic(t, http.StatusServiceUnavailable, `{}`, nil)
	if err := newTestClient(t, testConfig(down.URL)).Ping(context.Background()); !errors.Is(err, apperror.ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
}
