package retriever

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"grounded-qa/config"
	"grounded-qa/pkg/apperror"
	"grounded-qa/pkg/apperror/status"
	"grounded-qa/pkg/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/tidwall/gjson"
)

const serviceName = "elasticsearch"

// Client runs semantic queries against a single index. It is built once at
// start-up and is safe for concurrent use.
type Client struct {
	es  *elasticsearch.Client
	cfg config.SearchConfig
}

// NewClient builds the Elasticsearch client. Retries are disabled and TLS
// verification follows cfg.VerifyCertificates.
func NewClient(cfg config.SearchConfig) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !cfg.VerifyCertificates} //nolint:gosec // opt-in via config
	if !cfg.VerifyCertificates {
		logger.Warn("%v: certificate verification disabled for %s", config.ModuleSearch, cfg.Address)
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{cfg.Address},
		APIKey:       cfg.APIKey,
		Transport:    transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%v: new client: %w", config.ModuleSearch, err)
	}
	if cfg.NumberOfFragments <= 0 {
		cfg.NumberOfFragments = 1
	}
	return &Client{es: es, cfg: cfg}, nil
}

type semanticQuery struct {
	Field string `json:"field"`
	Query string `json:"query"`
}

type highlightOptions struct {
	Order             string `json:"order"`
	NumberOfFragments int    `json:"number_of_fragments"`
}

type searchRequest struct {
	Query struct {
		Semantic semanticQuery `json:"semantic"`
	} `json:"query"`
	Highlight struct {
		Fields map[string]highlightOptions `json:"fields"`
	} `json:"highlight"`
}

func (c *Client) buildRequest(query string) searchRequest {
	var req searchRequest
	req.Query.Semantic = semanticQuery{Field: c.cfg.SemanticField, Query: query}
	req.Highlight.Fields = map[string]highlightOptions{
		c.cfg.SemanticField: {Order: "score", NumberOfFragments: c.cfg.NumberOfFragments},
	}
	return req
}

// Search issues one semantic query and returns the hits in the order the
// service ranked them. Hits are not filtered or re-ranked.
func (c *Client) Search(ctx context.Context, query string) ([]Hit, error) {
	body, err := json.Marshal(c.buildRequest(query))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.cfg.Index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		logger.Error(err, "%v: search request failed", config.ModuleSearch)
		return nil, apperror.Service(status.SearchServiceFailed, serviceName, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperror.Service(status.SearchServiceFailed, serviceName, err)
	}
	if res.IsError() {
		err := fmt.Errorf("%s: %s", res.Status(), truncate(raw, 512))
		logger.Error(err, "%v: search rejected", config.ModuleSearch)
		return nil, apperror.Service(status.SearchServiceFailed, serviceName, err)
	}

	hits, err := parseHits(raw)
	if err != nil {
		logger.Error(err, "%v: decode search response failed", config.ModuleSearch)
		return nil, err
	}
	logger.WithFields(map[string]interface{}{
		"index":      c.cfg.Index,
		"hits":       len(hits),
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("search: done")
	return hits, nil
}

// Ping checks that the cluster answers and accepts the API key.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return apperror.Service(status.SearchServiceFailed, serviceName, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return apperror.Service(status.SearchServiceFailed, serviceName, fmt.Errorf("%s", res.Status()))
	}
	return nil
}

func parseHits(raw []byte) ([]Hit, error) {
	if !gjson.ValidBytes(raw) {
		return nil, apperror.Malformed(status.SearchMalformedResponse, "search response is not valid json")
	}
	list := gjson.GetBytes(raw, "hits.hits")
	if !list.IsArray() {
		return nil, apperror.Malformed(status.SearchMalformedResponse, "search response has no hits.hits array")
	}

	items := list.Array()
	hits := make([]Hit, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, apperror.Malformed(status.SearchMalformedResponse, "hit %d is not an object", i)
		}
		h := Hit{
			ID:    item.Get("_id").String(),
			Index: item.Get("_index").String(),
			Score: item.Get("_score").Float(),
		}
		if src := item.Get("_source"); src.IsObject() {
			dec := json.NewDecoder(bytes.NewReader([]byte(src.Raw)))
			dec.UseNumber()
			if err := dec.Decode(&h.Source); err != nil {
				return nil, apperror.Malformed(status.SearchMalformedResponse, "hit %d: _source: %v", i, err)
			}
		}
		if hl := item.Get("highlight"); hl.Exists() {
			if !hl.IsObject() {
				return nil, apperror.Malformed(status.SearchMalformedResponse, "hit %d: highlight is not an object", i)
			}
			h.HasHighlight = true
			// ForEach walks keys in document order.
			hl.ForEach(func(key, value gjson.Result) bool {
				f := HighlightField{Field: key.String()}
				for _, frag := range value.Array() {
					f.Fragments = append(f.Fragments, frag.String())
				}
				h.Highlight = append(h.Highlight, f)
				return true
			})
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
