package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sandevgo/medassist/internal/config"
	"github.com/sandevgo/medassist/internal/core"
	"github.com/sandevgo/medassist/pkg/log"
	"github.com/sandevgo/medassist/pkg/retry"
)

// Client queries the structured vocabulary-search backend. Every attribute
// the backend returns for a record is kept verbatim in Record.Fields, so
// follow-up turns can answer from stored data without a second lookup.
type Client struct {
	client     *http.Client
	retrier    *retry.Retrier
	baseURL    string
	apiKey     string
	keyField   string
	labelField string
	maxResults int
}

func NewClient(cfg *config.SearchConfig) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		retrier:    retry.NewDefaultRetrier(),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		keyField:   cfg.KeyField,
		labelField: cfg.LabelField,
		maxResults: cfg.MaxResults,
	}
}

func (c *Client) Search(ctx context.Context, query string) ([]core.Record, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("search url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(c.maxResults))
	u.RawQuery = q.Encode()

	var data []byte
	err = c.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	records, err := c.decode(data)
	if err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().
		Str("query", query).
		Int("records", len(records)).
		Msg("search completed")

	return records, nil
}

// decode accepts either a bare JSON array or a {"results": [...]} envelope.
func (c *Client) decode(data []byte) ([]core.Record, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		var envelope struct {
			Results []map[string]any `json:"results"`
		}
		if err2 := json.Unmarshal(data, &envelope); err2 != nil {
			return nil, fmt.Errorf("decode results: %w", err)
		}
		raw = envelope.Results
	}

	records := make([]core.Record, 0, len(raw))
	for _, fields := range raw {
		records = append(records, core.Record{
			Key:    stringField(fields, c.keyField),
			Label:  stringField(fields, c.labelField),
			Fields: fields,
		})
	}
	return records, nil
}

func stringField(fields map[string]any, name string) string {
	v, ok := fields[name]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
