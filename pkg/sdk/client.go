// Package sdk provides the client-side library for the newsdesk queue: a
// remote HTTP client, a list cache, and the optimistic-mutation coordinator
// that keeps cached lists consistent with server truth.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

// Client is a remote client for the newsdesk HTTP API.
// It implements the Newsdesk interface.
type Client struct {
	baseURL string
	http    *http.Client
}

// Connect builds a client for the daemon at addr (host:port or full URL).
func Connect(addr string) *Client {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Ping checks the daemon health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		OK bool `json:"ok"`
	}
	return c.do(ctx, http.MethodGet, "/api/health", nil, &out)
}

func (c *Client) ListArticles(ctx context.Context, params schema.ListParams) (schema.ListResult, error) {
	var result schema.ListResult
	err := c.do(ctx, http.MethodGet, "/api/articles?"+encodeListParams(params), nil, &result)
	return result, err
}

func (c *Client) GetArticle(ctx context.Context, id string) (schema.Article, error) {
	var a schema.Article
	err := c.do(ctx, http.MethodGet, "/api/articles/"+url.PathEscape(id), nil, &a)
	return a, err
}

func (c *Client) PatchArticle(ctx context.Context, id string, patch schema.ArticlePatch) (schema.Article, error) {
	var a schema.Article
	err := c.do(ctx, http.MethodPatch, "/api/articles/"+url.PathEscape(id), patch, &a)
	return a, err
}

func (c *Client) ScheduleArticle(ctx context.Context, id string, scheduledAt string) (schema.Article, error) {
	var a schema.Article
	body := map[string]string{"scheduledAt": scheduledAt}
	err := c.do(ctx, http.MethodPost, "/api/articles/"+url.PathEscape(id)+"/schedule", body, &a)
	return a, err
}

func (c *Client) CreateArticle(ctx context.Context, draft schema.Article) (schema.Article, error) {
	var a schema.Article
	err := c.do(ctx, http.MethodPost, "/api/articles", draft, &a)
	return a, err
}

// do sends one API request, retrying transport failures up to 3 times with
// backoff. HTTP-level errors (4xx/5xx) are never retried.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		err = decodeResponse(resp, out)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("request failed after 3 attempts: %w", lastErr)
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return ErrArticleNotFound
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil {
			if apiErr.Error != "" {
				return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
			}
			if apiErr.Message != "" {
				return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Message)
			}
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// encodeListParams builds the canonical query string for a list request.
// The same encoding doubles as the cache key suffix, so identical parameter
// sets always hit the same cache entry.
func encodeListParams(p schema.ListParams) string {
	p = p.Normalize()

	sp := url.Values{}
	sp.Set("page", strconv.Itoa(p.Page))
	sp.Set("pageSize", strconv.Itoa(p.PageSize))
	if p.Query != "" {
		sp.Set("q", p.Query)
	}
	sp.Set("sort", p.Sort)
	sp.Set("order", p.Order)
	for _, v := range p.Status {
		sp.Add("status", v)
	}
	for _, v := range p.Region {
		sp.Add("region", v)
	}
	for _, v := range p.Category {
		sp.Add("category", v)
	}
	for _, v := range p.Priority {
		sp.Add("priority", v)
	}
	return sp.Encode()
}
