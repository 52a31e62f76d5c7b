// Package firestore stores building documents in Cloud Firestore through its
// REST API. Documents live in the apps/<app>/buildings collection.
package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"time"

	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the public Firestore REST endpoint.
const DefaultBaseURL = "https://firestore.googleapis.com/v1"

// Options configures a Client.
type Options struct {
	BaseURL string
	Project string
	APIKey  string
	AppID   string
	Timeout time.Duration
}

// Client is a domain.BuildingStore backed by Firestore.
type Client struct {
	http   *resty.Client
	docs   string // documents root path relative to BaseURL
	appID  string
	logger *slog.Logger
}

// NewClient creates a Firestore REST client.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if opts.APIKey != "" {
		client.SetQueryParam("key", opts.APIKey)
	}

	return &Client{
		http:   client,
		docs:   fmt.Sprintf("/projects/%s/databases/(default)/documents", opts.Project),
		appID:  opts.AppID,
		logger: logger,
	}
}

type document struct {
	Name   string           `json:"name,omitempty"`
	Fields map[string]value `json:"fields"`
}

type runQueryResult struct {
	Document *document `json:"document,omitempty"`
}

type fieldFilter struct {
	Field struct {
		FieldPath string `json:"fieldPath"`
	} `json:"field"`
	Op    string `json:"op"`
	Value value  `json:"value"`
}

type filter struct {
	FieldFilter     *fieldFilter     `json:"fieldFilter,omitempty"`
	CompositeFilter *compositeFilter `json:"compositeFilter,omitempty"`
}

type compositeFilter struct {
	Op      string   `json:"op"`
	Filters []filter `json:"filters"`
}

type structuredQuery struct {
	From []struct {
		CollectionID string `json:"collectionId"`
	} `json:"from"`
	Where filter `json:"where"`
	Limit int    `json:"limit"`
}

func equals(fieldPath, s string) filter {
	f := &fieldFilter{Op: "EQUAL", Value: stringValue(s)}
	f.Field.FieldPath = fieldPath
	return filter{FieldFilter: f}
}

func buildingQuery(name, year string) map[string]structuredQuery {
	q := structuredQuery{
		Where: filter{CompositeFilter: &compositeFilter{
			Op:      "AND",
			Filters: []filter{equals("name", name), equals("year", year)},
		}},
		Limit: 1,
	}
	q.From = append(q.From, struct {
		CollectionID string `json:"collectionId"`
	}{CollectionID: "buildings"})
	return map[string]structuredQuery{"structuredQuery": q}
}

// FindBuilding runs a structured query on the app's buildings collection.
func (c *Client) FindBuilding(ctx context.Context, name, year string) (domain.Building, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(buildingQuery(name, year)).
		Post(fmt.Sprintf("%s/apps/%s:runQuery", c.docs, url.PathEscape(c.appID)))
	if err != nil {
		return domain.Building{}, fmt.Errorf("firestore run query: %w", err)
	}
	if resp.IsError() {
		return domain.Building{}, fmt.Errorf("firestore run query: %s: %s", resp.Status(), resp.String())
	}

	var results []runQueryResult
	if err := json.Unmarshal(resp.Body(), &results); err != nil {
		return domain.Building{}, fmt.Errorf("decode run query response: %w", err)
	}
	for _, r := range results {
		if r.Document == nil {
			continue
		}
		var b domain.Building
		if err := decodeFields(r.Document.Fields, &b); err != nil {
			return domain.Building{}, fmt.Errorf("decode building %s: %w", r.Document.Name, err)
		}
		b.ID = path.Base(r.Document.Name)
		return b, nil
	}
	return domain.Building{}, domain.ErrBuildingNotFound
}

// SaveBuilding writes every top-level field of b to its document, creating
// the document when it does not exist.
func (c *Client) SaveBuilding(ctx context.Context, b domain.Building) error {
	fields, err := encodeFields(b)
	if err != nil {
		return fmt.Errorf("encode building %s: %w", b.ID, err)
	}
	delete(fields, "id")

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(url.Values{"updateMask.fieldPaths": fieldPaths(fields)}).
		SetBody(document{Fields: fields}).
		Patch(fmt.Sprintf("%s/apps/%s/buildings/%s", c.docs, url.PathEscape(c.appID), url.PathEscape(b.ID)))
	if err != nil {
		return fmt.Errorf("firestore patch: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("firestore patch %s: %s: %s", b.ID, resp.Status(), resp.String())
	}

	c.logger.Debug("building saved", "building", b.Name, "year", b.Year, "id", b.ID)
	return nil
}
