package moysklad

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/OlegEV/moysklad-autoproduction/internal/domain"
)

// Doer executes a single HTTP request. Both the plain pooled client and
// the circuit-breaker wrapper satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the settings for the MoySklad API client.
type Config struct {
	BaseURL       string
	Token         string
	TriggerEntity string // "demand" or "customerorder"
	HTTPClient    Doer
	Logger        *slog.Logger
}

// Client talks to the MoySklad JSON API 1.2. It performs no retries:
// failures propagate to the caller immediately.
type Client struct {
	baseURL string
	token   string
	docKind string
	http    Doer
	logger  *slog.Logger
}

// New creates a MoySklad API client.
func New(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		token:   cfg.Token,
		docKind: cfg.TriggerEntity,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
	}
}

// FindStoreByName searches warehouses by exact name. Returns nil when no
// warehouse matches.
func (c *Client) FindStoreByName(ctx context.Context, name string) (*domain.EntityRef, error) {
	path := "/entity/store?filter=name=" + url.QueryEscape(name)
	list, err := get[domain.List[domain.EntityRef]](ctx, c, path)
	if err != nil {
		return nil, err
	}
	return list.First(), nil
}

// ProductStock returns the available balance (stock minus reserve) of an
// assortment item on one store. Items absent from the report have zero
// available balance.
func (c *Client) ProductStock(ctx context.Context, productID, storeID string) (float64, error) {
	list, err := get[domain.List[domain.StockLine]](ctx, c, "/report/stock/bystore?limit=1000")
	if err != nil {
		return 0, err
	}

	for _, line := range list.Rows {
		if line.Meta.EntityID() != productID {
			continue
		}
		for _, ss := range line.StockByStore {
			if ss.Meta.EntityID() == storeID {
				return ss.Available(), nil
			}
		}
	}
	return 0, nil
}

// Product fetches a product card with its custom fields expanded.
func (c *Client) Product(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := get[domain.Product](ctx, c, "/entity/product/"+productID+"?expand=attributes")
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindProcessingPlanByName searches tech cards by exact name, with the
// material and product rows expanded. Returns nil when nothing matches.
func (c *Client) FindProcessingPlanByName(ctx context.Context, name string) (*domain.ProcessingPlan, error) {
	path := "/entity/processingplan?filter=name=" + url.QueryEscape(name) + "&expand=materials,products"
	list, err := get[domain.List[domain.ProcessingPlan]](ctx, c, path)
	if err != nil {
		return nil, err
	}
	return list.First(), nil
}

// CreateProcessing creates a production operation in draft state.
func (c *Client) CreateProcessing(ctx context.Context, req domain.CreateProcessingRequest) (*domain.Processing, error) {
	p, err := send[domain.Processing](ctx, c, http.MethodPost, "/entity/processing", req)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ApplyProcessing confirms a production operation so the stock movement
// takes effect.
func (c *Client) ApplyProcessing(ctx context.Context, processingID string) (*domain.Processing, error) {
	body := domain.ApplyProcessingRequest{Applicable: true}
	p, err := send[domain.Processing](ctx, c, http.MethodPut, "/entity/processing/"+processingID, body)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Organization returns the account's first organization, or nil when the
// account has none.
func (c *Client) Organization(ctx context.Context) (*domain.EntityRef, error) {
	list, err := get[domain.List[domain.EntityRef]](ctx, c, "/entity/organization")
	if err != nil {
		return nil, err
	}
	return list.First(), nil
}

// Document fetches the trigger document by ID with positions, store,
// organization, and agent expanded. The entity kind is fixed at client
// construction.
func (c *Client) Document(ctx context.Context, documentID string) (*domain.TriggerDocument, error) {
	path := fmt.Sprintf("/entity/%s/%s?expand=positions,store,organization,agent", c.docKind, documentID)
	doc, err := get[domain.TriggerDocument](ctx, c, path)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	return do[T](ctx, c, http.MethodGet, path, nil)
}

func send[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T
	payload, err := json.Marshal(body)
	if err != nil {
		return zero, fmt.Errorf("marshal %s %s body: %w", method, path, err)
	}
	return do[T](ctx, c, method, path, payload)
}

func do[T any](ctx context.Context, c *Client, method, path string, body []byte) (T, error) {
	var zero T

	op := method + " " + path
	u := c.baseURL + path

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return zero, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json;charset=utf-8")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.DebugContext(ctx, "moysklad request", slog.String("method", method), slog.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnContext(ctx, "moysklad api error",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
		)
		return zero, &RemoteError{Status: resp.StatusCode, Body: string(raw)}
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, &DecodeError{Op: op, Err: err}
	}
	return out, nil
}
