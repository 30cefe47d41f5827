package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"
)

type loadMode string

const (
	modeBrowse loadMode = "browse"
	modeCart   loadMode = "cart"
	modeOrder  loadMode = "order"
)

func parseMode(value string) (loadMode, error) {
	switch mode := loadMode(value); mode {
	case modeBrowse, modeCart, modeOrder:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

// deskClient вызывает HTTP API стойки и пишет каждый вызов в collector.
type deskClient struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	col     *collector
}

type statusError struct {
	step   string
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.step, e.status, e.body)
}

func (c *deskClient) do(ctx context.Context, step, method, path string, body any, want ...int) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", step, err)
		}
		reader = bytes.NewReader(raw)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", step, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		status := "transport_error"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "timeout"
		}
		c.col.record(step, time.Since(start), status, false)
		return nil, fmt.Errorf("%s: %w", step, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	ok := err == nil && slices.Contains(want, resp.StatusCode)
	c.col.record(step, time.Since(start), strconv.Itoa(resp.StatusCode), ok)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", step, err)
	}
	if !ok {
		return nil, &statusError{step: step, status: resp.StatusCode, body: string(payload)}
	}
	return payload, nil
}

// runScenario проходит путь продавца на стойке: сессия, поиск, клиент,
// корзина и, в режиме order, подтверждение заказа.
func runScenario(ctx context.Context, client *deskClient, cfg config, index int) (err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "failed"
		}
		client.col.record(scenarioStep, time.Since(start), status, err == nil)
	}()

	raw, err := client.do(ctx, "CreateSession", http.MethodPost, "/api/v1/sessions", nil, http.StatusCreated)
	if err != nil {
		return err
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &created); err != nil || created.ID == "" {
		return fmt.Errorf("CreateSession: response has no session id")
	}
	base := "/api/v1/sessions/" + url.PathEscape(created.ID)
	defer func() {
		_, _ = client.do(context.Background(), "CloseSession", http.MethodDelete, base, nil, http.StatusNoContent)
	}()

	if _, err := client.do(ctx, "SearchCustomers", http.MethodGet, base+"/customers?q="+url.QueryEscape(cfg.customerQuery), nil, http.StatusOK); err != nil {
		return err
	}
	if _, err := client.do(ctx, "SearchArticles", http.MethodGet, base+"/articles?q="+url.QueryEscape(cfg.article), nil, http.StatusOK); err != nil {
		return err
	}
	if cfg.mode == modeBrowse {
		return nil
	}

	if _, err := client.do(ctx, "SelectCustomer", http.MethodPost, base+"/customer",
		map[string]int{"index": cfg.customerIndex}, http.StatusOK); err != nil {
		return err
	}
	quantity := 1 + index%cfg.maxQuantity
	if _, err := client.do(ctx, "AddArticle", http.MethodPost, base+"/cart/items",
		map[string]any{"articleNumber": cfg.article, "quantity": quantity}, http.StatusCreated, http.StatusOK); err != nil {
		return err
	}
	if cfg.mode == modeCart {
		return nil
	}

	if _, err := client.do(ctx, "FinalizeOrder", http.MethodPost, base+"/order", nil, http.StatusOK); err != nil {
		return err
	}
	_, err = client.do(ctx, "CompleteOrder", http.MethodPost, base+"/order/complete", nil, http.StatusOK)
	return err
}
