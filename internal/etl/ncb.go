package etl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bangtanmom/contentsync/pkg/models"
	"github.com/bangtanmom/contentsync/pkg/utils"
)

// maxResponseSize caps how much of a backend response is read.
const maxResponseSize = 32 << 20

// NCBGateway talks to the no-code backend data API. Every call carries the
// static API key as a bearer token. Nothing is retried.
type NCBGateway struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewNCBGateway returns a gateway for the data API at baseURL.
func NewNCBGateway(baseURL, apiKey string, timeout time.Duration) *NCBGateway {
	return &NCBGateway{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

// Extract issues GET {base}/read/{collection}?Instance={instance}&limit={limit}.
func (g *NCBGateway) Extract(ctx context.Context, instance, collection string, limit int) ([]models.Record, error) {
	q := url.Values{"Instance": {instance}, "limit": {strconv.Itoa(limit)}}
	endpoint := fmt.Sprintf("%s/read/%s?%s", g.BaseURL, url.PathEscape(collection), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	body, err := g.do(req, "read", instance, collection)
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("read %s on %s: %w", collection, instance, err)
	}
	slog.Debug("Read records", "instance", instance, "collection", collection, "count", len(rows))
	return rows, nil
}

// Load issues POST {base}/create/{collection}?Instance={instance} with record
// as the JSON body.
func (g *NCBGateway) Load(ctx context.Context, instance, collection string, record models.Record) (models.Receipt, error) {
	q := url.Values{"Instance": {instance}}
	endpoint := fmt.Sprintf("%s/create/%s?%s", g.BaseURL, url.PathEscape(collection), q.Encode())

	payload, err := json.Marshal(record)
	if err != nil {
		return models.Receipt{}, fmt.Errorf("encode %s record: %w", collection, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return models.Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := g.do(req, "create", instance, collection)
	if err != nil {
		return models.Receipt{}, err
	}
	return decodeReceipt(body), nil
}

// do sends req and returns the decoded JSON body, or an *UpstreamError when
// the status is not 2xx or the body flags a failure.
func (g *NCBGateway) do(req *http.Request, op, instance, collection string) (any, error) {
	req.Header.Set("Authorization", "Bearer "+g.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s on %s: %w", op, collection, instance, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s %s on %s: reading response: %w", op, collection, instance, err)
	}

	var body any
	if len(bytes.TrimSpace(raw)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			body = nil
		}
	}

	upErr := &UpstreamError{Op: op, Instance: instance, Collection: collection, StatusCode: resp.StatusCode}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upErr.Message = failureMessage(body)
		if upErr.Message == "" && body == nil {
			upErr.Message = strings.TrimSpace(string(raw))
		}
		return nil, upErr
	}
	if failed(body) {
		upErr.Message = failureMessage(body)
		return nil, upErr
	}
	return body, nil
}

// failed reports whether a successful response still signals a logical failure.
func failed(body any) bool {
	obj, ok := body.(map[string]any)
	if !ok {
		return false
	}
	if okVal, present := obj["ok"]; present {
		if b, isBool := okVal.(bool); isBool && !b {
			return true
		}
	}
	status, _ := obj["status"].(string)
	return strings.EqualFold(status, "failed")
}

func failureMessage(body any) string {
	obj, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"error", "message", "msg"} {
		switch v := obj[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if m, ok := v["message"].(string); ok && m != "" {
				return m
			}
		}
	}
	return ""
}

// decodeRows accepts either a bare array of records or an envelope holding
// them under "data" or "records". Any other envelope is an error, never an
// empty read.
func decodeRows(body any) ([]models.Record, error) {
	var items []any
	switch v := body.(type) {
	case nil:
		return []models.Record{}, nil
	case []any:
		items = v
	case map[string]any:
		list, err := envelopeRows(v)
		if err != nil {
			return nil, err
		}
		items = list
	default:
		return nil, fmt.Errorf("unexpected response of type %T", body)
	}

	rows := make([]models.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			slog.Debug("Ignoring non-object row", "index", i, "type", fmt.Sprintf("%T", item))
			continue
		}
		rows = append(rows, models.Record(obj))
	}
	return rows, nil
}

func envelopeRows(envelope map[string]any) ([]any, error) {
	for _, key := range []string{"data", "records"} {
		raw, present := envelope[key]
		if !present {
			continue
		}
		switch list := raw.(type) {
		case nil:
			return nil, nil
		case []any:
			return list, nil
		default:
			return nil, fmt.Errorf("unexpected %q of type %T in response envelope", key, raw)
		}
	}
	return nil, errors.New("unexpected response envelope: no data or records array")
}

func decodeReceipt(body any) models.Receipt {
	obj, ok := body.(map[string]any)
	if !ok {
		return models.Receipt{}
	}
	receipt := models.Receipt{Raw: models.Record(obj)}
	candidates := []any{obj["id"], obj["insertId"]}
	if data, ok := obj["data"].(map[string]any); ok {
		candidates = append(candidates, data["id"], data["_id"])
	}
	for _, c := range candidates {
		if id, ok := utils.ConvertToString(c); ok && id != "" {
			receipt.ID = id
			break
		}
	}
	return receipt
}
