// Package remote implements the entity repositories on the hosted data backend.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/services/metrics"
)

// Backend operations
const (
	opFetch  = "fetchRecords"
	opGet    = "getRecordById"
	opCreate = "createRecord"
	opUpdate = "updateRecord"
	opDelete = "deleteRecord"
)

const (
	pageSize = 1000
	maxPages = 1000
)

type (
	Client struct {
		http      *rest.Client
		baseURL   string
		projectID string
		publicKey string
		logger    core.Logger
	}

	Field struct {
		Field struct {
			Name string `json:"Name"`
		} `json:"field"`
	}

	Condition struct {
		FieldName string        `json:"FieldName"`
		Operator  string        `json:"Operator"`
		Values    []interface{} `json:"Values"`
	}

	OrderBy struct {
		FieldName string `json:"fieldName"`
		SortType  string `json:"sorttype"`
	}

	PagingInfo struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}

	FetchParams struct {
		Fields     []Field     `json:"fields,omitempty"`
		Where      []Condition `json:"where,omitempty"`
		OrderBy    []OrderBy   `json:"orderBy,omitempty"`
		PagingInfo *PagingInfo `json:"pagingInfo,omitempty"`
	}

	response struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
		Results []result        `json:"results"`
	}

	result struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Errors  []struct {
			FieldLabel string `json:"fieldLabel"`
			Message    string `json:"message"`
		} `json:"errors"`
	}
)

func NewClient(conf core.BackendConfig, logger core.Logger) *Client {
	return &Client{
		http:      &rest.Client{HTTPClient: &http.Client{Timeout: conf.Timeout}},
		baseURL:   strings.TrimRight(conf.URL, "/"),
		projectID: conf.ProjectID,
		publicKey: conf.PublicKey,
		logger:    logger,
	}
}

// Fields builds the field list of a fetch.
func Fields(names ...string) []Field {
	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i].Field.Name = name
	}
	return fields
}

// EqualTo is a where condition matching `value` exactly.
func EqualTo(field string, value interface{}) Condition {
	return Condition{FieldName: field, Operator: "EqualTo", Values: []interface{}{value}}
}

func (c *Client) call(ctx context.Context, table, op string, body interface{}) (resp response, err error) {
	defer func(start time.Time) { metrics.ObserveBackend(table, op, err, time.Since(start)) }(time.Now())

	resp, status, err := c.send(ctx, table, op, body)
	if err != nil {
		return response{}, err
	}
	if err = c.check(table, op, resp, status); err != nil {
		return response{}, err
	}
	return resp, nil
}

// send posts `body` to the table operation and decodes the response envelope.
// A non-JSON error page is returned as an unsuccessful envelope carrying the status text.
func (c *Client) send(ctx context.Context, table, op string, body interface{}) (resp response, status int, err error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return response{}, 0, errors.Wrapf(err, "encoding %s %s", table, op)
	}
	res, err := c.http.SendWithContext(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: c.baseURL + "/tables/" + table + "/" + op,
		Headers: map[string]string{
			"X-Project-Id": c.projectID,
			"X-Public-Key": c.publicKey,
			"Accept":       "application/json",
			"Content-Type": "application/json",
		},
		Body: payload,
	})
	if err != nil {
		return response{}, 0, errors.Wrapf(err, "calling %s %s", table, op)
	}

	if err = json.Unmarshal([]byte(res.Body), &resp); err != nil {
		if res.StatusCode >= http.StatusBadRequest {
			return response{Message: http.StatusText(res.StatusCode)}, res.StatusCode, nil
		}
		return response{}, res.StatusCode, errors.Wrapf(err, "decoding %s %s", table, op)
	}
	return resp, res.StatusCode, nil
}

func (c *Client) check(table, op string, resp response, status int) error {
	if resp.Success && status < http.StatusBadRequest {
		return nil
	}
	msg := resp.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	c.logger.Error(msg, map[string]interface{}{"table": table, "op": op, "status": status})
	return core.NewBackendError(table+"."+op, msg)
}

// fetch pages through every record matching `params`, appending them to `out`.
// It stops on a short page, or when the backend serves the previous page again
// because it ignores the paging offset.
func (c *Client) fetch(ctx context.Context, table string, params FetchParams, out *[]json.RawMessage) error {
	params.PagingInfo = &PagingInfo{Limit: pageSize}
	var prev json.RawMessage
	for n := 0; n < maxPages; n++ {
		resp, err := c.call(ctx, table, opFetch, params)
		if err != nil {
			return err
		}
		var page []json.RawMessage
		if hasData(resp.Data) {
			if err = json.Unmarshal(resp.Data, &page); err != nil {
				return errors.Wrapf(err, "decoding %s records", table)
			}
		}
		if len(page) > 0 && prev != nil && bytes.Equal(page[0], prev) {
			c.logger.Warn("backend ignored the paging offset", map[string]interface{}{"table": table, "offset": params.PagingInfo.Offset})
			return nil
		}
		*out = append(*out, page...)
		if len(page) < pageSize {
			return nil
		}
		prev = page[0]
		params.PagingInfo.Offset += pageSize
	}
	return core.NewBackendError(table+"."+opFetch, "paging did not terminate")
}

// get returns the raw record, or nil if the backend has none.
// A missing record is reported either as an empty success or as an unsuccessful
// answer without a server error status; both read as nil.
func (c *Client) get(ctx context.Context, table string, id int, fields []Field) (raw json.RawMessage, err error) {
	defer func(start time.Time) { metrics.ObserveBackend(table, opGet, err, time.Since(start)) }(time.Now())

	resp, status, err := c.send(ctx, table, opGet, map[string]interface{}{"id": id, "fields": fields})
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound || (!resp.Success && status < http.StatusBadRequest) {
		return nil, nil
	}
	if err = c.check(table, opGet, resp, status); err != nil {
		return nil, err
	}
	if !hasData(resp.Data) {
		return nil, nil
	}
	return resp.Data, nil
}

// mutate sends a single record batch and returns the data of the first successful result
// (nil when the results carry none, as deletions do).
// Failed results are logged field by field and reported as a core.BackendError.
func (c *Client) mutate(ctx context.Context, table, op string, body interface{}) (json.RawMessage, error) {
	resp, err := c.call(ctx, table, op, body)
	if err != nil {
		return nil, err
	}

	var data json.RawMessage
	var succeeded int
	var failures []core.RecordFailure
	for _, res := range resp.Results {
		if res.Success {
			succeeded++
			if data == nil && hasData(res.Data) {
				data = res.Data
			}
			continue
		}
		failure := core.RecordFailure{Message: res.Message}
		for _, fe := range res.Errors {
			failure.Fields = append(failure.Fields, core.FieldError{Field: fe.FieldLabel, Error: fe.Message})
			c.logger.Error(fe.FieldLabel+": "+fe.Message, map[string]interface{}{"table": table, "op": op})
		}
		if res.Message != "" {
			c.logger.Error(res.Message, map[string]interface{}{"table": table, "op": op})
		}
		failures = append(failures, failure)
	}

	switch {
	case succeeded > 0 || resp.Results == nil:
		return data, nil
	case len(failures) > 0:
		return nil, core.NewBackendError(table+"."+op, "record rejected", failures...)
	default:
		return nil, core.NewBackendError(table+"."+op, "no record processed")
	}
}

func hasData(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func (c *Client) create(ctx context.Context, table string, record interface{}) (json.RawMessage, error) {
	return c.save(ctx, table, opCreate, record)
}

func (c *Client) update(ctx context.Context, table string, record interface{}) (json.RawMessage, error) {
	return c.save(ctx, table, opUpdate, record)
}

func (c *Client) save(ctx context.Context, table, op string, record interface{}) (json.RawMessage, error) {
	data, err := c.mutate(ctx, table, op, map[string]interface{}{"records": []interface{}{record}})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, core.NewBackendError(table+"."+op, "no record returned")
	}
	return data, nil
}

func (c *Client) delete(ctx context.Context, table string, id int) error {
	_, err := c.mutate(ctx, table, opDelete, map[string]interface{}{"RecordIds": []int{id}})
	return err
}

func decode[T any](raw json.RawMessage, table string) (T, error) {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, errors.Wrapf(err, "decoding %s record", table)
	}
	return rec, nil
}

func decodeAll[T any](raws []json.RawMessage, table string) ([]T, error) {
	recs := make([]T, 0, len(raws))
	for _, raw := range raws {
		rec, err := decode[T](raw, table)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
