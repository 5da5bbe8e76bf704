// Package report fetches the monitor endpoints in order and prints each
// response together with its processed view.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/kiritoko1029/glmcode/internal/monitor"
	"github.com/kiritoko1029/glmcode/internal/platform"
	"github.com/kiritoko1029/glmcode/internal/quota"
	"github.com/kiritoko1029/glmcode/internal/window"
)

// Getter performs an authenticated GET and returns the body of a 200 response.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// PostProcessor reshapes the data field of a response.
type PostProcessor func(data any) any

type Request struct {
	URL         string
	Label       string
	WithWindow  bool
	PostProcess PostProcessor
}

// Result is what a successful query printed.
type Result struct {
	Label     string
	Body      []byte
	Parsed    any
	Processed any
	// Valid is false when the body was not JSON and was printed raw.
	Valid bool
}

type Reporter struct {
	client Getter
	out    io.Writer
	window window.Window
}

func New(client Getter, out io.Writer, w window.Window) *Reporter {
	return &Reporter{
		client: client,
		out:    out,
		window: w,
	}
}

// Query fetches one endpoint and prints it. Non-200 responses and transport
// failures are returned; a body that is not JSON is printed raw instead.
func (r *Reporter) Query(ctx context.Context, req Request) (*Result, error) {
	u := req.URL
	if req.WithWindow {
		u += r.window.Query()
	}

	body, err := r.client.Get(ctx, u)
	if err != nil {
		var se *monitor.StatusError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("[%s] %w", req.Label, err)
		}
		return nil, err
	}

	fmt.Fprintf(r.out, "%s data:\n\n", req.Label)

	res := &Result{Label: req.Label, Body: body}

	parsed, err := ParseJSON(body)
	if err != nil {
		fmt.Fprintln(r.out, "Response body:")
		fmt.Fprintln(r.out, string(body))
		fmt.Fprintln(r.out)
		return res, nil
	}
	res.Parsed = parsed
	res.Processed = ProcessedView(parsed, req.PostProcess)
	res.Valid = true

	fmt.Fprintln(r.out, "Full API Response:")
	if err := PrintJSON(r.out, parsed); err != nil {
		return nil, err
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "Processed Data:")
	if err := PrintJSON(r.out, res.Processed); err != nil {
		return nil, err
	}
	fmt.Fprintln(r.out)

	return res, nil
}

// Run queries model usage, tool usage and quota limit one after another and
// stops at the first failure.
func (r *Reporter) Run(ctx context.Context, target *platform.Target) ([]*Result, error) {
	fmt.Fprintf(r.out, "Platform: %s\n\n", target.Platform)

	requests := []Request{
		{URL: target.Endpoints.ModelUsage, Label: "Model usage", WithWindow: true},
		{URL: target.Endpoints.ToolUsage, Label: "Tool usage", WithWindow: true},
		{URL: target.Endpoints.QuotaLimit, Label: "Quota limit", PostProcess: quota.ProcessQuotaLimit},
	}

	results := make([]*Result, 0, len(requests))
	for _, req := range requests {
		res, err := r.Query(ctx, req)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// ProcessedView picks what to show after the full response:
//
//	post-processor | data present | view
//	yes            | yes          | post(data)
//	no             | yes          | data
//	yes            | no           | whole response
//	no             | no           | whole response
func ProcessedView(parsed any, post PostProcessor) any {
	data, ok := dataField(parsed)
	switch {
	case ok && post != nil:
		return post(data)
	case ok:
		return data
	default:
		return parsed
	}
}

func dataField(parsed any) (any, bool) {
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, false
	}
	data, ok := obj["data"]
	if !ok || data == nil {
		return nil, false
	}
	return data, true
}

// ParseJSON decodes a complete JSON document, keeping numbers as json.Number.
func ParseJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

// PrintJSON writes v indented by two spaces, without HTML escaping.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal data to JSON: %w", err)
	}
	return nil
}
