package monitor

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/kiritoko1029/glmcode/internal/quota"
)

// QuotaLimitResponse is the envelope of /api/monitor/usage/quota/limit.
type QuotaLimitResponse struct {
	Code    int         `json:"code"`
	Msg     string      `json:"msg"`
	Success bool        `json:"success"`
	Data    *QuotaLimit `json:"data"`
	// Some deployments answer without the envelope.
	Limits []LimitItem `json:"limits"`
}

// Quota returns the payload whether or not it was wrapped in "data".
func (r *QuotaLimitResponse) Quota() *QuotaLimit {
	if r.Data != nil {
		return r.Data
	}
	return &QuotaLimit{Limits: r.Limits}
}

type QuotaLimit struct {
	Limits        []LimitItem `json:"limits"`
	NextResetTime ResetValue  `json:"nextResetTime"`
}

type LimitItem struct {
	Type          string          `json:"type"`
	Unit          int             `json:"unit"`
	Number        int             `json:"number"`
	Usage         float64         `json:"usage"`
	CurrentValue  float64         `json:"currentValue"`
	Remaining     float64         `json:"remaining"`
	Percentage    float64         `json:"percentage"`
	NextResetTime ResetValue      `json:"nextResetTime"`
	UsageDetails  json.RawMessage `json:"usageDetails,omitempty"`
}

// Find returns the first limit whose type mentions kind, e.g. "TOKENS" or "TIME".
func (q *QuotaLimit) Find(kind string) *LimitItem {
	for i := range q.Limits {
		if strings.Contains(q.Limits[i].Type, kind) {
			return &q.Limits[i]
		}
	}
	return nil
}

// ResetValue holds nextResetTime as the API sent it: epoch milliseconds as a
// number or a string, or an RFC 3339 string.
type ResetValue struct {
	v any
}

// ResetAtMillis builds a ResetValue from epoch milliseconds.
func ResetAtMillis(ms int64) ResetValue {
	return ResetValue{v: json.Number(strconv.FormatInt(ms, 10))}
}

func (r *ResetValue) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(&r.v)
}

func (r ResetValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.v)
}

// Time reports the reset instant; absent, zero and unparseable values report false.
func (r ResetValue) Time() (time.Time, bool) {
	return quota.ResetTime(r.v)
}

// ModelPerformance is the data of /api/monitor/usage/model-performance: one
// sample per x_time entry for each tier.
type ModelPerformance struct {
	XTime             []string  `json:"x_time"`
	LiteDecodeSpeed   []float64 `json:"liteDecodeSpeed"`
	ProMaxDecodeSpeed []float64 `json:"proMaxDecodeSpeed"`
	LiteSuccessRate   []float64 `json:"liteSuccessRate"`
	ProMaxSuccessRate []float64 `json:"proMaxSuccessRate"`
}

// DecodeModelPerformance reads a model-performance body, wrapped in "data" or not.
func DecodeModelPerformance(body []byte) (*ModelPerformance, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}

	payload := body
	if len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		payload = envelope.Data
	}

	var perf ModelPerformance
	if err := json.Unmarshal(payload, &perf); err != nil {
		return nil, err
	}
	return &perf, nil
}
