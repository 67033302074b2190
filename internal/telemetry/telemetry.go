// FilePath: internal/telemetry/telemetry.go
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/go-resty/resty/v2"
	nuts "github.com/vaudience/go-nuts"
)

// Feed is one raw channel entry as delivered upstream. Field values stay
// strings until the ingestion pipeline parses them; absent and null fields
// are simply missing from Fields.
type Feed struct {
	CreatedAt string
	EntryID   int
	Fields    map[int]string
}

// maxFields is the number of value slots a channel entry can carry.
const maxFields = 8

// UnmarshalJSON tolerates the loose upstream schema: field values may be
// strings, bare numbers or null, and unknown keys are ignored.
func (f *Feed) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["created_at"]; ok {
		if err := json.Unmarshal(v, &f.CreatedAt); err != nil {
			return err
		}
	}
	if v, ok := raw["entry_id"]; ok {
		// entry_id is informational only, a bad one never fails the feed
		_ = json.Unmarshal(v, &f.EntryID)
	}

	f.Fields = make(map[int]string)
	for i := 1; i <= maxFields; i++ {
		v, ok := raw[fmt.Sprintf("field%d", i)]
		if !ok || string(v) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			// bare number, keep its literal form
			s = string(v)
		}
		f.Fields[i] = s
	}
	return nil
}

// Value returns the raw string of one field slot, reporting presence.
func (f Feed) Value(field int) (string, bool) {
	s, ok := f.Fields[field]
	return s, ok
}

// Client reads raw feeds from the upstream telemetry channel.
type Client interface {
	FetchField(ctx context.Context, field, results int) ([]Feed, error)
}

// feedsResponse mirrors the upstream single-field payload shape
type feedsResponse struct {
	Channel json.RawMessage `json:"channel"`
	Feeds   []Feed          `json:"feeds"`
}

// ThingSpeakClient reads a single ThingSpeak channel over its REST API.
type ThingSpeakClient struct {
	http      *resty.Client
	channelID string
	apiKey    string
}

// NewThingSpeakClient validates the channel credentials and prepares the
// HTTP client. Construction fails fast on missing credentials so a
// misconfigured deployment never starts polling.
func NewThingSpeakClient(cfg config.TelemetryConfig) (*ThingSpeakClient, error) {
	if cfg.ChannelID == "" || cfg.ReadAPIKey == "" {
		return nil, errors.NewValidationError("telemetry channel_id and read_api_key are required", nil)
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout)

	nuts.L.Infof("[Telemetry] Channel %s client ready (base %s)", cfg.ChannelID, cfg.BaseURL)
	return &ThingSpeakClient{
		http:      httpClient,
		channelID: cfg.ChannelID,
		apiKey:    cfg.ReadAPIKey,
	}, nil
}

// FetchField returns the most recent entries of one channel field, oldest
// first as delivered upstream. results caps the entry count server-side.
func (c *ThingSpeakClient) FetchField(ctx context.Context, field, results int) ([]Feed, error) {
	var payload feedsResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key": c.apiKey,
			"results": fmt.Sprintf("%d", results),
		}).
		SetResult(&payload).
		Get(fmt.Sprintf("/channels/%s/fields/%d.json", c.channelID, field))
	if err != nil {
		return nil, errors.NewUpstreamError("telemetry channel fetch failed", err)
	}
	if resp.IsError() {
		return nil, errors.NewUpstreamError(
			fmt.Sprintf("telemetry channel returned %s", resp.Status()), nil)
	}

	return payload.Feeds, nil
}
