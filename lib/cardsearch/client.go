package cardsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tcgsearch/internal/telemetry"
	"tcgsearch/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

const DefaultBaseUrl = "https://api.justtcg.com/v1"

const (
	report_client_new    = "client.new"
	report_client_fetch  = "client.fetch"
	report_client_decode = "client.decode"
)

var tracer = otel.Tracer("lib/cardsearch")
var meter = otel.Meter("lib/cardsearch")
var searchCounter, _ = meter.Int64Counter("search_count")
var failureCounter, _ = meter.Int64Counter("search_failures")

// Fetcher performs a single search request.
type Fetcher interface {
	Fetch(ctx context.Context, query Descriptor) Outcome
}

type Options struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string
	// ApiKey is sent as the x-api-key header on every request.
	ApiKey string
	// Timeout of a request, 0 leaves it to the transport.
	Timeout time.Duration
	// RateLimit in requests per second, 0 means unlimited.
	RateLimit float64
	// StrictDecoding makes a 2xx response without a valid "data" list a
	// DecodeError instead of an empty success.
	StrictDecoding bool
	// Transport overrides the http transport.
	Transport http.RoundTripper
	// Dump receives every http exchange when set.
	Dump restyutil.DumpOutput
}

// Client implements Fetcher against the card search API. It is safe for
// concurrent use.
type Client struct {
	http   *resty.Client
	strict bool
	tel    telemetry.API
}

func NewClient(opts Options, tel telemetry.API) (*Client, error) {
	tel = telemetry.NewScopedAPI("cardsearch", tel)

	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	parsed, err := url.Parse(baseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseUrl)
	}
	if opts.ApiKey == "" {
		tel.ReportWarning(report_client_new, "no api key configured")
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseUrl, "/"))
	client.SetHeader("x-api-key", opts.ApiKey)
	client.SetHeader("accept", "application/json")
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}

	if opts.RateLimit > 0 {
		// burst of 1 so requests are spread out evenly
		limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, "lib/cardsearch/http", tel)
	restyutil.DumpExchanges(client, opts.Dump)

	return &Client{
		http:   client,
		strict: opts.StrictDecoding,
		tel:    tel,
	}, nil
}

// Fetch makes exactly one GET request for the query and classifies the
// response, it never retries and always returns an outcome.
func (c *Client) Fetch(ctx context.Context, query Descriptor) Outcome {
	ctx, span := tracer.Start(ctx, "client:Fetch")
	defer span.End()

	encoded := query.Encode()
	span.SetAttributes(attribute.String("cardsearch.query", encoded))
	searchCounter.Add(ctx, 1)

	outcome := c.fetch(ctx, encoded)
	if failure, ok := outcome.(Failure); ok {
		failureCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("cardsearch.error", errorKind(failure.Err)),
		))
		span.SetStatus(codes.Error, failure.Message())
	}
	return outcome
}

func (c *Client) fetch(ctx context.Context, encoded string) Outcome {
	res, err := c.http.R().
		SetContext(ctx).
		Get("/cards?" + encoded)
	if err != nil {
		c.tel.ReportWarning(report_client_fetch, err)
		return Failure{Err: &TransportError{Cause: err}}
	}

	if !res.IsSuccess() {
		var body struct {
			Error string `json:"error"`
		}
		err = json.Unmarshal(res.Body(), &body)
		if err != nil || body.Error == "" {
			c.tel.ReportWarning(report_client_fetch, "unreadable error response", res.StatusCode())
			return Failure{Err: &UnknownError{Status: res.StatusCode()}}
		}
		return Failure{Err: &APIError{Status: res.StatusCode(), Message: body.Error}}
	}

	cards, err := decodeCards(res.Body())
	if err != nil {
		if c.strict {
			c.tel.ReportBroken(report_client_decode, err)
			return Failure{Err: &DecodeError{Cause: err}}
		}
		c.tel.ReportWarning(report_client_decode, err)
		return Success{Cards: []Card{}}
	}
	return Success{Cards: cards}
}

var errMissingData = errors.New("response has no data field")

func decodeCards(body []byte) ([]Card, error) {
	var parsed struct {
		Data json.RawMessage `json:"data"`
	}
	err := json.Unmarshal(body, &parsed)
	if err != nil {
		return nil, fmt.Errorf("unmarshal body: %w", err)
	}
	if len(parsed.Data) == 0 || string(parsed.Data) == "null" {
		return nil, errMissingData
	}

	var cards []Card
	err = json.Unmarshal(parsed.Data, &cards)
	if err != nil {
		return nil, fmt.Errorf("unmarshal data: %w", err)
	}
	if cards == nil {
		cards = []Card{}
	}
	return cards, nil
}

func errorKind(err error) string {
	var transportErr *TransportError
	var apiErr *APIError
	var unknownErr *UnknownError
	var decodeErr *DecodeError
	switch {
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &apiErr):
		return "api"
	case errors.As(err, &unknownErr):
		return "unknown"
	case errors.As(err, &decodeErr):
		return "decode"
	}
	return "other"
}
