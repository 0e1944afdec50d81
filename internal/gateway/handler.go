// Package gateway serves the parse, stringify and update operations behind an
// API Gateway HTTP API running on AWS Lambda.
package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/brendan.keane/urlquery/internal/config"
	"github.com/brendan.keane/urlquery/internal/errors"
	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

// Operations served by the handler, matched against the last path segment
const (
	OperationParse     = "parse"
	OperationStringify = "stringify"
	OperationUpdate    = "update"
)

// Request is the JSON body accepted by every operation
type Request struct {
	URL                 string         `json:"url"`
	Query               urlquery.Query `json:"query,omitempty"`
	RemoveTrailingSlash *bool          `json:"remove_trailing_slash,omitempty"`
}

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Error string           `json:"error"`
	Type  errors.ErrorType `json:"type"`
}

// UpdateResponse is the structured update result plus the recomposed URL
type UpdateResponse struct {
	urlquery.URLWithQueryParams
	URL string `json:"url"`
}

const tracerName = "github.com/brendan.keane/urlquery/internal/gateway"

// Handler answers API Gateway v2 HTTP events
type Handler struct {
	logger  zerolog.Logger
	inst    *urlquery.Instance
	metrics *Metrics
	tracer  trace.Tracer
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithMetrics records every request in m
func WithMetrics(m *Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithTracer replaces the tracer taken from the global provider
func WithTracer(t trace.Tracer) HandlerOption {
	return func(h *Handler) {
		if t != nil {
			h.tracer = t
		}
	}
}

// NewHandler validates cfg and builds the instance shared by all invocations
func NewHandler(logger zerolog.Logger, cfg *config.Config, opts ...HandlerOption) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeGateway, "invalid gateway configuration")
	}

	log := logger.With().Str("component", "gateway").Logger()
	h := &Handler{
		logger: log,
		inst:   cfg.Instance(log),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle routes a request to its operation. Failures are reported in the
// response; the returned error is reserved for faults Lambda should retry.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	start := time.Now()
	operation := path.Base(strings.TrimRight(event.RawPath, "/"))
	label := operationLabel(operation)

	_, span := h.tracer.Start(ctx, "urlq.gateway."+label,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("urlq.operation", operation),
			attribute.String("urlq.request_id", event.RequestContext.RequestID),
		))
	defer span.End()

	resp, opErr := h.handle(operation, event)

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if opErr != nil {
		span.RecordError(opErr)
		span.SetStatus(codes.Error, errors.UserMessage(opErr))
	}

	if h.metrics != nil {
		h.metrics.requests.WithLabelValues(label, strconv.Itoa(resp.StatusCode)).Inc()
		h.metrics.duration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		if opErr != nil {
			h.metrics.errors.WithLabelValues(label, string(errors.GetType(opErr))).Inc()
		}
	}

	return resp, nil
}

// handle returns the response and, for failed requests, the error it reports
func (h *Handler) handle(operation string, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	log := h.logger.With().
		Str("operation", operation).
		Str("request_id", event.RequestContext.RequestID).
		Logger()

	method := event.RequestContext.HTTP.Method
	if method != "" && method != http.MethodPost {
		err := errors.Newf(errors.ErrorTypeGateway, "method %s not allowed", method)
		return errorResponse(http.StatusMethodNotAllowed, err), err
	}

	if !knownOperation(operation) {
		log.Debug().Str("path", event.RawPath).Msg("unknown operation")
		err := errors.Newf(errors.ErrorTypeGateway, "unknown operation %q", operation)
		return errorResponse(http.StatusNotFound, err), err
	}

	req, err := decodeRequest(event)
	if err != nil {
		log.Debug().Err(err).Msg("rejected request body")
		return errorResponse(http.StatusBadRequest, err), err
	}

	var opts []urlquery.Option
	if req.RemoveTrailingSlash != nil {
		opts = append(opts, urlquery.RemoveTrailingSlash(*req.RemoveTrailingSlash))
	}

	result, err := h.run(operation, req, opts)
	if err != nil {
		status := statusFor(err)
		log.Warn().Err(err).Int("status", status).Str("url", req.URL).Msg("operation failed")
		return errorResponse(status, err), err
	}

	log.Debug().Str("url", req.URL).Msg("operation succeeded")
	return jsonResponse(http.StatusOK, result), nil
}

func knownOperation(operation string) bool {
	switch operation {
	case OperationParse, OperationStringify, OperationUpdate:
		return true
	}
	return false
}

// operationLabel bounds metric and span names to the known operations
func operationLabel(operation string) string {
	if knownOperation(operation) {
		return operation
	}
	return "unknown"
}

func (h *Handler) run(operation string, req Request, opts []urlquery.Option) (any, error) {
	switch operation {
	case OperationParse:
		return h.inst.Parse(req.URL, opts...)
	case OperationStringify:
		out, err := h.inst.Stringify(req.URL, req.Query, opts...)
		if err != nil {
			return nil, err
		}
		return map[string]string{"url": out}, nil
	default:
		updated, err := h.inst.Update(req.URL, req.Query, opts...)
		if err != nil {
			return nil, err
		}
		out, err := h.inst.Stringify(updated.BaseURL, updated.QueryParams, opts...)
		if err != nil {
			return nil, err
		}
		return UpdateResponse{URLWithQueryParams: updated, URL: out}, nil
	}
}

func decodeRequest(event events.APIGatewayV2HTTPRequest) (Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return Request{}, errors.Wrap(err, errors.ErrorTypeValidation, "body is not valid base64").
				WithContext("field", "body")
		}
		body = decoded
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Request{}, errors.Wrap(err, errors.ErrorTypeValidation, "body must be a JSON object").
			WithContext("field", "body")
	}
	if req.URL == "" {
		return Request{}, errors.New(errors.ErrorTypeValidation, "url is required").
			WithContext("field", "url")
	}
	return req, nil
}

// statusFor maps an operation error onto an HTTP status
func statusFor(err error) int {
	switch errors.GetType(err) {
	case errors.ErrorTypeCodec, errors.ErrorTypeValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(status int, err error) events.APIGatewayV2HTTPResponse {
	return jsonResponse(status, ErrorResponse{
		Error: errors.UserMessage(err),
		Type:  errors.GetType(err),
	})
}

func jsonResponse(status int, v any) events.APIGatewayV2HTTPResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response","type":"internal"}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
