package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"shenanigigs/common/errors"
	"shenanigigs/common/telemetry"
	"shenanigigs/services/board/internal/config"
	"shenanigigs/services/board/internal/models"

	"go.uber.org/zap"
)

// maxErrorBody bounds how much of a failed response is read for a message.
const maxErrorBody = 64 << 10

type HTTPSource struct {
	client  *http.Client
	logger  *zap.Logger
	baseURL string
	token   string
}

func NewHTTPSource(logger *zap.Logger, config *config.Config) *HTTPSource {
	return &HTTPSource{
		client: &http.Client{
			Timeout: config.PostingsAPITimeout,
		},
		logger:  logger,
		baseURL: strings.TrimRight(config.PostingsAPIURL, "/"),
		token:   config.PostingsAPIToken,
	}
}

func (s *HTTPSource) GetAllJobPostings(ctx context.Context) ([]models.Posting, error) {
	ctx, span := tracer.Start(ctx, "HTTPSource.GetAllJobPostings")
	defer span.End()

	url := s.baseURL + "/postings"
	span.SetAttributes(telemetry.String("http.url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		span.RecordError(err)
		return nil, errors.LoadFailure("creating request", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("failed to execute request", zap.String("url", url), zap.Error(err))
		return nil, errors.LoadFailure("executing request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(
		telemetry.Int("http.status_code", resp.StatusCode),
		telemetry.String("http.method", http.MethodGet),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		s.logger.Error("unexpected status code",
			zap.Int("status_code", resp.StatusCode),
			zap.Int("body_bytes", len(body)))
		return nil, errors.LoadFailure(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil).
			WithPublic(failureMessage(body))
	}

	var postings []models.Posting
	if err := json.NewDecoder(resp.Body).Decode(&postings); err != nil {
		span.RecordError(err)
		s.logger.Error("failed to decode response", zap.Error(err))
		return nil, errors.LoadFailure("decoding response", err)
	}
	if postings == nil {
		s.logger.Error("response body is not a postings array")
		return nil, errors.LoadFailure("decoding response: null postings", nil)
	}

	span.SetAttributes(telemetry.Int("postings.count", len(postings)))
	s.logger.Debug("fetched job postings", zap.Int("count", len(postings)))
	return postings, nil
}

// failureMessage pulls a human-readable message from a failure payload. Both
// {"body":{"message":...}} and {"message":...} are understood.
func failureMessage(body []byte) string {
	var payload struct {
		Body *struct {
			Message string `json:"message"`
		} `json:"body"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Body != nil && strings.TrimSpace(payload.Body.Message) != "" {
		return payload.Body.Message
	}
	return strings.TrimSpace(payload.Message)
}
