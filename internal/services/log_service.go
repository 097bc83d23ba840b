package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"uav-logchat/flightdesk/internal/common"
	"uav-logchat/flightdesk/internal/constants"
	"uav-logchat/flightdesk/internal/dataflash"
	"uav-logchat/flightdesk/internal/flightlog"
	"uav-logchat/flightdesk/internal/logging"
	"uav-logchat/flightdesk/internal/metrics"
	"uav-logchat/flightdesk/internal/models/dtos"
)

var (
	ErrUnsupportedFile = errors.New(constants.MsgUnsupportedFile)
	ErrLogNotFound     = errors.New(constants.MsgLogNotFound)
)

const summaryCacheName = "summaries"

type LogServiceConfig struct {
	UploadDir           string
	Limits              flightlog.Limits
	MaxConcurrentParses int64
	SummaryTTL          time.Duration
}

// LogService turns uploaded logs into summaries and keeps them for the chat layer.
type LogService struct {
	summaries common.CacheInterface
	metrics   *metrics.MetricsRegistry
	parses    *semaphore.Weighted
	cfg       LogServiceConfig
}

func NewLogService(summaries common.CacheInterface, metricsReg *metrics.MetricsRegistry, cfg LogServiceConfig) (*LogService, error) {
	if cfg.MaxConcurrentParses < 1 {
		cfg.MaxConcurrentParses = 1
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", cfg.UploadDir, err)
	}

	return &LogService{
		summaries: summaries,
		metrics:   metricsReg,
		parses:    semaphore.NewWeighted(cfg.MaxConcurrentParses),
		cfg:       cfg,
	}, nil
}

// UploadLog stores src under a new log id, parses it and caches the summary.
// The temporary copy is removed whatever the outcome.
func (s *LogService) UploadLog(ctx context.Context, filename string, src io.Reader) (*dtos.UploadResponse, error) {
	if filepath.Ext(filename) != constants.LogFileExtension {
		s.metrics.LogsParsedTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, ErrUnsupportedFile
	}

	if err := s.parses.Acquire(ctx, 1); err != nil {
		s.metrics.LogsParsedTotal.WithLabelValues(metrics.OutcomeCancelled).Inc()
		return nil, fmt.Errorf("waiting for parse slot: %w", err)
	}
	defer s.parses.Release(1)

	logID := uuid.NewString()
	path := filepath.Join(s.cfg.UploadDir, logID+constants.LogFileExtension)
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Warn("Failed to remove uploaded log", "path", path, "error", err.Error())
		}
	}()

	size, err := saveUpload(path, src)
	if err != nil {
		return nil, err
	}
	s.metrics.UploadBytesTotal.Add(float64(size))

	s.metrics.ParsesInFlight.Inc()
	start := time.Now()
	report, err := flightlog.Parse(ctx, path, s.cfg.Limits)
	elapsed := time.Since(start)
	s.metrics.ParsesInFlight.Dec()
	s.metrics.ParseDuration.Observe(elapsed.Seconds())

	if err != nil {
		s.metrics.LogsParsedTotal.WithLabelValues(parseOutcome(err)).Inc()
		logging.Warn("Log parse failed",
			"log_id", logID,
			"filename", filename,
			"size", humanize.Bytes(uint64(size)),
			"error", err.Error(),
		)
		return nil, err
	}

	s.recordReport(report)

	s.summaries.Set(common.CacheKey(constants.CachePrefixLogSummary, logID), report.Summary, s.cfg.SummaryTTL)

	kv := []interface{}{
		"log_id", logID,
		"filename", filename,
		"size", humanize.Bytes(uint64(size)),
		"records", report.Records,
		"skipped_bytes", report.Skipped,
		"duration_ms", elapsed.Milliseconds(),
	}
	if report.StreamErr != nil {
		kv = append(kv, "stream_error", report.StreamErr.Error())
	}
	logging.Info("Log parsed", kv...)

	return &dtos.UploadResponse{LogID: logID, Summary: report.Summary}, nil
}

// GetSummary returns the cached summary of a previously uploaded log.
func (s *LogService) GetSummary(logID string) (*dtos.FlightSummary, error) {
	summary, ok := common.GetTyped[*dtos.FlightSummary](s.summaries, common.CacheKey(constants.CachePrefixLogSummary, logID))
	if !ok || summary == nil {
		s.metrics.CacheMissesTotal.WithLabelValues(summaryCacheName).Inc()
		return nil, ErrLogNotFound
	}
	s.metrics.CacheHitsTotal.WithLabelValues(summaryCacheName).Inc()
	return summary, nil
}

func (s *LogService) recordReport(report *flightlog.Report) {
	s.metrics.RecordsDecodedTotal.Add(float64(report.Records))
	s.metrics.BytesSkippedTotal.Add(float64(report.Skipped))
	for _, d := range report.Summary.Degradations {
		s.metrics.AggregatorDegradations.WithLabelValues(d.Aggregator).Inc()
	}

	outcome := metrics.OutcomeOK
	if report.Summary.IsMinimal() {
		outcome = metrics.OutcomeMinimal
	}
	s.metrics.LogsParsedTotal.WithLabelValues(outcome).Inc()
}

func saveUpload(path string, src io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}

	n, err := io.Copy(f, src)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("save upload: %w", err)
	}
	return n, nil
}

func parseOutcome(err error) string {
	var openErr *dataflash.StreamOpenError
	var timeoutErr *flightlog.ParseTimeoutError
	switch {
	case errors.As(err, &openErr):
		return metrics.OutcomeOpenError
	case errors.As(err, &timeoutErr):
		return metrics.OutcomeLimit
	default:
		return metrics.OutcomeCancelled
	}
}
