package databases

// go generate: mockery --name ReportDatabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/linesmerrill/shift-handover/metrics"
	"github.com/linesmerrill/shift-handover/models"
)

const reportKeyPrefix = "report_"

// ErrStorageFailure matches every error returned by ReportDatabase.Save
var ErrStorageFailure = errors.New("storage failure")

// StorageFailure reports that the medium rejected a write. The in-memory
// report is unaffected.
type StorageFailure struct {
	Key string
	Err error
}

func (e *StorageFailure) Error() string {
	return fmt.Sprintf("failed to save %s: %v", e.Key, e.Err)
}

// Unwrap exposes the medium error
func (e *StorageFailure) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrStorageFailure) match
func (e *StorageFailure) Is(target error) bool {
	return target == ErrStorageFailure
}

// ReportKey returns the storage key of the report for date
func ReportKey(date string) string {
	return reportKeyPrefix + date
}

// ReportDatabase contains the methods to load and save handover reports
type ReportDatabase interface {
	Load(ctx context.Context, date string) models.Report
	Save(ctx context.Context, report models.Report) error
	Dates(ctx context.Context) ([]string, error)
}

type reportDatabase struct {
	kv KeyValueHelper
}

// NewReportDatabase initializes a new instance of report database with the provided medium
func NewReportDatabase(kv KeyValueHelper) ReportDatabase {
	return &reportDatabase{
		kv: kv,
	}
}

// Load returns the report stored for date. A missing, unreadable or malformed
// record yields the canonical empty report; Load never fails.
func (r *reportDatabase) Load(ctx context.Context, date string) models.Report {
	m := metrics.Get()
	key := ReportKey(date)

	payload, err := r.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		m.ReportLoadsTotal.WithLabelValues(metrics.LoadEmpty).Inc()
		return models.NewReport(date)
	}
	if err != nil {
		zap.S().Errorw("failed to read report, starting empty", "key", key, "error", err)
		m.ReportLoadsTotal.WithLabelValues(metrics.LoadMalformed).Inc()
		return models.NewReport(date)
	}

	report, err := decodeReport(date, payload)
	if err != nil {
		zap.S().Warnw("malformed report payload, starting empty", "key", key, "error", err)
		m.ReportLoadsTotal.WithLabelValues(metrics.LoadMalformed).Inc()
		return models.NewReport(date)
	}
	m.ReportLoadsTotal.WithLabelValues(metrics.LoadFound).Inc()
	return report
}

// decodeReport upcasts the stored document and merges it over the canonical
// empty report so fields missing from older payloads keep their defaults.
func decodeReport(date, payload string) (models.Report, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return models.Report{}, fmt.Errorf("failed to parse stored report: %w", err)
	}
	if doc == nil {
		return models.Report{}, errors.New("stored report is not an object")
	}

	upgraded, err := json.Marshal(Upcast(doc))
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to re-encode upcast report: %w", err)
	}

	report := models.NewReport(date)
	if err := json.Unmarshal(upgraded, &report); err != nil {
		return models.Report{}, fmt.Errorf("failed to decode stored report: %w", err)
	}
	report.Normalize()
	report.SchemaVersion = models.CurrentSchemaVersion
	return report, nil
}

// Save writes the full report under the key of its date
func (r *reportDatabase) Save(ctx context.Context, report models.Report) error {
	m := metrics.Get()
	key := ReportKey(report.ReportDate)

	stored := report.Clone()
	stored.SchemaVersion = models.CurrentSchemaVersion
	stored.Normalize()
	payload, err := json.Marshal(stored)
	if err != nil {
		m.ReportSavesTotal.WithLabelValues("failed").Inc()
		return &StorageFailure{Key: key, Err: err}
	}

	if err := r.kv.Set(ctx, key, string(payload)); err != nil {
		m.ReportSavesTotal.WithLabelValues("failed").Inc()
		return &StorageFailure{Key: key, Err: err}
	}
	m.ReportSavesTotal.WithLabelValues("success").Inc()
	zap.S().Infow("report saved", "key", key, "bytes", len(payload))
	return nil
}

// Dates lists the dates that have a saved report, oldest first
func (r *reportDatabase) Dates(ctx context.Context) ([]string, error) {
	keys, err := r.kv.Keys(ctx, reportKeyPrefix)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(keys))
	for _, k := range keys {
		dates = append(dates, strings.TrimPrefix(k, reportKeyPrefix))
	}
	sort.Strings(dates)
	return dates, nil
}
