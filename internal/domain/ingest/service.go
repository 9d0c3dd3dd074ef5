// Package ingest orchestrates the spreadsheet import pipeline: parse the
// source, resolve columns, normalize cells, classify rows, drop invalid ones
// and replace the shared record set in a single all-or-nothing commit.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/financecore/finance-core/internal/domain/expense"
	"github.com/financecore/finance-core/internal/domain/ingest/classifier"
	"github.com/financecore/finance-core/internal/domain/ingest/fetcher"
	"github.com/financecore/finance-core/internal/domain/ingest/normalizer"
	"github.com/financecore/finance-core/internal/domain/ingest/parser"
	"github.com/financecore/finance-core/internal/domain/ingest/resolver"
	"github.com/financecore/finance-core/pkg/money"
)

var (
	// ErrImportInFlight is returned when an import is started while another
	// one is still running. Only one import may be in flight at a time.
	ErrImportInFlight = errors.New("an import is already in progress")

	// ErrEmptyImport means no row survived the validity filter. Nothing is
	// committed in that case.
	ErrEmptyImport = errors.New("source contains no valid financial rows")
)

// minValidAmount is the exclusive lower bound for a row to be admitted.
var minValidAmount = decimal.NewFromFloat(0.01)

// RecordSink receives the canonical record set produced by a successful
// import, replacing whatever was there before.
type RecordSink interface {
	Replace(records []expense.Record) error
}

// Result summarizes one completed import job.
type Result struct {
	JobID    uuid.UUID
	Records  []expense.Record
	Total    int
	Imported int
	Dropped  int
}

// Service runs the ingestion pipeline.
type Service struct {
	sink       RecordSink
	fetcher    *fetcher.Fetcher
	classifier *classifier.Classifier
	ids        classifier.IDStrategy
	logger     *slog.Logger
	now        func() time.Time

	importing atomic.Bool
}

// NewService wires the pipeline. The fetcher may be nil when URL imports are
// not needed.
func NewService(sink RecordSink, f *fetcher.Fetcher, ids classifier.IDStrategy, logger *slog.Logger) *Service {
	return &Service{
		sink:       sink,
		fetcher:    f,
		classifier: classifier.New(),
		ids:        ids,
		logger:     logger,
		now:        time.Now,
	}
}

// ImportFile ingests a local spreadsheet. On success the full record set is
// replaced; on any failure prior state is left untouched.
func (s *Service) ImportFile(ctx context.Context, filename string, data []byte) (*Result, error) {
	if !s.importing.CompareAndSwap(false, true) {
		return nil, ErrImportInFlight
	}
	defer s.importing.Store(false)

	return s.run(filename, data)
}

// ImportURL fetches a published spreadsheet export and ingests it.
func (s *Service) ImportURL(ctx context.Context, rawURL string) (*Result, error) {
	if !s.importing.CompareAndSwap(false, true) {
		return nil, ErrImportInFlight
	}
	defer s.importing.Store(false)

	data, filename, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	return s.run(filename, data)
}

func (s *Service) run(filename string, data []byte) (*Result, error) {
	jobID := uuid.New()

	rows, err := parser.Parse(data, filename)
	if err != nil {
		return nil, err
	}

	currentYear := s.now().Year()
	records := make([]expense.Record, 0, len(rows))
	for _, row := range rows {
		rec, ok := s.buildRecord(row, currentYear)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrEmptyImport
	}

	if err := s.sink.Replace(records); err != nil {
		return nil, fmt.Errorf("failed to commit imported records: %w", err)
	}

	result := &Result{
		JobID:    jobID,
		Records:  records,
		Total:    len(rows),
		Imported: len(records),
		Dropped:  len(rows) - len(records),
	}

	s.logger.Info("import committed",
		"job_id", jobID,
		"source", filename,
		"rows", result.Total,
		"imported", result.Imported,
		"dropped", result.Dropped,
	)

	return result, nil
}

// buildRecord applies the per-row pipeline. Row-level issues are never
// errors: missing cells are defaulted and rows without a usable amount are
// dropped, favoring best-effort ingestion over strict rejection.
func (s *Service) buildRecord(row parser.Row, currentYear int) (expense.Record, bool) {
	rawAmount, _ := resolver.Resolve(row, resolver.Amount)
	rawName, _ := resolver.Resolve(row, resolver.Collaborator)
	rawDate, _ := resolver.Resolve(row, resolver.Date)
	rawPurpose, _ := resolver.Resolve(row, resolver.Purpose)
	rawID, _ := resolver.Resolve(row, resolver.InternalID)

	amountStr := rawAmount
	if strings.TrimSpace(amountStr) == "" {
		amountStr = "0"
	}

	amount := normalizer.ParseCurrency(amountStr)
	if !amount.GreaterThan(minValidAmount) {
		return expense.Record{}, false
	}

	date := normalizer.NormalizeDate(rawDate)
	if date == normalizer.MissingDate || !strings.Contains(date, "/") {
		date = fmt.Sprintf("01/01/%d", currentYear)
	}

	name := strings.TrimSpace(rawName)
	if name == "" {
		name = expense.UnidentifiedCollaborator
	}

	return expense.Record{
		ID:     s.ids.RecordID(rawID),
		Date:   date,
		Name:   name,
		Val:    money.EnsurePrefix(amountStr),
		Type:   s.classifier.Classify(rawPurpose, name),
		Status: expense.StatusPending,
		Budget: classifier.BudgetFlag(amount),
	}, true
}
