package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financecore/finance-core/internal/domain/expense"
	"github.com/financecore/finance-core/internal/domain/ingest/classifier"
	"github.com/financecore/finance-core/internal/domain/ingest/fetcher"
)

type captureSink struct {
	records []expense.Record
	calls   int
	err     error
}

func (c *captureSink) Replace(records []expense.Record) error {
	if c.err != nil {
		return c.err
	}
	c.calls++
	c.records = records
	return nil
}

func newTestService(sink RecordSink) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(sink, fetcher.New(5*time.Second, 0, logger), classifier.RandomIDStrategy{}, logger)
	svc.now = func() time.Time { return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

const sampleCSV = "DATA,COLABORADOR PARA DEPOSITO,VALOR,FINALIDADE,Nº INT.\n" +
	"02/01/2025,Maria Santos,\"1.200,00\",Diária de campo,1001\n" +
	"15/01/2025,PPRI SUPPORT,\"2.500,00\",,1002\n" +
	"20/02/2025,Carlos Lima,\"450,00\",Combustível,\n" +
	"21/02/2025,Sem Valor,\"0\",Geral,1004\n"

func TestImportFilePipeline(t *testing.T) {
	sink := &captureSink{}
	svc := newTestService(sink)

	result, err := svc.ImportFile(context.Background(), "despesas.csv", []byte(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 1, result.Dropped)
	require.Len(t, sink.records, 3)

	first := sink.records[0]
	assert.Equal(t, "1001", first.ID)
	assert.Equal(t, "02/01/2025", first.Date)
	assert.Equal(t, "Maria Santos", first.Name)
	assert.Equal(t, "R$ 1.200,00", first.Val)
	assert.Equal(t, expense.CategoryDiarias, first.Type)
	assert.Equal(t, expense.StatusPending, first.Status)
	assert.Equal(t, expense.BudgetWithin, first.Budget)

	// Category inferred from the collaborator name, flag from the amount.
	second := sink.records[1]
	assert.Equal(t, expense.CategoryPPRI, second.Type)
	assert.Equal(t, expense.BudgetExceeded, second.Budget)

	// Free-text purpose is kept; missing internal ID is synthesized.
	third := sink.records[2]
	assert.Equal(t, "Combustível", third.Type)
	assert.True(t, strings.HasPrefix(third.ID, "AUTO-"), "id = %s", third.ID)
}

func TestImportFileFallbackDate(t *testing.T) {
	sink := &captureSink{}
	svc := newTestService(sink)

	csv := "VALOR,COLABORADOR PARA DEPOSITO\n\"300,00\",Ana\n"
	result, err := svc.ImportFile(context.Background(), "sem-data.csv", []byte(csv))
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "01/01/2025", result.Records[0].Date)
	assert.Equal(t, "Ana", result.Records[0].Name)
}

func TestImportFileDefaultsName(t *testing.T) {
	sink := &captureSink{}
	svc := newTestService(sink)

	csv := "DATA,VALOR\n02/01/2025,\"300,00\"\n"
	result, err := svc.ImportFile(context.Background(), "sem-nome.csv", []byte(csv))
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, expense.UnidentifiedCollaborator, result.Records[0].Name)
	assert.Equal(t, expense.CategoryGeneral, result.Records[0].Type)
}

func TestImportFileEmptyImport(t *testing.T) {
	sink := &captureSink{}
	svc := newTestService(sink)

	csv := "DATA,VALOR\n02/01/2025,0\n03/01/2025,\"0,01\"\n04/01/2025,\n"
	_, err := svc.ImportFile(context.Background(), "invalido.csv", []byte(csv))

	assert.ErrorIs(t, err, ErrEmptyImport)
	assert.Zero(t, sink.calls, "nothing may be committed on an empty import")
}

func TestImportFileParseFailureLeavesStateUntouched(t *testing.T) {
	sink := &captureSink{}
	svc := newTestService(sink)

	_, err := svc.ImportFile(context.Background(), "quebrado.xlsx", []byte{0x50, 0x4B, 0x03, 0x04})
	require.Error(t, err)
	assert.Zero(t, sink.calls)
}

func TestImportInFlightGuard(t *testing.T) {
	sink := &captureSink{}
	svc := newTestService(sink)

	svc.importing.Store(true)
	_, err := svc.ImportFile(context.Background(), "despesas.csv", []byte(sampleCSV))
	assert.ErrorIs(t, err, ErrImportInFlight)

	svc.importing.Store(false)
	_, err = svc.ImportFile(context.Background(), "despesas.csv", []byte(sampleCSV))
	assert.NoError(t, err)
}

func TestImportURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		io.WriteString(w, sampleCSV)
	}))
	defer srv.Close()

	sink := &captureSink{}
	svc := newTestService(sink)

	result, err := svc.ImportURL(context.Background(), srv.URL+"/pub/export.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
}

func TestImportURLFetchFailure(t *testing.T) {
	sink := &captureSink{}
	svc := newTestService(sink)

	_, err := svc.ImportURL(context.Background(), "http://127.0.0.1:1/export.csv")

	var ferr *fetcher.FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Zero(t, sink.calls)
}

func TestCommitErrorPropagates(t *testing.T) {
	sink := &captureSink{err: errors.New("disk full")}
	svc := newTestService(sink)

	_, err := svc.ImportFile(context.Background(), "despesas.csv", []byte(sampleCSV))
	assert.ErrorContains(t, err, "disk full")
}
