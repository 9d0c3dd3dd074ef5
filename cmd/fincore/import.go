package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/financecore/finance-core/internal/domain/auth"
	"github.com/financecore/finance-core/internal/domain/ingest"
	"github.com/financecore/finance-core/internal/domain/ingest/fetcher"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file-or-url>",
		Short: "Import a spreadsheet (.xlsx, .xls or .csv), replacing all records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requirePermission(auth.PermImportData); err != nil {
				return err
			}

			source := args[0]
			var (
				result *ingest.Result
				err    error
			)
			if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
				result, err = a.ingest.ImportURL(cmd.Context(), source)
			} else {
				var data []byte
				data, err = os.ReadFile(source)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", source, err)
				}
				result, err = a.ingest.ImportFile(cmd.Context(), filepath.Base(source), data)
			}
			if err != nil {
				return importErrorMessage(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Imported %d of %d rows (%d dropped) from %s\njob: %s\n",
				result.Imported, result.Total, result.Dropped, source, result.JobID)
			return nil
		},
	}
	return cmd
}

// importErrorMessage translates pipeline errors into operator guidance.
func importErrorMessage(err error) error {
	var fetchErr *fetcher.FetchError
	if errors.As(err, &fetchErr) && fetchErr.Reason == fetcher.ReasonNotSpreadsheet {
		return fmt.Errorf("%w\nhint: publish the sheet as .xlsx or .csv and use the export link, not the page URL", err)
	}
	if errors.Is(err, ingest.ErrEmptyImport) {
		return fmt.Errorf("%w\nhint: check that the sheet has a VALOR column with amounts above zero", err)
	}
	return err
}
