// Package export pushes categorized transactions to a Google
// spreadsheet for out-of-app analysis.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsExporter builds an exporter authenticated with service
// account credentials, inline JSON or a file path.
func NewSheetsExporter(ctx context.Context, cfg Config) (*SheetsExporter, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.SheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	var credentialsJSON []byte
	switch {
	case cfg.CredentialsJSON != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets exporter initialized",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet", cfg.SheetName)

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// ExportTransactions appends one row per transaction to the sheet.
func (e *SheetsExporter) ExportTransactions(ctx context.Context, txs []core.CategorizedTransaction) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if len(txs) == 0 {
		return nil
	}

	values := make([][]any, len(txs))
	for i, tx := range txs {
		amount, _ := tx.Amount.Float64()
		values[i] = []any{tx.Date, tx.Description, amount, tx.LocalCategory, tx.AccountID}
	}

	rng := fmt.Sprintf("%s!A:E", e.sheetName)
	vr := &gsheet.ValueRange{Values: values}

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append rows: %w", err)
	}

	slog.InfoContext(ctx, "Exported transactions to spreadsheet",
		"rows", len(values),
		"sheet", e.sheetName)
	return nil
}
