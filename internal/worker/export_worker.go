// Package worker runs the background spreadsheet export triggered by
// AMQP messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LukasAlexandre/Finance-Hub/internal/amqp"
	"github.com/LukasAlexandre/Finance-Hub/internal/core"
)

// TransactionLister provides the categorized transactions the worker
// exports.
type TransactionLister interface {
	ListTransactions(ctx context.Context, accountID, from, to string) ([]core.CategorizedTransaction, error)
}

// Exporter writes transactions to the external destination.
type Exporter interface {
	ExportTransactions(ctx context.Context, txs []core.CategorizedTransaction) error
}

type ExportWorker struct {
	lister    TransactionLister
	exporter  Exporter
	batchSize int
}

func NewExportWorker(lister TransactionLister, exporter Exporter, batchSize int) *ExportWorker {
	if batchSize < 1 {
		batchSize = 50
	}
	return &ExportWorker{
		lister:    lister,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes one queued export: fetch the range,
// then push it to the spreadsheet in batches. A returned error requeues
// the message.
func (w *ExportWorker) HandleExportMessage(msg *amqp.ExportMessage) error {
	ctx := context.Background()

	txs, err := w.lister.ListTransactions(ctx, msg.AccountID, msg.From, msg.To)
	if err != nil {
		return fmt.Errorf("list transactions for export: %w", err)
	}
	if len(txs) == 0 {
		slog.InfoContext(ctx, "Nothing to export", "from", msg.From, "to", msg.To)
		return nil
	}

	for start := 0; start < len(txs); start += w.batchSize {
		end := start + w.batchSize
		if end > len(txs) {
			end = len(txs)
		}
		if err := w.exporter.ExportTransactions(ctx, txs[start:end]); err != nil {
			return fmt.Errorf("export batch %d-%d: %w", start, end, err)
		}
	}

	slog.InfoContext(ctx, "Export completed",
		"transactions", len(txs),
		"from", msg.From,
		"to", msg.To)
	return nil
}
