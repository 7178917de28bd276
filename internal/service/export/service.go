// Package export flattens broker statements and deal progress into
// spreadsheet rows for the back-office sheet the operators work from.
package export

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/repository"
	"github.com/nkhandelwal3/sauda-backend/internal/repository/sheets"
	"github.com/nkhandelwal3/sauda-backend/internal/service/analytics"
)

const (
	dateLayout          = "2006-01-02"
	statementSheetRange = "Statements!A:H"
	progressSheetRange  = "Progress!A:H"
)

// Service exports ledger and progress data to the configured spreadsheet.
type Service struct {
	writer    sheets.Writer
	brokers   repository.BrokerStore
	entries   repository.LedgerStore
	deals     repository.DealStore
	analytics *analytics.Service
	logger    *zap.Logger
}

// NewService wires an export service instance.
func NewService(writer sheets.Writer, brokers repository.BrokerStore, entries repository.LedgerStore, deals repository.DealStore, analyticsSvc *analytics.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		writer:    writer,
		brokers:   brokers,
		entries:   entries,
		deals:     deals,
		analytics: analyticsSvc,
		logger:    logger,
	}
}

// ExportBrokerStatement appends one row per ledger entry for the broker,
// closing with a totals row.
func (s *Service) ExportBrokerStatement(ctx context.Context, brokerID string) error {
	broker, err := s.brokers.FindByBrokerID(ctx, brokerID)
	if err != nil {
		return err
	}
	entries, err := s.entries.ListByBroker(ctx, brokerID)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(entries)+1)
	for _, entry := range entries {
		dealName := ""
		if entry.DealName != nil {
			dealName = *entry.DealName
		}
		mode := ""
		if entry.PaymentMode != nil {
			mode = *entry.PaymentMode
		}
		remarks := ""
		if entry.Remarks != nil {
			remarks = *entry.Remarks
		}
		rows = append(rows, []interface{}{
			entry.Date.Format(dateLayout),
			broker.BrokerID,
			broker.Name,
			dealName,
			entry.EntryType,
			entry.Amount,
			mode,
			remarks,
		})
	}
	rows = append(rows, []interface{}{
		time.Now().UTC().Format(dateLayout),
		broker.BrokerID,
		broker.Name,
		"TOTALS",
		fmt.Sprintf("CR %.2f / DR %.2f", broker.TotalCredits, broker.TotalDebits),
		broker.TotalDebits - broker.TotalCredits,
		"",
		"",
	})

	if err := s.writer.AppendRows(ctx, statementSheetRange, rows); err != nil {
		return err
	}
	s.logger.Info("broker statement exported",
		zap.String("broker_id", brokerID),
		zap.Int("entries", len(entries)))
	return nil
}

// ExportDealProgress appends one progress row per deal.
func (s *Service) ExportDealProgress(ctx context.Context) error {
	deals, err := s.deals.List(ctx)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(deals))
	for _, deal := range deals {
		rollup, err := s.analytics.ComputeDealAnalytics(ctx, deal.PublicID)
		if err != nil {
			s.logger.Warn("progress rollup failed, deal skipped",
				zap.String("deal_id", deal.PublicID), zap.Error(err))
			continue
		}
		frk := "n/a"
		if rollup.FRK != nil {
			frk = fmt.Sprintf("%d/%d", rollup.FRK.Completed, rollup.FRK.Total)
		}
		rows = append(rows, []interface{}{
			time.Now().UTC().Format(dateLayout),
			deal.PublicID,
			deal.Name,
			deal.Status,
			fmt.Sprintf("%d/%d", rollup.Bora.Shipped, rollup.Bora.Total),
			fmt.Sprintf("%d/%d", rollup.FlapSticker.Completed, rollup.FlapSticker.Total),
			fmt.Sprintf("%d/%d", rollup.GatePass.Completed, rollup.GatePass.Total),
			frk,
		})
	}

	if err := s.writer.AppendRows(ctx, progressSheetRange, rows); err != nil {
		return err
	}
	s.logger.Info("deal progress exported", zap.Int("deals", len(rows)))
	return nil
}
