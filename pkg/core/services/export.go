package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/core/export"
)

// WorkbookPublisher writes a workbook into a Google spreadsheet and returns its URL
type WorkbookPublisher interface {
	PublishWorkbook(ctx context.Context, spreadsheetID string, wb *export.Workbook) (string, error)
}

// ExportResult says where a workbook ended up
type ExportResult struct {
	Path   string // local .xlsx file, empty when not written
	URL    string // published spreadsheet, empty when not published
	Sheets []string
}

// ExportOptions selects the export destinations. At least one of Dir or SpreadsheetID is required.
type ExportOptions struct {
	Dir           string
	FileName      string
	SpreadsheetID string
	Publisher     WorkbookPublisher
}

// ExportWorkbook writes wb to an .xlsx file and/or publishes it
func ExportWorkbook(ctx context.Context, wb *export.Workbook, opts ExportOptions, logger *zap.Logger) (*ExportResult, error) {
	if opts.Dir == "" && opts.SpreadsheetID == "" {
		return nil, fmt.Errorf("no export destination given")
	}

	result := &ExportResult{Sheets: wb.Names()}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create export directory: %w", err)
		}
		path := filepath.Join(opts.Dir, opts.FileName)
		logger.Debug("Writing workbook", zap.String("path", path), zap.Int("sheets", len(wb.Sheets)))
		if err := export.SaveXLSX(path, wb); err != nil {
			return nil, err
		}
		result.Path = path
	}

	if opts.SpreadsheetID != "" {
		if opts.Publisher == nil {
			return nil, fmt.Errorf("no spreadsheet publisher configured")
		}
		url, err := opts.Publisher.PublishWorkbook(ctx, opts.SpreadsheetID, wb)
		if err != nil {
			return nil, fmt.Errorf("failed to publish workbook: %w", err)
		}
		result.URL = url
	}

	logger.Info("Exported workbook",
		zap.String("path", result.Path),
		zap.String("url", result.URL),
		zap.Int("sheets", len(result.Sheets)))
	return result, nil
}
