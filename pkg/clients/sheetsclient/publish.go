package sheetsclient

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/sheets/v4"

	"github.com/jakechorley/volunteer-admin/pkg/core/export"
)

// SpreadsheetURL returns the browser URL of a spreadsheet
func SpreadsheetURL(spreadsheetID string) string {
	return "https://docs.google.com/spreadsheets/d/" + spreadsheetID
}

// quoteSheetName quotes a tab title for use in A1 notation
func quoteSheetName(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// PublishWorkbook writes every sheet of wb into the spreadsheet. Missing tabs are created and
// existing ones are cleared before writing. Tabs not in wb are left alone.
func (c *Client) PublishWorkbook(ctx context.Context, spreadsheetID string, wb *export.Workbook) (string, error) {
	existing, err := c.SheetTitles(ctx, spreadsheetID)
	if err != nil {
		return "", err
	}
	present := make(map[string]bool, len(existing))
	for _, title := range existing {
		present[title] = true
	}

	var missing, clear []string
	for _, sheet := range wb.Sheets {
		if present[sheet.Name] {
			clear = append(clear, quoteSheetName(sheet.Name))
		} else {
			missing = append(missing, sheet.Name)
		}
	}

	c.logger.Debug("Publishing workbook",
		zap.String("spreadsheet_id", spreadsheetID),
		zap.Int("sheets", len(wb.Sheets)),
		zap.Int("new_sheets", len(missing)))

	if err := c.CreateSheets(ctx, spreadsheetID, missing); err != nil {
		return "", err
	}

	if len(clear) > 0 {
		_, err := c.service.Spreadsheets.Values.BatchClear(spreadsheetID, &sheets.BatchClearValuesRequest{
			Ranges: clear,
		}).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("failed to clear sheets: %w", err)
		}
	}

	data := make([]*sheets.ValueRange, 0, len(wb.Sheets))
	for _, sheet := range wb.Sheets {
		data = append(data, &sheets.ValueRange{
			Range:  quoteSheetName(sheet.Name) + "!A1",
			Values: sheet.Values(),
		})
	}

	_, err = c.service.Spreadsheets.Values.BatchUpdate(spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to write sheets: %w", err)
	}

	return SpreadsheetURL(spreadsheetID), nil
}
