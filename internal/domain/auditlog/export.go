package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/codecentric/c4-genai-suite/backend/internal/domain/paging"
)

// MaxExportRows bounds the size of one export
const MaxExportRows = 10000

const exportSheet = "Audit Log"

// truncatedMarker ends a cell value cut down to excelize.TotalCellChars
const truncatedMarker = "...[truncated]"

// ExportResult is a generated workbook
type ExportResult struct {
	FileContent []byte
	FileName    string
	Rows        int
}

// ExportAuditLogs writes the entries matching q into an xlsx workbook, newest
// first. Paging fields of q are ignored. Text longer than the xlsx cell limit
// of 32,767 characters is cut and ends with truncatedMarker; the stored entry
// stays complete and is available through the JSON API.
func (s *Service) ExportAuditLogs(ctx context.Context, q Query) (*ExportResult, error) {
	filters, err := q.filters()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"ID", "Created At", "Entity Type", "Entity ID", "Action", "User ID", "User Name", "Snapshot"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(exportSheet, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(exportSheet, "A1", "H1", headerStyle)

	row := 2
	for offset := 0; offset < MaxExportRows; offset += paging.MaxPageSize {
		items, total, err := s.store.ListAuditLogs(ctx, filters, paging.MaxPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list audit logs: %w", err)
		}
		for _, l := range items {
			snapshot, err := json.Marshal(buildEntry(l).Snapshot)
			if err != nil {
				return nil, fmt.Errorf("failed to encode snapshot of entry %d: %w", l.ID, err)
			}
			userName := ""
			if l.UserName != nil {
				userName = *l.UserName
			}
			values := []interface{}{
				l.ID, l.CreatedAt.UTC().Format(time.RFC3339), l.EntityType, l.EntityID,
				l.Action, l.UserID, fitCell(userName), fitCell(string(snapshot)),
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
			row++
		}
		if len(items) < paging.MaxPageSize || offset+len(items) >= total {
			break
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", "B", 22)
	_ = f.SetColWidth(exportSheet, "C", "F", 16)
	_ = f.SetColWidth(exportSheet, "G", "G", 20)
	_ = f.SetColWidth(exportSheet, "H", "H", 80)

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel to buffer: %w", err)
	}

	return &ExportResult{
		FileContent: buffer.Bytes(),
		FileName:    fmt.Sprintf("audit_log_%s.xlsx", time.Now().UTC().Format("20060102_150405")),
		Rows:        row - 2,
	}, nil
}

// fitCell shortens s to the number of characters an xlsx cell can hold
func fitCell(s string) string {
	if utf8.RuneCountInString(s) <= excelize.TotalCellChars {
		return s
	}
	keep := excelize.TotalCellChars - utf8.RuneCountInString(truncatedMarker)
	return string([]rune(s)[:keep]) + truncatedMarker
}
