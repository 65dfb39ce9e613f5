package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kouk/grawity-code/internal/presence"
	"github.com/kouk/grawity-code/internal/util"

	"cdr.dev/slog/v3"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"User", "Flag", "Host", "Line", "From", "Updated"}

func (h *WhoHandler) exportRecord(r presence.Row, now time.Time) []string {
	return []string{
		r.User,
		presence.Flag(r, now, h.MaxAge),
		presence.StripDomain(r.Host),
		r.LineText(),
		r.FromText(),
		time.Unix(r.Updated, 0).UTC().Format(time.RFC3339),
	}
}

func exportFilename(now time.Time, ext string) string {
	return fmt.Sprintf("attachment; filename=\"rwho_%s.%s\"", now.UTC().Format("20060102T1504"), ext)
}

// ExportCSV writes the summary rows as a CSV attachment.
func (h *WhoHandler) ExportCSV(c *gin.Context) {
	rows, ok := h.lookup(c)
	if !ok {
		util.Error(c, http.StatusServiceUnavailable, util.CodeUnavailable, "Failed to retrieve rwho data")
		return
	}
	now := h.Clock.Now()

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", exportFilename(now, "csv"))

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(exportHeaders)
	for _, r := range rows {
		_ = writer.Write(h.exportRecord(r, now))
	}
	writer.Flush()
}

// ExportXLSX writes the summary rows as a spreadsheet attachment.
func (h *WhoHandler) ExportXLSX(c *gin.Context) {
	rows, ok := h.lookup(c)
	if !ok {
		util.Error(c, http.StatusServiceUnavailable, util.CodeUnavailable, "Failed to retrieve rwho data")
		return
	}
	now := h.Clock.Now()

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "rwho"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}

	for i, hdr := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, hdr)
	}

	for idx, r := range rows {
		row := strconv.Itoa(idx + 2)
		record := h.exportRecord(r, now)
		for i, v := range record {
			col, _ := excelize.ColumnNumberToName(i + 1)
			_ = f.SetCellValue(sheetName, col+row, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "B", 5)
	_ = f.SetColWidth(sheetName, "C", "C", 14)
	_ = f.SetColWidth(sheetName, "D", "D", 10)
	_ = f.SetColWidth(sheetName, "E", "E", 30)
	_ = f.SetColWidth(sheetName, "F", "F", 22)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", exportFilename(now, "xlsx"))

	if err := f.Write(c.Writer); err != nil {
		h.Logger.Warn(c.Request.Context(), "write xlsx export", slog.Error(err))
	}
}
