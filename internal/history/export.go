package history

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/na2kera/ai-rent-navi/constants"
	"github.com/na2kera/ai-rent-navi/internal/entity"
)

// ExportXLSX renders the judgement history as an XLSX workbook, newest
// judgement first, one row per item.
func ExportXLSX(items []entity.HistoryItem, logger *slog.Logger) ([]byte, error) {
	start := time.Now()
	if logger == nil {
		logger = slog.Default()
	}

	f := excelize.NewFile()
	const sheet = "Judgements"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"判定日時",
		"都道府県",
		"市区町村",
		"最寄り駅",
		"駅徒歩(分)",
		"面積(m2)",
		"築年数",
		"構造",
		"間取り",
		"家賃(円)",
		"予測家賃(円)",
		"適正下限(円)",
		"適正上限(円)",
		"価格評価",
		"判定",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, item := range items {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, formatTimestamp(item.Timestamp))
		write(2, item.Input.Prefecture)
		write(3, item.Input.City)
		write(4, item.Input.NearestStation)
		write(5, item.Input.DistanceFromStation)
		write(6, item.Input.Area)
		write(7, item.Input.Age)
		write(8, labelOrCode(constants.Structure(item.Input.Structure).Label()))
		write(9, labelOrCode(constants.Layout(item.Input.Layout).Label()))
		write(10, item.Input.Rent)
		write(11, item.Result.PredictedRent)
		write(12, item.Result.ReasonableRange.Min)
		write(13, item.Result.ReasonableRange.Max)
		write(14, item.Result.Message)
		if item.Result.IsReasonable {
			write(15, "適正")
		} else {
			write(15, "要確認")
		}

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "D", 16)
	_ = f.SetColWidth(sheet, "H", "I", 12)
	_ = f.SetColWidth(sheet, "J", "M", 14)
	_ = f.SetColWidth(sheet, "N", "N", 36)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("history.export.ok",
		"rows", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04")
}

func labelOrCode(label string, ok bool) string {
	if !ok {
		return "不明"
	}
	return label
}
