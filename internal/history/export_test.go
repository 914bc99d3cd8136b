package history

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/na2kera/ai-rent-navi/internal/entity"
)

func TestExportXLSX(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	items := []entity.HistoryItem{
		newItem(testInput(90000), testResult(85000), now.Add(time.Minute)),
		newItem(testInput(80000), testResult(82000), now),
	}

	data, err := ExportXLSX(items, testLogger())
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Judgements")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "判定日時" || rows[0][13] != "価格評価" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	// newest item first, rent column J
	if rows[1][9] != "90000" {
		t.Errorf("rows[1] rent = %q, want 90000", rows[1][9])
	}
	if rows[2][9] != "80000" {
		t.Errorf("rows[2] rent = %q, want 80000", rows[2][9])
	}
	// structure code 3 renders as its label
	if rows[1][7] != "RC造 (鉄筋コンクリート造)" {
		t.Errorf("rows[1] structure = %q, want RC造 (鉄筋コンクリート造)", rows[1][7])
	}
	if rows[1][14] != "適正" {
		t.Errorf("rows[1] verdict = %q, want 適正", rows[1][14])
	}
}

func TestExportXLSXEmptyHistory(t *testing.T) {
	data, err := ExportXLSX(nil, testLogger())
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Judgements")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want header only", len(rows))
	}
}
