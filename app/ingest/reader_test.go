package ingest

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write test CSV: %v", err)
	}
	return path
}

func TestReaderChunking(t *testing.T) {
	data := []byte("NoticeId,PopCountry\nN1,Kenya\nN2,Jordan\nN3,Ghana\nN4,Peru\nN5,Fiji\n")
	reader, err := NewReader(writeTempCSV(t, data), 2)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var chunkSizes []int
	total := 0
	for {
		rows, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		chunkSizes = append(chunkSizes, len(rows))
		total += len(rows)
	}

	if total != 5 {
		t.Errorf("Expected 5 rows total, got %d", total)
	}
	if len(chunkSizes) != 3 || chunkSizes[0] != 2 || chunkSizes[1] != 2 || chunkSizes[2] != 1 {
		t.Errorf("Expected chunks [2 2 1], got %v", chunkSizes)
	}
}

func TestReaderMapsColumnsByHeader(t *testing.T) {
	data := []byte("NoticeId,Title,PopCountry\nN1,\"Bridges, roads and culverts\",Kenya\n")
	reader, err := NewReader(writeTempCSV(t, data), 10)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	rows, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0]["NoticeId"] != "N1" {
		t.Errorf("Expected NoticeId N1, got %q", rows[0]["NoticeId"])
	}
	if rows[0]["Title"] != "Bridges, roads and culverts" {
		t.Errorf("Quoted field mangled: %q", rows[0]["Title"])
	}
}

func TestReaderToleratesShortAndLongRows(t *testing.T) {
	// One row missing a trailing column, one with an extra column.
	data := []byte("NoticeId,Title,PopCountry\nN1,Short row\nN2,Full row,Kenya,extra\n")
	reader, err := NewReader(writeTempCSV(t, data), 10)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	rows, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	if _, ok := rows[0]["PopCountry"]; ok {
		t.Error("Expected absent column to be missing from the row map")
	}
	if rows[1]["PopCountry"] != "Kenya" {
		t.Errorf("Expected PopCountry Kenya, got %q", rows[1]["PopCountry"])
	}
}

func TestReaderStripsUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("NoticeId,PopCountry\nN1,Kenya\n")...)
	reader, err := NewReader(writeTempCSV(t, data), 10)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	header := reader.Header()
	if len(header) == 0 || header[0] != "NoticeId" {
		t.Errorf("Expected BOM-free header, got %v", header)
	}
}

func TestReaderDecodesWindows1252(t *testing.T) {
	// 0xE9 is é in Windows-1252.
	data := []byte("NoticeId,PopCountry\nN1,R\xE9union\n")
	reader, err := NewReader(writeTempCSV(t, data), 10)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	rows, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if rows[0]["PopCountry"] != "Réunion" {
		t.Errorf("Expected decoded Réunion, got %q", rows[0]["PopCountry"])
	}
}

func TestReaderEmptyFileAfterHeader(t *testing.T) {
	reader, err := NewReader(writeTempCSV(t, []byte("NoticeId,PopCountry\n")), 10)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestReaderRejectsBadChunkSize(t *testing.T) {
	if _, err := NewReader("irrelevant.csv", 0); err == nil {
		t.Error("Expected error for non-positive chunk size")
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.csv"), 10); err == nil {
		t.Error("Expected error for missing file")
	}
}
