package ingest

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, source_path, kind, status, attempts, torrent_id, files_selected, error_message, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id            int64
		sourcePath    string
		kindStr       string
		statusStr     string
		attempts      sql.NullInt64
		torrentID     sql.NullString
		filesSelected sql.NullInt64
		errorMessage  sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&sourcePath,
		&kindStr,
		&statusStr,
		&attempts,
		&torrentID,
		&filesSelected,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:            id,
		SourcePath:    sourcePath,
		Kind:          Kind(kindStr),
		Status:        Status(statusStr),
		Attempts:      int(attempts.Int64),
		TorrentID:     torrentID.String,
		FilesSelected: int(filesSelected.Int64),
		ErrorMessage:  errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
