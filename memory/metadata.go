package memory

import (
	"fmt"
	"strconv"
	"time"

	"github.com/becomeliminal/memory-vault/core"
)

// Metadata keys written for every stored memory.
const (
	KeyFilename   = "filename"
	KeySourceType = "source_type"
	KeyUploadTime = "upload_time"
	KeyYear       = "year"
	KeyFilePath   = "file_path"
)

// EncodeMetadata flattens a record into index metadata.
// Absent values are omitted entirely rather than stored empty.
func EncodeMetadata(r core.Record) map[string]string {
	metadata := make(map[string]string, 5)
	put := func(k, v string) {
		if v != "" {
			metadata[k] = v
		}
	}

	put(KeyFilename, r.Filename)
	put(KeySourceType, r.SourceType.String())
	if !r.UploadTime.IsZero() {
		put(KeyUploadTime, r.UploadTime.Format(time.RFC3339Nano))
	}
	if r.Year != nil {
		put(KeyYear, strconv.Itoa(*r.Year))
	}
	put(KeyFilePath, r.FilePath)

	return metadata
}

// DecodeMetadata rebuilds a record from index metadata and document content.
func DecodeMetadata(content string, metadata map[string]string) (core.Record, error) {
	r := core.Record{
		Content:    content,
		Filename:   metadata[KeyFilename],
		SourceType: core.SourceType(metadata[KeySourceType]),
		FilePath:   metadata[KeyFilePath],
	}

	if ts := metadata[KeyUploadTime]; ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return core.Record{}, fmt.Errorf("parse upload_time %q: %w", ts, err)
		}
		r.UploadTime = t
	}

	if y := metadata[KeyYear]; y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return core.Record{}, fmt.Errorf("parse year %q: %w", y, err)
		}
		r.Year = &year
	}

	return r, nil
}
