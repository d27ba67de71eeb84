package core

import "time"

// Record is the unit of stored knowledge: one ingested file normalized to text.
type Record struct {
	// Content is the normalized text, optionally prefixed with the user description.
	Content string `json:"content"`

	// Filename is the original upload name.
	Filename string `json:"filename"`

	// SourceType is the modality tag.
	SourceType SourceType `json:"source_type"`

	// UploadTime is set once at creation.
	UploadTime time.Time `json:"upload_time"`

	// Year is best-effort temporal metadata; nil when unknown.
	Year *int `json:"year,omitempty"`

	// FilePath is the media-directory relative path of the persisted original.
	// Only image and audio records carry one.
	FilePath string `json:"file_path,omitempty"`
}

// Result is a single hit from a similarity search. It is never persisted.
type Result struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Record  Record `json:"metadata"`

	// Distance is lower for better matches; its range depends on the index.
	Distance float32 `json:"distance"`
}

// MediaRef points at a persisted media original.
type MediaRef struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// Answer is the structured response to a query.
type Answer struct {
	Response string     `json:"response"`
	Images   []MediaRef `json:"images"`
	Audio    []MediaRef `json:"audio"`
}
