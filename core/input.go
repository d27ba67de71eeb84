package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownSourceType is returned for modality tags outside the supported set.
var ErrUnknownSourceType = errors.New("unknown source type")

// SourceType is the originating media kind of a memory.
type SourceType string

const (
	SourceText  SourceType = "text"
	SourceWord  SourceType = "word"
	SourceAudio SourceType = "audio"
	SourceImage SourceType = "image"
)

// SourceTypes lists every supported modality.
var SourceTypes = []SourceType{SourceText, SourceWord, SourceAudio, SourceImage}

// IsMedia reports whether originals of this type are persisted as side-files.
func (s SourceType) IsMedia() bool {
	return s == SourceImage || s == SourceAudio
}

// Valid reports whether s is one of the supported modalities.
func (s SourceType) Valid() bool {
	switch s {
	case SourceText, SourceWord, SourceAudio, SourceImage:
		return true
	}
	return false
}

func (s SourceType) String() string {
	return string(s)
}

// ParseSourceType converts a tag name (case-insensitive) into a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	st := SourceType(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSourceType, s)
	}
	return st, nil
}

var extensionTypes = map[string]SourceType{
	".txt":  SourceText,
	".md":   SourceText,
	".csv":  SourceText,
	".log":  SourceText,
	".json": SourceText,
	".docx": SourceWord,
	".mp3":  SourceAudio,
	".wav":  SourceAudio,
	".m4a":  SourceAudio,
	".ogg":  SourceAudio,
	".flac": SourceAudio,
	".webm": SourceAudio,
	".mp4":  SourceAudio,
	".jpg":  SourceImage,
	".jpeg": SourceImage,
	".png":  SourceImage,
	".gif":  SourceImage,
	".webp": SourceImage,
	".bmp":  SourceImage,
}

// DetectSourceType infers the modality from a filename extension.
func DetectSourceType(filename string) (SourceType, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if st, ok := extensionTypes[ext]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: cannot infer from %q", ErrUnknownSourceType, filename)
}

// Upload is one file handed to ingestion.
type Upload struct {
	// Filename is the original upload name.
	Filename string

	// Data holds the raw file bytes.
	Data []byte

	// SourceType selects the normalization path.
	SourceType SourceType

	// Description is an optional user note prepended to the normalized content.
	Description string
}
