package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"golang.org/x/text/encoding/charmap"

	// webp uploads are decoded through the image registry.
	_ "golang.org/x/image/webp"

	"github.com/becomeliminal/memory-vault/core"
	"github.com/becomeliminal/memory-vault/log"
)

// DefaultMaxImageDimension bounds the longest image side sent for captioning.
const DefaultMaxImageDimension = 1024

// ErrEmptyContent is returned when a file normalizes to nothing but whitespace.
var ErrEmptyContent = errors.New("normalized content is empty")

// Captioner describes an image in natural language.
type Captioner interface {
	Caption(ctx context.Context, image []byte, mediaType string) (string, error)
}

// Transcriber converts the audio file at path to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Normalizer turns a file of any supported modality into text.
type Normalizer struct {
	captioner         Captioner
	transcriber       Transcriber
	maxImageDimension int
}

// NewNormalizer creates a Normalizer. A non-positive maxImageDimension uses the default.
func NewNormalizer(captioner Captioner, transcriber Transcriber, maxImageDimension int) *Normalizer {
	if maxImageDimension <= 0 {
		maxImageDimension = DefaultMaxImageDimension
	}
	return &Normalizer{
		captioner:         captioner,
		transcriber:       transcriber,
		maxImageDimension: maxImageDimension,
	}
}

// Normalize extracts text from the file at path and applies the description prefix.
//
// Audio transcription failures degrade to a placeholder string. Every other failure,
// including read and decode errors, is returned.
func (n *Normalizer) Normalize(ctx context.Context, sourceType core.SourceType, path, description string) (string, error) {
	var (
		content string
		err     error
	)

	switch sourceType {
	case core.SourceText:
		content, err = readText(path)
	case core.SourceWord:
		content, err = readDocx(path)
	case core.SourceAudio:
		content = n.transcribe(ctx, path)
	case core.SourceImage:
		content, err = n.caption(ctx, path)
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnknownSourceType, sourceType)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}

	if description != "" {
		content = fmt.Sprintf("Description: %s\n\n%s", description, content)
	}
	return content, nil
}

// readText reads UTF-8, falling back to ISO-8859-1 which accepts every byte sequence.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode latin-1: %w", err)
	}
	return string(decoded), nil
}

func (n *Normalizer) transcribe(ctx context.Context, path string) string {
	text, err := n.transcribeErr(ctx, path)
	if err != nil {
		log.Component(ctx, "normalizer").Warn().Err(err).Str("path", path).Msg("transcription failed, storing placeholder")
		return fmt.Sprintf("Audio transcription failed: %v. This is a placeholder for audio content.", err)
	}
	return fmt.Sprintf("Audio transcription: %s", text)
}

func (n *Normalizer) transcribeErr(ctx context.Context, path string) (string, error) {
	if n.transcriber == nil {
		return "", errors.New("no transcriber configured")
	}
	return n.transcriber.Transcribe(ctx, path)
}

func (n *Normalizer) caption(ctx context.Context, path string) (string, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	// Fit never upscales, so small images pass through at their own size.
	img = imaging.Fit(img, n.maxImageDimension, n.maxImageDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	if n.captioner == nil {
		return "", errors.New("no captioner configured")
	}
	caption, err := n.captioner.Caption(ctx, buf.Bytes(), "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("caption image: %w", err)
	}

	return fmt.Sprintf("This image shows: %s. This appears to be a personal memory captured in a photograph.", caption), nil
}
