// Package extract turns uploaded documents into plain text.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
)

// Supported media types.
const (
	MediaTypeText = "text/plain"
	MediaTypeHTML = "text/html"
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	mediaTypeOctetStream = "application/octet-stream"
)

// DefaultMaxBytes bounds a staged upload when no limit is configured.
const DefaultMaxBytes = 10 << 20

var extensionTypes = map[string]string{
	".txt":  MediaTypeText,
	".text": MediaTypeText,
	".md":   MediaTypeText,
	".docx": MediaTypeDOCX,
	".pdf":  MediaTypePDF,
	".html": MediaTypeHTML,
	".htm":  MediaTypeHTML,
}

type parseFunc func(ctx context.Context, f *os.File, size int64) (string, error)

// Extractor converts document blobs into normalized plain text. Each blob is
// staged to a temporary file that is removed before Extract returns.
type Extractor struct {
	maxBytes int64
	tempDir  string
	logger   *zap.Logger
	parsers  map[string]parseFunc
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxBytes sets the largest blob Extract accepts.
func WithMaxBytes(n int64) Option {
	return func(e *Extractor) { e.maxBytes = n }
}

// WithTempDir stages blobs under dir instead of the OS default.
func WithTempDir(dir string) Option {
	return func(e *Extractor) { e.tempDir = dir }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New creates an Extractor for plain text, DOCX, PDF and HTML.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		maxBytes: DefaultMaxBytes,
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	e.logger = e.logger.Named("extract")
	e.parsers = map[string]parseFunc{
		MediaTypeText: parseText,
		MediaTypeDOCX: parseDOCX,
		MediaTypePDF:  parsePDF,
		MediaTypeHTML: parseHTML,
	}
	return e
}

// ResolveMediaType strips parameters from the declared type and falls back
// to the filename extension when the client sent nothing useful.
func ResolveMediaType(declared, filename string) string {
	mt := ""
	if declared != "" {
		if parsed, _, err := mime.ParseMediaType(declared); err == nil {
			mt = strings.ToLower(parsed)
		} else {
			mt = strings.ToLower(strings.TrimSpace(declared))
		}
	}
	if mt == "" || mt == mediaTypeOctetStream {
		if byExt, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
			return byExt
		}
	}
	return mt
}

// Supported reports whether mediaType can be extracted.
func (e *Extractor) Supported(mediaType string) bool {
	_, ok := e.parsers[ResolveMediaType(mediaType, "")]
	return ok
}

// Extract reads blob as a document of declaredMediaType and returns its
// text. An unsupported type yields *model.UnsupportedFormatError without
// reading blob; a corrupt document yields *model.ExtractionError.
func (e *Extractor) Extract(ctx context.Context, blob io.Reader, declaredMediaType string) (string, error) {
	mediaType := ResolveMediaType(declaredMediaType, "")
	parse, ok := e.parsers[mediaType]
	if !ok {
		return "", &model.UnsupportedFormatError{MediaType: declaredMediaType}
	}

	f, size, err := e.stage(blob)
	if f != nil {
		defer func() {
			f.Close()
			if rmErr := os.Remove(f.Name()); rmErr != nil {
				e.logger.Warn("remove staged upload", zap.String("path", f.Name()), zap.Error(rmErr))
			}
		}()
	}
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := parse(ctx, f, size)
	if err != nil {
		return "", &model.ExtractionError{MediaType: mediaType, Err: err}
	}
	text = normalizeText(text)
	e.logger.Debug("extracted document",
		zap.String("media_type", mediaType),
		zap.Int64("bytes", size),
		zap.Int("runes", utf8.RuneCountInString(text)),
	)
	return text, nil
}

// stage copies blob into a temporary file. The returned file, when non-nil,
// must be closed and removed by the caller even if err is set.
func (e *Extractor) stage(blob io.Reader) (*os.File, int64, error) {
	f, err := os.CreateTemp(e.tempDir, "upload-*")
	if err != nil {
		return nil, 0, fmt.Errorf("create temp file: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(blob, e.maxBytes+1))
	if err != nil {
		return f, 0, fmt.Errorf("stage upload: %w", err)
	}
	if n > e.maxBytes {
		return f, 0, &model.InvalidInputError{Reason: fmt.Sprintf("file exceeds %d bytes", e.maxBytes)}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return f, 0, fmt.Errorf("rewind staged upload: %w", err)
	}
	return f, n, nil
}

func parseText(_ context.Context, f *os.File, _ int64) (string, error) {
	decoded, err := io.ReadAll(transform.NewReader(f, unicode.BOMOverride(transform.Nop)))
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("text is not valid UTF-8")
	}
	return string(bytes.ReplaceAll(decoded, []byte("\r\n"), []byte("\n"))), nil
}

// Tabs are kept: DOCX cells and tab stops come through as \t.
var multiSpace = regexp.MustCompile(` +`)
var multiNewline = regexp.MustCompile(`\n{3,}`)

func normalizeText(s string) string {
	s = strings.TrimSpace(s)
	s = multiSpace.ReplaceAllString(s, " ")
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return s
}
