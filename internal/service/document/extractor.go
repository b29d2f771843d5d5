// Package document extracts plain text from uploaded documents and computes simple statistics over it.
package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/document/loader/file"
	"github.com/cloudwego/eino-ext/components/document/parser/docx"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einodoc "github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// MinMeaningfulChars is the shortest trimmed text accepted as a successful extraction.
const MinMeaningfulChars = 10

// Kind selects an extraction path.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindText Kind = "txt"
)

// FailureKind classifies an unsuccessful extraction.
type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureUnsupported FailureKind = "unsupported_type"
	FailureParse       FailureKind = "parse_error"
	FailureEmpty       FailureKind = "no_meaningful_text"
)

// Result is the outcome of one extraction. Exactly one of Text and Error is set.
type Result struct {
	Success bool        `json:"success"`
	Text    string      `json:"text,omitempty"`
	Error   string      `json:"error,omitempty"`
	Failure FailureKind `json:"-"`
}

func failure(kind FailureKind, format string, args ...any) Result {
	return Result{Failure: kind, Error: fmt.Sprintf(format, args...)}
}

// Extractor turns PDF, DOCX and plain-text payloads into text. It holds no mutable state after
// construction and is safe for concurrent use.
type Extractor struct {
	parsers map[Kind]parser.Parser
	loaders map[Kind]einodoc.Loader
	logger  *zap.Logger
}

// NewExtractor builds the parsers and file loaders for every supported kind.
func NewExtractor(ctx context.Context, logger *zap.Logger) (*Extractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pdfParser, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("init pdf parser: %w", err)
	}
	docxParser, err := docx.NewDocxParser(ctx, &docx.Config{
		ToSections:      false,
		IncludeComments: false,
		IncludeHeaders:  false,
		IncludeFooters:  false,
		IncludeTables:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("init docx parser: %w", err)
	}

	e := &Extractor{
		parsers: map[Kind]parser.Parser{
			KindPDF:  pdfParser,
			KindDOCX: docxParser,
			KindText: &textParser{},
		},
		loaders: make(map[Kind]einodoc.Loader, 3),
		logger:  logger,
	}
	for kind, p := range e.parsers {
		loader, err := file.NewFileLoader(ctx, &file.FileLoaderConfig{Parser: p})
		if err != nil {
			return nil, fmt.Errorf("init %s file loader: %w", kind, err)
		}
		e.loaders[kind] = loader
	}
	return e, nil
}

// Extract parses data according to declaredType. Failures are reported in the Result, never returned
// as errors or panics.
func (e *Extractor) Extract(ctx context.Context, data []byte, declaredType string) Result {
	kind, ok := DeclaredKind(declaredType)
	if !ok {
		return unsupported(declaredType)
	}
	return e.run(kind, func() ([]*schema.Document, error) {
		return e.parsers[kind].Parse(ctx, bytes.NewReader(data))
	})
}

// ExtractFile parses a document already stored on disk.
func (e *Extractor) ExtractFile(ctx context.Context, path, declaredType string) Result {
	kind, ok := DeclaredKind(declaredType)
	if !ok {
		return unsupported(declaredType)
	}
	return e.run(kind, func() ([]*schema.Document, error) {
		return e.loaders[kind].Load(ctx, einodoc.Source{URI: path})
	})
}

func (e *Extractor) run(kind Kind, parse func() ([]*schema.Document, error)) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("document parser panicked", zap.String("kind", string(kind)), zap.Any("panic", r))
			res = failure(FailureParse, "Error extracting text from %s: malformed document", label(kind))
		}
	}()

	docs, err := parse()
	if err != nil {
		e.logger.Warn("extract text failed", zap.String("kind", string(kind)), zap.Error(err))
		return failure(FailureParse, "Error extracting text from %s: %v", label(kind), err)
	}

	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d == nil {
			continue
		}
		parts = append(parts, d.Content)
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if utf8.RuneCountInString(text) < MinMeaningfulChars {
		return failure(FailureEmpty, "Could not extract meaningful text from the document.")
	}
	return Result{Success: true, Text: text}
}

func unsupported(declaredType string) Result {
	return failure(FailureUnsupported,
		"Unsupported file type: %s. Please upload PDF, DOCX, or TXT files only.", strings.ToLower(declaredType))
}

func label(kind Kind) string {
	return strings.ToUpper(string(kind))
}

// DeclaredKind dispatches on the suffix of a declared type such as "pdf", "application/pdf",
// "report.docx" or "text".
func DeclaredKind(declaredType string) (Kind, bool) {
	t := strings.ToLower(strings.TrimSpace(declaredType))
	switch {
	case t == "":
		return "", false
	case strings.HasSuffix(t, "pdf"):
		return KindPDF, true
	case strings.HasSuffix(t, "docx"):
		return KindDOCX, true
	case strings.HasSuffix(t, "txt"), strings.HasSuffix(t, "text"):
		return KindText, true
	default:
		return "", false
	}
}

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// KindForMIME maps an upload's Content-Type onto a kind.
func KindForMIME(contentType string) (Kind, bool) {
	mt := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "application/pdf":
		return KindPDF, true
	case docxMIME:
		return KindDOCX, true
	case "text/plain":
		return KindText, true
	default:
		return "", false
	}
}

// textExtensions are read as UTF-8 text regardless of their sniffed MIME type.
var textExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".csv":  {},
	".json": {},
}

// KindForFilename maps a filename extension onto a kind.
func KindForFilename(name string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pdf":
		return KindPDF, true
	case ".docx":
		return KindDOCX, true
	}
	if _, ok := textExtensions[ext]; ok {
		return KindText, true
	}
	return "", false
}

// textParser decodes strict UTF-8.
type textParser struct{}

func (p *textParser) Parse(_ context.Context, reader io.Reader, _ ...parser.Option) ([]*schema.Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("content is not valid UTF-8")
	}
	return []*schema.Document{{Content: string(content), MetaData: make(map[string]any)}}, nil
}
