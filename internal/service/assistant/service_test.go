package assistant

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"curio/internal/config"
	"curio/internal/models"
	"curio/internal/service/ai"
	"curio/internal/service/document"
	"curio/internal/storage"
)

type fakeGenerator struct {
	reply      ai.Reply
	translated ai.Reply
	prompts    []string
	translates []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) ai.Reply {
	f.prompts = append(f.prompts, prompt)
	return f.reply
}

func (f *fakeGenerator) Translate(_ context.Context, text string) ai.Reply {
	f.translates = append(f.translates, text)
	return f.translated
}

func (f *fakeGenerator) Tier() ai.Tier    { return ai.TierPrimary }
func (f *fakeGenerator) Model() string    { return "fake-model" }
func (f *fakeGenerator) Language() string { return "Bengali" }

func okReply(text string) ai.Reply {
	return ai.Reply{Text: text, Outcome: ai.OutcomeOK}
}

type failingStore struct {
	*storage.Store
}

func (failingStore) SaveFileUpload(context.Context, *models.FileUpload) (int64, error) {
	return 0, errors.New("disk full")
}

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := storage.Open(config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestService(t *testing.T, gen *fakeGenerator) (*Service, *sqlx.DB, string) {
	t.Helper()
	db := openTestDB(t)
	extractor, err := document.NewExtractor(context.Background(), nil)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "uploads")
	return NewService(storage.NewStore(db), gen, extractor, dir, nil), db, dir
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	gen := &fakeGenerator{reply: okReply("unused")}
	svc, db, _ := newTestService(t, gen)

	if _, err := svc.Chat(context.Background(), "   ", true); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if len(gen.prompts) != 0 || countRows(t, db, "chat_messages") != 0 {
		t.Fatalf("empty message must not reach generation or storage")
	}
}

func TestChatTranslatesAndPersists(t *testing.T) {
	gen := &fakeGenerator{reply: okReply("Water boils at 100C."), translated: okReply("জল ১০০ ডিগ্রিতে ফোটে।")}
	svc, _, _ := newTestService(t, gen)

	res, err := svc.Chat(context.Background(), "When does water boil?", true)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if res.Response != "Water boils at 100C." || res.Translation != "জল ১০০ ডিগ্রিতে ফোটে।" || !res.Translated {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(gen.translates) != 1 || gen.translates[0] != "Water boils at 100C." {
		t.Fatalf("expected the reply to be translated, got %v", gen.translates)
	}

	history, err := svc.History(context.Background())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || !history[0].IsTranslated || history[0].IsDegraded || history[0].ID != res.MessageID {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestChatTranslationFailureMarker(t *testing.T) {
	gen := &fakeGenerator{
		reply:      okReply("An atom is tiny."),
		translated: ai.Reply{Text: ai.MessageUnavailable, Outcome: ai.OutcomeUnavailable, Err: errors.New("deadline exceeded")},
	}
	svc, _, _ := newTestService(t, gen)

	res, err := svc.Chat(context.Background(), "What is an atom?", true)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if res.Translation != "[Translation failed: deadline exceeded]" {
		t.Fatalf("unexpected translation %q", res.Translation)
	}
}

func TestChatPersistsDegradedReply(t *testing.T) {
	gen := &fakeGenerator{reply: ai.Reply{Text: ai.MessageRateLimited, Outcome: ai.OutcomeRateLimited, Err: errors.New("429")}}
	svc, _, _ := newTestService(t, gen)

	res, err := svc.Chat(context.Background(), "hello", true)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if res.Response != ai.MessageRateLimited || res.Translated || len(gen.translates) != 0 {
		t.Fatalf("apologies should not be translated: %+v", res)
	}
	history, _ := svc.History(context.Background())
	if len(history) != 1 || !history[0].IsDegraded || history[0].BotResponse != ai.MessageRateLimited {
		t.Fatalf("expected degraded record, got %+v", history)
	}
}

func TestTranslateRequiresText(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeGenerator{})
	if _, err := svc.Translate(context.Background(), ""); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestStoreUploadDistinctNames(t *testing.T) {
	gen := &fakeGenerator{reply: okReply("A short note about cells.")}
	svc, db, dir := newTestService(t, gen)
	ctx := context.Background()
	body := "Cells are the smallest units of life. They divide to grow."

	first, err := svc.StoreUpload(ctx, "notes.txt", strings.NewReader(body))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := svc.StoreUpload(ctx, "notes.txt", strings.NewReader(body))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if first.File.StoredFilename == second.File.StoredFilename || first.File.ID == second.File.ID {
		t.Fatalf("expected distinct uploads, got %+v and %+v", first.File, second.File)
	}
	if filepath.Ext(first.File.StoredFilename) != ".txt" {
		t.Fatalf("extension not preserved: %q", first.File.StoredFilename)
	}
	if countRows(t, db, "file_uploads") != 2 {
		t.Fatalf("expected two upload records")
	}
	if first.File.FileType != "text" {
		t.Fatalf("expected text type, got %q", first.File.FileType)
	}
	if first.Analysis != "A short note about cells." {
		t.Fatalf("unexpected analysis %q", first.Analysis)
	}
	if first.Summary == nil || first.Summary.SentenceCount != 2 {
		t.Fatalf("unexpected summary %+v", first.Summary)
	}
	if !strings.HasPrefix(gen.prompts[0], "Analyze this text file content and provide a summary:\n\n") {
		t.Fatalf("unexpected prompt %q", gen.prompts[0])
	}

	stored, err := os.ReadFile(filepath.Join(dir, first.File.StoredFilename))
	if err != nil || string(stored) != body {
		t.Fatalf("stored bytes mismatch: %v", err)
	}
}

func TestStoreUploadTruncatesPrompt(t *testing.T) {
	gen := &fakeGenerator{reply: okReply("long")}
	svc, _, _ := newTestService(t, gen)

	body := strings.Repeat("word ", 1000)
	if _, err := svc.StoreUpload(context.Background(), "long.txt", strings.NewReader(body)); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasSuffix(gen.prompts[0], "...(content truncated due to length)") {
		t.Fatalf("expected truncation notice in prompt")
	}
}

func TestStoreUploadAnalyzesAnyTextType(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"page.html", "<!DOCTYPE html><html><body><p>Light travels in straight lines.</p></body></html>"},
		{"data.xml", "<?xml version=\"1.0\"?><planets><planet>Mars is the fourth planet.</planet></planets>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: okReply("Markup about science.")}
			svc, _, _ := newTestService(t, gen)

			res, err := svc.StoreUpload(context.Background(), tt.name, strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("upload: %v", err)
			}
			if res.File.FileType != "text" {
				t.Fatalf("expected text type, got %q", res.File.FileType)
			}
			if len(gen.prompts) != 1 || res.Analysis != "Markup about science." || res.Summary == nil {
				t.Fatalf("expected text upload to be analyzed, got %+v (prompts=%d)", res, len(gen.prompts))
			}
		})
	}
}

func TestStoreUploadUnsupportedType(t *testing.T) {
	gen := &fakeGenerator{reply: okReply("unused")}
	svc, _, _ := newTestService(t, gen)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	res, err := svc.StoreUpload(context.Background(), "photo.png", bytes.NewReader(png))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Analysis != "File uploaded successfully. File type 'image' analysis is not supported." {
		t.Fatalf("unexpected analysis %q", res.Analysis)
	}
	if len(gen.prompts) != 0 {
		t.Fatalf("unsupported files should not be sent for analysis")
	}
}

func TestStoreUploadRejectsEmptyAndUnnamed(t *testing.T) {
	svc, db, dir := newTestService(t, &fakeGenerator{})
	ctx := context.Background()

	if _, err := svc.StoreUpload(ctx, "", strings.NewReader("data")); !errors.Is(err, ErrNoFilename) {
		t.Fatalf("expected ErrNoFilename, got %v", err)
	}
	if _, err := svc.StoreUpload(ctx, "empty.txt", strings.NewReader("")); !errors.Is(err, ErrEmptyUpload) {
		t.Fatalf("expected ErrEmptyUpload, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 || countRows(t, db, "file_uploads") != 0 {
		t.Fatalf("rejected uploads must leave nothing behind, found %d files", len(entries))
	}
}

func TestStoreUploadRemovesFileWhenRecordFails(t *testing.T) {
	db := openTestDB(t)
	extractor, err := document.NewExtractor(context.Background(), nil)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	dir := t.TempDir()
	svc := NewService(failingStore{storage.NewStore(db)}, &fakeGenerator{reply: okReply("x")}, extractor, dir, nil)

	if _, err := svc.StoreUpload(context.Background(), "notes.txt", strings.NewReader("some content here")); err == nil {
		t.Fatalf("expected save failure")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected upload to be removed, found %d files", len(entries))
	}
}

func TestUploadPath(t *testing.T) {
	gen := &fakeGenerator{reply: okReply("fine")}
	svc, _, _ := newTestService(t, gen)

	res, err := svc.StoreUpload(context.Background(), "a.txt", strings.NewReader("enough text to analyze"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if _, err := svc.UploadPath(res.File.StoredFilename); err != nil {
		t.Fatalf("resolve upload: %v", err)
	}
	for _, name := range []string{"../secret", ".upload-123", "missing.txt", ""} {
		if _, err := svc.UploadPath(name); !errors.Is(err, ErrFileNotFound) {
			t.Fatalf("%q: expected ErrFileNotFound, got %v", name, err)
		}
	}
}

func TestAnalyzeDocument(t *testing.T) {
	gen := &fakeGenerator{reply: okReply("This document explains photosynthesis.")}
	svc, _, _ := newTestService(t, gen)

	out, err := svc.AnalyzeDocument(context.Background(), DocumentInput{
		FileName:   "bio.txt",
		Data:       []byte("Plants use sunlight to make food.\n\nThis is called photosynthesis."),
		SaveToChat: true,
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out.FileType != document.KindText || out.Summary.ParagraphCount != 2 || out.Analysis != "This document explains photosynthesis." {
		t.Fatalf("unexpected analysis %+v", out)
	}
	if !strings.Contains(gen.prompts[0], `"bio.txt"`) {
		t.Fatalf("prompt should name the document: %q", gen.prompts[0])
	}
	history, _ := svc.History(context.Background())
	if len(history) != 1 || history[0].UserMessage != "Analyzed document: bio.txt" {
		t.Fatalf("expected saved chat record, got %+v", history)
	}
}

func TestAnalyzeDocumentErrors(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeGenerator{reply: okReply("x")})
	ctx := context.Background()

	if _, err := svc.AnalyzeDocument(ctx, DocumentInput{FileName: "image.png", Data: []byte("png")}); !errors.Is(err, ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
	_, err := svc.AnalyzeDocument(ctx, DocumentInput{FileName: "short.txt", Data: []byte("tiny")})
	var extractErr *ExtractionError
	if !errors.As(err, &extractErr) || extractErr.Result.Failure != document.FailureEmpty {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestAnalyzeResearch(t *testing.T) {
	gen := &fakeGenerator{reply: okReply("A careful study.")}
	svc, db, _ := newTestService(t, gen)
	ctx := context.Background()

	if _, err := svc.AnalyzeResearch(ctx, "Title", " ", ""); !errors.Is(err, ErrMissingPaperFields) {
		t.Fatalf("expected ErrMissingPaperFields, got %v", err)
	}

	res, err := svc.AnalyzeResearch(ctx, "Dark Matter", "We study halos.", strings.Repeat("x", 5000))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.PaperID <= 0 || res.Reply.Text != "A careful study." {
		t.Fatalf("unexpected result %+v", res)
	}
	prompt := gen.prompts[0]
	if !strings.HasPrefix(prompt, "Analyze this research paper and provide a detailed review:\n\nTitle: Dark Matter\n\nAbstract: We study halos.\n\nContent: ") {
		t.Fatalf("unexpected prompt prefix %q", prompt[:80])
	}
	if strings.Count(prompt, "x") != 4000 || !strings.HasSuffix(prompt, "...(content truncated due to length)") {
		t.Fatalf("content not truncated in prompt")
	}
	if countRows(t, db, "research_papers") != 1 {
		t.Fatalf("expected one stored paper")
	}
}

func TestAnalyzeResearchDoesNotStoreApology(t *testing.T) {
	gen := &fakeGenerator{reply: ai.Reply{Text: ai.MessageRateLimited, Outcome: ai.OutcomeRateLimited}}
	svc, db, _ := newTestService(t, gen)

	res, err := svc.AnalyzeResearch(context.Background(), "T", "A", "")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.PaperID != 0 || res.Reply.Outcome != ai.OutcomeRateLimited {
		t.Fatalf("unexpected result %+v", res)
	}
	if countRows(t, db, "research_papers") != 0 {
		t.Fatalf("apology should not be stored")
	}
}

func TestStatus(t *testing.T) {
	svc, db, _ := newTestService(t, &fakeGenerator{})
	st := svc.Status(context.Background())
	if st.Tier != ai.TierPrimary || st.Model != "fake-model" || st.Language != "Bengali" || st.Database != nil {
		t.Fatalf("unexpected status %+v", st)
	}
	db.Close()
	if st := svc.Status(context.Background()); st.Database == nil {
		t.Fatalf("expected ping failure after close")
	}
}
