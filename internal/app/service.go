// Package service provides the application service behind the HTTP API, the
// terminal report and the MCP server.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/ringlens/internal/adapters/llm"
	"github.com/okian/ringlens/internal/adapters/repository"
	"github.com/okian/ringlens/internal/domain/catalog"
	"github.com/okian/ringlens/internal/domain/chart"
	"github.com/okian/ringlens/internal/domain/digest"
	"github.com/okian/ringlens/internal/domain/session"
	"github.com/okian/ringlens/internal/domain/table"
	"github.com/okian/ringlens/pkg/logger"
	"github.com/okian/ringlens/pkg/metrics"
)

// Service ingests uploads into sessions and answers queries about them.
type Service struct {
	store     repository.Store
	completer llm.Completer
	logger    logger.Logger

	parseConcurrency int
	summaryMaxTokens int
	chatMaxTokens    int
	temperature      float64

	ownsStore bool
}

// New constructs a Service. Without WithStore it keeps sessions in a default
// in-memory store; without WithCompleter summaries and chat are disabled.
func New(opts ...Option) *Service {
	s := &Service{
		completer:        llm.Disabled{},
		parseConcurrency: 4,
		summaryMaxTokens: 150,
		chatMaxTokens:    250,
		temperature:      0.7,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(context.Background())
		s.ownsStore = true
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Close releases the default store.
func (s *Service) Close() error {
	if !s.ownsStore {
		return nil
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// IngestResult is the outcome of one upload.
type IngestResult struct {
	Session  *session.Session
	Failures []*table.FileError
	Skipped  []string
}

type parsed struct {
	table *table.Table
	err   error
}

// Ingest parses uploads concurrently and stores them as a new session, which
// becomes the latest one.
func (s *Service) Ingest(ctx context.Context, uploads []Upload, mode Mode) (*IngestResult, error) {
	start := time.Now()
	res, err := s.ingest(ctx, uploads, mode)
	metrics.RecordIngestDuration(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordUpload("rejected")
		s.logger.Warn(ctx, "upload rejected", logger.Int("files", len(uploads)), logger.Error(err))
		return nil, err
	}
	metrics.RecordUpload("accepted")
	s.logger.Info(ctx, "upload stored",
		logger.String("session", res.Session.ID()),
		logger.Strings("files", res.Session.Files()),
		logger.Int("failures", len(res.Failures)),
		logger.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

func (s *Service) ingest(ctx context.Context, uploads []Upload, mode Mode) (*IngestResult, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}

	res := &IngestResult{}
	var csvs []Upload
	for _, u := range uploads {
		if u.Name == "" || !isCSV(u.Name) {
			res.Skipped = append(res.Skipped, u.Name)
			continue
		}
		csvs = append(csvs, u)
	}

	results := make([]parsed, len(csvs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parseConcurrency)
	for i, u := range csvs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = parse(u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tables []*table.Table
	for i, r := range results {
		kind := kindLabel(csvs[i].Name)
		if r.err != nil {
			metrics.RecordFileError(kind)
			fe := asFileError(csvs[i].Name, r.err)
			if mode == Strict {
				return nil, fe
			}
			res.Failures = append(res.Failures, fe)
			continue
		}
		metrics.RecordFileParsed(kind, r.table.Len())
		tables = append(tables, r.table)
	}
	if len(tables) == 0 {
		return nil, ErrNoValidFiles
	}

	sess := session.New(tables)
	if !sess.Dataset().Recognized() {
		return nil, ErrNoRecognizedExport
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	res.Session = sess
	return res, nil
}

func parse(u Upload) parsed {
	rc, err := u.Open()
	if err != nil {
		return parsed{err: err}
	}
	defer rc.Close()
	t, err := table.Load(u.Name, rc)
	return parsed{table: t, err: err}
}

func asFileError(name string, err error) *table.FileError {
	if fe, ok := err.(*table.FileError); ok {
		return fe
	}
	return &table.FileError{File: name, Err: err}
}

func kindLabel(name string) string {
	if k, ok := catalog.Lookup(name); ok {
		return k.Name
	}
	return "unknown"
}

// Session returns the session with id, or the latest session when id is empty.
func (s *Service) Session(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		return s.store.Latest(ctx)
	}
	return s.store.Get(ctx, id)
}

// Sessions lists live sessions, newest first.
func (s *Service) Sessions(ctx context.Context) ([]repository.Info, error) {
	return s.store.List(ctx)
}

// Overview computes the dashboard header of a session.
func (s *Service) Overview(ctx context.Context, id string) (catalog.Overview, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return catalog.Overview{}, err
	}
	return sess.Overview(), nil
}

// Rows returns a file's rows. Derived rows are only available for recognised
// exports; other files return their raw rows either way.
func (s *Service) Rows(ctx context.Context, id, file string, derived bool) ([]table.Row, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, ok := sess.Rows(file)
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrFileNotLoaded, file)
	}
	if derived {
		if k, ok := catalog.Lookup(file); ok {
			return k.Derive(rows), nil
		}
	}
	return rows, nil
}

// Charts builds every chart of a file over its last days of data.
func (s *Service) Charts(ctx context.Context, id, file string, days int) ([]chart.Spec, error) {
	rows, err := s.Rows(ctx, id, file, false)
	if err != nil {
		return nil, err
	}
	return catalog.Charts(file, rows, days)
}

// Chart builds one chart of a file.
func (s *Service) Chart(ctx context.Context, id, file, chartID string, days int) (chart.Spec, error) {
	rows, err := s.Rows(ctx, id, file, false)
	if err != nil {
		return chart.Spec{}, err
	}
	return catalog.Chart(file, chartID, rows, days)
}

// Summarize asks the model for a short summary of the data. It never fails:
// with nothing to summarise, or when the call fails, a fixed message is
// returned instead.
func (s *Service) Summarize(ctx context.Context, ds catalog.Dataset) string {
	text := digest.SummaryText(ds)
	if text == "" {
		return digest.UploadedMessage
	}
	reply, err := s.completer.Complete(ctx, llm.Request{
		Operation:   llm.OpSummary,
		System:      digest.SummarySystemPrompt,
		User:        digest.SummaryPrompt(text),
		MaxTokens:   s.summaryMaxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		metrics.RecordLLMFallback(llm.OpSummary)
		s.logger.Warn(ctx, "summary unavailable", logger.String("provider", s.completer.Provider()), logger.Error(err))
		return digest.SummaryFallback
	}
	return reply
}

// ChatRequest is one chat turn.
type ChatRequest struct {
	Message   string                 `json:"message"`
	Data      map[string][]table.Row `json:"data"`
	SessionID string                 `json:"session_id"`
}

// Chat answers a question about the supplied data. When the request carries
// no data but names a session, that session is used; otherwise the assistant
// answers without context.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", ErrEmptyMessage
	}

	ds := catalog.Dataset(req.Data)
	if len(ds) == 0 && req.SessionID != "" {
		if sess, err := s.Session(ctx, req.SessionID); err == nil {
			ds = sess.Dataset()
		}
	}

	reply, err := s.completer.Complete(ctx, llm.Request{
		Operation:   llm.OpChat,
		System:      digest.ChatSystem(digest.ChatContext(ds)),
		User:        req.Message,
		MaxTokens:   s.chatMaxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		metrics.RecordLLMFallback(llm.OpChat)
		s.logger.Error(ctx, "chat failed", logger.String("provider", s.completer.Provider()), logger.Error(err))
		return "", fmt.Errorf("%w: %w", ErrChatFailed, err)
	}
	return reply, nil
}
