package analysis

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/tidyroom/internal/application"
	domain "github.com/bryanwahyu/tidyroom/internal/domain/analysis"
)

// Service implements the classify-and-record use cases.
// Safe for concurrent use when its dependencies are.
type Service struct {
	Preprocessor domain.Preprocessor
	Models       *ModelHandle
	Store        domain.HistoryStore
	Archive      domain.ImageArchive // optional
	Clock        application.Clock

	// CleanIndicator overrides domain.DefaultCleanIndicator when set.
	CleanIndicator string

	// Observe, if set, is called once per Analyze with its result.
	Observe func(domain.Outcome, error)
}

// AnalyzeCommand is one uploaded photo.
type AnalyzeCommand struct {
	Image       []byte
	Filename    string
	ContentType string
	// NoSave skips the history append (CLI --no-save).
	NoSave bool
}

// Analyze runs preprocess → predict → verdict → archive → append.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (out domain.Outcome, err error) {
	if s.Observe != nil {
		defer func() { s.Observe(out, err) }()
	}

	sample, err := s.Preprocessor.Preprocess(bytes.NewReader(cmd.Image))
	if err != nil {
		log.Printf("analyze failed stage=preprocess file=%s error=%v", cmd.Filename, err)
		return domain.Outcome{}, err
	}

	pred, err := s.Models.Predict(ctx, sample)
	if err != nil {
		log.Printf("analyze failed stage=predict file=%s error=%v", cmd.Filename, err)
		return domain.Outcome{}, err
	}

	id := uuid.New().String()
	now := s.now()
	out = domain.Outcome{
		Prediction: pred,
		Verdict:    domain.FormatVerdict(pred.Label, s.CleanIndicator),
		Record: domain.Record{
			ID:         id,
			Timestamp:  now.Format(domain.TimestampLayout),
			Result:     pred.Label,
			Confidence: pred.Confidence,
		},
	}

	if !cmd.NoSave {
		if err := s.Store.Append(ctx, out.Record); err != nil {
			log.Printf("analyze failed stage=append id=%s error=%v", id, err)
			return domain.Outcome{}, fmt.Errorf("append history: %w", err)
		}
	}

	// archive only uploads that have a record
	if s.Archive != nil && !cmd.NoSave {
		key := archiveKey(id, cmd.Filename, now.Format("2006/01/02"))
		url, err := s.Archive.Put(ctx, key, cmd.Image, cmd.ContentType)
		if err != nil {
			// arsip opsional, analisis tetap jalan
			log.Printf("archive failed id=%s error=%v", id, err)
		} else {
			out.ArchiveURL = url
		}
	}

	log.Printf("analyze done id=%s result=%q confidence=%.2f clean=%t", id, pred.Label, pred.Confidence, out.Verdict.Clean)
	return out, nil
}

// History returns the full log, or only the last limit records when limit > 0.
func (s *Service) History(ctx context.Context, limit int) ([]domain.Record, error) {
	records, err := s.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

// Stats loads the log and summarizes it.
func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	records, err := s.Store.Load(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.Summarize(records)
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return application.SystemClock{}.Now()
	}
	return s.Clock.Now()
}

func archiveKey(id, filename, day string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".img"
	}
	return fmt.Sprintf("uploads/%s/%s%s", day, id, ext)
}
