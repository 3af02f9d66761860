package handler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/iconidentify/xresolve/internal/domain"
	"github.com/iconidentify/xresolve/internal/journal"
	"github.com/iconidentify/xresolve/pkg/twitter"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockResolver is a test implementation of Resolver.
type mockResolver struct {
	variant twitter.VideoVariant
	err     error
	calls   int
	lastURL string
}

func (m *mockResolver) ResolveBestVideo(ctx context.Context, tweetURL string) (twitter.VideoVariant, error) {
	m.calls++
	m.lastURL = tweetURL
	if m.err != nil {
		return twitter.VideoVariant{}, m.err
	}
	return m.variant, nil
}

// mockJournal is a test implementation of ResolutionJournal and StatsSource.
type mockJournal struct {
	recorded []domain.Resolution
	recent   []domain.Resolution
	stats    journal.Stats
	pingErr  error
}

func newMockJournal() *mockJournal {
	return &mockJournal{}
}

func (m *mockJournal) RecordOutcome(tweetID, source string, err error, bitrate int, duration time.Duration) domain.Resolution {
	res := domain.Resolution{
		ID:        domain.ResolutionID("res_test"),
		TweetID:   tweetID,
		Source:    source,
		Outcome:   domain.OutcomeForError(err),
		Bitrate:   bitrate,
		Duration:  duration,
		CreatedAt: time.Now(),
	}
	m.recorded = append(m.recorded, res)
	return res
}

func (m *mockJournal) Recent(n int) []domain.Resolution {
	if n > len(m.recent) {
		n = len(m.recent)
	}
	return m.recent[:n]
}

func (m *mockJournal) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockJournal) Stats() journal.Stats {
	return m.stats
}
