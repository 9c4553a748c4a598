package cardsearch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"tcgsearch/internal/telemetry"

	"github.com/stretchr/testify/require"
)

// scriptedFetcher answers immediately unless the query text is "slow", in
// which case it waits for release or for the context to be cancelled.
type scriptedFetcher struct {
	release chan struct{}
	started chan string
	calls   atomic.Int64
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{
		release: make(chan struct{}),
		started: make(chan string, 16),
	}
}

func (f *scriptedFetcher) Fetch(ctx context.Context, query Descriptor) Outcome {
	f.calls.Add(1)
	text, _ := query.Get(KeyText)
	f.started <- text
	if text == "slow" {
		select {
		case <-f.release:
		case <-ctx.Done():
			return Failure{Err: &TransportError{Cause: ctx.Err()}}
		}
	}
	return Success{Cards: []Card{Card(`{"name":"` + text + `"}`)}}
}

type recordingRenderer struct {
	mutex   sync.Mutex
	reports []Report
}

func (r *recordingRenderer) Render(report Report) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, report)
}

func (r *recordingRenderer) rendered() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	var out []string
	for _, report := range r.reports {
		out = append(out, report.Criteria.Text)
	}
	return out
}

type submitResult struct {
	report Report
	err    error
}

func submitAsync(s *Searcher, criteria SearchCriteria) <-chan submitResult {
	out := make(chan submitResult, 1)
	go func() {
		report, err := s.Submit(context.Background(), criteria)
		out <- submitResult{report: report, err: err}
	}()
	return out
}

func TestSubmitNoQuery(t *testing.T) {
	fetcher := newScriptedFetcher()
	renderer := &recordingRenderer{}
	searcher := NewSearcher(fetcher, renderer, CancelPrevious, &telemetry.Recorder{})

	report, err := searcher.Submit(context.Background(), SearchCriteria{Game: "pokemon"})
	require.NoError(t, err)
	require.True(t, report.NoQuery)
	require.Nil(t, report.Outcome)
	require.Zero(t, fetcher.calls.Load())
	require.Empty(t, renderer.rendered())
	require.Equal(t, StateIdle, searcher.State())
}

func TestSubmitRenders(t *testing.T) {
	fetcher := newScriptedFetcher()
	renderer := &recordingRenderer{}
	searcher := NewSearcher(fetcher, renderer, CancelPrevious, &telemetry.Recorder{})

	report, err := searcher.Submit(context.Background(), SearchCriteria{Text: "mew", Game: "pokemon"})
	require.NoError(t, err)
	require.False(t, report.NoQuery)
	require.False(t, report.Superseded)
	require.Equal(t, "q=mew&game=pokemon", report.Query.Encode())
	require.Equal(t, Success{Cards: []Card{Card(`{"name":"mew"}`)}}, report.Outcome)
	require.Equal(t, []string{"mew"}, renderer.rendered())
	require.Equal(t, StateIdle, searcher.State())

	second, err := searcher.Submit(context.Background(), SearchCriteria{Text: "mewtwo"})
	require.NoError(t, err)
	require.Greater(t, second.Seq, report.Seq)
}

func TestSubmitCancelPrevious(t *testing.T) {
	fetcher := newScriptedFetcher()
	renderer := &recordingRenderer{}
	searcher := NewSearcher(fetcher, renderer, CancelPrevious, &telemetry.Recorder{})

	slow := submitAsync(searcher, SearchCriteria{Text: "slow"})
	require.Equal(t, "slow", <-fetcher.started)
	require.Equal(t, StateFetching, searcher.State())

	fast, err := searcher.Submit(context.Background(), SearchCriteria{Text: "fast"})
	require.NoError(t, err)
	require.False(t, fast.Superseded)

	result := <-slow
	require.NoError(t, result.err)
	require.True(t, result.report.Superseded)
	failure, ok := result.report.Outcome.(Failure)
	require.True(t, ok)
	require.ErrorIs(t, failure.Err, context.Canceled)

	require.Equal(t, []string{"fast"}, renderer.rendered())
	require.Equal(t, StateIdle, searcher.State())
}

func TestSubmitIgnoreNew(t *testing.T) {
	fetcher := newScriptedFetcher()
	renderer := &recordingRenderer{}
	searcher := NewSearcher(fetcher, renderer, IgnoreNew, &telemetry.Recorder{})

	slow := submitAsync(searcher, SearchCriteria{Text: "slow"})
	require.Equal(t, "slow", <-fetcher.started)

	_, err := searcher.Submit(context.Background(), SearchCriteria{Text: "fast"})
	require.ErrorIs(t, err, ErrSearchInFlight)
	require.EqualValues(t, 1, fetcher.calls.Load())

	close(fetcher.release)
	result := <-slow
	require.NoError(t, result.err)
	require.Equal(t, Success{Cards: []Card{Card(`{"name":"slow"}`)}}, result.report.Outcome)

	_, err = searcher.Submit(context.Background(), SearchCriteria{Text: "after"})
	require.NoError(t, err)
	require.Equal(t, []string{"slow", "after"}, renderer.rendered())
}

func TestSubmitAllowRace(t *testing.T) {
	fetcher := newScriptedFetcher()
	renderer := &recordingRenderer{}
	tel := &telemetry.Recorder{}
	searcher := NewSearcher(fetcher, renderer, AllowRace, tel)

	slow := submitAsync(searcher, SearchCriteria{Text: "slow"})
	require.Equal(t, "slow", <-fetcher.started)

	_, err := searcher.Submit(context.Background(), SearchCriteria{Text: "fast"})
	require.NoError(t, err)

	close(fetcher.release)
	result := <-slow
	require.NoError(t, result.err)
	require.False(t, result.report.Superseded)
	require.IsType(t, Success{}, result.report.Outcome)

	// the slow search finished last, so it is what stays on screen
	require.Equal(t, []string{"fast", "slow"}, renderer.rendered())

	var inFlight []any
	for _, report := range tel.Reports("count") {
		require.Equal(t, "searcher: searcher.in_flight", report.ID)
		inFlight = append(inFlight, report.Params...)
	}
	require.Equal(t, []any{int64(1), int64(2), int64(1), int64(0)}, inFlight)
}

func TestParseOverlapPolicy(t *testing.T) {
	for _, policy := range []OverlapPolicy{CancelPrevious, IgnoreNew, AllowRace} {
		parsed, err := ParseOverlapPolicy(policy.String())
		require.NoError(t, err)
		require.Equal(t, policy, parsed)
	}

	parsed, err := ParseOverlapPolicy("")
	require.NoError(t, err)
	require.Equal(t, CancelPrevious, parsed)

	_, err = ParseOverlapPolicy("whatever")
	require.Error(t, err)
}
