package cardsearch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tcgsearch/internal/assert"
	"tcgsearch/internal/telemetry"
)

const (
	report_searcher_submit    = "searcher.submit"
	report_searcher_in_flight = "searcher.in_flight"
)

// OverlapPolicy decides what happens when a search is submitted while
// another one is still waiting on its response.
type OverlapPolicy int

const (
	// CancelPrevious cancels the in-flight search, only the newest result
	// is rendered.
	CancelPrevious OverlapPolicy = iota
	// IgnoreNew rejects new searches with ErrSearchInFlight until the
	// in-flight one completes.
	IgnoreNew
	// AllowRace runs every search and renders every result in the order
	// they complete.
	AllowRace
)

func (p OverlapPolicy) String() string {
	switch p {
	case CancelPrevious:
		return "cancel-previous"
	case IgnoreNew:
		return "ignore-new"
	case AllowRace:
		return "allow-race"
	}
	return fmt.Sprintf("OverlapPolicy(%d)", int(p))
}

func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch s {
	case "", "cancel-previous":
		return CancelPrevious, nil
	case "ignore-new":
		return IgnoreNew, nil
	case "allow-race":
		return AllowRace, nil
	}
	return 0, fmt.Errorf("unknown overlap policy %q", s)
}

var ErrSearchInFlight = errors.New("a search is already in flight")

type State int

const (
	StateIdle State = iota
	StateBuilding
	StateFetching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building"
	case StateFetching:
		return "fetching"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Report describes how a single submission ended.
type Report struct {
	// Seq increases with every accepted submission.
	Seq      uint64
	Criteria SearchCriteria
	Query    Descriptor
	// NoQuery is set when the criteria had nothing to search for, Outcome
	// is nil in that case.
	NoQuery bool
	Outcome Outcome
	// Superseded is set when a newer submission replaced this one before
	// it could be rendered.
	Superseded bool
}

// Renderer displays the result of a search.
type Renderer interface {
	Render(report Report)
}

// Searcher runs submissions through build -> fetch -> render.
type Searcher struct {
	fetcher  Fetcher
	renderer Renderer
	policy   OverlapPolicy
	tel      telemetry.API

	mutex    sync.Mutex
	seq      uint64
	building int
	fetching int
	latest   uint64
	cancel   context.CancelFunc

	renderMutex  sync.Mutex
	lastRendered uint64
}

func NewSearcher(fetcher Fetcher, renderer Renderer, policy OverlapPolicy, tel telemetry.API) *Searcher {
	assert.NotNil(fetcher)
	assert.NotNil(renderer)

	return &Searcher{
		fetcher:  fetcher,
		renderer: renderer,
		policy:   policy,
		tel:      telemetry.NewScopedAPI("searcher", tel),
	}
}

func (s *Searcher) Policy() OverlapPolicy {
	return s.policy
}

func (s *Searcher) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	switch {
	case s.fetching > 0:
		return StateFetching
	case s.building > 0:
		return StateBuilding
	}
	return StateIdle
}

// Submit runs one search. A NoQuery report is returned without calling the
// fetcher or the renderer. The only error is ErrSearchInFlight under the
// IgnoreNew policy, failures of the search itself are in the report's
// outcome.
func (s *Searcher) Submit(ctx context.Context, criteria SearchCriteria) (Report, error) {
	s.mutex.Lock()
	if s.policy == IgnoreNew && s.fetching > 0 {
		s.mutex.Unlock()
		return Report{}, ErrSearchInFlight
	}
	s.building++
	s.mutex.Unlock()

	query, ok := Build(criteria)

	s.mutex.Lock()
	s.building--
	if !ok {
		s.mutex.Unlock()
		return Report{Criteria: criteria, NoQuery: true}, nil
	}
	if s.policy == IgnoreNew && s.fetching > 0 {
		s.mutex.Unlock()
		return Report{}, ErrSearchInFlight
	}

	s.seq++
	report := Report{Seq: s.seq, Criteria: criteria, Query: query}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.policy == CancelPrevious && s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.latest = report.Seq
	s.fetching++
	s.tel.ReportCount(report_searcher_in_flight, int64(s.fetching))
	s.mutex.Unlock()

	report.Outcome = s.fetcher.Fetch(fetchCtx, query)

	s.mutex.Lock()
	s.fetching--
	s.tel.ReportCount(report_searcher_in_flight, int64(s.fetching))
	if s.latest == report.Seq {
		s.cancel = nil
	}
	s.mutex.Unlock()

	s.render(&report)
	return report, nil
}

func (s *Searcher) render(report *Report) {
	s.renderMutex.Lock()
	defer s.renderMutex.Unlock()

	if s.policy == CancelPrevious {
		s.mutex.Lock()
		latest := s.latest
		s.mutex.Unlock()
		if report.Seq != latest || report.Seq < s.lastRendered {
			report.Superseded = true
			s.tel.ReportDebug(report_searcher_submit, "superseded", report.Seq, latest)
			return
		}
	}

	s.renderer.Render(*report)
	s.lastRendered = report.Seq
}
