// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package match

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/poiesic/confero/ai"
	"github.com/poiesic/confero/core"
	"github.com/poiesic/confero/index"
	"github.com/poiesic/confero/storage"
	"golang.org/x/sync/errgroup"
)

const (
	// defaultSearchLimit is how many candidates vector search feeds the reranker.
	defaultSearchLimit = core.MaxMatchRank
	// defaultRerankTopK is how many matches survive reranking.
	defaultRerankTopK = 25
	// defaultLookupConcurrency bounds the attendee-resolution fan-out.
	defaultLookupConcurrency = 8
)

// Match is one scored connection to another attendee.
type Match struct {
	Name       string  `json:"name"`
	Company    string  `json:"company"`
	JobTitle   string  `json:"job_title"`
	Country    string  `json:"country"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity_score"`
	LinkedIn   string  `json:"linkedin"`
	Swapcard   string  `json:"swapcard"`
	Biography  string  `json:"biography"`
}

// RequestGroup holds the matches for one of the attendee's requests.
type RequestGroup struct {
	YourRequest string  `json:"your_request"`
	Matches     []Match `json:"matches"`
}

// OfferingGroup holds the matches for one of the attendee's offerings.
type OfferingGroup struct {
	YourOffering string  `json:"your_offering"`
	Matches      []Match `json:"matches"`
}

// AttendeeSummary identifies the resolved attendee in an identity result.
type AttendeeSummary struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	JobTitle string `json:"job_title"`
	Country  string `json:"country"`
}

// IdentityResult is the bidirectional result of an identity lookup.
// Zero-match groups are omitted from both lists, never emitted empty.
type IdentityResult struct {
	Attendee            AttendeeSummary `json:"attendee"`
	PeopleWhoCanHelpYou []RequestGroup  `json:"people_who_can_help_you"`
	PeopleYouCanHelp    []OfferingGroup `json:"people_you_can_help"`
}

// TextResult is the flat result of a free-text query.
type TextResult struct {
	Query   string  `json:"query"`
	Matches []Match `json:"matches"`
}

// candidate is an internal pre-rerank hit.
type candidate struct {
	attendeeId core.ID
	text       string
	similarity float32
}

// Matcher orchestrates the three matching modes over the repositories, the
// two vector indexes, and the AI services.
type Matcher struct {
	attendees storage.AttendeeRepository
	offerings storage.OfferingRepository
	requests  storage.RequestRepository
	matches   storage.MatchRepository

	offeringIndex *index.Index
	requestIndex  *index.Index

	embedder    ai.Embedder
	transformer ai.Transformer
	reranker    ai.Reranker

	minSimilarity     float32
	searchLimit       int
	rerankTopK        int
	lookupConcurrency int
	logger            *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithMinSimilarity sets the similarity floor for vector search.
// Results must strictly exceed it. Default is -1, i.e. no floor.
func WithMinSimilarity(minSimilarity float32) Option {
	return func(m *Matcher) error {
		m.minSimilarity = minSimilarity
		return nil
	}
}

// WithRerankTopK sets how many matches survive reranking. Default 25.
func WithRerankTopK(topK int) Option {
	return func(m *Matcher) error {
		m.rerankTopK = topK
		return nil
	}
}

// WithLookupConcurrency bounds the candidate attendee-resolution fan-out.
func WithLookupConcurrency(n int) Option {
	return func(m *Matcher) error {
		if n > 0 {
			m.lookupConcurrency = n
		}
		return nil
	}
}

// NewMatcher creates a new matcher.
func NewMatcher(
	attendees storage.AttendeeRepository,
	offerings storage.OfferingRepository,
	requests storage.RequestRepository,
	matches storage.MatchRepository,
	offeringIndex *index.Index,
	requestIndex *index.Index,
	provider ai.Provider,
	opts ...Option,
) (*Matcher, error) {
	if attendees == nil || offerings == nil || requests == nil || matches == nil {
		return nil, ErrRepositoriesRequired
	}
	if offeringIndex == nil || requestIndex == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	m := &Matcher{
		attendees:         attendees,
		offerings:         offerings,
		requests:          requests,
		matches:           matches,
		offeringIndex:     offeringIndex,
		requestIndex:      requestIndex,
		embedder:          provider.Embedder(),
		transformer:       provider.Transformer(),
		reranker:          provider.Reranker(),
		minSimilarity:     -1,
		searchLimit:       defaultSearchLimit,
		rerankTopK:        defaultRerankTopK,
		lookupConcurrency: defaultLookupConcurrency,
		logger:            slog.Default().With("component", "matcher"),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ListAttendeeNames returns all attendee display names, sorted, for UI
// autocomplete.
func (m *Matcher) ListAttendeeNames(ctx context.Context) ([]string, error) {
	attendees, err := m.attendees.ListAttendees(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(attendees))
	for _, a := range attendees {
		if name := a.DisplayName(); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// MatchByName resolves a name and returns the bidirectional match result.
func (m *Matcher) MatchByName(ctx context.Context, name string) (*IdentityResult, error) {
	return m.MatchByNameWithMonitor(ctx, name, nil)
}

// MatchByNameWithMonitor is MatchByName with pipeline observation hooks.
// A failing request or offering pipeline is logged and skipped; the result
// carries whatever the surviving pipelines produced.
func (m *Matcher) MatchByNameWithMonitor(ctx context.Context, name string, monitor Monitor) (*IdentityResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(name)

	all, err := m.attendees.ListAttendees(ctx)
	if err != nil {
		return nil, err
	}

	attendee := resolveAttendee(all, name)
	if attendee == nil {
		return nil, ErrAttendeeNotFound
	}

	result := &IdentityResult{
		Attendee: AttendeeSummary{
			Name:     attendee.DisplayName(),
			Company:  attendee.Company,
			JobTitle: attendee.JobTitle,
			Country:  attendee.Country,
		},
		PeopleWhoCanHelpYou: []RequestGroup{},
		PeopleYouCanHelp:    []OfferingGroup{},
	}

	requests, err := m.requests.GetRequestsByAttendee(ctx, attendee.Id)
	if err != nil {
		return nil, err
	}
	for _, request := range requests {
		cands, err := m.requestCandidates(ctx, attendee, request, monitor)
		if err != nil {
			m.logger.Warn("request pipeline failed, skipping",
				"requestId", request.Id, "err", err)
			continue
		}
		matches, err := m.finishMatches(ctx, request.Text, ai.QueryKindRequest, cands, monitor)
		if err != nil {
			m.logger.Warn("request rerank failed, skipping",
				"requestId", request.Id, "err", err)
			continue
		}
		if len(matches) > 0 {
			result.PeopleWhoCanHelpYou = append(result.PeopleWhoCanHelpYou, RequestGroup{
				YourRequest: request.Text,
				Matches:     matches,
			})
		}
	}

	offerings, err := m.offerings.GetOfferingsByAttendee(ctx, attendee.Id)
	if err != nil {
		return nil, err
	}
	for _, offering := range offerings {
		cands, err := m.offeringCandidates(ctx, attendee, offering, monitor)
		if err != nil {
			m.logger.Warn("offering pipeline failed, skipping",
				"offeringId", offering.Id, "err", err)
			continue
		}
		matches, err := m.finishMatches(ctx, offering.Text, ai.QueryKindOffering, cands, monitor)
		if err != nil {
			m.logger.Warn("offering rerank failed, skipping",
				"offeringId", offering.Id, "err", err)
			continue
		}
		if len(matches) > 0 {
			result.PeopleYouCanHelp = append(result.PeopleYouCanHelp, OfferingGroup{
				YourOffering: offering.Text,
				Matches:      matches,
			})
		}
	}

	total := 0
	for _, g := range result.PeopleWhoCanHelpYou {
		total += len(g.Matches)
	}
	for _, g := range result.PeopleYouCanHelp {
		total += len(g.Matches)
	}
	monitor.Finish(total)
	return result, nil
}

// MatchRequest finds attendees whose offerings could fulfill a free-text
// request. The text is rewritten as a synthetic offering before embedding so
// it lands near real offerings in vector space.
func (m *Matcher) MatchRequest(ctx context.Context, text string) (*TextResult, error) {
	return m.MatchRequestWithMonitor(ctx, text, nil)
}

// MatchRequestWithMonitor is MatchRequest with pipeline observation hooks.
func (m *Matcher) MatchRequestWithMonitor(ctx context.Context, text string, monitor Monitor) (*TextResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	monitor.Start(text)

	synthetic, err := m.transformer.ToSyntheticOffering(ctx, text)
	if err != nil {
		return nil, err
	}
	vector, err := m.embedder.EmbedText(ctx, synthetic)
	if err != nil {
		return nil, err
	}

	hits, err := m.offeringIndex.Search(vector, m.minSimilarity, m.searchLimit, 0)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(ai.QueryKindRequest, len(hits))

	matches, err := m.finishMatches(ctx, text, ai.QueryKindRequest, candidatesFromHits(hits), monitor)
	if err != nil {
		return nil, err
	}
	monitor.Finish(len(matches))
	return &TextResult{Query: text, Matches: matches}, nil
}

// MatchOffering finds attendees whose requests a free-text offering could
// fulfill. The text embeds directly; requests are indexed by their synthetic
// embeddings, which live in offering space.
func (m *Matcher) MatchOffering(ctx context.Context, text string) (*TextResult, error) {
	return m.MatchOfferingWithMonitor(ctx, text, nil)
}

// MatchOfferingWithMonitor is MatchOffering with pipeline observation hooks.
func (m *Matcher) MatchOfferingWithMonitor(ctx context.Context, text string, monitor Monitor) (*TextResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	monitor.Start(text)

	vector, err := m.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	hits, err := m.requestIndex.Search(vector, m.minSimilarity, m.searchLimit, 0)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(ai.QueryKindOffering, len(hits))

	matches, err := m.finishMatches(ctx, text, ai.QueryKindOffering, candidatesFromHits(hits), monitor)
	if err != nil {
		return nil, err
	}
	monitor.Finish(len(matches))
	return &TextResult{Query: text, Matches: matches}, nil
}

// requestCandidates produces the pre-rerank candidate list for one of the
// attendee's requests: precomputed match rows when present, else a live
// transform/embed/search.
func (m *Matcher) requestCandidates(ctx context.Context, attendee *core.Attendee, request *core.Request, monitor Monitor) ([]candidate, error) {
	rows, err := m.matches.GetRequestMatches(ctx, request.Id)
	if err == nil && len(rows) > 0 {
		monitor.UsedPrecomputedRows(uint64(request.Id), len(rows))
		cands := make([]candidate, 0, len(rows))
		for _, row := range rows {
			offering, err := m.offerings.GetOffering(ctx, row.CandidateId)
			if err != nil {
				m.logger.Warn("precomputed candidate missing, dropping",
					"offeringId", row.CandidateId, "err", err)
				continue
			}
			cands = append(cands, candidate{
				attendeeId: offering.AttendeeId,
				text:       offering.Text,
				similarity: row.Similarity,
			})
		}
		return cands, nil
	}

	vector, err := m.syntheticVector(ctx, request)
	if err != nil {
		return nil, err
	}

	hits, err := m.offeringIndex.Search(vector, m.minSimilarity, m.searchLimit, attendee.Id)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(ai.QueryKindRequest, len(hits))
	return candidatesFromHits(hits), nil
}

// offeringCandidates produces the pre-rerank candidate list for one of the
// attendee's offerings.
func (m *Matcher) offeringCandidates(ctx context.Context, attendee *core.Attendee, offering *core.Offering, monitor Monitor) ([]candidate, error) {
	rows, err := m.matches.GetOfferingMatches(ctx, offering.Id)
	if err == nil && len(rows) > 0 {
		monitor.UsedPrecomputedRows(uint64(offering.Id), len(rows))
		cands := make([]candidate, 0, len(rows))
		for _, row := range rows {
			request, err := m.requests.GetRequest(ctx, row.CandidateId)
			if err != nil {
				m.logger.Warn("precomputed candidate missing, dropping",
					"requestId", row.CandidateId, "err", err)
				continue
			}
			cands = append(cands, candidate{
				attendeeId: request.AttendeeId,
				text:       request.Text,
				similarity: row.Similarity,
			})
		}
		return cands, nil
	}

	vector := offering.Vector
	if len(vector) == 0 {
		vector, err = m.embedder.EmbedText(ctx, offering.Text)
		if err != nil {
			return nil, err
		}
	}

	hits, err := m.requestIndex.Search(vector, m.minSimilarity, m.searchLimit, attendee.Id)
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorSearch(ai.QueryKindOffering, len(hits))
	return candidatesFromHits(hits), nil
}

// syntheticVector returns the request's cached synthetic embedding, computing
// and best-effort caching it when absent.
func (m *Matcher) syntheticVector(ctx context.Context, request *core.Request) ([]float32, error) {
	if request.HasSynthetic() {
		return request.SyntheticVector, nil
	}

	synthetic, err := m.transformer.ToSyntheticOffering(ctx, request.Text)
	if err != nil {
		return nil, err
	}
	vector, err := m.embedder.EmbedText(ctx, synthetic)
	if err != nil {
		return nil, err
	}

	if err := m.requests.SetSynthetic(ctx, request.Id, synthetic, vector); err != nil {
		m.logger.Warn("failed to cache synthetic offering",
			"requestId", request.Id, "err", err)
	}
	return vector, nil
}

// finishMatches resolves candidate attendees, reranks, and builds the final
// match payloads. Candidates whose attendee lookup fails are dropped before
// the reranker ever sees them. A rerank parse failure falls back to the
// untouched similarity order.
func (m *Matcher) finishMatches(ctx context.Context, query string, kind ai.QueryKind, cands []candidate, monitor Monitor) ([]Match, error) {
	if len(cands) == 0 {
		return []Match{}, nil
	}

	resolved := make([]*core.Attendee, len(cands))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(m.lookupConcurrency)
	for i, cand := range cands {
		group.Go(func() error {
			attendee, err := m.attendees.GetAttendee(groupCtx, cand.attendeeId)
			if err != nil {
				m.logger.Warn("candidate attendee lookup failed, dropping",
					"attendeeId", cand.attendeeId, "err", err)
				return nil
			}
			resolved[i] = attendee
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	type resolvedCandidate struct {
		candidate
		attendee *core.Attendee
	}
	kept := make([]resolvedCandidate, 0, len(cands))
	for i, cand := range cands {
		if resolved[i] != nil {
			kept = append(kept, resolvedCandidate{candidate: cand, attendee: resolved[i]})
		}
	}
	monitor.AfterCandidateResolution(len(kept), len(cands)-len(kept))
	if len(kept) == 0 {
		return []Match{}, nil
	}

	manifest := make([]ai.Candidate, len(kept))
	for i, rc := range kept {
		manifest[i] = ai.Candidate{
			Index:      i,
			Name:       rc.attendee.DisplayName(),
			Company:    rc.attendee.Company,
			Text:       rc.text,
			Similarity: round3(rc.similarity),
		}
	}

	indices, err := m.reranker.Rerank(ctx, query, kind, manifest, m.rerankTopK)
	if err != nil {
		// Untouched similarity order stands in for an unusable rerank.
		monitor.RerankFallback(kind, err)
		m.logger.Warn("rerank failed, falling back to similarity order",
			"kind", kind, "err", err)
		n := min(m.rerankTopK, len(kept))
		indices = make([]int, n)
		for i := range indices {
			indices[i] = i
		}
	}

	matches := make([]Match, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(kept) {
			continue
		}
		rc := kept[idx]
		matches = append(matches, Match{
			Name:       rc.attendee.DisplayName(),
			Company:    rc.attendee.Company,
			JobTitle:   rc.attendee.JobTitle,
			Country:    rc.attendee.Country,
			Text:       rc.text,
			Similarity: round3(rc.similarity),
			LinkedIn:   rc.attendee.LinkedIn,
			Swapcard:   rc.attendee.Swapcard,
			Biography:  rc.attendee.Biography,
		})
	}
	return matches, nil
}

func candidatesFromHits(hits []index.Result) []candidate {
	cands := make([]candidate, len(hits))
	for i, hit := range hits {
		cands[i] = candidate{
			attendeeId: hit.Entry.AttendeeId,
			text:       hit.Entry.Text,
			similarity: hit.Score,
		}
	}
	return cands
}

// round3 rounds a similarity to 3 decimal places for presentation.
func round3(s float32) float64 {
	return math.Round(float64(s)*1000) / 1000
}
