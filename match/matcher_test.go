package match

import (
	"context"
	"testing"

	"github.com/poiesic/confero/ai"
	"github.com/poiesic/confero/ai/mock"
	"github.com/poiesic/confero/core"
	"github.com/poiesic/confero/index"
	"github.com/poiesic/confero/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv bundles the fixtures a matcher test needs.
type testEnv struct {
	repos         *badger.Repositories
	offeringIndex *index.Index
	requestIndex  *index.Index
	embedder      *mock.MockEmbedder
	transformer   *mock.MockTransformer
	reranker      *mock.MockReranker
	matcher       *Matcher
}

// newTestEnv builds an in-memory matching stack with 3-dimension vectors and
// a fixed query embedding of [1,0,0].
func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	transformer := mock.NewMockTransformer()
	reranker := mock.NewMockReranker()
	provider := mock.NewMockProviderWithServices(embedder, transformer, reranker)

	env := &testEnv{
		repos:         repos,
		offeringIndex: index.New(3),
		requestIndex:  index.New(3),
		embedder:      embedder,
		transformer:   transformer,
		reranker:      reranker,
	}

	matcher, err := NewMatcher(
		repos.Attendees, repos.Offerings, repos.Requests, repos.Matches,
		env.offeringIndex, env.requestIndex, provider, opts...)
	require.NoError(t, err)
	env.matcher = matcher
	return env
}

func (e *testEnv) addAttendee(t *testing.T, a *core.Attendee) {
	t.Helper()
	require.NoError(t, e.repos.Attendees.PutAttendees(context.Background(), a))
}

func (e *testEnv) addOffering(t *testing.T, o *core.Offering) {
	t.Helper()
	require.NoError(t, e.repos.Offerings.PutOfferings(context.Background(), o))
	if len(o.Vector) > 0 {
		require.NoError(t, e.offeringIndex.Add(index.Entry{
			AttendeeId: o.AttendeeId, ItemId: o.Id, Text: o.Text, Vector: o.Vector,
		}))
	}
}

func (e *testEnv) addRequest(t *testing.T, r *core.Request, indexVector []float32) {
	t.Helper()
	require.NoError(t, e.repos.Requests.PutRequests(context.Background(), r))
	if len(indexVector) > 0 {
		require.NoError(t, e.requestIndex.Add(index.Entry{
			AttendeeId: r.AttendeeId, ItemId: r.Id, Text: r.Text, Vector: indexVector,
		}))
	}
}

func TestNewMatcher_Validation(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	provider := mock.NewMockProvider()
	offeringIx, requestIx := index.New(3), index.New(3)

	_, err = NewMatcher(nil, repos.Offerings, repos.Requests, repos.Matches, offeringIx, requestIx, provider)
	assert.Equal(t, ErrRepositoriesRequired, err)

	_, err = NewMatcher(repos.Attendees, repos.Offerings, repos.Requests, repos.Matches, nil, requestIx, provider)
	assert.Equal(t, ErrIndexRequired, err)

	_, err = NewMatcher(repos.Attendees, repos.Offerings, repos.Requests, repos.Matches, offeringIx, requestIx, nil)
	assert.Equal(t, ErrAIProviderRequired, err)
}

func TestMatchRequest_EndToEnd(t *testing.T) {
	env := newTestEnv(t, WithMinSimilarity(0.0))
	ctx := context.Background()

	env.addAttendee(t, &core.Attendee{Id: 1, FirstName: "Ada", LastName: "Lovelace", Company: "Analytical"})
	env.addAttendee(t, &core.Attendee{Id: 2, FirstName: "Bob", LastName: "Babbage"})
	env.addAttendee(t, &core.Attendee{Id: 3, FirstName: "Carol", LastName: "Hollerith"})

	env.addOffering(t, &core.Offering{Id: 10, AttendeeId: 1, Text: "mentoring on compilers", Vector: []float32{1, 0, 0}})
	env.addOffering(t, &core.Offering{Id: 20, AttendeeId: 2, Text: "hiring advice", Vector: []float32{0.8, 0.6, 0}})
	// Orthogonal to the query: filtered by the 0.0 floor.
	env.addOffering(t, &core.Offering{Id: 30, AttendeeId: 3, Text: "biosecurity intros", Vector: []float32{0, 1, 0}})

	result, err := env.matcher.MatchRequest(ctx, "I need a compiler mentor")
	require.NoError(t, err)

	assert.Equal(t, "I need a compiler mentor", result.Query)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "Ada Lovelace", result.Matches[0].Name)
	assert.Equal(t, "Analytical", result.Matches[0].Company)
	assert.Equal(t, "mentoring on compilers", result.Matches[0].Text)
	assert.Equal(t, 1.0, result.Matches[0].Similarity)
	assert.Equal(t, "Bob Babbage", result.Matches[1].Name)
	assert.Equal(t, 0.8, result.Matches[1].Similarity)

	// Request mode rewrites before embedding.
	assert.Equal(t, 1, env.transformer.CallCount())
	assert.Equal(t, 1, env.reranker.CallCount())
}

func TestMatchRequest_EmptyQuery(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.matcher.MatchRequest(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestMatchRequest_NoCandidatesShortCircuits(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.matcher.MatchRequest(context.Background(), "anything at all")
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	// The reranker is never consulted for an empty candidate set.
	assert.Equal(t, 0, env.reranker.CallCount())
}

func TestMatchRequest_RerankFallback(t *testing.T) {
	env := newTestEnv(t, WithMinSimilarity(0.0))
	ctx := context.Background()

	env.addAttendee(t, &core.Attendee{Id: 1, FirstName: "Ada", LastName: "Lovelace"})
	env.addAttendee(t, &core.Attendee{Id: 2, FirstName: "Bob", LastName: "Babbage"})
	env.addOffering(t, &core.Offering{Id: 10, AttendeeId: 1, Text: "a", Vector: []float32{0.8, 0.6, 0}})
	env.addOffering(t, &core.Offering{Id: 20, AttendeeId: 2, Text: "b", Vector: []float32{1, 0, 0}})

	env.reranker.RerankFunc = func(ctx context.Context, query string, kind ai.QueryKind, candidates []ai.Candidate, topK int) ([]int, error) {
		return nil, ai.ErrRerank
	}

	result, err := env.matcher.MatchRequest(ctx, "need help")
	require.NoError(t, err)

	// Fallback keeps the similarity order untouched.
	require.Len(t, result.Matches, 2)
	assert.Equal(t, "Bob Babbage", result.Matches[0].Name)
	assert.Equal(t, "Ada Lovelace", result.Matches[1].Name)
}

func TestMatchOffering_EmbedsDirectly(t *testing.T) {
	env := newTestEnv(t, WithMinSimilarity(0.0))
	ctx := context.Background()

	env.addAttendee(t, &core.Attendee{Id: 1, FirstName: "Ada", LastName: "Lovelace"})
	env.addRequest(t, &core.Request{Id: 40, AttendeeId: 1, Text: "need compiler help"}, []float32{1, 0, 0})

	result, err := env.matcher.MatchOffering(ctx, "I can teach compilers")
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "need compiler help", result.Matches[0].Text)
	// Offering mode must not invoke the transformer.
	assert.Equal(t, 0, env.transformer.CallCount())
}

func TestMatchByName_NotFound(t *testing.T) {
	env := newTestEnv(t)
	env.addAttendee(t, &core.Attendee{Id: 1, FirstName: "Ada", LastName: "Lovelace"})

	_, err := env.matcher.MatchByName(context.Background(), "Grace Hopper")
	assert.ErrorIs(t, err, ErrAttendeeNotFound)
}

func TestMatchByName_LivePathAndSelfExclusion(t *testing.T) {
	env := newTestEnv(t, WithMinSimilarity(0.0))
	ctx := context.Background()

	env.addAttendee(t, &core.Attendee{Id: 1, FirstName: "Ada", LastName: "Lovelace"})
	env.addAttendee(t, &core.Attendee{Id: 2, FirstName: "Bob", LastName: "Babbage"})

	// Ada's own offering must never come back for her request.
	env.addOffering(t, &core.Offering{Id: 10, AttendeeId: 1, Text: "ada offers", Vector: []float32{1, 0, 0}})
	env.addOffering(t, &core.Offering{Id: 20, AttendeeId: 2, Text: "bob offers", Vector: []float32{1, 0, 0}})
	env.addRequest(t, &core.Request{Id: 40, AttendeeId: 1, Text: "ada needs"}, nil)

	result, err := env.matcher.MatchByName(ctx, "Ada Lovelace")
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", result.Attendee.Name)
	require.Len(t, result.PeopleWhoCanHelpYou, 1)
	group := result.PeopleWhoCanHelpYou[0]
	assert.Equal(t, "ada needs", group.YourRequest)
	require.Len(t, group.Matches, 1)
	assert.Equal(t, "Bob Babbage", group.Matches[0].Name)

	// The live path computes and caches the synthetic offering.
	cached, err := env.repos.Requests.GetRequest(ctx, 40)
	require.NoError(t, err)
	assert.True(t, cached.HasSynthetic())
}

func TestMatchByName_GroupOmission(t *testing.T) {
	env := newTestEnv(t, WithMinSimilarity(0.0))
	ctx := context.Background()

	env.addAttendee(t, &core.Attendee{Id: 1, FirstName: "Ada", LastName: "Lovelace"})
	// Only Ada's own offering exists, so her request yields zero matches.
	env.addOffering(t, &core.Offering{Id: 10, AttendeeId: 1, Text: "ada offers", Vector: []float32{1, 0, 0}})
	env.addRequest(t, &core.Request{Id: 40, AttendeeId: 1, Text: "ada needs"}, nil)

	result, err := env.matcher.MatchByName(ctx, "Ada Lovelace")
	require.NoError(t, err)

	// No empty group is emitted.
	assert.Empty(t, result.PeopleWhoCanHelpYou)
}

func TestMatchByName_UsesPrecomputedRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addAttendee(t, &core.Attendee{Id: 1, FirstName: "Ada", LastName: "Lovelace"})
	env.addAttendee(t, &core.Attendee{Id: 2, FirstName: "Bob", LastName: "Babbage"})
	env.addOffering(t, &core.Offering{Id: 20, AttendeeId: 2, Text: "bob offers"})
	env.addRequest(t, &core.Request{Id: 40, AttendeeId: 1, Text: "ada needs"}, nil)

	require.NoError(t, env.repos.Matches.ReplaceRequestMatches(ctx, 40, []*core.MatchRecord{
		{CandidateId: 20, Similarity: 0.91},
	}))

	result, err := env.matcher.MatchByName(ctx, "Ada Lovelace")
	require.NoError(t, err)

	require.Len(t, result.PeopleWhoCanHelpYou, 1)
	matches := result.PeopleWhoCanHelpYou[0].Matches
	require.Len(t, matches, 1)
	assert.Equal(t, "Bob Babbage", matches[0].Name)
	assert.Equal(t, 0.91, matches[0].Similarity)

	// Precomputed rows bypass the live transform/embed/search path.
	assert.Equal(t, 0, env.transformer.CallCount())
	assert.Equal(t, 0, env.embedder.CallCount())
}

func TestMatchByName_DropsMissingPrecomputedCandidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addAttendee(t, &core.Attendee{Id: 1, FirstName: "Ada", LastName: "Lovelace"})
	env.addAttendee(t, &core.Attendee{Id: 2, FirstName: "Bob", LastName: "Babbage"})
	env.addOffering(t, &core.Offering{Id: 20, AttendeeId: 2, Text: "bob offers"})
	env.addRequest(t, &core.Request{Id: 40, AttendeeId: 1, Text: "ada needs"}, nil)

	require.NoError(t, env.repos.Matches.ReplaceRequestMatches(ctx, 40, []*core.MatchRecord{
		{CandidateId: 999, Similarity: 0.95}, // offering no longer exists
		{CandidateId: 20, Similarity: 0.90},
	}))

	result, err := env.matcher.MatchByName(ctx, "Ada Lovelace")
	require.NoError(t, err)

	require.Len(t, result.PeopleWhoCanHelpYou, 1)
	matches := result.PeopleWhoCanHelpYou[0].Matches
	require.Len(t, matches, 1)
	assert.Equal(t, "Bob Babbage", matches[0].Name)
}

func TestMatchByName_OfferingSide(t *testing.T) {
	env := newTestEnv(t, WithMinSimilarity(0.0))
	ctx := context.Background()

	env.addAttendee(t, &core.Attendee{Id: 1, FirstName: "Ada", LastName: "Lovelace"})
	env.addAttendee(t, &core.Attendee{Id: 2, FirstName: "Bob", LastName: "Babbage"})
	env.addOffering(t, &core.Offering{Id: 10, AttendeeId: 1, Text: "ada offers", Vector: []float32{1, 0, 0}})
	env.addRequest(t, &core.Request{Id: 50, AttendeeId: 2, Text: "bob needs"}, []float32{1, 0, 0})

	result, err := env.matcher.MatchByName(ctx, "Ada Lovelace")
	require.NoError(t, err)

	require.Len(t, result.PeopleYouCanHelp, 1)
	group := result.PeopleYouCanHelp[0]
	assert.Equal(t, "ada offers", group.YourOffering)
	require.Len(t, group.Matches, 1)
	assert.Equal(t, "bob needs", group.Matches[0].Text)
}

func TestListAttendeeNames_Sorted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addAttendee(t, &core.Attendee{Id: 3, FirstName: "Carol", LastName: "Hollerith"})
	env.addAttendee(t, &core.Attendee{Id: 1, FirstName: "Ada", LastName: "Lovelace"})
	env.addAttendee(t, &core.Attendee{Id: 2, FirstName: "Bob", LastName: "Babbage"})

	names, err := env.matcher.ListAttendeeNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada Lovelace", "Bob Babbage", "Carol Hollerith"}, names)
}
