package match

import "github.com/poiesic/confero/ai"

// Monitor provides hooks to observe the matching pipeline.
// Implement this interface to track intermediate steps during matching.
type Monitor interface {
	Start(query string)
	UsedPrecomputedRows(sourceId uint64, rows int)
	AfterVectorSearch(kind ai.QueryKind, hits int)
	AfterCandidateResolution(resolved, dropped int)
	RerankFallback(kind ai.QueryKind, err error)
	Finish(matches int)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                           {}
func (n *noopMonitor) UsedPrecomputedRows(_ uint64, _ int)      {}
func (n *noopMonitor) AfterVectorSearch(_ ai.QueryKind, _ int)  {}
func (n *noopMonitor) AfterCandidateResolution(_, _ int)        {}
func (n *noopMonitor) RerankFallback(_ ai.QueryKind, _ error)   {}
func (n *noopMonitor) Finish(_ int)                             {}
