package search

import "github.com/LakGar/Lumina-sub000/vector"

// Path names the retrieval strategy a search ran on.
type Path string

const (
	// PathSemantic is the embedding-based path.
	PathSemantic Path = "semantic"
	// PathKeyword is the store-backed substring path.
	PathKeyword Path = "keyword"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(ownerID, query string)
	ChosePath(path Path)
	AfterVectorQuery(matches []vector.Match)
	FellBack(err error)
	Finish(page *Page)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ string)                   {}
func (n *noopMonitor) ChosePath(_ Path)                    {}
func (n *noopMonitor) AfterVectorQuery(_ []vector.Match)   {}
func (n *noopMonitor) FellBack(_ error)                    {}
func (n *noopMonitor) Finish(_ *Page)                      {}
