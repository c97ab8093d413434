package projection

import (
	"time"

	"github.com/jtoledano/organizer/internal/store"
)

// Projector memoizes the three projections against the cache's version
// counter, so redraws between mutations reuse the previous grouping instead
// of resorting. Not safe for concurrent use; the UI calls it from its single
// update loop.
type Projector struct {
	cache *store.Cache

	boardVersion uint64
	board        Board
	hasBoard     bool

	matrixVersion uint64
	matrix        Matrix
	hasMatrix     bool

	weekVersion uint64
	weekDay     time.Time
	week        []Day
	hasWeek     bool
}

// NewProjector creates a projector over cache
func NewProjector(cache *store.Cache) *Projector {
	return &Projector{cache: cache}
}

// Board returns the Kanban grouping for the cache's current contents
func (p *Projector) Board() Board {
	v := p.cache.Version()
	if !p.hasBoard || v != p.boardVersion {
		p.board = Kanban(p.cache.Tasks())
		p.boardVersion = v
		p.hasBoard = true
	}
	return p.board
}

// Matrix returns the Eisenhower grouping for the cache's current contents
func (p *Projector) Matrix() Matrix {
	v := p.cache.Version()
	if !p.hasMatrix || v != p.matrixVersion {
		p.matrix = Eisenhower(p.cache.Tasks())
		p.matrixVersion = v
		p.hasMatrix = true
	}
	return p.matrix
}

// Week returns the weekly planner grouping. The memo also keys on the
// calendar day so a program left open over midnight regroups.
func (p *Projector) Week(now time.Time) []Day {
	v := p.cache.Version()
	day := midnight(now)
	if !p.hasWeek || v != p.weekVersion || !day.Equal(p.weekDay) {
		p.week = Week(p.cache.Tasks(), now)
		p.weekVersion = v
		p.weekDay = day
		p.hasWeek = true
	}
	return p.week
}
