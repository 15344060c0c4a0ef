// Package agg implements the L4 streaming aggregator (spec.md §4.6): an
// order-preserving skiplist holding temporal chunks (instants or
// sequences), with transition/combine/final functions for every tAgg
// specialization.
//
// Grounded on original_source/mobilitydb/src/general/temporal_aggfuncs.c
// and the meos/ split of the same file; the skiplist itself follows
// spec.md §9's "standard O(log n) skiplist with deterministic geometric
// promotion... Cursor API (locate -> splice)".
package agg

import (
	"math/rand"
	"time"

	"github.com/banshee-data/temporalgeo/internal/engconfig"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temporal"
)

// Config holds the tuning values new skiplists are built with (spec.md
// §9's max level and geometric promotion probability). Defaults to the
// engine's hardcoded values; callers that load a tuning document should
// install it with SetConfig.
var Config = engconfig.Empty()

// SetConfig installs the tuning document new skiplists read. Passing
// nil resets it to the engine defaults.
func SetConfig(cfg *engconfig.EngineConfig) {
	if cfg == nil {
		cfg = engconfig.Empty()
	}
	Config = cfg
}

// node is one skiplist entry. Key is the chunk's period lower bound
// (or the instant's own timestamp for an Instant chunk); Chunk is the
// temporal value it owns (spec.md §3.7: "the aggregator's skiplist owns
// its node values").
type node struct {
	key      time.Time
	chunk    temporal.Temporal
	forward  []*node
}

// SkipList is a standard leveled skiplist ordered by timestamp (for
// instant chunks) or by period lower bound (for sequence chunks),
// exposing the locate -> splice cursor API of spec.md §9.
type SkipList struct {
	head     *node
	level    int
	rng      *rand.Rand
	count    int
	maxLevel int
	promoteP float64
}

// NewSkipList builds an empty skiplist using the package's current
// Config. seed fixes the promotion RNG so combine() runs are
// reproducible in tests; production callers may pass
// time.Now().UnixNano().
func NewSkipList(seed int64) *SkipList {
	maxLevel := Config.GetSkiplistMaxLevel()
	return &SkipList{
		head:     &node{forward: make([]*node, maxLevel)},
		level:    1,
		rng:      rand.New(rand.NewSource(seed)),
		maxLevel: maxLevel,
		promoteP: Config.GetSkiplistPromoteP(),
	}
}

// Len returns the number of chunks currently held.
func (s *SkipList) Len() int { return s.count }

func (s *SkipList) randomLevel() int {
	lvl := 1
	for lvl < s.maxLevel && s.rng.Float64() < s.promoteP {
		lvl++
	}
	return lvl
}

// Insert adds chunk keyed by key, replacing any existing node at the same
// key.
func (s *SkipList) Insert(key time.Time, chunk temporal.Temporal) {
	update := make([]*node, s.maxLevel)
	cur := s.head
	for i := s.level - 1; i >= 0; i-- {
		for cur.forward[i] != nil && cur.forward[i].key.Before(key) {
			cur = cur.forward[i]
		}
		update[i] = cur
	}
	if next := cur.forward[0]; next != nil && next.key.Equal(key) {
		next.chunk = chunk
		return
	}
	lvl := s.randomLevel()
	if lvl > s.level {
		for i := s.level; i < lvl; i++ {
			update[i] = s.head
		}
		s.level = lvl
	}
	n := &node{key: key, chunk: chunk, forward: make([]*node, lvl)}
	for i := 0; i < lvl; i++ {
		n.forward[i] = update[i].forward[i]
		update[i].forward[i] = n
	}
	s.count++
}

// Locate returns the chunk of the largest node with key <= t, or
// (zero-value, false) if none.
func (s *SkipList) Locate(t time.Time) (temporal.Temporal, bool) {
	cur := s.head
	for i := s.level - 1; i >= 0; i-- {
		for cur.forward[i] != nil && !cur.forward[i].key.After(t) {
			cur = cur.forward[i]
		}
	}
	if cur == s.head {
		return temporal.Temporal{}, false
	}
	return cur.chunk, true
}

// Splice replaces every node whose chunk period overlaps rng with the
// single replacement chunk, preserving all out-of-range nodes verbatim
// (spec.md §4.6: "non-overlapping fringes of both sides are preserved
// verbatim").
func (s *SkipList) Splice(rng span.Span, replacement *temporal.Temporal) {
	var kept []*node
	for n := s.head.forward[0]; n != nil; n = n.forward[0] {
		p := temporal.Period(n.chunk)
		if span.Overlaps(p, rng) {
			continue
		}
		kept = append(kept, n)
	}
	s.rebuild(kept)
	if replacement != nil {
		p := temporal.Period(*replacement)
		s.Insert(p.Lo.V.(time.Time), *replacement)
	}
}

func (s *SkipList) rebuild(nodes []*node) {
	s.head = &node{forward: make([]*node, s.maxLevel)}
	s.level = 1
	s.count = 0
	for _, n := range nodes {
		s.Insert(n.key, n.chunk)
	}
}

// OverlappingRange returns, in ascending key order, every chunk whose
// period overlaps rng.
func (s *SkipList) OverlappingRange(rng span.Span) []temporal.Temporal {
	var out []temporal.Temporal
	for n := s.head.forward[0]; n != nil; n = n.forward[0] {
		if span.Overlaps(temporal.Period(n.chunk), rng) {
			out = append(out, n.chunk)
		}
	}
	return out
}

// All returns every chunk in ascending key order.
func (s *SkipList) All() []temporal.Temporal {
	var out []temporal.Temporal
	for n := s.head.forward[0]; n != nil; n = n.forward[0] {
		out = append(out, n.chunk)
	}
	return out
}

// Clone returns a deep-enough copy (new node spine, shared immutable
// chunk values — temporal values are themselves immutable per spec.md
// §3.7) for callers that need to branch a state before a tentative
// combine.
func (s *SkipList) Clone() *SkipList {
	clone := NewSkipList(s.rng.Int63())
	for n := s.head.forward[0]; n != nil; n = n.forward[0] {
		clone.Insert(n.key, n.chunk)
	}
	return clone
}
