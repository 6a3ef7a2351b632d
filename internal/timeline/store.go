package timeline

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

type entry struct {
	block Block
	seq   uint64
}

// BlockStore owns the blocks of a single layer.
//
// All stores of a Project share the Project's lock so that a whole-project
// replacement is atomic with respect to individual mutations.
type BlockStore struct {
	layerID string
	mu      *sync.RWMutex
	blocks  map[string]*entry
	seq     uint64
	notify  func(layerID string)
}

// NewBlockStore creates a standalone store for layerID.
func NewBlockStore(layerID string) *BlockStore {
	return newBlockStore(layerID, &sync.RWMutex{}, nil)
}

func newBlockStore(layerID string, mu *sync.RWMutex, notify func(string)) *BlockStore {
	return &BlockStore{
		layerID: layerID,
		mu:      mu,
		blocks:  make(map[string]*entry),
		notify:  notify,
	}
}

// LayerID returns the id of the layer this store belongs to.
func (s *BlockStore) LayerID() string {
	return s.layerID
}

func (s *BlockStore) changed() {
	if s.notify != nil {
		s.notify(s.layerID)
	}
}

func (s *BlockStore) newID() string {
	return s.layerID + "-" + uuid.NewString()
}

// Add creates a block with a fresh id. startTime is clamped to >= 0 and
// duration to >= MinDuration. An empty label falls back to the category.
func (s *BlockStore) Add(category, label string, startTime, duration float64) Block {
	if label == "" {
		label = category
	}
	b := normalize(Block{
		ID:        s.newID(),
		Category:  category,
		Label:     label,
		StartTime: startTime,
		Duration:  duration,
	})

	s.mu.Lock()
	s.insertLocked(b)
	s.mu.Unlock()

	s.changed()
	return b
}

func (s *BlockStore) insertLocked(b Block) {
	s.seq++
	s.blocks[b.ID] = &entry{block: b, seq: s.seq}
}

// Remove deletes the block if present. It reports whether anything changed.
func (s *BlockStore) Remove(id string) bool {
	s.mu.Lock()
	_, ok := s.blocks[id]
	if ok {
		delete(s.blocks, id)
	}
	s.mu.Unlock()

	if ok {
		s.changed()
	}
	return ok
}

// Update merges p into the block and re-applies the Add clamps.
// Unknown ids are ignored.
func (s *BlockStore) Update(id string, p Patch) (Block, bool) {
	s.mu.Lock()
	e, ok := s.blocks[id]
	if !ok {
		s.mu.Unlock()
		return Block{}, false
	}
	e.block = p.apply(e.block)
	b := e.block
	s.mu.Unlock()

	s.changed()
	return b, true
}

// Get returns the block with the given id.
func (s *BlockStore) Get(id string) (Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.blocks[id]
	if !ok {
		return Block{}, false
	}
	return e.block, true
}

// Len returns the number of blocks.
func (s *BlockStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocks)
}

// List returns a snapshot of the blocks in no particular order.
func (s *BlockStore) List() []Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Block, 0, len(s.blocks))
	for _, e := range s.blocks {
		out = append(out, e.block)
	}
	return out
}

// Sorted returns the blocks ordered by StartTime, ties in creation order.
func (s *BlockStore) Sorted() []Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

func (s *BlockStore) sortedLocked() []Block {
	entries := make([]*entry, 0, len(s.blocks))
	for _, e := range s.blocks {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].block.StartTime != entries[j].block.StartTime {
			return entries[i].block.StartTime < entries[j].block.StartTime
		}
		return entries[i].seq < entries[j].seq
	})
	out := make([]Block, len(entries))
	for i, e := range entries {
		out[i] = e.block
	}
	return out
}

// replaceLocked swaps in a new block set. The caller holds the write lock.
func (s *BlockStore) replaceLocked(blocks []Block) {
	s.blocks = make(map[string]*entry, len(blocks))
	s.seq = 0
	for _, b := range blocks {
		if b.ID == "" {
			b.ID = s.newID()
		}
		if b.Label == "" {
			b.Label = b.Category
		}
		s.insertLocked(normalize(b))
	}
}
