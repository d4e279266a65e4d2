package scene

// ID encodes a 32-bit slot index in the lower bits and a 32-bit generation
// in the upper bits. The generation bumps when a slot is freed so a stale ID
// never resolves to the object that reused its slot.
type ID uint64

func NewID(index uint32, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(index))
}

func (id ID) Index() uint32      { return uint32(id) }
func (id ID) Generation() uint32 { return uint32(id >> 32) }

// idPool hands out IDs, reusing freed slots last-in-first-out.
type idPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func newIDPool() *idPool {
	return &idPool{
		generations: make([]uint32, 0, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

func (p *idPool) create() ID {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		// generation 1 keeps the zero ID unused
		p.generations = append(p.generations, 1)
	}
	return NewID(idx, p.generations[idx])
}

func (p *idPool) alive(id ID) bool {
	idx := id.Index()
	if idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *idPool) destroy(id ID) {
	if !p.alive(id) {
		return // stale
	}
	idx := id.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}
