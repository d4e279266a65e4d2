package track

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/roller/trackgen/internal/scene"
)

// Track is the ordered alternation Connector₀, Segment₀, Connector₁, …,
// Connectorₙ produced by one build. It owns every piece until reset.
type Track struct {
	BuildID    uuid.UUID
	Number     int // builds since the builder was created, from 1
	Connectors []*Connector
	Segments   []*Segment
}

// Length sums the spline length of every segment.
func (t *Track) Length() float64 {
	total := 0.0
	for _, s := range t.Segments {
		total += s.Length()
	}
	return total
}

func (t *Track) PerilCount() int {
	n := 0
	for _, s := range t.Segments {
		n += len(s.perils)
	}
	return n
}

func (t *Track) CollectableCount() int {
	n := 0
	for _, s := range t.Segments {
		n += s.placed
	}
	return n
}

// BranchCount returns how many segments carry a branch spline.
func (t *Track) BranchCount() int {
	n := 0
	for _, s := range t.Segments {
		if s.Branch() != nil {
			n++
		}
	}
	return n
}

// ResetCollectables re-shows every segment's collectables for another run
// over the same track.
func (t *Track) ResetCollectables(g *scene.Graph) {
	for _, s := range t.Segments {
		s.ResetCollectables(g)
	}
}

// Validate checks the alternation count and that each segment's pinned
// nodes sit exactly on its bounding connectors' anchors.
func (t *Track) Validate() error {
	if len(t.Connectors) != len(t.Segments)+1 {
		return fmt.Errorf("track has %d connectors for %d segments", len(t.Connectors), len(t.Segments))
	}
	for i, seg := range t.Segments {
		nodes := seg.Nodes()
		if len(nodes) < 2*AnchorCount {
			return fmt.Errorf("segment %d has %d nodes", i, len(nodes))
		}
		in, out := t.Connectors[i], t.Connectors[i+1]
		for k := 0; k < AnchorCount; k++ {
			if nodes[k].Position != in.EndAnchor(k) {
				return fmt.Errorf("segment %d node %d is off connector %d end anchor", i, k, i)
			}
			tail := nodes[len(nodes)-AnchorCount+k]
			if tail.Position != out.StartAnchor(k) {
				return fmt.Errorf("segment %d node %d is off connector %d start anchor", i, len(nodes)-AnchorCount+k, i+1)
			}
		}
		if br := seg.Branch(); br != nil {
			bn := br.Nodes()
			if len(bn) != len(nodes) {
				return fmt.Errorf("segment %d branch has %d nodes, road has %d", i, len(bn), len(nodes))
			}
			for k := 0; k < AnchorCount; k++ {
				head, tail := k, len(nodes)-1-k
				if bn[head].Position != nodes[head].Position || bn[tail].Position != nodes[tail].Position {
					return fmt.Errorf("segment %d branch leaves the road at its pinned nodes", i)
				}
			}
		}
	}
	return nil
}
