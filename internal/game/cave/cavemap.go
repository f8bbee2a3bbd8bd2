package cave

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/caveserver/internal/game/rng"
)

// GenerationConfig controls map generation.
type GenerationConfig struct {
	// Rooms is the number of rooms to generate.
	Rooms int
	// IDRange is the exclusive upper bound for random room ids.
	IDRange int
	// LadderIndex is the generation-order index of the escape room.
	LadderIndex int
	// GoldDrop is the gold placed in a room that draws the gold category.
	GoldDrop int
	// SampleAttempts caps every random retry loop during generation and play.
	SampleAttempts int
}

// Hazard draw thresholds on a d100, carried over from the original cave:
// below 10 places the wumpus, 21-29 bats, 41-49 a pit, 51-74 gold.
const (
	wumpusBelow = 10
	batsLow     = 21
	batsHigh    = 29
	pitLow      = 41
	pitHigh     = 49
	goldLow     = 51
	goldHigh    = 74
)

// Map is the generated cave: a fixed, connected room graph whose structure is
// immutable after generation while per-room hazard/loot state stays mutable.
// All Map methods are safe for concurrent use; the wumpus scan takes one room
// lock at a time and tolerates the wumpus moving mid-scan.
type Map struct {
	rooms    []*Room
	byID     map[int]*Room
	src      rng.Source
	attempts int
	idBound  int
}

// NewMap builds a Map from pre-constructed rooms. Generation and tests that
// need a hand-wired cave both go through here.
//
// Precondition: rooms must be non-empty with unique ids; src must be non-nil;
// attempts must be >= 1.
// Postcondition: Returns a Map indexing every room by id, or an error on
// duplicate ids.
func NewMap(rooms []*Room, src rng.Source, attempts int) (*Map, error) {
	if len(rooms) == 0 {
		return nil, fmt.Errorf("cave: map must contain at least one room")
	}
	byID := make(map[int]*Room, len(rooms))
	for _, r := range rooms {
		if existing, ok := byID[r.ID()]; ok && existing != r {
			return nil, fmt.Errorf("cave: duplicate room id %d", r.ID())
		}
		byID[r.ID()] = r
	}
	m := &Map{rooms: rooms, byID: byID, src: src, attempts: attempts}
	for id := range byID {
		if id >= m.idBound {
			m.idBound = id + 1
		}
	}
	return m, nil
}

// Generate builds a fresh cave: weighted hazard placement with exactly one
// wumpus, a ladder at the configured generation index, ring-plus-skip tunnels,
// and random non-sequential room ids.
//
// Precondition: cfg must satisfy Rooms >= 5, IDRange >= 2*Rooms,
// 0 <= LadderIndex < Rooms, SampleAttempts >= 1; src must be non-nil.
// Postcondition: Exactly one room holds HazardWumpus and exactly one holds
// HazardLadder; every room has degree >= 2; the neighbor relation is
// symmetric with no self-edges. Returns an error if a retry loop exhausts
// its attempt budget.
func Generate(cfg GenerationConfig, src rng.Source, logger *zap.Logger) (*Map, error) {
	ids, err := drawIDs(cfg, src)
	if err != nil {
		return nil, err
	}

	rooms := make([]*Room, cfg.Rooms)
	wumpusPlaced := false
	for i := range rooms {
		rooms[i] = NewRoom(ids[i])
		draw := src.Intn(101)
		switch {
		case draw < wumpusBelow && !wumpusPlaced:
			rooms[i].SetHazard(HazardWumpus)
			wumpusPlaced = true
		case draw >= batsLow && draw <= batsHigh:
			rooms[i].SetHazard(HazardBats)
		case draw >= pitLow && draw <= pitHigh:
			rooms[i].SetHazard(HazardPit)
		case draw >= goldLow && draw <= goldHigh:
			rooms[i].DepositGold(cfg.GoldDrop)
		}
	}

	// The weighted pass may miss the wumpus entirely; force one into a room
	// that holds neither bats nor a pit.
	if !wumpusPlaced {
		idx, err := rng.Sample(src, cfg.Rooms, cfg.SampleAttempts, func(i int) bool {
			h := rooms[i].Hazard()
			return h != HazardBats && h != HazardPit
		})
		if err != nil {
			return nil, fmt.Errorf("cave: placing wumpus: %w", err)
		}
		rooms[idx].SetHazard(HazardWumpus)
	}

	// The escape ladder lives at a fixed generation index and overrides
	// whatever was drawn there.
	ladder := rooms[cfg.LadderIndex]
	if ladder.Hazard() == HazardWumpus {
		// Keep the single-wumpus guarantee: shift the wumpus to the next room.
		rooms[(cfg.LadderIndex+1)%cfg.Rooms].SetHazard(HazardWumpus)
	}
	ladder.SetHazard(HazardLadder)

	for i := range rooms {
		rooms[i].Connect(rooms[(i+1)%cfg.Rooms])
		rooms[i].Connect(rooms[(i+2)%cfg.Rooms])
	}

	m, err := NewMap(rooms, src, cfg.SampleAttempts)
	if err != nil {
		return nil, err
	}

	if logger != nil {
		w, _ := m.FindWumpus()
		logger.Info("cave generated",
			zap.Int("rooms", len(rooms)),
			zap.Int("ladder_room", ladder.ID()),
			zap.Int("wumpus_room", w.ID()),
		)
	}
	return m, nil
}

// drawIDs assigns each generation slot a unique random id in [0, IDRange).
func drawIDs(cfg GenerationConfig, src rng.Source) ([]int, error) {
	used := make(map[int]bool, cfg.Rooms)
	ids := make([]int, cfg.Rooms)
	for i := range ids {
		id, err := rng.Sample(src, cfg.IDRange, cfg.SampleAttempts, func(v int) bool {
			return !used[v]
		})
		if err != nil {
			return nil, fmt.Errorf("cave: assigning room ids: %w", err)
		}
		used[id] = true
		ids[i] = id
	}
	return ids, nil
}

// Rooms returns the rooms in generation order.
func (m *Map) Rooms() []*Room {
	return m.rooms
}

// RoomCount returns the number of rooms in the map.
func (m *Map) RoomCount() int {
	return len(m.rooms)
}

// RoomByID returns the room with the given id.
//
// Postcondition: Returns (room, true) if found, or (nil, false) otherwise.
func (m *Map) RoomByID(id int) (*Room, bool) {
	r, ok := m.byID[id]
	return r, ok
}

// RandomRoom returns a uniformly random room. Used for start placement and
// bat relocation.
func (m *Map) RandomRoom() *Room {
	return m.rooms[m.src.Intn(len(m.rooms))]
}

// RandomNeighbor picks a neighbor of r by uniformly resampling ids against
// r's neighbor lookup until one resolves, bounded by the map's attempt
// budget. The accept predicate, when non-nil, further constrains the pick.
//
// Postcondition: Returns an adjacent room satisfying accept, or an error if
// the attempt budget is exhausted.
func (m *Map) RandomNeighbor(r *Room, accept func(*Room) bool) (*Room, error) {
	id, err := rng.Sample(m.src, m.idBound, m.attempts, func(v int) bool {
		n, ok := r.Neighbor(v)
		if !ok {
			return false
		}
		return accept == nil || accept(n)
	})
	if err != nil {
		return nil, fmt.Errorf("cave: sampling neighbor of room %d: %w", r.ID(), err)
	}
	n, _ := r.Neighbor(id)
	return n, nil
}

// FindWumpus scans the map for the room currently holding the wumpus. The
// scan takes one room lock at a time, so a wumpus relocated mid-scan may be
// missed; callers must tolerate (nil, false).
func (m *Map) FindWumpus() (*Room, bool) {
	for _, r := range m.rooms {
		if r.Hazard() == HazardWumpus {
			return r, true
		}
	}
	return nil, false
}
