package cave

import (
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"
)

// Occupant is a presence handle for whoever is standing in a room. Rooms only
// ever see sessions through this interface and never mutate their state.
type Occupant interface {
	// UID returns the occupant's unique identifier.
	UID() string
}

// Room is a node in the cave graph. It owns its hazard, loot counters, and
// occupant set, and synchronizes every mutation internally. Callers must
// never hold more than one room lock at a time; no Room method takes another
// room's lock.
type Room struct {
	mu        sync.Mutex
	id        int
	hazard    Hazard
	gold      int
	arrows    int
	connected map[int]*Room
	occupants map[string]Occupant
}

// NewRoom creates an unconnected room with the given id and no hazard or loot.
//
// Precondition: id must be >= 0 and unique within its map.
func NewRoom(id int) *Room {
	return &Room{
		id:        id,
		connected: make(map[int]*Room),
		occupants: make(map[string]Occupant),
	}
}

// ID returns the room's player-facing id.
func (r *Room) ID() int {
	return r.id
}

// Connect wires a symmetric edge between r and other. Self-edges and
// duplicate edges are ignored.
//
// Precondition: Called during map generation only; not safe for use once
// sessions are running.
func (r *Room) Connect(other *Room) {
	if other == nil || other == r || other.id == r.id {
		return
	}
	r.connected[other.id] = other
	other.connected[r.id] = r
}

// Neighbor returns the directly connected room with the given id. Movement
// and shooting resolve targets through this lookup, which is what restricts
// them to adjacent rooms.
//
// Postcondition: Returns (room, true) if id is adjacent, or (nil, false) otherwise.
func (r *Room) Neighbor(id int) (*Room, bool) {
	n, ok := r.connected[id]
	return n, ok
}

// NeighborIDs returns the ids of all connected rooms in ascending order.
func (r *Room) NeighborIDs() []int {
	ids := make([]int, 0, len(r.connected))
	for id := range r.connected {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Degree returns the number of connected rooms.
func (r *Room) Degree() int {
	return len(r.connected)
}

// Enter adds an occupant to the room. Pure bookkeeping: hazard consequences
// are resolved by the entering session, not here, because the outcome (death,
// relocation, escape) has to be reported to that specific player.
func (r *Room) Enter(o Occupant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.occupants[o.UID()] = o
}

// Leave removes an occupant from the room. No-op if absent.
func (r *Room) Leave(o Occupant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.occupants, o.UID())
}

// OccupantCount returns the number of occupants currently present.
func (r *Room) OccupantCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.occupants)
}

// Hazard returns the room's current hazard.
func (r *Room) Hazard() Hazard {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hazard
}

// SetHazard assigns the room's hazard.
func (r *Room) SetHazard(h Hazard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hazard = h
}

// ClearWumpus removes the wumpus if it is here.
//
// Postcondition: Returns true if the room held the wumpus and its hazard is
// now HazardNone; false if the wumpus had already moved on.
func (r *Room) ClearWumpus() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hazard != HazardWumpus {
		return false
	}
	r.hazard = HazardNone
	return true
}

// PlaceWumpus puts the wumpus in this room, replacing any prior hazard.
func (r *Room) PlaceWumpus() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hazard = HazardWumpus
}

// KillWumpusHere atomically resolves an arrow arriving in this room: if the
// wumpus is present it dies, the hazard clears, and reward gold drops where
// it fell. A room already emptied by an earlier arrow never pays out twice.
//
// Precondition: reward must be >= 0.
// Postcondition: Returns true exactly once per wumpus occupancy of this room.
func (r *Room) KillWumpusHere(reward int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hazard != HazardWumpus {
		return false
	}
	r.hazard = HazardNone
	r.gold += reward
	return true
}

// Gold returns the gold currently on the floor.
func (r *Room) Gold() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gold
}

// Arrows returns the arrows currently on the floor.
func (r *Room) Arrows() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.arrows
}

// TakeGold withdraws all gold from the room.
//
// Postcondition: The room's gold is zero. When two sessions race, exactly one
// receives a non-zero amount.
func (r *Room) TakeGold() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.gold
	r.gold = 0
	return g
}

// TakeArrows withdraws all arrows from the room.
//
// Postcondition: The room's arrows are zero. When two sessions race, exactly
// one receives a non-zero amount.
func (r *Room) TakeArrows() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.arrows
	r.arrows = 0
	return a
}

// DepositGold adds gold to the room's floor.
//
// Precondition: n must be >= 0.
func (r *Room) DepositGold(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gold += n
}

// DepositArrows adds arrows to the room's floor.
//
// Precondition: n must be >= 0.
func (r *Room) DepositArrows(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.arrows += n
}

// Sense returns the descriptive lines a player perceives while standing in
// this room: location, tunnels, loot hints, and one proximity hint per
// distinct hazard among directly connected rooms. The sequence is lazy and
// restartable; every iteration re-reads current room state. No room lock is
// held across another room's lock.
func (r *Room) Sense() iter.Seq[string] {
	return func(yield func(string) bool) {
		r.mu.Lock()
		gold, arrows := r.gold, r.arrows
		r.mu.Unlock()

		if !yield(fmt.Sprintf("You are in room: %d", r.id)) {
			return
		}
		if !yield(r.tunnelLine()) {
			return
		}
		if gold > 0 && !yield("Gold glitters on the floor here.") {
			return
		}
		if arrows > 0 && !yield("A bundle of arrows lies here.") {
			return
		}
		for _, hint := range r.proximityHints() {
			if !yield(hint) {
				return
			}
		}
	}
}

// tunnelLine renders the neighbor list with ", " separators and "and" before
// the final id.
func (r *Room) tunnelLine() string {
	ids := r.NeighborIDs()
	switch len(ids) {
	case 0:
		return "You see no tunnels out of here."
	case 1:
		return fmt.Sprintf("You see a tunnel to room %d.", ids[0])
	}
	var b strings.Builder
	b.WriteString("You see tunnels to rooms ")
	for i, id := range ids {
		switch {
		case i == len(ids)-1:
			fmt.Fprintf(&b, "and %d.", id)
		case i == len(ids)-2:
			fmt.Fprintf(&b, "%d ", id)
		default:
			fmt.Fprintf(&b, "%d, ", id)
		}
	}
	return b.String()
}

// proximityHints returns one hint per distinct hazard type among neighboring
// rooms, in a fixed order so output is deterministic.
func (r *Room) proximityHints() []string {
	nearby := make(map[Hazard]bool, 4)
	for _, id := range r.NeighborIDs() {
		n := r.connected[id]
		nearby[n.Hazard()] = true
	}

	var hints []string
	if nearby[HazardWumpus] {
		hints = append(hints, "You smell something foul nearby.")
	}
	if nearby[HazardPit] {
		hints = append(hints, "You feel a cold draft.")
	}
	if nearby[HazardBats] {
		hints = append(hints, "You hear faint screeching.")
	}
	if nearby[HazardLadder] {
		hints = append(hints, "You smell fresh-cut wood.")
	}
	return hints
}
