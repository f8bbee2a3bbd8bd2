// Package cave provides the shared cave model: rooms, the generated map, and
// the synchronized mutation operations every player session acts through.
package cave

// Hazard identifies the danger or feature occupying a room.
type Hazard int

// Room hazards. A room holds at most one hazard at a time.
const (
	HazardNone Hazard = iota
	HazardWumpus
	HazardPit
	HazardBats
	HazardLadder
)

// String returns the lowercase hazard name.
func (h Hazard) String() string {
	switch h {
	case HazardNone:
		return "none"
	case HazardWumpus:
		return "wumpus"
	case HazardPit:
		return "pit"
	case HazardBats:
		return "bats"
	case HazardLadder:
		return "ladder"
	default:
		return "unknown"
	}
}
