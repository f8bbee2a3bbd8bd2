// Package narrative holds every player-facing message the game emits. The
// built-in set matches the original cave's tone; operators can re-theme the
// game by pointing the server at a YAML override file.
package narrative

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Set is the complete message catalog. Fields ending in a printf verb note
// document their expected arguments.
type Set struct {
	// Welcome greets a player on connect.
	Welcome string `yaml:"welcome"`

	// WumpusDeath is sent when a player walks into the wumpus's room.
	WumpusDeath string `yaml:"wumpus_death"`
	// PitDeath lines are sent when a player falls into a pit.
	PitDeath []string `yaml:"pit_death"`
	// BatsCarry is sent when bats relocate a player.
	BatsCarry string `yaml:"bats_carry"`
	// LadderSpotted is sent on entering the escape room.
	LadderSpotted string `yaml:"ladder_spotted"`
	// InvalidRoom is sent when a move targets a non-adjacent room.
	InvalidRoom string `yaml:"invalid_room"`

	// NoArrows is sent when shooting with an empty quiver.
	NoArrows string `yaml:"no_arrows"`
	// ArrowFired takes the remaining arrow count (%d).
	ArrowFired string `yaml:"arrow_fired"`
	// InvalidShot is sent when a shot targets a non-adjacent room.
	InvalidShot string `yaml:"invalid_shot"`
	// ArrowBroke is sent, after InvalidShot, when the lost-arrow rule is on.
	ArrowBroke string `yaml:"arrow_broke"`
	// WumpusKilled announces the kill, regardless of distance.
	WumpusKilled string `yaml:"wumpus_killed"`
	// KillByDistance holds one brag line per hop distance (1, 2, 3).
	KillByDistance []string `yaml:"kill_by_distance"`

	// GoldPicked takes the amount found (%d).
	GoldPicked string `yaml:"gold_picked"`
	// GoldTotal takes the player's new total (%d).
	GoldTotal string `yaml:"gold_total"`
	// ArrowsPicked takes the amount found (%d).
	ArrowsPicked string `yaml:"arrows_picked"`
	// ArrowsTotal takes the player's new total (%d).
	ArrowsTotal string `yaml:"arrows_total"`
	// NothingHere is sent when the room holds no loot.
	NothingHere string `yaml:"nothing_here"`

	// Escaped takes final gold and arrow totals (%d, %d).
	Escaped string `yaml:"escaped"`
	// NoLadder is sent on climbing anywhere but the escape room.
	NoLadder string `yaml:"no_ladder"`

	// Farewell is sent on quit.
	Farewell string `yaml:"farewell"`
	// UnknownCommand is sent for any unparseable input.
	UnknownCommand string `yaml:"unknown_command"`
}

// Defaults returns the built-in message set.
//
// Postcondition: The returned Set passes Validate.
func Defaults() Set {
	return Set{
		Welcome: "Abandon all hope ye who enter here! This cave belongs to the wumpus.",

		WumpusDeath: "The wumpus emerges from the shadows and slowly devours you!",
		PitDeath: []string{
			"You fell into a pit and broke both of your legs.",
			"You're trapped down here. Rest in peace.",
		},
		BatsCarry:     "Giant bats swoop down and carry you off to another room!",
		LadderSpotted: "Is that... a ladder?! You could climb out of here!",
		InvalidRoom:   "You tried to enter an invalid room!",

		NoArrows:     "You don't have any arrows.",
		ArrowFired:   "You fired an arrow! You have %d left.",
		InvalidShot:  "You tried to fire an arrow into an invalid room!",
		ArrowBroke:   "Your arrow broke against the wall.",
		WumpusKilled: "YOU KILLED THE WUMPUS!",
		KillByDistance: []string{
			"The smelly beast was right next door!",
			"The wumpus died two rooms away from you.",
			"The wumpus died three rooms away. Impressive! Or was it luck?",
		},

		GoldPicked:   "You picked up %d gold!",
		GoldTotal:    "You now have %d gold.",
		ArrowsPicked: "You picked up %d arrows!",
		ArrowsTotal:  "You now have %d arrows.",
		NothingHere:  "There is nothing to pick up here.",

		Escaped:  "You climb into daylight with %d gold and %d arrows. The cave is behind you.",
		NoLadder: "There is no ladder here. Worse: the wumpus heard you trying, and now he's angry.",

		Farewell:       "You drop everything you carried and crawl back the way you came.",
		UnknownCommand: "That makes no sense down here.",
	}
}

// Load reads a YAML override file and merges it over the defaults: empty
// fields in the file keep their built-in values.
//
// Precondition: path must point at a readable YAML file.
// Postcondition: Returns a validated Set or a non-nil error.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("reading narrative file %s: %w", path, err)
	}

	var override Set
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Set{}, fmt.Errorf("parsing narrative file %s: %w", path, err)
	}

	merged := Defaults().merge(override)
	if err := merged.Validate(); err != nil {
		return Set{}, fmt.Errorf("narrative file %s: %w", path, err)
	}
	return merged, nil
}

// merge overlays non-empty fields of o onto s.
func (s Set) merge(o Set) Set {
	pick := func(base, over string) string {
		if over != "" {
			return over
		}
		return base
	}
	pickLines := func(base, over []string) []string {
		if len(over) > 0 {
			return over
		}
		return base
	}

	return Set{
		Welcome:        pick(s.Welcome, o.Welcome),
		WumpusDeath:    pick(s.WumpusDeath, o.WumpusDeath),
		PitDeath:       pickLines(s.PitDeath, o.PitDeath),
		BatsCarry:      pick(s.BatsCarry, o.BatsCarry),
		LadderSpotted:  pick(s.LadderSpotted, o.LadderSpotted),
		InvalidRoom:    pick(s.InvalidRoom, o.InvalidRoom),
		NoArrows:       pick(s.NoArrows, o.NoArrows),
		ArrowFired:     pick(s.ArrowFired, o.ArrowFired),
		InvalidShot:    pick(s.InvalidShot, o.InvalidShot),
		ArrowBroke:     pick(s.ArrowBroke, o.ArrowBroke),
		WumpusKilled:   pick(s.WumpusKilled, o.WumpusKilled),
		KillByDistance: pickLines(s.KillByDistance, o.KillByDistance),
		GoldPicked:     pick(s.GoldPicked, o.GoldPicked),
		GoldTotal:      pick(s.GoldTotal, o.GoldTotal),
		ArrowsPicked:   pick(s.ArrowsPicked, o.ArrowsPicked),
		ArrowsTotal:    pick(s.ArrowsTotal, o.ArrowsTotal),
		NothingHere:    pick(s.NothingHere, o.NothingHere),
		Escaped:        pick(s.Escaped, o.Escaped),
		NoLadder:       pick(s.NoLadder, o.NoLadder),
		Farewell:       pick(s.Farewell, o.Farewell),
		UnknownCommand: pick(s.UnknownCommand, o.UnknownCommand),
	}
}

// Validate checks structural requirements the interpreter depends on.
//
// Postcondition: Returns nil, or an error naming the first violation.
func (s Set) Validate() error {
	if len(s.PitDeath) == 0 {
		return fmt.Errorf("pit_death must contain at least one line")
	}
	if len(s.KillByDistance) != 3 {
		return fmt.Errorf("kill_by_distance must contain exactly 3 lines, got %d", len(s.KillByDistance))
	}
	return nil
}
