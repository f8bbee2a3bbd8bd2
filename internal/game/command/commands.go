// Package command provides the command registry, parser, and built-in command
// definitions for the cave protocol.
package command

// Action identifies what a parsed command asks the interpreter to do.
type Action int

// Player actions, one per protocol verb.
const (
	ActionMove Action = iota
	ActionShoot
	ActionPickup
	ActionClimb
	ActionQuit
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name, lowercase.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Action is the interpreter action this command maps to.
	Action Action
	// WantsRoomID indicates the command requires a numeric room-id argument.
	WantsRoomID bool
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		{
			Name:        "move",
			Aliases:     []string{"m", "go"},
			Help:        "move <room-id> - walk into an adjacent room",
			Action:      ActionMove,
			WantsRoomID: true,
		},
		{
			Name:        "shoot",
			Aliases:     []string{"fire"},
			Help:        "shoot <room-id> - fire an arrow into an adjacent room",
			Action:      ActionShoot,
			WantsRoomID: true,
		},
		{
			Name:    "pickup",
			Aliases: []string{"get", "take"},
			Help:    "pickup - gather the gold or arrows lying in this room",
			Action:  ActionPickup,
		},
		{
			Name:    "climb",
			Aliases: []string{"up"},
			Help:    "climb - climb the ladder and escape the cave",
			Action:  ActionClimb,
		},
		{
			Name:    "quit",
			Aliases: []string{"q"},
			Help:    "quit - drop everything and leave the game",
			Action:  ActionQuit,
		},
	}
}
