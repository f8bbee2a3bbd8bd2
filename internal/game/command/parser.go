package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parse errors. Callers map these to player-visible notices; none of them
// changes game state.
var (
	// ErrEmpty is returned for blank input lines.
	ErrEmpty = errors.New("empty command")
	// ErrUnknown is returned when the first token matches no command or alias.
	ErrUnknown = errors.New("unknown command")
	// ErrMissingArgument is returned when a room-id argument is required but absent.
	ErrMissingArgument = errors.New("missing room id")
	// ErrBadArgument is returned when a room-id argument is not a non-negative integer.
	ErrBadArgument = errors.New("malformed room id")
)

// Request is a fully parsed player command.
type Request struct {
	// Action is the interpreter action to perform.
	Action Action
	// RoomID is the numeric argument for move/shoot; zero otherwise.
	RoomID int
}

// Parse tokenizes a raw input line against the registry. Matching is
// case-insensitive on the first token; extra trailing tokens are ignored.
//
// Postcondition: Returns a Request, or one of the package's parse errors.
func (r *Registry) Parse(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Request{}, ErrEmpty
	}

	cmd, ok := r.Resolve(strings.ToLower(fields[0]))
	if !ok {
		return Request{}, fmt.Errorf("%w: %q", ErrUnknown, fields[0])
	}

	req := Request{Action: cmd.Action}
	if cmd.WantsRoomID {
		if len(fields) < 2 {
			return Request{}, fmt.Errorf("%w: %s", ErrMissingArgument, cmd.Name)
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil || id < 0 {
			return Request{}, fmt.Errorf("%w: %q", ErrBadArgument, fields[1])
		}
		req.RoomID = id
	}
	return req, nil
}
