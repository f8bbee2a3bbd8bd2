package session

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/caveserver/internal/game/cave"
	"github.com/cory-johannsen/caveserver/internal/game/command"
	"github.com/cory-johannsen/caveserver/internal/game/narrative"
)

// Rules holds the tunable game rules the interpreter enforces.
type Rules struct {
	// StartingArrows is the arrow count granted to each new player.
	StartingArrows int
	// WumpusReward is the gold dropped where the wumpus dies.
	WumpusReward int
	// ArrowLostOnInvalidTarget controls whether a shot at a non-adjacent room
	// still consumes an arrow. Both policies exist in the wild; the server
	// picks one via configuration instead of hard-coding it.
	ArrowLostOnInvalidTarget bool
}

// Interpreter executes parsed player commands against the shared cave,
// advancing one session's state machine per call. It is stateless across
// sessions and safe for concurrent use: all shared mutation happens through
// the per-room synchronized operations.
type Interpreter struct {
	caveMap  *cave.Map
	registry *command.Registry
	rules    Rules
	msgs     narrative.Set
	logger   *zap.Logger
}

// NewInterpreter creates an Interpreter over the given cave.
//
// Precondition: caveMap, registry, and logger must be non-nil; msgs must pass Validate.
func NewInterpreter(caveMap *cave.Map, registry *command.Registry, rules Rules, msgs narrative.Set, logger *zap.Logger) *Interpreter {
	return &Interpreter{
		caveMap:  caveMap,
		registry: registry,
		rules:    rules,
		msgs:     msgs,
		logger:   logger,
	}
}

// Execute parses one input line and applies it to the session. All player
// feedback is posted to the session's mailbox; the caller decides when to
// flush. Transitions are strictly sequential per session: the caller must
// not invoke Execute concurrently for the same session.
//
// Precondition: sess must be alive.
// Postcondition: The session is in a valid state; every rejected command has
// posted an explanatory notice.
func (i *Interpreter) Execute(sess *PlayerSession, line string) {
	req, err := i.registry.Parse(line)
	if err != nil {
		i.logger.Debug("rejected command",
			zap.String("session", sess.UID()),
			zap.String("line", line),
			zap.Error(err),
		)
		sess.mailbox.Post(i.msgs.UnknownCommand)
		return
	}

	switch req.Action {
	case command.ActionMove:
		i.move(sess, req.RoomID)
	case command.ActionShoot:
		i.shoot(sess, req.RoomID)
	case command.ActionPickup:
		i.pickup(sess)
	case command.ActionClimb:
		i.climb(sess)
	case command.ActionQuit:
		i.quit(sess)
	}
}

// EnterStartRoom places a new session into a uniformly random room and posts
// the welcome text plus the room's description.
func (i *Interpreter) EnterStartRoom(sess *PlayerSession) {
	room := i.caveMap.RandomRoom()
	sess.SetRoom(room)
	room.Enter(sess)
	sess.mailbox.Post(i.msgs.Welcome)
	sess.mailbox.Post(slices.Collect(room.Sense())...)
	i.logger.Debug("session placed",
		zap.String("session", sess.UID()),
		zap.Int("room", room.ID()),
	)
}

func (i *Interpreter) move(sess *PlayerSession, roomID int) {
	from := sess.Room()
	target, ok := from.Neighbor(roomID)
	if !ok {
		sess.mailbox.Post(i.msgs.InvalidRoom)
		return
	}

	from.Leave(sess)
	sess.SetRoom(target)

	switch target.Hazard() {
	case cave.HazardWumpus:
		sess.mailbox.Post(i.msgs.WumpusDeath)
		sess.Kill()
	case cave.HazardPit:
		sess.mailbox.Post(i.msgs.PitDeath...)
		sess.Kill()
	case cave.HazardBats:
		sess.mailbox.Post(i.msgs.BatsCarry)
		// Bats drop the player anywhere in the cave. The landing room's
		// hazard does not trigger; the player just wakes up there.
		landing := i.caveMap.RandomRoom()
		sess.SetRoom(landing)
		landing.Enter(sess)
		sess.mailbox.Post(slices.Collect(landing.Sense())...)
	case cave.HazardLadder:
		target.Enter(sess)
		sess.mailbox.Post(i.msgs.LadderSpotted)
		sess.mailbox.Post(slices.Collect(target.Sense())...)
	default:
		target.Enter(sess)
		sess.mailbox.Post(slices.Collect(target.Sense())...)
	}

	i.logger.Debug("moved",
		zap.String("session", sess.UID()),
		zap.Int("from", from.ID()),
		zap.Int("to", sess.Room().ID()),
		zap.String("state", sess.State().String()),
	)
}

func (i *Interpreter) shoot(sess *PlayerSession, roomID int) {
	if sess.arrows == 0 {
		sess.mailbox.Post(i.msgs.NoArrows)
		return
	}

	room := sess.Room()
	first, ok := room.Neighbor(roomID)
	if !ok {
		sess.mailbox.Post(i.msgs.InvalidShot)
		if i.rules.ArrowLostOnInvalidTarget {
			sess.arrows--
			sess.mailbox.Post(i.msgs.ArrowBroke)
		}
		return
	}

	sess.arrows--
	sess.mailbox.Post(fmt.Sprintf(i.msgs.ArrowFired, sess.arrows))

	// The arrow ricochets three rooms deep: the targeted room, then two
	// random onward hops.
	hops := []*cave.Room{first}
	for len(hops) < 3 {
		next, err := i.caveMap.RandomNeighbor(hops[len(hops)-1], nil)
		if err != nil {
			i.logger.Error("arrow hop sampling failed",
				zap.String("session", sess.UID()),
				zap.Int("room", hops[len(hops)-1].ID()),
				zap.Error(err),
			)
			break
		}
		hops = append(hops, next)
	}

	for dist, hop := range hops {
		if hop.KillWumpusHere(i.rules.WumpusReward) {
			sess.mailbox.Post(i.msgs.WumpusKilled, i.msgs.KillByDistance[dist])
			i.logger.Info("wumpus killed",
				zap.String("session", sess.UID()),
				zap.Int("room", hop.ID()),
				zap.Int("distance", dist+1),
			)
		}
	}
}

func (i *Interpreter) pickup(sess *PlayerSession) {
	room := sess.Room()

	// Gold before arrows: a room holding both yields only gold this visit.
	if gold := room.TakeGold(); gold > 0 {
		sess.gold += gold
		sess.mailbox.Post(
			fmt.Sprintf(i.msgs.GoldPicked, gold),
			fmt.Sprintf(i.msgs.GoldTotal, sess.gold),
		)
		return
	}
	if arrows := room.TakeArrows(); arrows > 0 {
		sess.arrows += arrows
		sess.mailbox.Post(
			fmt.Sprintf(i.msgs.ArrowsPicked, arrows),
			fmt.Sprintf(i.msgs.ArrowsTotal, sess.arrows),
		)
		return
	}
	sess.mailbox.Post(i.msgs.NothingHere)
}

func (i *Interpreter) climb(sess *PlayerSession) {
	room := sess.Room()
	if room.Hazard() == cave.HazardLadder {
		sess.mailbox.Post(fmt.Sprintf(i.msgs.Escaped, sess.gold, sess.arrows))
		sess.transition(StateEscaped)
		i.logger.Info("player escaped",
			zap.String("session", sess.UID()),
			zap.Int("gold", sess.gold),
			zap.Int("arrows", sess.arrows),
		)
		return
	}

	sess.mailbox.Post(i.msgs.NoLadder)
	i.angerWumpus(sess, room)
}

// angerWumpus relocates the wumpus to a room adjacent to the offending
// player. The destination is chosen first, then the current wumpus room is
// atomically cleared; a wumpus that moved mid-scan simply stays wherever it
// went. At most one relocation happens per failed climb.
func (i *Interpreter) angerWumpus(sess *PlayerSession, room *cave.Room) {
	// Never stomp the ladder: the cave must keep exactly one escape room.
	dest, err := i.caveMap.RandomNeighbor(room, func(r *cave.Room) bool {
		return r.Hazard() != cave.HazardLadder
	})
	if err != nil {
		i.logger.Error("wumpus relocation sampling failed",
			zap.String("session", sess.UID()),
			zap.Int("room", room.ID()),
			zap.Error(err),
		)
		return
	}

	old, ok := i.caveMap.FindWumpus()
	if !ok || !old.ClearWumpus() {
		// Beaten to it by a concurrent kill or relocation.
		return
	}
	dest.PlaceWumpus()
	i.logger.Debug("wumpus relocated",
		zap.String("session", sess.UID()),
		zap.Int("from", old.ID()),
		zap.Int("to", dest.ID()),
	)
}

func (i *Interpreter) quit(sess *PlayerSession) {
	// Inventory is not discarded: it re-enters play for whoever finds it.
	room := sess.Room()
	room.DepositGold(sess.gold)
	room.DepositArrows(sess.arrows)
	sess.gold = 0
	sess.arrows = 0
	sess.mailbox.Post(i.msgs.Farewell)
	sess.transition(StateQuit)
}
