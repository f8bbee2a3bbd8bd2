package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/caveserver/internal/game/cave"
	"github.com/cory-johannsen/caveserver/internal/game/command"
	"github.com/cory-johannsen/caveserver/internal/game/narrative"
	"github.com/cory-johannsen/caveserver/internal/game/session"
)

// stubSource replays a fixed value sequence, reduced modulo the bound.
type stubSource struct {
	mu   sync.Mutex
	vals []int
	i    int
}

func (s *stubSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

// fakeClient is a scripted transport standing in for a Telnet connection.
type fakeClient struct {
	in chan string

	mu      sync.Mutex
	batches [][]string
	deaths  int
	closed  bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{in: make(chan string, 16)}
}

func (f *fakeClient) Lines() <-chan string { return f.in }

func (f *fakeClient) SendLines(lines []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := make([]string, len(lines))
	copy(batch, lines)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeClient) SendDeath() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deaths++
	return nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) snapshot() ([][]string, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	batches := make([][]string, len(f.batches))
	copy(batches, f.batches)
	return batches, f.deaths, f.closed
}

// newTestDispatcher builds the reference cave (wumpus at generation index 5,
// ladder at 10, ids equal to indexes) and a dispatcher whose start-room draw
// is scripted by src.
func newTestDispatcher(t *testing.T, src *stubSource) (*Dispatcher, *cave.Map) {
	t.Helper()
	rooms := make([]*cave.Room, 20)
	for i := range rooms {
		rooms[i] = cave.NewRoom(i)
	}
	for i := range rooms {
		rooms[i].Connect(rooms[(i+1)%20])
		rooms[i].Connect(rooms[(i+2)%20])
	}
	rooms[5].SetHazard(cave.HazardWumpus)
	rooms[10].SetHazard(cave.HazardLadder)
	m, err := cave.NewMap(rooms, src, 10000)
	require.NoError(t, err)

	rules := session.Rules{StartingArrows: 3, WumpusReward: 500, ArrowLostOnInvalidTarget: true}
	logger := zaptest.NewLogger(t)
	interp := session.NewInterpreter(m, command.DefaultRegistry(), rules, narrative.Defaults(), logger)
	return New(interp, rules, logger), m
}

func runSession(t *testing.T, d *Dispatcher, sess *session.PlayerSession, client *fakeClient) chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- d.Run(context.Background(), sess, client)
	}()
	return done
}

func waitDone(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("session loop did not finish in time")
		return nil
	}
}

func TestRunSendsWelcomeFirst(t *testing.T) {
	d, _ := newTestDispatcher(t, &stubSource{vals: []int{0}})
	client := newFakeClient()
	sess := session.New(3)

	done := runSession(t, d, sess, client)

	require.Eventually(t, func() bool {
		batches, _, _ := client.snapshot()
		return len(batches) > 0
	}, 2*time.Second, 10*time.Millisecond)

	batches, deaths, _ := client.snapshot()
	require.NotEmpty(t, batches[0])
	assert.Equal(t, narrative.Defaults().Welcome, batches[0][0])
	assert.Equal(t, "You are in room: 0", batches[0][1])
	assert.Zero(t, deaths)

	close(client.in)
	err := waitDone(t, done)
	assert.Error(t, err)
}

func TestRunDeathScenario(t *testing.T) {
	// Start in room 4, adjacent to the wumpus lair at room 5.
	d, m := newTestDispatcher(t, &stubSource{vals: []int{4}})
	client := newFakeClient()
	sess := session.New(3)

	done := runSession(t, d, sess, client)
	client.in <- "move 5"

	require.NoError(t, waitDone(t, done))

	batches, deaths, closed := client.snapshot()
	assert.Equal(t, 1, deaths, "DIED must be sent exactly once")
	assert.True(t, closed)
	assert.Equal(t, session.StateDead, sess.State())

	// Exactly one batch contains exactly one death notice, and it is the
	// final batch: nothing follows the death notification.
	require.Len(t, batches, 2)
	assert.Equal(t, []string{narrative.Defaults().WumpusDeath}, batches[1])

	// Cleanup released every occupant set.
	for _, r := range m.Rooms() {
		assert.Zero(t, r.OccupantCount())
	}
}

func TestRunQuitScenario(t *testing.T) {
	d, m := newTestDispatcher(t, &stubSource{vals: []int{0}})
	client := newFakeClient()
	sess := session.New(3)

	done := runSession(t, d, sess, client)
	client.in <- "quit"

	require.NoError(t, waitDone(t, done))

	_, deaths, closed := client.snapshot()
	assert.Zero(t, deaths)
	assert.True(t, closed)
	assert.Equal(t, session.StateQuit, sess.State())
	assert.Equal(t, 3, m.Rooms()[0].Arrows())
	assert.Zero(t, m.Rooms()[0].OccupantCount())
}

func TestRunEscapeScenario(t *testing.T) {
	// Start in the ladder room at generation index 10.
	d, m := newTestDispatcher(t, &stubSource{vals: []int{10}})
	client := newFakeClient()
	sess := session.New(3)

	done := runSession(t, d, sess, client)
	client.in <- "climb"

	require.NoError(t, waitDone(t, done))

	_, deaths, _ := client.snapshot()
	assert.Zero(t, deaths, "escape is not a death")
	assert.Equal(t, session.StateEscaped, sess.State())
	assert.Zero(t, m.Rooms()[10].OccupantCount())
}

func TestRunDisconnectCleansUp(t *testing.T) {
	d, m := newTestDispatcher(t, &stubSource{vals: []int{0}})
	client := newFakeClient()
	sess := session.New(3)

	done := runSession(t, d, sess, client)
	close(client.in)

	err := waitDone(t, done)
	assert.Error(t, err)
	assert.Zero(t, m.Rooms()[0].OccupantCount())

	_, _, closed := client.snapshot()
	assert.True(t, closed)
}

func TestRunContextCancellation(t *testing.T) {
	d, m := newTestDispatcher(t, &stubSource{vals: []int{0}})
	client := newFakeClient()
	sess := session.New(3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, sess, client)
	}()

	cancel()
	err := waitDone(t, done)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, m.Rooms()[0].OccupantCount())
}
