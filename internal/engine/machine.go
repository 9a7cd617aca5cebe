package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/hexabots/internal/world"
)

// State is a phase of the turn cycle.
type State uint8

const (
	StateAwaitLoad State = iota // no world yet
	StateCharging               // accumulating charge until someone is ready
	StateHumanTurn              // waiting for the input collaborator
	StateAutoTurn               // automated policy choosing an action
	StateAnimating              // pending action playing out
	StateGameOver               // one team or none left standing
)

var stateNames = [...]string{
	StateAwaitLoad: "AwaitLoad",
	StateCharging:  "Charging",
	StateHumanTurn: "HumanTurn",
	StateAutoTurn:  "AutoTurn",
	StateAnimating: "Animating",
	StateGameOver:  "GameOver",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// transitions lists every legal successor of each state.
var transitions = [...][]State{
	StateAwaitLoad: {StateCharging},
	StateCharging:  {StateHumanTurn, StateAutoTurn, StateGameOver},
	StateHumanTurn: {StateAnimating, StateAwaitLoad},
	StateAutoTurn:  {StateAnimating},
	StateAnimating: {StateCharging},
	StateGameOver:  {StateAwaitLoad},
}

// CanTransition reports whether the machine may go directly from one state to another.
func CanTransition(from, to State) bool {
	if int(from) >= len(transitions) {
		return false
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ErrBusy is returned by commands that are not accepted in the current state.
var ErrBusy = errors.New("command not accepted in current state")

// Options configures a Machine.
type Options struct {
	ChargeRate float64
	HumanTeams []int    // team indices driven by the input collaborator
	Animator   Animator // nil means InstantAnimator
	Logger     *slog.Logger
}

// Machine sequences a match: charging, actor selection, action execution
// and game-over detection. It is not safe for concurrent use; whoever owns
// the world for the match drives it from a single goroutine.
type Machine struct {
	state    State
	world    *world.World
	sched    *Scheduler
	human    map[int]bool
	animator Animator
	log      *slog.Logger

	actor  *world.Character
	cand   Candidates
	winner *world.Team
	draw   bool

	turns   uint64
	animSeq uint64
	events  []Event
}

// NewMachine creates a machine waiting for a world.
func NewMachine(opts Options) (*Machine, error) {
	rate := opts.ChargeRate
	if rate == 0 {
		rate = DefaultChargeRate
	}
	sched, err := NewScheduler(rate)
	if err != nil {
		return nil, err
	}
	m := &Machine{
		state:    StateAwaitLoad,
		sched:    sched,
		human:    make(map[int]bool, len(opts.HumanTeams)),
		animator: opts.Animator,
		log:      opts.Logger,
	}
	for _, t := range opts.HumanTeams {
		m.human[t] = true
	}
	if m.animator == nil {
		m.animator = InstantAnimator{}
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	return m, nil
}

// State returns the current phase.
func (m *Machine) State() State { return m.state }

// World returns the world being played, or nil before a load.
func (m *Machine) World() *world.World { return m.world }

// Actor returns the character whose turn it is, if any.
func (m *Machine) Actor() *world.Character { return m.actor }

// Candidates returns the current actor's legal targets.
func (m *Machine) Candidates() Candidates { return m.cand }

// Clock returns the scheduler tick count for this match.
func (m *Machine) Clock() uint64 { return m.sched.Clock }

// Turns returns how many turns have been taken this match.
func (m *Machine) Turns() uint64 { return m.turns }

// Winner returns the winning team once the game is over. It is nil while
// the game runs and after a draw.
func (m *Machine) Winner() *world.Team { return m.winner }

// Draw reports whether the game ended with no team standing.
func (m *Machine) Draw() bool { return m.draw }

// Events returns the events recorded so far this match.
func (m *Machine) Events() []Event { return m.events }

// TakeEvents returns the recorded events and forgets them.
func (m *Machine) TakeEvents() []Event {
	ev := m.events
	m.events = nil
	return ev
}

// Load starts a match on w. It is accepted while awaiting a world or after
// the game is over; an invalid world is rejected and the previous one kept.
func (m *Machine) Load(w *world.World) error {
	if m.state != StateAwaitLoad && m.state != StateGameOver {
		return fmt.Errorf("load in %s: %w", m.state, ErrBusy)
	}
	if err := w.Validate(); err != nil {
		return fmt.Errorf("load %q: %w", w.Name, err)
	}
	if m.state == StateGameOver {
		m.transition(StateAwaitLoad)
	}
	w.Refresh()
	m.world = w
	m.sched.Reset()
	m.turns = 0
	m.winner = nil
	m.draw = false
	m.record(CategoryLoad, fmt.Sprintf("loaded %q (%dx%d)", w.Name, w.Grid().Width, w.Grid().Height))
	m.transition(StateCharging)
	return nil
}

// Reset abandons the match and waits for a new world. Not accepted while an
// action is being carried out.
func (m *Machine) Reset() error {
	switch m.state {
	case StateAwaitLoad:
		return nil
	case StateHumanTurn, StateGameOver:
		m.transition(StateAwaitLoad)
		return nil
	default:
		return fmt.Errorf("reset in %s: %w", m.state, ErrBusy)
	}
}

// Step performs one transition if the current state can make progress on
// its own. It returns false when the machine is waiting on something
// external: a world, human input, an animation, or a reset.
func (m *Machine) Step() bool {
	next, ok := m.step()
	if !ok {
		return false
	}
	m.transition(next)
	return true
}

func (m *Machine) step() (State, bool) {
	switch m.state {
	case StateCharging:
		return m.stepCharging()
	case StateAutoTurn:
		return m.stepAutoTurn()
	case StateAwaitLoad, StateHumanTurn, StateAnimating, StateGameOver:
		return m.state, false
	default:
		panic(fmt.Sprintf("engine: unknown state %d", m.state))
	}
}

// stepCharging buries the dead, checks for the end of the game, then runs
// the scheduler until someone is ready to act.
func (m *Machine) stepCharging() (State, bool) {
	for _, c := range m.world.Sweep() {
		m.record(CategoryDeath, fmt.Sprintf("%s died", c.Label()))
	}

	if alive := m.world.TeamsAlive(); len(alive) <= 1 {
		m.finish(alive)
		return StateGameOver, true
	}

	actor, team, ok := m.sched.Next(m.world.Teams)
	if !ok {
		m.finish(m.world.TeamsAlive())
		return StateGameOver, true
	}

	m.turns++
	m.actor = actor
	m.cand = FindCandidates(m.world, actor)
	m.record(CategoryTurn, fmt.Sprintf("%s (%s) to act", actor.Label(), team.Name))

	if m.human[team.Index] {
		return StateHumanTurn, true
	}
	return StateAutoTurn, true
}

func (m *Machine) stepAutoTurn() (State, bool) {
	m.actor.SetAction(AutoDecide(m.world, m.actor, m.cand))
	return StateAnimating, true
}

// finish records the outcome. A single surviving team wins; when nobody is
// left the game is a draw.
func (m *Machine) finish(alive []*world.Team) {
	if len(alive) == 1 {
		m.winner = alive[0]
		m.record(CategoryGameOver, fmt.Sprintf("%s wins", m.winner.Name))
		m.log.Info("game over", "winner", m.winner.Name, "turns", m.turns, "ticks", m.sched.Clock)
		return
	}
	m.draw = true
	m.record(CategoryGameOver, "draw")
	m.log.Info("game over", "result", "draw", "turns", m.turns, "ticks", m.sched.Clock)
}

// commit attaches a to the current actor and starts executing it.
func (m *Machine) commit(a *Action) {
	m.actor.SetAction(a)
	m.transition(StateAnimating)
}

// transition moves to next and runs its entry work.
func (m *Machine) transition(next State) {
	if !CanTransition(m.state, next) {
		panic(fmt.Sprintf("engine: illegal transition %s -> %s", m.state, next))
	}
	m.log.Debug("transition", "from", m.state, "to", next, "tick", m.sched.Clock)
	m.state = next
	switch next {
	case StateAnimating:
		m.startAction()
	case StateAwaitLoad, StateCharging:
		m.actor = nil
		m.cand = Candidates{}
	}
}

// startAction executes the actor's pending action. A move onto a tile that
// has become occupied is dropped without further cost.
func (m *Machine) startAction() {
	a, ok := m.actor.Pending.(*Action)
	if !ok {
		panic("engine: animating without a pending action")
	}
	if a.blocked(m.world) {
		m.actor.AbandonAction()
		m.record(CategoryAbort, fmt.Sprintf("%s: destination occupied", a))
		m.transition(StateCharging)
		return
	}
	m.animSeq++
	seq := m.animSeq
	m.animator.Animate(a.effect(m.world), func() { m.complete(seq) })
}

// complete is the animator callback. Callbacks for anything but the action
// currently playing are ignored.
func (m *Machine) complete(seq uint64) {
	if m.state != StateAnimating || seq != m.animSeq {
		m.log.Debug("stale completion ignored", "seq", seq, "state", m.state)
		return
	}
	a := m.actor.Pending.(*Action)
	a.apply(m.world)
	m.actor.FinishAction()
	m.record(CategoryAction, a.String())
	m.log.Debug("action complete", "action", a.Kind, "actor", a.Actor.Label(), "ct", a.Actor.CT)
	m.transition(StateCharging)
}

func (m *Machine) record(category, desc string) {
	m.events = append(m.events, Event{
		Tick:        m.sched.Clock,
		Turn:        m.turns,
		Category:    category,
		Description: desc,
	})
}
