// Package focus owns the focus-session state machine: the countdown, the
// micro-quest overlay scheduling, the post-session reflection, and XP
// settlement. The engine is deliberately free of wall-clock scheduling; ticks
// arrive through a Scheduler so the whole machine is unit-testable.
package focus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zeyinlabs/zeyin/internal/quest"
	"github.com/zeyinlabs/zeyin/internal/store"
)

type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// Scheduler delivers the one-second tick while the session runs. The engine is
// the only caller of Start/Stop; the tick callback must be invoked on the same
// goroutine (or event loop) that drives the rest of the engine.
type Scheduler interface {
	Start(tick func())
	Stop()
	Running() bool
}

var (
	// ErrRunning rejects configuration changes while the countdown runs.
	ErrRunning = errors.New("focus: session is running")
	// ErrNotCompleted rejects a reflection before the session finished.
	ErrNotCompleted = errors.New("focus: session not completed")
)

// Presets are the selectable session durations, in minutes.
var Presets = []int{5, 10, 15, 25}

const (
	DefaultPresetMinutes = 10
	// No micro-quest opens with this little time left.
	minMicroWindowSec = 15
)

// Engine is the focus-session state machine. It is not safe for concurrent
// use; the UI event loop is its single writer.
type Engine struct {
	store store.Store
	sched Scheduler
	pick  func() quest.Micro
	now   func() time.Time

	state    State
	totalSec int
	leftSec  int

	startedAt time.Time

	microOpen   bool
	micro       *quest.Micro
	lastMicroAt int

	active *quest.ActiveQuest
	xp     int
}

// New builds an engine over the given store. overrideMinutes, when positive,
// wins over the stored active quest's duration, which in turn wins over the
// default preset.
func New(st store.Store, sched Scheduler, overrideMinutes int) *Engine {
	e := &Engine{
		store: st,
		sched: sched,
		pick:  func() quest.Micro { return quest.PickMicro(nil) },
		now:   time.Now,
		state: StateIdle,
		xp:    LoadXP(st),
	}
	e.active = quest.LoadActive(st)

	minutes := DefaultPresetMinutes
	if e.active != nil && e.active.Minutes > 0 {
		minutes = e.active.Minutes
	}
	if overrideMinutes > 0 {
		minutes = overrideMinutes
	}
	e.totalSec = minutes * 60
	e.leftSec = e.totalSec
	return e
}

// SetPicker replaces the micro-quest draw. Tests pin it to a known sequence.
func (e *Engine) SetPicker(pick func() quest.Micro) { e.pick = pick }

// SetNow replaces the clock used for record timestamps and the start anchor.
func (e *Engine) SetNow(now func() time.Time) { e.now = now }

func (e *Engine) State() State               { return e.state }
func (e *Engine) Total() int                 { return e.totalSec }
func (e *Engine) Left() int                  { return e.leftSec }
func (e *Engine) XP() int                    { return e.xp }
func (e *Engine) Active() *quest.ActiveQuest { return e.active }
func (e *Engine) MicroOpen() bool            { return e.microOpen }
func (e *Engine) Micro() *quest.Micro        { return e.micro }

// Progress reports elapsed time as a 0-100 percentage.
func (e *Engine) Progress() float64 {
	if e.totalSec == 0 {
		return 0
	}
	p := float64(e.totalSec-e.leftSec) / float64(e.totalSec) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// CanConfigure reports whether preset changes are currently allowed. The UI
// disables the preset buttons off this guard rather than swallowing clicks.
func (e *Engine) CanConfigure() bool { return e.state != StateRunning }

// SetPreset switches the session duration to one of Presets and resets all
// transient state. Rejected while running.
func (e *Engine) SetPreset(minutes int) error {
	if e.state == StateRunning {
		return ErrRunning
	}
	valid := false
	for _, p := range Presets {
		if p == minutes {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("focus: invalid preset %d", minutes)
	}
	e.totalSec = minutes * 60
	e.resetTransient()
	return nil
}

func (e *Engine) resetTransient() {
	e.sched.Stop()
	e.state = StateIdle
	e.leftSec = e.totalSec
	e.microOpen = false
	e.micro = nil
	e.lastMicroAt = 0
	e.startedAt = time.Time{}
}

// Start begins or resumes the countdown. No-op while running or after
// completion. The wall-clock anchor is recorded on the first start only, not
// on resume.
func (e *Engine) Start() {
	if e.state == StateRunning || e.state == StateCompleted {
		return
	}
	e.state = StateRunning
	if e.startedAt.IsZero() {
		e.startedAt = e.now()
	}
	if !e.sched.Running() {
		e.sched.Start(e.Tick)
	}
}

// Pause halts the countdown without losing the remaining time.
func (e *Engine) Pause() {
	if e.state != StateRunning {
		return
	}
	e.sched.Stop()
	e.state = StatePaused
}

// Reset returns to Idle with the full duration and clears the overlay, the
// micro-quest anchor and the start anchor.
func (e *Engine) Reset() {
	e.resetTransient()
}

// Tick advances the countdown by one second. Fired by the scheduler while
// running; inert in any other state, so a stale tick after Pause or
// completion cannot double-transition.
func (e *Engine) Tick() {
	if e.state != StateRunning {
		return
	}
	e.leftSec--
	if e.leftSec <= 0 {
		e.leftSec = 0
		e.microOpen = false
		e.state = StateCompleted
		e.sched.Stop()
		return
	}

	// Level-triggered micro-quest check. The anchor moves in the same step
	// that opens the overlay, so consecutive eligible ticks cannot
	// double-trigger.
	elapsed := e.totalSec - e.leftSec
	if !e.microOpen && e.leftSec > minMicroWindowSec && elapsed-e.lastMicroAt >= e.MicroInterval() {
		e.lastMicroAt = elapsed
		m := e.pick()
		e.micro = &m
		e.microOpen = true
	}
}

// MicroInterval is how many seconds separate micro-quests, derived from the
// session length.
func (e *Engine) MicroInterval() int {
	switch {
	case e.totalSec <= 5*60:
		return 120
	case e.totalSec <= 10*60:
		return 180
	default:
		return 240
	}
}

// AcknowledgeMicro closes the overlay without touching the timer.
func (e *Engine) AcknowledgeMicro() {
	e.microOpen = false
}

// TriggerMicro opens the overlay immediately, outside the interval schedule.
// The overlay sub-state only exists while the countdown runs, so the trigger
// is inert in any other state. The schedule anchor stays where it was.
func (e *Engine) TriggerMicro() {
	if e.state != StateRunning || e.microOpen {
		return
	}
	m := e.pick()
	e.micro = &m
	e.microOpen = true
}

// SaveReflection appends a session record and settles XP. Valid only after the
// countdown completed. XP is awarded iff an active quest is bound and the
// timer reached exactly zero; on award the quest is consumed and the new total
// persisted. The record is appended either way.
func (e *Engine) SaveReflection(rating int, note string) error {
	if e.state != StateCompleted {
		return ErrNotCompleted
	}
	if rating < 1 || rating > 5 {
		return fmt.Errorf("focus: rating %d out of range", rating)
	}

	rec := SessionRecord{
		ID:            uuid.NewString(),
		CreatedAt:     e.now(),
		PresetMinutes: e.totalSec / 60,
		SpentSeconds:  e.totalSec - e.leftSec,
		Rating:        rating,
		Note:          strings.TrimSpace(note),
	}
	if e.active != nil {
		rec.Quest = &QuestSnapshot{
			Title:   e.active.Title,
			XP:      e.active.XP,
			Minutes: e.active.Minutes,
		}
	}
	if err := AppendRecord(e.store, rec); err != nil {
		return err
	}

	if e.active != nil && e.leftSec == 0 {
		e.xp += e.active.XP
		if err := e.store.Save(store.KeyXP, e.xp); err != nil {
			return err
		}
		quest.ClearActive(e.store)
		e.active = nil
	}
	return nil
}

// ClearActiveQuest drops the bound quest without awarding anything.
func (e *Engine) ClearActiveQuest() {
	quest.ClearActive(e.store)
	e.active = nil
}

// LoadXP reads the persisted XP total, treating a missing or malformed
// document as zero. XP never goes negative.
func LoadXP(s store.Store) int {
	var xp int
	ok, err := s.Load(store.KeyXP, &xp)
	if err != nil || !ok || xp < 0 {
		return 0
	}
	return xp
}

// FormatClock renders seconds as m:ss.
func FormatClock(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
