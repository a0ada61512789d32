package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/zeyinlabs/zeyin/internal/focus"
	"github.com/zeyinlabs/zeyin/internal/profile"
	"github.com/zeyinlabs/zeyin/internal/store"
)

// dispatchScheduler wraps the interval scheduler so ticks land on the UI
// goroutine. The engine is single-threaded by contract; Dispatch is the
// marshal point.
type dispatchScheduler struct {
	ctx   app.Context
	inner *focus.IntervalScheduler
}

func newDispatchScheduler(ctx app.Context) *dispatchScheduler {
	return &dispatchScheduler{ctx: ctx, inner: focus.NewIntervalScheduler(time.Second)}
}

func (s *dispatchScheduler) Start(tick func()) {
	s.inner.Start(func() {
		s.ctx.Dispatch(func(app.Context) { tick() })
	})
}

func (s *dispatchScheduler) Stop() { s.inner.Stop() }

func (s *dispatchScheduler) Running() bool { return s.inner.Running() }

// FocusView is the countdown page: presets, the timer, mid-session prompts
// and the end-of-session reflection.
type FocusView struct {
	app.Compo

	profile *profile.Profile
	store   store.Store
	sched   *dispatchScheduler
	eng     *focus.Engine

	rating  int
	note    string
	saved   bool
	saveErr string
}

func newFocusView(p *profile.Profile) *FocusView {
	return &FocusView{profile: p}
}

func (f *FocusView) OnMount(ctx app.Context) {
	f.store = newBrowserStore(ctx)
	f.sched = newDispatchScheduler(ctx)

	override := 0
	if m := ctx.Page().URL().Query().Get("m"); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			override = v
		}
	}
	f.eng = focus.New(f.store, f.sched, override)
}

func (f *FocusView) OnDismount() {
	if f.sched != nil {
		f.sched.Stop()
	}
}

func (f *FocusView) onPreset(ctx app.Context, e app.Event, minutes int) {
	if err := f.eng.SetPreset(minutes); err != nil {
		app.Log("preset change rejected:", err)
		return
	}
	f.clearReflection()
}

func (f *FocusView) clearReflection() {
	f.rating = 0
	f.note = ""
	f.saved = false
	f.saveErr = ""
}

func (f *FocusView) onStart(ctx app.Context, e app.Event) {
	f.eng.Start()
}

func (f *FocusView) onPause(ctx app.Context, e app.Event) {
	f.eng.Pause()
}

func (f *FocusView) onReset(ctx app.Context, e app.Event) {
	f.eng.Reset()
	f.clearReflection()
}

func (f *FocusView) onAckMicro(ctx app.Context, e app.Event) {
	f.eng.AcknowledgeMicro()
}

func (f *FocusView) onTriggerMicro(ctx app.Context, e app.Event) {
	f.eng.TriggerMicro()
}

func (f *FocusView) onClearQuest(ctx app.Context, e app.Event) {
	f.eng.ClearActiveQuest()
}

func (f *FocusView) onRate(ctx app.Context, e app.Event, rating int) {
	f.rating = rating
}

func (f *FocusView) onNoteInput(ctx app.Context, e app.Event) {
	f.note = ctx.JSSrc().Get("value").String()
}

func (f *FocusView) onSaveReflection(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if err := f.eng.SaveReflection(f.rating, f.note); err != nil {
		f.saveErr = "Pick a rating from 1 to 5 first."
		return
	}
	f.saved = true
	f.saveErr = ""
}

func (f *FocusView) Render() app.UI {
	if f.eng == nil {
		return app.Div().Class("loading-overlay").Body(
			app.Div().Class("loading-spinner"),
		)
	}

	return app.Div().Class("focus").Body(
		app.Div().Class("focus-head").Body(
			app.H1().Text("Focus session"),
			app.Div().Class("xp-badge").Text(fmt.Sprintf("%d XP", f.eng.XP())),
		),

		app.If(f.eng.Active() != nil, func() app.UI {
			return f.renderActiveQuest()
		}),

		f.renderTimer(),
		f.renderPresets(),
		f.renderControls(),

		app.If(f.eng.State() == focus.StateCompleted, func() app.UI {
			return f.renderReflection()
		}),

		f.renderHistory(),

		app.If(f.eng.MicroOpen(), func() app.UI {
			return f.renderMicroOverlay()
		}),
	)
}

func (f *FocusView) renderActiveQuest() app.UI {
	q := f.eng.Active()
	return app.Div().Class("card quest-banner").Body(
		app.Div().Class("quest-banner-head").Body(
			app.H3().Text(q.Title),
			app.Span().Class("quest-xp").Text(fmt.Sprintf("+%d XP", q.XP)),
		),
		app.Ul().Class("quest-steps").Body(
			app.Range(q.Steps).Slice(func(i int) app.UI {
				return app.Li().Text(q.Steps[i])
			}),
		),
		app.Button().Class("btn btn-ghost").Text("Clear quest").OnClick(f.onClearQuest),
	)
}

func (f *FocusView) renderTimer() app.UI {
	return app.Div().Class("timer").Body(
		app.Div().Class("timer-clock").Text(focus.FormatClock(f.eng.Left())),
		app.Div().Class("timer-track").Body(
			app.Div().
				Class("timer-fill").
				Style("width", fmt.Sprintf("%.1f%%", f.eng.Progress())),
		),
		app.Div().Class("timer-state").Text(f.eng.State().String()),
	)
}

func (f *FocusView) renderPresets() app.UI {
	return app.Div().Class("presets").Body(
		app.Range(focus.Presets).Slice(func(i int) app.UI {
			m := focus.Presets[i]
			cls := "btn preset-btn"
			if f.eng.Total() == m*60 {
				cls += " active"
			}
			return app.Button().
				Class(cls).
				Disabled(!f.eng.CanConfigure()).
				Text(fmt.Sprintf("%d min", m)).
				OnClick(func(ctx app.Context, e app.Event) {
					f.onPreset(ctx, e, m)
				})
		}),
	)
}

func (f *FocusView) renderControls() app.UI {
	switch f.eng.State() {
	case focus.StateRunning:
		return app.Div().Class("controls").Body(
			app.Button().Class("btn").Text("Pause").OnClick(f.onPause),
			app.Button().Class("btn btn-ghost").Text("Micro-quest").OnClick(f.onTriggerMicro),
			app.Button().Class("btn btn-ghost").Text("Reset").OnClick(f.onReset),
		)
	case focus.StatePaused:
		return app.Div().Class("controls").Body(
			app.Button().Class("btn btn-primary").Text("Resume").OnClick(f.onStart),
			app.Button().Class("btn btn-ghost").Text("Reset").OnClick(f.onReset),
		)
	case focus.StateCompleted:
		return app.Div().Class("controls").Body(
			app.Button().Class("btn btn-ghost").Text("New session").OnClick(f.onReset),
		)
	default:
		return app.Div().Class("controls").Body(
			app.Button().Class("btn btn-primary").Text("Start").OnClick(f.onStart),
		)
	}
}

func (f *FocusView) renderReflection() app.UI {
	if f.saved {
		return app.Div().Class("card reflection").Body(
			app.H3().Text("Session saved"),
			app.P().Text("Nice work. Come back for the next one."),
		)
	}

	return app.Form().Class("card reflection").OnSubmit(f.onSaveReflection).Body(
		app.H3().Text("How did it go?"),
		app.If(f.saveErr != "", func() app.UI {
			return app.Div().Class("form-error").Text(f.saveErr)
		}),
		app.Div().Class("rating").Body(
			app.Range(make([]struct{}, 5)).Slice(func(i int) app.UI {
				star := i + 1
				cls := "star"
				if star <= f.rating {
					cls += " filled"
				}
				return app.Button().
					Class(cls).
					Type("button").
					Text("★").
					OnClick(func(ctx app.Context, e app.Event) {
						f.onRate(ctx, e, star)
					})
			}),
		),
		app.Textarea().
			Class("input").
			Placeholder("What helped? What got in the way?").
			Text(f.note).
			OnInput(f.onNoteInput),
		app.Button().Class("btn btn-primary").Type("submit").Text("Save"),
	)
}

func (f *FocusView) renderHistory() app.UI {
	recs := focus.Records(f.store)
	if len(recs) == 0 {
		return app.Div()
	}
	if len(recs) > 5 {
		recs = recs[:5]
	}

	return app.Div().Class("card history").Body(
		app.H3().Text("Recent sessions"),
		app.Ul().Class("history-list").Body(
			app.Range(recs).Slice(func(i int) app.UI {
				r := recs[i]
				label := fmt.Sprintf("%d min, rated %d/5", r.PresetMinutes, r.Rating)
				if r.Quest != nil {
					label += fmt.Sprintf(" (%s, +%d XP)", r.Quest.Title, r.Quest.XP)
				}
				return app.Li().Body(
					app.Span().Class("history-label").Text(label),
					app.Span().Class("history-time").Text(focus.FormatClock(r.SpentSeconds)),
				)
			}),
		),
	)
}

func (f *FocusView) renderMicroOverlay() app.UI {
	m := f.eng.Micro()
	if m == nil {
		return app.Div()
	}
	return app.Div().Class("overlay").Body(
		app.Div().Class("card micro-card").Body(
			app.H3().Text(m.Title),
			app.P().Text(m.Desc),
			app.Button().Class("btn btn-primary").Text("Done").OnClick(f.onAckMicro),
		),
	)
}
