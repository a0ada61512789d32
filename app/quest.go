package main

import (
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/zeyinlabs/zeyin/internal/profile"
	"github.com/zeyinlabs/zeyin/internal/quest"
	"github.com/zeyinlabs/zeyin/internal/store"
)

// QuestView lists the quest catalog. Starting a quest binds it as the active
// quest and jumps into a focus session of the matching length.
type QuestView struct {
	app.Compo

	profile *profile.Profile
	store   store.Store
	active  *quest.ActiveQuest
}

func newQuestView(p *profile.Profile) *QuestView {
	return &QuestView{profile: p}
}

func (q *QuestView) OnMount(ctx app.Context) {
	q.store = newBrowserStore(ctx)
	q.active = quest.LoadActive(q.store)
}

func (q *QuestView) onStart(ctx app.Context, e app.Event, item quest.ActiveQuest) {
	if err := quest.SetActive(q.store, item); err != nil {
		app.Log("error binding quest:", err)
		return
	}
	ctx.Navigate(fmt.Sprintf("/focus?m=%d", item.Minutes))
}

func (q *QuestView) onClear(ctx app.Context, e app.Event) {
	quest.ClearActive(q.store)
	q.active = nil
}

func (q *QuestView) Render() app.UI {
	catalog := quest.Catalog()

	return app.Div().Class("quests").Body(
		app.H1().Text("Quests"),

		app.If(q.active != nil, func() app.UI {
			return app.Div().Class("card quest-banner").Body(
				app.P().Text("Active quest: "+q.active.Title),
				app.Button().Class("btn btn-ghost").Text("Clear").OnClick(q.onClear),
			)
		}),

		app.Div().Class("quest-cards").Body(
			app.Range(catalog).Slice(func(i int) app.UI {
				item := catalog[i]
				return app.Div().Class("card quest-card").Body(
					app.Div().Class("quest-card-head").Body(
						app.H3().Text(item.Title),
						app.Span().Class("quest-level").Text(item.Level),
					),
					app.P().Class("quest-meta").Text(fmt.Sprintf("%d min · +%d XP", item.Minutes, item.XP)),
					app.Ul().Class("quest-steps").Body(
						app.Range(item.Steps).Slice(func(j int) app.UI {
							return app.Li().Text(item.Steps[j])
						}),
					),
					app.Button().
						Class("btn btn-primary").
						Text("Start").
						OnClick(func(ctx app.Context, e app.Event) {
							q.onStart(ctx, e, item)
						}),
				)
			}),
		),
	)
}
