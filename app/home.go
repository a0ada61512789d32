package main

import "github.com/maxence-charriere/go-app/v10/pkg/app"

// HomeView is the public landing page.
type HomeView struct {
	app.Compo
}

func (h *HomeView) Render() app.UI {
	card := func(href, title, desc string) app.UI {
		return app.A().Class("home-card").Href(href).Body(
			app.H3().Text(title),
			app.P().Text(desc),
		)
	}

	return app.Div().Class("page").Body(
		app.Header().Class("topbar").Body(
			app.A().Class("brand").Href("/").Text("Zeyin"),
			app.Div().Class("topbar-user").Body(
				app.A().Class("btn").Href("/login").Text("Sign in"),
			),
		),
		app.Main().Class("content home").Body(
			app.H1().Text("Focus, one small quest at a time"),
			app.P().Class("tagline").Text("Short focus sessions, gentle mid-session prompts, and a supportive circle cheering you on."),
			app.Div().Class("home-cards").Body(
				card("/focus", "Focus timer", "Pick a preset, start the countdown, reflect when it ends."),
				card("/quest", "Quests", "Bind a quest to your next session and earn XP for finishing it."),
				card("/community", "Community", "Read and leave supportive notes from family and teachers."),
			),
		),
	)
}
