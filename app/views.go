package main

import "github.com/maxence-charriere/go-app/v10/pkg/app"

func navBar() app.UI {
	link := func(href, label string) app.UI {
		return app.A().Class("nav-link").Href(href).Text(label)
	}
	return app.Nav().Class("nav").Body(
		link("/focus", "Focus"),
		link("/quest", "Quests"),
		link("/community", "Community"),
	)
}
