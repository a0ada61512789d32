package main

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/zeyinlabs/zeyin/internal/profile"
)

func main() {
	app.Route("/", func() app.Composer { return &HomeView{} })
	app.Route("/login", func() app.Composer { return &LoginView{} })
	app.Route("/focus", func() app.Composer {
		return newAuthGate(func(p *profile.Profile) app.UI { return newFocusView(p) })
	})
	app.Route("/quest", func() app.Composer {
		return newAuthGate(func(p *profile.Profile) app.UI { return newQuestView(p) })
	})
	app.Route("/community", func() app.Composer {
		return newAuthGate(func(p *profile.Profile) app.UI { return newCommunityView(p) })
	})
	app.RunWhenOnBrowser()
}
