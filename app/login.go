package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// LoginView sends a magic sign-in link. The next query parameter is carried
// through to the auth callback so the user lands back where they started.
type LoginView struct {
	app.Compo

	email   string
	next    string
	sent    bool
	sending bool
	errMsg  string
}

func (l *LoginView) OnMount(ctx app.Context) {
	l.readQuery(ctx)
}

func (l *LoginView) OnNav(ctx app.Context) {
	l.readQuery(ctx)
}

func (l *LoginView) readQuery(ctx app.Context) {
	q := ctx.Page().URL().Query()
	l.next = q.Get("next")
	if q.Get("err") == "callback" {
		l.errMsg = "That sign-in link did not work. Request a new one."
	}
}

func (l *LoginView) onEmailInput(ctx app.Context, e app.Event) {
	l.email = ctx.JSSrc().Get("value").String()
}

func (l *LoginView) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()

	email := strings.TrimSpace(l.email)
	if email == "" || !strings.Contains(email, "@") {
		l.errMsg = "Enter a valid email address."
		return
	}

	l.sending = true
	l.errMsg = ""
	next := l.next

	ctx.Async(func() {
		body, _ := json.Marshal(map[string]string{"email": email, "next": next})
		resp, err := http.Post("/api/auth/otp", "application/json", bytes.NewReader(body))
		if err != nil {
			app.Log("error sending sign-in link:", err)
			ctx.Dispatch(func(app.Context) {
				l.sending = false
				l.errMsg = "Could not send the sign-in link. Try again."
			})
			return
		}
		defer resp.Body.Close()

		ok := resp.StatusCode == http.StatusOK
		ctx.Dispatch(func(app.Context) {
			l.sending = false
			if ok {
				l.sent = true
			} else {
				l.errMsg = "Could not send the sign-in link. Try again."
			}
		})
	})
}

func (l *LoginView) Render() app.UI {
	return app.Div().Class("page").Body(
		app.Header().Class("topbar").Body(
			app.A().Class("brand").Href("/").Text("Zeyin"),
		),
		app.Main().Class("content login").Body(
			app.If(l.sent, func() app.UI {
				return app.Div().Class("card login-card").Body(
					app.H2().Text("Check your email"),
					app.P().Text("We sent a sign-in link to "+l.email+". Open it on this device to continue."),
				)
			}).Else(func() app.UI {
				submitLabel := "Send link"
				if l.sending {
					submitLabel = "Sending..."
				}
				return app.Form().Class("card login-card").OnSubmit(l.onSubmit).Body(
					app.H2().Text("Sign in"),
					app.P().Text("Enter your email and we will send you a magic link."),
					app.If(l.errMsg != "", func() app.UI {
						return app.Div().Class("form-error").Text(l.errMsg)
					}),
					app.Input().
						Class("input").
						Type("email").
						Placeholder("you@example.com").
						Value(l.email).
						AutoFocus(true).
						OnInput(l.onEmailInput),
					app.Button().
						Class("btn btn-primary").
						Type("submit").
						Disabled(l.sending).
						Text(submitLabel),
				)
			}),
		),
	)
}
