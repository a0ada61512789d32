package main

import (
	"bytes"
	"html"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/zeyinlabs/zeyin/internal/community"
	"github.com/zeyinlabs/zeyin/internal/profile"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify))

// renderMarkdown converts a post body to HTML. Raw HTML in the source is
// escaped by goldmark's default renderer.
func renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "<p>" + html.EscapeString(text) + "</p>"
	}
	return buf.String()
}

// CommunityView is the supportive message board.
type CommunityView struct {
	app.Compo

	profile *profile.Profile
	feed    *community.Feed
	draft   string
	errMsg  string
}

func newCommunityView(p *profile.Profile) *CommunityView {
	return &CommunityView{profile: p}
}

func (c *CommunityView) OnMount(ctx app.Context) {
	c.feed = community.NewFeed(newBrowserStore(ctx))
}

func (c *CommunityView) onDraftInput(ctx app.Context, e app.Event) {
	c.draft = ctx.JSSrc().Get("value").String()
	if community.CanPost(c.draft) {
		c.errMsg = ""
	}
}

func (c *CommunityView) onPost(ctx app.Context, e app.Event) {
	e.PreventDefault()
	if _, err := c.feed.Add(c.profile.Name, c.profile.Role, c.draft); err != nil {
		c.errMsg = "A post needs at least a few words."
		return
	}
	c.draft = ""
	c.errMsg = ""
}

func (c *CommunityView) onRemove(ctx app.Context, e app.Event, id string) {
	c.feed.Remove(id)
}

func (c *CommunityView) Render() app.UI {
	if c.feed == nil {
		return app.Div().Class("loading-overlay").Body(
			app.Div().Class("loading-spinner"),
		)
	}

	posts := c.feed.Posts()
	now := time.Now()

	return app.Div().Class("community").Body(
		app.H1().Text("Community"),

		app.Form().Class("card post-form").OnSubmit(c.onPost).Body(
			app.If(c.errMsg != "", func() app.UI {
				return app.Div().Class("form-error").Text(c.errMsg)
			}),
			app.Textarea().
				Class("input").
				Placeholder("Leave a supportive note...").
				Text(c.draft).
				OnInput(c.onDraftInput),
			app.Button().
				Class("btn btn-primary").
				Type("submit").
				Disabled(!community.CanPost(c.draft)).
				Text("Post"),
		),

		app.Div().Class("feed").Body(
			app.Range(posts).Slice(func(i int) app.UI {
				p := posts[i]
				own := c.profile != nil && p.Author == c.profile.Name

				return app.Div().Class("card post").Body(
					app.Div().Class("post-head").Body(
						app.Span().Class("post-author").Text(p.Author),
						app.Span().Class("post-role").Text(string(p.Role)),
						app.Span().Class("post-time").Text(community.TimeAgo(p.CreatedAt, now)),
						app.If(own, func() app.UI {
							return app.Button().
								Class("btn btn-ghost post-remove").
								Text("Remove").
								OnClick(func(ctx app.Context, e app.Event) {
									c.onRemove(ctx, e, p.ID)
								})
						}),
					),
					app.Raw(`<div class="post-body">`+renderMarkdown(p.Text)+`</div>`),
				)
			}),
		),
	)
}
