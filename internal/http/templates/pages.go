package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// layout wraps page content in the shared document shell.
func layout(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if _, err := fmt.Fprintf(w,
			"<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">"+
				"<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">"+
				"<title>%s</title>"+
				"<style>body{font-family:system-ui,sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem;color:#1f2933}"+
				"form{margin:1rem 0;padding:1rem;border:1px solid #d2d6dc;border-radius:8px}"+
				"label{display:block;margin:.5rem 0 .25rem}input,textarea{width:100%%;padding:.4rem}"+
				"button{margin-top:.75rem;padding:.5rem 1rem}footer{margin-top:3rem;font-size:.85rem;color:#6b7280}"+
				"pre{background:#f4f5f7;padding:.75rem;border-radius:6px;overflow-x:auto}</style></head><body>",
			templ.EscapeString(title),
		); err != nil {
			return err
		}

		if err := content.Render(ctx, w); err != nil {
			return err
		}

		_, err := fmt.Fprintf(w, "<footer>%s</footer></body></html>", templ.EscapeString(DefaultFooterNote))
		return err
	})
}

// HomePage renders the landing page with the two agent forms.
func HomePage(data HomePageData) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			"<h1>Welcome to Travel AI</h1><p>%s</p>",
			templ.EscapeString(data.PlanCountLabel),
		); err != nil {
			return err
		}

		_, err := io.WriteString(w,
			"<form method=\"get\" action=\"/api/recommendations\">"+
				"<h2>Place recommendations</h2>"+
				"<label for=\"city\">City</label><input id=\"city\" name=\"city\" placeholder=\"Tokyo\" required>"+
				"<label for=\"style\">Travel style</label><input id=\"style\" name=\"style\" placeholder=\"foodie\" required>"+
				"<button type=\"submit\">Recommend places</button></form>"+
				"<section><h2>Budget allocation</h2>"+
				"<p>POST a JSON body to <code>/api/budget</code>: <code>{\"places\": [\"...\"], \"total_budget\": 500}</code></p></section>"+
				"<section><h2>Itinerary</h2>"+
				"<p>POST a JSON body to <code>/api/itinerary</code>: <code>{\"stops\": [{\"city\": \"Tokyo\", \"start_date\": \"2026-09-01\", \"end_date\": \"2026-09-03\"}], \"travelers\": 2}</code></p></section>"+
				"<section><h2>Reels</h2>"+
				"<p>Uploading reels for automatic preference extraction is not available yet.</p></section>"+
				"<p><a href=\"/plans\">Recent plans</a></p>")
		return err
	})

	return layout("Travel AI", content)
}

// PlansPage renders the saved plans listing.
func PlansPage(data PlansPageData) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<h1>Recent plans</h1><h2>Recommendations</h2>"); err != nil {
			return err
		}

		if len(data.Recommendations) == 0 {
			if _, err := io.WriteString(w, "<p>No recommendations saved yet.</p>"); err != nil {
				return err
			}
		}

		for _, rec := range data.Recommendations {
			if _, err := fmt.Fprintf(w,
				"<article><h3>%s &mdash; %s</h3><p>%s</p><pre>%s</pre></article>",
				templ.EscapeString(rec.City),
				templ.EscapeString(rec.Style),
				templ.EscapeString(rec.CreatedAt),
				templ.EscapeString(rec.Places),
			); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "<h2>Budget allocations</h2>"); err != nil {
			return err
		}

		if len(data.Allocations) == 0 {
			if _, err := io.WriteString(w, "<p>No allocations saved yet.</p>"); err != nil {
				return err
			}
		}

		for _, alloc := range data.Allocations {
			if _, err := fmt.Fprintf(w,
				"<article><h3>%s allocated of %s</h3><p>%s</p><pre>%s</pre></article>",
				templ.EscapeString(alloc.Allocated),
				templ.EscapeString(alloc.TotalBudget),
				templ.EscapeString(alloc.CreatedAt),
				templ.EscapeString(alloc.Items),
			); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, "<h2>Itineraries</h2>"); err != nil {
			return err
		}

		if len(data.Itineraries) == 0 {
			if _, err := io.WriteString(w, "<p>No itineraries saved yet.</p>"); err != nil {
				return err
			}
		}

		for _, itin := range data.Itineraries {
			if _, err := fmt.Fprintf(w,
				"<article><h3>%s (%s)</h3><p>%s</p><p>%s</p><pre>%s</pre></article>",
				templ.EscapeString(itin.Cities),
				templ.EscapeString(itin.Travelers),
				templ.EscapeString(itin.CreatedAt),
				templ.EscapeString(itin.Overview),
				templ.EscapeString(itin.Items),
			); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, "<p><a href=\"/\">Back home</a></p>")
		return err
	})

	return layout("Recent plans • Travel AI", content)
}

// ErrorPage renders a friendly error view.
func ErrorPage(data ErrorPageData) templ.Component {
	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"<h1>%s</h1><p>%s</p><p><a href=\"/\">Back home</a></p>",
			templ.EscapeString(data.StatusLabel),
			templ.EscapeString(data.Message),
		)
		return err
	})

	return layout("Something went wrong • Travel AI", content)
}
