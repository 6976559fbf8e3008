package campaigns_module

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/launchkite/launchkite/internal/stores/campaign"
)

// emailTemplate is the HTML body pushed to the email provider: the exported
// design asset on top, the campaign copy below
var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:24px;font-family:Helvetica,Arial,sans-serif;color:#1a1a1a;">
  <div style="max-width:600px;margin:0 auto;">
    {{if .AssetURL}}<img src="{{.AssetURL}}" alt="{{.Name}}" style="width:100%;border-radius:8px;" />{{end}}
    {{if .Subject}}<h1 style="font-size:24px;">{{.Subject}}</h1>{{end}}
    {{if .Copy}}<p style="font-size:16px;line-height:1.5;">{{.Copy}}</p>{{end}}
  </div>
</body>
</html>
`))

// landingTemplate is the static page committed to the GitHub Pages repository
var landingTemplate = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Name}}</title>
  <style>
    body { margin: 0; font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; }
    main { max-width: 720px; margin: 0 auto; padding: 48px 24px; }
    img { width: 100%; border-radius: 12px; }
    h1 { font-size: 32px; }
    p { font-size: 18px; line-height: 1.6; }
  </style>
</head>
<body>
  <main>
    {{if .AssetURL}}<img src="{{.AssetURL}}" alt="{{.Name}}" />{{end}}
    <h1>{{if .Subject}}{{.Subject}}{{else}}{{.Name}}{{end}}</h1>
    {{if .Copy}}<p>{{.Copy}}</p>{{end}}
  </main>
</body>
</html>
`))

// renderEmail produces the provider HTML body for a campaign
func renderEmail(c *campaign.Campaign) (string, error) {
	var b strings.Builder
	if err := emailTemplate.Execute(&b, c); err != nil {
		return "", fmt.Errorf("failed to render email body: %w", err)
	}
	return b.String(), nil
}

// renderLandingPage produces the static landing page HTML for a campaign
func renderLandingPage(c *campaign.Campaign) (string, error) {
	var b strings.Builder
	if err := landingTemplate.Execute(&b, c); err != nil {
		return "", fmt.Errorf("failed to render landing page: %w", err)
	}
	return b.String(), nil
}

// landingSlug derives the repository path segment for a campaign's landing
// page from its name plus a stable id fragment to avoid collisions
func landingSlug(c *campaign.Campaign) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(c.Name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "campaign"
	}

	// First id segment keeps renamed campaigns from colliding
	idFragment := c.ID
	if i := strings.IndexByte(idFragment, '-'); i > 0 {
		idFragment = idFragment[:i]
	}

	return slug + "-" + idFragment
}
