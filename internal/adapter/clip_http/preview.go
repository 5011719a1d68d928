package clip_http

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"epaper-clip/internal/domain"
)

var previewTemplate = template.Must(template.New("preview").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<meta property="og:type" content="article">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Caption}}">
<meta property="og:url" content="{{.ShareURL}}">
{{- if .OGImage}}
<meta property="og:image" content="{{.OGImage}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:image" content="{{.OGImage}}">
{{- end}}
</head>
<body>
<main class="clip">
{{- if .Found}}
<h1>{{.Title}}</h1>
{{- if .ImageURL}}
<img class="clip-image" src="{{.ImageURL}}" alt="{{.Title}}">
{{- end}}
<p class="clip-caption">{{.Caption}}</p>
{{- else}}
<h1>Clip not found</h1>
<p>This clip does not exist or has been removed.</p>
{{- end}}
</main>
</body>
</html>
`))

type previewData struct {
	Found    bool
	Title    string
	Caption  string
	ShareURL string
	ImageURL template.URL
	OGImage  string
}

// renderPreview renders the public page for a clip. rec may be nil.
func renderPreview(rec *domain.ClipRecord, shareURL, caption string) ([]byte, error) {
	data := previewData{Caption: caption, ShareURL: shareURL, Title: "Clip not found"}
	if rec != nil {
		data.Found = true
		data.Title = fmt.Sprintf("E-paper clip, page %d", rec.Page)
		switch {
		case strings.HasPrefix(rec.ImageURL, "http://"), strings.HasPrefix(rec.ImageURL, "https://"):
			data.ImageURL = template.URL(rec.ImageURL)
			data.OGImage = rec.ImageURL
		case strings.HasPrefix(rec.ImageURL, "data:image/"):
			data.ImageURL = template.URL(rec.ImageURL)
		}
	}

	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render clip preview: %w", err)
	}
	return buf.Bytes(), nil
}
