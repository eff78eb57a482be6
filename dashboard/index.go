package dashboard

import (
	"html/template"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{ .Title }}</title></head>
<body>
<h1>{{ .Title }}</h1>
<ul>
{{- range .Pages }}
<li><a href="{{ .Slug }}.html">{{ .Name }}</a></li>
{{- end }}
</ul>
</body>
</html>
`))

type indexPage struct {
	Name string
	Slug string
}

// writeIndex оглавление со ссылками на все страницы
func writeIndex(def *Definition, out string) error {
	data := struct {
		Title string
		Pages []indexPage
	}{Title: def.Title}
	if data.Title == "" {
		data.Title = "Dashboard"
	}
	for i, p := range def.Pages {
		data.Pages = append(data.Pages, indexPage{Name: p.Name, Slug: def.Slug(i)})
	}

	f, err := os.Create(filepath.Join(out, "index.html"))
	if err != nil {
		return errors.Wrap(err, "create index")
	}
	defer f.Close()
	return errors.Wrap(indexTemplate.Execute(f, data), "render index")
}
