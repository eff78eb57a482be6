package dashboard

import (
	"fmt"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Slugify латиница в нижнем регистре, всё прочее заменяется дефисом
func Slugify(name string) string {
	ascii := strings.ToLower(unidecode.Unidecode(name))
	var b strings.Builder
	dash := false
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "page"
	}
	return slug
}

func uniqueSlug(slug string, used map[string]bool) string {
	candidate := slug
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", slug, n)
	}
	used[candidate] = true
	return candidate
}
