// Package resolver inlines embedded question images.
package resolver

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/SAP-F-2025/quiz-player/internal/models"
)

// PluginFileMarker prefixes image sources that point at an embedded file.
const PluginFileMarker = "@@PLUGINFILE@@"

const dataURIPrefix = "data:image/png;base64,"

// Resolve rewrites every <img> whose src carries the plugin-file marker into
// an inline data URI taken from files. Unmatched references are left as they
// are. Everything other than the rewritten img tags is copied byte for byte,
// so resolving twice yields the same output as resolving once.
func Resolve(fragment string, files []models.File) string {
	if !strings.Contains(fragment, PluginFileMarker) || len(files) == 0 {
		return fragment
	}

	index := make(map[string]models.File, len(files))
	for _, f := range files {
		key := NormalizeFilename(f.Name)
		if _, dup := index[key]; !dup && f.Base64 != "" {
			index[key] = f
		}
	}

	var b strings.Builder
	b.Grow(len(fragment))
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return b.String()
		}
		raw := append([]byte(nil), z.Raw()...)
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			b.Write(raw)
			continue
		}
		tok := z.Token()
		if tok.Data != "img" || !rewriteSource(&tok, index) {
			b.Write(raw)
			continue
		}
		b.WriteString(tok.String())
	}
}

func rewriteSource(tok *html.Token, index map[string]models.File) bool {
	for i, attr := range tok.Attr {
		if attr.Key != "src" || !strings.Contains(attr.Val, PluginFileMarker) {
			continue
		}
		f, ok := index[NormalizeFilename(sourceFilename(attr.Val))]
		if !ok {
			return false
		}
		tok.Attr[i].Val = DataURI(f.Base64)
		return true
	}
	return false
}

// sourceFilename takes the last path segment of src and URL-decodes it.
func sourceFilename(src string) string {
	name := src[strings.LastIndex(src, "/")+1:]
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// DataURI wraps base64 image data; values that already are data URIs pass through.
func DataURI(b64 string) string {
	if strings.HasPrefix(b64, "data:") {
		return b64
	}
	return dataURIPrefix + b64
}

// NormalizeFilename makes names comparable regardless of case, accents,
// whitespace and underscores: "Ñandú_Diagram 1.PNG" -> "nandudiagram1.png".
func NormalizeFilename(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, strings.ToLower(name))
	if err != nil {
		folded = strings.ToLower(name)
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '_' {
			return -1
		}
		return r
	}, folded)
}
