// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package normalize converts a fetched email's MIME parts into a single
// plain-text string the extractors can pattern-match against.
package normalize

import (
	stdhtml "html"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/billscout/monitor/internal/models"
)

// Body returns the normalized plain text of a message.
//
// The first text/plain part wins and is used verbatim. Without one, the
// first text/html part is stripped of markup and entity-unescaped twice:
// some provider templates encode entities twice, so the first pass can
// itself yield another named entity (&amp;oacute; → &oacute; → ó).
// A message with neither part type normalizes to the empty string and
// extraction proceeds with empty results rather than failing.
func Body(parts []models.BodyPart) string {
	for _, p := range parts {
		if mediaType(p.ContentType) == "text/plain" {
			return p.Content
		}
	}
	for _, p := range parts {
		if mediaType(p.ContentType) == "text/html" {
			return stdhtml.UnescapeString(stripHTML(p.Content))
		}
	}
	return ""
}

// mediaType drops any content-type parameters (charset etc.).
func mediaType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// blockTags are elements whose boundaries become line breaks so that
// label/value pairs in different table cells stay on separate segments.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "td": true,
	"th": true, "li": true, "table": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true,
}

var spaceRun = regexp.MustCompile(`[ \t]+`)
var blankRun = regexp.MustCompile(`\n{2,}`)

// stripHTML removes all markup using a structural tokenizer. Naive
// regex stripping mishandles nested and malformed tags, which these
// provider emails are full of. The tokenizer decodes entities in text
// nodes, so the caller's UnescapeString is the second decoding pass.
func stripHTML(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	skipDepth := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return tidy(b.String())
		case html.TextToken:
			if skipDepth == 0 {
				b.WriteString(z.Token().Data)
			}
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			tok := z.Token()
			switch tok.Data {
			case "script", "style":
				switch tok.Type {
				case html.StartTagToken:
					skipDepth++
				case html.EndTagToken:
					if skipDepth > 0 {
						skipDepth--
					}
				}
			default:
				if blockTags[tok.Data] {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
			}
		}
	}
}

// tidy collapses whitespace runs left behind by removed markup while
// keeping line boundaries intact.
func tidy(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankRun.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
