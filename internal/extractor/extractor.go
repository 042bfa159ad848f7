package extractor

import (
	"regexp"
	"strings"

	"codeberg.org/forgeui/server/internal/technology"
)

// names the rule that produced a snippet
type Match string

const (
	MatchFence     Match = "fence"
	MatchComponent Match = "component"
	MatchTemplate  Match = "template"
	MatchScript    Match = "script"
	MatchDecorator Match = "decorator"
	MatchDocument  Match = "document"

	// no rule matched, the snippet is the whole trimmed input
	MatchPassthrough Match = "passthrough"
)

// a best-guess source snippet isolated from a model response
type Snippet struct {
	Text       string                `json:"code"`
	Technology technology.Technology `json:"technology"`
	Match      Match                 `json:"match"`
}

// reports whether extraction fell back to the raw input
func (s Snippet) Fallback() bool {
	return s.Match == MatchPassthrough
}

// a structural rule; owners limits which target technologies it applies to
type rule struct {
	match  Match
	re     *regexp.Regexp
	owners []technology.Technology
}

// fenced block with an optional language tag on the opening line
var fenceRegex = regexp.MustCompile("(?s)```(?:[\\w+#.-]*[ \\t]*\\r?\\n)?(.*?)```")

// tried in this order, first match wins
var rules = []rule{
	{
		match:  MatchComponent,
		// the import prologue may be separated from the declaration by blank
		// lines; the export must name a binding and end its line, so
		// `export default function X() {` never cuts a span short
		re:     regexp.MustCompile(`(?s)(?:import[^\n]*?from[^\n]*?;?[ \t]*\r?\n(?:[ \t]*\r?\n)*)*(?:const|function)\s+\w+.*?export\s+default\s+\w+[ \t]*;?[ \t]*(?:\r?\n|\z)`),
		owners: []technology.Technology{technology.React},
	},
	{
		match:  MatchTemplate,
		re:     regexp.MustCompile(`(?s)<template[^>]*>.*</template>\s*<script[^>]*>.*?</script>(?:\s*<style[^>]*>.*?</style>)?`),
		owners: []technology.Technology{technology.Vue},
	},
	{
		match:  MatchScript,
		re:     regexp.MustCompile(`(?s)<script[^>]*>.*?</script>.*?(?:</style>|\z)`),
		owners: []technology.Technology{technology.Svelte},
	},
	{
		match:  MatchDecorator,
		re:     regexp.MustCompile(`(?s)(?:import[^\n]*\n\s*)*@\w+\s*\(\s*\{.*?\}\s*\)\s*(?:export\s+)?class\s+\w+[^{]*\{.*\}`),
		owners: []technology.Technology{technology.Angular},
	},
	{
		match:  MatchDocument,
		re:     regexp.MustCompile(`(?is)(?:<!doctype[^>]*>\s*)?<html.*?</html>`),
		owners: []technology.Technology{technology.HTML},
	},
}

// isolates the most plausible code snippet in a model response.
// an empty tech makes every structural rule eligible. never fails: when
// nothing matches the trimmed input is returned with MatchPassthrough
func Extract(raw string, tech technology.Technology) Snippet {
	if m := fenceRegex.FindStringSubmatch(raw); m != nil {
		return Snippet{Text: strings.TrimSpace(m[1]), Technology: tech, Match: MatchFence}
	}

	for _, r := range rules {
		if !r.appliesTo(tech) {
			continue
		}

		if span := r.re.FindString(raw); span != "" {
			return Snippet{Text: strings.TrimSpace(span), Technology: tech, Match: r.match}
		}
	}

	return Snippet{Text: strings.TrimSpace(raw), Technology: tech, Match: MatchPassthrough}
}

func (r rule) appliesTo(tech technology.Technology) bool {
	if tech == "" {
		return true
	}

	for _, owner := range r.owners {
		if owner == tech {
			return true
		}
	}

	return false
}
