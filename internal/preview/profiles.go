package preview

import (
	"regexp"

	"codeberg.org/forgeui/server/internal/technology"
)

// external runtimes loaded by synthesized documents
const (
	tailwindRuntime   = "https://cdn.tailwindcss.com"
	vueRuntime        = "https://unpkg.com/vue@3/dist/vue.global.prod.js"
	featherRuntime    = "https://unpkg.com/feather-icons/dist/feather.min.js"
	fontAwesomeStyles = "https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css"
)

var (
	fullDocumentRegex = regexp.MustCompile(`(?i)<!doctype|<html`)
	templateRegex     = regexp.MustCompile(`(?is)<template[^>]*>(.*)</template>`)
	styleRegex        = regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>`)
	scriptTagRegex    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTagRegex     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	inlineTemplate    = regexp.MustCompile("(?s)template\\s*:\\s*`([^`]*)`")
)

// key for the shell around rendered native components
const unitShell technology.Technology = "unit"

var profiles = map[technology.Technology]profile{
	technology.Vue: {
		markup:      templateRegex,
		placeholder: "<div></div>",
		style:       styleRegex,
		scripts:     []string{vueRuntime, tailwindRuntime},
		body: `<div id="app"></div>
<script>
Vue.createApp({ template: {{.MarkupJSON}} }).mount('#app');
</script>`,
	},
	technology.Svelte: {
		strip:   []*regexp.Regexp{scriptTagRegex, styleTagRegex},
		style:   styleRegex,
		scripts: []string{tailwindRuntime, featherRuntime},
		body: `{{.Markup}}
<script>
if (window.feather && typeof window.feather.replace === 'function') {
  window.feather.replace();
}
</script>`,
	},
	technology.Angular: {
		markup:      inlineTemplate,
		placeholder: "No template found",
		escape:      true,
		scripts:     []string{tailwindRuntime},
		body: `<div class="max-w-3xl mx-auto p-6">
  <div class="bg-amber-50 border border-amber-200 rounded-lg p-4 mb-4 text-amber-800 text-sm">
    Angular components need a full build to run. Showing the component template.
  </div>
  <pre class="bg-gray-900 text-gray-100 rounded-lg p-4 overflow-auto text-sm">{{.Markup}}</pre>
</div>`,
	},
	technology.HTML: {
		passthrough: fullDocumentRegex,
		scripts:     []string{tailwindRuntime},
		stylesheets: []string{fontAwesomeStyles},
		body:        `{{.Markup}}`,
	},
	unitShell: {
		scripts: []string{tailwindRuntime},
		body:    `<div id="root" class="p-6">{{.Markup}}</div>`,
	},
}
