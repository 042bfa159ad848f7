package generator

import (
	"fmt"

	"codeberg.org/forgeui/server/internal/llm"
	"codeberg.org/forgeui/server/internal/technology"
)

// temperature used when restyling existing code
const restyleTemperature = 0.5

const reactSystemPrompt = `You are an expert React developer and UI/UX designer. Generate a complete, functional React component based on the user's description.

Requirements:
- Use React with JSX syntax
- Use Tailwind CSS for styling
- Use react-icons for icons (import from react-icons/fi)
- Make components responsive and accessible
- Follow modern React best practices
- Create visually appealing, professional designs
- Use gradients, shadows, and modern UI patterns
- Ensure components are production-ready

Return ONLY the complete component code without any explanations or markdown formatting.`

const vueSystemPrompt = `You are an expert Vue developer and UI/UX designer. Generate a complete Vue 3 single-file component based on the user's description.

Requirements:
- Use a <template> block, a <script> block and an optional <style> block
- Use Tailwind CSS classes for styling
- Make components responsive and accessible

Return ONLY the complete component code without any explanations or markdown formatting.`

const svelteSystemPrompt = `You are an expert Svelte developer and UI/UX designer. Generate a complete Svelte component based on the user's description.

Requirements:
- Use a <script> block, markup and an optional <style> block
- Use Tailwind CSS classes for styling
- Use feather icons via <i data-feather="name"></i> when icons are needed

Return ONLY the complete component code without any explanations or markdown formatting.`

const angularSystemPrompt = `You are an expert Angular developer and UI/UX designer. Generate a complete Angular standalone component based on the user's description.

Requirements:
- Use the @Component decorator with an inline template
- Use Tailwind CSS classes for styling
- Make components responsive and accessible

Return ONLY the complete component code without any explanations or markdown formatting.`

const htmlSystemPrompt = `You are an expert front-end developer and UI/UX designer. Generate a complete HTML document based on the user's description.

Requirements:
- Use plain HTML, CSS and JavaScript
- Use Tailwind CSS classes for styling
- Use Font Awesome for icons

Return ONLY the complete HTML code without any explanations or markdown formatting.`

var systemPrompts = map[technology.Technology]string{
	technology.React:   reactSystemPrompt,
	technology.Vue:     vueSystemPrompt,
	technology.Svelte:  svelteSystemPrompt,
	technology.Angular: angularSystemPrompt,
	technology.HTML:    htmlSystemPrompt,
}

// example prompts offered to clients
var examplePrompts = []string{
	"Create a modern pricing card component with three tiers",
	"Build a responsive navigation menu with dropdown animations",
	"Design a dashboard stats widget with charts and metrics",
	"Create a contact form with validation and smooth animations",
	"Build a product showcase carousel with thumbnails",
	"Design a testimonial section with customer reviews",
}

// returns the example prompts
func Examples() []string {
	out := make([]string, len(examplePrompts))
	copy(out, examplePrompts)
	return out
}

// returns the system prompt for a technology, falling back to the native one
func SystemPrompt(tech technology.Technology) string {
	if prompt, ok := systemPrompts[tech]; ok {
		return prompt
	}

	return systemPrompts[technology.Default]
}

// returns the full prompt sent to the generation service
func BuildPrompt(tech technology.Technology, prompt string) string {
	return llm.ComposePrompt(SystemPrompt(tech), prompt)
}

// returns the prompt asking the service to restyle existing code
func RestylePrompt(tech technology.Technology, code, requirements string) string {
	return fmt.Sprintf(`Given this %s component code, enhance the styling based on these requirements: %s

Component Code:
%s

Return ONLY the updated component code with improved Tailwind CSS styling.`, tech.DisplayName(), requirements, code)
}
