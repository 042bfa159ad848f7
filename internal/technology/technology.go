package technology

import (
	"fmt"
	"strings"
)

// a target front-end technology for generated code
type Technology string

const (
	React   Technology = "react"
	Vue     Technology = "vue"
	Svelte  Technology = "svelte"
	Angular Technology = "angular"
	HTML    Technology = "html"
)

// default technology when a request does not name one
const Default = React

// describes how a technology is presented and saved
type Info struct {
	ID        Technology `json:"id"`
	Name      string     `json:"name"`
	Icon      string     `json:"icon"`
	Extension string     `json:"extension"`
	Native    bool       `json:"native"`
}

var catalog = []Info{
	{ID: React, Name: "React", Icon: "React", Extension: "jsx", Native: true},
	{ID: Vue, Name: "Vue", Icon: "Code", Extension: "vue"},
	{ID: Svelte, Name: "Svelte", Icon: "Code", Extension: "svelte"},
	{ID: Angular, Name: "Angular", Icon: "Code", Extension: "ts"},
	{ID: HTML, Name: "HTML/CSS/JS", Icon: "Code", Extension: "html"},
}

// returns every supported technology in display order
func All() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// parses a technology identifier, case-insensitive; empty selects the default
func Parse(s string) (Technology, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default, nil
	}

	for _, info := range catalog {
		if string(info.ID) == s {
			return info.ID, nil
		}
	}

	return "", fmt.Errorf("unsupported technology %q", s)
}

func (t Technology) Valid() bool {
	_, ok := t.info()
	return ok
}

// reports whether code for this technology is compiled in-process
func (t Technology) Native() bool {
	info, ok := t.info()
	return ok && info.Native
}

// returns the file extension used for downloaded artifacts
func (t Technology) Extension() string {
	if info, ok := t.info(); ok {
		return info.Extension
	}

	return "jsx"
}

// returns the download filename for an artifact of this technology
func (t Technology) Filename() string {
	return "generated-component." + t.Extension()
}

func (t Technology) DisplayName() string {
	if info, ok := t.info(); ok {
		return info.Name
	}

	return string(t)
}

func (t Technology) String() string {
	return string(t)
}

func (t Technology) info() (Info, bool) {
	for _, info := range catalog {
		if info.ID == t {
			return info, true
		}
	}

	return Info{}, false
}
