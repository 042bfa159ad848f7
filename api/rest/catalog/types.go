package catalog

import (
	"codeberg.org/forgeui/server/internal/technology"
)

type ModelInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
}

// ModelsResponse lists the models the generation service offers
type ModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

type TechnologiesResponse struct {
	Technologies []technology.Info     `json:"technologies"`
	Default      technology.Technology `json:"default"`
}

type ExamplesResponse struct {
	Examples []string `json:"examples"`
}
