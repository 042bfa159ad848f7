package health

// Response represents the health check response
type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}

// StatusResponse reports whether the generation service is reachable
type StatusResponse struct {
	Connected bool   `json:"connected"`
	Provider  string `json:"provider"`
	BaseURL   string `json:"base_url"`
}
