package model

import "sort"

// EndpointDescriptor describes one candidate API server from the discovery
// document. Lower priority values are preferred.
type EndpointDescriptor struct {
	URL      string `json:"url"`
	Label    string `json:"label"`
	Priority int    `json:"priority"`
}

// EndpointConfig is the discovery document published at the well-known
// configuration URL. It is fetched fresh every run and never cached to disk.
type EndpointConfig struct {
	Version   int                  `json:"version"`
	Updated   string               `json:"updated"`
	MinClient string               `json:"min_client,omitempty"`
	Endpoints []EndpointDescriptor `json:"endpoints"`
}

// SortedURLs returns the endpoint URLs ordered by ascending priority.
// The sort is stable, so endpoints with equal priority keep their
// document order.
func (c *EndpointConfig) SortedURLs() []string {
	endpoints := make([]EndpointDescriptor, len(c.Endpoints))
	copy(endpoints, c.Endpoints)
	sort.SliceStable(endpoints, func(i, j int) bool {
		return endpoints[i].Priority < endpoints[j].Priority
	})

	urls := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		urls = append(urls, e.URL)
	}
	return urls
}
