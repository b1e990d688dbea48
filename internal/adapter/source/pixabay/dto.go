package pixabay

// SearchResponse is the top-level payload of GET /api/
type SearchResponse struct {
	Total     int   `json:"total"`
	TotalHits int   `json:"totalHits"` // hits reachable through paging (capped by the API)
	Hits      []Hit `json:"hits"`
}

// Hit is a single image result
type Hit struct {
	ID            int64  `json:"id"`
	PageURL       string `json:"pageURL"`
	Type          string `json:"type"`
	Tags          string `json:"tags"`
	PreviewURL    string `json:"previewURL"`
	WebformatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
	ImageWidth    int    `json:"imageWidth"`
	ImageHeight   int    `json:"imageHeight"`
	User          string `json:"user"`
}
