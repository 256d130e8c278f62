package display

// Result modes.
const (
	ModeStructured = "structured"
	ModeSearch     = "search"
)

// BypassNotice is shown whenever a search overrides the structured filters.
const BypassNotice = "Search is active: the other filters are ignored."

// Result is one query answer ready to render.
type Result struct {
	Title           string `json:"title"`
	Mode            string `json:"mode"`
	View            string `json:"view"`
	FiltersBypassed bool   `json:"filters_bypassed"`
	Notice          string `json:"notice,omitempty"`
	// Stale is set when the rows come from a snapshot whose reload failed.
	Stale           bool   `json:"stale"`
	Count           int    `json:"count"`
	Rows            []Row  `json:"rows"`
}
