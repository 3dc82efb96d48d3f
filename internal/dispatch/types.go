package dispatch

// Site is one manufacturing site. Timezone is an IANA zone name used to
// format timestamps the way the site's API expects.
type Site struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Timezone    string `json:"timezone"`
}

// Area is a region within a site.
type Area struct {
	ID          int64  `json:"id"`
	Site        int64  `json:"site"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Line is a production line within an area.
type Line struct {
	ID          int64  `json:"id"`
	Area        int64  `json:"area"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Machine is a single machine on a production line.
type Machine struct {
	ID          int64  `json:"id"`
	Line        int64  `json:"line"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// DispatchType classifies dispatches (for example FAULT or CLEANING).
type DispatchType struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ClockEvent is the server's record of a badge clock-in or clock-out.
// Time is echoed back in the site-local wire format.
type ClockEvent struct {
	ID    int64  `json:"id"`
	Badge string `json:"badge"`
	Time  string `json:"time"`
}

// CycleCount is the server's record of a machine cycle-count submission.
type CycleCount struct {
	ID      int64  `json:"id"`
	Machine string `json:"machine"`
	Count   int    `json:"count"`
}

// Dispatch is a maintenance or intervention request against a machine.
// Timestamps are site-local wire-format strings, passed through verbatim.
type Dispatch struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Machine     string `json:"machine"`
	Type        string `json:"dispatchtype"`
	Description string `json:"description"`
	State       string `json:"state"`
	Created     string `json:"created"`
	Closed      string `json:"closed"`
}

// PitchRecord is the server's record of production actuals for one pitch
// window.
type PitchRecord struct {
	ID         int64  `json:"id"`
	Machine    string `json:"machine"`
	PitchStart string `json:"pitch_start"`
	Quantity   int    `json:"quantity"`
	Scrap      int    `json:"scrap"`
}
