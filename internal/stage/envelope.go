package stage

// Error is a stage-level error recorded on the envelope.
type Error struct {
	Stage   string `json:"stage"`
	Locator string `json:"locator,omitempty"`
	Message string `json:"message"`
}

// RecGit holds git metadata attached to a record by the enrich-git stage.
type RecGit struct {
	Tracked bool   `json:"tracked"`
	Commit  string `json:"commit,omitempty"`
	Author  string `json:"author,omitempty"`
	Time    string `json:"time,omitempty"`
}

// Record is the standard per-record shape in the envelope.
// Using a struct keeps JSON field ordering deterministic.
type Record struct {
	Locator string         `json:"locator"`
	Meta    map[string]any `json:"meta,omitempty"`
	Mapped  any            `json:"mapped,omitempty"`
	Git     *RecGit        `json:"git,omitempty"`
}

// Meta holds envelope-level settings shared between stages.
type Meta struct {
	Stage string `json:"stage,omitempty"`
	Root  string `json:"root,omitempty"`
}

// Envelope is the mutable context threaded through every stage of a
// run. Field order is stable to keep JSON deterministic in tests.
type Envelope struct {
	Records []Record `json:"records"`
	Meta    *Meta    `json:"meta,omitempty"`
	Errors  []Error  `json:"errors,omitempty"`
}

// Root returns the working root for locator resolution, defaulting to ".".
func (e *Envelope) Root() string {
	if e.Meta != nil && e.Meta.Root != "" {
		return e.Meta.Root
	}
	return "."
}

// SetRoot records the working root on the envelope meta.
func (e *Envelope) SetRoot(root string) {
	if e.Meta == nil {
		e.Meta = &Meta{}
	}
	e.Meta.Root = root
}
