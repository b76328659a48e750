package toolbox

// Status codes carried on a Record. Zero means the record has not failed.
// Hook scripts may return their own nonzero codes, which are stored verbatim.
const (
	StatusOK          = 0
	StatusFetchFailed = 1
	StatusScriptError = -1
)

// Placement selects where a toolbox directory is inserted on the search path.
type Placement string

const (
	PlacePrepend Placement = "prepend"
	PlaceAppend  Placement = "append"
)

// Record is the per-toolbox shape flowing through the deployment pipeline.
// Identity fields come from the config or registry; Status, Message and Path
// are populated as the record passes through fetch, placement and hooks.
type Record struct {
	Name              string    `json:"name" yaml:"name"`
	Subfolder         string    `json:"subfolder,omitempty" yaml:"subfolder,omitempty"`
	Source            string    `json:"source,omitempty" yaml:"source,omitempty"`
	Version           string    `json:"version,omitempty" yaml:"version,omitempty"`
	Placement         Placement `json:"placement,omitempty" yaml:"placement,omitempty"`
	LocalHookTemplate string    `json:"localHookTemplate,omitempty" yaml:"localHookTemplate,omitempty"`
	Hook              string    `json:"hook,omitempty" yaml:"hook,omitempty"`

	Status  int    `json:"status" yaml:"-"`
	Message string `json:"message,omitempty" yaml:"-"`
	Path    string `json:"path,omitempty" yaml:"-"`
}

// Failed reports whether the record carries a sticky failure. Once true, no
// later pipeline step mutates the record again.
func (r Record) Failed() bool { return r.Status != StatusOK }

// Fail marks the record failed with the given status and message, unless it
// already failed earlier (the first failure wins).
func (r *Record) Fail(status int, message string) {
	if r.Failed() {
		return
	}
	r.Status = status
	r.Message = message
}

// EffectivePlacement returns the record's placement, defaulting to prepend.
func (r Record) EffectivePlacement() Placement {
	if r.Placement == PlaceAppend {
		return PlaceAppend
	}
	return PlacePrepend
}

// Result is the terminal outcome of one deployment run.
type Result struct {
	Resolved []Record `json:"resolved"`
	Included []Record `json:"included"`
}

// Clean reports whether every record in both sets succeeded.
func (r Result) Clean() bool {
	for _, rec := range r.Resolved {
		if rec.Failed() {
			return false
		}
	}
	for _, rec := range r.Included {
		if rec.Failed() {
			return false
		}
	}
	return true
}

// Failing returns the failing records of a set, preserving order.
func Failing(records []Record) []Record {
	var out []Record
	for _, rec := range records {
		if rec.Failed() {
			out = append(out, rec)
		}
	}
	return out
}
