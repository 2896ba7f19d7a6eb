package trade

import "strings"

// Risk is the pre-trade checklist attached to option entries: three event
// flags plus a free-text note. Opening an option position requires at
// least one flag or a non-blank note, so an entry can never claim the
// checklist was "considered" while recording nothing.
type Risk struct {
	Econ     bool   `json:"econ"`
	Earnings bool   `json:"earnings"`
	Bond     bool   `json:"bond"`
	Note     string `json:"note"`
}

// Empty reports whether the checklist carries no information: all flags
// false and the note blank or whitespace. A nil Risk is empty.
func (r *Risk) Empty() bool {
	if r == nil {
		return true
	}
	return !r.Econ && !r.Earnings && !r.Bond && strings.TrimSpace(r.Note) == ""
}
