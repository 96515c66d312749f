package summary

// Result is the generated overview for one lecture. It is the only payload
// shared between the backend, the cache, and the renderers.
type Result struct {
	Summary     string   `json:"summary"`
	CodeBlocks  []string `json:"code_blocks"`
	KeyConcepts []string `json:"key_concepts"`
}

// Normalize replaces nil slices with empty ones so the JSON form always
// carries arrays, matching what the backend emits.
func (r Result) Normalize() Result {
	if r.CodeBlocks == nil {
		r.CodeBlocks = []string{}
	}
	if r.KeyConcepts == nil {
		r.KeyConcepts = []string{}
	}
	return r
}

// Equal reports whether two results carry the same content. Nil and empty
// slices compare equal.
func (r Result) Equal(o Result) bool {
	if r.Summary != o.Summary {
		return false
	}
	return equalStrings(r.CodeBlocks, o.CodeBlocks) && equalStrings(r.KeyConcepts, o.KeyConcepts)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Request is the body of POST /api/process. ForceRefresh is omitted from the
// wire unless set so older backends keep accepting the payload.
type Request struct {
	Transcript   string `json:"transcript"`
	LectureTitle string `json:"lecture_title"`
	CourseTitle  string `json:"course_title,omitempty"`
	ForceRefresh bool   `json:"force_refresh,omitempty"`
}

// DefaultLectureTitle is used when the page has no usable title.
const DefaultLectureTitle = "Untitled Lecture"
