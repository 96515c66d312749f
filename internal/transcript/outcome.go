package transcript

// Outcome is the result of one extraction attempt. Real is false when the
// text is the bundled placeholder or when nothing was found.
type Outcome struct {
	Text     string
	Real     bool
	Strategy string
}

// NotFound is the terminal "no transcript on this page" outcome.
func NotFound() Outcome { return Outcome{} }

// Found reports whether a strategy produced page text.
func (o Outcome) Found() bool { return o.Real && o.Text != "" }

// OrPlaceholder degrades a not-found outcome to the placeholder transcript.
func (o Outcome) OrPlaceholder() Outcome {
	if o.Found() {
		return o
	}
	return Outcome{Text: Placeholder, Real: false, Strategy: "placeholder"}
}
