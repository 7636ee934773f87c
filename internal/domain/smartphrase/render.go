package smartphrase

import (
	"regexp"
	"strings"
	"time"

	"github.com/ehr/rounds/internal/domain/rounding"
)

// Template is a named note body containing catalog tokens.
type Template struct {
	ID      string `json:"id" yaml:"id"`
	Label   string `json:"label" yaml:"label"`
	Service string `json:"service,omitempty" yaml:"service,omitempty"`
	Body    string `json:"body" yaml:"body"`
}

var (
	tokenPattern  = compileTokenPattern()
	blankLineRuns = regexp.MustCompile(`\n{3,}`)
)

func compileTokenPattern() *regexp.Regexp {
	quoted := make([]string, len(catalog))
	for i, t := range catalog {
		quoted[i] = regexp.QuoteMeta(t.name)
	}
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

// Engine renders templates against sheet snapshots. It holds no state besides
// its clock and is safe for concurrent use.
type Engine struct {
	now func() time.Time
}

type Option func(*Engine)

// WithClock sets the time source used for @TODAY@ when a sheet has no date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Render substitutes every catalog token in t.Body with its value for sheet
// and normalizes the result. Delimited words outside the catalog pass through
// unchanged.
func Render(t Template, sheet rounding.Sheet) string {
	return defaultEngine.Render(t, sheet)
}

func (e *Engine) Render(t Template, sheet rounding.Sheet) string {
	values := e.Values(sheet)
	out := tokenPattern.ReplaceAllStringFunc(t.Body, func(match string) string {
		if v, ok := values[match]; ok {
			return v
		}
		return match
	})
	return Normalize(out)
}

// Values builds the complete token → value table for sheet.
func (e *Engine) Values(sheet rounding.Sheet) map[string]string {
	now := e.now()
	values := make(map[string]string, len(catalog))
	for _, t := range catalog {
		values[t.name] = t.value(&sheet, now)
	}
	return values
}

// Normalize converts CRLF to LF, caps blank-line runs at one blank line and
// trims surrounding whitespace. Applying it twice changes nothing.
func Normalize(s string) string {
	// "\r\r\n" leaves a fresh CRLF behind after one pass
	for strings.Contains(s, "\r\n") {
		s = strings.ReplaceAll(s, "\r\n", "\n")
	}
	s = blankLineRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
