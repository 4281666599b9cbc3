// Package slider is a terminal time slider widget driven by a
// timeslider.Controller.
//
// The bubbletea program goroutine owns the controller: it is read and
// written only from Update and View.
package slider

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	"github.com/mohammed-shakir/geotime-toolkit/internal/northarrow"
	"github.com/mohammed-shakir/geotime-toolkit/internal/timeslider"
)

const (
	defaultTrackWidth = 48
	minTrackWidth     = 10
	rotateStep        = 15.0
)

type Model struct {
	ts     *timeslider.Controller
	arrow  *northarrow.Controller
	title  string
	keys   KeyMap
	styles Styles
	help   help.Model
	width  int
}

// New binds the widget to ts. arrow may be nil, which hides the heading line.
func New(title string, ts *timeslider.Controller, arrow *northarrow.Controller) Model {
	return Model{
		ts:     ts,
		arrow:  arrow,
		title:  title,
		keys:   DefaultKeyMap(),
		styles: DefaultStyles(),
		help:   help.New(),
		width:  defaultTrackWidth,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// date labels take roughly 24 columns
		m.width = max(minTrackWidth, msg.Width-24)
		m.help.Width = msg.Width

	case tea.KeyMsg:
		sel := m.ts.Selection()
		start, end := sel.Start, sel.End
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.StartBack):
			m.ts.SetSteps(start-1, end)
		case key.Matches(msg, m.keys.StartForward):
			if start < end {
				m.ts.SetSteps(start+1, end)
			}
		case key.Matches(msg, m.keys.EndBack):
			if end > start {
				m.ts.SetSteps(start, end-1)
			}
		case key.Matches(msg, m.keys.EndForward):
			m.ts.SetSteps(start, end+1)
		case key.Matches(msg, m.keys.Reset):
			m.ts.SetSteps(0, m.ts.NumberOfSteps())
		case key.Matches(msg, m.keys.RotateLeft):
			if m.arrow != nil {
				m.arrow.SetHeading(m.arrow.Heading() - rotateStep)
			}
		case key.Matches(msg, m.keys.RotateRight):
			if m.arrow != nil {
				m.arrow.SetHeading(m.arrow.Heading() + rotateStep)
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n\n")

	n := m.ts.NumberOfSteps()
	if n == 0 {
		b.WriteString(m.styles.Dim.Render("no time data"))
		b.WriteString("\n")
	} else {
		ext, sel := m.ts.FullTimeExtent(), m.ts.Selection()
		layout := dateLayout(m.ts.TimeInterval().Unit())
		fmt.Fprintf(&b, "%s %s %s\n\n",
			m.styles.Dim.Render(ext.Start().UTC().Format(layout)),
			m.track(n, sel.Start, sel.End),
			m.styles.Dim.Render(ext.End().UTC().Format(layout)),
		)
		b.WriteString(m.stepLine("start", sel.Start, n, layout))
		b.WriteString(m.stepLine("end", sel.End, n, layout))
		fmt.Fprintf(&b, "%s %s\n", m.styles.Label.Render("every"), m.ts.TimeInterval())
	}

	if m.arrow != nil && m.arrow.Bound() {
		fmt.Fprintf(&b, "%s %.0f°\n", m.styles.Label.Render("north"), m.arrow.Heading())
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) stepLine(label string, step, n int, layout string) string {
	ts := "-"
	if t, ok := m.ts.TimeForStep(step); ok {
		ts = t.UTC().Format(layout)
	}
	return fmt.Sprintf("%s %s %s\n",
		m.styles.Label.Render(label), ts, m.styles.Dim.Render(fmt.Sprintf("step %d/%d", step, n)))
}

// track draws the full extent with the selected range and both thumbs.
func (m Model) track(n, start, end int) string {
	w := m.width
	pos := func(step int) int { return step * (w - 1) / n }
	ps, pe := pos(start), pos(end)

	var b strings.Builder
	for i := 0; i < w; i++ {
		switch {
		case i == ps || i == pe:
			b.WriteString(m.styles.Thumb.Render("●"))
		case i > ps && i < pe:
			b.WriteString(m.styles.Selected.Render("━"))
		default:
			b.WriteString(m.styles.Track.Render("─"))
		}
	}
	return b.String()
}

func dateLayout(unit model.TimeUnit) string {
	switch unit {
	case model.Milliseconds, model.Seconds:
		return time.RFC3339
	case model.Minutes, model.Hours:
		return "2006-01-02 15:04"
	default:
		return time.DateOnly
	}
}
