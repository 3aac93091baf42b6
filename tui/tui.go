package tui

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"

	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"charm.land/log/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/Gaurav-Gosain/postlinks/scraper"
)

var (
	accent  = lipgloss.Color("#7aa2f7")
	subtle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	title   = lipgloss.NewStyle().Foreground(lipgloss.Color("#1a1b26")).Background(accent).Bold(true).Padding(0, 1)
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e"))
	statNum = lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")).Bold(true)
)

// postsPerPage caps how many post URLs are listed under each page.
const postsPerPage = 3

type (
	pageEventMsg   scraper.Event
	sessionDoneMsg struct {
		session *scraper.Session
		err     error
	}
)

type model struct {
	spinner  spinner.Model
	bar      progress.Model
	pages    int // start URLs in the session
	finished int
	posts    int
	current  string
	lines    []string
	session  *scraper.Session
	err      error
	done     bool
	width    int
	height   int
}

func newModel(pages int) model {
	return model{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(accent)),
		),
		bar: progress.New(
			progress.WithColors(accent, lipgloss.Color("#bb9af7")),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		pages: max(pages, 1),
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.SetWidth(min(max(msg.Width-30, 20), 60))

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageEventMsg:
		m.handlePageEvent(scraper.Event(msg))

	case sessionDoneMsg:
		m.session = msg.session
		m.err = msg.err
		m.done = true
		m.current = ""
		return m, tea.Quit
	}

	return m, nil
}

func (m *model) handlePageEvent(e scraper.Event) {
	width := max(20, m.width-12)

	switch e.Type {
	case "fetching":
		m.current = e.URL

	case "done":
		m.finished++
		m.posts += len(e.Posts)
		m.current = ""

		tag := subtle.Render("no new posts")
		if len(e.Posts) > 0 {
			tag = green.Render(fmt.Sprintf("%d new", len(e.Posts)))
		}
		m.lines = append(m.lines, fmt.Sprintf("  %s %s %s", green.Render("✓"), truncateURL(e.URL, width), tag))
		for i, p := range e.Posts {
			if i == postsPerPage {
				m.lines = append(m.lines, subtle.Render(fmt.Sprintf("      +%d more", len(e.Posts)-postsPerPage)))
				break
			}
			m.lines = append(m.lines, subtle.Render("    ↳ ")+truncateURL(p, width))
		}

	case "error":
		// Pages rejected before a request never send "fetching".
		m.finished++
		m.current = ""

		reason := "unknown error"
		if e.Err != nil {
			reason = truncateURL(e.Err.Error(), 45)
		}
		m.lines = append(m.lines, fmt.Sprintf("  %s %s %s", red.Render("✗"), truncateURL(e.URL, max(20, width-45)), subtle.Render(reason)))
	}
}

func (m model) percent() float64 {
	return min(float64(m.finished)/float64(m.pages), 1)
}

func (m model) View() tea.View {
	status := m.spinner.View()
	if m.done {
		status = green.Render("✓")
	}

	out := []string{
		"",
		"  " + title.Render("postlinks"),
		"",
		fmt.Sprintf("  %s %s %s%s  %s%s",
			status, m.bar.ViewAs(m.percent()),
			statNum.Render(fmt.Sprint(m.finished)), subtle.Render(fmt.Sprintf("/%d pages", m.pages)),
			statNum.Render(fmt.Sprint(m.posts)), subtle.Render(" posts")),
	}
	if m.current != "" {
		out = append(out, subtle.Render("  → "+truncateURL(m.current, max(20, m.width-10))))
	}
	out = append(out, "")

	lines := m.lines
	if m.height > 0 {
		room := max(0, m.height-len(out)-1)
		if len(lines) > room {
			lines = lines[len(lines)-room:]
		}
	}
	out = append(out, lines...)

	return tea.NewView(strings.Join(out, "\n") + "\n")
}

// outcome is what the finished program hands back. Quitting before the
// session ends counts as cancellation.
func (m model) outcome() (*scraper.Session, error) {
	if !m.done {
		return nil, context.Canceled
	}
	return m.session, m.err
}

// IsTTY reports whether stderr is connected to a terminal.
func IsTTY() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// RunWithProgress runs the scraper with a TUI progress display.
// Falls back to log-based output when no TTY is available.
func RunWithProgress(ctx context.Context, opts scraper.Options) (*scraper.Session, error) {
	if !IsTTY() {
		return RunWithLogs(ctx, opts, log.New(os.Stderr))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(newModel(len(opts.URLs)))

	// Library output on the standard logger would tear the display.
	prevOutput := stdlog.Writer()
	stdlog.SetOutput(io.Discard)
	defer stdlog.SetOutput(prevOutput)

	go func() {
		opts.OnEvent = func(e scraper.Event) {
			prog.Send(pageEventMsg(e))
		}
		session, err := scraper.Run(ctx, opts)
		prog.Send(sessionDoneMsg{session: session, err: err})
	}()

	final, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("TUI error: %w", err)
	}

	return final.(model).outcome()
}

// RunWithLogs runs the scraper and reports progress through logger.
func RunWithLogs(ctx context.Context, opts scraper.Options, logger *log.Logger) (*scraper.Session, error) {
	logger.Info("Starting scrape", "urls", len(opts.URLs), "selector", opts.Selector, "attr", opts.Attr)

	opts.OnEvent = func(e scraper.Event) {
		switch e.Type {
		case "fetching":
			logger.Info("Fetching", "url", e.URL)
		case "done":
			logger.Info("Done", "url", e.URL, "posts", len(e.Posts))
			for _, p := range e.Posts {
				logger.Debug("Post", "url", p)
			}
		case "error":
			logger.Error("Failed", "url", e.URL, "err", e.Err)
		}
	}

	session, err := scraper.Run(ctx, opts)
	if err != nil {
		return nil, err
	}

	logger.Info("Scraping complete", "pages", len(session.Pages), "posts", len(session.Records()))
	return session, nil
}

func truncateURL(u string, maxLen int) string {
	return ansi.Truncate(u, maxLen, "...")
}
