// Package tui is the terminal verse viewer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jsamuelsen/verse-service/internal/domain"
)

// toastDuration is how long the copy confirmation stays on screen.
const toastDuration = 2 * time.Second

// clipboardWriteAll is swapped out in tests.
var clipboardWriteAll = clipboard.WriteAll

// Picker chooses the next verse. *app.Viewer implements it.
type Picker interface {
	Pick(ctx context.Context, previousID string) (*domain.Quotation, error)
}

type pickedMsg struct {
	verse *domain.Quotation
	err   error
}

type toastExpiredMsg struct {
	seq int
}

// Model shows one verse at a time. Any key other than share or quit, or a
// left click, moves on to another verse.
type Model struct {
	ctx    context.Context
	picker Picker

	verse  *domain.Quotation
	err    error
	loaded bool

	toast    string
	toastSeq int

	width int
}

// New creates the model. ctx bounds every pick.
func New(ctx context.Context, picker Picker) Model {
	return Model{ctx: ctx, picker: picker}
}

// Init picks the first verse.
func (m Model) Init() tea.Cmd {
	return m.pick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

		return m, nil

	case pickedMsg:
		m.loaded = true
		m.err = msg.err

		if msg.err == nil {
			m.verse = msg.verse
		}

		return m, nil

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}

		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			return m, m.pick()
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "s", "c":
			return m.share()
		case "n", " ", "enter", "right", "r":
			return m, m.pick()
		}
	}

	return m, nil
}

func (m Model) pick() tea.Cmd {
	previous := ""
	if m.verse != nil {
		previous = m.verse.ID
	}

	return func() tea.Msg {
		q, err := m.picker.Pick(m.ctx, previous)

		return pickedMsg{verse: q, err: err}
	}
}

func (m Model) share() (tea.Model, tea.Cmd) {
	if m.verse == nil {
		return m, nil
	}

	m.toastSeq++
	m.toast = domain.MsgCopied

	if err := clipboardWriteAll(m.verse.ShareText()); err != nil {
		m.toast = fmt.Sprintf("复制失败: %v", err)
	}

	seq := m.toastSeq

	return m, tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.loaded {
		return hintStyle.Render("…") + "\n"
	}

	var b strings.Builder

	title := titleStyle.Render(domain.ShareTitle)
	b.WriteString(title)
	b.WriteString("\n\n")

	card := m.card()
	if m.width > 0 {
		card = cardStyle.Width(min(m.width-4, maxCardWidth)).Render(card)
	} else {
		card = cardStyle.Width(maxCardWidth).Render(card)
	}

	b.WriteString(card)
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(userError(m.err)))
		b.WriteString("\n")
	}

	if m.toast != "" {
		b.WriteString(toastStyle.Render(m.toast))
		b.WriteString("\n")
	}

	b.WriteString(hintStyle.Render("n/space: 换一节 • s: 分享 • q: 退出"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) card() string {
	if m.verse == nil {
		return primaryStyle.Render(domain.PlaceholderText)
	}

	q := m.verse

	return strings.Join([]string{
		primaryStyle.Render(q.PrimaryText),
		referenceStyle.Render(domain.ReferencePrefix + q.PrimaryReference),
		"",
		secondaryStyle.Render(q.SecondaryText),
		referenceStyle.Render(domain.ReferencePrefix + q.SecondaryReference),
	}, "\n")
}

func userError(err error) string {
	if errors.Is(err, context.Canceled) {
		return "已取消"
	}

	return domain.UserMessage(err)
}

// Run shows the viewer full-screen until the user quits or ctx ends.
func Run(ctx context.Context, picker Picker) error {
	p := tea.NewProgram(New(ctx, picker),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}
