// Package tui is a terminal storefront over a single cart session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jcmexdev/gift-cart/internal/cart/app"
	"github.com/jcmexdev/gift-cart/internal/cart/domain"
)

type pane int

const (
	paneCatalog pane = iota
	paneCart
)

// Model is the bubbletea model. Every key press goes through the cart
// service and the returned View replaces the rendered state.
type Model struct {
	ctx       context.Context
	carts     app.CartService
	sessionID string
	view      domain.View

	focus         pane
	catalogCursor int
	// cartCursor indexes the editable lines only; the gift is skipped.
	cartCursor int

	keys     keyMap
	help     help.Model
	progress progress.Model
	styles   styles

	err error
}

// New opens a session on carts for the lifetime of the model.
func New(ctx context.Context, carts app.CartService) Model {
	id, view := carts.StartSession(ctx)
	return Model{
		ctx:       ctx,
		carts:     carts,
		sessionID: id,
		view:      view,
		keys:      defaultKeyMap(),
		help:      help.New(),
		progress:  progress.New(progress.WithDefaultGradient()),
		styles:    defaultStyles(),
	}
}

// SessionID is the cart session driven by this model.
func (m Model) SessionID() string { return m.sessionID }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(max(msg.Width-4, 10), 76)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if err := m.carts.EndSession(m.ctx, m.sessionID); err != nil {
				m.err = err
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Switch):
			m.toggleFocus()
		case key.Matches(msg, m.keys.Up):
			m.moveCursor(-1)
		case key.Matches(msg, m.keys.Down):
			m.moveCursor(1)
		case key.Matches(msg, m.keys.Dec):
			m.adjust(-1)
		case key.Matches(msg, m.keys.Inc):
			m.adjust(1)
		case key.Matches(msg, m.keys.Add):
			if m.focus == paneCatalog {
				m.apply(m.carts.AddToCart(m.ctx, m.sessionID, m.selectedProduct()))
			}
		case key.Matches(msg, m.keys.Remove):
			if id, ok := m.selectedLine(); ok && m.focus == paneCart {
				m.apply(m.carts.RemoveFromCart(m.ctx, m.sessionID, id))
			}
		}
	}
	return m, nil
}

func (m *Model) toggleFocus() {
	if m.focus == paneCatalog {
		if len(m.editableLines()) == 0 {
			return
		}
		m.focus = paneCart
		return
	}
	m.focus = paneCatalog
}

func (m *Model) moveCursor(step int) {
	if m.focus == paneCatalog {
		m.catalogCursor = clamp(m.catalogCursor+step, len(m.view.Catalog))
		return
	}
	m.cartCursor = clamp(m.cartCursor+step, len(m.editableLines()))
}

func (m *Model) adjust(delta int) {
	if m.focus == paneCatalog {
		m.apply(m.carts.AdjustPendingQuantity(m.ctx, m.sessionID, m.selectedProduct(), delta))
		return
	}
	if id, ok := m.selectedLine(); ok {
		m.apply(m.carts.UpdateCartQuantity(m.ctx, m.sessionID, id, delta))
	}
}

func (m *Model) apply(view domain.View, err error) {
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.view = view

	n := len(m.editableLines())
	m.cartCursor = clamp(m.cartCursor, n)
	if n == 0 {
		m.focus = paneCatalog
	}
}

func (m Model) selectedProduct() domain.ProductID {
	if len(m.view.Catalog) == 0 {
		return 0
	}
	return m.view.Catalog[m.catalogCursor].ID
}

func (m Model) selectedLine() (domain.ProductID, bool) {
	lines := m.editableLines()
	if len(lines) == 0 {
		return 0, false
	}
	return lines[m.cartCursor].ID, true
}

func (m Model) editableLines() []domain.LineView {
	out := make([]domain.LineView, 0, len(m.view.Items))
	for _, l := range m.view.Items {
		if l.Controls {
			out = append(out, l)
		}
	}
	return out
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("🛒 Gift Cart"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.catalogPane(), " ", m.cartPane()))
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(m.view.Progress / 100))
	b.WriteString("\n")
	if m.view.ThresholdMet {
		b.WriteString(m.styles.Success.Render(m.view.Message()))
	} else {
		b.WriteString(m.view.Message())
	}
	b.WriteString("\n")
	if banner := m.view.Banner(); banner != "" {
		b.WriteString(m.styles.Gift.Render(banner))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(m.styles.Error.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) catalogPane() string {
	var b strings.Builder
	b.WriteString(m.styles.Heading.Render("Products"))
	b.WriteString("\n")

	for i, e := range m.view.Catalog {
		line := fmt.Sprintf("%-11s %5s   qty %d", e.Name, domain.FormatRupees(e.Price), e.Pending)
		b.WriteString(m.cursorLine(m.focus == paneCatalog && i == m.catalogCursor, line))
		b.WriteString("\n")
	}

	style := m.styles.Pane
	if m.focus == paneCatalog {
		style = m.styles.Active
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) cartPane() string {
	var b strings.Builder
	b.WriteString(m.styles.Heading.Render("Cart"))
	b.WriteString("\n")

	if m.view.Empty() {
		b.WriteString(m.styles.Muted.Render(domain.EmptyCartText))
		b.WriteString("\n")
	}

	editable := 0
	for _, l := range m.view.Items {
		if !l.Controls {
			b.WriteString("  " + m.styles.Gift.Render(l.Label()+" (free)"))
			b.WriteString("\n")
			continue
		}
		b.WriteString(m.cursorLine(m.focus == paneCart && editable == m.cartCursor, l.Label()))
		b.WriteString("\n")
		editable++
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Total.Render(m.view.TotalLabel()))

	style := m.styles.Pane
	if m.focus == paneCart {
		style = m.styles.Active
	}
	return style.Render(b.String())
}

func (m Model) cursorLine(selected bool, line string) string {
	if selected {
		return m.styles.Selected.Render("> " + line)
	}
	return "  " + line
}

func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(i, 0), n-1)
}
