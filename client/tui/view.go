package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/serioha/ai-chatbot/client/render"
	"github.com/serioha/ai-chatbot/models"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	botLabelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
)

func (m Model) View() string {
	switch m.screen {
	case screenLogin:
		return m.loginView()
	case screenConversations:
		return m.conversationsView()
	default:
		return m.chatView()
	}
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ai-chatbot") + "\n\n")
	mode := "log in"
	if m.registering {
		mode = "register"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("mode: %s (ctrl+r to switch)", mode)) + "\n\n")
	b.WriteString(m.usernameInput.View() + "\n")
	b.WriteString(m.passwordInput.View() + "\n\n")
	if m.waiting {
		b.WriteString(m.spinner.View() + " authenticating...\n")
	}
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg) + "\n")
	}
	b.WriteString(dimStyle.Render("\ntab: switch field • enter: submit • ctrl+c: quit"))
	return b.String()
}

func (m Model) conversationsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Conversations") + "\n\n")
	if m.waiting {
		b.WriteString(m.spinner.View() + " loading...\n")
	}
	if len(m.conversations) == 0 && !m.waiting {
		b.WriteString(dimStyle.Render("No conversations yet. Press 'n' to start one.") + "\n")
	}
	for i, c := range m.conversations {
		line := titleOrFallback(c)
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render(m.errMsg) + "\n")
	}
	b.WriteString(dimStyle.Render("\n↑/↓: select • enter: open • n: new • q: quit"))
	return b.String()
}

func (m Model) chatView() string {
	var b strings.Builder
	b.WriteString(m.viewport.View() + "\n")

	if len(m.questions) > 0 && !m.animating() {
		for i, q := range m.questions {
			b.WriteString(questionStyle.Render(fmt.Sprintf("  %d. %s", i+1, q)) + "\n")
		}
	}

	if m.waiting {
		b.WriteString(m.spinner.View() + " thinking...\n")
	}
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg) + "\n")
	}
	b.WriteString(m.input.View() + "\n")
	b.WriteString(dimStyle.Render("enter: send • 1-4: quick question • esc: back • ctrl+c: quit"))
	return b.String()
}

// renderMessages builds the conversation transcript. The animating message
// shows only the revealed prefix of its plaintext projection; everything
// else is rendered as full markdown.
func (m Model) renderMessages() string {
	var b strings.Builder
	for _, d := range m.decisions {
		label := userLabelStyle.Render("You")
		if models.NormalizeRole(d.Role) == models.RoleAssistant {
			label = botLabelStyle.Render("Assistant")
		}
		b.WriteString(label + "\n")

		if d.Mode == render.AnimateFromEmpty && m.animatingMatches(d.ID) {
			revealed := m.revealTarget
			if m.revealed < len(revealed) {
				revealed = revealed[:m.revealed]
			}
			b.WriteString(string(revealed) + "▌\n\n")
			continue
		}

		if models.NormalizeRole(d.Role) == models.RoleAssistant {
			b.WriteString(m.markdown(d.Display) + "\n\n")
		} else {
			b.WriteString(d.Display + "\n\n")
		}
	}
	if m.pendingEcho != "" {
		b.WriteString(userLabelStyle.Render("You") + "\n")
		b.WriteString(m.pendingEcho + "\n\n")
	}
	return b.String()
}

func (m Model) animating() bool {
	_, ok := m.state.AnimatingID()
	return ok
}

func (m Model) animatingMatches(id uint) bool {
	current, ok := m.state.AnimatingID()
	return ok && current == id
}
