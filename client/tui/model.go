// Package tui is the terminal chat client: a Bubble Tea program over the
// server API, with character-by-character reveal of new assistant replies.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/serioha/ai-chatbot/client/apiclient"
	"github.com/serioha/ai-chatbot/client/render"
	"github.com/serioha/ai-chatbot/models"
)

type screen int

const (
	screenLogin screen = iota
	screenConversations
	screenChat
)

// typingTickMsg drives the character reveal. Generation guards against stale
// timers: a tick from a previous animation or a previous conversation is
// dropped without touching state.
type typingTickMsg struct {
	generation int
}

type loginResultMsg struct {
	user *models.User
	err  error
}

type conversationsMsg struct {
	conversations []models.Conversation
	err           error
}

type messagesMsg struct {
	conversationID uint
	messages       []models.Message
	err            error
}

type sendResultMsg struct {
	conversationID uint
	result         *apiclient.SendMessageResult
	err            error
}

type conversationCreatedMsg struct {
	conversation *models.Conversation
	err          error
}

type questionSelectedMsg string

// Model is the Bubble Tea model for the whole client.
type Model struct {
	client *apiclient.Client

	screen screen
	width  int
	height int
	errMsg string

	// Login form
	usernameInput textinput.Model
	passwordInput textinput.Model
	focusPassword bool
	registering   bool

	// Conversation list
	conversations []models.Conversation
	cursor        int

	// Active conversation
	conversationID uint
	messages       []models.Message
	decisions      []render.Decision
	questions      []string
	pendingEcho    string // optimistic user message awaiting server confirmation

	// Rendering state machine + typing animation
	state          *render.State
	generation     int
	revealTarget   []rune // plaintext projection of the animating message
	revealed       int
	typingInterval time.Duration

	// Quick-question signal path
	bus        *render.QuestionBus
	questionCh chan string

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	waiting  bool

	renderer *glamour.TermRenderer
}

// NewModel builds the client model. typingInterval is the per-character
// reveal delay.
func NewModel(client *apiclient.Client, typingInterval time.Duration) Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	input := textinput.New()
	input.Placeholder = "Type a message..."

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	bus := render.NewQuestionBus()
	questionCh := make(chan string, 4)
	bus.Subscribe(func(q string) {
		select {
		case questionCh <- q:
		default:
		}
	})

	return Model{
		client:         client,
		screen:         screenLogin,
		usernameInput:  username,
		passwordInput:  password,
		input:          input,
		spinner:        sp,
		state:          render.NewState(),
		typingInterval: typingInterval,
		bus:            bus,
		questionCh:     questionCh,
		viewport:       viewport.New(80, 20),
		renderer:       renderer,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenQuestions())
}

// listenQuestions bridges the QuestionBus into the Bubble Tea message loop.
func (m Model) listenQuestions() tea.Cmd {
	ch := m.questionCh
	return func() tea.Msg {
		return questionSelectedMsg(<-ch)
	}
}

func (m Model) typingTick() tea.Cmd {
	generation := m.generation
	return tea.Tick(m.typingInterval, func(time.Time) tea.Msg {
		return typingTickMsg{generation: generation}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 6
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginResultMsg:
		m.waiting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.screen = screenConversations
		return m.refreshConversations()

	case conversationsMsg:
		m.waiting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.conversations = msg.conversations
		if m.cursor >= len(m.conversations) {
			m.cursor = 0
		}
		return m, nil

	case conversationCreatedMsg:
		m.waiting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		return m.openConversation(msg.conversation.ID)

	case messagesMsg:
		m.waiting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		if msg.conversationID != m.conversationID {
			return m, nil // switched away before the response arrived
		}
		m.messages = msg.messages
		return m.applyObservation()

	case sendResultMsg:
		m.waiting = false
		m.pendingEcho = ""
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		if msg.conversationID != m.conversationID {
			return m, nil
		}
		// The authoritative pair from the server replaces the optimistic
		// echo wholesale; no merge logic.
		m.messages = append(m.messages, msg.result.UserMessage, msg.result.AssistantMessage)
		return m.applyObservation()

	case typingTickMsg:
		if msg.generation != m.generation {
			return m, nil // stale timer from a finished or cancelled reveal
		}
		if id, ok := m.state.AnimatingID(); !ok || id == 0 {
			return m, nil
		}
		m.revealed++
		if m.revealed >= len(m.revealTarget) {
			if id, ok := m.state.AnimatingID(); ok {
				m.state.FinishAnimation(id)
			}
			m.generation++
			m.refreshViewport()
			return m, nil
		}
		m.refreshViewport()
		return m, m.typingTick()

	case questionSelectedMsg:
		m.input.SetValue(string(msg))
		m.input.Focus()
		return m, m.listenQuestions()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	}

	switch m.screen {
	case screenLogin:
		return m.handleLoginKey(msg)
	case screenConversations:
		return m.handleConversationsKey(msg)
	default:
		return m.handleChatKey(msg)
	}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusPassword = !m.focusPassword
		if m.focusPassword {
			m.usernameInput.Blur()
			m.passwordInput.Focus()
		} else {
			m.passwordInput.Blur()
			m.usernameInput.Focus()
		}
		return m, nil
	case "ctrl+r":
		m.registering = !m.registering
		return m, nil
	case "enter":
		username := strings.TrimSpace(m.usernameInput.Value())
		password := m.passwordInput.Value()
		if username == "" || password == "" {
			m.errMsg = "username and password are required"
			return m, nil
		}
		m.waiting = true
		m.errMsg = ""
		client := m.client
		registering := m.registering
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			var user *models.User
			var err error
			if registering {
				user, err = client.Register(username, password)
			} else {
				user, err = client.Login(username, password)
			}
			return loginResultMsg{user: user, err: err}
		})
	}

	var cmd tea.Cmd
	if m.focusPassword {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	} else {
		m.usernameInput, cmd = m.usernameInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleConversationsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.conversations)-1 {
			m.cursor++
		}
	case "n":
		m.waiting = true
		client := m.client
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			conversation, err := client.CreateConversation()
			return conversationCreatedMsg{conversation: conversation, err: err}
		})
	case "enter":
		if len(m.conversations) > 0 {
			return m.openConversation(m.conversations[m.cursor].ID)
		}
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Leaving the conversation cancels any in-flight reveal: the state
		// reset plus the generation bump orphans pending ticks.
		m.state.Reset()
		m.generation++
		m.conversationID = 0
		m.messages = nil
		m.decisions = nil
		m.questions = nil
		m.screen = screenConversations
		return m.refreshConversations()
	case "enter":
		content := strings.TrimSpace(m.input.Value())
		if content == "" || m.waiting {
			return m, nil
		}
		m.input.SetValue("")
		m.waiting = true
		m.errMsg = ""
		m.pendingEcho = content
		m.refreshViewport()
		client := m.client
		conversationID := m.conversationID
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			result, err := client.SendMessage(conversationID, content, "")
			return sendResultMsg{conversationID: conversationID, result: result, err: err}
		})
	case "1", "2", "3", "4":
		if m.input.Value() == "" && len(m.questions) > 0 {
			idx := int(msg.String()[0] - '1')
			if idx < len(m.questions) {
				m.bus.Publish(m.questions[idx])
				return m, nil
			}
		}
	}

	var inputCmd, viewportCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, viewportCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, viewportCmd)
}

func (m Model) refreshConversations() (tea.Model, tea.Cmd) {
	m.waiting = true
	client := m.client
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		conversations, err := client.Conversations()
		return conversationsMsg{conversations: conversations, err: err}
	})
}

func (m Model) openConversation(conversationID uint) (tea.Model, tea.Cmd) {
	// Switch detection in the state machine handles the reset, but the
	// timer generation must be bumped here so old ticks die with the view.
	m.generation++
	m.conversationID = conversationID
	m.messages = nil
	m.decisions = nil
	m.questions = nil
	m.screen = screenChat
	m.input.Focus()
	m.waiting = true
	client := m.client
	return m, tea.Batch(m.spinner.Tick, textinput.Blink, func() tea.Msg {
		messages, err := client.Messages(conversationID)
		return messagesMsg{conversationID: conversationID, messages: messages, err: err}
	})
}

// applyObservation feeds the current message list through the rendering
// state machine and starts the typing animation when a new assistant message
// came in.
func (m Model) applyObservation() (tea.Model, tea.Cmd) {
	views := make([]render.MessageView, 0, len(m.messages))
	for _, msg := range m.messages {
		views = append(views, render.MessageView{ID: msg.ID, Role: msg.Role, Content: msg.Content})
	}
	m.decisions = m.state.Observe(m.conversationID, views)

	m.questions = nil
	for i := len(m.decisions) - 1; i >= 0; i-- {
		if models.NormalizeRole(m.decisions[i].Role) == models.RoleAssistant {
			m.questions = m.decisions[i].Questions
			break
		}
	}

	var cmd tea.Cmd
	if id, ok := m.state.AnimatingID(); ok {
		for _, d := range m.decisions {
			if d.ID == id {
				m.generation++
				m.revealTarget = []rune(render.PlainText(d.Display))
				m.revealed = 0
				cmd = m.typingTick()
				break
			}
		}
	}
	m.refreshViewport()
	return m, cmd
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func (m *Model) markdown(text string) string {
	if m.renderer == nil {
		return text
	}
	rendered, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(rendered, "\n")
}

func titleOrFallback(c models.Conversation) string {
	if c.Title == "" {
		return fmt.Sprintf("Conversation %d", c.ID)
	}
	return c.Title
}
