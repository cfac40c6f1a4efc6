// Package tui implements the interactive chat session.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragcli/internal/openai"
)

// Asker is the chat-facing subset of the API client.
type Asker interface {
	Answer(ctx context.Context, storeID string, conversation []openai.Message) (string, error)
}

// Model is the Bubble Tea model for a chat session. Conversation history is
// held purely in memory and lost when the session ends.
type Model struct {
	asker    Asker
	storeID  string
	input    textinput.Model
	viewport viewport.Model
	history  []openai.Message
	status   string
	ready    bool
}

// New creates a chat model bound to one vector store.
func New(asker Asker, storeID string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question (commands: /exit, /clear)"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		asker:    asker,
		storeID:  storeID,
		input:    ti,
		viewport: vp,
		status:   "Chatting with " + storeID + ". Type a question and press Enter.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, hh := historyBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved - hh
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-4)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderHistory())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	switch strings.ToLower(text) {
	case "/exit", "/quit":
		return m, tea.Quit
	case "/clear":
		m.history = nil
		m.status = "(history cleared)"
		m.input.SetValue("")
		m.viewport.SetContent(m.renderHistory())
		return m, nil
	}

	// Sequential blocking call, one turn at a time. A rejected or failed
	// call leaves the history untouched so the turn can be retried.
	conversation := append(append([]openai.Message{}, m.history...), openai.Message{Role: "user", Content: text})
	answer, err := m.asker.Answer(context.Background(), m.storeID, conversation)
	if err != nil {
		m.status = "Error: " + err.Error()
		return m, nil
	}

	m.history = append(m.history,
		openai.Message{Role: "user", Content: text},
		openai.Message{Role: "assistant", Content: answer},
	)
	m.status = "Chatting with " + m.storeID + "."
	m.input.SetValue("")
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	return m, nil
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("rag-cli chat — " + m.storeID)
	history := historyBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + history + "\n" + input + "\n" + status
}

func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return "No messages yet."
	}
	var b strings.Builder
	for _, msg := range m.history {
		switch msg.Role {
		case "user":
			b.WriteString(userStyle.Render("You: ") + msg.Content + "\n\n")
		default:
			b.WriteString(assistantStyle.Render("AI:  ") + msg.Content + "\n\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
