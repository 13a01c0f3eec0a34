package components

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/allbin/go-lever/internal/tui/colors"
	"github.com/allbin/go-lever/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrForceInput = errors.New("force must be a whole number of grams")

const maxHistory = 100

// ForceInput reads a force in grams for the selected lever
type ForceInput struct {
	textInput     textinput.Model
	maxForce      int
	history       []string
	historyIndex  int
	currentInput  string // Kept while navigating history
	terminalWidth int
}

func NewForceInput(maxForce int) *ForceInput {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("grams (0-%d), enter to apply", maxForce)
	ti.CharLimit = 6
	ti.Prompt = ""
	ti.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return ErrForceInput
			}
		}
		return nil
	}

	return &ForceInput{
		textInput:    ti,
		maxForce:     maxForce,
		historyIndex: -1,
	}
}

func (i *ForceInput) SetWidth(width int) {
	i.terminalWidth = width
	// border(2) + padding(2) + prompt(1) + space(1)
	usableWidth := width - 6
	if usableWidth < 20 {
		usableWidth = 20
	}
	i.textInput.Width = usableWidth
}

func (i *ForceInput) Focus() tea.Cmd { return i.textInput.Focus() }

func (i *ForceInput) Blur() { i.textInput.Blur() }

func (i *ForceInput) Focused() bool { return i.textInput.Focused() }

func (i *ForceInput) Value() string { return i.textInput.Value() }

func (i *ForceInput) SetValue(value string) { i.textInput.SetValue(value) }

// Grams parses the entered force.
func (i *ForceInput) Grams() (int, error) {
	return ParseForce(i.textInput.Value(), i.maxForce)
}

// ParseForce parses a force in grams within [0, max].
func ParseForce(s string, max int) (int, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "g"))
	grams, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrForceInput
	}
	if grams < 0 || grams > max {
		return 0, fmt.Errorf("force %d outside 0-%d g", grams, max)
	}
	return grams, nil
}

func (i *ForceInput) Update(msg tea.Msg) (*ForceInput, tea.Cmd) {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

// View renders the input box; unfocused it shows a hint instead.
func (i *ForceInput) View(port string) string {
	promptStyle := lipgloss.NewStyle().
		Foreground(colors.Blue).
		Bold(true)
	prompt := promptStyle.Render("g")

	var content string
	if i.Focused() {
		target := lipgloss.NewStyle().Foreground(colors.Mauve).Render(port)
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", target, " ", i.textInput.View())
	} else {
		hint := styles.MutedStyle.Render("Press 'f' to enter a force for the selected lever")
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", hint)
	}

	// RoundedBorder and padding take four columns
	adjustedWidth := i.terminalWidth - 4
	if adjustedWidth < 10 {
		adjustedWidth = 10
	}
	inputStyle := styles.InputStyle.
		Width(adjustedWidth).
		AlignHorizontal(lipgloss.Left)
	if i.Focused() {
		inputStyle = inputStyle.BorderForeground(colors.Green)
	}
	return inputStyle.Render(content)
}

// AddToHistory records an applied value, skipping blanks and repeats
func (i *ForceInput) AddToHistory(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if len(i.history) > 0 && i.history[len(i.history)-1] == value {
		return
	}

	i.history = append(i.history, value)
	if len(i.history) > maxHistory {
		i.history = i.history[1:]
	}
	i.historyIndex = -1
	i.currentInput = ""
}

// NavigateHistoryUp moves up in history
func (i *ForceInput) NavigateHistoryUp() {
	if len(i.history) == 0 {
		return
	}
	if i.historyIndex == -1 {
		i.currentInput = i.textInput.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	}
	i.textInput.SetValue(i.history[i.historyIndex])
}

// NavigateHistoryDown moves down in history
func (i *ForceInput) NavigateHistoryDown() {
	if len(i.history) == 0 || i.historyIndex == -1 {
		return
	}
	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.textInput.SetValue(i.history[i.historyIndex])
	} else {
		i.historyIndex = -1
		i.textInput.SetValue(i.currentInput)
		i.currentInput = ""
	}
}
