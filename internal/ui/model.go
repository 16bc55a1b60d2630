package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cwarden/wkcal/internal/calendar"
	"github.com/cwarden/wkcal/internal/config"
	"github.com/cwarden/wkcal/internal/parser"
	"github.com/cwarden/wkcal/internal/todo"
	"github.com/cwarden/wkcal/internal/week"
)

type ViewMode int

const (
	ViewWeek ViewMode = iota
	ViewHelp
	ViewInput
	ViewConfirmClear
)

type Model struct {
	// Core components
	config   *config.Config
	ctrl     *calendar.Controller
	settings *config.SettingsStore
	parser   *parser.DayParser
	logger   *log.Logger
	changes  <-chan string
	now      func() time.Time
	ctx      context.Context

	// View state
	mode     ViewMode
	view     calendar.View
	calendar *calendar.RenderModel

	selectedDay  int
	selectedTask int

	// UI state
	width      int
	height     int
	message    string
	messageErr bool
	messageSeq int

	// Input state
	inputBuffer []rune
	cursorPos   int

	// Styles
	styles Styles
}

type Styles struct {
	Normal    lipgloss.Style
	Selected  lipgloss.Style
	Today     lipgloss.Style
	Weekend   lipgloss.Style
	Header    lipgloss.Style
	Completed lipgloss.Style
	Help      lipgloss.Style
	Message   lipgloss.Style
	Error     lipgloss.Style
	Border    lipgloss.Style
	Active    lipgloss.Style
}

type Option func(*Model)

// WithChanges makes the model reload whenever a path arrives on ch.
func WithChanges(ch <-chan string) Option {
	return func(m *Model) { m.changes = ch }
}

func WithLogger(logger *log.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock replaces time.Now for "today" and day parsing.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

func NewModel(cfg *config.Config, ctrl *calendar.Controller, settings *config.SettingsStore, view calendar.View, opts ...Option) *Model {
	m := &Model{
		config:   cfg,
		ctrl:     ctrl,
		settings: settings,
		parser:   parser.NewDayParser(),
		logger:   log.New(io.Discard),
		now:      time.Now,
		ctx:      context.Background(),
		mode:     ViewWeek,
		view:     view,
		styles:   NewStyles(cfg.Colors),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.reload()
	m.selectToday()
	return m
}

// NewStyles builds the styles from color settings. Values are ANSI color
// numbers, hex codes or basic color names; "reverse" and "default" are
// also understood.
func NewStyles(colors map[string]string) Styles {
	fg := func(s lipgloss.Style, element, fallback string) lipgloss.Style {
		return applyColor(s, colorOr(colors, element, fallback))
	}
	return Styles{
		Normal: fg(lipgloss.NewStyle(), "normal", "252"),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color(colorOr(colors, "today", "220"))).
			Bold(true),
		Today:     fg(lipgloss.NewStyle().Bold(true), "today", "220"),
		Weekend:   fg(lipgloss.NewStyle(), "weekend", "75"),
		Header:    fg(lipgloss.NewStyle().Bold(true).Underline(true), "header", "39"),
		Completed: fg(lipgloss.NewStyle().Strikethrough(true), "completed", "241"),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorOr(colors, "error", "196"))).
			Bold(true).
			Padding(0, 1),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorOr(colors, "border", "238"))),
		Active: lipgloss.NewStyle().
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color(colorOr(colors, "today", "220"))),
	}
}

var colorNames = map[string]string{
	"black": "0", "red": "1", "green": "2", "yellow": "3",
	"blue": "4", "magenta": "5", "cyan": "6", "white": "7",
}

func colorOr(colors map[string]string, element, fallback string) string {
	if c, ok := colors[element]; ok && c != "" {
		return c
	}
	return fallback
}

func applyColor(s lipgloss.Style, spec string) lipgloss.Style {
	switch spec {
	case "default":
		return s
	case "reverse":
		return s.Reverse(true)
	}
	if n, ok := colorNames[spec]; ok {
		spec = n
	}
	return s.Foreground(lipgloss.Color(spec))
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen}
	if m.config.AutoRefresh && m.config.RefreshRate > 0 {
		cmds = append(cmds, m.tickCmd())
	}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tickMsg:
		// Refresh display periodically
		if m.config.AutoRefresh {
			m.reload()
			return m, m.tickCmd()
		}
		return m, nil

	case dataChangedMsg:
		m.logger.Debug("data changed on disk", "path", msg.path)
		if samePath(msg.path, m.settings.Path()) {
			if err := m.settings.Reload(); err != nil {
				m.logger.Warn("reload settings failed", "err", err)
			}
		}
		m.reload()
		return m, waitForChange(m.changes)

	case messageTimeoutMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
			m.messageErr = false
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	switch m.mode {
	case ViewHelp:
		return m.viewHelp()
	case ViewInput:
		return m.viewInput()
	default:
		return m.viewWeek()
	}
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ViewInput:
		return m.handleInputKeys(msg)
	case ViewHelp:
		// Any key returns
		m.mode = ViewWeek
		return m, nil
	case ViewConfirmClear:
		m.mode = ViewWeek
		if msg.String() == "y" || msg.String() == "Y" {
			return m, m.clearCompleted()
		}
		return m, m.showMessage("Clear cancelled")
	}

	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	action := m.config.ActionFor(key)
	if action == "" {
		action = builtinKeys[key]
	}
	return m.handleAction(action)
}

// builtinKeys work regardless of bindings.
var builtinKeys = map[string]string{
	"left":  "prev_day",
	"right": "next_day",
	"up":    "prev_todo",
	"down":  "next_todo",
	" ":     "toggle_todo",
	"enter": "toggle_todo",
}

func (m *Model) handleAction(action string) (tea.Model, tea.Cmd) {
	switch action {
	case "quit":
		return m, tea.Quit

	case "help":
		m.mode = ViewHelp

	case "refresh":
		m.reload()
		return m, m.showMessage("Refreshed")

	case "today":
		m.view.Base = time.Time{}
		m.reload()
		m.selectToday()

	case "next_day":
		m.moveDay(1)

	case "prev_day":
		m.moveDay(-1)

	case "next_todo":
		m.moveTask(1)

	case "prev_todo":
		m.moveTask(-1)

	case "next_week":
		return m, m.shiftWeek(7)

	case "prev_week":
		return m, m.shiftWeek(-7)

	case "toggle_view":
		key := m.selectedKey()
		if m.view.Mode == calendar.ModeDates {
			m.view.Mode = calendar.ModeWeekdays
		} else {
			m.view.Mode = calendar.ModeDates
		}
		m.reload()
		m.selectByWeekday(key)
		return m, m.showMessage(fmt.Sprintf("Showing %s", m.view.Mode))

	case "toggle_week_start":
		return m, m.toggleWeekStart()

	case "add_todo":
		m.mode = ViewInput
		m.inputBuffer = nil
		m.cursorPos = 0

	case "toggle_todo":
		return m, m.toggleSelected()

	case "delete_todo":
		return m, m.deleteSelected()

	case "clear_completed":
		if m.config.ConfirmClear {
			m.mode = ViewConfirmClear
			return m, nil
		}
		return m, m.clearCompleted()
	}

	return m, nil
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = ViewWeek
		return m, nil

	case tea.KeyEnter:
		m.mode = ViewWeek
		input := string(m.inputBuffer)
		m.inputBuffer = nil
		m.cursorPos = 0
		return m, m.addFromInput(input)

	case tea.KeyBackspace:
		if m.cursorPos > 0 {
			m.inputBuffer = append(m.inputBuffer[:m.cursorPos-1], m.inputBuffer[m.cursorPos:]...)
			m.cursorPos--
		}

	case tea.KeyLeft:
		if m.cursorPos > 0 {
			m.cursorPos--
		}

	case tea.KeyRight:
		if m.cursorPos < len(m.inputBuffer) {
			m.cursorPos++
		}

	case tea.KeySpace:
		m.insert(' ')

	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.insert(r)
		}
	}

	return m, nil
}

func (m *Model) insert(r rune) {
	buf := make([]rune, 0, len(m.inputBuffer)+1)
	buf = append(buf, m.inputBuffer[:m.cursorPos]...)
	buf = append(buf, r)
	buf = append(buf, m.inputBuffer[m.cursorPos:]...)
	m.inputBuffer = buf
	m.cursorPos++
}

// addFromInput adds a task to the selected day, or to the day the input
// starts with ("fri call mom", "tomorrow pay rent").
func (m *Model) addFromInput(input string) tea.Cmd {
	if m.calendar == nil {
		return nil
	}
	m.parser.SetNow(m.now())
	parsed, err := m.parser.Parse(input)
	if err != nil {
		return m.showError(err)
	}

	dates := m.view.Mode == calendar.ModeDates
	day := m.selectedKey()
	if parsed.Kind != parser.KindNone {
		day = parsed.Key(dates)
		if dates {
			m.view.Base = parsed.Date
		}
	}
	if parsed.Text == "" {
		return nil
	}

	model, err := m.ctrl.Add(m.ctx, m.view, day, parsed.Text)
	if err != nil {
		return m.showError(err)
	}
	m.setCalendar(model)
	m.selectKey(day)
	if d := m.selectedDayModel(); d != nil {
		m.selectedTask = len(d.Tasks) - 1
	}
	return m.showMessage("Task added")
}

func (m *Model) toggleSelected() tea.Cmd {
	task, day := m.selectedTaskModel()
	if task == nil {
		return nil
	}
	model, err := m.ctrl.ToggleByID(m.ctx, m.view, day, task.ID)
	if err != nil {
		return m.showError(err)
	}
	m.setCalendar(model)
	return nil
}

func (m *Model) deleteSelected() tea.Cmd {
	task, day := m.selectedTaskModel()
	if task == nil {
		return nil
	}
	text := task.Text
	model, err := m.ctrl.RemoveByID(m.ctx, m.view, day, task.ID)
	if err != nil {
		return m.showError(err)
	}
	m.setCalendar(model)
	return m.showMessage(fmt.Sprintf("Deleted %q", text))
}

func (m *Model) clearCompleted() tea.Cmd {
	model, n, err := m.ctrl.ClearCompleted(m.ctx, m.view)
	if err != nil {
		return m.showError(err)
	}
	m.setCalendar(model)
	return m.showMessage(fmt.Sprintf("Cleared %d completed", n))
}

func (m *Model) toggleWeekStart() tea.Cmd {
	next := config.Sunday
	if m.settings.Get().StartOfWeek == config.Sunday {
		next = config.Monday
	}
	key := m.selectedKey()
	if err := m.settings.SetStartOfWeek(next); err != nil {
		return m.showError(err)
	}
	m.reload()
	m.selectKey(key)
	return m.showMessage(fmt.Sprintf("Week starts on %s", next))
}

func (m *Model) shiftWeek(days int) tea.Cmd {
	if m.view.Mode != calendar.ModeDates {
		return m.showMessage("Switch to the dates view to change weeks")
	}
	base := m.view.Base
	if base.IsZero() {
		base = m.now()
	}
	m.view.Base = base.AddDate(0, 0, days)
	m.reload()
	m.clampSelection()
	return nil
}

func (m *Model) reload() {
	model, err := m.ctrl.Render(m.ctx, m.view)
	if err != nil {
		m.logger.Error("render failed", "scope", m.view.Scope, "err", err)
		m.message = fmt.Sprintf("Error: %v", err)
		m.messageErr = true
		return
	}
	m.setCalendar(model)
}

func (m *Model) setCalendar(model *calendar.RenderModel) {
	m.calendar = model
	m.clampSelection()
}

func (m *Model) moveDay(delta int) {
	if m.calendar == nil || len(m.calendar.Days) == 0 {
		return
	}
	n := len(m.calendar.Days)
	m.selectedDay = (m.selectedDay + delta + n) % n
	m.selectedTask = 0
	m.clampSelection()
}

func (m *Model) moveTask(delta int) {
	d := m.selectedDayModel()
	if d == nil || len(d.Tasks) == 0 {
		return
	}
	m.selectedTask = (m.selectedTask + delta + len(d.Tasks)) % len(d.Tasks)
}

func (m *Model) clampSelection() {
	if m.calendar == nil || len(m.calendar.Days) == 0 {
		m.selectedDay, m.selectedTask = 0, 0
		return
	}
	if m.selectedDay >= len(m.calendar.Days) {
		m.selectedDay = len(m.calendar.Days) - 1
	}
	if m.selectedDay < 0 {
		m.selectedDay = 0
	}
	tasks := len(m.calendar.Days[m.selectedDay].Tasks)
	if m.selectedTask >= tasks {
		m.selectedTask = tasks - 1
	}
	if m.selectedTask < 0 {
		m.selectedTask = 0
	}
}

func (m *Model) selectToday() {
	if m.calendar == nil {
		return
	}
	for i, d := range m.calendar.Days {
		if d.Today {
			m.selectedDay = i
			m.selectedTask = 0
			m.clampSelection()
			return
		}
	}
}

func (m *Model) selectKey(key string) {
	if m.calendar == nil {
		return
	}
	for i, d := range m.calendar.Days {
		if d.Key == key {
			m.selectedDay = i
			m.clampSelection()
			return
		}
	}
}

// selectByWeekday keeps the same weekday selected across a view switch.
func (m *Model) selectByWeekday(previousKey string) {
	if m.calendar == nil {
		return
	}
	target, ok := week.ParseWeekday(previousKey)
	if date, isDate := week.ParseDateKey(previousKey, time.Local); isDate {
		target, ok = date.Weekday(), true
	}
	if !ok {
		return
	}
	for i, d := range m.calendar.Days {
		if d.Weekday == target {
			m.selectedDay = i
			m.selectedTask = 0
			m.clampSelection()
			return
		}
	}
}

func (m *Model) selectedKey() string {
	if d := m.selectedDayModel(); d != nil {
		return d.Key
	}
	return ""
}

func (m *Model) selectedDayModel() *calendar.Day {
	if m.calendar == nil || m.selectedDay < 0 || m.selectedDay >= len(m.calendar.Days) {
		return nil
	}
	return &m.calendar.Days[m.selectedDay]
}

func (m *Model) selectedTaskModel() (*todo.Task, string) {
	d := m.selectedDayModel()
	if d == nil || m.selectedTask < 0 || m.selectedTask >= len(d.Tasks) {
		return nil, ""
	}
	return &d.Tasks[m.selectedTask], d.Key
}

func (m *Model) showMessage(msg string) tea.Cmd {
	m.message = msg
	m.messageErr = false
	return m.expireMessage()
}

func (m *Model) showError(err error) tea.Cmd {
	m.logger.Error("operation failed", "scope", m.view.Scope, "err", err)
	var ioErr *todo.IOError
	if errors.As(err, &ioErr) {
		m.message = fmt.Sprintf("Not saved: %v", err)
	} else {
		m.message = fmt.Sprintf("Error: %v", err)
	}
	m.messageErr = true
	return m.expireMessage()
}

func (m *Model) expireMessage() tea.Cmd {
	m.messageSeq++
	seq := m.messageSeq
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return messageTimeoutMsg{seq: seq}
	})
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.config.RefreshRate, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func waitForChange(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return nil
		}
		return dataChangedMsg{path: path}
	}
}

// Message types
type tickMsg struct{}
type messageTimeoutMsg struct {
	seq int
}
type dataChangedMsg struct {
	path string
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
