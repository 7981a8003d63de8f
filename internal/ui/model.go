package ui

import (
	"context"
	"reflect"
	"time"

	"github.com/atomicstack/replay-control/internal/action"
	"github.com/atomicstack/replay-control/internal/backend"
	"github.com/atomicstack/replay-control/internal/data/dispatcher"
	"github.com/atomicstack/replay-control/internal/session"
	"github.com/atomicstack/replay-control/internal/state"
	"github.com/atomicstack/replay-control/internal/theme"
	"github.com/atomicstack/replay-control/internal/ui/command"
	uistate "github.com/atomicstack/replay-control/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
)

type Mode int

const (
	ModeList Mode = iota
	ModePrompt
	ModeConfirm
)

const defaultTitle = "recordings"

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model.
type Options struct {
	// Base bounds every service call issued by the model.
	Base    context.Context
	Service action.Service
	Watcher *backend.Watcher
	// Session is shared with the watcher's Stamp so stale polls can be
	// recognised. NewModel creates one when nil.
	Session    *session.Controller
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	Replay     action.ReplayOptions
	ExportDir  string
}

// Model implements the Bubble Tea model for the recorder control surface.
type Model struct {
	list           *uistate.List
	errMsg         string
	infoMsg        string
	infoExpire     time.Time
	width          int
	height         int
	fixedWidth     bool
	fixedHeight    bool
	backend        *backend.Watcher
	backendState   map[backend.Kind]error
	backendLastErr string
	showFooter     bool
	verbose        bool
	promptForm     *action.PromptForm
	confirmForm    *action.ConfirmForm
	filterCursor   cursor.Model
	// filterCursorDirty restarts the blink after the caret moved.
	filterCursorDirty bool
	pendingRefresh    bool
	lastFile          string

	handlers map[reflect.Type]msgHandler

	base       context.Context
	service    action.Service
	replay     action.ReplayOptions
	exportDir  string
	registry   *action.Registry
	bus        *command.Bus
	mode       Mode
	session    *session.Controller
	catalog    state.CatalogStore
	dispatcher *dispatcher.Dispatcher
}

// NewModel initialises the UI state from opts.
func NewModel(opts Options) *Model {
	controller := opts.Session
	if controller == nil {
		controller = session.NewController()
	}
	catalog := state.NewCatalogStore()
	replay := opts.Replay
	if replay.LoopCount == 0 {
		replay.LoopCount = 1
	}
	if replay.Speed == 0 {
		replay.Speed = 1
	}
	base := opts.Base
	if base == nil {
		base = context.Background()
	}
	m := &Model{
		list:         uistate.NewList(nil),
		registry:     action.BuildRegistry(),
		bus:          command.New(),
		backend:      opts.Watcher,
		backendState: map[backend.Kind]error{},
		showFooter:   opts.ShowFooter,
		verbose:      opts.Verbose,
		mode:         ModeList,
		base:         base,
		service:      opts.Service,
		replay:       replay,
		exportDir:    opts.ExportDir,
		session:      controller,
		catalog:      catalog,
		dispatcher:   dispatcher.New(controller, catalog),
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface. It loads the catalog once and
// starts listening to the watcher.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	if cmd := m.requestRefresh("startup"); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	handled, cmd := m.handleActiveForm(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handled {
		return m, m.finishUpdate(cmds)
	}

	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, m.finishUpdate(cmds)
	}

	return m, m.finishUpdate(cmds)
}

func (m *Model) handleActiveForm(msg tea.Msg) (bool, tea.Cmd) {
	switch m.mode {
	case ModePrompt:
		return m.handlePromptForm(msg)
	case ModeConfirm:
		return m.handleConfirmForm(msg)
	default:
		return false, nil
	}
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):           m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):    m.handleWindowSizeMsg,
		reflect.TypeOf(command.Completed{}):    m.handleCompletedMsg,
		reflect.TypeOf(action.SessionResult{}): m.handleSessionResultMsg,
		reflect.TypeOf(action.CatalogResult{}): m.handleCatalogResultMsg,
		reflect.TypeOf(action.Result{}):        m.handleActionResultMsg,
		reflect.TypeOf(backendEventMsg{}):      m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):       m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// SessionState reports the confirmed recording state.
func (m *Model) SessionState() session.State {
	return m.session.State()
}

// actionContext snapshots what handlers need from the model.
func (m *Model) actionContext(input string, confirmed bool) action.Context {
	return action.Context{
		Base:      m.base,
		Service:   m.service,
		Session:   m.session.State(),
		Selected:  m.list.SelectedNames(),
		Replay:    m.replay,
		ExportDir: m.exportDir,
		Input:     input,
		Confirmed: confirmed,
	}
}
