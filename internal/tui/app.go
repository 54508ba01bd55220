package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"mediaranker/internal/board"
	"mediaranker/internal/catalog"
	"mediaranker/internal/drag"
	"mediaranker/internal/logging"
	"mediaranker/internal/notices"
	"mediaranker/internal/search"
	"mediaranker/internal/session"
	"mediaranker/internal/storage"
)

type mode uint8

const (
	modeBoard mode = iota
	modeSearch
	modeResults
	modeModal
)

// Options configure the terminal board.
type Options struct {
	// ExportPath is where w writes the interchange file.
	ExportPath string
	Search     search.Options
}

// App is the terminal board.
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	input     *tview.InputField
	results   *tview.List
	lists     map[board.CollectionID]*tview.List
	refs      map[board.CollectionID][]board.Ref
	status    *tview.TextView
	noticeBar *tview.TextView

	session *session.Session
	search  *search.Orchestrator
	queue   *notices.Queue
	logger  *slog.Logger
	opts    Options
	ctx     context.Context

	mode    mode
	focus   int
	target  int
	theme   storage.Theme
	running atomic.Bool
}

// New builds the terminal board. Notices sent to queue are shown in the
// notice bar; cat may be nil when no catalog key is configured.
func New(ctx context.Context, sess *session.Session, cat catalog.Catalog, queue *notices.Queue, logger *slog.Logger, opts Options) *App {
	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		input:     tview.NewInputField().SetLabel("Search: "),
		results:   tview.NewList(),
		lists:     make(map[board.CollectionID]*tview.List),
		refs:      make(map[board.CollectionID][]board.Ref),
		status:    tview.NewTextView().SetDynamicColors(true),
		noticeBar: tview.NewTextView().SetDynamicColors(true),
		session:   sess,
		queue:     queue,
		logger:    logging.NewComponentLogger(logger, "tui"),
		opts:      opts,
		ctx:       ctx,
		mode:      modeBoard,
		theme:     storage.ThemeDark,
	}
	if theme, err := sess.Theme(ctx); err == nil {
		a.theme = theme
	}
	if cat != nil {
		searchOpts := opts.Search
		searchOpts.Deliver = func(search.Results) { a.refresh() }
		var sink notices.Sink = notices.Nop{}
		if queue != nil {
			sink = queue
		}
		a.search = search.New(cat, sess, sink, logger, searchOpts)
	}
	for _, id := range board.Collections() {
		list := tview.NewList().ShowSecondaryText(false)
		list.SetBorder(true).SetTitle(" " + collectionTitle(id) + " ")
		a.lists[id] = list
	}
	a.results.ShowSecondaryText(true)
	a.results.SetBorder(true).SetTitle(" Results ")
	a.input.SetChangedFunc(a.onSearchChange)
	a.input.SetDoneFunc(a.onSearchDone)

	sess.Observe(func(string, session.View) { a.refresh() })
	a.layout()
	a.render()
	return a
}

func collectionTitle(id board.CollectionID) string {
	if id == board.Pending {
		return "Your selection"
	}
	return id.Label()
}

func (a *App) layout() {
	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.input, 1, 0, false).
		AddItem(a.results, 0, 1, false)

	tiers := board.Tiers()
	colA := tview.NewFlex().SetDirection(tview.FlexRow)
	colB := tview.NewFlex().SetDirection(tview.FlexRow)
	for i, id := range tiers {
		if i < len(tiers)/2 {
			colA.AddItem(a.lists[id], 0, 1, false)
		} else {
			colB.AddItem(a.lists[id], 0, 1, false)
		}
	}
	grid := tview.NewFlex().
		AddItem(colA, 0, 1, false).
		AddItem(colB, 0, 1, false)
	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(grid, 0, 3, false).
		AddItem(a.lists[board.Pending], 0, 1, true)

	body := tview.NewFlex().
		AddItem(left, 0, 1, false).
		AddItem(right, 0, 2, true)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(a.noticeBar, 1, 0, false).
		AddItem(a.status, 1, 0, false)

	a.pages.AddPage("main", main, true, true)
	a.app.SetRoot(a.pages, true)
	a.app.SetInputCapture(a.handleKey)
	a.app.SetFocus(a.focusedList())
}

// Run starts the event loop and blocks until the user quits.
func (a *App) Run() error {
	a.running.Store(true)
	defer a.running.Store(false)
	defer func() {
		if a.search != nil {
			a.search.Close()
		}
	}()
	return a.app.Run()
}

// SetScreen replaces the terminal, for tests.
func (a *App) SetScreen(screen tcell.Screen) {
	a.app.SetScreen(screen)
}

// refresh re-renders from another goroutine. The event loop runs queued
// updates, so calls made from inside it must not wait.
func (a *App) refresh() {
	if !a.running.Load() {
		return
	}
	go a.app.QueueUpdateDraw(a.render)
}

func (a *App) focusedCollection() board.CollectionID {
	return board.Collections()[a.focus]
}

func (a *App) focusedList() *tview.List {
	return a.lists[a.focusedCollection()]
}

// selectedRef returns the card under the cursor in the focused collection.
func (a *App) selectedRef() (board.Ref, bool) {
	id := a.focusedCollection()
	refs := a.refs[id]
	idx := a.lists[id].GetCurrentItem()
	if idx < 0 || idx >= len(refs) {
		return 0, false
	}
	return refs[idx], true
}

func (a *App) render() {
	view := a.session.View()
	for _, id := range board.Collections() {
		list := a.lists[id]
		current := list.GetCurrentItem()
		list.Clear()
		cards := view.Collection(id).Cards
		refs := make([]board.Ref, 0, len(cards))
		for _, card := range cards {
			list.AddItem(fmt.Sprintf("%s [::d](%s)[::-]", tview.Escape(card.Title), card.Label), "", 0, nil)
			refs = append(refs, card.Ref)
		}
		a.refs[id] = refs
		if current >= len(cards) {
			current = len(cards) - 1
		}
		if current >= 0 {
			list.SetCurrentItem(current)
		}
		list.SetTitle(fmt.Sprintf(" %s (%d) ", collectionTitle(id), len(cards)))
		list.SetBorderColor(a.borderColor(id, view))
	}
	a.renderResults()
	a.renderNotices()
	a.renderStatus(view)
}

func (a *App) borderColor(id board.CollectionID, view session.View) tcell.Color {
	switch {
	case view.Highlight == id:
		return tcell.ColorYellow
	case view.EditMode && a.focusedCollection() == id:
		return tcell.ColorRed
	case a.focusedCollection() == id:
		return tcell.ColorGreen
	case a.theme == storage.ThemeLight:
		return tcell.ColorDarkGray
	default:
		return tcell.ColorWhite
	}
}

func (a *App) renderResults() {
	if a.search == nil {
		a.results.SetTitle(" Results (no catalog key) ")
		return
	}
	res := a.search.Current()
	current := a.results.GetCurrentItem()
	a.results.Clear()
	for _, c := range res.Candidates {
		a.results.AddItem(tview.Escape(c.Item.Title), c.Item.Label(), 0, nil)
	}
	if current >= 0 && current < len(res.Candidates) {
		a.results.SetCurrentItem(current)
	}
	title := "Movies & TV"
	if res.Category == catalog.CategoryPerson {
		title = "People"
	}
	switch {
	case res.Loading:
		title += ": searching..."
	case res.Failed:
		title += ": failed"
	}
	a.results.SetTitle(" " + title + " ")
}

func (a *App) renderNotices() {
	if a.queue == nil {
		return
	}
	pending := a.queue.Drain()
	if len(pending) == 0 {
		return
	}
	last := pending[len(pending)-1]
	a.noticeBar.SetText(fmt.Sprintf("[%s]%s[-]", noticeColor(last.Level), tview.Escape(last.Message)))
}

func noticeColor(level notices.Level) string {
	switch level {
	case notices.LevelSuccess:
		return "green"
	case notices.LevelWarning:
		return "yellow"
	case notices.LevelError:
		return "red"
	default:
		return "white"
	}
}

func (a *App) renderStatus(view session.View) {
	var keys string
	switch {
	case a.mode == modeSearch:
		keys = "[::b]Enter[::-] results  [::b]Esc[::-] board  [::b]Tab[::-] movies/people"
	case a.mode == modeResults:
		keys = "[::b]Enter[::-] add  [::b]Esc[::-] board  [::b]/[::-] edit query"
	case view.Dragging != 0:
		keys = "[::b]←→↑↓[::-]/[::b]1-6[::-]/[::b]p[::-] target  [::b]Enter[::-] drop  [::b]Esc[::-] cancel"
	case view.EditMode:
		keys = "[red::b]EDIT[-::-]  [::b]x[::-]/[::b]Enter[::-] remove  [::b]e[::-] done"
	default:
		keys = "[::b]/[::-] search  [::b]Space[::-] grab  [::b]Tab[::-] next  [::b]e[::-] edit  [::b]w[::-] export  [::b]C[::-] clear  [::b]t[::-] theme  [::b]q[::-] quit"
	}
	a.status.SetText(fmt.Sprintf("%s  [::d]%d items[::-]", keys, view.Total))
}

func (a *App) setMode(m mode) {
	a.mode = m
	switch m {
	case modeSearch:
		a.app.SetFocus(a.input)
	case modeResults:
		a.app.SetFocus(a.results)
	case modeBoard:
		a.app.SetFocus(a.focusedList())
	}
	a.render()
}

func (a *App) moveFocus(delta int) {
	n := len(board.Collections())
	a.focus = ((a.focus+delta)%n + n) % n
	a.app.SetFocus(a.focusedList())
	a.render()
}

// handleKey is the global input capture.
func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if a.mode == modeModal {
		return event
	}
	switch a.mode {
	case modeSearch:
		if event.Key() == tcell.KeyTab {
			a.toggleCategory()
			return nil
		}
		return event
	case modeResults:
		return a.handleResultsKey(event)
	}
	if a.session.DragState() == drag.Dragging {
		return a.handleDragKey(event)
	}
	return a.handleBoardKey(event)
}

func (a *App) handleBoardKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyTab, tcell.KeyRight:
		a.moveFocus(1)
		return nil
	case tcell.KeyBacktab, tcell.KeyLeft:
		a.moveFocus(-1)
		return nil
	case tcell.KeyEnter:
		if a.session.EditMode() {
			a.removeSelected()
		}
		return nil
	case tcell.KeyEscape:
		if a.session.EditMode() {
			a.session.SetEditMode(false)
			a.render()
		}
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q':
			a.app.Stop()
			return nil
		case '/':
			a.setMode(modeSearch)
			return nil
		case ' ':
			a.grab()
			return nil
		case 'e':
			a.session.ToggleEditMode()
			a.render()
			return nil
		case 'x':
			if a.session.EditMode() {
				a.removeSelected()
			}
			return nil
		case 'w':
			a.export()
			return nil
		case 'C':
			a.confirm("Clear every tier and your selection?", func() {
				if err := a.session.Clear(a.ctx); err != nil {
					a.showError(err)
				}
			})
			return nil
		case 't':
			a.toggleTheme()
			return nil
		case 'p':
			a.focus = 0
			a.moveFocus(0)
			return nil
		}
		if id, ok := tierForDigit(event.Rune()); ok {
			a.focus = indexOf(id)
			a.moveFocus(0)
			return nil
		}
	}
	return event
}

func (a *App) handleDragKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyLeft, tcell.KeyUp, tcell.KeyBacktab:
		a.hover(a.target - 1)
	case tcell.KeyRight, tcell.KeyDown, tcell.KeyTab:
		a.hover(a.target + 1)
	case tcell.KeyEnter:
		a.drop()
	case tcell.KeyEscape:
		a.session.CancelDrag()
		a.render()
	case tcell.KeyRune:
		switch r := event.Rune(); {
		case r == 'p':
			a.hover(0)
		case r == ' ':
			a.drop()
		default:
			if id, ok := tierForDigit(r); ok {
				a.hover(indexOf(id))
			}
		}
	}
	return nil
}

func tierForDigit(r rune) (board.CollectionID, bool) {
	tiers := board.Tiers()
	if r < '1' || int(r-'1') >= len(tiers) {
		return "", false
	}
	return tiers[r-'1'], true
}

func indexOf(id board.CollectionID) int {
	for i, c := range board.Collections() {
		if c == id {
			return i
		}
	}
	return 0
}

func (a *App) grab() {
	ref, ok := a.selectedRef()
	if !ok {
		return
	}
	if err := a.session.BeginDrag(ref); err != nil {
		if errors.Is(err, drag.ErrEditMode) && a.queue != nil {
			notices.Info(a.queue, "Leave edit mode (e) to move cards")
		}
		a.render()
		return
	}
	a.hover(a.focus)
}

func (a *App) hover(idx int) {
	n := len(board.Collections())
	a.target = (idx%n + n) % n
	a.session.HoverOn(board.Collections()[a.target])
	a.render()
}

func (a *App) drop() {
	to := board.Collections()[a.target]
	out, err := a.session.DropOn(a.ctx, to)
	if err != nil {
		a.showError(err)
		return
	}
	if out.State == drag.Dropped {
		a.focus = a.target
		a.app.SetFocus(a.focusedList())
	}
	a.render()
	if out.State == drag.Dropped {
		// Keep the cursor on the card that just landed at the tail.
		a.focusedList().SetCurrentItem(-1)
	}
}

func (a *App) removeSelected() {
	ref, ok := a.selectedRef()
	if !ok {
		return
	}
	if _, err := a.session.Click(a.ctx, ref); err != nil {
		a.showError(err)
		return
	}
	a.render()
}

func (a *App) export() {
	data, err := a.session.Export(time.Now())
	if err == nil {
		err = storage.WriteFileAtomic(a.opts.ExportPath, data)
	}
	if err != nil {
		a.showError(err)
		return
	}
	a.logger.Info("board exported", logging.String("path", a.opts.ExportPath))
	a.render()
}

func (a *App) toggleTheme() {
	next := storage.ThemeLight
	if a.theme == storage.ThemeLight {
		next = storage.ThemeDark
	}
	if err := a.session.SetTheme(a.ctx, next); err != nil {
		a.showError(err)
		return
	}
	a.theme = next
	a.render()
}

func (a *App) toggleCategory() {
	if a.search == nil {
		return
	}
	next := catalog.CategoryPerson
	if a.search.Category() == catalog.CategoryPerson {
		next = catalog.CategoryMedia
	}
	a.search.SetCategory(next)
	if next == catalog.CategoryPerson {
		a.input.SetLabel("Actor: ")
	} else {
		a.input.SetLabel("Search: ")
	}
	if text := a.input.GetText(); text != "" {
		a.search.Input(a.ctx, text)
	}
	a.render()
}

func (a *App) onSearchChange(text string) {
	if a.search == nil {
		return
	}
	a.search.Input(a.ctx, text)
}

func (a *App) onSearchDone(key tcell.Key) {
	switch key {
	case tcell.KeyEnter:
		if a.search != nil {
			a.search.Flush()
		}
		a.setMode(modeResults)
	case tcell.KeyEscape:
		a.setMode(modeBoard)
	}
}

func (a *App) handleResultsKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		a.setMode(modeBoard)
		return nil
	case tcell.KeyEnter:
		a.selectResult(a.results.GetCurrentItem())
		return nil
	case tcell.KeyRune:
		if event.Rune() == '/' {
			a.setMode(modeSearch)
			return nil
		}
	}
	return event
}

// selectResult adds a candidate. Person selections call the catalog again,
// so they run off the event loop.
func (a *App) selectResult(idx int) {
	if a.search == nil || idx < 0 {
		return
	}
	a.input.SetText("")
	a.setMode(modeBoard)
	go func() {
		if _, err := a.search.Select(a.ctx, idx); err != nil {
			a.logger.Debug("selection not added", logging.Error(err))
		}
		a.refresh()
	}()
}

func (a *App) showError(err error) {
	a.modal("Error", err.Error(), []string{"OK"}, nil)
}

func (a *App) confirm(message string, onConfirm func()) {
	a.modal("Confirm", message, []string{"Cancel", "OK"}, func(idx int) {
		if idx == 1 && onConfirm != nil {
			onConfirm()
		}
	})
}

func (a *App) modal(title, message string, buttons []string, done func(int)) {
	m := tview.NewModal().
		SetText(message).
		AddButtons(buttons).
		SetDoneFunc(func(buttonIndex int, _ string) {
			a.pages.RemovePage("modal")
			a.mode = modeBoard
			if done != nil {
				done(buttonIndex)
			}
			a.app.SetFocus(a.focusedList())
			a.render()
		})
	m.SetBorder(true).SetTitle(" " + title + " ")
	a.pages.AddPage("modal", m, true, true)
	a.mode = modeModal
	a.app.SetFocus(m)
}
