// Package editor is the interactive timeline editor: a bubbletea program
// that drives the project, the playback clock and the autosave manager.
package editor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mta-tools/mta/internal/catalog"
	"github.com/mta-tools/mta/internal/persist"
	"github.com/mta-tools/mta/internal/playback"
	"github.com/mta-tools/mta/internal/timeline"
	"github.com/mta-tools/mta/internal/tui/theme"
)

// Layout: three fixed rows (header, palette, ruler) precede the layer rows,
// and a gutter holding layer names precedes the track columns.
const (
	gutterWidth  = 18
	headerRows   = 3
	rulerRow     = headerRows - 1
	paletteSize  = 9
	statusTTL    = 4 * time.Second
	tickInterval = 100 * time.Millisecond
)

// TickMsg drives playhead redraws.
type TickMsg time.Time

// ClockMsg carries a non-poll clock update (seek, state change, media load).
type ClockMsg playback.Update

// SavedMsg reports a save attempt.
type SavedMsg struct {
	At     time.Time
	Err    error
	Manual bool
}

// CatalogMsg delivers a reloaded category catalog.
type CatalogMsg struct {
	Catalog *catalog.Catalog
	Err     error
}

type previewMode int

const (
	previewNone previewMode = iota
	previewText
	previewTable
	previewJSON
	previewModes
)

func (p previewMode) String() string {
	switch p {
	case previewText:
		return "summary"
	case previewTable:
		return "presence table"
	case previewJSON:
		return "json"
	default:
		return ""
	}
}

// Options wires an editor session.
type Options struct {
	Project     *timeline.Project
	Catalog     *catalog.Catalog
	Clock       *playback.Clock
	Manager     *persist.Manager // nil disables manual saves
	Mapper      timeline.Mapper
	Interaction timeline.InteractionConfig
	Zoom        float64
	CellPixels  float64 // pixels per terminal column
	Step        int
	Theme       theme.Theme
	CatalogFile string    // reloaded on change when set
	Notifier    *Notifier // delivers background messages to the program
	Now         func() time.Time

	// ProgramOptions are appended to the defaults used by Run.
	ProgramOptions []tea.ProgramOption
}

// Model is the editor model
type Model struct {
	project  *timeline.Project
	catalog  *catalog.Catalog
	clock    *playback.Clock
	manager  *persist.Manager
	viewport *timeline.Viewport
	ctrl     *timeline.Controller
	keys     KeyMap
	theme    theme.Theme
	now      func() time.Time

	width      int
	height     int
	cellPixels float64
	scrollPx   float64
	step       int
	layerIdx   int
	selected   string // block id
	catIdx     int    // index into the visible categories, -1 for none
	page       int    // palette page

	playhead float64
	playing  bool
	muted    bool

	form          *blockForm
	preview       previewMode
	previewOffset int

	status    string
	statusErr bool
	statusAt  time.Time
	quitting  bool
}

// New creates an editor model. Zero option values fall back to defaults.
func New(opts Options) Model {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Mapper.K <= 0 {
		opts.Mapper = timeline.DefaultMapper()
	}
	if opts.Interaction == (timeline.InteractionConfig{}) {
		opts.Interaction = timeline.DefaultInteractionConfig()
	}
	if opts.CellPixels <= 0 {
		opts.CellPixels = opts.Mapper.K
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Theme.Name == "" {
		opts.Theme = theme.Current()
	}

	vp := timeline.NewViewport(opts.Mapper)
	if opts.Zoom > 0 {
		vp.SetZoom(opts.Zoom)
	}
	vp.SetTotalDuration(opts.Project.Video().Duration)
	opts.Clock.SetTotal(vp.TotalDuration())

	m := Model{
		project:    opts.Project,
		catalog:    opts.Catalog,
		clock:      opts.Clock,
		manager:    opts.Manager,
		viewport:   vp,
		ctrl:       timeline.NewController(opts.Mapper, opts.Interaction),
		keys:       DefaultKeyMap(),
		theme:      opts.Theme,
		now:        opts.Now,
		width:      100,
		height:     30,
		cellPixels: opts.CellPixels,
		step:       timeline.ClampStep(opts.Step),
		catIdx:     -1,
		playhead:   opts.Clock.Time(),
		playing:    opts.Clock.Playing(),
	}
	if len(m.categories()) > 0 {
		m.catIdx = 0
	}
	return m
}

// Controller exposes the gesture controller, for teardown.
func (m Model) Controller() *timeline.Controller {
	return m.ctrl
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		m.playhead = m.clock.Time()
		m.playing = m.clock.Playing()
		m.muted = m.clock.Muted()
		m.follow()
		return m, m.tick()

	case ClockMsg:
		m.playhead = msg.Time
		m.playing = msg.Playing
		if msg.Kind == playback.UpdateLoaded {
			m.applyLoaded(playback.Update(msg))
		}
		return m, nil

	case SavedMsg:
		if msg.Err != nil {
			m.setStatus("save failed: "+msg.Err.Error(), true)
		} else if msg.Manual {
			m.setStatus("saved", false)
		}
		return m, nil

	case CatalogMsg:
		if msg.Err != nil {
			m.setStatus("catalog reload failed: "+msg.Err.Error(), true)
			return m, nil
		}
		m.catalog = msg.Catalog
		m.clampCategory()
		m.setStatus(fmt.Sprintf("catalog reloaded (%d categories)", msg.Catalog.Len()), false)
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.preview != previewNone {
			return m.updatePreview(msg)
		}
		return m.handleKey(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
	m.statusAt = m.now()
}

func (m *Model) applyLoaded(u playback.Update) {
	v := m.project.Video()
	if u.Title != "" {
		v.Title = u.Title
	}
	if u.Duration > 0 {
		v.Duration = u.Duration
		m.viewport.SetTotalDuration(u.Duration)
	}
	m.project.SetVideo(v)
}

// follow keeps the playhead on screen while playing.
func (m *Model) follow() {
	if !m.playing {
		return
	}
	col := m.columnAt(m.viewport.PlayheadX(m.playhead))
	if col >= 0 && col < m.trackWidth() {
		return
	}
	m.scrollPx = m.viewport.PlayheadX(m.playhead) - float64(m.trackWidth())*m.cellPixels/4
	m.clampScroll()
}

func (m Model) trackWidth() int {
	w := m.width - gutterWidth
	if w < 10 {
		w = 10
	}
	return w
}

// pxAtColumn converts a screen column into timeline pixels.
func (m Model) pxAtColumn(x int) float64 {
	return m.scrollPx + float64(x-gutterWidth)*m.cellPixels
}

// columnAt converts timeline pixels into a track column (0-based).
func (m Model) columnAt(px float64) int {
	return int(math.Floor((px - m.scrollPx) / m.cellPixels))
}

func (m *Model) clampScroll() {
	maxScroll := math.Max(m.viewport.Width()-float64(m.trackWidth())*m.cellPixels, 0)
	m.scrollPx = math.Min(math.Max(m.scrollPx, 0), maxScroll)
}

func (m *Model) scrollBy(cols int) {
	m.scrollPx += float64(cols) * m.cellPixels
	m.clampScroll()
}

func (m Model) visibleLayers() []timeline.LayerDef {
	return timeline.VisibleLayers(m.project.Defs(), m.step)
}

func (m Model) layerRowY(i int) int {
	return headerRows + i
}

func (m Model) layerAtRow(y int) (int, bool) {
	i := y - headerRows
	if i < 0 || i >= len(m.visibleLayers()) {
		return 0, false
	}
	return i, true
}

func (m Model) currentLayer() (*timeline.Layer, bool) {
	layers := m.visibleLayers()
	if len(layers) == 0 {
		return nil, false
	}
	idx := m.layerIdx
	if idx >= len(layers) {
		idx = len(layers) - 1
	}
	return m.project.Layer(layers[idx].ID)
}

func (m Model) categories() []catalog.Category {
	return m.catalog.VisibleCategories(m.step)
}

func (m Model) pageCount() int {
	n := len(m.categories())
	if n == 0 {
		return 1
	}
	return (n + paletteSize - 1) / paletteSize
}

func (m Model) selectedCategory() (catalog.Category, bool) {
	cats := m.categories()
	if m.catIdx < 0 || m.catIdx >= len(cats) {
		return catalog.Category{}, false
	}
	return cats[m.catIdx], true
}

func (m *Model) clampCategory() {
	n := len(m.categories())
	switch {
	case n == 0:
		m.catIdx = -1
	case m.catIdx >= n || m.catIdx < 0:
		m.catIdx = 0
	}
	if m.page >= m.pageCount() {
		m.page = m.pageCount() - 1
	}
}

func (m *Model) setStep(step int) {
	m.step = timeline.ClampStep(step)
	if n := len(m.visibleLayers()); m.layerIdx >= n {
		m.layerIdx = n - 1
	}
	m.clampCategory()
	owner, _, found := m.project.FindBlock(m.selected)
	if cur, ok := m.currentLayer(); !found || !ok || owner.Def.ID != cur.Def.ID {
		m.selected = ""
	}
}

// drop adds the selected category to store at pixel px, snapping the start
// to a whole second.
func (m *Model) drop(store *timeline.BlockStore, px float64) {
	cat, ok := m.selectedCategory()
	if !ok {
		m.setStatus("pick a category first (1-9)", true)
		return
	}
	dur := cat.DefaultDuration
	if dur <= 0 {
		dur = catalog.FallbackDuration
	}
	start := m.viewport.Mapper().DropTime(px, m.viewport.Zoom())
	b := store.Add(cat.Type, cat.Label, start, dur)
	m.selected = b.ID
	m.setStatus(fmt.Sprintf("added %s at %s", b.Label, timeline.FormatClock(b.StartTime)), false)
}

// blockAt returns the topmost block drawn in track column col. Later
// blocks draw over earlier ones, so the search runs backwards.
func (m Model) blockAt(store *timeline.BlockStore, col int) (timeline.Block, bool) {
	blocks := store.Sorted()
	for i := len(blocks) - 1; i >= 0; i-- {
		if from, to := m.blockColumns(blocks[i]); col >= from && col < to {
			return blocks[i], true
		}
	}
	return timeline.Block{}, false
}

// pressPoint clamps px into b's pixel span so a click anywhere in a drawn
// column lands on the block.
func (m Model) pressPoint(b timeline.Block, px float64) float64 {
	left := m.viewport.ToPixels(b.StartTime)
	right := m.viewport.ToPixels(b.EndTime())
	return math.Min(math.Max(px, left), right)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.form != nil || m.preview != previewNone {
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionMotion:
		if _, active := m.ctrl.Active(); active {
			m.ctrl.Move(m.pxAtColumn(msg.X))
		}
		return m, nil
	case tea.MouseActionRelease:
		if _, active := m.ctrl.Active(); active {
			m.ctrl.Move(m.pxAtColumn(msg.X))
			m.ctrl.End()
		}
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelLeft:
		m.scrollBy(-m.trackWidth() / 8)
		return m, nil
	case tea.MouseButtonWheelDown, tea.MouseButtonWheelRight:
		m.scrollBy(m.trackWidth() / 8)
		return m, nil
	}

	if msg.Y == rulerRow && msg.X >= gutterWidth && msg.Button == tea.MouseButtonLeft {
		m.seek(m.viewport.ToTime(m.pxAtColumn(msg.X)))
		return m, nil
	}

	idx, ok := m.layerAtRow(msg.Y)
	if !ok {
		return m, nil
	}
	m.layerIdx = idx
	layer, ok := m.currentLayer()
	if !ok || msg.X < gutterWidth {
		return m, nil
	}
	px := m.pxAtColumn(msg.X)

	switch msg.Button {
	case tea.MouseButtonLeft:
		if b, hit := m.blockAt(layer.Blocks, msg.X-gutterWidth); hit {
			m.selected = b.ID
			if _, err := m.ctrl.Press(layer.Blocks, b.ID, m.pressPoint(b, px), m.viewport.Zoom()); err != nil {
				m.setStatus(err.Error(), true)
			}
			return m, nil
		}
		m.selected = ""
		m.seek(m.viewport.ToTime(px))
	case tea.MouseButtonRight:
		m.drop(layer.Blocks, px)
	}
	return m, nil
}

func (m *Model) seek(t float64) {
	m.clock.Seek(t)
	m.playhead = m.clock.Time()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.ctrl.Reset()
		return m, tea.Quit

	case key.Matches(msg, m.keys.PlayPause):
		if !m.clock.Ready() {
			m.setStatus("player not ready", true)
			return m, nil
		}
		m.clock.Toggle()
		m.playing = m.clock.Playing()

	case key.Matches(msg, m.keys.ZoomIn), key.Matches(msg, m.keys.ZoomOut):
		left := m.viewport.ToTime(m.scrollPx)
		if key.Matches(msg, m.keys.ZoomIn) {
			m.viewport.ZoomIn()
		} else {
			m.viewport.ZoomOut()
		}
		m.scrollPx = m.viewport.ToPixels(left)
		m.clampScroll()

	case key.Matches(msg, m.keys.ScrollLeft):
		m.scrollBy(-m.trackWidth() / 4)

	case key.Matches(msg, m.keys.ScrollRight):
		m.scrollBy(m.trackWidth() / 4)

	case key.Matches(msg, m.keys.LayerUp):
		if m.layerIdx > 0 {
			m.layerIdx--
			m.selected = ""
		}

	case key.Matches(msg, m.keys.LayerDown):
		if m.layerIdx < len(m.visibleLayers())-1 {
			m.layerIdx++
			m.selected = ""
		}

	case key.Matches(msg, m.keys.NextBlock):
		m.selectNextBlock()

	case key.Matches(msg, m.keys.PickNum):
		n := int(msg.String()[0] - '0')
		idx := m.page*paletteSize + n - 1
		if cats := m.categories(); idx < len(cats) {
			m.catIdx = idx
			m.setStatus("category: "+cats[idx].Label, false)
		}

	case key.Matches(msg, m.keys.PalettePrev):
		if m.page > 0 {
			m.page--
		}

	case key.Matches(msg, m.keys.PaletteNext):
		if m.page < m.pageCount()-1 {
			m.page++
		}

	case key.Matches(msg, m.keys.Drop):
		if layer, ok := m.currentLayer(); ok {
			m.drop(layer.Blocks, m.viewport.PlayheadX(m.playhead))
		}

	case key.Matches(msg, m.keys.Edit):
		return m.openForm()

	case key.Matches(msg, m.keys.Delete):
		if layer, b, ok := m.project.FindBlock(m.selected); ok {
			layer.Blocks.Remove(b.ID)
			m.selected = ""
			m.setStatus("deleted "+b.Label, false)
		}

	case key.Matches(msg, m.keys.Save):
		return m, m.saveCmd()

	case key.Matches(msg, m.keys.Preview):
		m.preview = (m.preview + 1) % previewModes
		m.previewOffset = 0

	case key.Matches(msg, m.keys.Mute):
		m.clock.ToggleMute()
		m.muted = m.clock.Muted()

	case key.Matches(msg, m.keys.NextStep):
		m.setStep(m.step + 1)

	case key.Matches(msg, m.keys.PrevStep):
		m.setStep(m.step - 1)

	case key.Matches(msg, m.keys.Rewind):
		m.seek(0)
		m.scrollPx = 0
	}
	return m, nil
}

func (m *Model) selectNextBlock() {
	layer, ok := m.currentLayer()
	if !ok {
		return
	}
	blocks := layer.Blocks.Sorted()
	if len(blocks) == 0 {
		m.selected = ""
		return
	}
	next := 0
	for i, b := range blocks {
		if b.ID == m.selected {
			next = (i + 1) % len(blocks)
			break
		}
	}
	m.selected = blocks[next].ID
}

func (m Model) openForm() (tea.Model, tea.Cmd) {
	layer, _, ok := m.project.FindBlock(m.selected)
	if !ok {
		m.setStatus("select a block first (tab or click)", true)
		return m, nil
	}
	form, cmd, err := newBlockForm(layer.Blocks, m.selected)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.form = form
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	res, cmd := m.form.update(msg)
	if !res.done {
		return m, cmd
	}
	m.form = nil
	switch {
	case res.err != nil:
		m.setStatus(res.err.Error(), true)
	case res.saved && len(res.ignored) > 0:
		m.setStatus(fmt.Sprintf("saved %s (kept previous %v)", res.block.Label, res.ignored), false)
	case res.saved:
		m.setStatus("saved "+res.block.Label, false)
	}
	return m, cmd
}

func (m Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "esc", key.Matches(msg, m.keys.Quit):
		m.preview = previewNone
	case key.Matches(msg, m.keys.Preview):
		m.preview = (m.preview + 1) % previewModes
		m.previewOffset = 0
	case key.Matches(msg, m.keys.LayerUp):
		if m.previewOffset > 0 {
			m.previewOffset--
		}
	case key.Matches(msg, m.keys.LayerDown):
		m.previewOffset++
	}
	return m, nil
}

func (m Model) saveCmd() tea.Cmd {
	mgr := m.manager
	if mgr == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := mgr.Save(ctx)
		return SavedMsg{At: time.Now(), Err: err, Manual: true}
	}
}

// document snapshots the project as an export document.
func (m Model) document() persist.Document {
	doc := persist.FromSnapshot(m.project.Snapshot(), m.now())
	doc.SchemaVersion = persist.SchemaVersion
	return doc
}
