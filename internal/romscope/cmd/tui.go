package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"romscope/internal/analysis"
	"romscope/internal/rom"
	"romscope/internal/romscope/styles"
	"romscope/internal/symbols"
	"romscope/internal/ui/colorize"
)

type viewMode int

const (
	viewFunctions viewMode = iota
	viewListing
	viewDetails
)

// funcItem is one recovered function in the browser list.
type funcItem struct {
	info analysis.FuncInfo
	name string // symbol name or sub_XXXXXXXX
}

func (i funcItem) Title() string {
	return fmt.Sprintf("%08x  %s", i.info.Range.Start, i.name)
}

func (i funcItem) Description() string { return "" }
func (i funcItem) FilterValue() string { return i.Title() }

type funcDelegate struct{}

func (d funcDelegate) Height() int                               { return 1 }
func (d funcDelegate) Spacing() int                              { return 0 }
func (d funcDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d funcDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(funcItem)
	if !ok {
		return
	}

	indicator := " "
	addrStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if index == m.Index() {
		indicator = ">"
		addrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	}

	sizeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	fmt.Fprintf(w, " %s  %s  %-32s %s",
		indicator,
		addrStyle.Render(fmt.Sprintf("%08x", i.info.Range.Start)),
		i.name,
		sizeStyle.Render(fmt.Sprintf("%d bytes", i.info.Range.ByteSize())))
}

type model struct {
	funcList    list.Model
	listingView viewport.Model
	detailsView viewport.Model
	spin        spinner.Model
	mode        viewMode

	image   *rom.Rom
	syms    *symbols.Table
	index   *analysis.Index
	funcs   []analysis.FuncInfo
	header  rom.Header
	loading bool
	width   int
	height  int
}

type indexBuiltMsg struct {
	index *analysis.Index
	funcs []analysis.FuncInfo
}

// buildIndexCmd builds the cross-reference index and the function
// sweep off the UI goroutine.
func buildIndexCmd(image *rom.Rom) tea.Cmd {
	return func() tea.Msg {
		idx := analysis.BuildIndexParallel(image, 0)
		funcs := analysis.FindFunctions(image, idx, nil)
		return indexBuiltMsg{index: idx, funcs: funcs}
	}
}

func newModel(image *rom.Rom, syms *symbols.Table) model {
	lv := viewport.New()
	lv.SetWidth(80)
	lv.SetHeight(24)

	dv := viewport.New()
	dv.SetWidth(80)
	dv.SetHeight(24)

	fl := list.New([]list.Item{}, funcDelegate{}, 80, 24)
	fl.SetShowStatusBar(false)
	fl.SetFilteringEnabled(true)
	fl.Title = "Functions"
	fl.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	fl.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	header, _ := image.Header()

	return model{
		funcList:    fl,
		listingView: lv,
		detailsView: dv,
		spin:        s,
		mode:        viewFunctions,
		image:       image,
		syms:        syms,
		header:      header,
		loading:     true,
		width:       80,
		height:      24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		buildIndexCmd(m.image),
		m.spin.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case indexBuiltMsg:
		m.index = msg.index
		m.funcs = msg.funcs
		m.loading = false
		m.populateFunctionList()
		return m, nil

	case spinner.TickMsg:
		m.spin, cmd = m.spin.Update(msg)
		if m.loading {
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.funcList.SetWidth(msg.Width)
			m.funcList.SetHeight(msg.Height - 2)
			m.listingView.SetWidth(msg.Width)
			m.listingView.SetHeight(msg.Height - 2)
			m.detailsView.SetWidth(msg.Width)
			m.detailsView.SetHeight(msg.Height - 2)
		}

	case tea.KeyMsg:
		if m.mode == viewFunctions && m.funcList.FilterState() == list.Filtering {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			}
			m.funcList, cmd = m.funcList.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "f", "esc":
			m.mode = viewFunctions
			return m, nil
		case "enter":
			if m.mode == viewFunctions && !m.loading {
				if item, ok := m.funcList.SelectedItem().(funcItem); ok {
					m.listingView.SetContent(m.renderListing(item))
					m.listingView.GotoTop()
					m.mode = viewListing
				}
			}
			return m, nil
		case "d":
			if m.mode == viewFunctions && !m.loading {
				if item, ok := m.funcList.SelectedItem().(funcItem); ok {
					m.detailsView.SetContent(m.renderDetails(item))
					m.detailsView.GotoTop()
					m.mode = viewDetails
				}
			}
			return m, nil
		}
	}

	switch m.mode {
	case viewFunctions:
		m.funcList, cmd = m.funcList.Update(msg)
	case viewListing:
		m.listingView, cmd = m.listingView.Update(msg)
	case viewDetails:
		m.detailsView, cmd = m.detailsView.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	title := lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true).
		Render(fmt.Sprintf("romscope  %s [%s]", m.header.Title, m.header.GameCode))

	if m.loading {
		return fmt.Sprintf("%s\n\n %s indexing %d bytes...\n", title, m.spin.View(), m.image.Len())
	}

	status := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(
		fmt.Sprintf("%d functions · %d pool constants · %d call targets · enter: listing  d: details  f: back  q: quit",
			len(m.funcs), m.index.NumValues(), m.index.NumTargets()))

	var body string
	switch m.mode {
	case viewListing:
		body = m.listingView.View()
	case viewDetails:
		body = m.detailsView.View()
	default:
		body = m.funcList.View()
	}
	return fmt.Sprintf("%s\n%s\n%s", title, body, status)
}

// populateFunctionList fills the browser list, naming entries from
// the symbol table where known.
func (m *model) populateFunctionList() {
	items := make([]list.Item, 0, len(m.funcs))
	for _, f := range m.funcs {
		name := fmt.Sprintf("sub_%08X", f.Range.Start)
		if m.syms != nil {
			if sym, ok := m.syms.Name(f.Range.Start); ok {
				name = sym
			}
		}
		items = append(items, funcItem{info: f, name: name})
	}
	m.funcList.SetItems(items)
}

// renderListing produces the colorized disassembly of one function.
func (m *model) renderListing(item funcItem) string {
	lines := analysis.DisassembleRange(m.image, item.info.Range.Start, item.info.Range.ByteSize(), m.syms)
	var b strings.Builder
	b.WriteString(item.name + ":\n")
	for _, l := range lines {
		b.WriteString(colorize.InstructionLine(l.String()))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderDetails produces the markdown summary pane for one function.
func (m *model) renderDetails(item funcItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", item.name)
	fmt.Fprintf(&b, "- range: `0x%08x`..`0x%08x` (%d bytes)\n",
		item.info.Range.Start, item.info.Range.End, item.info.Range.ByteSize())
	fmt.Fprintf(&b, "- confidence: %.2f\n", item.info.Range.Confidence)
	fmt.Fprintf(&b, "- callers: %d\n\n", len(m.index.CallersOf(item.info.Range.Start)))

	if len(item.info.Literals) > 0 {
		b.WriteString("## Pool constants\n\n")
		for _, v := range item.info.Literals {
			fmt.Fprintf(&b, "- `0x%08x` %s", v, rom.RegionOf(v))
			if m.syms != nil {
				if sym, ok := m.syms.Name(v); ok {
					fmt.Fprintf(&b, " `<%s>`", sym)
				}
			}
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	if len(item.info.Calls) > 0 {
		b.WriteString("## Calls\n\n")
		for _, t := range item.info.Calls {
			name := fmt.Sprintf("sub_%08X", t)
			if m.syms != nil {
				if sym, ok := m.syms.Name(t); ok {
					name = sym
				}
			}
			fmt.Fprintf(&b, "- `0x%08x` %s\n", t, name)
		}
	}

	r := styles.MarkdownRenderer(m.width)
	if r == nil {
		return b.String()
	}
	out, err := r.Render(b.String())
	if err != nil {
		return b.String()
	}
	return out
}
