// Package ui is the interactive container and image browser behind
// `shellkit docker browse`.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"shellkit/internal/docker"
	"shellkit/internal/filter"
	"shellkit/internal/logs"
	"shellkit/internal/shell"
)

// Engine is what the browser needs from the Docker client.
type Engine interface {
	docker.Engine
	ContainerLogs(ctx context.Context, id string, tail string) (string, error)
	DescribeContainer(ctx context.Context, id string) (string, error)
	DescribeImage(ctx context.Context, id string) (string, error)
}

// row is one selectable table line: a container or an image.
type row struct {
	container *docker.ContainerInfo
	image     *docker.ImageInfo
}

func (r row) id() string {
	if r.container != nil {
		return r.container.ID
	}
	return r.image.ID
}

func (r row) label() string {
	if r.container != nil {
		if r.container.Names != "" {
			return r.container.Names
		}
		return r.container.ID
	}
	return r.image.Ref()
}

// line renders the row in the list format understood by docker.ParseSelection.
func (r row) line() string {
	if r.container != nil {
		return "C\t\t" + r.container.ID
	}
	return "I\t\t" + r.image.ID
}

// UI manages the terminal interface and orchestrates Docker operations.
type UI struct {
	app         *tview.Application
	pages       *tview.Pages
	table       *tview.Table
	statusBar   *tview.TextView
	detailView  *tview.TextView
	filterInput *tview.InputField
	mainView    *tview.Flex
	engine      Engine
	runner      shell.Runner
	sudo        bool
	rows        []row
	viewMode    string
	filter      *filter.Filter
	filterMode  bool
}

const (
	tableStatusText  = "[yellow]l[white]:logs [yellow]e[white]:exec [yellow]y[white]:copy [yellow]s[white]:stop [yellow]r[white]:run [yellow]R[white]:restart [yellow]d[white]:delete [yellow]i[white]:rmi [yellow]Enter[white]:inspect | [yellow]/[white]:search [yellow]c[white]:clear [yellow]Ctrl+R[white]:reload [yellow]q[white]:quit"
	detailStatusText = "[yellow]ESC/q[white]:back [yellow]↑↓[white]:scroll"
	filterStatusText = "[yellow]Enter[white]:search [yellow]ESC[white]:cancel [yellow]Ctrl+U[white]:clear | Search across name, image, status, etc. or use advanced: [gray]age>1h, status~up, repo=nginx[white]"
	tableTitle       = " Containers & Images (shellkit) "
	confirmPage      = "confirm"
	logTail          = "200"
)

// keyActions maps table keys onto dispatch actions. Keys in confirmKeys ask
// first.
var keyActions = map[rune]string{
	'l': docker.ActionLogs,
	'e': docker.ActionExec,
	'y': docker.ActionCopy,
	's': docker.ActionStop,
	'r': docker.ActionRun,
	'R': docker.ActionRestart,
	'd': docker.ActionDelete,
	'i': docker.ActionImage,
}

var confirmKeys = map[rune]bool{'s': true, 'd': true, 'i': true}

// New constructs a UI bound to the provided engine. runner spawns the
// interactive `docker exec`, prefixed with sudo when sudo is set.
func New(engine Engine, runner shell.Runner, sudo bool) *UI {
	return &UI{
		app:      tview.NewApplication(),
		engine:   engine,
		runner:   runner,
		sudo:     sudo,
		viewMode: "list",
		filter:   filter.New(),
	}
}

// Initialize configures primitive components and loads initial data.
func (u *UI) Initialize() {
	tview.Styles.PrimitiveBackgroundColor = tcell.ColorBlack
	tview.Styles.ContrastBackgroundColor = tcell.ColorBlack
	tview.Styles.MoreContrastBackgroundColor = tcell.ColorBlack
	tview.Styles.BorderColor = tcell.ColorGray
	tview.Styles.TitleColor = tcell.ColorWhite
	tview.Styles.GraphicsColor = tcell.ColorGray

	u.table = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	u.table.SetTitle(tableTitle).SetBorder(true)

	u.detailView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() {
			u.app.Draw()
		})
	u.detailView.SetTitle(" Details ").SetBorder(true)

	u.filterInput = tview.NewInputField().
		SetLabel("Search: ").
		SetFieldWidth(0).
		SetFieldBackgroundColor(tcell.ColorBlack).
		SetPlaceholder("Type to search across all fields (or use advanced filters like age>1h)")
	u.filterInput.SetBorder(true).SetTitle(" Search/Filter ")

	u.statusBar = tview.NewTextView().
		SetDynamicColors(true)
	u.updateStatusBarText()

	u.setupKeyBindings()
	u.load()
}

func (u *UI) setupKeyBindings() {
	u.table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlR:
			u.load()
			return nil
		case tcell.KeyEnter:
			if r, ok := u.selected(); ok {
				u.describe(r)
			}
			return nil
		}

		switch event.Rune() {
		case '/':
			u.showFilterInput()
			return nil
		case 'c':
			if !u.filter.IsEmpty() {
				u.clearFilter()
			}
			return nil
		case 'q':
			u.app.Stop()
			return nil
		}

		action, ok := keyActions[event.Rune()]
		if !ok {
			return event
		}
		r, ok := u.selected()
		if !ok {
			return nil
		}
		if confirmKeys[event.Rune()] {
			u.confirm(fmt.Sprintf("%s %s?", action, r.label()), func() { u.perform(action, r) })
		} else {
			u.perform(action, r)
		}
		return nil
	})

	u.detailView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			u.switchToTableView()
		}
		switch event.Rune() {
		case 'q':
			u.switchToTableView()
		}
		return event
	})

	u.filterInput.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter:
			u.applyFilter()
			return nil
		case tcell.KeyEscape:
			u.hideFilterInput()
			return nil
		case tcell.KeyCtrlU:
			u.filterInput.SetText("")
			return nil
		}
		return event
	})
}

func (u *UI) selected() (row, bool) {
	r, _ := u.table.GetSelection()
	idx := r - 1
	if idx < 0 || idx >= len(u.rows) {
		return row{}, false
	}
	return u.rows[idx], true
}

// perform runs a dispatch action for one row.
func (u *UI) perform(action string, r row) {
	switch action {
	case docker.ActionLogs:
		if r.container != nil {
			u.showLogs(*r.container)
		}
		return
	case docker.ActionExec:
		if r.container != nil {
			u.execContainer(*r.container)
		}
		return
	case docker.ActionCopy:
		var out strings.Builder
		d := u.dispatcher(&out)
		d.Copy(context.Background(), r.id())
		u.setStatusMessage("[green]" + tview.Escape(strings.TrimSpace(out.String())))
		return
	}

	if r.container == nil && action != docker.ActionImage {
		u.setStatusMessage(fmt.Sprintf("[red]%s applies to containers only", action))
		return
	}
	u.runAsyncAction(fmt.Sprintf("%s %s", action, r.label()), func() error {
		var out strings.Builder
		code, err := u.dispatcher(&out).Dispatch(context.Background(), action, []string{r.line()})
		if err != nil {
			return err
		}
		if code != 0 {
			return fmt.Errorf("%s", strings.TrimSpace(out.String()))
		}
		return nil
	}, u.load)
}

func (u *UI) dispatcher(stderr *strings.Builder) *docker.Dispatcher {
	return docker.NewDispatcher(u.engine, u.runner, stderr, u.sudo)
}

// confirm shows a yes/no modal and runs onYes when accepted.
func (u *UI) confirm(question string, onYes func()) {
	modal := tview.NewModal().
		SetText(question).
		AddButtons([]string{"Cancel", "Yes"}).
		SetDoneFunc(func(_ int, label string) {
			u.pages.RemovePage(confirmPage)
			u.app.SetFocus(u.table)
			if label == "Yes" {
				onYes()
			}
		})
	u.pages.AddPage(confirmPage, modal, false, true)
	u.app.SetFocus(modal)
}

func (u *UI) setStatusMessage(msg string) {
	u.statusBar.SetText(msg)
}

func (u *UI) updateStatusBarText() {
	if u.viewMode == "detail" {
		u.statusBar.SetText(detailStatusText)
		return
	}
	if u.filterMode {
		u.statusBar.SetText(filterStatusText)
		return
	}

	statusText := tableStatusText
	if !u.filter.IsEmpty() {
		statusText = fmt.Sprintf("[green]Filter: %s[white] | %s", tview.Escape(u.filter.String()), tableStatusText)
	}
	u.statusBar.SetText(statusText)
}

func (u *UI) runAsyncAction(actionLabel string, action func() error, onSuccess func()) {
	u.setStatusMessage(fmt.Sprintf("[yellow]%s...", tview.Escape(actionLabel)))
	go func() {
		err := action()
		u.app.QueueUpdateDraw(func() {
			if err != nil {
				u.statusBar.SetText(fmt.Sprintf("[red]%s failed: %s", tview.Escape(actionLabel), tview.Escape(err.Error())))
				return
			}
			if onSuccess != nil {
				onSuccess()
			}
			u.updateStatusBarText()
		})
	}()
}

func (u *UI) showLoading() {
	u.table.Clear()
	u.table.SetTitle(tableTitle)
	u.table.SetCell(0, 0, tview.NewTableCell("Loading...").
		SetSelectable(false).
		SetTextColor(tcell.ColorGray))
}

func (u *UI) showFilterInput() {
	u.filterMode = true
	u.updateStatusBarText()

	if !u.filter.IsEmpty() {
		u.filterInput.SetText(u.filter.String())
	}

	u.mainView.Clear()
	u.mainView.AddItem(u.table, 0, 1, false)
	u.mainView.AddItem(u.filterInput, 3, 0, true)
	u.mainView.AddItem(u.statusBar, 1, 0, false)

	u.app.SetFocus(u.filterInput)
}

func (u *UI) hideFilterInput() {
	u.filterMode = false
	u.updateStatusBarText()

	u.mainView.Clear()
	u.mainView.AddItem(u.table, 0, 1, true)
	u.mainView.AddItem(u.statusBar, 1, 0, false)

	u.app.SetFocus(u.table)
}

func (u *UI) applyFilter() {
	newFilter, err := filter.Parse(u.filterInput.GetText())
	if err != nil {
		u.statusBar.SetText(fmt.Sprintf("[red]Filter error: %s", tview.Escape(err.Error())))
		return
	}

	u.filter = newFilter
	u.hideFilterInput()
	u.load()
}

func (u *UI) clearFilter() {
	u.filter = filter.New()
	u.filterInput.SetText("")
	u.updateStatusBarText()
	u.load()
}

func (u *UI) showDetail(title string, loader func() (string, error)) {
	u.detailView.Clear()
	u.detailView.SetTitle(title)
	u.detailView.SetText("Loading...")

	go func() {
		content, err := loader()
		u.app.QueueUpdateDraw(func() {
			if err != nil {
				u.detailView.SetText(fmt.Sprintf("[red]Error: %s", tview.Escape(err.Error())))
				return
			}
			if strings.TrimSpace(content) == "" {
				u.detailView.SetText("(no data)")
				return
			}
			u.detailView.SetText(content)
			u.detailView.ScrollToEnd()
		})
	}()

	u.viewMode = "detail"
	u.updateStatusBarText()

	u.mainView.Clear()
	u.mainView.AddItem(u.detailView, 0, 1, true)
	u.mainView.AddItem(u.statusBar, 1, 0, false)

	u.app.SetFocus(u.detailView)
}

func (u *UI) showLogs(c docker.ContainerInfo) {
	u.showDetail(fmt.Sprintf(" Logs: %s ", c.Names), func() (string, error) {
		out, err := u.engine.ContainerLogs(context.Background(), c.ID, logTail)
		if err != nil {
			return "", err
		}
		return logs.Colorize(out), nil
	})
}

func (u *UI) describe(r row) {
	if r.container != nil {
		u.showDetail(fmt.Sprintf(" Inspect Container: %s ", r.label()), func() (string, error) {
			out, err := u.engine.DescribeContainer(context.Background(), r.container.ID)
			return tview.Escape(out), err
		})
		return
	}
	u.showDetail(fmt.Sprintf(" Inspect Image: %s ", r.label()), func() (string, error) {
		out, err := u.engine.DescribeImage(context.Background(), r.image.ID)
		return tview.Escape(out), err
	})
}

func (u *UI) switchToTableView() {
	u.viewMode = "list"
	u.updateStatusBarText()

	u.mainView.Clear()
	u.mainView.AddItem(u.table, 0, 1, true)
	u.mainView.AddItem(u.statusBar, 1, 0, false)

	u.app.SetFocus(u.table)
	u.load()
}

func (u *UI) execContainer(c docker.ContainerInfo) {
	u.app.Suspend(func() {
		fmt.Printf("\033[2J\033[H")
		fmt.Printf("Opening shell in container: %s (%s)\n", c.Names, c.ID)
		fmt.Printf("Type 'exit' to return to shellkit\n\n")

		var out strings.Builder
		code, _ := u.dispatcher(&out).Exec(context.Background(), c.ID)
		if code == 0 {
			return
		}
		if msg := strings.TrimSpace(out.String()); msg != "" {
			fmt.Println(msg)
		}
		fmt.Printf("Shell exited with status %d\n", code)
		fmt.Print("Press Enter to continue...")
		bufio.NewReader(os.Stdin).ReadString('\n')
	})
}

// load fetches containers and images in the background and redraws.
func (u *UI) load() {
	currentRow, _ := u.table.GetSelection()
	u.showLoading()
	go func(selectedRow int) {
		ctx := context.Background()
		containers, err := u.engine.ListContainers(ctx, true)
		var images []docker.ImageInfo
		if err == nil {
			images, err = u.engine.ListImages(ctx)
		}
		u.app.QueueUpdateDraw(func() {
			u.render(containers, images, err, selectedRow)
		})
	}(currentRow)
}

// buildRows applies f and orders containers before images.
func buildRows(containers []docker.ContainerInfo, images []docker.ImageInfo, f *filter.Filter) []row {
	containers = f.Containers(containers)
	images = f.Images(images)
	rows := make([]row, 0, len(containers)+len(images))
	for i := range containers {
		rows = append(rows, row{container: &containers[i]})
	}
	for i := range images {
		rows = append(rows, row{image: &images[i]})
	}
	return rows
}

func (u *UI) render(containers []docker.ContainerInfo, images []docker.ImageInfo, err error, selectedRow int) {
	u.table.Clear()
	u.table.SetTitle(tableTitle)
	if err != nil {
		u.rows = nil
		u.table.SetCell(0, 0, tview.NewTableCell("Error: "+err.Error()).
			SetTextColor(tcell.ColorRed))
		return
	}

	u.rows = buildRows(containers, images, u.filter)

	headers := []string{"", "ID", "NAME / REPOSITORY", "IMAGE / TAG", "STATUS / SIZE", "AGE"}
	for col, header := range headers {
		u.table.SetCell(0, col, tview.NewTableCell(header).
			SetTextColor(tcell.ColorYellow).
			SetAlign(tview.AlignCenter).
			SetSelectable(false).
			SetExpansion(1).
			SetAttributes(tcell.AttrBold))
	}

	for i, r := range u.rows {
		line := i + 1
		var cells []string
		var marker string
		markerColor := tcell.ColorBlue
		if c := r.container; c != nil {
			marker = "●"
			markerColor = stateColor(c.State)
			cells = []string{c.ID, c.Names, c.Image, c.Status, c.Age}
		} else {
			img := r.image
			marker = "◆"
			cells = []string{img.ID, img.Repository, img.Tag, img.Size, img.Age}
		}

		u.table.SetCell(line, 0, tview.NewTableCell(marker).
			SetTextColor(markerColor).
			SetAlign(tview.AlignCenter).
			SetExpansion(1))
		colors := []tcell.Color{tcell.ColorGray, tcell.ColorWhite, tcell.ColorLightBlue, tcell.ColorAqua, tcell.ColorGray}
		for col, text := range cells {
			u.table.SetCell(line, col+1, tview.NewTableCell(text).
				SetTextColor(colors[col]).
				SetExpansion(1))
		}
	}

	u.restoreSelection(selectedRow, len(u.rows))
}

func stateColor(state string) tcell.Color {
	switch state {
	case "running":
		return tcell.ColorGreen
	case "paused", "restarting":
		return tcell.ColorYellow
	default:
		return tcell.ColorRed
	}
}

func (u *UI) restoreSelection(selectedRow, total int) {
	switch {
	case total == 0:
		u.table.Select(0, 0)
	case selectedRow > 0 && selectedRow <= total:
		u.table.Select(selectedRow, 0)
	default:
		u.table.Select(1, 0)
	}
}

// Run bootstraps the flex layout and starts the tview event loop.
func (u *UI) Run() error {
	u.mainView = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(u.table, 0, 1, true).
		AddItem(u.statusBar, 1, 0, false)
	u.pages = tview.NewPages().AddPage("main", u.mainView, true, true)

	if err := u.app.SetRoot(u.pages, true).Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
