// Package picker provides an interactive full-screen chooser over the
// layer files in a directory. It is used by shell and run flows when no
// path was given on the command line.
package picker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type fileItem struct {
	name string
	path string
	desc string
}

func (f fileItem) Title() string       { return f.name }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.name }

type model struct {
	l        list.Model
	selected string
	ok       bool
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.l.SetSize(msg.Width, msg.Height-1)
	case tea.KeyMsg:
		// While the filter input is active, keys belong to the list.
		if m.l.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "enter":
			if it, ok := m.l.SelectedItem().(fileItem); ok {
				m.selected = it.path
				m.ok = true
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.l, cmd = m.l.Update(msg)
	return m, cmd
}

func (m model) View() string { return m.l.View() }

// Choose opens the picker over the layer files in dir and returns the
// selected path. ok is false when the user cancels with q, esc or
// Ctrl-C. Only files whose extension appears in exts are listed.
func Choose(dir string, exts []string) (string, bool, error) {
	items, err := scanDir(dir, exts)
	if err != nil {
		return "", false, err
	}
	if len(items) == 0 {
		return "", false, fmt.Errorf("no layer files in %s (supported: %s)", dir, strings.Join(exts, ", "))
	}

	d := list.NewDefaultDelegate()
	l := list.New(items, d, 0, 0)
	l.Title = fmt.Sprintf("Layer files in %s", dir)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	p := tea.NewProgram(model{l: l}, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", false, fmt.Errorf("picker failed: %w", err)
	}
	m, _ := final.(model)
	return m.selected, m.ok, nil
}

// scanDir lists the files in dir with a matching extension, sorted by
// name. Subdirectories and non-layer files are skipped.
func scanDir(dir string, exts []string) ([]list.Item, error) {
	extSet := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		extSet[strings.ToLower(e)] = struct{}{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var items []list.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if _, ok := extSet[strings.ToLower(filepath.Ext(name))]; !ok {
			continue
		}
		desc := ""
		if info, err := e.Info(); err == nil {
			desc = fmt.Sprintf("%s, modified %s", humanSize(info.Size()), info.ModTime().Format("2006-01-02 15:04"))
		}
		items = append(items, fileItem{name: name, path: filepath.Join(dir, name), desc: desc})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].(fileItem).name < items[j].(fileItem).name
	})
	return items, nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
