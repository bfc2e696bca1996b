package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shopfront/internal/catalog"
	"shopfront/internal/listview"
)

// sortHotkeys maps the number row onto the table columns, mirroring the
// clickable column headers of a product table.
var sortHotkeys = map[string]string{
	"1": catalog.FieldName,
	"2": catalog.FieldTitle,
	"3": catalog.FieldDescription,
	"4": catalog.FieldPrice,
	"5": catalog.FieldAvailableQuantity,
}

// productsRefreshedMsg signals that a refresh attempt finished.
type productsRefreshedMsg struct{}

// productRemovedMsg signals that a remove flow finished (confirmed or not).
type productRemovedMsg struct{}

// openProductFormMsg asks the app to switch to the create/edit screen.
type openProductFormMsg struct {
	productID string // empty for create
}

// productListPage is the catalog table with live search and sortable
// columns.
type productListPage struct {
	lv            *listview.Controller
	table         table.Model
	search        textinput.Model
	searchFocused bool
	spin          spinner.Model
	width         int
}

func newProductListPage(lv *listview.Controller, styles Styles) productListPage {
	t := table.New(
		table.WithColumns(listColumns(catalog.FieldName, false)),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	search := textinput.New()
	search.Placeholder = "Search products..."
	search.CharLimit = 60
	search.Width = 36

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.StatusDetail

	return productListPage{lv: lv, table: t, search: search, spin: spin}
}

// refreshCmd fetches the collection in the background.
func (p *productListPage) refreshCmd() tea.Cmd {
	lv := p.lv
	return func() tea.Msg {
		_ = lv.Refresh(context.Background())
		return productsRefreshedMsg{}
	}
}

// removeCmd runs the delete flow, including the blocking confirmation.
func (p *productListPage) removeCmd(id string) tea.Cmd {
	lv := p.lv
	return func() tea.Msg {
		_, _ = lv.Remove(context.Background(), id)
		return productRemovedMsg{}
	}
}

func (p productListPage) Init() tea.Cmd {
	return tea.Batch(p.refreshCmd(), p.spin.Tick)
}

func (p productListPage) Update(msg tea.Msg) (productListPage, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.lv.Loading() {
			return p, nil
		}
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		return p, cmd

	case productsRefreshedMsg, productRemovedMsg:
		p.reloadRows()
		return p, nil

	case tea.KeyMsg:
		if p.searchFocused {
			switch msg.String() {
			case "enter", "esc":
				p.searchFocused = false
				p.search.Blur()
				return p, nil
			}
			var cmd tea.Cmd
			p.search, cmd = p.search.Update(msg)
			p.lv.SetSearch(p.search.Value())
			p.reloadRows()
			return p, cmd
		}

		switch key := msg.String(); key {
		case "/":
			p.searchFocused = true
			p.search.Focus()
			return p, nil
		case "r":
			return p, p.refreshCmd()
		case "a":
			return p, func() tea.Msg { return openProductFormMsg{} }
		case "e", "enter":
			if id := p.selectedID(); id != "" {
				return p, func() tea.Msg { return openProductFormMsg{productID: id} }
			}
			return p, nil
		case "d", "delete", "backspace":
			if id := p.selectedID(); id != "" {
				return p, p.removeCmd(id)
			}
			return p, nil
		case "1", "2", "3", "4", "5":
			p.lv.SetSort(sortHotkeys[key])
			p.reloadRows()
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

// reloadRows recomputes the derived view and pushes it into the table.
func (p *productListPage) reloadRows() {
	view := p.lv.View()
	rows := make([]table.Row, 0, len(view))
	for _, prod := range view {
		rows = append(rows, table.Row{
			prod.ID,
			prod.Name,
			prod.Title,
			truncate(prod.Description, 50),
			fmt.Sprintf("$%.2f", prod.Price),
			fmt.Sprintf("%d", prod.AvailableQuantity),
		})
	}

	field, desc := p.lv.Sort()
	p.table.SetColumns(listColumns(field, desc))
	p.table.SetRows(rows)
}

func (p *productListPage) selectedID() string {
	row := p.table.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// SetSize adjusts the table to the window.
func (p *productListPage) SetSize(width, height int) {
	p.width = width
	if h := height - 10; h > 4 {
		p.table.SetHeight(h)
	}
}

func (p *productListPage) View(styles Styles) string {
	if p.lv.Loading() {
		return styles.Panel.Render(p.spin.View() + " Loading products...")
	}

	view := p.lv.View()
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.Title.Render("Product Management"),
		"   ",
		styles.Subtitle.Render(fmt.Sprintf("Total Products: %d", len(view))),
	)

	searchLine := p.search.View()
	if !p.searchFocused && p.search.Value() == "" {
		searchLine = styles.Hint.Render("press / to search")
	}

	body := p.table.View()
	detail := ""
	if len(view) == 0 {
		body = styles.Subtitle.Render("No products found.") + "\n" +
			styles.Hint.Render("press a to add your first product")
	} else if id := p.selectedID(); id != "" {
		for _, prod := range view {
			if prod.ID == id {
				detail = styles.Subtitle.Render(prod.Name+"  ·  $"+fmt.Sprintf("%.2f", prod.Price)+"  ·  stock ") +
					stockBadge(prod.AvailableQuantity, styles)
				break
			}
		}
	}

	footer := styles.Footer.Render(
		"a: add  ·  e: edit  ·  d: delete  ·  r: refresh  ·  /: search  ·  1-5: sort columns")

	return lipgloss.JoinVertical(lipgloss.Left, header, "", searchLine, "", body, "", detail, footer)
}

// listColumns builds the column set with a direction marker on the active
// sort column. The ID column is kept but collapsed: it feeds row selection.
func listColumns(activeField string, desc bool) []table.Column {
	marker := func(field string) string {
		if field != activeField {
			return ""
		}
		if desc {
			return " ↓"
		}
		return " ↑"
	}
	return []table.Column{
		{Title: "", Width: 0},
		{Title: "Name" + marker(catalog.FieldName), Width: 14},
		{Title: "Title" + marker(catalog.FieldTitle), Width: 16},
		{Title: "Description" + marker(catalog.FieldDescription), Width: 28},
		{Title: "Price" + marker(catalog.FieldPrice), Width: 10},
		{Title: "Stock" + marker(catalog.FieldAvailableQuantity), Width: 8},
	}
}

// truncate shortens to n characters, never splitting a multibyte rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// stockBadge styles a quantity the way the web screens badge stock levels.
func stockBadge(quantity int, styles Styles) string {
	switch {
	case quantity > 10:
		return styles.BadgeInStock.Render(fmt.Sprintf("%d", quantity))
	case quantity > 0:
		return styles.BadgeLowStock.Render(fmt.Sprintf("%d", quantity))
	default:
		return styles.BadgeOutOfStock.Render(fmt.Sprintf("%d", quantity))
	}
}
