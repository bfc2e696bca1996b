package ui

import (
	"context"
	"strconv"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shopfront/internal/catalog"
	"shopfront/internal/form"
	"shopfront/internal/validate"
)

// editTarget carries the ID of the product being edited into the update
// action, which runs in a command goroutine.
type editTarget struct {
	mu sync.Mutex
	id string
}

func (t *editTarget) set(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.id = id
}

func (t *editTarget) get() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// productFetchedMsg delivers the prefetch result for the edit screen.
type productFetchedMsg struct {
	product *catalog.Product
	err     error
}

// backToListMsg asks the app to return to the product list.
type backToListMsg struct{}

// productFormPage is the create/edit product screen. Create and edit carry
// separate controllers because their submit actions and success dialogs
// differ; the widgets are rebuilt from whichever controller is active.
type productFormPage struct {
	create  formView
	edit    formView
	target  *editTarget
	client  *catalog.Client
	sink    *DialogSink
	editing bool
	loading bool
	spin    spinner.Model
}

func productFieldSpecs() []fieldSpec {
	return []fieldSpec{
		{name: validate.FieldName, label: "Name", placeholder: "Enter your product name", kind: fieldText, charLimit: 80},
		{name: validate.FieldTitle, label: "Title", placeholder: "Enter your product title", kind: fieldText, charLimit: 120},
		{name: validate.FieldDescription, label: "Description", placeholder: "Enter your product description", kind: fieldTextarea, charLimit: 1000},
		{name: validate.FieldPrice, label: "Price", placeholder: "Enter your product price", kind: fieldText, charLimit: 12},
		{name: validate.FieldAvailableQuantity, label: "Available Quantity", placeholder: "Enter available quantity", kind: fieldText, charLimit: 9},
	}
}

func newProductFormPage(createCtrl, editCtrl *form.Controller, target *editTarget, client *catalog.Client, sink *DialogSink, styles Styles) productFormPage {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.StatusDetail

	return productFormPage{
		create: newFormView(createCtrl, productFieldSpecs(), "Add Product", "Adding Product..."),
		edit:   newFormView(editCtrl, productFieldSpecs(), "Update Product", "Updating Product..."),
		target: target,
		client: client,
		sink:   sink,
		spin:   spin,
	}
}

// openCreate switches to an empty create form.
func (p *productFormPage) openCreate() {
	p.editing = false
	p.loading = false
	p.create.ctrl.Reset()
	p.create.resetWidgets()
}

// openEdit switches to the edit form and prefetches the product.
func (p *productFormPage) openEdit(id string) tea.Cmd {
	p.editing = true
	p.loading = true
	p.target.set(id)
	client := p.client
	return tea.Batch(p.spin.Tick, func() tea.Msg {
		product, err := client.Get(context.Background(), id)
		return productFetchedMsg{product: product, err: err}
	})
}

func (p productFormPage) Update(msg tea.Msg) (productFormPage, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spin, cmd = p.spin.Update(msg)
		return p, cmd

	case productFetchedMsg:
		p.loading = false
		if msg.err != nil {
			p.sink.Error("Error", "Product not found")
			return p, func() tea.Msg { return backToListMsg{} }
		}
		ctrl := p.edit.ctrl
		ctrl.Reset()
		ctrl.SetField(validate.FieldName, msg.product.Name)
		ctrl.SetField(validate.FieldTitle, msg.product.Title)
		ctrl.SetField(validate.FieldDescription, msg.product.Description)
		ctrl.SetField(validate.FieldPrice, strconv.FormatFloat(msg.product.Price, 'f', -1, 64))
		ctrl.SetField(validate.FieldAvailableQuantity, strconv.Itoa(msg.product.AvailableQuantity))
		p.edit.loadValues()
		return p, nil

	case submitMsg:
		if msg.err != nil {
			return p, nil
		}
		if p.editing && msg.formName == p.edit.ctrl.Name() {
			return p, func() tea.Msg { return backToListMsg{} }
		}
		if !p.editing && msg.formName == p.create.ctrl.Name() {
			// The create screen stays open for further entries.
			p.create.resetWidgets()
		}
		return p, nil
	}

	var cmd tea.Cmd
	if p.editing {
		p.edit, cmd = p.edit.Update(msg)
	} else {
		p.create, cmd = p.create.Update(msg)
	}
	return p, cmd
}

func (p productFormPage) View(styles Styles) string {
	if p.loading {
		return styles.Panel.Render(p.spin.View() + " Loading product...")
	}

	title, subtitle := "Add Your Product", "Fill in the details to add a new product."
	view := &p.create
	if p.editing {
		title, subtitle = "Edit Product", "Update the details of your product."
		view = &p.edit
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render(title),
		styles.Subtitle.Render(subtitle),
		"",
		view.View(styles),
		"",
		styles.Footer.Render("tab: next field  ·  enter/ctrl+s: submit  ·  esc: back to products"),
	)
}

// productFieldsFromSnapshot converts validated form values into the request
// payload. Parsing cannot fail here: validation already required a numeric
// price and an integer quantity.
func productFieldsFromSnapshot(s validate.Snapshot) catalog.ProductFields {
	price, _ := strconv.ParseFloat(s.Value(validate.FieldPrice), 64)
	quantity, _ := strconv.Atoi(s.Value(validate.FieldAvailableQuantity))
	return catalog.ProductFields{
		Name:              s.Value(validate.FieldName),
		Title:             s.Value(validate.FieldTitle),
		Description:       s.Value(validate.FieldDescription),
		Price:             price,
		AvailableQuantity: quantity,
	}
}
