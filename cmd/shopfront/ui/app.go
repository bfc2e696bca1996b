package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"shopfront/internal/catalog"
	"shopfront/internal/config"
	"shopfront/internal/form"
	"shopfront/internal/listview"
	"shopfront/internal/session"
	"shopfront/internal/validate"
)

// Page identifies the active screen.
type Page int

const (
	PageHome Page = iota
	PageAbout
	PageContact
	PageLogin
	PageRegister
	PageProducts
	PageProductForm
	PageNotFound
)

// navEntry pairs a page with its function key and nav bar label.
type navEntry struct {
	page  Page
	key   string
	label string
}

var navEntries = []navEntry{
	{PageHome, "f1", "Home"},
	{PageAbout, "f2", "About"},
	{PageContact, "f3", "Contact"},
	{PageLogin, "f4", "Login"},
	{PageRegister, "f5", "Register"},
	{PageProducts, "f6", "Products"},
}

// Deps carries the application services into the UI.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Client  *catalog.Client
	Session *session.Store
	Sink    *DialogSink
}

// App is the root model: it owns the pages, the navigation bar, and the
// dialog queue that modal notifications flow through.
type App struct {
	deps   Deps
	styles Styles

	page   Page
	width  int
	height int

	home     staticPage
	about    staticPage
	notFound staticPage
	contact  formPage
	login    formPage
	register formPage
	products productListPage
	product  productFormPage

	dialogs []*DialogRequest
}

// NewApp wires the controllers and pages together.
func NewApp(deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	styles := NewStyles(ThemeFor(deps.Config.UI.Theme))
	log := deps.Logger
	client := deps.Client
	sess := deps.Session
	sink := deps.Sink

	loginCtrl := form.NewController(form.Config{
		Name:         "login",
		DefaultFlags: map[string]bool{validate.FieldRememberMe: false},
		Rules:        validate.Login,
		SuccessTitle: "Login Successful!",
		Action: func(ctx context.Context, s validate.Snapshot) (string, error) {
			detail := "Welcome back!"
			if s.Flag(validate.FieldRememberMe) {
				detail += " You will stay logged in."
			}
			return detail, nil
		},
		Sink:   sink,
		Logger: log.Named("login"),
	})

	registerCtrl := form.NewController(form.Config{
		Name:         "register",
		DefaultFlags: map[string]bool{validate.FieldAgreeToTerms: false},
		Rules:        validate.Register,
		SuccessTitle: "Registration Successful!",
		// The backend validates a single "name"; show its complaint on the
		// first name field.
		FieldAliases: map[string]string{"name": validate.FieldFirstName},
		Action: func(ctx context.Context, s validate.Snapshot) (string, error) {
			name := s.Value(validate.FieldFirstName) + " " + s.Value(validate.FieldLastName)
			creds, err := client.Register(ctx,
				name,
				s.Value(validate.FieldEmail),
				s.Value(validate.FieldPassword),
				s.Value(validate.FieldConfirmPassword))
			if err != nil {
				return "", err
			}
			if err := sess.Save(*creds); err != nil {
				log.Warn("session save failed", zap.Error(err))
			}
			return "Welcome " + creds.User.Name + "! Your account has been created successfully.", nil
		},
		Sink:   sink,
		Logger: log.Named("register"),
	})

	contactCtrl := form.NewController(form.Config{
		Name:         "contact",
		Rules:        validate.Contact,
		SuccessTitle: "Success!",
		Action: func(ctx context.Context, s validate.Snapshot) (string, error) {
			return "Thank you for your message! We will get back to you soon.", nil
		},
		Sink:   sink,
		Logger: log.Named("contact"),
	})

	lv := listview.New(client, sink, log.Named("products"))
	target := &editTarget{}

	createCtrl := form.NewController(form.Config{
		Name:         "product-create",
		Rules:        validate.Product,
		SuccessTitle: "Product Added Successfully!",
		Action: func(ctx context.Context, s validate.Snapshot) (string, error) {
			created, err := client.Create(ctx, productFieldsFromSnapshot(s))
			if err != nil {
				return "", err
			}
			lv.Upsert(*created)
			return created.Name + " is now in your catalog.", nil
		},
		Sink:   sink,
		Logger: log.Named("product-create"),
	})

	updateCtrl := form.NewController(form.Config{
		Name:         "product-update",
		Rules:        validate.Product,
		SuccessTitle: "Product Updated Successfully!",
		Action: func(ctx context.Context, s validate.Snapshot) (string, error) {
			updated, err := client.Update(ctx, target.get(), productFieldsFromSnapshot(s))
			if err != nil {
				return "", err
			}
			lv.Upsert(*updated)
			return updated.Name + " has been updated.", nil
		},
		Sink:   sink,
		Logger: log.Named("product-update"),
	})

	app := &App{
		deps:     deps,
		styles:   styles,
		home:     newStaticPage(homeMarkdown),
		about:    newStaticPage(aboutMarkdown),
		notFound: newStaticPage(notFoundMarkdown),
		contact: newFormPage("Contact Us", "Have a question? Send us a message.",
			newFormView(contactCtrl, contactFieldSpecs(), "Send Message", "Sending...")),
		login: newFormPage("Welcome Back", "Sign in to your account.",
			newFormView(loginCtrl, loginFieldSpecs(), "Sign In", "Signing In...")),
		register: newFormPage("Create Account", "Join us to start managing products.",
			newFormView(registerCtrl, registerFieldSpecs(), "Create Account", "Creating Account...")),
		products: newProductListPage(lv, styles),
		product:  newProductFormPage(createCtrl, updateCtrl, target, client, sink, styles),
	}
	return app
}

func loginFieldSpecs() []fieldSpec {
	return []fieldSpec{
		{name: validate.FieldEmail, label: "Email", placeholder: "Enter your email", kind: fieldText, charLimit: 120},
		{name: validate.FieldPassword, label: "Password", placeholder: "Enter your password", kind: fieldPassword, charLimit: 80},
		{name: validate.FieldRememberMe, label: "Remember Me", placeholder: "Keep me signed in", kind: fieldCheckbox},
	}
}

func registerFieldSpecs() []fieldSpec {
	return []fieldSpec{
		{name: validate.FieldFirstName, label: "First Name", placeholder: "Enter your first name", kind: fieldText, charLimit: 60},
		{name: validate.FieldLastName, label: "Last Name", placeholder: "Enter your last name", kind: fieldText, charLimit: 60},
		{name: validate.FieldEmail, label: "Email", placeholder: "Enter your email", kind: fieldText, charLimit: 120},
		{name: validate.FieldPassword, label: "Password", placeholder: "Create a password", kind: fieldPassword, charLimit: 80,
			hint: "At least 8 characters with uppercase, lowercase, and a number"},
		{name: validate.FieldConfirmPassword, label: "Confirm Password", placeholder: "Confirm your password", kind: fieldPassword, charLimit: 80},
		{name: validate.FieldAgreeToTerms, label: "Terms", placeholder: "I agree to the terms and conditions", kind: fieldCheckbox},
	}
}

func contactFieldSpecs() []fieldSpec {
	return []fieldSpec{
		{name: validate.FieldName, label: "Name", placeholder: "Enter your name", kind: fieldText, charLimit: 50},
		{name: validate.FieldEmail, label: "Email", placeholder: "Enter your email", kind: fieldText, charLimit: 120},
		{name: validate.FieldMessage, label: "Message", placeholder: "How can we help?", kind: fieldTextarea, charLimit: 500},
	}
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.products.SetSize(msg.Width, msg.Height)
		return a, nil

	case dialogMsg:
		a.dialogs = append(a.dialogs, msg.req)
		return a, nil

	case openProductFormMsg:
		a.page = PageProductForm
		if msg.productID == "" {
			a.product.openCreate()
			return a, nil
		}
		return a, a.product.openEdit(msg.productID)

	case backToListMsg:
		// Only yank the view when the form screen is still up; a submit
		// finishing after the user navigated away must not steal the page.
		if a.page == PageProductForm {
			a.page = PageProducts
		}
		a.products.reloadRows()
		return a, nil

	case submitMsg:
		// Submissions finish in command goroutines, so the result can land
		// after the user navigated away. Route it to the form that owns it,
		// not to whichever page happens to be active.
		return a.routeSubmit(msg)

	case tea.KeyMsg:
		// The front dialog swallows all keys while one is up.
		if len(a.dialogs) > 0 {
			a.answerDialog(msg.String())
			return a, nil
		}

		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "esc":
			if a.page == PageProductForm {
				return a, func() tea.Msg { return backToListMsg{} }
			}
		}

		if cmd, ok := a.navigate(msg.String()); ok {
			return a, cmd
		}
	}

	return a.updatePage(msg)
}

// navigate switches pages on the function keys. Entering the product list
// kicks off a fresh fetch.
func (a *App) navigate(key string) (tea.Cmd, bool) {
	for _, entry := range navEntries {
		if entry.key != key {
			continue
		}
		if a.page == entry.page {
			return nil, true
		}
		a.page = entry.page
		if entry.page == PageProducts {
			return a.products.Init(), true
		}
		return nil, true
	}
	return nil, false
}

// routeSubmit delivers a finished submission to the page owning the form.
func (a *App) routeSubmit(msg submitMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.formName {
	case a.contact.form.ctrl.Name():
		a.contact, cmd = a.contact.Update(msg)
	case a.login.form.ctrl.Name():
		a.login, cmd = a.login.Update(msg)
	case a.register.form.ctrl.Name():
		a.register, cmd = a.register.Update(msg)
	default:
		a.product, cmd = a.product.Update(msg)
	}
	return a, cmd
}

// answerDialog resolves the front dialog with the pressed key.
func (a *App) answerDialog(key string) {
	req := a.dialogs[0]
	if req.Level == DialogConfirm {
		switch key {
		case "y", "Y", "enter":
			a.dialogs = a.dialogs[1:]
			req.Respond(true)
		case "n", "N", "esc":
			a.dialogs = a.dialogs[1:]
			req.Respond(false)
		}
		return
	}
	// Informational dialogs dismiss on any key.
	a.dialogs = a.dialogs[1:]
	req.Respond(true)
}

func (a *App) updatePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.page {
	case PageContact:
		a.contact, cmd = a.contact.Update(msg)
	case PageLogin:
		a.login, cmd = a.login.Update(msg)
	case PageRegister:
		a.register, cmd = a.register.Update(msg)
	case PageProducts:
		a.products, cmd = a.products.Update(msg)
	case PageProductForm:
		a.product, cmd = a.product.Update(msg)
	default:
		// Async results still land while a static page is up; keys do not.
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			a.products, cmd = a.products.Update(msg)
		}
	}
	return a, cmd
}

func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	if len(a.dialogs) > 0 {
		return renderDialog(a.dialogs[0], a.styles, a.width, a.height)
	}

	content := a.pageView()
	nav := a.navView()
	body := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, nav, body)
}

func (a *App) pageView() string {
	dark := a.styles.Theme.IsDark
	contentWidth := a.width - 4
	switch a.page {
	case PageHome:
		return a.home.View(contentWidth, dark)
	case PageAbout:
		return a.about.View(contentWidth, dark)
	case PageContact:
		return a.contact.View(a.styles)
	case PageLogin:
		return a.login.View(a.styles)
	case PageRegister:
		return a.register.View(a.styles)
	case PageProducts:
		return a.products.View(a.styles)
	case PageProductForm:
		return a.product.View(a.styles)
	default:
		return a.notFound.View(contentWidth, dark)
	}
}

func (a *App) navView() string {
	items := make([]string, 0, len(navEntries)+1)
	items = append(items, a.styles.Title.Render(" Shopfront "))
	active := a.page
	if active == PageProductForm {
		active = PageProducts
	}
	for _, entry := range navEntries {
		label := entry.key + " " + entry.label
		if entry.page == active {
			items = append(items, a.styles.NavActive.Render(label))
		} else {
			items = append(items, a.styles.NavItem.Render(label))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Center, items...)
	return a.styles.NavBar.Width(a.width).Render(row)
}

// Run starts the interactive program and blocks until it exits.
func Run(deps Deps) error {
	app := NewApp(deps)
	p := tea.NewProgram(app, tea.WithAltScreen())
	deps.Sink.SetProgram(p)
	_, err := p.Run()
	return err
}
