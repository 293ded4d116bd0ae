package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrodrigc/campuseats-client/models"
)

// orderForm is the minimal checkout: one store, one product line. The cart
// itself lives server-side; this form exists so the buyer dashboard can place
// an order end to end.
type orderForm struct {
	inputs []textinput.Model
	focus  int
	saving bool
	errMsg string
}

func newOrderForm() *orderForm {
	labels := []struct {
		placeholder string
	}{
		{"id de tienda"},
		{"id de producto"},
		{"nombre del producto"},
		{"cantidad"},
	}

	inputs := make([]textinput.Model, len(labels))
	for i, l := range labels {
		in := textinput.New()
		in.Placeholder = l.placeholder
		inputs[i] = in
	}
	inputs[0].Focus()

	return &orderForm{inputs: inputs}
}

func (m *dashboardModel) openForm() {
	m.form = newOrderForm()
	m.engine.SetFeedVisible(false)
}

func (m *dashboardModel) closeForm() {
	m.form = nil
	m.engine.SetFeedVisible(true)
}

func (m dashboardModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form := m.form

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keyMsg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(keyMsg, keys.esc):
			m.closeForm()
			return m, nil
		case key.Matches(keyMsg, keys.tab):
			form.nextFocus()
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			if form.focus < len(form.inputs)-1 {
				form.nextFocus()
				return m, nil
			}
			if form.saving {
				return m, nil
			}
			req, err := form.request()
			if err != "" {
				form.errMsg = err
				return m, nil
			}
			form.saving = true
			form.errMsg = ""
			return m, func() tea.Msg {
				queued, perr := m.engine.PlaceOrder(m.ctx, req)
				return orderPlacedMsg{queued: queued, err: perr}
			}
		}
	}

	var cmd tea.Cmd
	form.inputs[form.focus], cmd = form.inputs[form.focus].Update(msg)
	return m, cmd
}

func (f *orderForm) nextFocus() {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + 1) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

// request validates the inputs into a checkout payload. The returned string is
// a user-facing validation message, empty when the payload is usable.
func (f *orderForm) request() (models.CreateOrderRequest, string) {
	storeID, err := strconv.ParseInt(strings.TrimSpace(f.inputs[0].Value()), 10, 64)
	if err != nil || storeID <= 0 {
		return models.CreateOrderRequest{}, "id de tienda inválido"
	}
	productID, err := strconv.ParseInt(strings.TrimSpace(f.inputs[1].Value()), 10, 64)
	if err != nil || productID <= 0 {
		return models.CreateOrderRequest{}, "id de producto inválido"
	}
	name := strings.TrimSpace(f.inputs[2].Value())
	qty, err := strconv.Atoi(strings.TrimSpace(f.inputs[3].Value()))
	if err != nil || qty <= 0 {
		return models.CreateOrderRequest{}, "cantidad inválida"
	}

	return models.CreateOrderRequest{
		StoreID: storeID,
		Items: []models.LineItem{
			{ProductID: productID, Name: name, Quantity: qty},
		},
	}, ""
}

func (f *orderForm) view() string {
	labels := []string{"Tienda", "Producto", "Nombre", "Cantidad"}

	var b strings.Builder
	for i, in := range f.inputs {
		b.WriteString(labels[i] + ":\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	if f.saving {
		b.WriteString("Enviando pedido...\n")
	}
	if f.errMsg != "" {
		b.WriteString("Error: " + f.errMsg + "\n")
	}
	return renderPage("CampusEats · Nuevo pedido", b.String(), "tab siguiente  enter enviar  esc cancelar")
}
