package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrodrigc/campuseats-client/internal/adapter"
	"github.com/mrodrigc/campuseats-client/internal/config"
	"github.com/mrodrigc/campuseats-client/internal/notify"
	"github.com/mrodrigc/campuseats-client/models"
)

const toastDuration = 4 * time.Second

type dashboardModel struct {
	ctx    context.Context
	engine Engine
	role   string

	orders  []models.Order
	idx     int
	loading bool
	online  bool
	detail  bool
	status  string
	errMsg  string

	toast      string
	toastLevel notify.ToastLevel

	promptReply chan<- bool

	form *orderForm
}

func newDashboardModel(ctx context.Context, engine Engine, role string) dashboardModel {
	return dashboardModel{
		ctx:     ctx,
		engine:  engine,
		role:    role,
		loading: true,
		online:  engine.Online(),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.cmdLoadOrders(false), m.cmdRequestPermission(notify.TriggerFeedViewed))
}

func (m dashboardModel) cmdLoadOrders(force bool) tea.Cmd {
	return func() tea.Msg {
		orders, err := m.engine.Orders(m.ctx, force)
		return ordersLoadedMsg{orders: orders, err: err}
	}
}

// cmdRequestPermission runs the consent flow off the render loop; the
// overlay answer comes back through permissionPromptMsg.
func (m dashboardModel) cmdRequestPermission(trigger notify.Trigger) tea.Cmd {
	return func() tea.Msg {
		m.engine.RequestPermission(m.ctx, trigger)
		return nil
	}
}

func (m dashboardModel) cmdClearToast() tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (m dashboardModel) current() (models.Order, bool) {
	if len(m.orders) == 0 || m.idx < 0 || m.idx >= len(m.orders) {
		return models.Order{}, false
	}
	return m.orders[m.idx], true
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ordersLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.setOrders(msg.orders)
		return m, nil

	case snapshotMsg:
		if msg.feed != m.engine.ActiveFeed() {
			return m, nil
		}
		m.loading = false
		m.setOrders(msg.orders)
		return m, nil

	case connectivityMsg:
		m.online = msg.online
		if msg.online {
			m.status = "Conexión restablecida"
		} else {
			m.status = ""
		}
		return m, nil

	case toastMsg:
		m.toast = msg.message
		m.toastLevel = msg.level
		return m, m.cmdClearToast()

	case clearToastMsg:
		m.toast = ""
		return m, nil

	case permissionPromptMsg:
		m.promptReply = msg.reply
		return m, nil

	case orderPlacedMsg:
		if m.form != nil {
			m.form.saving = false
		}
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.closeForm()
		m.errMsg = ""
		if msg.queued {
			m.status = "Sin conexión: el pedido se enviará al reconectar"
		} else {
			m.status = "Pedido realizado"
		}
		return m, tea.Batch(m.cmdLoadOrders(false), m.cmdRequestPermission(notify.TriggerOrderPlaced))

	case actionDoneMsg:
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		if msg.queued {
			m.status = "Sin conexión: la acción se enviará al reconectar"
		} else {
			m.status = "Pedido actualizado"
		}
		return m, m.cmdLoadOrders(false)

	case tea.FocusMsg:
		m.engine.SetPageVisible(true)
		return m, nil

	case tea.BlurMsg:
		m.engine.SetPageVisible(false)
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m, nil
	}
	m.engine.RecordActivity()

	if m.promptReply != nil {
		switch {
		case key.Matches(keyMsg, keys.yes):
			m.promptReply <- true
			m.promptReply = nil
		case key.Matches(keyMsg, keys.no), key.Matches(keyMsg, keys.esc):
			m.promptReply <- false
			m.promptReply = nil
		}
		return m, nil
	}

	if key.Matches(keyMsg, keys.quit) && m.form == nil {
		return m, tea.Quit
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if m.detail {
		return m.updateDetail(keyMsg)
	}

	return m.updateList(keyMsg)
}

func (m *dashboardModel) setOrders(orders []models.Order) {
	m.orders = orders
	if m.idx >= len(m.orders) {
		m.idx = len(m.orders) - 1
	}
	if m.idx < 0 {
		m.idx = 0
	}
}

func (m dashboardModel) updateList(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(keyMsg, keys.down):
		if m.idx < len(m.orders)-1 {
			m.idx++
		}
	case key.Matches(keyMsg, keys.enter):
		if _, ok := m.current(); ok {
			m.detail = true
		}
	case key.Matches(keyMsg, keys.refresh):
		m.engine.Refresh()
		m.status = "Actualizando..."
	case key.Matches(keyMsg, keys.newItem):
		if m.role == config.RoleBuyer {
			m.openForm()
		}
	default:
		if m.role == config.RoleVendor {
			return m.updateVendorAction(keyMsg)
		}
	}
	return m, nil
}

func (m dashboardModel) updateDetail(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, keys.esc):
		m.detail = false
	case key.Matches(keyMsg, keys.copy):
		order, ok := m.current()
		if !ok || order.Synthetic() {
			m.status = "Nada que copiar"
			return m, nil
		}
		if err := clipboard.WriteAll(order.Key()); err != nil {
			m.errMsg = fmt.Sprintf("Error al copiar: %v", err)
			return m, nil
		}
		m.status = "Número de pedido copiado"
	default:
		if m.role == config.RoleVendor {
			return m.updateVendorAction(keyMsg)
		}
	}
	return m, nil
}

func (m dashboardModel) updateVendorAction(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var action adapter.OrderAction
	switch {
	case key.Matches(keyMsg, keys.accept):
		action = adapter.ActionAccept
	case key.Matches(keyMsg, keys.ready):
		action = adapter.ActionReady
	case key.Matches(keyMsg, keys.deliver):
		action = adapter.ActionDeliver
	case key.Matches(keyMsg, keys.cancel):
		action = adapter.ActionCancel
	default:
		return m, nil
	}

	order, ok := m.current()
	if !ok || order.Synthetic() {
		return m, nil
	}

	name := string(action)
	return m, func() tea.Msg {
		queued, err := m.engine.Advance(m.ctx, order.ID, action)
		return actionDoneMsg{action: name, queued: queued, err: err}
	}
}

func (m dashboardModel) View() string {
	if m.form != nil {
		return m.form.view()
	}

	title := "CampusEats · Mis pedidos"
	if m.role == config.RoleVendor {
		title = "CampusEats · Pedidos de la tienda"
	}

	var b strings.Builder

	if !m.online {
		b.WriteString(offlineBanner.Render("Sin conexión — mostrando datos guardados"))
		b.WriteString("\n\n")
	}
	if depth := m.engine.QueueDepth(); depth > 0 {
		b.WriteString(fmt.Sprintf("Acciones pendientes: %d\n\n", depth))
	}

	switch {
	case m.loading:
		b.WriteString("Cargando...\n")
	case len(m.orders) == 0:
		b.WriteString("No hay pedidos\n")
	case m.detail:
		b.WriteString(m.detailView())
	default:
		for i, order := range m.orders {
			cursor := "  "
			if i == m.idx {
				cursor = "> "
			}
			b.WriteString(cursor + orderLine(order) + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	if m.errMsg != "" {
		b.WriteString("\nError: " + m.errMsg + "\n")
	}
	if m.toast != "" {
		b.WriteString("\n" + toastStyles[string(m.toastLevel)].Render("● "+m.toast) + "\n")
	}
	if m.promptReply != nil {
		b.WriteString("\n" + overlayBoxStyle.Render("¿Permitir notificaciones del sistema?\n\ny sí    n no"))
	}

	return renderPage(title, b.String(), m.helpLine())
}

func (m dashboardModel) detailView() string {
	order, ok := m.current()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Pedido #%s\n", order.Key()))
	b.WriteString(fmt.Sprintf("Estado: %s\n", statusLabel(order.Status)))
	if order.StoreName != "" {
		b.WriteString("Tienda: " + order.StoreName + "\n")
	}
	if order.BuyerName != "" {
		b.WriteString("Comprador: " + order.BuyerName + "\n")
	}
	if !order.CreatedAt.IsZero() {
		b.WriteString("Creado: " + order.CreatedAt.Format("02/01/2006 15:04") + "\n")
	}
	b.WriteString("\n")
	for _, item := range order.Items {
		b.WriteString(fmt.Sprintf("  %dx %-24s %8.2f\n", item.Quantity, fitText(item.Name, 24), item.UnitPrice))
	}
	b.WriteString(fmt.Sprintf("\nTotal: %.2f\n", order.Total))
	return b.String()
}

func (m dashboardModel) helpLine() string {
	if m.detail {
		line := "esc volver  c copiar número"
		if m.role == config.RoleVendor {
			line += "  a aceptar  l listo  e entregar  x cancelar"
		}
		return line
	}
	line := "r actualizar  enter detalle  q salir"
	if m.role == config.RoleBuyer {
		line = "n nuevo pedido  " + line
	} else {
		line += "  a aceptar  l listo  e entregar  x cancelar"
	}
	return line
}
