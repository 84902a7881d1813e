package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/petquest/internal/service"
	"github.com/sadopc/petquest/internal/store"
)

const dateLayout = "2006-01-02"

var planTypes = []store.PlanType{store.PlanActivity, store.PlanSpecialDay, store.PlanGoal}

type todosModel struct {
	svc    *service.Service
	width  int
	height int

	todos      []store.Todo
	plans      []store.PlanBoardItem
	cursor     int
	planCursor int
	viewPlans  bool // true = plan board pane

	formActive bool
	form       *huh.Form
	formType   string // "todo", "plan"

	// Form field pointers (survive value copies)
	formTitle    *string
	formPriority *store.Priority
	formPlanType *store.PlanType
	formSubject  *string
	formDate     *string
}

func newTodosModel(svc *service.Service) todosModel {
	title, prio, pt, subject, date := "", store.PriorityMedium, store.PlanActivity, "", ""
	return todosModel{
		svc:          svc,
		formTitle:    &title,
		formPriority: &prio,
		formPlanType: &pt,
		formSubject:  &subject,
		formDate:     &date,
	}
}

func (m *todosModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type todosDataMsg struct {
	todos []store.Todo
	plans []store.PlanBoardItem
}

func (m todosModel) refresh() tea.Cmd {
	records := m.svc.Records
	return func() tea.Msg {
		todos := records.Todos()
		// Open todos first, then by creation time.
		sort.SliceStable(todos, func(i, j int) bool {
			if todos[i].Completed != todos[j].Completed {
				return !todos[i].Completed
			}
			return todos[i].CreatedAt.Before(todos[j].CreatedAt)
		})
		plans := records.PlanItems()
		sort.SliceStable(plans, func(i, j int) bool { return plans[i].Date.Before(plans[j].Date) })
		return todosDataMsg{todos: todos, plans: plans}
	}
}

func (m todosModel) update(msg tea.Msg) (todosModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case todosDataMsg:
		m.todos = msg.todos
		m.plans = msg.plans
		m.cursor = min(m.cursor, max(0, len(m.todos)-1))
		m.planCursor = min(m.planCursor, max(0, len(m.plans)-1))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
			m.viewPlans = !m.viewPlans
			return m, nil
		}
		if m.viewPlans {
			return m.updatePlanList(msg)
		}
		return m.updateTodoList(msg)
	}
	return m, nil
}

func (m todosModel) updateTodoList(msg tea.KeyMsg) (todosModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.todos)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(m.todos) > 0 {
			return m, m.toggleTodo(m.todos[m.cursor])
		}
	case key.Matches(msg, keys.New):
		return m.showTodoForm()
	case key.Matches(msg, keys.Delete):
		if len(m.todos) > 0 {
			id := m.todos[m.cursor].ID
			if err := m.svc.Records.DeleteTodo(id); err != nil {
				return m, errStatus(err)
			}
			return m, func() tea.Msg { return dataChangedMsg{} }
		}
	}
	return m, nil
}

func (m todosModel) updatePlanList(msg tea.KeyMsg) (todosModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.planCursor > 0 {
			m.planCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.planCursor < len(m.plans)-1 {
			m.planCursor++
		}
	case key.Matches(msg, keys.New):
		return m.showPlanForm()
	case key.Matches(msg, keys.Delete):
		if len(m.plans) > 0 {
			id := m.plans[m.planCursor].ID
			if err := m.svc.Records.DeletePlanItem(id); err != nil {
				return m, errStatus(err)
			}
			return m, func() tea.Msg { return dataChangedMsg{} }
		}
	}
	return m, nil
}

// toggleTodo completes an open todo through the service so XP and
// achievements are processed, or reopens a completed one.
func (m todosModel) toggleTodo(t store.Todo) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if t.Completed {
			if _, err := svc.ReopenTodo(t.ID); err != nil {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
			return dataChangedMsg{}
		}
		_, res, err := svc.CompleteTodo(t.ID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if res != nil {
			return dataChangedMsg{note: fmt.Sprintf("Done! +%d XP", res.XPAwarded)}
		}
		return dataChangedMsg{}
	}
}

func validDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func requireTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

func (m todosModel) showTodoForm() (todosModel, tea.Cmd) {
	*m.formTitle = ""
	*m.formPriority = store.PriorityMedium
	*m.formSubject = ""
	*m.formDate = ""
	m.formType = "todo"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Validate(requireTitle).Value(m.formTitle),
			huh.NewSelect[store.Priority]().Title("Priority").Options(
				huh.NewOption("Low", store.PriorityLow),
				huh.NewOption("Medium", store.PriorityMedium),
				huh.NewOption("High", store.PriorityHigh),
			).Value(m.formPriority),
			huh.NewInput().Title("Subject (optional)").Value(m.formSubject),
			huh.NewInput().Title("Due date (YYYY-MM-DD, optional)").Validate(validDate).Value(m.formDate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m todosModel) showPlanForm() (todosModel, tea.Cmd) {
	*m.formTitle = ""
	*m.formPlanType = store.PlanActivity
	*m.formSubject = ""
	*m.formDate = m.svc.Now().Format(dateLayout)
	m.formType = "plan"

	typeOptions := make([]huh.Option[store.PlanType], len(planTypes))
	for i, pt := range planTypes {
		typeOptions[i] = huh.NewOption(string(pt), pt)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Validate(requireTitle).Value(m.formTitle),
			huh.NewSelect[store.PlanType]().Title("Type").Options(typeOptions...).Value(m.formPlanType),
			huh.NewInput().Title("Date (YYYY-MM-DD)").Validate(validDate).Value(m.formDate),
			huh.NewInput().Title("Subject (optional)").Value(m.formSubject),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m todosModel) updateForm(msg tea.Msg) (todosModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		switch m.formType {
		case "todo":
			return m, m.saveTodo()
		case "plan":
			return m, m.savePlan()
		}
	}
	return m, cmd
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseDate(s string) *time.Time {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func (m todosModel) saveTodo() tea.Cmd {
	todo := store.Todo{
		Title:    strings.TrimSpace(*m.formTitle),
		Priority: *m.formPriority,
		Subject:  optional(*m.formSubject),
	}
	if due := parseDate(*m.formDate); due != nil {
		end := due.Add(24*time.Hour - time.Second)
		todo.DueDate = &end
	}
	records := m.svc.Records
	return func() tea.Msg {
		if _, err := records.AddTodo(todo); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return dataChangedMsg{}
	}
}

func (m todosModel) savePlan() tea.Cmd {
	item := store.PlanBoardItem{
		Title:   strings.TrimSpace(*m.formTitle),
		Type:    *m.formPlanType,
		Subject: optional(*m.formSubject),
	}
	if d := parseDate(*m.formDate); d != nil {
		item.Date = *d
	} else {
		item.Date = m.svc.Now()
	}
	svc := m.svc
	return func() tea.Msg {
		_, res, err := svc.SavePlan(item)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if res != nil {
			return dataChangedMsg{note: fmt.Sprintf("Planned! +%d XP", res.XPAwarded)}
		}
		return dataChangedMsg{}
	}
}

func (m todosModel) view() string {
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Todo")
		if m.formType == "plan" {
			title = titleStyle.Render("New Plan")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(m.width - 4).Render(content)
	}

	todosTab := inactiveTabStyle.Render("Todos")
	plansTab := inactiveTabStyle.Render("Plan board")
	if m.viewPlans {
		plansTab = activeTabStyle.Render("Plan board")
	} else {
		todosTab = activeTabStyle.Render("Todos")
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Bottom, todosTab, plansTab)

	var body string
	if m.viewPlans {
		body = m.renderPlans()
	} else {
		body = m.renderTodos()
	}
	return panelStyle.Width(m.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, tabs, "", body))
}

func (m todosModel) renderTodos() string {
	if len(m.todos) == 0 {
		return mutedStyle.Render("No todos yet. Press n to add one.")
	}

	var rows []string
	now := m.svc.Now()
	for i, t := range m.todos {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		if t.Completed {
			check = "[x]"
			if i != m.cursor {
				style = doneItemStyle
			}
		}
		line := style.Render(fmt.Sprintf("%s%s %s", cursor, check, t.Title))
		line += " " + priorityTag(t.Priority)
		if t.Subject != nil {
			line += mutedStyle.Render("  #" + *t.Subject)
		}
		if t.DueDate != nil && !t.Completed {
			due := t.DueDate.Local().Format("Jan 2")
			if t.DueDate.Before(now) {
				line += errorStyle.Render("  overdue " + due)
			} else {
				line += mutedStyle.Render("  due " + due)
			}
		}
		rows = append(rows, line)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  enter: done/undo  d: delete  ←/→: plan board"))
	return strings.Join(rows, "\n")
}

func (m todosModel) renderPlans() string {
	if len(m.plans) == 0 {
		return mutedStyle.Render("Nothing planned. Press n to add an item.")
	}

	var rows []string
	for i, it := range m.plans {
		cursor := "  "
		style := normalItemStyle
		if i == m.planCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := style.Render(fmt.Sprintf("%s%-10s %-12s %s", cursor, it.Date.Local().Format("Mon Jan 2"), it.Type, it.Title))
		if it.Subject != nil {
			line += mutedStyle.Render("  #" + *it.Subject)
		}
		rows = append(rows, line)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  d: delete  ←/→: todos"))
	return strings.Join(rows, "\n")
}

func priorityTag(p store.Priority) string {
	switch p {
	case store.PriorityHigh:
		return errorStyle.Render("!!!")
	case store.PriorityMedium:
		return warningStyle.Render("!!")
	}
	return mutedStyle.Render("!")
}
