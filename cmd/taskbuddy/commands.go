package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stefanpenner/taskbuddy/pkg/api"
	"github.com/stefanpenner/taskbuddy/pkg/config"
	"github.com/stefanpenner/taskbuddy/pkg/session"
	"github.com/stefanpenner/taskbuddy/pkg/tasks"
)

// Account commands

func (a *app) cmdLogin(ctx context.Context, email string) error {
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return tasks.ErrMissingFields
	}
	resp, err := a.client.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}
	return a.saveSession(resp, "Logged in")
}

func (a *app) cmdRegister(ctx context.Context, email, username string) error {
	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(email) == "" || strings.TrimSpace(username) == "" || password == "" {
		return tasks.ErrMissingFields
	}
	resp, err := a.client.Register(ctx, strings.TrimSpace(email), password, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	return a.saveSession(resp, "Registered")
}

func (a *app) saveSession(resp *api.AuthResponse, verb string) error {
	if err := a.session.Save(resp.User, resp.Token); err != nil {
		return err
	}
	if a.jsonOut {
		return outputJSON(resp.User)
	}
	fmt.Printf("%s as %s (%s)\n", verb, resp.User.Username, resp.User.Email)
	return nil
}

func (a *app) cmdLogout() error {
	if err := a.session.Clear(); err != nil {
		return err
	}
	if a.jsonOut {
		return outputJSON(map[string]bool{"loggedOut": true})
	}
	fmt.Println("Logged out")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context, verify bool) error {
	user, _, err := a.session.Load()
	if err != nil {
		return err
	}
	valid := true
	if verify {
		if valid, err = a.client.Verify(ctx); err != nil {
			return err
		}
	}

	if a.jsonOut {
		return outputJSON(map[string]interface{}{"user": user, "valid": valid})
	}
	if user == nil {
		fmt.Println("Logged in (user record missing)")
	} else {
		fmt.Printf("%s <%s> #%d\n", user.Username, user.Email, user.ID)
	}
	if !valid {
		fmt.Println("Token rejected by the server, log in again.")
	}
	return nil
}

// Task commands

func (a *app) loadTasks(ctx context.Context) ([]tasks.Task, error) {
	if !a.session.IsAuthenticated() {
		return nil, session.ErrNoSession
	}
	goals, err := a.client.ListGoals(ctx)
	if err != nil {
		return nil, err
	}
	return tasks.FromGoals(goals), nil
}

func (a *app) findTask(ctx context.Context, rawID string) (tasks.Task, error) {
	id, err := parseID(rawID)
	if err != nil {
		return tasks.Task{}, err
	}
	list, err := a.loadTasks(ctx)
	if err != nil {
		return tasks.Task{}, err
	}
	t, ok := tasks.Find(list, id)
	if !ok {
		return tasks.Task{}, fmt.Errorf("task %d: %w", id, api.ErrNotFound)
	}
	return t, nil
}

func (a *app) cmdList(ctx context.Context, args []string) error {
	f, err := parseFilter(args)
	if err != nil {
		return err
	}
	list, err := a.loadTasks(ctx)
	if err != nil {
		return err
	}
	list = tasks.SortByPriority(f.Apply(list))

	if a.jsonOut {
		return outputTasks(list)
	}
	if len(list) == 0 {
		fmt.Println("No tasks. Add one with `taskbuddy add`.")
		return nil
	}
	var current tasks.Priority
	for _, t := range list {
		if t.Priority != current {
			current = t.Priority
			fmt.Printf("%s\n", strings.ToUpper(current.Label()))
		}
		printTask(t)
	}
	return nil
}

func (a *app) cmdDay(ctx context.Context, rawDate string) error {
	day, err := parseDay(rawDate)
	if err != nil {
		return err
	}
	list, err := a.loadTasks(ctx)
	if err != nil {
		return err
	}
	list = tasks.SortByPriority(tasks.ForDate(list, day))

	if a.jsonOut {
		return outputTasks(list)
	}
	fmt.Println(day.Format("Monday, 2 January 2006"))
	if len(list) == 0 {
		fmt.Println("  No tasks for this day")
		return nil
	}
	for _, t := range list {
		printTask(t)
	}
	return nil
}

func (a *app) cmdWeek(ctx context.Context, rawDate string) error {
	day, err := parseDay(rawDate)
	if err != nil {
		return err
	}
	list, err := a.loadTasks(ctx)
	if err != nil {
		return err
	}

	week := tasks.WeekDates(day)
	if a.jsonOut {
		byDay := make(map[string][]tasks.Task, len(week))
		for _, d := range week {
			byDay[tasks.FormatDate(d)] = append([]tasks.Task{}, tasks.SortByPriority(tasks.ForDate(list, d))...)
		}
		return outputJSON(byDay)
	}

	for _, d := range week {
		dayTasks := tasks.SortByPriority(tasks.ForDate(list, d))
		fmt.Printf("%s  (%d)\n", d.Format("Mon 02 Jan"), len(dayTasks))
		for _, t := range dayTasks {
			printTask(t)
		}
	}
	return nil
}

func (a *app) cmdAdd(ctx context.Context, args []string) error {
	d, rest := parseDraft(tasks.Draft{}, args)
	if len(rest) == 0 {
		return fmt.Errorf("usage: taskbuddy add <title> --category c")
	}
	d.Title = strings.Join(rest, " ")
	if d.DueDate == "" {
		d.DueDate = tasks.FormatDate(time.Now())
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if !a.session.IsAuthenticated() {
		return session.ErrNoSession
	}

	g, err := a.client.CreateGoal(ctx, d.Input())
	if err != nil {
		return err
	}
	return a.printSaved("Created", tasks.FromGoal(*g))
}

func (a *app) cmdEdit(ctx context.Context, rawID string, args []string) error {
	t, err := a.findTask(ctx, rawID)
	if err != nil {
		return err
	}
	d, rest := parseDraft(tasks.DraftFrom(t), args)
	if len(rest) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}
	if err := d.Validate(); err != nil {
		return err
	}

	g, err := a.client.UpdateGoal(ctx, d.Update(t.ID))
	if err != nil {
		return err
	}
	return a.printSaved("Updated", tasks.FromGoal(*g))
}

func (a *app) cmdSetCompleted(ctx context.Context, rawID string, completed bool) error {
	t, err := a.findTask(ctx, rawID)
	if err != nil {
		return err
	}
	g, err := a.client.UpdateGoal(ctx, tasks.CompletionUpdate(t.ID, completed))
	if err != nil {
		return err
	}
	verb := "Reopened"
	if completed {
		verb = "Completed"
	}
	return a.printSaved(verb, tasks.FromGoal(*g))
}

func (a *app) cmdDelete(ctx context.Context, rawID string) error {
	t, err := a.findTask(ctx, rawID)
	if err != nil {
		return err
	}
	if err := a.client.DeleteGoal(ctx, t.ID); err != nil {
		return err
	}
	if a.jsonOut {
		return outputJSON(map[string]interface{}{"deleted": t.ID})
	}
	fmt.Printf("Deleted: %s\n", t.Title)
	return nil
}

func (a *app) printSaved(verb string, t tasks.Task) error {
	if a.jsonOut {
		return outputJSON(t)
	}
	fmt.Printf("%s: %s\n", verb, t.Title)
	printTask(t)
	return nil
}

func printTask(t tasks.Task) {
	status := "○"
	if t.Completed {
		status = "✓"
	}
	due := ""
	if t.DueDate != "" {
		due = "  due " + t.DueDate
	}
	fmt.Printf("  %s #%d %s [%s/%s]%s\n", status, t.ID, t.Title, t.Category, t.Priority, due)
}

// outputTasks prints [] instead of null for an empty result.
func outputTasks(list []tasks.Task) error {
	if list == nil {
		list = []tasks.Task{}
	}
	return outputJSON(list)
}

// Notification and profile commands

func (a *app) cmdNotifications(ctx context.Context, unreadOnly bool) error {
	if !a.session.IsAuthenticated() {
		return session.ErrNoSession
	}
	nl, err := a.client.ListNotifications(ctx)
	if err != nil {
		return err
	}
	list := nl.Notifications
	if unreadOnly {
		list = nil
		for _, n := range nl.Notifications {
			if !n.IsRead {
				list = append(list, n)
			}
		}
	}

	if a.jsonOut {
		if list == nil {
			list = []api.Notification{}
		}
		return outputJSON(api.NotificationList{Notifications: list, UnreadCount: nl.UnreadCount})
	}
	fmt.Printf("%d unread\n", nl.UnreadCount)
	for _, n := range list {
		marker := " "
		if !n.IsRead {
			marker = "•"
		}
		fmt.Printf("%s #%d [%s] %s: %s\n", marker, n.ID, n.Type, n.Title, n.Message)
	}
	return nil
}

func (a *app) cmdRead(ctx context.Context, target string) error {
	if !a.session.IsAuthenticated() {
		return session.ErrNoSession
	}
	var ids []int64
	if target == "all" {
		nl, err := a.client.ListNotifications(ctx)
		if err != nil {
			return err
		}
		for _, n := range nl.Notifications {
			if !n.IsRead {
				ids = append(ids, n.ID)
			}
		}
	} else {
		id, err := parseID(target)
		if err != nil {
			return err
		}
		ids = []int64{id}
	}

	for _, id := range ids {
		if err := a.client.MarkNotificationRead(ctx, id); err != nil {
			return err
		}
	}
	if a.jsonOut {
		if ids == nil {
			ids = []int64{}
		}
		return outputJSON(map[string]interface{}{"read": ids})
	}
	fmt.Printf("Marked %d notification(s) as read\n", len(ids))
	return nil
}

func (a *app) cmdProfile(ctx context.Context) error {
	if !a.session.IsAuthenticated() {
		return session.ErrNoSession
	}
	p, err := a.client.GetProfile(ctx)
	if err != nil {
		return err
	}
	return a.printProfile(p)
}

func (a *app) cmdProfileSet(ctx context.Context, args []string) error {
	var u api.ProfileUpdate
	if v, rest := flagValue(args, "--bio"); len(rest) < len(args) {
		u.Bio = &v
		args = rest
	}
	if v, rest := flagValue(args, "--avatar"); len(rest) < len(args) {
		v = strings.TrimSpace(v)
		u.AvatarURL = &v
		args = rest
	}
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}
	if u.Empty() {
		return fmt.Errorf("usage: taskbuddy profile set [--bio text] [--avatar url]")
	}
	if !a.session.IsAuthenticated() {
		return session.ErrNoSession
	}

	p, err := a.client.UpdateProfile(ctx, u)
	if err != nil {
		return err
	}
	return a.printProfile(p)
}

func (a *app) printProfile(p *api.Profile) error {
	if a.jsonOut {
		return outputJSON(p)
	}
	fmt.Printf("%s <%s>\n", p.Username, p.Email)
	if p.Bio != nil && *p.Bio != "" {
		fmt.Printf("Bio: %s\n", *p.Bio)
	}
	if p.AvatarURL != nil && *p.AvatarURL != "" {
		fmt.Printf("Avatar: %s\n", *p.AvatarURL)
	}
	if p.Stats != nil {
		fmt.Printf("Tasks: %d total, %d completed (%.0f%%)\n",
			p.Stats.TotalGoals, p.Stats.CompletedGoals, p.Stats.CompletionRate())
	}
	if p.TelegramChatID != nil {
		fmt.Println("Telegram: connected")
	} else {
		fmt.Printf("Telegram: %s\n", a.cfg.TelegramLink(p.ID))
	}
	return nil
}

func (a *app) cmdConfig() error {
	if a.jsonOut {
		return outputJSON(a.cfg)
	}
	out, err := a.cfg.YAML()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// Settings commands

func (a *app) cmdSettings() error {
	if a.jsonOut {
		return outputJSON(a.cfg.Settings)
	}
	st := a.cfg.Settings
	fmt.Printf("Notifications: %s\n", onOff(st.Notifications))
	fmt.Printf("Telegram:      %s\n", onOff(st.TelegramNotifications))
	if st.TelegramUsername != "" {
		fmt.Printf("Telegram user: %s\n", st.TelegramUsername)
	}
	fmt.Printf("Email:         %s\n", onOff(st.EmailNotifications))
	fmt.Printf("Remind me:     %s\n", config.ReminderLabel(st.ReminderLead))
	fmt.Printf("Theme:         %s\n", st.Theme)
	fmt.Printf("Accent:        %s\n", st.Accent)
	return nil
}

func (a *app) cmdSettingsSet(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: taskbuddy settings set [--notifications on|off] [--telegram on|off] " +
			"[--email on|off] [--telegram-user name] [--reminder lead] [--theme dark|light] [--accent color]")
	}
	st, err := parseSettings(a.cfg.Settings, args)
	if err != nil {
		return err
	}
	a.cfg.Settings = st
	if err := a.cfg.Save(); err != nil {
		return err
	}
	if !a.jsonOut {
		fmt.Printf("Saved %s\n", a.cfg.Path)
	}
	return a.cmdSettings()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Argument parsing

// parseSettings overlays settings flags on s and validates the result.
func parseSettings(s config.Settings, args []string) (config.Settings, error) {
	toggles := []struct {
		flag   string
		target *bool
	}{
		{"--notifications", &s.Notifications},
		{"--telegram", &s.TelegramNotifications},
		{"--email", &s.EmailNotifications},
	}
	for _, tg := range toggles {
		v, rest := flagValue(args, tg.flag)
		if len(rest) == len(args) {
			continue
		}
		args = rest
		switch strings.ToLower(v) {
		case "on", "true", "yes":
			*tg.target = true
		case "off", "false", "no":
			*tg.target = false
		default:
			return s, fmt.Errorf("%s wants on or off, got %q", tg.flag, v)
		}
	}
	if v, rest := flagValue(args, "--telegram-user"); len(rest) < len(args) {
		s.TelegramUsername = config.NormalizeUsername(v)
		args = rest
	}
	if v, rest := flagValue(args, "--reminder"); len(rest) < len(args) {
		s.ReminderLead = v
		args = rest
	}
	if v, rest := flagValue(args, "--theme"); len(rest) < len(args) {
		s.Theme = v
		args = rest
	}
	if v, rest := flagValue(args, "--accent"); len(rest) < len(args) {
		s.Accent = v
		args = rest
	}
	if len(args) > 0 {
		return s, fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}
	return s, s.Validate()
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

// parseDay reads a YYYY-MM-DD argument; empty means today.
func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	day, err := tasks.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", raw)
	}
	return day, nil
}

func parseFilter(args []string) (tasks.Filter, error) {
	var f tasks.Filter
	var v string
	v, args = flagValue(args, "--mode")
	if v != "" {
		f.Mode = tasks.Mode(v)
		if f.Mode != tasks.ModePersonal && f.Mode != tasks.ModeStudy {
			return f, fmt.Errorf("unknown mode %q", v)
		}
	}
	v, args = flagValue(args, "--priority")
	if v != "" {
		f.Priority = tasks.Priority(v)
		if !f.Priority.Valid() {
			return f, fmt.Errorf("unknown priority %q", v)
		}
	}
	v, args = flagValue(args, "--category")
	if v != "" {
		f.Category = tasks.Category(v)
		if !f.Category.Valid() {
			return f, fmt.Errorf("unknown category %q", v)
		}
	}
	v, args = flagValue(args, "--status")
	if v != "" {
		f.Status = tasks.StatusFilter(v)
		switch f.Status {
		case tasks.StatusAll, tasks.StatusActive, tasks.StatusCompleted:
		default:
			return f, fmt.Errorf("unknown status %q", v)
		}
	}
	if len(args) > 0 {
		return f, fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}
	return f, nil
}

// parseDraft overlays the task flags onto d and returns the leftover
// positional arguments.
func parseDraft(d tasks.Draft, args []string) (tasks.Draft, []string) {
	set := func(flag string, dst *string) {
		before := len(args)
		var v string
		v, args = flagValue(args, flag)
		if len(args) < before {
			*dst = v
		}
	}
	var category, priority string
	category, priority = string(d.Category), string(d.Priority)
	set("--title", &d.Title)
	set("--desc", &d.Description)
	set("--category", &category)
	set("--priority", &priority)
	set("--due", &d.DueDate)
	d.Category = tasks.Category(category)
	d.Priority = tasks.Priority(priority)
	return d, args
}
