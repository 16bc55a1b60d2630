// Package calendar composes the week computation and the todo store into
// the render model shown by the TUI and the show/export commands.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cwarden/wkcal/internal/config"
	"github.com/cwarden/wkcal/internal/i18n"
	"github.com/cwarden/wkcal/internal/todo"
	"github.com/cwarden/wkcal/internal/week"
)

// Mode selects where the seven columns come from.
type Mode int

const (
	// ModeWeekdays shows the seven weekday names, an evergreen weekly table.
	ModeWeekdays Mode = iota
	// ModeDates shows the concrete dates of the week containing View.Base.
	ModeDates
)

func (m Mode) String() string {
	if m == ModeDates {
		return config.ViewDates
	}
	return config.ViewWeekdays
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case config.ViewWeekdays, "weekday", "":
		return ModeWeekdays, nil
	case config.ViewDates, "date":
		return ModeDates, nil
	}
	return ModeWeekdays, fmt.Errorf("invalid view mode: %q", s)
}

// View identifies what to render.
type View struct {
	Scope string
	Mode  Mode
	// Base is any moment in the week to show in ModeDates. Zero means now.
	Base time.Time
}

type Day struct {
	Key       string
	Label     string
	Short     string
	DateLabel string
	Date      time.Time
	Weekday   time.Weekday
	Today     bool
	Tasks     []todo.Task
}

// Pending counts the tasks not yet completed.
func (d Day) Pending() int {
	return todo.Bucket(d.Tasks).Pending()
}

type RenderModel struct {
	Scope       string
	Mode        Mode
	StartOfWeek config.StartOfWeek
	Language    string
	Days        []Day
}

// Day returns the column stored under key.
func (r *RenderModel) Day(key string) (Day, bool) {
	key = week.NormalizeKey(key)
	for _, d := range r.Days {
		if d.Key == key {
			return d, true
		}
	}
	return Day{}, false
}

// Counts returns the number of pending and completed tasks in the model.
func (r *RenderModel) Counts() (pending, completed int) {
	for _, d := range r.Days {
		p := d.Pending()
		pending += p
		completed += len(d.Tasks) - p
	}
	return pending, completed
}

// TaskStore is the part of *todo.Store the controller drives.
type TaskStore interface {
	Days(ctx context.Context, scope string) (todo.Days, error)
	AddTodo(ctx context.Context, scope, day, text string) (*todo.Task, error)
	RemoveTodo(ctx context.Context, scope, day, text string) (int, error)
	RemoveByID(ctx context.Context, scope, day, id string) (bool, error)
	ToggleCompleted(ctx context.Context, scope, day, text string) (bool, error)
	ToggleByID(ctx context.Context, scope, day, id string) (bool, error)
	ClearCompleted(ctx context.Context, scope string) (int, error)
}

// SettingsSource supplies the current settings on every render.
type SettingsSource interface {
	Get() config.Settings
}

type Controller struct {
	store      TaskStore
	settings   SettingsSource
	now        func() time.Time
	dateFormat string
}

type Option func(*Controller)

// WithClock replaces time.Now, which decides "today" and the default week.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithDateFormat sets the time layout of Day.DateLabel.
func WithDateFormat(layout string) Option {
	return func(c *Controller) {
		if layout != "" {
			c.dateFormat = layout
		}
	}
}

func New(store TaskStore, settings SettingsSource, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		settings:   settings,
		now:        time.Now,
		dateFormat: "Jan 2",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render builds the model for v from freshly loaded data.
func (c *Controller) Render(ctx context.Context, v View) (*RenderModel, error) {
	settings := c.settings.Get()
	labels := i18n.For(settings.Language)
	now := c.now()

	days, err := c.store.Days(ctx, v.Scope)
	if err != nil {
		return nil, err
	}

	model := &RenderModel{
		Scope:       v.Scope,
		Mode:        v.Mode,
		StartOfWeek: settings.StartOfWeek,
		Language:    settings.Language,
		Days:        make([]Day, 0, 7),
	}

	switch v.Mode {
	case ModeDates:
		base := v.Base
		if base.IsZero() {
			base = now
		}
		for _, date := range week.Dates(base, int(settings.StartOfWeek.Weekday())) {
			key := week.DateKey(date)
			model.Days = append(model.Days, Day{
				Key:       key,
				Label:     labels.Day(date.Weekday()),
				Short:     labels.ShortDay(date.Weekday()),
				DateLabel: date.Format(c.dateFormat),
				Date:      date,
				Weekday:   date.Weekday(),
				Today:     week.SameDay(date, now),
				Tasks:     tasksOf(days, key),
			})
		}
	default:
		for _, wd := range week.Weekdays(settings.StartOfWeek.Weekday()) {
			key := week.WeekdayKey(wd)
			model.Days = append(model.Days, Day{
				Key:     key,
				Label:   labels.Day(wd),
				Short:   labels.ShortDay(wd),
				Weekday: wd,
				Today:   wd == now.Weekday(),
				Tasks:   tasksOf(days, key),
			})
		}
	}
	return model, nil
}

func tasksOf(days todo.Days, key string) []todo.Task {
	tasks := make([]todo.Task, len(days[key]))
	copy(tasks, days[key])
	return tasks
}

// Add appends text to day and re-renders. Blank text changes nothing.
func (c *Controller) Add(ctx context.Context, v View, day, text string) (*RenderModel, error) {
	if _, err := c.store.AddTodo(ctx, v.Scope, day, text); err != nil {
		return nil, err
	}
	return c.Render(ctx, v)
}

// Remove deletes every task on day whose text equals text.
func (c *Controller) Remove(ctx context.Context, v View, day, text string) (*RenderModel, error) {
	if _, err := c.store.RemoveTodo(ctx, v.Scope, day, text); err != nil {
		return nil, err
	}
	return c.Render(ctx, v)
}

func (c *Controller) RemoveByID(ctx context.Context, v View, day, id string) (*RenderModel, error) {
	if _, err := c.store.RemoveByID(ctx, v.Scope, day, id); err != nil {
		return nil, err
	}
	return c.Render(ctx, v)
}

// Toggle flips the first task on day whose text equals text.
func (c *Controller) Toggle(ctx context.Context, v View, day, text string) (*RenderModel, error) {
	if _, err := c.store.ToggleCompleted(ctx, v.Scope, day, text); err != nil {
		return nil, err
	}
	return c.Render(ctx, v)
}

func (c *Controller) ToggleByID(ctx context.Context, v View, day, id string) (*RenderModel, error) {
	if _, err := c.store.ToggleByID(ctx, v.Scope, day, id); err != nil {
		return nil, err
	}
	return c.Render(ctx, v)
}

// ClearCompleted drops completed tasks from every day of the scope, not
// only the days on screen.
func (c *Controller) ClearCompleted(ctx context.Context, v View) (*RenderModel, int, error) {
	n, err := c.store.ClearCompleted(ctx, v.Scope)
	if err != nil {
		return nil, 0, err
	}
	model, err := c.Render(ctx, v)
	return model, n, err
}
