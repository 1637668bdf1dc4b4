package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/vinony/internal/common"
	"github.com/dmitrijs2005/vinony/internal/models"
)

// NewThread starts an empty thread and selects it.
func (a *App) NewThread(ctx context.Context) error {
	t, err := a.conv.CreateThread(ctx)
	if err != nil {
		return err
	}
	a.println("Created thread", t.ID)
	return nil
}

// Threads lists threads, newest first. The active one is starred.
func (a *App) Threads(ctx context.Context) error {
	threads := a.conv.ListThreads(ctx)
	if len(threads) == 0 {
		a.println("No threads")
		return nil
	}

	activeID := ""
	if t, err := a.conv.ActiveThread(ctx); err == nil {
		activeID = t.ID
	}

	for i, t := range threads {
		mark := " "
		if t.ID == activeID {
			mark = "*"
		}
		a.println(fmt.Sprintf("%s %2d. %-36s  %-13s  %3d msg  %s", mark, i+1, t.ID, t.Model, len(t.Messages), t.Title))
	}
	return nil
}

// resolveThread accepts a 1-based position in the list, a full ID or a
// unique ID prefix.
func (a *App) resolveThread(ctx context.Context, ref string) (string, error) {
	threads := a.conv.ListThreads(ctx)

	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(threads) && len(ref) < 8 {
		return threads[n-1].ID, nil
	}

	match := ""
	for _, t := range threads {
		if t.ID == ref {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("ambiguous thread reference %q", ref)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", common.ErrThreadNotFound
	}
	return match, nil
}

// Select makes the referenced thread active.
func (a *App) Select(ctx context.Context, ref string) error {
	id, err := a.resolveThread(ctx, ref)
	if err != nil {
		return err
	}
	if err := a.conv.SelectThread(ctx, id); err != nil {
		return err
	}
	return a.Show(ctx)
}

// Rm deletes the referenced thread.
func (a *App) Rm(ctx context.Context, ref string) error {
	id, err := a.resolveThread(ctx, ref)
	if err != nil {
		return err
	}
	if err := a.conv.DeleteThread(ctx, id); err != nil {
		return err
	}
	a.println("Thread deleted")
	return nil
}

// Model binds the active thread to another chat model.
func (a *App) Model(ctx context.Context, name string) error {
	t, err := a.conv.ActiveThread(ctx)
	if err != nil {
		return err
	}
	if err := a.conv.SetModel(ctx, t.ID, name); err != nil {
		return err
	}
	a.println("Model set to", name)
	return nil
}

// Show prints the active thread.
func (a *App) Show(ctx context.Context) error {
	t, err := a.conv.ActiveThread(ctx)
	if err != nil {
		return err
	}

	a.println(fmt.Sprintf("== %s (%s)", t.Title, t.Model))
	if len(t.Messages) == 0 {
		a.println("(no messages yet)")
	}
	for _, m := range t.Messages {
		a.println(fmt.Sprintf("[%s] %s:", m.Timestamp.Local().Format("15:04:05"), m.Role))
		a.println(m.Content)
	}
	if a.sched.HasPending(models.JobKindChat) {
		a.println("(assistant is typing...)")
	}
	return nil
}

// Send posts text to the active thread and schedules the reply.
func (a *App) Send(ctx context.Context, text string) error {
	if a.sched.HasPending(models.JobKindChat) {
		return ErrBusy
	}
	t, err := a.conv.ActiveThread(ctx)
	if err != nil {
		return err
	}

	if _, err := a.sched.SubmitChatCompletion(ctx, t.ID, text); err != nil {
		return err
	}
	a.println("Sent, waiting for the reply...")
	return nil
}
