package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vinony/internal/models"
)

// Image schedules an image render of prompt.
func (a *App) Image(ctx context.Context, prompt string) error {
	if a.sched.HasPending(models.JobKindImage) {
		return ErrBusy
	}
	if _, err := a.sched.SubmitImageGeneration(ctx, prompt); err != nil {
		return err
	}
	a.println("Generating image...")
	return nil
}

// Images lists generated images, newest first.
func (a *App) Images(ctx context.Context) error {
	history := a.sched.History(ctx)
	if len(history) == 0 {
		a.println("No images yet")
		return nil
	}
	for _, r := range history {
		a.println(fmt.Sprintf("%s  %s  %q\n    %s", r.ID, r.Timestamp.Local().Format("2006-01-02 15:04"), r.Prompt, r.ResultURL))
	}
	return nil
}

// RmImage deletes a generated image record.
func (a *App) RmImage(ctx context.Context, id string) error {
	if err := a.sched.DeleteGenerationRecord(ctx, id); err != nil {
		return err
	}
	a.println("Image deleted")
	return nil
}
