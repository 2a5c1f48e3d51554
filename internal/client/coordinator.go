package client

import (
	"context"
	"fmt"
	"os"
)

// Confirmer asks the user to approve a destructive action. Returning
// false aborts the action without error.
type Confirmer func(prompt string) bool

// Saver hands a downloaded artifact to whatever stores files for the
// user.
type Saver func(filename string, content []byte) error

// ActionGateway is the slice of the gateway the coordinator needs.
type ActionGateway interface {
	CancelTask(ctx context.Context, id string) error
	FetchArtifact(ctx context.Context, id string) ([]byte, string, error)
}

// Refresher triggers an immediate poll so the view reflects the last
// acknowledged backend state.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Coordinator executes user-initiated task actions. Mutations go
// through the gateway and are followed by an immediate poller refresh;
// the local snapshot is never edited directly.
type Coordinator struct {
	gateway ActionGateway
	poller  Refresher
	confirm Confirmer
	save    Saver
}

// NewCoordinator wires the coordinator. A nil confirm approves every
// action; a nil save writes artifacts to the working directory.
func NewCoordinator(gateway ActionGateway, poller Refresher, confirm Confirmer, save Saver) *Coordinator {
	if save == nil {
		save = func(filename string, content []byte) error {
			return os.WriteFile(filename, content, 0o644)
		}
	}
	return &Coordinator{
		gateway: gateway,
		poller:  poller,
		confirm: confirm,
		save:    save,
	}
}

// Cancel cancels a pending task after confirmation, then refreshes the
// snapshot. On gateway failure the error propagates and no refresh
// happens. Cancelling an already-settled task surfaces the backend's
// InvalidStateError rather than silently succeeding.
func (c *Coordinator) Cancel(ctx context.Context, taskID string) error {
	if c.confirm != nil && !c.confirm(fmt.Sprintf("cancel task %s?", taskID)) {
		return nil
	}

	if err := c.gateway.CancelTask(ctx, taskID); err != nil {
		return err
	}
	return c.poller.Refresh(ctx)
}

// Download fetches the artifact of a completed task and saves it as
// research_report_<taskID>.docx. Downloads have no server-side state
// effect, so no refresh follows.
func (c *Coordinator) Download(ctx context.Context, taskID string) (string, error) {
	content, _, err := c.gateway.FetchArtifact(ctx, taskID)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("research_report_%s.docx", taskID)
	if err := c.save(filename, content); err != nil {
		return "", err
	}
	return filename, nil
}
