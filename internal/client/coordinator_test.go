package client

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeActionGateway struct {
	mu          sync.Mutex
	cancelCalls []string
	cancelErr   error
	artifact    []byte
	fetchErr    error
}

func (g *fakeActionGateway) CancelTask(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelCalls = append(g.cancelCalls, id)
	return g.cancelErr
}

func (g *fakeActionGateway) FetchArtifact(ctx context.Context, id string) ([]byte, string, error) {
	if g.fetchErr != nil {
		return nil, "", g.fetchErr
	}
	return g.artifact, "server_suggested_name.docx", nil
}

type fakeRefresher struct {
	mu    sync.Mutex
	calls int
}

func (r *fakeRefresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return nil
}

func (r *fakeRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestCoordinatorCancelRefreshes(t *testing.T) {
	gw := &fakeActionGateway{}
	refresher := &fakeRefresher{}
	c := NewCoordinator(gw, refresher, nil, func(string, []byte) error { return nil })

	assert.NoError(t, c.Cancel(context.Background(), "t1"))
	assert.Equal(t, []string{"t1"}, gw.cancelCalls)
	assert.Equal(t, 1, refresher.count())
}

func TestCoordinatorCancelDeclined(t *testing.T) {
	gw := &fakeActionGateway{}
	refresher := &fakeRefresher{}
	declined := func(prompt string) bool { return false }
	c := NewCoordinator(gw, refresher, declined, func(string, []byte) error { return nil })

	assert.NoError(t, c.Cancel(context.Background(), "t1"))
	assert.Empty(t, gw.cancelCalls)
	assert.Equal(t, 0, refresher.count())
}

func TestCoordinatorCancelFailureSkipsRefresh(t *testing.T) {
	gw := &fakeActionGateway{cancelErr: &InvalidStateError{Detail: "only pending tasks can be cancelled"}}
	refresher := &fakeRefresher{}
	c := NewCoordinator(gw, refresher, nil, func(string, []byte) error { return nil })

	var isErr *InvalidStateError
	err := c.Cancel(context.Background(), "t1")
	assert.ErrorAs(t, err, &isErr)
	assert.Equal(t, 0, refresher.count())
}

func TestCoordinatorDownload(t *testing.T) {
	gw := &fakeActionGateway{artifact: []byte("report content")}
	refresher := &fakeRefresher{}

	var savedName string
	var savedContent []byte
	save := func(filename string, content []byte) error {
		savedName = filename
		savedContent = content
		return nil
	}
	c := NewCoordinator(gw, refresher, nil, save)

	filename, err := c.Download(context.Background(), "t1")
	assert.NoError(t, err)
	// The console names artifacts itself, regardless of server suggestion.
	assert.Equal(t, "research_report_t1.docx", filename)
	assert.Equal(t, "research_report_t1.docx", savedName)
	assert.Equal(t, []byte("report content"), savedContent)
	// Downloads have no server-side effect: no refresh.
	assert.Equal(t, 0, refresher.count())
}

func TestCoordinatorDownloadFailure(t *testing.T) {
	gw := &fakeActionGateway{fetchErr: &NotFoundError{Detail: "report not available"}}
	c := NewCoordinator(gw, &fakeRefresher{}, nil, func(string, []byte) error { return nil })

	var nfErr *NotFoundError
	_, err := c.Download(context.Background(), "t1")
	assert.ErrorAs(t, err, &nfErr)
}
