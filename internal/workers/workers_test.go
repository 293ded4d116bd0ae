package workers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// trackingWorker records lifecycle calls into a shared log.
type trackingWorker struct {
	id  int
	log *[]string
}

func (w *trackingWorker) Start(context.Context) {
	*w.log = append(*w.log, "start")
}

func (w *trackingWorker) Stop() {
	*w.log = append(*w.log, "stop")
}

// orderWorker records its id on Start and Stop.
type orderWorker struct {
	id      int
	started *[]int
	stopped *[]int
}

func (w *orderWorker) Start(context.Context) {
	*w.started = append(*w.started, w.id)
}

func (w *orderWorker) Stop() {
	*w.stopped = append(*w.stopped, w.id)
}

func TestGroup_StartAndStopAll(t *testing.T) {
	var log []string
	g := NewGroup(
		&trackingWorker{id: 1, log: &log},
		&trackingWorker{id: 2, log: &log},
	)

	g.Start(context.Background())
	g.Stop()

	assert.Equal(t, []string{"start", "start", "stop", "stop"}, log)
}

func TestGroup_StopsInReverseOrder(t *testing.T) {
	var started, stopped []int
	g := NewGroup()
	for i := 1; i <= 3; i++ {
		g.Add(&orderWorker{id: i, started: &started, stopped: &stopped})
	}

	g.Start(context.Background())
	g.Stop()

	assert.Equal(t, []int{1, 2, 3}, started)
	assert.Equal(t, []int{3, 2, 1}, stopped)
}

func TestGroup_Empty(t *testing.T) {
	g := NewGroup()
	g.Start(context.Background())
	g.Stop()
}
