package workers

import "context"

// Group runs several workers as one unit: Start launches them in registration
// order, Stop shuts them down in reverse so dependents go first.
type Group struct {
	workers []Worker
}

// NewGroup builds a group over the given workers.
func NewGroup(ws ...Worker) *Group {
	return &Group{workers: ws}
}

// Add registers another worker. Must be called before Start.
func (g *Group) Add(w Worker) {
	g.workers = append(g.workers, w)
}

func (g *Group) Start(ctx context.Context) {
	for _, w := range g.workers {
		w.Start(ctx)
	}
}

func (g *Group) Stop() {
	for i := len(g.workers) - 1; i >= 0; i-- {
		g.workers[i].Stop()
	}
}
