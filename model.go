package gaze

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
)

// A Node is one actor of a model, independent of its client type. Only Actor implements it.
type Node interface {
	meta() *Meta
	verify() error
	seal()
	flow() []EdgeInfo
	run(m *Model) error
}

// Model is the wired graph of actors plus its lifecycle controller: built, checked, run, awaited. A model is not
// reentrant.
type Model struct {
	actors  []Node
	err     *Err
	wg      sync.WaitGroup
	dn      chan struct{}
	on      sync.Once
	drain   atomic.Bool
	checked bool
	running bool
}

// NewModel returns a new Model over actors. Call Check before Run.
func NewModel(actors ...Node) *Model {
	return &Model{
		actors: actors,
		err:    NewErr(),
		dn:     make(chan struct{}),
	}
}

// bound is one edge with its endpoint indices in the actor list.
type bound struct {
	e EdgeInfo
	i int
	j int
}

// graph flattens the model topology into indexed edges, failing on edges leaving the model.
func (m *Model) graph() ([]bound, error) {
	idx := map[*Meta]int{}
	for i, a := range m.actors {
		idx[a.meta()] = i
	}
	r := []bound{}
	for i, a := range m.actors {
		for _, e := range a.flow() {
			j, b := idx[e.Consumer]
			if !b {
				return nil, fmt.Errorf("%w: output %s of %s is wired to an actor outside the model", ErrTopology, e.Uid.Name, e.Producer.Name)
			}
			r = append(r, bound{e: e, i: i, j: j})
		}
	}
	return r, nil
}

// Check validates the model: no dangling ports, no duplicate uid on one input side, the rate divisibility law on
// every edge, and at least one bootstrapped edge in every cycle. A checked model is sealed against further wiring.
func (m *Model) Check() error {
	if len(m.actors) == 0 {
		return fmt.Errorf("%w: empty model", ErrTopology)
	}
	for _, a := range m.actors {
		if err := a.verify(); err != nil {
			return err
		}
	}
	bs, err := m.graph()
	if err != nil {
		return err
	}
	for _, b := range bs {
		rp := b.e.Producer.NO
		rc := b.e.Consumer.NI
		if rp%rc != 0 && rc%rp != 0 {
			return fmt.Errorf("%w: rate %d:%d on %s between %s and %s", ErrTopology, rp, rc, b.e.Uid.Name, b.e.Producer.Name, b.e.Consumer.Name)
		}
	}
	adj := make([][]int, len(m.actors))
	for _, b := range bs {
		adj[b.i] = append(adj[b.i], b.j)
	}
	comp := scc(adj)
	boot := map[int]bool{}
	knot := map[int][]string{}
	for _, b := range bs {
		if comp[b.i] != comp[b.j] {
			continue
		}
		knot[comp[b.i]] = append(knot[comp[b.i]], b.e.Uid.Name)
		if b.e.Bootstrap {
			boot[comp[b.i]] = true
		}
	}
	for c, uids := range knot {
		if !boot[c] {
			return fmt.Errorf("%w: cycle without bootstrap through %s", ErrTopology, strings.Join(uids, ", "))
		}
	}
	for _, a := range m.actors {
		a.seal()
	}
	m.checked = true
	return nil
}

// scc returns the strongly connected component id of every vertex, by Tarjan's algorithm.
func scc(adj [][]int) []int {
	n := len(adj)
	id := make([]int, n)
	low := make([]int, n)
	num := make([]int, n)
	for i := 0; i < n; i++ {
		num[i] = -1
	}
	stack := []int{}
	onstk := make([]bool, n)
	c := 0
	t := 0
	var dfs func(v int)
	dfs = func(v int) {
		num[v] = t
		low[v] = t
		t++
		stack = append(stack, v)
		onstk[v] = true
		for _, w := range adj[v] {
			if num[w] == -1 {
				dfs(w)
				low[v] = min(low[v], low[w])
			} else if onstk[w] {
				low[v] = min(low[v], num[w])
			}
		}
		if low[v] == num[v] {
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onstk[w] = false
				id[w] = c
				if w == v {
					break
				}
			}
			c++
		}
	}
	for v := 0; v < n; v++ {
		if num[v] == -1 {
			dfs(v)
		}
	}
	return id
}

// Flowchart returns a text description of the model topology. It can be requested at any time, before or after
// Check.
func (m *Model) Flowchart() string {
	b := &strings.Builder{}
	b.WriteString("flowchart\n")
	for _, a := range m.actors {
		mt := a.meta()
		fmt.Fprintf(b, "  %s (%d:%d)\n", mt.Name, mt.NI, mt.NO)
		for _, e := range a.flow() {
			mark := ""
			if e.Bootstrap {
				mark += " +bootstrap"
			}
			if e.Unbounded {
				mark += " +unbounded"
			}
			fmt.Fprintf(b, "    -- %s/%d --> %s%s\n", e.Uid.Name, e.Rate, e.Consumer.Name, mark)
		}
	}
	return b.String()
}

// Run launches each actor as a cooperative task. The model must have been checked.
func (m *Model) Run() error {
	if !m.checked {
		return fmt.Errorf("%w: model is unchecked", ErrWiring)
	}
	if m.running {
		return fmt.Errorf("%w: model is not reentrant", ErrWiring)
	}
	m.running = true
	log.Println("gaze: run actors", len(m.actors))
	for _, a := range m.actors {
		m.wg.Add(1)
		go func(a Node) {
			defer m.wg.Done()
			a.run(m)
		}(a)
	}
	return nil
}

// Wait joins every actor task and returns the first fatal error, or nil when the model drained gracefully.
func (m *Model) Wait() error {
	m.wg.Wait()
	return m.err.Get()
}

// Stop closes all sources cooperatively. Actors wind down gracefully, then Wait returns.
func (m *Model) Stop() {
	m.on.Do(func() {
		m.drain.Store(true)
		close(m.dn)
	})
}
