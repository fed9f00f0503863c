package coalescent

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coalsim/pkg/errors"
	"github.com/matzehuels/coalsim/pkg/lineage"
)

func TestSimulateTreeShape(t *testing.T) {
	for n := 2; n <= 40; n++ {
		res, err := New(NewSource(uint64(n))).Simulate(Config{N: n})
		if err != nil {
			t.Fatalf("Simulate(n=%d) error: %v", n, err)
		}
		tree := res.Tree
		if got := tree.LeafCount(); got != n {
			t.Errorf("n=%d: LeafCount() = %d, want %d", n, got, n)
		}
		if got := tree.InternalCount(); got != n-1 {
			t.Errorf("n=%d: InternalCount() = %d, want %d", n, got, n-1)
		}
		if err := tree.Validate(); err != nil {
			t.Errorf("n=%d: Validate() error: %v", n, err)
		}
		if v := tree.TimeViolations(); len(v) != 0 {
			t.Errorf("n=%d: TimeViolations() = %v", n, v)
		}
		if res.Mutations != 0 {
			t.Errorf("n=%d: Mutations = %d without theta", n, res.Mutations)
		}
		if tree.Time(tree.Root()) <= 0 {
			t.Errorf("n=%d: root time = %v, want > 0", n, tree.Time(tree.Root()))
		}
	}
}

func TestSimulatePair(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		res, err := Simulate(NewSource(seed), Config{N: 2})
		if err != nil {
			t.Fatalf("Simulate() error: %v", err)
		}
		root, _ := res.Tree.Node(res.Root())
		if !res.Tree.IsLeaf(root.Left) || !res.Tree.IsLeaf(root.Right) {
			t.Errorf("seed %d: root children (%d, %d) are not both leaves", seed, root.Left, root.Right)
		}
	}
}

func TestSimulateScripted(t *testing.T) {
	// Iteration 1: pair (0,1), coalescence at 4, mutation at 0.5 wins and
	// lands on position 1. Iteration 2: pair (0,1), coalescence at 1.5,
	// mutation at 5.5 loses.
	src := &scriptedSource{
		t:    t,
		ints: []int{0, 0, 1, 0, 0},
		exps: []float64{4, 1, 1, 10},
	}
	var events []Event
	res, err := New(src, WithEventHook(func(ev Event) { events = append(events, ev) })).
		Simulate(Config{N: 2, Theta: Float(2)})
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if !src.drained() {
		t.Errorf("unused variates: ints=%v exps=%v", src.ints, src.exps)
	}

	if res.Mutations != 1 {
		t.Errorf("Mutations = %d, want 1", res.Mutations)
	}
	root, _ := res.Tree.Node(res.Root())
	if root.Time != 1.5 {
		t.Errorf("root time = %v, want 1.5", root.Time)
	}
	right, _ := res.Tree.Node(root.Right)
	if !right.Mutations.Has(0) {
		t.Errorf("right leaf mutations = %v, want [0]", right.Mutations.Sorted())
	}
	left, _ := res.Tree.Node(root.Left)
	if left.Mutations.Len() != 0 {
		t.Errorf("left leaf mutations = %v, want none", left.Mutations.Sorted())
	}

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Kind != EventMutation || events[0].Time != 0.5 || events[0].Index != 0 {
		t.Errorf("events[0] = %+v, want mutation 0 at 0.5", events[0])
	}
	if events[1].Kind != EventCoalescence || events[1].Time != 1.5 || events[1].Lineage != res.Root() {
		t.Errorf("events[1] = %+v, want coalescence at 1.5", events[1])
	}
}

func TestSimulateHighTheta(t *testing.T) {
	var events []Event
	engine := New(NewSource(3), WithEventHook(func(ev Event) { events = append(events, ev) }))
	res, err := engine.Simulate(Config{N: 6, Theta: Float(200)})
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if res.Tree.LeafCount() != 6 || res.Tree.InternalCount() != 5 {
		t.Errorf("tree has %d leaves and %d internal nodes", res.Tree.LeafCount(), res.Tree.InternalCount())
	}
	if res.Mutations == 0 {
		t.Fatal("expected mutations with theta=200")
	}

	next := 0
	last := 0.0
	for _, ev := range events {
		if ev.Time < last {
			t.Errorf("event time %v went backwards from %v", ev.Time, last)
		}
		last = ev.Time
		if ev.Kind == EventMutation {
			if ev.Index != next {
				t.Errorf("mutation index = %d, want %d", ev.Index, next)
			}
			next++
		}
	}
	if next != res.Mutations {
		t.Errorf("mutation events = %d, want %d", next, res.Mutations)
	}

	// Every index appears on exactly one lineage.
	seen := make(map[int]int)
	for _, n := range res.Tree.Nodes() {
		for _, i := range n.Mutations.Sorted() {
			seen[i]++
		}
	}
	for i := 0; i < res.Mutations; i++ {
		if seen[i] != 1 {
			t.Errorf("mutation %d recorded %d times", i, seen[i])
		}
	}
	if got := res.Tree.MutationCount(); got != res.Mutations {
		t.Errorf("MutationCount() = %d, want %d", got, res.Mutations)
	}
}

func TestSimulateChangepoint(t *testing.T) {
	for _, t0 := range []float64{0, 0.05, 0.5, 5} {
		res, err := Simulate(NewSource(11), Config{N: 12, T0: Float(t0)})
		if err != nil {
			t.Fatalf("Simulate(t0=%v) error: %v", t0, err)
		}
		if v := res.Tree.TimeViolations(); len(v) != 0 {
			t.Errorf("t0=%v: TimeViolations() = %v", t0, v)
		}
		if res.Tree.LeafCount() != 12 {
			t.Errorf("t0=%v: LeafCount() = %d, want 12", t0, res.Tree.LeafCount())
		}
	}
}

func TestSimulateDeterministic(t *testing.T) {
	cfg := Config{N: 15, T0: Float(0.2), Theta: Float(3)}
	a, err := Simulate(NewSource(99), cfg)
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	b, err := Simulate(NewSource(99), cfg)
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if !lineage.Equal(a.Tree, b.Tree) || a.Mutations != b.Mutations {
		t.Error("same seed produced different genealogies")
	}
}

func TestSimulateInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"single individual", Config{N: 1}},
		{"empty sample", Config{N: 0}},
		{"zero theta", Config{N: 5, Theta: Float(0)}},
		{"negative theta", Config{N: 5, Theta: Float(-2)}},
		{"negative t0", Config{N: 5, T0: Float(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// An empty script fails the test if the engine draws anything.
			src := &scriptedSource{t: t}
			_, err := New(src).Simulate(tt.cfg)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Simulate() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestSimulateLogsDebugSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	if _, err := New(NewSource(1), WithLogger(logger)).Simulate(Config{N: 4}); err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("simulation complete")) {
		t.Errorf("log output %q should contain the summary", buf.String())
	}
}

func TestRemovePair(t *testing.T) {
	tests := []struct {
		name string
		i, j int
		in   []lineage.NodeID
		want map[lineage.NodeID]bool
	}{
		{"middle and tail", 1, 3, []lineage.NodeID{0, 1, 2, 3}, map[lineage.NodeID]bool{0: true, 2: true}},
		{"head and tail", 0, 3, []lineage.NodeID{0, 1, 2, 3}, map[lineage.NodeID]bool{1: true, 2: true}},
		{"reversed order", 2, 0, []lineage.NodeID{0, 1, 2}, map[lineage.NodeID]bool{1: true}},
		{"last two", 0, 1, []lineage.NodeID{5, 6}, map[lineage.NodeID]bool{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := removePair(append([]lineage.NodeID(nil), tt.in...), tt.i, tt.j)
			if len(got) != len(tt.want) {
				t.Fatalf("removePair() = %v, want %v", got, tt.want)
			}
			for _, id := range got {
				if !tt.want[id] {
					t.Errorf("removePair() kept %d", id)
				}
			}
		})
	}
}
