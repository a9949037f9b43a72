package nav

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tinydiff/internal/core/filetree"
	"github.com/colonyops/tinydiff/internal/core/git"
)

func exampleTree() []*filetree.Node {
	return filetree.Build(git.Status{
		Staged: []git.ChangeRecord{{Path: "src/app.tsx", Kind: git.StatusModified, Staged: true}},
		Unstaged: []git.ChangeRecord{
			{Path: "src/app.tsx", Kind: git.StatusModified},
			{Path: "src/lib/utils.ts", Kind: git.StatusModified},
			{Path: "README.md", Kind: git.StatusModified},
		},
	})
}

func at(path string) State { return State{FocusedPath: path} }

func TestApply(t *testing.T) {
	tree := exampleTree()
	// rows: src, src/lib, src/lib/utils.ts, src/app.tsx (staged), src/app.tsx, README.md

	tests := []struct {
		name          string
		state         State
		key           Key
		wantPath      string
		wantStaged    bool
		wantCollapsed []string
		wantSelection *Selection
	}{
		{name: "down from nothing", state: State{}, key: KeyDown, wantPath: "src"},
		{name: "up from nothing wraps to last", state: State{}, key: KeyUp, wantPath: "README.md"},
		{name: "down", state: at("src"), key: KeyDown, wantPath: "src/lib"},
		{name: "down wraps", state: at("README.md"), key: KeyDown, wantPath: "src"},
		{name: "up wraps", state: at("src"), key: KeyUp, wantPath: "README.md"},
		{
			name:       "down moves from staged to unstaged duplicate",
			state:      State{FocusedPath: "src/app.tsx", FocusedStaged: true},
			key:        KeyDown,
			wantPath:   "src/app.tsx",
			wantStaged: false,
		},
		{
			name:       "up lands on staged duplicate",
			state:      at("src/app.tsx"),
			key:        KeyUp,
			wantPath:   "src/app.tsx",
			wantStaged: true,
		},
		{name: "home", state: at("README.md"), key: KeyHome, wantPath: "src"},
		{name: "end", state: at("src"), key: KeyEnd, wantPath: "README.md"},
		{
			name:          "right expands collapsed dir",
			state:         State{FocusedPath: "src", Collapsed: filetree.NewSet("src")},
			key:           KeyRight,
			wantPath:      "src",
			wantCollapsed: []string{},
		},
		{name: "right enters expanded dir", state: at("src"), key: KeyRight, wantPath: "src/lib"},
		{name: "right on file is no-op", state: at("README.md"), key: KeyRight, wantPath: "README.md"},
		{
			name:          "left collapses expanded dir",
			state:         at("src/lib"),
			key:           KeyLeft,
			wantPath:      "src/lib",
			wantCollapsed: []string{"src/lib"},
		},
		{
			name:          "left on collapsed dir goes to parent",
			state:         State{FocusedPath: "src/lib", Collapsed: filetree.NewSet("src/lib")},
			key:           KeyLeft,
			wantPath:      "src",
			wantCollapsed: []string{"src/lib"},
		},
		{name: "left on file goes to parent", state: at("src/lib/utils.ts"), key: KeyLeft, wantPath: "src/lib"},
		{name: "left on top-level file is no-op", state: at("README.md"), key: KeyLeft, wantPath: "README.md"},
		{
			name:          "enter toggles dir",
			state:         at("src"),
			key:           KeyEnter,
			wantPath:      "src",
			wantCollapsed: []string{"src"},
		},
		{
			name:          "space toggles dir back",
			state:         State{FocusedPath: "src", Collapsed: filetree.NewSet("src")},
			key:           KeySpace,
			wantPath:      "src",
			wantCollapsed: []string{},
		},
		{
			name:          "enter on unstaged file selects",
			state:         at("README.md"),
			key:           KeyEnter,
			wantPath:      "README.md",
			wantSelection: &Selection{Path: "README.md", Target: git.TargetUnstaged},
		},
		{
			name:          "space on staged file selects staged",
			state:         State{FocusedPath: "src/app.tsx", FocusedStaged: true},
			key:           KeySpace,
			wantPath:      "src/app.tsx",
			wantStaged:    true,
			wantSelection: &Selection{Path: "src/app.tsx", Target: git.TargetStaged},
		},
		{name: "enter with no focus is no-op", state: State{}, key: KeyEnter, wantPath: ""},
		{name: "unknown key is no-op", state: at("src"), key: KeyNone, wantPath: "src"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Apply(tree, tt.state, tt.key)

			assert.Equal(t, tt.wantPath, res.State.FocusedPath)
			assert.Equal(t, tt.wantStaged, res.State.FocusedStaged)
			assert.Equal(t, tt.wantSelection, res.Selection)
			if tt.wantCollapsed != nil {
				assert.Equal(t, tt.wantCollapsed, res.State.Collapsed.Sorted())
			}
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	tree := exampleTree()
	st := State{FocusedPath: "src/lib", Collapsed: filetree.NewSet("other")}

	res := Apply(tree, st, KeyLeft)

	assert.Equal(t, []string{"other"}, st.Collapsed.Sorted())
	assert.Equal(t, []string{"other", "src/lib"}, res.State.Collapsed.Sorted())
}

func TestApply_EmptyTree(t *testing.T) {
	st := State{FocusedPath: "gone"}
	for _, k := range []Key{KeyUp, KeyDown, KeyLeft, KeyRight, KeyHome, KeyEnd, KeyEnter, KeySpace} {
		res := Apply(nil, st, k)
		assert.Equal(t, st, res.State)
		assert.Nil(t, res.Selection)
	}
}

func TestApply_ChildlessExpandedDir(t *testing.T) {
	tree := []*filetree.Node{{Kind: filetree.KindDir, Name: "empty", Path: "empty"}}

	res := Apply(tree, at("empty"), KeyRight)
	assert.Equal(t, at("empty"), res.State)
}

func TestParseKey(t *testing.T) {
	tests := map[string]Key{
		"up": KeyUp, "k": KeyUp, "down": KeyDown, "j": KeyDown,
		"left": KeyLeft, "h": KeyLeft, "right": KeyRight, "l": KeyRight,
		"home": KeyHome, "g": KeyHome, "end": KeyEnd, "G": KeyEnd,
		"enter": KeyEnter, " ": KeySpace, "space": KeySpace,
	}
	for name, want := range tests {
		got, ok := ParseKey(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	got, ok := ParseKey("x")
	assert.False(t, ok)
	assert.Equal(t, KeyNone, got)
}

func TestReconcile(t *testing.T) {
	tree := exampleTree()

	tests := []struct {
		name  string
		tree  []*filetree.Node
		state State
		want  string
	}{
		{name: "still present", tree: tree, state: at("src/lib"), want: "src/lib"},
		{name: "vanished file moves to ancestor", tree: tree, state: at("src/lib/gone.ts"), want: "src/lib"},
		{name: "vanished subtree moves to top ancestor", tree: tree, state: at("src/x/y.go"), want: "src"},
		{name: "vanished top-level moves to first", tree: tree, state: at("gone.md"), want: "src"},
		{name: "hidden under collapse moves to ancestor", tree: tree, state: State{FocusedPath: "src/lib/utils.ts", Collapsed: filetree.NewSet("src")}, want: "src"},
		{name: "no focus stays empty", tree: tree, state: State{}, want: ""},
		{name: "empty tree clears", tree: nil, state: at("src"), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reconcile(tt.tree, tt.state).FocusedPath)
		})
	}
}

func TestReconcile_StagedFallback(t *testing.T) {
	tree := filetree.BuildRecords([]git.ChangeRecord{{Path: "a.go"}})

	st := Reconcile(tree, State{FocusedPath: "a.go", FocusedStaged: true})
	assert.Equal(t, "a.go", st.FocusedPath)
	assert.False(t, st.FocusedStaged)
}

func randomTree(r *rand.Rand) []*filetree.Node {
	segs := []string{"a", "b", "c", "d.go", "e.ts"}
	seen := map[string]bool{}
	dirs := map[string]bool{}
	var st git.Status

	n := r.Intn(15) + 1
	for i := 0; i < n; i++ {
		parts := make([]string, r.Intn(3)+1)
		for j := range parts {
			parts[j] = segs[r.Intn(len(segs))]
		}
		p := strings.Join(parts, "/")
		clash := seen[p] || dirs[p]
		for j := 1; j < len(parts); j++ {
			if seen[strings.Join(parts[:j], "/")] {
				clash = true
			}
		}
		if clash {
			continue
		}
		seen[p] = true
		for j := 1; j < len(parts); j++ {
			dirs[strings.Join(parts[:j], "/")] = true
		}
		st.Unstaged = append(st.Unstaged, git.ChangeRecord{Path: p})
		if r.Intn(3) == 0 {
			st.Staged = append(st.Staged, git.ChangeRecord{Path: p, Staged: true})
		}
	}
	return filetree.Build(st)
}

func randomCollapsed(r *rand.Rand, tree []*filetree.Node) filetree.Set {
	s := filetree.NewSet()
	for _, d := range filetree.Dirs(tree) {
		if r.Intn(4) == 0 {
			s = s.With(d)
		}
	}
	return s
}

func TestProperty_ArrowDownFullCycle(t *testing.T) {
	r := rand.New(rand.NewSource(20))
	for i := 0; i < 200; i++ {
		tree := randomTree(r)
		collapsed := randomCollapsed(r, tree)
		rows := filetree.Flatten(tree, collapsed)
		require.NotEmpty(t, rows)

		start := rows[r.Intn(len(rows))]
		st := focus(State{Collapsed: collapsed}, start)

		cur := st
		for step := 0; step < len(rows); step++ {
			cur = Apply(tree, cur, KeyDown).State
			if step < len(rows)-1 {
				require.NotEqual(t, Index(rows, st), Index(rows, cur), "returned early at step %d", step)
			}
		}
		require.Equal(t, st, cur, "iteration %d", i)
	}
}

func TestProperty_ArrowUpFromFirstLandsOnLast(t *testing.T) {
	r := rand.New(rand.NewSource(21))
	for i := 0; i < 200; i++ {
		tree := randomTree(r)
		collapsed := randomCollapsed(r, tree)
		rows := filetree.Flatten(tree, collapsed)

		st := focus(State{Collapsed: collapsed}, rows[0])
		got := Apply(tree, st, KeyUp).State
		require.Equal(t, len(rows)-1, Index(rows, got))
	}
}

func TestProperty_HomeEnd(t *testing.T) {
	r := rand.New(rand.NewSource(22))
	for i := 0; i < 200; i++ {
		tree := randomTree(r)
		collapsed := randomCollapsed(r, tree)
		rows := filetree.Flatten(tree, collapsed)
		st := focus(State{Collapsed: collapsed}, rows[r.Intn(len(rows))])

		require.Equal(t, 0, Index(rows, Apply(tree, st, KeyHome).State))
		require.Equal(t, len(rows)-1, Index(rows, Apply(tree, st, KeyEnd).State))
	}
}

func TestProperty_Deterministic(t *testing.T) {
	keys := []Key{KeyUp, KeyDown, KeyLeft, KeyRight, KeyHome, KeyEnd, KeyEnter, KeySpace, KeyNone}
	r := rand.New(rand.NewSource(23))

	for i := 0; i < 200; i++ {
		tree := randomTree(r)
		seq := make([]Key, r.Intn(40))
		for j := range seq {
			seq[j] = keys[r.Intn(len(keys))]
		}

		run := func() (State, []*Selection) {
			st := State{}
			var sels []*Selection
			for _, k := range seq {
				res := Apply(tree, st, k)
				st = res.State
				sels = append(sels, res.Selection)
			}
			return st, sels
		}

		a, aSel := run()
		b, bSel := run()
		require.Equal(t, a, b)
		require.Equal(t, aSel, bSel)
	}
}

func TestProperty_FocusAlwaysVisible(t *testing.T) {
	keys := []Key{KeyUp, KeyDown, KeyLeft, KeyRight, KeyHome, KeyEnd, KeyEnter, KeySpace}
	r := rand.New(rand.NewSource(24))

	for i := 0; i < 200; i++ {
		tree := randomTree(r)
		st := State{}
		for j := 0; j < 50; j++ {
			st = Apply(tree, st, keys[r.Intn(len(keys))]).State
			if st.FocusedPath == "" {
				continue
			}
			rows := filetree.Flatten(tree, st.Collapsed)
			require.GreaterOrEqual(t, Index(rows, st), 0, "focus %q not visible", st.FocusedPath)
		}
	}
}
