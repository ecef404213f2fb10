package switcher

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/hyprdesk/internal/desktop"
	"github.com/1broseidon/hyprdesk/internal/occupancy"
)

type fakeDesktops struct {
	current int
	count   int

	windows map[desktop.WindowID]int

	createErrAfter int // fail creation once this many desktops were created; 0 = never
	created        int
	switchErr      error
	removeErr      error

	switches []int
	removed  [][2]int
}

func (f *fakeDesktops) CurrentDesktop() (int, error) { return f.current, nil }
func (f *fakeDesktops) DesktopCount() (int, error)   { return f.count, nil }

func (f *fakeDesktops) SwitchDesktop(index int) error {
	if f.switchErr != nil {
		return f.switchErr
	}
	f.switches = append(f.switches, index)
	f.current = index
	return nil
}

func (f *fakeDesktops) CreateDesktop() (int, error) {
	if f.createErrAfter > 0 && f.created >= f.createErrAfter {
		return 0, errors.New("CreateDesktop returned -1")
	}
	f.created++
	f.count++
	return f.count - 1, nil
}

func (f *fakeDesktops) RemoveDesktop(target, fallback int) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, [2]int{target, fallback})
	for w, d := range f.windows {
		if d == target {
			f.windows[w] = fallback
		} else if d > target {
			f.windows[w] = d - 1
		}
	}
	if f.current > target {
		f.current--
	}
	f.count--
	return nil
}

func (f *fakeDesktops) IsWindowOnDesktop(w desktop.WindowID, index int) (bool, error) {
	d, ok := f.windows[w]
	return ok && d == index, nil
}

// mandatoryOnly hides the lifecycle operations of a fakeDesktops.
type mandatoryOnly struct {
	f *fakeDesktops
}

func (m mandatoryOnly) CurrentDesktop() (int, error) { return m.f.CurrentDesktop() }
func (m mandatoryOnly) DesktopCount() (int, error)   { return m.f.DesktopCount() }
func (m mandatoryOnly) SwitchDesktop(i int) error    { return m.f.SwitchDesktop(i) }

type fakeOracle struct {
	empty   map[int]bool
	err     error
	queries []int
}

func (o *fakeOracle) IsDesktopEmpty(index int) (bool, error) {
	o.queries = append(o.queries, index)
	if o.err != nil {
		return false, o.err
	}
	return o.empty[index], nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSwitcher(t *testing.T, b desktop.Backend, o Oracle, cfg Config) *Switcher {
	t.Helper()
	acc, err := desktop.NewAccessor(b)
	if err != nil {
		t.Fatalf("NewAccessor: %v", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	if cfg.Sleep == nil {
		cfg.Sleep = func(time.Duration) {}
	}
	return New(acc, o, cfg)
}

func TestSwitchTo_ExistingDesktopBecomesCurrent(t *testing.T) {
	fd := &fakeDesktops{count: 4}
	s := newSwitcher(t, fd, &fakeOracle{}, Config{AutoRemove: true})

	for _, n := range []int{3, 0, 2, 1} {
		if err := s.SwitchTo(n); err != nil {
			t.Fatalf("SwitchTo(%d): %v", n, err)
		}
		st, err := s.Status()
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if st.Current != n {
			t.Fatalf("after SwitchTo(%d) current = %d", n, st.Current)
		}
	}
}

func TestSwitchTo_CreatesMissingDesktopsWithoutCleanup(t *testing.T) {
	fd := &fakeDesktops{count: 2, current: 0}
	oracle := &fakeOracle{}
	s := newSwitcher(t, fd, oracle, Config{AutoRemove: true})

	if err := s.SwitchTo(2); err != nil {
		t.Fatalf("SwitchTo(2): %v", err)
	}
	if fd.count != 4 {
		t.Fatalf("count = %d, want 4", fd.count)
	}
	if fd.created != 2 {
		t.Fatalf("created = %d, want 2", fd.created)
	}
	if fd.current != 2 {
		t.Fatalf("current = %d, want 2", fd.current)
	}
	if last, ok := s.LastActive(); !ok || last != 0 {
		t.Fatalf("LastActive() = %d, %v, want 0, true", last, ok)
	}
	if len(oracle.queries) != 0 {
		t.Fatalf("cleanup ran for desktop 0: %v", oracle.queries)
	}
}

func TestSwitchTo_CreatesExactlyMissingCount(t *testing.T) {
	for count := 1; count <= 4; count++ {
		for target := count; target < 9; target++ {
			fd := &fakeDesktops{count: count}
			s := newSwitcher(t, fd, &fakeOracle{}, Config{})
			if err := s.SwitchTo(target); err != nil {
				t.Fatalf("count %d SwitchTo(%d): %v", count, target, err)
			}
			if want := target - count + 1; fd.created != want {
				t.Fatalf("count %d target %d: created %d, want %d", count, target, fd.created, want)
			}
		}
	}
}

func TestSwitchTo_CreationUnavailable(t *testing.T) {
	fd := &fakeDesktops{count: 2, current: 1}
	s := newSwitcher(t, mandatoryOnly{fd}, &fakeOracle{}, Config{AutoRemove: true})

	err := s.SwitchTo(4)
	if !errors.Is(err, desktop.ErrDesktopUnavailable) {
		t.Fatalf("err = %v, want ErrDesktopUnavailable", err)
	}
	if fd.count != 2 {
		t.Fatalf("count changed to %d", fd.count)
	}
	if len(fd.switches) != 0 {
		t.Fatalf("switch attempted: %v", fd.switches)
	}
	if _, ok := s.LastActive(); ok {
		t.Fatal("LastActive recorded for a switch that never ran")
	}
}

func TestSwitchTo_CreationFailureAborts(t *testing.T) {
	fd := &fakeDesktops{count: 1, createErrAfter: 1}
	s := newSwitcher(t, fd, &fakeOracle{}, Config{})

	err := s.SwitchTo(3)
	if !errors.Is(err, desktop.ErrDesktopUnavailable) {
		t.Fatalf("err = %v, want ErrDesktopUnavailable", err)
	}
	if !errors.Is(err, desktop.ErrCreateFailed) {
		t.Fatalf("err = %v, want wrapped ErrCreateFailed", err)
	}
	if len(fd.switches) != 0 {
		t.Fatalf("switch attempted after failed creation: %v", fd.switches)
	}
}

func TestSwitchTo_SwitchFailureSkipsCleanup(t *testing.T) {
	fd := &fakeDesktops{count: 3, current: 2, switchErr: errors.New("GoToDesktopNumber returned -1")}
	oracle := &fakeOracle{empty: map[int]bool{2: true}}
	s := newSwitcher(t, fd, oracle, Config{AutoRemove: true})

	err := s.SwitchTo(0)
	if !errors.Is(err, desktop.ErrSwitchFailed) {
		t.Fatalf("err = %v, want ErrSwitchFailed", err)
	}
	if len(oracle.queries) != 0 || len(fd.removed) != 0 {
		t.Fatalf("cleanup ran after failed switch: queries=%v removed=%v", oracle.queries, fd.removed)
	}
	if last, ok := s.LastActive(); !ok || last != 2 {
		t.Fatalf("LastActive() = %d, %v, want 2, true", last, ok)
	}
}

func TestSwitchTo_RemovesEmptyDesktopLeft(t *testing.T) {
	fd := &fakeDesktops{
		count:   3,
		current: 1,
		windows: map[desktop.WindowID]int{10: 0, 11: 2},
	}
	acc, _ := desktop.NewAccessor(fd)
	oracle := occupancy.New(&windowList{
		{ID: 10, Visible: true, Title: "term", Class: "Term"},
		{ID: 11, Visible: true, Title: "browser", Class: "Browser"},
	}, acc, occupancy.Config{Logger: quietLogger()})

	var slept []time.Duration
	s := New(acc, oracle, Config{
		AutoRemove:  true,
		SettleDelay: 300 * time.Millisecond,
		Logger:      quietLogger(),
		Sleep:       func(d time.Duration) { slept = append(slept, d) },
	})

	if err := s.SwitchTo(0); err != nil {
		t.Fatalf("SwitchTo(0): %v", err)
	}
	if len(fd.removed) != 1 || fd.removed[0] != [2]int{1, 0} {
		t.Fatalf("removed = %v, want [[1 0]]", fd.removed)
	}
	if fd.count != 2 {
		t.Fatalf("count = %d, want 2", fd.count)
	}
	if len(slept) != 1 || slept[0] != 300*time.Millisecond {
		t.Fatalf("settle delay = %v, want [300ms]", slept)
	}
}

func TestSwitchTo_KeepsOccupiedOrUncertainDesktop(t *testing.T) {
	tests := []struct {
		name   string
		oracle *fakeOracle
	}{
		{"occupied", &fakeOracle{empty: map[int]bool{2: false}}},
		{"uncertain", &fakeOracle{err: occupancy.ErrEnumerationUncertain}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd := &fakeDesktops{count: 3, current: 2}
			s := newSwitcher(t, fd, tt.oracle, Config{AutoRemove: true})
			if err := s.SwitchTo(1); err != nil {
				t.Fatalf("SwitchTo(1): %v", err)
			}
			if len(tt.oracle.queries) != 1 || tt.oracle.queries[0] != 2 {
				t.Fatalf("oracle queries = %v, want [2]", tt.oracle.queries)
			}
			if len(fd.removed) != 0 {
				t.Fatalf("removed = %v", fd.removed)
			}
		})
	}
}

func TestSwitchTo_AutoRemoveDisabled(t *testing.T) {
	fd := &fakeDesktops{count: 3, current: 2}
	oracle := &fakeOracle{empty: map[int]bool{2: true}}
	s := newSwitcher(t, fd, oracle, Config{AutoRemove: false})

	if err := s.SwitchTo(0); err != nil {
		t.Fatalf("SwitchTo(0): %v", err)
	}
	if len(oracle.queries) != 0 || len(fd.removed) != 0 {
		t.Fatalf("cleanup ran with auto-remove off")
	}
}

func TestSwitchTo_SameDesktopNoCleanup(t *testing.T) {
	fd := &fakeDesktops{count: 3, current: 2}
	oracle := &fakeOracle{empty: map[int]bool{2: true}}
	s := newSwitcher(t, fd, oracle, Config{AutoRemove: true})

	if err := s.SwitchTo(2); err != nil {
		t.Fatalf("SwitchTo(2): %v", err)
	}
	if len(oracle.queries) != 0 {
		t.Fatalf("cleanup ran for the target desktop")
	}
}

func TestSwitchTo_RemoveFailureIsNotFatal(t *testing.T) {
	fd := &fakeDesktops{count: 3, current: 1, removeErr: errors.New("RemoveDesktop returned -1")}
	s := newSwitcher(t, fd, &fakeOracle{empty: map[int]bool{1: true}}, Config{AutoRemove: true})

	if err := s.SwitchTo(2); err != nil {
		t.Fatalf("SwitchTo(2) returned %v, want nil", err)
	}
	if fd.count != 3 || fd.current != 2 {
		t.Fatalf("state = count %d current %d", fd.count, fd.current)
	}
}

func TestSwitchTo_NegativeTarget(t *testing.T) {
	fd := &fakeDesktops{count: 2}
	s := newSwitcher(t, fd, &fakeOracle{}, Config{})
	if err := s.SwitchTo(-1); !errors.Is(err, desktop.ErrDesktopUnavailable) {
		t.Fatalf("err = %v, want ErrDesktopUnavailable", err)
	}
}

func TestMaybeRemoveEmptyDesktop_NeverRemovesFirstOrOnly(t *testing.T) {
	for count := 1; count <= 5; count++ {
		for index := 0; index < count; index++ {
			fd := &fakeDesktops{count: count}
			s := newSwitcher(t, fd, &fakeOracle{empty: map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true}}, Config{})

			removed, err := s.maybeRemoveEmptyDesktop(index)
			if err != nil {
				t.Fatalf("count %d index %d: %v", count, index, err)
			}
			shouldRemove := count > 1 && index > 0
			if removed != shouldRemove {
				t.Fatalf("count %d index %d: removed = %v, want %v", count, index, removed, shouldRemove)
			}
			for _, r := range fd.removed {
				if r[0] == 0 {
					t.Fatalf("desktop 0 removed (count %d)", count)
				}
				if r[1] != r[0]-1 {
					t.Fatalf("fallback %d for desktop %d, want %d", r[1], r[0], r[0]-1)
				}
			}
		}
	}
}

type windowList []occupancy.Window

func (l *windowList) EachWindow(visit func(occupancy.Window) bool) error {
	for _, w := range *l {
		if !visit(w) {
			return nil
		}
	}
	return nil
}
