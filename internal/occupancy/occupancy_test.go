package occupancy

import (
	"errors"
	"testing"

	"github.com/1broseidon/hyprdesk/internal/desktop"
)

type sliceSource struct {
	windows []Window
	err     error
	visited int
}

func (s *sliceSource) EachWindow(visit func(Window) bool) error {
	for _, w := range s.windows {
		s.visited++
		if !visit(w) {
			return nil
		}
	}
	return s.err
}

type mapLocator struct {
	lifecycle bool
	desktops  map[desktop.WindowID]int
	err       error
	queries   int
}

func (m *mapLocator) HasLifecycle() bool { return m.lifecycle }

func (m *mapLocator) IsWindowOnDesktop(w desktop.WindowID, index int) (bool, error) {
	m.queries++
	if m.err != nil {
		return false, m.err
	}
	d, ok := m.desktops[w]
	return ok && d == index, nil
}

func TestCounts_Filters(t *testing.T) {
	o := New(nil, nil, Config{IgnoredClasses: []string{"  ", "Conky"}})

	tests := []struct {
		name string
		w    Window
		want bool
	}{
		{"visible titled app", Window{Visible: true, Title: "Editor", Class: "Notepad"}, true},
		{"hidden", Window{Visible: false, Title: "Editor", Class: "Notepad"}, false},
		{"empty title", Window{Visible: true, Title: "", Class: "Notepad"}, false},
		{"blank title", Window{Visible: true, Title: "   ", Class: "Notepad"}, false},
		{"taskbar", Window{Visible: true, Title: "Taskbar", Class: "Shell_TrayWnd"}, false},
		{"secondary taskbar substring", Window{Visible: true, Title: "x", Class: "Shell_SecondaryTrayWnd_Shell_TrayWnd"}, false},
		{"drag host", Window{Visible: true, Title: "x", Class: "DV2ControlHost"}, false},
		{"foreground staging", Window{Visible: true, Title: "x", Class: "ForegroundStaging"}, false},
		{"uwp frame", Window{Visible: true, Title: "Settings", Class: "ApplicationFrameHost"}, false},
		{"configured extra class", Window{Visible: true, Title: "stats", Class: "Conky"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.Counts(tt.w); got != tt.want {
				t.Fatalf("Counts(%+v) = %v, want %v", tt.w, got, tt.want)
			}
		})
	}
}

func TestIsDesktopEmpty_UncertainWithoutLifecycle(t *testing.T) {
	src := &sliceSource{windows: []Window{{ID: 1, Visible: true, Title: "a", Class: "A"}}}
	o := New(src, &mapLocator{lifecycle: false}, Config{})

	empty, err := o.IsDesktopEmpty(1)
	if empty {
		t.Fatal("expected conservative not-empty answer")
	}
	if !errors.Is(err, ErrEnumerationUncertain) {
		t.Fatalf("err = %v, want ErrEnumerationUncertain", err)
	}
	if !errors.Is(err, desktop.ErrCapabilityUnavailable) {
		t.Fatalf("err = %v, want wrapped ErrCapabilityUnavailable", err)
	}
	if src.visited != 0 {
		t.Fatalf("enumeration should not run, visited %d", src.visited)
	}
}

func TestIsDesktopEmpty_DenylistedNeverOccupies(t *testing.T) {
	var windows []Window
	loc := &mapLocator{lifecycle: true, desktops: map[desktop.WindowID]int{}}
	for i, class := range DefaultIgnoredClasses {
		id := desktop.WindowID(i + 1)
		windows = append(windows, Window{ID: id, Visible: true, Title: "chrome", Class: class})
		loc.desktops[id] = 2
	}
	o := New(&sliceSource{windows: windows}, loc, Config{})

	empty, err := o.IsDesktopEmpty(2)
	if err != nil {
		t.Fatalf("IsDesktopEmpty: %v", err)
	}
	if !empty {
		t.Fatal("denylisted windows must not occupy a desktop")
	}
	if loc.queries != 0 {
		t.Fatalf("denylisted windows were queried %d times", loc.queries)
	}
}

func TestIsDesktopEmpty_ShortCircuitsOnFirstMatch(t *testing.T) {
	src := &sliceSource{windows: []Window{
		{ID: 1, Visible: true, Title: "one", Class: "App"},
		{ID: 2, Visible: true, Title: "two", Class: "App"},
		{ID: 3, Visible: true, Title: "three", Class: "App"},
	}}
	loc := &mapLocator{lifecycle: true, desktops: map[desktop.WindowID]int{1: 0, 2: 1, 3: 1}}
	o := New(src, loc, Config{})

	empty, err := o.IsDesktopEmpty(1)
	if err != nil {
		t.Fatalf("IsDesktopEmpty: %v", err)
	}
	if empty {
		t.Fatal("desktop 1 holds window 2")
	}
	if src.visited != 2 {
		t.Fatalf("visited %d windows, want 2", src.visited)
	}
}

func TestIsDesktopEmpty_OrderIndependent(t *testing.T) {
	a := Window{ID: 1, Visible: true, Title: "a", Class: "App"}
	b := Window{ID: 2, Visible: false, Title: "b", Class: "App"}
	c := Window{ID: 3, Visible: true, Title: "c", Class: "App"}
	loc := &mapLocator{lifecycle: true, desktops: map[desktop.WindowID]int{1: 0, 2: 1, 3: 2}}

	orders := [][]Window{{a, b, c}, {c, b, a}, {b, a, c}}
	for _, order := range orders {
		o := New(&sliceSource{windows: order}, loc, Config{})
		empty, err := o.IsDesktopEmpty(1)
		if err != nil {
			t.Fatalf("IsDesktopEmpty: %v", err)
		}
		if !empty {
			t.Fatalf("desktop 1 only holds a hidden window, order %v", order)
		}
	}
}

func TestIsDesktopEmpty_ErrorsAreUncertain(t *testing.T) {
	win := Window{ID: 1, Visible: true, Title: "a", Class: "App"}

	o := New(&sliceSource{windows: []Window{win}}, &mapLocator{lifecycle: true, err: errors.New("boom")}, Config{})
	if empty, err := o.IsDesktopEmpty(1); empty || !errors.Is(err, ErrEnumerationUncertain) {
		t.Fatalf("lookup failure: empty=%v err=%v", empty, err)
	}

	o = New(&sliceSource{err: errors.New("enum failed")}, &mapLocator{lifecycle: true}, Config{})
	if empty, err := o.IsDesktopEmpty(1); empty || !errors.Is(err, ErrEnumerationUncertain) {
		t.Fatalf("enumeration failure: empty=%v err=%v", empty, err)
	}
}
