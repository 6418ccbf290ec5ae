package widget

import (
	"errors"
	"testing"

	"github.com/wudi/pdfoverlay/coords"
)

func newWidget(t *testing.T, kind Kind) *Widget {
	t.Helper()
	w, err := New(kind, 1, coords.Rect{X: 10, Y: 10, W: 200, H: 30}, DefaultStyle())
	if err != nil {
		t.Fatalf("new %s: %v", kind, err)
	}
	return w
}

func TestLifecycleStartsIdle(t *testing.T) {
	for _, k := range []Kind{Field, Text, Signature} {
		w := newWidget(t, k)
		if w.State() != StateIdle || w.Selected() || w.Editing() {
			t.Fatalf("%s: fresh widget state=%s selected=%v editing=%v", k, w.State(), w.Selected(), w.Editing())
		}
	}
}

func TestArmOnlyForInteriorKinds(t *testing.T) {
	txt := newWidget(t, Text)
	if err := txt.Arm(); err != nil {
		t.Fatalf("arm text: %v", err)
	}
	if !txt.Selected() || !txt.Editing() {
		t.Fatalf("created text should be selected and editing, got %s", txt.State())
	}

	fld := newWidget(t, Field)
	if err := fld.Arm(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("arm field: expected ErrInvalidTransition, got %v", err)
	}
	if fld.State() != StateIdle {
		t.Fatalf("rejected arm changed state to %s", fld.State())
	}
}

func TestEditClearsSelection(t *testing.T) {
	w := newWidget(t, Signature)
	if err := w.Select(); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := w.Edit(); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if w.Selected() || !w.Editing() {
		t.Fatalf("editing widget selected=%v editing=%v", w.Selected(), w.Editing())
	}
	if err := w.Deselect(); err != nil {
		t.Fatalf("deselect: %v", err)
	}
	if w.State() != StateIdle {
		t.Fatalf("state after deselect = %s", w.State())
	}
}

func TestFieldNeverEdits(t *testing.T) {
	w := newWidget(t, Field)
	_ = w.Select()
	if err := w.Edit(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if w.State() != StateSelected {
		t.Fatalf("state = %s, want selected", w.State())
	}
}

func TestDeleteIsFinal(t *testing.T) {
	w := newWidget(t, Text)
	_ = w.Arm()
	if err := w.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !w.Deleted() || !w.life.Done() {
		t.Fatalf("widget not final after delete: %s", w.State())
	}
	for _, fire := range []func() error{w.Select, w.Edit, w.Delete} {
		if err := fire(); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition after delete, got %v", err)
		}
	}
}

func TestSelectAndDeselectAreIdempotent(t *testing.T) {
	w := newWidget(t, Field)
	if err := w.Deselect(); err != nil {
		t.Fatalf("deselect idle: %v", err)
	}
	_ = w.Select()
	before := w.life.Transitions()
	if err := w.Select(); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if w.life.Transitions() != before {
		t.Fatalf("reselect should not transition")
	}
}

func TestLifecycleTransitionTable(t *testing.T) {
	cases := []struct {
		name   string
		kind   Kind
		events []Event
		want   State
	}{
		{"created to selected", Text, []Event{EventArm, EventSelect}, StateSelected},
		{"created to idle", Signature, []Event{EventArm, EventDeselect}, StateIdle},
		{"editing to selected", Text, []Event{EventEdit, EventSelect}, StateSelected},
		{"delete while editing", Signature, []Event{EventEdit, EventDelete}, StateDeleted},
		{"field select delete", Field, []Event{EventSelect, EventDelete}, StateDeleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := NewLifecycle(tc.kind)
			if err != nil {
				t.Fatalf("lifecycle: %v", err)
			}
			for _, ev := range tc.events {
				if err := l.Fire(ev); err != nil {
					t.Fatalf("fire %s: %v", ev, err)
				}
			}
			if l.State() != tc.want {
				t.Fatalf("state = %s, want %s", l.State(), tc.want)
			}
			if l.Transitions() != len(tc.events) {
				t.Fatalf("transitions = %d, want %d", l.Transitions(), len(tc.events))
			}
		})
	}
}

func TestLifecycleRejectionsFollowChart(t *testing.T) {
	cases := []struct {
		name   string
		kind   Kind
		before []Event
		reject Event
		state  State
	}{
		{"arm from selected", Text, []Event{EventSelect}, EventArm, StateSelected},
		{"deselect idle", Text, nil, EventDeselect, StateIdle},
		{"edit while editing", Signature, []Event{EventEdit}, EventEdit, StateEditing},
		{"select from selected", Field, []Event{EventSelect}, EventSelect, StateSelected},
		{"field edit from idle", Field, nil, EventEdit, StateIdle},
		{"field arm", Field, nil, EventArm, StateIdle},
		{"unknown event", Text, nil, Event("RESIZE"), StateIdle},
		{"anything after delete", Text, []Event{EventDelete}, EventSelect, StateDeleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l, err := NewLifecycle(tc.kind)
			if err != nil {
				t.Fatalf("lifecycle: %v", err)
			}
			for _, ev := range tc.before {
				if err := l.Fire(ev); err != nil {
					t.Fatalf("fire %s: %v", ev, err)
				}
			}
			moves := l.Transitions()
			if err := l.Fire(tc.reject); !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("fire %s: expected ErrInvalidTransition, got %v", tc.reject, err)
			}
			if l.State() != tc.state || l.Transitions() != moves {
				t.Fatalf("rejected %s moved to %s (transitions %d -> %d)", tc.reject, l.State(), moves, l.Transitions())
			}
		})
	}
}
