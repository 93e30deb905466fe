package outline

import "testing"

func countSignals(l *List) *int {
	n := new(int)
	l.Watch(func() { *n++ })
	return n
}

func TestMutationsSignalByDefault(t *testing.T) {
	a, b, _, _, _ := sampleTree()
	l := NewList()
	n := countSignals(l)

	l.AddAll(Flatten(a)...)
	l.Add(named("X", 0))
	if err := l.Insert(0, named("Y", 0)); err != nil {
		t.Fatal(err)
	}
	if err := l.Collapse(2); err != nil { // B
		t.Fatal(err)
	}
	if err := l.Expand(2); err != nil {
		t.Fatal(err)
	}
	l.Remove(b)
	l.Clear()

	if *n != 7 {
		t.Fatalf("observer saw %d signals, want 7", *n)
	}
}

func TestNoOpsDoNotSignal(t *testing.T) {
	a, _, _, _, _ := sampleTree()
	l := seeded(a)
	n := countSignals(l)

	if err := l.Collapse(2); err != nil { // leaf D
		t.Fatal(err)
	}
	if err := l.Expand(1); err != nil { // B is not a group
		t.Fatal(err)
	}
	l.Remove(named("ghost", 0))

	if *n != 0 {
		t.Fatalf("no-ops fired %d signals, want 0", *n)
	}
}

func TestSetAutoNotify(t *testing.T) {
	a, _, _, _, _ := sampleTree()
	l := seeded(a)
	n := countSignals(l)

	l.SetAutoNotify(false)
	if err := l.Collapse(1); err != nil {
		t.Fatal(err)
	}
	if err := l.Expand(1); err != nil {
		t.Fatal(err)
	}
	if *n != 0 {
		t.Fatalf("disabled mode fired %d signals, want 0", *n)
	}

	// Re-enabling fires exactly one catch-up signal.
	l.SetAutoNotify(true)
	if *n != 1 {
		t.Fatalf("re-enable fired %d signals, want 1", *n)
	}
	// Enabling while already enabled stays quiet.
	l.SetAutoNotify(true)
	if *n != 1 {
		t.Fatalf("redundant enable fired %d extra signals", *n-1)
	}
}

func TestNotifyFiresAndReenables(t *testing.T) {
	a, _, _, _, _ := sampleTree()
	l := seeded(a)
	n := countSignals(l)

	l.SetAutoNotify(false)
	if err := l.Collapse(1); err != nil {
		t.Fatal(err)
	}
	l.Notify()
	if *n != 1 {
		t.Fatalf("Notify fired %d signals, want 1", *n)
	}
	if !l.AutoNotify() {
		t.Fatal("Notify must re-enable auto-notification")
	}

	if err := l.Expand(1); err != nil {
		t.Fatal(err)
	}
	if *n != 2 {
		t.Fatalf("mutation after Notify fired %d signals total, want 2", *n)
	}
}

func TestSnapshotAndRestoreSignalOnce(t *testing.T) {
	a, _, _, _, _ := sampleTree()
	l := seeded(a)

	if err := l.Collapse(1); err != nil {
		t.Fatal(err)
	}
	if err := l.Collapse(0); err != nil {
		t.Fatal(err)
	}

	n := countSignals(l)
	indices := l.Snapshot() // two expansions inside
	if *n != 1 {
		t.Fatalf("Snapshot fired %d signals, want exactly 1", *n)
	}
	if err := l.Restore(indices); err != nil {
		t.Fatal(err)
	}
	if *n != 2 {
		t.Fatalf("Restore fired %d additional signals, want exactly 1", *n-1)
	}
	if !l.AutoNotify() {
		t.Fatal("prior mode not restored")
	}
}

func TestSnapshotSilentWhenDisabled(t *testing.T) {
	a, _, _, _, _ := sampleTree()
	l := seeded(a)
	if err := l.Collapse(1); err != nil {
		t.Fatal(err)
	}

	n := countSignals(l)
	l.SetAutoNotify(false)
	indices := l.Snapshot()
	if err := l.Restore(indices); err != nil {
		t.Fatal(err)
	}
	if *n != 0 {
		t.Fatalf("disabled mode leaked %d signals through snapshot/restore", *n)
	}
	if l.AutoNotify() {
		t.Fatal("snapshot/restore must not flip the disabled mode")
	}
}

func TestRestoreFailureStillRestoresMode(t *testing.T) {
	a, _, _, _, _ := sampleTree()
	l := seeded(a)
	n := countSignals(l)

	if err := l.Restore([]int{99}); err == nil {
		t.Fatal("expected error")
	}
	if !l.AutoNotify() {
		t.Fatal("failed restore must still restore auto-notify mode")
	}
	if *n != 1 {
		t.Fatalf("failed restore fired %d signals, want the single batch signal", *n)
	}
}
