package registry

import "testing"

func TestRegisterIdempotentOnDuplicate(t *testing.T) {
	r := New(nil)
	if err := r.Register(1, "Foo", "Foo", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(1, "Foo", "Foo", ""); err != nil {
		t.Fatalf("idempotent register should not error: %v", err)
	}
}

func TestRegisterConflictingSymbol(t *testing.T) {
	r := New(nil)
	if err := r.Register(1, "Foo", "Foo", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(1, "Bar", "Bar", ""); err == nil {
		t.Fatalf("expected conflict error, got nil")
	}
}

func TestNameForAndValueFor(t *testing.T) {
	r := New(nil)
	_ = r.Register(42, "Answer", "Answer", "RFCNone")
	name, ok := r.NameFor(42)
	if !ok || name != "Answer" {
		t.Fatalf("NameFor(42) = %q, %v", name, ok)
	}
	v, ok := r.ValueFor("Answer")
	if !ok || v != 42 {
		t.Fatalf("ValueFor(Answer) = %d, %v", v, ok)
	}
	v, ok = r.ValueFor("Answer") // symbol == name here
	if !ok || v != 42 {
		t.Fatalf("ValueFor(symbol) = %d, %v", v, ok)
	}
	rfc, ok := r.RFCFor(42)
	if !ok || rfc != "RFCNone" {
		t.Fatalf("RFCFor(42) = %q, %v", rfc, ok)
	}
}

func TestOnRegisterHook(t *testing.T) {
	var seen []Entry
	r := New(func(e Entry) { seen = append(seen, e) })
	_ = r.Register(1, "A", "", "")
	_ = r.Register(1, "A", "", "") // duplicate, must not re-fire
	_ = r.Register(2, "B", "", "")
	if len(seen) != 2 {
		t.Fatalf("expected 2 hook invocations, got %d", len(seen))
	}
}

func TestValuesAndAllAreSortedSnapshots(t *testing.T) {
	r := New(nil)
	_ = r.Register(5, "five", "", "")
	_ = r.Register(1, "one", "", "")
	_ = r.Register(3, "three", "", "")
	vals := r.Values()
	want := []uint32{1, 3, 5}
	for i, v := range want {
		if vals[i] != v {
			t.Fatalf("Values()[%d] = %d, want %d", i, vals[i], v)
		}
	}
	all := r.All()
	if len(all) != 3 || all[0].Value != 1 || all[2].Value != 5 {
		t.Fatalf("All() not sorted: %+v", all)
	}
}

func TestResponseCodeClassification(t *testing.T) {
	if !Content.Success() || Content.Error() {
		t.Fatalf("2.05 Content should be success, not error")
	}
	if !NotFound.ClientError() || !NotFound.Error() {
		t.Fatalf("4.04 Not Found should be a client error")
	}
	if !InternalServerError.ServerError() || !InternalServerError.Error() {
		t.Fatalf("5.00 should be a server error")
	}
	if got := NotFound.Dotted(); got != "4.04" {
		t.Fatalf("Dotted() = %q, want 4.04", got)
	}
	if got := Content.Dotted(); got != "2.05" {
		t.Fatalf("Dotted() = %q, want 2.05", got)
	}
}

func TestResponseCodeEncoding(t *testing.T) {
	c := NewResponseCode(4, 4)
	if uint32(c) != 132 {
		t.Fatalf("NewResponseCode(4,4) = %d, want 132", uint32(c))
	}
	if c.Class() != 4 || c.Detail() != 4 {
		t.Fatalf("class/detail round trip failed: %d/%d", c.Class(), c.Detail())
	}
}

func TestOptionCritical(t *testing.T) {
	if !Critical(OptionURIPath) { // 11, odd -> critical
		t.Fatalf("Uri-Path (11) should be critical")
	}
	if Critical(OptionContentFormat) { // 12, even -> elective
		t.Fatalf("Content-Format (12) should be elective")
	}
}
