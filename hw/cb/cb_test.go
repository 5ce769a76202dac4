package cb

import "testing"

func TestRequiredZeroValue(t *testing.T) {
	var r Required[int]
	r.Call(1) // must not panic

	got := 0
	r = NewRequired(func(v int) { got += v })
	r.Call(3)
	r.Call(4)
	if got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}

func TestOptional(t *testing.T) {
	var o Optional[string]
	if o.IsSet() {
		t.Fatal("zero Optional reports being set")
	}
	o.Call("ignored")

	var got string
	o = NewOptional(func(s string) { got = s })
	if !o.IsSet() {
		t.Fatal("Optional not set")
	}
	o.Call("hello")
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}
