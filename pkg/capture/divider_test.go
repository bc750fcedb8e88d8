package capture

import "testing"

func TestDividerEveryTickAtOne(t *testing.T) {
	d := NewDivider(1)
	for i := 0; i < 10; i++ {
		if !d.Tick(false, 0) {
			t.Fatalf("tick %d: expected pulse with divisor 1", i)
		}
	}
}

func TestDividerPeriod(t *testing.T) {
	const n = 4
	d := NewDivider(n)
	pulses := 0
	for i := 1; i <= 3*n; i++ {
		if d.Tick(false, 0) {
			pulses++
			if i%n != 0 {
				t.Fatalf("pulse at tick %d, want ticks that are multiples of %d", i, n)
			}
		}
	}
	if pulses != 3 {
		t.Fatalf("got %d pulses over %d ticks, want 3", pulses, 3*n)
	}
}

func TestDividerUpdateImmediatePulse(t *testing.T) {
	d := NewDivider(10)
	// advance partway through a period so the update lands mid-phase
	for i := 0; i < 3; i++ {
		d.Tick(false, 0)
	}
	if !d.Tick(true, 5) {
		t.Fatal("update tick must assert the pulse immediately")
	}
	if d.Divisor() != 5 {
		t.Fatalf("divisor = %d, want 5", d.Divisor())
	}
	// next pulse exactly 5 ticks after the update
	for i := 1; i <= 5; i++ {
		got := d.Tick(false, 0)
		want := i == 5
		if got != want {
			t.Fatalf("tick %d after update: pulse = %v, want %v", i, got, want)
		}
	}
}

func TestDividerZeroPromotedToOne(t *testing.T) {
	d := NewDivider(0)
	if d.Divisor() != 1 {
		t.Fatalf("constructor divisor = %d, want 1", d.Divisor())
	}
	d.Tick(true, 0)
	if d.Divisor() != 1 {
		t.Fatalf("updated divisor = %d, want 1", d.Divisor())
	}
	if !d.Tick(false, 0) {
		t.Fatal("expected every-tick pulse after zero divisor promoted to 1")
	}
}
