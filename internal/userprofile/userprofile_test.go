package userprofile

import "testing"

func TestProfileRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, ok, err := Get(); err != nil {
		t.Fatalf("Get: %v", err)
	} else if ok {
		t.Fatalf("profile reported before Set")
	}

	want := Profile{Name: "Test Author", Email: "author@example.test"}
	if err := Set(want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("profile not found after Set")
	}
	if got != want {
		t.Fatalf("profile = %+v, want %+v", got, want)
	}

	if err := Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, err := Get(); err != nil {
		t.Fatalf("Get: %v", err)
	} else if ok {
		t.Fatalf("profile survived Clear")
	}

	// clearing twice is fine
	if err := Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}
