package version

import "testing"

func TestString(t *testing.T) {
	oldCommit, oldBuild := Commit, BuildTime
	t.Cleanup(func() { Commit, BuildTime = oldCommit, oldBuild })

	Commit = "0123456789abcdef"
	BuildTime = "2024-01-01"

	want := "sweep dev (commit: 0123456, built: 2024-01-01)"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
