package version

import "testing"

func TestString(t *testing.T) {
	oldVersion, oldCommit, oldBuild := Version, Commit, BuildTime
	defer func() { Version, Commit, BuildTime = oldVersion, oldCommit, oldBuild }()

	Version, Commit, BuildTime = "1.2.0", "abc1234", "2024-05-01T10:00:00Z"

	want := "1.2.0 (abc1234) built 2024-05-01T10:00:00Z"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestUserAgent(t *testing.T) {
	oldVersion := Version
	defer func() { Version = oldVersion }()

	tests := []struct {
		version string
		want    string
	}{
		{"dev", "sureyummy/dev"},
		{"1.2.0", "sureyummy/1.2.0"},
	}

	for _, tt := range tests {
		Version = tt.version
		if got := UserAgent(); got != tt.want {
			t.Errorf("UserAgent() with Version=%q = %q, want %q", tt.version, got, tt.want)
		}
	}
}
