package git

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusKind_JSON(t *testing.T) {
	data, err := json.Marshal(ChangeRecord{Path: "a.go", Kind: StatusRenamed, OldPath: "b.go", Staged: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"a.go","status":"renamed","oldPath":"b.go","staged":true}`, string(data))

	var rec ChangeRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, StatusRenamed, rec.Kind)

	var bad StatusKind
	assert.Error(t, json.Unmarshal([]byte(`"exploded"`), &bad))
}

func TestChangeRecord_Target(t *testing.T) {
	assert.Equal(t, TargetStaged, ChangeRecord{Staged: true}.Target())
	assert.Equal(t, TargetUnstaged, ChangeRecord{}.Target())
	assert.Equal(t, TargetUnstaged, ChangeRecord{Kind: StatusUntracked}.Target())
}

func TestValidateRelPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"src/app.go", false},
		{"README.md", false},
		{"a/b/../c", true},
		{"../etc/passwd", true},
		{"/etc/passwd", true},
		{`C:\Windows`, true},
		{"", true},
		{"dir..name/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidateRelPath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsKind(err, ErrorPath))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestError_Message(t *testing.T) {
	inner := errors.New("boom")
	err := &Error{Kind: ErrorGit, Path: "x.go", Detail: "boom", Err: inner}

	assert.Equal(t, `git error for "x.go": boom`, err.Error())
	assert.ErrorIs(t, err, inner)
	assert.False(t, IsKind(inner, ErrorGit))
}

func TestLang(t *testing.T) {
	tests := map[string]string{
		"src/app.tsx":      "tsx",
		"main.go":          "go",
		"lib/mod.RS":       "rust",
		"Dockerfile":       "dockerfile",
		"docs/README.md":   "markdown",
		"unknown.xyz":      "",
		"noext":            "",
		"config/app.yml":   "yaml",
		"scripts/build.sh": "bash",
	}

	for path, want := range tests {
		assert.Equal(t, want, Lang(path), path)
	}
}

func TestIsBinary(t *testing.T) {
	assert.False(t, IsBinary([]byte("hello\nworld")))
	assert.True(t, IsBinary([]byte("PNG\x00\x01")))
	assert.False(t, IsBinary(nil))
}
