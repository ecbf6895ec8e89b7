package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinFold(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		segments []string
		want     string
	}{
		{"simple append", "a/b", []string{"c"}, "a/b/c"},
		{"multiple segments", "a", []string{"b", "c"}, "a/b/c"},
		{"empty base", "", []string{"a"}, "a"},
		{"absolute segment replaces", "a/b", []string{"/x", "y"}, "x/y"},
		{"absolute base keeps root", "/a", []string{"b"}, "/a/b"},
		{"absolute base survives replacement", "/a", []string{"/x"}, "/x"},
		{"relative base stays relative", "a", []string{"/x"}, "x"},
		{"trailing sep on base", "a/", []string{"b"}, "a/b"},
		{"no segments", "a/b", nil, "a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinFold(tt.base, "/", tt.segments...))
		})
	}
}

func TestSuffix(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.txt", ".txt"},
		{"a.tar.gz", ".gz"},
		{"a", ""},
		{".bashrc", ""},
		{"a.", ""},
		{"", ""},
		{"archive.2024.tar", ".tar"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Suffix(tt.name), "Suffix(%q)", tt.name)
	}
}

func TestSuffixes(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"a.tar.gz", []string{".tar", ".gz"}},
		{"a.txt", []string{".txt"}},
		{"a", nil},
		{".bashrc", nil},
		{"a.", nil},
		{"..a.b", []string{".b"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Suffixes(tt.name), "Suffixes(%q)", tt.name)
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"a.txt", "a"},
		{"a.tar.gz", "a.tar"},
		{".bashrc", ".bashrc"},
		{"a", "a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stem(tt.name), "Stem(%q)", tt.name)
	}
}

func TestLocalName(t *testing.T) {
	tests := []struct {
		p    string
		want string
	}{
		{"/a/b.txt", "b.txt"},
		{"a/b", "b"},
		{"/", ""},
		{".", ""},
		{"", ""},
		{"/a/b/", "b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LocalName(tt.p), "LocalName(%q)", tt.p)
	}
}

func TestLocalParts(t *testing.T) {
	tests := []struct {
		p    string
		want []string
	}{
		{"/a/b", []string{"/", "a", "b"}},
		{"a/b", []string{"a", "b"}},
		{"/", []string{"/"}},
		{".", nil},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LocalParts(tt.p), "LocalParts(%q)", tt.p)
	}
}

func TestFlatParts(t *testing.T) {
	tests := []struct {
		p    string
		want []string
	}{
		{"bucket/a/b.txt", []string{"bucket", "a", "b.txt"}},
		{"a//b.txt", []string{"a", "", "b.txt"}},
		{"/a/b", []string{"a", "b"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FlatParts(tt.p, "/"), "FlatParts(%q)", tt.p)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		p       string
		pattern string
		want    bool
	}{
		{"/a/b/c.py", "*.py", true},
		{"/a/b/c.py", "b/*.py", true},
		{"/a/b/c.py", "a/*.py", false},
		{"/a/b/c.py", "/a/b/c.py", true},
		{"/a/b/c.py", "/*.py", false},
		{"a/b.py", "*.py", true},
		{"/a/b/c.py", "", false},
		{"/a/b/c.py", "?.py", true},
		{"/a/b/c.py", "[cd].py", true},
	}
	for _, tt := range tests {
		got, err := Match(tt.p, tt.pattern)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Match(%q, %q)", tt.p, tt.pattern)
	}
}

func TestMatchFlat(t *testing.T) {
	// Flat paths are treated as absolute in their namespace.
	tests := []struct {
		p       string
		pattern string
		want    bool
	}{
		{"bucket/a/b.py", "*.py", true},
		{"bucket/a/b.py", "/bucket/a/b.py", true},
		{"bucket/a/b.py", "/a/b.py", false},
		{"bucket/a/b.py", "a/*.py", true},
	}
	for _, tt := range tests {
		got, err := MatchFlat(tt.p, tt.pattern, "/")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "MatchFlat(%q, %q)", tt.p, tt.pattern)
	}
}

func TestRelativeLocal(t *testing.T) {
	tests := []struct {
		p    string
		base string
		want string
		ok   bool
	}{
		{"/a/b/c", "/a", "b/c", true},
		{"/a/b/c", "/a/b", "c", true},
		{"/a/b", "/a/b", ".", true},
		{"/a/b", "/x", "", false},
		{"/aa/b", "/a", "", false},
		{"a/b", "a", "b", true},
		{"/a", "/a/b", "", false},
	}
	for _, tt := range tests {
		got, ok := RelativeLocal(tt.p, tt.base)
		assert.Equal(t, tt.ok, ok, "RelativeLocal(%q, %q) ok", tt.p, tt.base)
		assert.Equal(t, tt.want, got, "RelativeLocal(%q, %q)", tt.p, tt.base)
	}
}
