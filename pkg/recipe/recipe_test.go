package recipe

import (
	"errors"
	"strings"
	"testing"
)

const sampleRecipe = `
name = "catacombs"
seed = 7

[root]
width = 24
height = 18
walled = true

[portals]
min = 2
max = 4
reciprocate = true

[rooms]
min_width = 6
max_width = 12
min_height = 5
max_height = 9
walled = true

[merge]
enabled = true
depth = 3

[[submaps]]
count_min = 1
count_max = 3
min_width = 4
max_width = 6
min_height = 4
max_height = 6
`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(sampleRecipe))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Name != "catacombs" || r.Seed != 7 {
		t.Errorf("header = %q/%d, want catacombs/7", r.Name, r.Seed)
	}
	if r.Root.Width != 24 || r.Root.Height != 18 || !r.Root.Walled {
		t.Errorf("root = %+v", r.Root)
	}
	if r.Portals.Min != 2 || r.Portals.Max != 4 || !r.Portals.Reciprocate {
		t.Errorf("portals = %+v", r.Portals)
	}
	if r.Merge == nil || !r.Merge.Enabled || r.Merge.Depth != 3 {
		t.Errorf("merge = %+v", r.Merge)
	}
	if len(r.SubMaps) != 1 || r.SubMaps[0].CountMax != 3 {
		t.Errorf("submaps = %+v", r.SubMaps)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want error
	}{
		{
			name: "missing root",
			toml: `name = "x"`,
			want: ErrNoRoot,
		},
		{
			name: "inverted portal range",
			toml: "[root]\nwidth = 10\nheight = 10\n[portals]\nmin = 5\nmax = 2",
			want: ErrBadRange,
		},
		{
			name: "inverted room range",
			toml: "[root]\nwidth = 10\nheight = 10\n[rooms]\nmin_width = 9\nmax_width = 3\nmin_height = 3\nmax_height = 5",
			want: ErrBadRange,
		},
		{
			name: "inverted submap count",
			toml: "[root]\nwidth = 10\nheight = 10\n[[submaps]]\ncount_min = 4\ncount_max = 1\nmin_width = 3\nmax_width = 4\nmin_height = 3\nmax_height = 4",
			want: ErrBadRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateRejectsTinyRootWithPortals(t *testing.T) {
	_, err := Parse([]byte("[root]\nwidth = 2\nheight = 10\n[portals]\nmin = 1\nmax = 1"))
	if err == nil || !strings.Contains(err.Error(), "too small") {
		t.Errorf("error = %v, want size complaint", err)
	}
}

func TestValidateRejectsBadMergeDepth(t *testing.T) {
	_, err := Parse([]byte("[root]\nwidth = 10\nheight = 10\n[merge]\nenabled = true\ndepth = 0"))
	if err == nil {
		t.Error("expected error for zero merge depth")
	}
}

func TestCanonicalIgnoresFormatting(t *testing.T) {
	a, err := Parse([]byte("[root]\nwidth = 10\nheight = 8"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse([]byte("  [root]  \n  height   =   8\n  width = 10\n"))
	if err != nil {
		t.Fatal(err)
	}
	ca, _ := a.Canonical()
	cb, _ := b.Canonical()
	if string(ca) != string(cb) {
		t.Errorf("canonical forms differ:\n%s\n---\n%s", ca, cb)
	}
}
