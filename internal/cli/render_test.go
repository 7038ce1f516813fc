package cli

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/layout"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"spaces and case", " SVG , dot ", []string{"svg", "dot"}},
		{"skips blanks", "svg,,png", []string{"svg", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMergeLayout(t *testing.T) {
	base := layout.DefaultOptions()
	got := mergeLayout(base, layout.Options{RankDir: layout.RankDirTB, NodeSep: 7})

	if got.RankDir != layout.RankDirTB {
		t.Errorf("RankDir = %q, want %q", got.RankDir, layout.RankDirTB)
	}
	if got.NodeSep != 7 {
		t.Errorf("NodeSep = %v, want 7", got.NodeSep)
	}
	if got.Engine != base.Engine || got.RankSep != base.RankSep {
		t.Errorf("unset flags changed options: %+v", got)
	}
}

func TestEncode(t *testing.T) {
	svgData := []byte("<svg/>")

	tests := []struct {
		name     string
		format   string
		dot      string
		want     string
		wantCode perrors.Code
	}{
		{"svg passthrough", formatSVG, "", "<svg/>", ""},
		{"dot needs nodelink", formatDOT, "", "", perrors.ErrCodeUnsupported},
		{"dot source", formatDOT, "digraph {}", "digraph {}", ""},
		{"unknown", "bmp", "", "", perrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encode(context.Background(), tt.format, svgData, tt.dot, 1)
			if tt.wantCode != "" {
				if code := perrors.GetCode(err); code != tt.wantCode {
					t.Fatalf("encode(%q) code = %q, want %q (err %v)", tt.format, code, tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("encode(%q) error = %v", tt.format, err)
			}
			if string(got) != tt.want {
				t.Errorf("encode(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestFormatMillis(t *testing.T) {
	if got := formatMillis(0); got != "-" {
		t.Errorf("formatMillis(0) = %q, want %q", got, "-")
	}
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.Local)
	if got := formatMillis(day.UnixMilli()); got != "2024-03-09" {
		t.Errorf("formatMillis(midnight) = %q, want %q", got, "2024-03-09")
	}
	at := time.Date(2024, 3, 9, 14, 30, 0, 0, time.Local)
	if got := formatMillis(at.UnixMilli()); !strings.HasPrefix(got, "2024-03-09 14:30") {
		t.Errorf("formatMillis(afternoon) = %q, want date and time", got)
	}
}
