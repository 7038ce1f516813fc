package layout

import (
	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/graph"
)

// Engine names.
const (
	EngineLayered = "layered"
	EngineDot     = "dot"
)

// Rank directions.
const (
	RankDirTB = "TB"
	RankDirBT = "BT"
	RankDirLR = "LR"
	RankDirRL = "RL"
)

// Default option values.
const (
	DefaultEngine  = EngineLayered
	DefaultRankDir = RankDirLR
	DefaultRankSep = 50.0
	DefaultNodeSep = 50.0
	DefaultMargin  = 20.0
)

// Options configures a layout run. Zero values select the defaults.
type Options struct {
	Engine string `json:"engine,omitempty" toml:"engine" validate:"omitempty,oneof=layered dot"`

	// RankDir is the direction sequence edges point: TB, BT, LR or RL.
	RankDir string `json:"rankDir,omitempty" toml:"rank_dir" validate:"omitempty,oneof=TB BT LR RL"`

	// Align biases placement within a rank. UL and UR align nodes with
	// their predecessors, DL and DR with their successors; the second
	// letter picks the side nodes pack towards. Empty balances both.
	Align string `json:"align,omitempty" toml:"align" validate:"omitempty,oneof=UL UR DL DR"`

	RankSep    float64 `json:"rankSep,omitempty" toml:"rank_sep" validate:"gte=0"`
	NodeSep    float64 `json:"nodeSep,omitempty" toml:"node_sep" validate:"gte=0"`
	Margin     float64 `json:"margin,omitempty" toml:"margin" validate:"gte=0"`
	NodeWidth  float64 `json:"nodeWidth,omitempty" toml:"node_width" validate:"gte=0"`
	NodeHeight float64 `json:"nodeHeight,omitempty" toml:"node_height" validate:"gte=0"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Engine:     DefaultEngine,
		RankDir:    DefaultRankDir,
		RankSep:    DefaultRankSep,
		NodeSep:    DefaultNodeSep,
		Margin:     DefaultMargin,
		NodeWidth:  graph.DefaultNodeWidth,
		NodeHeight: graph.DefaultNodeHeight,
	}
}

// ValidateAndSetDefaults checks the options and fills unset fields.
func (o *Options) ValidateAndSetDefaults() error {
	if err := perrors.ValidateStruct(perrors.ErrCodeInvalidInput, o); err != nil {
		return err
	}
	d := DefaultOptions()
	if o.Engine == "" {
		o.Engine = d.Engine
	}
	if o.RankDir == "" {
		o.RankDir = d.RankDir
	}
	if o.RankSep == 0 {
		o.RankSep = d.RankSep
	}
	if o.NodeSep == 0 {
		o.NodeSep = d.NodeSep
	}
	if o.Margin == 0 {
		o.Margin = d.Margin
	}
	if o.NodeWidth == 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = d.NodeHeight
	}
	return nil
}

// horizontal reports whether ranks advance along the x axis.
func (o Options) horizontal() bool {
	return o.RankDir == RankDirLR || o.RankDir == RankDirRL
}
