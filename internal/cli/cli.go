package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/possible/pkg/buildinfo"
	"github.com/matzehuels/possible/pkg/config"
	"github.com/matzehuels/possible/pkg/dag"
	perrors "github.com/matzehuels/possible/pkg/errors"
	"github.com/matzehuels/possible/pkg/session"
	"github.com/matzehuels/possible/pkg/storage"
	"github.com/matzehuels/possible/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "possible"

	// minPrefix is the shortest ID prefix accepted as a reference.
	minPrefix = 4

	// annotConfigOptional marks commands that run without a config file.
	annotConfigOptional = "possible/config-optional"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath  string
	storagePath string
	graphRef    string
	cfg         config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Possible plans work as nested dependency graphs",
		Long:         `Possible keeps tasks and notes as graphs: nodes nest inside group nodes and sequence edges say what comes after what. Graphs can be browsed, reduced, laid out and rendered.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd.Annotations[annotConfigOptional] == "true"); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/possible/config.toml)")
	root.PersistentFlags().StringVar(&c.storagePath, "data", "", "graph document path (overrides [storage] path)")
	root.PersistentFlags().StringVarP(&c.graphRef, "graph", "g", "", "graph to operate on (default: the selected graph)")

	_ = root.RegisterFlagCompletionFunc("graph", c.completeGraphs)

	nodes, edges := c.nodeCommand(), c.edgeCommand()
	c.registerNodeCompletion(nodes)
	c.registerNodeCompletion(edges)
	reduce := c.reduceCommand()
	reduce.ValidArgsFunction = c.completeNodes(1)

	root.AddCommand(c.graphCommand())
	root.AddCommand(nodes)
	root.AddCommand(edges)
	root.AddCommand(reduce)
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Store Access
// =============================================================================

// loadConfig applies defaults, the config file and then flags. With
// optional set, a missing config file falls back to the defaults.
func (c *CLI) loadConfig(optional bool) error {
	cfg, err := config.Load(c.configPath)
	if optional && perrors.Is(err, perrors.ErrCodeInvalidPath) {
		cfg = config.Default()
		err = cfg.Validate()
	}
	if err != nil {
		return err
	}
	if c.storagePath != "" {
		cfg.Storage.Backend = "file"
		cfg.Storage.Path = c.storagePath
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	lowerLevel(c.Logger, cfg.LogLevel)
	c.cfg = cfg
	return nil
}

// openStore opens the configured backend and loads every graph. The
// returned close function flushes pending saves.
func (c *CLI) openStore(ctx context.Context) (*store.Store, func() error, error) {
	backend, err := storage.Open(ctx, c.cfg.StorageOptions())
	if err != nil {
		return nil, nil, perrors.Wrap(perrors.ErrCodeIO, err, "open %s storage", c.cfg.Storage.Backend)
	}
	sc := c.cfg.StoreConfig(backend)
	sc.Logger = c.Logger
	st := store.New(sc)
	if err := st.Load(ctx); err != nil {
		backend.Close()
		return nil, nil, err
	}
	c.Logger.Debug("store loaded", "backend", backend.Name(), "graphs", len(st.Graphs()))
	return st, func() error { return st.Close(context.WithoutCancel(ctx)) }, nil
}

// withStore runs fn against a freshly loaded store and closes it afterwards.
func (c *CLI) withStore(ctx context.Context, fn func(*store.Store) error) (err error) {
	st, closeStore, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(st)
}

func (c *CLI) sessions() (*session.FileStore, error) {
	return session.NewFileStore("")
}

// currentGraph resolves the --graph flag, falling back to the selection.
func (c *CLI) currentGraph(ctx context.Context, st *store.Store) (*dag.Graph, error) {
	ref := c.graphRef
	if ref == "" {
		ss, err := c.sessions()
		if err != nil {
			return nil, err
		}
		sel, err := ss.Get(ctx, session.DefaultName)
		if err != nil {
			return nil, err
		}
		if sel == nil {
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "no graph selected; run '%s graph use <graph>' or pass --graph", appName)
		}
		ref = sel.GraphID
	}
	return resolveGraph(st, ref)
}

// selectGraph remembers id as the current graph.
func (c *CLI) selectGraph(ctx context.Context, id string) error {
	ss, err := c.sessions()
	if err != nil {
		return err
	}
	return ss.Set(ctx, session.DefaultName, session.Select(id))
}

// =============================================================================
// References
// =============================================================================

// resolveGraph finds a graph by ID, unique ID prefix or unique name.
func resolveGraph(st *store.Store, ref string) (*dag.Graph, error) {
	if g, ok := st.Graph(ref); ok {
		return g, nil
	}
	var matches []string
	for _, m := range st.Graphs() {
		if (len(ref) >= minPrefix && strings.HasPrefix(m.ID, ref)) || strings.EqualFold(m.Name, ref) {
			matches = append(matches, m.ID)
		}
	}
	switch len(matches) {
	case 0:
		return nil, perrors.New(perrors.ErrCodeGraphNotFound, "graph %q not found", ref)
	case 1:
		g, _ := st.Graph(matches[0])
		return g, nil
	default:
		return nil, perrors.New(perrors.ErrCodeConflict, "graph %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveNode finds a node by ID, unique ID prefix or unique name.
func resolveNode(g *dag.Graph, ref string) (string, error) {
	if g.HasNode(ref) {
		return ref, nil
	}
	var matches []string
	for _, id := range g.NodeIDs() {
		n := g.Nodes[id]
		if (len(ref) >= minPrefix && strings.HasPrefix(id, ref)) || strings.EqualFold(n.Name, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", perrors.New(perrors.ErrCodeNodeNotFound, "node %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return "", perrors.New(perrors.ErrCodeConflict, "node %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// shortID returns the display form of an ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// nodeLabel returns the node's name, or its short ID when unnamed.
func nodeLabel(n *dag.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("(%s)", shortID(n.ID))
}
