package deploy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flarebyte/seshat-toolkit/internal/config"
	"github.com/flarebyte/seshat-toolkit/internal/fetch"
	"github.com/flarebyte/seshat-toolkit/internal/hook"
	"github.com/flarebyte/seshat-toolkit/internal/paths"
	"github.com/flarebyte/seshat-toolkit/internal/prefs"
	"github.com/flarebyte/seshat-toolkit/internal/registry"
	"github.com/flarebyte/seshat-toolkit/internal/stage"
)

var (
	cfgPath         string
	flagPrivateRoot string
	flagSharedRoot  string
	flagHooksDir    string
	flagPathFile    string
	flagRegistry    string
	flagUpdate      bool
	flagResetPath   bool
	flagIncludeInst bool
	flagOnly        string
	flagRegister    []string
	flagPolicy      string
	flagJSON        bool
	flagPrefsPath   string
	flagVerbose     bool
)

// Cmd represents the `seshat deploy` command.
var Cmd = &cobra.Command{
	Use:           "deploy",
	Short:         "Deploy the configured toolboxes and run their hooks",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagIncludeInst && !flagResetPath {
			return fmt.Errorf("--include-installed requires --reset-path")
		}
		opts, err := resolveOptions()
		if err != nil {
			return err
		}

		log := newLogger(flagVerbose)
		store, err := registry.Ensure(opts.registrySpec, opts.registryCache, flagUpdate)
		if err != nil {
			return err
		}
		search := paths.NewFileSearchPath(opts.pathFile)
		active, err := search.Current()
		if err != nil {
			return err
		}

		deps := stage.Deps{
			Search:   search,
			Fetcher:  &fetch.Fetcher{SharedRoot: opts.sharedRoot, PrivateRoot: opts.privateRoot, Update: flagUpdate, Log: log},
			Registry: store,
			Hooks:    hook.New(opts.sandbox),
			Log:      log,
			Active:   active,
		}
		env := stage.Envelope{Meta: &stage.Meta{
			Entries:          opts.entries,
			RegisteredNames:  flagRegister,
			Only:             flagOnly,
			PrivateRoot:      opts.privateRoot,
			SharedRoot:       opts.sharedRoot,
			HooksDir:         opts.hooksDir,
			ResetPath:        flagResetPath,
			IncludeInstalled: flagIncludeInst,
			PortablePolicy:   opts.policy,
		}}

		out, err := executePipeline(cmd.Context(), env, deps)
		if err != nil {
			return err
		}
		if err := renderResult(os.Stdout, out, flagJSON); err != nil {
			return err
		}
		return exitRuleFor(out)
	},
}

// options are the effective run settings after merging flags, config defaults
// and user preferences, in that precedence order.
type options struct {
	entries       []config.Entry
	privateRoot   string
	sharedRoot    string
	hooksDir      string
	pathFile      string
	registrySpec  string
	registryCache string
	policy        hook.PortablePolicy
	sandbox       hook.Options
}

func resolveOptions() (options, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return options{}, err
	}
	prefsPath := flagPrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	p, err := prefs.Load(prefsPath)
	if err != nil {
		return options{}, err
	}

	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".seshat")
	opts := options{
		entries:       cfg.Toolboxes,
		privateRoot:   pick(flagPrivateRoot, cfg.PrivateRoot, p.PrivateRoot, filepath.Join(base, "toolboxes")),
		sharedRoot:    pick(flagSharedRoot, cfg.SharedRoot, p.SharedRoot, ""),
		hooksDir:      pick(flagHooksDir, cfg.HooksDir, p.HooksDir, filepath.Join(base, "hooks")),
		pathFile:      pick(flagPathFile, cfg.PathFile, p.PathFile, filepath.Join(base, "path")),
		registrySpec:  pick(flagRegistry, cfg.Registry, p.Registry, ""),
		registryCache: filepath.Join(base, "registry"),
		policy:        hook.PortablePolicy(pick(flagPolicy, cfg.PortableHookPolicy, p.PortableHookPolicy, string(hook.PolicySkipActive))),
		sandbox:       hook.DefaultOptions(),
	}
	if cfg.LuaSandbox != nil {
		opts.sandbox = *cfg.LuaSandbox
	}
	switch opts.policy {
	case hook.PolicyAlways, hook.PolicySkipActive:
	default:
		return options{}, fmt.Errorf("invalid portable hook policy %q", opts.policy)
	}
	return opts, nil
}

// pick returns the first non-empty value.
func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func newLogger(verbose bool) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logrus.NewEntry(logger)
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to deploy config (.cue)")
	Cmd.Flags().StringVar(&flagPrivateRoot, "private-root", "", "Private storage root for fetched toolboxes")
	Cmd.Flags().StringVar(&flagSharedRoot, "shared-root", "", "Shared storage root checked before fetching")
	Cmd.Flags().StringVar(&flagHooksDir, "hooks-dir", "", "Directory holding machine-local hook scripts")
	Cmd.Flags().StringVar(&flagPathFile, "path-file", "", "Search-path manifest file")
	Cmd.Flags().StringVar(&flagRegistry, "registry", "", "Registry directory or git URL")
	Cmd.Flags().BoolVar(&flagUpdate, "update", false, "Update already-fetched toolboxes and the registry cache")
	Cmd.Flags().BoolVar(&flagResetPath, "reset-path", false, "Reset the search path before placing toolboxes")
	Cmd.Flags().BoolVar(&flagIncludeInst, "include-installed", false, "With --reset-path, keep entries still present on disk")
	Cmd.Flags().StringVar(&flagOnly, "only", "", "Deploy a single named toolbox")
	Cmd.Flags().StringArrayVar(&flagRegister, "register", nil, "Ad-hoc toolbox name resolved via the registry (repeatable)")
	Cmd.Flags().StringVar(&flagPolicy, "portable-hook-policy", "", "Portable hook policy: always or skip-active")
	Cmd.Flags().BoolVar(&flagJSON, "json", false, "Print the result envelope as JSON")
	Cmd.Flags().StringVar(&flagPrefsPath, "prefs", "", "Preferences file (default: user config dir)")
	Cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}
