package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/what-go/what"
	"github.com/what-go/what/pkg/catalog"
	"github.com/what-go/what/pkg/extract"
	"github.com/what-go/what/pkg/filter"
	"github.com/what-go/what/pkg/logger"
	"github.com/what-go/what/pkg/scanner"
)

var errNoInput = errors.New("text input expected, run '--help' for usage")

// newRootCmd builds the what command. Each call gets its own viper
// instance so commands built in tests do not share state.
func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "what [input]",
		Short: "Identify what something is",
		Long: `what identifies what a piece of text is: cryptocurrency addresses,
network identifiers, URLs, API tokens and more.

The input can be literal text, a file, a directory or a packet capture.

Examples:
  what 0x52908400098527886E0F7030069857D2E4169EE7
  what -r 0:1 dQw4w9WgXcQ
  what -i url -k name ./logs
  what --pcap traffic.pcapng --format json`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(v)
			if err != nil {
				return err
			}
			return runIdentify(cmd, cfg, args)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetVersionTemplate(versionTemplate())

	flags := cmd.Flags()
	flags.BoolP("tags", "t", false, "Show available tags and exit")
	flags.StringP("rarity", "r", filter.DefaultRarity, "Filter by rarity, range of 0:1")
	flags.StringP("include", "i", "", "Only show matches with these tags (comma-separated)")
	flags.StringP("exclude", "e", "", "Exclude matches with these tags (comma-separated)")
	flags.BoolP("only-text", "o", false, "Do not scan files or folders")
	flags.BoolP("disable-borderless", "d", false, "Disable borderless mode")
	flags.BoolP("allow-duplicates", "D", false, "Report every occurrence of a matched text")
	flags.Bool("pcap", false, "Analyze a pcap or pcapng capture")
	flags.String("format", formatDefault, "Output format: default, json, pretty")
	flags.StringP("key", "k", keyNone, "Sort by key: name, rarity, matched, none")
	flags.Bool("reverse", false, "Reverse the sorting order")
	flags.String("generate", "", "Generate a shell completion script: bash, zsh, fish, powershell")
	flags.String("catalog", "", "Path to a custom pattern catalog (YAML or JSON)")
	flags.String("extract", "", "Extract and scan archives and documents: zip, 7z, pdf, docx, xlsx, all")
	flags.Int("max-depth", 0, "Maximum directory depth to scan (0 = unlimited)")
	flags.Bool("gitignore", false, "Skip paths ignored by the root .gitignore")
	flags.Bool("keep-going", false, "Report unreadable inputs and continue")
	flags.String("color", "auto", "Color output: auto, always, never")

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.what.yaml or ./.what.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Quiet mode (errors only)")

	_ = v.BindPFlags(flags)
	_ = v.BindPFlags(cmd.PersistentFlags())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func runIdentify(cmd *cobra.Command, cfg *settings, args []string) error {
	if cfg.Generate != "" {
		return generateCompletion(cmd.Root(), cmd.OutOrStdout(), cfg.Generate)
	}

	log := logger.NewConsole(cmd.ErrOrStderr(), cfg.logLevel())

	cat, err := loadCatalog(cfg.Catalog, log)
	if err != nil {
		return err
	}

	if cfg.ShowTags {
		return writeTags(cmd.OutOrStdout(), cat.Tags())
	}
	if len(args) == 0 {
		return errNoInput
	}

	kinds, err := extract.ParseKinds(cfg.Extract)
	if err != nil {
		return err
	}

	id, err := what.NewIdentifier(
		what.WithCatalog(cat),
		what.WithFilter(filter.Config{
			Rarity:     cfg.Rarity,
			Borderless: !cfg.DisableBorderless,
			Include:    cfg.Include,
			Exclude:    cfg.Exclude,
		}),
		what.WithScanOptions(scanner.Options{
			TreatAsText:      cfg.OnlyText,
			Capture:          cfg.Pcap,
			AllowDuplicates:  cfg.AllowDuplicates,
			Extract:          kinds,
			MaxDepth:         cfg.MaxDepth,
			RespectGitignore: cfg.Gitignore,
			KeepGoing:        cfg.KeepGoing,
		}),
		what.WithLogger(log),
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	session := id.NewSession()
	matches, err := session.IdentifyInput(ctx, args[0])
	if err != nil {
		return err
	}

	sortMatches(matches, cfg.Key, cfg.Reverse)

	out := cmd.OutOrStdout()
	if err := render(out, matches, cfg.Format, colorEnabled(cfg.Color, out)); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if errs := session.Errors(); len(errs) > 0 {
		return fmt.Errorf("%d input(s) could not be scanned", len(errs))
	}
	return nil
}

func loadCatalog(path string, log logger.Logger) (*catalog.Catalog, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if path != "" {
		cat, err = catalog.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
	} else {
		cat, err = catalog.LoadBuiltin()
		if err != nil {
			return nil, err
		}
	}

	for _, d := range cat.Dropped() {
		log.Debugf("pattern %q dropped: %v", d.Name, d.Err)
	}
	log.Debugf("loaded %d patterns", cat.Len())
	return cat, nil
}

func generateCompletion(root *cobra.Command, w io.Writer, shell string) error {
	switch strings.ToLower(shell) {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return fmt.Errorf("unsupported shell for completion: %s", shell)
	}
}
