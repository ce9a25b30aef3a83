package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-translate/internal/di"
	"github.com/goliatone/go-translate/internal/ledger"
	"github.com/goliatone/go-translate/internal/runtimeconfig"
	"github.com/goliatone/go-translate/internal/translator"
)

// Options holds CLI-level configuration.
type Options struct {
	// ConfigPath points at a YAML configuration file. When empty or missing
	// the CLI runs on DefaultConfig.
	ConfigPath string
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "translate",
		Short: "Bulk machine translation for content stores",
		Long:  "translate dispatches batched machine translation runs, previews the results, and applies or rolls them back through a job ledger.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCommand(container))
	root.AddCommand(newJobsCommand(container))
	root.AddCommand(newStatusCommand(container))
	root.AddCommand(newApplyCommand(container))
	root.AddCommand(newRollbackCommand(container))
	root.AddCommand(newPreviewCommand(container))
	root.AddCommand(newTestConnectionCommand(container))
	return root, nil
}

func loadConfig(path string) (runtimeconfig.Config, error) {
	if path == "" {
		return runtimeconfig.DefaultConfig(), nil
	}
	cfg, err := runtimeconfig.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "config %s not found, using defaults\n", path)
		return runtimeconfig.DefaultConfig(), nil
	}
	return cfg, err
}

func newRunCommand(container *di.Container) *cobra.Command {
	var (
		target     string
		source     string
		override   string
		previewRun bool
		ids        []string
		limit      int
		syncedKeys []string
		seoKeys    []string
	)

	cmd := &cobra.Command{
		Use:   "run [pages|templates|menus|fields|seo]",
		Short: "Start a translation run for one content kind",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind := translator.KindPages
			if len(args) == 1 {
				kind = args[0]
			}

			req := translator.RunRequest{
				TargetLanguage:   target,
				SourceLanguage:   source,
				ProviderOverride: override,
			}
			if previewRun {
				req.Mode = ledger.ModePreview
			}

			svc := container.Translator()
			var (
				jobID string
				err   error
			)
			switch kind {
			case translator.KindPages:
				switch {
				case len(ids) > 0:
					jobID, err = svc.TranslatePages(ctx, req, ids)
				case limit > 0:
					jobID, err = svc.TranslateRecent(ctx, req, limit)
				default:
					jobID, err = svc.TranslatePublished(ctx, req)
				}
			case translator.KindTemplates:
				jobID, err = svc.TranslateTemplates(ctx, req)
			case translator.KindMenus:
				jobID, err = svc.TranslateMenus(ctx, req)
			case translator.KindFields:
				jobID, err = svc.TranslateFields(ctx, req, syncedKeys)
			case translator.KindSEO:
				jobID, err = svc.TranslateSEO(ctx, req, seoKeys)
			default:
				return fmt.Errorf("unknown run kind %q", kind)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), jobID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Target language code, e.g. de")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Source language code (empty lets the vendor detect it)")
	cmd.Flags().StringVar(&override, "provider", "", "Override the configured provider key")
	cmd.Flags().BoolVarP(&previewRun, "preview", "p", false, "Stage a preview instead of writing the content store")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Translate only these content ids (pages kind)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Translate only the N most recently published pages")
	cmd.Flags().StringSliceVar(&syncedKeys, "synced-keys", nil, "Field keys copied verbatim instead of translated (fields kind)")
	cmd.Flags().StringSliceVar(&seoKeys, "seo-keys", nil, "SEO field keys to translate (seo kind, defaults to the standard set)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}
