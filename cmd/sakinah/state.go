package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakinah-dev/sakinah/internal/appstate"
	"github.com/sakinah-dev/sakinah/internal/errors"
	"github.com/sakinah-dev/sakinah/internal/logging"
	"github.com/sakinah-dev/sakinah/pkg/store"
)

func stateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect and reset persisted store state",
	}
	cmd.AddCommand(stateShowCmd(root), stateResetCmd(root))
	return cmd
}

// pickStores resolves the store names a command acts on. No argument means
// every store.
func pickStores(app *appstate.App, args []string) ([]store.Inspectable, error) {
	if len(args) == 0 {
		names := app.Registry.Names()
		out := make([]store.Inspectable, 0, len(names))
		for _, name := range names {
			s, _ := app.Registry.Lookup(name)
			out = append(out, s)
		}
		return out, nil
	}
	s, ok := app.Registry.Lookup(args[0])
	if !ok {
		return nil, errors.New("E301").
			WithDetailf("no store named %q", args[0]).
			WithSuggestion("Known stores: " + strings.Join(app.Registry.Names(), ", "))
	}
	return []store.Inspectable{s}, nil
}

func stateShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [store]",
		Short: "Print persisted store state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			app, closeApp, err := openApp(cmd.Context(), cfg, logging.Discard())
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context())

			stores, err := pickStores(app, args)
			if err != nil {
				return err
			}

			out := make(map[string]json.RawMessage, len(stores))
			for _, s := range stores {
				raw, err := s.MarshalState()
				if err != nil {
					return fmt.Errorf("marshal %s: %w", s.Name(), err)
				}
				out[s.Name()] = raw
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if len(args) == 1 {
				return enc.Encode(out[args[0]])
			}
			return enc.Encode(out)
		},
	}
}

func stateResetCmd(root *rootOptions) *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "reset [store]",
		Short: "Reset stores to their defaults",
		Long: `Reset stores to their defaults and save the result.

Resetting the global store keeps onboarding marked as done. With --clear every
persisted snapshot is deleted instead, so the next start is a first launch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearAll && len(args) > 0 {
				return errors.New("E300").WithDetail("--clear applies to every store and takes no store argument")
			}
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			app, closeApp, err := openApp(ctx, cfg, logging.Discard())
			if err != nil {
				return err
			}

			if clearAll {
				if err := app.ClearPersisted(ctx); err != nil {
					closeApp(ctx)
					return errors.New("E203").Wrap(err)
				}
				if err := closeApp(ctx); err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Cleared persisted state")
				return nil
			}

			stores, err := pickStores(app, args)
			if err != nil {
				closeApp(ctx)
				return err
			}
			for _, s := range stores {
				switch s.Name() {
				case appstate.GlobalStoreName:
					err = app.GlobalActions.ResetGlobalStore()
				case appstate.PreferencesStoreName:
					err = app.PreferenceActions.ResetPreferences()
				}
				if err != nil {
					closeApp(ctx)
					return fmt.Errorf("reset %s: %w", s.Name(), err)
				}
			}
			if err := closeApp(ctx); err != nil {
				return err
			}
			for _, s := range stores {
				success(cmd.OutOrStdout(), "Reset %s", s.Name())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete every persisted snapshot")
	return cmd
}
