package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
	"golang.org/x/sync/errgroup"

	"github.com/tartampluch/go-biorhythm/internal/config"
	"github.com/tartampluch/go-biorhythm/internal/dashboard"
	"github.com/tartampluch/go-biorhythm/internal/engine"
	"github.com/tartampluch/go-biorhythm/internal/server"
)

// newRootCmd builds the command tree around app.
func newRootCmd(app *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           config.CmdRoot,
		Short:         config.CmdRootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
	}
	root.PersistentFlags().BoolVar(&app.debug, config.FlagDebug, false, config.FlagDescDebug)
	root.PersistentFlags().StringVar(&app.configPath, config.FlagConfig, "", config.FlagDescConfig)

	root.AddCommand(
		newReportCmd(app),
		newICSCmd(app),
		newServeCmd(app),
		newKeyCmd(app),
		newVersionCmd(),
	)
	return root
}

// addBirthFlags registers the vCard sources shared by report and ics.
func addBirthFlags(cmd *cobra.Command, src *birthSource) {
	cmd.Flags().StringVar(&src.vcardPath, config.FlagVCard, "", config.FlagDescVCard)
	cmd.Flags().StringVar(&src.vcardURL, config.FlagVCardURL, "", config.FlagDescVCardU)
	cmd.Flags().StringVar(&src.vcardUser, config.FlagVCardUser, "", config.FlagDescVCardUs)
	cmd.Flags().StringVar(&src.vcardName, config.FlagVCardName, "", config.FlagDescVCardN)
	cmd.MarkFlagsMutuallyExclusive(config.FlagVCard, config.FlagVCardURL)
}

func newReportCmd(app *cli) *cobra.Command {
	var (
		src       birthSource
		lang      string
		date      string
		noInsight bool
	)

	cmd := &cobra.Command{
		Use:   config.CmdReport,
		Short: config.CmdReportShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.pinDate(date); err != nil {
				return err
			}
			birth, err := app.resolveBirth(ctx, args, src)
			if err != nil {
				return err
			}

			svc, _, err := app.services(ctx, !noInsight)
			if err != nil {
				return err
			}
			view, err := svc.Build(ctx, birth, app.lang(lang))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", config.JSONIndent)
			if err := enc.Encode(view); err != nil {
				return fmt.Errorf("%s: %w", config.ErrEncodeResp, err)
			}
			return nil
		},
	}

	addBirthFlags(cmd, &src)
	cmd.Flags().StringVar(&lang, config.FlagLang, "", config.FlagDescLang)
	cmd.Flags().StringVar(&date, config.FlagDate, "", config.FlagDescDate)
	cmd.Flags().BoolVar(&noInsight, config.FlagNoInsight, false, config.FlagDescNoIns)
	return cmd
}

func newICSCmd(app *cli) *cobra.Command {
	var (
		src       birthSource
		lang      string
		date      string
		out       string
		noInsight bool
	)

	cmd := &cobra.Command{
		Use:   config.CmdICS,
		Short: config.CmdICSShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.pinDate(date); err != nil {
				return err
			}
			birth, err := app.resolveBirth(ctx, args, src)
			if err != nil {
				return err
			}

			svc, _, err := app.services(ctx, !noInsight)
			if err != nil {
				return err
			}
			data, err := svc.Calendar(ctx, birth, app.lang(lang))
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, config.FilePermUserRW)
		},
	}

	addBirthFlags(cmd, &src)
	cmd.Flags().StringVar(&lang, config.FlagLang, "", config.FlagDescLang)
	cmd.Flags().StringVar(&date, config.FlagDate, "", config.FlagDescDate)
	cmd.Flags().StringVar(&out, config.FlagOut, "", config.FlagDescOut)
	cmd.Flags().BoolVar(&noInsight, config.FlagNoInsight, false, config.FlagDescNoIns)
	return cmd
}

func newServeCmd(app *cli) *cobra.Command {
	var (
		birth string
		port  string
		lang  string
	)

	cmd := &cobra.Command{
		Use:   config.CmdServe,
		Short: config.CmdServeShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = app.settings.Server.Port
			}
			if err := config.ValidatePort(port); err != nil {
				return err
			}
			// Fail fast rather than logging a failed refresh every tick.
			if birth != "" {
				if _, err := engine.ParseBirthDate(birth); err != nil {
					return err
				}
			}

			svc, cache, err := app.services(cmd.Context(), true)
			if err != nil {
				return err
			}
			srv := server.NewCalendarServer(port, svc)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return srv.Start(ctx) })

			if birth != "" {
				interval, _ := app.settings.RefreshInterval()
				worker := &dashboard.FeedWorker{
					Service:   svc,
					Birth:     birth,
					Lang:      app.lang(lang),
					Interval:  interval,
					Publisher: srv,
				}
				if cache != nil {
					worker.Pruner = cache
					worker.RetainDays = app.settings.Insight.CacheDays
				}
				g.Go(func() error { return worker.Run(ctx) })
			}

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&birth, config.FlagBirth, "", config.FlagDescBirth)
	cmd.Flags().StringVar(&port, config.FlagPort, "", config.FlagDescPort)
	cmd.Flags().StringVar(&lang, config.FlagLang, "", config.FlagDescLang)
	return cmd
}

func newKeyCmd(app *cli) *cobra.Command {
	var user string

	key := &cobra.Command{
		Use:   config.CmdKey,
		Short: config.CmdKeyShort,
	}
	key.PersistentFlags().StringVar(&user, config.FlagUser, config.KeyringAPIKeyUser, config.FlagDescUser)

	set := &cobra.Command{
		Use:   config.CmdKeySet,
		Short: config.CmdKeySetShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := keyring.Set(config.KeyringService, user, args[0]); err != nil {
				return fmt.Errorf("%s: %w", config.ErrKeyringSet, err)
			}
			slog.Info(config.MsgKeyStored, config.LogKeyComponent, config.CompMain, config.LogKeyUser, user)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   config.CmdKeyDel,
		Short: config.CmdKeyDelShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := keyring.Delete(config.KeyringService, user); err != nil {
				return fmt.Errorf("%s: %w", config.ErrKeyringDelete, err)
			}
			slog.Info(config.MsgKeyDeleted, config.LogKeyComponent, config.CompMain, config.LogKeyUser, user)
			return nil
		},
	}

	key.AddCommand(set, del)
	return key
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdVersion,
		Short: config.CmdVersionSh,
		Args:  cobra.NoArgs,
		// Version output needs neither logging nor settings.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}
