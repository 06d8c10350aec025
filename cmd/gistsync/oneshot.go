package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/dispatcher"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/storage"
)

type oneShotOptions struct {
	token   string
	gistID  string
	setName string
	file    string
	json    bool
}

var errSyncFailed = errors.New("sync failed")

func newFetchCmd() *cobra.Command {
	var opts oneShotOptions
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Restore the project database from the gist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runFetch(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}
	addOneShotFlags(cmd, &opts)
	cmd.Flags().StringVarP(&opts.file, "out", "o", "", "write the restored database to this file instead of stdout")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var opts oneShotOptions
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Back up a project database file to the gist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runUpdate(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}
	addOneShotFlags(cmd, &opts)
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "project database file to back up")
	cmd.MarkFlagRequired("file")
	return cmd
}

func addOneShotFlags(cmd *cobra.Command, opts *oneShotOptions) {
	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub access token (env: GISTSYNC_GIST_TOKEN)")
	cmd.Flags().StringVar(&opts.gistID, "gist-id", "", "gist ID (env: GISTSYNC_GIST_ID)")
	cmd.Flags().StringVar(&opts.setName, "set", "", "backup set name (env: GISTSYNC_GIST_SET_NAME)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the agent response as JSON")
}

func init() {
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newUpdateCmd())
}

// buildRequest seeds a request from config, with flags taking priority.
func buildRequest(cfg *Config, opts oneShotOptions, action dispatcher.Action) *dispatcher.Request {
	req := &dispatcher.Request{Action: action}
	for _, f := range []struct {
		dst        *dispatcher.Optional
		flag, conf string
	}{
		{&req.Token, opts.token, cfg.Gist.Token},
		{&req.GistID, opts.gistID, cfg.Gist.ID},
		{&req.SetName, opts.setName, cfg.Gist.SetName},
	} {
		switch {
		case f.flag != "":
			*f.dst = dispatcher.Some(f.flag)
		case f.conf != "":
			*f.dst = dispatcher.Some(f.conf)
		}
	}
	return req
}

func runFetch(ctx context.Context, cfg *Config, opts oneShotOptions, out io.Writer) error {
	d := newDispatcher(cfg, newLogger(cfg))
	resp, _ := d.Dispatch(ctx, buildRequest(cfg, opts, dispatcher.ActionFetch))

	if resp.Type != dispatcher.TypeSuccess {
		return report(out, resp, opts.json)
	}

	if opts.file == "" {
		if opts.json {
			return printJSON(out, resp)
		}
		return printJSON(out, resp.DB)
	}

	store, name, err := storage.OpenFile(opts.file)
	if err != nil {
		return err
	}
	if err := storage.WriteDB(ctx, store, name, resp.DB); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.file, err)
	}
	printMessage(out, fmt.Sprintf("Restored set [%s] to %s", d.State().SetName, opts.file))
	return nil
}

func runUpdate(ctx context.Context, cfg *Config, opts oneShotOptions, out io.Writer) error {
	store, name, err := storage.OpenFile(opts.file)
	if err != nil {
		return err
	}
	db, err := storage.ReadDB(ctx, store, name)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", opts.file, err)
	}

	d := newDispatcher(cfg, newLogger(cfg))
	req := buildRequest(cfg, opts, dispatcher.ActionUpdate)
	req.Value = db

	resp, _ := d.Dispatch(ctx, req)
	if err := report(out, resp, opts.json); err != nil {
		return err
	}
	if resp.GistID != "" && !opts.json {
		printMessage(out, fmt.Sprintf("Set gist.id to %s (or GISTSYNC_GIST_ID) to keep backing up to this gist.", resp.GistID))
	}
	return nil
}

// report prints resp and turns a failed response into an error.
func report(out io.Writer, resp *dispatcher.Response, asJSON bool) error {
	if asJSON {
		if err := printJSON(out, resp); err != nil {
			return err
		}
	} else {
		printMessage(out, plain(resp.Message))
	}
	if resp.Type != dispatcher.TypeSuccess {
		return fmt.Errorf("%w: %s", errSyncFailed, resp.Type)
	}
	return nil
}
