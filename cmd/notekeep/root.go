package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/notekeep"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	dir        string
	adapter    string
	codec      string
	configPath string
	verbose    bool

	strictCodec bool
	directWrite bool
	eventBuffer int

	logger *slog.Logger
}

// applyConfig copies file values into every flag the user did not set.
func (g *globalFlags) applyConfig(cmd *cobra.Command, c *fileConfig) {
	flags := cmd.Flags()
	if !flags.Changed("dir") {
		g.dir = c.Dir
	}
	if !flags.Changed("adapter") {
		g.adapter = c.Adapter
	}
	if !flags.Changed("codec") {
		g.codec = c.Codec
	}
	g.strictCodec = c.StrictCodec
	g.directWrite = c.DirectWrite
	g.eventBuffer = c.EventBuffer
}

// open builds a Service from the global flags.
// mustExist is honoured by the fs adapter only.
func (g *globalFlags) open(mustExist bool, extra ...notekeep.Option) (*notekeep.Service, error) {
	opts := []notekeep.Option{
		notekeep.WithAdapter(g.adapter),
		notekeep.WithCodec(g.codec),
		notekeep.WithLogger(g.logger),
		notekeep.WithMustExist(mustExist),
		notekeep.WithSQLDebug(g.verbose),
		notekeep.WithStrict(g.strictCodec),
		notekeep.WithDirectWrite(g.directWrite),
		notekeep.WithEventBuffer(g.eventBuffer),
	}
	return notekeep.New(g.dir, append(opts, extra...)...)
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "notekeep",
		Short: "A small keyed store for notes",
		Long: `notekeep stores notes (workspace, title, body) under random keys.
Notes live one file per key in a directory, in SQLite, or in memory.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if g.verbose {
				level = slog.LevelDebug
			}
			g.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			if g.configPath == "" {
				return nil
			}
			c, err := loadConfig(g.configPath)
			if err != nil {
				return err
			}
			g.applyConfig(cmd, c)
			g.logger.Debug("config loaded", "path", g.configPath, "dir", g.dir, "adapter", g.adapter)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&g.dir, "dir", "d", "./store", "Store location (directory, or database file for sqlite)")
	flags.StringVar(&g.adapter, "adapter", notekeep.AdapterFS, "Storage adapter: fs, memory or sqlite")
	flags.StringVar(&g.codec, "codec", "json", "File format for the fs adapter: json or yaml")
	flags.StringVarP(&g.configPath, "config", "c", "", "Optional YAML config file")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newInitCmd(g),
		newWriteCmd(g),
		newReadCmd(g),
		newListCmd(g),
		newDeleteCmd(g),
		newWatchCmd(g),
	)
	return rootCmd
}
