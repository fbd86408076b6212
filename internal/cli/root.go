// Package cli implements shepherdctl, the operator command line for the
// social graph engine.
package cli

import (
	"context"
	"fmt"
	"time"

	"shepherd/internal/config"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Runtime is what the operator commands act on.
type Runtime struct {
	Config *config.Config
	DB     *gorm.DB
}

// Opener supplies the runtime. Commands call it only after their flags parse.
type Opener func(ctx context.Context) (*Runtime, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"
	Open   Opener
	Now    func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for shepherdctl.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{Open: open, Now: time.Now}

	cmd := &cobra.Command{
		Use:   "shepherdctl",
		Short: "Operate the Shepherd social graph engine",
		Long:  "Operator commands for scheduled publishing, the daily reflection and schema state.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewPublishDueCommand(opts))
	cmd.AddCommand(NewReflectionCommand(opts))
	cmd.AddCommand(NewSchemaStatusCommand(opts))
	cmd.AddCommand(NewPresetsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) open(ctx context.Context) (*Runtime, error) {
	if o.Open == nil {
		return nil, fmt.Errorf("no runtime configured")
	}
	rt, err := o.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open runtime: %w", err)
	}
	return rt, nil
}

// parseAt reads an RFC 3339 timestamp or YYYY-MM-DD date, defaulting to now.
func (o *RootOptions) parseAt(value string) (time.Time, error) {
	if value == "" {
		return o.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339 or YYYY-MM-DD", value)
	}
	return t, nil
}
