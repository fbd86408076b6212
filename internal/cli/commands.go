package cli

import (
	"io"
	"strings"
	"unicode/utf8"

	"shepherd/internal/database"
	"shepherd/internal/featureflags"
	"shepherd/internal/notifications"
	"shepherd/internal/repository"
	"shepherd/internal/seed"
	"shepherd/internal/service"

	"github.com/spf13/cobra"
)

// NewPublishDueCommand creates the publish-due command, the hook an external
// scheduler runs to release scheduled posts.
func NewPublishDueCommand(opts *RootOptions) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "publish-due",
		Short: "Publish every scheduled post that is due and notify followers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.parseAt(at)
			if err != nil {
				return err
			}
			rt, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}

			limits := rt.Config.Engine()
			followRepo := repository.NewFollowRepository(rt.DB)
			engine := notifications.NewEngine(repository.NewNotificationRepository(rt.DB), followRepo, limits)
			posts := service.NewPostService(repository.NewPostRepository(rt.DB), repository.NewUserRepository(rt.DB), engine)

			report, err := posts.PublishDuePosts(cmd.Context(), now)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), opts.Format, report, func(w io.Writer) error {
				printf(w, "published %d scheduled posts, %d notifications\n", report.Claimed, report.Notified)
				for _, id := range report.PostIDs {
					printf(w, "  post %d\n", id)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "treat this RFC 3339 time as now")
	return cmd
}

// NewReflectionCommand creates the reflection command.
func NewReflectionCommand(opts *RootOptions) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "reflection",
		Short: "Print the daily reflection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := opts.parseAt(date)
			if err != nil {
				return err
			}
			rt, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}

			feed := service.NewFeedService(repository.NewPostRepository(rt.DB),
				featureflags.NewManager(rt.Config.FeatureFlags), rt.Config.Engine())
			r, err := feed.DailyReflection(cmd.Context(), at)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), opts.Format, r, func(w io.Writer) error {
				printf(w, "%s: %s\n", r.Date, r.Message)
				if r.Post != nil {
					printf(w, "  #%d by %s [%s]\n  %s\n", r.Post.ID, r.Post.Leader.Name, r.Post.Tag, excerpt(r.Post.ContentText, 120))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to resolve (YYYY-MM-DD, default today UTC)")
	return cmd
}

// NewSchemaStatusCommand creates the schema-status command.
func NewSchemaStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema-status",
		Short: "Show the schema mode and pending SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			status, err := database.GetSchemaStatus(cmd.Context(), rt.DB, rt.Config)
			if err != nil {
				return err
			}

			pending := make([]string, 0, len(status.Pending))
			for _, m := range status.Pending {
				pending = append(pending, m.String())
			}
			out := struct {
				*database.SchemaStatus
				PendingNames []string `json:"pending"`
			}{status, pending}
			return writeResult(cmd.OutOrStdout(), opts.Format, out, func(w io.Writer) error {
				printf(w, "mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
					status.Mode, status.Environment, status.SQL, status.Auto,
					len(status.Applied), len(pending))
				for _, p := range pending {
					printf(w, "  pending %s\n", p)
				}
				return nil
			})
		},
	}
}

// NewPresetsCommand lists the embedded seed presets. It needs no database.
func NewPresetsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the embedded seed presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := seed.PresetNames()
			return writeResult(cmd.OutOrStdout(), opts.Format, names, func(w io.Writer) error {
				printf(w, "%s\n", strings.Join(names, "\n"))
				return nil
			})
		},
	}
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
