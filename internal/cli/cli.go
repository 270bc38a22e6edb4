// Package cli is the non-interactive front end: one process per intent.
// Every command builds the application state from the persistent store, runs,
// and tears it down, so concurrent shells behave like independent writers.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"minifeed/internal/app"
	"minifeed/internal/config"
	"minifeed/internal/domain"
	"minifeed/internal/share"
	"minifeed/internal/ui"
)

var (
	application *app.App
	logger      *slog.Logger

	signupName string
	imagePath  string
	searchTerm string
	editedText string
)

var rootCmd = &cobra.Command{
	Use:   "minifeed",
	Short: "A local-first social feed in your terminal",
	Long: `minifeed keeps a social feed in a local store: publish posts, like,
comment, search and share, with a light/dark theme.

Run without arguments to open the interactive feed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		application, err = app.New(cmd.Context(), cfg, logger)

		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if application == nil {
			return
		}

		if err := application.Close(); err != nil {
			logger.Error("Failed to close store",
				"error", err)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return ui.Run(cmd.Context(), application, logger)
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := application.Session().SignUp(cmd.Context(), signupName, args[0])
		if err != nil {
			return friendly(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s\n", user.Name)

		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in; the user name is the email's local part",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := application.Session().LogIn(cmd.Context(), args[0])
		if err != nil {
			return friendly(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s!\n", user.Name)

		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out (posts are kept)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return application.Session().LogOut(cmd.Context())
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user := application.Session().Current()
		if user == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")

			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Name, user.Email)

		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post <text>",
	Short: "Publish a post, optionally with an image attachment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser()
		if err != nil {
			return err
		}

		var imageData string
		if imagePath != "" {
			imageData, err = EncodeImageFile(imagePath)
			if err != nil {
				return err
			}
		}

		post, err := application.Posts().Create(cmd.Context(), user.Name, args[0], imageData)
		if err != nil {
			return friendly(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Published post #%d\n", post.ID)

		return nil
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print the feed, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printFeed(cmd, searchTerm)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Print posts whose text or author matches the term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printFeed(cmd, args[0])
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Like a post, or take the like back",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser()
		if err != nil {
			return err
		}

		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}

		if err := application.Posts().ToggleLike(cmd.Context(), id, user.Name); err != nil {
			return friendly(err)
		}

		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <post-id> <text>",
	Short: "Comment on a post",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser()
		if err != nil {
			return err
		}

		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}

		if err := application.Posts().AddComment(cmd.Context(), id, user.Name, args[1]); err != nil {
			return friendly(err)
		}

		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <post-id>",
	Short: "Edit your post's text",
	Long: `Edit your post's text. Omitting --text leaves the post unchanged;
passing an empty --text is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser()
		if err != nil {
			return err
		}

		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}

		// An absent flag is a cancelled edit, not an empty one.
		var newText *string
		if cmd.Flags().Changed("text") {
			newText = &editedText
		}

		if err := application.Posts().EditText(cmd.Context(), id, newText, user.Name); err != nil {
			return friendly(err)
		}

		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete your post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser()
		if err != nil {
			return err
		}

		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}

		if err := application.Posts().Delete(cmd.Context(), id, user.Name); err != nil {
			return friendly(err)
		}

		return nil
	},
}

var shareCmd = &cobra.Command{
	Use:   "share <post-id>",
	Short: "Copy a post's text to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parsePostID(args[0])
		if err != nil {
			return err
		}

		views, err := application.Feed(cmd.Context(), "")
		if err != nil {
			return err
		}

		for i := range views {
			if views[i].ID != id {
				continue
			}

			sharer := &share.Sharer{Fallback: cmd.OutOrStdout()}
			if err := sharer.Share("minifeed", views[i].Text, application.Config().ShareURL); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Post text copied")

			return nil
		}

		return fmt.Errorf("post %d not found", id)
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Toggle between light and dark theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dark, err := application.ToggleDarkMode(cmd.Context())
		if err != nil {
			return err
		}

		name := "light"
		if dark {
			name = "dark"
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", name)

		return nil
	},
}

func printFeed(cmd *cobra.Command, filter string) error {
	views, err := application.Feed(cmd.Context(), filter)
	if err != nil {
		return err
	}

	styles := ui.StylesFor(application.DarkMode())
	fmt.Fprint(cmd.OutOrStdout(), ui.FormatFeed(views, styles, 0, -1))

	return nil
}

func requireUser() (*domain.User, error) {
	user := application.Session().Current()
	if user == nil {
		return nil, errors.New("not logged in, run: minifeed login <email>")
	}

	return user, nil
}

func parsePostID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}

	return id, nil
}

// friendly maps the domain error kinds to messages phrased for the user.
func friendly(err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyText):
		return errors.New("text cannot be empty")
	case errors.Is(err, domain.ErrEmptyEmail):
		return errors.New("email is required")
	case errors.Is(err, domain.ErrNotAuthor):
		return errors.New("only the author can do that")
	default:
		return err
	}
}

func init() {
	signupCmd.Flags().StringVar(&signupName, "name", "", "display name (defaults to the email's local part)")
	postCmd.Flags().StringVar(&imagePath, "image", "", "path to an image to attach")
	feedCmd.Flags().StringVar(&searchTerm, "search", "", "filter posts by term")
	editCmd.Flags().StringVar(&editedText, "text", "", "replacement text")

	rootCmd.AddCommand(
		signupCmd,
		loginCmd,
		logoutCmd,
		whoamiCmd,
		postCmd,
		feedCmd,
		searchCmd,
		likeCmd,
		commentCmd,
		editCmd,
		deleteCmd,
		shareCmd,
		themeCmd,
	)
}

// Execute runs the command tree. The context carries process shutdown.
func Execute(ctx context.Context, log *slog.Logger) error {
	logger = log

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	return rootCmd.ExecuteContext(ctx)
}
