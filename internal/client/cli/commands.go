package cli

import (
	"github.com/spf13/cobra"
)

func newReplCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.app.Interactive(cmd.Context())
		},
	}
}

func newLoginCmd(r *runner) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.app.Login(cmd.Context(), username)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "user name (prompted when empty)")
	return cmd
}

func newRegisterCmd(r *runner) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.app.Register(cmd.Context(), username)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "user name (prompted when empty)")
	return cmd
}

func newLogoutCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.app.Logout(cmd.Context())
		},
	}
}

func newForgotPasswordCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password [email]",
		Short: "Request a password reset link by e-mail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.app.ForgotPassword(cmd.Context(), argAt(args, 0))
		},
	}
}

func newResetPasswordCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password [link-or-token]",
		Short: "Set a new password using the link from the reset e-mail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.app.ResetPassword(cmd.Context(), argAt(args, 0))
		},
	}
}

func newListCmd(r *runner) *cobra.Command {
	var (
		sort string
		page int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your entries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.app.List(cmd.Context(), sort, page)
		},
	}
	cmd.Flags().StringVar(&sort, "sort", "", "order by date: asc|desc (default: server order)")
	cmd.Flags().IntVar(&page, "page", 1, "page to show")
	return cmd
}

func newShowCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry with its attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.app.Show(cmd.Context(), id)
		},
	}
}

func newNewCmd(r *runner) *cobra.Command {
	var (
		title, body string
		files       []string
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Write a new entry (interactive without flags)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := entryForm{Files: files}
			if cmd.Flags().Changed("title") {
				form.Title = &title
			}
			if cmd.Flags().Changed("body") {
				form.Body = &body
			}
			return r.app.NewEntry(cmd.Context(), form)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "entry title")
	cmd.Flags().StringVar(&body, "body", "", "entry text")
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "attach a file (repeatable)")
	return cmd
}

func newEditCmd(r *runner) *cobra.Command {
	var (
		title, body string
		add         []string
		remove      []int64
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an entry (interactive without flags)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			form := entryForm{Files: add, RemoveIDs: remove}
			if cmd.Flags().Changed("title") {
				form.Title = &title
			}
			if cmd.Flags().Changed("body") {
				form.Body = &body
			}
			return r.app.EditEntry(cmd.Context(), id, form)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&body, "body", "", "new text")
	cmd.Flags().StringArrayVar(&add, "add", nil, "attach a file (repeatable)")
	cmd.Flags().Int64SliceVar(&remove, "remove", nil, "remove an attachment by id (repeatable)")
	return cmd
}

func newDeleteCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return r.app.Delete(cmd.Context(), id)
		},
	}
}

func newDownloadCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "download <entry-id> <attachment-id>",
		Short: "Save an attachment to the download directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := parseID(args[0])
			if err != nil {
				return err
			}
			attID, err := parseID(args[1])
			if err != nil {
				return err
			}
			return r.app.Download(cmd.Context(), entryID, attID)
		},
	}
}
