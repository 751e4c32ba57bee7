package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/camellia/internal/model"
)

// UserOptions holds flags shared by the user subcommands.
type UserOptions struct {
	*RootOptions
	Username string
	Password string
	Role     string
	As       string
}

// NewUsersCommand creates the users command group.
func NewUsersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and manage accounts",
	}

	cmd.AddCommand(newUsersListCommand(rootOpts))
	cmd.AddCommand(newUsersAddCommand(rootOpts))
	cmd.AddCommand(newUsersUpdateCommand(rootOpts))
	cmd.AddCommand(newUsersRemoveCommand(rootOpts))
	return cmd
}

func newUsersListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts and their roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(f *OutputFormatter, s *session) error {
				users := s.store.Users()
				if f.JSON() {
					views := make([]userView, 0, len(users))
					for _, u := range users {
						views = append(views, userView{Username: u.Username, Role: u.Role})
					}
					return f.Success(views)
				}
				for _, u := range users {
					f.Textf("%-16s %s", u.Username, u.Role)
				}
				return nil
			})
		},
	}
}

func newUsersAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UserOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account",
		Long: `Create an account.

Example:
  camellia users add siti --password rahasia --role SELLER`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(f *OutputFormatter, s *session) error {
				role, err := model.ParseRole(opts.Role)
				if err != nil {
					return usageError(err.Error())
				}
				u := &model.User{Username: args[0], Password: opts.Password, Role: role}
				if err := s.store.AddUser(u); err != nil {
					return err
				}
				if f.JSON() {
					return f.Success(userView{Username: u.Username, Role: u.Role})
				}
				f.Textf("✓ Added %s (%s)", u.Username, u.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Password, "password", "", "password (required)")
	cmd.Flags().StringVar(&opts.Role, "role", string(model.RoleBuyer), "ADMIN|SELLER|BUYER")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUsersUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UserOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <username>",
		Short: "Change an account's name, password or role",
		Long: `Change an account. Only the flags given are applied.

Example:
  camellia users update seller --username kasir --password baru`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(f *OutputFormatter, s *session) error {
				current, ok := s.store.User(args[0])
				if !ok {
					return notFoundError("user %s not found", args[0])
				}

				upd := *current
				if cmd.Flags().Changed("username") {
					upd.Username = opts.Username
				}
				if cmd.Flags().Changed("password") {
					upd.Password = opts.Password
				}
				if cmd.Flags().Changed("role") {
					role, err := model.ParseRole(opts.Role)
					if err != nil {
						return usageError(err.Error())
					}
					upd.Role = role
				}

				if err := s.store.UpdateUser(args[0], upd); err != nil {
					return err
				}
				if f.JSON() {
					return f.Success(userView{Username: upd.Username, Role: upd.Role})
				}
				f.Textf("✓ Updated %s", upd.Username)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "", "new username")
	cmd.Flags().StringVar(&opts.Password, "password", "", "new password")
	cmd.Flags().StringVar(&opts.Role, "role", "", "new role (ADMIN|SELLER|BUYER)")
	return cmd
}

func newUsersRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UserOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remove <username>",
		Short: "Delete an account",
		Long: `Delete an account. Orders placed by the account are kept.

--as names the administrator performing the deletion; an account cannot
delete itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(f *OutputFormatter, s *session) error {
				if opts.As != "" && opts.As == args[0] {
					return &ExitError{Code: ExitFailure, ErrCode: ErrCodeForbidden, Message: "cannot delete yourself"}
				}
				if err := s.store.RemoveUser(args[0]); err != nil {
					return err
				}
				if f.JSON() {
					return f.Success(map[string]string{"removed": args[0]})
				}
				f.Textf("✓ Removed %s", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "username of the administrator performing the deletion")
	return cmd
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UserOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Check credentials and show the account's role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts.RootOptions, cmd, func(f *OutputFormatter, s *session) error {
				u, err := authenticate(s, args[0], opts.Password)
				if err != nil {
					return err
				}
				if f.JSON() {
					return f.Success(userView{Username: u.Username, Role: u.Role})
				}
				f.Textf("Welcome, %s (%s)", u.Username, u.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.Password, "password", "", "password")
	return cmd
}

// authenticate returns the matching user or an authentication error that
// does not reveal which part was wrong.
func authenticate(s *session, username, password string) (*model.User, error) {
	u, ok := s.store.Authenticate(username, password)
	if !ok {
		s.log.Debug("login rejected", "username", username)
		return nil, &ExitError{Code: ExitFailure, ErrCode: ErrCodeAuth, Message: "invalid username or password"}
	}
	return u, nil
}
