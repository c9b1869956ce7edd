package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fritterapp/fritter-server/internal/domain"
)

func (a *app) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <username>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				return e.users.CreateUser(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users sorted by username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				return e.users.ListUsers(ctx)
			})
		},
	})

	return cmd
}

func (a *app) freetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "freets",
		Short: "Inspect and post freets",
	}

	var tag, author string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List freets, most recently modified first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				switch {
				case tag != "":
					freets, err := e.tags.FreetsForTag(ctx, tag)
					if err != nil {
						return nil, err
					}
					domain.SortNewestFirst(freets)
					return freets, nil
				case author != "":
					u, err := e.users.FindByUsername(ctx, author)
					if err != nil {
						return nil, err
					}
					return e.freets.ListByAuthor(ctx, u.ID)
				default:
					return e.freets.ListFreets(ctx)
				}
			})
		},
	}
	listCmd.Flags().StringVar(&tag, "tag", "", "Only freets carrying this tag")
	listCmd.Flags().StringVar(&author, "author", "", "Only freets by this username")
	listCmd.MarkFlagsMutuallyExclusive("tag", "author")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "create <username> <content>",
		Short: "Post a freet as a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				u, err := e.users.FindByUsername(ctx, args[0])
				if err != nil {
					return nil, err
				}
				return e.freets.CreateFreet(ctx, u.ID, args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <freet-id>",
		Short: "Delete a freet and its tag and flag references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				if err := e.freets.DeleteFreet(ctx, args[0]); err != nil {
					return nil, err
				}
				return map[string]string{"deleted": args[0]}, nil
			})
		},
	})

	return cmd
}

func (a *app) tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tags",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tags sorted by content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				return e.tags.ListTags(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <content>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				return e.tags.CreateTag(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "attach <freet-id> <content>",
		Short: "Label a freet with a tag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				return e.tags.Attach(ctx, args[0], args[1])
			})
		},
	})

	return cmd
}

func (a *app) flagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Inspect flags",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list [freet-id]",
		Short: "List active flags, optionally only a freet's",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				if len(args) == 0 {
					return e.flags.ListFlags(ctx)
				}
				return e.flags.FlagsForFreet(ctx, args[0])
			})
		},
	})

	return cmd
}

func (a *app) feedsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Inspect and evaluate feeds",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <owner-username>",
		Short: "Create an empty feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				owner, err := e.users.FindByUsername(ctx, args[0])
				if err != nil {
					return nil, err
				}
				return e.feeds.Create(ctx, owner.ID)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				return e.feeds.ListFeeds(ctx)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "select-user <feed-id> <username>",
		Short: "Add an author to a feed's author filter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				u, err := e.users.FindByUsername(ctx, args[1])
				if err != nil {
					return nil, err
				}
				return e.feeds.AddUser(ctx, args[0], u.ID)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "select-tag <feed-id> <content>",
		Short: "Add a tag to a feed's tag filter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				return e.feeds.AddTagFilter(ctx, args[0], args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "eval <feed-id>",
		Short: "List the freets a feed selects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, e *engine) (any, error) {
				return e.feeds.Evaluate(ctx, args[0])
			})
		},
	})

	return cmd
}
