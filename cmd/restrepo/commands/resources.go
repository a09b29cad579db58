package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/restrepo/pkg/restrepo"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var query []string

	cmd := &cobra.Command{
		Use:   "get RESOURCE PK",
		Short: "Retrieve one entity",
		Long:  "Fetch RESOURCE/PK/ and print the deserialized entity",
		Example: `  restrepo get users 42
  restrepo get users 42 --query expand=groups`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseQuery(query)
			if err != nil {
				return err
			}

			s, err := newSession(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			model, err := s.repo.Get(cmd.Context(), args[1], restrepo.RequestContext{QueryParams: params})
			if err != nil {
				return fmt.Errorf("failed to get %s %s: %w", args[0], args[1], err)
			}

			return renderObject(cmd.OutOrStdout(), model)
		},
	}

	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter in key=value form (repeatable)")

	return cmd
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var (
		query    []string
		page     int
		pageSize int
		allPages bool
	)

	cmd := &cobra.Command{
		Use:     "list RESOURCE",
		Aliases: []string{"ls"},
		Short:   "List entities",
		Long:    "Fetch one page of RESOURCE, or every page with --all",
		Example: `  restrepo list users --page 2 --page-size 20
  restrepo list users --all --query is_active=true`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseQuery(query)
			if err != nil {
				return err
			}

			s, err := newSession(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			config := restrepo.RequestContext{QueryParams: params}
			if pageSize > 0 {
				config.Pagination = restrepo.P(restrepo.PageSizeParam, pageSize)
			}

			if allPages {
				items, err := restrepo.ListAll[restrepo.Model](cmd.Context(), s.repo, config)
				if err != nil {
					return fmt.Errorf("failed to list %s: %w", args[0], err)
				}

				return renderList(cmd.OutOrStdout(), items, nil)
			}

			items, meta, err := s.repo.List(cmd.Context(), page, config)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", args[0], err)
			}

			return renderList(cmd.OutOrStdout(), items, meta)
		},
	}

	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter in key=value form (repeatable)")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "page size (defaults to the configured page_size)")
	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")

	return cmd
}

func addPayloadFlags(cmd *cobra.Command, data, file *string) {
	cmd.Flags().StringVarP(data, "data", "d", "", "JSON object to send")
	cmd.Flags().StringVarP(file, "file", "f", "", "file holding the JSON object to send, - for stdin")
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	var data, file string

	cmd := &cobra.Command{
		Use:     "create RESOURCE",
		Short:   "Create an entity",
		Long:    "Serialize the payload, POST it to RESOURCE/ and print the created entity",
		Example: `  restrepo create users --data '{"username": "ada"}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), data, file)
			if err != nil {
				return err
			}

			s, err := newSession(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			created, err := s.repo.Create(cmd.Context(), payload)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}

			return renderObject(cmd.OutOrStdout(), created)
		},
	}

	addPayloadFlags(cmd, &data, &file)

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	var data, file string

	cmd := &cobra.Command{
		Use:     "update RESOURCE PK",
		Short:   "Partially update an entity",
		Long:    "Serialize the payload, PATCH it to RESOURCE/PK/ and print the updated entity",
		Example: `  restrepo update users 42 --data '{"is_active": false}'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), data, file)
			if err != nil {
				return err
			}

			s, err := newSession(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			updated, err := s.repo.Update(cmd.Context(), args[1], payload)
			if err != nil {
				return fmt.Errorf("failed to update %s %s: %w", args[0], args[1], err)
			}

			return renderObject(cmd.OutOrStdout(), updated)
		},
	}

	addPayloadFlags(cmd, &data, &file)

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete RESOURCE PK",
		Aliases: []string{"rm"},
		Short:   "Delete an entity",
		Long:    "Send DELETE to RESOURCE/PK/",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			err = s.repo.Delete(cmd.Context(), args[1])
			if err != nil {
				return fmt.Errorf("failed to delete %s %s: %w", args[0], args[1], err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", args[0], args[1])

			return nil
		},
	}
}
