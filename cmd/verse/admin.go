package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/verse-service/internal/domain"
)

// The admin commands work on the store directly, so they need no session.
// Stop the server first when the store is a bolt file; it holds the lock.

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [term]",
		Short: "List verses, optionally filtered by a search term",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) == 1 {
				term = args[0]
			}

			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				items, err := rt.admin.List(ctx, term)
				if err != nil {
					return cliError(err)
				}

				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, domain.MsgNoData)

					return nil
				}

				t := table.New().
					Border(lipgloss.NormalBorder()).
					Headers("#", "中文", "出处", "English", "Reference", "ID")
				for _, q := range items {
					t.Row(strconv.Itoa(q.Position), q.PrimaryText, q.PrimaryReference, q.SecondaryText, q.SecondaryReference, q.ID)
				}

				fmt.Fprintln(out, t.String())

				return nil
			})
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	format := formatValue("json")
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection to a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				file, err := rt.admin.Export(ctx, format.String())
				if err != nil {
					return cliError(err)
				}

				if output == "-" {
					_, err := cmd.OutOrStdout().Write(file.Data)

					return err
				}

				path := output
				if path == "" {
					path = file.Name
				}

				if err := os.WriteFile(path, file.Data, 0o600); err != nil {
					return fmt.Errorf("writing export: %w", err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d)\n", domain.MsgExported, path, file.Count)

				return nil
			})
		},
	}

	addFormatFlag(cmd.Flags(), &format, "export format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default verses_<ms>.<ext>)`)

	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var format formatValue

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: `Append verses from a JSON or YAML file ("-" reads stdin)`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, name, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			if format == "" {
				if err := format.Set(strings.TrimPrefix(filepath.Ext(name), ".")); err != nil {
					format = "json"
				}
			}

			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				n, err := rt.admin.Import(ctx, format.String(), src)
				if err != nil {
					return cliError(err)
				}

				fmt.Fprintf(cmd.OutOrStdout(), domain.MsgImportedFormat+"\n", n)

				return nil
			})
		},
	}

	addFormatFlag(cmd.Flags(), &format, "document format (default from the file extension, else json)")

	return cmd
}

func newPasswdCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd [new-password]",
		Short: "Change the admin password",
		Long:  "passwd replaces the admin password. Without an argument the password is read from the first line of stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}

				password = line
			}

			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				if err := rt.admin.ChangePassword(ctx, password); err != nil {
					return cliError(err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), domain.MsgPasswordUpdated)

				return nil
			})
		},
	}
}

func newClearCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every verse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", domain.MsgClearConfirmation)

				answer, err := readLine(cmd.InOrStdin())
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}

				if a := strings.ToLower(answer); a != "y" && a != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "已取消")

					return nil
				}
			}

			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				if err := rt.admin.ClearAll(ctx); err != nil {
					return cliError(err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), domain.MsgCleared)

				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

// withRuntime opens the runtime for one command, logging to stderr.
func withRuntime(cmd *cobra.Command, opts *rootOptions, fn func(context.Context, *runtime) error) error {
	rt, err := openRuntime(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	err = fn(rt.context(cmd.Context()), rt)
	if closeErr := rt.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

// cliError replaces domain errors with the message an admin would see.
// operatorError prints only the operator-facing message but still unwraps
// to the domain error, which decides the exit code.
type operatorError struct{ err error }

func (e operatorError) Error() string { return domain.UserMessage(e.err) }
func (e operatorError) Unwrap() error { return e.err }

func cliError(err error) error {
	if domain.IsValidation(err) || domain.IsNotFound(err) || domain.IsConflict(err) || domain.IsUnauthorized(err) {
		return operatorError{err: err}
	}

	return err
}

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, string, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), "", nil
	}

	f, err := os.Open(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, "", fmt.Errorf("opening import file: %w", err)
	}

	return f, path, nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}
