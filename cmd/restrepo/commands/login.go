package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/restrepo/internal/constants"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		scheme string
		verify string
	)

	cmd := &cobra.Command{
		Use:   "login [BASE_URL]",
		Short: "Store the API endpoint and token",
		Long: `Store the API endpoint and authentication token in the config file.

The token is prompted for without echo unless --token is given. With
--verify RESOURCE the credentials are checked by fetching one page of it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdin := cmd.InOrStdin()
			in := bufio.NewReader(stdin)
			out := cmd.OutOrStdout()

			baseURL := viper.GetString("base_url")
			if len(args) == 1 {
				baseURL = args[0]
			}

			if baseURL == "" {
				_, _ = fmt.Fprint(out, "API base URL: ")

				line, _ := in.ReadString('\n')
				baseURL = strings.TrimSpace(line)
			}

			if baseURL == "" {
				return ErrBaseURLNotSet
			}

			token := ""
			if flag := cmd.Flag("token"); flag != nil && flag.Changed {
				token = flag.Value.String()
			}

			if token == "" {
				var err error

				token, err = promptSecret(out, stdin, in, "Token: ")
				if err != nil {
					return err
				}
			}

			if token == "" {
				return ErrTokenRequired
			}

			viper.Set("base_url", baseURL)
			viper.Set("token", token)

			if scheme != "" {
				viper.Set("token_scheme", scheme)
			}

			if verify != "" {
				err := verifyLogin(cmd, verify)
				if err != nil {
					return err
				}
			}

			err := saveConfigStruct(loadConfig())
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(out, "Logged in to %s\n", baseURL)

			return nil
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", "", "Authorization scheme (Token or Bearer)")
	cmd.Flags().StringVar(&verify, "verify", "", "resource to fetch to check the credentials")

	return cmd
}

// promptSecret reads without echo when stdin is a terminal and a plain line
// from in otherwise.
func promptSecret(out io.Writer, stdin io.Reader, in *bufio.Reader, prompt string) (string, error) {
	_, _ = fmt.Fprint(out, prompt)

	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))
		_, _ = fmt.Fprintln(out)

		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}

		return strings.TrimSpace(string(secret)), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func verifyLogin(cmd *cobra.Command, resource string) error {
	s, err := newSession(resource)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), constants.ShortHTTPTimeout)
	defer cancel()

	_, _, err = s.repo.List(ctx, 1)
	if err != nil {
		return fmt.Errorf("failed to verify credentials: %w", err)
	}

	return nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Long:  "Remove the authentication token from the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set("token", "")

			err := saveConfigStruct(loadConfig())
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}
