package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"extranet_rates/config"
	"extranet_rates/session"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the extranet password in the OS keyring",
	}
	cmd.AddCommand(newKeysSetCmd())
	cmd.AddCommand(newKeysDeleteCmd())
	return cmd
}

func usernameOrConfig(username string) (string, error) {
	if username != "" {
		return username, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	if cfg.Session.Username == "" {
		return "", fmt.Errorf("pass --username or set BOOKING_USERNAME")
	}
	return cfg.Session.Username, nil
}

func newKeysSetCmd() *cobra.Command {
	var username string

	c := &cobra.Command{
		Use:   "set",
		Short: "Store the extranet password (read from stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := usernameOrConfig(username)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Password for %s: ", user)
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				return fmt.Errorf("empty password")
			}

			if err := session.StorePassword(user, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nstored password for %s in keyring service %q\n", user, session.KeyringService)
			return nil
		},
	}

	c.Flags().StringVar(&username, "username", "", "extranet login (defaults to BOOKING_USERNAME)")
	return c
}

func newKeysDeleteCmd() *cobra.Command {
	var username string

	c := &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored extranet password",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := usernameOrConfig(username)
			if err != nil {
				return err
			}
			if err := session.DeletePassword(user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed password for %s\n", user)
			return nil
		},
	}

	c.Flags().StringVar(&username, "username", "", "extranet login (defaults to BOOKING_USERNAME)")
	return c
}
