package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/realitycheck-api/internal/service/auth"
	"github.com/spf13/cobra"
)

func newHashPassphraseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-passphrase [passphrase]",
		Short: "Print a bcrypt hash for auth.owner_passphrase_hash",
		Long: `Print a bcrypt hash of the owner passphrase, suitable for the
auth.owner_passphrase_hash setting. The passphrase is read from the first
line of stdin when it is not given as an argument, which keeps it out of
shell history.

Examples:
  echo 'correct horse battery staple' | realitycheck hash-passphrase`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase := ""
			if len(args) == 1 {
				passphrase = args[0]
			} else {
				var err error
				if passphrase, err = readPassphrase(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			hash, err := auth.HashPassphrase(passphrase)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}

// readPassphrase returns the first line of r without its line ending.
func readPassphrase(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
