package main

import (
	"bytes"
	"errors"
	"fmt"

	spake2 "github.com/backkem/adb-spake2"
	"github.com/spf13/cobra"
)

var errKeyMismatch = errors.New("keys don't match")

var handshakeCmd = &cobra.Command{
	Use:   "handshake",
	Short: "Run both sides of the handshake and compare the derived keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := newOptions(cmd)
		if err != nil {
			return err
		}
		clientPassword, serverPassword := passwords()
		out := cmd.OutOrStdout()

		client, msgA, err := spake2.Create(spake2.Client, clientPassword, opts)
		if err != nil {
			return err
		}
		defer client.Destroy()
		fmt.Fprintf(out, "client message (%d bytes): %s\n", len(msgA), hexBlock(msgA))

		server, msgB, err := spake2.Create(spake2.Server, serverPassword, opts)
		if err != nil {
			return err
		}
		defer server.Destroy()
		fmt.Fprintf(out, "server message (%d bytes): %s\n", len(msgB), hexBlock(msgB))

		clientKey, err := client.ProcessMessage(msgB)
		if err != nil {
			return fmt.Errorf("client: %w", err)
		}
		serverKey, err := server.ProcessMessage(msgA)
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		fmt.Fprintf(out, "client key (%d bytes): %s\n", len(clientKey), hexBlock(clientKey))
		fmt.Fprintf(out, "server key (%d bytes): %s\n", len(serverKey), hexBlock(serverKey))

		if !bytes.Equal(clientKey, serverKey) {
			return errKeyMismatch
		}
		fmt.Fprintln(out, "keys match")
		return nil
	},
}
