package main

import (
	"fmt"

	spake2 "github.com/backkem/adb-spake2"
	"github.com/backkem/adb-spake2/pairingauth"
	"github.com/spf13/cobra"
)

var payload string

func init() {
	sealCmd.Flags().StringVar(&payload, "payload", "adb peer info", "public key data the client sends to the server as PeerInfo")
}

var sealCmd = &cobra.Command{
	Use:   "seal",
	Short: "Pair both sides and pass a PeerInfo through the pairing cipher",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := newOptions(cmd)
		if err != nil {
			return err
		}
		clientPassword, serverPassword := passwords()
		out := cmd.OutOrStdout()

		client, err := pairingauth.New(spake2.Client, clientPassword, opts)
		if err != nil {
			return err
		}
		defer client.Close()
		server, err := pairingauth.New(spake2.Server, serverPassword, opts)
		if err != nil {
			return err
		}
		defer server.Close()

		if err := client.InitCipher(server.Msg()); err != nil {
			return fmt.Errorf("client: %w", err)
		}
		if err := server.InitCipher(client.Msg()); err != nil {
			return fmt.Errorf("server: %w", err)
		}

		peerInfo, err := pairingauth.PeerInfo{
			Type: pairingauth.PeerInfoRSAPublicKey,
			Data: []byte(payload),
		}.Marshal()
		if err != nil {
			return err
		}
		ciphertext, err := client.Encrypt(peerInfo)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "ciphertext (%d bytes): %s...\n", len(ciphertext), hexBlock(ciphertext[:hexRow]))

		plaintext, err := server.Decrypt(ciphertext)
		if err != nil {
			return err
		}
		info, err := pairingauth.ParsePeerInfo(plaintext)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "server received: %q\n", info.Data)
		return nil
	},
}
