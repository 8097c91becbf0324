package cli

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proofpost-systems/proofpost/internal/signer"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a receipt signing key",
	Long:  "Generate a P-256 private key as a JWK for the signing.key_json config setting",
	RunE: func(cmd *cobra.Command, args []string) error {
		priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		jwk, err := signer.ExportJWK(priv)
		if err != nil {
			return err
		}
		fmt.Println(jwk)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
