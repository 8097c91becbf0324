package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/proofpost-systems/proofpost/internal/cli/output"
	"github.com/proofpost-systems/proofpost/internal/models"
	"github.com/proofpost-systems/proofpost/internal/signer"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [receipt-id]",
	Short: "Verify a signed receipt",
	Long: `Verify a receipt's signature.

With a receipt ID, verification runs against the API. With --file,
verification runs entirely offline: receipts embed their signature,
public key, and signed bytes, so no server is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		if file != "" {
			return verifyOffline(cmd, file)
		}
		if len(args) != 1 {
			return fmt.Errorf("provide a receipt ID or --file")
		}

		client := clientFromFlags(cmd)
		var result map[string]interface{}
		if err := client.do("POST", "/api/v1/receipts/"+args[0]+"/verify", nil, &result); err != nil {
			return err
		}

		if verified, _ := result["verified"].(bool); verified {
			output.Success("Receipt %s verified", args[0])
		} else {
			output.Error("Receipt %s NOT verified", args[0])
		}
		format, _ := cmd.Flags().GetString("output")
		return output.Render(format, result)
	},
}

func verifyOffline(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read receipt file: %w", err)
	}

	var rec models.Receipt
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("parse receipt file: %w", err)
	}
	if rec.Signature == nil {
		return fmt.Errorf("receipt %s carries no signature block", rec.ID)
	}

	payload, err := base64.StdEncoding.DecodeString(rec.Signature.SignedPayload)
	if err != nil {
		return fmt.Errorf("decode signed payload: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(rec.Signature.Value)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	pubDER, err := base64.StdEncoding.DecodeString(rec.Signature.PublicKey)
	if err != nil {
		return fmt.Errorf("decode public key: %w", err)
	}

	ok, err := signer.Verify(payload, sig, pubDER)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if ok {
		output.Success("Receipt %s verified offline (%s)", rec.ID, rec.Signature.Algorithm)
	} else {
		output.Error("Receipt %s NOT verified: signature mismatch", rec.ID)
	}
	if rec.Anchor != nil {
		output.Info("Anchored to beacon round %d", rec.Anchor.Round)
	} else {
		output.Warn("Receipt is not anchored to a randomness beacon")
	}
	return nil
}

func init() {
	verifyCmd.Flags().String("file", "", "verify an exported receipt JSON file offline")
	rootCmd.AddCommand(verifyCmd)
}
