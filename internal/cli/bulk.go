package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/proofpost-systems/proofpost/internal/cli/output"
	"github.com/proofpost-systems/proofpost/internal/models"
)

// bulkFile is the YAML shape accepted by `proofpostctl bulk`.
type bulkFile struct {
	DocumentRef string `yaml:"document"`
	Recipients  []struct {
		To      string `yaml:"to"`
		Method  string `yaml:"method"`
		Address string `yaml:"address"`
	} `yaml:"recipients"`
}

var bulkCmd = &cobra.Command{
	Use:   "bulk <recipients.yaml>",
	Short: "Send one document to many recipients",
	Long: `Fan a document out to every recipient listed in a YAML file:

  document: contract-2026-041
  recipients:
    - to: Alice
      method: email
      address: alice@example.com
    - to: Bob
      method: sms
      address: "+15550100"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read recipients file: %w", err)
		}

		var file bulkFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parse recipients file: %w", err)
		}
		if file.DocumentRef == "" {
			return fmt.Errorf("recipients file is missing a document reference")
		}
		if len(file.Recipients) == 0 {
			return fmt.Errorf("recipients file lists no recipients")
		}

		req := models.BulkSendRequest{DocumentRef: file.DocumentRef}
		for _, r := range file.Recipients {
			req.Recipients = append(req.Recipients, models.Recipient{
				To:      r.To,
				Method:  models.DeliveryMethod(r.Method),
				Address: r.Address,
			})
		}

		client := clientFromFlags(cmd)
		var batch models.BulkBatch
		if err := client.do("POST", "/api/v1/deliveries/bulk", req, &batch); err != nil {
			return err
		}

		if batch.Failed > 0 {
			output.Warn("Batch %s: %d sent, %d failed", batch.ID, batch.Sent, batch.Failed)
		} else {
			output.Success("Batch %s: all %d deliveries sent", batch.ID, batch.Sent)
		}
		format, _ := cmd.Flags().GetString("output")
		return output.Render(format, batch)
	},
}

func init() {
	rootCmd.AddCommand(bulkCmd)
}
