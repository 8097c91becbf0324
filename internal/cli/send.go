package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proofpost-systems/proofpost/internal/cli/output"
	"github.com/proofpost-systems/proofpost/internal/models"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a document for tracked delivery",
	Long:  "Create a delivery and dispatch it through the chosen channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		documentRef, _ := cmd.Flags().GetString("document")
		to, _ := cmd.Flags().GetString("to")
		method, _ := cmd.Flags().GetString("method")
		address, _ := cmd.Flags().GetString("address")
		sender, _ := cmd.Flags().GetString("sender")

		if documentRef == "" {
			return fmt.Errorf("--document is required")
		}
		if !models.DeliveryMethod(method).Valid() {
			return fmt.Errorf("unknown delivery method %q", method)
		}

		client := clientFromFlags(cmd)
		var delivery models.Delivery
		err := client.do("POST", "/api/v1/deliveries", models.SendRequest{
			DocumentRef: documentRef,
			To:          to,
			Method:      models.DeliveryMethod(method),
			Address:     address,
			Sender:      sender,
		}, &delivery)
		if err != nil {
			return err
		}

		output.Success("Delivery %s created (%s, score %d)", delivery.ID, delivery.Status, delivery.Proof.Score)
		format, _ := cmd.Flags().GetString("output")
		return output.Render(format, delivery)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <delivery-id>",
	Short: "Show a delivery's current state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := clientFromFlags(cmd)
		var delivery models.Delivery
		if err := client.do("GET", "/api/v1/deliveries/"+args[0], nil, &delivery); err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("output")
		return output.Render(format, delivery)
	},
}

func init() {
	sendCmd.Flags().String("document", "", "document reference to deliver")
	sendCmd.Flags().String("to", "", "recipient name")
	sendCmd.Flags().String("method", "email", "delivery method")
	sendCmd.Flags().String("address", "", "delivery address for the chosen method")
	sendCmd.Flags().String("sender", "", "sender identity")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(statusCmd)
}
