package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proofpost-systems/proofpost/internal/cli/output"
	"github.com/proofpost-systems/proofpost/internal/models"
	"github.com/proofpost-systems/proofpost/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score <method> <status>",
	Short: "Compute the evidentiary score for a method/status pair",
	Long: `Compute the 0-100 delivery score locally, without calling the API.

Example:
  proofpostctl score email SENT
  proofpostctl score legalService RECEIPTED`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		method := models.DeliveryMethod(args[0])
		status := models.DeliveryStatus(args[1])

		if !method.Valid() {
			output.Warn("Unknown method %q scores from a base of 50", args[0])
		}

		score := scoring.DeliveryScore(method, status)
		fmt.Printf("%d\n", score)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
