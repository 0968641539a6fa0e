package cards

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/crucial707/makerspace-access/cmd/cli/config"
	"github.com/crucial707/makerspace-access/cmd/cli/output"
)

// ==========================
// Init Cards
// ==========================
func InitCards(rootCmd *cobra.Command) {
	cardsCmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage access cards",
	}

	cardsCmd.AddCommand(listCardsCmd())
	rootCmd.AddCommand(cardsCmd)
}

// ==========================
// LIST
// ==========================
func listCardsCmd() *cobra.Command {
	var status string
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List access cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.ReadToken()
			if err != nil {
				return err
			}

			url := fmt.Sprintf("%s/api/accessCards?page=%d", config.APIURL(), page)
			if status != "" {
				url += "&status=" + status
			}

			req, err := http.NewRequest("GET", url, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("API error: status %d", resp.StatusCode)
			}

			var out struct {
				Items []struct {
					ID           string `json:"id"`
					CardNumber   int    `json:"cardNumber"`
					FacilityCode int    `json:"facilityCode"`
					CardType     int    `json:"cardType"`
					Status       string `json:"status"`
				} `json:"items"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(out.Items))
			for _, c := range out.Items {
				rows = append(rows, []interface{}{c.ID, c.CardNumber, c.FacilityCode, c.CardType, c.Status})
			}
			output.RenderTable([]string{"ID", "Card Number", "Facility Code", "Card Type", "Status"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")

	return cmd
}
