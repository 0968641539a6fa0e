package scan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crucial707/makerspace-access/cmd/cli/config"
)

// ==========================
// Init Scan
// ==========================
func InitScan(rootCmd *cobra.Command) {
	rootCmd.AddCommand(scanCmd())
}

// scanCmd submits a card scan on behalf of a node, mainly for testing node
// configurations without hardware.
func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <nodeID> <cardNumber> <action>",
		Short: "Submit a card scan at an access node",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.ReadToken()
			if err != nil {
				return err
			}

			cardNumber, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("card number must be an integer: %w", err)
			}

			payload := map[string]interface{}{
				"cardNumber": cardNumber,
				"action":     args[2],
			}
			body, err := json.Marshal(payload)
			if err != nil {
				return err
			}

			url := fmt.Sprintf("%s/api/accessNodes/%s/scan", config.APIURL(), args[0])
			req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			respBody, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("scan denied: status %d: %s", resp.StatusCode, string(respBody))
			}

			var out bytes.Buffer
			if err := json.Indent(&out, respBody, "", "  "); err != nil {
				fmt.Println(string(respBody))
				return nil
			}
			fmt.Println(out.String())
			return nil
		},
	}
}
