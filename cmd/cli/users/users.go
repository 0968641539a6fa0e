package users

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/crucial707/makerspace-access/cmd/cli/config"
	"github.com/crucial707/makerspace-access/cmd/cli/output"
)

// ==========================
// Init Users
// ==========================
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	usersCmd.AddCommand(listUsersCmd())
	rootCmd.AddCommand(usersCmd)
}

// ==========================
// LIST
// ==========================
func listUsersCmd() *cobra.Command {
	var role, status string
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.ReadToken()
			if err != nil {
				return err
			}

			url := fmt.Sprintf("%s/api/users?page=%d", config.APIURL(), page)
			if role != "" {
				url += "&role=" + role
			}
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
					ID                string `json:"id"`
					Username          string `json:"username"`
					FirstName         string `json:"firstName"`
					LastName          string `json:"lastName"`
					Role              string `json:"role"`
					Status            string `json:"status"`
					EmergeAccessLevel string `json:"eMergeAccessLevel"`
				} `json:"items"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(out.Items))
			for _, u := range out.Items {
				rows = append(rows, []interface{}{u.ID, u.Username, u.FirstName, u.LastName, u.Role, u.Status, u.EmergeAccessLevel})
			}
			output.RenderTable([]string{"ID", "Username", "First Name", "Last Name", "Role", "Status", "Access Level"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Filter by role")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")

	return cmd
}
