package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// notificationsCmd represents the 'notifications' command.
var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Fetch and print the account's notification feed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, _ := cmd.Flags().GetInt("pages")

		ctx := context.Background()
		if err := ensureAuthorized(ctx); err != nil {
			return err
		}
		// notifications referencing unknown communities are dropped, so the
		// community cache comes first
		if appClient.GetCommunities(ctx) == nil {
			return fmt.Errorf("failed to fetch communities")
		}

		console.StartProgress("Fetching notifications...")
		fresh := appClient.GetNotifications(ctx, pages)
		console.StopProgress()

		for _, n := range fresh {
			kind := string(n.Kind)
			if kind == "" {
				kind = "?"
			}
			fmt.Printf("%s\t%s\t%s\t%s\n", n.NotifiedAt.Format(time.DateTime), kind, n.CommunityName, n.Message)
		}
		console.Success("%d notification(s)", len(fresh))
		return nil
	},
}

func init() {
	notificationsCmd.Flags().Int("pages", 1, "Feed pages to fetch (0 fetches the entire feed)")
}
