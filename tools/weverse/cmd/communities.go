package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// communitiesCmd represents the 'communities' command.
var communitiesCmd = &cobra.Command{
	Use:   "communities",
	Short: "List the communities visible to the account.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := ensureAuthorized(ctx); err != nil {
			return err
		}

		communities := appClient.GetCommunities(ctx)
		if communities == nil {
			return fmt.Errorf("failed to fetch communities")
		}
		for _, community := range communities {
			fmt.Printf("%d\t%s\t%d members\n", community.ID, community.Name, community.MemberCount)
		}
		console.Success("%d communities", len(communities))
		return nil
	},
}
