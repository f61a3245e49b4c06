package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// postsCmd represents the 'posts' command.
var postsCmd = &cobra.Command{
	Use:   "posts [community-id]",
	Short: "Fetch and print a community's artist posts.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		communityID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid community id %q: %w", args[0], err)
		}
		pages, _ := cmd.Flags().GetInt("pages")

		ctx := context.Background()
		if err := ensureAuthorized(ctx); err != nil {
			return err
		}
		if appClient.GetCommunities(ctx) == nil {
			return fmt.Errorf("failed to fetch communities")
		}
		community := appClient.CommunityByID(communityID)
		if community == nil {
			return fmt.Errorf("community %d is not visible to this account", communityID)
		}

		console.StartProgress(fmt.Sprintf("Fetching posts for %s...", community.Name))
		appClient.GetCommunityArtists(ctx, communityID)
		fresh := appClient.GetCommunityPosts(ctx, communityID, pages)
		console.StopProgress()

		for _, post := range fresh {
			body := post.Body
			if i := strings.IndexByte(body, '\n'); i >= 0 {
				body = body[:i]
			}
			fmt.Printf("%d\t%s\t%s\t%s\n", post.ID, post.CreatedAt.Format(time.DateTime), post.Artist.Name, body)
		}
		console.Success("%d new post(s) for %s", len(fresh), community.Name)
		return nil
	},
}

func init() {
	postsCmd.Flags().Int("pages", 1, "Feed pages to fetch (0 fetches the entire feed)")
}
