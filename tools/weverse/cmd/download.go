package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/halcyoned/weverse/pkg/pool"
)

// downloadCmd represents the 'download' command.
var downloadCmd = &cobra.Command{
	Use:     "download [community-id]",
	Short:   "Download the photo and video attachments of a community's posts.",
	Aliases: []string{"dl"},
	Long: `Fetches a community's artist post feed and downloads every photo and
video attachment that is not yet in the archive. Attachments land under
<download_path>/<community name>/ and are tracked by SHA256 in the archive
database.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

// runDownload contains the core logic for downloading a community's attachments.
func runDownload(cmd *cobra.Command, args []string) error {
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

	console.StartProgress(fmt.Sprintf("Fetching post feed for %s...", community.Name))
	appClient.GetCommunityArtists(ctx, communityID)
	appClient.GetCommunityPosts(ctx, communityID, pages)
	console.StopProgress()

	posts := community.Posts.All()
	if len(posts) == 0 {
		console.Info("No posts found for %s.", community.Name)
		return nil
	}

	dir := filepath.Join(cfg.DownloadPath, community.Name)
	console.Info("Processing %d post(s) with %d worker(s)...", len(posts), cfg.MaxWorkers)
	console.StartProgress("Downloading attachments...")

	var done atomic.Int64
	workerPool := pool.New(cfg.MaxWorkers, len(posts))
	for _, post := range posts {
		post := post // capture for closure
		workerPool.Submit(func() {
			if err := downloadPostAttachments(ctx, post, dir, fileLogger); err != nil {
				// disk-space failures are fatal but the pool drains anyway;
				// remaining tasks fail the same check and log
				fileLogger.Printf("ERROR: post %d: %v", post.ID, err)
			}
			console.UpdateProgress(fmt.Sprintf("Downloaded %d/%d posts", done.Add(1), len(posts)))
		})
	}
	workerPool.Stop()
	console.StopProgress()

	records, err := database.GetAttachmentsByCommunity(communityID)
	if err != nil {
		console.Warn("Could not read archive: %v", err)
	} else {
		console.Success("Archive holds %d attachment(s) for %s", len(records), community.Name)
	}
	return nil
}

func init() {
	downloadCmd.Flags().Int("pages", 1, "Feed pages to fetch before downloading (0 fetches the entire feed)")
}
