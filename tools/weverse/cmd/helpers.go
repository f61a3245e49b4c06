package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	weverse "github.com/halcyoned/weverse/internal"
	"github.com/halcyoned/weverse/pkg/logging"
	cliconfig "github.com/halcyoned/weverse/tools/weverse/internal/config"
)

// applyFlagOverrides applies command-line flag overrides to the configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *cliconfig.Config) {
	if cmd.Flag("dir").Changed {
		cfg.DownloadPath, _ = cmd.Flags().GetString("dir")
	}
	if cmd.Flag("username").Changed {
		cfg.Username, _ = cmd.Flags().GetString("username")
	}
	if cmd.Flag("password").Changed {
		cfg.Password, _ = cmd.Flags().GetString("password")
	}
	if cmd.Flag("token").Changed {
		cfg.Token, _ = cmd.Flags().GetString("token")
	}
	if cmd.Flag("poll-interval").Changed {
		cfg.PollInterval, _ = cmd.Flags().GetString("poll-interval")
	}
	if cmd.Flag("workers").Changed {
		if val, _ := cmd.Flags().GetInt("workers"); val > 0 {
			cfg.MaxWorkers = val
		}
	}
	if cmd.Flag("download-attachments").Changed {
		cfg.DownloadAttachments, _ = cmd.Flags().GetBool("download-attachments")
	}
	if cmd.Flag("verbose").Changed {
		cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
	}
}

// setupFileLogger sets up a file logger to log application events.
func setupFileLogger(clean bool, cfg *cliconfig.Config) (*log.Logger, error) {
	logPath, err := xdg.StateFile(filepath.Join(cliconfig.AppName, "app.log"))
	if err != nil {
		return nil, fmt.Errorf("could not get log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0750); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640) // #nosec G304 G302
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}

	var writer io.Writer = f
	if clean {
		writer = logging.NewRedactingWriter(f, cfg.Username)
	}

	return log.New(writer, "", log.LstdFlags), nil
}

// ensureAuthorized performs the login/token check shared by every data
// command.
func ensureAuthorized(ctx context.Context) error {
	if appClient.CheckLogin(ctx) {
		return nil
	}
	return fmt.Errorf("authorization failed, check the credentials in your config")
}

// attachmentFilename derives a stable on-disk name for an attachment URL.
func attachmentFilename(contentID int64, rawURL string) string {
	base := "attachment"
	if u, err := url.Parse(rawURL); err == nil {
		if b := path.Base(u.Path); b != "" && b != "/" && b != "." {
			base = b
		}
	}
	return fmt.Sprintf("%d_%s", contentID, base)
}

// downloadAttachment downloads one attachment URL into dir and records it in
// the archive. Already-archived URLs are skipped.
func downloadAttachment(contentID, communityID int64, kind weverse.MediaKind, rawURL, dir string) error {
	exists, err := database.AttachmentExists(contentID, rawURL)
	if err != nil {
		return fmt.Errorf("archive check failed for content %d: %w", contentID, err)
	}
	if exists {
		return nil
	}

	// #nosec G301
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create download directory %s: %w", dir, err)
	}
	if err := weverse.EnsureDiskSpace(dir, 0); err != nil {
		return err
	}

	fullPath := filepath.Join(dir, attachmentFilename(contentID, rawURL))
	sha, err := weverse.DownloadAndHash(rawURL, fullPath)
	if err != nil {
		return err
	}
	return database.AddOrUpdateAttachment(contentID, communityID, kind, rawURL, sha)
}

// downloadPostAttachments saves a post's photos and resolved video URLs.
func downloadPostAttachments(ctx context.Context, post *weverse.Post, dir string, logger *log.Logger) error {
	for _, photo := range post.Photos {
		if photo.URL == "" {
			continue
		}
		if err := downloadAttachment(post.ID, post.CommunityID, weverse.MediaPhoto, photo.URL, dir); err != nil {
			logger.Printf("failed to download photo for post %d: %v", post.ID, err)
			if isDiskSpace(err) {
				return err
			}
		}
	}
	if !post.HasVideos() {
		return nil
	}
	urls, err := appClient.ResolveVideoURLs(ctx, post)
	if err != nil {
		logger.Printf("failed to resolve video urls for post %d: %v", post.ID, err)
		return nil
	}
	for _, videoURL := range urls {
		if err := downloadAttachment(post.ID, post.CommunityID, weverse.MediaVideo, videoURL, dir); err != nil {
			logger.Printf("failed to download video for post %d: %v", post.ID, err)
			if isDiskSpace(err) {
				return err
			}
		}
	}
	return nil
}

// downloadMediaAttachments saves a media item's photos and video.
func downloadMediaAttachments(media *weverse.Media, dir string, logger *log.Logger) error {
	for _, photo := range media.Photos {
		if photo.URL == "" {
			continue
		}
		if err := downloadAttachment(media.ID, media.CommunityID, weverse.MediaPhoto, photo.URL, dir); err != nil {
			logger.Printf("failed to download photo for media %d: %v", media.ID, err)
			if isDiskSpace(err) {
				return err
			}
		}
	}
	if media.Video != nil && media.Video.PlayURL != "" {
		if err := downloadAttachment(media.ID, media.CommunityID, weverse.MediaVideo, media.Video.PlayURL, dir); err != nil {
			logger.Printf("failed to download video for media %d: %v", media.ID, err)
			if isDiskSpace(err) {
				return err
			}
		}
	}
	return nil
}

func isDiskSpace(err error) bool {
	return errors.Is(err, weverse.ErrDiskSpace)
}
