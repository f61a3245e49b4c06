package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	weverse "github.com/halcyoned/weverse/internal"
	"github.com/halcyoned/weverse/pkg/client"
)

// listenCmd represents the 'listen' command.
var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Poll for notifications continuously (default command).",
	Long: `Logs in, warms the cache and polls the notification feed at the
configured interval. New notifications are classified, resolved into their
content, archived, and optionally downloaded.`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

// runListen contains the daemon loop.
func runListen(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := ensureAuthorized(ctx); err != nil {
		return err
	}
	console.Success("Authorized as member %d", appClient.Session().MemberID())

	interval, err := time.ParseDuration(cfg.PollInterval)
	if err != nil || interval <= 0 {
		console.Warn("Invalid poll_interval %q, falling back to 30s", cfg.PollInterval)
		interval = 30 * time.Second
	}

	terminal := make(chan struct{})
	var once sync.Once

	appClient.Events.OnNotification(func(n *weverse.Notification) {
		seen, err := database.Seen(n.ID)
		if err != nil {
			fileLogger.Printf("archive check failed for notification %d: %v", n.ID, err)
		}
		if err := database.MarkSeen(n.ID, n.CommunityID, string(n.Kind), n.NotifiedAt.UnixMilli()); err != nil {
			fileLogger.Printf("failed to archive notification %d: %v", n.ID, err)
		}
		if !seen {
			console.Info("[%s] %s: %s", n.Kind, n.CommunityName, n.Message)
		}
	})
	appClient.Events.OnPost(func(p *weverse.Post) {
		console.Info("New post %d by %s", p.ID, p.Artist.Name)
		if cfg.DownloadAttachments {
			dir := filepath.Join(cfg.DownloadPath, p.Community.Name)
			if err := downloadPostAttachments(ctx, p, dir, fileLogger); err != nil {
				console.Error("Download halted: %v", err)
			}
		}
	})
	appClient.Events.OnMedia(func(m *weverse.Media) {
		console.Info("New media %d in %s: %s", m.ID, m.Community.Name, m.Title)
		if cfg.DownloadAttachments {
			dir := filepath.Join(cfg.DownloadPath, m.Community.Name)
			if err := downloadMediaAttachments(m, dir, fileLogger); err != nil {
				console.Error("Download halted: %v", err)
			}
		}
	})
	appClient.Events.OnComment(func(c *weverse.Comment, p *weverse.Post) {
		console.Info("New comment by %s on post %d: %s", c.Artist.Name, p.ID, c.Body)
	})
	appClient.Events.OnPoll(func(r client.PollResult) {
		if r.Terminal {
			console.Error("Polling stopped: %v", r.Err)
			once.Do(func() { close(terminal) })
			return
		}
		if r.Err != nil {
			fileLogger.Printf("poll cycle failed, recovered: %v", r.Err)
			return
		}
		fileLogger.Printf("poll cycle complete, %d new notification(s)", len(r.New))
	})

	console.StartProgress("Warming caches...")
	initOpts := client.DefaultInitOptions()
	initOpts.PostPages = cfg.InitPostPages
	if err := appClient.Init(ctx, initOpts); err != nil {
		console.StopProgress()
		return err
	}
	console.StopProgress()
	console.Success("Cache warm: %d communities", len(appClient.Communities()))

	if err := appClient.Listen(client.ListenOptions{Enabled: true, Interval: interval}); err != nil {
		return err
	}
	console.Info("Polling every %s. Press Ctrl+C to stop.", interval)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
		console.Info("Shutting down...")
	case <-terminal:
	}
	return appClient.Listen(client.ListenOptions{Enabled: false})
}
