package system

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/wurkwurk/internal/cli"
	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/notifier"
)

// NotifyCmd sends the reminder notification through the tray helper so the
// sound and volume settings can be checked.
type NotifyCmd struct {
	Message string `help:"Notification text."`
	DryRun  bool   `help:"Print the notification instead of sending it."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	message := strings.TrimSpace(c.Message)
	if message == "" {
		message = constants.NotificationMessage
	}
	n := notifier.Notification{
		Title:   constants.NotificationTitle,
		Message: message,
		Sound:   settings.NotificationSound,
		Volume:  settings.NotificationVolume,
	}

	if c.DryRun {
		fmt.Printf("[DryRun] %s: %s (sound=%s volume=%.2f)\n", n.Title, n.Message, n.Sound, n.Volume)
		return nil
	}

	if err := notifier.New().Notify(context.Background(), n); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	fmt.Println("✓ Notification sent")
	return nil
}
