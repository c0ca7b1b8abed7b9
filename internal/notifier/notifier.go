// Package notifier sends desktop notifications through the tray helper's
// local webhook. The helper advertises itself with a "port|pid|secret" lockfile.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/wurkwurk/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// ErrTrayNotRunning is returned when no live tray helper could be found.
var ErrTrayNotRunning = errors.New(constants.TrayProcessName + " is not running")

// Notification is one desktop notification.
type Notification struct {
	Title   string
	Message string
	Sound   string
	Volume  float64
}

type webhookPayload struct {
	Title      string  `json:"title"`
	Text       string  `json:"text"`
	Sound      string  `json:"sound,omitempty"`
	Volume     float64 `json:"volume"`
	DurationMs uint32  `json:"duration_ms"`
}

// lock is the parsed tray lockfile.
type lock struct {
	Port   int
	PID    int
	Secret string
}

type Notifier struct {
	client *http.Client
}

func New() *Notifier {
	return &Notifier{client: &http.Client{Timeout: 5 * time.Second}}
}

// Notify delivers n to the running tray helper.
func (t *Notifier) Notify(ctx context.Context, n Notification) error {
	l, err := findTray()
	if err != nil {
		return err
	}

	sound := n.Sound
	if strings.EqualFold(sound, "none") {
		sound = ""
	}
	return t.send(ctx, l, webhookPayload{
		Title:      n.Title,
		Text:       n.Message,
		Sound:      sound,
		Volume:     n.Volume,
		DurationMs: constants.NotificationDuration,
	})
}

// Probe reports whether a tray helper is running and owns its lockfile.
func Probe() error {
	_, err := findTray()
	return err
}

func findTray() (lock, error) {
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		return lock{}, err
	}
	l, err := readLock(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return lock{}, err
	}
	if err := validateProcess(l.PID); err != nil {
		return lock{}, err
	}
	return l, nil
}

// GetTrayAppConfigDir returns the directory holding the tray lockfile. The
// tray's own settings.json may move it with "lockfile_dir".
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	trayDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(trayDir, "settings.json"))
	if err != nil {
		return trayDir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err == nil && store.Settings.LockfileDir != "" {
		return store.Settings.LockfileDir, nil
	}
	return trayDir, nil
}

func readLock(path string) (lock, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return lock{}, ErrTrayNotRunning
	}
	return parseLock(string(content))
}

func parseLock(content string) (lock, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return lock{}, errors.New("lockfile is malformed")
	}

	portStr := strings.TrimSpace(parts[0])
	if portStr == "" {
		return lock{}, errors.New("port in lockfile is empty")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return lock{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return lock{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return lock{}, errors.New("invalid process ID in lockfile")
	}

	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return lock{}, errors.New("secret in lockfile is empty")
	}
	return lock{Port: port, PID: pid, Secret: secret}, nil
}

func validateProcess(pid int) error {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayProcessName) {
		return fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayProcessName, process.Executable())
	}
	return nil
}

func (t *Notifier) send(ctx context.Context, l lock, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("http://127.0.0.1:%d", l.Port), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Wurkwurk-Secret", l.Secret)

	res, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", constants.TrayProcessName, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
}
