package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/therealaleph/dnsstcloudflare/internal/cloudflare"
	"github.com/therealaleph/dnsstcloudflare/internal/ui"
)

var (
	// ErrEmptyInput is a required field left blank. Unlike the login form,
	// the setup flow does not re-prompt: a blank answer ends the run.
	ErrEmptyInput = errors.New("required input was empty")

	// ErrInvalidSelection is a zone choice that is not a number in range.
	// One bad entry is terminal; there is no retry loop.
	ErrInvalidSelection = errors.New("invalid zone selection")
)

// RunCredentialsPrompt collects credentials inline during setup. Values are
// trimmed; either being empty fails the run immediately.
func RunCredentialsPrompt() (Credentials, error) {
	var email, apiKey string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cloudflare Email").
				Placeholder("your.email@example.com").
				Value(&email),
			huh.NewInput().
				Title("Global API Key").
				Placeholder("Enter your Global API Key...").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
		),
	).WithTheme(ui.HuhTheme())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Credentials{}, ErrUserCancelled
		}
		return Credentials{}, err
	}

	creds := Credentials{
		Email:  strings.TrimSpace(email),
		APIKey: strings.TrimSpace(apiKey),
	}
	if creds.Email == "" {
		return Credentials{}, fmt.Errorf("%w: email", ErrEmptyInput)
	}
	if creds.APIKey == "" {
		return Credentials{}, fmt.Errorf("%w: API key", ErrEmptyInput)
	}
	return creds, nil
}

// RunZoneSelectionPrompt prints the numbered zone list in provider order and
// reads one selection. The raw input goes through ParseSelection; the prompt
// itself does not police it so that an invalid entry terminates instead of
// looping.
func RunZoneSelectionPrompt(zones []cloudflare.Zone) (string, error) {
	items := make([]string, 0, len(zones))
	for _, z := range zones {
		items = append(items, fmt.Sprintf("%s %s", z.Name, ui.Muted("("+z.ID+")")))
	}
	fmt.Println(ui.Title("Available Zones"))
	fmt.Println(ui.NumberedList(items))
	fmt.Println()

	var input string
	field := huh.NewInput().
		Title(fmt.Sprintf("Select a zone [1-%d]", len(zones))).
		Value(&input)

	if err := huh.NewForm(huh.NewGroup(field)).WithTheme(ui.HuhTheme()).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrUserCancelled
		}
		return "", err
	}
	return input, nil
}

// ParseSelection maps a 1-based selection onto the zone count. Anything that
// is not an integer in [1, count] is ErrInvalidSelection.
func ParseSelection(input string, count int) (int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidSelection)
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, trimmed)
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("%w: %d is out of range [1-%d]", ErrInvalidSelection, n, count)
	}
	return n, nil
}

// RunServerIPPrompt reads the tunnel server's IPv4 address. A blank answer is
// fatal; a value that does not look like a dotted quad only warns, the value
// is used as entered.
func RunServerIPPrompt() (string, error) {
	var ip string
	field := huh.NewInput().
		Title("Tunnel Server IP").
		Description("The public IPv4 address the A record should point at").
		Placeholder("203.0.113.5").
		Value(&ip)

	if err := huh.NewForm(huh.NewGroup(field)).WithTheme(ui.HuhTheme()).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrUserCancelled
		}
		return "", err
	}

	ip = strings.TrimSpace(ip)
	if ip == "" {
		return "", fmt.Errorf("%w: server IP", ErrEmptyInput)
	}
	return ip, nil
}
