package prompt

import (
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/therealaleph/dnsstcloudflare/internal/ui"
)

var ErrUserCancelled = errors.New("cancelled by user")

// Credentials is the legacy email + Global API Key pair. Record creation via
// X-Auth headers is the one auth scheme the tunnel setup flow supports.
type Credentials struct {
	Email  string
	APIKey string
}

// RunLoginPrompt collects and validates credentials for `dnsst login`. The
// key is prompted masked; both fields re-prompt until non-empty.
func RunLoginPrompt() (Credentials, error) {
	var email, apiKey string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email Address").
				Description("Find your Global API Key in: Cloudflare Dashboard → My Profile → API Tokens").
				Placeholder("your.email@example.com").
				Value(&email).
				Validate(func(s string) error {
					if len(s) == 0 {
						return errors.New("email cannot be empty")
					}
					if !isValidEmail(s) {
						return errors.New("please enter a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Global API Key").
				Placeholder("Enter your Global API Key...").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(func(s string) error {
					if len(s) == 0 {
						return errors.New("API key cannot be empty")
					}
					return nil
				}),
		),
	).WithTheme(ui.HuhTheme())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Credentials{}, ErrUserCancelled
		}
		return Credentials{}, err
	}

	return Credentials{Email: email, APIKey: apiKey}, nil
}

func isValidEmail(email string) bool {
	if len(email) < 3 {
		return false
	}

	atIndex := -1
	dotIndex := -1

	for i, char := range email {
		if char == '@' {
			if atIndex != -1 {
				return false
			}
			atIndex = i
		} else if char == '.' && atIndex != -1 {
			dotIndex = i
		}
	}

	return atIndex > 0 && dotIndex > atIndex+1 && dotIndex < len(email)-1
}
