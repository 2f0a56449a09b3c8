// Package i18n provides localized UI strings and turns errors into
// human-readable messages for display.
package i18n

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/Mr-Dark-debug/gtoken/internal/ehclient"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Message ids used across the UI.
const (
	AppName                     = "app_name"
	ProgressTitle               = "progress_title"
	ProgressLoading             = "progress_loading"
	DetailTitle                 = "detail_title"
	TipRetry                    = "tip_retry"
	HintRetry                   = "hint_retry"
	HintBack                    = "hint_back"
	HintQuit                    = "hint_quit"
	HintOpen                    = "hint_copy"
	ErrorSomethingWrongHappened = "error_something_wrong_happened"
	ErrorTimeout                = "error_timeout"
	ErrorCannotResolveHost      = "error_cannot_resolve_host"
	ErrorConnectionRefused      = "error_connection_refused"
	ErrorBadStatus              = "error_bad_status"
	ErrorParse                  = "error_parse"
	ErrorNetwork                = "error_network"
	ErrorUnknown                = "error_unknown"
)

// Translator looks up localized strings for one locale.
type Translator struct {
	localizer *goi18n.Localizer
	tag       language.Tag
}

// NewBundle loads every embedded message file.
func NewBundle() (*goi18n.Bundle, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("reading embedded locales: %w", err)
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+e.Name()); err != nil {
			return nil, fmt.Errorf("loading locale %s: %w", e.Name(), err)
		}
	}
	return bundle, nil
}

// New returns a translator for locale, falling back to English for
// unknown locales and missing messages.
func New(locale string) (*Translator, error) {
	bundle, err := NewBundle()
	if err != nil {
		return nil, err
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Translator{
		localizer: goi18n.NewLocalizer(bundle, tag.String(), language.English.String()),
		tag:       tag,
	}, nil
}

// MustNew is New for callers that only use embedded, known-good locales.
func MustNew(locale string) *Translator {
	t, err := New(locale)
	if err != nil {
		panic(err)
	}
	return t
}

// Tag returns the requested locale.
func (t *Translator) Tag() language.Tag {
	return t.tag
}

// Text returns the message for id. Unknown ids come back verbatim.
func (t *Translator) Text(id string) string {
	return t.TextWith(id, nil)
}

// TextWith is Text with template data.
func (t *Translator) TextWith(id string, data map[string]any) string {
	s, err := t.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return s
}

// ErrorString maps err to a localized, human-readable message.
func (t *Translator) ErrorString(err error) string {
	if err == nil {
		return ""
	}

	var (
		apiErr    *ehclient.APIError
		statusErr *ehclient.StatusError
		dnsErr    *net.DNSError
		netErr    net.Error
		urlErr    *url.Error
	)

	switch {
	case errors.As(err, &apiErr):
		// The API's own wording is already meant for people.
		return apiErr.Message
	case errors.As(err, &statusErr):
		return t.TextWith(ErrorBadStatus, map[string]any{"Code": statusErr.Code})
	case errors.Is(err, ehclient.ErrParse):
		return t.Text(ErrorParse)
	case errors.Is(err, context.DeadlineExceeded):
		return t.Text(ErrorTimeout)
	case errors.As(err, &dnsErr):
		return t.Text(ErrorCannotResolveHost)
	case errors.Is(err, syscall.ECONNREFUSED):
		return t.Text(ErrorConnectionRefused)
	case errors.As(err, &netErr) && netErr.Timeout():
		return t.Text(ErrorTimeout)
	case errors.As(err, &urlErr):
		return t.Text(ErrorNetwork)
	default:
		return t.Text(ErrorUnknown)
	}
}
