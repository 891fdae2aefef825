package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/colonyops/forumsync/internal/core/forum"
)

var (
	permissionCodes = map[int]bool{
		discordgo.ErrCodeMissingAccess:      true,
		discordgo.ErrCodeMissingPermissions: true,
	}
	notFoundCodes = map[int]bool{
		discordgo.ErrCodeUnknownChannel: true,
		discordgo.ErrCodeUnknownMessage: true,
	}
)

// classify wraps a discordgo error with the forum sentinel matching its REST
// status or JSON error code. Unrecognised errors are wrapped unchanged and
// count as transient.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	code := 0
	if restErr.Message != nil {
		code = restErr.Message.Code
	}
	status := 0
	if restErr.Response != nil {
		status = restErr.Response.StatusCode
	}

	switch {
	case permissionCodes[code] || (code == 0 && status == http.StatusForbidden):
		return fmt.Errorf("%s: %w: %w", op, forum.ErrPermissionDenied, err)
	case notFoundCodes[code] || (code == 0 && status == http.StatusNotFound):
		return fmt.Errorf("%s: %w: %w", op, forum.ErrNotFound, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
