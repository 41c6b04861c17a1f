package messages

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	require.Same(t, english, For(entities.LanguageEnglish))
	require.Same(t, french, For(entities.LanguageFrench))
	require.Same(t, french, For(""))
	require.Same(t, french, For("de"))
}

func TestCatalogsComplete(t *testing.T) {
	for lang, c := range catalogs {
		v := reflect.ValueOf(*c)
		for i := 0; i < v.NumField(); i++ {
			require.NotEmpty(t, v.Field(i).String(), "%s.%s", lang, v.Type().Field(i).Name)
		}
	}
}

func TestCatalog_ForError(t *testing.T) {
	c := For(entities.LanguageEnglish)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "not configured", err: fmt.Errorf("guild G: %w", apperrors.ErrGuildNotConfigured), want: c.ErrGuildNotConfigured},
		{name: "session", err: apperrors.ErrSessionNotFound, want: c.ErrSessionNotFound},
		{name: "duplicate", err: apperrors.ErrDuplicateTicket, want: c.ErrDuplicateTicket},
		{name: "not a ticket", err: apperrors.ErrNotATicketChannel, want: c.ErrNotATicketChannel},
		{name: "selection", err: apperrors.ErrInvalidSelection, want: c.ErrInvalidSelection},
		{name: "platform", err: apperrors.Platform(errors.New("403")), want: c.ErrPlatformAction},
		{name: "storage", err: apperrors.Storage(errors.New("disk")), want: c.ErrUserErrorProcessing},
		{name: "unknown", err: errors.New("boom"), want: c.ErrUserErrorProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, c.ForError(tt.err))
		})
	}
}
