package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/weatherbrief/internal/service"
)

func TestLatestSnapshot_NeverFetchedIsNotFound(t *testing.T) {
	svc := service.NewWeatherService(mapReader{})

	_, err := svc.LatestSnapshot(context.Background(), "110101")

	var nf *service.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "weather snapshot", nf.Resource)
	assert.Equal(t, `weather snapshot "110101" not found`, err.Error())
}

func TestLatestSnapshot_MissingRegionIsValidation(t *testing.T) {
	svc := service.NewWeatherService(mapReader{})

	_, err := svc.LatestSnapshot(context.Background(), "")

	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "region", ve.Field)
}

func TestListLog_NegativeLimitIsValidation(t *testing.T) {
	f := newJobFixture()

	_, err := f.svc.ListLog(context.Background(), -5)

	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "limit", ve.Field)
	assert.Equal(t, `validation error for "limit": must not be negative`, err.Error())
	f.logs.AssertNotCalled(t, "ListNotifications", mock.Anything, mock.Anything)
}

func TestSendPreview_ValidationMessages(t *testing.T) {
	tests := []struct {
		name  string
		email string
		code  string
		want  string
	}{
		{"bad address", "not-an-email", "110101", `validation error for "email"`},
		{"missing region", "ops@example.com", "", `validation error for "region": region code is required`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newJobFixture()

			res := f.svc.SendPreview(context.Background(), tt.email, tt.code)

			assert.False(t, res.Success)
			assert.Contains(t, res.Message, tt.want)
			assert.Empty(t, f.dispatcher.previewedTo, "invalid input must not reach the dispatcher")
		})
	}
}

func TestValidationError_WithoutField(t *testing.T) {
	err := &service.ValidationError{Message: "schedule has no jobs"}
	assert.Equal(t, "schedule has no jobs", err.Error())
}
