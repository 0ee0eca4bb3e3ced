package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/wordpath-api/internal/domain"
)

func TestGetPathUUID(t *testing.T) {
	id := uuid.New()

	got, err := getPathUUID(newRequest(http.MethodGet, "/", "", "learnerID", id.String()), "learnerID")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = getPathUUID(newRequest(http.MethodGet, "/", ""), "learnerID")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = getPathUUID(newRequest(http.MethodGet, "/", "", "learnerID", "not-a-uuid"), "learnerID")
	assert.True(t, errors.Is(err, domain.ErrInvalidID))
}

func TestGetQueryInt(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{query: "", want: 7},
		{query: "?n=0", want: 0},
		{query: "?n=12", want: 12},
		{query: "?n=-3", wantErr: true},
		{query: "?n=1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := getQueryInt(newRequest(http.MethodGet, "/"+tt.query, ""), "n", 7)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetQueryFloat(t *testing.T) {
	got, err := getQueryFloat(newRequest(http.MethodGet, "/?level=2.89", ""), "level")
	require.NoError(t, err)
	assert.Equal(t, 2.89, got)

	_, err = getQueryFloat(newRequest(http.MethodGet, "/", ""), "level")
	assert.Error(t, err)

	_, err = getQueryFloat(newRequest(http.MethodGet, "/?level=high", ""), "level")
	assert.True(t, errors.Is(err, domain.ErrInvalidFormat))
}
