package pagination_test

import (
	"testing"
	"time"

	"github.com/finpost/finpost_app/internal/utils/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken_RoundTrip(t *testing.T) {
	voucherDate := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 4, 15, 10, 30, 0, 123456789, time.UTC)

	token := pagination.EncodeToken(voucherDate, createdAt)
	gotDate, gotCreated, err := pagination.DecodeToken(token)
	require.NoError(t, err)
	assert.True(t, voucherDate.Equal(gotDate))
	assert.True(t, createdAt.Equal(gotCreated))
}

func TestDecodeToken_Invalid(t *testing.T) {
	_, _, err := pagination.DecodeToken("not-base64!!!")
	assert.Error(t, err)

	_, _, err = pagination.DecodeToken("aGVsbG8=") // "hello": no separator
	assert.Error(t, err)
}

func TestEncodeDecodeDateBasedToken_RoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 4, 15, 10, 30, 0, 123456789, time.UTC)

	token := pagination.EncodeDateBasedToken(createdAt)
	got, err := pagination.DecodeDateBasedToken(token)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(got))
}

func TestDecodeDateBasedToken_Invalid(t *testing.T) {
	_, err := pagination.DecodeDateBasedToken("aGVsbG8=")
	assert.Error(t, err)
}
