package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := AddToCart(AddToCart(Empty(), product("Vejce", 5), 2), product("Med", 180), 1)

	data, err := EncodeSnapshot(s)
	require.NoError(t, err)

	got, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, len(s.Items), len(got.Items))
	assert.True(t, s.Total.Equal(got.Total))
}

func TestDecodeSnapshotRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"invalid json":    `{"items": [`,
		"nil product id":  `{"items":[{"id":"00000000-0000-0000-0000-000000000000","price":"5","quantity":1}],"total":"5"}`,
		"missing id":      `{"items":[{"price":"5","quantity":1}],"total":"5"}`,
		"total mismatch":  `{"items":[{"id":"7f1c6d8e-2a3b-4c5d-8e9f-0a1b2c3d4e5f","price":"5","quantity":2}],"total":"7"}`,
		"negative price":  `{"items":[{"id":"7f1c6d8e-2a3b-4c5d-8e9f-0a1b2c3d4e5f","price":"-5","quantity":1}],"total":"-5"}`,
		"wrong item type": `{"items":"eggs","total":"0"}`,
		"zero quantity":   `{"items":[{"id":"7f1c6d8e-2a3b-4c5d-8e9f-0a1b2c3d4e5f","price":"5","quantity":0}],"total":"0"}`,
		"negative qty":    `{"items":[{"id":"7f1c6d8e-2a3b-4c5d-8e9f-0a1b2c3d4e5f","price":"5","quantity":-1}],"total":"-5"}`,
		"duplicate lines": `{"items":[{"id":"7f1c6d8e-2a3b-4c5d-8e9f-0a1b2c3d4e5f","price":"5","quantity":1},{"id":"7f1c6d8e-2a3b-4c5d-8e9f-0a1b2c3d4e5f","price":"5","quantity":1}],"total":"10"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSnapshot([]byte(raw))
			assert.ErrorIs(t, err, ErrMalformedSnapshot)
		})
	}
}

func TestDecodeSnapshotAcceptsEmptyObject(t *testing.T) {
	got, err := DecodeSnapshot([]byte(`{}`))
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	assert.NotNil(t, got.Items)
}
