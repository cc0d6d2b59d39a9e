package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractkit/protokit-go/internal/domain"
)

func TestParseURN_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want URN
	}{
		{
			"urn:proto:data:orders@1.2.0",
			URN{Type: "data", ID: "orders", Version: "1.2.0"},
		},
		{
			"urn:proto:api:billing-api@2.0.0-rc.1",
			URN{Type: "api", ID: "billing-api", Version: "2.0.0-rc.1"},
		},
		{
			"urn:proto:event:user.signup@3",
			URN{Type: "event", ID: "user.signup", Version: "3"},
		},
		{
			"urn:proto:data:orders@1.2.0#schema/fields",
			URN{Type: "data", ID: "orders", Version: "1.2.0", Fragment: "schema/fields"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			u, err := ParseURN(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u)
		})
	}
}

func TestParseURN_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"urn:proto:",
		"urn:proto:data:orders",           // missing version
		"urn:proto:Data:orders@1.0.0",     // uppercase type
		"urn:other:data:orders@1.0.0",     // wrong scheme
		"proto:data:orders@1.0.0",         // missing urn prefix
		"urn:proto:data:@1.0.0",           // empty id
		"urn:proto:data:orders@1.0.0#a b", // bad fragment
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseURN(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidURN)
		})
	}
}

func TestURN_StringRoundTrip(t *testing.T) {
	for _, s := range []string{
		"urn:proto:data:orders@1.2.0",
		"urn:proto:data:orders@1.2.0#schema",
	} {
		u, err := ParseURN(s)
		require.NoError(t, err)
		assert.Equal(t, s, u.String())

		back, err := ParseURN(u.String())
		require.NoError(t, err)
		assert.Equal(t, u, back)
	}
}

func TestURN_KeyDropsFragment(t *testing.T) {
	u, err := ParseURN("urn:proto:data:orders@1.2.0#schema")
	require.NoError(t, err)
	assert.Equal(t, "urn:proto:data:orders@1.2.0", u.Key())
}

func TestIsURN(t *testing.T) {
	assert.True(t, IsURN("urn:proto:data:orders@1.0.0"))
	assert.True(t, IsURN("urn:proto:garbage"))
	assert.False(t, IsURN("urn:other:data"))
	assert.False(t, IsURN("orders"))
}
