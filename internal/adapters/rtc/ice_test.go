package rtc

import (
	"testing"

	"github.com/dkeye/Meet/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewICEProviderDefaults(t *testing.T) {
	p, err := NewICEProvider(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultICEServers(), p.Servers())
}

func TestNewICEProviderTurn(t *testing.T) {
	p, err := NewICEProvider([]config.ICEServer{
		{URLs: []string{"stun:stun.example.org:3478"}},
		{URLs: []string{"turn:turn.example.org:3478?transport=udp"}, Username: "meet", Credential: "s3cret"},
	})
	require.NoError(t, err)

	servers := p.Servers()
	require.Len(t, servers, 2)
	assert.Equal(t, "meet", servers[1].Username)
	assert.Equal(t, "s3cret", servers[1].Credential)

	servers[0].URLs[0] = "mutated"
	assert.Equal(t, "stun:stun.example.org:3478", p.Servers()[0].URLs[0])
}

func TestNewICEProviderRejectsBadServers(t *testing.T) {
	_, err := NewICEProvider([]config.ICEServer{{URLs: []string{"http://not-ice.example.org"}}})
	assert.Error(t, err)

	_, err = NewICEProvider([]config.ICEServer{{URLs: []string{"turn:turn.example.org:3478"}}})
	assert.Error(t, err)
}
