package rtc

import (
	"fmt"

	"github.com/dkeye/Meet/internal/config"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// ICEProvider holds the STUN/TURN servers browsers use to build their peer
// connections. Media never reaches this process, the list is only handed out.
type ICEProvider struct {
	servers []webrtc.ICEServer
}

func DefaultICEServers() []webrtc.ICEServer {
	return []webrtc.ICEServer{
		{
			URLs: []string{"stun:stun.l.google.com:19302"},
		},
	}
}

// NewICEProvider converts the configured servers and checks that pion
// accepts them as a peer connection configuration.
func NewICEProvider(servers []config.ICEServer) (*ICEProvider, error) {
	out := make([]webrtc.ICEServer, 0, len(servers))
	for _, s := range servers {
		srv := webrtc.ICEServer{
			URLs:     append([]string(nil), s.URLs...),
			Username: s.Username,
		}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	if len(out) == 0 {
		out = DefaultICEServers()
	}
	if err := probe(out); err != nil {
		return nil, err
	}
	log.Info().Str("module", "rtc").Int("ice_servers", len(out)).Msg("ice servers ready")
	return &ICEProvider{servers: out}, nil
}

func probe(servers []webrtc.ICEServer) error {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: servers})
	if err != nil {
		return fmt.Errorf("ice servers: %w", err)
	}
	if err := pc.Close(); err != nil {
		log.Warn().Err(err).Str("module", "rtc").Msg("probe close")
	}
	return nil
}

// Servers returns a copy safe for the caller to encode or modify.
func (p *ICEProvider) Servers() []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, len(p.servers))
	for i, s := range p.servers {
		s.URLs = append([]string(nil), s.URLs...)
		out[i] = s
	}
	return out
}
