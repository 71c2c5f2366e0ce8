// Package rtc builds the ICE configuration handed to browsers. Media never
// passes through the hub; peers connect to each other directly.
package rtc

import (
	"github.com/dkeye/Kairos/internal/config"
	"github.com/pion/webrtc/v4"
)

var defaultICEServers = []webrtc.ICEServer{
	{URLs: []string{"stun:stun.l.google.com:19302"}},
}

// Configuration converts configured servers into the pion wire type.
// With no servers configured a public STUN server is used.
func Configuration(servers []config.ICEServer) webrtc.Configuration {
	cfg := webrtc.Configuration{
		ICETransportPolicy: webrtc.ICETransportPolicyAll,
	}
	for _, s := range servers {
		if len(s.URLs) == 0 {
			continue
		}
		ice := webrtc.ICEServer{URLs: s.URLs}
		if s.Username != "" {
			ice.Username = s.Username
			ice.Credential = s.Credential
			ice.CredentialType = webrtc.ICECredentialTypePassword
		}
		cfg.ICEServers = append(cfg.ICEServers, ice)
	}
	if len(cfg.ICEServers) == 0 {
		cfg.ICEServers = defaultICEServers
	}
	return cfg
}
