package config

import (
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

// ICEServerSpec is one STUN/TURN entry as written in the config file.
type ICEServerSpec struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

// ToWebRTC validates specs and converts them to pion's ICE server model.
func ToWebRTC(specs []ICEServerSpec) ([]webrtc.ICEServer, error) {
	out := make([]webrtc.ICEServer, 0, len(specs))
	for i, s := range specs {
		if len(s.URLs) == 0 {
			return nil, fmt.Errorf("ice_servers[%d]: urls is required", i)
		}
		for _, u := range s.URLs {
			if !strings.HasPrefix(u, "stun:") && !strings.HasPrefix(u, "stuns:") &&
				!strings.HasPrefix(u, "turn:") && !strings.HasPrefix(u, "turns:") {
				return nil, fmt.Errorf("ice_servers[%d]: unsupported url %q", i, u)
			}
		}
		srv := webrtc.ICEServer{URLs: s.URLs}
		if s.Username != "" || s.Credential != "" {
			srv.Username = s.Username
			srv.Credential = s.Credential
			srv.CredentialType = webrtc.ICECredentialTypePassword
		}
		out = append(out, srv)
	}
	return out, nil
}
