package wghub

import (
	"strconv"
	"strings"
)

// ParseServerConfig parses a WireGuard interface config, recognising the
// managed-peer block markers so round-tripping preserves everything outside
// it untouched (§8: "adding then deleting a peer leaves ... WGHub
// bit-identical to the pre-add state").
func ParseServerConfig(data []byte) *ServerConfig {
	config := &ServerConfig{}

	lines := strings.Split(string(data), "\n")
	var currentInterface *InterfaceBlock
	var currentPeer *PeerBlock
	var inInterface, inPeer, inManagedBlock bool
	var pendingComment string

	var peerDisabled bool

	flushPeer := func() {
		if currentPeer != nil {
			if inManagedBlock {
				currentPeer.Managed = true
			}
			config.Peers = append(config.Peers, currentPeer)
			currentPeer = nil
		}
		peerDisabled = false
	}

	for _, raw := range lines {
		line := raw
		trimmed := strings.TrimSpace(line)

		switch trimmed {
		case managedBlockBegin:
			inManagedBlock = true
			continue
		case managedBlockEnd:
			inManagedBlock = false
			continue
		}

		if trimmed == "" {
			if !inInterface && !inPeer {
				config.RawLines = append(config.RawLines, line)
			}
			continue
		}

		if header, disabled := sectionHeader(trimmed); header != "" {
			section := strings.TrimSpace(strings.Trim(header, "[]"))

			if inInterface && currentInterface != nil {
				config.Interface = currentInterface
				currentInterface = nil
			}
			flushPeer()
			inInterface, inPeer = false, false

			switch {
			case strings.EqualFold(section, "Interface"):
				inInterface = true
				currentInterface = &InterfaceBlock{Extra: make(map[string]string)}
			case strings.EqualFold(section, "Peer"):
				inPeer = true
				peerDisabled = disabled
				currentPeer = &PeerBlock{Extra: make(map[string]string), Comment: pendingComment, Managed: inManagedBlock, Disabled: disabled}
				pendingComment = ""
			default:
				config.RawLines = append(config.RawLines, line)
			}
			continue
		}

		// A disabled peer's field lines are themselves commented out (see
		// renderPeer); strip the comment prefix and parse them as fields of
		// the currently open disabled peer before falling through to the
		// generic comment handling below.
		if inPeer && peerDisabled && (strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";")) {
			uncommented := strings.TrimSpace(strings.TrimLeft(trimmed, "#;"))
			if key, val, ok := splitKV(uncommented); ok {
				setPeerField(currentPeer, key, val)
				continue
			}
		}

		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			if inPeer {
				pendingComment = trimmed
			} else if !inInterface {
				config.RawLines = append(config.RawLines, line)
			}
			continue
		}

		key, val, ok := splitKV(trimmed)
		if !ok {
			if !inInterface && !inPeer {
				config.RawLines = append(config.RawLines, line)
			}
			continue
		}

		switch {
		case inInterface && currentInterface != nil:
			setInterfaceField(currentInterface, key, val)
		case inPeer && currentPeer != nil:
			setPeerField(currentPeer, key, val)
		default:
			config.RawLines = append(config.RawLines, line)
		}
	}

	if inInterface && currentInterface != nil {
		config.Interface = currentInterface
	}
	flushPeer()

	return config
}

// sectionHeader recognises a section header line, live or commented out
// (e.g. "[Peer]" or "#[Peer]" / "# [Peer]"), returning the bracketed header
// text and whether it was comment-prefixed. It returns an empty header for
// anything else, including a plain comment line that isn't a header.
func sectionHeader(trimmed string) (header string, disabled bool) {
	candidate := trimmed
	if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
		stripped := strings.TrimSpace(strings.TrimLeft(trimmed, "#;"))
		if strings.HasPrefix(stripped, "[") && strings.HasSuffix(stripped, "]") {
			return stripped, true
		}
		return "", false
	}
	if strings.HasPrefix(candidate, "[") && strings.HasSuffix(candidate, "]") {
		return candidate, false
	}
	return "", false
}

func setInterfaceField(iface *InterfaceBlock, key, val string) {
	switch strings.ToLower(key) {
	case "privatekey":
		iface.PrivateKey = val
	case "address":
		iface.Address = val
	case "listenport":
		iface.ListenPort = val
	case "mtu":
		iface.MTU = val
	case "dns":
		iface.DNS = val
	case "postup":
		iface.PostUp = val
	case "postdown":
		iface.PostDown = val
	default:
		iface.Extra[key] = val
	}
}

func setPeerField(peer *PeerBlock, key, val string) {
	switch strings.ToLower(key) {
	case "publickey":
		peer.PublicKey = val
	case "presharedkey":
		peer.PresharedKey = val
	case "allowedips":
		peer.AllowedIPs = val
	case "endpoint":
		peer.Endpoint = val
	case "persistentkeepalive":
		peer.PersistentKeepalive = parseIntOrDefault(val, 0)
	default:
		peer.Extra[key] = val
	}
}

// RenderServerConfig serialises config back to the on-disk format, replaying
// RawLines first, then the [Interface] block, then every [Peer] stanza —
// disabled stanzas are commented out rather than omitted, and managed
// stanzas are wrapped in the managed-block markers so a human-edited peer
// placed outside the block is left untouched on the next write.
func RenderServerConfig(config *ServerConfig) []byte {
	if config == nil {
		return nil
	}
	var b strings.Builder

	for _, line := range config.RawLines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if config.Interface != nil {
		renderInterface(&b, config.Interface)
	}

	managedOpen := false
	for i, peer := range config.Peers {
		if peer == nil {
			continue
		}
		if peer.Managed && !managedOpen {
			b.WriteString(managedBlockBegin)
			b.WriteString("\n")
			managedOpen = true
		}
		renderPeer(&b, peer)
		if peer.Managed && !hasLaterManaged(config.Peers, i) {
			b.WriteString(managedBlockEnd)
			b.WriteString("\n")
			managedOpen = false
		}
	}
	if managedOpen {
		b.WriteString(managedBlockEnd)
		b.WriteString("\n")
	}

	return []byte(b.String())
}

func hasLaterManaged(peers []*PeerBlock, from int) bool {
	for j := from + 1; j < len(peers); j++ {
		if peers[j] != nil && peers[j].Managed {
			return true
		}
	}
	return false
}

func renderInterface(b *strings.Builder, iface *InterfaceBlock) {
	b.WriteString("[Interface]\n")
	writeKV(b, "PrivateKey", iface.PrivateKey)
	writeKV(b, "Address", iface.Address)
	writeKV(b, "ListenPort", iface.ListenPort)
	writeKV(b, "MTU", iface.MTU)
	writeKV(b, "DNS", iface.DNS)
	writeKV(b, "PostUp", iface.PostUp)
	writeKV(b, "PostDown", iface.PostDown)
	for k, v := range iface.Extra {
		writeKV(b, k, v)
	}
	b.WriteString("\n")
}

func renderPeer(b *strings.Builder, peer *PeerBlock) {
	prefix := ""
	if peer.Disabled {
		prefix = "#"
	}
	if peer.Comment != "" {
		b.WriteString(prefix)
		b.WriteString(peer.Comment)
		b.WriteString("\n")
	}
	b.WriteString(prefix)
	b.WriteString("[Peer]\n")
	writeKVPrefixed(b, prefix, "PublicKey", peer.PublicKey)
	writeKVPrefixed(b, prefix, "PresharedKey", peer.PresharedKey)
	writeKVPrefixed(b, prefix, "AllowedIPs", peer.AllowedIPs)
	writeKVPrefixed(b, prefix, "Endpoint", peer.Endpoint)
	if peer.PersistentKeepalive > 0 {
		writeKVPrefixed(b, prefix, "PersistentKeepalive", strconv.Itoa(peer.PersistentKeepalive))
	}
	for k, v := range peer.Extra {
		writeKVPrefixed(b, prefix, k, v)
	}
	b.WriteString("\n")
}

func writeKV(b *strings.Builder, key, val string) {
	if val == "" {
		return
	}
	b.WriteString(key)
	b.WriteString(" = ")
	b.WriteString(strings.TrimSpace(val))
	b.WriteString("\n")
}

func writeKVPrefixed(b *strings.Builder, prefix, key, val string) {
	if val == "" {
		return
	}
	b.WriteString(prefix)
	b.WriteString(key)
	b.WriteString(" = ")
	b.WriteString(strings.TrimSpace(val))
	b.WriteString("\n")
}

func splitKV(line string) (k, v string, ok bool) {
	if !strings.Contains(line, "=") {
		return "", "", false
	}
	parts := strings.SplitN(line, "=", 2)
	k = strings.TrimSpace(parts[0])
	v = strings.TrimSpace(parts[1])
	if k == "" {
		return "", "", false
	}
	return k, v, true
}

func parseIntOrDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
