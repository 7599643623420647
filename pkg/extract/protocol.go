package extract

import (
	"strconv"
	"strings"

	"github.com/google/gopacket/layers"
)

// iptables prints well known protocols by name and everything else by number
var namedProtocols = map[string]layers.IPProtocol{
	"TCP":     layers.IPProtocolTCP,
	"UDP":     layers.IPProtocolUDP,
	"ICMP":    layers.IPProtocolICMPv4,
	"ICMPV6":  layers.IPProtocolICMPv6,
	"UDPLITE": layers.IPProtocolUDPLite,
	"SCTP":    layers.IPProtocolSCTP,
	"GRE":     layers.IPProtocolGRE,
}

func protocolName(raw string) string {
	if n, err := strconv.ParseUint(raw, 10, 8); err == nil {
		if name := layers.IPProtocol(n).String(); !strings.HasPrefix(name, "Unknown") {
			return name
		}
		return raw
	}
	if proto, ok := namedProtocols[strings.ToUpper(raw)]; ok {
		return proto.String()
	}
	return strings.ToUpper(raw)
}
