package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"
)

// Security selects the SNMP security model for the native prober.
// Version "2c" uses the community string carried on each Target; version "3"
// uses USM with the fields below.
type Security struct {
	Version   string // "2c" or "3"
	User      string
	SecLevel  string // noAuthNoPriv, authNoPriv, authPriv
	AuthProto string // NONE, MD5, SHA, SHA224, SHA256, SHA384, SHA512
	AuthKey   string
	PrivProto string // NONE, DES, AES, AES128, AES192, AES256
	PrivKey   string
}

var errSecurity = errors.New("invalid snmp security settings")

var authProtocols = map[string]gosnmp.SnmpV3AuthProtocol{
	"NONE":   gosnmp.NoAuth,
	"MD5":    gosnmp.MD5,
	"SHA":    gosnmp.SHA,
	"SHA224": gosnmp.SHA224,
	"SHA256": gosnmp.SHA256,
	"SHA384": gosnmp.SHA384,
	"SHA512": gosnmp.SHA512,
}

var privProtocols = map[string]gosnmp.SnmpV3PrivProtocol{
	"NONE":   gosnmp.NoPriv,
	"DES":    gosnmp.DES,
	"AES":    gosnmp.AES,
	"AES128": gosnmp.AES,
	"AES192": gosnmp.AES192,
	"AES256": gosnmp.AES256,
}

// Validate checks that the security settings are complete for the selected
// level: authNoPriv requires an auth key, authPriv additionally requires a
// privacy protocol and key.
func (s Security) Validate() error {
	switch s.Version {
	case "", "2c":
		return nil
	case "3":
	default:
		return fmt.Errorf("%w: unsupported version %q (use 2c or 3)", errSecurity, s.Version)
	}

	if s.User == "" {
		return fmt.Errorf("%w: SNMPv3 requires a user name", errSecurity)
	}
	if _, ok := authProtocols[s.authProtoKey()]; !ok {
		return fmt.Errorf("%w: unsupported auth protocol %q", errSecurity, s.AuthProto)
	}
	if _, ok := privProtocols[s.privProtoKey()]; !ok {
		return fmt.Errorf("%w: unsupported privacy protocol %q", errSecurity, s.PrivProto)
	}

	switch s.SecLevel {
	case "", "noAuthNoPriv":
		return nil
	case "authNoPriv":
		if s.AuthKey == "" {
			return fmt.Errorf("%w: authNoPriv requires an auth key", errSecurity)
		}
		return nil
	case "authPriv":
		if s.AuthKey == "" {
			return fmt.Errorf("%w: authPriv requires an auth key", errSecurity)
		}
		if s.PrivKey == "" {
			return fmt.Errorf("%w: authPriv requires a privacy key", errSecurity)
		}
		if s.privProtoKey() == "NONE" {
			return fmt.Errorf("%w: authPriv requires a privacy protocol (e.g. AES or DES)", errSecurity)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported security level %q", errSecurity, s.SecLevel)
	}
}

func (s Security) authProtoKey() string {
	if s.AuthProto == "" {
		return "NONE"
	}
	return strings.ToUpper(s.AuthProto)
}

func (s Security) privProtoKey() string {
	if s.PrivProto == "" {
		return "NONE"
	}
	return strings.ToUpper(s.PrivProto)
}

func (s Security) msgFlags() gosnmp.SnmpV3MsgFlags {
	switch s.SecLevel {
	case "authNoPriv":
		return gosnmp.AuthNoPriv
	case "authPriv":
		return gosnmp.AuthPriv
	default:
		return gosnmp.NoAuthNoPriv
	}
}

// SNMPProber queries hosts natively over SNMP via gosnmp, one short-lived
// connection per probe.
type SNMPProber struct {
	security Security
	logger   *zap.Logger
}

// NewSNMPProber validates the security settings and returns a native prober.
func NewSNMPProber(security Security, logger *zap.Logger) (*SNMPProber, error) {
	if err := security.Validate(); err != nil {
		return nil, err
	}
	return &SNMPProber{security: security, logger: logger}, nil
}

// Probe issues one GET for the target OID. Connection errors, request
// errors, error-status responses, and noSuchObject-class variables all come
// back as a no-response outcome.
func (p *SNMPProber) Probe(ctx context.Context, target Target) Outcome {
	client := &gosnmp.GoSNMP{
		Context: ctx,
		Target:  target.Addr,
		Port:    161,
		Timeout: target.Timeout,
		Retries: target.Retries,
	}

	if p.security.Version == "3" {
		client.Version = gosnmp.Version3
		client.SecurityModel = gosnmp.UserSecurityModel
		client.MsgFlags = p.security.msgFlags()
		client.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 p.security.User,
			AuthenticationProtocol:   authProtocols[p.security.authProtoKey()],
			AuthenticationPassphrase: p.security.AuthKey,
			PrivacyProtocol:          privProtocols[p.security.privProtoKey()],
			PrivacyPassphrase:        p.security.PrivKey,
		}
	} else {
		client.Version = gosnmp.Version2c
		client.Community = target.Community
	}

	if err := client.Connect(); err != nil {
		p.logger.Debug("snmp connect failed", zap.String("addr", target.Addr), zap.Error(err))
		return NoResponse(target.Addr)
	}
	defer client.Conn.Close()

	packet, err := client.Get([]string{target.OID})
	if err != nil {
		return NoResponse(target.Addr)
	}
	if packet.Error != gosnmp.NoError {
		return NoResponse(target.Addr)
	}

	for _, pdu := range packet.Variables {
		switch pdu.Type {
		case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView:
			continue
		}
		if value := pduString(pdu); !IsNegative(value) {
			return Value(target.Addr, Extract(value))
		}
	}
	return NoResponse(target.Addr)
}

func pduString(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
