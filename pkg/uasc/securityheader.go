package uasc

import "github.com/foundry-iiot/opcua/pkg/ua"

// AsymmetricSecurityHeader prefixes an OPN chunk's body (spec §4.4
// step 3 / §6). SenderCertificate and ReceiverCertificateThumbprint
// are nil (encoded as null ByteStrings) for PolicyNone.
type AsymmetricSecurityHeader struct {
	SecurityPolicyURI              string
	SenderCertificate               []byte // DER, nil for None
	ReceiverCertificateThumbprint []byte // SHA1 thumbprint, nil for None
}

func (h AsymmetricSecurityHeader) Encode(e *ua.Encoder) {
	e.WriteString(h.SecurityPolicyURI)
	e.WriteByteString(h.SenderCertificate)
	e.WriteByteString(h.ReceiverCertificateThumbprint)
}

func DecodeAsymmetricSecurityHeader(d *ua.Decoder) (AsymmetricSecurityHeader, error) {
	var h AsymmetricSecurityHeader
	policy, _, err := d.ReadString()
	if err != nil {
		return h, err
	}
	h.SecurityPolicyURI = policy
	if h.SenderCertificate, err = d.ReadByteString(); err != nil {
		return h, err
	}
	if h.ReceiverCertificateThumbprint, err = d.ReadByteString(); err != nil {
		return h, err
	}
	return h, nil
}

// SymmetricSecurityHeader prefixes every MSG chunk's plaintext
// envelope (spec §4.4/§6), naming the channel and the security token
// currently in force.
type SymmetricSecurityHeader struct {
	ChannelID uint32
	TokenID   uint32
}

func (h SymmetricSecurityHeader) Encode(e *ua.Encoder) {
	e.WriteUint32(h.ChannelID)
	e.WriteUint32(h.TokenID)
}

func DecodeSymmetricSecurityHeader(d *ua.Decoder) (SymmetricSecurityHeader, error) {
	var h SymmetricSecurityHeader
	var err error
	if h.ChannelID, err = d.ReadUint32(); err != nil {
		return h, err
	}
	if h.TokenID, err = d.ReadUint32(); err != nil {
		return h, err
	}
	return h, nil
}
