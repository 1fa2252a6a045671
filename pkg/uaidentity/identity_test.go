package uaidentity

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/foundry-iiot/opcua/pkg/ua"
	"github.com/foundry-iiot/opcua/pkg/uacrypto"
)

func selfSignedKeyPairForTest(t *testing.T) (*x509.Certificate, *rsa.PrivateKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test-server"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	return cert, priv
}

func TestAnonymousBuildToken(t *testing.T) {
	a := Anonymous{}
	if a.TokenType() != 0 {
		t.Fatalf("Anonymous.TokenType() = %d, want 0", a.TokenType())
	}
	obj, err := a.BuildToken("anonymous-policy", nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if !obj.TypeID.Equal(AnonymousIdentityTokenTypeID) {
		t.Fatalf("unexpected TypeID: %+v", obj.TypeID)
	}
	d := ua.NewDecoder(obj.Body)
	policyID, _, err := d.ReadString()
	if err != nil || policyID != "anonymous-policy" {
		t.Fatalf("policyID round trip mismatch: %q err %v", policyID, err)
	}
}

func TestUserNameBuildTokenPlaintext(t *testing.T) {
	u := UserName{User: "operator", Password: "secret"}
	if u.TokenType() != 1 {
		t.Fatalf("UserName.TokenType() = %d, want 1", u.TokenType())
	}
	obj, err := u.BuildToken("username-policy", nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	d := ua.NewDecoder(obj.Body)
	if _, _, err := d.ReadString(); err != nil { // policyId
		t.Fatal(err)
	}
	user, _, err := d.ReadString()
	if err != nil || user != "operator" {
		t.Fatalf("user round trip mismatch: %q err %v", user, err)
	}
	password, err := d.ReadByteString()
	if err != nil || string(password) != "secret" {
		t.Fatalf("plaintext password round trip mismatch: %q err %v", password, err)
	}
	algorithm, _, err := d.ReadString()
	if err != nil || algorithm != "" {
		t.Fatalf("unencrypted token must carry no algorithm URI, got %q", algorithm)
	}
}

func TestUserNameBuildTokenEncrypted(t *testing.T) {
	cert, _ := selfSignedKeyPairForTest(t)
	u := UserName{User: "operator", Password: "secret"}
	obj, err := u.BuildToken("username-policy", cert, []byte("server-nonce"), uacrypto.PolicyBasic256Sha256)
	if err != nil {
		t.Fatal(err)
	}
	d := ua.NewDecoder(obj.Body)
	if _, _, err := d.ReadString(); err != nil { // policyId
		t.Fatal(err)
	}
	if _, _, err := d.ReadString(); err != nil { // user
		t.Fatal(err)
	}
	ciphertext, err := d.ReadByteString()
	if err != nil {
		t.Fatal(err)
	}
	if string(ciphertext) == "secret" {
		t.Fatal("encrypted password must not travel in plaintext")
	}
	algorithm, _, err := d.ReadString()
	if err != nil || algorithm != "http://www.w3.org/2001/04/xmlenc#rsa-oaep" {
		t.Fatalf("unexpected algorithm URI: %q err %v", algorithm, err)
	}
}

func TestUserNameBuildTokenEncryptedRequiresServerCert(t *testing.T) {
	u := UserName{User: "operator", Password: "secret"}
	if _, err := u.BuildToken("p", nil, nil, uacrypto.PolicyBasic256Sha256); err == nil {
		t.Fatal("expected error when encrypting without a server certificate")
	}
}

func TestX509BuildToken(t *testing.T) {
	cert, priv := selfSignedKeyPairForTest(t)
	x := X509{Certificate: cert, PrivateKey: priv}
	if x.TokenType() != 2 {
		t.Fatalf("X509.TokenType() = %d, want 2", x.TokenType())
	}
	obj, err := x.BuildToken("x509-policy", nil, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	d := ua.NewDecoder(obj.Body)
	if _, _, err := d.ReadString(); err != nil { // policyId
		t.Fatal(err)
	}
	raw, err := d.ReadByteString()
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != string(cert.Raw) {
		t.Fatal("certificate DER did not round trip")
	}
}

func TestX509BuildTokenRequiresCertificate(t *testing.T) {
	x := X509{}
	if _, err := x.BuildToken("p", nil, nil, ""); err == nil {
		t.Fatal("expected error when Certificate is nil")
	}
}
