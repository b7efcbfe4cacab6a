package main

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/GophTweeter/internal/certgen"
)

func TestRun_WritesLoadableKeyPair(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	var out bytes.Buffer

	err := run([]string{"-dir", dir, "-hosts", "tweets.local,10.0.0.5", "-valid-for", "2h"}, &out)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	certPath := filepath.Join(dir, "server.crt")
	keyPath := filepath.Join(dir, "server.key")
	want := "TLS_CERT=" + certPath + "\nTLS_KEY=" + keyPath + "\n"
	if out.String() != want {
		t.Errorf("output = %q; want %q", out.String(), want)
	}

	if _, err := certgen.ServerTLSConfig(certPath, keyPath); err != nil {
		t.Fatalf("emitted pair does not load: %v", err)
	}

	raw, err := os.ReadFile(certPath)
	if err != nil {
		t.Fatal(err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		t.Fatal("certificate file is not PEM")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}
	if err := cert.VerifyHostname("tweets.local"); err != nil {
		t.Errorf("VerifyHostname(tweets.local): %v", err)
	}
	if err := cert.VerifyHostname("10.0.0.5"); err != nil {
		t.Errorf("VerifyHostname(10.0.0.5): %v", err)
	}
	if life := cert.NotAfter.Sub(cert.NotBefore); life > 2*time.Hour+2*time.Minute {
		t.Errorf("lifetime = %v; want about 2h", life)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown flag", []string{"-nope"}, "flag provided but not defined"},
		{"bad duration", []string{"-valid-for", "soon"}, "invalid value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(append(tt.args, "-dir", t.TempDir()), &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("run error = %v; want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRun_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	err := run([]string{"-dir", filepath.Join(file, "certs")}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "write certificate") {
		t.Errorf("run error = %v; want write certificate failure", err)
	}
}
