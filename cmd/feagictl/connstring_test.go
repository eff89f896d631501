package main

import "testing"

func TestParseConnString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantHost string
		wantTLS  bool
	}{
		{name: "simple host", input: "feagi://localhost:8081", wantHost: "localhost:8081"},
		{name: "host without port gets default", input: "feagi://localhost", wantHost: "localhost:8081"},
		{name: "bare host:port, no scheme", input: "localhost:9090", wantHost: "localhost:9090"},
		{name: "TLS scheme", input: "feagi+tls://localhost:8081", wantHost: "localhost:8081", wantTLS: true},
		{name: "empty string", wantErr: true},
		{name: "wrong scheme", input: "qubicdb://localhost:8081", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := parseConnString(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info.Host != tt.wantHost {
				t.Errorf("host: got %q, want %q", info.Host, tt.wantHost)
			}
			if info.TLS != tt.wantTLS {
				t.Errorf("tls: got %v, want %v", info.TLS, tt.wantTLS)
			}
		})
	}
}

func TestConnInfoBaseURL(t *testing.T) {
	info := &connInfo{Host: "localhost:8081"}
	if info.BaseURL() != "http://localhost:8081" {
		t.Errorf("BaseURL: got %q", info.BaseURL())
	}

	info.TLS = true
	if info.BaseURL() != "https://localhost:8081" {
		t.Errorf("BaseURL TLS: got %q", info.BaseURL())
	}
}

func TestConnInfoString(t *testing.T) {
	info := &connInfo{Host: "localhost:8081"}
	if info.String() != "feagi://localhost:8081" {
		t.Errorf("String: got %q", info.String())
	}
	info.TLS = true
	if info.String() != "feagi+tls://localhost:8081" {
		t.Errorf("String TLS: got %q", info.String())
	}
}
