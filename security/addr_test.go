package security

import "testing"

func TestHostOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "1.2.3.4", want: "1.2.3.4", ok: true},
		{in: " 1.2.3.4 ", want: "1.2.3.4", ok: true},
		{in: "1.2.3.4:5154", want: "1.2.3.4", ok: true},
		{in: "::ffff:1.2.3.4", want: "1.2.3.4", ok: true},
		{in: "[2001:db8::1]:5154", want: "2001:db8::1", ok: true},
		{in: "fe80::1%eth0", want: "fe80::1", ok: true},
		{in: "", ok: false},
		{in: "not-an-ip", ok: false},
	}

	for _, tt := range tests {
		got, ok := HostOf(tt.in)
		if ok != tt.ok {
			t.Fatalf("HostOf(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
		if ok && got.String() != tt.want {
			t.Fatalf("HostOf(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSameHost(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.2.3.4", "1.2.3.4", true},
		{"1.2.3.4", "1.2.3.4:5154", true},
		{"::ffff:9.9.9.9", "9.9.9.9", true},
		{"9.9.9.9", "8.8.8.8", false},
		{"host.example", "host.example", true},
		{"host.example", "HOST.example", false},
		{"1.2.3.4", "host.example", false},
		{"", "", true},
	}

	for _, tt := range tests {
		if got := SameHost(tt.a, tt.b); got != tt.want {
			t.Fatalf("SameHost(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
