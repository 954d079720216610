package canon

import "testing"

func TestPrefixLength(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"24", 24},
		{"/24", 24},
		{"255.255.255.0", 24},
		{"255.255.254.0", 23},
		{"255.255.255.255", 32},
		{"0.0.0.0", 0},
		{"", 32},
		{"garbage", 32},
		{"300", 32},
		{"64", 64}, // IPv6 prefix
	}

	for _, tt := range tests {
		if got := PrefixLength(tt.input); got != tt.want {
			t.Errorf("PrefixLength(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		addr string
		mask string
		want string
	}{
		{"10.177.30.213", "24", "10.177.30.213/24"},
		{"10.177.30.213", "255.255.255.0", "10.177.30.213/24"},
		{"10.177.30.213", "", "10.177.30.213/32"},
		{"10.177.30.213/24", "", "10.177.30.213/24"},
		{"", "24", ""},
	}

	for _, tt := range tests {
		if got := WithPrefix(tt.addr, tt.mask); got != tt.want {
			t.Errorf("WithPrefix(%q, %q) = %q, want %q", tt.addr, tt.mask, got, tt.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Cisco", "cisco"},
		{"Cisco Systems, Inc.", "cisco-systems-inc"},
		{"Main Site (DC-1)", "main-site-dc-1"},
		{"Köln Süd", "koln-sud"},
		{"Москва", "moskva"},
		{"--trim--", "trim"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Slug(tt.input); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
