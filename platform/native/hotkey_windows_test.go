//go:build windows

package native

import "testing"

func TestVKCode(t *testing.T) {
	tests := []struct {
		key     string
		want    uint32
		wantErr bool
	}{
		{"", 0, false},
		{"c", 0x43, false},
		{"a", 0x41, false},
		{"z", 0x5A, false},
		{"0", 0x30, false},
		{"9", 0x39, false},
		{"f8", 0x77, false},
		{"space", 0x20, false},
		{"pause", 0, true},
		{"C", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := vkCode(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("vkCode(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("vkCode(%q) = %#x, want %#x", tt.key, got, tt.want)
			}
		})
	}
}
