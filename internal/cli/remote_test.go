package cli

import "testing"

func TestParseTarget(t *testing.T) {
	tests := []struct {
		spec     string
		wantUser string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"backup@nas", "backup", "nas", 22, false},
		{"backup@nas:2222", "backup", "nas", 2222, false},
		{"nas", "", "", 0, true},
		{"@nas", "", "", 0, true},
		{"backup@", "", "", 0, true},
		{"backup@nas:notaport", "", "", 0, true},
	}
	for _, tt := range tests {
		target, err := parseTarget(tt.spec, 22)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseTarget(%q) expected error", tt.spec)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseTarget(%q): %v", tt.spec, err)
			continue
		}
		if target.User != tt.wantUser || target.Host != tt.wantHost || target.Port != tt.wantPort {
			t.Errorf("parseTarget(%q) = %+v", tt.spec, target)
		}
	}
}
