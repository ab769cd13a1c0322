package config

import "testing"

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Configuration
		wantErr bool
	}{
		{"minimal valid", Configuration{Channel: "camera"}, false},
		{"all options", Configuration{Channel: "lidar", Online: true, MaxCount: 5, Skip: 10}, false},
		{"missing channel", Configuration{}, true},
		{"negative max-count", Configuration{Channel: "camera", MaxCount: -1}, true},
		{"negative skip", Configuration{Channel: "camera", Skip: -2}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
