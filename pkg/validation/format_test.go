package validation

import "testing"

func TestValidateOutputFormat(t *testing.T) {
	testCases := []struct {
		name      string
		format    string
		wantError bool
	}{
		{"Pretty", "pretty", false},
		{"CSV", "csv", false},
		{"Unknown", "xml", true},
		{"Empty", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateOutputFormat(tc.format)
			if tc.wantError && err == nil {
				t.Error("expected an error")
			}
			if !tc.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
