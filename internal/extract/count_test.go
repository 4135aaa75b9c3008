package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOfficialCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		html  string
		want  int
		found bool
	}{
		{
			name:  "counter present",
			html:  `<html><body><main><div><div></div><div><div><span>27 postings</span></div></div></div></main></body></html>`,
			want:  27,
			found: true,
		},
		{
			name:  "counter absent",
			html:  `<html><body><main><div><div></div></div></main></body></html>`,
			found: false,
		},
		{
			name:  "counter without digits",
			html:  `<html><body><main><div><div></div><div><div><span>many</span></div></div></div></main></body></html>`,
			found: false,
		},
		{
			name:  "empty page",
			html:  ``,
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := OfficialCount([]byte(tt.html))
			require.Equal(t, tt.found, ok)
			if tt.found {
				require.Equal(t, tt.want, got)
			}
		})
	}
}
