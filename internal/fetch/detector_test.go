package fetch

import "testing"

func TestHeuristicDetector(t *testing.T) {
	d := NewHeuristicDetector(10, "#content", []string{"__NEXT_DATA__"})

	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "small body triggers", body: "hi", want: true},
		{name: "keyword triggers", body: "<html>window.__NEXT_DATA__ = {}</html>", want: true},
		{name: "missing selector triggers", body: "<html><body><div id=\"other\">long enough body</div></body></html>", want: true},
		{name: "all conditions satisfied", body: "<div id=\"content\">ok</div> and enough bytes", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.NeedsRender([]byte(tt.body))
			if got != tt.want {
				t.Fatalf("expected %v got %v", tt.want, got)
			}
		})
	}
}

func TestHeuristicDetector_NilAndEmptyConfig(t *testing.T) {
	var nilDetector *HeuristicDetector
	if nilDetector.NeedsRender([]byte("anything")) {
		t.Fatal("nil detector must never promote")
	}

	d := NewHeuristicDetector(0, "", nil)
	if d.NeedsRender([]byte("<html><body>plain page</body></html>")) {
		t.Fatal("detector with no thresholds must never promote")
	}
}
