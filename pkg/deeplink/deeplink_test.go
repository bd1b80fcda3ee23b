package deeplink

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/viewport"
)

func TestRoundTrip(t *testing.T) {
	d := NewDecoder(nil)
	tests := []struct {
		name  string
		view  viewport.ViewState
		query string
	}{
		{"with query", viewport.ViewState{CenterX: 512.3, CenterY: 88.0, Zoom: 4.0}, "res"},
		{"no query", viewport.ViewState{CenterX: 300, CenterY: 300, Zoom: 1}, ""},
		{"escaped query", viewport.ViewState{CenterX: 1.5, CenterY: 2.5, Zoom: 12}, "clk0, t1&x=y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := d.Decode(Encode(tt.view, tt.query))
			if link.View == nil {
				t.Fatal("View missing after round trip")
			}
			if *link.View != tt.view {
				t.Errorf("View = %+v, want %+v", *link.View, tt.view)
			}
			if link.Query != tt.query {
				t.Errorf("Query = %q, want %q", link.Query, tt.query)
			}
		})
	}
}

func TestEncodeFormat(t *testing.T) {
	got := Encode(viewport.ViewState{CenterX: 512.34, CenterY: 88, Zoom: 4}, "res")
	want := "panx=512.3&pany=88.0&zoom=4.0&find=res"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestDecodeFailFast(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantView  bool
		wantQuery string
		wantLog   string
	}{
		{"empty", "", false, "", ""},
		{"leading question mark", "?find=abc", false, "abc", ""},
		{"trailing slash", "panx=1&pany=2&zoom=3/", true, "", ""},
		{"partial view", "panx=1&pany=2&find=x", false, "x", ""},
		{"unknown key stops", "find=a&bogus=1&panx=1&pany=2&zoom=3", false, "a", "unrecognised"},
		{"unknown key lists known", "bogus=1", false, "", "known: find, panx, pany, zoom"},
		{"malformed stops", "panx=1&pany&zoom=2&find=q", false, "", "malformed"},
		{"double equals", "find=a=b", false, "", "malformed"},
		{"bad number", "panx=1&pany=abc&zoom=3", false, "", "bad value"},
		{"bad escape", "find=%zz", false, "", "bad value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			d := NewDecoder(log.New(&buf, "", 0))
			link := d.Decode(tt.in)
			if (link.View != nil) != tt.wantView {
				t.Errorf("View = %v, want present=%v", link.View, tt.wantView)
			}
			if link.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", link.Query, tt.wantQuery)
			}
			if tt.wantLog == "" && buf.Len() != 0 {
				t.Errorf("unexpected log output %q", buf.String())
			}
			if tt.wantLog != "" && !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log %q does not mention %q", buf.String(), tt.wantLog)
			}
		})
	}
}

func TestDecodeLenient(t *testing.T) {
	d := NewDecoder(nil)
	d.Lenient = true
	link := d.Decode("panx=1&bogus=1&pany=2&junk&zoom=3&find=q")
	if link.View == nil || *link.View != (viewport.ViewState{CenterX: 1, CenterY: 2, Zoom: 3}) {
		t.Errorf("View = %v", link.View)
	}
	if link.Query != "q" {
		t.Errorf("Query = %q, want q", link.Query)
	}
}

func TestRegister(t *testing.T) {
	d := NewDecoder(nil)
	var steps string
	d.Register("steps", func(value string, _ *State) error {
		steps = value
		return nil
	})
	link := d.Decode("steps=40&find=clk0")
	if steps != "40" {
		t.Errorf("steps handler got %q", steps)
	}
	if link.Query != "clk0" {
		t.Errorf("Query = %q", link.Query)
	}
	want := []string{"find", "panx", "pany", "steps", "zoom"}
	if got := d.Keys(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}
