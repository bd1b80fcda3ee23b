package cmd

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const demoLayout = "../../../pkg/layout/testdata/demo.chip"

// run executes the root command with args against a throwaway settings
// file and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, configPath = false, ""
	renderOutput, renderLink, renderQuery, renderTheme, renderWindow = "die.png", "", "", "", false
	renderLayers, renderNoHL = nil, false
	pickLink, pickScreen = "", false
	linkQuery = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFindCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		wants []string
	}{
		{"by id", []string{"42"}, []string{"Find results: node: 42 clk0", "link: ?panx="}},
		{"by name", []string{"vcc"}, []string{"node: 1 vcc"}},
		{"transistor", []string{"t1"}, []string{"transistor: t1"}},
		{"several", []string{"vcc,", "db0", "t2"}, []string{"multiple objects found", "(3 objects)", "&find=vcc%2C+db0+t2"}},
		{"nothing", []string{"nosuch"}, []string{"nothing found!", "no match: nosuch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"find", demoLayout}, tt.args...)...)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			for _, want := range tt.wants {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestPickCommand(t *testing.T) {
	out, err := run(t, "pick", demoLayout, "4500", "1500")
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	for _, want := range []string{"x: 4500 y: 1500", "node: 42 clk0", "segments: 1", "aliases: cp1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "pick", demoLayout, "9500", "9500")
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if !strings.Contains(out, "x: 9500\ny: 9500") {
		t.Errorf("miss should report bare coordinates, got:\n%s", out)
	}
}

func TestPickRejectsBadCoordinate(t *testing.T) {
	if _, err := run(t, "pick", demoLayout, "abc", "1"); err == nil {
		t.Fatal("expected an error for a non-numeric x")
	}
}

func TestLinkCommands(t *testing.T) {
	out, err := run(t, "link", "encode")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.TrimSpace(out) != "?panx=300.0&pany=300.0&zoom=1.0" {
		t.Errorf("encode = %q", out)
	}

	out, err = run(t, "link", "decode", "?find=clk0&zoom=2")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(out, "view: unchanged") || !strings.Contains(out, "find: clk0") {
		t.Errorf("decode output:\n%s", out)
	}
}

func TestRenderCommand(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.png")
	out, err := run(t, "render", demoLayout, "-o", dst, "--find", "clk0", "--window")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "wrote "+dst) {
		t.Errorf("render output:\n%s", out)
	}

	f, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		t.Errorf("empty image %v", b)
	}
}

func TestRenderLayersAndHighlight(t *testing.T) {
	dir := t.TempDir()
	decode := func(name string) *image.RGBA {
		t.Helper()
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		img, err := png.Decode(f)
		if err != nil {
			t.Fatalf("%s is not a PNG: %v", name, err)
		}
		rgba := image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
		return rgba
	}
	render := func(name string, args ...string) *image.RGBA {
		t.Helper()
		args = append([]string{"render", demoLayout, "-o", filepath.Join(dir, name)}, args...)
		if _, err := run(t, args...); err != nil {
			t.Fatalf("render %v: %v", args, err)
		}
		return decode(name)
	}

	// centre of node 1 (vcc, layer 4) on the 2000px canvas, y inverted
	vcc := image.Pt(300, 1700)
	all := render("all.png")
	metalOnly := render("metal.png", "--layers", "0")
	if all.RGBAAt(vcc.X, vcc.Y) == metalOnly.RGBAAt(vcc.X, vcc.Y) {
		t.Errorf("--layers 0 still draws layer 4 at %v", vcc)
	}

	lit := render("lit.png", "--find", "vcc")
	dark := render("dark.png", "--find", "vcc", "--no-highlight")
	if lit.RGBAAt(vcc.X, vcc.Y) == dark.RGBAAt(vcc.X, vcc.Y) {
		t.Error("--no-highlight left the highlight in place")
	}
	if dark.RGBAAt(vcc.X, vcc.Y) != all.RGBAAt(vcc.X, vcc.Y) {
		t.Error("--no-highlight should match the plain render")
	}
}

func TestRenderUnknownTheme(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.png")
	if _, err := run(t, "render", demoLayout, "-o", dst, "--theme", "neon"); err == nil {
		t.Fatal("expected an error for an unknown theme")
	}
}

func TestInspectCommand(t *testing.T) {
	out, err := run(t, "inspect", demoLayout)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Nodes: 4 (3 named)", "Transistors: 2", "Segments: 6", "polysilicon"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMissingLayout(t *testing.T) {
	if _, err := run(t, "find", "does-not-exist.chip", "1"); err == nil {
		t.Fatal("expected an error for a missing layout")
	}
}
