package pick

import (
	"context"
	"testing"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/viewport"
)

func rect(id int, x0, y0, x1, y1 float64) layout.DrawItem {
	return layout.DrawItem{
		Ref:    layout.NodeRef(id),
		Points: []geom.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}},
	}
}

func threeRects() ([]layout.DrawItem, *Encoding) {
	items := []layout.DrawItem{
		rect(1, 1000, 1000, 2000, 2000),
		rect(2, 4000, 1000, 5000, 2000),
		rect(3, 7000, 1000, 8000, 2000),
	}
	enc, err := NewEncoding([]layout.ObjectRef{layout.NodeRef(1), layout.NodeRef(2), layout.NodeRef(3)})
	if err != nil {
		panic(err)
	}
	return items, enc
}

func built(t *testing.T, items []layout.DrawItem, enc *Encoding) *HitBuffer {
	t.Helper()
	cfg := viewport.DefaultConfig()
	h := NewHitBuffer(cfg, cfg.CanvasSize)
	if err := h.Rebuild(enc, items).Run(context.Background(), 2); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return h
}

func TestPickThreeRectangles(t *testing.T) {
	items, enc := threeRects()
	h := built(t, items, enc)

	tests := []struct {
		name   string
		p      geom.Point
		want   layout.ObjectRef
		wantOK bool
	}{
		{"first", geom.Pt(1500, 1500), layout.NodeRef(1), true},
		{"second", geom.Pt(4500, 1500), layout.NodeRef(2), true},
		{"third", geom.Pt(7500, 1500), layout.NodeRef(3), true},
		{"near corner", geom.Pt(1010, 1990), layout.NodeRef(1), true},
		{"gap", geom.Pt(3000, 1500), layout.ObjectRef{}, false},
		{"outside die", geom.Pt(-50, 1500), layout.ObjectRef{}, false},
		{"past extent", geom.Pt(10001, 10001), layout.ObjectRef{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := h.Pick(tt.p)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Pick(%v) = %v, %v; want %v, %v", tt.p, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPickBeforeBuild(t *testing.T) {
	cfg := viewport.DefaultConfig()
	h := NewHitBuffer(cfg, cfg.CanvasSize)
	if h.Ready() {
		t.Fatal("empty buffer reports ready")
	}
	if _, ok := h.Pick(geom.Pt(1500, 1500)); ok {
		t.Error("Pick before any build should report none")
	}
}

func TestPickDuringRebuild(t *testing.T) {
	items, enc := threeRects()
	h := built(t, items, enc)

	// rebuild with rectangle 1 moved away; until it finishes the old canvas answers
	moved := []layout.DrawItem{rect(1, 1000, 8000, 2000, 9000), items[1], items[2]}
	b := h.Rebuild(enc, moved)
	if b.Step(1) {
		t.Fatal("build finished after one item")
	}
	if got, ok := h.Pick(geom.Pt(1500, 1500)); !ok || got != layout.NodeRef(1) {
		t.Errorf("mid-rebuild Pick = %v, %v; want node 1 from previous build", got, ok)
	}
	if err := b.Run(context.Background(), 10); err != nil {
		t.Fatal(err)
	}
	if _, ok := h.Pick(geom.Pt(1500, 1500)); ok {
		t.Error("old location still picks after rebuild")
	}
	if got, ok := h.Pick(geom.Pt(1500, 8500)); !ok || got != layout.NodeRef(1) {
		t.Errorf("new location Pick = %v, %v", got, ok)
	}
}

func TestSupersededBuildDoesNotPublish(t *testing.T) {
	items, enc := threeRects()
	cfg := viewport.DefaultConfig()
	h := NewHitBuffer(cfg, cfg.CanvasSize)

	old := h.Rebuild(enc, items)
	newer := h.Rebuild(enc, items[:1])
	old.Step(len(items))
	if !old.Superseded() {
		t.Error("older build should be superseded")
	}
	if h.Ready() {
		t.Fatal("superseded build was published")
	}
	newer.Step(10)
	if _, ok := h.Pick(geom.Pt(4500, 1500)); ok {
		t.Error("rectangle 2 is not part of the newer build")
	}
	if done, total := newer.Progress(); done != 1 || total != 1 {
		t.Errorf("Progress() = %d/%d", done, total)
	}
}

func TestOcclusionFollowsDrawOrder(t *testing.T) {
	enc, _ := NewEncoding([]layout.ObjectRef{layout.NodeRef(1), layout.NodeRef(2)})
	items := []layout.DrawItem{
		rect(1, 1000, 1000, 3000, 3000),
		rect(2, 2000, 2000, 4000, 4000),
	}
	h := built(t, items, enc)
	if got, _ := h.Pick(geom.Pt(2500, 2500)); got != layout.NodeRef(2) {
		t.Errorf("overlap picked %v, want the later node 2", got)
	}
	if got, _ := h.Pick(geom.Pt(1500, 1500)); got != layout.NodeRef(1) {
		t.Errorf("Pick = %v, want node 1", got)
	}
}

func TestRunCancelled(t *testing.T) {
	items, enc := threeRects()
	cfg := viewport.DefaultConfig()
	h := NewHitBuffer(cfg, cfg.CanvasSize)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.Rebuild(enc, items).Run(ctx, 1); err == nil {
		t.Error("Run with a cancelled context should fail")
	}
	if h.Ready() {
		t.Error("cancelled build published")
	}
}
