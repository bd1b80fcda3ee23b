package ui

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"math"
	"strings"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/clipboard"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/oligo/gioview/menu"
	"github.com/oligo/gioview/theme"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/compositor"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/engine"
	"github.com/OpenTraceLab/OpenTraceDie/pkg/geom"
)

// Viewer is the die window: a find bar, the stacked surfaces and a status
// line, all driving one engine.
type Viewer struct {
	window *app.Window
	eng    *engine.Engine
	loop   *loop
	log    *log.Logger
	th     *theme.Theme
	ops    op.Ops

	findEditor widget.Editor
	findBtn    widget.Clickable
	zoomInBtn  widget.Clickable
	zoomOutBtn widget.Clickable
	homeBtn    widget.Clickable
	linkBtn    widget.Clickable
	layersBtn  widget.Clickable
	layerMenu  *menu.DropdownMenu

	findIcon    *widget.Icon
	zoomInIcon  *widget.Icon
	zoomOutIcon *widget.Icon
	homeIcon    *widget.Icon
	linkIcon    *widget.Icon
	layersIcon  *widget.Icon

	// scale maps engine viewport pixels to window pixels.
	scale float32

	images map[*image.RGBA]paint.ImageOp
}

// newViewer builds a viewer for an engine whose highlight scheduler is
// sched, so pulses land on the window goroutine.
func newViewer(w *app.Window, eng *engine.Engine, sched *loop, logger *log.Logger) *Viewer {
	if logger == nil {
		logger = log.Default()
	}
	v := &Viewer{
		window: w,
		eng:    eng,
		loop:   sched,
		log:    logger,
		th:     theme.NewTheme("", nil, true),
		scale:  1,
		images: make(map[*image.RGBA]paint.ImageOp),
	}
	v.findEditor.SingleLine = true
	v.findEditor.Submit = true
	v.findEditor.SetText(eng.Query())

	v.findIcon = loadIcon(icons.ActionSearch)
	v.zoomInIcon = loadIcon(icons.ActionZoomIn)
	v.zoomOutIcon = loadIcon(icons.ActionZoomOut)
	v.homeIcon = loadIcon(icons.ActionHome)
	v.linkIcon = loadIcon(icons.ContentLink)
	v.layersIcon = loadIcon(icons.MapsLayers)
	v.layerMenu = v.buildLayerMenu()

	eng.OnPick(func(res engine.PickResult) {
		if res.Found {
			v.Logf("[PICK] %s", res.Ref)
		}
	})
	return v
}

func loadIcon(data []byte) *widget.Icon {
	icon, err := widget.NewIcon(data)
	if err != nil {
		return nil
	}
	return icon
}

// Logf records a line in the viewer log.
func (v *Viewer) Logf(format string, args ...any) {
	v.log.Printf(format, args...)
}

// Run blocks processing window events until the window closes.
func (v *Viewer) Run() error {
	for {
		e := v.window.Event()
		switch ev := e.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&v.ops, ev)
			v.loop.drain()
			if !v.eng.StepHits() {
				gtx.Execute(op.InvalidateCmd{})
			}
			v.layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}

func (v *Viewer) layout(gtx layout.Context) layout.Dimensions {
	paint.FillShape(gtx.Ops, v.th.Palette.Bg, clip.Rect{Max: gtx.Constraints.Max}.Op())

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(v.layoutToolbar),
		layout.Flexed(1, v.layoutDie),
		layout.Rigid(v.layoutStatusBar),
	)
}

func (v *Viewer) layoutToolbar(gtx layout.Context) layout.Dimensions {
	for {
		ev, ok := v.findEditor.Update(gtx)
		if !ok {
			break
		}
		if sub, ok := ev.(widget.SubmitEvent); ok {
			v.find(sub.Text)
		}
	}
	if v.findBtn.Clicked(gtx) {
		v.find(v.findEditor.Text())
	}
	if v.zoomInBtn.Clicked(gtx) {
		v.eng.ZoomIn()
	}
	if v.zoomOutBtn.Clicked(gtx) {
		v.eng.ZoomOut()
	}
	if v.homeBtn.Clicked(gtx) {
		v.eng.ResetZoom()
	}
	if v.linkBtn.Clicked(gtx) {
		link := v.eng.DeepLink()
		gtx.Execute(clipboard.WriteCmd{Type: "application/text", Data: io.NopCloser(strings.NewReader(link))})
		v.Logf("[LINK] ?%s", link)
	}
	if v.layersBtn.Clicked(gtx) && v.layerMenu != nil {
		v.layerMenu.ToggleVisibility(gtx)
	}

	inset := layout.Inset{Left: unit.Dp(8), Right: unit.Dp(8), Top: unit.Dp(6), Bottom: unit.Dp(6)}
	return inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				ed := material.Editor(v.th.Theme, &v.findEditor, "node id, node name or transistor")
				return ed.Layout(gtx)
			}),
			layout.Rigid(v.iconButton(&v.findBtn, v.findIcon, "Find")),
			layout.Rigid(v.iconButton(&v.zoomInBtn, v.zoomInIcon, "Zoom in")),
			layout.Rigid(v.iconButton(&v.zoomOutBtn, v.zoomOutIcon, "Zoom out")),
			layout.Rigid(v.iconButton(&v.homeBtn, v.homeIcon, "Reset zoom")),
			layout.Rigid(v.iconButton(&v.linkBtn, v.linkIcon, "Copy link")),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				dims := v.iconButton(&v.layersBtn, v.layersIcon, "Layers")(gtx)
				if v.layerMenu != nil {
					v.layerMenu.Layout(gtx, v.th)
				}
				return dims
			}),
		)
	})
}

func (v *Viewer) iconButton(btn *widget.Clickable, icon *widget.Icon, desc string) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Left: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			if icon == nil {
				return material.Button(v.th.Theme, btn, desc).Layout(gtx)
			}
			b := material.IconButton(v.th.Theme, btn, icon, desc)
			b.Size = unit.Dp(18)
			b.Inset = layout.UniformInset(unit.Dp(6))
			return b.Layout(gtx)
		})
	}
}

func (v *Viewer) buildLayerMenu() *menu.DropdownMenu {
	layers := v.eng.Compositor().Layers()
	if len(layers) == 0 {
		return nil
	}
	palette := v.eng.Compositor().Palette()
	opts := make([]menu.MenuOption, 0, len(layers))
	for _, ls := range layers {
		idx := ls.Index
		label := ls.Name
		swatch := palette.Layer(idx)
		opts = append(opts, menu.MenuOption{
			OnClicked: func() error {
				visible := !v.eng.Compositor().LayerVisible(idx)
				v.eng.SetLayerVisible(idx, visible)
				v.Logf("[LAYER] %s visible=%v", label, visible)
				return nil
			},
			Layout: func(gtx menu.C, th *theme.Theme) menu.D {
				mark := "  "
				if v.eng.Compositor().LayerVisible(idx) {
					mark = "✓ "
				}
				lbl := material.Body1(th.Theme, mark+label)
				lbl.Color = swatch
				lbl.Color.A = 0xFF
				return layout.Inset{Left: unit.Dp(4), Right: unit.Dp(4)}.Layout(gtx, lbl.Layout)
			},
		})
	}
	showAll := menu.MenuOption{
		OnClicked: func() error {
			v.eng.Compositor().ShowLayers()
			v.Logf("[LAYER] all visible")
			return nil
		},
		Layout: func(gtx menu.C, th *theme.Theme) menu.D {
			return layout.Inset{Left: unit.Dp(4), Right: unit.Dp(4)}.Layout(gtx, material.Body1(th.Theme, "Show all").Layout)
		},
	}
	drop := menu.NewDropdownMenu([][]menu.MenuOption{opts, {showAll}})
	drop.MaxWidth = unit.Dp(220)
	return drop
}

func (v *Viewer) find(query string) {
	res := v.eng.Find(query)
	v.Logf("[FIND] %q: %s", query, res.Status)
	if len(res.Dropped) > 0 {
		v.Logf("[FIND] no match for %s", strings.Join(res.Dropped, ", "))
	}
}

// layoutDie draws the surfaces and handles pointer and key input over
// them.
func (v *Viewer) layoutDie(gtx layout.Context) layout.Dimensions {
	cfg := v.eng.Config()
	size := gtx.Constraints.Max
	sx := float32(size.X) / float32(cfg.ViewportWidth)
	sy := float32(size.Y) / float32(cfg.ViewportHeight)
	v.scale = float32(math.Min(float64(sx), float64(sy)))
	if v.scale <= 0 {
		v.scale = 1
	}

	v.handleKeys(gtx)
	v.handlePointer(gtx)

	win := image.Pt(int(float32(cfg.ViewportWidth)*v.scale), int(float32(cfg.ViewportHeight)*v.scale))
	area := clip.Rect{Max: win}.Push(gtx.Ops)
	paint.FillShape(gtx.Ops, color.NRGBA{A: 0xFF}, clip.Rect{Max: win}.Op())
	v.drawSurfaces(gtx)
	event.Op(gtx.Ops, v)
	area.Pop()

	if !v.eng.PickReady() {
		layout.Inset{Top: unit.Dp(8), Left: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			label := material.Caption(v.th.Theme, "Building pick buffer")
			label.Color = v.th.Palette.Fg
			label.Color.A = 160
			return label.Layout(gtx)
		})
	}
	return layout.Dimensions{Size: size}
}

func (v *Viewer) drawSurfaces(gtx layout.Context) {
	cfg := v.eng.Config()
	comp := v.eng.Compositor()
	view := comp.View()
	origin := cfg.Origin(view)
	k := float32(cfg.ScaledSize(view) / float64(cfg.CanvasSize))

	tr := f32.Affine2D{}.
		Scale(f32.Point{}, f32.Pt(k, k)).
		Offset(f32.Pt(float32(origin.X), float32(origin.Y))).
		Scale(f32.Point{}, f32.Pt(v.scale, v.scale))
	defer op.Affine(tr).Push(gtx.Ops).Pop()

	surfaces := comp.Surfaces()
	stack := []*image.RGBA{}
	if surfaces[compositor.SurfaceBackground].Visible {
		stack = append(stack, comp.Background())
	}
	if ov := comp.Overlay(); ov != nil && surfaces[compositor.SurfaceOverlay].Visible {
		stack = append(stack, ov)
	}
	if surfaces[compositor.SurfaceHighlight].Visible {
		stack = append(stack, comp.Highlight())
	}
	live := make(map[*image.RGBA]paint.ImageOp, len(stack))
	for _, img := range stack {
		imgOp, ok := v.images[img]
		if !ok {
			imgOp = paint.NewImageOp(img)
			imgOp.Filter = paint.FilterNearest
		}
		live[img] = imgOp
		imgOp.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
	}
	v.images = live
}

func (v *Viewer) toEngine(p f32.Point) geom.Point {
	return geom.Pt(float64(p.X/v.scale), float64(p.Y/v.scale))
}

func (v *Viewer) handlePointer(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  v,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -1 << 20, Max: 1 << 20},
		})
		if !ok {
			break
		}
		pev, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		p := v.toEngine(pev.Position)
		switch pev.Kind {
		case pointer.Press:
			if pev.Buttons == pointer.ButtonPrimary {
				gtx.Execute(key.FocusCmd{Tag: v})
				v.eng.PointerDown(p)
			}
		case pointer.Drag:
			v.eng.PointerMove(p)
		case pointer.Release:
			if res, clicked := v.eng.PointerUp(p, pev.Modifiers.Contain(key.ModShift)); clicked {
				v.Logf("[STATUS] %s", res.Status)
			}
		case pointer.Scroll:
			if pev.Scroll.Y == 0 {
				continue
			}
			factor := v.eng.Config().ZoomStep
			if pev.Scroll.Y > 0 {
				factor = 1 / factor
			}
			v.eng.ZoomAt(p, factor)
		}
		gtx.Execute(op.InvalidateCmd{})
	}
}

var viewerKeys = []key.Filter{
	{Name: "Z", Optional: key.ModShift},
	{Name: "X"},
	{Name: "+", Optional: key.ModShift},
	{Name: "=", Optional: key.ModShift},
	{Name: "-"},
	{Name: "0"},
	{Name: "N"},
	{Name: "P"},
	{Name: "/", Required: key.ModShift},
	{Name: ",", Required: key.ModShift},
	{Name: ".", Required: key.ModShift},
	{Name: "?", Optional: key.ModShift},
	{Name: "<", Optional: key.ModShift},
	{Name: ">", Optional: key.ModShift},
}

// keyRune maps a key press to the rune engine.HandleKey understands. Gio
// names most keys by their unshifted glyph, so '?', '<' and '>' arrive as
// shifted '/', ',' and '.' on a US layout.
func keyRune(e key.Event) (rune, bool) {
	shift := e.Modifiers.Contain(key.ModShift)
	switch e.Name {
	case "/":
		if shift {
			return '?', true
		}
	case ",":
		if shift {
			return '<', true
		}
	case ".":
		if shift {
			return '>', true
		}
	case "?":
		return '?', true
	case "<":
		return '<', true
	case ">":
		return '>', true
	case "Z":
		if shift {
			return 'Z', true
		}
		return 'z', true
	case "X":
		return 'x', true
	case "+", "=":
		return '>', true
	case "-":
		return '<', true
	case "0":
		return '?', true
	case "N":
		return 'n', true
	case "P":
		return 'p', true
	}
	return 0, false
}

func (v *Viewer) handleKeys(gtx layout.Context) {
	filters := make([]event.Filter, 0, len(viewerKeys)+1)
	filters = append(filters, key.FocusFilter{Target: v})
	for _, f := range viewerKeys {
		f.Focus = v
		filters = append(filters, f)
	}
	for {
		ev, ok := gtx.Event(filters...)
		if !ok {
			break
		}
		e, ok := ev.(key.Event)
		if !ok || e.State != key.Press {
			continue
		}
		if r, ok := keyRune(e); ok && v.eng.HandleKey(r) {
			gtx.Execute(op.InvalidateCmd{})
		}
	}
}

func (v *Viewer) layoutStatusBar(gtx layout.Context) layout.Dimensions {
	inset := layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16), Top: unit.Dp(8), Bottom: unit.Dp(8)}
	return inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				msg := v.eng.Status().String()
				if msg == "" {
					msg = "Ready"
				}
				return material.Body2(v.th.Theme, msg).Layout(gtx)
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions { return layout.Dimensions{} }),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				view := v.eng.View()
				lbl := material.Caption(v.th.Theme, fmt.Sprintf("zoom %.1f  ?%s", view.Zoom, v.eng.DeepLink()))
				lbl.Color = v.th.Palette.Fg
				lbl.Color.A = 180
				return lbl.Layout(gtx)
			}),
		)
	})
}
