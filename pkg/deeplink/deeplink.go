// Package deeplink serializes the view position and active search into a
// URL query string and parses it back.
//
//	panx=512.3&pany=88.0&zoom=4.0&find=clk0%2Cres
package deeplink

import (
	"fmt"
	"io"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceDie/pkg/viewport"
)

// Keys understood by every decoder.
const (
	KeyPanX = "panx"
	KeyPanY = "pany"
	KeyZoom = "zoom"
	KeyFind = "find"
)

// Link is the state carried by a deep link. View is nil unless panx, pany
// and zoom were all present and valid. Values are not clamped here.
type Link struct {
	View  *viewport.ViewState
	Query string
}

// Encode renders a view and optional search query. Coordinates keep one
// decimal place.
func Encode(v viewport.ViewState, query string) string {
	var b strings.Builder
	b.WriteString(KeyPanX + "=" + strconv.FormatFloat(v.CenterX, 'f', 1, 64))
	b.WriteString("&" + KeyPanY + "=" + strconv.FormatFloat(v.CenterY, 'f', 1, 64))
	b.WriteString("&" + KeyZoom + "=" + strconv.FormatFloat(v.Zoom, 'f', 1, 64))
	if query != "" {
		b.WriteString("&" + KeyFind + "=" + url.QueryEscape(query))
	}
	return b.String()
}

// Handler applies one key's value to the link being decoded. A returned
// error stops (or, when lenient, skips) the pair.
type Handler func(value string, st *State) error

// State accumulates a decode in progress.
type State struct {
	panX, panY, zoom          float64
	havePanX, havePanY, haveZ bool
	query                     string
}

// SetQuery records the search query.
func (s *State) SetQuery(q string) { s.query = q }

// Decoder parses deep links through a table of key handlers.
type Decoder struct {
	// Lenient skips a bad pair and continues instead of stopping at it.
	Lenient bool

	logger   *log.Logger
	handlers map[string]Handler
}

// NewDecoder returns a decoder for the default keys. Problems are reported
// on logger; nil discards them.
func NewDecoder(logger *log.Logger) *Decoder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	d := &Decoder{
		logger:   logger,
		handlers: make(map[string]Handler),
	}
	d.Register(KeyPanX, floatHandler(func(s *State, f float64) { s.panX, s.havePanX = f, true }))
	d.Register(KeyPanY, floatHandler(func(s *State, f float64) { s.panY, s.havePanY = f, true }))
	d.Register(KeyZoom, floatHandler(func(s *State, f float64) { s.zoom, s.haveZ = f, true }))
	d.Register(KeyFind, func(value string, s *State) error {
		q, err := url.QueryUnescape(value)
		if err != nil {
			return err
		}
		s.SetQuery(q)
		return nil
	})
	return d
}

// Register adds or replaces the handler for key. Collaborators use it for
// their own parameters.
func (d *Decoder) Register(key string, h Handler) {
	d.handlers[key] = h
}

// Keys returns the registered keys in sorted order.
func (d *Decoder) Keys() []string {
	keys := make([]string, 0, len(d.handlers))
	for k := range d.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func floatHandler(set func(*State, float64)) Handler {
	return func(value string, s *State) error {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		set(s, f)
		return nil
	}
}

// Decode parses s. A leading '?' is ignored and a trailing '/' is stripped
// from each value. A malformed pair, unknown key or bad value is logged and
// ends parsing; what was read before it is kept.
func (d *Decoder) Decode(s string) Link {
	s = strings.TrimPrefix(s, "?")
	var st State

	if s != "" {
		for _, part := range strings.Split(s, "&") {
			if err := d.decodePair(part, &st); err != nil {
				d.logger.Printf("deep link: %v", err)
				if !d.Lenient {
					break
				}
			}
		}
	}

	link := Link{Query: st.query}
	if st.havePanX && st.havePanY && st.haveZ {
		link.View = &viewport.ViewState{CenterX: st.panX, CenterY: st.panY, Zoom: st.zoom}
	}
	return link
}

func (d *Decoder) decodePair(part string, st *State) error {
	kv := strings.Split(part, "=")
	if len(kv) != 2 {
		return fmt.Errorf("malformed parameter %q", part)
	}
	key := kv[0]
	value := strings.TrimSuffix(kv[1], "/")

	h, ok := d.handlers[key]
	if !ok {
		return fmt.Errorf("unrecognised parameter %q (known: %s)", key, strings.Join(d.Keys(), ", "))
	}
	if err := h(value, st); err != nil {
		return fmt.Errorf("bad value for %s: %w", key, err)
	}
	return nil
}
