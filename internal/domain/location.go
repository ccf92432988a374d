package domain

import "strconv"

// Key identifies one shelf slot: a shelf letter and a layer number.
type Key struct {
	Shelf string
	Layer int
}

func (k Key) String() string {
	return k.Shelf + strconv.Itoa(k.Layer)
}

// Shelves lists the shelf letters in display order.
var Shelves = []string{"A", "B", "C", "D", "E"}

// shelfLayers is the static adjacency table: which layers each shelf has,
// listed top to bottom. Shelf E has only a top layer.
var shelfLayers = map[string][]int{
	"A": {3, 2, 1},
	"B": {3, 2, 1},
	"C": {4, 3, 2, 1},
	"D": {4, 3, 2, 1},
	"E": {4},
}

// IsValid reports whether the shelf carries the given layer.
func IsValid(shelf string, layer int) bool {
	for _, l := range shelfLayers[shelf] {
		if l == layer {
			return true
		}
	}
	return false
}

// ParseKey parses a location string such as "C3". It returns false for
// anything that is not a valid shelf/layer pair; such locations still occur
// in imported data and are preserved by the store, they just have no
// partition view.
func ParseKey(s string) (Key, bool) {
	if len(s) != 2 {
		return Key{}, false
	}
	layer, err := strconv.Atoi(s[1:])
	if err != nil {
		return Key{}, false
	}
	k := Key{Shelf: s[:1], Layer: layer}
	if !IsValid(k.Shelf, k.Layer) {
		return Key{}, false
	}
	return k, true
}

// AllKeys returns every valid key in canonical layer-major order: for each
// layer 4 down to 1, each shelf A through E. This is the order the layer-row
// grid renders in.
func AllKeys() []Key {
	var keys []Key
	for layer := 4; layer >= 1; layer-- {
		for _, shelf := range Shelves {
			if IsValid(shelf, layer) {
				keys = append(keys, Key{Shelf: shelf, Layer: layer})
			}
		}
	}
	return keys
}

// AllKeysByShelf returns every valid key in the transposed order: shelf A
// through E, layers top to bottom within each shelf. This is the order the
// shelf-block view renders in.
func AllKeysByShelf() []Key {
	var keys []Key
	for _, shelf := range Shelves {
		for _, layer := range shelfLayers[shelf] {
			keys = append(keys, Key{Shelf: shelf, Layer: layer})
		}
	}
	return keys
}

// LayerLabel maps a layer number to its display position.
func LayerLabel(layer int) string {
	switch layer {
	case 4:
		return "Top"
	case 3:
		return "Upper"
	case 2:
		return "Lower"
	case 1:
		return "Bottom"
	}
	return ""
}
