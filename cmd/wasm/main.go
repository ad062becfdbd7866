//go:build js && wasm

package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/inamate/designer/internal/document"
	"github.com/inamate/designer/internal/engine"
	"github.com/inamate/designer/internal/raster"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))

	// Create the engine API object
	designerEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	designerEngine.Set("loadDocument", js.FuncOf(loadDocument))
	designerEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	designerEngine.Set("createDocument", js.FuncOf(createDocument))
	designerEngine.Set("addLayer", js.FuncOf(addLayer))
	designerEngine.Set("removeLayer", js.FuncOf(removeLayer))
	designerEngine.Set("patchLayer", js.FuncOf(patchLayer))
	designerEngine.Set("duplicateLayer", js.FuncOf(duplicateLayer))
	designerEngine.Set("reorderLayer", js.FuncOf(reorderLayer))
	designerEngine.Set("moveLayer", js.FuncOf(moveLayer))
	designerEngine.Set("renameDocument", js.FuncOf(renameDocument))
	designerEngine.Set("undo", js.FuncOf(undo))
	designerEngine.Set("redo", js.FuncOf(redo))
	designerEngine.Set("setSelection", js.FuncOf(setSelection))
	designerEngine.Set("setOverlays", js.FuncOf(setOverlays))
	designerEngine.Set("setScale", js.FuncOf(setScale))

	// --- Queries (frontend ← backend) ---
	designerEngine.Set("render", js.FuncOf(render))
	designerEngine.Set("exportImage", js.FuncOf(exportImage))
	designerEngine.Set("hitTest", js.FuncOf(hitTest))
	designerEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	designerEngine.Set("getDocument", js.FuncOf(getDocument))
	designerEngine.Set("getSelection", js.FuncOf(getSelection))
	designerEngine.Set("canUndo", js.FuncOf(func(js.Value, []js.Value) any { return eng.CanUndo() }))
	designerEngine.Set("canRedo", js.FuncOf(func(js.Value, []js.Value) any { return eng.CanRedo() }))

	// Register on global scope
	js.Global().Set("designerEngine", designerEngine)

	// Signal that WASM is ready
	js.Global().Set("designerWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() any {
	return js.ValueOf(map[string]any{"ok": true})
}

func fail(msg string) any {
	return js.ValueOf(map[string]any{"error": msg})
}

func result(err error) any {
	if err != nil {
		return fail(err.Error())
	}
	return ok()
}

func stringArg(args []js.Value, i int) string {
	if len(args) > i && args[i].Type() == js.TypeString {
		return args[i].String()
	}
	return ""
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return fail("missing document JSON")
	}
	return result(eng.LoadDocument(args[0].String()))
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	name := stringArg(args, 0)
	if name == "" {
		name = "Sample"
	}
	eng.LoadSampleDocument(name)
	return ok()
}

// createDocument takes an optional JSON object of document options.
func createDocument(this js.Value, args []js.Value) any {
	var opts struct {
		ToolID     string  `json:"toolId"`
		Name       string  `json:"name"`
		Width      float64 `json:"width"`
		Height     float64 `json:"height"`
		DPI        float64 `json:"dpi"`
		BleedMm    float64 `json:"bleedMm"`
		SafeAreaMm float64 `json:"safeAreaMm"`
	}
	if raw := stringArg(args, 0); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return fail(err.Error())
		}
	}
	eng.CreateDocument(document.DocumentOptions{
		ToolID:     opts.ToolID,
		Name:       opts.Name,
		Width:      opts.Width,
		Height:     opts.Height,
		DPI:        opts.DPI,
		BleedMm:    opts.BleedMm,
		SafeAreaMm: opts.SafeAreaMm,
	})
	return ok()
}

// addLayer(layerJSON, parentID, index)
func addLayer(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return fail("missing layer or parent")
	}
	layer, err := document.DecodeLayer([]byte(args[0].String()))
	if err != nil {
		return fail(err.Error())
	}
	index := 0
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		index = args[2].Int()
	}
	parentID := args[1].String()
	if !eng.Apply(func(d *document.Document) *document.Document {
		return document.InsertLayer(d, layer, parentID, index)
	}) {
		return fail("layer not added")
	}
	return ok()
}

func removeLayer(this js.Value, args []js.Value) any {
	id := stringArg(args, 0)
	eng.Apply(func(d *document.Document) *document.Document {
		return document.RemoveLayer(d, id)
	})
	return ok()
}

// patchLayer(id, patchJSON) applies a JSON merge patch.
func patchLayer(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return fail("missing layer id or patch")
	}
	id, patch := args[0].String(), []byte(args[1].String())
	return result(eng.ApplyErr(func(d *document.Document) (*document.Document, error) {
		return document.PatchLayer(d, id, patch)
	}))
}

// duplicateLayer returns the id of the copy, or an empty string.
func duplicateLayer(this js.Value, args []js.Value) any {
	id := stringArg(args, 0)
	var newID string
	eng.Apply(func(d *document.Document) *document.Document {
		nd, nid := document.DuplicateLayerWithID(d, id)
		newID = nid
		return nd
	})
	return js.ValueOf(newID)
}

func reorderLayer(this js.Value, args []js.Value) any {
	id := stringArg(args, 0)
	dir := document.ReorderDirection(stringArg(args, 1))
	eng.Apply(func(d *document.Document) *document.Document {
		return document.ReorderLayer(d, id, dir)
	})
	return ok()
}

// moveLayer(id, newParentID, index); a missing index appends.
func moveLayer(this js.Value, args []js.Value) any {
	id, parentID := stringArg(args, 0), stringArg(args, 1)
	index := -1
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		index = args[2].Int()
	}
	return result(eng.ApplyErr(func(d *document.Document) (*document.Document, error) {
		return document.MoveLayer(d, id, parentID, index)
	}))
}

func renameDocument(this js.Value, args []js.Value) any {
	name := stringArg(args, 0)
	if name == "" {
		return fail("name is empty")
	}
	eng.Apply(func(d *document.Document) *document.Document {
		return document.Rename(d, name)
	})
	return ok()
}

func undo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Redo())
}

func setSelection(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

// setOverlays(selection, guides, bleedSafe)
func setOverlays(this js.Value, args []js.Value) any {
	flag := func(i int) bool { return len(args) > i && args[i].Truthy() }
	eng.SetOverlays(flag(0), flag(1), flag(2))
	return nil
}

func setScale(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	eng.SetScale(args[0].Float())
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Render())
}

// exportImage(format, scale, quality) rasterizes the document without
// overlays and returns a data URI.
func exportImage(this js.Value, args []js.Value) any {
	doc := eng.Document()
	if doc == nil {
		return fail("no document loaded")
	}
	format, valid := raster.ParseFormat(stringArg(args, 0))
	if !valid {
		return fail("unsupported format")
	}
	scale := 1.0
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		scale = args[1].Float()
	}
	quality := 92
	if len(args) > 2 && args[2].Type() == js.TypeNumber {
		quality = args[2].Int()
	}

	img, err := raster.RenderOffscreen(doc, scale, engine.Options{})
	if err != nil {
		return fail(err.Error())
	}
	var buf bytes.Buffer
	if err := raster.Encode(&buf, img, format, quality); err != nil {
		return fail(err.Error())
	}
	uri := "data:" + format.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	return js.ValueOf(map[string]any{"ok": true, "dataUri": uri})
}

func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getSelectionBounds(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getDocument(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetDocument())
}

func getSelection(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.GetSelection())
}
