package document

// NewSampleDocument builds a two-color business card that exercises every
// layer variant.
func NewSampleDocument(name string) *Document {
	navy := HexToRGBA("#1a1a2e", 1)
	accent := HexToRGBA("#e94560", 1)
	light := HexToRGBA("#f5f5f5", 1)

	doc := CreateDocument(DocumentOptions{
		ToolID:          "business-card",
		Name:            name,
		Width:           1050,
		Height:          600,
		BackgroundColor: &light,
		BleedMm:         3,
		SafeAreaMm:      5,
	})

	band := NewShapeLayer(ShapeOptions{
		LayerOptions: LayerOptions{Name: "Side band", Tags: []string{"background"}, Width: 380, Height: 600},
		Fills: []Paint{LinearGradientPaint(90,
			GradientStop{Offset: 0, Color: navy},
			GradientStop{Offset: 1, Color: HexToRGBA("#16213e", 1)},
		)},
	})
	doc = AddLayer(doc, band, "")

	texture := NewShapeLayer(ShapeOptions{
		LayerOptions: LayerOptions{Name: "Texture", Tags: []string{"decoration"}, Width: 380, Height: 600},
		Fills:        []Paint{PatternPaint(PatternDots, light.WithAlpha(0.15), 24)},
	})
	doc = AddLayer(doc, texture, "")

	logo := NewGroupLayer(LayerOptions{Name: "Logo", Tags: []string{"logo"}})
	doc = AddLayer(doc, logo, "")

	mark := NewShapeLayer(ShapeOptions{
		LayerOptions:     LayerOptions{Name: "Logo mark", X: 130, Y: 170, Width: 120, Height: 120},
		ShapeType:        ShapeStar,
		Sides:            5,
		InnerRadiusRatio: 0.5,
		Fills:            []Paint{SolidPaint(accent)},
	})
	mark.Effects = append(mark.Effects, DropShadow(Black.WithAlpha(0.35), 0, 6, 12))
	doc = AddLayer(doc, mark, logo.ID)

	company := NewTextLayer(TextOptions{
		LayerOptions: LayerOptions{Name: "Company", Tags: []string{"company"}, X: 40, Y: 320, Width: 300, Height: 60},
		Text:         "Inamate Studio",
		Align:        AlignCenter,
		Style: &TextStyle{
			FontFamily: "Inter", FontSize: 34, FontWeight: 700, LineHeight: 1.2,
			LetterSpacing: 1, Fill: SolidPaint(light), Uppercase: true,
		},
	})
	doc = AddLayer(doc, company, logo.ID)

	fullName := NewTextLayer(TextOptions{
		LayerOptions: LayerOptions{Name: "Name", Tags: []string{"name"}, X: 440, Y: 90, Width: 560, Height: 70},
		Text:         "Alex Morgan",
		Style: &TextStyle{
			FontFamily: "Inter", FontSize: 56, FontWeight: 700, LineHeight: 1.1,
			Fill: SolidPaint(navy),
		},
	})
	doc = AddLayer(doc, fullName, "")

	title := NewTextLayer(TextOptions{
		LayerOptions: LayerOptions{Name: "Title", Tags: []string{"title"}, X: 440, Y: 170, Width: 560, Height: 40},
		Text:         "Creative Director",
		Style: &TextStyle{
			FontFamily: "Inter", FontSize: 28, FontWeight: 400, LineHeight: 1.2,
			Italic: true, Fill: SolidPaint(accent),
		},
	})
	doc = AddLayer(doc, title, "")

	divider := NewPathLayer(PathOptions{
		LayerOptions: LayerOptions{Name: "Divider", X: 440, Y: 240, Width: 560, Height: 10},
		Commands:     []PathCommand{MoveTo(0, 5), CubicTo(180, -5, 380, 15, 560, 5)},
		Strokes:      []StrokeSpec{SolidStroke(accent, 3)},
	})
	doc = AddLayer(doc, divider, "")

	contacts := NewFrameLayer(FrameOptions{
		LayerOptions: LayerOptions{Name: "Contacts", Tags: []string{"contact"}, X: 440, Y: 290, Width: 560, Height: 220},
		Fills:        []Paint{},
		ClipContent:  true,
	})
	doc = AddLayer(doc, contacts, "")

	rows := []struct{ icon, text, tag string }{
		{"phone", "+1 555 0100", "contact-phone"},
		{"email", "alex@inamate.studio", "contact-email"},
		{"globe", "inamate.studio", "contact-website"},
		{"location", "12 Harbour St, Wellington", "contact-address"},
	}
	// Added bottom row first so the list reads top to bottom.
	for i := len(rows) - 1; i >= 0; i-- {
		y := 300 + float64(i)*52
		icon := NewIconLayer(IconOptions{
			LayerOptions: LayerOptions{Name: rows[i].icon + " icon", X: 440, Y: y, Width: 32, Height: 32},
			IconID:       rows[i].icon,
			Color:        &accent,
		})
		doc = AddLayer(doc, icon, contacts.ID)
		line := NewTextLayer(TextOptions{
			LayerOptions: LayerOptions{Name: rows[i].tag, Tags: []string{rows[i].tag}, X: 488, Y: y + 2, Width: 500, Height: 32},
			Text:         rows[i].text,
			Overflow:     OverflowEllipsis,
			Style: &TextStyle{
				FontFamily: "Inter", FontSize: 22, FontWeight: 400, LineHeight: 1.2,
				Fill: SolidPaint(navy),
			},
		})
		doc = AddLayer(doc, line, contacts.ID)
	}

	photo := NewImageLayer(ImageOptions{
		LayerOptions: LayerOptions{Name: "Photo", Tags: []string{"photo"}, X: 900, Y: 470, Width: 110, Height: 110},
		CornerRadius: 55,
	})
	doc = AddLayer(doc, photo, "")

	return SetSelection(doc, nil, "")
}
