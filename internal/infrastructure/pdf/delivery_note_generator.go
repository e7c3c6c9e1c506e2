// Package pdf genera el albarán de entrega de una solicitud de suministros.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Albarán de entrega   │  N° solicitud + Fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOLICITANTE / GESTOR / ENTREGADO POR                        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Artículo | Ubicación | Unidad | Pedido | Entregado   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES + QR con el ID de la solicitud + firmas             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/suministros-api/internal/application/ports"
	"github.com/jhoicas/suministros-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWarn    = &props.Color{Red: 170, Green: 60, Blue: 0}
)

var _ ports.DeliveryNoteGenerator = (*MarotoDeliveryNoteGenerator)(nil)

// MarotoDeliveryNoteGenerator implementa ports.DeliveryNoteGenerator usando Maroto v2.
type MarotoDeliveryNoteGenerator struct {
	organization string
}

// NewMarotoDeliveryNoteGenerator construye el generador; organization aparece en la cabecera.
func NewMarotoDeliveryNoteGenerator(organization string) *MarotoDeliveryNoteGenerator {
	return &MarotoDeliveryNoteGenerator{organization: organization}
}

// GenerateDeliveryNote genera el PDF y devuelve sus bytes.
func (g *MarotoDeliveryNoteGenerator) GenerateDeliveryNote(
	_ context.Context,
	request *entity.Request,
	lines []ports.DeliveryNoteLine,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Albarán de entrega "+request.ID, true).
		WithAuthor(g.organization, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.organization, request))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(request))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(lines))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(request))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar albarán: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: organización (izq) y N° de solicitud + fecha de entrega (der).
func headerRow(organization string, request *entity.Request) core.Row {
	fecha := "-"
	if request.DeliveredAt != nil {
		fecha = request.DeliveredAt.Format("02/01/2006 15:04")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(organization, "Suministros de oficina"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Albarán de entrega de suministros", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("SOLICITUD", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(request.ID, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 7,
			}),
			text.New("Entregado: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// partiesRow: solicitante, gestor que aprobó y responsable de la entrega.
func partiesRow(request *entity.Request) core.Row {
	block := func(title, value string) core.Col {
		return col.New(4).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(value, "-"), props.Text{Size: 9, Top: 6}),
		)
	}
	return row.New(14).Add(
		block("SOLICITANTE", request.UserID),
		block("APROBADO POR", nonEmpty(request.ActionBy, request.ManagerID)),
		block("ENTREGADO POR", request.DeliveredBy),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Artículo", 5, align.Left),
		h("Ubicación", 2, align.Left),
		h("Unidad", 1, align.Center),
		h("Pedido", 2, align.Right),
		h("Entregado", 2, align.Right),
	)
}

// tableDetailRows: una fila por línea; las líneas sin producto se marcan como no entregadas.
func tableDetailRows(lines []ports.DeliveryNoteLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		label := l.Label
		style := props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1}
		if !l.Found {
			label = l.ProductID + " (producto inexistente)"
			style.Color = colorWarn
		}
		result = append(result, row.New(7).Add(
			col.New(5).Add(text.New(label, style)),
			col.New(2).Add(text.New(nonEmpty(l.Location, "-"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(nonEmpty(l.UnitOfMeasure, "-"), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(strconv.Itoa(l.Requested), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(strconv.Itoa(l.Delivered), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(lines []ports.DeliveryNoteLine) core.Row {
	var requested, delivered int
	for _, l := range lines {
		requested += l.Requested
		delivered += l.Delivered
	}
	bold := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 1, Top: 1}
	return row.New(8).Add(
		col.New(8).Add(text.New("TOTAL UNIDADES:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 1})),
		col.New(2).Add(text.New(strconv.Itoa(requested), bold)),
		col.New(2).Add(text.New(strconv.Itoa(delivered), bold)),
	)
}

// footerRow: QR con el ID de la solicitud y espacio de firmas.
func footerRow(request *entity.Request) core.Row {
	return row.New(40).Add(
		col.New(4).Add(code.NewQr(request.ID, props.Rect{Percent: 90, Center: true})),
		col.New(4).Add(
			text.New("Firma del solicitante", props.Text{Size: 8, Top: 30, Align: align.Center, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Firma de quien entrega", props.Text{Size: 8, Top: 30, Align: align.Center, Color: colorGray}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
